package resolver

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// LocalResolver resolves assumption tables from a directory tree rooted
// at Root (spec §6: "local://<path> — a file-system path relative to a
// caller-supplied root"). Each table version is a CSV file. For a bare
// name, an empty or "latest" version maps to "<name>.csv" and any other
// version maps to "<name>.<version>.csv"; a local:// or absolute
// reference names the file directly and the version is ignored.
type LocalResolver struct {
	Root string
}

// NewLocalResolver builds a resolver rooted at root.
func NewLocalResolver(root string) *LocalResolver {
	return &LocalResolver{Root: root}
}

// PathFor resolves an assumption reference to a filesystem path. It
// accepts the local:// scheme, a plain relative path, or an absolute
// path (spec §6).
func (r *LocalResolver) PathFor(name, version string) string {
	if strings.HasPrefix(name, "local://") {
		return filepath.Join(r.Root, strings.TrimPrefix(name, "local://"))
	}
	if filepath.IsAbs(name) {
		return name
	}
	if version == "" || version == VersionLatest {
		return filepath.Join(r.Root, name+".csv")
	}
	return filepath.Join(r.Root, fmt.Sprintf("%s.%s.csv", name, version))
}

func (r *LocalResolver) ResolveTable(ctx context.Context, name, version string) (Table, error) {
	path := r.PathFor(name, version)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Table{}, &Error{Kind: NotFound, Name: name, Version: version, Reason: err.Error()}
		}
		if os.IsPermission(err) {
			return Table{}, &Error{Kind: Forbidden, Name: name, Version: version, Reason: err.Error()}
		}
		return Table{}, &Error{Kind: NetworkUnavailable, Name: name, Version: version, Reason: err.Error()}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, &Error{Kind: MalformedData, Name: name, Version: version, Reason: err.Error()}
	}
	if len(records) == 0 {
		return Table{}, &Error{Kind: MalformedData, Name: name, Version: version, Reason: "empty file"}
	}

	columns := records[0]
	rows := make([][]float64, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := make([]float64, len(rec))
		for j, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return Table{}, &Error{Kind: MalformedData, Name: name, Version: version,
					Reason: fmt.Sprintf("row %d column %d: %v", i+1, j, err)}
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return Table{Columns: columns, Rows: rows}, nil
}

func (r *LocalResolver) ResolveScalar(ctx context.Context, name, version string, attrs map[string]string) (float64, error) {
	t, err := r.ResolveTable(ctx, name, version)
	if err != nil {
		return 0, err
	}
	if len(t.Rows) == 0 || len(t.Rows[0]) == 0 {
		return 0, &Error{Kind: MalformedData, Name: name, Version: version, Reason: "no scalar value present"}
	}
	return t.Rows[0][0], nil
}

func (r *LocalResolver) ListVersions(ctx context.Context, name string) ([]string, error) {
	entries, err := os.ReadDir(r.Root)
	if err != nil {
		return nil, &Error{Kind: NotConfigured, Name: name, Reason: err.Error()}
	}
	prefix := name + "."
	var versions []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if n == name+".csv" {
			versions = append(versions, VersionLatest)
			continue
		}
		if strings.HasPrefix(n, prefix) && strings.HasSuffix(n, ".csv") {
			versions = append(versions, strings.TrimSuffix(strings.TrimPrefix(n, prefix), ".csv"))
		}
	}
	sort.Strings(versions)
	return versions, nil
}
