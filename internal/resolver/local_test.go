package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func TestLocalResolverResolvesLatestFile(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "mortality.csv", "age,male_qx,female_qx\n0,0.001,0.0008\n1,0.0009,0.0007\n")

	r := NewLocalResolver(dir)
	tbl, err := r.ResolveTable(context.Background(), "mortality", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "male_qx", "female_qx"}, tbl.Columns)
	assert.Len(t, tbl.Rows, 2)
	assert.Equal(t, []float64{0, 0.001, 0.0008}, tbl.Rows[0])
}

func TestLocalResolverResolvesVersionedFile(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "lapse.v2.csv", "year,rate\n1,0.05\n")

	r := NewLocalResolver(dir)
	tbl, err := r.ResolveTable(context.Background(), "lapse", "v2")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0.05}}, tbl.Rows)
}

func TestLocalResolverMissingFileIsNotFound(t *testing.T) {
	r := NewLocalResolver(t.TempDir())
	_, err := r.ResolveTable(context.Background(), "missing", "")
	require.Error(t, err)
	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, NotFound, re.Kind)
}

func TestLocalResolverMalformedCellIsMalformedData(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "expenses.csv", "acquisition,maintenance,pct_of_premium,claim_expense\n100,20,notanumber,50\n")

	r := NewLocalResolver(dir)
	_, err := r.ResolveTable(context.Background(), "expenses", "")
	require.Error(t, err)
	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, MalformedData, re.Kind)
}

func TestLocalResolverListVersions(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "lapse.csv", "year,rate\n1,0.05\n")
	writeCSV(t, dir, "lapse.v1.csv", "year,rate\n1,0.04\n")
	writeCSV(t, dir, "lapse.v2.csv", "year,rate\n1,0.06\n")

	r := NewLocalResolver(dir)
	versions, err := r.ListVersions(context.Background(), "lapse")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{VersionLatest, "v1", "v2"}, versions)
}

func TestLocalResolverResolveScalar(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "discount_add_on.csv", "value\n0.0025\n")

	r := NewLocalResolver(dir)
	v, err := r.ResolveScalar(context.Background(), "discount_add_on", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0025, v)
}
