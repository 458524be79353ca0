// Package output renders a domain.ValuationResult in the formats the
// livecalc CLI can emit: pretty JSON and a flat summary CSV.
package output

import (
	"fmt"
	"sort"

	"github.com/livecalc/engine/internal/domain"
)

// Formatter turns a finished ValuationResult into bytes. Implementations
// must be pure: no side effects beyond deterministic formatting.
type Formatter interface {
	Format(result *domain.ValuationResult) ([]byte, error)
	Name() string
}

var builtInFormatters = []Formatter{
	JSONFormatter{},
	CSVFormatter{},
}

// GetFormatterByName returns the registered formatter matching name, or
// nil if none matches.
func GetFormatterByName(name string) Formatter {
	for _, f := range builtInFormatters {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// Names lists every registered formatter name, for CLI usage/help text.
func Names() []string {
	names := make([]string, 0, len(builtInFormatters))
	for _, f := range builtInFormatters {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	return names
}

// ErrUnknownFormat is returned by callers that resolve a format name
// themselves rather than through GetFormatterByName.
func ErrUnknownFormat(name string) error {
	return fmt.Errorf("output: unknown format %q (available: %v)", name, Names())
}
