package output

import (
	"github.com/goccy/go-json"
	"github.com/livecalc/engine/internal/domain"
)

// JSONFormatter serializes a ValuationResult as pretty-printed JSON using
// the external field contract from spec §6.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(result *domain.ValuationResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
