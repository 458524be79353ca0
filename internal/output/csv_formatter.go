package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/livecalc/engine/internal/domain"
)

// CSVFormatter implements the simple summary CSV output: a header row of
// portfolio statistics and its value row, a blank line, then a
// "scenario_index,npv" header followed by one row per scenario NPV.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(result *domain.ValuationResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	summary := []string{"mean_npv", "std_dev", "p50", "p75", "p90", "p95", "p99", "cte_95", "scenarios_failed", "partial_result", "cancelled"}
	if err := w.Write(summary); err != nil {
		return nil, err
	}
	row := []string{
		formatFloat(result.MeanNPV),
		formatFloat(result.StdDev),
		formatFloat(result.Percentiles.P50),
		formatFloat(result.Percentiles.P75),
		formatFloat(result.Percentiles.P90),
		formatFloat(result.Percentiles.P95),
		formatFloat(result.Percentiles.P99),
		formatFloat(result.CTE95),
		strconv.Itoa(result.ScenariosFailed),
		strconv.FormatBool(result.PartialResult),
		strconv.FormatBool(result.Cancelled),
	}
	if err := w.Write(row); err != nil {
		return nil, err
	}

	if err := w.Write([]string{}); err != nil {
		return nil, err
	}
	if err := w.Write([]string{"scenario_index", "npv"}); err != nil {
		return nil, err
	}
	for i, npv := range result.ScenarioNPVs {
		if err := w.Write([]string{strconv.Itoa(i), formatFloat(npv)}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
