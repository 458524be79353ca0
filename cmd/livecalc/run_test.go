package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/livecalc/engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

// TestRunEndToEndWritesJSONOutput exercises the run subcommand's full
// wiring (config load, local resolver, scenario generation, driver,
// JSON formatter) against a minimal on-disk fixture.
func TestRunEndToEndWritesJSONOutput(t *testing.T) {
	dir := t.TempDir()

	// Build two CSV rows of 121 values each (Male, then Female), header first.
	row := func() string {
		s := ""
		for i := 0; i < domain.MortalityAges; i++ {
			if i > 0 {
				s += ","
			}
			s += "0.01"
		}
		return s
	}()
	// The local resolver's CSV reader requires each row to be as wide as the header.
	mortalityHeader := strings.TrimSuffix(strings.Repeat("qx,", domain.MortalityAges), ",")
	writeFile(t, dir, "mortality.csv", mortalityHeader+"\n"+row+"\n"+row+"\n")

	lapseRow := ""
	for i := 0; i < domain.LapseYears; i++ {
		if i > 0 {
			lapseRow += ","
		}
		lapseRow += "0.02"
	}
	lapseHeader := strings.TrimSuffix(strings.Repeat("rate,", domain.LapseYears), ",")
	writeFile(t, dir, "lapse.csv", lapseHeader+"\n"+lapseRow+"\n")
	writeFile(t, dir, "expenses.csv", "acquisition,maintenance,pct_premium,per_claim\n100,20,0.05,500\n")

	writeFile(t, dir, "policies.yaml", `
policies:
  - policy_id: 1
    age: 40
    gender: M
    sum_assured: 100000
    premium: 1200
    term: 5
    product_type: Term
    underwriting_class: Standard
`)

	cfgPath := writeFile(t, dir, "run.yaml", `
policies_path: `+filepath.Join(dir, "policies.yaml")+`
assumptions:
  mortality: "local://mortality.csv"
  lapse: "local://lapse.csv"
  expenses: "local://expenses.csv"
scenario_count: 5
seed: 7
scenarios:
  initial_rate: 0.03
  drift: 0.0
  volatility: 0.01
  min: 0.0
  max: 0.2
workers: 2
`)

	outPath := filepath.Join(dir, "result.json")

	flagConfig = cfgPath
	flagFormat = "json"
	flagOut = outPath
	flagLocalRoot = dir
	flagRegistry = ""
	flagRequestsPS = 0
	defer func() {
		flagConfig, flagFormat, flagOut, flagLocalRoot, flagRegistry = "", "json", "", ".", ""
	}()

	cmd := runCmd
	cmd.SetContext(context.Background())
	err := runRun(cmd, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte("mean_npv")))
}
