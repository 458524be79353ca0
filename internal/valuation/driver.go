// Package valuation drives the full (scenarios x policies) sweep and
// aggregates per-scenario NPVs into portfolio-level statistics (C5/C6).
package valuation

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/livecalc/engine/internal/domain"
	"github.com/livecalc/engine/internal/logging"
	"github.com/livecalc/engine/internal/projection"
	"github.com/livecalc/engine/internal/udf"
)

// Inputs bundles everything a full valuation run needs.
type Inputs struct {
	Policies    []domain.Policy
	Mortality   *domain.MortalityTable
	Lapse       *domain.LapseTable
	Expenses    domain.ExpenseAssumptions
	Scenarios   *domain.ScenarioSet
	Multipliers domain.RunMultipliers
	Host        *udf.Host
	Trace       bool
	// Workers bounds the per-scenario policy parallelism; 0 uses
	// runtime.GOMAXPROCS(0) (spec §5: "worker pool sized by available
	// hardware concurrency").
	Workers int
	Logger  logging.Logger
}

// Driver runs the nested-stochastic sweep: the outer loop over
// scenarios is sequential, the inner loop over policies is parallel
// with a fixed policy-index reduction order, so the result is
// bit-identical for a fixed input set regardless of worker count
// (spec §4.5, testable property 6).
type Driver struct {
	log logging.Logger
}

// NewDriver builds a Driver. A nil logger defaults to a no-op logger.
func NewDriver(log logging.Logger) *Driver {
	return &Driver{log: logging.OrDefault(log)}
}

// Run executes the full sweep. ctx cancellation is checked between
// scenarios; on cancellation the driver stops early and returns a
// partial, cancelled result built from whatever scenarios completed.
func (d *Driver) Run(ctx context.Context, in Inputs) domain.ValuationResult {
	start := time.Now()

	if in.Logger != nil {
		d.log = in.Logger
	}

	workers := in.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	scenarioCount := in.Scenarios.Len()
	scenarioNPVs := make([]float64, scenarioCount)
	surviving := make([]float64, 0, scenarioCount)
	failed := 0
	cancelled := false

	for s := 0; s < scenarioCount; s++ {
		select {
		case <-ctx.Done():
			cancelled = true
		default:
		}
		if cancelled {
			break
		}

		scenario := in.Scenarios.Scenarios[s]
		npv, ok := d.runScenario(ctx, s, scenario, in, workers)
		if !ok {
			failed++
			continue
		}
		scenarioNPVs[s] = npv
		surviving = append(surviving, npv)
	}

	mean, stdDev, percentiles, cte95 := Statistics(surviving)

	return domain.ValuationResult{
		MeanNPV:         mean,
		StdDev:          stdDev,
		Percentiles:     percentiles,
		CTE95:           cte95,
		ScenarioNPVs:    scenarioNPVs,
		ExecutionTimeMS: float64(time.Since(start).Microseconds()) / 1000.0,
		ScenariosFailed: failed,
		PartialResult:   cancelled,
		Cancelled:       cancelled,
	}
}

// runScenario projects every policy under one scenario in parallel,
// combining policy NPVs in a fixed policy-index order. It reports
// ok=false if any policy projection within the scenario failed, per
// spec §4.5 ("A scenario is marked failed if any policy projection
// within it raised; its NPV is set to 0 and it is excluded from
// statistics").
func (d *Driver) runScenario(ctx context.Context, scenarioIndex int, scenario *domain.Scenario, in Inputs, workers int) (float64, bool) {
	n := len(in.Policies)
	results := make([]domain.ProjectionResult, n)

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = projection.Run(ctx, scenarioIndex, projection.Inputs{
				Policy:      in.Policies[idx],
				Mortality:   in.Mortality,
				Lapse:       in.Lapse,
				Expenses:    in.Expenses,
				Scenario:    scenario,
				Multipliers: in.Multipliers,
				Host:        in.Host,
				Trace:       in.Trace,
			})
		}(i)
	}
	wg.Wait()

	anyFailed := false
	sum := 0.0
	for i := 0; i < n; i++ {
		if results[i].Err != nil {
			d.log.Warnf("scenario %d policy %d projection failed: %v", scenarioIndex, in.Policies[i].PolicyID, results[i].Err)
			anyFailed = true
			continue
		}
		sum += results[i].NPV
	}
	if anyFailed {
		return 0, false
	}
	return sum, true
}
