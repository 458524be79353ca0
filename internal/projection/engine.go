// Package projection runs a single policy under a single scenario,
// producing a net present value and, optionally, a per-year cash-flow
// trace (C3).
package projection

import (
	"context"

	"github.com/livecalc/engine/internal/domain"
	"github.com/livecalc/engine/internal/udf"
)

// LiveFloor is the in-force threshold below which the projection loop
// stops early (spec §4.3 step 9).
const LiveFloor = 1e-10

// Inputs bundles everything one projection needs. Tables, Scenario, and
// Host are read-only and safely shared across concurrent
// projections; Host may be nil when no UDFs are configured.
type Inputs struct {
	Policy      domain.Policy
	Mortality   *domain.MortalityTable
	Lapse       *domain.LapseTable
	Expenses    domain.ExpenseAssumptions
	Scenario    *domain.Scenario
	Multipliers domain.RunMultipliers
	Host        *udf.Host
	Trace       bool
}

// Run executes the §4.3 algorithm for one (policy, scenario) pair.
func Run(ctx context.Context, scenarioIndex int, in Inputs) domain.ProjectionResult {
	result := domain.ProjectionResult{
		PolicyID:      in.Policy.PolicyID,
		ScenarioIndex: scenarioIndex,
	}

	term := in.Policy.EffectiveTerm()
	if term <= 0 {
		return result
	}

	lives := 1.0
	factors := in.Scenario.CumulativeDiscountFactors()
	var stats udf.Stats
	udfConfigured := in.Host != nil && in.Host.Configured()

	var trace []domain.YearlyCashFlow
	if in.Trace {
		trace = make([]domain.YearlyCashFlow, 0, term)
	}

	for y := 1; y <= term; y++ {
		age := in.Policy.EntryAge + (y - 1)
		if age > 120 {
			age = 120
		}

		qx, err := in.Mortality.Get(age, in.Policy.Gender, in.Multipliers.Mortality)
		if err != nil {
			result.Err = err
			return result
		}
		lambda, err := in.Lapse.Get(y, in.Multipliers.Lapse)
		if err != nil {
			result.Err = err
			return result
		}
		rate, err := in.Scenario.Rate(y)
		if err != nil {
			result.Err = err
			return result
		}
		if rate <= -1 {
			result.Err = &domain.InvalidParametersError{Reason: "scenario rate <= -100% produces a non-finite discount factor"}
			return result
		}

		qxAdj, lambdaAdj := qx, lambda
		if udfConfigured {
			state := udf.State{Year: y, Lives: lives, InterestRate: rate, PolicyID: in.Policy.PolicyID, ScenarioIndex: scenarioIndex}
			mMort := in.Host.Invoke(ctx, udf.SlotAdjustMortality, state, &stats)
			mLapse := in.Host.Invoke(ctx, udf.SlotAdjustLapse, state, &stats)
			qxAdj = clampUnit(qx * mMort)
			lambdaAdj = clampUnit(lambda * mLapse)
		}

		discount := factors[y-1]

		livesBOY := lives
		deaths := livesBOY * qxAdj
		livesAfterDeaths := livesBOY - deaths
		lapses := livesAfterDeaths * lambdaAdj

		premium := livesBOY * in.Policy.AnnualPremium
		deathBenefit := deaths * in.Policy.SumAssured
		surrenderBenefit := lapses * 0.0

		var expenseBase float64
		if y == 1 {
			expenseBase = in.Expenses.FirstYearExpense(in.Policy.AnnualPremium, in.Multipliers.Expense) * livesBOY
		} else {
			expenseBase = in.Expenses.RenewalExpense(in.Policy.AnnualPremium, in.Multipliers.Expense) * livesBOY
		}
		claimExpense := deaths * in.Expenses.PerClaimExpense(in.Multipliers.Expense)
		expensesTotal := expenseBase + claimExpense

		net := premium - deathBenefit - surrenderBenefit - expensesTotal
		discountedCashFlow := net * discount
		result.NPV += discountedCashFlow

		if in.Trace {
			trace = append(trace, domain.YearlyCashFlow{
				Year:               y,
				LivesInForceAtBOY:  livesBOY,
				Premium:            premium,
				DeathBenefit:       deathBenefit,
				SurrenderBenefit:   surrenderBenefit,
				Expenses:           expensesTotal,
				NetCashFlow:        net,
				CumulativeDiscount: discount,
				DiscountedCashFlow: discountedCashFlow,
			})
		}

		lives = livesAfterDeaths - lapses
		if lives < LiveFloor {
			break
		}
	}

	result.Trace = trace
	result.UDFCallCount = stats.CallCount
	result.UDFCPUTime = stats.CPUTime.Seconds()
	return result
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
