package config

import (
	"context"
	"fmt"

	"github.com/livecalc/engine/internal/domain"
	"github.com/livecalc/engine/internal/resolver"
)

// Assumptions bundles the three resolved assumption inputs a valuation
// run needs, after the raw resolver.Table rows have been flattened and
// validated into their domain types.
type Assumptions struct {
	Mortality *domain.MortalityTable
	Lapse     *domain.LapseTable
	Expenses  domain.ExpenseAssumptions
}

// ResolveAssumptions fetches the three tables named in refs through r,
// at version, and converts each into its domain type.
func ResolveAssumptions(ctx context.Context, r resolver.Resolver, refs AssumptionRefs, version string) (*Assumptions, error) {
	mortalityTable, err := r.ResolveTable(ctx, refs.Mortality, version)
	if err != nil {
		return nil, fmt.Errorf("config: resolving mortality table: %w", err)
	}
	mortality, err := domain.NewMortalityTable(flatten(mortalityTable))
	if err != nil {
		return nil, fmt.Errorf("config: building mortality table: %w", err)
	}

	lapseTable, err := r.ResolveTable(ctx, refs.Lapse, version)
	if err != nil {
		return nil, fmt.Errorf("config: resolving lapse table: %w", err)
	}
	lapse, err := domain.NewLapseTable(flatten(lapseTable))
	if err != nil {
		return nil, fmt.Errorf("config: building lapse table: %w", err)
	}

	expenseTable, err := r.ResolveTable(ctx, refs.Expenses, version)
	if err != nil {
		return nil, fmt.Errorf("config: resolving expense assumptions: %w", err)
	}
	flatExp := flatten(expenseTable)
	if len(flatExp) != 4 {
		return nil, fmt.Errorf("config: expense assumptions table must have exactly 4 values, got %d", len(flatExp))
	}
	expenses := domain.ExpenseAssumptions{
		Acquisition: flatExp[0],
		Maintenance: flatExp[1],
		PctPremium:  flatExp[2],
		PerClaim:    flatExp[3],
	}
	if err := expenses.Validate(); err != nil {
		return nil, fmt.Errorf("config: expense assumptions: %w", err)
	}

	return &Assumptions{Mortality: mortality, Lapse: lapse, Expenses: expenses}, nil
}

// flatten row-majors a resolver.Table into a single []float64, the shape
// domain's table constructors expect.
func flatten(t resolver.Table) []float64 {
	out := make([]float64, 0, len(t.Rows)*len(t.Columns))
	for _, row := range t.Rows {
		out = append(out, row...)
	}
	return out
}
