package domain

// RunMultipliers are the run-level scalars applied to base assumption
// rates before any UDF adjustment (spec §4.3 step 3). Zero-value
// multipliers are invalid; callers should use DefaultMultipliers.
type RunMultipliers struct {
	Mortality float64 `yaml:"mortality_multiplier" json:"mortality_multiplier"`
	Lapse     float64 `yaml:"lapse_multiplier" json:"lapse_multiplier"`
	Expense   float64 `yaml:"expense_multiplier" json:"expense_multiplier"`
}

// DefaultMultipliers returns the neutral 1.0/1.0/1.0 multiplier set.
func DefaultMultipliers() RunMultipliers {
	return RunMultipliers{Mortality: 1.0, Lapse: 1.0, Expense: 1.0}
}
