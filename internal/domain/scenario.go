package domain

// ScenarioYears is the number of annual rates a Scenario covers (1..50).
const ScenarioYears = 50

// Scenario is a single realized interest-rate path: annual rates for
// years 1..50, stored densely with year 1 at index 0.
type Scenario struct {
	rates [ScenarioYears]float64
}

// NewScenario builds a Scenario from a flat 50-value rate vector.
func NewScenario(rates [ScenarioYears]float64) *Scenario {
	return &Scenario{rates: rates}
}

// Rate returns the interest rate for year y (1..50).
func (s *Scenario) Rate(y int) (float64, error) {
	if y < 1 || y > ScenarioYears {
		return 0, &OutOfRangeError{Table: "scenario", Index: y, Min: 1, Max: ScenarioYears}
	}
	return s.rates[y-1], nil
}

// DiscountFactor returns Π_{k=1..y} 1/(1+rate(k)) (spec §4.1, testable
// property 2). It recomputes from year 1 each call; callers that need the
// whole curve should use CumulativeDiscountFactors instead.
func (s *Scenario) DiscountFactor(y int) (float64, error) {
	if y < 1 || y > ScenarioYears {
		return 0, &OutOfRangeError{Table: "scenario", Index: y, Min: 1, Max: ScenarioYears}
	}
	d := 1.0
	for k := 1; k <= y; k++ {
		d /= 1 + s.rates[k-1]
	}
	return d, nil
}

// CumulativeDiscountFactors returns the running discount factor after each
// year 1..50 in one pass, avoiding the O(y) recomputation DiscountFactor
// does per call. Used by the projection engine's hot loop.
func (s *Scenario) CumulativeDiscountFactors() [ScenarioYears]float64 {
	var out [ScenarioYears]float64
	d := 1.0
	for k := 0; k < ScenarioYears; k++ {
		d /= 1 + s.rates[k]
		out[k] = d
	}
	return out
}

// Rates returns the raw 50-element rate vector. Used by the binary
// serializer and by tests asserting bound compliance.
func (s *Scenario) Rates() [ScenarioYears]float64 {
	return s.rates
}

// ScenarioSet is an ordered collection of scenarios; element order is
// significant (ValuationResult indexes per-scenario NPVs by this order).
type ScenarioSet struct {
	Scenarios []*Scenario
}

// Len returns the number of scenarios in the set.
func (s *ScenarioSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Scenarios)
}
