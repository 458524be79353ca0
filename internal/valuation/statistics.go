package valuation

import (
	"math"
	"sort"

	"github.com/livecalc/engine/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// Statistics computes the §4.6 distribution summary over the valid
// (non-failed) per-scenario NPVs. It does not mutate values.
func Statistics(values []float64) (mean, stdDev float64, percentiles domain.Percentiles, cte95 float64) {
	m := len(values)
	if m == 0 {
		return 0, 0, domain.Percentiles{}, 0
	}

	mean = stat.Mean(values, nil)
	if m >= 2 {
		stdDev = stat.PopStdDev(values, nil)
	}

	sorted := make([]float64, m)
	copy(sorted, values)
	sort.Float64s(sorted)

	percentiles = domain.Percentiles{
		P50: interpolatedPercentile(sorted, 50),
		P75: interpolatedPercentile(sorted, 75),
		P90: interpolatedPercentile(sorted, 90),
		P95: interpolatedPercentile(sorted, 95),
		P99: interpolatedPercentile(sorted, 99),
	}

	cte95 = conditionalTailExpectation(sorted)
	return mean, stdDev, percentiles, cte95
}

// interpolatedPercentile applies the exact §4.6 linear-interpolation
// formula over an already-sorted series: p = (P/100)*(M-1),
// v_floor(p)*(1-f) + v_ceil(p)*f, f = p - floor(p).
func interpolatedPercentile(sorted []float64, percentRank float64) float64 {
	m := len(sorted)
	if m == 0 {
		return 0
	}
	if m == 1 {
		return sorted[0]
	}
	p := (percentRank / 100.0) * float64(m-1)
	lo := int(math.Floor(p))
	hi := int(math.Ceil(p))
	f := p - float64(lo)
	if hi >= m {
		hi = m - 1
	}
	return sorted[lo]*(1-f) + sorted[hi]*f
}

// conditionalTailExpectation is the mean of the lowest 5% of the sorted
// series; the tail size is ceil(M*0.05), at least 1.
func conditionalTailExpectation(sorted []float64) float64 {
	m := len(sorted)
	if m == 0 {
		return 0
	}
	tailSize := int(math.Ceil(float64(m) * 0.05))
	if tailSize < 1 {
		tailSize = 1
	}
	if tailSize > m {
		tailSize = m
	}
	sum := 0.0
	for i := 0; i < tailSize; i++ {
		sum += sorted[i]
	}
	return sum / float64(tailSize)
}
