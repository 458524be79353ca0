// Package money renders float64 NPV and currency values at two decimal
// places for display. It is deliberately narrow: the hot numeric path
// (C1-C6) never uses it, since the buffer ABI and the ≥10⁶x10⁴ scale
// target specify plain f64 fields throughout. The CLI console summary and
// the CSV formatter do not use it either; they format numbers with
// go-humanize and strconv.
package money

import "github.com/shopspring/decimal"

// Amount wraps a decimal.Decimal for display-precision rounding,
// adapted from the teacher's pkg/decimal Money helper.
type Amount struct {
	decimal.Decimal
}

// FromFloat builds an Amount from a raw float64 NPV or currency value.
func FromFloat(v float64) Amount {
	return Amount{decimal.NewFromFloat(v)}
}

// Round rounds to cents, with halves rounded away from zero
// (decimal.Round semantics).
func (a Amount) Round() Amount {
	return Amount{a.Decimal.Round(2)}
}

// String renders the amount at two decimal places.
func (a Amount) String() string {
	return a.Round().Decimal.StringFixed(2)
}
