// Package domain holds the core value types of the valuation engine:
// policies, assumption tables, scenarios, and results. Types here are
// immutable once constructed and safe to share read-only across
// goroutines during a run.
package domain

import "fmt"

// Gender distinguishes the two genders the mortality table is indexed by.
type Gender uint8

const (
	Male Gender = iota
	Female
)

// ParseGender accepts the wire forms listed in spec §6: "M"/"Male"/"0" for
// Male, "F"/"Female"/"1" for Female.
func ParseGender(s string) (Gender, error) {
	switch s {
	case "M", "Male", "male", "0":
		return Male, nil
	case "F", "Female", "female", "1":
		return Female, nil
	default:
		return 0, fmt.Errorf("domain: unrecognized gender %q", s)
	}
}

func (g Gender) String() string {
	if g == Female {
		return "Female"
	}
	return "Male"
}

// ProductType is the life-insurance product family written on a Policy.
type ProductType uint8

const (
	Term ProductType = iota
	WholeLife
	Endowment
)

func (p ProductType) String() string {
	switch p {
	case WholeLife:
		return "WholeLife"
	case Endowment:
		return "Endowment"
	default:
		return "Term"
	}
}

// ParseProductType accepts the names or the 0..2 ordinal from spec §6.
func ParseProductType(s string) (ProductType, error) {
	switch s {
	case "Term", "0":
		return Term, nil
	case "WholeLife", "1":
		return WholeLife, nil
	case "Endowment", "2":
		return Endowment, nil
	default:
		return 0, fmt.Errorf("domain: unrecognized product type %q", s)
	}
}

// UnderwritingClass is the risk class assigned to a Policy at issue.
type UnderwritingClass uint8

const (
	Standard UnderwritingClass = iota
	Smoker
	NonSmoker
	Preferred
	Substandard
)

func (u UnderwritingClass) String() string {
	switch u {
	case Smoker:
		return "Smoker"
	case NonSmoker:
		return "NonSmoker"
	case Preferred:
		return "Preferred"
	case Substandard:
		return "Substandard"
	default:
		return "Standard"
	}
}

// ParseUnderwritingClass accepts the names or the 0..4 ordinal from spec §6.
func ParseUnderwritingClass(s string) (UnderwritingClass, error) {
	switch s {
	case "Standard", "0":
		return Standard, nil
	case "Smoker", "1":
		return Smoker, nil
	case "NonSmoker", "2":
		return NonSmoker, nil
	case "Preferred", "3":
		return Preferred, nil
	case "Substandard", "4":
		return Substandard, nil
	default:
		return 0, fmt.Errorf("domain: unrecognized underwriting class %q", s)
	}
}

// Policy is a single in-force life-insurance contract. It is immutable
// for the duration of a valuation run: the driver and projection engine
// only ever read from it.
type Policy struct {
	PolicyID          uint64            `yaml:"policy_id" json:"policy_id"`
	EntryAge          int               `yaml:"age" json:"age"`
	Gender            Gender            `yaml:"gender" json:"gender"`
	SumAssured        float64           `yaml:"sum_assured" json:"sum_assured"`
	AnnualPremium     float64           `yaml:"premium" json:"premium"`
	Term              int               `yaml:"term" json:"term"`
	ProductType       ProductType       `yaml:"product_type" json:"product_type"`
	UnderwritingClass UnderwritingClass `yaml:"underwriting_class" json:"underwriting_class"`

	// Attributes carries arbitrary caller-supplied string fields consumed
	// only by UDF callouts; the core numeric path never reads them.
	Attributes map[string]string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// Validate checks the structural invariants from spec §3. Age-capping at
// the table ceiling (120) is applied by the projection engine, not here;
// Validate only rejects policies that cannot be projected at all.
func (p Policy) Validate() error {
	if p.EntryAge < 0 || p.EntryAge > 120 {
		return fmt.Errorf("domain: policy %d: entry age %d out of [0,120]", p.PolicyID, p.EntryAge)
	}
	if p.SumAssured < 0 {
		return fmt.Errorf("domain: policy %d: sum assured %g is negative", p.PolicyID, p.SumAssured)
	}
	if p.AnnualPremium < 0 {
		return fmt.Errorf("domain: policy %d: premium %g is negative", p.PolicyID, p.AnnualPremium)
	}
	if p.Term < 0 || p.Term > 50 {
		return fmt.Errorf("domain: policy %d: term %d out of [0,50]", p.PolicyID, p.Term)
	}
	return nil
}

// EffectiveTerm clips Term to the 50-year table ceiling (spec §8 boundary
// behavior: "policy with term > 50 is treated as term = 50").
func (p Policy) EffectiveTerm() int {
	if p.Term > 50 {
		return 50
	}
	return p.Term
}
