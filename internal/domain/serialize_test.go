package domain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyRoundTrip(t *testing.T) {
	p := Policy{
		PolicyID:          42,
		EntryAge:          35,
		Gender:            Female,
		SumAssured:        250000,
		AnnualPremium:     1800.50,
		Term:              20,
		ProductType:       WholeLife,
		UnderwritingClass: Preferred,
		Attributes:        map[string]string{"region": "northeast", "tier": "gold"},
	}

	var buf bytes.Buffer
	require.NoError(t, SerializePolicy(&buf, p))

	got, err := DeserializePolicy(&buf)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestPolicyRoundTripNoAttributes(t *testing.T) {
	p := Policy{PolicyID: 1, EntryAge: 40, SumAssured: 100000, AnnualPremium: 900, Term: 10}

	var buf bytes.Buffer
	require.NoError(t, SerializePolicy(&buf, p))

	got, err := DeserializePolicy(&buf)
	require.NoError(t, err)
	assert.Equal(t, p.PolicyID, got.PolicyID)
	assert.Nil(t, got.Attributes)
}

func TestPoliciesCollectionRoundTrip(t *testing.T) {
	policies := []Policy{
		{PolicyID: 1, EntryAge: 30, SumAssured: 50000, Term: 15},
		{PolicyID: 2, EntryAge: 45, Gender: Female, SumAssured: 75000, Term: 25},
	}

	var buf bytes.Buffer
	require.NoError(t, SerializePolicies(&buf, policies))

	got, err := DeserializePolicies(&buf)
	require.NoError(t, err)
	assert.Equal(t, policies, got)
}

func TestDeserializePolicyTruncatedStream(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SerializePolicy(&buf, Policy{PolicyID: 7}))

	truncated := bytes.NewReader(buf.Bytes()[:5])
	_, err := DeserializePolicy(truncated)
	require.Error(t, err)
	var ts *TruncatedStreamError
	assert.ErrorAs(t, err, &ts)
}

func TestDeserializePoliciesTruncatedMidCollection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SerializePolicies(&buf, []Policy{{PolicyID: 1}, {PolicyID: 2}}))

	full := buf.Bytes()
	truncated := bytes.NewReader(full[:len(full)-4])
	_, err := DeserializePolicies(truncated)
	require.Error(t, err)
}

func TestMortalityTableRoundTrip(t *testing.T) {
	flat := flatMortality(0.001)
	flat[40] = 0.0025
	tbl, err := NewMortalityTable(flat)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, SerializeMortalityTable(&buf, tbl))

	got, err := DeserializeMortalityTable(&buf)
	require.NoError(t, err)
	assert.Equal(t, tbl, got)
}

func TestLapseTableRoundTrip(t *testing.T) {
	flat := make([]float64, LapseYears)
	flat[5] = 0.02
	tbl, err := NewLapseTable(flat)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, SerializeLapseTable(&buf, tbl))

	got, err := DeserializeLapseTable(&buf)
	require.NoError(t, err)
	assert.Equal(t, tbl, got)
}

func TestExpenseAssumptionsRoundTrip(t *testing.T) {
	e := ExpenseAssumptions{Acquisition: 150, Maintenance: 25, PctPremium: 0.08, PerClaim: 60}

	var buf bytes.Buffer
	require.NoError(t, SerializeExpenseAssumptions(&buf, e))

	got, err := DeserializeExpenseAssumptions(&buf)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestScenarioSetRoundTrip(t *testing.T) {
	set := &ScenarioSet{Scenarios: []*Scenario{
		NewScenario(flatRates(0.03)),
		NewScenario(flatRates(0.05)),
	}}

	var buf bytes.Buffer
	require.NoError(t, SerializeScenarioSet(&buf, set))

	got, err := DeserializeScenarioSet(&buf)
	require.NoError(t, err)
	require.Equal(t, set.Len(), got.Len())
	for i := range set.Scenarios {
		assert.Equal(t, set.Scenarios[i].Rates(), got.Scenarios[i].Rates())
	}
}

func TestDeserializeScenarioSetEmpty(t *testing.T) {
	set := &ScenarioSet{}

	var buf bytes.Buffer
	require.NoError(t, SerializeScenarioSet(&buf, set))

	got, err := DeserializeScenarioSet(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestDeserializeScenarioSetTruncated(t *testing.T) {
	_, err := DeserializeScenarioSet(bytes.NewReader(nil))
	require.Error(t, err)
	var ts *TruncatedStreamError
	assert.ErrorAs(t, err, &ts)
}
