package domain

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Binary (de)serialization per spec §6: little-endian, fixed-width
// records, a leading uint32 count for collections. Readers report
// TruncatedStreamError (not io.EOF) when the stream ends mid-record, so
// callers can distinguish "clean end of collection" from "corrupt file".

func writeU64(w io.Writer, v uint64) error { return binary.Write(w, binary.LittleEndian, v) }
func writeU32(w io.Writer, v uint32) error { return binary.Write(w, binary.LittleEndian, v) }
func writeU8(w io.Writer, v uint8) error   { return binary.Write(w, binary.LittleEndian, v) }
func writeF64(w io.Writer, v float64) error {
	return binary.Write(w, binary.LittleEndian, math.Float64bits(v))
}

func readFull(r io.Reader, buf []byte, entity string, offset int) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		return &TruncatedStreamError{Entity: entity, Offset: offset}
	}
	return nil
}

func readU64(r io.Reader, entity string, offset int) (uint64, error) {
	var buf [8]byte
	if err := readFull(r, buf[:], entity, offset); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func readU32(r io.Reader, entity string, offset int) (uint32, error) {
	var buf [4]byte
	if err := readFull(r, buf[:], entity, offset); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readU8(r io.Reader, entity string, offset int) (uint8, error) {
	var buf [1]byte
	if err := readFull(r, buf[:], entity, offset); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func readF64(r io.Reader, entity string, offset int) (float64, error) {
	bits, err := readU64(r, entity, offset)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

func writeString(w io.Writer, s string) error {
	if err := writeU32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader, entity string, offset int) (string, error) {
	n, err := readU32(r, entity, offset)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if err := readFull(r, buf, entity, offset+4); err != nil {
		return "", err
	}
	return string(buf), nil
}

// SerializePolicy writes one Policy as: u64 id, u8 age, u8 gender,
// f64 sum_assured, f64 premium, u8 term, u8 product_type,
// u8 underwriting_class, then a u32 count of (key,value) attribute pairs,
// each length-prefixed.
func SerializePolicy(w io.Writer, p Policy) error {
	if err := writeU64(w, p.PolicyID); err != nil {
		return err
	}
	if err := writeU8(w, uint8(p.EntryAge)); err != nil {
		return err
	}
	if err := writeU8(w, uint8(p.Gender)); err != nil {
		return err
	}
	if err := writeF64(w, p.SumAssured); err != nil {
		return err
	}
	if err := writeF64(w, p.AnnualPremium); err != nil {
		return err
	}
	if err := writeU8(w, uint8(p.Term)); err != nil {
		return err
	}
	if err := writeU8(w, uint8(p.ProductType)); err != nil {
		return err
	}
	if err := writeU8(w, uint8(p.UnderwritingClass)); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(p.Attributes))); err != nil {
		return err
	}
	for k, v := range p.Attributes {
		if err := writeString(w, k); err != nil {
			return err
		}
		if err := writeString(w, v); err != nil {
			return err
		}
	}
	return nil
}

// DeserializePolicy reads one Policy written by SerializePolicy.
func DeserializePolicy(r io.Reader) (Policy, error) {
	var p Policy
	id, err := readU64(r, "policy", 0)
	if err != nil {
		return p, err
	}
	age, err := readU8(r, "policy", 8)
	if err != nil {
		return p, err
	}
	gender, err := readU8(r, "policy", 9)
	if err != nil {
		return p, err
	}
	sumAssured, err := readF64(r, "policy", 10)
	if err != nil {
		return p, err
	}
	premium, err := readF64(r, "policy", 18)
	if err != nil {
		return p, err
	}
	term, err := readU8(r, "policy", 26)
	if err != nil {
		return p, err
	}
	productType, err := readU8(r, "policy", 27)
	if err != nil {
		return p, err
	}
	uwClass, err := readU8(r, "policy", 28)
	if err != nil {
		return p, err
	}
	attrCount, err := readU32(r, "policy", 29)
	if err != nil {
		return p, err
	}
	var attrs map[string]string
	if attrCount > 0 {
		attrs = make(map[string]string, attrCount)
		for i := uint32(0); i < attrCount; i++ {
			k, err := readString(r, "policy", 33)
			if err != nil {
				return p, err
			}
			v, err := readString(r, "policy", 33)
			if err != nil {
				return p, err
			}
			attrs[k] = v
		}
	}
	p = Policy{
		PolicyID:          id,
		EntryAge:          int(age),
		Gender:            Gender(gender),
		SumAssured:        sumAssured,
		AnnualPremium:     premium,
		Term:              int(term),
		ProductType:       ProductType(productType),
		UnderwritingClass: UnderwritingClass(uwClass),
		Attributes:        attrs,
	}
	return p, nil
}

// SerializePolicies writes a u32 count followed by each Policy record.
func SerializePolicies(w io.Writer, policies []Policy) error {
	if err := writeU32(w, uint32(len(policies))); err != nil {
		return err
	}
	for _, p := range policies {
		if err := SerializePolicy(w, p); err != nil {
			return err
		}
	}
	return nil
}

// DeserializePolicies reads a collection written by SerializePolicies.
func DeserializePolicies(r io.Reader) ([]Policy, error) {
	n, err := readU32(r, "policies", 0)
	if err != nil {
		return nil, err
	}
	out := make([]Policy, 0, n)
	for i := uint32(0); i < n; i++ {
		p, err := DeserializePolicy(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// SerializeMortalityTable writes the dense 242-value grid in
// (Male 0..120, Female 0..120) order.
func SerializeMortalityTable(w io.Writer, t *MortalityTable) error {
	for _, q := range t.values {
		if err := writeF64(w, q); err != nil {
			return err
		}
	}
	return nil
}

// DeserializeMortalityTable reads a table written by SerializeMortalityTable.
func DeserializeMortalityTable(r io.Reader) (*MortalityTable, error) {
	flat := make([]float64, MortalityAges*2)
	for i := range flat {
		v, err := readF64(r, "mortality", i*8)
		if err != nil {
			return nil, err
		}
		flat[i] = v
	}
	return NewMortalityTable(flat)
}

// SerializeLapseTable writes the dense 50-value vector for years 1..50.
func SerializeLapseTable(w io.Writer, t *LapseTable) error {
	for _, r := range t.values {
		if err := writeF64(w, r); err != nil {
			return err
		}
	}
	return nil
}

// DeserializeLapseTable reads a table written by SerializeLapseTable.
func DeserializeLapseTable(r io.Reader) (*LapseTable, error) {
	flat := make([]float64, LapseYears)
	for i := range flat {
		v, err := readF64(r, "lapse", i*8)
		if err != nil {
			return nil, err
		}
		flat[i] = v
	}
	return NewLapseTable(flat)
}

// SerializeExpenseAssumptions writes the four scalars in declaration order.
func SerializeExpenseAssumptions(w io.Writer, e ExpenseAssumptions) error {
	for _, v := range []float64{e.Acquisition, e.Maintenance, e.PctPremium, e.PerClaim} {
		if err := writeF64(w, v); err != nil {
			return err
		}
	}
	return nil
}

// DeserializeExpenseAssumptions reads the record written by
// SerializeExpenseAssumptions.
func DeserializeExpenseAssumptions(r io.Reader) (ExpenseAssumptions, error) {
	vals := make([]float64, 4)
	for i := range vals {
		v, err := readF64(r, "expenses", i*8)
		if err != nil {
			return ExpenseAssumptions{}, err
		}
		vals[i] = v
	}
	return ExpenseAssumptions{Acquisition: vals[0], Maintenance: vals[1], PctPremium: vals[2], PerClaim: vals[3]}, nil
}

// SerializeScenarioSet writes a u32 count followed by each scenario's
// dense 50-value rate vector.
func SerializeScenarioSet(w io.Writer, set *ScenarioSet) error {
	if err := writeU32(w, uint32(set.Len())); err != nil {
		return err
	}
	for _, s := range set.Scenarios {
		rates := s.Rates()
		for _, v := range rates {
			if err := writeF64(w, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeserializeScenarioSet reads a collection written by SerializeScenarioSet.
func DeserializeScenarioSet(r io.Reader) (*ScenarioSet, error) {
	n, err := readU32(r, "scenarios", 0)
	if err != nil {
		return nil, err
	}
	out := &ScenarioSet{Scenarios: make([]*Scenario, 0, n)}
	for i := uint32(0); i < n; i++ {
		var rates [ScenarioYears]float64
		for y := range rates {
			v, err := readF64(r, fmt.Sprintf("scenario[%d]", i), y*8)
			if err != nil {
				return nil, err
			}
			rates[y] = v
		}
		out.Scenarios = append(out.Scenarios, NewScenario(rates))
	}
	return out, nil
}
