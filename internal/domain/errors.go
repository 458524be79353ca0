package domain

import "fmt"

// OutOfRangeError is raised by table/scenario accessors when an index is
// outside the table's populated domain (spec §4.1).
type OutOfRangeError struct {
	Table string
	Index int
	Min   int
	Max   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("domain: %s index %d out of range [%d,%d]", e.Table, e.Index, e.Min, e.Max)
}

// InvalidParametersError is raised by the scenario generator when its
// construction parameters are self-contradictory (spec §4.2).
type InvalidParametersError struct {
	Reason string
}

func (e *InvalidParametersError) Error() string {
	return "domain: invalid scenario parameters: " + e.Reason
}

// DataMalformedError is raised when an assumption table fails validation
// after resolution (wrong row count, values outside the declared range).
type DataMalformedError struct {
	Table  string
	Reason string
}

func (e *DataMalformedError) Error() string {
	return fmt.Sprintf("domain: malformed %s table: %s", e.Table, e.Reason)
}

// TruncatedStreamError is raised by the binary deserializer when the
// input ends mid-record (spec §6).
type TruncatedStreamError struct {
	Entity string
	Offset int
}

func (e *TruncatedStreamError) Error() string {
	return fmt.Sprintf("domain: truncated stream reading %s at offset %d", e.Entity, e.Offset)
}
