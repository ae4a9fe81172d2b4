package scorecard

import "github.com/shopspring/decimal"

// Status is the categorical health label stored per fact
type Status string

const (
	StatusOnTarget       Status = "ON_TARGET"       // Actual meets target (or forecast)
	StatusBehind         Status = "BEHIND"          // Actual misses target (or forecast)
	StatusNeedsAttention Status = "NEEDS_ATTENTION" // No reference value to judge against
	StatusDataMissing    Status = "DATA_MISSING"    // Period is due but no actual reported
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusOnTarget, StatusBehind, StatusNeedsAttention, StatusDataMissing:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Direction indicates whether higher or lower values represent better performance
type Direction string

const (
	DirectionAscending  Direction = "ASCENDING"  // Higher is better
	DirectionDescending Direction = "DESCENDING" // Lower is better
)

// IsValid checks if the direction is a valid Direction
func (d Direction) IsValid() bool {
	return d == DirectionAscending || d == DirectionDescending
}

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// DefaultTolerance is the absolute epsilon used when comparing computed
// decimal values so rounding noise cannot flip a status.
var DefaultTolerance = decimal.NewFromFloat(0.0001)

// EvaluationInput carries everything Evaluate needs to judge one fact
type EvaluationInput struct {
	Actual    *decimal.Decimal
	Target    *decimal.Decimal
	Forecast  *decimal.Decimal
	IsDue     bool
	Direction Direction
	Tolerance decimal.Decimal
}

// Evaluate derives the health status for one fact. The second return value
// is false when the stored status must be left untouched (the period has not
// come due yet and no actual has been reported).
//
// Priority order:
//  1. no actual: DataMissing when due, otherwise unchanged
//  2. compare against target when present
//  3. compare against forecast when present
//  4. NeedsAttention when there is nothing to compare against
func Evaluate(in EvaluationInput) (Status, bool) {
	tolerance := in.Tolerance
	if tolerance.IsZero() {
		tolerance = DefaultTolerance
	}

	if in.Actual == nil {
		if in.IsDue {
			return StatusDataMissing, true
		}
		return "", false
	}

	if in.Target != nil {
		if meetsReference(*in.Actual, *in.Target, in.Direction, tolerance) {
			return StatusOnTarget, true
		}
		return StatusBehind, true
	}

	if in.Forecast != nil {
		if meetsReference(*in.Actual, *in.Forecast, in.Direction, tolerance) {
			return StatusOnTarget, true
		}
		return StatusBehind, true
	}

	return StatusNeedsAttention, true
}

// meetsReference compares actual against a reference value in the given
// direction, with an absolute tolerance.
func meetsReference(actual, reference decimal.Decimal, direction Direction, tolerance decimal.Decimal) bool {
	if direction == DirectionDescending {
		return actual.LessThanOrEqual(reference.Add(tolerance))
	}
	return actual.GreaterThanOrEqual(reference.Sub(tolerance))
}
