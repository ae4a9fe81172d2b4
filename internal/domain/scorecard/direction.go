package scorecard

import "github.com/shopspring/decimal"

// InferDirection derives a plan's trend direction from the shape of its
// target series for a year. It takes the first and last non-nil target in
// period order and infers Ascending when the last is greater than or equal
// to the first, Descending otherwise.
//
// This is a best-effort heuristic: a flat or noisy series can be inferred
// either way, and fewer than two non-nil targets default to Ascending.
func InferDirection(targets []*decimal.Decimal) Direction {
	var first, last *decimal.Decimal
	for _, t := range targets {
		if t == nil {
			continue
		}
		if first == nil {
			first = t
		}
		last = t
	}
	if first == nil || last == nil || first == last {
		return DirectionAscending
	}
	if last.GreaterThanOrEqual(*first) {
		return DirectionAscending
	}
	return DirectionDescending
}
