package review

import "github.com/google/uuid"

// ChildResult is the result of resolving one child change during a batch
// review. The batch loop collects one of these per child instead of mutating
// shared counters, then folds the slice into a BatchOutcome.
type ChildResult struct {
	ChangeID uuid.UUID
	Resolved bool
	Err      error
}

// BatchOutcome summarizes a batch resolution for the operator. Requested is
// the number of still-pending children at review time, not the original row
// count; a discrepancy between the two means some children were already
// resolved individually and is surfaced through the audit trail.
type BatchOutcome struct {
	BatchID   uuid.UUID      `json:"batch_id"`
	Outcome   ApprovalStatus `json:"outcome"`
	Requested int            `json:"requested"`
	Resolved  int            `json:"resolved"`
	Failed    int            `json:"failed"`
	Failures  []ChildFailure `json:"failures,omitempty"`
}

// ChildFailure records one child that could not be resolved
type ChildFailure struct {
	ChangeID uuid.UUID `json:"change_id"`
	Reason   string    `json:"reason"`
}

// FoldOutcome aggregates per-child results into a batch outcome
func FoldOutcome(batchID uuid.UUID, outcome ApprovalStatus, results []ChildResult) BatchOutcome {
	summary := BatchOutcome{
		BatchID:   batchID,
		Outcome:   outcome,
		Requested: len(results),
	}
	for _, r := range results {
		if r.Resolved {
			summary.Resolved++
			continue
		}
		summary.Failed++
		reason := "unknown failure"
		if r.Err != nil {
			reason = r.Err.Error()
		}
		summary.Failures = append(summary.Failures, ChildFailure{ChangeID: r.ChangeID, Reason: reason})
	}
	return summary
}
