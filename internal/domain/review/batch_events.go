package review

import (
	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/shared"
)

// BatchSubmittedEvent is raised when a batch header is created. Children are
// submitted with owner notification suppressed; this event drives the single
// consolidated pending-approval message instead.
type BatchSubmittedEvent struct {
	shared.BaseDomainEvent
	BatchID     uuid.UUID `json:"batch_id"`
	PlanID      uuid.UUID `json:"plan_id"`
	SubmittedBy uuid.UUID `json:"submitted_by"`
	PlanOwnerID uuid.UUID `json:"plan_owner_id"`
	RowCount    int       `json:"row_count"`
	SkippedCount int      `json:"skipped_count"`
}

// EventType returns the event type name
func (e *BatchSubmittedEvent) EventType() string {
	return "BatchSubmitted"
}

// NewBatchSubmittedEvent creates a new BatchSubmittedEvent
func NewBatchSubmittedEvent(batch *Batch, planOwnerID uuid.UUID) *BatchSubmittedEvent {
	return &BatchSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BatchSubmitted", "Batch", batch.ID),
		BatchID:         batch.ID,
		PlanID:          batch.PlanID,
		SubmittedBy:     batch.SubmittedBy,
		PlanOwnerID:     planOwnerID,
		RowCount:        batch.RowCount,
		SkippedCount:    batch.SkippedCount,
	}
}

// BatchResolvedEvent is raised once per batch review, after the children have
// been processed. It drives the single consolidated notification.
type BatchResolvedEvent struct {
	shared.BaseDomainEvent
	BatchID     uuid.UUID    `json:"batch_id"`
	SubmittedBy uuid.UUID    `json:"submitted_by"`
	ReviewedBy  uuid.UUID    `json:"reviewed_by"`
	Summary     BatchOutcome `json:"summary"`
}

// EventType returns the event type name
func (e *BatchResolvedEvent) EventType() string {
	return "BatchResolved"
}

// NewBatchResolvedEvent creates a new BatchResolvedEvent
func NewBatchResolvedEvent(batch *Batch, summary BatchOutcome) *BatchResolvedEvent {
	var reviewedBy uuid.UUID
	if batch.ReviewedBy != nil {
		reviewedBy = *batch.ReviewedBy
	}
	return &BatchResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BatchResolved", "Batch", batch.ID),
		BatchID:         batch.ID,
		SubmittedBy:     batch.SubmittedBy,
		ReviewedBy:      reviewedBy,
		Summary:         summary,
	}
}
