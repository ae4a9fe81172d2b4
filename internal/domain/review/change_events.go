package review

import (
	"time"

	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/shared"
)

// FactChangeSubmittedEvent is raised when a change enters the pending state
type FactChangeSubmittedEvent struct {
	shared.BaseDomainEvent
	ChangeID    uuid.UUID  `json:"change_id"`
	FactID      uuid.UUID  `json:"fact_id"`
	BatchID     *uuid.UUID `json:"batch_id,omitempty"`
	SubmittedBy uuid.UUID  `json:"submitted_by"`
	SubmittedAt time.Time  `json:"submitted_at"`
	PlanOwnerID uuid.UUID  `json:"plan_owner_id"`
	NotifyOwner bool       `json:"notify_owner"`
}

// EventType returns the event type name
func (e *FactChangeSubmittedEvent) EventType() string {
	return "FactChangeSubmitted"
}

// NewFactChangeSubmittedEvent creates a new FactChangeSubmittedEvent
func NewFactChangeSubmittedEvent(change *FactChange, planOwnerID uuid.UUID, notifyOwner bool) *FactChangeSubmittedEvent {
	return &FactChangeSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("FactChangeSubmitted", "FactChange", change.ID),
		ChangeID:        change.ID,
		FactID:          change.FactID,
		BatchID:         change.BatchID,
		SubmittedBy:     change.SubmittedBy,
		SubmittedAt:     change.SubmittedAt,
		PlanOwnerID:     planOwnerID,
		NotifyOwner:     notifyOwner,
	}
}

// FactChangeResolvedEvent is raised when a pending change is approved or
// rejected. EmailSuppressed is set for batch-driven resolutions so the
// notification dispatcher skips the individual reviewer message.
type FactChangeResolvedEvent struct {
	shared.BaseDomainEvent
	ChangeID        uuid.UUID      `json:"change_id"`
	FactID          uuid.UUID      `json:"fact_id"`
	Outcome         ApprovalStatus `json:"outcome"`
	ReviewedBy      uuid.UUID      `json:"reviewed_by"`
	ReviewedAt      time.Time      `json:"reviewed_at"`
	RejectReason    string         `json:"reject_reason,omitempty"`
	SubmittedBy     uuid.UUID      `json:"submitted_by"`
	EmailSuppressed bool           `json:"email_suppressed"`
}

// EventType returns the event type name
func (e *FactChangeResolvedEvent) EventType() string {
	return "FactChangeResolved"
}

// NewFactChangeResolvedEvent creates a new FactChangeResolvedEvent
func NewFactChangeResolvedEvent(change *FactChange, suppressed bool) *FactChangeResolvedEvent {
	var reviewedBy uuid.UUID
	if change.ReviewedBy != nil {
		reviewedBy = *change.ReviewedBy
	}
	reviewedAt := time.Now()
	if change.ReviewedAt != nil {
		reviewedAt = *change.ReviewedAt
	}
	return &FactChangeResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("FactChangeResolved", "FactChange", change.ID),
		ChangeID:        change.ID,
		FactID:          change.FactID,
		Outcome:         change.ApprovalStatus,
		ReviewedBy:      reviewedBy,
		ReviewedAt:      reviewedAt,
		RejectReason:    change.RejectReason,
		SubmittedBy:     change.SubmittedBy,
		EmailSuppressed: suppressed,
	}
}
