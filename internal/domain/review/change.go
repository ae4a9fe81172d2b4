package review

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/scorecard"
	"github.com/kpiboard/backend/internal/domain/shared"
)

// ApprovalStatus represents the review status of a stored fact change
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

// IsValid checks if the status is a valid ApprovalStatus
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of ApprovalStatus
func (s ApprovalStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the change can no longer be reviewed
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

// ChangeState is the API-visible review state of a fact, including the case
// where no change row exists at all. Storage keeps the tri-state status on
// the row; absence of a row is surfaced as StateNoChange rather than a nil.
type ChangeState string

const (
	StateNoChange ChangeState = "NO_CHANGE"
	StatePending  ChangeState = "PENDING"
	StateApproved ChangeState = "APPROVED"
	StateRejected ChangeState = "REJECTED"
)

// StateOf maps a possibly-absent change to its API-visible state
func StateOf(change *FactChange) ChangeState {
	if change == nil {
		return StateNoChange
	}
	switch change.ApprovalStatus {
	case ApprovalStatusApproved:
		return StateApproved
	case ApprovalStatusRejected:
		return StateRejected
	default:
		return StatePending
	}
}

// FactChange is a proposed, reviewable mutation to one fact. The fact is the
// authority; the change only references it. A change is created pending and
// terminates into approved (values applied to the fact, immutable afterward)
// or rejected (immutable, fact untouched).
type FactChange struct {
	shared.BaseAggregateRoot
	FactID         uuid.UUID                `json:"fact_id"`
	Proposed       scorecard.ProposedValues `json:"proposed"`
	SubmittedBy    uuid.UUID                `json:"submitted_by"`
	SubmittedAt    time.Time                `json:"submitted_at"`
	ApprovalStatus ApprovalStatus           `json:"approval_status"`
	ReviewedBy     *uuid.UUID               `json:"reviewed_by"`
	ReviewedAt     *time.Time               `json:"reviewed_at"`
	RejectReason   string                   `json:"reject_reason"`
	BatchID        *uuid.UUID               `json:"batch_id"`
}

// NewFactChange creates a new pending fact change
func NewFactChange(factID, submittedBy uuid.UUID, proposed scorecard.ProposedValues, batchID *uuid.UUID) (*FactChange, error) {
	if factID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FACT", "Fact ID cannot be empty")
	}
	if submittedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Submitter user ID cannot be empty")
	}
	if proposed.IsEmpty() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "A change must propose at least one value")
	}
	if proposed.Status != nil && !proposed.Status.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Proposed status code is not valid")
	}

	change := &FactChange{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FactID:            factID,
		Proposed:          proposed,
		SubmittedBy:       submittedBy,
		SubmittedAt:       time.Now(),
		ApprovalStatus:    ApprovalStatusPending,
		BatchID:           batchID,
	}

	return change, nil
}

// Approve marks the change approved and stamps the reviewer fields. The
// caller is responsible for applying the proposed values to the fact.
func (c *FactChange) Approve(reviewer uuid.UUID) error {
	if c.ApprovalStatus != ApprovalStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve change in %s status", c.ApprovalStatus))
	}
	if reviewer == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Reviewer user ID cannot be empty")
	}

	now := time.Now()
	c.ApprovalStatus = ApprovalStatusApproved
	c.ReviewedBy = &reviewer
	c.ReviewedAt = &now
	c.UpdatedAt = now

	return nil
}

// Reject marks the change rejected. The underlying fact is never touched.
func (c *FactChange) Reject(reviewer uuid.UUID, reason string) error {
	if c.ApprovalStatus != ApprovalStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject change in %s status", c.ApprovalStatus))
	}
	if reviewer == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Reviewer user ID cannot be empty")
	}
	if reason == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Rejection reason is required")
	}

	now := time.Now()
	c.ApprovalStatus = ApprovalStatusRejected
	c.ReviewedBy = &reviewer
	c.ReviewedAt = &now
	c.RejectReason = reason
	c.UpdatedAt = now

	return nil
}

// IsPending returns true if the change is awaiting review
func (c *FactChange) IsPending() bool {
	return c.ApprovalStatus == ApprovalStatusPending
}

// IsApproved returns true if the change has been approved
func (c *FactChange) IsApproved() bool {
	return c.ApprovalStatus == ApprovalStatusApproved
}

// IsRejected returns true if the change has been rejected
func (c *FactChange) IsRejected() bool {
	return c.ApprovalStatus == ApprovalStatusRejected
}
