package review

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/scorecard"
	"github.com/kpiboard/backend/internal/domain/shared"
)

// Batch groups fact changes created in one user action, typically a bulk
// import for one plan-year. Approving or rejecting the batch cascades to its
// still-pending children; children resolved individually beforehand are left
// untouched and reported in the outcome.
type Batch struct {
	shared.BaseAggregateRoot
	KPIID          uuid.UUID           `json:"kpi_id"`
	PlanID         uuid.UUID           `json:"plan_id"`
	Year           int                 `json:"year"`
	Frequency      scorecard.Frequency `json:"frequency"`
	PeriodMin      int                 `json:"period_min"`
	PeriodMax      int                 `json:"period_max"`
	RowCount       int                 `json:"row_count"`
	SkippedCount   int                 `json:"skipped_count"`
	SubmittedBy    uuid.UUID           `json:"submitted_by"`
	SubmittedAt    time.Time           `json:"submitted_at"`
	ApprovalStatus ApprovalStatus      `json:"approval_status"`
	ReviewedBy     *uuid.UUID          `json:"reviewed_by"`
	ReviewedAt     *time.Time          `json:"reviewed_at"`
	RejectReason   string              `json:"reject_reason"`
}

// NewBatch creates a new pending batch header. RowCount and SkippedCount come
// from the caller's upstream validation pass: rows whose period falls outside
// the plan-year range are skipped and counted, never submitted as changes.
func NewBatch(
	kpiID, planID uuid.UUID,
	year int,
	frequency scorecard.Frequency,
	periodMin, periodMax int,
	submittedBy uuid.UUID,
	rowCount, skippedCount int,
) (*Batch, error) {
	if kpiID == uuid.Nil || planID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "KPI and plan IDs are required")
	}
	if submittedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Submitter user ID cannot be empty")
	}
	if !frequency.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Frequency is not valid")
	}
	max := frequency.PeriodsPerYear()
	if periodMin < 1 || periodMax > max || periodMin > periodMax {
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Period range [%d, %d] is not valid for %s frequency", periodMin, periodMax, frequency))
	}
	if rowCount < 0 || skippedCount < 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Row counts cannot be negative")
	}

	batch := &Batch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		KPIID:             kpiID,
		PlanID:            planID,
		Year:              year,
		Frequency:         frequency,
		PeriodMin:         periodMin,
		PeriodMax:         periodMax,
		RowCount:          rowCount,
		SkippedCount:      skippedCount,
		SubmittedBy:       submittedBy,
		SubmittedAt:       time.Now(),
		ApprovalStatus:    ApprovalStatusPending,
	}

	return batch, nil
}

// Approve marks the batch approved and stamps reviewer fields
func (b *Batch) Approve(reviewer uuid.UUID) error {
	if b.ApprovalStatus != ApprovalStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve batch in %s status", b.ApprovalStatus))
	}
	if reviewer == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Reviewer user ID cannot be empty")
	}

	now := time.Now()
	b.ApprovalStatus = ApprovalStatusApproved
	b.ReviewedBy = &reviewer
	b.ReviewedAt = &now
	b.UpdatedAt = now

	return nil
}

// Reject marks the batch rejected; a reason is required
func (b *Batch) Reject(reviewer uuid.UUID, reason string) error {
	if b.ApprovalStatus != ApprovalStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject batch in %s status", b.ApprovalStatus))
	}
	if reviewer == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Reviewer user ID cannot be empty")
	}
	if reason == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Rejection reason is required")
	}

	now := time.Now()
	b.ApprovalStatus = ApprovalStatusRejected
	b.ReviewedBy = &reviewer
	b.ReviewedAt = &now
	b.RejectReason = reason
	b.UpdatedAt = now

	return nil
}

// IsPending returns true if the batch is awaiting review
func (b *Batch) IsPending() bool {
	return b.ApprovalStatus == ApprovalStatusPending
}
