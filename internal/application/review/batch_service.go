package review

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/review"
	"github.com/kpiboard/backend/internal/domain/scorecard"
	"github.com/kpiboard/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ChangeResolver resolves individual changes on behalf of a batch review
type ChangeResolver interface {
	Approve(ctx context.Context, changeID, reviewer uuid.UUID, suppressEmail bool) error
	Reject(ctx context.Context, changeID, reviewer uuid.UUID, reason string, suppressEmail bool) error
}

// BatchService groups fact changes submitted together into one reviewable
// unit. Resolving a batch cascades to its still-pending children; children
// already resolved individually are left untouched and reported.
type BatchService struct {
	batchRepo  review.BatchRepository
	changeRepo review.FactChangeRepository
	planRepo   scorecard.PlanRepository
	resolver   ChangeResolver
	audit      review.AuditRecorder
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewBatchService creates a new BatchService
func NewBatchService(
	batchRepo review.BatchRepository,
	changeRepo review.FactChangeRepository,
	planRepo scorecard.PlanRepository,
	resolver ChangeResolver,
	audit review.AuditRecorder,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *BatchService {
	return &BatchService{
		batchRepo:  batchRepo,
		changeRepo: changeRepo,
		planRepo:   planRepo,
		resolver:   resolver,
		audit:      audit,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateBatchRequest represents a request to record a batch header
type CreateBatchRequest struct {
	KPIID        uuid.UUID           `json:"kpi_id"`
	PlanID       uuid.UUID           `json:"plan_id"`
	Year         int                 `json:"year"`
	Frequency    scorecard.Frequency `json:"frequency"`
	PeriodMin    int                 `json:"period_min"`
	PeriodMax    int                 `json:"period_max"`
	SubmittedBy  uuid.UUID           `json:"-"`
	CreatedCount int                 `json:"created_count"`
	SkippedCount int                 `json:"skipped_count"`
}

// BatchResponse represents a batch in API responses
type BatchResponse struct {
	ID             uuid.UUID             `json:"id"`
	KPIID          uuid.UUID             `json:"kpi_id"`
	PlanID         uuid.UUID             `json:"plan_id"`
	Year           int                   `json:"year"`
	Frequency      scorecard.Frequency   `json:"frequency"`
	PeriodMin      int                   `json:"period_min"`
	PeriodMax      int                   `json:"period_max"`
	RowCount       int                   `json:"row_count"`
	SkippedCount   int                   `json:"skipped_count"`
	ApprovalStatus review.ApprovalStatus `json:"approval_status"`
	SubmittedBy    uuid.UUID             `json:"submitted_by"`
	SubmittedAt    time.Time             `json:"submitted_at"`
	ReviewedBy     *uuid.UUID            `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time            `json:"reviewed_at,omitempty"`
	RejectReason   string                `json:"reject_reason,omitempty"`
}

// CreateBatch records a new pending batch header. The created and skipped
// counts come from the caller's upstream validation pass over the import
// rows; skipped rows were excluded before any change was submitted.
func (s *BatchService) CreateBatch(ctx context.Context, req CreateBatchRequest) (*BatchResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	batch, err := review.NewBatch(
		req.KPIID, req.PlanID, req.Year, req.Frequency,
		req.PeriodMin, req.PeriodMax, req.SubmittedBy,
		req.CreatedCount, req.SkippedCount,
	)
	if err != nil {
		return nil, err
	}

	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, review.AuditEntry{
		TableName:    "batches",
		KeyJSON:      keyJSON(batch.ID),
		Action:       review.AuditActionAdded,
		ChangedBy:    req.SubmittedBy,
		ChangedAtUTC: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, review.NewBatchSubmittedEvent(batch, plan.OwnerID))

	return toBatchResponse(batch), nil
}

// GetBatch returns one batch header
func (s *BatchService) GetBatch(ctx context.Context, batchID uuid.UUID) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	return toBatchResponse(batch), nil
}

// ListPending returns all batches awaiting review
func (s *BatchService) ListPending(ctx context.Context) ([]BatchResponse, error) {
	batches, err := s.batchRepo.FindPending(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]BatchResponse, len(batches))
	for i := range batches {
		responses[i] = *toBatchResponse(&batches[i])
	}
	return responses, nil
}

// ApproveBatch approves every still-pending child of the batch. A child that
// fails does not abort the rest: the failure is recorded in the batch audit
// trail and the batch is still marked approved, with the anomaly surfaced in
// the outcome for operator follow-up. One consolidated notification is sent.
func (s *BatchService) ApproveBatch(ctx context.Context, batchID, reviewer uuid.UUID) (*review.BatchOutcome, error) {
	return s.resolveBatch(ctx, batchID, reviewer, "", review.ApprovalStatusApproved)
}

// RejectBatch rejects every still-pending child with the given reason.
// The reason is required; the underlying facts are never touched.
func (s *BatchService) RejectBatch(ctx context.Context, batchID, reviewer uuid.UUID, reason string) (*review.BatchOutcome, error) {
	if reason == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Rejection reason is required")
	}
	return s.resolveBatch(ctx, batchID, reviewer, reason, review.ApprovalStatusRejected)
}

// resolveBatch runs the cascading child resolution shared by approve and
// reject. On cancellation mid-batch, already-resolved children stay resolved
// and the header is left pending with the partial outcome in the audit trail.
func (s *BatchService) resolveBatch(
	ctx context.Context,
	batchID, reviewer uuid.UUID,
	reason string,
	outcome review.ApprovalStatus,
) (*review.BatchOutcome, error) {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if !batch.IsPending() {
		return nil, shared.NewDomainError("INVALID_STATE", "Batch has already been resolved")
	}

	children, err := s.changeRepo.FindPendingByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	results := make([]review.ChildResult, 0, len(children))
	var cancelled error
	for i := range children {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		child := &children[i]
		var resolveErr error
		if outcome == review.ApprovalStatusApproved {
			resolveErr = s.resolver.Approve(ctx, child.ID, reviewer, true)
		} else {
			resolveErr = s.resolver.Reject(ctx, child.ID, reviewer, reason, true)
		}
		results = append(results, review.ChildResult{
			ChangeID: child.ID,
			Resolved: resolveErr == nil,
			Err:      resolveErr,
		})
	}

	summary := review.FoldOutcome(batchID, outcome, results)
	if len(results) != len(children) {
		// Cancelled partway: the unprocessed children are still pending.
		summary.Requested = len(children)
	}

	if cancelled != nil {
		// The cancelled context would fail the INSERT; the partial-progress
		// entry must still land so the operator sees the true child counts.
		s.recordBatchAudit(context.WithoutCancel(ctx), batch, reviewer, summary, true)
		return &summary, cancelled
	}

	if outcome == review.ApprovalStatusApproved {
		err = batch.Approve(reviewer)
	} else {
		err = batch.Reject(reviewer, reason)
	}
	if err != nil {
		return nil, err
	}
	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return nil, err
	}
	s.recordBatchAudit(ctx, batch, reviewer, summary, false)

	s.publish(ctx, review.NewBatchResolvedEvent(batch, summary))

	return &summary, nil
}

// recordBatchAudit appends the batch outcome, including any per-child
// failures or a partial-cancellation marker, to the audit trail. Audit
// problems at this point are logged rather than failing a resolution that
// has already been applied to the children.
func (s *BatchService) recordBatchAudit(ctx context.Context, batch *review.Batch, reviewer uuid.UUID, summary review.BatchOutcome, partial bool) {
	payload := struct {
		review.BatchOutcome
		Partial bool `json:"partial,omitempty"`
	}{BatchOutcome: summary, Partial: partial}

	buf, err := json.Marshal(payload)
	if err != nil {
		buf = []byte("{}")
	}
	if err := s.audit.Record(ctx, review.AuditEntry{
		TableName:         "batches",
		KeyJSON:           keyJSON(batch.ID),
		Action:            review.AuditActionModified,
		ChangedBy:         reviewer,
		ChangedAtUTC:      time.Now().UTC(),
		ColumnChangesJSON: string(buf),
	}); err != nil {
		s.logger.Error("failed to record batch audit entry",
			zap.String("batch_id", batch.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *BatchService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish batch events", zap.Error(err))
	}
}

func toBatchResponse(batch *review.Batch) *BatchResponse {
	return &BatchResponse{
		ID:             batch.ID,
		KPIID:          batch.KPIID,
		PlanID:         batch.PlanID,
		Year:           batch.Year,
		Frequency:      batch.Frequency,
		PeriodMin:      batch.PeriodMin,
		PeriodMax:      batch.PeriodMax,
		RowCount:       batch.RowCount,
		SkippedCount:   batch.SkippedCount,
		ApprovalStatus: batch.ApprovalStatus,
		SubmittedBy:    batch.SubmittedBy,
		SubmittedAt:    batch.SubmittedAt,
		ReviewedBy:     batch.ReviewedBy,
		ReviewedAt:     batch.ReviewedAt,
		RejectReason:   batch.RejectReason,
	}
}
