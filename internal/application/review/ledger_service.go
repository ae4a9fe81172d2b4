package review

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/review"
	"github.com/kpiboard/backend/internal/domain/scorecard"
	"github.com/kpiboard/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StatusRecomputer re-derives statuses after an approved change lands
type StatusRecomputer interface {
	RecomputePlanYear(ctx context.Context, planID uuid.UUID, year int) error
}

// LedgerConfig carries the workflow settings the ledger reads once per
// operation. TargetEditEnabled replaces the old process-wide edit toggle.
type LedgerConfig struct {
	TargetEditEnabled bool
}

// ChangeLedgerService manages the lifecycle of proposed changes to single
// facts: submit, approve, reject, with at-most-one-pending-per-fact.
type ChangeLedgerService struct {
	txScope    TransactionScope
	changeRepo review.FactChangeRepository
	factRepo   scorecard.FactRepository
	planRepo   scorecard.PlanRepository
	recomputer StatusRecomputer
	publisher  shared.EventPublisher
	logger     *zap.Logger
	cfg        LedgerConfig
}

// NewChangeLedgerService creates a new ChangeLedgerService
func NewChangeLedgerService(
	txScope TransactionScope,
	changeRepo review.FactChangeRepository,
	factRepo scorecard.FactRepository,
	planRepo scorecard.PlanRepository,
	recomputer StatusRecomputer,
	publisher shared.EventPublisher,
	logger *zap.Logger,
	cfg LedgerConfig,
) *ChangeLedgerService {
	return &ChangeLedgerService{
		txScope:    txScope,
		changeRepo: changeRepo,
		factRepo:   factRepo,
		planRepo:   planRepo,
		recomputer: recomputer,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}

// SubmitChangeRequest represents a request to propose new values for a fact
type SubmitChangeRequest struct {
	FactID      uuid.UUID                `json:"fact_id"`
	Proposed    scorecard.ProposedValues `json:"proposed"`
	SubmittedBy uuid.UUID                `json:"-"`
	NotifyOwner bool                     `json:"notify_owner"`
	BatchID     *uuid.UUID               `json:"batch_id,omitempty"`
}

// ChangeResponse represents a fact change in API responses
type ChangeResponse struct {
	ID           uuid.UUID                `json:"id"`
	FactID       uuid.UUID                `json:"fact_id"`
	State        review.ChangeState       `json:"state"`
	Proposed     scorecard.ProposedValues `json:"proposed"`
	SubmittedBy  uuid.UUID                `json:"submitted_by"`
	SubmittedAt  time.Time                `json:"submitted_at"`
	ReviewedBy   *uuid.UUID               `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time               `json:"reviewed_at,omitempty"`
	RejectReason string                   `json:"reject_reason,omitempty"`
	BatchID      *uuid.UUID               `json:"batch_id,omitempty"`
}

// HasPending reports whether a pending change exists for the fact
func (s *ChangeLedgerService) HasPending(ctx context.Context, factID uuid.UUID) (bool, error) {
	return s.changeRepo.HasPending(ctx, factID)
}

// GetState returns the API-visible review state of a fact, including
// NO_CHANGE when no change row exists for it.
func (s *ChangeLedgerService) GetState(ctx context.Context, factID uuid.UUID) (review.ChangeState, *ChangeResponse, error) {
	change, err := s.changeRepo.FindLatestByFact(ctx, factID)
	if err != nil {
		return "", nil, err
	}
	state := review.StateOf(change)
	if change == nil {
		return state, nil, nil
	}
	return state, toChangeResponse(change), nil
}

// Submit proposes new values for a fact. Fails with ALREADY_PENDING when an
// unresolved change already exists; the check and insert are atomic so two
// concurrent submissions cannot both succeed.
func (s *ChangeLedgerService) Submit(ctx context.Context, req SubmitChangeRequest) (*ChangeResponse, error) {
	fact, err := s.factRepo.FindByID(ctx, req.FactID)
	if err != nil {
		return nil, err
	}
	if !fact.IsActive {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot submit a change for an inactive fact")
	}
	if req.Proposed.Target != nil && !s.cfg.TargetEditEnabled {
		return nil, shared.NewDomainError("TARGET_EDIT_DISABLED", "Target values are not editable")
	}

	plan, err := s.planRepo.FindByID(ctx, fact.PlanID)
	if err != nil {
		return nil, err
	}

	change, err := review.NewFactChange(req.FactID, req.SubmittedBy, req.Proposed, req.BatchID)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ChangeRepo().CreatePending(ctx, change); err != nil {
			return err
		}
		return repos.Audit().Record(ctx, review.AuditEntry{
			TableName:    "fact_changes",
			KeyJSON:      keyJSON(change.ID),
			Action:       review.AuditActionAdded,
			ChangedBy:    req.SubmittedBy,
			ChangedAtUTC: time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, review.NewFactChangeSubmittedEvent(change, plan.OwnerID, req.NotifyOwner))

	return toChangeResponse(change), nil
}

// Approve resolves a pending change: the proposed values are copied onto the
// fact, the change is marked approved and the plan-year statuses are
// recomputed. suppressEmail skips the individual submitter notification so a
// batch review can send one consolidated message instead.
func (s *ChangeLedgerService) Approve(ctx context.Context, changeID, reviewer uuid.UUID, suppressEmail bool) error {
	var (
		change *review.FactChange
		fact   *scorecard.Fact
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		change, err = repos.ChangeRepo().FindByID(ctx, changeID)
		if err != nil {
			return err
		}
		if err := change.Approve(reviewer); err != nil {
			return err
		}

		fact, err = repos.FactRepo().FindByID(ctx, change.FactID)
		if err != nil {
			return err
		}
		before := *fact
		if err := fact.ApplyChange(change.Proposed, change.SubmittedBy); err != nil {
			return err
		}

		if err := repos.FactRepo().Save(ctx, fact); err != nil {
			return err
		}
		if err := repos.ChangeRepo().Save(ctx, change); err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := repos.Audit().Record(ctx, review.AuditEntry{
			TableName:         "facts",
			KeyJSON:           keyJSON(fact.ID),
			Action:            review.AuditActionModified,
			ChangedBy:         reviewer,
			ChangedAtUTC:      now,
			ColumnChangesJSON: factColumnChanges(&before, fact),
		}); err != nil {
			return err
		}
		return repos.Audit().Record(ctx, review.AuditEntry{
			TableName:         "fact_changes",
			KeyJSON:           keyJSON(change.ID),
			Action:            review.AuditActionModified,
			ChangedBy:         reviewer,
			ChangedAtUTC:      now,
			ColumnChangesJSON: statusTransitionJSON(review.ApprovalStatusPending, review.ApprovalStatusApproved),
		})
	})
	if err != nil {
		return err
	}

	plan, err := s.planRepo.FindByID(ctx, fact.PlanID)
	if err != nil {
		return err
	}
	if err := s.recomputer.RecomputePlanYear(ctx, plan.ID, plan.Year); err != nil {
		return err
	}

	s.publish(ctx, review.NewFactChangeResolvedEvent(change, suppressEmail))
	s.publish(ctx, fact.GetDomainEvents()...)
	fact.ClearDomainEvents()

	return nil
}

// Reject resolves a pending change without touching the fact. An empty
// reason fails with VALIDATION_ERROR and leaves the change pending.
func (s *ChangeLedgerService) Reject(ctx context.Context, changeID, reviewer uuid.UUID, reason string, suppressEmail bool) error {
	var change *review.FactChange

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		change, err = repos.ChangeRepo().FindByID(ctx, changeID)
		if err != nil {
			return err
		}
		if err := change.Reject(reviewer, reason); err != nil {
			return err
		}
		if err := repos.ChangeRepo().Save(ctx, change); err != nil {
			return err
		}
		return repos.Audit().Record(ctx, review.AuditEntry{
			TableName:         "fact_changes",
			KeyJSON:           keyJSON(change.ID),
			Action:            review.AuditActionModified,
			ChangedBy:         reviewer,
			ChangedAtUTC:      time.Now().UTC(),
			ColumnChangesJSON: statusTransitionJSON(review.ApprovalStatusPending, review.ApprovalStatusRejected),
		})
	})
	if err != nil {
		return err
	}

	s.publish(ctx, review.NewFactChangeResolvedEvent(change, suppressEmail))

	return nil
}

// publish forwards domain events; publishing failures are logged, never
// propagated, since the workflow operation itself has already committed.
func (s *ChangeLedgerService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish workflow events", zap.Error(err))
	}
}

func toChangeResponse(change *review.FactChange) *ChangeResponse {
	return &ChangeResponse{
		ID:           change.ID,
		FactID:       change.FactID,
		State:        review.StateOf(change),
		Proposed:     change.Proposed,
		SubmittedBy:  change.SubmittedBy,
		SubmittedAt:  change.SubmittedAt,
		ReviewedBy:   change.ReviewedBy,
		ReviewedAt:   change.ReviewedAt,
		RejectReason: change.RejectReason,
		BatchID:      change.BatchID,
	}
}

func keyJSON(id uuid.UUID) string {
	return fmt.Sprintf(`{"id":%q}`, id.String())
}

type columnChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// factColumnChanges builds the per-column old/new JSON for a fact mutation
func factColumnChanges(before, after *scorecard.Fact) string {
	changes := make(map[string]columnChange)
	addDecimalChange(changes, "actual", before.Actual, after.Actual)
	addDecimalChange(changes, "target", before.Target, after.Target)
	addDecimalChange(changes, "forecast", before.Forecast, after.Forecast)
	if !statusPtrEqual(before.Status, after.Status) {
		changes["status"] = columnChange{Old: statusPtrString(before.Status), New: statusPtrString(after.Status)}
	}
	buf, err := json.Marshal(changes)
	if err != nil {
		return "{}"
	}
	return string(buf)
}

func addDecimalChange(changes map[string]columnChange, column string, before, after *decimal.Decimal) {
	if decimalPtrEqual(before, after) {
		return
	}
	changes[column] = columnChange{Old: decimalPtrString(before), New: decimalPtrString(after)}
}

func statusTransitionJSON(from, to review.ApprovalStatus) string {
	return fmt.Sprintf(`{"approval_status":{"old":%q,"new":%q}}`, from, to)
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func decimalPtrString(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func statusPtrEqual(a, b *scorecard.Status) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func statusPtrString(s *scorecard.Status) any {
	if s == nil {
		return nil
	}
	return s.String()
}
