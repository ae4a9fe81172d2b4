package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/review"
	"github.com/kpiboard/backend/internal/domain/shared"
	"github.com/kpiboard/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFactChangeRepository implements FactChangeRepository using GORM
type GormFactChangeRepository struct {
	db *gorm.DB
}

// NewGormFactChangeRepository creates a new GormFactChangeRepository
func NewGormFactChangeRepository(db *gorm.DB) *GormFactChangeRepository {
	return &GormFactChangeRepository{db: db}
}

// FindByID finds a fact change by its ID
func (r *GormFactChangeRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.FactChange, error) {
	var model models.FactChangeModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLatestByFact returns the most recently submitted change for a fact,
// or nil when no change row exists at all.
func (r *GormFactChangeRepository) FindLatestByFact(ctx context.Context, factID uuid.UUID) (*review.FactChange, error) {
	var model models.FactChangeModel
	err := r.db.WithContext(ctx).
		Where("fact_id = ?", factID).
		Order("submitted_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// HasPending reports whether a pending change exists for the fact
func (r *GormFactChangeRepository) HasPending(ctx context.Context, factID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FactChangeModel{}).
		Where("fact_id = ? AND approval_status = ?", factID, review.ApprovalStatusPending.String()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreatePending inserts a new pending change if and only if no other pending
// change exists for the same fact. The application-level existence check gives
// a friendly error on the common path; the partial unique index
// idx_fact_changes_one_pending closes the race window between check and insert.
func (r *GormFactChangeRepository) CreatePending(ctx context.Context, change *review.FactChange) error {
	if !change.IsPending() {
		return shared.NewDomainError("INVALID_STATE", "CreatePending requires a pending change")
	}

	exists, err := r.HasPending(ctx, change.FactID)
	if err != nil {
		return err
	}
	if exists {
		return shared.ErrAlreadyPending
	}

	model := models.FactChangeModelFromDomain(change)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyPending
		}
		return err
	}
	return nil
}

// FindPendingByBatch returns the still-pending children of a batch,
// ordered by submission time ascending.
func (r *GormFactChangeRepository) FindPendingByBatch(ctx context.Context, batchID uuid.UUID) ([]review.FactChange, error) {
	var changeModels []models.FactChangeModel
	err := r.db.WithContext(ctx).
		Where("batch_id = ? AND approval_status = ?", batchID, review.ApprovalStatusPending.String()).
		Order("submitted_at ASC").
		Find(&changeModels).Error
	if err != nil {
		return nil, err
	}

	changes := make([]review.FactChange, len(changeModels))
	for i, model := range changeModels {
		changes[i] = *model.ToDomain()
	}
	return changes, nil
}

// Save persists a fact change with optimistic concurrency control
func (r *GormFactChangeRepository) Save(ctx context.Context, change *review.FactChange) error {
	model := models.FactChangeModelFromDomain(change)

	var existing models.FactChangeModel
	err := r.db.WithContext(ctx).First(&existing, "id = ?", model.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(model).Error
	}
	if err != nil {
		return err
	}

	newVersion := existing.Version + 1
	result := r.db.WithContext(ctx).
		Model(&models.FactChangeModel{}).
		Where("id = ? AND version = ?", model.ID, existing.Version).
		Updates(map[string]any{
			"approval_status": model.ApprovalStatus,
			"reviewed_by":     model.ReviewedBy,
			"reviewed_at":     model.ReviewedAt,
			"reject_reason":   model.RejectReason,
			"version":         newVersion,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	change.Version = newVersion
	return nil
}

// isUniqueViolation reports whether the error is a unique constraint violation.
// Matches both the Postgres error class (23505) and sqlite's message form so
// the same code path works in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

var _ review.FactChangeRepository = (*GormFactChangeRepository)(nil)
