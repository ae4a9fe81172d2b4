package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/review"
	"github.com/kpiboard/backend/internal/domain/shared"
	"github.com/kpiboard/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Batch, error) {
	var model models.BatchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindPending returns all pending batches ordered by submission time ascending
func (r *GormBatchRepository) FindPending(ctx context.Context) ([]review.Batch, error) {
	var batchModels []models.BatchModel
	err := r.db.WithContext(ctx).
		Where("approval_status = ?", review.ApprovalStatusPending.String()).
		Order("submitted_at ASC").
		Find(&batchModels).Error
	if err != nil {
		return nil, err
	}

	batches := make([]review.Batch, len(batchModels))
	for i, model := range batchModels {
		batches[i] = *model.ToDomain()
	}
	return batches, nil
}

// Save persists a batch with optimistic concurrency control
func (r *GormBatchRepository) Save(ctx context.Context, batch *review.Batch) error {
	model := models.BatchModelFromDomain(batch)

	var existing models.BatchModel
	err := r.db.WithContext(ctx).First(&existing, "id = ?", model.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(model).Error
	}
	if err != nil {
		return err
	}

	newVersion := existing.Version + 1
	result := r.db.WithContext(ctx).
		Model(&models.BatchModel{}).
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
	batch.Version = newVersion
	return nil
}

var _ review.BatchRepository = (*GormBatchRepository)(nil)
