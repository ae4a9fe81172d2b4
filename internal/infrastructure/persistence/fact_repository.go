package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/scorecard"
	"github.com/kpiboard/backend/internal/domain/shared"
	"github.com/kpiboard/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFactRepository implements FactRepository using GORM
type GormFactRepository struct {
	db *gorm.DB
}

// NewGormFactRepository creates a new GormFactRepository
func NewGormFactRepository(db *gorm.DB) *GormFactRepository {
	return &GormFactRepository{db: db}
}

// FindByID finds a fact by its ID
func (r *GormFactRepository) FindByID(ctx context.Context, id uuid.UUID) (*scorecard.Fact, error) {
	var model models.FactModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPlanYearOrdered returns all active facts for one plan-year, ordered
// by period start date ascending. The join keeps ordering correct even when
// period rows were inserted out of calendar order.
func (r *GormFactRepository) FindByPlanYearOrdered(ctx context.Context, planID uuid.UUID, year int) ([]scorecard.Fact, error) {
	var factModels []models.FactModel
	err := r.db.WithContext(ctx).
		Model(&models.FactModel{}).
		Joins("JOIN periods ON periods.id = facts.period_id").
		Where("facts.plan_id = ? AND periods.year = ? AND facts.is_active = ?", planID, year, true).
		Order("periods.start_date ASC").
		Find(&factModels).Error
	if err != nil {
		return nil, err
	}

	facts := make([]scorecard.Fact, len(factModels))
	for i, model := range factModels {
		facts[i] = *model.ToDomain()
	}
	return facts, nil
}

// Save persists a fact with optimistic concurrency control on the version column
func (r *GormFactRepository) Save(ctx context.Context, fact *scorecard.Fact) error {
	model := models.FactModelFromDomain(fact)

	var existing models.FactModel
	err := r.db.WithContext(ctx).First(&existing, "id = ?", model.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(model).Error
	}
	if err != nil {
		return err
	}

	newVersion := existing.Version + 1
	result := r.db.WithContext(ctx).
		Model(&models.FactModel{}).
		Where("id = ? AND version = ?", model.ID, existing.Version).
		Updates(map[string]any{
			"actual":          model.Actual,
			"target":          model.Target,
			"forecast":        model.Forecast,
			"budget":          model.Budget,
			"status":          model.Status,
			"last_changed_by": model.LastChangedBy,
			"last_changed_at": model.LastChangedAt,
			"is_active":       model.IsActive,
			"version":         newVersion,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	fact.Version = newVersion
	return nil
}

// UpdateStatus persists only the derived status column, bypassing the
// optimistic lock. Status is derived from the fact's own values, so a
// concurrent value write simply triggers another recompute afterwards.
func (r *GormFactRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status scorecard.Status) error {
	result := r.db.WithContext(ctx).
		Model(&models.FactModel{}).
		Where("id = ?", id).
		Update("status", status.String())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ scorecard.FactRepository = (*GormFactRepository)(nil)
