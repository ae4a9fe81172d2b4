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

// GormPlanRepository implements PlanRepository using GORM.
// The workflow core only reads plans, so there is no Save.
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new GormPlanRepository
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// FindByID finds a plan by its ID
func (r *GormPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*scorecard.Plan, error) {
	var model models.PlanModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByKPIYear finds the plan for a KPI and year
func (r *GormPlanRepository) FindByKPIYear(ctx context.Context, kpiID uuid.UUID, year int) (*scorecard.Plan, error) {
	var model models.PlanModel
	err := r.db.WithContext(ctx).
		Where("kpi_id = ? AND year = ?", kpiID, year).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GormPeriodRepository implements PeriodRepository using GORM
type GormPeriodRepository struct {
	db *gorm.DB
}

// NewGormPeriodRepository creates a new GormPeriodRepository
func NewGormPeriodRepository(db *gorm.DB) *GormPeriodRepository {
	return &GormPeriodRepository{db: db}
}

// FindByID finds a period by its ID
func (r *GormPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*scorecard.Period, error) {
	var model models.PeriodModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByYear returns the calendar periods of a year at one frequency,
// ordered by period number ascending.
func (r *GormPeriodRepository) FindByYear(ctx context.Context, year int, frequency scorecard.Frequency) ([]scorecard.Period, error) {
	var periodModels []models.PeriodModel
	err := r.db.WithContext(ctx).
		Where("year = ? AND frequency = ?", year, frequency.String()).
		Order("number ASC").
		Find(&periodModels).Error
	if err != nil {
		return nil, err
	}

	periods := make([]scorecard.Period, len(periodModels))
	for i, model := range periodModels {
		periods[i] = *model.ToDomain()
	}
	return periods, nil
}

// GormKPIRepository implements KPIRepository using GORM
type GormKPIRepository struct {
	db *gorm.DB
}

// NewGormKPIRepository creates a new GormKPIRepository
func NewGormKPIRepository(db *gorm.DB) *GormKPIRepository {
	return &GormKPIRepository{db: db}
}

// FindByID finds a KPI by its ID
func (r *GormKPIRepository) FindByID(ctx context.Context, id uuid.UUID) (*scorecard.KPI, error) {
	var model models.KPIModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var (
	_ scorecard.PlanRepository   = (*GormPlanRepository)(nil)
	_ scorecard.PeriodRepository = (*GormPeriodRepository)(nil)
	_ scorecard.KPIRepository    = (*GormKPIRepository)(nil)
)
