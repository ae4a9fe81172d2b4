package scorecard

import (
	"context"

	"github.com/google/uuid"
)

// FactRepository persists facts
type FactRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Fact, error)
	// FindByPlanYearOrdered returns all active facts for one plan-year,
	// ordered by period start date ascending.
	FindByPlanYearOrdered(ctx context.Context, planID uuid.UUID, year int) ([]Fact, error)
	Save(ctx context.Context, fact *Fact) error
	// UpdateStatus persists only the derived status column for a fact
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}

// PlanRepository reads plans (read-only reference data for the workflow core)
type PlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	FindByKPIYear(ctx context.Context, kpiID uuid.UUID, year int) (*Plan, error)
}

// PeriodRepository reads calendar periods (read-only reference data)
type PeriodRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Period, error)
	FindByYear(ctx context.Context, year int, frequency Frequency) ([]Period, error)
}

// KPIRepository reads KPI dimension rows (read-only reference data)
type KPIRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*KPI, error)
}
