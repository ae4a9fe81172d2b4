package scorecard

import (
	"time"

	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProposedValues is the set of nullable values a change proposes for a fact.
// Nil fields leave the current value untouched when applied.
type ProposedValues struct {
	Actual   *decimal.Decimal `json:"actual"`
	Target   *decimal.Decimal `json:"target"`
	Forecast *decimal.Decimal `json:"forecast"`
	Status   *Status          `json:"status"`
}

// IsEmpty reports whether the proposal carries no values at all
func (v ProposedValues) IsEmpty() bool {
	return v.Actual == nil && v.Target == nil && v.Forecast == nil && v.Status == nil
}

// Fact is one measurement for (KPI, period, plan). Once a published fact has
// an approval workflow attached, its values are mutated only by applying an
// approved change; the recomputation driver may still update the status
// alone at any time because status is independently derived.
type Fact struct {
	shared.BaseAggregateRoot
	KPIID         uuid.UUID        `json:"kpi_id"`
	PlanID        uuid.UUID        `json:"plan_id"`
	PeriodID      uuid.UUID        `json:"period_id"`
	Actual        *decimal.Decimal `json:"actual"`
	Target        *decimal.Decimal `json:"target"`
	Forecast      *decimal.Decimal `json:"forecast"`
	Budget        *decimal.Decimal `json:"budget"`
	Status        *Status          `json:"status"`
	CreatedBy     uuid.UUID        `json:"created_by"`
	LastChangedBy *uuid.UUID       `json:"last_changed_by"`
	LastChangedAt *time.Time       `json:"last_changed_at"`
	IsActive      bool             `json:"is_active"`
}

// NewFact creates a new fact for a plan period
func NewFact(kpiID, planID, periodID, createdBy uuid.UUID) (*Fact, error) {
	if kpiID == uuid.Nil || planID == uuid.Nil || periodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "KPI, plan and period IDs are required")
	}
	return &Fact{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		KPIID:             kpiID,
		PlanID:            planID,
		PeriodID:          periodID,
		CreatedBy:         createdBy,
		IsActive:          true,
	}, nil
}

// ApplyChange copies every non-nil proposed value onto the fact and stamps
// the change audit fields. Invalid proposed statuses are rejected.
func (f *Fact) ApplyChange(values ProposedValues, changedBy uuid.UUID) error {
	if changedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Changed-by user ID cannot be empty")
	}
	if values.Status != nil && !values.Status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Proposed status code is not valid")
	}

	if values.Actual != nil {
		f.Actual = values.Actual
	}
	if values.Target != nil {
		f.Target = values.Target
	}
	if values.Forecast != nil {
		f.Forecast = values.Forecast
	}
	if values.Status != nil {
		f.Status = values.Status
	}

	now := time.Now()
	f.LastChangedBy = &changedBy
	f.LastChangedAt = &now
	f.UpdatedAt = now

	f.AddDomainEvent(NewFactValuesAppliedEvent(f, values, changedBy))

	return nil
}

// SetStatus updates the derived status alone. Status is recomputed from the
// fact's own values, so it is not subject to the pending-change lock.
func (f *Fact) SetStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Status code is not valid")
	}
	f.Status = &status
	f.UpdatedAt = time.Now()
	return nil
}

// StatusEquals reports whether the stored status equals the given one
func (f *Fact) StatusEquals(status Status) bool {
	return f.Status != nil && *f.Status == status
}

// Deactivate soft-deletes the fact
func (f *Fact) Deactivate() {
	f.IsActive = false
	f.UpdatedAt = time.Now()
}
