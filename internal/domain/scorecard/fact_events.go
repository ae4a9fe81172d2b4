package scorecard

import (
	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/shared"
)

// FactValuesAppliedEvent is raised when approved values are copied onto a fact
type FactValuesAppliedEvent struct {
	shared.BaseDomainEvent
	FactID    uuid.UUID      `json:"fact_id"`
	PlanID    uuid.UUID      `json:"plan_id"`
	PeriodID  uuid.UUID      `json:"period_id"`
	Values    ProposedValues `json:"values"`
	ChangedBy uuid.UUID      `json:"changed_by"`
}

// EventType returns the event type name
func (e *FactValuesAppliedEvent) EventType() string {
	return "FactValuesApplied"
}

// NewFactValuesAppliedEvent creates a new FactValuesAppliedEvent
func NewFactValuesAppliedEvent(fact *Fact, values ProposedValues, changedBy uuid.UUID) *FactValuesAppliedEvent {
	return &FactValuesAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("FactValuesApplied", "Fact", fact.ID),
		FactID:          fact.ID,
		PlanID:          fact.PlanID,
		PeriodID:        fact.PeriodID,
		Values:          values,
		ChangedBy:       changedBy,
	}
}
