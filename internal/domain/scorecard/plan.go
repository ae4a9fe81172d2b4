package scorecard

import (
	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/shared"
)

// PlanPriority represents the reporting priority of a plan
type PlanPriority string

const (
	PlanPriorityHigh   PlanPriority = "HIGH"
	PlanPriorityMedium PlanPriority = "MEDIUM"
	PlanPriorityLow    PlanPriority = "LOW"
)

// IsValid checks if the priority is a valid PlanPriority
func (p PlanPriority) IsValid() bool {
	switch p {
	case PlanPriorityHigh, PlanPriorityMedium, PlanPriorityLow:
		return true
	}
	return false
}

// Plan is the KPI x year measurement context. The workflow core reads the
// frequency, ownership and target series, and never writes to the plan.
type Plan struct {
	shared.BaseEntity
	KPIID     uuid.UUID    `json:"kpi_id"`
	Year      int          `json:"year"`
	Frequency Frequency    `json:"frequency"`
	Priority  PlanPriority `json:"priority"`
	OwnerID   uuid.UUID    `json:"owner_id"`  // Accountable for results, notified of pending changes
	EditorID  uuid.UUID    `json:"editor_id"` // Allowed to submit fact changes
	IsActive  bool         `json:"is_active"`
}
