package scorecard

import (
	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/shared"
)

// KPI is one key performance indicator under an objective. The dimensional
// hierarchy (pillar, objective, KPI) is read-only reference data here.
type KPI struct {
	shared.BaseEntity
	ObjectiveID uuid.UUID `json:"objective_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Unit        string    `json:"unit"`
	IsActive    bool      `json:"is_active"`
}
