package scorecard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/review"
	"github.com/kpiboard/backend/internal/domain/scorecard"
	"github.com/shopspring/decimal"
)

// AuditReader reads the append-only audit trail back out for display
type AuditReader interface {
	FindByKey(ctx context.Context, tableName, keyJSON string) ([]review.AuditEntry, error)
}

// FactQueryService serves read-only views of facts and their audit history
type FactQueryService struct {
	factRepo   scorecard.FactRepository
	periodRepo scorecard.PeriodRepository
	audit      AuditReader
}

// NewFactQueryService creates a new FactQueryService
func NewFactQueryService(
	factRepo scorecard.FactRepository,
	periodRepo scorecard.PeriodRepository,
	audit AuditReader,
) *FactQueryService {
	return &FactQueryService{
		factRepo:   factRepo,
		periodRepo: periodRepo,
		audit:      audit,
	}
}

// FactResponse represents a fact in API responses
type FactResponse struct {
	ID            uuid.UUID        `json:"id"`
	KPIID         uuid.UUID        `json:"kpi_id"`
	PlanID        uuid.UUID        `json:"plan_id"`
	PeriodID      uuid.UUID        `json:"period_id"`
	Actual        *decimal.Decimal `json:"actual"`
	Target        *decimal.Decimal `json:"target"`
	Forecast      *decimal.Decimal `json:"forecast"`
	Budget        *decimal.Decimal `json:"budget"`
	Status        *string          `json:"status"`
	IsActive      bool             `json:"is_active"`
	LastChangedBy *uuid.UUID       `json:"last_changed_by,omitempty"`
	LastChangedAt *time.Time       `json:"last_changed_at,omitempty"`
	Version       int              `json:"version"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// GetFact returns one fact by ID
func (s *FactQueryService) GetFact(ctx context.Context, factID uuid.UUID) (*FactResponse, error) {
	fact, err := s.factRepo.FindByID(ctx, factID)
	if err != nil {
		return nil, err
	}
	resp := toFactResponse(fact)
	return &resp, nil
}

// ListPlanYear returns all active facts for one plan-year in period order
func (s *FactQueryService) ListPlanYear(ctx context.Context, planID uuid.UUID, year int) ([]FactResponse, error) {
	facts, err := s.factRepo.FindByPlanYearOrdered(ctx, planID, year)
	if err != nil {
		return nil, err
	}
	responses := make([]FactResponse, 0, len(facts))
	for i := range facts {
		responses = append(responses, toFactResponse(&facts[i]))
	}
	return responses, nil
}

// GetHistory returns the audit trail for one fact, newest first
func (s *FactQueryService) GetHistory(ctx context.Context, factID uuid.UUID) ([]review.AuditEntry, error) {
	return s.audit.FindByKey(ctx, "facts", fmt.Sprintf(`{"id":%q}`, factID.String()))
}

func toFactResponse(fact *scorecard.Fact) FactResponse {
	resp := FactResponse{
		ID:            fact.ID,
		KPIID:         fact.KPIID,
		PlanID:        fact.PlanID,
		PeriodID:      fact.PeriodID,
		Actual:        fact.Actual,
		Target:        fact.Target,
		Forecast:      fact.Forecast,
		Budget:        fact.Budget,
		IsActive:      fact.IsActive,
		LastChangedBy: fact.LastChangedBy,
		LastChangedAt: fact.LastChangedAt,
		Version:       fact.Version,
		UpdatedAt:     fact.UpdatedAt,
	}
	if fact.Status != nil {
		status := string(*fact.Status)
		resp.Status = &status
	}
	return resp
}
