package scorecard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/scorecard"
	"github.com/kpiboard/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PlanYearLocker serializes status recomputation per plan-year so a
// concurrent approval for the same plan-year cannot interleave with a
// partial recompute.
type PlanYearLocker interface {
	WithLock(ctx context.Context, planID uuid.UUID, year int, fn func(ctx context.Context) error) error
}

// RecomputeConfig carries the evaluation settings injected from configuration
type RecomputeConfig struct {
	// GraceInterval is added to a period's end date before the period
	// counts as due.
	GraceInterval time.Duration
	// Tolerance is the absolute epsilon for decimal comparisons
	Tolerance decimal.Decimal
}

// RecomputeService re-derives the categorical status of facts. Facts are
// always processed in period order: downstream readers assume each period's
// stored status reflects the most recently resolved prior period, so an
// out-of-order pass could surface a transient inconsistent status.
type RecomputeService struct {
	factRepo   scorecard.FactRepository
	planRepo   scorecard.PlanRepository
	periodRepo scorecard.PeriodRepository
	locker     PlanYearLocker
	cfg        RecomputeConfig
	now        func() time.Time
}

// NewRecomputeService creates a new RecomputeService
func NewRecomputeService(
	factRepo scorecard.FactRepository,
	planRepo scorecard.PlanRepository,
	periodRepo scorecard.PeriodRepository,
	locker PlanYearLocker,
	cfg RecomputeConfig,
) *RecomputeService {
	return &RecomputeService{
		factRepo:   factRepo,
		planRepo:   planRepo,
		periodRepo: periodRepo,
		locker:     locker,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// RecomputePlanYear re-evaluates the status of every fact for one plan-year,
// in period order, under the plan-year lock. The pass is idempotent: running
// it twice with no intervening data change leaves statuses identical.
func (s *RecomputeService) RecomputePlanYear(ctx context.Context, planID uuid.UUID, year int) error {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return err
	}
	if plan.Year != year {
		return shared.NewDomainError("INVALID_INPUT", "Plan does not cover the requested year")
	}

	return s.locker.WithLock(ctx, planID, year, func(ctx context.Context) error {
		facts, err := s.factRepo.FindByPlanYearOrdered(ctx, planID, year)
		if err != nil {
			return err
		}
		periods, err := s.periodIndex(ctx, year, plan.Frequency)
		if err != nil {
			return err
		}

		direction := inferDirectionFromFacts(facts)
		now := s.now()

		for i := range facts {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.evaluateAndStore(ctx, &facts[i], periods, direction, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// ComputeAndSet re-evaluates a single fact right after an approval. It runs
// under the same plan-year lock and derives direction from the full ordered
// series, so the result is identical to what a full ordered pass would
// store for that fact.
func (s *RecomputeService) ComputeAndSet(ctx context.Context, factID uuid.UUID) error {
	fact, err := s.factRepo.FindByID(ctx, factID)
	if err != nil {
		return err
	}
	plan, err := s.planRepo.FindByID(ctx, fact.PlanID)
	if err != nil {
		return err
	}

	return s.locker.WithLock(ctx, plan.ID, plan.Year, func(ctx context.Context) error {
		facts, err := s.factRepo.FindByPlanYearOrdered(ctx, plan.ID, plan.Year)
		if err != nil {
			return err
		}
		periods, err := s.periodIndex(ctx, plan.Year, plan.Frequency)
		if err != nil {
			return err
		}

		direction := inferDirectionFromFacts(facts)
		now := s.now()

		for i := range facts {
			if facts[i].ID == factID {
				return s.evaluateAndStore(ctx, &facts[i], periods, direction, now)
			}
		}
		return shared.ErrNotFound
	})
}

// InferPlanDirection exposes the direction heuristic for one plan-year
func (s *RecomputeService) InferPlanDirection(ctx context.Context, planID uuid.UUID, year int) (scorecard.Direction, error) {
	facts, err := s.factRepo.FindByPlanYearOrdered(ctx, planID, year)
	if err != nil {
		return "", err
	}
	return inferDirectionFromFacts(facts), nil
}

func (s *RecomputeService) evaluateAndStore(
	ctx context.Context,
	fact *scorecard.Fact,
	periods map[uuid.UUID]scorecard.Period,
	direction scorecard.Direction,
	now time.Time,
) error {
	period, ok := periods[fact.PeriodID]
	if !ok {
		// Reference data is incomplete; skip rather than guess due-ness.
		return nil
	}

	status, changed := scorecard.Evaluate(scorecard.EvaluationInput{
		Actual:    fact.Actual,
		Target:    fact.Target,
		Forecast:  fact.Forecast,
		IsDue:     period.IsDue(now, s.cfg.GraceInterval),
		Direction: direction,
		Tolerance: s.cfg.Tolerance,
	})
	if !changed || fact.StatusEquals(status) {
		return nil
	}
	return s.factRepo.UpdateStatus(ctx, fact.ID, status)
}

func (s *RecomputeService) periodIndex(ctx context.Context, year int, frequency scorecard.Frequency) (map[uuid.UUID]scorecard.Period, error) {
	periods, err := s.periodRepo.FindByYear(ctx, year, frequency)
	if err != nil {
		return nil, err
	}
	index := make(map[uuid.UUID]scorecard.Period, len(periods))
	for _, p := range periods {
		index[p.ID] = p
	}
	return index, nil
}

// inferDirectionFromFacts derives the plan direction from the target series
// of the already period-ordered facts.
func inferDirectionFromFacts(facts []scorecard.Fact) scorecard.Direction {
	targets := make([]*decimal.Decimal, len(facts))
	for i := range facts {
		targets[i] = facts[i].Target
	}
	return scorecard.InferDirection(targets)
}
