package scorecard

import (
	"context"

	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/review"
	"github.com/kpiboard/backend/internal/domain/scorecard"
	"github.com/stretchr/testify/mock"
)

// MockFactRepository is a mock implementation of scorecard.FactRepository
type MockFactRepository struct {
	mock.Mock
}

func (m *MockFactRepository) FindByID(ctx context.Context, id uuid.UUID) (*scorecard.Fact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scorecard.Fact), args.Error(1)
}

func (m *MockFactRepository) FindByPlanYearOrdered(ctx context.Context, planID uuid.UUID, year int) ([]scorecard.Fact, error) {
	args := m.Called(ctx, planID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]scorecard.Fact), args.Error(1)
}

func (m *MockFactRepository) Save(ctx context.Context, fact *scorecard.Fact) error {
	args := m.Called(ctx, fact)
	return args.Error(0)
}

func (m *MockFactRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status scorecard.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockPlanRepository is a mock implementation of scorecard.PlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*scorecard.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scorecard.Plan), args.Error(1)
}

func (m *MockPlanRepository) FindByKPIYear(ctx context.Context, kpiID uuid.UUID, year int) (*scorecard.Plan, error) {
	args := m.Called(ctx, kpiID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scorecard.Plan), args.Error(1)
}

// MockPeriodRepository is a mock implementation of scorecard.PeriodRepository
type MockPeriodRepository struct {
	mock.Mock
}

func (m *MockPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*scorecard.Period, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scorecard.Period), args.Error(1)
}

func (m *MockPeriodRepository) FindByYear(ctx context.Context, year int, frequency scorecard.Frequency) ([]scorecard.Period, error) {
	args := m.Called(ctx, year, frequency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]scorecard.Period), args.Error(1)
}

// MockAuditReader is a mock implementation of AuditReader
type MockAuditReader struct {
	mock.Mock
}

func (m *MockAuditReader) FindByKey(ctx context.Context, tableName, keyJSON string) ([]review.AuditEntry, error) {
	args := m.Called(ctx, tableName, keyJSON)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]review.AuditEntry), args.Error(1)
}

// passthroughLocker runs the protected function directly and counts entries
type passthroughLocker struct {
	calls int
}

func (l *passthroughLocker) WithLock(ctx context.Context, _ uuid.UUID, _ int, fn func(ctx context.Context) error) error {
	l.calls++
	return fn(ctx)
}
