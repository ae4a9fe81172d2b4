package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/review"
	"github.com/kpiboard/backend/internal/domain/scorecard"
	"github.com/kpiboard/backend/internal/domain/shared"
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

// MockFactChangeRepository is a mock implementation of review.FactChangeRepository
type MockFactChangeRepository struct {
	mock.Mock
}

func (m *MockFactChangeRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.FactChange, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.FactChange), args.Error(1)
}

func (m *MockFactChangeRepository) FindLatestByFact(ctx context.Context, factID uuid.UUID) (*review.FactChange, error) {
	args := m.Called(ctx, factID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.FactChange), args.Error(1)
}

func (m *MockFactChangeRepository) HasPending(ctx context.Context, factID uuid.UUID) (bool, error) {
	args := m.Called(ctx, factID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFactChangeRepository) CreatePending(ctx context.Context, change *review.FactChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

func (m *MockFactChangeRepository) FindPendingByBatch(ctx context.Context, batchID uuid.UUID) ([]review.FactChange, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]review.FactChange), args.Error(1)
}

func (m *MockFactChangeRepository) Save(ctx context.Context, change *review.FactChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

// MockBatchRepository is a mock implementation of review.BatchRepository
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Batch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Batch), args.Error(1)
}

func (m *MockBatchRepository) FindPending(ctx context.Context) ([]review.Batch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]review.Batch), args.Error(1)
}

func (m *MockBatchRepository) Save(ctx context.Context, batch *review.Batch) error {
	args := m.Called(ctx, batch)
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

// MockAuditRecorder is a mock implementation of review.AuditRecorder
type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(ctx context.Context, entry review.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockStatusRecomputer is a mock implementation of StatusRecomputer
type MockStatusRecomputer struct {
	mock.Mock
}

func (m *MockStatusRecomputer) RecomputePlanYear(ctx context.Context, planID uuid.UUID, year int) error {
	args := m.Called(ctx, planID, year)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockChangeResolver is a mock implementation of ChangeResolver
type MockChangeResolver struct {
	mock.Mock
}

func (m *MockChangeResolver) Approve(ctx context.Context, changeID, reviewer uuid.UUID, suppressEmail bool) error {
	args := m.Called(ctx, changeID, reviewer, suppressEmail)
	return args.Error(0)
}

func (m *MockChangeResolver) Reject(ctx context.Context, changeID, reviewer uuid.UUID, reason string, suppressEmail bool) error {
	args := m.Called(ctx, changeID, reviewer, reason, suppressEmail)
	return args.Error(0)
}

// stubTxScope runs the transactional function directly against the mocks,
// standing in for a real storage transaction.
type stubTxScope struct {
	repos stubRepos
}

func (s *stubTxScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.repos)
}

type stubRepos struct {
	factRepo   *MockFactRepository
	changeRepo *MockFactChangeRepository
	batchRepo  *MockBatchRepository
	audit      *MockAuditRecorder
}

func (r stubRepos) FactRepo() scorecard.FactRepository       { return r.factRepo }
func (r stubRepos) ChangeRepo() review.FactChangeRepository  { return r.changeRepo }
func (r stubRepos) BatchRepo() review.BatchRepository        { return r.batchRepo }
func (r stubRepos) Audit() review.AuditRecorder              { return r.audit }
