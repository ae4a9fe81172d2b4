package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	reviewapp "github.com/kpiboard/backend/internal/application/review"
	"github.com/kpiboard/backend/internal/domain/review"
	"github.com/kpiboard/backend/internal/domain/scorecard"
	"github.com/kpiboard/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockFactRepository implements scorecard.FactRepository for testing
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

// MockFactChangeRepository implements review.FactChangeRepository for testing
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

// MockPlanRepository implements scorecard.PlanRepository for testing
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

// MockBatchRepository implements review.BatchRepository for testing
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

// MockAuditRecorder implements review.AuditRecorder for testing
type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(ctx context.Context, entry review.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockStatusRecomputer implements reviewapp.StatusRecomputer for testing
type MockStatusRecomputer struct {
	mock.Mock
}

func (m *MockStatusRecomputer) RecomputePlanYear(ctx context.Context, planID uuid.UUID, year int) error {
	args := m.Called(ctx, planID, year)
	return args.Error(0)
}

// MockEventPublisher implements shared.EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type stubTxScope struct {
	changeRepo *MockFactChangeRepository
	factRepo   *MockFactRepository
	batchRepo  *MockBatchRepository
	audit      *MockAuditRecorder
}

func (s *stubTxScope) Execute(_ context.Context, fn func(repos reviewapp.TransactionalRepositories) error) error {
	return fn(s)
}

func (s *stubTxScope) FactRepo() scorecard.FactRepository      { return s.factRepo }
func (s *stubTxScope) ChangeRepo() review.FactChangeRepository { return s.changeRepo }
func (s *stubTxScope) BatchRepo() review.BatchRepository       { return s.batchRepo }
func (s *stubTxScope) Audit() review.AuditRecorder             { return s.audit }

// Test helpers

type changeTestFixture struct {
	router    *gin.Engine
	handler   *ChangeHandler
	factRepo  *MockFactRepository
	changes   *MockFactChangeRepository
	planRepo  *MockPlanRepository
	audit     *MockAuditRecorder
	publisher *MockEventPublisher
}

func setupChangeTestRouter() *changeTestFixture {
	gin.SetMode(gin.TestMode)

	f := &changeTestFixture{
		factRepo:  new(MockFactRepository),
		changes:   new(MockFactChangeRepository),
		planRepo:  new(MockPlanRepository),
		audit:     new(MockAuditRecorder),
		publisher: new(MockEventPublisher),
	}
	txScope := &stubTxScope{
		changeRepo: f.changes,
		factRepo:   f.factRepo,
		audit:      f.audit,
	}
	ledger := reviewapp.NewChangeLedgerService(
		txScope, f.changes, f.factRepo, f.planRepo,
		new(MockStatusRecomputer), f.publisher, zap.NewNop(),
		reviewapp.LedgerConfig{},
	)
	f.handler = NewChangeHandler(ledger)
	f.router = gin.New()
	f.router.POST("/changes", f.handler.Submit)
	return f
}

func testActiveFact() *scorecard.Fact {
	fact, _ := scorecard.NewFact(uuid.New(), uuid.New(), uuid.New(), uuid.New())
	return fact
}

func testOwnedPlan(planID uuid.UUID) *scorecard.Plan {
	return &scorecard.Plan{
		BaseEntity: shared.BaseEntity{ID: planID},
		KPIID:      uuid.New(),
		Year:       2026,
		Frequency:  scorecard.FrequencyMonthly,
		OwnerID:    uuid.New(),
		IsActive:   true,
	}
}

// postChange submits the request body and returns the published submission
// event captured from the publisher.
func postChange(t *testing.T, f *changeTestFixture, body map[string]any) (*httptest.ResponseRecorder, *review.FactChangeSubmittedEvent) {
	t.Helper()

	var published *review.FactChangeSubmittedEvent
	f.changes.On("CreatePending", mock.Anything, mock.AnythingOfType("*review.FactChange")).Return(nil)
	f.audit.On("Record", mock.Anything, mock.AnythingOfType("review.AuditEntry")).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			events := args.Get(1).([]shared.DomainEvent)
			require.Len(t, events, 1)
			published = events[0].(*review.FactChangeSubmittedEvent)
		}).Return(nil)

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodPost, "/changes", bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", uuid.New().String())

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w, published
}

func TestChangeHandler_Submit(t *testing.T) {
	actual := decimal.NewFromInt(95)

	t.Run("standalone submission notifies the owner by default", func(t *testing.T) {
		f := setupChangeTestRouter()
		fact := testActiveFact()
		f.factRepo.On("FindByID", mock.Anything, fact.ID).Return(fact, nil)
		f.planRepo.On("FindByID", mock.Anything, fact.PlanID).Return(testOwnedPlan(fact.PlanID), nil)

		w, published := postChange(t, f, map[string]any{
			"fact_id": fact.ID.String(),
			"actual":  actual,
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, published)
		assert.True(t, published.NotifyOwner)
	})

	t.Run("batched submission suppresses the owner notification by default", func(t *testing.T) {
		f := setupChangeTestRouter()
		fact := testActiveFact()
		batchID := uuid.New()
		f.factRepo.On("FindByID", mock.Anything, fact.ID).Return(fact, nil)
		f.planRepo.On("FindByID", mock.Anything, fact.PlanID).Return(testOwnedPlan(fact.PlanID), nil)

		w, published := postChange(t, f, map[string]any{
			"fact_id":  fact.ID.String(),
			"actual":   actual,
			"batch_id": batchID.String(),
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, published)
		assert.False(t, published.NotifyOwner)
		require.NotNil(t, published.BatchID)
		assert.Equal(t, batchID, *published.BatchID)
	})

	t.Run("explicit notify_owner overrides the batch default", func(t *testing.T) {
		f := setupChangeTestRouter()
		fact := testActiveFact()
		f.factRepo.On("FindByID", mock.Anything, fact.ID).Return(fact, nil)
		f.planRepo.On("FindByID", mock.Anything, fact.PlanID).Return(testOwnedPlan(fact.PlanID), nil)

		w, published := postChange(t, f, map[string]any{
			"fact_id":      fact.ID.String(),
			"actual":       actual,
			"batch_id":     uuid.New().String(),
			"notify_owner": true,
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, published)
		assert.True(t, published.NotifyOwner)
	})

	t.Run("rejects a missing user header", func(t *testing.T) {
		f := setupChangeTestRouter()

		req, _ := http.NewRequest(http.MethodPost, "/changes", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a malformed batch ID", func(t *testing.T) {
		f := setupChangeTestRouter()

		body := map[string]any{
			"fact_id":  uuid.New().String(),
			"actual":   actual,
			"batch_id": "not-a-uuid",
		}
		raw, err := json.Marshal(body)
		require.NoError(t, err)

		req, _ := http.NewRequest(http.MethodPost, "/changes", bytes.NewBuffer(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", uuid.New().String())

		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
