package persistence

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
	scorecardapp "github.com/kpiboard/backend/internal/application/scorecard"
	"gorm.io/gorm"
)

// AdvisoryPlanYearLocker serializes recomputation per plan-year with a
// Postgres transaction-scoped advisory lock. The lock key is a 64-bit hash of
// (plan ID, year); a hash collision only over-serializes, never corrupts.
type AdvisoryPlanYearLocker struct {
	db *gorm.DB
}

// NewAdvisoryPlanYearLocker creates a new AdvisoryPlanYearLocker
func NewAdvisoryPlanYearLocker(db *gorm.DB) *AdvisoryPlanYearLocker {
	return &AdvisoryPlanYearLocker{db: db}
}

// WithLock runs fn inside a transaction holding the plan-year advisory lock.
// The lock is released automatically when the transaction ends.
func (l *AdvisoryPlanYearLocker) WithLock(ctx context.Context, planID uuid.UUID, year int, fn func(ctx context.Context) error) error {
	key := planYearLockKey(planID, year)
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", key).Error; err != nil {
			return fmt.Errorf("acquire plan-year lock: %w", err)
		}
		return fn(ctx)
	})
}

func planYearLockKey(planID uuid.UUID, year int) int64 {
	h := fnv.New64a()
	h.Write(planID[:])
	fmt.Fprintf(h, ":%d", year)
	return int64(h.Sum64())
}

// MutexPlanYearLocker serializes recomputation per plan-year with in-process
// mutexes. Suitable for single-instance deployments and for tests running on
// databases without advisory locks.
type MutexPlanYearLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMutexPlanYearLocker creates a new MutexPlanYearLocker
func NewMutexPlanYearLocker() *MutexPlanYearLocker {
	return &MutexPlanYearLocker{locks: make(map[string]*sync.Mutex)}
}

// WithLock runs fn while holding the in-process lock for (planID, year)
func (l *MutexPlanYearLocker) WithLock(ctx context.Context, planID uuid.UUID, year int, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("%s:%d", planID, year)

	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

var (
	_ scorecardapp.PlanYearLocker = (*AdvisoryPlanYearLocker)(nil)
	_ scorecardapp.PlanYearLocker = (*MutexPlanYearLocker)(nil)
)
