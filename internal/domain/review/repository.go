package review

import (
	"context"

	"github.com/google/uuid"
)

// FactChangeRepository persists fact changes
type FactChangeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FactChange, error)
	// FindLatestByFact returns the most recently submitted change for a
	// fact, or nil when no change row exists (StateNoChange).
	FindLatestByFact(ctx context.Context, factID uuid.UUID) (*FactChange, error)
	// HasPending reports whether a pending change exists for the fact
	HasPending(ctx context.Context, factID uuid.UUID) (bool, error)
	// CreatePending inserts a new pending change if and only if no other
	// pending change exists for the same fact. The check and the insert are
	// atomic; a lost race returns ErrAlreadyPending.
	CreatePending(ctx context.Context, change *FactChange) error
	// FindPendingByBatch returns the still-pending children of a batch,
	// ordered by submission time ascending.
	FindPendingByBatch(ctx context.Context, batchID uuid.UUID) ([]FactChange, error)
	Save(ctx context.Context, change *FactChange) error
}

// BatchRepository persists batch headers
type BatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)
	FindPending(ctx context.Context) ([]Batch, error)
	Save(ctx context.Context, batch *Batch) error
}
