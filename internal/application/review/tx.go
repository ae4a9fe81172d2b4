package review

import (
	"context"

	"github.com/kpiboard/backend/internal/domain/review"
	"github.com/kpiboard/backend/internal/domain/scorecard"
)

// TransactionalRepositories provides access to the repositories participating
// in one workflow transaction. An approval must apply values to the fact,
// resolve the change and append the audit entries atomically; a failed write
// leaves no row in a mixed state.
type TransactionalRepositories interface {
	FactRepo() scorecard.FactRepository
	ChangeRepo() review.FactChangeRepository
	BatchRepo() review.BatchRepository
	Audit() review.AuditRecorder
}

// TransactionScope executes a function within one storage transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
