package persistence

import (
	"context"

	appreview "github.com/kpiboard/backend/internal/application/review"
	"github.com/kpiboard/backend/internal/domain/review"
	"github.com/kpiboard/backend/internal/domain/scorecard"
	"gorm.io/gorm"
)

// GormTransactionScope implements the application TransactionScope by opening
// one GORM transaction and handing the callback repositories bound to it.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside a database transaction. Any error rolls back every
// write made through the provided repositories.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appreview.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&transactionalRepositories{tx: tx})
	})
}

// transactionalRepositories binds all workflow repositories to one transaction
type transactionalRepositories struct {
	tx *gorm.DB
}

func (r *transactionalRepositories) FactRepo() scorecard.FactRepository {
	return NewGormFactRepository(r.tx)
}

func (r *transactionalRepositories) ChangeRepo() review.FactChangeRepository {
	return NewGormFactChangeRepository(r.tx)
}

func (r *transactionalRepositories) BatchRepo() review.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

func (r *transactionalRepositories) Audit() review.AuditRecorder {
	return NewGormAuditRecorder(r.tx)
}

var _ appreview.TransactionScope = (*GormTransactionScope)(nil)
