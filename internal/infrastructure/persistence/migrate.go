package persistence

import (
	"fmt"

	"github.com/kpiboard/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the workflow tables and their indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.KPIModel{},
		&models.PlanModel{},
		&models.PeriodModel{},
		&models.FactModel{},
		&models.FactChangeModel{},
		&models.BatchModel{},
		&models.AuditLogModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureWorkflowIndexes(db)
}

// EnsureWorkflowIndexes creates the indexes GORM tags cannot express.
// The partial unique index is what makes the at-most-one-pending-change
// invariant hold under concurrent submissions: the second insert for the
// same fact fails with a unique violation inside its own transaction.
func EnsureWorkflowIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_fact_changes_one_pending
			ON fact_changes (fact_id)
			WHERE approval_status = 'PENDING'`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure workflow indexes: %w", err)
		}
	}
	return nil
}
