package persistence

import (
	"context"

	"github.com/kpiboard/backend/internal/domain/review"
	"github.com/kpiboard/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditRecorder implements AuditRecorder using GORM.
// The audit_log table is append-only: rows are inserted and never updated
// or deleted through this code path.
type GormAuditRecorder struct {
	db *gorm.DB
}

// NewGormAuditRecorder creates a new GormAuditRecorder
func NewGormAuditRecorder(db *gorm.DB) *GormAuditRecorder {
	return &GormAuditRecorder{db: db}
}

// Record appends one audit entry
func (r *GormAuditRecorder) Record(ctx context.Context, entry review.AuditEntry) error {
	model := models.AuditLogModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByKey returns the audit trail for one row, newest first.
// Used by the history endpoint.
func (r *GormAuditRecorder) FindByKey(ctx context.Context, tableName, keyJSON string) ([]review.AuditEntry, error) {
	var logModels []models.AuditLogModel
	err := r.db.WithContext(ctx).
		Where("table_name = ? AND key_json = ?", tableName, keyJSON).
		Order("changed_at_utc DESC").
		Find(&logModels).Error
	if err != nil {
		return nil, err
	}

	entries := make([]review.AuditEntry, len(logModels))
	for i, model := range logModels {
		entries[i] = model.ToDomain()
	}
	return entries, nil
}

var _ review.AuditRecorder = (*GormAuditRecorder)(nil)
