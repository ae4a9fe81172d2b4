package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/review"
)

// AuditLogModel is the append-only audit trail. Rows are only ever inserted.
type AuditLogModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	TargetTableName   string    `gorm:"column:table_name;type:varchar(100);not null;index:idx_audit_table_key,priority:1"`
	KeyJSON           string    `gorm:"type:text;not null;index:idx_audit_table_key,priority:2"`
	Action            string    `gorm:"type:varchar(20);not null"`
	ChangedBy         uuid.UUID `gorm:"type:uuid;not null;index"`
	ChangedAtUTC      time.Time `gorm:"not null;index"`
	ColumnChangesJSON string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_log"
}

// ToDomain converts the persistence model to a domain AuditEntry.
func (m *AuditLogModel) ToDomain() review.AuditEntry {
	return review.AuditEntry{
		TableName:         m.TargetTableName,
		KeyJSON:           m.KeyJSON,
		Action:            review.AuditAction(m.Action),
		ChangedBy:         m.ChangedBy,
		ChangedAtUTC:      m.ChangedAtUTC,
		ColumnChangesJSON: m.ColumnChangesJSON,
	}
}

// AuditLogModelFromDomain creates a new persistence model from a domain AuditEntry.
func AuditLogModelFromDomain(e review.AuditEntry) *AuditLogModel {
	return &AuditLogModel{
		ID:                uuid.New(),
		TargetTableName:   e.TableName,
		KeyJSON:           e.KeyJSON,
		Action:            e.Action.String(),
		ChangedBy:         e.ChangedBy,
		ChangedAtUTC:      e.ChangedAtUTC,
		ColumnChangesJSON: e.ColumnChangesJSON,
	}
}
