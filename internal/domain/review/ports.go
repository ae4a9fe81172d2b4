package review

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NotificationKind identifies the workflow event a notification reports
type NotificationKind string

const (
	NotifyPendingApproval NotificationKind = "PENDING_APPROVAL"
	NotifyApproved        NotificationKind = "APPROVED"
	NotifyRejected        NotificationKind = "REJECTED"
	NotifyBatchResolved   NotificationKind = "BATCH_RESOLVED"
)

// Notification is a message the workflow core asks the delivery collaborator
// to send. Delivery mechanics live outside this core.
type Notification struct {
	Kind      NotificationKind  `json:"kind"`
	Recipient uuid.UUID         `json:"recipient"`
	Context   map[string]string `json:"context,omitempty"`
}

// Notifier is the external notification sink. Notify is fire-and-forget from
// the workflow's perspective: a delivery failure must never fail the
// operation that triggered it (callers log and continue).
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// AuditAction classifies an audited mutation
type AuditAction string

const (
	AuditActionAdded    AuditAction = "ADDED"
	AuditActionModified AuditAction = "MODIFIED"
	AuditActionDeleted  AuditAction = "DELETED"
)

// String returns the string representation of AuditAction
func (a AuditAction) String() string {
	return string(a)
}

// AuditEntry is one append-only audit record. KeyJSON identifies the row;
// ColumnChangesJSON carries per-column old/new values for modifications.
type AuditEntry struct {
	TableName         string      `json:"table_name"`
	KeyJSON           string      `json:"key_json"`
	Action            AuditAction `json:"action"`
	ChangedBy         uuid.UUID   `json:"changed_by"`
	ChangedAtUTC      time.Time   `json:"changed_at_utc"`
	ColumnChangesJSON string      `json:"column_changes_json,omitempty"`
}

// AuditRecorder is the append-only audit sink. Every fact mutation and every
// change or batch state transition must be recorded through it.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}
