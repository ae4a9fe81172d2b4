package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/kpiboard/backend/internal/domain/review"
	"github.com/kpiboard/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// dedupTTL bounds how long a delivered event ID is remembered. Events are
// published once per workflow operation; a day comfortably covers retries.
const dedupTTL = 24 * time.Hour

// Dispatcher subscribes to workflow events and turns them into notifications.
// Suppression flags on the events are honored here: batch children resolve
// with EmailSuppressed set and produce no individual message, and batch child
// submissions carry NotifyOwner=false so the owner gets one consolidated
// message from the BatchSubmitted event instead.
//
// Delivery failures are logged and swallowed. The workflow operation that
// raised the event has already committed; a broken mail gateway must not
// surface as an approval error.
type Dispatcher struct {
	notifier review.Notifier
	dedup    shared.IdempotencyStore
	logger   *zap.Logger
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(notifier review.Notifier, dedup shared.IdempotencyStore, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		dedup:    dedup,
		logger:   logger.Named("notification_dispatcher"),
	}
}

// EventTypes returns the event types this handler is interested in
func (d *Dispatcher) EventTypes() []string {
	return []string{
		"FactChangeSubmitted",
		"FactChangeResolved",
		"BatchSubmitted",
		"BatchResolved",
	}
}

// Handle processes one workflow event. It never returns an error for
// delivery failures; only an unrecognized event type is reported.
func (d *Dispatcher) Handle(ctx context.Context, event shared.DomainEvent) error {
	fresh, err := d.dedup.MarkProcessed(ctx, event.EventID().String(), dedupTTL)
	if err != nil {
		// Dedup store unavailable: deliver anyway, duplicates beat silence
		d.logger.Warn("idempotency check failed, delivering without dedup",
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
	} else if !fresh {
		return nil
	}

	switch e := event.(type) {
	case *review.FactChangeSubmittedEvent:
		d.onChangeSubmitted(ctx, e)
	case *review.FactChangeResolvedEvent:
		d.onChangeResolved(ctx, e)
	case *review.BatchSubmittedEvent:
		d.onBatchSubmitted(ctx, e)
	case *review.BatchResolvedEvent:
		d.onBatchResolved(ctx, e)
	default:
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}
	return nil
}

func (d *Dispatcher) onChangeSubmitted(ctx context.Context, e *review.FactChangeSubmittedEvent) {
	if !e.NotifyOwner {
		return
	}
	d.send(ctx, review.Notification{
		Kind:      review.NotifyPendingApproval,
		Recipient: e.PlanOwnerID,
		Context: map[string]string{
			"change_id":    e.ChangeID.String(),
			"fact_id":      e.FactID.String(),
			"submitted_by": e.SubmittedBy.String(),
		},
	})
}

func (d *Dispatcher) onChangeResolved(ctx context.Context, e *review.FactChangeResolvedEvent) {
	if e.EmailSuppressed {
		return
	}
	kind := review.NotifyApproved
	if e.Outcome == review.ApprovalStatusRejected {
		kind = review.NotifyRejected
	}
	n := review.Notification{
		Kind:      kind,
		Recipient: e.SubmittedBy,
		Context: map[string]string{
			"change_id":   e.ChangeID.String(),
			"fact_id":     e.FactID.String(),
			"reviewed_by": e.ReviewedBy.String(),
		},
	}
	if e.RejectReason != "" {
		n.Context["reject_reason"] = e.RejectReason
	}
	d.send(ctx, n)
}

func (d *Dispatcher) onBatchSubmitted(ctx context.Context, e *review.BatchSubmittedEvent) {
	d.send(ctx, review.Notification{
		Kind:      review.NotifyPendingApproval,
		Recipient: e.PlanOwnerID,
		Context: map[string]string{
			"batch_id":     e.BatchID.String(),
			"plan_id":      e.PlanID.String(),
			"submitted_by": e.SubmittedBy.String(),
			"row_count":    fmt.Sprintf("%d", e.RowCount),
			"skipped":      fmt.Sprintf("%d", e.SkippedCount),
		},
	})
}

func (d *Dispatcher) onBatchResolved(ctx context.Context, e *review.BatchResolvedEvent) {
	d.send(ctx, review.Notification{
		Kind:      review.NotifyBatchResolved,
		Recipient: e.SubmittedBy,
		Context: map[string]string{
			"batch_id":    e.BatchID.String(),
			"outcome":     e.Summary.Outcome.String(),
			"requested":   fmt.Sprintf("%d", e.Summary.Requested),
			"resolved":    fmt.Sprintf("%d", e.Summary.Resolved),
			"failed":      fmt.Sprintf("%d", e.Summary.Failed),
			"reviewed_by": e.ReviewedBy.String(),
		},
	})
}

func (d *Dispatcher) send(ctx context.Context, n review.Notification) {
	if err := d.notifier.Notify(ctx, n); err != nil {
		d.logger.Error("notification delivery failed",
			zap.String("kind", string(n.Kind)),
			zap.String("recipient", n.Recipient.String()),
			zap.Error(err),
		)
	}
}

var _ shared.EventHandler = (*Dispatcher)(nil)
