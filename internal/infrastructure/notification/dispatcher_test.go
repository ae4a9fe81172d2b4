package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kpiboard/backend/internal/domain/review"
	"github.com/kpiboard/backend/internal/domain/shared"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []review.Notification
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, msg review.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *fakeNotifier) messages() []review.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]review.Notification(nil), n.sent...)
}

func newDispatcherFixture(t *testing.T) (*Dispatcher, *fakeNotifier, *InMemoryIdempotencyStore) {
	t.Helper()
	notifier := &fakeNotifier{}
	store := NewInMemoryIdempotencyStore()
	t.Cleanup(func() { store.Close() })
	return NewDispatcher(notifier, store, zap.NewNop()), notifier, store
}

func submittedEvent(notifyOwner bool) *review.FactChangeSubmittedEvent {
	changeID := uuid.New()
	return &review.FactChangeSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("FactChangeSubmitted", "FactChange", changeID),
		ChangeID:        changeID,
		FactID:          uuid.New(),
		SubmittedBy:     uuid.New(),
		PlanOwnerID:     uuid.New(),
		NotifyOwner:     notifyOwner,
	}
}

func resolvedEvent(outcome review.ApprovalStatus, suppressed bool) *review.FactChangeResolvedEvent {
	changeID := uuid.New()
	return &review.FactChangeResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("FactChangeResolved", "FactChange", changeID),
		ChangeID:        changeID,
		FactID:          uuid.New(),
		Outcome:         outcome,
		ReviewedBy:      uuid.New(),
		SubmittedBy:     uuid.New(),
		EmailSuppressed: suppressed,
	}
}

func TestDispatcher_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("change submission notifies the plan owner", func(t *testing.T) {
		dispatcher, notifier, _ := newDispatcherFixture(t)
		event := submittedEvent(true)

		require.NoError(t, dispatcher.Handle(ctx, event))

		msgs := notifier.messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, review.NotifyPendingApproval, msgs[0].Kind)
		assert.Equal(t, event.PlanOwnerID, msgs[0].Recipient)
		assert.Equal(t, event.ChangeID.String(), msgs[0].Context["change_id"])
	})

	t.Run("notify_owner false skips the owner message", func(t *testing.T) {
		dispatcher, notifier, _ := newDispatcherFixture(t)

		require.NoError(t, dispatcher.Handle(ctx, submittedEvent(false)))

		assert.Empty(t, notifier.messages())
	})

	t.Run("duplicate event is delivered once", func(t *testing.T) {
		dispatcher, notifier, _ := newDispatcherFixture(t)
		event := submittedEvent(true)

		require.NoError(t, dispatcher.Handle(ctx, event))
		require.NoError(t, dispatcher.Handle(ctx, event))

		assert.Len(t, notifier.messages(), 1)
	})

	t.Run("approval notifies the submitter", func(t *testing.T) {
		dispatcher, notifier, _ := newDispatcherFixture(t)
		event := resolvedEvent(review.ApprovalStatusApproved, false)

		require.NoError(t, dispatcher.Handle(ctx, event))

		msgs := notifier.messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, review.NotifyApproved, msgs[0].Kind)
		assert.Equal(t, event.SubmittedBy, msgs[0].Recipient)
	})

	t.Run("rejection carries the reason", func(t *testing.T) {
		dispatcher, notifier, _ := newDispatcherFixture(t)
		event := resolvedEvent(review.ApprovalStatusRejected, false)
		event.RejectReason = "wrong period"

		require.NoError(t, dispatcher.Handle(ctx, event))

		msgs := notifier.messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, review.NotifyRejected, msgs[0].Kind)
		assert.Equal(t, "wrong period", msgs[0].Context["reject_reason"])
	})

	t.Run("suppressed resolution produces no message", func(t *testing.T) {
		dispatcher, notifier, _ := newDispatcherFixture(t)

		require.NoError(t, dispatcher.Handle(ctx, resolvedEvent(review.ApprovalStatusApproved, true)))

		assert.Empty(t, notifier.messages())
	})

	t.Run("batch submission sends one consolidated message", func(t *testing.T) {
		dispatcher, notifier, _ := newDispatcherFixture(t)
		batchID := uuid.New()
		event := &review.BatchSubmittedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent("BatchSubmitted", "Batch", batchID),
			BatchID:         batchID,
			PlanID:          uuid.New(),
			SubmittedBy:     uuid.New(),
			PlanOwnerID:     uuid.New(),
			RowCount:        12,
			SkippedCount:    2,
		}

		require.NoError(t, dispatcher.Handle(ctx, event))

		msgs := notifier.messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, review.NotifyPendingApproval, msgs[0].Kind)
		assert.Equal(t, event.PlanOwnerID, msgs[0].Recipient)
		assert.Equal(t, "12", msgs[0].Context["row_count"])
		assert.Equal(t, "2", msgs[0].Context["skipped"])
	})

	t.Run("batch resolution notifies the submitter with the summary", func(t *testing.T) {
		dispatcher, notifier, _ := newDispatcherFixture(t)
		batchID := uuid.New()
		event := &review.BatchResolvedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent("BatchResolved", "Batch", batchID),
			BatchID:         batchID,
			SubmittedBy:     uuid.New(),
			ReviewedBy:      uuid.New(),
			Summary: review.BatchOutcome{
				Outcome:   review.ApprovalStatusApproved,
				Requested: 10,
				Resolved:  9,
				Failed:    1,
			},
		}

		require.NoError(t, dispatcher.Handle(ctx, event))

		msgs := notifier.messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, review.NotifyBatchResolved, msgs[0].Kind)
		assert.Equal(t, event.SubmittedBy, msgs[0].Recipient)
		assert.Equal(t, "10", msgs[0].Context["requested"])
		assert.Equal(t, "9", msgs[0].Context["resolved"])
		assert.Equal(t, "1", msgs[0].Context["failed"])
	})

	t.Run("delivery failure is swallowed", func(t *testing.T) {
		notifier := &fakeNotifier{err: errors.New("smtp down")}
		store := NewInMemoryIdempotencyStore()
		defer store.Close()
		dispatcher := NewDispatcher(notifier, store, zap.NewNop())

		assert.NoError(t, dispatcher.Handle(ctx, submittedEvent(true)))
	})

	t.Run("unexpected event type is reported", func(t *testing.T) {
		dispatcher, _, _ := newDispatcherFixture(t)
		base := shared.NewBaseDomainEvent("SomethingElse", "Fact", uuid.New())

		err := dispatcher.Handle(ctx, &base)
		assert.Error(t, err)
	})
}
