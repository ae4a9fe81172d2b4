package review

import (
	"testing"

	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/scorecard"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func newPendingChange(t *testing.T) *FactChange {
	t.Helper()
	change, err := NewFactChange(uuid.New(), uuid.New(), scorecard.ProposedValues{Actual: dec("42")}, nil)
	require.NoError(t, err)
	return change
}

func TestNewFactChange(t *testing.T) {
	t.Run("creates pending change", func(t *testing.T) {
		change := newPendingChange(t)
		assert.Equal(t, ApprovalStatusPending, change.ApprovalStatus)
		assert.True(t, change.IsPending())
		assert.False(t, change.SubmittedAt.IsZero())
		assert.Nil(t, change.ReviewedBy)
		assert.Nil(t, change.BatchID)
	})

	t.Run("carries batch reference", func(t *testing.T) {
		batchID := uuid.New()
		change, err := NewFactChange(uuid.New(), uuid.New(), scorecard.ProposedValues{Actual: dec("1")}, &batchID)
		require.NoError(t, err)
		require.NotNil(t, change.BatchID)
		assert.Equal(t, batchID, *change.BatchID)
	})

	t.Run("fails with empty fact ID", func(t *testing.T) {
		_, err := NewFactChange(uuid.Nil, uuid.New(), scorecard.ProposedValues{Actual: dec("1")}, nil)
		require.Error(t, err)
	})

	t.Run("fails with empty submitter", func(t *testing.T) {
		_, err := NewFactChange(uuid.New(), uuid.Nil, scorecard.ProposedValues{Actual: dec("1")}, nil)
		require.Error(t, err)
	})

	t.Run("fails with empty proposal", func(t *testing.T) {
		_, err := NewFactChange(uuid.New(), uuid.New(), scorecard.ProposedValues{}, nil)
		require.Error(t, err)
	})

	t.Run("fails with invalid proposed status", func(t *testing.T) {
		bad := scorecard.Status("GREEN")
		_, err := NewFactChange(uuid.New(), uuid.New(), scorecard.ProposedValues{Status: &bad}, nil)
		require.Error(t, err)
	})
}

func TestFactChangeApprove(t *testing.T) {
	t.Run("stamps reviewer and terminal status", func(t *testing.T) {
		change := newPendingChange(t)
		reviewer := uuid.New()

		require.NoError(t, change.Approve(reviewer))

		assert.True(t, change.IsApproved())
		assert.True(t, change.ApprovalStatus.IsTerminal())
		require.NotNil(t, change.ReviewedBy)
		assert.Equal(t, reviewer, *change.ReviewedBy)
		assert.NotNil(t, change.ReviewedAt)
	})

	t.Run("cannot approve twice", func(t *testing.T) {
		change := newPendingChange(t)
		require.NoError(t, change.Approve(uuid.New()))
		require.Error(t, change.Approve(uuid.New()))
	})

	t.Run("cannot approve a rejected change", func(t *testing.T) {
		change := newPendingChange(t)
		require.NoError(t, change.Reject(uuid.New(), "stale numbers"))
		require.Error(t, change.Approve(uuid.New()))
	})

	t.Run("requires a reviewer", func(t *testing.T) {
		change := newPendingChange(t)
		require.Error(t, change.Approve(uuid.Nil))
		assert.True(t, change.IsPending())
	})
}

func TestFactChangeReject(t *testing.T) {
	t.Run("stamps reason and terminal status", func(t *testing.T) {
		change := newPendingChange(t)
		reviewer := uuid.New()

		require.NoError(t, change.Reject(reviewer, "wrong period"))

		assert.True(t, change.IsRejected())
		assert.Equal(t, "wrong period", change.RejectReason)
		require.NotNil(t, change.ReviewedBy)
		assert.Equal(t, reviewer, *change.ReviewedBy)
	})

	t.Run("empty reason keeps the change pending", func(t *testing.T) {
		change := newPendingChange(t)
		require.Error(t, change.Reject(uuid.New(), ""))
		assert.True(t, change.IsPending())
		assert.Nil(t, change.ReviewedBy)
	})

	t.Run("cannot reject twice", func(t *testing.T) {
		change := newPendingChange(t)
		require.NoError(t, change.Reject(uuid.New(), "duplicate row"))
		require.Error(t, change.Reject(uuid.New(), "again"))
	})
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, StateNoChange, StateOf(nil))

	change := newPendingChange(t)
	assert.Equal(t, StatePending, StateOf(change))

	require.NoError(t, change.Approve(uuid.New()))
	assert.Equal(t, StateApproved, StateOf(change))

	rejected := newPendingChange(t)
	require.NoError(t, rejected.Reject(uuid.New(), "bad data"))
	assert.Equal(t, StateRejected, StateOf(rejected))
}
