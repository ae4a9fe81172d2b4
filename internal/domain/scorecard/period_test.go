package scorecard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrequencyPeriodsPerYear(t *testing.T) {
	assert.Equal(t, 12, FrequencyMonthly.PeriodsPerYear())
	assert.Equal(t, 4, FrequencyQuarterly.PeriodsPerYear())
}

func TestFrequencyIsValid(t *testing.T) {
	assert.True(t, FrequencyMonthly.IsValid())
	assert.True(t, FrequencyQuarterly.IsValid())
	assert.False(t, Frequency("WEEKLY").IsValid())
}

func TestPeriodIsDue(t *testing.T) {
	end := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	period := Period{
		Year:      2026,
		Number:    3,
		Frequency: FrequencyMonthly,
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   end,
	}
	grace := 120 * time.Hour

	t.Run("not due before end date", func(t *testing.T) {
		assert.False(t, period.IsDue(end.Add(-time.Hour), grace))
	})

	t.Run("not due inside the grace interval", func(t *testing.T) {
		assert.False(t, period.IsDue(end.Add(grace-time.Minute), grace))
	})

	t.Run("due exactly at end plus grace", func(t *testing.T) {
		assert.True(t, period.IsDue(end.Add(grace), grace))
	})

	t.Run("due after the grace interval", func(t *testing.T) {
		assert.True(t, period.IsDue(end.Add(grace+time.Hour), grace))
	})

	t.Run("zero grace means due at end date", func(t *testing.T) {
		assert.True(t, period.IsDue(end, 0))
		assert.False(t, period.IsDue(end.Add(-time.Second), 0))
	})
}

func TestPeriodContains(t *testing.T) {
	period := Period{Number: 5}
	assert.True(t, period.Contains(1, 12))
	assert.True(t, period.Contains(5, 5))
	assert.False(t, period.Contains(6, 12))
	assert.False(t, period.Contains(1, 4))
}
