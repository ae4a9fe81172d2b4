package scorecard

import (
	"time"

	"github.com/kpiboard/backend/internal/domain/shared"
)

// Frequency represents how often a plan is measured
type Frequency string

const (
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
)

// IsValid checks if the frequency is a valid Frequency
func (f Frequency) IsValid() bool {
	return f == FrequencyMonthly || f == FrequencyQuarterly
}

// String returns the string representation of Frequency
func (f Frequency) String() string {
	return string(f)
}

// PeriodsPerYear returns how many periods a year holds at this frequency
func (f Frequency) PeriodsPerYear() int {
	if f == FrequencyQuarterly {
		return 4
	}
	return 12
}

// Period is a calendar period (month or quarter of a year). Periods are
// read-only reference data; the workflow core never creates or deletes them.
type Period struct {
	shared.BaseEntity
	Year      int       `json:"year"`
	Number    int       `json:"number"` // 1-12 for monthly, 1-4 for quarterly
	Frequency Frequency `json:"frequency"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// IsDue reports whether an actual value is expected for this period:
// true once now is at or past the period's end date plus the grace interval.
func (p *Period) IsDue(now time.Time, grace time.Duration) bool {
	return !now.Before(p.EndDate.Add(grace))
}

// Contains reports whether the period number falls inside [min, max]
func (p *Period) Contains(minNumber, maxNumber int) bool {
	return p.Number >= minNumber && p.Number <= maxNumber
}
