package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/review"
	"github.com/kpiboard/backend/internal/domain/scorecard"
	"github.com/shopspring/decimal"
)

// FactChangeModel is the persistence model for the FactChange aggregate root.
// At most one PENDING row may exist per fact; a partial unique index on
// (fact_id) WHERE approval_status = 'PENDING' enforces this at the database
// level, see EnsureWorkflowIndexes.
type FactChangeModel struct {
	AggregateModel
	FactID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	ActualNew      *decimal.Decimal `gorm:"type:decimal(18,4)"`
	TargetNew      *decimal.Decimal `gorm:"type:decimal(18,4)"`
	ForecastNew    *decimal.Decimal `gorm:"type:decimal(18,4)"`
	StatusNew      *string          `gorm:"type:varchar(30)"`
	SubmittedBy    uuid.UUID        `gorm:"type:uuid;not null;index"`
	SubmittedAt    time.Time        `gorm:"not null;index"`
	ApprovalStatus string           `gorm:"type:varchar(20);not null;index"`
	ReviewedBy     *uuid.UUID       `gorm:"type:uuid"`
	ReviewedAt     *time.Time       `gorm:"type:timestamp"`
	RejectReason   string           `gorm:"type:text"`
	BatchID        *uuid.UUID       `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (FactChangeModel) TableName() string {
	return "fact_changes"
}

// ToDomain converts the persistence model to a domain FactChange entity.
func (m *FactChangeModel) ToDomain() *review.FactChange {
	change := &review.FactChange{
		FactID: m.FactID,
		Proposed: scorecard.ProposedValues{
			Actual:   m.ActualNew,
			Target:   m.TargetNew,
			Forecast: m.ForecastNew,
		},
		SubmittedBy:    m.SubmittedBy,
		SubmittedAt:    m.SubmittedAt,
		ApprovalStatus: review.ApprovalStatus(m.ApprovalStatus),
		ReviewedBy:     m.ReviewedBy,
		ReviewedAt:     m.ReviewedAt,
		RejectReason:   m.RejectReason,
		BatchID:        m.BatchID,
	}
	m.PopulateAggregateRoot(&change.BaseAggregateRoot)
	if m.StatusNew != nil {
		status := scorecard.Status(*m.StatusNew)
		change.Proposed.Status = &status
	}
	return change
}

// FromDomain populates the persistence model from a domain FactChange entity.
func (m *FactChangeModel) FromDomain(c *review.FactChange) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.FactID = c.FactID
	m.ActualNew = c.Proposed.Actual
	m.TargetNew = c.Proposed.Target
	m.ForecastNew = c.Proposed.Forecast
	m.SubmittedBy = c.SubmittedBy
	m.SubmittedAt = c.SubmittedAt
	m.ApprovalStatus = c.ApprovalStatus.String()
	m.ReviewedBy = c.ReviewedBy
	m.ReviewedAt = c.ReviewedAt
	m.RejectReason = c.RejectReason
	m.BatchID = c.BatchID
	m.StatusNew = nil
	if c.Proposed.Status != nil {
		status := c.Proposed.Status.String()
		m.StatusNew = &status
	}
}

// FactChangeModelFromDomain creates a new persistence model from a domain FactChange entity.
func FactChangeModelFromDomain(c *review.FactChange) *FactChangeModel {
	m := &FactChangeModel{}
	m.FromDomain(c)
	return m
}

// BatchModel is the persistence model for the Batch aggregate root.
type BatchModel struct {
	AggregateModel
	KPIID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	PlanID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	Year           int        `gorm:"not null"`
	Frequency      string     `gorm:"type:varchar(20);not null"`
	PeriodMin      int        `gorm:"not null"`
	PeriodMax      int        `gorm:"not null"`
	RowCount       int        `gorm:"not null;default:0"`
	SkippedCount   int        `gorm:"not null;default:0"`
	SubmittedBy    uuid.UUID  `gorm:"type:uuid;not null;index"`
	SubmittedAt    time.Time  `gorm:"not null;index"`
	ApprovalStatus string     `gorm:"type:varchar(20);not null;index"`
	ReviewedBy     *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt     *time.Time `gorm:"type:timestamp"`
	RejectReason   string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (BatchModel) TableName() string {
	return "change_batches"
}

// ToDomain converts the persistence model to a domain Batch entity.
func (m *BatchModel) ToDomain() *review.Batch {
	batch := &review.Batch{
		KPIID:          m.KPIID,
		PlanID:         m.PlanID,
		Year:           m.Year,
		Frequency:      scorecard.Frequency(m.Frequency),
		PeriodMin:      m.PeriodMin,
		PeriodMax:      m.PeriodMax,
		RowCount:       m.RowCount,
		SkippedCount:   m.SkippedCount,
		SubmittedBy:    m.SubmittedBy,
		SubmittedAt:    m.SubmittedAt,
		ApprovalStatus: review.ApprovalStatus(m.ApprovalStatus),
		ReviewedBy:     m.ReviewedBy,
		ReviewedAt:     m.ReviewedAt,
		RejectReason:   m.RejectReason,
	}
	m.PopulateAggregateRoot(&batch.BaseAggregateRoot)
	return batch
}

// FromDomain populates the persistence model from a domain Batch entity.
func (m *BatchModel) FromDomain(b *review.Batch) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.KPIID = b.KPIID
	m.PlanID = b.PlanID
	m.Year = b.Year
	m.Frequency = b.Frequency.String()
	m.PeriodMin = b.PeriodMin
	m.PeriodMax = b.PeriodMax
	m.RowCount = b.RowCount
	m.SkippedCount = b.SkippedCount
	m.SubmittedBy = b.SubmittedBy
	m.SubmittedAt = b.SubmittedAt
	m.ApprovalStatus = b.ApprovalStatus.String()
	m.ReviewedBy = b.ReviewedBy
	m.ReviewedAt = b.ReviewedAt
	m.RejectReason = b.RejectReason
}

// BatchModelFromDomain creates a new persistence model from a domain Batch entity.
func BatchModelFromDomain(b *review.Batch) *BatchModel {
	m := &BatchModel{}
	m.FromDomain(b)
	return m
}
