package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/kpiboard/backend/internal/domain/scorecard"
	"github.com/shopspring/decimal"
)

// KPIModel is the persistence model for the KPI dimension row.
type KPIModel struct {
	BaseModel
	ObjectiveID uuid.UUID `gorm:"type:uuid;not null;index"`
	Code        string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Unit        string    `gorm:"type:varchar(50)"`
	IsActive    bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (KPIModel) TableName() string {
	return "kpis"
}

// ToDomain converts the persistence model to a domain KPI entity.
func (m *KPIModel) ToDomain() *scorecard.KPI {
	return &scorecard.KPI{
		BaseEntity:  m.BaseModel.ToDomain(),
		ObjectiveID: m.ObjectiveID,
		Code:        m.Code,
		Name:        m.Name,
		Unit:        m.Unit,
		IsActive:    m.IsActive,
	}
}

// PlanModel is the persistence model for the Plan entity.
type PlanModel struct {
	BaseModel
	KPIID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_plan_kpi_year,priority:1"`
	Year      int       `gorm:"not null;uniqueIndex:idx_plan_kpi_year,priority:2"`
	Frequency string    `gorm:"type:varchar(20);not null"`
	Priority  string    `gorm:"type:varchar(10);not null;default:'MEDIUM'"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	EditorID  uuid.UUID `gorm:"type:uuid;not null;index"`
	IsActive  bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PlanModel) TableName() string {
	return "plans"
}

// ToDomain converts the persistence model to a domain Plan entity.
func (m *PlanModel) ToDomain() *scorecard.Plan {
	return &scorecard.Plan{
		BaseEntity: m.BaseModel.ToDomain(),
		KPIID:      m.KPIID,
		Year:       m.Year,
		Frequency:  scorecard.Frequency(m.Frequency),
		Priority:   scorecard.PlanPriority(m.Priority),
		OwnerID:    m.OwnerID,
		EditorID:   m.EditorID,
		IsActive:   m.IsActive,
	}
}

// PeriodModel is the persistence model for calendar periods.
type PeriodModel struct {
	BaseModel
	Year      int       `gorm:"not null;uniqueIndex:idx_period_year_freq_num,priority:1"`
	Frequency string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_period_year_freq_num,priority:2"`
	Number    int       `gorm:"not null;uniqueIndex:idx_period_year_freq_num,priority:3"`
	StartDate time.Time `gorm:"type:date;not null;index"`
	EndDate   time.Time `gorm:"type:date;not null"`
}

// TableName returns the table name for GORM
func (PeriodModel) TableName() string {
	return "periods"
}

// ToDomain converts the persistence model to a domain Period entity.
func (m *PeriodModel) ToDomain() *scorecard.Period {
	return &scorecard.Period{
		BaseEntity: m.BaseModel.ToDomain(),
		Year:       m.Year,
		Number:     m.Number,
		Frequency:  scorecard.Frequency(m.Frequency),
		StartDate:  m.StartDate,
		EndDate:    m.EndDate,
	}
}

// FactModel is the persistence model for the Fact aggregate root.
type FactModel struct {
	AggregateModel
	KPIID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	PlanID        uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_fact_plan_period,priority:1"`
	PeriodID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_fact_plan_period,priority:2"`
	Actual        *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Target        *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Forecast      *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Budget        *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Status        *string          `gorm:"type:varchar(30)"`
	CreatedBy     uuid.UUID        `gorm:"type:uuid;not null"`
	LastChangedBy *uuid.UUID       `gorm:"type:uuid"`
	LastChangedAt *time.Time       `gorm:"type:timestamp"`
	IsActive      bool             `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (FactModel) TableName() string {
	return "facts"
}

// ToDomain converts the persistence model to a domain Fact entity.
func (m *FactModel) ToDomain() *scorecard.Fact {
	fact := &scorecard.Fact{
		KPIID:         m.KPIID,
		PlanID:        m.PlanID,
		PeriodID:      m.PeriodID,
		Actual:        m.Actual,
		Target:        m.Target,
		Forecast:      m.Forecast,
		Budget:        m.Budget,
		CreatedBy:     m.CreatedBy,
		LastChangedBy: m.LastChangedBy,
		LastChangedAt: m.LastChangedAt,
		IsActive:      m.IsActive,
	}
	m.PopulateAggregateRoot(&fact.BaseAggregateRoot)
	if m.Status != nil {
		status := scorecard.Status(*m.Status)
		fact.Status = &status
	}
	return fact
}

// FromDomain populates the persistence model from a domain Fact entity.
func (m *FactModel) FromDomain(f *scorecard.Fact) {
	m.FromDomainAggregateRoot(f.BaseAggregateRoot)
	m.KPIID = f.KPIID
	m.PlanID = f.PlanID
	m.PeriodID = f.PeriodID
	m.Actual = f.Actual
	m.Target = f.Target
	m.Forecast = f.Forecast
	m.Budget = f.Budget
	m.CreatedBy = f.CreatedBy
	m.LastChangedBy = f.LastChangedBy
	m.LastChangedAt = f.LastChangedAt
	m.IsActive = f.IsActive
	m.Status = nil
	if f.Status != nil {
		status := f.Status.String()
		m.Status = &status
	}
}

// FactModelFromDomain creates a new persistence model from a domain Fact entity.
func FactModelFromDomain(f *scorecard.Fact) *FactModel {
	m := &FactModel{}
	m.FromDomain(f)
	return m
}
