package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kpiboard/backend/internal/domain/scorecard"
	"github.com/kpiboard/backend/internal/domain/shared"
)

// newMockFactRepository creates a GormFactRepository with a mocked SQL connection
func newMockFactRepository(t *testing.T) (*GormFactRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormFactRepository(gormDB), mock, mockDB
}

func newActiveFact(t *testing.T, factID, planID, periodID uuid.UUID, version int) *scorecard.Fact {
	t.Helper()
	actual := decimal.NewFromInt(97)
	fact := &scorecard.Fact{
		KPIID:     uuid.New(),
		PlanID:    planID,
		PeriodID:  periodID,
		Actual:    &actual,
		CreatedBy: uuid.New(),
		IsActive:  true,
	}
	fact.ID = factID
	fact.Version = version
	fact.CreatedAt = time.Now()
	fact.UpdatedAt = time.Now()
	return fact
}

func factRow(factID, planID, periodID uuid.UUID, version int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "version",
		"plan_id", "period_id", "actual", "target", "status", "is_active",
	}).AddRow(factID, now, now, version, planID, periodID, "95.5", "100", "BEHIND", true)
}

func TestGormFactRepository_FindByID(t *testing.T) {
	t.Run("finds existing fact", func(t *testing.T) {
		repo, mock, mockDB := newMockFactRepository(t)
		defer mockDB.Close()

		factID := uuid.New()
		planID := uuid.New()
		periodID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "facts" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(factID, 1).
			WillReturnRows(factRow(factID, planID, periodID, 3))

		fact, err := repo.FindByID(context.Background(), factID)

		assert.NoError(t, err)
		require.NotNil(t, fact)
		assert.Equal(t, factID, fact.ID)
		assert.Equal(t, planID, fact.PlanID)
		assert.Equal(t, 3, fact.Version)
		require.NotNil(t, fact.Status)
		assert.Equal(t, "BEHIND", fact.Status.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing fact", func(t *testing.T) {
		repo, mock, mockDB := newMockFactRepository(t)
		defer mockDB.Close()

		factID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "facts" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(factID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		fact, err := repo.FindByID(context.Background(), factID)

		assert.Error(t, err)
		assert.Nil(t, fact)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormFactRepository_FindByPlanYearOrdered(t *testing.T) {
	t.Run("returns facts ordered by period start", func(t *testing.T) {
		repo, mock, mockDB := newMockFactRepository(t)
		defer mockDB.Close()

		planID := uuid.New()
		firstID := uuid.New()
		secondID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version", "plan_id", "period_id", "is_active"}).
			AddRow(firstID, now, now, 1, planID, uuid.New(), true).
			AddRow(secondID, now, now, 1, planID, uuid.New(), true)

		mock.ExpectQuery(`SELECT .* FROM "facts" JOIN periods ON periods\.id = facts\.period_id WHERE facts\.plan_id = \$1 AND periods\.year = \$2 AND facts\.is_active = \$3 ORDER BY periods\.start_date ASC`).
			WithArgs(planID, 2026, true).
			WillReturnRows(rows)

		facts, err := repo.FindByPlanYearOrdered(context.Background(), planID, 2026)

		assert.NoError(t, err)
		require.Len(t, facts, 2)
		assert.Equal(t, firstID, facts[0].ID)
		assert.Equal(t, secondID, facts[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice when plan year has no facts", func(t *testing.T) {
		repo, mock, mockDB := newMockFactRepository(t)
		defer mockDB.Close()

		planID := uuid.New()

		mock.ExpectQuery(`SELECT .* FROM "facts" JOIN periods`).
			WithArgs(planID, 2026, true).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		facts, err := repo.FindByPlanYearOrdered(context.Background(), planID, 2026)

		assert.NoError(t, err)
		assert.Empty(t, facts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormFactRepository_Save(t *testing.T) {
	t.Run("updates existing fact with version bump", func(t *testing.T) {
		repo, mock, mockDB := newMockFactRepository(t)
		defer mockDB.Close()

		factID := uuid.New()
		planID := uuid.New()
		periodID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "facts" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(factID, 1).
			WillReturnRows(factRow(factID, planID, periodID, 2))

		mock.ExpectExec(`UPDATE "facts" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		fact := newActiveFact(t, factID, planID, periodID, 2)

		err := repo.Save(context.Background(), fact)

		assert.NoError(t, err)
		assert.Equal(t, 3, fact.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns concurrency conflict when version moved", func(t *testing.T) {
		repo, mock, mockDB := newMockFactRepository(t)
		defer mockDB.Close()

		factID := uuid.New()
		planID := uuid.New()
		periodID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "facts" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(factID, 1).
			WillReturnRows(factRow(factID, planID, periodID, 2))

		mock.ExpectExec(`UPDATE "facts" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		fact := newActiveFact(t, factID, planID, periodID, 2)

		err := repo.Save(context.Background(), fact)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormFactRepository_UpdateStatus(t *testing.T) {
	t.Run("updates the status column", func(t *testing.T) {
		repo, mock, mockDB := newMockFactRepository(t)
		defer mockDB.Close()

		factID := uuid.New()

		mock.ExpectExec(`UPDATE "facts" SET "status"=\$1.* WHERE id = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(context.Background(), factID, "ON_TARGET")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when no row matched", func(t *testing.T) {
		repo, mock, mockDB := newMockFactRepository(t)
		defer mockDB.Close()

		factID := uuid.New()

		mock.ExpectExec(`UPDATE "facts" SET "status"=\$1.* WHERE id = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(context.Background(), factID, "ON_TARGET")

		assert.Error(t, err)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
