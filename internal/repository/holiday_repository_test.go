package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contact-log-api/internal/models"
)

func TestHolidayRepositoryListBetweenIncludesRecurring(t *testing.T) {
	db, mock, cleanup := newEntryRepoMock(t)
	defer cleanup()
	repo := NewHolidayRepository(db)

	from := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "holiday_date", "name", "recurring_yearly", "created_at"}).
		AddRow("h1", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "New Year", true, time.Now()).
		AddRow("h2", time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC), "Sports Day", false, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, holiday_date, name, recurring_yearly, created_at FROM holidays WHERE (holiday_date BETWEEN $1 AND $2) OR recurring_yearly ORDER BY holiday_date ASC`)).
		WithArgs("2025-08-10", "2025-10-14").
		WillReturnRows(rows)

	holidays, err := repo.ListBetween(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.True(t, holidays[0].RecurringYearly)
	assert.Equal(t, "Sports Day", holidays[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHolidayRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newEntryRepoMock(t)
	defer cleanup()
	repo := NewHolidayRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO holidays`)).
		WithArgs(sqlmock.AnyArg(), "2025-10-13", "Sports Day", false, sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "holidays_date_key"})

	err := repo.Create(context.Background(), &models.Holiday{Date: time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC), Name: "Sports Day"})
	assert.ErrorIs(t, err, ErrHolidayExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHolidayRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newEntryRepoMock(t)
	defer cleanup()
	repo := NewHolidayRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM holidays WHERE id = $1`)).
		WithArgs("h9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Delete(context.Background(), "h9")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
