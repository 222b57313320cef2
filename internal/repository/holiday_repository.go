package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/contact-log-api/internal/models"
	"github.com/noah-isme/contact-log-api/pkg/schoolday"
)

// ErrHolidayExists is returned when a holiday is already registered for the date.
var ErrHolidayExists = errors.New("holiday already registered for date")

const holidayColumns = `id, holiday_date, name, recurring_yearly, created_at`

// HolidayRepository persists the school holiday calendar.
type HolidayRepository struct {
	db *sqlx.DB
}

// NewHolidayRepository constructs the repository.
func NewHolidayRepository(db *sqlx.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

// ListBetween returns the holidays dated within [from, to] plus every recurring holiday.
func (r *HolidayRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Holiday, error) {
	query := `SELECT ` + holidayColumns + ` FROM holidays WHERE (holiday_date BETWEEN $1 AND $2) OR recurring_yearly ORDER BY holiday_date ASC`
	var holidays []models.Holiday
	if err := r.db.SelectContext(ctx, &holidays, query, schoolday.Key(from), schoolday.Key(to)); err != nil {
		return nil, fmt.Errorf("list holidays between: %w", err)
	}
	return holidays, nil
}

// ListByYear returns the holidays dated in year plus every recurring holiday.
func (r *HolidayRepository) ListByYear(ctx context.Context, year int) ([]models.Holiday, error) {
	query := `SELECT ` + holidayColumns + ` FROM holidays WHERE EXTRACT(YEAR FROM holiday_date) = $1 OR recurring_yearly ORDER BY holiday_date ASC`
	var holidays []models.Holiday
	if err := r.db.SelectContext(ctx, &holidays, query, year); err != nil {
		return nil, fmt.Errorf("list holidays by year: %w", err)
	}
	return holidays, nil
}

// FindByID returns sql.ErrNoRows when the holiday does not exist.
func (r *HolidayRepository) FindByID(ctx context.Context, id string) (*models.Holiday, error) {
	query := `SELECT ` + holidayColumns + ` FROM holidays WHERE id = $1`
	var holiday models.Holiday
	if err := r.db.GetContext(ctx, &holiday, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find holiday: %w", err)
	}
	return &holiday, nil
}

// Create inserts a holiday. A duplicate date yields ErrHolidayExists.
func (r *HolidayRepository) Create(ctx context.Context, holiday *models.Holiday) error {
	if holiday.ID == "" {
		holiday.ID = uuid.NewString()
	}
	if holiday.CreatedAt.IsZero() {
		holiday.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO holidays (id, holiday_date, name, recurring_yearly, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, holiday.ID, schoolday.Key(holiday.Date), holiday.Name, holiday.RecurringYearly, holiday.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrHolidayExists
		}
		return fmt.Errorf("create holiday: %w", err)
	}
	return nil
}

// Delete removes a holiday and reports whether a row existed.
func (r *HolidayRepository) Delete(ctx context.Context, id string) (bool, error) {
	const query = `DELETE FROM holidays WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete holiday: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete holiday rows: %w", err)
	}
	return affected == 1, nil
}
