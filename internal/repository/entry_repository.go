package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/contact-log-api/internal/models"
	"github.com/noah-isme/contact-log-api/pkg/schoolday"
)

// ErrEntryConflict is returned by Insert when another writer already created the (student, target date) row.
var ErrEntryConflict = errors.New("entry already exists for student and target date")

const uniqueViolation = "23505"

const entryColumns = `id, student_id, target_date, content, condition_rating, mood_rating, status, read_by, read_at, created_at, updated_at`

const entryDetailSelect = `
SELECT e.id, e.student_id, e.target_date, e.content, e.condition_rating, e.mood_rating, e.status,
       e.read_by, e.read_at, e.created_at, e.updated_at,
       s.student_no, u.full_name AS student_name, c.id AS class_room_id, c.name AS class_room_name,
       r.full_name AS reader_name
FROM entries e
JOIN students s ON s.id = e.student_id
JOIN users u ON u.id = s.user_id
JOIN class_rooms c ON c.id = s.class_room_id
LEFT JOIN users r ON r.id = e.read_by`

// EntryTx exposes the row-locked operations available inside an entry transaction.
type EntryTx interface {
	// LockByStudentDate returns nil, nil when the student has no entry for the day.
	LockByStudentDate(ctx context.Context, studentID string, targetDate time.Time) (*models.Entry, error)
	// LockByID returns sql.ErrNoRows when the entry does not exist.
	LockByID(ctx context.Context, id string) (*models.Entry, error)
	Insert(ctx context.Context, entry *models.Entry) error
	UpdateContent(ctx context.Context, entry *models.Entry) error
}

// EntryRepository persists contact-log entries.
type EntryRepository struct {
	db *sqlx.DB
}

// NewEntryRepository constructs the repository.
func NewEntryRepository(db *sqlx.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// WithinTx runs fn inside a transaction, committing when fn returns nil.
func (r *EntryRepository) WithinTx(ctx context.Context, fn func(tx EntryTx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin entry transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&entryTx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit entry transaction: %w", err)
	}
	return nil
}

type entryTx struct {
	tx *sqlx.Tx
}

func (t *entryTx) LockByStudentDate(ctx context.Context, studentID string, targetDate time.Time) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE student_id = $1 AND target_date = $2 FOR UPDATE`
	var entry models.Entry
	if err := t.tx.GetContext(ctx, &entry, query, studentID, schoolday.Key(targetDate)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock entry by student date: %w", err)
	}
	return &entry, nil
}

func (t *entryTx) LockByID(ctx context.Context, id string) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1 FOR UPDATE`
	var entry models.Entry
	if err := t.tx.GetContext(ctx, &entry, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock entry: %w", err)
	}
	return &entry, nil
}

func (t *entryTx) Insert(ctx context.Context, entry *models.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `INSERT INTO entries (id, student_id, target_date, content, condition_rating, mood_rating, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := t.tx.ExecContext(ctx, query,
		entry.ID, entry.StudentID, schoolday.Key(entry.TargetDate), entry.Content,
		entry.ConditionRating, entry.MoodRating, entry.Status, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEntryConflict
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// UpdateContent refuses to touch a row that has been read; the caller holds the row lock.
func (t *entryTx) UpdateContent(ctx context.Context, entry *models.Entry) error {
	const query = `UPDATE entries SET content = $2, condition_rating = $3, mood_rating = $4, updated_at = $5 WHERE id = $1 AND read_at IS NULL`
	res, err := t.tx.ExecContext(ctx, query, entry.ID, entry.Content, entry.ConditionRating, entry.MoodRating, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update entry content: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update entry content rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID returns sql.ErrNoRows when the entry is missing.
func (r *EntryRepository) FindByID(ctx context.Context, id string) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`
	var entry models.Entry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find entry: %w", err)
	}
	return &entry, nil
}

// FindDetailByID returns the entry joined with its student and class.
func (r *EntryRepository) FindDetailByID(ctx context.Context, id string) (*models.EntryDetail, error) {
	query := entryDetailSelect + "\nWHERE e.id = $1"
	var detail models.EntryDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find entry detail: %w", err)
	}
	return &detail, nil
}

// FindByStudentDate returns nil, nil when the student has not submitted for the day.
func (r *EntryRepository) FindByStudentDate(ctx context.Context, studentID string, targetDate time.Time) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE student_id = $1 AND target_date = $2`
	var entry models.Entry
	if err := r.db.GetContext(ctx, &entry, query, studentID, schoolday.Key(targetDate)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find entry by student date: %w", err)
	}
	return &entry, nil
}

// MarkRead flips an unread entry to READ. It reports false when the entry was already read or does not exist.
func (r *EntryRepository) MarkRead(ctx context.Context, id, readerID string, at time.Time) (bool, error) {
	const query = `UPDATE entries SET status = 'READ', read_by = $2, read_at = $3, updated_at = $3 WHERE id = $1 AND read_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, readerID, at)
	if err != nil {
		return false, fmt.Errorf("mark entry read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark entry read rows: %w", err)
	}
	return affected == 1, nil
}

// MarkUnread clears the read state. It reports false only when the entry does not exist.
func (r *EntryRepository) MarkUnread(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `UPDATE entries SET status = 'SUBMITTED', read_by = NULL, read_at = NULL, updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return false, fmt.Errorf("mark entry unread: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark entry unread rows: %w", err)
	}
	return affected == 1, nil
}

// MarkReadMany flips every listed unread entry and returns the ids that changed.
func (r *EntryRepository) MarkReadMany(ctx context.Context, ids []string, readerID string, at time.Time) ([]string, error) {
	const query = `UPDATE entries SET status = 'READ', read_by = $2, read_at = $3, updated_at = $3 WHERE id = ANY($1) AND read_at IS NULL RETURNING id`
	var changed []string
	if err := r.db.SelectContext(ctx, &changed, query, pq.Array(ids), readerID, at); err != nil {
		return nil, fmt.Errorf("mark entries read: %w", err)
	}
	return changed, nil
}

// MarkUnreadMany clears the read state of every listed entry and returns the ids that exist.
func (r *EntryRepository) MarkUnreadMany(ctx context.Context, ids []string, at time.Time) ([]string, error) {
	const query = `UPDATE entries SET status = 'SUBMITTED', read_by = NULL, read_at = NULL, updated_at = $2 WHERE id = ANY($1) RETURNING id`
	var changed []string
	if err := r.db.SelectContext(ctx, &changed, query, pq.Array(ids), at); err != nil {
		return nil, fmt.Errorf("mark entries unread: %w", err)
	}
	return changed, nil
}

// ExistingIDs filters ids down to those present in storage.
func (r *EntryRepository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	const query = `SELECT id FROM entries WHERE id = ANY($1)`
	var found []string
	if err := r.db.SelectContext(ctx, &found, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("check entry ids: %w", err)
	}
	return found, nil
}

// Delete removes an entry, returning the student to the not-submitted state for that day.
func (r *EntryRepository) Delete(ctx context.Context, id string) (bool, error) {
	const query = `DELETE FROM entries WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete entry rows: %w", err)
	}
	return affected == 1, nil
}

// List returns entry details matching the filter, newest target date first, with the total count.
func (r *EntryRepository) List(ctx context.Context, filter models.EntryFilter) ([]models.EntryDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)))
	}
	if len(filter.ClassRoomIDs) > 0 {
		args = append(args, pq.Array(filter.ClassRoomIDs))
		conditions = append(conditions, fmt.Sprintf("s.class_room_id = ANY($%d)", len(args)))
	}
	if filter.TargetDate != nil {
		args = append(args, schoolday.Key(*filter.TargetDate))
		conditions = append(conditions, fmt.Sprintf("e.target_date = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(e.content) LIKE $%d OR LOWER(u.full_name) LIKE $%d OR LOWER(s.student_no) LIKE $%d)", len(args), len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "\nWHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 500 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("%s%s\nORDER BY e.target_date DESC, s.student_no ASC LIMIT %d OFFSET %d", entryDetailSelect, where, pageSize, offset)
	var entries []models.EntryDetail
	if err := r.db.SelectContext(ctx, &entries, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM entries e
JOIN students s ON s.id = e.student_id
JOIN users u ON u.id = s.user_id` + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}
	return entries, total, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
