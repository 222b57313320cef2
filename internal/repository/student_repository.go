package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/contact-log-api/internal/models"
)

const studentDetailSelect = `
SELECT s.id, s.user_id, s.class_room_id, s.student_no,
       u.full_name, c.name AS class_room_name, c.homeroom_teacher_id
FROM students s
JOIN users u ON u.id = s.user_id
JOIN class_rooms c ON c.id = s.class_room_id`

// StudentRepository reads student rosters.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByUserID resolves the student profile attached to a login account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.StudentDetail, error) {
	query := studentDetailSelect + "\nWHERE s.user_id = $1"
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student by user: %w", err)
	}
	return &student, nil
}

// FindByID returns a student by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := studentDetailSelect + "\nWHERE s.id = $1"
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// ListByClassRooms returns the roster of the given classes ordered by class then student number.
func (r *StudentRepository) ListByClassRooms(ctx context.Context, classRoomIDs []string) ([]models.StudentDetail, error) {
	if len(classRoomIDs) == 0 {
		return nil, nil
	}
	query := studentDetailSelect + "\nWHERE s.class_room_id = ANY($1)\nORDER BY c.name ASC, s.student_no ASC"
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, pq.Array(classRoomIDs)); err != nil {
		return nil, fmt.Errorf("list students by class: %w", err)
	}
	return students, nil
}
