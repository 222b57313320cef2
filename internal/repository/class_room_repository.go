package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/contact-log-api/internal/models"
)

const classRoomSelect = `
SELECT c.id, c.grade_id, c.name, c.homeroom_teacher_id, g.name AS grade_name
FROM class_rooms c
JOIN grades g ON g.id = c.grade_id`

// ClassRoomRepository reads classes and their homeroom assignment.
type ClassRoomRepository struct {
	db *sqlx.DB
}

// NewClassRoomRepository constructs the repository.
func NewClassRoomRepository(db *sqlx.DB) *ClassRoomRepository {
	return &ClassRoomRepository{db: db}
}

// ListByHomeroomTeacher returns the classes the teacher is homeroom teacher of.
func (r *ClassRoomRepository) ListByHomeroomTeacher(ctx context.Context, teacherID string) ([]models.ClassRoomDetail, error) {
	query := classRoomSelect + "\nWHERE c.homeroom_teacher_id = $1\nORDER BY g.year ASC, c.name ASC"
	var classes []models.ClassRoomDetail
	if err := r.db.SelectContext(ctx, &classes, query, teacherID); err != nil {
		return nil, fmt.Errorf("list homeroom classes: %w", err)
	}
	return classes, nil
}

// FindByID returns sql.ErrNoRows when the class does not exist.
func (r *ClassRoomRepository) FindByID(ctx context.Context, id string) (*models.ClassRoomDetail, error) {
	query := classRoomSelect + "\nWHERE c.id = $1"
	var class models.ClassRoomDetail
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find class room: %w", err)
	}
	return &class, nil
}
