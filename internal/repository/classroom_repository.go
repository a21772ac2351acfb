package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campusflow/timetable-api/internal/models"
)

const classroomColumns = "id, classroom_name, capacity, classroom_type, building, created_at, updated_at"

// ClassroomRepository provides read access to classrooms.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository creates a new classroom repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// FindAll returns every classroom ordered by id for deterministic matcher input.
func (r *ClassroomRepository) FindAll(ctx context.Context) ([]models.Classroom, error) {
	const query = `SELECT ` + classroomColumns + ` FROM classrooms ORDER BY id`
	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query); err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	return classrooms, nil
}

// FindByIDs loads classrooms matching the given ids. Unknown ids are skipped.
func (r *ClassroomRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.Classroom, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT ` + classroomColumns + ` FROM classrooms WHERE id = ANY($1) ORDER BY id`
	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find classrooms by ids: %w", err)
	}
	return classrooms, nil
}
