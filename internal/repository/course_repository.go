package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campusflow/timetable-api/internal/models"
	appErrors "github.com/campusflow/timetable-api/pkg/errors"
)

const courseColumns = "id, course_name, course_type, teacher_id, credits, hours, max_students, enrolled_students, created_at, updated_at"

// CourseRepository provides read access to course offerings.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByIDs loads the offerings matching the given ids. Unknown ids are skipped.
func (r *CourseRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.CourseOffering, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT ` + courseColumns + ` FROM course_offerings WHERE id = ANY($1) ORDER BY id`
	var courses []models.CourseOffering
	if err := r.db.SelectContext(ctx, &courses, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find courses by ids: %w", err)
	}
	return courses, nil
}

// FindByID loads a single offering.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.CourseOffering, error) {
	const query = `SELECT ` + courseColumns + ` FROM course_offerings WHERE id = $1`
	var course models.CourseOffering
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, fmt.Errorf("find course %d: %w", id, err)
	}
	return &course, nil
}

// FindAll returns every course offering.
func (r *CourseRepository) FindAll(ctx context.Context) ([]models.CourseOffering, error) {
	const query = `SELECT ` + courseColumns + ` FROM course_offerings ORDER BY id`
	var courses []models.CourseOffering
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}
