package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusflow/timetable-api/internal/models"
)

const assignmentColumns = "id, course_id, classroom_id, time_slot_id, teacher_id, semester, academic_year, day_of_week, start_week, end_week, week_type, start_time, end_time, created_at, updated_at"

// AssignmentRepository persists schedule assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindBySemester returns all assignments for a semester ordered by course id.
func (r *AssignmentRepository) FindBySemester(ctx context.Context, semester string, academicYear int) ([]models.ScheduleAssignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM schedule_assignments WHERE semester = $1 AND academic_year = $2 ORDER BY course_id`
	var assignments []models.ScheduleAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, semester, academicYear); err != nil {
		return nil, fmt.Errorf("find assignments by semester: %w", err)
	}
	return assignments, nil
}

// FindByTeacherAndSemester returns a teacher's assignments within one semester.
func (r *AssignmentRepository) FindByTeacherAndSemester(ctx context.Context, teacherID int64, semester string, academicYear int) ([]models.ScheduleAssignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM schedule_assignments WHERE teacher_id = $1 AND semester = $2 AND academic_year = $3 ORDER BY course_id`
	var assignments []models.ScheduleAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, teacherID, semester, academicYear); err != nil {
		return nil, fmt.Errorf("find assignments by teacher: %w", err)
	}
	return assignments, nil
}

// FindByClassroomAndSemester returns a classroom's assignments within one semester.
func (r *AssignmentRepository) FindByClassroomAndSemester(ctx context.Context, classroomID int64, semester string, academicYear int) ([]models.ScheduleAssignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM schedule_assignments WHERE classroom_id = $1 AND semester = $2 AND academic_year = $3 ORDER BY course_id`
	var assignments []models.ScheduleAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, classroomID, semester, academicYear); err != nil {
		return nil, fmt.Errorf("find assignments by classroom: %w", err)
	}
	return assignments, nil
}

// SaveBatch inserts all assignments in one transaction so a partially scheduled
// batch is never externally visible. Returns the persisted rows with ids assigned.
func (r *AssignmentRepository) SaveBatch(ctx context.Context, assignments []models.ScheduleAssignment) ([]models.ScheduleAssignment, error) {
	if len(assignments) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin save batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `INSERT INTO schedule_assignments
		(course_id, classroom_id, time_slot_id, teacher_id, semester, academic_year, day_of_week, start_week, end_week, week_type, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id`

	saved := make([]models.ScheduleAssignment, 0, len(assignments))
	for _, assignment := range assignments {
		row := tx.QueryRowxContext(ctx, query,
			assignment.CourseID,
			assignment.ClassroomID,
			assignment.TimeSlotID,
			assignment.TeacherID,
			assignment.Semester,
			assignment.AcademicYear,
			assignment.DayOfWeek,
			assignment.StartWeek,
			assignment.EndWeek,
			assignment.WeekType,
			assignment.StartTime,
			assignment.EndTime,
		)
		if err := row.Scan(&assignment.ID); err != nil {
			return nil, fmt.Errorf("insert assignment for course %d: %w", assignment.CourseID, err)
		}
		saved = append(saved, assignment)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit save batch: %w", err)
	}
	return saved, nil
}

// DeleteBySemester removes every assignment for a semester.
func (r *AssignmentRepository) DeleteBySemester(ctx context.Context, semester string, academicYear int) error {
	const query = `DELETE FROM schedule_assignments WHERE semester = $1 AND academic_year = $2`
	if _, err := r.db.ExecContext(ctx, query, semester, academicYear); err != nil {
		return fmt.Errorf("delete assignments by semester: %w", err)
	}
	return nil
}
