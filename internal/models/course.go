package models

import "time"

// CourseOffering represents a course section that needs a classroom and a time slot.
// Offerings are treated as immutable once a scheduling run starts.
type CourseOffering struct {
	ID               int64     `db:"id" json:"id"`
	CourseName       string    `db:"course_name" json:"course_name"`
	CourseType       string    `db:"course_type" json:"course_type"`
	TeacherID        int64     `db:"teacher_id" json:"teacher_id"`
	Credits          float64   `db:"credits" json:"credits"`
	Hours            int       `db:"hours" json:"hours"`
	MaxStudents      int       `db:"max_students" json:"max_students"`
	EnrolledStudents int       `db:"enrolled_students" json:"enrolled_students"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
