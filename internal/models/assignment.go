package models

import "time"

// Week recurrence of an assignment.
const (
	WeekTypeAll = "all"
	WeekTypeOdd = "odd"
)

// ScheduleAssignment binds a course offering to a (classroom, time slot) pair for a
// semester. Assignments are value types: the optimizer works on Clone()d copies and
// only the returned set is ever persisted.
type ScheduleAssignment struct {
	ID           int64     `db:"id" json:"id"`
	CourseID     int64     `db:"course_id" json:"course_id"`
	ClassroomID  int64     `db:"classroom_id" json:"classroom_id"`
	TimeSlotID   int64     `db:"time_slot_id" json:"time_slot_id"`
	TeacherID    int64     `db:"teacher_id" json:"teacher_id"`
	Semester     string    `db:"semester" json:"semester"`
	AcademicYear int       `db:"academic_year" json:"academic_year"`
	DayOfWeek    int       `db:"day_of_week" json:"day_of_week"`
	StartWeek    int       `db:"start_week" json:"start_week"`
	EndWeek      int       `db:"end_week" json:"end_week"`
	WeekType     string    `db:"week_type" json:"week_type"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Clone returns an independent copy of the assignment.
func (a ScheduleAssignment) Clone() ScheduleAssignment {
	return a
}

// CloneAssignments deep-copies a working set so repair never aliases the input.
func CloneAssignments(assignments []ScheduleAssignment) []ScheduleAssignment {
	cloned := make([]ScheduleAssignment, len(assignments))
	copy(cloned, assignments)
	return cloned
}
