package dto

import "github.com/campusflow/timetable-api/internal/models"

// ScheduleRequest asks the engine to place a batch of course offerings
// into classrooms and time slots for one semester.
type ScheduleRequest struct {
	Semester     string  `json:"semester" validate:"required"`
	AcademicYear int     `json:"academicYear" validate:"required,min=2000,max=2100"`
	CourseIDs    []int64 `json:"courseIds" validate:"required,min=1,dive,gt=0"`
	ClassroomIDs []int64 `json:"classroomIds" validate:"omitempty,dive,gt=0"`
	TimeSlotIDs  []int64 `json:"timeSlotIds" validate:"omitempty,dive,gt=0"`
	StartWeek    int     `json:"startWeek" validate:"omitempty,min=1,max=30"`
	EndWeek      int     `json:"endWeek" validate:"omitempty,min=1,max=30"`
}

// ScheduleResult is the envelope every scheduling operation returns.
// Success is false when nothing could be placed or the request was unusable;
// partial placements still report Success true with the failures listed
// as conflicts.
type ScheduleResult struct {
	Success     bool                        `json:"success"`
	Message     string                      `json:"message"`
	Assignments []models.ScheduleAssignment `json:"assignments"`
	Conflicts   []models.Conflict           `json:"conflicts"`
	Statistics  *models.ScheduleStatistics  `json:"statistics,omitempty"`
}

// ValidationResult reports the conflicts found in an existing schedule.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Message   string            `json:"message"`
	Conflicts []models.Conflict `json:"conflicts"`
}

type ValidateScheduleRequest struct {
	Assignments []models.ScheduleAssignment `json:"assignments" validate:"required,min=1"`
}

// OptimizeScheduleRequest carries the schedule to repair plus the resource
// pool the optimizer may draw replacements from. Empty pools mean "use all".
type OptimizeScheduleRequest struct {
	Assignments  []models.ScheduleAssignment `json:"assignments" validate:"required,min=1"`
	ClassroomIDs []int64                     `json:"classroomIds" validate:"omitempty,dive,gt=0"`
	TimeSlotIDs  []int64                     `json:"timeSlotIds" validate:"omitempty,dive,gt=0"`
}

type ImportScheduleRequest struct {
	Semester     string                      `json:"semester" validate:"required"`
	AcademicYear int                         `json:"academicYear" validate:"required,min=2000,max=2100"`
	Assignments  []models.ScheduleAssignment `json:"assignments" validate:"required,min=1"`
}

type CopyScheduleRequest struct {
	SourceSemester     string `json:"sourceSemester" validate:"required"`
	SourceAcademicYear int    `json:"sourceAcademicYear" validate:"required,min=2000,max=2100"`
	TargetSemester     string `json:"targetSemester" validate:"required"`
	TargetAcademicYear int    `json:"targetAcademicYear" validate:"required,min=2000,max=2100"`
}
