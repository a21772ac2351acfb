package dto

import (
	"time"

	"github.com/campusflow/timetable-api/internal/models"
)

// ScheduleReport is the rendered summary of one semester's timetable.
type ScheduleReport struct {
	Semester     string                      `json:"semester"`
	AcademicYear int                         `json:"academicYear"`
	GeneratedAt  time.Time                   `json:"generatedAt"`
	Statistics   models.ScheduleStatistics   `json:"statistics"`
	Conflicts    []models.Conflict           `json:"conflicts"`
	Assignments  []models.ScheduleAssignment `json:"assignments"`
}

type ExportRequest struct {
	Semester     string `json:"semester" validate:"required"`
	AcademicYear int    `json:"academicYear" validate:"required,min=2000,max=2100"`
	Format       string `json:"format" validate:"required,oneof=csv pdf"`
}

const (
	ExportStatusPending   = "pending"
	ExportStatusCompleted = "completed"
	ExportStatusFailed    = "failed"
)

// ExportStatus tracks one asynchronous report export. DownloadToken is a
// signed, time-limited credential for fetching the payload without a JWT.
type ExportStatus struct {
	ID            string     `json:"id"`
	Semester      string     `json:"semester"`
	AcademicYear  int        `json:"academicYear"`
	Format        string     `json:"format"`
	Status        string     `json:"status"`
	FileName      string     `json:"fileName,omitempty"`
	ContentType   string     `json:"contentType,omitempty"`
	DownloadToken string     `json:"downloadToken,omitempty"`
	Error         string     `json:"error,omitempty"`
	RequestedAt   time.Time  `json:"requestedAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}
