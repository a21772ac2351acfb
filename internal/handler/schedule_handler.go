package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusflow/timetable-api/internal/dto"
	"github.com/campusflow/timetable-api/internal/models"
	"github.com/campusflow/timetable-api/internal/service"
	appErrors "github.com/campusflow/timetable-api/pkg/errors"
	"github.com/campusflow/timetable-api/pkg/response"
)

type scheduleEngine interface {
	AutoSchedule(ctx context.Context, req dto.ScheduleRequest) *dto.ScheduleResult
	ValidateSchedule(assignments []models.ScheduleAssignment) *dto.ValidationResult
	OptimizeSchedule(ctx context.Context, req dto.OptimizeScheduleRequest) *dto.ScheduleResult
	BatchImport(ctx context.Context, req dto.ImportScheduleRequest) (*dto.ScheduleResult, error)
	ClearSchedule(ctx context.Context, semester string, academicYear int) error
	CopySchedule(ctx context.Context, req dto.CopyScheduleRequest) (*dto.ScheduleResult, error)
	AvailableTimeSlots(ctx context.Context, classroomID, teacherID int64, semester string, academicYear int) ([]models.TimeSlot, error)
	RecommendedClassrooms(ctx context.Context, courseID int64, studentCount int) ([]models.Classroom, error)
	Statistics(ctx context.Context, semester string, academicYear int) (*models.ScheduleStatistics, error)
}

// ScheduleHandler exposes the timetabling endpoints.
type ScheduleHandler struct {
	engine scheduleEngine
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(engine *service.AutoScheduleService) *ScheduleHandler {
	return &ScheduleHandler{engine: engine}
}

// AutoSchedule godoc
// @Summary Automatically place courses into classrooms and time slots
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleRequest true "Scheduling request"
// @Success 200 {object} response.Envelope
// @Router /schedules/auto [post]
func (h *ScheduleHandler) AutoSchedule(c *gin.Context) {
	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scheduling payload"))
		return
	}

	result := h.engine.AutoSchedule(c.Request.Context(), req)
	response.JSON(c, http.StatusOK, result, nil)
}

// Validate godoc
// @Summary Check an existing schedule for conflicts
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.ValidateScheduleRequest true "Assignments to validate"
// @Success 200 {object} response.Envelope
// @Router /schedules/validate [post]
func (h *ScheduleHandler) Validate(c *gin.Context) {
	var req dto.ValidateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid validation payload"))
		return
	}

	response.JSON(c, http.StatusOK, h.engine.ValidateSchedule(req.Assignments), nil)
}

// Optimize godoc
// @Summary Repair conflicts in an existing schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.OptimizeScheduleRequest true "Schedule to optimize"
// @Success 200 {object} response.Envelope
// @Router /schedules/optimize [post]
func (h *ScheduleHandler) Optimize(c *gin.Context) {
	var req dto.OptimizeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid optimization payload"))
		return
	}

	result := h.engine.OptimizeSchedule(c.Request.Context(), req)
	response.JSON(c, http.StatusOK, result, nil)
}

// Import godoc
// @Summary Import externally produced assignments as one batch
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.ImportScheduleRequest true "Assignments to import"
// @Success 201 {object} response.Envelope
// @Router /schedules/import [post]
func (h *ScheduleHandler) Import(c *gin.Context) {
	var req dto.ImportScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid import payload"))
		return
	}

	result, err := h.engine.BatchImport(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !result.Success {
		response.JSON(c, http.StatusConflict, result, nil)
		return
	}
	response.Created(c, result)
}

// Clear godoc
// @Summary Delete every assignment of a semester
// @Tags Schedules
// @Produce json
// @Param semester query string true "Semester"
// @Param academicYear query int true "Academic year"
// @Success 204
// @Router /schedules [delete]
func (h *ScheduleHandler) Clear(c *gin.Context) {
	semester, academicYear, err := semesterQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.engine.ClearSchedule(c.Request.Context(), semester, academicYear); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Copy godoc
// @Summary Copy a semester's schedule into another semester
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.CopyScheduleRequest true "Copy request"
// @Success 201 {object} response.Envelope
// @Router /schedules/copy [post]
func (h *ScheduleHandler) Copy(c *gin.Context) {
	var req dto.CopyScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid copy payload"))
		return
	}

	result, err := h.engine.CopySchedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Statistics godoc
// @Summary Aggregate statistics of a semester's schedule
// @Tags Schedules
// @Produce json
// @Param semester query string true "Semester"
// @Param academicYear query int true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /schedules/statistics [get]
func (h *ScheduleHandler) Statistics(c *gin.Context) {
	semester, academicYear, err := semesterQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	stats, err := h.engine.Statistics(c.Request.Context(), semester, academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// AvailableTimeSlots godoc
// @Summary List time slots free for a classroom or teacher
// @Tags TimeSlots
// @Produce json
// @Param semester query string true "Semester"
// @Param academicYear query int true "Academic year"
// @Param classroomId query int false "Classroom id"
// @Param teacherId query int false "Teacher id"
// @Success 200 {object} response.Envelope
// @Router /timeslots/available [get]
func (h *ScheduleHandler) AvailableTimeSlots(c *gin.Context) {
	semester, academicYear, err := semesterQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	classroomID, _ := strconv.ParseInt(c.Query("classroomId"), 10, 64)
	teacherID, _ := strconv.ParseInt(c.Query("teacherId"), 10, 64)

	slots, err := h.engine.AvailableTimeSlots(c.Request.Context(), classroomID, teacherID, semester, academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// RecommendedClassrooms godoc
// @Summary Recommend classrooms for a course, smallest adequate first
// @Tags Classrooms
// @Produce json
// @Param courseId query int true "Course id"
// @Param studentCount query int false "Expected student count"
// @Success 200 {object} response.Envelope
// @Router /classrooms/recommended [get]
func (h *ScheduleHandler) RecommendedClassrooms(c *gin.Context) {
	courseID, err := strconv.ParseInt(c.Query("courseId"), 10, 64)
	if err != nil || courseID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "courseId is required"))
		return
	}
	studentCount, _ := strconv.Atoi(c.Query("studentCount"))

	classrooms, err := h.engine.RecommendedClassrooms(c.Request.Context(), courseID, studentCount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classrooms, nil)
}

func semesterQuery(c *gin.Context) (string, int, error) {
	semester := c.Query("semester")
	if semester == "" {
		return "", 0, appErrors.Clone(appErrors.ErrValidation, "semester is required")
	}
	academicYear, err := strconv.Atoi(c.Query("academicYear"))
	if err != nil || academicYear <= 0 {
		return "", 0, appErrors.Clone(appErrors.ErrValidation, "academicYear is required")
	}
	return semester, academicYear, nil
}
