package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusflow/timetable-api/internal/dto"
	"github.com/campusflow/timetable-api/internal/service"
	appErrors "github.com/campusflow/timetable-api/pkg/errors"
	"github.com/campusflow/timetable-api/pkg/response"
)

type reportProvider interface {
	Generate(ctx context.Context, semester string, academicYear int) (*dto.ScheduleReport, error)
	ExportAsync(req dto.ExportRequest) (*dto.ExportStatus, error)
	ExportStatus(id string) (*dto.ExportStatus, error)
	ExportPayload(id string) ([]byte, *dto.ExportStatus, error)
	DownloadByToken(token string) ([]byte, *dto.ExportStatus, error)
}

// ReportHandler exposes the schedule report endpoints.
type ReportHandler struct {
	reports reportProvider
}

// NewReportHandler constructs the handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Report godoc
// @Summary Schedule report of a semester
// @Tags Reports
// @Produce json
// @Param semester query string true "Semester"
// @Param academicYear query int true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /schedules/report [get]
func (h *ReportHandler) Report(c *gin.Context) {
	semester, academicYear, err := semesterQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.reports.Generate(c.Request.Context(), semester, academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Queue an asynchronous CSV or PDF export of the schedule report
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.ExportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Router /schedules/report/exports [post]
func (h *ReportHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}

	status, err := h.reports.ExportAsync(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, status, nil)
}

// ExportStatus godoc
// @Summary Status of a queued export
// @Tags Reports
// @Produce json
// @Param id path string true "Export id"
// @Success 200 {object} response.Envelope
// @Router /schedules/report/exports/{id} [get]
func (h *ReportHandler) ExportStatus(c *gin.Context) {
	status, err := h.reports.ExportStatus(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download a completed export
// @Tags Reports
// @Produce octet-stream
// @Param id path string true "Export id"
// @Success 200 {file} binary
// @Router /schedules/report/exports/{id}/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	payload, status, err := h.reports.ExportPayload(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+status.FileName)
	c.Data(http.StatusOK, status.ContentType, payload)
}

// DownloadSigned godoc
// @Summary Download a completed export using a signed token
// @Tags Reports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /downloads/exports [get]
func (h *ReportHandler) DownloadSigned(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	payload, status, err := h.reports.DownloadByToken(token)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+status.FileName)
	c.Data(http.StatusOK, status.ContentType, payload)
}
