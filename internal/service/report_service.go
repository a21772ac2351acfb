package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusflow/timetable-api/internal/dto"
	"github.com/campusflow/timetable-api/internal/models"
	"github.com/campusflow/timetable-api/pkg/config"
	appErrors "github.com/campusflow/timetable-api/pkg/errors"
	"github.com/campusflow/timetable-api/pkg/export"
	"github.com/campusflow/timetable-api/pkg/jobs"
	"github.com/campusflow/timetable-api/pkg/storage"
)

type semesterScheduleReader interface {
	FindBySemester(ctx context.Context, semester string, academicYear int) ([]models.ScheduleAssignment, error)
}

type scheduleValidator interface {
	ValidateSchedule(assignments []models.ScheduleAssignment) *dto.ValidationResult
}

// ReportService renders semester schedule reports and runs asynchronous
// CSV/PDF exports through the background worker queue. Export payloads are
// held in memory for a bounded TTL; when an archive directory is configured
// they are also written to disk and remain downloadable after the TTL.
type ReportService struct {
	store     semesterScheduleReader
	engine    scheduleValidator
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	queue     *jobs.Queue
	exports   *exportStore
	archive   *storage.Archive
	signer    *storage.DownloadSigner
	retention time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService wires the report pipeline and its worker queue. Start must
// be called before exports are accepted.
func NewReportService(store semesterScheduleReader, engine scheduleValidator, v *validator.Validate, logger *zap.Logger, cfg config.ReportsConfig) *ReportService {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 30 * time.Minute
	}

	s := &ReportService{
		store:     store,
		engine:    engine,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		exports:   newExportStore(cfg.ResultTTL),
		retention: cfg.ArchiveRetention,
		validator: v,
		logger:    logger,
	}

	if cfg.ArchiveDir != "" {
		archive, err := storage.NewArchive(cfg.ArchiveDir)
		if err != nil {
			logger.Sugar().Warnw("export archive disabled", "dir", cfg.ArchiveDir, "error", err)
		} else {
			s.archive = archive
		}
	}
	if cfg.DownloadSecret != "" {
		s.signer = storage.NewDownloadSigner(cfg.DownloadSecret, cfg.DownloadLinkTTL)
	}

	s.queue = jobs.NewQueue("report-exports", s.handleExportJob, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})

	return s
}

// Start launches the export workers and, when archival is enabled, a
// periodic sweep of expired archive files.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	if s.archive != nil && s.retention > 0 {
		go s.pruneArchive(ctx)
	}
}

func (s *ReportService) pruneArchive(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.archive.Prune(s.retention)
			if err != nil {
				s.logger.Sugar().Warnw("archive prune failed", "error", err)
				continue
			}
			if len(removed) > 0 {
				s.logger.Sugar().Infow("archived exports pruned", "count", len(removed))
			}
		}
	}
}

// Stop drains and stops the export workers.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// Generate builds the schedule report of a semester.
func (s *ReportService) Generate(ctx context.Context, semester string, academicYear int) (*dto.ScheduleReport, error) {
	if semester == "" {
		return nil, appErrors.ErrEmptySemester
	}

	assignments, err := s.store.FindBySemester(ctx, semester, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, "INTERNAL_ERROR", 500, "failed to load schedule")
	}

	validation := s.engine.ValidateSchedule(assignments)
	stats := buildStatistics(len(assignments), len(assignments), validation.Conflicts)

	return &dto.ScheduleReport{
		Semester:     semester,
		AcademicYear: academicYear,
		GeneratedAt:  time.Now().UTC(),
		Statistics:   stats,
		Conflicts:    validation.Conflicts,
		Assignments:  assignments,
	}, nil
}

// RenderCSV renders a report as CSV.
func (s *ReportService) RenderCSV(report *dto.ScheduleReport) ([]byte, error) {
	return s.csv.Render(reportDataset(report))
}

// RenderPDF renders a report as PDF.
func (s *ReportService) RenderPDF(report *dto.ScheduleReport) ([]byte, error) {
	title := fmt.Sprintf("Schedule Report %s/%d", report.Semester, report.AcademicYear)
	return s.pdf.Render(reportDataset(report), title, reportSummary(report))
}

// ExportAsync queues a report export and returns its tracking status.
func (s *ReportService) ExportAsync(req dto.ExportRequest) (*dto.ExportStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", 400, "invalid export request")
	}

	status := &dto.ExportStatus{
		ID:           uuid.NewString(),
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		Format:       req.Format,
		Status:       dto.ExportStatusPending,
		RequestedAt:  time.Now().UTC(),
	}
	s.exports.put(status.ID, exportEntry{status: *status})

	if err := s.queue.Enqueue(jobs.Job{ID: status.ID, Type: "schedule-report", Payload: req}); err != nil {
		s.exports.delete(status.ID)
		return nil, appErrors.Wrap(err, "INTERNAL_ERROR", 500, "failed to queue export")
	}

	return status, nil
}

// ExportStatus returns the tracking status of an export.
func (s *ReportService) ExportStatus(id string) (*dto.ExportStatus, error) {
	entry, ok := s.exports.get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found or expired")
	}
	status := entry.status
	return &status, nil
}

// ExportPayload returns the rendered bytes of a completed export. Exports
// whose in-memory entry has expired are served from the archive when one
// is configured.
func (s *ReportService) ExportPayload(id string) ([]byte, *dto.ExportStatus, error) {
	entry, ok := s.exports.get(id)
	if !ok {
		return s.archivedPayload(id)
	}
	if entry.status.Status != dto.ExportStatusCompleted {
		status := entry.status
		return nil, &status, appErrors.ErrExportNotReady
	}
	status := entry.status
	return entry.payload, &status, nil
}

// DownloadByToken resolves a signed download token to its export payload.
func (s *ReportService) DownloadByToken(token string) ([]byte, *dto.ExportStatus, error) {
	if s.signer == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "signed downloads are not enabled")
	}
	id, err := s.signer.Verify(token)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, 401, "invalid download token")
	}
	return s.ExportPayload(id)
}

func (s *ReportService) archivedPayload(id string) ([]byte, *dto.ExportStatus, error) {
	notFound := appErrors.Clone(appErrors.ErrNotFound, "export not found or expired")
	if s.archive == nil {
		return nil, nil, notFound
	}
	for _, format := range exportFormats {
		fileName := id + "." + format.extension
		payload, err := s.archive.Load(fileName)
		if err != nil {
			continue
		}
		return payload, &dto.ExportStatus{
			ID:          id,
			Format:      format.extension,
			Status:      dto.ExportStatusCompleted,
			FileName:    fileName,
			ContentType: format.contentType,
		}, nil
	}
	return nil, nil, notFound
}

func (s *ReportService) handleExportJob(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.ExportRequest)
	if !ok {
		s.exports.fail(job.ID, "malformed export payload")
		return nil
	}

	report, err := s.Generate(ctx, req.Semester, req.AcademicYear)
	if err != nil {
		s.exports.fail(job.ID, err.Error())
		return err
	}

	var payload []byte
	var contentType, extension string
	switch req.Format {
	case "pdf":
		payload, err = s.RenderPDF(report)
		contentType, extension = "application/pdf", "pdf"
	default:
		payload, err = s.RenderCSV(report)
		contentType, extension = "text/csv", "csv"
	}
	if err != nil {
		s.exports.fail(job.ID, err.Error())
		return err
	}

	if s.archive != nil {
		if err := s.archive.Store(job.ID+"."+extension, payload); err != nil {
			s.logger.Sugar().Warnw("failed to archive export", "export_id", job.ID, "error", err)
		}
	}

	var token string
	if s.signer != nil {
		token, _, _ = s.signer.Sign(job.ID)
	}

	fileName := fmt.Sprintf("schedule-%s-%d.%s", req.Semester, req.AcademicYear, extension)
	s.exports.complete(job.ID, payload, contentType, fileName, token)
	s.logger.Info("export completed",
		zap.String("export_id", job.ID),
		zap.String("format", req.Format),
		zap.Int("bytes", len(payload)))
	return nil
}

var exportFormats = []struct {
	extension   string
	contentType string
}{
	{"csv", "text/csv"},
	{"pdf", "application/pdf"},
}

func reportDataset(report *dto.ScheduleReport) export.Dataset {
	rows := make([]map[string]string, 0, len(report.Assignments))
	for _, a := range report.Assignments {
		rows = append(rows, map[string]string{
			"Course":    strconv.FormatInt(a.CourseID, 10),
			"Teacher":   strconv.FormatInt(a.TeacherID, 10),
			"Classroom": strconv.FormatInt(a.ClassroomID, 10),
			"Day":       strconv.Itoa(a.DayOfWeek),
			"Start":     a.StartTime,
			"End":       a.EndTime,
			"Weeks":     fmt.Sprintf("%d-%d", a.StartWeek, a.EndWeek),
			"Week Type": a.WeekType,
		})
	}

	return export.Dataset{
		Headers: []string{"Course", "Teacher", "Classroom", "Day", "Start", "End", "Weeks", "Week Type"},
		Rows:    rows,
	}
}

func reportSummary(report *dto.ScheduleReport) []string {
	stats := report.Statistics
	return []string{
		fmt.Sprintf("Assignments: %d", stats.ScheduledCourses),
		fmt.Sprintf("Conflicts: %d", stats.TotalConflicts),
		fmt.Sprintf("Success rate: %.1f%%", stats.SuccessRate),
		fmt.Sprintf("Generated: %s", report.GeneratedAt.Format(time.RFC3339)),
	}
}

type exportEntry struct {
	status  dto.ExportStatus
	payload []byte
	expires time.Time
}

// exportStore keeps export results in memory until they expire.
type exportStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]exportEntry
}

func newExportStore(ttl time.Duration) *exportStore {
	return &exportStore{
		ttl:     ttl,
		entries: make(map[string]exportEntry),
	}
}

func (s *exportStore) put(id string, entry exportEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	entry.expires = time.Now().Add(s.ttl)
	s.entries[id] = entry
}

func (s *exportStore) get(id string) (exportEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok || time.Now().After(entry.expires) {
		return exportEntry{}, false
	}
	return entry, true
}

func (s *exportStore) delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

func (s *exportStore) complete(id string, payload []byte, contentType, fileName, downloadToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return
	}
	now := time.Now().UTC()
	entry.status.Status = dto.ExportStatusCompleted
	entry.status.ContentType = contentType
	entry.status.FileName = fileName
	entry.status.DownloadToken = downloadToken
	entry.status.CompletedAt = &now
	entry.payload = payload
	entry.expires = now.Add(s.ttl)
	s.entries[id] = entry
}

func (s *exportStore) fail(id string, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return
	}
	now := time.Now().UTC()
	entry.status.Status = dto.ExportStatusFailed
	entry.status.Error = message
	entry.status.CompletedAt = &now
	s.entries[id] = entry
}

func (s *exportStore) prune() {
	now := time.Now()
	for id, entry := range s.entries {
		if now.After(entry.expires) {
			delete(s.entries, id)
		}
	}
}
