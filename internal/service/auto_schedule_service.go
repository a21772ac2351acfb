package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusflow/timetable-api/internal/dto"
	"github.com/campusflow/timetable-api/internal/models"
	"github.com/campusflow/timetable-api/pkg/config"
	appErrors "github.com/campusflow/timetable-api/pkg/errors"
)

type courseProvider interface {
	FindByIDs(ctx context.Context, ids []int64) ([]models.CourseOffering, error)
	FindByID(ctx context.Context, id int64) (*models.CourseOffering, error)
}

type classroomProvider interface {
	FindAll(ctx context.Context) ([]models.Classroom, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Classroom, error)
}

type timeSlotProvider interface {
	FindAll(ctx context.Context) ([]models.TimeSlot, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.TimeSlot, error)
}

type scheduleStore interface {
	FindBySemester(ctx context.Context, semester string, academicYear int) ([]models.ScheduleAssignment, error)
	FindByTeacherAndSemester(ctx context.Context, teacherID int64, semester string, academicYear int) ([]models.ScheduleAssignment, error)
	FindByClassroomAndSemester(ctx context.Context, classroomID int64, semester string, academicYear int) ([]models.ScheduleAssignment, error)
	SaveBatch(ctx context.Context, assignments []models.ScheduleAssignment) ([]models.ScheduleAssignment, error)
	DeleteBySemester(ctx context.Context, semester string, academicYear int) error
}

type enrollmentCounter interface {
	CountByCourse(ctx context.Context, courseID int64) (int, error)
}

type statisticsCacheClient interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type engineMetrics interface {
	RecordSchedulingRun(outcome string)
	RecordConflict(conflictType models.ConflictType)
	ObserveQuality(score float64)
	RecordResolvedConflicts(count int)
}

// AutoScheduleService is the timetabling engine: it places course offerings
// into classrooms and time slots, validates and repairs existing schedules,
// and serves the supporting semester operations.
type AutoScheduleService struct {
	courses     courseProvider
	classrooms  classroomProvider
	slots       timeSlotProvider
	store       scheduleStore
	enrollments enrollmentCounter
	cache       statisticsCacheClient
	detector    *ConflictDetector
	scorer      *CompatibilityScorer
	quality     *QualityEvaluator
	metrics     engineMetrics
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         config.SchedulerConfig
}

// NewAutoScheduleService wires the engine. cache and metrics may be nil; the
// engine then skips caching and instrumentation.
func NewAutoScheduleService(
	courses courseProvider,
	classrooms classroomProvider,
	slots timeSlotProvider,
	store scheduleStore,
	enrollments enrollmentCounter,
	cache statisticsCacheClient,
	metrics engineMetrics,
	v *validator.Validate,
	logger *zap.Logger,
	cfg config.SchedulerConfig,
) *AutoScheduleService {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxOptimizeIterations <= 0 {
		cfg.MaxOptimizeIterations = 10
	}
	if cfg.DefaultStartWeek <= 0 {
		cfg.DefaultStartWeek = 1
	}
	if cfg.DefaultEndWeek <= 0 {
		cfg.DefaultEndWeek = 18
	}

	return &AutoScheduleService{
		courses:     courses,
		classrooms:  classrooms,
		slots:       slots,
		store:       store,
		enrollments: enrollments,
		cache:       cache,
		detector:    NewConflictDetector(),
		scorer:      NewCompatibilityScorer(),
		quality:     NewQualityEvaluator(nil),
		metrics:     metrics,
		validator:   v,
		logger:      logger,
		cfg:         cfg,
	}
}

// AutoSchedule places every requested course into a classroom and time slot.
// Failures are reported per course; the batch never aborts halfway. The
// returned result always carries statistics for the run.
func (s *AutoScheduleService) AutoSchedule(ctx context.Context, req dto.ScheduleRequest) (result *dto.ScheduleResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("auto schedule panicked", zap.Any("panic", r))
			result = &dto.ScheduleResult{Success: false, Message: fmt.Sprintf("scheduling failed: %v", r)}
			s.recordRun("panic")
		}
	}()

	if err := s.validator.Struct(req); err != nil {
		s.logger.Warn("invalid schedule request", zap.Error(err))
		s.recordRun("invalid")
		return &dto.ScheduleResult{Success: false, Message: fmt.Sprintf("invalid request: %v", err)}
	}
	if req.StartWeek > 0 && req.EndWeek > 0 && req.EndWeek < req.StartWeek {
		s.recordRun("invalid")
		return &dto.ScheduleResult{Success: false, Message: "invalid request: end week before start week"}
	}

	courses, classrooms, slots, failure := s.loadResources(ctx, req)
	if failure != nil {
		s.recordRun("error")
		return failure
	}

	existing, err := s.store.FindBySemester(ctx, req.Semester, req.AcademicYear)
	if err != nil {
		s.logger.Error("load existing schedule failed", zap.Error(err))
		s.recordRun("error")
		return &dto.ScheduleResult{Success: false, Message: "failed to load the existing schedule"}
	}

	catalog := make(map[int64]models.CourseOffering, len(courses))
	for _, course := range courses {
		catalog[course.ID] = course
	}

	var placed []models.ScheduleAssignment
	var conflicts []models.Conflict

	for _, course := range courses {
		course := s.withEnrollment(ctx, course)
		catalog[course.ID] = course

		assignment, courseConflicts, ok := s.scheduleCourse(ctx, course, classrooms, slots, req, existing, catalog)
		if ok {
			placed = append(placed, assignment)
			// Later courses in the batch must see this placement.
			existing = append(existing, assignment)
			continue
		}
		conflicts = append(conflicts, courseConflicts...)
	}

	if len(placed) > 0 {
		saved, err := s.store.SaveBatch(ctx, placed)
		if err != nil {
			s.logger.Error("persist schedule batch failed", zap.Error(err))
			s.recordRun("error")
			return &dto.ScheduleResult{
				Success:   false,
				Message:   "failed to persist the generated schedule",
				Conflicts: conflicts,
			}
		}
		placed = saved
		s.invalidateStatistics(ctx, req.Semester, req.AcademicYear)
	}

	stats := buildStatistics(len(courses), len(placed), conflicts)
	s.recordConflicts(conflicts)
	if len(placed) > 0 {
		s.recordRun("success")
	} else {
		s.recordRun("failed")
	}

	s.logger.Info("auto schedule completed",
		zap.String("semester", req.Semester),
		zap.Int("academic_year", req.AcademicYear),
		zap.Int("requested", len(req.CourseIDs)),
		zap.Int("placed", len(placed)),
		zap.Int("conflicts", len(conflicts)))

	return &dto.ScheduleResult{
		Success:     len(placed) > 0,
		Message:     fmt.Sprintf("scheduled %d of %d courses", len(placed), len(courses)),
		Assignments: placed,
		Conflicts:   conflicts,
		Statistics:  &stats,
	}
}

// ValidateSchedule checks an existing set of assignments pairwise for hard
// conflicts. Each unordered pair is examined once, so validation of the same
// set is idempotent and order-insensitive.
func (s *AutoScheduleService) ValidateSchedule(assignments []models.ScheduleAssignment) *dto.ValidationResult {
	var conflicts []models.Conflict

	for i := 0; i < len(assignments); i++ {
		for j := i + 1; j < len(assignments); j++ {
			conflicts = append(conflicts, s.detector.CheckConflicts(assignments[i], []models.ScheduleAssignment{assignments[j]})...)
		}
	}

	message := "schedule is conflict free"
	if len(conflicts) > 0 {
		message = fmt.Sprintf("found %d conflicts", len(conflicts))
	}

	return &dto.ValidationResult{
		Valid:     len(conflicts) == 0,
		Message:   message,
		Conflicts: conflicts,
	}
}

// CheckConflicts exposes the hard-constraint check for a single candidate.
func (s *AutoScheduleService) CheckConflicts(candidate models.ScheduleAssignment, existing []models.ScheduleAssignment) []models.Conflict {
	return s.detector.CheckConflicts(candidate, existing)
}

// BatchImport validates and persists externally produced assignments as one
// batch. Import refuses schedules that conflict internally.
func (s *AutoScheduleService) BatchImport(ctx context.Context, req dto.ImportScheduleRequest) (*dto.ScheduleResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", 400, "invalid import request")
	}

	assignments := models.CloneAssignments(req.Assignments)
	for i := range assignments {
		assignments[i].Semester = req.Semester
		assignments[i].AcademicYear = req.AcademicYear
	}

	validation := s.ValidateSchedule(assignments)
	if !validation.Valid {
		return &dto.ScheduleResult{
			Success:   false,
			Message:   "import rejected: " + validation.Message,
			Conflicts: validation.Conflicts,
		}, nil
	}

	saved, err := s.store.SaveBatch(ctx, assignments)
	if err != nil {
		return nil, appErrors.Wrap(err, "INTERNAL_ERROR", 500, "failed to persist imported schedule")
	}
	s.invalidateStatistics(ctx, req.Semester, req.AcademicYear)

	stats := buildStatistics(len(saved), len(saved), nil)
	return &dto.ScheduleResult{
		Success:     true,
		Message:     fmt.Sprintf("imported %d assignments", len(saved)),
		Assignments: saved,
		Statistics:  &stats,
	}, nil
}

// ClearSchedule removes every assignment of a semester.
func (s *AutoScheduleService) ClearSchedule(ctx context.Context, semester string, academicYear int) error {
	if semester == "" {
		return appErrors.ErrEmptySemester
	}
	if err := s.store.DeleteBySemester(ctx, semester, academicYear); err != nil {
		return appErrors.Wrap(err, "INTERNAL_ERROR", 500, "failed to clear schedule")
	}
	s.invalidateStatistics(ctx, semester, academicYear)
	s.logger.Info("schedule cleared", zap.String("semester", semester), zap.Int("academic_year", academicYear))
	return nil
}

// CopySchedule clones one semester's assignments into another semester.
func (s *AutoScheduleService) CopySchedule(ctx context.Context, req dto.CopyScheduleRequest) (*dto.ScheduleResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, "VALIDATION_ERROR", 400, "invalid copy request")
	}
	if req.SourceSemester == req.TargetSemester && req.SourceAcademicYear == req.TargetAcademicYear {
		return nil, appErrors.Clone(appErrors.ErrValidation, "source and target semester are identical")
	}

	source, err := s.store.FindBySemester(ctx, req.SourceSemester, req.SourceAcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, "INTERNAL_ERROR", 500, "failed to load source semester")
	}
	if len(source) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "source semester has no schedule")
	}

	copies := make([]models.ScheduleAssignment, 0, len(source))
	for _, assignment := range source {
		clone := assignment.Clone()
		clone.ID = 0
		clone.Semester = req.TargetSemester
		clone.AcademicYear = req.TargetAcademicYear
		copies = append(copies, clone)
	}

	saved, err := s.store.SaveBatch(ctx, copies)
	if err != nil {
		return nil, appErrors.Wrap(err, "INTERNAL_ERROR", 500, "failed to persist copied schedule")
	}
	s.invalidateStatistics(ctx, req.TargetSemester, req.TargetAcademicYear)

	stats := buildStatistics(len(saved), len(saved), nil)
	return &dto.ScheduleResult{
		Success:     true,
		Message:     fmt.Sprintf("copied %d assignments to %s/%d", len(saved), req.TargetSemester, req.TargetAcademicYear),
		Assignments: saved,
		Statistics:  &stats,
	}, nil
}

// AvailableTimeSlots lists slots not occupied by the given classroom or teacher
// in the semester.
func (s *AutoScheduleService) AvailableTimeSlots(ctx context.Context, classroomID, teacherID int64, semester string, academicYear int) ([]models.TimeSlot, error) {
	slots, err := s.slots.FindAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, "INTERNAL_ERROR", 500, "failed to load time slots")
	}

	existing, err := s.store.FindBySemester(ctx, semester, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, "INTERNAL_ERROR", 500, "failed to load schedule")
	}

	occupied := make(map[int64]bool)
	for _, assignment := range existing {
		if (classroomID != 0 && assignment.ClassroomID == classroomID) ||
			(teacherID != 0 && assignment.TeacherID == teacherID) {
			occupied[assignment.TimeSlotID] = true
		}
	}

	available := make([]models.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if !occupied[slot.ID] {
			available = append(available, slot)
		}
	}
	return available, nil
}

// RecommendedClassrooms lists rooms that fit a course, smallest adequate first.
func (s *AutoScheduleService) RecommendedClassrooms(ctx context.Context, courseID int64, studentCount int) ([]models.Classroom, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	offering := *course
	if studentCount > 0 {
		offering.EnrolledStudents = studentCount
	} else {
		offering = s.withEnrollment(ctx, offering)
	}

	classrooms, err := s.classrooms.FindAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, "INTERNAL_ERROR", 500, "failed to load classrooms")
	}

	recommended := make([]models.Classroom, 0, len(classrooms))
	for _, classroom := range classrooms {
		if s.scorer.EquipmentCompatible(classroom, offering) {
			recommended = append(recommended, classroom)
		}
	}

	sort.SliceStable(recommended, func(i, j int) bool {
		return recommended[i].Capacity < recommended[j].Capacity
	})
	return recommended, nil
}

// Statistics aggregates a semester's schedule, cached for a short TTL.
func (s *AutoScheduleService) Statistics(ctx context.Context, semester string, academicYear int) (*models.ScheduleStatistics, error) {
	if semester == "" {
		return nil, appErrors.ErrEmptySemester
	}

	key := statisticsCacheKey(semester, academicYear)
	if s.cache != nil {
		var cached models.ScheduleStatistics
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	assignments, err := s.store.FindBySemester(ctx, semester, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, "INTERNAL_ERROR", 500, "failed to load schedule")
	}

	validation := s.ValidateSchedule(assignments)
	stats := buildStatistics(len(assignments), len(assignments), validation.Conflicts)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, s.cfg.StatisticsCacheTTL); err != nil {
			s.logger.Warn("cache statistics failed", zap.Error(err))
		}
	}
	return &stats, nil
}

func (s *AutoScheduleService) loadResources(ctx context.Context, req dto.ScheduleRequest) ([]models.CourseOffering, []models.Classroom, []models.TimeSlot, *dto.ScheduleResult) {
	courses, err := s.courses.FindByIDs(ctx, req.CourseIDs)
	if err != nil {
		s.logger.Error("load courses failed", zap.Error(err))
		return nil, nil, nil, &dto.ScheduleResult{Success: false, Message: "failed to load courses"}
	}
	if len(courses) == 0 {
		return nil, nil, nil, &dto.ScheduleResult{Success: false, Message: "no matching courses found"}
	}

	var classrooms []models.Classroom
	if len(req.ClassroomIDs) > 0 {
		classrooms, err = s.classrooms.FindByIDs(ctx, req.ClassroomIDs)
	} else {
		classrooms, err = s.classrooms.FindAll(ctx)
	}
	if err != nil {
		s.logger.Error("load classrooms failed", zap.Error(err))
		return nil, nil, nil, &dto.ScheduleResult{Success: false, Message: "failed to load classrooms"}
	}
	if len(classrooms) == 0 {
		return nil, nil, nil, &dto.ScheduleResult{Success: false, Message: "no classrooms available"}
	}

	var slots []models.TimeSlot
	if len(req.TimeSlotIDs) > 0 {
		slots, err = s.slots.FindByIDs(ctx, req.TimeSlotIDs)
	} else {
		slots, err = s.slots.FindAll(ctx)
	}
	if err != nil {
		s.logger.Error("load time slots failed", zap.Error(err))
		return nil, nil, nil, &dto.ScheduleResult{Success: false, Message: "failed to load time slots"}
	}
	if len(slots) == 0 {
		return nil, nil, nil, &dto.ScheduleResult{Success: false, Message: "no time slots available"}
	}

	return courses, classrooms, slots, nil
}

// scheduleCourse finds the best conflict-free (classroom, slot) pair for one
// course. Candidates are tried best-score first; sorting is stable so equal
// scores keep the storage order and runs stay reproducible.
func (s *AutoScheduleService) scheduleCourse(
	ctx context.Context,
	course models.CourseOffering,
	classrooms []models.Classroom,
	slots []models.TimeSlot,
	req dto.ScheduleRequest,
	existing []models.ScheduleAssignment,
	catalog map[int64]models.CourseOffering,
) (assignment models.ScheduleAssignment, conflicts []models.Conflict, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("course matching panicked",
				zap.Int64("course_id", course.ID), zap.Any("panic", r))
			conflicts = []models.Conflict{{
				Type:        models.ConflictResource,
				Description: "internal error while matching the course",
				CourseID1:   course.ID,
			}}
			ok = false
		}
	}()

	rankedRooms := make([]models.Classroom, len(classrooms))
	copy(rankedRooms, classrooms)
	sort.SliceStable(rankedRooms, func(i, j int) bool {
		return s.scorer.ClassroomScore(rankedRooms[i], course) > s.scorer.ClassroomScore(rankedRooms[j], course)
	})

	rankedSlots := make([]models.TimeSlot, len(slots))
	copy(rankedSlots, slots)
	sort.SliceStable(rankedSlots, func(i, j int) bool {
		return s.scorer.TimeSlotScore(rankedSlots[i], course) > s.scorer.TimeSlotScore(rankedSlots[j], course)
	})

	for _, slot := range rankedSlots {
		if !s.scorer.TimeSlotAppropriate(slot, course) {
			continue
		}
		for _, room := range rankedRooms {
			if !s.scorer.EquipmentCompatible(room, course) {
				continue
			}

			candidate := s.buildAssignment(course, room, slot, req)
			if found := s.detector.CheckAll(candidate, existing, catalog); len(found) > 0 {
				continue
			}

			score := s.quality.Score(candidate, course, room, slot)
			if s.metrics != nil {
				s.metrics.ObserveQuality(score)
			}
			s.logger.Debug("course placed",
				zap.Int64("course_id", course.ID),
				zap.Int64("classroom_id", room.ID),
				zap.Int64("time_slot_id", slot.ID),
				zap.Float64("quality", score))
			return candidate, nil, true
		}
	}

	return models.ScheduleAssignment{}, []models.Conflict{{
		Type:        models.ConflictResource,
		Description: fmt.Sprintf("no suitable classroom and time slot for course %d", course.ID),
		CourseID1:   course.ID,
		Suggestion:  "widen the set of available time slots; consider a larger classroom; relax the course's time-of-day preference",
	}}, false
}

func (s *AutoScheduleService) buildAssignment(course models.CourseOffering, room models.Classroom, slot models.TimeSlot, req dto.ScheduleRequest) models.ScheduleAssignment {
	startWeek := req.StartWeek
	if startWeek <= 0 {
		startWeek = s.cfg.DefaultStartWeek
	}
	endWeek := req.EndWeek
	if endWeek <= 0 {
		endWeek = s.cfg.DefaultEndWeek
	}

	return models.ScheduleAssignment{
		CourseID:     course.ID,
		ClassroomID:  room.ID,
		TimeSlotID:   slot.ID,
		TeacherID:    course.TeacherID,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		DayOfWeek:    slot.DayOfWeek,
		StartWeek:    startWeek,
		EndWeek:      endWeek,
		WeekType:     determineWeekType(course),
		StartTime:    slot.StartTime,
		EndTime:      slot.EndTime,
	}
}

// determineWeekType decides whether a course meets every week or alternating
// weeks, based on credits, type and total hours.
func determineWeekType(course models.CourseOffering) string {
	if course.Credits > 0 {
		if course.Credits >= 2.0 {
			return models.WeekTypeAll
		}
		return models.WeekTypeOdd
	}

	switch course.CourseType {
	case "lab", "pe", "physical":
		return models.WeekTypeAll
	case "elective":
		return models.WeekTypeOdd
	}
	if course.CourseType != "" {
		return models.WeekTypeAll
	}

	if course.Hours > 0 && course.Hours <= 32 {
		return models.WeekTypeOdd
	}
	return models.WeekTypeAll
}

func (s *AutoScheduleService) withEnrollment(ctx context.Context, course models.CourseOffering) models.CourseOffering {
	if s.enrollments == nil {
		return course
	}
	count, err := s.enrollments.CountByCourse(ctx, course.ID)
	if err != nil {
		s.logger.Warn("enrollment count unavailable", zap.Int64("course_id", course.ID), zap.Error(err))
		return course
	}
	if count > 0 {
		course.EnrolledStudents = count
	}
	return course
}

func (s *AutoScheduleService) invalidateStatistics(ctx context.Context, semester string, academicYear int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, statisticsCacheKey(semester, academicYear)); err != nil {
		s.logger.Warn("invalidate statistics cache failed", zap.Error(err))
	}
}

func (s *AutoScheduleService) recordRun(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSchedulingRun(outcome)
	}
}

func (s *AutoScheduleService) recordConflicts(conflicts []models.Conflict) {
	if s.metrics == nil {
		return
	}
	for _, conflict := range conflicts {
		s.metrics.RecordConflict(conflict.Type)
	}
}

func statisticsCacheKey(semester string, academicYear int) string {
	return fmt.Sprintf("schedule:stats:%s:%d", semester, academicYear)
}

func buildStatistics(totalCourses, scheduled int, conflicts []models.Conflict) models.ScheduleStatistics {
	stats := models.ScheduleStatistics{
		TotalCourses:       totalCourses,
		ScheduledCourses:   scheduled,
		UnscheduledCourses: totalCourses - scheduled,
		TotalConflicts:     len(conflicts),
	}

	for _, conflict := range conflicts {
		switch conflict.Type {
		case models.ConflictTeacher:
			stats.TeacherConflicts++
		case models.ConflictClassroom:
			stats.ClassroomConflicts++
		case models.ConflictStudent:
			stats.StudentConflicts++
		case models.ConflictResource:
			stats.ResourceConflicts++
		case models.ConflictDependency:
			stats.DependencyConflicts++
		case models.ConflictContinuity:
			stats.ContinuityConflicts++
		case models.ConflictWorkload:
			stats.WorkloadConflicts++
		}
	}

	if totalCourses > 0 {
		stats.SuccessRate = float64(scheduled) / float64(totalCourses) * 100
	}
	return stats
}
