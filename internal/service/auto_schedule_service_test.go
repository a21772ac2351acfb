package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusflow/timetable-api/internal/dto"
	"github.com/campusflow/timetable-api/internal/models"
	"github.com/campusflow/timetable-api/pkg/config"
	appErrors "github.com/campusflow/timetable-api/pkg/errors"
)

type engineFixtureConfig struct {
	courses    []models.CourseOffering
	classrooms []models.Classroom
	slots      []models.TimeSlot
	existing   []models.ScheduleAssignment
	saveErr    error
	counts     map[int64]int
}

func newEngineFixture(cfg engineFixtureConfig) (*AutoScheduleService, *scheduleStoreStub) {
	store := &scheduleStoreStub{existing: cfg.existing, saveErr: cfg.saveErr}
	engine := NewAutoScheduleService(
		&courseRepoStub{courses: cfg.courses},
		&classroomRepoStub{classrooms: cfg.classrooms},
		&timeSlotRepoStub{slots: cfg.slots},
		store,
		&enrollmentStub{counts: cfg.counts},
		nil,
		nil,
		nil,
		zap.NewNop(),
		config.SchedulerConfig{
			MaxOptimizeIterations: 10,
			DefaultStartWeek:      1,
			DefaultEndWeek:        18,
			StatisticsCacheTTL:    time.Minute,
		},
	)
	return engine, store
}

func defaultResources() engineFixtureConfig {
	return engineFixtureConfig{
		courses: []models.CourseOffering{
			{ID: 1, CourseName: "Algorithms", CourseType: "lecture", TeacherID: 11, Credits: 3, Hours: 48, MaxStudents: 40},
		},
		classrooms: []models.Classroom{
			{ID: 101, ClassroomName: "A-101", Capacity: 60, ClassroomType: "classroom"},
		},
		slots: []models.TimeSlot{
			{ID: 1, DayOfWeek: 1, StartTime: "08:00", EndTime: "09:40", DurationMinutes: 100, SlotType: models.SlotTypeMorning},
			{ID: 2, DayOfWeek: 2, StartTime: "11:00", EndTime: "12:40", DurationMinutes: 100, SlotType: models.SlotTypeMorning},
		},
	}
}

func scheduleRequest(courseIDs ...int64) dto.ScheduleRequest {
	return dto.ScheduleRequest{
		Semester:     "fall",
		AcademicYear: 2026,
		CourseIDs:    courseIDs,
	}
}

func TestAutoScheduleSingleCourse(t *testing.T) {
	engine, store := newEngineFixture(defaultResources())

	result := engine.AutoSchedule(context.Background(), scheduleRequest(1))
	require.True(t, result.Success)
	require.Len(t, result.Assignments, 1)

	placed := result.Assignments[0]
	assert.Equal(t, int64(1), placed.CourseID)
	assert.Equal(t, int64(11), placed.TeacherID)
	assert.Equal(t, int64(101), placed.ClassroomID)
	assert.Equal(t, "fall", placed.Semester)
	assert.Equal(t, 1, placed.StartWeek)
	assert.Equal(t, 18, placed.EndWeek)
	assert.Equal(t, models.WeekTypeAll, placed.WeekType)
	assert.NotZero(t, placed.ID, "persisted assignments carry generated ids")
	assert.Len(t, store.saved, 1)

	require.NotNil(t, result.Statistics)
	assert.Equal(t, 1, result.Statistics.TotalCourses)
	assert.Equal(t, 1, result.Statistics.ScheduledCourses)
	assert.Equal(t, 0, result.Statistics.UnscheduledCourses)
	assert.InDelta(t, 100.0, result.Statistics.SuccessRate, 0.01)
}

func TestAutoScheduleAssignmentMatchesSlotTimes(t *testing.T) {
	engine, _ := newEngineFixture(defaultResources())

	result := engine.AutoSchedule(context.Background(), scheduleRequest(1))
	require.True(t, result.Success)

	placed := result.Assignments[0]
	var slot models.TimeSlot
	for _, s := range defaultResources().slots {
		if s.ID == placed.TimeSlotID {
			slot = s
		}
	}
	require.NotZero(t, slot.ID)
	assert.Equal(t, slot.DayOfWeek, placed.DayOfWeek)
	assert.Equal(t, slot.StartTime, placed.StartTime)
	assert.Equal(t, slot.EndTime, placed.EndTime)
}

func TestAutoScheduleAvoidsTeacherClash(t *testing.T) {
	cfg := defaultResources()
	cfg.existing = []models.ScheduleAssignment{
		{ID: 900, CourseID: 99, TeacherID: 11, ClassroomID: 102, TimeSlotID: 1, DayOfWeek: 1,
			StartWeek: 1, EndWeek: 18, StartTime: "08:00", EndTime: "09:40", Semester: "fall", AcademicYear: 2026},
	}
	engine, _ := newEngineFixture(cfg)

	result := engine.AutoSchedule(context.Background(), scheduleRequest(1))
	require.True(t, result.Success)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, int64(2), result.Assignments[0].TimeSlotID, "occupied slot must be skipped")
}

func TestAutoScheduleBatchCoursesNeverShareASlot(t *testing.T) {
	cfg := defaultResources()
	cfg.courses = append(cfg.courses, models.CourseOffering{
		ID: 2, CourseName: "Operating Systems", CourseType: "lecture", TeacherID: 12, Credits: 3, Hours: 48, MaxStudents: 40,
	})
	engine, _ := newEngineFixture(cfg)

	result := engine.AutoSchedule(context.Background(), scheduleRequest(1, 2))
	require.True(t, result.Success)
	require.Len(t, result.Assignments, 2)
	assert.NotEqual(t, result.Assignments[0].TimeSlotID, result.Assignments[1].TimeSlotID,
		"courses placed in the same batch must not collide")
}

func TestAutoScheduleReportsFailureWithSuggestions(t *testing.T) {
	cfg := defaultResources()
	cfg.courses = []models.CourseOffering{
		{ID: 3, CourseName: "Chemistry Lab", CourseType: "lab", TeacherID: 13, Credits: 2, MaxStudents: 20},
	}
	// No laboratory available: the lab course cannot be placed anywhere.
	engine, store := newEngineFixture(cfg)

	result := engine.AutoSchedule(context.Background(), scheduleRequest(3))
	assert.False(t, result.Success)
	assert.Empty(t, result.Assignments)
	assert.Empty(t, store.saved)

	require.Len(t, result.Conflicts, 1)
	conflict := result.Conflicts[0]
	assert.Equal(t, models.ConflictResource, conflict.Type)
	assert.Equal(t, int64(3), conflict.CourseID1)
	assert.NotEmpty(t, conflict.Suggestion)

	require.NotNil(t, result.Statistics)
	assert.Equal(t, 1, result.Statistics.UnscheduledCourses)
	assert.InDelta(t, 0.0, result.Statistics.SuccessRate, 0.01)
}

func TestAutoSchedulePartialBatchStillSucceeds(t *testing.T) {
	cfg := defaultResources()
	cfg.courses = append(cfg.courses, models.CourseOffering{
		ID: 4, CourseName: "Chemistry Lab", CourseType: "lab", TeacherID: 13, Credits: 2, MaxStudents: 20,
	})
	engine, _ := newEngineFixture(cfg)

	result := engine.AutoSchedule(context.Background(), scheduleRequest(1, 4))
	assert.True(t, result.Success, "a partially placed batch is still a success")
	assert.Len(t, result.Assignments, 1)
	assert.NotEmpty(t, result.Conflicts)
	assert.Equal(t, 1, result.Statistics.UnscheduledCourses)
}

func TestAutoScheduleRejectsInvalidRequest(t *testing.T) {
	engine, store := newEngineFixture(defaultResources())

	result := engine.AutoSchedule(context.Background(), dto.ScheduleRequest{Semester: "fall", AcademicYear: 2026})
	assert.False(t, result.Success)
	assert.Empty(t, store.saved)
}

func TestAutoScheduleRejectsInvertedWeekRange(t *testing.T) {
	engine, _ := newEngineFixture(defaultResources())

	req := scheduleRequest(1)
	req.StartWeek, req.EndWeek = 10, 5
	result := engine.AutoSchedule(context.Background(), req)
	assert.False(t, result.Success)
}

func TestAutoScheduleGoldenSlotsReservedForPriorityCourses(t *testing.T) {
	cfg := defaultResources()
	cfg.slots = []models.TimeSlot{
		{ID: 3, DayOfWeek: 1, StartTime: "09:00", EndTime: "10:40", DurationMinutes: 100, SlotType: models.SlotTypeMorning},
	}
	engine, _ := newEngineFixture(cfg)

	result := engine.AutoSchedule(context.Background(), scheduleRequest(1))
	assert.False(t, result.Success, "a three-credit lecture may not claim the golden slot")

	cfg.courses[0].Credits = 4
	engine, _ = newEngineFixture(cfg)
	result = engine.AutoSchedule(context.Background(), scheduleRequest(1))
	assert.True(t, result.Success)
}

func TestAutoScheduleUsesEnrollmentCounts(t *testing.T) {
	cfg := defaultResources()
	// The only room seats 60; with 55 enrolled students the 20% headroom
	// requirement (66 seats) cannot be met.
	cfg.counts = map[int64]int{1: 55}
	engine, _ := newEngineFixture(cfg)

	result := engine.AutoSchedule(context.Background(), scheduleRequest(1))
	assert.False(t, result.Success)
}

func TestAutoSchedulePersistFailureReported(t *testing.T) {
	cfg := defaultResources()
	cfg.saveErr = errors.New("connection reset")
	engine, _ := newEngineFixture(cfg)

	result := engine.AutoSchedule(context.Background(), scheduleRequest(1))
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "persist")
}

func TestValidateScheduleIsIdempotent(t *testing.T) {
	engine, _ := newEngineFixture(defaultResources())

	assignments := []models.ScheduleAssignment{
		assignment(1, 11, 101, 1, 1, "08:00", "09:40"),
		assignment(2, 11, 102, 1, 1, "09:00", "10:40"),
	}

	first := engine.ValidateSchedule(assignments)
	second := engine.ValidateSchedule(assignments)
	assert.False(t, first.Valid)
	assert.Equal(t, len(first.Conflicts), len(second.Conflicts))
}

func TestValidateScheduleCountsEachPairOnce(t *testing.T) {
	engine, _ := newEngineFixture(defaultResources())

	assignments := []models.ScheduleAssignment{
		assignment(1, 11, 101, 1, 1, "08:00", "09:40"),
		assignment(2, 12, 102, 2, 1, "09:00", "10:40"),
	}

	result := engine.ValidateSchedule(assignments)
	// Distinct courses overlapping in time: exactly one student conflict.
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictStudent, result.Conflicts[0].Type)
}

func TestValidateScheduleEmptyIsValid(t *testing.T) {
	engine, _ := newEngineFixture(defaultResources())

	result := engine.ValidateSchedule(nil)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Conflicts)
}

func TestBatchImportRejectsConflictingSet(t *testing.T) {
	engine, store := newEngineFixture(defaultResources())

	req := dto.ImportScheduleRequest{
		Semester:     "fall",
		AcademicYear: 2026,
		Assignments: []models.ScheduleAssignment{
			assignment(1, 11, 101, 1, 1, "08:00", "09:40"),
			assignment(2, 11, 102, 1, 1, "09:00", "10:40"),
		},
	}

	result, err := engine.BatchImport(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, store.saved)
}

func TestBatchImportPersistsCleanSet(t *testing.T) {
	engine, store := newEngineFixture(defaultResources())

	req := dto.ImportScheduleRequest{
		Semester:     "spring",
		AcademicYear: 2027,
		Assignments: []models.ScheduleAssignment{
			assignment(1, 11, 101, 1, 1, "08:00", "09:40"),
			assignment(2, 12, 102, 2, 2, "10:00", "11:40"),
		},
	}

	result, err := engine.BatchImport(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, store.saved, 2)
	assert.Equal(t, "spring", store.saved[0].Semester)
	assert.Equal(t, 2027, store.saved[0].AcademicYear)
}

func TestClearScheduleRequiresSemester(t *testing.T) {
	engine, _ := newEngineFixture(defaultResources())

	err := engine.ClearSchedule(context.Background(), "", 2026)
	assert.ErrorIs(t, err, appErrors.ErrEmptySemester)
}

func TestCopyScheduleClonesAssignments(t *testing.T) {
	cfg := defaultResources()
	cfg.existing = []models.ScheduleAssignment{
		{ID: 5, CourseID: 1, TeacherID: 11, ClassroomID: 101, TimeSlotID: 1, DayOfWeek: 1,
			StartWeek: 1, EndWeek: 18, WeekType: models.WeekTypeAll,
			StartTime: "08:00", EndTime: "09:40", Semester: "fall", AcademicYear: 2026},
	}
	engine, store := newEngineFixture(cfg)

	result, err := engine.CopySchedule(context.Background(), dto.CopyScheduleRequest{
		SourceSemester:     "fall",
		SourceAcademicYear: 2026,
		TargetSemester:     "spring",
		TargetAcademicYear: 2027,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "spring", store.saved[0].Semester)
	assert.Equal(t, 2027, store.saved[0].AcademicYear)
	assert.Equal(t, int64(1), store.saved[0].CourseID)
}

func TestCopyScheduleRejectsIdenticalTarget(t *testing.T) {
	engine, _ := newEngineFixture(defaultResources())

	_, err := engine.CopySchedule(context.Background(), dto.CopyScheduleRequest{
		SourceSemester:     "fall",
		SourceAcademicYear: 2026,
		TargetSemester:     "fall",
		TargetAcademicYear: 2026,
	})
	assert.Error(t, err)
}

func TestAvailableTimeSlotsExcludesOccupied(t *testing.T) {
	cfg := defaultResources()
	cfg.existing = []models.ScheduleAssignment{
		{ID: 1, CourseID: 1, TeacherID: 11, ClassroomID: 101, TimeSlotID: 1, DayOfWeek: 1,
			StartWeek: 1, EndWeek: 18, StartTime: "08:00", EndTime: "09:40", Semester: "fall", AcademicYear: 2026},
	}
	engine, _ := newEngineFixture(cfg)

	slots, err := engine.AvailableTimeSlots(context.Background(), 0, 11, "fall", 2026)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, int64(2), slots[0].ID)
}

func TestRecommendedClassroomsSortedByCapacity(t *testing.T) {
	cfg := defaultResources()
	cfg.classrooms = []models.Classroom{
		{ID: 1, ClassroomName: "Hall", Capacity: 200, ClassroomType: "lecture_hall"},
		{ID: 2, ClassroomName: "A-101", Capacity: 60, ClassroomType: "classroom"},
		{ID: 3, ClassroomName: "Closet", Capacity: 10, ClassroomType: "classroom"},
	}
	engine, _ := newEngineFixture(cfg)

	rooms, err := engine.RecommendedClassrooms(context.Background(), 1, 30)
	require.NoError(t, err)
	require.Len(t, rooms, 2, "undersized rooms are filtered out")
	assert.Equal(t, int64(2), rooms[0].ID)
	assert.Equal(t, int64(1), rooms[1].ID)
}

func TestDetermineWeekType(t *testing.T) {
	assert.Equal(t, models.WeekTypeAll, determineWeekType(models.CourseOffering{Credits: 3}))
	assert.Equal(t, models.WeekTypeOdd, determineWeekType(models.CourseOffering{Credits: 1}))
	assert.Equal(t, models.WeekTypeAll, determineWeekType(models.CourseOffering{CourseType: "lab"}))
	assert.Equal(t, models.WeekTypeOdd, determineWeekType(models.CourseOffering{CourseType: "elective"}))
	assert.Equal(t, models.WeekTypeOdd, determineWeekType(models.CourseOffering{Hours: 32}))
	assert.Equal(t, models.WeekTypeAll, determineWeekType(models.CourseOffering{Hours: 64}))
}

// --- stubs ---

type courseRepoStub struct {
	courses []models.CourseOffering
}

func (s *courseRepoStub) FindByIDs(ctx context.Context, ids []int64) ([]models.CourseOffering, error) {
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var result []models.CourseOffering
	for _, course := range s.courses {
		if wanted[course.ID] {
			result = append(result, course)
		}
	}
	return result, nil
}

func (s *courseRepoStub) FindByID(ctx context.Context, id int64) (*models.CourseOffering, error) {
	for _, course := range s.courses {
		if course.ID == id {
			c := course
			return &c, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
}

type classroomRepoStub struct {
	classrooms []models.Classroom
}

func (s *classroomRepoStub) FindAll(ctx context.Context) ([]models.Classroom, error) {
	return s.classrooms, nil
}

func (s *classroomRepoStub) FindByIDs(ctx context.Context, ids []int64) ([]models.Classroom, error) {
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var result []models.Classroom
	for _, room := range s.classrooms {
		if wanted[room.ID] {
			result = append(result, room)
		}
	}
	return result, nil
}

type timeSlotRepoStub struct {
	slots []models.TimeSlot
}

func (s *timeSlotRepoStub) FindAll(ctx context.Context) ([]models.TimeSlot, error) {
	return s.slots, nil
}

func (s *timeSlotRepoStub) FindByIDs(ctx context.Context, ids []int64) ([]models.TimeSlot, error) {
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var result []models.TimeSlot
	for _, slot := range s.slots {
		if wanted[slot.ID] {
			result = append(result, slot)
		}
	}
	return result, nil
}

type scheduleStoreStub struct {
	existing []models.ScheduleAssignment
	saved    []models.ScheduleAssignment
	saveErr  error
	nextID   int64
}

func (s *scheduleStoreStub) FindBySemester(ctx context.Context, semester string, academicYear int) ([]models.ScheduleAssignment, error) {
	var result []models.ScheduleAssignment
	for _, a := range s.existing {
		if a.Semester == semester && a.AcademicYear == academicYear {
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *scheduleStoreStub) FindByTeacherAndSemester(ctx context.Context, teacherID int64, semester string, academicYear int) ([]models.ScheduleAssignment, error) {
	var result []models.ScheduleAssignment
	for _, a := range s.existing {
		if a.TeacherID == teacherID && a.Semester == semester && a.AcademicYear == academicYear {
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *scheduleStoreStub) FindByClassroomAndSemester(ctx context.Context, classroomID int64, semester string, academicYear int) ([]models.ScheduleAssignment, error) {
	var result []models.ScheduleAssignment
	for _, a := range s.existing {
		if a.ClassroomID == classroomID && a.Semester == semester && a.AcademicYear == academicYear {
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *scheduleStoreStub) SaveBatch(ctx context.Context, assignments []models.ScheduleAssignment) ([]models.ScheduleAssignment, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	saved := make([]models.ScheduleAssignment, 0, len(assignments))
	for _, a := range assignments {
		s.nextID++
		a.ID = s.nextID
		saved = append(saved, a)
	}
	s.saved = append(s.saved, saved...)
	s.existing = append(s.existing, saved...)
	return saved, nil
}

func (s *scheduleStoreStub) DeleteBySemester(ctx context.Context, semester string, academicYear int) error {
	kept := s.existing[:0]
	for _, a := range s.existing {
		if a.Semester != semester || a.AcademicYear != academicYear {
			kept = append(kept, a)
		}
	}
	s.existing = kept
	return nil
}

type enrollmentStub struct {
	counts map[int64]int
}

func (s *enrollmentStub) CountByCourse(ctx context.Context, courseID int64) (int, error) {
	if s.counts == nil {
		return 0, nil
	}
	return s.counts[courseID], nil
}
