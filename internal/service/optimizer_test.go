package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/timetable-api/internal/dto"
	"github.com/campusflow/timetable-api/internal/models"
)

func TestOptimizeScheduleAlreadyCleanIsNoop(t *testing.T) {
	engine, _ := newEngineFixture(defaultResources())

	input := []models.ScheduleAssignment{
		assignment(1, 11, 101, 1, 1, "08:00", "09:40"),
		assignment(2, 12, 102, 2, 2, "11:00", "12:40"),
	}

	result := engine.OptimizeSchedule(context.Background(), dto.OptimizeScheduleRequest{Assignments: input})
	require.True(t, result.Success)
	assert.Equal(t, input, result.Assignments)
	assert.InDelta(t, 100.0, result.Statistics.SuccessRate, 0.01)
}

func TestOptimizeScheduleResolvesStudentClash(t *testing.T) {
	engine, _ := newEngineFixture(defaultResources())

	input := []models.ScheduleAssignment{
		assignment(1, 11, 101, 1, 1, "08:00", "09:40"),
		assignment(2, 12, 102, 1, 1, "08:00", "09:40"),
	}

	result := engine.OptimizeSchedule(context.Background(), dto.OptimizeScheduleRequest{Assignments: input})
	require.True(t, result.Success)
	assert.Empty(t, result.Conflicts)
	assert.InDelta(t, 100.0, result.Statistics.SuccessRate, 0.01)

	// The later addition moves; the original placement survives.
	byCourse := map[int64]models.ScheduleAssignment{}
	for _, a := range result.Assignments {
		byCourse[a.CourseID] = a
	}
	assert.Equal(t, int64(1), byCourse[1].TimeSlotID)
	assert.Equal(t, int64(2), byCourse[2].TimeSlotID)
	assert.Equal(t, 2, byCourse[2].DayOfWeek, "a moved assignment follows its new slot's day")
	assert.Equal(t, "11:00", byCourse[2].StartTime)
}

func TestOptimizeScheduleDoesNotMutateInput(t *testing.T) {
	engine, _ := newEngineFixture(defaultResources())

	input := []models.ScheduleAssignment{
		assignment(1, 11, 101, 1, 1, "08:00", "09:40"),
		assignment(2, 12, 102, 1, 1, "08:00", "09:40"),
	}
	original := models.CloneAssignments(input)

	_ = engine.OptimizeSchedule(context.Background(), dto.OptimizeScheduleRequest{Assignments: input})
	assert.Equal(t, original, input)
}

func TestOptimizeScheduleUnresolvableReportsRemaining(t *testing.T) {
	cfg := defaultResources()
	// Only the contested slot exists, so neither side can move.
	cfg.slots = cfg.slots[:1]
	engine, _ := newEngineFixture(cfg)

	input := []models.ScheduleAssignment{
		assignment(1, 11, 101, 1, 1, "08:00", "09:40"),
		assignment(2, 12, 102, 1, 1, "08:00", "09:40"),
	}

	result := engine.OptimizeSchedule(context.Background(), dto.OptimizeScheduleRequest{Assignments: input})
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Conflicts)
	assert.InDelta(t, 0.0, result.Statistics.SuccessRate, 0.01)
	assert.Len(t, result.Assignments, len(input), "no assignment is ever dropped")
}

func TestOptimizeScheduleNeverIncreasesConflicts(t *testing.T) {
	cfg := defaultResources()
	cfg.slots = cfg.slots[:1]
	engine, _ := newEngineFixture(cfg)

	input := []models.ScheduleAssignment{
		assignment(1, 11, 101, 1, 1, "08:00", "09:40"),
		assignment(2, 12, 102, 1, 1, "08:00", "09:40"),
		assignment(3, 13, 103, 1, 1, "08:00", "09:40"),
	}

	before := len(engine.ValidateSchedule(input).Conflicts)
	result := engine.OptimizeSchedule(context.Background(), dto.OptimizeScheduleRequest{Assignments: input})
	assert.LessOrEqual(t, len(result.Conflicts), before)
}

func TestOptimizeScheduleResolvesClassroomClashByMovingRooms(t *testing.T) {
	cfg := defaultResources()
	cfg.classrooms = append(cfg.classrooms, models.Classroom{
		ID: 102, ClassroomName: "A-102", Capacity: 60, ClassroomType: "classroom",
	})
	engine, _ := newEngineFixture(cfg)

	// Same classroom and overlapping time: classroom clash plus student clash.
	input := []models.ScheduleAssignment{
		assignment(1, 11, 101, 1, 1, "08:00", "09:40"),
		assignment(2, 12, 101, 1, 1, "08:00", "09:40"),
	}

	result := engine.OptimizeSchedule(context.Background(), dto.OptimizeScheduleRequest{Assignments: input})
	require.True(t, result.Success)
	assert.Empty(t, result.Conflicts)
}

func TestOptimizeScheduleRejectsEmptyRequest(t *testing.T) {
	engine, _ := newEngineFixture(defaultResources())

	result := engine.OptimizeSchedule(context.Background(), dto.OptimizeScheduleRequest{})
	assert.False(t, result.Success)
}
