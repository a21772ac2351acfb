package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusflow/timetable-api/internal/models"
)

func assignment(courseID, teacherID, classroomID, slotID int64, day int, start, end string) models.ScheduleAssignment {
	return models.ScheduleAssignment{
		CourseID:    courseID,
		TeacherID:   teacherID,
		ClassroomID: classroomID,
		TimeSlotID:  slotID,
		DayOfWeek:   day,
		StartWeek:   1,
		EndWeek:     18,
		StartTime:   start,
		EndTime:     end,
	}
}

func TestCheckConflictsDetectsTeacherClash(t *testing.T) {
	detector := NewConflictDetector()

	a := assignment(1, 11, 101, 1, 1, "08:00", "09:40")
	b := assignment(2, 11, 102, 1, 1, "09:00", "10:40")

	conflicts := detector.CheckConflicts(a, []models.ScheduleAssignment{b})
	require.NotEmpty(t, conflicts)

	types := conflictTypes(conflicts)
	assert.Contains(t, types, models.ConflictTeacher)
	assert.Contains(t, types, models.ConflictStudent)
	assert.NotContains(t, types, models.ConflictClassroom)
}

func TestCheckConflictsDetectsClassroomClash(t *testing.T) {
	detector := NewConflictDetector()

	a := assignment(1, 11, 101, 1, 1, "08:00", "09:40")
	b := assignment(2, 12, 101, 2, 1, "08:30", "10:00")

	types := conflictTypes(detector.CheckConflicts(a, []models.ScheduleAssignment{b}))
	assert.Contains(t, types, models.ConflictClassroom)
	assert.NotContains(t, types, models.ConflictTeacher)
}

func TestCheckConflictsTouchingBoundariesDoNotOverlap(t *testing.T) {
	detector := NewConflictDetector()

	a := assignment(1, 11, 101, 1, 1, "08:00", "10:00")
	b := assignment(2, 11, 101, 2, 1, "10:00", "11:40")

	assert.Empty(t, detector.CheckConflicts(a, []models.ScheduleAssignment{b}))
}

func TestCheckConflictsDifferentDaysNeverClash(t *testing.T) {
	detector := NewConflictDetector()

	a := assignment(1, 11, 101, 1, 1, "08:00", "09:40")
	b := assignment(2, 11, 101, 1, 2, "08:00", "09:40")

	assert.Empty(t, detector.CheckConflicts(a, []models.ScheduleAssignment{b}))
}

func TestCheckConflictsDisjointWeekRangesNeverClash(t *testing.T) {
	detector := NewConflictDetector()

	a := assignment(1, 11, 101, 1, 1, "08:00", "09:40")
	a.StartWeek, a.EndWeek = 1, 8
	b := assignment(2, 11, 101, 1, 1, "08:00", "09:40")
	b.StartWeek, b.EndWeek = 9, 18

	assert.Empty(t, detector.CheckConflicts(a, []models.ScheduleAssignment{b}))
}

func TestCheckConflictsMalformedTimesFallBackToSlotIdentity(t *testing.T) {
	detector := NewConflictDetector()

	a := assignment(1, 11, 101, 7, 1, "", "")
	b := assignment(2, 11, 102, 7, 1, "", "")
	c := assignment(3, 11, 103, 8, 1, "", "")

	assert.NotEmpty(t, detector.CheckConflicts(a, []models.ScheduleAssignment{b}))
	assert.Empty(t, detector.CheckConflicts(a, []models.ScheduleAssignment{c}))
}

func TestCheckConflictsIsSymmetric(t *testing.T) {
	detector := NewConflictDetector()

	a := assignment(1, 11, 101, 1, 1, "08:00", "09:40")
	b := assignment(2, 11, 101, 2, 1, "09:00", "10:40")

	forward := conflictTypes(detector.CheckConflicts(a, []models.ScheduleAssignment{b}))
	backward := conflictTypes(detector.CheckConflicts(b, []models.ScheduleAssignment{a}))
	assert.ElementsMatch(t, forward, backward)
}

func TestCheckAdvancedConflictsMissingPrerequisite(t *testing.T) {
	detector := NewConflictDetector()

	catalog := map[int64]models.CourseOffering{
		1: {ID: 1, CourseName: "Advanced Calculus", CourseType: "lecture"},
	}
	candidate := assignment(1, 11, 101, 1, 1, "08:00", "09:40")

	types := conflictTypes(detector.CheckAdvancedConflicts(candidate, nil, catalog))
	assert.Contains(t, types, models.ConflictDependency)
}

func TestCheckAdvancedConflictsPrerequisitePresent(t *testing.T) {
	detector := NewConflictDetector()

	catalog := map[int64]models.CourseOffering{
		1: {ID: 1, CourseName: "Advanced Calculus", CourseType: "lecture"},
		2: {ID: 2, CourseName: "Basic Calculus", CourseType: "lecture"},
	}
	candidate := assignment(1, 11, 101, 1, 1, "08:00", "09:40")
	existing := []models.ScheduleAssignment{assignment(2, 12, 102, 2, 2, "10:00", "11:40")}

	types := conflictTypes(detector.CheckAdvancedConflicts(candidate, existing, catalog))
	assert.NotContains(t, types, models.ConflictDependency)
}

func TestCheckAdvancedConflictsLabResource(t *testing.T) {
	detector := NewConflictDetector()

	catalog := map[int64]models.CourseOffering{
		1: {ID: 1, CourseName: "Chemistry Lab", CourseType: "lab"},
		2: {ID: 2, CourseName: "Physics Lab", CourseType: "lab"},
	}
	candidate := assignment(1, 11, 101, 5, 1, "14:00", "15:40")
	existing := []models.ScheduleAssignment{assignment(2, 12, 102, 5, 2, "14:00", "15:40")}

	types := conflictTypes(detector.CheckAdvancedConflicts(candidate, existing, catalog))
	assert.Contains(t, types, models.ConflictResource)
}

func TestCheckAdvancedConflictsContinuitySameDay(t *testing.T) {
	detector := NewConflictDetector()

	candidate := assignment(1, 11, 101, 1, 1, "08:00", "09:40")
	existing := []models.ScheduleAssignment{assignment(1, 11, 101, 2, 1, "14:00", "15:40")}

	types := conflictTypes(detector.CheckAdvancedConflicts(candidate, existing, nil))
	assert.Contains(t, types, models.ConflictContinuity)
}

func TestCheckAdvancedConflictsTeacherDailyWorkload(t *testing.T) {
	detector := NewConflictDetector()

	var existing []models.ScheduleAssignment
	for i := int64(0); i < 4; i++ {
		existing = append(existing, assignment(10+i, 11, 101+i, 1+i, 1, "08:00", "09:40"))
	}
	candidate := assignment(1, 11, 200, 9, 1, "18:00", "19:40")

	types := conflictTypes(detector.CheckAdvancedConflicts(candidate, existing, nil))
	assert.Contains(t, types, models.ConflictWorkload)
}

func TestConflictPriorityOrdering(t *testing.T) {
	assert.Greater(t, models.ConflictTeacher.Priority(), models.ConflictClassroom.Priority())
	assert.Greater(t, models.ConflictClassroom.Priority(), models.ConflictStudent.Priority())
	assert.Greater(t, models.ConflictStudent.Priority(), models.ConflictResource.Priority())
	assert.Equal(t, 0, models.ConflictDependency.Priority())
	assert.Equal(t, 0, models.ConflictContinuity.Priority())
	assert.Equal(t, 0, models.ConflictWorkload.Priority())
}

func conflictTypes(conflicts []models.Conflict) []models.ConflictType {
	types := make([]models.ConflictType, 0, len(conflicts))
	for _, c := range conflicts {
		types = append(types, c.Type)
	}
	return types
}
