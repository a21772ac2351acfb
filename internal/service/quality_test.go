package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusflow/timetable-api/internal/models"
)

func TestQualityScoreStaysInRange(t *testing.T) {
	quality := NewQualityEvaluator(nil)

	course := lectureCourse()
	room := models.Classroom{ID: 1, ClassroomName: "A-101", Capacity: 50, ClassroomType: "classroom"}
	slot := morningSlot(1, 2, "09:00", "10:40", 100)
	placement := assignment(course.ID, course.TeacherID, room.ID, slot.ID, slot.DayOfWeek, slot.StartTime, slot.EndTime)

	score := quality.Score(placement, course, room, slot)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestQualityScoreIsDeterministic(t *testing.T) {
	quality := NewQualityEvaluator(nil)

	course := lectureCourse()
	room := models.Classroom{ID: 3, Capacity: 80, ClassroomType: "lecture_hall"}
	slot := morningSlot(5, 3, "10:00", "11:40", 100)
	placement := assignment(course.ID, course.TeacherID, room.ID, slot.ID, slot.DayOfWeek, slot.StartTime, slot.EndTime)

	first := quality.Score(placement, course, room, slot)
	second := quality.Score(placement, course, room, slot)
	assert.Equal(t, first, second)
}

func TestResourceUtilizationBaseRange(t *testing.T) {
	quality := NewQualityEvaluator(nil)

	for id := int64(1); id <= 50; id++ {
		room := models.Classroom{ID: id, Capacity: 60, ClassroomType: "classroom"}
		slot := models.TimeSlot{ID: id * 3, StartTime: "10:00", EndTime: "11:40"}
		utilization := quality.ResourceUtilization(room, slot)
		assert.GreaterOrEqual(t, utilization, 0.0)
		assert.LessOrEqual(t, utilization, 100.0)
	}
}

func TestResourceUtilizationDiscountsLunch(t *testing.T) {
	quality := NewQualityEvaluator(nil)

	room := models.Classroom{ID: 1, Capacity: 60, ClassroomType: "classroom"}
	midMorning := models.TimeSlot{ID: 2, StartTime: "10:00", EndTime: "11:40"}
	lunch := models.TimeSlot{ID: 2, StartTime: "12:30", EndTime: "14:10"}

	assert.Greater(t, quality.ResourceUtilization(room, midMorning), quality.ResourceUtilization(room, lunch))
}

func TestStudentConveniencePrefersMidweekPrime(t *testing.T) {
	quality := NewQualityEvaluator(nil)
	room := models.Classroom{ID: 1, Capacity: 60, ClassroomType: "classroom"}

	prime := assignment(1, 11, 1, 1, 3, "09:00", "10:40")
	fringe := assignment(1, 11, 1, 2, 6, "19:00", "20:40")

	assert.Greater(t, quality.StudentConvenience(prime, room), quality.StudentConvenience(fringe, room))
}

func TestTeacherPreferencePrefersCoreHours(t *testing.T) {
	quality := NewQualityEvaluator(nil)
	course := lectureCourse()

	core := assignment(1, 11, 1, 1, 3, "10:00", "11:40")
	late := assignment(1, 11, 1, 2, 6, "19:00", "20:40")

	assert.Greater(t, quality.TeacherPreference(core, course), quality.TeacherPreference(late, course))
}
