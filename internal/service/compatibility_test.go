package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusflow/timetable-api/internal/models"
)

func lectureCourse() models.CourseOffering {
	return models.CourseOffering{
		ID:          1,
		CourseName:  "Algorithms",
		CourseType:  "lecture",
		TeacherID:   11,
		Credits:     3,
		Hours:       48,
		MaxStudents: 40,
	}
}

func morningSlot(id int64, day int, start, end string, duration int) models.TimeSlot {
	return models.TimeSlot{
		ID:              id,
		DayOfWeek:       day,
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: duration,
		SlotType:        models.SlotTypeMorning,
	}
}

func TestClassroomScoreRewardsSnugCapacity(t *testing.T) {
	scorer := NewCompatibilityScorer()
	course := lectureCourse()

	// 40/50 = 0.8 utilisation, inside the preferred band.
	snug := models.Classroom{ID: 1, ClassroomName: "A-101", Capacity: 50, ClassroomType: "classroom"}
	// 40/200 = 0.2, merely adequate.
	oversized := models.Classroom{ID: 2, ClassroomName: "Hall", Capacity: 200, ClassroomType: "lecture_hall"}

	assert.Greater(t, scorer.ClassroomScore(snug, course), scorer.ClassroomScore(oversized, course))
}

func TestClassroomScoreIsDeterministic(t *testing.T) {
	scorer := NewCompatibilityScorer()
	course := lectureCourse()
	room := models.Classroom{ID: 1, Capacity: 50, ClassroomType: "classroom"}

	first := scorer.ClassroomScore(room, course)
	assert.Equal(t, first, scorer.ClassroomScore(room, course))
	assert.GreaterOrEqual(t, first, 50.0)
	assert.LessOrEqual(t, first, 100.0)
}

func TestTimeSlotScorePrefersMorning(t *testing.T) {
	scorer := NewCompatibilityScorer()
	course := lectureCourse()

	morning := morningSlot(1, 1, "08:00", "09:40", 100)
	evening := models.TimeSlot{ID: 2, DayOfWeek: 1, StartTime: "19:00", EndTime: "20:40", DurationMinutes: 100, SlotType: models.SlotTypeEvening}

	assert.Greater(t, scorer.TimeSlotScore(morning, course), scorer.TimeSlotScore(evening, course))
}

func TestEquipmentCompatibleRequiresHeadroom(t *testing.T) {
	scorer := NewCompatibilityScorer()
	course := lectureCourse()
	course.EnrolledStudents = 50

	tight := models.Classroom{ID: 1, Capacity: 55, ClassroomType: "classroom"}
	roomy := models.Classroom{ID: 2, Capacity: 60, ClassroomType: "classroom"}

	assert.False(t, scorer.EquipmentCompatible(tight, course))
	assert.True(t, scorer.EquipmentCompatible(roomy, course))
}

func TestEquipmentCompatibleMatchesRoomType(t *testing.T) {
	scorer := NewCompatibilityScorer()

	lab := models.CourseOffering{ID: 3, CourseType: "lab", MaxStudents: 20}
	classroom := models.Classroom{ID: 1, Capacity: 100, ClassroomType: "classroom"}
	laboratory := models.Classroom{ID: 2, Capacity: 100, ClassroomType: "laboratory"}

	assert.False(t, scorer.EquipmentCompatible(classroom, lab))
	assert.True(t, scorer.EquipmentCompatible(laboratory, lab))
}

func TestTimeSlotAppropriateRejectsLunch(t *testing.T) {
	scorer := NewCompatibilityScorer()
	course := lectureCourse()

	lunch := models.TimeSlot{ID: 1, DayOfWeek: 1, StartTime: "12:30", EndTime: "14:10", DurationMinutes: 100, SlotType: models.SlotTypeAfternoon}
	assert.False(t, scorer.TimeSlotAppropriate(lunch, course))
}

func TestTimeSlotAppropriateReservesGoldenSlots(t *testing.T) {
	scorer := NewCompatibilityScorer()

	golden := morningSlot(1, 1, "09:00", "10:40", 100)

	regular := lectureCourse()
	priority := lectureCourse()
	priority.Credits = 4

	assert.False(t, scorer.TimeSlotAppropriate(golden, regular))
	assert.True(t, scorer.TimeSlotAppropriate(golden, priority))
}

func TestTimeSlotAppropriateDurationBounds(t *testing.T) {
	scorer := NewCompatibilityScorer()

	lab := models.CourseOffering{ID: 3, CourseType: "lab", MaxStudents: 20}
	short := models.TimeSlot{ID: 1, DayOfWeek: 1, StartTime: "14:00", EndTime: "14:45", DurationMinutes: 45, SlotType: models.SlotTypeAfternoon}
	long := models.TimeSlot{ID: 2, DayOfWeek: 1, StartTime: "15:00", EndTime: "16:40", DurationMinutes: 100, SlotType: models.SlotTypeAfternoon}

	assert.False(t, scorer.TimeSlotAppropriate(short, lab))
	assert.True(t, scorer.TimeSlotAppropriate(long, lab))
}

func TestEstimateStudentsFallbackChain(t *testing.T) {
	assert.Equal(t, 35, EstimateStudents(models.CourseOffering{EnrolledStudents: 35, MaxStudents: 60}))
	assert.Equal(t, 30, EstimateStudents(models.CourseOffering{MaxStudents: 60}))
	assert.Equal(t, 20, EstimateStudents(models.CourseOffering{MaxStudents: 20}))
	assert.Equal(t, 25, EstimateStudents(models.CourseOffering{}))
}

func TestIsPriorityCourse(t *testing.T) {
	scorer := NewCompatibilityScorer()

	assert.True(t, scorer.IsPriorityCourse(models.CourseOffering{CourseType: "core"}))
	assert.True(t, scorer.IsPriorityCourse(models.CourseOffering{CourseType: "required"}))
	assert.True(t, scorer.IsPriorityCourse(models.CourseOffering{CourseType: "lecture", Credits: 4}))
	assert.False(t, scorer.IsPriorityCourse(models.CourseOffering{CourseType: "lecture", Credits: 3}))
}
