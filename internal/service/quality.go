package service

import (
	"github.com/campusflow/timetable-api/internal/models"
)

// Weighting of the quality subscores. They sum to 1 so a perfect placement
// scores 100.
const (
	weightClassroomFit   = 0.30
	weightTimeSlotFit    = 0.25
	weightUtilization    = 0.20
	weightStudentComfort = 0.15
	weightTeacherComfort = 0.10
)

// QualityEvaluator produces the composite quality score of a placement.
// Like the scorer it is pure: the same inputs always yield the same score.
type QualityEvaluator struct {
	scorer *CompatibilityScorer
}

func NewQualityEvaluator(scorer *CompatibilityScorer) *QualityEvaluator {
	if scorer == nil {
		scorer = NewCompatibilityScorer()
	}
	return &QualityEvaluator{scorer: scorer}
}

// Score combines classroom fit, time-slot fit, resource utilisation, student
// convenience and teacher preference into a single value clamped to [0,100].
func (e *QualityEvaluator) Score(assignment models.ScheduleAssignment, course models.CourseOffering, classroom models.Classroom, slot models.TimeSlot) float64 {
	score := e.scorer.ClassroomScore(classroom, course) * weightClassroomFit
	score += e.scorer.TimeSlotScore(slot, course) * weightTimeSlotFit
	score += e.ResourceUtilization(classroom, slot) * weightUtilization
	score += e.StudentConvenience(assignment, classroom) * weightStudentComfort
	score += e.TeacherPreference(assignment, course) * weightTeacherComfort

	return clamp(score)
}

// ResourceUtilization estimates how well a (classroom, slot) pairing uses the
// room. A deterministic hash spreads the base between 60 and 90, scaled by how
// popular the hour is and by the room type.
func (e *QualityEvaluator) ResourceUtilization(classroom models.Classroom, slot models.TimeSlot) float64 {
	base := baseUtilization(classroom.ID, slot.ID)
	return clamp(base * timePopularityFactor(slot) * classroomTypeFactor(classroom))
}

func baseUtilization(classroomID, timeSlotID int64) float64 {
	h := uint64(classroomID + timeSlotID)
	h ^= h >> 32
	return 60.0 + float64(h%31)
}

func timePopularityFactor(slot models.TimeSlot) float64 {
	hour := slot.StartHour()
	if hour < 0 {
		return 1.0
	}

	switch {
	case (hour >= 9 && hour <= 10) || (hour >= 14 && hour <= 15):
		return 1.2
	case hour < 8 || hour > 18:
		return 0.8
	case hour >= 12 && hour < 14:
		return 0.5
	}
	return 1.0
}

func classroomTypeFactor(classroom models.Classroom) float64 {
	switch classroom.ClassroomType {
	case "computer_lab":
		return 1.1
	case "lecture_hall":
		return 1.15
	}
	return 1.0
}

// StudentConvenience scores a placement from the students' point of view:
// time of day, room location, weekday position and commute pressure.
func (e *QualityEvaluator) StudentConvenience(assignment models.ScheduleAssignment, classroom models.Classroom) float64 {
	convenience := 50.0
	convenience += slotConvenience(assignment)
	convenience += locationConvenience(classroom)
	convenience += weekdayConvenience(assignment.DayOfWeek)
	convenience += commuteConvenience(assignment)
	return clamp(convenience)
}

func slotConvenience(assignment models.ScheduleAssignment) float64 {
	hour := startHour(assignment)
	if hour < 0 {
		return 10.0
	}

	switch {
	case (hour >= 9 && hour <= 10) || (hour >= 14 && hour <= 15):
		return 20.0
	case hour >= 8 && hour <= 17:
		return 15.0
	case hour < 8 || hour > 18:
		return 5.0
	}
	return 10.0
}

func locationConvenience(classroom models.Classroom) float64 {
	if classroom.ID == 0 {
		return 10.0
	}

	if classroom.Capacity >= 50 && classroom.Capacity <= 100 {
		return 12.0
	}
	if classroom.Capacity > 100 {
		return 8.0
	}
	return 10.0
}

func weekdayConvenience(dayOfWeek int) float64 {
	switch {
	case dayOfWeek >= 2 && dayOfWeek <= 4:
		return 10.0
	case dayOfWeek == 1 || dayOfWeek == 5:
		return 5.0
	}
	return 2.0
}

func commuteConvenience(assignment models.ScheduleAssignment) float64 {
	hour := startHour(assignment)
	if hour < 0 {
		return 5.0
	}

	// Rush hours.
	if (hour >= 7 && hour <= 8) || (hour >= 17 && hour <= 18) {
		return 2.0
	}
	if hour >= 9 && hour <= 16 {
		return 8.0
	}
	return 5.0
}

// TeacherPreference scores a placement from the teacher's point of view:
// working hours, room fit, weekday load and course type.
func (e *QualityEvaluator) TeacherPreference(assignment models.ScheduleAssignment, course models.CourseOffering) float64 {
	preference := 50.0
	preference += teacherTimePreference(assignment)
	preference += teacherClassroomPreference(assignment, course)
	preference += teacherWorkdayPreference(assignment)
	preference += teacherCourseTypePreference(assignment, course)
	return clamp(preference)
}

func teacherTimePreference(assignment models.ScheduleAssignment) float64 {
	hour := startHour(assignment)
	if hour < 0 || assignment.TeacherID == 0 {
		return 10.0
	}

	switch {
	case hour >= 9 && hour <= 16:
		return 15.0
	case hour >= 8 && hour <= 17:
		return 10.0
	}
	return 5.0
}

func teacherClassroomPreference(assignment models.ScheduleAssignment, course models.CourseOffering) float64 {
	if assignment.ClassroomID == 0 || assignment.TeacherID == 0 {
		return 10.0
	}

	switch course.CourseType {
	case "lab", "computer":
		return 12.0
	case "lecture":
		return 10.0
	}
	return 8.0
}

func teacherWorkdayPreference(assignment models.ScheduleAssignment) float64 {
	if assignment.TeacherID == 0 {
		return 10.0
	}

	switch {
	case assignment.DayOfWeek >= 2 && assignment.DayOfWeek <= 4:
		return 10.0
	case assignment.DayOfWeek == 1 || assignment.DayOfWeek == 5:
		return 8.0
	}
	return 5.0
}

func teacherCourseTypePreference(assignment models.ScheduleAssignment, course models.CourseOffering) float64 {
	if assignment.TeacherID == 0 {
		return 10.0
	}

	switch course.CourseType {
	case "theory", "lecture", "lab", "practical", "seminar":
		return 10.0
	}
	return 8.0
}

func startHour(assignment models.ScheduleAssignment) int {
	minutes := models.MinutesOfDay(assignment.StartTime)
	if minutes < 0 {
		return -1
	}
	return minutes / 60
}

func clamp(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
