package service

import (
	"math"
	"strings"

	"github.com/campusflow/timetable-api/internal/models"
)

// CompatibilityScorer rates how well classrooms and time slots fit a course
// offering. All methods are pure functions of their inputs so candidate
// rankings are reproducible for the same resource snapshot.
type CompatibilityScorer struct{}

func NewCompatibilityScorer() *CompatibilityScorer {
	return &CompatibilityScorer{}
}

// ClassroomScore rates a classroom for a course. Base 50, up to 30 for capacity
// utilisation and 20 for equipment fit. Higher is better.
func (s *CompatibilityScorer) ClassroomScore(classroom models.Classroom, course models.CourseOffering) float64 {
	score := 50.0

	required := course.MaxStudents
	if required <= 0 {
		required = 30
	}
	if classroom.Capacity > 0 {
		ratio := float64(required) / float64(classroom.Capacity)
		if ratio >= 0.7 && ratio <= 0.9 {
			score += 30.0
		} else if ratio <= 1.0 {
			score += 20.0
		}
	}

	if s.EquipmentCompatible(classroom, course) {
		score += 20.0
	}

	return score
}

// TimeSlotScore rates a time slot for a course. Base 50, morning starts get 25,
// afternoon starts 20, and a course-type/slot-type match another 25.
func (s *CompatibilityScorer) TimeSlotScore(slot models.TimeSlot, course models.CourseOffering) float64 {
	score := 50.0

	hour := slot.StartHour()
	if hour >= 8 && hour <= 11 {
		score += 25.0
	} else if hour >= 14 && hour <= 17 {
		score += 20.0
	}

	if s.courseTypeTimeMatch(course, slot) {
		score += 25.0
	}

	return score
}

// EquipmentCompatible checks room type, capacity headroom, required equipment
// and environment needs. Unknown course types pass; the check fails open.
func (s *CompatibilityScorer) EquipmentCompatible(classroom models.Classroom, course models.CourseOffering) bool {
	if !s.classroomTypeCompatible(classroom, course) {
		return false
	}
	if !s.capacityAdequate(classroom, course) {
		return false
	}
	if !s.hasRequiredEquipment(classroom, course) {
		return false
	}
	return s.meetsEnvironmentRequirements(classroom, course)
}

// TimeSlotAppropriate checks course-type/slot-type fit, duration bounds, the
// golden-slot reservation and student daily-rhythm rules.
func (s *CompatibilityScorer) TimeSlotAppropriate(slot models.TimeSlot, course models.CourseOffering) bool {
	if !s.courseTypeTimeMatch(course, slot) {
		return false
	}
	if !s.durationAppropriate(slot, course) {
		return false
	}
	if s.IsGoldenSlot(slot) && !s.IsPriorityCourse(course) {
		return false
	}
	return s.matchesStudentSchedule(slot, course)
}

// IsGoldenSlot reports whether the slot starts in the prime teaching hours
// (9-10 in the morning, 14-15 in the afternoon).
func (s *CompatibilityScorer) IsGoldenSlot(slot models.TimeSlot) bool {
	hour := slot.StartHour()
	return (hour >= 9 && hour <= 10) || (hour >= 14 && hour <= 15)
}

// IsPriorityCourse reports whether a course may claim golden slots: core or
// required course types, or anything worth at least four credits.
func (s *CompatibilityScorer) IsPriorityCourse(course models.CourseOffering) bool {
	courseType := strings.ToLower(course.CourseType)
	if strings.Contains(courseType, "core") || strings.Contains(courseType, "required") {
		return true
	}
	return course.Credits >= 4.0
}

// EstimateStudents guesses the headcount for capacity checks. Enrolled count
// wins, then capped max students, then a flat default.
func EstimateStudents(course models.CourseOffering) int {
	if course.EnrolledStudents > 0 {
		return course.EnrolledStudents
	}
	if course.MaxStudents > 0 {
		if course.MaxStudents < 30 {
			return course.MaxStudents
		}
		return 30
	}
	return 25
}

func (s *CompatibilityScorer) classroomTypeCompatible(classroom models.Classroom, course models.CourseOffering) bool {
	roomType := classroom.ClassroomType

	switch course.CourseType {
	case "lab":
		return roomType == "laboratory" || roomType == "computer_lab"
	case "computer":
		return roomType == "computer_lab"
	case "lecture":
		return roomType == "classroom" || roomType == "lecture_hall"
	case "seminar":
		return roomType == "classroom" && classroom.Capacity <= 50
	}

	return roomType == "classroom"
}

func (s *CompatibilityScorer) capacityAdequate(classroom models.Classroom, course models.CourseOffering) bool {
	estimated := EstimateStudents(course)
	// 20% headroom over the expected headcount.
	return classroom.Capacity >= int(math.Ceil(float64(estimated)*1.2))
}

func (s *CompatibilityScorer) hasRequiredEquipment(classroom models.Classroom, course models.CourseOffering) bool {
	roomType := strings.ToLower(classroom.ClassroomType)

	switch course.CourseType {
	case "computer":
		return strings.Contains(roomType, "computer") || strings.Contains(roomType, "lab")
	case "lab":
		return classroom.ClassroomType == "laboratory"
	case "multimedia":
		if roomType == "" {
			return true
		}
		return strings.Contains(roomType, "multimedia") || strings.Contains(roomType, "media") || strings.Contains(roomType, "lecture")
	}

	return true
}

func (s *CompatibilityScorer) meetsEnvironmentRequirements(classroom models.Classroom, course models.CourseOffering) bool {
	switch course.CourseType {
	case "quiet":
		name := strings.ToLower(classroom.ClassroomName)
		if strings.Contains(name, "library") || strings.Contains(name, "lab") {
			return true
		}
		if strings.Contains(name, "gym") || strings.Contains(name, "canteen") {
			return false
		}
		return true
	case "interactive":
		return classroom.Capacity <= 40
	}

	return true
}

func (s *CompatibilityScorer) courseTypeTimeMatch(course models.CourseOffering, slot models.TimeSlot) bool {
	switch course.CourseType {
	case "lab", "computer":
		return slot.SlotType == models.SlotTypeAfternoon || slot.SlotType == models.SlotTypeEvening
	case "theory", "lecture":
		return slot.SlotType == models.SlotTypeMorning || slot.SlotType == models.SlotTypeAfternoon
	case "physical", "pe":
		return slot.SlotType == models.SlotTypeMorning || slot.SlotType == models.SlotTypeAfternoon
	case "seminar":
		return slot.SlotType == models.SlotTypeAfternoon
	}

	return true
}

func (s *CompatibilityScorer) durationAppropriate(slot models.TimeSlot, course models.CourseOffering) bool {
	duration := slot.DurationMinutes
	if duration <= 0 {
		return true
	}

	switch course.CourseType {
	case "lab", "computer":
		return duration >= 90
	case "lecture":
		return duration >= 45 && duration <= 120
	case "seminar":
		return duration >= 60 && duration <= 90
	}

	return duration >= 45
}

func (s *CompatibilityScorer) matchesStudentSchedule(slot models.TimeSlot, course models.CourseOffering) bool {
	hour := slot.StartHour()
	if hour < 0 {
		return true
	}

	if hour < 8 || hour > 20 {
		return false
	}

	// Lunch break.
	if hour >= 12 && hour < 14 {
		return false
	}

	// Dinner rush: only evening-type courses may start here.
	if hour == 17 {
		return course.CourseType == "evening"
	}

	return true
}
