package service

import (
	"fmt"
	"strings"

	"github.com/campusflow/timetable-api/internal/models"
)

// ConflictDetector classifies scheduling violations between assignments. It is
// stateless and safe for concurrent use; course metadata needed by the advisory
// checks is passed in as a catalog snapshot so detection never touches storage.
type ConflictDetector struct{}

func NewConflictDetector() *ConflictDetector {
	return &ConflictDetector{}
}

// CheckConflicts runs the hard-constraint checks of one candidate against every
// assignment in existing: teacher double-booking, classroom double-booking and
// student overlap. Two assignments clash only when their meeting times overlap.
func (d *ConflictDetector) CheckConflicts(candidate models.ScheduleAssignment, existing []models.ScheduleAssignment) []models.Conflict {
	var conflicts []models.Conflict

	for _, other := range existing {
		if !TimesOverlap(candidate, other) {
			continue
		}

		if candidate.TeacherID != 0 && candidate.TeacherID == other.TeacherID {
			conflicts = append(conflicts, models.Conflict{
				Type:        models.ConflictTeacher,
				Description: fmt.Sprintf("teacher %d is already teaching course %d at this time", candidate.TeacherID, other.CourseID),
				CourseID1:   candidate.CourseID,
				CourseID2:   other.CourseID,
				Suggestion:  "move one of the courses to a different time slot",
			})
		}

		if candidate.ClassroomID != 0 && candidate.ClassroomID == other.ClassroomID {
			conflicts = append(conflicts, models.Conflict{
				Type:        models.ConflictClassroom,
				Description: fmt.Sprintf("classroom %d is already occupied by course %d at this time", candidate.ClassroomID, other.CourseID),
				CourseID1:   candidate.CourseID,
				CourseID2:   other.CourseID,
				Suggestion:  "assign a different classroom or time slot",
			})
		}

		// Without enrollment rosters any two distinct courses meeting at the
		// same time may share students, so every overlap is flagged. This
		// over-approximates on purpose.
		if candidate.CourseID != other.CourseID {
			conflicts = append(conflicts, models.Conflict{
				Type:        models.ConflictStudent,
				Description: fmt.Sprintf("courses %d and %d meet at the same time and may share students", candidate.CourseID, other.CourseID),
				CourseID1:   candidate.CourseID,
				CourseID2:   other.CourseID,
				Suggestion:  "stagger the courses across different time slots",
			})
		}
	}

	return conflicts
}

// CheckAdvancedConflicts runs the advisory checks: prerequisite ordering,
// special-room capacity, course continuity and workload limits. These never
// block placement on their own; they surface as priority-0 conflicts.
func (d *ConflictDetector) CheckAdvancedConflicts(candidate models.ScheduleAssignment, existing []models.ScheduleAssignment, catalog map[int64]models.CourseOffering) []models.Conflict {
	var conflicts []models.Conflict

	conflicts = append(conflicts, d.checkDependencies(candidate, existing, catalog)...)
	conflicts = append(conflicts, d.checkResources(candidate, existing, catalog)...)
	conflicts = append(conflicts, d.checkContinuity(candidate, existing)...)
	conflicts = append(conflicts, d.checkTeacherWorkload(candidate, existing)...)
	conflicts = append(conflicts, d.checkStudentWorkload(candidate, existing)...)

	return conflicts
}

// CheckAll combines the hard checks with the advisory checks. Used when
// evaluating a placement candidate during matching.
func (d *ConflictDetector) CheckAll(candidate models.ScheduleAssignment, existing []models.ScheduleAssignment, catalog map[int64]models.CourseOffering) []models.Conflict {
	conflicts := d.CheckConflicts(candidate, existing)
	conflicts = append(conflicts, d.CheckAdvancedConflicts(candidate, existing, catalog)...)
	return conflicts
}

func (d *ConflictDetector) checkDependencies(candidate models.ScheduleAssignment, existing []models.ScheduleAssignment, catalog map[int64]models.CourseOffering) []models.Conflict {
	course, ok := catalog[candidate.CourseID]
	if !ok || !strings.Contains(course.CourseName, "Advanced") {
		return nil
	}

	basicName := strings.Replace(course.CourseName, "Advanced", "Basic", 1)
	for _, other := range existing {
		if prereq, ok := catalog[other.CourseID]; ok && prereq.CourseName == basicName {
			return nil
		}
	}

	return []models.Conflict{{
		Type:        models.ConflictDependency,
		Description: fmt.Sprintf("prerequisite %q is not on the schedule", basicName),
		CourseID1:   candidate.CourseID,
		Suggestion:  "schedule the prerequisite course first",
	}}
}

func (d *ConflictDetector) checkResources(candidate models.ScheduleAssignment, existing []models.ScheduleAssignment, catalog map[int64]models.CourseOffering) []models.Conflict {
	course, ok := catalog[candidate.CourseID]
	if !ok {
		return nil
	}

	countSameSlot := func(courseType string) int {
		count := 0
		for _, other := range existing {
			if other.TimeSlotID != candidate.TimeSlotID {
				continue
			}
			if c, ok := catalog[other.CourseID]; ok && c.CourseType == courseType {
				count++
			}
		}
		return count
	}

	switch strings.ToLower(course.CourseType) {
	case "lab":
		if countSameSlot("lab") > 0 {
			return []models.Conflict{{
				Type:        models.ConflictResource,
				Description: "laboratory equipment is already claimed in this slot",
				CourseID1:   candidate.CourseID,
				Suggestion:  "move the lab session or add laboratory capacity",
			}}
		}
	case "pe", "physical":
		if countSameSlot(course.CourseType) > 2 {
			return []models.Conflict{{
				Type:        models.ConflictResource,
				Description: "sports facilities cannot host another concurrent session",
				CourseID1:   candidate.CourseID,
				Suggestion:  "move the session or use another venue",
			}}
		}
	}

	return nil
}

func (d *ConflictDetector) checkContinuity(candidate models.ScheduleAssignment, existing []models.ScheduleAssignment) []models.Conflict {
	var conflicts []models.Conflict

	for _, other := range existing {
		if other.CourseID != candidate.CourseID {
			continue
		}

		dayDiff := candidate.DayOfWeek - other.DayOfWeek
		if dayDiff < 0 {
			dayDiff = -dayDiff
		}

		if dayDiff == 0 {
			conflicts = append(conflicts, models.Conflict{
				Type:        models.ConflictContinuity,
				Description: "multiple sessions of the same course fall on the same day",
				CourseID1:   candidate.CourseID,
				Suggestion:  "spread the sessions across different days",
			})
		}

		if dayDiff > 3 {
			conflicts = append(conflicts, models.Conflict{
				Type:        models.ConflictContinuity,
				Description: "sessions of the same course are more than three days apart",
				CourseID1:   candidate.CourseID,
				Suggestion:  "shorten the gap between sessions",
			})
		}
	}

	return conflicts
}

func (d *ConflictDetector) checkTeacherWorkload(candidate models.ScheduleAssignment, existing []models.ScheduleAssignment) []models.Conflict {
	if candidate.TeacherID == 0 {
		return nil
	}

	var conflicts []models.Conflict
	sameDay, weekly := 0, 0
	for _, other := range existing {
		if other.TeacherID != candidate.TeacherID {
			continue
		}
		weekly++
		if other.DayOfWeek == candidate.DayOfWeek {
			sameDay++
		}
	}

	if sameDay >= 4 {
		conflicts = append(conflicts, models.Conflict{
			Type:        models.ConflictWorkload,
			Description: fmt.Sprintf("teacher would carry %d sessions in one day", sameDay+1),
			CourseID1:   candidate.CourseID,
			Suggestion:  "move the session to another day",
		})
	}

	if weekly >= 20 {
		conflicts = append(conflicts, models.Conflict{
			Type:        models.ConflictWorkload,
			Description: fmt.Sprintf("teacher would carry %d sessions this week", weekly+1),
			CourseID1:   candidate.CourseID,
			Suggestion:  "reassign the course to another teacher",
		})
	}

	return conflicts
}

func (d *ConflictDetector) checkStudentWorkload(candidate models.ScheduleAssignment, existing []models.ScheduleAssignment) []models.Conflict {
	var conflicts []models.Conflict
	sameSlot, sameDay := 0, 0
	for _, other := range existing {
		if other.DayOfWeek == candidate.DayOfWeek {
			sameDay++
			if other.TimeSlotID == candidate.TimeSlotID {
				sameSlot++
			}
		}
	}

	if sameSlot >= 5 {
		conflicts = append(conflicts, models.Conflict{
			Type:        models.ConflictWorkload,
			Description: "too many courses crowd this time slot",
			CourseID1:   candidate.CourseID,
			Suggestion:  "shift some courses to less popular slots",
		})
	}

	if sameDay >= 8 {
		conflicts = append(conflicts, models.Conflict{
			Type:        models.ConflictWorkload,
			Description: "the day is already packed with courses",
			CourseID1:   candidate.CourseID,
			Suggestion:  "spread courses across the week",
		})
	}

	return conflicts
}

// TimesOverlap reports whether two assignments actually meet at the same time:
// same day of week, overlapping week ranges and overlapping clock ranges.
// Touching boundaries (one ends exactly when the other starts) do not overlap.
// When either side carries an unparsable clock string the comparison falls back
// to time-slot identity.
func TimesOverlap(a, b models.ScheduleAssignment) bool {
	if a.DayOfWeek != b.DayOfWeek {
		return false
	}
	if !weeksOverlap(a, b) {
		return false
	}

	s1, e1 := models.MinutesOfDay(a.StartTime), models.MinutesOfDay(a.EndTime)
	s2, e2 := models.MinutesOfDay(b.StartTime), models.MinutesOfDay(b.EndTime)
	if s1 < 0 || e1 < 0 || s2 < 0 || e2 < 0 {
		return a.TimeSlotID == b.TimeSlotID
	}

	return s1 < e2 && s2 < e1
}

func weeksOverlap(a, b models.ScheduleAssignment) bool {
	s1, e1 := weekRange(a)
	s2, e2 := weekRange(b)
	return s1 <= e2 && s2 <= e1
}

func weekRange(a models.ScheduleAssignment) (int, int) {
	start, end := a.StartWeek, a.EndWeek
	if start <= 0 {
		start = 1
	}
	if end <= 0 {
		end = 18
	}
	return start, end
}
