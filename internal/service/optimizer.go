package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/campusflow/timetable-api/internal/dto"
	"github.com/campusflow/timetable-api/internal/models"
)

// OptimizeSchedule repairs conflicts in an existing schedule by rescheduling
// one side of each clash. It works on a clone of the input, resolves conflicts
// highest priority first and gives up after a bounded number of passes. The
// result keeps or reduces the conflict count; it never makes things worse.
func (s *AutoScheduleService) OptimizeSchedule(ctx context.Context, req dto.OptimizeScheduleRequest) (result *dto.ScheduleResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("optimize panicked", zap.Any("panic", r))
			result = &dto.ScheduleResult{Success: false, Message: fmt.Sprintf("optimization failed: %v", r)}
		}
	}()

	if err := s.validator.Struct(req); err != nil {
		return &dto.ScheduleResult{Success: false, Message: fmt.Sprintf("invalid request: %v", err)}
	}

	working := models.CloneAssignments(req.Assignments)
	conflicts := s.ValidateSchedule(working).Conflicts
	originalConflicts := len(conflicts)

	if originalConflicts == 0 {
		stats := optimizationStatistics(len(req.Assignments), working, 0, 0)
		return &dto.ScheduleResult{
			Success:     true,
			Message:     "schedule is already conflict free",
			Assignments: working,
			Statistics:  &stats,
		}
	}

	classrooms, slots, failure := s.loadRepairPool(ctx, req)
	if failure != nil {
		return failure
	}
	catalog := s.loadCatalog(ctx, working)

	resolved := 0
	for iteration := 0; iteration < s.cfg.MaxOptimizeIterations && len(conflicts) > 0; iteration++ {
		sort.SliceStable(conflicts, func(i, j int) bool {
			return conflicts[i].Type.Priority() > conflicts[j].Type.Priority()
		})

		progressed := false
		for _, conflict := range conflicts {
			if s.resolveConflict(conflict, working, classrooms, slots, catalog) {
				resolved++
				progressed = true
				break
			}
		}
		if !progressed {
			break
		}

		conflicts = s.ValidateSchedule(working).Conflicts
	}

	remaining := len(conflicts)
	if s.metrics != nil {
		s.metrics.RecordResolvedConflicts(resolved)
	}
	s.logger.Info("optimization finished",
		zap.Int("original_conflicts", originalConflicts),
		zap.Int("resolved", resolved),
		zap.Int("remaining", remaining))

	stats := optimizationStatistics(len(req.Assignments), working, resolved, originalConflicts)
	stats.TotalConflicts = remaining
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
		}
	}

	return &dto.ScheduleResult{
		Success:     remaining == 0,
		Message:     fmt.Sprintf("optimization resolved %d of %d conflicts", resolved, originalConflicts),
		Assignments: working,
		Conflicts:   conflicts,
		Statistics:  &stats,
	}
}

func (s *AutoScheduleService) loadRepairPool(ctx context.Context, req dto.OptimizeScheduleRequest) ([]models.Classroom, []models.TimeSlot, *dto.ScheduleResult) {
	var classrooms []models.Classroom
	var err error
	if len(req.ClassroomIDs) > 0 {
		classrooms, err = s.classrooms.FindByIDs(ctx, req.ClassroomIDs)
	} else {
		classrooms, err = s.classrooms.FindAll(ctx)
	}
	if err != nil {
		s.logger.Error("load classrooms failed", zap.Error(err))
		return nil, nil, &dto.ScheduleResult{Success: false, Message: "failed to load classrooms"}
	}

	var slots []models.TimeSlot
	if len(req.TimeSlotIDs) > 0 {
		slots, err = s.slots.FindByIDs(ctx, req.TimeSlotIDs)
	} else {
		slots, err = s.slots.FindAll(ctx)
	}
	if err != nil {
		s.logger.Error("load time slots failed", zap.Error(err))
		return nil, nil, &dto.ScheduleResult{Success: false, Message: "failed to load time slots"}
	}

	return classrooms, slots, nil
}

// loadCatalog fetches course metadata for the assignments being repaired.
// Lookups are best effort; capacity checks degrade gracefully without them.
func (s *AutoScheduleService) loadCatalog(ctx context.Context, assignments []models.ScheduleAssignment) map[int64]models.CourseOffering {
	seen := make(map[int64]bool, len(assignments))
	ids := make([]int64, 0, len(assignments))
	for _, assignment := range assignments {
		if !seen[assignment.CourseID] {
			seen[assignment.CourseID] = true
			ids = append(ids, assignment.CourseID)
		}
	}

	catalog := make(map[int64]models.CourseOffering, len(ids))
	if len(ids) == 0 {
		return catalog
	}

	courses, err := s.courses.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("load course catalog failed", zap.Error(err))
		return catalog
	}
	for _, course := range courses {
		catalog[course.ID] = course
	}
	return catalog
}

// resolveConflict dispatches by conflict type. Teacher and student clashes are
// repaired by moving one course to a free slot; classroom clashes first try an
// alternative room, then fall back to the time strategy. Advisory conflicts
// are not repairable.
func (s *AutoScheduleService) resolveConflict(
	conflict models.Conflict,
	working []models.ScheduleAssignment,
	classrooms []models.Classroom,
	slots []models.TimeSlot,
	catalog map[int64]models.CourseOffering,
) bool {
	switch conflict.Type {
	case models.ConflictTeacher, models.ConflictStudent:
		return s.resolveByTimeSlot(conflict, working, slots)
	case models.ConflictClassroom:
		if s.resolveByClassroom(conflict, working, classrooms, catalog) {
			return true
		}
		return s.resolveByTimeSlot(conflict, working, slots)
	}
	return false
}

func (s *AutoScheduleService) resolveByTimeSlot(conflict models.Conflict, working []models.ScheduleAssignment, slots []models.TimeSlot) bool {
	target := s.selectForRescheduling(conflict, working)
	if target < 0 {
		return false
	}

	for _, slot := range slots {
		if s.canRescheduleToTimeSlot(working[target], slot, working) {
			working[target].TimeSlotID = slot.ID
			working[target].DayOfWeek = slot.DayOfWeek
			working[target].StartTime = slot.StartTime
			working[target].EndTime = slot.EndTime
			s.logger.Debug("conflict resolved by rescheduling",
				zap.Int64("course_id", working[target].CourseID),
				zap.Int64("time_slot_id", slot.ID))
			return true
		}
	}
	return false
}

func (s *AutoScheduleService) resolveByClassroom(conflict models.Conflict, working []models.ScheduleAssignment, classrooms []models.Classroom, catalog map[int64]models.CourseOffering) bool {
	target := s.selectForRescheduling(conflict, working)
	if target < 0 {
		return false
	}

	for _, room := range classrooms {
		if room.ID == working[target].ClassroomID {
			continue
		}
		if s.canRescheduleToClassroom(working[target], room, working, catalog) {
			working[target].ClassroomID = room.ID
			s.logger.Debug("conflict resolved by reassigning classroom",
				zap.Int64("course_id", working[target].CourseID),
				zap.Int64("classroom_id", room.ID))
			return true
		}
	}
	return false
}

// selectForRescheduling picks which side of a clash moves: the course with the
// larger id, assumed to be the later addition. Returns the index in working,
// or -1 when neither side is present.
func (s *AutoScheduleService) selectForRescheduling(conflict models.Conflict, working []models.ScheduleAssignment) int {
	courseID := conflict.CourseID1
	if conflict.CourseID2 > courseID {
		courseID = conflict.CourseID2
	}

	for i := range working {
		if working[i].CourseID == courseID {
			return i
		}
	}
	return -1
}

// canRescheduleToTimeSlot checks that the move introduces no clash with any
// other assignment in the set.
func (s *AutoScheduleService) canRescheduleToTimeSlot(assignment models.ScheduleAssignment, slot models.TimeSlot, working []models.ScheduleAssignment) bool {
	temp := assignment.Clone()
	temp.TimeSlotID = slot.ID
	temp.DayOfWeek = slot.DayOfWeek
	temp.StartTime = slot.StartTime
	temp.EndTime = slot.EndTime

	for _, other := range working {
		if other.CourseID == assignment.CourseID {
			continue
		}
		if len(s.detector.CheckConflicts(temp, []models.ScheduleAssignment{other})) > 0 {
			return false
		}
	}
	return true
}

func (s *AutoScheduleService) canRescheduleToClassroom(assignment models.ScheduleAssignment, room models.Classroom, working []models.ScheduleAssignment, catalog map[int64]models.CourseOffering) bool {
	if course, ok := catalog[assignment.CourseID]; ok {
		if course.MaxStudents > 0 && course.MaxStudents > room.Capacity {
			return false
		}
	}

	temp := assignment.Clone()
	temp.ClassroomID = room.ID
	for _, other := range working {
		if other.CourseID == assignment.CourseID {
			continue
		}
		if other.ClassroomID == room.ID && TimesOverlap(temp, other) {
			return false
		}
	}
	return true
}

// optimizationStatistics reports optimization effectiveness: the success rate
// is the share of original conflicts that were resolved, 100 when there was
// nothing to resolve.
func optimizationStatistics(totalCourses int, working []models.ScheduleAssignment, resolved, originalConflicts int) models.ScheduleStatistics {
	stats := models.ScheduleStatistics{
		TotalCourses:     totalCourses,
		ScheduledCourses: len(working),
	}

	if originalConflicts > 0 {
		stats.SuccessRate = float64(resolved) / float64(originalConflicts) * 100
	} else {
		stats.SuccessRate = 100.0
	}
	return stats
}
