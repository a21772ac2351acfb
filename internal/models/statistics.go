package models

// ScheduleStatistics aggregates the outcome of a scheduling batch or semester.
type ScheduleStatistics struct {
	TotalCourses        int     `json:"total_courses"`
	ScheduledCourses    int     `json:"scheduled_courses"`
	UnscheduledCourses  int     `json:"unscheduled_courses"`
	TotalConflicts      int     `json:"total_conflicts"`
	TeacherConflicts    int     `json:"teacher_conflicts"`
	ClassroomConflicts  int     `json:"classroom_conflicts"`
	StudentConflicts    int     `json:"student_conflicts"`
	ResourceConflicts   int     `json:"resource_conflicts"`
	DependencyConflicts int     `json:"dependency_conflicts"`
	ContinuityConflicts int     `json:"continuity_conflicts"`
	WorkloadConflicts   int     `json:"workload_conflicts"`
	SuccessRate         float64 `json:"success_rate"`
}
