package models

// ConflictType is the closed set of conflict classifications.
type ConflictType string

const (
	ConflictTeacher    ConflictType = "TEACHER"
	ConflictClassroom  ConflictType = "CLASSROOM"
	ConflictStudent    ConflictType = "STUDENT"
	ConflictResource   ConflictType = "RESOURCE"
	ConflictDependency ConflictType = "DEPENDENCY"
	ConflictContinuity ConflictType = "CONTINUITY"
	ConflictWorkload   ConflictType = "WORKLOAD"
)

// Priority orders conflict repair: teacher clashes are repaired before classroom
// clashes, classroom before student, student before resource. Advisory conflicts
// (dependency, continuity, workload) carry priority 0 and are reported only.
func (t ConflictType) Priority() int {
	switch t {
	case ConflictTeacher:
		return 4
	case ConflictClassroom:
		return 3
	case ConflictStudent:
		return 2
	case ConflictResource:
		return 1
	default:
		return 0
	}
}

// Conflict records one detected scheduling violation between a candidate assignment
// and at most one other course. CourseID2 is zero when the conflict involves a
// single course (resource shortage, missing dependency, workload).
type Conflict struct {
	Type        ConflictType `json:"type"`
	Description string       `json:"description"`
	CourseID1   int64        `json:"course_id_1"`
	CourseID2   int64        `json:"course_id_2,omitempty"`
	Suggestion  string       `json:"suggestion,omitempty"`
}
