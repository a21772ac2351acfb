package models

import "time"

// Classroom is a read-only scheduling resource.
type Classroom struct {
	ID            int64     `db:"id" json:"id"`
	ClassroomName string    `db:"classroom_name" json:"classroom_name"`
	Capacity      int       `db:"capacity" json:"capacity"`
	ClassroomType string    `db:"classroom_type" json:"classroom_type"`
	Building      string    `db:"building" json:"building"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
