package models

import (
	"strconv"
	"strings"
	"time"
)

// Slot type buckets used for course-type/time matching.
const (
	SlotTypeMorning   = "morning"
	SlotTypeAfternoon = "afternoon"
	SlotTypeEvening   = "evening"
)

// TimeSlot is a read-only teaching period. Times are stored as "HH:MM" strings.
type TimeSlot struct {
	ID              int64     `db:"id" json:"id"`
	DayOfWeek       int       `db:"day_of_week" json:"day_of_week"`
	StartTime       string    `db:"start_time" json:"start_time"`
	EndTime         string    `db:"end_time" json:"end_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	SlotType        string    `db:"slot_type" json:"slot_type"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// StartHour returns the hour component of the slot start, or -1 when unparsable.
func (t TimeSlot) StartHour() int {
	minutes := MinutesOfDay(t.StartTime)
	if minutes < 0 {
		return -1
	}
	return minutes / 60
}

// MinutesOfDay parses an "HH:MM" clock string into minutes since midnight.
// Returns -1 for empty or malformed input.
func MinutesOfDay(clock string) int {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return -1
	}
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return -1
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return -1
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return -1
	}
	return hour*60 + minute
}
