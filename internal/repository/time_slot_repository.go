package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campusflow/timetable-api/internal/models"
)

const timeSlotColumns = "id, day_of_week, start_time, end_time, duration_minutes, slot_type, created_at, updated_at"

// TimeSlotRepository provides read access to teaching periods.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new time slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// FindAll returns every time slot ordered by id for deterministic matcher input.
func (r *TimeSlotRepository) FindAll(ctx context.Context) ([]models.TimeSlot, error) {
	const query = `SELECT ` + timeSlotColumns + ` FROM time_slots ORDER BY id`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

// FindByIDs loads time slots matching the given ids. Unknown ids are skipped.
func (r *TimeSlotRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.TimeSlot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT ` + timeSlotColumns + ` FROM time_slots WHERE id = ANY($1) ORDER BY id`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find time slots by ids: %w", err)
	}
	return slots, nil
}
