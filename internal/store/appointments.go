package store

import (
	"context"
	"time"

	"calendar/internal/domain"
)

// AppointmentRepository persists appointments for a single calendar. Every
// read excludes soft-deleted rows.
type AppointmentRepository interface {
	// ListByDate returns the appointments starting on date's calendar day,
	// ordered by start time.
	ListByDate(ctx context.Context, date time.Time) ([]domain.Appointment, error)
	// GetByStart returns the appointment whose start matches start to the
	// minute, or ErrNotFound.
	GetByStart(ctx context.Context, start time.Time) (domain.Appointment, error)
	Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	// Update persists changes to the row identified by appt.ID.
	Update(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	// Delete marks the row identified by appt.ID as deleted. The row is kept.
	Delete(ctx context.Context, appt domain.Appointment) (bool, error)
}

// DayBounds returns the half-open range [midnight, next midnight) of t's
// calendar day.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// MinuteBounds returns the half-open range covering t's minute.
func MinuteBounds(t time.Time) (time.Time, time.Time) {
	start := t.Truncate(time.Minute)
	return start, start.Add(time.Minute)
}

// SlotKey identifies a start time at minute precision, for locks and logs.
func SlotKey(t time.Time) string {
	return t.Truncate(time.Minute).Format("2006-01-02T15:04")
}
