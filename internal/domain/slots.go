package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock hour and minute, used for the working and
// reserved hour boundaries.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24-hour).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Offset is the duration from midnight.
func (t TimeOfDay) Offset() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute
}

// On returns the instant at this time of day on the calendar date of d.
func (t TimeOfDay) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour, t.Minute, 0, 0, d.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeSlot is an unidentified start/end pair on the slot grid.
type TimeSlot struct {
	StartTime time.Time
	EndTime   time.Time
}

// GenerateSlots returns the SlotDuration grid covering [date+windowStart, date+windowEnd).
// A trailing partial slot is dropped; an empty or inverted window yields no slots.
func GenerateSlots(date time.Time, windowStart, windowEnd TimeOfDay) []TimeSlot {
	start := windowStart.On(date)
	end := windowEnd.On(date)
	if !end.After(start) {
		return nil
	}

	out := make([]TimeSlot, 0, int(end.Sub(start)/SlotDuration))
	for s := start; !s.Add(SlotDuration).After(end); s = s.Add(SlotDuration) {
		out = append(out, TimeSlot{StartTime: s, EndTime: s.Add(SlotDuration)})
	}
	return out
}
