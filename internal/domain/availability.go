package domain

import "time"

// AvailabilityWindow holds the working hours and the reserved sub-window that
// is carved out of them once a month.
type AvailabilityWindow struct {
	WorkStart     TimeOfDay
	WorkEnd       TimeOfDay
	ReservedStart TimeOfDay
	ReservedEnd   TimeOfDay
}

// IsWithinWorkingHours compares hours only: minutes inside the boundary hours
// are not looked at.
func IsWithinWorkingHours(instant time.Time, windowStart, windowEnd TimeOfDay) bool {
	h := instant.Hour()
	return h >= windowStart.Hour && h < windowEnd.Hour
}

// IsWithinReservedWindow reports whether instant falls in the reserved hour on
// the second day of the third week of its month. Only the reserved start hour
// is reserved, and only while it is also a working hour.
func IsWithinReservedWindow(instant time.Time, reservedStart, reservedEnd, workStart, workEnd TimeOfDay) bool {
	h := instant.Hour()
	return h == reservedStart.Hour &&
		h < reservedEnd.Hour &&
		IsSecondDayOfThirdWeek(instant) &&
		IsWithinWorkingHours(instant, workStart, workEnd)
}

// IsSecondDayOfThirdWeek reports whether date is the Tuesday of the week that
// starts 14 days after the month's first Monday. The first Monday is the first
// Monday on or after the 1st. Only the day of month is compared.
func IsSecondDayOfThirdWeek(date time.Time) bool {
	return date.Day() == thirdWeekSecondDay(date.Year(), date.Month()).Day()
}

func thirdWeekSecondDay(year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(time.Monday) - int(first.Weekday()) + 7) % 7
	firstMonday := first.AddDate(0, 0, offset)
	return firstMonday.AddDate(0, 0, 15)
}

// IsWithinWorkingHours applies the working-hours check with w's boundaries.
func (w AvailabilityWindow) IsWithinWorkingHours(instant time.Time) bool {
	return IsWithinWorkingHours(instant, w.WorkStart, w.WorkEnd)
}

// IsReserved applies the reserved-window check with w's boundaries.
func (w AvailabilityWindow) IsReserved(instant time.Time) bool {
	return IsWithinReservedWindow(instant, w.ReservedStart, w.ReservedEnd, w.WorkStart, w.WorkEnd)
}

// IsBookable is the booking rule: inside working hours and outside the
// reserved window. Slot listing does not use it.
func (w AvailabilityWindow) IsBookable(start time.Time) bool {
	return w.IsWithinWorkingHours(start) && !w.IsReserved(start)
}

// Slots returns the working-hours grid for date.
func (w AvailabilityWindow) Slots(date time.Time) []TimeSlot {
	return GenerateSlots(date, w.WorkStart, w.WorkEnd)
}
