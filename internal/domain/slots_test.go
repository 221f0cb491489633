package domain

import (
	"testing"
	"time"
)

func TestGenerateSlots_CoversWindow(t *testing.T) {
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	slots := GenerateSlots(date, TimeOfDay{Hour: 9}, TimeOfDay{Hour: 17})
	if len(slots) != 16 {
		t.Fatalf("len(slots) = %d, want 16", len(slots))
	}
	if !slots[0].StartTime.Equal(time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("first start = %v, want 09:00", slots[0].StartTime)
	}
	if !slots[len(slots)-1].EndTime.Equal(time.Date(2024, 1, 5, 17, 0, 0, 0, time.UTC)) {
		t.Fatalf("last end = %v, want 17:00", slots[len(slots)-1].EndTime)
	}
	for i, s := range slots {
		if s.EndTime.Sub(s.StartTime) != SlotDuration {
			t.Fatalf("slot %d length = %s, want %s", i, s.EndTime.Sub(s.StartTime), SlotDuration)
		}
		if i > 0 && !slots[i-1].EndTime.Equal(s.StartTime) {
			t.Fatalf("slot %d does not follow slot %d", i, i-1)
		}
	}
}

func TestGenerateSlots_IgnoresTimeOfDayOfDate(t *testing.T) {
	date := time.Date(2024, 1, 5, 13, 47, 0, 0, time.UTC)

	slots := GenerateSlots(date, TimeOfDay{Hour: 9}, TimeOfDay{Hour: 10})
	if len(slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(slots))
	}
	if slots[0].StartTime.Hour() != 9 || slots[0].StartTime.Minute() != 0 {
		t.Fatalf("first start = %v, want 09:00", slots[0].StartTime)
	}
}

func TestGenerateSlots_RoundsDown(t *testing.T) {
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	slots := GenerateSlots(date, TimeOfDay{Hour: 9}, TimeOfDay{Hour: 10, Minute: 45})
	if len(slots) != 3 {
		t.Fatalf("len(slots) = %d, want 3", len(slots))
	}
}

func TestGenerateSlots_EmptyWindow(t *testing.T) {
	date := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		start, end TimeOfDay
	}{
		{name: "equal bounds", start: TimeOfDay{Hour: 9}, end: TimeOfDay{Hour: 9}},
		{name: "inverted bounds", start: TimeOfDay{Hour: 17}, end: TimeOfDay{Hour: 9}},
		{name: "shorter than one slot", start: TimeOfDay{Hour: 9}, end: TimeOfDay{Hour: 9, Minute: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateSlots(date, tt.start, tt.end); len(got) != 0 {
				t.Fatalf("len(slots) = %d, want 0", len(got))
			}
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay(" 16:30 ")
	if err != nil {
		t.Fatalf("ParseTimeOfDay error: %v", err)
	}
	if got != (TimeOfDay{Hour: 16, Minute: 30}) {
		t.Fatalf("got %v, want 16:30", got)
	}
	if got.Offset() != 16*time.Hour+30*time.Minute {
		t.Fatalf("offset = %s", got.Offset())
	}

	if _, err := ParseTimeOfDay("25:00"); err == nil {
		t.Fatalf("expected error for 25:00")
	}
}
