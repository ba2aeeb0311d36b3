package models

import (
	"errors"
	"testing"
	"time"
)

func TestPercentageClamped(t *testing.T) {
	tests := []struct {
		total, goal int
		want        float64
	}{
		{1100, 2000, 55},
		{1700, 2000, 85},
		{2300, 2500, 92},
		{150, 2000, 7.5},
		{3000, 2000, 100},
		{2000, 2000, 100},
		{0, 2000, 0},
		{500, 0, 0},
	}
	for _, tc := range tests {
		if got := Percentage(tc.total, tc.goal); got != tc.want {
			t.Errorf("Percentage(%d, %d) = %v, want %v", tc.total, tc.goal, got, tc.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	days, err := DaysBetween("2024-02-27", "2024-03-02")
	if err != nil {
		t.Fatalf("DaysBetween failed: %v", err)
	}
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
	if len(days) != len(want) {
		t.Fatalf("got %d days, want %d", len(days), len(want))
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("day %d: got %s, want %s", i, days[i], want[i])
		}
	}

	reversed, err := DaysBetween("2024-01-07", "2024-01-01")
	if err != nil {
		t.Fatalf("DaysBetween reversed failed: %v", err)
	}
	if len(reversed) != 0 {
		t.Errorf("reversed range: got %d days, want 0", len(reversed))
	}

	if _, err := DaysBetween("01-01-2024", "2024-01-02"); !errors.Is(err, ErrInvalidDay) {
		t.Errorf("expected ErrInvalidDay, got %v", err)
	}
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	// US DST starts 2024-03-10; iteration must still produce every civil day
	days, err := DaysBetween("2024-03-09", "2024-03-11")
	if err != nil {
		t.Fatalf("DaysBetween failed: %v", err)
	}
	if len(days) != 3 || days[1] != "2024-03-10" {
		t.Errorf("got %v", days)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		h, m    int
		wantErr bool
	}{
		{"08:00", 8, 0, false},
		{"23:59", 23, 59, false},
		{"0:5", 0, 5, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"noon", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tc := range tests {
		h, m, err := ParseClock(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidClock) {
				t.Errorf("ParseClock(%q): expected ErrInvalidClock, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q) failed: %v", tc.in, err)
			continue
		}
		if h != tc.h || m != tc.m {
			t.Errorf("ParseClock(%q) = %d:%d, want %d:%d", tc.in, h, m, tc.h, tc.m)
		}
	}
}

func TestDayKeyUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	ts := time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)
	if got := DayKey(ts, loc); got != "2024-01-01" {
		t.Errorf("DayKey = %s, want 2024-01-01", got)
	}
	if got := DayKey(ts, time.UTC); got != "2024-01-02" {
		t.Errorf("DayKey = %s, want 2024-01-02", got)
	}
}

func TestDefaultReminders(t *testing.T) {
	reminders := DefaultReminders()
	if len(reminders) != 4 {
		t.Fatalf("got %d reminders, want 4", len(reminders))
	}
	for _, r := range reminders {
		if !r.Enabled {
			t.Errorf("reminder %s should be enabled", r.ID)
		}
		if err := r.Validate(); err != nil {
			t.Errorf("reminder %s invalid: %v", r.ID, err)
		}
	}
}

func TestGoalCrossed(t *testing.T) {
	if !GoalCrossed(1800, 2100, 2000) {
		t.Error("expected crossing from 1800 to 2100")
	}
	if GoalCrossed(2100, 2400, 2000) {
		t.Error("already above goal should not cross again")
	}
	if GoalCrossed(100, 500, 2000) {
		t.Error("still below goal should not cross")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]WeeklyProgress{
		{Date: "2024-01-01", TotalIntake: 1000},
		{Date: "2024-01-02", TotalIntake: 0},
		{Date: "2024-01-03", TotalIntake: 1501},
	})
	if s.DaysTracked != 2 {
		t.Errorf("DaysTracked = %d, want 2", s.DaysTracked)
	}
	if s.TotalIntake != 2501 {
		t.Errorf("TotalIntake = %d, want 2501", s.TotalIntake)
	}
	if s.AverageIntake != 1251 {
		t.Errorf("AverageIntake = %d, want 1251", s.AverageIntake)
	}
	if empty := Summarize(nil); empty.AverageIntake != 0 {
		t.Errorf("empty AverageIntake = %d, want 0", empty.AverageIntake)
	}
}
