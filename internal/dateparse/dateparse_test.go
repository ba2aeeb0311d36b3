package dateparse

import (
	"testing"
	"time"
)

// Fixed reference time: Wednesday, 2026-02-18 12:00:00 UTC
var testNow = time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)

func TestParseDay_ExactDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2026-03-01", "2026-03-01"},
		{"2025-12-31", "2025-12-31"},
		{" 2026-01-01 ", "2026-01-01"},
	}
	for _, tt := range tests {
		got, err := ParseDayFrom(tt.input, testNow)
		if err != nil {
			t.Errorf("ParseDayFrom(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDayFrom(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseDay_Relative(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"today", "2026-02-18"},
		{"Yesterday", "2026-02-17"},
		{"-0d", "2026-02-18"},
		{"-1d", "2026-02-17"},
		{"-18d", "2026-01-31"},
		{"+1d", "2026-02-19"},
		{"-1w", "2026-02-11"},
		{"+2w", "2026-03-04"},
	}
	for _, tt := range tests {
		got, err := ParseDayFrom(tt.input, testNow)
		if err != nil {
			t.Errorf("ParseDayFrom(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDayFrom(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseDay_DayNames(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"wednesday", "2026-02-18"}, // today counts
		{"tuesday", "2026-02-17"},
		{"sunday", "2026-02-15"},
		{"thursday", "2026-02-12"},
	}
	for _, tt := range tests {
		got, err := ParseDayFrom(tt.input, testNow)
		if err != nil {
			t.Errorf("ParseDayFrom(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDayFrom(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseDay_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "-3x", "someday", "2026-13-01", "18-02-2026"} {
		if got, err := ParseDayFrom(input, testNow); err == nil {
			t.Errorf("ParseDayFrom(%q) = %q, expected error", input, got)
		}
	}
}

func TestWeekRange(t *testing.T) {
	tests := []struct {
		offset     int
		start, end string
	}{
		{0, "2026-02-15", "2026-02-21"},
		{-1, "2026-02-08", "2026-02-14"},
		{1, "2026-02-22", "2026-02-28"},
	}
	for _, tt := range tests {
		start, end := WeekRange(testNow, tt.offset)
		if start != tt.start || end != tt.end {
			t.Errorf("WeekRange(%d) = %s..%s, want %s..%s", tt.offset, start, end, tt.start, tt.end)
		}
	}

	// Sunday itself starts its own week
	sunday := time.Date(2026, 2, 15, 8, 0, 0, 0, time.UTC)
	if start, _ := WeekRange(sunday, 0); start != "2026-02-15" {
		t.Errorf("WeekRange(sunday) start = %s", start)
	}
}

func TestWeekTitle(t *testing.T) {
	tests := map[int]string{0: "This Week", -1: "Last Week", -3: "3 weeks ago", 1: "Next Week", 2: "In 2 weeks"}
	for offset, want := range tests {
		if got := WeekTitle(offset); got != want {
			t.Errorf("WeekTitle(%d) = %q, want %q", offset, got, want)
		}
	}
}
