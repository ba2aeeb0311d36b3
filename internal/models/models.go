package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DayLayout is the calendar day key format (YYYY-MM-DD)
const DayLayout = "2006-01-02"

// DefaultDailyGoal is the goal used for any day without a stored goal (2L)
const DefaultDailyGoal = 2000

var (
	// ErrInvalidDay is returned when a day key is not a YYYY-MM-DD date
	ErrInvalidDay = errors.New("invalid day key")
	// ErrInvalidClock is returned when a reminder time is not a valid HH:MM
	ErrInvalidClock = errors.New("invalid reminder time")
)

// WaterIntake is a single logged drink
type WaterIntake struct {
	ID        string    `json:"id"`
	Amount    int       `json:"amount"` // ml
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date"` // YYYY-MM-DD
}

// DailyGoal is the goal of record for one day
type DailyGoal struct {
	Amount int    `json:"amount"` // ml
	Date   string `json:"date"`
}

// WaterReminder is a recurring daily reminder
type WaterReminder struct {
	ID      string `json:"id"`
	Time    string `json:"time"` // HH:MM, 24h
	Enabled bool   `json:"enabled"`
	Message string `json:"message"`
}

// WeeklyProgress is the derived summary for one day. It is never stored.
type WeeklyProgress struct {
	Date        string  `json:"date"`
	TotalIntake int     `json:"totalIntake"`
	GoalAmount  int     `json:"goalAmount"`
	Percentage  float64 `json:"percentage"` // 0-100
}

// Summary aggregates a range of progress entries (profile stats)
type Summary struct {
	DaysTracked   int `json:"days_tracked"`
	TotalIntake   int `json:"total_intake"`
	AverageIntake int `json:"average_intake"`
}

// Preset is a named quick-add amount
type Preset struct {
	Label string
	Value int
}

// IntakePresets are the quick-add drink sizes
var IntakePresets = []Preset{
	{Label: "250ml", Value: 250},
	{Label: "500ml", Value: 500},
	{Label: "750ml", Value: 750},
	{Label: "1L", Value: 1000},
}

// GoalPresets are the selectable daily goals
var GoalPresets = []Preset{
	{Label: "1.5L (1500ml)", Value: 1500},
	{Label: "2L (2000ml)", Value: 2000},
	{Label: "2.5L (2500ml)", Value: 2500},
	{Label: "3L (3000ml)", Value: 3000},
}

// DefaultReminders returns the reminders seeded on first run
func DefaultReminders() []WaterReminder {
	return []WaterReminder{
		{ID: "1", Time: "08:00", Enabled: true, Message: "Good morning! Start your day with a glass of water."},
		{ID: "2", Time: "12:00", Enabled: true, Message: "Lunch time hydration! Don't forget to drink water."},
		{ID: "3", Time: "16:00", Enabled: true, Message: "Afternoon reminder: Time for some water!"},
		{ID: "4", Time: "20:00", Enabled: true, Message: "Evening hydration check! How's your water intake today?"},
	}
}

// DayKey returns the calendar day of t in loc
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD key into a UTC midnight time.
// UTC keeps day iteration free of DST gaps.
func ParseDay(day string) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, day, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}
	return t, nil
}

// DaysBetween returns every day key from start to end inclusive, ascending.
// A reversed range yields an empty slice.
func DaysBetween(start, end string) ([]string, error) {
	s, err := ParseDay(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseDay(end)
	if err != nil {
		return nil, err
	}

	days := []string{}
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DayLayout))
	}
	return days, nil
}

// ParseClock parses an HH:MM reminder time
func ParseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return hour, minute, nil
}

// Validate checks the reminder time
func (r WaterReminder) Validate() error {
	_, _, err := ParseClock(r.Time)
	return err
}

// Percentage returns 100*total/goal clamped to [0, 100].
// A non-positive goal yields 0.
func Percentage(total, goal int) float64 {
	if goal <= 0 || total <= 0 {
		return 0
	}
	return math.Min(100, float64(total)*100/float64(goal))
}

// TotalIntake sums the amounts of intakes
func TotalIntake(intakes []WaterIntake) int {
	total := 0
	for _, in := range intakes {
		total += in.Amount
	}
	return total
}

// GoalCrossed reports whether adding moved the day from below to at-or-above its goal
func GoalCrossed(before, after, goal int) bool {
	return Percentage(before, goal) < 100 && Percentage(after, goal) >= 100
}

// Summarize computes profile stats over progress entries
func Summarize(progress []WeeklyProgress) Summary {
	var s Summary
	for _, p := range progress {
		if p.TotalIntake > 0 {
			s.DaysTracked++
		}
		s.TotalIntake += p.TotalIntake
	}
	if s.DaysTracked > 0 {
		s.AverageIntake = int(math.Round(float64(s.TotalIntake) / float64(s.DaysTracked)))
	}
	return s
}
