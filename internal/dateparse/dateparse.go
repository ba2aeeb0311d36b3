// Package dateparse turns relative and absolute day inputs into calendar
// day keys (YYYY-MM-DD) and computes week ranges for the history view.
package dateparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// ParseDay parses a day input relative to the current time.
//
// Supported formats:
//   - Exact dates: "2026-03-01"
//   - Keywords: "today", "yesterday"
//   - Relative days back or forward: "-3d", "+1d"
//   - Relative weeks: "-1w"
//   - Day names: "monday", "tuesday", etc. (most recent occurrence, today included)
func ParseDay(input string) (string, error) {
	return ParseDayFrom(input, time.Now())
}

// ParseDayFrom parses a day input relative to now. The result is the
// calendar day in now's location.
func ParseDayFrom(input string, now time.Time) (string, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return "", fmt.Errorf("empty date input")
	}

	if t, err := time.Parse(dayLayout, input); err == nil {
		return t.Format(dayLayout), nil
	}

	switch input {
	case "today":
		return formatDay(now), nil
	case "yesterday":
		return formatDay(now.AddDate(0, 0, -1)), nil
	}

	// Relative offsets: -Nd, +Nd, -Nw, +Nw
	if (input[0] == '-' || input[0] == '+') && len(input) >= 3 {
		suffix := input[len(input)-1]
		n, err := strconv.Atoi(input[1 : len(input)-1])
		if err == nil && n >= 0 {
			if input[0] == '-' {
				n = -n
			}
			switch suffix {
			case 'd':
				return formatDay(now.AddDate(0, 0, n)), nil
			case 'w':
				return formatDay(now.AddDate(0, 0, n*7)), nil
			default:
				return "", fmt.Errorf("unknown relative unit %q in %q (use d or w)", string(suffix), input)
			}
		}
	}

	dayMap := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
	if target, ok := dayMap[input]; ok {
		daysBack := (int(now.Weekday()) - int(target) + 7) % 7
		return formatDay(now.AddDate(0, 0, -daysBack)), nil
	}

	return "", fmt.Errorf("unrecognized date format: %q", input)
}

// WeekRange returns the first (Sunday) and last (Saturday) day keys of the
// week containing now, shifted by offset weeks.
func WeekRange(now time.Time, offset int) (start, end string) {
	y, m, d := now.Date()
	// Civil-date arithmetic at noon avoids DST edges
	day := time.Date(y, m, d, 12, 0, 0, 0, now.Location())
	first := day.AddDate(0, 0, -int(day.Weekday())+offset*7)
	return formatDay(first), formatDay(first.AddDate(0, 0, 6))
}

// WeekTitle labels a week offset the way the history view shows it
func WeekTitle(offset int) string {
	switch {
	case offset == 0:
		return "This Week"
	case offset == -1:
		return "Last Week"
	case offset < 0:
		return fmt.Sprintf("%d weeks ago", -offset)
	case offset == 1:
		return "Next Week"
	default:
		return fmt.Sprintf("In %d weeks", offset)
	}
}

func formatDay(t time.Time) string {
	return t.Format(dayLayout)
}
