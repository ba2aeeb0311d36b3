// Package output provides styled terminal output helpers (success, error,
// warning, intake and progress formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/sip/internal/models"
)

var (
	// Styles
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	waterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	emptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// Error codes for structured JSON output
const (
	ErrCodeNotFound     = "not_found"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeStorageError = "storage_error"
)

// JSONError outputs an error as JSON
func JSONError(code, message string) {
	data, _ := json.Marshal(map[string]interface{}{
		"error": map[string]string{"code": code, "message": message},
	})
	fmt.Println(string(data))
}

// FormatAmount formats millilitres, switching to litres from 1000ml
// e.g. "250ml", "1L", "1.5L"
func FormatAmount(ml int) string {
	if ml >= 1000 || ml <= -1000 {
		l := float64(ml) / 1000
		s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", l), "0"), ".")
		return s + "L"
	}
	return fmt.Sprintf("%dml", ml)
}

// FormatPercent formats a percentage without decimals
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.0f%%", pct)
}

// ProgressBar renders pct (0-100) as a bar of width cells
func ProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	return waterStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled))
}

// ProgressBadge returns a goal indicator
// e.g. "✓ goal met", "▶ 55%", "○ nothing yet"
func ProgressBadge(p models.WeeklyProgress) string {
	switch {
	case p.Percentage >= 100:
		return successStyle.Render("✓ goal met")
	case p.TotalIntake > 0:
		return warningStyle.Render("▶ " + FormatPercent(p.Percentage))
	default:
		return subtleStyle.Render("○ nothing yet")
	}
}

// ShortID truncates an intake id for display
func ShortID(id string) string {
	return ansi.Truncate(id, 8, "")
}

// FormatIntakeShort formats one intake line: id, time, amount
func FormatIntakeShort(in models.WaterIntake, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return strings.Join([]string{
		titleStyle.Render(ShortID(in.ID)),
		subtleStyle.Render(in.Timestamp.In(loc).Format("15:04")),
		waterStyle.Render(FormatAmount(in.Amount)),
	}, "  ")
}

// FormatProgressLine formats a day of progress as
// "Mon 01-02  ████░░░░  1.1L / 2L  ▶ 55%"
func FormatProgressLine(p models.WeeklyProgress, barWidth int, today string) string {
	label := p.Date
	if t, err := models.ParseDay(p.Date); err == nil {
		label = t.Format("Mon 01-02")
	}
	if p.Date == today {
		label = titleStyle.Render(label)
	}
	return fmt.Sprintf("%s  %s  %s / %s  %s",
		label,
		ProgressBar(p.Percentage, barWidth),
		FormatAmount(p.TotalIntake),
		FormatAmount(p.GoalAmount),
		ProgressBadge(p))
}

// FormatReminder formats a reminder line
// e.g. "1  08:00  [on]   Good morning! ..."
func FormatReminder(r models.WaterReminder, width int) string {
	state := subtleStyle.Render("[off]")
	if r.Enabled {
		state = successStyle.Render("[on] ")
	}
	msg := r.Message
	if width > 0 {
		msg = ansi.Truncate(msg, width, "…")
	}
	return fmt.Sprintf("%s  %s  %s  %s", titleStyle.Render(r.ID), r.Time, state, msg)
}

// FormatTimeAgo formats a time as a human-readable "ago" string
func FormatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

// Title renders a bold heading
func Title(s string) string {
	return titleStyle.Render(s)
}

// Subtle renders dimmed text
func Subtle(s string) string {
	return subtleStyle.Render(s)
}

// SectionHeader returns a formatted section header for CLI output
// e.g., "\nTODAY:\n"
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}

// IndentString indents each line in a string by the specified number of spaces
func IndentString(s string, spaces int) string {
	if s == "" {
		return ""
	}
	indent := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
