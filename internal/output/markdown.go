package output

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/marcus/sip/internal/models"
	"golang.org/x/term"
)

const minReportWidth = 20

// TerminalWidth returns stdout's column count, then $COLUMNS, then fallback (80 if <= 0)
func TerminalWidth(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
		return n
	}
	if fallback <= 0 {
		return 80
	}
	return fallback
}

// RenderMarkdown renders md for stdout: styled on a terminal, plain when piped
func RenderMarkdown(md string) (string, error) {
	style := "notty"
	if term.IsTerminal(int(os.Stdout.Fd())) {
		style = ""
	}
	return renderMarkdown(md, TerminalWidth(0), style)
}

// RenderMarkdownWithWidth renders md with the auto style wrapped at width
func RenderMarkdownWithWidth(md string, width int) (string, error) {
	return renderMarkdown(md, width, "")
}

// renderMarkdown wraps at width; an empty style means glamour's auto style
func renderMarkdown(md string, width int, style string) (string, error) {
	if strings.TrimSpace(md) == "" {
		return "", nil
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(max(width, minReportWidth))}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}

// WeeklyReportMarkdown builds a markdown report for a week of progress
func WeeklyReportMarkdown(title string, progress []models.WeeklyProgress) string {
	var sb strings.Builder
	sb.WriteString("# " + title + "\n\n")
	if len(progress) > 0 {
		sb.WriteString(fmt.Sprintf("_%s to %s_\n\n", progress[0].Date, progress[len(progress)-1].Date))
	}

	sb.WriteString("| Day | Intake | Goal | Progress |\n")
	sb.WriteString("|---|---:|---:|---:|\n")
	met := 0
	for _, p := range progress {
		day := p.Date
		if t, err := models.ParseDay(p.Date); err == nil {
			day = t.Format("Mon Jan 2")
		}
		mark := ""
		if p.Percentage >= 100 {
			mark = " ✓"
			met++
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s%s |\n",
			day, FormatAmount(p.TotalIntake), FormatAmount(p.GoalAmount), FormatPercent(p.Percentage), mark))
	}

	s := models.Summarize(progress)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("- **Days tracked:** %d\n", s.DaysTracked))
	sb.WriteString(fmt.Sprintf("- **Goals met:** %d of %d\n", met, len(progress)))
	sb.WriteString(fmt.Sprintf("- **Total:** %s\n", FormatAmount(s.TotalIntake)))
	sb.WriteString(fmt.Sprintf("- **Daily average:** %s\n", FormatAmount(s.AverageIntake)))
	return sb.String()
}
