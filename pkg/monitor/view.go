package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/sip/internal/dateparse"
	"github.com/marcus/sip/internal/models"
	"github.com/marcus/sip/internal/notify"
	"github.com/marcus/sip/internal/output"
)

var (
	primaryColor = lipgloss.Color("39")
	mutedColor   = lipgloss.Color("241")
	successColor = lipgloss.Color("42")
	errorColor   = lipgloss.Color("196")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(primaryColor).
				Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	subtleStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	successStyle  = lipgloss.NewStyle().Foreground(successColor)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
)

const defaultWidth = 80

func (m Model) renderView() string {
	width := m.Width
	if width <= 0 {
		width = defaultWidth
	}
	inner := width - 4

	if !m.Loaded {
		return subtleStyle.Render("Loading...")
	}

	var sections []string
	sections = append(sections, m.renderHeader(width))
	if m.form != nil {
		sections = append(sections, activePanelStyle.Width(inner).Render(m.form.form.View()))
	}
	sections = append(sections,
		m.panel(PanelToday, m.renderToday(inner), inner),
		m.panel(PanelWeek, m.renderWeek(inner), inner),
		m.panel(PanelReminders, m.renderReminders(inner), inner),
	)
	sections = append(sections, m.renderStatus(), m.help.View(m.keys))
	return strings.Join(sections, "\n")
}

func (m Model) renderHeader(width int) string {
	title := titleStyle.Render("💧 sip")
	if m.opts.Version != "" {
		title += subtleStyle.Render(" " + m.opts.Version)
	}
	right := subtleStyle.Render(m.Data.Today)
	gap := width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + right
}

func (m Model) panel(p Panel, body string, width int) string {
	title := p.String()
	if p == PanelWeek {
		title = dateparse.WeekTitle(m.WeekOffset)
	}
	style := panelStyle
	if m.Panel == p {
		style = activePanelStyle
	}
	return style.Width(width).Render(panelTitleStyle.Render(title) + "\n" + body)
}

// todayPercentage returns the percentage for the loaded snapshot
func (m Model) todayPercentage() float64 {
	return models.Percentage(models.TotalIntake(m.Data.Intakes), m.Data.Goal)
}

func (m Model) renderToday(width int) string {
	total := models.TotalIntake(m.Data.Intakes)
	pct := m.todayPercentage()

	bar := m.bar
	bar.Width = width - 2
	if bar.Width < 10 {
		bar.Width = 10
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s of %s  %s\n",
		output.FormatAmount(total), output.FormatAmount(m.Data.Goal), output.FormatPercent(pct)))
	sb.WriteString(bar.ViewAs(pct / 100))
	sb.WriteString("\n")

	if msg, ok := notify.ProgressMessage(pct); ok {
		sb.WriteString(subtleStyle.Render(msg))
	} else {
		sb.WriteString(successStyle.Render(notify.GoalBody))
	}

	if len(m.Data.Intakes) == 0 {
		sb.WriteString("\n" + subtleStyle.Render("No water logged yet. Press 1-4 to add."))
		return sb.String()
	}
	for i, in := range m.Data.Intakes {
		line := output.FormatIntakeShort(in, m.opts.Tracker.Location())
		if m.Panel == PanelToday && i == m.Cursor {
			line = selectedStyle.Render(ansi.Strip(line))
		}
		sb.WriteString("\n" + line)
	}
	return sb.String()
}

func (m Model) renderWeek(width int) string {
	if len(m.Data.Week) == 0 {
		return subtleStyle.Render("No data")
	}
	barWidth := width - 40
	if barWidth < 5 {
		barWidth = 5
	}
	lines := make([]string, 0, len(m.Data.Week)+1)
	for i, p := range m.Data.Week {
		line := output.FormatProgressLine(p, barWidth, m.Data.Today)
		if m.Panel == PanelWeek && i == m.Cursor {
			line = selectedStyle.Render(ansi.Strip(line))
		}
		lines = append(lines, line)
	}
	s := models.Summarize(m.Data.Week)
	lines = append(lines, subtleStyle.Render(fmt.Sprintf("%d days tracked · avg %s",
		s.DaysTracked, output.FormatAmount(s.AverageIntake))))
	return strings.Join(lines, "\n")
}

func (m Model) renderReminders(width int) string {
	if len(m.Data.Reminders) == 0 {
		return subtleStyle.Render("No reminders")
	}
	lines := make([]string, 0, len(m.Data.Reminders))
	for i, r := range m.Data.Reminders {
		line := output.FormatReminder(r, width-20)
		if m.Panel == PanelReminders && i == m.Cursor {
			line = selectedStyle.Render(ansi.Strip(line))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatus() string {
	if m.Status == "" {
		return ""
	}
	if m.StatusIsErr {
		return errorStyle.Render("✗ " + m.Status)
	}
	return successStyle.Render("✓ " + m.Status)
}
