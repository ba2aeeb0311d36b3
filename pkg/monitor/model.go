// Package monitor is the live hydration dashboard: today's progress, the
// week view and the reminder list, refreshed on a ticker.
package monitor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/marcus/sip/internal/models"
	"github.com/marcus/sip/internal/output"
)

const statusTimeout = 3 * time.Second

// Options configures the dashboard
type Options struct {
	Tracker  Tracker
	Interval time.Duration
	Version  string
	// OnIntakeAdded runs after every successful add with the day's totals
	OnIntakeAdded func(ctx context.Context, before, after, goal int)
	// OnReminderToggled runs after a reminder flips so schedules can follow
	OnReminderToggled func(ctx context.Context, r models.WaterReminder, all []models.WaterReminder) error
}

// Model is the bubbletea model for the dashboard
type Model struct {
	opts Options
	keys keyMap
	help help.Model
	bar  progress.Model

	Panel      Panel
	Cursor     int
	WeekOffset int
	Data       RefreshDataMsg
	Loaded     bool

	Status      string
	StatusIsErr bool
	ShowHelp    bool
	Width       int
	Height      int

	form *amountForm
}

// amountForm is the custom amount prompt
type amountForm struct {
	form  *huh.Form
	value string
}

func newAmountForm() *amountForm {
	f := &amountForm{}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Amount (ml)").
				Placeholder("330").
				Value(&f.value).
				Validate(validateAmount),
		),
	).WithShowHelp(false)
	return f
}

func validateAmount(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number of millilitres")
	}
	return nil
}

// NewModel creates the dashboard model
func NewModel(opts Options) Model {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	return Model{
		opts: opts,
		keys: defaultKeyMap(len(models.IntakePresets)),
		help: help.New(),
		bar:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchData(), m.scheduleTick())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m, tea.Batch(m.fetchData(), m.scheduleTick())

	case RefreshDataMsg:
		if msg.Err != nil {
			m.setStatus(msg.Err.Error(), true)
		}
		m.Data = msg
		m.Loaded = true
		m.clampCursor()
		return m, nil

	case ActionResultMsg:
		if msg.Err != nil {
			m.setStatus(msg.Err.Error(), true)
		} else {
			m.setStatus(msg.Status, false)
		}
		return m, tea.Batch(m.fetchData(), clearStatusAfter())

	case ClearStatusMsg:
		m.Status = ""
		m.StatusIsErr = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	for i, b := range m.keys.QuickAdd {
		if key.Matches(msg, b) {
			return m, m.addIntake(models.IntakePresets[i].Value)
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.ShowHelp = !m.ShowHelp
		m.help.ShowAll = m.ShowHelp
	case key.Matches(msg, m.keys.Custom):
		m.form = newAmountForm()
		return m, m.form.form.Init()
	case key.Matches(msg, m.keys.Undo):
		return m, m.undoLast()
	case key.Matches(msg, m.keys.NextPanel):
		m.Panel = (m.Panel + 1) % panelCount
		m.Cursor = 0
	case key.Matches(msg, m.keys.PrevPanel):
		m.Panel = (m.Panel + panelCount - 1) % panelCount
		m.Cursor = 0
	case key.Matches(msg, m.keys.Up):
		m.Cursor--
		m.clampCursor()
	case key.Matches(msg, m.keys.Down):
		m.Cursor++
		m.clampCursor()
	case key.Matches(msg, m.keys.PrevWeek):
		m.WeekOffset--
		return m, m.fetchData()
	case key.Matches(msg, m.keys.NextWeek):
		if m.WeekOffset < 0 {
			m.WeekOffset++
			return m, m.fetchData()
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.Panel == PanelReminders && m.Cursor < len(m.Data.Reminders) {
			return m, m.toggleReminder(m.Data.Reminders[m.Cursor].ID)
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetchData()
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.form = nil
		return m, nil
	}

	updated, cmd := m.form.form.Update(msg)
	if f, ok := updated.(*huh.Form); ok {
		m.form.form = f
	}

	switch m.form.form.State {
	case huh.StateCompleted:
		amount, _ := strconv.Atoi(strings.TrimSpace(m.form.value))
		m.form = nil
		if amount > 0 {
			return m, m.addIntake(amount)
		}
		return m, nil
	case huh.StateAborted:
		m.form = nil
		return m, nil
	}
	return m, cmd
}

// rowCount returns the number of selectable rows in the active panel
func (m Model) rowCount() int {
	switch m.Panel {
	case PanelToday:
		return len(m.Data.Intakes)
	case PanelWeek:
		return len(m.Data.Week)
	default:
		return len(m.Data.Reminders)
	}
}

func (m *Model) clampCursor() {
	n := m.rowCount()
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.Status = s
	m.StatusIsErr = isErr
}

func clearStatusAfter() tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return ClearStatusMsg{} })
}

// scheduleTick returns a command that sends a TickMsg after the refresh interval
func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// fetchData returns a command that loads a snapshot
func (m Model) fetchData() tea.Cmd {
	tracker := m.opts.Tracker
	offset := m.WeekOffset
	return func() tea.Msg {
		ctx := context.Background()
		today := tracker.Today()
		week, err := tracker.WeekProgress(ctx, offset)
		return RefreshDataMsg{
			Today:     today,
			Intakes:   tracker.IntakeForDate(ctx, today),
			Goal:      tracker.DailyGoal(ctx, today),
			Week:      week,
			Reminders: tracker.Reminders(ctx),
			Err:       err,
		}
	}
}

func (m Model) addIntake(amount int) tea.Cmd {
	tracker := m.opts.Tracker
	hook := m.opts.OnIntakeAdded
	return func() tea.Msg {
		ctx := context.Background()
		goal := tracker.DailyGoal(ctx, tracker.Today())
		_, before, err := tracker.AddIntakeTotal(ctx, models.WaterIntake{Amount: amount})
		if err != nil {
			return ActionResultMsg{Err: fmt.Errorf("add %s: %w", output.FormatAmount(amount), err)}
		}
		after := before + amount
		if hook != nil {
			hook(ctx, before, after, goal)
		}
		status := fmt.Sprintf("Added %s", output.FormatAmount(amount))
		if models.GoalCrossed(before, after, goal) {
			status += " · daily goal reached!"
		}
		return ActionResultMsg{Status: status}
	}
}

func (m Model) undoLast() tea.Cmd {
	tracker := m.opts.Tracker
	return func() tea.Msg {
		ctx := context.Background()
		today := tracker.Today()
		intakes := tracker.IntakeForDate(ctx, today)
		if len(intakes) == 0 {
			return ActionResultMsg{Status: "Nothing to undo today"}
		}
		last := intakes[len(intakes)-1]
		if _, err := tracker.RemoveIntake(ctx, last.ID, today); err != nil {
			return ActionResultMsg{Err: fmt.Errorf("remove: %w", err)}
		}
		return ActionResultMsg{Status: fmt.Sprintf("Removed %s", output.FormatAmount(last.Amount))}
	}
}

func (m Model) toggleReminder(id string) tea.Cmd {
	tracker := m.opts.Tracker
	hook := m.opts.OnReminderToggled
	return func() tea.Msg {
		ctx := context.Background()
		r, err := tracker.ToggleReminder(ctx, id)
		if err != nil {
			return ActionResultMsg{Err: err}
		}
		if hook != nil {
			if err := hook(ctx, r, tracker.Reminders(ctx)); err != nil {
				return ActionResultMsg{Err: fmt.Errorf("reschedule reminder %s: %w", id, err)}
			}
		}
		state := "off"
		if r.Enabled {
			state = "on"
		}
		return ActionResultMsg{Status: fmt.Sprintf("Reminder %s (%s) %s", r.ID, r.Time, state)}
	}
}

// View implements tea.Model
func (m Model) View() string {
	return m.renderView()
}
