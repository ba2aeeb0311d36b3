package monitor

import (
	"context"
	"time"

	"github.com/marcus/sip/internal/models"
)

// Panel represents which panel is active
type Panel int

const (
	PanelToday Panel = iota
	PanelWeek
	PanelReminders
)

const panelCount = 3

// String returns the panel title
func (p Panel) String() string {
	switch p {
	case PanelWeek:
		return "Week"
	case PanelReminders:
		return "Reminders"
	default:
		return "Today"
	}
}

// Tracker is the storage surface the monitor reads and writes
type Tracker interface {
	Today() string
	Location() *time.Location
	IntakeForDate(ctx context.Context, date string) []models.WaterIntake
	DailyGoal(ctx context.Context, date string) int
	WeekProgress(ctx context.Context, offset int) ([]models.WeeklyProgress, error)
	Reminders(ctx context.Context) []models.WaterReminder
	AddIntakeTotal(ctx context.Context, intake models.WaterIntake) (models.WaterIntake, int, error)
	RemoveIntake(ctx context.Context, id, date string) (bool, error)
	ToggleReminder(ctx context.Context, id string) (models.WaterReminder, error)
}

// TickMsg triggers a periodic refresh
type TickMsg time.Time

// RefreshDataMsg carries a fresh snapshot
type RefreshDataMsg struct {
	Today     string
	Intakes   []models.WaterIntake
	Goal      int
	Week      []models.WeeklyProgress
	Reminders []models.WaterReminder
	Err       error
}

// ActionResultMsg reports the outcome of a user action
type ActionResultMsg struct {
	Status string
	Err    error
}

// ClearStatusMsg clears the status line
type ClearStatusMsg struct{}
