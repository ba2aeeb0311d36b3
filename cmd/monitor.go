package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/sip/internal/output"
	"github.com/marcus/sip/pkg/monitor"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:     "monitor",
	Aliases: []string{"ui"},
	Short:   "Live dashboard for today's hydration",
	Long: `Launch a live-updating TUI dashboard showing:
- Today: progress toward the goal and the drinks logged
- Week: daily totals for the selected week
- Reminders: the daily reminders and whether they are on

Key bindings:
  1-4            Quick-add 250ml / 500ml / 750ml / 1L
  a              Add a custom amount
  u              Undo the last drink today
  Tab/Shift+Tab  Switch panels
  ↑/↓ or k/j     Select row
  Space/Enter    Toggle the selected reminder
  [ / ]          Previous / next week
  r              Force refresh
  ?              Toggle help
  q              Quit`,
	GroupID: "track",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer a.Close()

		if _, err := a.ensureReminders(ctx); err != nil {
			output.Warning("load reminders: %v", err)
		}

		interval, _ := cmd.Flags().GetDuration("interval")
		if interval < 500*time.Millisecond {
			interval = 5 * time.Second
		}

		model := monitor.NewModel(monitor.Options{
			Tracker:  a.tracker,
			Interval: interval,
			Version:  version,
			OnIntakeAdded: func(ctx context.Context, before, after, goal int) {
				a.afterAdd(ctx, before, after, goal)
			},
			OnReminderToggled: a.toggleReminder,
		})

		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running monitor: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().Duration("interval", 5*time.Second, "Refresh interval")
}
