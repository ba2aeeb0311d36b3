package cmd

import (
	"errors"
	"fmt"

	"github.com/marcus/sip/internal/models"
	"github.com/marcus/sip/internal/notify"
	"github.com/marcus/sip/internal/output"
	"github.com/marcus/sip/internal/storage"
	"github.com/spf13/cobra"
)

var remindersCmd = &cobra.Command{
	Use:     "reminders",
	Aliases: []string{"remind"},
	Short:   "Manage daily reminders",
	GroupID: "remind",
	RunE: func(cmd *cobra.Command, args []string) error {
		return remindersListCmd.RunE(cmd, args)
	},
}

var remindersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reminders and whether they are on",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer a.Close()

		reminders, err := a.ensureReminders(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(reminders)
		}

		width := output.TerminalWidth(80) - 24
		for _, r := range reminders {
			fmt.Println(output.FormatReminder(r, width))
		}

		status, err := a.platform.PermissionStatus(ctx)
		if err == nil && status != notify.PermissionGranted {
			output.Warning("notifications are %s; reminders will not fire", status)
		}
		return nil
	},
}

var remindersToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Turn a reminder on or off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer a.Close()

		if _, err := a.ensureReminders(ctx); err != nil {
			output.Error("%v", err)
			return err
		}

		r, err := a.tracker.ToggleReminder(ctx, args[0])
		if errors.Is(err, storage.ErrReminderNotFound) {
			output.Error("no reminder %q (see 'sip reminders list')", args[0])
			return err
		}
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if err := a.toggleReminder(ctx, r, a.tracker.Reminders(ctx)); err != nil {
			output.Warning("reminder saved but schedule not updated: %v", err)
		}

		state := "off"
		if r.Enabled {
			state = "on"
		}
		output.Success("REMINDER %s (%s) %s", r.ID, r.Time, state)
		return nil
	},
}

var remindersResyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Cancel all scheduled reminders and schedule the enabled ones again",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer a.Close()

		reminders, err := a.ensureReminders(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if !a.notifier.RequestPermissions(ctx) {
			output.Warning("notifications not permitted (notify.quiet is set)")
		}
		if err := a.scheduler.Rebuild(ctx, reminders); err != nil {
			output.Error("%v", err)
			return err
		}

		handles, err := a.scheduler.Handles(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("RESYNCED %d of %d reminders", len(handles), countEnabled(reminders))
		return nil
	},
}

var nudgeCmd = &cobra.Command{
	Use:     "nudge",
	Short:   "Send a progress notification for today",
	GroupID: "remind",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer a.Close()

		today := a.tracker.Today()
		pct := models.Percentage(
			models.TotalIntake(a.tracker.IntakeForDate(ctx, today)),
			a.tracker.DailyGoal(ctx, today))

		if _, ok := notify.ProgressMessage(pct); !ok {
			output.Success("Goal already reached today (%s)", output.FormatPercent(pct))
			return nil
		}
		if !a.notifier.ScheduleProgressReminder(ctx, pct) {
			output.Warning("progress notification not sent")
		}
		return nil
	},
}

func countEnabled(reminders []models.WaterReminder) int {
	n := 0
	for _, r := range reminders {
		if r.Enabled {
			n++
		}
	}
	return n
}

func init() {
	rootCmd.AddCommand(remindersCmd)
	rootCmd.AddCommand(nudgeCmd)
	remindersCmd.AddCommand(remindersListCmd)
	remindersCmd.AddCommand(remindersToggleCmd)
	remindersCmd.AddCommand(remindersResyncCmd)

	remindersListCmd.Flags().Bool("json", false, "Output as JSON")
	remindersCmd.Flags().Bool("json", false, "Output as JSON")
}
