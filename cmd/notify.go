package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/marcus/sip/internal/notify"
	"github.com/marcus/sip/internal/output"
	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:     "notify",
	Short:   "Deliver scheduled reminders",
	GroupID: "remind",
}

var notifyRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Stay in the foreground and deliver reminders when they are due",
	Long: `Runs until interrupted, checking the schedule every notify.interval and
printing each due reminder to the terminal. Each reminder fires at most once a day.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

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
			err := fmt.Errorf("notifications are disabled (notify.quiet)")
			output.Error("%v", err)
			return err
		}
		if _, err := a.scheduler.Sync(ctx, reminders); err != nil {
			output.Warning("sync reminders: %v", err)
		}

		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			interval = a.cfg.Notify.Interval
		}
		output.Info("delivering reminders every %s (ctrl+c to stop)", interval)
		return notify.NewRunner(a.platform, interval, a.log).Run(ctx)
	},
}

var notifyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show notification permission and scheduled reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer a.Close()

		return printNotifyStatus(ctx, a)
	},
}

func printNotifyStatus(ctx context.Context, a *app) error {
	status, err := a.platform.PermissionStatus(ctx)
	if err != nil {
		output.Error("%v", err)
		return err
	}
	scheduled, err := a.platform.Scheduled(ctx)
	if err != nil {
		output.Error("%v", err)
		return err
	}
	sort.Slice(scheduled, func(i, j int) bool {
		return scheduled[i].Request.Daily.String() < scheduled[j].Request.Daily.String()
	})

	fmt.Printf("Permission: %s\n", status)
	fmt.Print(output.SectionHeader(fmt.Sprintf("Scheduled (%d)", len(scheduled))))
	for _, s := range scheduled {
		last := "never"
		if s.LastFired != "" {
			last = s.LastFired
		}
		fmt.Printf("  %s  %s  %s\n",
			s.Request.Daily,
			output.Subtle("last fired "+last),
			s.Request.Body)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyRunCmd)
	notifyCmd.AddCommand(notifyStatusCmd)

	notifyRunCmd.Flags().Duration("interval", 0, "Check interval (default notify.interval from config)")
}
