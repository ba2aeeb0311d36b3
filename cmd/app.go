package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/marcus/sip/internal/config"
	"github.com/marcus/sip/internal/dateparse"
	"github.com/marcus/sip/internal/kv"
	"github.com/marcus/sip/internal/logging"
	"github.com/marcus/sip/internal/metrics"
	"github.com/marcus/sip/internal/models"
	"github.com/marcus/sip/internal/notify"
	"github.com/marcus/sip/internal/output"
	"github.com/marcus/sip/internal/storage"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/time/rate"
)

// processMetrics accumulates counters for every app opened in this process
var processMetrics = metrics.New()

// app bundles the services one command invocation needs
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	loc       *time.Location
	store     *kv.SQLite
	tracker   *storage.Service
	platform  *notify.LocalPlatform
	notifier  *notify.Service
	scheduler *notify.ReminderScheduler
}

// openApp loads config, opens the store and wires the services
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(getDataDir())
	if err != nil {
		return nil, err
	}
	log := logging.Setup(os.Stderr, cfg.Log)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := kv.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	tracker := storage.New(store,
		storage.WithLogger(log),
		storage.WithMetrics(processMetrics),
		storage.WithLocation(loc),
	)

	perMinute := rate.Limit(float64(cfg.Notify.RatePerMinute) / 60)
	platform := notify.NewLocalPlatform(store, terminalDeliverer{},
		notify.WithAllow(!cfg.Notify.Quiet),
		notify.WithRateLimit(perMinute, cfg.Notify.Burst),
		notify.WithLocalLogger(log),
		notify.WithLocalClock(time.Now, loc),
	)
	if cfg.Notify.Quiet {
		if err := platform.SetPermission(ctx, notify.PermissionDenied); err != nil {
			log.Warn("record quiet mode", "err", err)
		}
	}
	notifier := notify.NewService(platform,
		notify.WithServiceLogger(log),
		notify.WithServiceMetrics(processMetrics),
	)

	return &app{
		cfg:       cfg,
		log:       log,
		loc:       loc,
		store:     store,
		tracker:   tracker,
		platform:  platform,
		notifier:  notifier,
		scheduler: notify.NewReminderScheduler(notifier, store, log),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// ensureReminders seeds the default reminders on first use and schedules them
func (a *app) ensureReminders(ctx context.Context) ([]models.WaterReminder, error) {
	reminders, seeded, err := a.tracker.EnsureDefaultReminders(ctx)
	if err != nil {
		return nil, err
	}
	if seeded {
		if _, err := a.scheduler.Sync(ctx, reminders); err != nil {
			a.log.Warn("schedule default reminders", "err", err)
		}
	}
	return reminders, nil
}

// afterAdd sends the goal notification when an add crosses the goal
func (a *app) afterAdd(ctx context.Context, before, after, goal int) bool {
	if !models.GoalCrossed(before, after, goal) {
		return false
	}
	a.notifier.ScheduleGoalAchievedNotification(ctx)
	return true
}

// toggleReminder flips a reminder and keeps its schedule in step
func (a *app) toggleReminder(ctx context.Context, r models.WaterReminder, all []models.WaterReminder) error {
	return a.scheduler.Apply(ctx, r, all)
}

// terminalDeliverer prints notifications with a bell
type terminalDeliverer struct{}

func (terminalDeliverer) Deliver(_ context.Context, n notify.Notification) error {
	fmt.Printf("\a%s %s\n%s\n", output.Subtle(n.At.Format("15:04")), output.Title(n.Title), n.Body)
	return nil
}

// addDateFlag registers the --date flag shared by day-scoped commands
func addDateFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("date", "d", "today", "Day: today, yesterday, -Nd, weekday name or YYYY-MM-DD")
}

// resolveDay reads --date relative to now in loc
func resolveDay(cmd *cobra.Command, loc *time.Location) (string, error) {
	input, _ := cmd.Flags().GetString("date")
	if input == "" {
		input = "today"
	}
	return dateparse.ParseDayFrom(input, time.Now().In(loc))
}

// timestampFor places now's clock time on day
func timestampFor(day string, now time.Time, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(models.DayLayout, day, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", models.ErrInvalidDay, day)
	}
	now = now.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), now.Hour(), now.Minute(), now.Second(), 0, loc), nil
}

// parseAmount accepts "500", "500ml", "1L", "1.5l" or a preset label
func parseAmount(s string) (int, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	for _, p := range models.IntakePresets {
		if strings.ToLower(p.Label) == in {
			return p.Value, nil
		}
	}

	var ml float64
	var err error
	switch {
	case strings.HasSuffix(in, "ml"):
		ml, err = strconv.ParseFloat(strings.TrimSuffix(in, "ml"), 64)
	case strings.HasSuffix(in, "l"):
		ml, err = strconv.ParseFloat(strings.TrimSuffix(in, "l"), 64)
		ml *= 1000
	default:
		ml, err = strconv.ParseFloat(in, 64)
	}
	if err != nil || math.IsNaN(ml) || math.IsInf(ml, 0) {
		return 0, fmt.Errorf("invalid amount %q (examples: 250, 500ml, 1.5L)", s)
	}
	if ml <= 0 {
		return 0, fmt.Errorf("%w: %q", storage.ErrInvalidAmount, s)
	}
	return int(ml + 0.5), nil
}

// isInteractive reports whether stdin and stdout are terminals
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
