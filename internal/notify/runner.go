package notify

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// DefaultInterval is how often the runner checks for due schedules
const DefaultInterval = 30 * time.Second

// Runner fires due daily schedules of a LocalPlatform until its context ends
type Runner struct {
	platform *LocalPlatform
	interval time.Duration
	log      *slog.Logger
}

// NewRunner creates a Runner polling every interval (DefaultInterval if <= 0)
func NewRunner(p *LocalPlatform, interval time.Duration, log *slog.Logger) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{platform: p, interval: interval, log: log}
}

// Run checks once immediately and then on every tick. It returns nil when
// ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("notification runner started", "interval", r.interval)
	r.tick(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.tick(ctx)
		case <-ctx.Done():
			r.log.Info("notification runner stopped")
			return nil
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	fired, err := r.platform.FireDue(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.log.Warn("fire due notifications", "err", err)
		}
		return
	}
	if fired > 0 {
		r.log.Info("notifications delivered", "count", fired)
	}
}
