package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/marcus/sip/internal/kv"
	"github.com/marcus/sip/internal/models"
)

const (
	keyPermission = "notifications_permission"
	keyScheduled  = "notifications_scheduled"
)

// ErrThrottled is returned when a delivery exceeds the rate limit
var ErrThrottled = errors.New("notification rate limit exceeded")

// Notification is a delivered notification
type Notification struct {
	Handle Handle
	Title  string
	Body   string
	Data   map[string]string
	At     time.Time
}

// Deliverer shows a notification to the user
type Deliverer interface {
	Deliver(ctx context.Context, n Notification) error
}

// DelivererFunc adapts a function to Deliverer
type DelivererFunc func(ctx context.Context, n Notification) error

func (f DelivererFunc) Deliver(ctx context.Context, n Notification) error { return f(ctx, n) }

// WriterDeliverer prints notifications as plain lines
type WriterDeliverer struct {
	W io.Writer
}

func (d WriterDeliverer) Deliver(_ context.Context, n Notification) error {
	_, err := fmt.Fprintf(d.W, "[%s] %s: %s\n", n.At.Format("15:04"), n.Title, n.Body)
	return err
}

// Scheduled is a persisted daily schedule
type Scheduled struct {
	Handle    Handle    `json:"handle"`
	Request   Request   `json:"request"`
	CreatedAt time.Time `json:"created_at"`
	LastFired string    `json:"last_fired,omitempty"` // day key
}

// LocalPlatform is a Platform backed by the kv store. Daily schedules are
// persisted and fired by a Runner; immediate requests are delivered at once.
type LocalPlatform struct {
	store     kv.Store
	deliverer Deliverer
	limiter   *rate.Limiter
	log       *slog.Logger
	allow     bool
	loc       *time.Location
	now       func() time.Time
	mu        sync.Mutex
	// fireMu serialises FireDue so one process never delivers a schedule twice
	fireMu sync.Mutex
}

// LocalOption configures a LocalPlatform
type LocalOption func(*LocalPlatform)

// WithAllow sets whether a permission request is granted
func WithAllow(allow bool) LocalOption {
	return func(p *LocalPlatform) { p.allow = allow }
}

// WithRateLimit throttles deliveries to r per second with burst
func WithRateLimit(r rate.Limit, burst int) LocalOption {
	return func(p *LocalPlatform) { p.limiter = rate.NewLimiter(r, burst) }
}

// WithLocalLogger sets the logger
func WithLocalLogger(l *slog.Logger) LocalOption {
	return func(p *LocalPlatform) { p.log = l }
}

// WithLocalClock overrides time.Now and the timezone daily triggers use
func WithLocalClock(now func() time.Time, loc *time.Location) LocalOption {
	return func(p *LocalPlatform) {
		p.now = now
		p.loc = loc
	}
}

// NewLocalPlatform creates a LocalPlatform delivering through d
func NewLocalPlatform(store kv.Store, d Deliverer, opts ...LocalOption) *LocalPlatform {
	p := &LocalPlatform{
		store:     store,
		deliverer: d,
		limiter:   rate.NewLimiter(rate.Every(time.Second), 5),
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		allow:     true,
		loc:       time.Local,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// withLock holds the in-process mutex and, for shared stores, the store lock
func (p *LocalPlatform) withLock(ctx context.Context, fn func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if locker, ok := p.store.(kv.Locker); ok {
		return locker.WithLock(ctx, fn)
	}
	return fn()
}

func (p *LocalPlatform) PermissionStatus(ctx context.Context) (PermissionStatus, error) {
	data, err := p.store.Get(ctx, keyPermission)
	if errors.Is(err, kv.ErrNotFound) {
		return PermissionUndetermined, nil
	}
	if err != nil {
		return "", fmt.Errorf("get permission: %w", err)
	}
	var status PermissionStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return "", fmt.Errorf("decode permission: %w", err)
	}
	return status, nil
}

// RequestPermission records the configured answer. A denial is sticky only
// until the configuration allows notifications again.
func (p *LocalPlatform) RequestPermission(ctx context.Context) (PermissionStatus, error) {
	status := PermissionDenied
	if p.allow {
		status = PermissionGranted
	}
	data, err := json.Marshal(status)
	if err != nil {
		return "", err
	}
	if err := p.store.Set(ctx, keyPermission, data); err != nil {
		return "", fmt.Errorf("set permission: %w", err)
	}
	p.log.Info("notification permission", "status", status)
	return status, nil
}

// SetPermission forces the stored permission
func (p *LocalPlatform) SetPermission(ctx context.Context, status PermissionStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return p.store.Set(ctx, keyPermission, data)
}

func (p *LocalPlatform) Schedule(ctx context.Context, req Request) (Handle, error) {
	h := Handle(uuid.NewString())
	if req.Daily == nil {
		if err := p.deliver(ctx, Notification{Handle: h, Title: req.Title, Body: req.Body, Data: req.Data, At: p.now()}); err != nil {
			return "", err
		}
		return h, nil
	}

	err := p.withLock(ctx, func() error {
		scheduled, err := p.load(ctx)
		if err != nil {
			return err
		}
		scheduled = append(scheduled, Scheduled{Handle: h, Request: req, CreatedAt: p.now()})
		return p.save(ctx, scheduled)
	})
	if err != nil {
		return "", err
	}
	p.log.Debug("daily notification scheduled", "handle", h, "at", req.Daily.String())
	return h, nil
}

func (p *LocalPlatform) Cancel(ctx context.Context, h Handle) error {
	return p.withLock(ctx, func() error {
		scheduled, err := p.load(ctx)
		if err != nil {
			return err
		}
		kept := scheduled[:0]
		for _, s := range scheduled {
			if s.Handle != h {
				kept = append(kept, s)
			}
		}
		if len(kept) == len(scheduled) {
			return nil
		}
		return p.save(ctx, kept)
	})
}

func (p *LocalPlatform) CancelAll(ctx context.Context) error {
	return p.withLock(ctx, func() error {
		return p.store.Delete(ctx, keyScheduled)
	})
}

// Scheduled lists the persisted daily schedules
func (p *LocalPlatform) Scheduled(ctx context.Context) ([]Scheduled, error) {
	return p.load(ctx)
}

// FireDue delivers every daily schedule whose time has passed today and
// that has not fired today. A schedule created after today's trigger time
// waits for tomorrow. Throttled deliveries stay due for the next call.
//
// Due entries are collected under the store lock, delivered without it and
// then marked fired under the lock again, so a slow Deliverer never blocks
// other writers of the store.
func (p *LocalPlatform) FireDue(ctx context.Context) (int, error) {
	p.fireMu.Lock()
	defer p.fireMu.Unlock()

	now := p.now().In(p.loc)
	today := models.DayKey(now, p.loc)

	var due []Scheduled
	err := p.withLock(ctx, func() error {
		scheduled, err := p.load(ctx)
		if err != nil {
			return err
		}
		for _, s := range scheduled {
			if s.Request.Daily == nil || s.LastFired == today {
				continue
			}
			at := time.Date(now.Year(), now.Month(), now.Day(), s.Request.Daily.Hour, s.Request.Daily.Minute, 0, 0, p.loc)
			if now.Before(at) || s.CreatedAt.After(at) {
				continue
			}
			due = append(due, s)
		}
		return nil
	})
	if err != nil || len(due) == 0 {
		return 0, err
	}

	delivered := make(map[Handle]bool, len(due))
	for _, s := range due {
		err := p.deliver(ctx, Notification{Handle: s.Handle, Title: s.Request.Title, Body: s.Request.Body, Data: s.Request.Data, At: now})
		if errors.Is(err, ErrThrottled) {
			p.log.Debug("delivery throttled", "handle", s.Handle)
			continue
		}
		if err != nil {
			p.log.Warn("deliver notification", "handle", s.Handle, "err", err)
			continue
		}
		delivered[s.Handle] = true
	}
	if len(delivered) == 0 {
		return 0, nil
	}

	// Schedules cancelled during delivery are gone from the reload and stay gone
	err = p.withLock(ctx, func() error {
		scheduled, err := p.load(ctx)
		if err != nil {
			return err
		}
		for i := range scheduled {
			if delivered[scheduled[i].Handle] {
				scheduled[i].LastFired = today
			}
		}
		return p.save(ctx, scheduled)
	})
	return len(delivered), err
}

func (p *LocalPlatform) deliver(ctx context.Context, n Notification) error {
	if !p.limiter.Allow() {
		return ErrThrottled
	}
	if p.deliverer == nil {
		return nil
	}
	return p.deliverer.Deliver(ctx, n)
}

func (p *LocalPlatform) load(ctx context.Context) ([]Scheduled, error) {
	var scheduled []Scheduled
	data, err := p.store.Get(ctx, keyScheduled)
	if errors.Is(err, kv.ErrNotFound) {
		return scheduled, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get scheduled notifications: %w", err)
	}
	if err := json.Unmarshal(data, &scheduled); err != nil {
		return nil, fmt.Errorf("decode scheduled notifications: %w", err)
	}
	return scheduled, nil
}

func (p *LocalPlatform) save(ctx context.Context, scheduled []Scheduled) error {
	data, err := json.Marshal(scheduled)
	if err != nil {
		return fmt.Errorf("encode scheduled notifications: %w", err)
	}
	return p.store.Set(ctx, keyScheduled, data)
}
