package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/marcus/sip/internal/kv"
	"github.com/marcus/sip/internal/models"
)

const keyHandles = "notification_handles"

// ReminderScheduler tracks which platform handle belongs to which reminder
// so that toggling a single reminder costs one cancel or one schedule.
type ReminderScheduler struct {
	svc   *Service
	store kv.Store
	log   *slog.Logger
	mu    sync.Mutex
}

// NewReminderScheduler persists handles in store
func NewReminderScheduler(svc *Service, store kv.Store, log *slog.Logger) *ReminderScheduler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ReminderScheduler{svc: svc, store: store, log: log}
}

// Handles returns the stored reminder id to handle map
func (rs *ReminderScheduler) Handles(ctx context.Context) (map[string]Handle, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.loadHandles(ctx)
}

func (rs *ReminderScheduler) loadHandles(ctx context.Context) (map[string]Handle, error) {
	handles := map[string]Handle{}
	data, err := rs.store.Get(ctx, keyHandles)
	if errors.Is(err, kv.ErrNotFound) {
		return handles, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notification handles: %w", err)
	}
	if err := json.Unmarshal(data, &handles); err != nil {
		return nil, fmt.Errorf("decode notification handles: %w", err)
	}
	return handles, nil
}

func (rs *ReminderScheduler) saveHandles(ctx context.Context, handles map[string]Handle) error {
	data, err := json.Marshal(handles)
	if err != nil {
		return fmt.Errorf("encode notification handles: %w", err)
	}
	return rs.store.Set(ctx, keyHandles, data)
}

// Apply brings the schedule for one reminder in line with its Enabled flag.
// The full list is needed only for the recovery rebuild when a cancel fails.
func (rs *ReminderScheduler) Apply(ctx context.Context, r models.WaterReminder, all []models.WaterReminder) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	handles, err := rs.loadHandles(ctx)
	if err != nil {
		return err
	}
	h, scheduled := handles[r.ID]

	switch {
	case r.Enabled && !scheduled:
		nh, ok := rs.svc.ScheduleWaterReminder(ctx, r)
		if !ok {
			return nil
		}
		handles[r.ID] = nh
	case !r.Enabled && scheduled:
		if err := rs.svc.CancelReminder(ctx, h); err != nil {
			rs.log.Warn("cancel failed, rebuilding reminder schedule", "id", r.ID, "err", err)
			return rs.rebuild(ctx, all)
		}
		delete(handles, r.ID)
	default:
		return nil
	}
	return rs.saveHandles(ctx, handles)
}

// Sync schedules enabled reminders that have no handle and cancels handles
// whose reminder is gone or disabled. It returns the number of platform calls.
func (rs *ReminderScheduler) Sync(ctx context.Context, reminders []models.WaterReminder) (int, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	handles, err := rs.loadHandles(ctx)
	if err != nil {
		return 0, err
	}

	enabled := make(map[string]models.WaterReminder, len(reminders))
	for _, r := range reminders {
		if r.Enabled {
			enabled[r.ID] = r
		}
	}

	calls := 0
	ids := make([]string, 0, len(handles))
	for id := range handles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, ok := enabled[id]; ok {
			continue
		}
		calls++
		if err := rs.svc.CancelReminder(ctx, handles[id]); err != nil {
			rs.log.Warn("cancel failed, rebuilding reminder schedule", "id", id, "err", err)
			return calls, rs.rebuild(ctx, reminders)
		}
		delete(handles, id)
	}

	for _, r := range reminders {
		if !r.Enabled {
			continue
		}
		if _, ok := handles[r.ID]; ok {
			continue
		}
		calls++
		if h, ok := rs.svc.ScheduleWaterReminder(ctx, r); ok {
			handles[r.ID] = h
		}
	}
	return calls, rs.saveHandles(ctx, handles)
}

// Rebuild cancels everything on the platform and schedules every enabled
// reminder from scratch.
func (rs *ReminderScheduler) Rebuild(ctx context.Context, reminders []models.WaterReminder) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.rebuild(ctx, reminders)
}

func (rs *ReminderScheduler) rebuild(ctx context.Context, reminders []models.WaterReminder) error {
	if err := rs.svc.CancelAllReminders(ctx); err != nil {
		return fmt.Errorf("rebuild reminders: %w", err)
	}
	handles := map[string]Handle{}
	for _, r := range reminders {
		if !r.Enabled {
			continue
		}
		if h, ok := rs.svc.ScheduleWaterReminder(ctx, r); ok {
			handles[r.ID] = h
		}
	}
	rs.log.Info("reminder schedule rebuilt", "scheduled", len(handles))
	return rs.saveHandles(ctx, handles)
}

// Clear cancels all schedules and forgets every handle
func (rs *ReminderScheduler) Clear(ctx context.Context) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if err := rs.svc.CancelAllReminders(ctx); err != nil {
		return err
	}
	if err := rs.store.Delete(ctx, keyHandles); err != nil {
		return fmt.Errorf("delete notification handles: %w", err)
	}
	return nil
}
