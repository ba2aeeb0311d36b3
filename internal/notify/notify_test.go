package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/marcus/sip/internal/kv"
	"github.com/marcus/sip/internal/metrics"
	"github.com/marcus/sip/internal/models"
)

// fakePlatform records every call
type fakePlatform struct {
	mu         sync.Mutex
	status     PermissionStatus
	grant      PermissionStatus
	statusErr  error
	cancelErr  error
	scheduled  map[Handle]Request
	sent       []Request
	schedules  int
	cancels    int
	cancelAlls int
	requests   int
	seq        int
}

func newFakePlatform(status PermissionStatus) *fakePlatform {
	return &fakePlatform{status: status, grant: PermissionGranted, scheduled: map[Handle]Request{}}
}

func (f *fakePlatform) PermissionStatus(context.Context) (PermissionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.statusErr
}

func (f *fakePlatform) RequestPermission(context.Context) (PermissionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	f.status = f.grant
	return f.status, nil
}

func (f *fakePlatform) Schedule(_ context.Context, req Request) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schedules++
	f.seq++
	h := Handle(fmt.Sprintf("h%d", f.seq))
	if req.Daily == nil {
		f.sent = append(f.sent, req)
	} else {
		f.scheduled[h] = req
	}
	return h, nil
}

func (f *fakePlatform) Cancel(_ context.Context, h Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
	if f.cancelErr != nil {
		return f.cancelErr
	}
	delete(f.scheduled, h)
	return nil
}

func (f *fakePlatform) CancelAll(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelAlls++
	f.scheduled = map[Handle]Request{}
	return nil
}

func (f *fakePlatform) mutations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.schedules + f.cancels + f.cancelAlls
}

func TestProgressMessageBuckets(t *testing.T) {
	tests := []struct {
		pct    float64
		prefix string
		ok     bool
	}{
		{0, "You're just getting started", true},
		{24.9, "You're just getting started", true},
		{25, "You're 25% there", true},
		{49, "You're 25% there", true},
		{50, "Halfway to your goal", true},
		{74.99, "Halfway to your goal", true},
		{75, "Almost there", true},
		{99, "Almost there", true},
		{99.99, "Almost there", true},
		{100, "", false},
		{130, "", false},
	}
	for _, tc := range tests {
		msg, ok := ProgressMessage(tc.pct)
		if ok != tc.ok {
			t.Errorf("ProgressMessage(%v) ok = %v, want %v", tc.pct, ok, tc.ok)
			continue
		}
		if len(msg) < len(tc.prefix) || msg[:len(tc.prefix)] != tc.prefix {
			t.Errorf("ProgressMessage(%v) = %q, want prefix %q", tc.pct, msg, tc.prefix)
		}
	}
}

func TestScheduleProgressReminderBoundary(t *testing.T) {
	ctx := context.Background()
	fp := newFakePlatform(PermissionGranted)
	svc := NewService(fp)

	if svc.ScheduleProgressReminder(ctx, 100) {
		t.Error("100% should send nothing")
	}
	if len(fp.sent) != 0 {
		t.Fatalf("sent %d notifications at 100%%", len(fp.sent))
	}

	if !svc.ScheduleProgressReminder(ctx, 99) {
		t.Fatal("99% should send a nudge")
	}
	if len(fp.sent) != 1 || fp.sent[0].Title != ProgressTitle {
		t.Fatalf("unexpected sent: %+v", fp.sent)
	}
	want, _ := ProgressMessage(99)
	if fp.sent[0].Body != want {
		t.Errorf("body = %q, want %q", fp.sent[0].Body, want)
	}
}

func TestScheduleWaterReminder(t *testing.T) {
	ctx := context.Background()
	fp := newFakePlatform(PermissionGranted)
	svc := NewService(fp)

	h, ok := svc.ScheduleWaterReminder(ctx, models.WaterReminder{ID: "1", Time: "08:30", Enabled: true})
	if !ok {
		t.Fatal("expected reminder to be scheduled")
	}
	req := fp.scheduled[h]
	if req.Daily == nil || req.Daily.Hour != 8 || req.Daily.Minute != 30 {
		t.Errorf("trigger = %+v, want daily 08:30", req.Daily)
	}
	if req.Title != ReminderTitle || req.Body != DefaultReminderBody {
		t.Errorf("content = %q / %q", req.Title, req.Body)
	}

	h2, _ := svc.ScheduleWaterReminder(ctx, models.WaterReminder{ID: "2", Time: "12:00", Message: "Lunch!"})
	if fp.scheduled[h2].Body != "Lunch!" {
		t.Errorf("body = %q, want the reminder message", fp.scheduled[h2].Body)
	}

	if _, ok := svc.ScheduleWaterReminder(ctx, models.WaterReminder{ID: "3", Time: "7pm"}); ok {
		t.Error("invalid time should not schedule")
	}
}

func TestPermissionGating(t *testing.T) {
	ctx := context.Background()
	fp := newFakePlatform(PermissionUndetermined)
	fp.grant = PermissionDenied
	m := metrics.New()
	svc := NewService(fp, WithServiceMetrics(m))

	if _, ok := svc.ScheduleWaterReminder(ctx, models.DefaultReminders()[0]); ok {
		t.Error("scheduled without permission")
	}
	if svc.ScheduleGoalAchievedNotification(ctx) {
		t.Error("goal notification sent without permission")
	}
	if fp.schedules != 0 {
		t.Errorf("platform Schedule called %d times", fp.schedules)
	}
	if fp.requests == 0 {
		t.Error("expected a permission request")
	}

	fp.statusErr = errors.New("platform down")
	if svc.RequestPermissions(ctx) {
		t.Error("status error should report false")
	}

	samples, _ := m.Snapshot()
	skipped := 0.0
	for _, s := range samples {
		if s.Name == "sip_notifications_total" && s.Labels["outcome"] == metrics.OutcomeSkipped {
			skipped += s.Value
		}
	}
	if skipped == 0 {
		t.Error("expected skipped notifications to be counted")
	}
}

func TestPermissionRequestedWhenUndetermined(t *testing.T) {
	ctx := context.Background()
	fp := newFakePlatform(PermissionUndetermined)
	svc := NewService(fp)

	if !svc.ScheduleGoalAchievedNotification(ctx) {
		t.Fatal("expected goal notification after permission grant")
	}
	if fp.requests != 1 {
		t.Errorf("requests = %d, want 1", fp.requests)
	}
	if fp.sent[0].Title != GoalTitle || fp.sent[0].Body != GoalBody {
		t.Errorf("unexpected goal notification: %+v", fp.sent[0])
	}
}

func TestSchedulerToggleIsOneCall(t *testing.T) {
	ctx := context.Background()
	fp := newFakePlatform(PermissionGranted)
	store := kv.NewMemory()
	rs := NewReminderScheduler(NewService(fp), store, nil)

	reminders := models.DefaultReminders()
	if err := rs.Rebuild(ctx, reminders); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if len(fp.scheduled) != 4 {
		t.Fatalf("scheduled %d, want 4", len(fp.scheduled))
	}

	before := fp.mutations()
	reminders[1].Enabled = false
	if err := rs.Apply(ctx, reminders[1], reminders); err != nil {
		t.Fatalf("Apply disable failed: %v", err)
	}
	if got := fp.mutations() - before; got != 1 {
		t.Errorf("disable made %d platform calls, want 1", got)
	}
	if len(fp.scheduled) != 3 {
		t.Errorf("scheduled %d after disable, want 3", len(fp.scheduled))
	}

	before = fp.mutations()
	reminders[1].Enabled = true
	if err := rs.Apply(ctx, reminders[1], reminders); err != nil {
		t.Fatalf("Apply enable failed: %v", err)
	}
	if got := fp.mutations() - before; got != 1 {
		t.Errorf("enable made %d platform calls, want 1", got)
	}

	before = fp.mutations()
	if err := rs.Apply(ctx, reminders[1], reminders); err != nil {
		t.Fatalf("Apply no-op failed: %v", err)
	}
	if got := fp.mutations() - before; got != 0 {
		t.Errorf("unchanged reminder made %d platform calls", got)
	}

	handles, err := rs.Handles(ctx)
	if err != nil {
		t.Fatalf("Handles failed: %v", err)
	}
	if len(handles) != 4 {
		t.Errorf("handles = %v, want 4 entries", handles)
	}
}

func TestSchedulerRebuildsWhenCancelFails(t *testing.T) {
	ctx := context.Background()
	fp := newFakePlatform(PermissionGranted)
	rs := NewReminderScheduler(NewService(fp), kv.NewMemory(), nil)

	reminders := models.DefaultReminders()
	rs.Rebuild(ctx, reminders)

	fp.cancelErr = errors.New("stale handle")
	reminders[0].Enabled = false
	if err := rs.Apply(ctx, reminders[0], reminders); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if fp.cancelAlls != 2 {
		t.Errorf("cancelAll calls = %d, want 2 (initial + recovery)", fp.cancelAlls)
	}
	if len(fp.scheduled) != 3 {
		t.Errorf("scheduled after recovery = %d, want 3", len(fp.scheduled))
	}
	handles, _ := rs.Handles(ctx)
	if _, ok := handles["1"]; ok {
		t.Error("disabled reminder still has a handle")
	}
}

func TestSchedulerSync(t *testing.T) {
	ctx := context.Background()
	fp := newFakePlatform(PermissionGranted)
	rs := NewReminderScheduler(NewService(fp), kv.NewMemory(), nil)

	reminders := models.DefaultReminders()
	calls, err := rs.Sync(ctx, reminders)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if calls != 4 {
		t.Errorf("first sync calls = %d, want 4", calls)
	}

	calls, _ = rs.Sync(ctx, reminders)
	if calls != 0 {
		t.Errorf("second sync calls = %d, want 0", calls)
	}

	// reminder 4 removed, reminder 3 disabled
	reminders = reminders[:3]
	reminders[2].Enabled = false
	calls, _ = rs.Sync(ctx, reminders)
	if calls != 2 {
		t.Errorf("pruning sync calls = %d, want 2", calls)
	}
	if len(fp.scheduled) != 2 {
		t.Errorf("scheduled = %d, want 2", len(fp.scheduled))
	}
}

func TestSchedulerClear(t *testing.T) {
	ctx := context.Background()
	fp := newFakePlatform(PermissionGranted)
	store := kv.NewMemory()
	rs := NewReminderScheduler(NewService(fp), store, nil)

	rs.Rebuild(ctx, models.DefaultReminders())
	if err := rs.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if len(fp.scheduled) != 0 {
		t.Errorf("scheduled after clear = %d", len(fp.scheduled))
	}
	if _, err := store.Get(ctx, keyHandles); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("handles key survived clear: %v", err)
	}
}
