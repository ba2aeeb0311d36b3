package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/marcus/sip/internal/models"
)

func TestEnsureDefaultReminders(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	reminders, seeded, err := svc.EnsureDefaultReminders(ctx)
	if err != nil {
		t.Fatalf("EnsureDefaultReminders failed: %v", err)
	}
	if !seeded {
		t.Error("expected defaults to be seeded on an empty store")
	}
	if len(reminders) != 4 || reminders[0].Time != "08:00" || reminders[3].Time != "20:00" {
		t.Errorf("unexpected defaults: %+v", reminders)
	}

	if _, err := svc.ToggleReminder(ctx, "2"); err != nil {
		t.Fatalf("ToggleReminder failed: %v", err)
	}
	again, seeded, err := svc.EnsureDefaultReminders(ctx)
	if err != nil {
		t.Fatalf("second EnsureDefaultReminders failed: %v", err)
	}
	if seeded {
		t.Error("defaults re-seeded over an existing list")
	}
	if again[1].Enabled {
		t.Error("existing toggle state was overwritten")
	}
}

func TestToggleReminder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	if err := svc.SaveReminders(ctx, models.DefaultReminders()); err != nil {
		t.Fatalf("SaveReminders failed: %v", err)
	}

	r, err := svc.ToggleReminder(ctx, "3")
	if err != nil {
		t.Fatalf("ToggleReminder failed: %v", err)
	}
	if r.Enabled {
		t.Error("expected reminder 3 to be disabled")
	}
	stored := svc.Reminders(ctx)
	if stored[2].Enabled || !stored[0].Enabled {
		t.Errorf("stored state wrong: %+v", stored)
	}

	r, _ = svc.ToggleReminder(ctx, "3")
	if !r.Enabled {
		t.Error("second toggle should re-enable")
	}

	if _, err := svc.ToggleReminder(ctx, "99"); !errors.Is(err, ErrReminderNotFound) {
		t.Errorf("expected ErrReminderNotFound, got %v", err)
	}
}

func TestSaveRemindersValidates(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	err := svc.SaveReminders(ctx, []models.WaterReminder{{ID: "x", Time: "25:00", Enabled: true}})
	if !errors.Is(err, models.ErrInvalidClock) {
		t.Errorf("expected ErrInvalidClock, got %v", err)
	}
	if store.Len() != 0 {
		t.Error("invalid reminders were persisted")
	}

	if err := svc.SaveReminders(ctx, nil); err != nil {
		t.Fatalf("SaveReminders(nil) failed: %v", err)
	}
	if got, err := svc.LoadReminders(ctx); err != nil || got == nil || len(got) != 0 {
		t.Errorf("LoadReminders = %#v, %v", got, err)
	}
}

func TestKeyedMutexReleases(t *testing.T) {
	k := newKeyedMutex()
	unlockA := k.Lock("a")
	unlockB := k.Lock("b")
	if k.size() != 2 {
		t.Errorf("size = %d, want 2", k.size())
	}
	unlockA()
	unlockB()
	if k.size() != 0 {
		t.Errorf("size after unlock = %d, want 0", k.size())
	}
}
