package storage

import (
	"context"
	"fmt"

	"github.com/marcus/sip/internal/models"
)

// LoadReminders returns the stored reminder list
func (s *Service) LoadReminders(ctx context.Context) ([]models.WaterReminder, error) {
	reminders, err := s.loadReminders(ctx)
	s.metrics.StoreOp("get_reminders", err)
	return reminders, err
}

func (s *Service) loadReminders(ctx context.Context) ([]models.WaterReminder, error) {
	var reminders []models.WaterReminder
	if _, err := s.getJSON(ctx, keyReminders, &reminders); err != nil {
		return nil, fmt.Errorf("get reminders: %w", err)
	}
	if reminders == nil {
		reminders = []models.WaterReminder{}
	}
	return reminders, nil
}

// Reminders is LoadReminders with failures logged and reported as empty
func (s *Service) Reminders(ctx context.Context) []models.WaterReminder {
	reminders, err := s.LoadReminders(ctx)
	if err != nil {
		s.log.Warn("get reminders", "err", err)
		return []models.WaterReminder{}
	}
	return reminders
}

// SaveReminders replaces the whole stored list
func (s *Service) SaveReminders(ctx context.Context, reminders []models.WaterReminder) error {
	err := s.saveReminders(ctx, reminders)
	s.metrics.StoreOp("save_reminders", err)
	if err != nil {
		s.log.Warn("save reminders", "count", len(reminders), "err", err)
		return err
	}
	s.log.Info("reminders saved", "count", len(reminders))
	return nil
}

func (s *Service) saveReminders(ctx context.Context, reminders []models.WaterReminder) error {
	for _, r := range reminders {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("reminder %s: %w", r.ID, err)
		}
	}
	if reminders == nil {
		reminders = []models.WaterReminder{}
	}
	return s.update(ctx, keyReminders, func() error {
		return s.setJSON(ctx, keyReminders, reminders)
	})
}

// EnsureDefaultReminders seeds models.DefaultReminders when no reminders are
// stored. seeded reports whether the defaults were written.
func (s *Service) EnsureDefaultReminders(ctx context.Context) (reminders []models.WaterReminder, seeded bool, err error) {
	err = s.update(ctx, keyReminders, func() error {
		existing, err := s.loadReminders(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			reminders = existing
			return nil
		}
		reminders = models.DefaultReminders()
		seeded = true
		return s.setJSON(ctx, keyReminders, reminders)
	})
	s.metrics.StoreOp("seed_reminders", err)
	if err != nil {
		s.log.Warn("seed default reminders", "err", err)
		return nil, false, err
	}
	if seeded {
		s.log.Info("default reminders created", "count", len(reminders))
	}
	return reminders, seeded, nil
}

// ToggleReminder flips the enabled flag of reminder id and saves the list.
// The updated reminder is returned.
func (s *Service) ToggleReminder(ctx context.Context, id string) (models.WaterReminder, error) {
	var toggled models.WaterReminder
	err := s.update(ctx, keyReminders, func() error {
		reminders, err := s.loadReminders(ctx)
		if err != nil {
			return err
		}
		found := false
		for i := range reminders {
			if reminders[i].ID == id {
				reminders[i].Enabled = !reminders[i].Enabled
				toggled = reminders[i]
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrReminderNotFound, id)
		}
		return s.setJSON(ctx, keyReminders, reminders)
	})
	s.metrics.StoreOp("toggle_reminder", err)
	if err != nil {
		s.log.Warn("toggle reminder", "id", id, "err", err)
		return models.WaterReminder{}, err
	}
	s.log.Info("reminder toggled", "id", id, "enabled", toggled.Enabled)
	return toggled, nil
}
