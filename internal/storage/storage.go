// Package storage persists intake events, daily goals and reminders over a
// kv.Store, partitioned by calendar day, and derives daily progress from them.
//
// Every read comes in two forms: a Load* method returning an explicit error,
// and a default-substituting method that logs the failure and returns the
// safe default (empty list, default goal) for callers that only render state.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/marcus/sip/internal/dateparse"
	"github.com/marcus/sip/internal/kv"
	"github.com/marcus/sip/internal/metrics"
	"github.com/marcus/sip/internal/models"
)

var (
	// ErrInvalidAmount is returned for a non-positive intake or goal amount
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrDateMismatch is returned when an intake's date is not the day of its timestamp
	ErrDateMismatch = errors.New("intake date does not match its timestamp")
	// ErrReminderNotFound is returned when toggling an unknown reminder id
	ErrReminderNotFound = errors.New("reminder not found")
	// ErrCorruptRecord is returned when a stored value cannot be decoded or is out of range
	ErrCorruptRecord = errors.New("corrupt record")
)

// Service is the hydration store
type Service struct {
	store   kv.Store
	log     *slog.Logger
	metrics *metrics.Metrics
	loc     *time.Location
	now     func() time.Time
	newID   func() string
	locks   *keyedMutex
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger used for degraded reads and write failures
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics records operation counters
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLocation sets the timezone that defines calendar days
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithClock overrides time.Now (tests)
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides intake id generation (tests)
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// New creates a Service over store
func New(store kv.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		loc:   time.Local,
		now:   time.Now,
		newID: uuid.NewString,
		locks: newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current calendar day key
func (s *Service) Today() string {
	return models.DayKey(s.now(), s.loc)
}

// Location returns the timezone defining calendar days
func (s *Service) Location() *time.Location {
	return s.loc
}

// update runs fn with exclusive access to key: in-process via the keyed
// mutex, across processes when the store is a kv.Locker.
func (s *Service) update(ctx context.Context, key string, fn func() error) error {
	unlock := s.locks.Lock(key)
	defer unlock()

	if locker, ok := s.store.(kv.Locker); ok {
		return locker.WithLock(ctx, fn)
	}
	return fn()
}

// getJSON decodes key into v. found is false when the key is absent.
func (s *Service) getJSON(ctx context.Context, key string, v any) (found bool, err error) {
	data, err := s.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w: %w", key, ErrCorruptRecord, err)
	}
	return true, nil
}

func (s *Service) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.store.Set(ctx, key, data)
}

// LoadIntake returns every intake logged for date, in insertion order
func (s *Service) LoadIntake(ctx context.Context, date string) ([]models.WaterIntake, error) {
	intakes, err := s.loadIntake(ctx, date)
	s.metrics.StoreOp("get_intake", err)
	return intakes, err
}

func (s *Service) loadIntake(ctx context.Context, date string) ([]models.WaterIntake, error) {
	if _, err := models.ParseDay(date); err != nil {
		return nil, err
	}
	var intakes []models.WaterIntake
	if _, err := s.getJSON(ctx, intakeKey(date), &intakes); err != nil {
		return nil, fmt.Errorf("get water intake %s: %w", date, err)
	}
	if intakes == nil {
		intakes = []models.WaterIntake{}
	}
	return intakes, nil
}

// IntakeForDate is LoadIntake with failures logged and reported as empty
func (s *Service) IntakeForDate(ctx context.Context, date string) []models.WaterIntake {
	intakes, err := s.LoadIntake(ctx, date)
	if err != nil {
		s.log.Warn("get water intake", "date", date, "err", err)
		return []models.WaterIntake{}
	}
	return intakes
}

// AddIntake appends intake to its day. An empty ID is generated, a zero
// Timestamp is set to now and an empty Date is derived from the Timestamp.
// The stored record is returned.
func (s *Service) AddIntake(ctx context.Context, intake models.WaterIntake) (models.WaterIntake, error) {
	stored, _, err := s.AddIntakeTotal(ctx, intake)
	return stored, err
}

// AddIntakeTotal is AddIntake that also returns the day's total before the
// add, read under the same lock as the write. Concurrent adds therefore see
// distinct before totals and at most one of them crosses the goal.
func (s *Service) AddIntakeTotal(ctx context.Context, intake models.WaterIntake) (stored models.WaterIntake, before int, err error) {
	stored, before, err = s.addIntake(ctx, intake)
	s.metrics.StoreOp("add_intake", err)
	if err != nil {
		s.log.Warn("add water intake", "amount", intake.Amount, "date", intake.Date, "err", err)
		return models.WaterIntake{}, 0, err
	}
	s.log.Info("water intake added", "id", stored.ID, "amount", stored.Amount, "date", stored.Date)
	return stored, before, nil
}

func (s *Service) addIntake(ctx context.Context, intake models.WaterIntake) (models.WaterIntake, int, error) {
	if intake.Amount <= 0 {
		return models.WaterIntake{}, 0, fmt.Errorf("%w: %d", ErrInvalidAmount, intake.Amount)
	}
	if intake.Timestamp.IsZero() {
		intake.Timestamp = s.now()
	}
	day := models.DayKey(intake.Timestamp, s.loc)
	if intake.Date == "" {
		intake.Date = day
	} else if _, err := models.ParseDay(intake.Date); err != nil {
		return models.WaterIntake{}, 0, err
	} else if intake.Date != day {
		return models.WaterIntake{}, 0, fmt.Errorf("%w: date %s, timestamp day %s", ErrDateMismatch, intake.Date, day)
	}
	if intake.ID == "" {
		intake.ID = s.newID()
	}

	before := 0
	err := s.update(ctx, intakeKey(intake.Date), func() error {
		existing, err := s.loadIntake(ctx, intake.Date)
		if err != nil {
			return err
		}
		before = models.TotalIntake(existing)
		return s.setJSON(ctx, intakeKey(intake.Date), append(existing, intake))
	})
	if err != nil {
		return models.WaterIntake{}, 0, err
	}
	return intake, before, nil
}

// RemoveIntake deletes the intake with id from date. Removing an unknown id
// is not an error; removed reports whether anything changed.
func (s *Service) RemoveIntake(ctx context.Context, id, date string) (removed bool, err error) {
	err = s.update(ctx, intakeKey(date), func() error {
		existing, err := s.loadIntake(ctx, date)
		if err != nil {
			return err
		}
		kept := make([]models.WaterIntake, 0, len(existing))
		for _, in := range existing {
			if in.ID == id {
				removed = true
				continue
			}
			kept = append(kept, in)
		}
		if !removed {
			return nil
		}
		return s.setJSON(ctx, intakeKey(date), kept)
	})
	s.metrics.StoreOp("remove_intake", err)
	if err != nil {
		s.log.Warn("remove water intake", "id", id, "date", date, "err", err)
		return false, err
	}
	if removed {
		s.log.Info("water intake removed", "id", id, "date", date)
	}
	return removed, nil
}

// LoadDailyGoal returns the goal stored for date, or models.DefaultDailyGoal
// when none is stored. A stored non-positive goal is ErrCorruptRecord.
func (s *Service) LoadDailyGoal(ctx context.Context, date string) (int, error) {
	goal, err := s.loadDailyGoal(ctx, date)
	s.metrics.StoreOp("get_goal", err)
	return goal, err
}

func (s *Service) loadDailyGoal(ctx context.Context, date string) (int, error) {
	if _, err := models.ParseDay(date); err != nil {
		return models.DefaultDailyGoal, err
	}
	var goal models.DailyGoal
	found, err := s.getJSON(ctx, goalKey(date), &goal)
	if err != nil {
		return models.DefaultDailyGoal, fmt.Errorf("get daily goal %s: %w", date, err)
	}
	if !found {
		return models.DefaultDailyGoal, nil
	}
	if goal.Amount <= 0 {
		return models.DefaultDailyGoal, fmt.Errorf("%w: stored goal %d for %s", ErrCorruptRecord, goal.Amount, date)
	}
	return goal.Amount, nil
}

// DailyGoal is LoadDailyGoal with failures logged and reported as the default
func (s *Service) DailyGoal(ctx context.Context, date string) int {
	goal, err := s.LoadDailyGoal(ctx, date)
	if err != nil {
		s.log.Warn("get daily goal", "date", date, "err", err)
		return models.DefaultDailyGoal
	}
	return goal
}

// SetDailyGoal stores amount as the goal of record for date
func (s *Service) SetDailyGoal(ctx context.Context, date string, amount int) error {
	err := s.setDailyGoal(ctx, date, amount)
	s.metrics.StoreOp("set_goal", err)
	if err != nil {
		s.log.Warn("set daily goal", "date", date, "amount", amount, "err", err)
		return err
	}
	s.log.Info("daily goal set", "date", date, "amount", amount)
	return nil
}

func (s *Service) setDailyGoal(ctx context.Context, date string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	if _, err := models.ParseDay(date); err != nil {
		return err
	}
	return s.update(ctx, goalKey(date), func() error {
		return s.setJSON(ctx, goalKey(date), models.DailyGoal{Amount: amount, Date: date})
	})
}

// LoadWeeklyProgress returns one entry per day from start to end inclusive,
// ascending. A reversed range yields an empty slice.
func (s *Service) LoadWeeklyProgress(ctx context.Context, start, end string) ([]models.WeeklyProgress, error) {
	progress, err := s.loadWeeklyProgress(ctx, start, end)
	s.metrics.StoreOp("weekly_progress", err)
	return progress, err
}

func (s *Service) loadWeeklyProgress(ctx context.Context, start, end string) ([]models.WeeklyProgress, error) {
	days, err := models.DaysBetween(start, end)
	if err != nil {
		return nil, err
	}

	progress := make([]models.WeeklyProgress, 0, len(days))
	for _, day := range days {
		intakes, err := s.loadIntake(ctx, day)
		if err != nil {
			return nil, err
		}
		goal, err := s.loadDailyGoal(ctx, day)
		if err != nil {
			return nil, err
		}
		total := models.TotalIntake(intakes)
		progress = append(progress, models.WeeklyProgress{
			Date:        day,
			TotalIntake: total,
			GoalAmount:  goal,
			Percentage:  models.Percentage(total, goal),
		})
	}
	return progress, nil
}

// WeeklyProgress is LoadWeeklyProgress with failures logged and reported as empty
func (s *Service) WeeklyProgress(ctx context.Context, start, end string) []models.WeeklyProgress {
	progress, err := s.LoadWeeklyProgress(ctx, start, end)
	if err != nil {
		s.log.Warn("get weekly progress", "start", start, "end", end, "err", err)
		return []models.WeeklyProgress{}
	}
	return progress
}

// WeekProgress returns the Sunday-to-Saturday week containing today,
// shifted by offset weeks (0 = this week, -1 = last week).
func (s *Service) WeekProgress(ctx context.Context, offset int) ([]models.WeeklyProgress, error) {
	start, end := dateparse.WeekRange(s.now().In(s.loc), offset)
	return s.LoadWeeklyProgress(ctx, start, end)
}

// RecentSummary summarises the last days days plus today
func (s *Service) RecentSummary(ctx context.Context, days int) (models.Summary, error) {
	now := s.now().In(s.loc)
	start := models.DayKey(now.AddDate(0, 0, -days), s.loc)
	progress, err := s.LoadWeeklyProgress(ctx, start, models.DayKey(now, s.loc))
	if err != nil {
		return models.Summary{}, err
	}
	return models.Summarize(progress), nil
}

// ClearAllData deletes every key in the store's namespace. It keeps going
// past individual failures and returns them joined.
func (s *Service) ClearAllData(ctx context.Context) error {
	err := s.clearAllData(ctx)
	s.metrics.StoreOp("clear", err)
	if err != nil {
		s.log.Warn("clear data", "err", err)
		return err
	}
	s.log.Info("all water data cleared")
	return nil
}

func (s *Service) clearAllData(ctx context.Context) error {
	var keys []string
	for _, prefix := range []string{keyIntakePrefix, keyGoalPrefix} {
		found, err := s.store.Keys(ctx, prefix)
		if err != nil {
			return fmt.Errorf("list %s keys: %w", prefix, err)
		}
		keys = append(keys, found...)
	}
	keys = append(keys, keyReminders, keyWeeklyProgress)

	var errs []error
	for _, key := range keys {
		err := s.update(ctx, key, func() error {
			return s.store.Delete(ctx, key)
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
