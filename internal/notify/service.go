package notify

import (
	"context"
	"io"
	"log/slog"

	"github.com/marcus/sip/internal/metrics"
	"github.com/marcus/sip/internal/models"
)

// Notification text
const (
	ReminderTitle       = "💧 Time to Hydrate!"
	DefaultReminderBody = "Don't forget to drink some water!"
	GoalTitle           = "🎉 Goal Achieved!"
	GoalBody            = "Congratulations! You've reached your daily water intake goal!"
	ProgressTitle       = "💧 Hydration Progress"
)

// Metric kinds
const (
	kindPermission = "permission"
	kindReminder   = "reminder"
	kindGoal       = "goal"
	kindProgress   = "progress"
	kindCancel     = "cancel"
)

// ProgressMessage returns the progress nudge for percentage. ok is false at
// or above 100, where nothing should be sent.
func ProgressMessage(percentage float64) (msg string, ok bool) {
	switch {
	case percentage < 25:
		return "You're just getting started! Keep drinking water throughout the day.", true
	case percentage < 50:
		return "You're 25% there! Keep up the good hydration habits.", true
	case percentage < 75:
		return "Halfway to your goal! You're doing great with your water intake.", true
	case percentage < 100:
		return "Almost there! Just a little more water to reach your daily goal.", true
	}
	return "", false
}

// Service wraps a Platform with permission gating. Platform failures are
// logged and reported as false, never returned.
type Service struct {
	platform Platform
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithServiceLogger sets the logger
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = l }
}

// WithServiceMetrics records notification counters
func WithServiceMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a Service over platform
func NewService(platform Platform, opts ...ServiceOption) *Service {
	s := &Service{
		platform: platform,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestPermissions reports whether notifications are allowed, asking the
// platform when the user has not granted them yet.
func (s *Service) RequestPermissions(ctx context.Context) bool {
	status, err := s.platform.PermissionStatus(ctx)
	if err != nil {
		s.log.Warn("notification permission status", "err", err)
		s.metrics.Notification(kindPermission, metrics.OutcomeError)
		return false
	}
	if status != PermissionGranted {
		status, err = s.platform.RequestPermission(ctx)
		if err != nil {
			s.log.Warn("request notification permission", "err", err)
			s.metrics.Notification(kindPermission, metrics.OutcomeError)
			return false
		}
	}
	if status != PermissionGranted {
		s.log.Debug("notification permission not granted", "status", status)
		s.metrics.Notification(kindPermission, metrics.OutcomeSkipped)
		return false
	}
	return true
}

// ScheduleWaterReminder schedules r as a daily notification at r.Time.
// ok is false when permission is missing, the time is invalid or the
// platform refuses.
func (s *Service) ScheduleWaterReminder(ctx context.Context, r models.WaterReminder) (Handle, bool) {
	if !s.RequestPermissions(ctx) {
		s.metrics.Notification(kindReminder, metrics.OutcomeSkipped)
		return "", false
	}
	hour, minute, err := models.ParseClock(r.Time)
	if err != nil {
		s.log.Warn("schedule reminder", "id", r.ID, "err", err)
		s.metrics.Notification(kindReminder, metrics.OutcomeError)
		return "", false
	}
	body := r.Message
	if body == "" {
		body = DefaultReminderBody
	}
	h, err := s.platform.Schedule(ctx, Request{
		Title: ReminderTitle,
		Body:  body,
		Daily: &DailyTrigger{Hour: hour, Minute: minute},
		Data:  map[string]string{"reminderId": r.ID},
	})
	if err != nil {
		s.log.Warn("schedule reminder", "id", r.ID, "err", err)
		s.metrics.Notification(kindReminder, metrics.OutcomeError)
		return "", false
	}
	s.log.Info("reminder scheduled", "id", r.ID, "time", r.Time, "handle", h)
	s.metrics.Notification(kindReminder, metrics.OutcomeOK)
	return h, true
}

// CancelReminder cancels one scheduled notification
func (s *Service) CancelReminder(ctx context.Context, h Handle) error {
	err := s.platform.Cancel(ctx, h)
	if err != nil {
		s.log.Warn("cancel reminder", "handle", h, "err", err)
		s.metrics.Notification(kindCancel, metrics.OutcomeError)
		return err
	}
	s.metrics.Notification(kindCancel, metrics.OutcomeOK)
	return nil
}

// CancelAllReminders cancels every scheduled notification
func (s *Service) CancelAllReminders(ctx context.Context) error {
	err := s.platform.CancelAll(ctx)
	if err != nil {
		s.log.Warn("cancel all reminders", "err", err)
		s.metrics.Notification(kindCancel, metrics.OutcomeError)
		return err
	}
	s.metrics.Notification(kindCancel, metrics.OutcomeOK)
	return nil
}

// ScheduleGoalAchievedNotification delivers the goal notification now
func (s *Service) ScheduleGoalAchievedNotification(ctx context.Context) bool {
	return s.immediate(ctx, kindGoal, Request{
		Title: GoalTitle,
		Body:  GoalBody,
		Data:  map[string]string{"type": "goal_achieved"},
	})
}

// ScheduleProgressReminder delivers the progress nudge for percentage now.
// Nothing is sent at or above 100.
func (s *Service) ScheduleProgressReminder(ctx context.Context, percentage float64) bool {
	msg, ok := ProgressMessage(percentage)
	if !ok {
		s.metrics.Notification(kindProgress, metrics.OutcomeSkipped)
		return false
	}
	return s.immediate(ctx, kindProgress, Request{
		Title: ProgressTitle,
		Body:  msg,
		Data:  map[string]string{"type": "progress_reminder"},
	})
}

func (s *Service) immediate(ctx context.Context, kind string, req Request) bool {
	if !s.RequestPermissions(ctx) {
		s.metrics.Notification(kind, metrics.OutcomeSkipped)
		return false
	}
	if _, err := s.platform.Schedule(ctx, req); err != nil {
		s.log.Warn("send notification", "kind", kind, "err", err)
		s.metrics.Notification(kind, metrics.OutcomeError)
		return false
	}
	s.metrics.Notification(kind, metrics.OutcomeOK)
	return true
}
