package storage

// Key space of the hydration store. Everything the service writes lives
// under one of these names.
const (
	keyIntakePrefix = "water_intake_"
	keyGoalPrefix   = "daily_goals_"
	keyReminders    = "water_reminders"
	// keyWeeklyProgress is never written; older installs may still carry it
	// and ClearAllData sweeps it.
	keyWeeklyProgress = "weekly_progress"
)

func intakeKey(date string) string { return keyIntakePrefix + date }

func goalKey(date string) string { return keyGoalPrefix + date }
