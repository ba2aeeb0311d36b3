// Package notify schedules hydration notifications through a Platform and
// keeps reminder schedules in step with the stored reminder list.
package notify

import (
	"context"
	"fmt"
)

// Handle identifies a scheduled notification on a Platform
type Handle string

// PermissionStatus is the platform's notification permission state
type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"
)

// DailyTrigger fires every day at Hour:Minute local time
type DailyTrigger struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t DailyTrigger) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Request describes one notification. A nil Daily trigger means deliver now.
type Request struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Daily *DailyTrigger     `json:"daily,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// Platform is the notification capability of the host
type Platform interface {
	PermissionStatus(ctx context.Context) (PermissionStatus, error)
	RequestPermission(ctx context.Context) (PermissionStatus, error)
	Schedule(ctx context.Context, req Request) (Handle, error)
	// Cancel removes a scheduled notification. Unknown handles are not an error.
	Cancel(ctx context.Context, h Handle) error
	CancelAll(ctx context.Context) error
}
