// Package notify delivers reminders. The scheduler only sees the Notifier
// port; delivery can go to a message queue for an external notification
// daemon, or fall back to plain log output.
package notify

import (
	"context"
	"log/slog"
)

// Notifier is the reminder delivery port.
type Notifier interface {
	Deliver(ctx context.Context, title, body string) error
}

// LogNotifier writes the reminder to the log. It is the always-available
// fallback when no delivery transport is configured.
type LogNotifier struct{}

func (LogNotifier) Deliver(ctx context.Context, title, body string) error {
	slog.WarnContext(ctx, "Reminder", "title", title, "body", body)
	return nil
}
