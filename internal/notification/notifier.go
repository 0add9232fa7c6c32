// Package notification delivers fire-and-forget push notifications.
//
// Delivery is always best-effort: a failed send is logged and swallowed, it
// never fails the ledger operation that triggered it, and nothing is retried.
package notification

import (
	"context"
	"log/slog"
)

// Notifier sends a notification to a user's registered device.
type Notifier interface {
	Notify(ctx context.Context, userID, title, body string) error
}

// NotifyBestEffort sends through the notifier and swallows failures.
func NotifyBestEffort(ctx context.Context, n Notifier, userID, title, body string) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, userID, title, body); err != nil {
		slog.Warn("Notification failed", "user_id", userID, "title", title, "error", err)
	}
}

// LogNotifier logs notifications instead of sending them. Default for
// deployments without a push gateway.
type LogNotifier struct{}

// Notify logs the notification.
func (LogNotifier) Notify(ctx context.Context, userID, title, body string) error {
	slog.Info("Notification", "user_id", userID, "title", title, "body", body)
	return nil
}
