package reminder

import (
	"context"
	"log/slog"

	"daily-meal-planner/internal/logfields"
)

// Permission is the user's consent to receive notifications.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ParsePermission maps unknown values to PermissionDefault.
func ParsePermission(s string) Permission {
	switch p := Permission(s); p {
	case PermissionGranted, PermissionDenied:
		return p
	}
	return PermissionDefault
}

// Notifier delivers reminder messages to the user.
type Notifier interface {
	// Permission reports the current consent without prompting.
	Permission(ctx context.Context) Permission
	// RequestPermission asks for consent and returns the outcome.
	RequestPermission(ctx context.Context) (Permission, error)
	Notify(ctx context.Context, kind Kind, msg Message) error
}

// LogNotifier writes reminders to the structured log. It never needs consent.
type LogNotifier struct{}

func (LogNotifier) Permission(context.Context) Permission { return PermissionGranted }

func (LogNotifier) RequestPermission(context.Context) (Permission, error) {
	return PermissionGranted, nil
}

func (LogNotifier) Notify(_ context.Context, kind Kind, msg Message) error {
	slog.Info(msg.Title, logfields.Reminder(string(kind)), slog.String("body", msg.Body))
	return nil
}
