package app

import (
	"context"
	"fmt"
	"log/slog"

	"daily-meal-planner/internal/logfields"
	"daily-meal-planner/internal/reminder"
	"daily-meal-planner/internal/storage"
)

// SaveSettings persists the reminder settings and rebuilds the schedule.
// It returns the number of armed reminders.
func (a *App) SaveSettings(ctx context.Context, s reminder.Settings) (int, error) {
	if err := s.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := storage.Save(ctx, a.deps.Store, storage.KeyNotificationSettings, s); err != nil {
		return 0, err
	}
	a.state.Settings = s
	return a.reschedule(ctx), nil
}

// SetRemindersEnabled flips the master switch. Turning it on asks the
// notifier for permission when none was given yet; if permission ends up
// anything but granted the settings stay disabled. It returns the
// permission in effect.
func (a *App) SetRemindersEnabled(ctx context.Context, enabled bool) (reminder.Permission, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	perm := a.deps.Notifier.Permission(ctx)
	if enabled && perm == reminder.PermissionDefault {
		p, err := a.deps.Notifier.RequestPermission(ctx)
		if err != nil {
			slog.Warn("Notification permission request failed", logfields.Error(err))
		}
		perm = p
	}
	if err := a.setPermission(ctx, perm); err != nil {
		return perm, err
	}

	if enabled && perm != reminder.PermissionGranted {
		slog.Info("Reminders stay off without permission", slog.String("permission", string(perm)))
		return perm, nil
	}

	s := a.state.Settings
	s.Enabled = enabled
	if err := storage.Save(ctx, a.deps.Store, storage.KeyNotificationSettings, s); err != nil {
		return perm, err
	}
	a.state.Settings = s
	a.reschedule(ctx)
	return perm, nil
}

// Armed returns the reminders currently armed.
func (a *App) Armed() []reminder.Timer {
	return a.deps.Reminders.Armed()
}

func (a *App) setPermission(ctx context.Context, p reminder.Permission) error {
	if p == a.state.Permission {
		return nil
	}
	if err := storage.Save(ctx, a.deps.Store, storage.KeyNotificationPermission, string(p)); err != nil {
		return err
	}
	a.state.Permission = p
	return nil
}

// reschedule must be called with a.mu held (or before the App is shared).
func (a *App) reschedule(ctx context.Context) int {
	n := a.deps.Reminders.Reschedule(ctx, a.state.Settings)
	if a.deps.Observer != nil {
		a.deps.Observer.SetArmedReminders(n)
	}
	slog.Info("Reminders rescheduled", slog.Int("armed", n), slog.Bool("enabled", a.state.Settings.Enabled))
	return n
}
