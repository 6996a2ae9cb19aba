// Package reminder arms and fires the daily meal and weigh-in reminders.
//
// Armed timers live only in memory. Every settings change and every process
// start rebuilds them from scratch with Reschedule; a periodic Tick fires
// whatever is due and re-arms it for the next day.
package reminder

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"daily-meal-planner/internal/logfields"

	"github.com/jonboulle/clockwork"
)

// DefaultTick is how often armed timers are evaluated.
const DefaultTick = 30 * time.Second

// Timer is one armed reminder.
type Timer struct {
	Kind Kind      `json:"kind"`
	At   TimeOfDay `json:"-"`
	Time string    `json:"time"`
	Next time.Time `json:"next"`
}

// FiredFunc observes every delivery attempt.
type FiredFunc func(kind Kind, err error)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithGrace sets how late a due timer may still fire. Older timers are
// skipped and re-armed for their next occurrence.
func WithGrace(d time.Duration) Option {
	return func(s *Scheduler) { s.grace = d }
}

// WithLocation sets the zone reminder times are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithFired registers an observer for deliveries.
func WithFired(fn FiredFunc) Option {
	return func(s *Scheduler) { s.fired = fn }
}

// Scheduler owns the armed timers. Reschedule and Tick are serialized, so a
// Tick never fires a timer from a generation that Reschedule has replaced.
type Scheduler struct {
	mu       sync.Mutex
	notifier Notifier
	clock    clockwork.Clock
	loc      *time.Location
	grace    time.Duration
	fired    FiredFunc
	timers   []Timer
}

// NewScheduler creates a Scheduler with nothing armed.
func NewScheduler(n Notifier, clock clockwork.Clock, opts ...Option) *Scheduler {
	s := &Scheduler{
		notifier: n,
		clock:    clock,
		loc:      time.Local,
		grace:    2 * DefaultTick,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reschedule cancels every armed timer and arms one per configured kind.
// Nothing is armed when reminders are disabled or permission is not granted.
// Kinds with an empty or malformed time are skipped. It returns the number of
// armed timers.
func (s *Scheduler) Reschedule(ctx context.Context, settings Settings) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timers = nil

	if !settings.Enabled {
		slog.Debug("Reminders disabled; nothing armed")
		return 0
	}
	if p := s.notifier.Permission(ctx); p != PermissionGranted {
		slog.Debug("Notification permission not granted; nothing armed", slog.String("permission", string(p)))
		return 0
	}

	now := s.clock.Now().In(s.loc)
	for _, kind := range Kinds {
		hhmm, on := settings.Time(kind)
		if !on || hhmm == "" {
			continue
		}
		tod, err := ParseTimeOfDay(hhmm)
		if err != nil {
			slog.Warn("Skipping reminder with malformed time", logfields.Reminder(string(kind)), logfields.Error(err))
			continue
		}
		next := NextOccurrence(now, tod)
		s.timers = append(s.timers, Timer{Kind: kind, At: tod, Time: tod.String(), Next: next})
		slog.Debug("Armed reminder", logfields.Reminder(string(kind)), logfields.DueAt(next.Format(time.RFC3339)))
	}
	return len(s.timers)
}

// Cancel disarms every timer.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers = nil
}

// Tick fires every timer that is due and re-arms it for its next occurrence.
// A timer overdue by more than the grace window is re-armed without firing.
// It returns the kinds that were delivered.
func (s *Scheduler) Tick(ctx context.Context) []Kind {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().In(s.loc)
	var delivered []Kind
	for i := range s.timers {
		t := &s.timers[i]
		if now.Before(t.Next) {
			continue
		}

		if late := now.Sub(t.Next); late > s.grace {
			slog.Info("Skipping missed reminder",
				logfields.Reminder(string(t.Kind)),
				logfields.DueAt(t.Next.Format(time.RFC3339)),
				slog.Duration("late", late))
		} else {
			err := s.notifier.Notify(ctx, t.Kind, t.Kind.Message())
			if err != nil {
				slog.Error("Failed to deliver reminder", logfields.Reminder(string(t.Kind)), logfields.Error(err))
			} else {
				delivered = append(delivered, t.Kind)
			}
			if s.fired != nil {
				s.fired(t.Kind, err)
			}
		}

		t.Next = NextOccurrence(now, t.At)
	}
	return delivered
}

// Armed returns a copy of the armed timers in arming order.
func (s *Scheduler) Armed() []Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.timers)
}
