package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

// Runner drives Scheduler.Tick from a gocron duration job.
type Runner struct {
	scheduler gocron.Scheduler
	reminders *Scheduler
	tick      time.Duration
}

// NewRunner creates a runner ticking every tick on clock.
func NewRunner(reminders *Scheduler, clock clockwork.Clock, tick time.Duration) (*Runner, error) {
	if tick <= 0 {
		tick = DefaultTick
	}
	s, err := gocron.NewScheduler(gocron.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Runner{scheduler: s, reminders: reminders, tick: tick}, nil
}

// Start registers the tick job and starts the scheduler. The first tick runs
// immediately.
func (r *Runner) Start(ctx context.Context) error {
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.tick),
		gocron.NewTask(func() {
			if fired := r.reminders.Tick(ctx); len(fired) > 0 {
				slog.Debug("Reminder tick delivered", slog.Int("count", len(fired)))
			}
		}),
		gocron.WithName("reminder-tick"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder tick job: %w", err)
	}

	slog.Info("Starting reminder scheduler", slog.Duration("tick", r.tick))
	r.scheduler.Start()
	return nil
}

// Stop shuts the scheduler down and waits for a running tick to finish.
func (r *Runner) Stop() error {
	slog.Info("Stopping reminder scheduler")
	return r.scheduler.Shutdown()
}
