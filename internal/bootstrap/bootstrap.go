// Package bootstrap wires configuration, storage, generation clients and
// notifiers into an app.App shared by the CLI and the server.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"daily-meal-planner/internal/app"
	"daily-meal-planner/internal/clipper"
	"daily-meal-planner/internal/config"
	"daily-meal-planner/internal/database"
	"daily-meal-planner/internal/llm"
	"daily-meal-planner/internal/logfields"
	"daily-meal-planner/internal/metrics"
	"daily-meal-planner/internal/planner"
	"daily-meal-planner/internal/reminder"
	"daily-meal-planner/internal/scan"
	"daily-meal-planner/internal/storage"
	"daily-meal-planner/internal/telegram"

	"github.com/jonboulle/clockwork"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Env holds everything built for one process.
type Env struct {
	Config    *config.Config
	Clock     clockwork.Clock
	DB        *database.DB
	Metrics   *metrics.Store
	Registry  *prom.Registry
	Recorder  *metrics.PrometheusRecorder
	Telegram  *telegram.Notifier
	Reminders *reminder.Scheduler
	App       *app.App

	gemini *llm.GeminiClient
}

// Open builds the environment. A missing Gemini key is not an error: the
// features that need the service report app.ErrUnavailable instead.
// Recipe clipping prefers Groq when GROQ_API_KEY is set.
func Open(ctx context.Context, cfg *config.Config) (*Env, error) {
	env := &Env{
		Config:   cfg,
		Clock:    clockwork.NewRealClock(),
		Registry: prom.NewRegistry(),
	}
	env.Recorder = metrics.NewPrometheusRecorder(env.Registry)

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	env.DB = db
	env.Metrics = metrics.NewStore(db.SQL)

	deps := app.Deps{
		Store:    storage.NewSQLiteStore(db.SQL),
		Clock:    env.Clock,
		Location: cfg.Location,
		Metrics:  env.Metrics,
		Observer: env.Recorder,
	}

	switch gemini, err := llm.NewGeminiClient(ctx, cfg); {
	case errors.Is(err, config.ErrMissingGeminiKey):
		slog.Warn("GEMINI_API_KEY not set, generation features are disabled")
	case err != nil:
		env.Close()
		return nil, err
	default:
		env.gemini = gemini
		deps.Planner = planner.NewGenerator(gemini)
		deps.Analyzer = scan.NewAnalyzer(gemini)
		deps.Clipper = clipper.NewClipper(gemini)
	}
	if cfg.GroqAPIKey != "" {
		deps.Clipper = clipper.NewClipper(llm.NewGroqClient(cfg))
	}

	var notifier reminder.Notifier = reminder.LogNotifier{}
	if cfg.TelegramEnabled() {
		tg, err := telegram.NewNotifier(cfg)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.Telegram = tg
		notifier = tg
		deps.Sharer = tg
	}
	deps.Notifier = notifier

	env.Reminders = reminder.NewScheduler(notifier, env.Clock,
		reminder.WithLocation(cfg.Location),
		reminder.WithGrace(2*cfg.ReminderTick),
		reminder.WithFired(func(kind reminder.Kind, err error) {
			env.Recorder.IncReminder(string(kind), err)
		}),
	)
	deps.Reminders = env.Reminders

	a, err := app.New(ctx, deps)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.App = a
	return env, nil
}

// Close cancels armed reminders and releases the clients.
func (e *Env) Close() {
	if e.Reminders != nil {
		e.Reminders.Cancel()
	}
	if e.gemini != nil {
		if err := e.gemini.Close(); err != nil {
			slog.Warn("Failed to close Gemini client", logfields.Error(err))
		}
	}
	if e.DB != nil {
		if err := e.DB.Close(); err != nil {
			slog.Warn("Failed to close database", logfields.Error(err))
		}
	}
}
