package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"daily-meal-planner/internal/bootstrap"
	"daily-meal-planner/internal/config"
	"daily-meal-planner/internal/httpapi"
	"daily-meal-planner/internal/logfields"
	"daily-meal-planner/internal/metrics"
	"daily-meal-planner/internal/reminder"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		slog.Error("Failed to load config", logfields.Error(err))
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Wire storage, generation clients and the app
	env, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize", logfields.Error(err))
		os.Exit(1)
	}
	defer env.Close()

	// 3. Start the reminder tick
	runner, err := reminder.NewRunner(env.Reminders, env.Clock, cfg.ReminderTick)
	if err != nil {
		slog.Error("Failed to create reminder runner", logfields.Error(err))
		os.Exit(1)
	}
	if err := runner.Start(ctx); err != nil {
		slog.Error("Failed to start reminder runner", logfields.Error(err))
		os.Exit(1)
	}

	// 4. Start Server with Graceful Shutdown
	if cfg.JWTSecret == "" {
		slog.Warn("API_JWT_SECRET not set, the API is unauthenticated")
	}
	api := httpapi.NewServer(cfg, env.App, env.Metrics, metrics.HTTPHandler(env.Registry))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Meal planner API listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", logfields.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		slog.Error("Server forced to shutdown", logfields.Error(err))
	}
	if err := runner.Stop(); err != nil {
		slog.Warn("Failed to stop reminder runner", logfields.Error(err))
	}

	slog.Info("Server exiting")
}
