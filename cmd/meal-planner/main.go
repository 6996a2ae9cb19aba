package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"daily-meal-planner/internal/bootstrap"
	"daily-meal-planner/internal/config"

	"github.com/alecthomas/kong"
)

// Global is passed to every command's Run method.
type Global struct {
	ctx context.Context
	cfg *config.Config
	out io.Writer
}

func (g *Global) open() (*bootstrap.Env, error) {
	return bootstrap.Open(g.ctx, g.cfg)
}

// CLI is the command tree.
type CLI struct {
	Verbose bool `short:"v" help:"Enable verbose logging"`

	Generate  GenerateCmd  `cmd:"" help:"Generate today's meal plan"`
	Show      ShowCmd      `cmd:"" help:"Show today's meal plan"`
	Complete  CompleteCmd  `cmd:"" help:"Mark a meal of today's plan as eaten, or unmark it"`
	Favorite  FavoriteCmd  `cmd:"" help:"Add a recipe to the favorites, or remove it"`
	Favorites FavoritesCmd `cmd:"" help:"List favorite recipes"`
	Clip      ClipCmd      `cmd:"" help:"Import a recipe page into the favorites"`
	Grocery   GroceryCmd   `cmd:"" help:"Show the grocery list for today's plan"`
	Stats     StatsCmd     `cmd:"" help:"Show consumed macros against the calorie goal"`
	Share     ShareCmd     `cmd:"" help:"Send today's plan and grocery list to Telegram"`
	Scan      ScanCmd      `cmd:"" help:"Estimate the nutrition of a food photo"`
	Profile   ProfileCmd   `cmd:"" help:"Show or update the profile"`
	Weight    WeightCmd    `cmd:"" help:"Log weight and show the weekly trend"`
	Reminders RemindersCmd `cmd:"" help:"Manage meal and weigh-in reminders"`
	Usage     UsageCmd     `cmd:"" help:"Show generation service usage"`
	Token     TokenCmd     `cmd:"" help:"Issue an API bearer token"`

	MetricsCleanup MetricsCleanupCmd `cmd:"" name:"metrics-cleanup" help:"Remove old metric records"`
}

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("meal-planner"),
		kong.Description("Plan today's meals, track what you ate and get reminded."),
		kong.UsageOnError(),
	)

	level := cfg.LogLevel
	if cli.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = kctx.Run(&Global{ctx: ctx, cfg: cfg, out: os.Stdout})
	kctx.FatalIfErrorf(err)
}
