package main

import (
	"fmt"
	"time"

	"daily-meal-planner/internal/database"
	"daily-meal-planner/internal/httpapi"
	"daily-meal-planner/internal/metrics"
	"daily-meal-planner/internal/telegram"
)

type UsageCmd struct {
	Days int  `default:"7" help:"Number of days to report"`
	Send bool `help:"Send the report to the Telegram chat instead of printing it"`
}

func (c *UsageCmd) Run(g *Global) error {
	db, err := database.NewDB(g.cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	usage, err := metrics.NewStore(db.SQL).GetDailyUsage(g.ctx, c.Days)
	if err != nil {
		return err
	}
	report := telegram.FormatUsageReport(usage, metrics.ReadSysHealth(g.cfg.DatabasePath))

	if !c.Send {
		fmt.Fprintln(g.out, report)
		return nil
	}
	tg, err := telegram.NewNotifier(g.cfg)
	if err != nil {
		return err
	}
	if err := tg.SendText(g.ctx, report); err != nil {
		return err
	}
	fmt.Fprintln(g.out, "Usage report sent.")
	return nil
}

type TokenCmd struct {
	Subject string        `default:"cli" help:"Token subject"`
	TTL     time.Duration `default:"720h" help:"Token lifetime"`
}

func (c *TokenCmd) Run(g *Global) error {
	token, err := httpapi.IssueToken(g.cfg.JWTSecret, c.Subject, c.TTL, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(g.out, token)
	return nil
}

type MetricsCleanupCmd struct {
	Days int `default:"30" help:"Keep records for the last N days"`
}

func (c *MetricsCleanupCmd) Run(g *Global) error {
	db, err := database.NewDB(g.cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	affected, err := metrics.NewStore(db.SQL).Cleanup(g.ctx, c.Days)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out, "Successfully removed %d old metric records.\n", affected)
	return nil
}
