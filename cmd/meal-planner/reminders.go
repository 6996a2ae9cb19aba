package main

import (
	"fmt"
	"time"

	"daily-meal-planner/internal/bootstrap"
	"daily-meal-planner/internal/reminder"
)

type RemindersCmd struct {
	Show    RemindersShowCmd    `cmd:"" default:"1" help:"Show reminder settings and armed reminders"`
	Set     RemindersSetCmd     `cmd:"" help:"Change the time of one reminder"`
	Weight  RemindersWeightCmd  `cmd:"" help:"Switch the daily weigh-in reminder on or off"`
	Enable  RemindersEnableCmd  `cmd:"" help:"Turn reminders on, asking the notifier for permission"`
	Disable RemindersDisableCmd `cmd:"" help:"Turn all reminders off"`
}

type RemindersShowCmd struct{}

func (c *RemindersShowCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	printReminders(g, env)
	return nil
}

type RemindersSetCmd struct {
	Kind string `arg:"" enum:"breakfast,lunch,dinner,snacks,weight" help:"Reminder kind (${enum})"`
	Time string `arg:"" help:"Local time as HH:mm"`
}

func (c *RemindersSetCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	settings := env.App.Snapshot().Settings
	if err := settings.SetTime(reminder.Kind(c.Kind), c.Time); err != nil {
		return err
	}
	if _, err := env.App.SaveSettings(g.ctx, settings); err != nil {
		return err
	}
	printReminders(g, env)
	return nil
}

type RemindersWeightCmd struct {
	State string `arg:"" enum:"on,off" help:"on or off"`
}

func (c *RemindersWeightCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	settings := env.App.Snapshot().Settings
	settings.WeightReminder.Enabled = c.State == "on"
	if _, err := env.App.SaveSettings(g.ctx, settings); err != nil {
		return err
	}
	printReminders(g, env)
	return nil
}

type RemindersEnableCmd struct{}

func (c *RemindersEnableCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	perm, err := env.App.SetRemindersEnabled(g.ctx, true)
	if err != nil {
		return err
	}
	if perm != reminder.PermissionGranted {
		fmt.Fprintf(g.out, "Notification permission is %s; reminders stay off.\n", perm)
		return nil
	}
	printReminders(g, env)
	return nil
}

type RemindersDisableCmd struct{}

func (c *RemindersDisableCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	if _, err := env.App.SetRemindersEnabled(g.ctx, false); err != nil {
		return err
	}
	fmt.Fprintln(g.out, "Reminders disabled.")
	return nil
}

func printReminders(g *Global, env *bootstrap.Env) {
	state := env.App.Snapshot()
	s := state.Settings

	onOff := map[bool]string{true: "on", false: "off"}
	fmt.Fprintf(g.out, "Reminders: %s (permission: %s)\n", onOff[s.Enabled], state.Permission)
	for _, k := range reminder.Kinds {
		hhmm, on := s.Time(k)
		fmt.Fprintf(g.out, "  %-9s %s %s\n", k, hhmm, onOff[on])
	}

	armed := env.App.Armed()
	if len(armed) == 0 {
		return
	}
	fmt.Fprintln(g.out, "Next reminders:")
	for _, t := range armed {
		fmt.Fprintf(g.out, "  %-9s %s\n", t.Kind, t.Next.In(g.cfg.Location).Format(time.DateTime))
	}
}
