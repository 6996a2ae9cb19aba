package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"daily-meal-planner/internal/profile"
	"daily-meal-planner/internal/scan"
)

type ProfileCmd struct {
	Show ProfileShowCmd `cmd:"" default:"1" help:"Show the profile"`
	Set  ProfileSetCmd  `cmd:"" help:"Update profile fields; unset flags keep their value"`
}

type ProfileShowCmd struct{}

func (c *ProfileShowCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	p := env.App.Snapshot().Profile
	if p == nil {
		fmt.Fprintln(g.out, "No profile saved.")
		return nil
	}
	printProfile(g, *p)
	return nil
}

type ProfileSetCmd struct {
	Name           *string  `help:"Name"`
	Age            *int     `help:"Age in years"`
	Gender         *string  `help:"Gender"`
	Height         *float64 `help:"Height in cm"`
	Weight         *float64 `help:"Current weight in kg"`
	GoalWeight     *float64 `name:"goal-weight" help:"Goal weight in kg"`
	ActivityLevel  *string  `name:"activity-level" help:"Activity level"`
	DietPreference *string  `name:"diet-preference" help:"Diet preference"`
}

// apply copies the flags that were given onto p.
func (c *ProfileSetCmd) apply(p profile.UserProfile) profile.UserProfile {
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Age != nil {
		p.Age = *c.Age
	}
	if c.Gender != nil {
		p.Gender = *c.Gender
	}
	if c.Height != nil {
		p.Height = *c.Height
	}
	if c.Weight != nil {
		p.Weight = *c.Weight
	}
	if c.GoalWeight != nil {
		p.GoalWeight = *c.GoalWeight
	}
	if c.ActivityLevel != nil {
		p.ActivityLevel = *c.ActivityLevel
	}
	if c.DietPreference != nil {
		p.DietPreference = *c.DietPreference
	}
	return p
}

func (c *ProfileSetCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	var current profile.UserProfile
	if p := env.App.Snapshot().Profile; p != nil {
		current = *p
	}
	updated := c.apply(current)
	if err := env.App.SaveProfile(g.ctx, updated); err != nil {
		return err
	}
	fmt.Fprintln(g.out, "Profile saved.")
	printProfile(g, *env.App.Snapshot().Profile)
	return nil
}

func printProfile(g *Global, p profile.UserProfile) {
	fmt.Fprintf(g.out, "Name:            %s\n", p.Name)
	fmt.Fprintf(g.out, "Age:             %d\n", p.Age)
	fmt.Fprintf(g.out, "Gender:          %s\n", p.Gender)
	fmt.Fprintf(g.out, "Height:          %g cm\n", p.Height)
	fmt.Fprintf(g.out, "Weight:          %g kg\n", p.Weight)
	fmt.Fprintf(g.out, "Goal weight:     %g kg\n", p.GoalWeight)
	fmt.Fprintf(g.out, "Activity level:  %s\n", p.ActivityLevel)
	fmt.Fprintf(g.out, "Diet preference: %s\n", p.DietPreference)
}

type WeightCmd struct {
	Log   WeightLogCmd   `cmd:"" help:"Log today's weight"`
	Chart WeightChartCmd `cmd:"" help:"Show the last seven weigh-ins"`
}

type WeightLogCmd struct {
	Kg float64 `arg:"" help:"Weight in kg"`
}

func (c *WeightLogCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.App.LogWeight(g.ctx, c.Kg); err != nil {
		return err
	}
	fmt.Fprintf(g.out, "Logged %g kg for %s.\n", c.Kg, env.App.Today())
	return nil
}

type WeightChartCmd struct{}

func (c *WeightChartCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	history := env.App.WeightHistory()
	trend := env.App.WeightTrend()
	if trend == nil {
		fmt.Fprintln(g.out, "Log at least two weigh-ins to see a trend.")
		return nil
	}
	if len(history) > len(trend.Points) {
		history = history[len(history)-len(trend.Points):]
	}
	for _, e := range history {
		fmt.Fprintf(g.out, "%s  %g kg\n", e.Date, e.Weight)
	}
	fmt.Fprintf(g.out, "Range %d-%d kg, %s to %s\n", trend.MinLabel, trend.MaxLabel, trend.StartLabel, trend.EndLabel)
	fmt.Fprintf(g.out, "Path: %s\n", trend.Path)
	return nil
}

type ScanCmd struct {
	Image string `arg:"" help:"Image file path or data URL"`
}

func (c *ScanCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	var res *scan.FoodAnalysis
	if strings.HasPrefix(c.Image, "data:") {
		res, err = env.App.AnalyzeFood(g.ctx, c.Image)
	} else {
		data, readErr := os.ReadFile(c.Image)
		if readErr != nil {
			return fmt.Errorf("failed to read image: %w", readErr)
		}
		res, err = env.App.AnalyzeImage(g.ctx, http.DetectContentType(data), data)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(g.out, "%s (%s)\n", res.Name, res.ServingSize)
	fmt.Fprintf(g.out, "%.0f kcal, P %.0f g, C %.0f g, F %.0f g\n", res.Calories, res.Protein, res.Carbs, res.Fat)
	return nil
}
