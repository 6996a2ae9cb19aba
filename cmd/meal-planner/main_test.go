package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-meal-planner/internal/config"
	"daily-meal-planner/internal/planner"
	"daily-meal-planner/internal/profile"
	"daily-meal-planner/internal/recipe"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("meal-planner"), kong.Exit(func(int) {}))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	return &cli, kctx, err
}

func TestParse(t *testing.T) {
	cli, kctx, err := parse(t, "generate", "--diet", "Keto", "--calories", "1800")
	require.NoError(t, err)
	assert.Equal(t, "generate", kctx.Command())
	assert.Equal(t, "Keto", cli.Generate.Diet)
	assert.Equal(t, 1800, cli.Generate.Calories)
	assert.Equal(t, "Anything", cli.Generate.Preference)

	cli, _, err = parse(t, "reminders", "set", "weight", "07:30")
	require.NoError(t, err)
	assert.Equal(t, "weight", cli.Reminders.Set.Kind)
	assert.Equal(t, "07:30", cli.Reminders.Set.Time)

	cli, _, err = parse(t, "profile", "set", "--name", "Sam", "--weight", "80.5")
	require.NoError(t, err)
	require.NotNil(t, cli.Profile.Set.Name)
	assert.Nil(t, cli.Profile.Set.Age)
	assert.Equal(t, 80.5, *cli.Profile.Set.Weight)

	_, _, err = parse(t, "generate", "--diet", "Carnivore")
	assert.Error(t, err)

	_, _, err = parse(t, "reminders", "set", "brunch", "10:00")
	assert.Error(t, err)
}

func TestProfileSetApply(t *testing.T) {
	name := "Sam"
	weight := 79.0
	cmd := ProfileSetCmd{Name: &name, Weight: &weight}
	got := cmd.apply(profile.UserProfile{Name: "Alex", Age: 30, Weight: 82})
	assert.Equal(t, "Sam", got.Name)
	assert.Equal(t, 79.0, got.Weight)
	assert.Equal(t, 30, got.Age, "unset flags keep their value")
}

func TestPrintPlan(t *testing.T) {
	mk := func(id string, kcal float64) recipe.Recipe { return recipe.Recipe{ID: id, Name: id, Calories: kcal} }
	plan := &planner.MealPlan{
		DailyPlan:     planner.DailyPlan{Breakfast: mk("oats", 400), Lunch: mk("salad", 500), Dinner: mk("salmon", 700), Snacks: mk("apple", 100)},
		TotalCalories: 1700,
	}
	var buf bytes.Buffer
	printPlan(&buf, "2025-03-01", plan, []string{"salad"}, 3*time.Hour+25*time.Minute+10*time.Second)

	out := buf.String()
	assert.Contains(t, out, "Meal plan for 2025-03-01 (1700 kcal, resets in 3h25m0s)")
	assert.Contains(t, out, "[x] Lunch     salad (500 kcal) id=salad")
	assert.Contains(t, out, "[ ] Dinner    salmon (700 kcal) id=salmon")
}

func TestCommands_EndToEnd(t *testing.T) {
	var buf bytes.Buffer
	g := &Global{
		ctx: context.Background(),
		cfg: &config.Config{
			DatabasePath: filepath.Join(t.TempDir(), "meal-planner.db"),
			Location:     time.UTC,
			ReminderTick: 30 * time.Second,
			JWTSecret:    "secret",
		},
		out: &buf,
	}

	require.NoError(t, (&ShowCmd{}).Run(g))
	assert.Contains(t, buf.String(), "No meal plan for today")

	buf.Reset()
	require.NoError(t, (&WeightLogCmd{Kg: 81}).Run(g))
	require.NoError(t, (&WeightChartCmd{}).Run(g))
	assert.Contains(t, buf.String(), "Log at least two weigh-ins")

	buf.Reset()
	require.NoError(t, (&RemindersEnableCmd{}).Run(g))
	assert.Contains(t, buf.String(), "Reminders: on (permission: granted)")
	assert.Contains(t, buf.String(), "Next reminders:")

	buf.Reset()
	require.NoError(t, (&RemindersSetCmd{Kind: "dinner", Time: "19:15"}).Run(g))
	assert.Contains(t, buf.String(), "dinner    19:15 on")
	assert.Error(t, (&RemindersSetCmd{Kind: "dinner", Time: "7pm"}).Run(g))

	buf.Reset()
	require.NoError(t, (&TokenCmd{Subject: "cli", TTL: time.Hour}).Run(g))
	assert.NotEmpty(t, buf.String())

	assert.Error(t, (&GenerateCmd{Diet: "Anything", Calories: 2000, Preference: "Anything"}).Run(g))
	assert.Error(t, (&ShareCmd{}).Run(g))
}
