package main

import (
	"fmt"
	"io"
	"slices"
	"time"

	"daily-meal-planner/internal/planner"
	"daily-meal-planner/internal/recipe"
)

type GenerateCmd struct {
	Diet       string `short:"d" enum:"Anything,Keto,Vegan,Paleo" default:"Anything" help:"Diet type (${enum})"`
	Calories   int    `short:"c" default:"2000" help:"Daily calorie goal"`
	Preference string `short:"p" enum:"Anything,Vegetarian,Non-Vegetarian" default:"Anything" help:"Meat preference (${enum})"`
}

func (c *GenerateCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	prefs := planner.UserPreferences{
		DietType:    planner.DietType(c.Diet),
		CalorieGoal: c.Calories,
		Preference:  planner.Preference(c.Preference),
	}
	fmt.Fprintln(g.out, "Generating today's meal plan...")
	plan, err := env.App.GeneratePlan(g.ctx, prefs)
	if err != nil {
		return err
	}
	printPlan(g.out, env.App.Today(), plan, nil, env.App.UntilReset())
	return nil
}

type ShowCmd struct{}

func (c *ShowCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	state := env.App.Snapshot()
	if state.Plan == nil {
		fmt.Fprintln(g.out, "No meal plan for today. Run 'meal-planner generate' to create one.")
		return nil
	}
	printPlan(g.out, state.PlanDate, state.Plan, state.Completed, env.App.UntilReset())
	return nil
}

type CompleteCmd struct {
	ID string `arg:"" help:"Recipe ID"`
}

func (c *CompleteCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	completed, err := env.App.ToggleCompleted(g.ctx, c.ID)
	if err != nil {
		return err
	}
	if slices.Contains(completed, c.ID) {
		fmt.Fprintf(g.out, "Marked %s as eaten.\n", c.ID)
	} else {
		fmt.Fprintf(g.out, "Unmarked %s.\n", c.ID)
	}
	summary := env.App.Summary()
	fmt.Fprintf(g.out, "%.0f / %.0f kcal (%s)\n", summary.Consumed.Calories, summary.CalorieGoal, summary.Status)
	return nil
}

type FavoriteCmd struct {
	ID string `arg:"" help:"Recipe ID from today's plan or the favorites"`
}

func (c *FavoriteCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	on, err := env.App.ToggleFavorite(g.ctx, c.ID)
	if err != nil {
		return err
	}
	if on {
		fmt.Fprintf(g.out, "Added %s to favorites.\n", c.ID)
	} else {
		fmt.Fprintf(g.out, "Removed %s from favorites.\n", c.ID)
	}
	return nil
}

type FavoritesCmd struct{}

func (c *FavoritesCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	favorites := env.App.Snapshot().Favorites
	if len(favorites) == 0 {
		fmt.Fprintln(g.out, "No favorites yet.")
		return nil
	}
	for _, r := range favorites {
		printRecipe(g.out, r)
	}
	return nil
}

type ClipCmd struct {
	URL string `arg:"" help:"Recipe page URL"`
}

func (c *ClipCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	r, err := env.App.ClipFavorite(g.ctx, c.URL)
	if err != nil {
		return err
	}
	fmt.Fprintln(g.out, "Saved to favorites:")
	printRecipe(g.out, r)
	return nil
}

type GroceryCmd struct{}

func (c *GroceryCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	items := env.App.GroceryList()
	if len(items) == 0 {
		fmt.Fprintln(g.out, "Nothing to buy. Generate a plan first.")
		return nil
	}
	for _, item := range items {
		fmt.Fprintf(g.out, "- %s\n", item)
	}
	return nil
}

type StatsCmd struct{}

func (c *StatsCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	s := env.App.Summary()
	fmt.Fprintf(g.out, "Calories: %.0f / %.0f (%s)\n", s.Consumed.Calories, s.CalorieGoal, s.Status)
	fmt.Fprintf(g.out, "Protein:  %.0f g\n", s.Consumed.Protein)
	fmt.Fprintf(g.out, "Carbs:    %.0f g\n", s.Consumed.Carbs)
	fmt.Fprintf(g.out, "Fat:      %.0f g\n", s.Consumed.Fat)
	return nil
}

type ShareCmd struct{}

func (c *ShareCmd) Run(g *Global) error {
	env, err := g.open()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.App.SharePlan(g.ctx); err != nil {
		return err
	}
	fmt.Fprintln(g.out, "Plan sent.")
	return nil
}

func printPlan(w io.Writer, date string, plan *planner.MealPlan, completed []string, resetsIn time.Duration) {
	fmt.Fprintf(w, "Meal plan for %s (%.0f kcal, resets in %s)\n", date, plan.TotalCalories, resetsIn.Truncate(time.Minute))
	slots := []struct {
		name string
		r    recipe.Recipe
	}{
		{"Breakfast", plan.DailyPlan.Breakfast},
		{"Lunch", plan.DailyPlan.Lunch},
		{"Dinner", plan.DailyPlan.Dinner},
		{"Snacks", plan.DailyPlan.Snacks},
	}
	for _, s := range slots {
		mark := " "
		if slices.Contains(completed, s.r.ID) {
			mark = "x"
		}
		fmt.Fprintf(w, "[%s] %-9s %s (%.0f kcal) id=%s\n", mark, s.name, s.r.Name, s.r.Calories, s.r.ID)
	}
}

func printRecipe(w io.Writer, r recipe.Recipe) {
	fmt.Fprintf(w, "%s  %s (%.0f kcal, P %.0f g, C %.0f g, F %.0f g)\n", r.ID, r.Name, r.Calories, r.Protein, r.Carbs, r.Fat)
}
