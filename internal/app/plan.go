package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"daily-meal-planner/internal/logfields"
	"daily-meal-planner/internal/nutrition"
	"daily-meal-planner/internal/plancache"
	"daily-meal-planner/internal/planner"
	"daily-meal-planner/internal/recipe"
	"daily-meal-planner/internal/storage"
)

// GeneratePlan requests a new plan for prefs and stores it as today's plan.
// The preferences are remembered even when generation fails; on failure the
// current plan and completed meals are left untouched.
func (a *App) GeneratePlan(ctx context.Context, prefs planner.UserPreferences) (*planner.MealPlan, error) {
	if a.deps.Planner == nil {
		return nil, fmt.Errorf("%w: plan generation", ErrUnavailable)
	}
	if err := prefs.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	a.mu.Lock()
	err := storage.Save(ctx, a.deps.Store, storage.KeyCurrentPreferences, prefs)
	if err == nil {
		p := prefs
		a.state.Preferences = &p
	}
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}

	slog.Info("Generating meal plan",
		slog.String("diet", string(prefs.DietType)),
		slog.Int("calorie_goal", prefs.CalorieGoal),
		slog.String("preference", string(prefs.Preference)))

	plan, meta, err := a.deps.Planner.GeneratePlan(ctx, prefs)
	a.recordMeta(ctx, meta)
	if err != nil {
		slog.Error("Meal plan generation failed", logfields.Error(err))
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	date, err := a.cache.Store(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to store meal plan: %w", err)
	}
	a.state.Plan = plan
	a.state.PlanDate = date
	a.state.Completed = []string{}

	slog.Info("Stored meal plan", logfields.PlanDate(date), logfields.DurationMS(float64(meta.Latency.Milliseconds())))
	return plan, nil
}

// ToggleCompleted marks a recipe of today's plan as eaten, or unmarks it.
// It returns the new completed set.
func (a *App) ToggleCompleted(ctx context.Context, id string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.evictStaleLocked(ctx); err != nil {
		return nil, err
	}
	if a.state.Plan == nil {
		return nil, ErrNoPlan
	}
	if _, ok := a.state.Plan.Recipe(id); !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, id)
	}

	next := plancache.Toggle(a.state.Completed, id)
	if err := a.cache.SaveCompleted(ctx, next); err != nil {
		return nil, err
	}
	a.state.Completed = next
	return slices.Clone(next), nil
}

// ToggleFavorite adds the recipe with id to the favorites or removes it.
// The recipe is looked up in today's plan first, then in the favorites.
// It reports whether the recipe is now a favorite.
func (a *App) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.evictStaleLocked(ctx); err != nil {
		return false, err
	}
	r, ok := a.state.Plan.Recipe(id)
	if !ok {
		idx := slices.IndexFunc(a.state.Favorites, func(f recipe.Recipe) bool { return f.ID == id })
		if idx < 0 {
			return false, fmt.Errorf("%w: %s", ErrRecipeNotFound, id)
		}
		r = a.state.Favorites[idx]
	}

	next := recipe.ToggleFavorite(a.state.Favorites, r)
	if err := storage.Save(ctx, a.deps.Store, storage.KeyFavorites, next); err != nil {
		return false, err
	}
	a.state.Favorites = next
	return recipe.IsFavorite(next, id), nil
}

// ClipFavorite imports a recipe from url and adds it to the favorites.
func (a *App) ClipFavorite(ctx context.Context, url string) (recipe.Recipe, error) {
	if a.deps.Clipper == nil {
		return recipe.Recipe{}, fmt.Errorf("%w: recipe clipping", ErrUnavailable)
	}

	r, meta, err := a.deps.Clipper.ClipURL(ctx, url)
	a.recordMeta(ctx, meta)
	if err != nil {
		return recipe.Recipe{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if recipe.IsFavorite(a.state.Favorites, r.ID) {
		return r, nil
	}
	next := append(slices.Clone(a.state.Favorites), r)
	if err := storage.Save(ctx, a.deps.Store, storage.KeyFavorites, next); err != nil {
		return recipe.Recipe{}, err
	}
	a.state.Favorites = next
	slog.Info("Clipped recipe into favorites", logfields.RecipeID(r.ID))
	return r, nil
}

// ConsumedStats sums the completed meals of today's plan.
func (a *App) ConsumedStats() nutrition.Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return nutrition.ConsumedStats(a.planLocked())
}

// Summary compares the consumed calories with the current goal, falling back
// to the default goal when no preferences were saved.
func (a *App) Summary() nutrition.Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	goal := planner.DefaultCalorieGoal
	if a.state.Preferences != nil && a.state.Preferences.CalorieGoal > 0 {
		goal = a.state.Preferences.CalorieGoal
	}
	return nutrition.Summarize(nutrition.ConsumedStats(a.planLocked()), float64(goal))
}

// GroceryList returns the de-duplicated ingredients of today's plan.
func (a *App) GroceryList() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	plan, _ := a.planLocked()
	return nutrition.GroceryList(plan)
}

// SharePlan sends today's plan and grocery list through the configured sharer.
func (a *App) SharePlan(ctx context.Context) error {
	if a.deps.Sharer == nil {
		return ErrSharingDisabled
	}
	a.mu.Lock()
	err := a.evictStaleLocked(ctx)
	plan := a.state.Plan
	groceries := nutrition.GroceryList(plan)
	a.mu.Unlock()

	if err != nil {
		return err
	}
	if plan == nil {
		return ErrNoPlan
	}
	return a.deps.Sharer.SharePlan(ctx, plan, groceries)
}
