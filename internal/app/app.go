package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"daily-meal-planner/internal/logfields"
	"daily-meal-planner/internal/plancache"
	"daily-meal-planner/internal/planner"
	"daily-meal-planner/internal/profile"
	"daily-meal-planner/internal/recipe"
	"daily-meal-planner/internal/reminder"
	"daily-meal-planner/internal/scan"
	"daily-meal-planner/internal/shared"
	"daily-meal-planner/internal/storage"

	"github.com/jonboulle/clockwork"
)

var (
	ErrNoPlan          = errors.New("no meal plan for today")
	ErrRecipeNotFound  = errors.New("recipe not found")
	ErrInvalidWeight   = errors.New("weight must be positive")
	ErrSharingDisabled = errors.New("plan sharing is not configured")
	ErrUnavailable     = errors.New("feature not configured")
	ErrInvalidInput    = errors.New("invalid input")
)

// PlanGenerator produces a daily meal plan.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, prefs planner.UserPreferences) (*planner.MealPlan, shared.AgentMeta, error)
}

// FoodAnalyzer estimates nutrition from a photo.
type FoodAnalyzer interface {
	AnalyzeDataURL(ctx context.Context, dataURL string) (*scan.FoodAnalysis, shared.AgentMeta, error)
	AnalyzeImage(ctx context.Context, mimeType string, data []byte) (*scan.FoodAnalysis, shared.AgentMeta, error)
}

// RecipeClipper extracts a recipe from a web page.
type RecipeClipper interface {
	ClipURL(ctx context.Context, url string) (recipe.Recipe, shared.AgentMeta, error)
}

// MetaRecorder persists generation usage.
type MetaRecorder interface {
	RecordMeta(ctx context.Context, meta shared.AgentMeta) error
}

// Observer receives live counters.
type Observer interface {
	ObserveGeneration(meta shared.AgentMeta)
	SetArmedReminders(n int)
}

// PlanSharer pushes today's plan to an external channel.
type PlanSharer interface {
	SharePlan(ctx context.Context, plan *planner.MealPlan, groceries []string) error
}

// Deps holds the application's dependencies. Store, Notifier and Reminders
// are required; the rest may be nil.
type Deps struct {
	Store     storage.Store
	Clock     clockwork.Clock
	Location  *time.Location
	Notifier  reminder.Notifier
	Reminders *reminder.Scheduler

	Planner  PlanGenerator
	Analyzer FoodAnalyzer
	Clipper  RecipeClipper
	Metrics  MetaRecorder
	Observer Observer
	Sharer   PlanSharer
}

// State is everything the user sees. Plan and Completed belong to PlanDate.
type State struct {
	Profile       *profile.UserProfile     `json:"profile"`
	WeightHistory []profile.WeightEntry    `json:"weightHistory"`
	Favorites     []recipe.Recipe          `json:"favorites"`
	Preferences   *planner.UserPreferences `json:"preferences"`
	Settings      reminder.Settings        `json:"notificationSettings"`
	Permission    reminder.Permission      `json:"notificationPermission"`
	Plan          *planner.MealPlan        `json:"mealPlan"`
	PlanDate      string                   `json:"mealPlanDate"`
	Completed     []string                 `json:"completedMeals"`
}

// App owns the application state. All mutations are serialized; calls to the
// generation service run outside the lock and commit their result under it.
type App struct {
	deps  Deps
	cache *plancache.Cache

	mu    sync.Mutex
	state State
}

// New loads persisted state, evicts a plan that is not for today and arms
// the reminders. A plan that expires while the App is running is hidden from
// every read and evicted by the next write that touches it.
func New(ctx context.Context, deps Deps) (*App, error) {
	if deps.Store == nil || deps.Notifier == nil || deps.Reminders == nil {
		return nil, fmt.Errorf("app needs a store, a notifier and a reminder scheduler")
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}

	a := &App{
		deps:  deps,
		cache: plancache.New(deps.Store, deps.Clock, deps.Location),
	}

	plan, completed, err := a.cache.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to validate meal plan: %w", err)
	}
	a.state.Plan = plan
	a.state.Completed = completed
	if plan != nil {
		a.state.PlanDate = a.cache.Today()
	}

	a.state.Profile = loadOptional[*profile.UserProfile](ctx, deps.Store, storage.KeyUserProfile)
	a.state.WeightHistory = loadOptional[[]profile.WeightEntry](ctx, deps.Store, storage.KeyWeightHistory)
	a.state.Favorites = loadOptional[[]recipe.Recipe](ctx, deps.Store, storage.KeyFavorites)
	a.state.Preferences = loadOptional[*planner.UserPreferences](ctx, deps.Store, storage.KeyCurrentPreferences)

	a.state.Settings = reminder.DefaultSettings()
	if s := loadOptional[*reminder.Settings](ctx, deps.Store, storage.KeyNotificationSettings); s != nil {
		a.state.Settings = *s
	}

	a.state.Permission = reminder.ParsePermission(loadOptional[string](ctx, deps.Store, storage.KeyNotificationPermission))
	if a.state.Permission == reminder.PermissionGranted && deps.Notifier.Permission(ctx) == reminder.PermissionDefault {
		// A grant from an earlier run is re-verified against the current notifier.
		p, err := deps.Notifier.RequestPermission(ctx)
		if err != nil {
			slog.Warn("Failed to re-verify notification permission", logfields.Error(err))
		}
		if err := a.setPermission(ctx, p); err != nil {
			return nil, err
		}
	}

	a.reschedule(ctx)
	return a, nil
}

// loadOptional reads key, treating absent and unreadable values as the zero value.
func loadOptional[T any](ctx context.Context, s storage.Store, key string) T {
	v, err := storage.Load[T](ctx, s, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Ignoring unreadable stored value", logfields.Key(key), logfields.Error(err))
		}
		var zero T
		return zero
	}
	return v
}

// Snapshot returns a copy of the current state.
func (a *App) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.state
	s.Plan, s.Completed = a.planLocked()
	if s.Plan == nil {
		s.PlanDate = ""
	}
	if s.Profile != nil {
		p := *s.Profile
		s.Profile = &p
	}
	if s.Preferences != nil {
		p := *s.Preferences
		s.Preferences = &p
	}
	if s.Plan != nil {
		p := *s.Plan
		s.Plan = &p
	}
	s.WeightHistory = slices.Clone(s.WeightHistory)
	s.Favorites = slices.Clone(s.Favorites)
	s.Completed = slices.Clone(s.Completed)
	return s
}

// planLocked returns today's plan and completed meals, or nil and an empty
// set when the plan in memory belongs to an earlier day. a.mu must be held.
func (a *App) planLocked() (*planner.MealPlan, []string) {
	if a.state.Plan == nil || !plancache.IsValid(a.state.PlanDate, a.cache.Today()) {
		return nil, []string{}
	}
	return a.state.Plan, a.state.Completed
}

// evictStaleLocked removes a plan from an earlier day from memory and
// storage. a.mu must be held.
func (a *App) evictStaleLocked(ctx context.Context) error {
	if a.state.Plan == nil || plancache.IsValid(a.state.PlanDate, a.cache.Today()) {
		return nil
	}
	slog.Info("Evicting stale meal plan", logfields.PlanDate(a.state.PlanDate), slog.String("today", a.cache.Today()))
	if err := a.cache.Clear(ctx); err != nil {
		return fmt.Errorf("failed to evict meal plan: %w", err)
	}
	a.state.Plan = nil
	a.state.PlanDate = ""
	a.state.Completed = []string{}
	return nil
}

// Today returns the current plan date.
func (a *App) Today() string {
	return a.cache.Today()
}

// UntilReset returns the time left before today's plan expires.
func (a *App) UntilReset() time.Duration {
	return a.cache.UntilReset()
}

func (a *App) recordMeta(ctx context.Context, meta shared.AgentMeta) {
	if a.deps.Observer != nil {
		a.deps.Observer.ObserveGeneration(meta)
	}
	if a.deps.Metrics == nil {
		return
	}
	if err := a.deps.Metrics.RecordMeta(ctx, meta); err != nil {
		slog.Warn("Failed to record metrics", logfields.Agent(meta.AgentName), logfields.Error(err))
	}
}
