// Package plancache keeps the generated meal plan valid for exactly one local
// calendar day. A plan stored on one day is evicted, together with its
// completed-meal set, the first time it is loaded on any later day.
package plancache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"daily-meal-planner/internal/logfields"
	"daily-meal-planner/internal/planner"
	"daily-meal-planner/internal/storage"

	"github.com/jonboulle/clockwork"
)

// DateLayout is the YYYY-MM-DD form of a plan date.
const DateLayout = "2006-01-02"

// IsValid reports whether a plan stored for storedDate may be shown on today.
func IsValid(storedDate, today string) bool {
	return storedDate != "" && storedDate == today
}

// Today returns the calendar day of now in loc.
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DateLayout)
}

// UntilReset returns the time left before the next midnight in loc.
func UntilReset(now time.Time, loc *time.Location) time.Duration {
	local := now.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc).Sub(local)
}

// Toggle adds id to completed when absent and removes it when present.
// The input slice is not modified.
func Toggle(completed []string, id string) []string {
	out := make([]string, 0, len(completed)+1)
	found := false
	for _, c := range completed {
		if c == id {
			found = true
			continue
		}
		out = append(out, c)
	}
	if !found {
		out = append(out, id)
	}
	return out
}

// Cache reads and writes the plan, plan date and completed-meal keys.
type Cache struct {
	store storage.Store
	clock clockwork.Clock
	loc   *time.Location
}

// New creates a Cache. A nil loc means time.Local.
func New(store storage.Store, clock clockwork.Clock, loc *time.Location) *Cache {
	if loc == nil {
		loc = time.Local
	}
	return &Cache{store: store, clock: clock, loc: loc}
}

// Today returns the current plan date.
func (c *Cache) Today() string {
	return Today(c.clock.Now(), c.loc)
}

// UntilReset returns the time left before today's plan expires.
func (c *Cache) UntilReset() time.Duration {
	return UntilReset(c.clock.Now(), c.loc)
}

// Load returns the stored plan and its completed meals when the plan belongs
// to today. Otherwise all plan state is removed and (nil, empty) is returned.
func (c *Cache) Load(ctx context.Context) (*planner.MealPlan, []string, error) {
	today := c.Today()

	stored, err := storage.Load[string](ctx, c.store, storage.KeyMealPlanDate)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Warn("Ignoring unreadable plan date", logfields.Key(storage.KeyMealPlanDate), logfields.Error(err))
		stored = ""
	}

	if !IsValid(stored, today) {
		if stored != "" {
			slog.Info("Evicting stale meal plan", logfields.PlanDate(stored), slog.String("today", today))
		}
		return nil, []string{}, c.Clear(ctx)
	}

	plan, err := storage.Load[*planner.MealPlan](ctx, c.store, storage.KeyMealPlan)
	if err != nil || plan == nil {
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Ignoring unreadable meal plan", logfields.Key(storage.KeyMealPlan), logfields.Error(err))
		}
		return nil, []string{}, c.Clear(ctx)
	}

	completed, err := storage.Load[[]string](ctx, c.store, storage.KeyCompletedMeals)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Ignoring unreadable completed meals", logfields.Key(storage.KeyCompletedMeals), logfields.Error(err))
		}
		completed = []string{}
	}
	if completed == nil {
		completed = []string{}
	}

	return plan, completed, nil
}

// Store saves plan as today's plan and resets the completed meals in one
// write, so a failure leaves the previous plan state intact.
// It returns the plan date recorded.
func (c *Cache) Store(ctx context.Context, plan *planner.MealPlan) (string, error) {
	if plan == nil {
		return "", fmt.Errorf("cannot store a nil meal plan")
	}
	today := c.Today()
	err := storage.SaveAll(ctx, c.store,
		storage.Entry{Key: storage.KeyMealPlan, Value: plan},
		storage.Entry{Key: storage.KeyCompletedMeals, Value: []string{}},
		storage.Entry{Key: storage.KeyMealPlanDate, Value: today},
	)
	if err != nil {
		return "", err
	}
	return today, nil
}

// ToggleCompleted flips id in the stored completed-meal set and returns the new set.
func (c *Cache) ToggleCompleted(ctx context.Context, id string) ([]string, error) {
	completed, err := storage.Load[[]string](ctx, c.store, storage.KeyCompletedMeals)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Warn("Ignoring unreadable completed meals", logfields.Key(storage.KeyCompletedMeals), logfields.Error(err))
	}
	next := Toggle(completed, id)
	if err := c.SaveCompleted(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// SaveCompleted persists the completed-meal set.
func (c *Cache) SaveCompleted(ctx context.Context, completed []string) error {
	return storage.Save(ctx, c.store, storage.KeyCompletedMeals, completed)
}

// Clear removes every plan key.
func (c *Cache) Clear(ctx context.Context) error {
	return storage.RemoveAll(ctx, c.store, storage.KeyMealPlan, storage.KeyCompletedMeals, storage.KeyMealPlanDate)
}
