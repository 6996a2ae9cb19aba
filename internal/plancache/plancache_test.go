package plancache

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-meal-planner/internal/planner"
	"daily-meal-planner/internal/recipe"
	"daily-meal-planner/internal/storage"
)

func samplePlan() *planner.MealPlan {
	mk := func(id string) recipe.Recipe {
		return recipe.Recipe{ID: id, Name: id, Ingredients: []string{"x"}, Calories: 100}
	}
	return &planner.MealPlan{
		DailyPlan:     planner.DailyPlan{Breakfast: mk("b"), Lunch: mk("l"), Dinner: mk("d"), Snacks: mk("s")},
		TotalCalories: 400,
	}
}

// failingBatchStore rejects every batched write.
type failingBatchStore struct {
	*storage.MemoryStore
}

func (failingBatchStore) SetMany(context.Context, map[string][]byte) error {
	return errors.New("disk full")
}

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("2025-03-01", "2025-03-01"))
	assert.False(t, IsValid("2025-03-01", "2025-03-02"))
	assert.False(t, IsValid("", "2025-03-01"))
}

func TestToday_UsesLocalMidnight(t *testing.T) {
	tokyo := mustLoc(t, "Asia/Tokyo")
	// 2025-03-01 20:00 UTC is already 2025-03-02 05:00 in Tokyo.
	now := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-02", Today(now, tokyo))
	assert.Equal(t, "2025-03-01", Today(now, time.UTC))
}

func TestUntilReset(t *testing.T) {
	now := time.Date(2025, 3, 1, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, 90*time.Minute, UntilReset(now, time.UTC))
}

func TestToggle(t *testing.T) {
	in := []string{"a", "b"}
	assert.Equal(t, []string{"a", "b", "c"}, Toggle(in, "c"))
	assert.Equal(t, []string{"b"}, Toggle(in, "a"))
	assert.Equal(t, []string{"a", "b"}, in, "input must not change")
}

func TestCache(t *testing.T) {
	ctx := context.Background()

	t.Run("PlanFromYesterdayIsEvicted", func(t *testing.T) {
		store := storage.NewMemoryStore()
		clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
		c := New(store, clock, time.UTC)

		date, err := c.Store(ctx, samplePlan())
		require.NoError(t, err)
		assert.Equal(t, "2025-03-01", date)
		_, err = c.ToggleCompleted(ctx, "b")
		require.NoError(t, err)

		plan, completed, err := c.Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, plan)
		assert.Equal(t, []string{"b"}, completed)

		clock.Advance(24 * time.Hour)
		plan, completed, err = c.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, plan)
		assert.Empty(t, completed)

		assert.False(t, store.Has(storage.KeyMealPlan))
		assert.False(t, store.Has(storage.KeyCompletedMeals))
		assert.False(t, store.Has(storage.KeyMealPlanDate))
	})

	t.Run("StoreResetsCompleted", func(t *testing.T) {
		store := storage.NewMemoryStore()
		c := New(store, clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)), time.UTC)

		_, err := c.Store(ctx, samplePlan())
		require.NoError(t, err)
		_, err = c.ToggleCompleted(ctx, "b")
		require.NoError(t, err)
		_, err = c.ToggleCompleted(ctx, "l")
		require.NoError(t, err)

		_, err = c.Store(ctx, samplePlan())
		require.NoError(t, err)
		_, completed, err := c.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, completed)
	})

	t.Run("FailedStoreKeepsPreviousPlan", func(t *testing.T) {
		mem := storage.NewMemoryStore()
		clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
		first := New(mem, clock, time.UTC)
		_, err := first.Store(ctx, samplePlan())
		require.NoError(t, err)
		_, err = first.ToggleCompleted(ctx, "b")
		require.NoError(t, err)

		next := samplePlan()
		next.TotalCalories = 999
		c := New(failingBatchStore{mem}, clock, time.UTC)
		_, err = c.Store(ctx, next)
		require.Error(t, err)

		plan, completed, err := first.Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, plan)
		assert.Equal(t, 400.0, plan.TotalCalories)
		assert.Equal(t, []string{"b"}, completed)
	})

	t.Run("NothingStored", func(t *testing.T) {
		c := New(storage.NewMemoryStore(), clockwork.NewFakeClock(), time.UTC)
		plan, completed, err := c.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, plan)
		assert.NotNil(t, completed)
		assert.Empty(t, completed)
	})

	t.Run("UnreadablePlanTreatedAsAbsent", func(t *testing.T) {
		store := storage.NewMemoryStore()
		clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
		c := New(store, clock, time.UTC)
		require.NoError(t, storage.Save(ctx, store, storage.KeyMealPlanDate, "2025-03-01"))
		require.NoError(t, store.Set(ctx, storage.KeyMealPlan, []byte("{not json")))

		plan, _, err := c.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, plan)
		assert.False(t, store.Has(storage.KeyMealPlanDate))
	})

	t.Run("UnreadableCompletedTreatedAsEmpty", func(t *testing.T) {
		store := storage.NewMemoryStore()
		c := New(store, clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)), time.UTC)
		_, err := c.Store(ctx, samplePlan())
		require.NoError(t, err)
		require.NoError(t, store.Set(ctx, storage.KeyCompletedMeals, []byte("42")))

		plan, completed, err := c.Load(ctx)
		require.NoError(t, err)
		assert.NotNil(t, plan)
		assert.Empty(t, completed)
	})

	t.Run("RolloverFollowsLocation", func(t *testing.T) {
		store := storage.NewMemoryStore()
		tokyo := mustLoc(t, "Asia/Tokyo")
		// 23:30 in Tokyo.
		clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC))
		c := New(store, clock, tokyo)
		_, err := c.Store(ctx, samplePlan())
		require.NoError(t, err)
		assert.Equal(t, 30*time.Minute, c.UntilReset())

		clock.Advance(45 * time.Minute)
		plan, _, err := c.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, plan, "plan must expire at Tokyo midnight, not UTC midnight")
	})
}
