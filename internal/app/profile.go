package app

import (
	"context"
	"fmt"
	"slices"

	"daily-meal-planner/internal/nutrition"
	"daily-meal-planner/internal/profile"
	"daily-meal-planner/internal/scan"
	"daily-meal-planner/internal/storage"
)

// SaveProfile stores p. When its weight is set and differs from the latest
// logged weight, today's weight entry is recorded as well.
func (a *App) SaveProfile(ctx context.Context, p profile.UserProfile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := storage.Save(ctx, a.deps.Store, storage.KeyUserProfile, p); err != nil {
		return err
	}
	a.state.Profile = &p

	if profile.WeightChanged(a.state.WeightHistory, p.Weight) {
		return a.logWeight(ctx, p.Weight)
	}
	return nil
}

// LogWeight records weight for today, replacing an earlier entry from the
// same day, and keeps the profile weight in sync.
func (a *App) LogWeight(ctx context.Context, weight float64) error {
	if weight <= 0 {
		return ErrInvalidWeight
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logWeight(ctx, weight)
}

func (a *App) logWeight(ctx context.Context, weight float64) error {
	history := profile.LogWeight(a.state.WeightHistory, a.cache.Today(), weight)
	if err := storage.Save(ctx, a.deps.Store, storage.KeyWeightHistory, history); err != nil {
		return err
	}
	a.state.WeightHistory = history

	if a.state.Profile != nil && a.state.Profile.Weight != weight {
		updated := *a.state.Profile
		updated.Weight = weight
		if err := storage.Save(ctx, a.deps.Store, storage.KeyUserProfile, updated); err != nil {
			return err
		}
		a.state.Profile = &updated
	}
	return nil
}

// WeightHistory returns the logged weights in chronological order.
func (a *App) WeightHistory() []profile.WeightEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.state.WeightHistory)
}

// WeightTrend returns the weekly chart, or nil with fewer than two entries.
func (a *App) WeightTrend() *nutrition.Trend {
	a.mu.Lock()
	defer a.mu.Unlock()
	return nutrition.WeightTrend(a.state.WeightHistory)
}

// AnalyzeFood estimates the nutrition of the image in a data URL.
func (a *App) AnalyzeFood(ctx context.Context, dataURL string) (*scan.FoodAnalysis, error) {
	if a.deps.Analyzer == nil {
		return nil, fmt.Errorf("%w: image analysis", ErrUnavailable)
	}
	res, meta, err := a.deps.Analyzer.AnalyzeDataURL(ctx, dataURL)
	a.recordMeta(ctx, meta)
	return res, err
}

// AnalyzeImage estimates the nutrition of raw image bytes.
func (a *App) AnalyzeImage(ctx context.Context, mimeType string, data []byte) (*scan.FoodAnalysis, error) {
	if a.deps.Analyzer == nil {
		return nil, fmt.Errorf("%w: image analysis", ErrUnavailable)
	}
	res, meta, err := a.deps.Analyzer.AnalyzeImage(ctx, mimeType, data)
	a.recordMeta(ctx, meta)
	return res, err
}
