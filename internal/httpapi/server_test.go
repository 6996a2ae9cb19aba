package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-meal-planner/internal/app"
	"daily-meal-planner/internal/config"
	"daily-meal-planner/internal/llm"
	"daily-meal-planner/internal/metrics"
	"daily-meal-planner/internal/planner"
	"daily-meal-planner/internal/recipe"
	"daily-meal-planner/internal/reminder"
	"daily-meal-planner/internal/scan"
	"daily-meal-planner/internal/shared"
	"daily-meal-planner/internal/storage"
)

type stubPlanner struct{}

func (stubPlanner) GeneratePlan(ctx context.Context, prefs planner.UserPreferences) (*planner.MealPlan, shared.AgentMeta, error) {
	mk := func(id string, kcal float64) recipe.Recipe {
		return recipe.Recipe{ID: id, Name: id, Ingredients: []string{id}, Calories: kcal}
	}
	return &planner.MealPlan{
		DailyPlan: planner.DailyPlan{
			Breakfast: mk("oats", 400),
			Lunch:     mk("salad", 500),
			Dinner:    mk("salmon", 700),
			Snacks:    mk("apple", 100),
		},
		TotalCalories: 1700,
	}, shared.AgentMeta{AgentName: planner.AgentName}, nil
}

type unusedGenerator struct{}

func (unusedGenerator) Generate(ctx context.Context, req llm.Request) (llm.ContentResponse, error) {
	return llm.ContentResponse{}, llm.ErrNoContent
}

type stubUsage struct{}

func (stubUsage) GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	return []metrics.DailyUsage{{Date: "2025-03-01", TotalPrompt: 42, TotalExecution: 1}}, nil
}

func newTestServer(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = t.TempDir() + "/test.db"
	}
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	notifier := reminder.LogNotifier{}
	a, err := app.New(context.Background(), app.Deps{
		Store:     storage.NewMemoryStore(),
		Clock:     clock,
		Location:  time.UTC,
		Notifier:  notifier,
		Reminders: reminder.NewScheduler(notifier, clock, reminder.WithLocation(time.UTC)),
		Planner:   stubPlanner{},
		Analyzer:  scan.NewAnalyzer(unusedGenerator{}),
	})
	require.NoError(t, err)
	return NewServer(cfg, a, stubUsage{}, metrics.HTTPHandler(prom.NewRegistry())).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

const prefsBody = `{"dietType":"Anything","calorieGoal":1800,"preference":"Vegetarian"}`

func TestHealthz(t *testing.T) {
	h := newTestServer(t, &config.Config{})
	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestPlanFlow(t *testing.T) {
	h := newTestServer(t, &config.Config{})

	rec := do(t, h, http.MethodGet, "/v1/plan", "")
	require.Equal(t, http.StatusOK, rec.Code)
	empty := decode[planResponse](t, rec)
	assert.Nil(t, empty.Plan)
	assert.Equal(t, "2025-03-01", empty.Date)
	assert.Equal(t, int64(15*3600), empty.ResetsInSeconds)

	rec = do(t, h, http.MethodPost, "/v1/plan", prefsBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[planResponse](t, rec)
	require.NotNil(t, created.Plan)
	assert.Equal(t, "2025-03-01", created.Date)
	assert.Empty(t, created.Completed)

	rec = do(t, h, http.MethodPost, "/v1/plan/completed/oats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"completedMeals":["oats"]}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/v1/plan/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1400 calories left")

	rec = do(t, h, http.MethodGet, "/v1/plan/groceries", "")
	assert.JSONEq(t, `{"items":["apple","oats","salad","salmon"]}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/v1/favorites/salmon", "")
	assert.JSONEq(t, `{"id":"salmon","favorite":true}`, rec.Body.String())
}

func TestErrors(t *testing.T) {
	h := newTestServer(t, &config.Config{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"NoPlanToComplete", http.MethodPost, "/v1/plan/completed/oats", "", http.StatusNotFound},
		{"InvalidPreferences", http.MethodPost, "/v1/plan", `{"dietType":"Carnivore","calorieGoal":1800,"preference":"Anything"}`, http.StatusBadRequest},
		{"BadJSON", http.MethodPost, "/v1/plan", `{`, http.StatusBadRequest},
		{"InvalidDataURL", http.MethodPost, "/v1/scan", `{"image":"not-a-data-url"}`, http.StatusBadRequest},
		{"NonPositiveWeight", http.MethodPost, "/v1/weight", `{"weight":0}`, http.StatusBadRequest},
		{"InvalidReminderTime", http.MethodPut, "/v1/reminders", `{"enabled":true,"mealReminders":{"breakfast":"25:00"}}`, http.StatusBadRequest},
		{"ClipNotConfigured", http.MethodPost, "/v1/clip", `{"url":"https://example.com"}`, http.StatusServiceUnavailable},
		{"ShareNotConfigured", http.MethodPost, "/v1/plan/share", "", http.StatusServiceUnavailable},
		{"BadUsageDays", http.MethodGet, "/v1/usage?days=x", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestReminders(t *testing.T) {
	h := newTestServer(t, &config.Config{})

	rec := do(t, h, http.MethodPost, "/v1/reminders/enable", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[remindersResponse](t, rec)
	assert.True(t, resp.Settings.Enabled)
	assert.Equal(t, reminder.PermissionGranted, resp.Permission)
	assert.Len(t, resp.Armed, 4)

	rec = do(t, h, http.MethodPost, "/v1/reminders/disable", "")
	resp = decode[remindersResponse](t, rec)
	assert.False(t, resp.Settings.Enabled)
	assert.Empty(t, resp.Armed)
}

func TestProfileAndWeight(t *testing.T) {
	h := newTestServer(t, &config.Config{})

	rec := do(t, h, http.MethodPut, "/v1/profile", `{"name":"Sam","weight":80}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/weight", "")
	assert.JSONEq(t, `{"weightHistory":[{"date":"2025-03-01","weight":80}]}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/v1/weight/trend", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodPut, "/v1/profile", `{"gender":"Robot"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsage(t *testing.T) {
	h := newTestServer(t, &config.Config{})
	rec := do(t, h, http.MethodGet, "/v1/usage", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"2025-03-01"`)
}

func TestAuth(t *testing.T) {
	const secret = "test-secret"
	h := newTestServer(t, &config.Config{JWTSecret: secret})

	rec := do(t, h, http.MethodGet, "/v1/plan", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	token, err := IssueToken(secret, "cli", time.Hour, time.Now())
	require.NoError(t, err)
	rec = do(t, h, http.MethodGet, "/v1/plan", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)

	expired, err := IssueToken(secret, "cli", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	rec = do(t, h, http.MethodGet, "/v1/plan", "", "Authorization", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged, err := IssueToken("other-secret", "cli", time.Hour, time.Now())
	require.NoError(t, err)
	_, err = VerifyToken(secret, forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = IssueToken("", "cli", time.Hour, time.Now())
	assert.Error(t, err)
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, &config.Config{RateLimitPerMin: 1})

	rec := do(t, h, http.MethodPost, "/v1/plan", prefsBody, "X-Forwarded-For", "10.0.0.1")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/plan", prefsBody, "X-Forwarded-For", "10.0.0.1, 172.16.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate_limited")

	rec = do(t, h, http.MethodPost, "/v1/plan", prefsBody, "X-Forwarded-For", "10.0.0.2")
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Reads are not limited.
	rec = do(t, h, http.MethodGet, "/v1/plan", "", "X-Forwarded-For", "10.0.0.1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExtractIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", extractIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", extractIP(req))
}
