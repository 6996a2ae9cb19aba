// Package httpapi exposes the meal planner over a small JSON API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"daily-meal-planner/internal/app"
	"daily-meal-planner/internal/config"
	"daily-meal-planner/internal/logfields"
	"daily-meal-planner/internal/metrics"
	"daily-meal-planner/internal/planner"
	"daily-meal-planner/internal/profile"
	"daily-meal-planner/internal/reminder"
	"daily-meal-planner/internal/scan"
)

const (
	maxBodyBytes     = 10 << 20
	defaultUsageDays = 7
)

// UsageReader returns aggregated generation usage.
type UsageReader interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// Server routes HTTP requests to the application.
type Server struct {
	config  *config.Config
	app     *app.App
	usage   UsageReader
	metrics http.Handler
	mux     *http.ServeMux
}

// NewServer builds the routes. usage and metricsHandler may be nil.
func NewServer(cfg *config.Config, a *app.App, usage UsageReader, metricsHandler http.Handler) *Server {
	s := &Server{
		config:  cfg,
		app:     a,
		usage:   usage,
		metrics: metricsHandler,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the root handler with authentication applied.
func (s *Server) Handler() http.Handler {
	return requireAuth(s.config.JWTSecret, s.mux)
}

func (s *Server) routes() {
	limit := s.config.RateLimitPerMin

	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}

	s.mux.HandleFunc("GET /v1/state", s.handleState)

	s.mux.HandleFunc("GET /v1/plan", s.handleGetPlan)
	s.mux.HandleFunc("POST /v1/plan", rateLimit(limit, s.handleGeneratePlan))
	s.mux.HandleFunc("POST /v1/plan/completed/{id}", s.handleToggleCompleted)
	s.mux.HandleFunc("GET /v1/plan/groceries", s.handleGroceries)
	s.mux.HandleFunc("GET /v1/plan/stats", s.handleStats)
	s.mux.HandleFunc("POST /v1/plan/share", s.handleShare)

	s.mux.HandleFunc("GET /v1/favorites", s.handleFavorites)
	s.mux.HandleFunc("POST /v1/favorites/{id}", s.handleToggleFavorite)
	s.mux.HandleFunc("POST /v1/clip", rateLimit(limit, s.handleClip))

	s.mux.HandleFunc("POST /v1/scan", rateLimit(limit, s.handleScan))

	s.mux.HandleFunc("GET /v1/profile", s.handleGetProfile)
	s.mux.HandleFunc("PUT /v1/profile", s.handleSaveProfile)
	s.mux.HandleFunc("GET /v1/weight", s.handleWeightHistory)
	s.mux.HandleFunc("POST /v1/weight", s.handleLogWeight)
	s.mux.HandleFunc("GET /v1/weight/trend", s.handleWeightTrend)

	s.mux.HandleFunc("GET /v1/reminders", s.handleGetReminders)
	s.mux.HandleFunc("PUT /v1/reminders", s.handleSaveReminders)
	s.mux.HandleFunc("POST /v1/reminders/enable", s.handleSetReminders(true))
	s.mux.HandleFunc("POST /v1/reminders/disable", s.handleSetReminders(false))

	s.mux.HandleFunc("GET /v1/usage", s.handleUsage)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"system": metrics.ReadSysHealth(s.config.DatabasePath),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Snapshot())
}

type planResponse struct {
	Date            string            `json:"date"`
	Plan            *planner.MealPlan `json:"mealPlan"`
	Completed       []string          `json:"completedMeals"`
	ResetsInSeconds int64             `json:"resetsInSeconds"`
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	state := s.app.Snapshot()
	writeJSON(w, http.StatusOK, planResponse{
		Date:            s.app.Today(),
		Plan:            state.Plan,
		Completed:       state.Completed,
		ResetsInSeconds: int64(s.app.UntilReset() / time.Second),
	})
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var prefs planner.UserPreferences
	if !decodeBody(w, r, &prefs) {
		return
	}
	plan, err := s.app.GeneratePlan(r.Context(), prefs)
	if err != nil {
		writeAppError(w, err)
		return
	}
	state := s.app.Snapshot()
	writeJSON(w, http.StatusCreated, planResponse{
		Date:            state.PlanDate,
		Plan:            plan,
		Completed:       state.Completed,
		ResetsInSeconds: int64(s.app.UntilReset() / time.Second),
	})
}

func (s *Server) handleToggleCompleted(w http.ResponseWriter, r *http.Request) {
	completed, err := s.app.ToggleCompleted(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"completedMeals": completed})
}

func (s *Server) handleGroceries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": s.app.GroceryList()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"consumed": s.app.ConsumedStats(),
		"summary":  s.app.Summary(),
	})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	if err := s.app.SharePlan(r.Context()); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"favorites": s.app.Snapshot().Favorites})
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	favorite, err := s.app.ToggleFavorite(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "favorite": favorite})
}

func (s *Server) handleClip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "url is required")
		return
	}
	rec, err := s.app.ClipFavorite(r.Context(), req.URL)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.app.AnalyzeFood(r.Context(), req.Image)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p := s.app.Snapshot().Profile
	if p == nil {
		p = &profile.UserProfile{}
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var p profile.UserProfile
	if !decodeBody(w, r, &p) {
		return
	}
	if err := s.app.SaveProfile(r.Context(), p); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.app.Snapshot().Profile)
}

func (s *Server) handleWeightHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"weightHistory": s.app.WeightHistory()})
}

func (s *Server) handleLogWeight(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Weight float64 `json:"weight"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.app.LogWeight(r.Context(), req.Weight); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weightHistory": s.app.WeightHistory()})
}

func (s *Server) handleWeightTrend(w http.ResponseWriter, r *http.Request) {
	trend := s.app.WeightTrend()
	if trend == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

type remindersResponse struct {
	Settings   reminder.Settings   `json:"settings"`
	Permission reminder.Permission `json:"permission"`
	Armed      []reminder.Timer    `json:"armed"`
}

func (s *Server) reminders() remindersResponse {
	state := s.app.Snapshot()
	return remindersResponse{
		Settings:   state.Settings,
		Permission: state.Permission,
		Armed:      s.app.Armed(),
	}
}

func (s *Server) handleGetReminders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reminders())
}

func (s *Server) handleSaveReminders(w http.ResponseWriter, r *http.Request) {
	var settings reminder.Settings
	if !decodeBody(w, r, &settings) {
		return
	}
	if _, err := s.app.SaveSettings(r.Context(), settings); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.reminders())
}

func (s *Server) handleSetReminders(enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.app.SetRemindersEnabled(r.Context(), enabled); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.reminders())
	}
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if s.usage == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "Usage metrics are not configured")
		return
	}
	days := defaultUsageDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "days must be a positive integer")
			return
		}
		days = n
	}
	usage, err := s.usage.GetDailyUsage(r.Context(), days)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"usage": usage})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", logfields.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// writeAppError maps application errors to status codes. Unknown errors are
// logged and reported as internal.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput),
		errors.Is(err, app.ErrInvalidWeight),
		errors.Is(err, scan.ErrInvalidDataURL):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, app.ErrNoPlan), errors.Is(err, app.ErrRecipeNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, app.ErrUnavailable), errors.Is(err, app.ErrSharingDisabled):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
	case errors.Is(err, planner.ErrPlanGeneration), errors.Is(err, scan.ErrImageAnalysis):
		writeError(w, http.StatusBadGateway, "generation_failed", err.Error())
	default:
		slog.Error("Request failed", logfields.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "Internal error")
	}
}
