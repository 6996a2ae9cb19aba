package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-meal-planner/internal/database"
	"daily-meal-planner/internal/shared"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db.SQL)
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.RecordMeta(ctx, shared.AgentMeta{
		AgentName: "Planner",
		Usage:     shared.TokenUsage{PromptTokens: 100, CompletionTokens: 50, Model: "gemini-2.5-flash"},
		Latency:   1500 * time.Millisecond,
	}))
	require.NoError(t, s.RecordMeta(ctx, shared.AgentMeta{
		AgentName: "Scanner",
		Usage:     shared.TokenUsage{PromptTokens: 10, CompletionTokens: 5},
		Latency:   time.Second,
		Failed:    true,
	}))
	// Never reached the service.
	require.NoError(t, s.RecordMeta(ctx, shared.AgentMeta{AgentName: "Planner", Failed: true}))
	require.NoError(t, s.Record(ctx, ExecutionMetric{AgentName: "Planner", PromptTokens: 1, Timestamp: time.Now().AddDate(0, 0, -40)}))

	usage, err := s.GetDailyUsage(ctx, 7)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), usage[0].Date)
	assert.Equal(t, 110, usage[0].TotalPrompt)
	assert.Equal(t, 55, usage[0].TotalCompletion)
	assert.Equal(t, 2, usage[0].TotalExecution)
	assert.Equal(t, 1, usage[0].TotalFailed)

	deleted, err := s.Cleanup(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestMapUsage(t *testing.T) {
	m := MapUsage(shared.AgentMeta{
		AgentName: "Planner",
		Usage:     shared.TokenUsage{PromptTokens: 3, CompletionTokens: 4, Model: "m"},
		Latency:   250 * time.Millisecond,
	})
	assert.Equal(t, "Planner", m.AgentName)
	assert.Equal(t, "m", m.Model)
	assert.Equal(t, int64(250), m.LatencyMS)
	assert.True(t, m.Success)
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveGeneration(shared.AgentMeta{AgentName: "Planner", Latency: time.Second, Usage: shared.TokenUsage{PromptTokens: 5}})
	pr.ObserveGeneration(shared.AgentMeta{AgentName: "Planner", Failed: true})
	pr.IncReminder("lunch", nil)
	pr.IncReminder("lunch", errors.New("offline"))
	pr.SetArmedReminders(4)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "meal_planner_reminders_armed 4"))
	assert.Contains(t, body, `meal_planner_generations_total{agent="Planner",result="failure"} 1`)

	var nilRecorder *PrometheusRecorder
	nilRecorder.IncReminder("lunch", nil)
}

func TestReadSysHealth(t *testing.T) {
	t.Run("MeasuresDatabaseDirectory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "meals.db"), make([]byte, 2048), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "meals.db-wal"), make([]byte, 1024), 0o600))

		h := ReadSysHealth(filepath.Join(dir, "meals.db"))
		assert.Positive(t, h.Goroutines)
		assert.Equal(t, "3.0 KB", h.DataDiskSize)
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		h := ReadSysHealth(filepath.Join(t.TempDir(), "absent", "meals.db"))
		assert.Equal(t, "0 B", h.DataDiskSize)
	})
}
