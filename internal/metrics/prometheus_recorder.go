package metrics

import (
	"net/http"

	"daily-meal-planner/internal/shared"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// PrometheusRecorder exposes generation and reminder activity as Prometheus metrics.
type PrometheusRecorder struct {
	generations    *prom.CounterVec
	generationTime *prom.HistogramVec
	tokens         *prom.CounterVec
	remindersFired *prom.CounterVec
	armedReminders prom.Gauge
}

// NewPrometheusRecorder constructs and registers the metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		generations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "meal_planner",
			Name:      "generations_total",
			Help:      "Generation service calls by agent and result",
		}, []string{"agent", "result"}),
		generationTime: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "meal_planner",
			Name:      "generation_duration_seconds",
			Help:      "Latency of generation service calls",
			Buckets:   prom.DefBuckets,
		}, []string{"agent"}),
		tokens: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "meal_planner",
			Name:      "tokens_total",
			Help:      "Tokens consumed by kind",
		}, []string{"agent", "kind"}),
		remindersFired: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "meal_planner",
			Name:      "reminders_fired_total",
			Help:      "Reminder deliveries by kind and result",
		}, []string{"kind", "result"}),
		armedReminders: prom.NewGauge(prom.GaugeOpts{
			Namespace: "meal_planner",
			Name:      "reminders_armed",
			Help:      "Reminders currently armed",
		}),
	}
	reg.MustRegister(pr.generations, pr.generationTime, pr.tokens, pr.remindersFired, pr.armedReminders)
	return pr
}

// ObserveGeneration records one generation call.
func (p *PrometheusRecorder) ObserveGeneration(meta shared.AgentMeta) {
	if p == nil {
		return
	}
	result := ResultSuccess
	if meta.Failed {
		result = ResultFailure
	}
	p.generations.WithLabelValues(meta.AgentName, result).Inc()
	if meta.Latency > 0 {
		p.generationTime.WithLabelValues(meta.AgentName).Observe(meta.Latency.Seconds())
	}
	p.tokens.WithLabelValues(meta.AgentName, "prompt").Add(float64(meta.Usage.PromptTokens))
	p.tokens.WithLabelValues(meta.AgentName, "completion").Add(float64(meta.Usage.CompletionTokens))
}

// IncReminder counts one reminder delivery attempt.
func (p *PrometheusRecorder) IncReminder(kind string, err error) {
	if p == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	p.remindersFired.WithLabelValues(kind, result).Inc()
}

// SetArmedReminders records how many reminders are armed.
func (p *PrometheusRecorder) SetArmedReminders(n int) {
	if p == nil {
		return
	}
	p.armedReminders.Set(float64(n))
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
