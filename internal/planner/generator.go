package planner

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"daily-meal-planner/internal/llm"
	"daily-meal-planner/internal/recipe"
	"daily-meal-planner/internal/shared"

	"github.com/google/generative-ai-go/genai"
)

//go:embed plan_prompt.md
var planPrompt string

// AgentName identifies plan generation calls in the metrics store.
const AgentName = "Planner"

// ErrPlanGeneration is the user-facing failure for any generation problem.
var ErrPlanGeneration = errors.New("failed to generate meal plan; the model may be overloaded, please try again later")

var planTmpl = template.Must(template.New("Planner").Parse(planPrompt))

// Generator asks the generation service for a daily meal plan.
type Generator struct {
	gen llm.Generator
}

// NewGenerator creates a new Generator.
func NewGenerator(gen llm.Generator) *Generator {
	return &Generator{gen: gen}
}

// GeneratePlan requests a one-day plan for prefs. Every failure is wrapped in
// ErrPlanGeneration; the returned meta is filled even on failure so callers can
// record usage.
func (g *Generator) GeneratePlan(ctx context.Context, prefs UserPreferences) (*MealPlan, shared.AgentMeta, error) {
	start := time.Now()
	meta := shared.AgentMeta{AgentName: AgentName}

	if err := prefs.Validate(); err != nil {
		meta.Failed = true
		return nil, meta, fmt.Errorf("%w: %w", ErrPlanGeneration, err)
	}

	prompt, err := buildPlanPrompt(prefs)
	if err != nil {
		meta.Failed = true
		return nil, meta, fmt.Errorf("%w: %w", ErrPlanGeneration, err)
	}

	resp, err := g.gen.Generate(ctx, llm.Request{Prompt: prompt, Schema: Schema()})
	meta.Usage = resp.Usage
	meta.Latency = time.Since(start)
	if err != nil {
		meta.Failed = true
		return nil, meta, fmt.Errorf("%w: %w", ErrPlanGeneration, err)
	}

	plan, err := decodePlan(resp.Content)
	if err != nil {
		slog.Debug("Discarding generated plan", "error", err, "content", resp.Content)
		meta.Failed = true
		return nil, meta, fmt.Errorf("%w: %w", ErrPlanGeneration, err)
	}

	return plan, meta, nil
}

func decodePlan(content string) (*MealPlan, error) {
	plan := &MealPlan{}
	if err := json.Unmarshal([]byte(content), plan); err != nil {
		return nil, fmt.Errorf("failed to parse meal plan: %w", err)
	}
	plan.DailyPlan.Breakfast.Normalize()
	plan.DailyPlan.Lunch.Normalize()
	plan.DailyPlan.Dinner.Normalize()
	plan.DailyPlan.Snacks.Normalize()
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid meal plan structure: %w", err)
	}
	return plan, nil
}

func buildPlanPrompt(prefs UserPreferences) (string, error) {
	var buf bytes.Buffer
	if err := planTmpl.Execute(&buf, prefs); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Schema is the fixed four-recipe response shape.
func Schema() *genai.Schema {
	r := recipe.Schema()
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"dailyPlan": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"breakfast": r,
					"lunch":     r,
					"dinner":    r,
					"snacks":    r,
				},
				Required: []string{"breakfast", "lunch", "dinner", "snacks"},
			},
			"totalCalories": {
				Type:        genai.TypeNumber,
				Description: "The sum of calories from all recipes in the plan.",
			},
		},
		Required: []string{"dailyPlan", "totalCalories"},
	}
}
