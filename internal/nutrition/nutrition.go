// Package nutrition derives display data from plan and history state. Every
// function here is pure.
package nutrition

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"daily-meal-planner/internal/planner"
	"daily-meal-planner/internal/profile"
)

// Stats is the macro total of a set of recipes.
type Stats struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// ConsumedStats sums the nutrition of the plan recipes whose IDs are in completed.
func ConsumedStats(plan *planner.MealPlan, completed []string) Stats {
	var s Stats
	if plan == nil {
		return s
	}
	for _, r := range plan.DailyPlan.Recipes() {
		if !slices.Contains(completed, r.ID) {
			continue
		}
		s.Calories += r.Calories
		s.Protein += r.Protein
		s.Carbs += r.Carbs
		s.Fat += r.Fat
	}
	return s
}

// Summary compares consumed calories with the goal.
type Summary struct {
	Consumed    Stats   `json:"consumed"`
	CalorieGoal float64 `json:"calorieGoal"`
	Over        bool    `json:"over"`
	Status      string  `json:"status"`
}

// Summarize reports how far consumed is from goal, e.g. "350 calories left".
func Summarize(consumed Stats, goal float64) Summary {
	diff := consumed.Calories - goal
	s := Summary{Consumed: consumed, CalorieGoal: goal, Over: diff > 0}
	if s.Over {
		s.Status = fmt.Sprintf("%d calories over", int(math.Round(diff)))
	} else {
		s.Status = fmt.Sprintf("%d calories left", int(math.Round(math.Abs(diff))))
	}
	return s
}

// GroceryList returns every ingredient of the plan once, sorted ascending.
// Duplicates are detected by exact string match.
func GroceryList(plan *planner.MealPlan) []string {
	if plan == nil {
		return []string{}
	}
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range plan.DailyPlan.Recipes() {
		for _, ing := range r.Ingredients {
			if _, ok := seen[ing]; ok {
				continue
			}
			seen[ing] = struct{}{}
			out = append(out, ing)
		}
	}
	slices.Sort(out)
	return out
}

// Chart geometry for the weekly weight trend.
const (
	ChartWidth   = 350
	ChartHeight  = 150
	ChartPadding = 20
	TrendWindow  = 7
)

// Point is a chart coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Trend is the weekly weight chart.
type Trend struct {
	Points     []Point `json:"points"`
	Path       string  `json:"path"`
	MinLabel   int     `json:"minLabel"`
	MaxLabel   int     `json:"maxLabel"`
	StartLabel string  `json:"startLabel"`
	EndLabel   string  `json:"endLabel"`
}

// WeightTrend maps the last seven entries onto the chart. It returns nil when
// fewer than two entries exist.
func WeightTrend(history []profile.WeightEntry) *Trend {
	data := history
	if len(data) > TrendWindow {
		data = data[len(data)-TrendWindow:]
	}
	if len(data) < 2 {
		return nil
	}

	const innerW = ChartWidth - 2*ChartPadding
	const innerH = ChartHeight - 2*ChartPadding

	lo, hi := data[0].Weight, data[0].Weight
	for _, e := range data[1:] {
		lo = min(lo, e.Weight)
		hi = max(hi, e.Weight)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	t := &Trend{
		Points:     make([]Point, len(data)),
		MinLabel:   int(math.Floor(lo)),
		MaxLabel:   int(math.Ceil(hi)),
		StartLabel: dateLabel(data[0].Date),
		EndLabel:   dateLabel(data[len(data)-1].Date),
	}

	var path strings.Builder
	last := float64(len(data) - 1)
	for i, e := range data {
		p := Point{
			X: float64(i)/last*innerW + ChartPadding,
			Y: ChartHeight - ChartPadding - (e.Weight-lo)/span*innerH,
		}
		t.Points[i] = p
		if i == 0 {
			path.WriteString("M ")
		} else {
			path.WriteString(" L ")
		}
		path.WriteString(num(p.X))
		path.WriteByte(' ')
		path.WriteString(num(p.Y))
	}
	t.Path = path.String()
	return t
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// dateLabel renders YYYY-MM-DD as M/D; unparseable dates are returned as is.
func dateLabel(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%d/%d", int(d.Month()), d.Day())
}
