package planner

import (
	"fmt"

	"daily-meal-planner/internal/recipe"
)

// DietType is the diet the generated plan must follow.
type DietType string

const (
	DietAnything DietType = "Anything"
	DietKeto     DietType = "Keto"
	DietVegan    DietType = "Vegan"
	DietPaleo    DietType = "Paleo"
)

// DietTypes lists the accepted diet types in display order.
var DietTypes = []DietType{DietAnything, DietKeto, DietVegan, DietPaleo}

// Preference is the general meat preference for the plan.
type Preference string

const (
	PreferenceAnything      Preference = "Anything"
	PreferenceVegetarian    Preference = "Vegetarian"
	PreferenceNonVegetarian Preference = "Non-Vegetarian"
)

// Preferences lists the accepted preferences in display order.
var Preferences = []Preference{PreferenceAnything, PreferenceVegetarian, PreferenceNonVegetarian}

// DefaultCalorieGoal is used for the daily summary when no preferences were saved.
const DefaultCalorieGoal = 2000

// UserPreferences is the payload sent to the generation service.
type UserPreferences struct {
	DietType    DietType   `json:"dietType"`
	CalorieGoal int        `json:"calorieGoal"`
	Preference  Preference `json:"preference"`
}

// Validate checks the enumerations and the calorie goal.
func (p UserPreferences) Validate() error {
	if !contains(DietTypes, p.DietType) {
		return fmt.Errorf("unknown diet type %q", p.DietType)
	}
	if !contains(Preferences, p.Preference) {
		return fmt.Errorf("unknown preference %q", p.Preference)
	}
	if p.CalorieGoal <= 0 {
		return fmt.Errorf("calorie goal must be positive, got %d", p.CalorieGoal)
	}
	return nil
}

// DailyPlan holds one recipe per meal slot.
type DailyPlan struct {
	Breakfast recipe.Recipe `json:"breakfast"`
	Lunch     recipe.Recipe `json:"lunch"`
	Dinner    recipe.Recipe `json:"dinner"`
	Snacks    recipe.Recipe `json:"snacks"`
}

// Recipes returns the four recipes in slot order.
func (d DailyPlan) Recipes() []recipe.Recipe {
	return []recipe.Recipe{d.Breakfast, d.Lunch, d.Dinner, d.Snacks}
}

// MealPlan is one generated day of meals.
type MealPlan struct {
	DailyPlan     DailyPlan `json:"dailyPlan"`
	TotalCalories float64   `json:"totalCalories"`
}

// Recipe looks a recipe up by ID.
func (m *MealPlan) Recipe(id string) (recipe.Recipe, bool) {
	if m == nil {
		return recipe.Recipe{}, false
	}
	for _, r := range m.DailyPlan.Recipes() {
		if r.ID == id {
			return r, true
		}
	}
	return recipe.Recipe{}, false
}

// Validate checks that all four slots hold a usable recipe and the total is set.
func (m *MealPlan) Validate() error {
	slots := []struct {
		name string
		r    recipe.Recipe
	}{
		{"breakfast", m.DailyPlan.Breakfast},
		{"lunch", m.DailyPlan.Lunch},
		{"dinner", m.DailyPlan.Dinner},
		{"snacks", m.DailyPlan.Snacks},
	}
	for _, s := range slots {
		if err := s.r.Validate(); err != nil {
			return fmt.Errorf("invalid %s: %w", s.name, err)
		}
	}
	if m.TotalCalories <= 0 {
		return fmt.Errorf("totalCalories must be positive")
	}
	return nil
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
