// Package profile holds the user's biometric profile and weight history.
package profile

import (
	"fmt"
	"slices"
)

var (
	GenderOptions = []string{"Male", "Female", "Other", "Prefer not to say"}

	ActivityLevelOptions = []string{
		"Sedentary (little to no exercise)",
		"Light (1-3 days/week)",
		"Moderate (3-5 days/week)",
		"Active (6-7 days/week)",
		"Very Active (hard exercise or physical job)",
	}

	DietPreferenceOptions = []string{
		"Vegetarian",
		"Anything",
		"Vegan",
		"Pescatarian",
		"Gluten-Free",
		"Keto",
		"Paleo",
	}
)

// UserProfile is the user's biometric profile. Zero numbers mean "not set".
type UserProfile struct {
	Name           string  `json:"name"`
	Age            int     `json:"age,omitempty"`
	Gender         string  `json:"gender"`
	Height         float64 `json:"height,omitempty"`
	Weight         float64 `json:"weight,omitempty"`
	GoalWeight     float64 `json:"goalWeight,omitempty"`
	ActivityLevel  string  `json:"activityLevel"`
	DietPreference string  `json:"dietPreference"`
}

// Validate rejects negative numbers and values outside the option lists.
func (p UserProfile) Validate() error {
	if p.Age < 0 || p.Height < 0 || p.Weight < 0 || p.GoalWeight < 0 {
		return fmt.Errorf("profile values must not be negative")
	}
	if p.Gender != "" && !slices.Contains(GenderOptions, p.Gender) {
		return fmt.Errorf("unknown gender %q", p.Gender)
	}
	if p.ActivityLevel != "" && !slices.Contains(ActivityLevelOptions, p.ActivityLevel) {
		return fmt.Errorf("unknown activity level %q", p.ActivityLevel)
	}
	if p.DietPreference != "" && !slices.Contains(DietPreferenceOptions, p.DietPreference) {
		return fmt.Errorf("unknown diet preference %q", p.DietPreference)
	}
	return nil
}

// WeightEntry is one logged weight for a calendar day.
type WeightEntry struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

// LogWeight records weight for date, replacing an existing entry for the same
// day or appending a new one. The input slice is not modified.
func LogWeight(history []WeightEntry, date string, weight float64) []WeightEntry {
	out := slices.Clone(history)
	for i := range out {
		if out[i].Date == date {
			out[i].Weight = weight
			return out
		}
	}
	return append(out, WeightEntry{Date: date, Weight: weight})
}

// WeightChanged reports whether saving a profile with weight should add a
// history entry: the weight is set and differs from the latest logged value.
func WeightChanged(history []WeightEntry, weight float64) bool {
	if weight <= 0 {
		return false
	}
	return len(history) == 0 || history[len(history)-1].Weight != weight
}
