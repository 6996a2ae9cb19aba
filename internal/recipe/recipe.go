package recipe

import (
	"fmt"
	"regexp"
	"strings"
)

// Recipe is a single generated (or clipped) recipe with its nutrition facts.
type Recipe struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Calories     float64  `json:"calories"`
	Protein      float64  `json:"protein"`
	Carbs        float64  `json:"carbs"`
	Fat          float64  `json:"fat"`
	ImageURL     string   `json:"imageUrl"`
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a recipe name into a URL-friendly identifier,
// e.g. "Avocado Toast with Egg" -> "avocado-toast-with-egg".
func Slug(name string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// PlaceholderImageURL returns the picsum placeholder used when no image is supplied.
func PlaceholderImageURL(name string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/500/300", Slug(name))
}

// Normalize fills the ID and image URL when the source left them blank.
func (r *Recipe) Normalize() {
	if r.ID == "" {
		r.ID = Slug(r.Name)
	}
	if r.ImageURL == "" {
		r.ImageURL = PlaceholderImageURL(r.Name)
	}
}

// Validate checks the fields every consumer relies on.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("recipe has no name")
	}
	if r.ID == "" {
		return fmt.Errorf("recipe %q has no id", r.Name)
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("recipe %q has no ingredients", r.Name)
	}
	if r.Calories < 0 || r.Protein < 0 || r.Carbs < 0 || r.Fat < 0 {
		return fmt.Errorf("recipe %q has negative nutrition values", r.Name)
	}
	return nil
}

// ToggleFavorite removes r from favorites when a recipe with the same ID is
// present, otherwise appends it. The input slice is not modified.
func ToggleFavorite(favorites []Recipe, r Recipe) []Recipe {
	out := make([]Recipe, 0, len(favorites)+1)
	found := false
	for _, f := range favorites {
		if f.ID == r.ID {
			found = true
			continue
		}
		out = append(out, f)
	}
	if !found {
		out = append(out, r)
	}
	return out
}

// IsFavorite reports whether a recipe with id is in favorites.
func IsFavorite(favorites []Recipe, id string) bool {
	for _, f := range favorites {
		if f.ID == id {
			return true
		}
	}
	return false
}
