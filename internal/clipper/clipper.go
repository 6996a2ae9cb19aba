package clipper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"daily-meal-planner/internal/llm"
	"daily-meal-planner/internal/recipe"
	"daily-meal-planner/internal/shared"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// AgentName identifies clipping calls in the metrics store.
const AgentName = "Clipper"

// maxContentChars caps the page text sent to the model.
const maxContentChars = 20000

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	textGen llm.Generator
	client  *http.Client
}

// NewClipper creates a new Clipper instance.
func NewClipper(textGen llm.Generator) *Clipper {
	return &Clipper{
		textGen: textGen,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// ClipURL fetches the URL and extracts a recipe with nutrition estimates
// from it, ready to be added to the favorites.
func (c *Clipper) ClipURL(ctx context.Context, url string) (recipe.Recipe, shared.AgentMeta, error) {
	meta := shared.AgentMeta{AgentName: AgentName}

	// 1. Fetch and Clean HTML
	content, err := c.fetchAndCleanHTML(ctx, url)
	if err != nil {
		meta.Failed = true
		return recipe.Recipe{}, meta, fmt.Errorf("failed to fetch content: %w", err)
	}

	// 2. Extract the recipe
	prompt := fmt.Sprintf(`
You are a recipe extraction expert. Extract the recipe from the following web page text.
Keep the original ingredient quantities and steps. Estimate calories, protein (g), carbs (g)
and fat (g) for one serving. Leave imageUrl empty if the page does not show one.

Page Content:
%s
`, content)

	start := time.Now()
	resp, err := c.textGen.Generate(ctx, llm.Request{Prompt: prompt, Schema: recipe.Schema()})
	meta.Usage = resp.Usage
	meta.Latency = time.Since(start)
	if err != nil {
		meta.Failed = true
		return recipe.Recipe{}, meta, fmt.Errorf("ai extraction failed: %w", err)
	}

	var extracted recipe.Recipe
	if err := json.Unmarshal([]byte(resp.Content), &extracted); err != nil {
		meta.Failed = true
		return recipe.Recipe{}, meta, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, resp.Content)
	}

	// 3. Normalize
	extracted.ID = ""
	extracted.Normalize()
	if extracted.ID == "" {
		extracted.ID = uuid.NewString()
	}
	if extracted.Description == "" {
		extracted.Description = "Imported from " + url
	}
	if err := extracted.Validate(); err != nil {
		meta.Failed = true
		return recipe.Recipe{}, meta, fmt.Errorf("extracted recipe is incomplete: %w", err)
	}

	return extracted, meta, nil
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if len(text) > maxContentChars {
		text = text[:maxContentChars]
	}
	return text, nil
}
