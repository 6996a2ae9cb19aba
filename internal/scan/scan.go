// Package scan estimates the nutrition of a food photo.
package scan

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"daily-meal-planner/internal/llm"
	"daily-meal-planner/internal/shared"

	"github.com/google/generative-ai-go/genai"
)

// AgentName identifies image analysis calls in the metrics store.
const AgentName = "Scanner"

const analysisPrompt = `Analyze the food item in this image.
Identify the food and provide an estimated nutritional breakdown for the serving size shown.
Return the result in the specified JSON format.`

var (
	// ErrImageAnalysis is the user-facing failure for any analysis problem.
	ErrImageAnalysis = errors.New("failed to analyze the image; the model might be busy or the image could not be processed, please try again")
	// ErrInvalidDataURL is returned for strings that are not base64 data URLs.
	ErrInvalidDataURL = errors.New("invalid data URL")
)

var dataURLRe = regexp.MustCompile(`^data:(.+);base64,(.+)$`)

// FoodAnalysis is the estimated nutrition of the pictured serving.
type FoodAnalysis struct {
	Name        string  `json:"name"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	ServingSize string  `json:"servingSize"`
}

// Analyzer sends food images to the generation service.
type Analyzer struct {
	gen llm.Generator
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(gen llm.Generator) *Analyzer {
	return &Analyzer{gen: gen}
}

// ParseDataURL splits a "data:<mime>;base64,<payload>" string and decodes the payload.
func ParseDataURL(s string) (llm.Image, error) {
	m := dataURLRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return llm.Image{}, ErrInvalidDataURL
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return llm.Image{}, fmt.Errorf("%w: %w", ErrInvalidDataURL, err)
	}
	return llm.Image{MIMEType: m[1], Data: data}, nil
}

// AnalyzeDataURL parses a data URL and analyzes the image it carries.
// Malformed URLs are rejected before the service is called.
func (a *Analyzer) AnalyzeDataURL(ctx context.Context, dataURL string) (*FoodAnalysis, shared.AgentMeta, error) {
	img, err := ParseDataURL(dataURL)
	if err != nil {
		return nil, shared.AgentMeta{AgentName: AgentName, Failed: true}, err
	}
	return a.AnalyzeImage(ctx, img.MIMEType, img.Data)
}

// AnalyzeImage asks the service for a nutrition estimate of one image.
func (a *Analyzer) AnalyzeImage(ctx context.Context, mimeType string, data []byte) (*FoodAnalysis, shared.AgentMeta, error) {
	start := time.Now()
	meta := shared.AgentMeta{AgentName: AgentName}

	if len(data) == 0 {
		meta.Failed = true
		return nil, meta, fmt.Errorf("%w: empty image", ErrImageAnalysis)
	}

	resp, err := a.gen.Generate(ctx, llm.Request{
		Prompt: analysisPrompt,
		Schema: Schema(),
		Images: []llm.Image{{MIMEType: mimeType, Data: data}},
	})
	meta.Usage = resp.Usage
	meta.Latency = time.Since(start)
	if err != nil {
		meta.Failed = true
		return nil, meta, fmt.Errorf("%w: %w", ErrImageAnalysis, err)
	}

	result := &FoodAnalysis{}
	if err := json.Unmarshal([]byte(resp.Content), result); err != nil {
		meta.Failed = true
		return nil, meta, fmt.Errorf("%w: failed to parse analysis: %w", ErrImageAnalysis, err)
	}
	if result.Name == "" {
		meta.Failed = true
		return nil, meta, fmt.Errorf("%w: analysis has no food name", ErrImageAnalysis)
	}

	return result, meta, nil
}

// Schema is the structured-output shape of a FoodAnalysis.
func Schema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":        {Type: genai.TypeString, Description: "The name of the food item identified."},
			"calories":    {Type: genai.TypeNumber, Description: "Estimated calories for the serving size."},
			"protein":     {Type: genai.TypeNumber, Description: "Estimated protein in grams."},
			"carbs":       {Type: genai.TypeNumber, Description: "Estimated carbohydrates in grams."},
			"fat":         {Type: genai.TypeNumber, Description: "Estimated fat in grams."},
			"servingSize": {Type: genai.TypeString, Description: "The estimated serving size shown in the image (e.g., '100g', '1 slice', '1 bowl')."},
		},
		Required: []string{"name", "calories", "protein", "carbs", "fat", "servingSize"},
	}
}
