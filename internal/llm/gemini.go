package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"daily-meal-planner/internal/config"
	"daily-meal-planner/internal/shared"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrNoContent is returned when the model answers without any text part.
var ErrNoContent = errors.New("no content generated")

// GeminiClient is a client for the Google Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	if err := cfg.RequireGemini(); err != nil {
		return nil, err
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.GeminiModel}, nil
}

// Generate sends the prompt (and any images) to Gemini and returns the text answer.
// A fresh GenerativeModel is configured per call so concurrent requests with
// different schemas never share settings.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (ContentResponse, error) {
	model := c.client.GenerativeModel(c.model)
	if req.Schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = req.Schema
	}

	parts := []genai.Part{genai.Text(req.Prompt)}
	for _, img := range req.Images {
		parts = append(parts, genai.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to generate content: %w", err)
	}

	usage := usageFrom(resp)
	usage.Model = c.model

	text, err := responseText(resp)
	if err != nil {
		return ContentResponse{Usage: usage}, err
	}

	return ContentResponse{Content: text, Usage: usage}, nil
}

// Close closes the underlying Gemini client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoContent
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", ErrNoContent
	}
	return strings.TrimSpace(sb.String()), nil
}

func usageFrom(resp *genai.GenerateContentResponse) (usage shared.TokenUsage) {
	if resp == nil || resp.UsageMetadata == nil {
		return usage
	}
	usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
	usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	return usage
}
