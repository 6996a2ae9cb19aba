package llm

import (
	"context"

	"daily-meal-planner/internal/shared"

	"github.com/google/generative-ai-go/genai"
)

// Image is an inline image part sent alongside a prompt.
type Image struct {
	MIMEType string
	Data     []byte
}

// Request is a single generation call. When Schema is set the model is asked
// for JSON conforming to it.
type Request struct {
	Prompt string
	Schema *genai.Schema
	Images []Image
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// Generator produces content for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
