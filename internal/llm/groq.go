package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"daily-meal-planner/internal/config"
	"daily-meal-planner/internal/shared"
)

const groqAPIURL = "https://api.groq.com/openai/v1/chat/completions"

// ErrImagesUnsupported is returned when a text-only model receives images.
var ErrImagesUnsupported = errors.New("model does not accept images")

// GroqClient is a text-only client for the Groq chat completions API.
type GroqClient struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

// NewGroqClient creates a new Groq API client.
func NewGroqClient(cfg *config.Config) *GroqClient {
	return newGroqClient(cfg.GroqAPIKey, cfg.GroqModel, groqAPIURL)
}

func newGroqClient(apiKey, model, url string) *GroqClient {
	return &GroqClient{
		apiKey: apiKey,
		model:  model,
		url:    url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqRequest struct {
	Model          string            `json:"model"`
	Messages       []groqMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type groqResponse struct {
	Choices []struct {
		Message groqMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Generate sends the prompt to Groq. A request with a schema switches the
// model to JSON mode; the schema itself is described by the prompt.
func (c *GroqClient) Generate(ctx context.Context, req Request) (ContentResponse, error) {
	if len(req.Images) > 0 {
		return ContentResponse{}, ErrImagesUnsupported
	}

	body := groqRequest{
		Model:       c.model,
		Messages:    []groqMessage{{Role: "user", Content: req.Prompt}},
		Temperature: 0.1,
	}
	if req.Schema != nil {
		body.Messages[0].Content += "\nRespond with a single JSON object."
		body.ResponseFormat = map[string]string{"type": "json_object"}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return ContentResponse{}, fmt.Errorf("groq api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var groqResp groqResponse
	if err := json.NewDecoder(resp.Body).Decode(&groqResp); err != nil {
		return ContentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	usage := shared.TokenUsage{
		PromptTokens:     groqResp.Usage.PromptTokens,
		CompletionTokens: groqResp.Usage.CompletionTokens,
		TotalTokens:      groqResp.Usage.TotalTokens,
		Model:            c.model,
	}
	if len(groqResp.Choices) == 0 || groqResp.Choices[0].Message.Content == "" {
		return ContentResponse{Usage: usage}, ErrNoContent
	}
	return ContentResponse{Content: groqResp.Choices[0].Message.Content, Usage: usage}, nil
}
