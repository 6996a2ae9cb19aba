package clipper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"daily-meal-planner/internal/llm"
)

// --- Mocks ---
type MockTextGenerator struct {
	Response    string
	ShouldError bool
	Prompt      string
}

func (m *MockTextGenerator) Generate(ctx context.Context, req llm.Request) (llm.ContentResponse, error) {
	m.Prompt = req.Prompt
	if m.ShouldError {
		return llm.ContentResponse{}, fmt.Errorf("mock ai error")
	}
	return llm.ContentResponse{Content: m.Response}, nil
}

func servePage(html string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
}

// --- Tests ---

func TestFetchAndCleanHTML(t *testing.T) {
	ts := servePage(`
		<html>
			<head><script>alert('bad');</script></head>
			<body>
				<h1>Tasty Recipe</h1>
				<div class="ads">Buy stuff!</div>
				<p>Mix flour and water.</p>
				<script>more_bad_stuff()</script>
				<footer>Copyright 2024</footer>
			</body>
		</html>`)
	defer ts.Close()

	c := NewClipper(&MockTextGenerator{})

	cleanText, err := c.fetchAndCleanHTML(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if strings.Contains(cleanText, "alert('bad')") {
		t.Error("Failed to remove <script> tags")
	}
	if strings.Contains(cleanText, "Buy stuff!") {
		t.Error("Failed to remove .ads class")
	}
	if strings.Contains(cleanText, "Copyright 2024") {
		t.Error("Failed to remove <footer>")
	}
	if !strings.Contains(cleanText, "Tasty Recipe Mix flour and water.") {
		t.Errorf("Expected collapsed body content, got %q", cleanText)
	}
}

func TestFetchAndCleanHTML_BadStatus(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	_, err := NewClipper(&MockTextGenerator{}).fetchAndCleanHTML(context.Background(), ts.URL)
	if err == nil {
		t.Fatal("Expected an error for a 404 page")
	}
}

func TestClipURL_Success(t *testing.T) {
	aiResponse := `{"id": "ignored", "name": "Mock Pie", "description": "", "ingredients": ["Apple"], "instructions": ["Bake"], "calories": 300, "protein": 3, "carbs": 40, "fat": 12, "imageUrl": ""}`

	mockAI := &MockTextGenerator{Response: aiResponse}
	c := NewClipper(mockAI)

	ts := servePage("<html><body>Some Content</body></html>")
	defer ts.Close()

	r, meta, err := c.ClipURL(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("ClipURL failed: %v", err)
	}

	if r.Name != "Mock Pie" {
		t.Errorf("Expected name 'Mock Pie', got '%s'", r.Name)
	}
	if r.ID != "mock-pie" {
		t.Errorf("Expected slug id 'mock-pie', got '%s'", r.ID)
	}
	if r.ImageURL != "https://picsum.photos/seed/mock-pie/500/300" {
		t.Errorf("Expected placeholder image, got '%s'", r.ImageURL)
	}
	if !strings.Contains(r.Description, ts.URL) {
		t.Errorf("Expected description to mention the source, got '%s'", r.Description)
	}
	if !strings.Contains(mockAI.Prompt, "Some Content") {
		t.Error("Expected page text in the prompt")
	}
	if meta.AgentName != AgentName || meta.Failed {
		t.Errorf("Unexpected meta %+v", meta)
	}
}

func TestClipURL_NonLatinNameGetsUUID(t *testing.T) {
	aiResponse := `{"name": "寿司", "ingredients": ["rice"], "instructions": ["roll"], "calories": 200}`
	c := NewClipper(&MockTextGenerator{Response: aiResponse})

	ts := servePage("<html><body>寿司</body></html>")
	defer ts.Close()

	r, _, err := c.ClipURL(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("ClipURL failed: %v", err)
	}
	if len(r.ID) != 36 {
		t.Errorf("Expected a uuid id, got '%s'", r.ID)
	}
}

func TestClipURL_Failures(t *testing.T) {
	ts := servePage("<html><body>Some Content</body></html>")
	defer ts.Close()

	cases := map[string]*MockTextGenerator{
		"ai error":       {ShouldError: true},
		"not json":       {Response: "a pie"},
		"no ingredients": {Response: `{"name": "Pie", "ingredients": []}`},
	}
	for name, gen := range cases {
		t.Run(name, func(t *testing.T) {
			_, meta, err := NewClipper(gen).ClipURL(context.Background(), ts.URL)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !meta.Failed {
				t.Error("Expected meta to be marked failed")
			}
		})
	}
}
