package assist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// GeminiConfig configures the Gemini adapter.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
}

// GeminiProvider sends prompts to the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGeminiProvider creates the genai client. An empty APIKey lets the SDK
// fall back to GOOGLE_API_KEY / GEMINI_API_KEY from the environment.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiProvider: create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &GeminiProvider{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature: genai.Ptr(cfg.Temperature),
		},
	}, nil
}

// Respond sends prompt as a single user turn and returns the response text.
func (p *GeminiProvider) Respond(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, p.config)
	if err != nil {
		if isContextLength(err) {
			return "", fmt.Errorf("GeminiProvider.Respond: %w: %w", ErrContextLengthExceeded, err)
		}
		return "", fmt.Errorf("GeminiProvider.Respond: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("GeminiProvider.Respond: empty response from model")
	}
	return text, nil
}

func (p *GeminiProvider) Available() bool { return p != nil && p.client != nil }

// isContextLength maps the API's token-limit rejection onto
// ErrContextLengthExceeded. Only an INVALID_ARGUMENT response that talks
// about the token count qualifies; the message check is confined here so
// callers only ever see the typed error.
func isContextLength(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code != http.StatusBadRequest && apiErr.Status != "INVALID_ARGUMENT" {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	if !strings.Contains(msg, "token") && !strings.Contains(msg, "context") {
		return false
	}
	return strings.Contains(msg, "exceed") || strings.Contains(msg, "too long") || strings.Contains(msg, "limit")
}
