package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the model used when no override is given.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiGenerator implements Generator against the Gemini API.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewGeminiGenerator creates a generator backed by the google genai client.
// The credential is required. The context is only used for client setup.
func NewGeminiGenerator(ctx context.Context, opts ...Option) (*GeminiGenerator, error) {
	cfg := &clientConfig{
		model:     DefaultGeminiModel,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.apiKey == "" {
		return nil, &AuthError{Provider: ProviderGemini, Err: errors.New("API key is required (set GEMINI_API_KEY)")}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:      client,
		model:       cfg.model,
		maxTokens:   cfg.maxTokens,
		temperature: cfg.temperature,
	}, nil
}

// Generate sends the prompt as plain text content.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (*Output, error) {
	start := time.Now()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(g.temperature)),
		MaxOutputTokens: int32(g.maxTokens),
	})
	if err != nil {
		status := 0
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.Code
		}
		return nil, wrapProviderError(ProviderGemini, "generate content", status, err)
	}

	text := resp.Text()
	if text == "" {
		return nil, &ProviderError{
			Provider: ProviderGemini,
			Op:       "generate content",
			Err:      errors.New("no text content in response"),
		}
	}

	return &Output{
		Text:    text,
		Latency: time.Since(start),
		Raw:     resp,
	}, nil
}

// Model returns the configured model identifier.
func (g *GeminiGenerator) Model() string { return g.model }
