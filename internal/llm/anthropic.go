package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is the model used when no override is given.
// Haiku is the usual judge choice: cheap and fast enough for scoring.
const DefaultAnthropicModel = "claude-3-5-haiku-20241022"

// AnthropicGenerator implements Generator against the Anthropic Messages API.
type AnthropicGenerator struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewAnthropicGenerator creates a generator backed by the official
// Anthropic client. The credential is required.
func NewAnthropicGenerator(opts ...Option) (*AnthropicGenerator, error) {
	cfg := &clientConfig{
		model:     DefaultAnthropicModel,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.apiKey == "" {
		return nil, &AuthError{Provider: ProviderAnthropic, Err: errors.New("API key is required (set ANTHROPIC_API_KEY)")}
	}

	return &AnthropicGenerator{
		client:      anthropic.NewClient(option.WithAPIKey(cfg.apiKey)),
		model:       cfg.model,
		maxTokens:   cfg.maxTokens,
		temperature: cfg.temperature,
	}, nil
}

// Generate sends the prompt as a single user message.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (*Output, error) {
	start := time.Now()

	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   int64(g.maxTokens),
		Temperature: anthropic.Float(g.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		status := 0
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return nil, wrapProviderError(ProviderAnthropic, "message", status, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	if b.Len() == 0 {
		return nil, &ProviderError{
			Provider: ProviderAnthropic,
			Op:       "message",
			Err:      errors.New("no text content in response"),
		}
	}

	return &Output{
		Text:    b.String(),
		Latency: time.Since(start),
		Raw:     msg,
	}, nil
}

// Model returns the configured model identifier.
func (g *AnthropicGenerator) Model() string { return g.model }
