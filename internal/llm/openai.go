package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is the model used when no override is given.
const DefaultOpenAIModel = "gpt-4o-mini"

const defaultMaxTokens = 4096

// OpenAIGenerator implements Generator against any OpenAI-compatible
// chat completion API, including local vLLM and Ollama endpoints.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewOpenAIGenerator creates a generator for an OpenAI-compatible API.
// A credential is required unless a custom base URL is set, since local
// endpoints typically accept any key.
func NewOpenAIGenerator(opts ...Option) (*OpenAIGenerator, error) {
	cfg := &clientConfig{
		model:     DefaultOpenAIModel,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.apiKey == "" {
		if cfg.baseURL == "" {
			return nil, &AuthError{Provider: ProviderOpenAI, Err: errors.New("API key is required (set OPENAI_API_KEY)")}
		}
		cfg.apiKey = "not-needed"
	}

	config := openai.DefaultConfig(cfg.apiKey)
	if cfg.baseURL != "" {
		config.BaseURL = cfg.baseURL
	}

	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(config),
		model:       cfg.model,
		maxTokens:   cfg.maxTokens,
		temperature: cfg.temperature,
	}, nil
}

// Generate sends the prompt as a single user message.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (*Output, error) {
	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: float32(g.temperature),
	})
	if err != nil {
		status := 0
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.HTTPStatusCode
		}
		return nil, wrapProviderError(ProviderOpenAI, "chat completion", status, err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ProviderError{
			Provider: ProviderOpenAI,
			Op:       "chat completion",
			Err:      errors.New("no choices returned"),
		}
	}

	return &Output{
		Text:    resp.Choices[0].Message.Content,
		Latency: time.Since(start),
		Raw:     resp,
	}, nil
}

// Model returns the configured model identifier.
func (g *OpenAIGenerator) Model() string { return g.model }
