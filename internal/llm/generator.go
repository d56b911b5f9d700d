package llm

import (
	"context"
	"fmt"
	"time"
)

// Generator abstracts a generative model behind a single capability:
// turn a prompt into text. Provider-specific clients (OpenAI-compatible,
// Anthropic, Gemini) implement this so callers never branch on vendor.
type Generator interface {
	// Generate sends the prompt to the model and returns its output.
	// The call blocks on network I/O; cancel or bound it via ctx.
	Generate(ctx context.Context, prompt string) (*Output, error)
}

// Output holds the result of a single model invocation.
type Output struct {
	// Text is the generated completion.
	Text string

	// Latency is the wall-clock duration of the provider call.
	Latency time.Duration

	// Raw is the unmodified provider response, kept for debugging.
	Raw any
}

// Provider identifiers accepted by New.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// New constructs a Generator for the named provider.
func New(ctx context.Context, provider string, opts ...Option) (Generator, error) {
	switch provider {
	case ProviderOpenAI, "":
		return NewOpenAIGenerator(opts...)
	case ProviderAnthropic:
		return NewAnthropicGenerator(opts...)
	case ProviderGemini:
		return NewGeminiGenerator(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q (supported: %s, %s, %s)",
			provider, ProviderOpenAI, ProviderAnthropic, ProviderGemini)
	}
}
