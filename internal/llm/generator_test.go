package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIGeneratorRequiresKey(t *testing.T) {
	_, err := NewOpenAIGenerator()

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, ProviderOpenAI, authErr.Provider)
}

func TestNewOpenAIGeneratorLocalEndpointWithoutKey(t *testing.T) {
	g, err := NewOpenAIGenerator(WithBaseURL("http://localhost:8000/v1"))
	require.NoError(t, err)
	assert.Equal(t, DefaultOpenAIModel, g.model)
}

func TestNewOpenAIGeneratorOptions(t *testing.T) {
	g, err := NewOpenAIGenerator(
		WithAPIKey("sk-test"),
		WithModel("gpt-4o"),
		WithMaxTokens(512),
		WithTemperature(0.3),
	)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", g.model)
	assert.Equal(t, 512, g.maxTokens)
	assert.Equal(t, 0.3, g.temperature)
}

func TestNewAnthropicGeneratorRequiresKey(t *testing.T) {
	_, err := NewAnthropicGenerator()

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, ProviderAnthropic, authErr.Provider)
}

func TestNewAnthropicGeneratorDefaults(t *testing.T) {
	g, err := NewAnthropicGenerator(WithAPIKey("test-key"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAnthropicModel, g.model)
	assert.Equal(t, defaultMaxTokens, g.maxTokens)
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background())

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, ProviderGemini, authErr.Provider)
}

func TestNewSelectsProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantErr  bool
	}{
		{provider: "openai"},
		{provider: "anthropic"},
		{provider: "unknown", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			g, err := New(context.Background(), tt.provider, WithAPIKey("test-key"))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, g)
		})
	}
}

func TestWrapProviderErrorClassification(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name      string
		status    int
		err       error
		auth      bool
		retryable bool
		timeout   bool
	}{
		{name: "rate limit", status: 429, err: base, retryable: true},
		{name: "server error", status: 503, err: base, retryable: true},
		{name: "unauthorized", status: 401, err: base, auth: true},
		{name: "forbidden", status: 403, err: base, auth: true},
		{name: "bad request", status: 400, err: base},
		{name: "not found", status: 404, err: base},
		{name: "deadline", status: 0, err: context.DeadlineExceeded, retryable: true, timeout: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapProviderError("openai", "chat completion", tt.status, tt.err)

			if tt.auth {
				var authErr *AuthError
				assert.ErrorAs(t, err, &authErr)
				return
			}

			var perr *ProviderError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.retryable, perr.Retryable)
			assert.Equal(t, tt.timeout, perr.Timeout)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestIsRetryableAndIsTimeout(t *testing.T) {
	timeout := wrapProviderError("openai", "chat completion", 0, context.DeadlineExceeded)
	assert.True(t, IsRetryable(timeout))
	assert.True(t, IsTimeout(timeout))

	fatal := wrapProviderError("openai", "chat completion", 400, errors.New("invalid request"))
	assert.False(t, IsRetryable(fatal))
	assert.False(t, IsTimeout(fatal))

	assert.False(t, IsRetryable(errors.New("plain")))
}
