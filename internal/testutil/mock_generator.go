// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/evalgate/evalgate/internal/llm"
)

// MockGenerator is a configurable test double for llm.Generator.
// Judge calls are matched by substring of the prompt, so tests can key
// responses off metric criteria without reproducing full judge prompts.
type MockGenerator struct {
	mu sync.Mutex

	// Responses maps a prompt substring to a canned response.
	Responses map[string]string

	// DefaultResponse is returned when no substring matches.
	DefaultResponse string

	// Err, when set, is returned from every call.
	Err error

	// Delay is slept (or cut short by ctx) before answering.
	Delay time.Duration

	// Calls counts Generate invocations.
	Calls int

	// Prompts records every prompt received, in call order.
	Prompts []string
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (*llm.Output, error) {
	m.mu.Lock()
	m.Calls++
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, &llm.ProviderError{
				Provider:  "mock",
				Op:        "generate",
				Retryable: true,
				Timeout:   true,
				Err:       ctx.Err(),
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, &llm.ProviderError{Provider: "mock", Op: "generate", Timeout: true, Retryable: true, Err: err}
	}

	if m.Err != nil {
		return nil, m.Err
	}

	for substr, resp := range m.Responses {
		if strings.Contains(prompt, substr) {
			return &llm.Output{Text: resp}, nil
		}
	}

	if m.DefaultResponse != "" {
		return &llm.Output{Text: m.DefaultResponse}, nil
	}

	return &llm.Output{Text: `{"score": 1.0, "reason": "mock verdict"}`}, nil
}
