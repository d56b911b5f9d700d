// Package suite loads evaluation suite definitions: which prompt to run,
// which model answers it, and which metrics gate the result.
package suite

import (
	"fmt"

	"github.com/evalgate/evalgate/internal/eval"
)

// Suite is a loaded evaluation suite.
type Suite struct {
	Name           string        `yaml:"name"`
	Description    string        `yaml:"description"`
	Version        string        `yaml:"version"`
	Prompt         string        `yaml:"prompt"`
	ExpectedOutput string        `yaml:"expected_output"`
	Subject        Subject       `yaml:"subject"`
	Judge          *Judge        `yaml:"judge"`
	Metrics        []eval.Metric `yaml:"-"` // validated separately during load
}

// Subject configures the model under test.
type Subject struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// Judge optionally overrides the judge model for this suite.
type Judge struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// Validate checks suite-level invariants. Metric-level validation happens
// during load so defaults can be applied first.
func (s *Suite) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("suite name is required")
	}
	if s.Prompt == "" {
		return fmt.Errorf("suite %q: prompt is required", s.Name)
	}
	if len(s.Metrics) == 0 {
		return fmt.Errorf("suite %q: at least one metric is required", s.Name)
	}
	for _, m := range s.Metrics {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("suite %q: %w", s.Name, err)
		}
	}
	return nil
}
