// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/evalgate/evalgate/internal/llm"
)

// Config carries all environment-sourced settings. It is passed into
// constructors explicitly so tests can inject values without touching the
// process environment.
type Config struct {
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string

	JudgeProvider string
	JudgeModel    string

	Dashboard Dashboard
}

// Dashboard configures the optional telemetry sink.
type Dashboard struct {
	URL    string
	APIKey string

	// Required turns a missing dashboard credential into a fail-fast
	// configuration error instead of silently disabling uploads.
	Required bool
}

// Load reads configuration from a .env file (if present) and the process
// environment. A required-but-unconfigured dashboard fails here, before any
// prompt load or model call.
func Load() (*Config, error) {
	// Missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	cfg := &Config{
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		JudgeProvider:   getEnvOrDefault("EVALGATE_JUDGE_PROVIDER", llm.ProviderOpenAI),
		JudgeModel:      os.Getenv("EVALGATE_JUDGE_MODEL"),
		Dashboard: Dashboard{
			URL:      os.Getenv("EVALGATE_DASHBOARD_URL"),
			APIKey:   os.Getenv("EVALGATE_DASHBOARD_API_KEY"),
			Required: os.Getenv("EVALGATE_DASHBOARD_REQUIRED") == "true",
		},
	}

	if err := cfg.Dashboard.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the required-dashboard deployment choice.
func (d Dashboard) Validate() error {
	if d.Required && (d.URL == "" || d.APIKey == "") {
		return fmt.Errorf("dashboard reporting is required but EVALGATE_DASHBOARD_URL or EVALGATE_DASHBOARD_API_KEY is not set")
	}
	return nil
}

// Enabled reports whether report uploads should be attempted.
func (d Dashboard) Enabled() bool {
	return d.URL != "" && d.APIKey != ""
}

// KeyFor returns the credential for the named provider.
func (c *Config) KeyFor(provider string) string {
	switch provider {
	case llm.ProviderAnthropic:
		return c.AnthropicAPIKey
	case llm.ProviderGemini:
		return c.GeminiAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
