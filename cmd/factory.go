package cmd

import (
	"context"
	"time"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/eval"
	"github.com/evalgate/evalgate/internal/harness"
	"github.com/evalgate/evalgate/internal/llm"
	"github.com/evalgate/evalgate/internal/suite"
)

// subjectOverrides carries CLI flags that take precedence over the suite's
// subject configuration.
type subjectOverrides struct {
	provider string
	model    string
	endpoint string
}

// newSubjectFactory builds generators for the model under test. Credentials
// come from the environment config; overrides come from CLI flags.
func newSubjectFactory(cfg *config.Config, ov subjectOverrides) harness.SubjectFactory {
	return func(ctx context.Context, subj suite.Subject) (llm.Generator, error) {
		provider := subj.Provider
		if ov.provider != "" {
			provider = ov.provider
		}
		model := subj.Model
		if ov.model != "" {
			model = ov.model
		}

		var opts []llm.Option
		if key := cfg.KeyFor(provider); key != "" {
			opts = append(opts, llm.WithAPIKey(key))
		}
		if ov.endpoint != "" {
			opts = append(opts, llm.WithBaseURL(ov.endpoint))
		}
		if model != "" {
			opts = append(opts, llm.WithModel(model))
		}
		if subj.MaxTokens > 0 {
			opts = append(opts, llm.WithMaxTokens(subj.MaxTokens))
		}
		opts = append(opts, llm.WithTemperature(subj.Temperature))

		return llm.New(ctx, provider, opts...)
	}
}

// newJudgeRunner builds the evaluation runner around a judge generator.
// Provider and model fall back to the environment config, then to the
// provider's default model.
func newJudgeRunner(ctx context.Context, cfg *config.Config, provider, model string, timeout time.Duration, concurrency int) (*eval.Runner, error) {
	if provider == "" {
		provider = cfg.JudgeProvider
	}
	if model == "" {
		model = cfg.JudgeModel
	}

	var opts []llm.Option
	if key := cfg.KeyFor(provider); key != "" {
		opts = append(opts, llm.WithAPIKey(key))
	}
	if model != "" {
		opts = append(opts, llm.WithModel(model))
	}

	judge, err := llm.New(ctx, provider, opts...)
	if err != nil {
		return nil, err
	}

	runnerOpts := []eval.RunnerOption{
		eval.WithJudgeName(judgeName(provider, model)),
	}
	if timeout > 0 {
		runnerOpts = append(runnerOpts, eval.WithCallTimeout(timeout))
	}
	if concurrency > 1 {
		runnerOpts = append(runnerOpts, eval.WithConcurrency(concurrency))
	}
	return eval.NewRunner(judge, runnerOpts...), nil
}

// newJudgeFactory builds per-suite judge runners for suites that override
// the judge model.
func newJudgeFactory(cfg *config.Config, timeout time.Duration, concurrency int) harness.JudgeFactory {
	return func(ctx context.Context, j suite.Judge) (*eval.Runner, error) {
		return newJudgeRunner(ctx, cfg, j.Provider, j.Model, timeout, concurrency)
	}
}

func judgeName(provider, model string) string {
	if model != "" {
		return model
	}
	switch provider {
	case llm.ProviderAnthropic:
		return llm.DefaultAnthropicModel
	case llm.ProviderGemini:
		return llm.DefaultGeminiModel
	default:
		return llm.DefaultOpenAIModel
	}
}
