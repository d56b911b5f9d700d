package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/eval"
	"github.com/evalgate/evalgate/internal/harness"
	"github.com/evalgate/evalgate/internal/prompt"
	"github.com/evalgate/evalgate/internal/telemetry"
)

func newRunCmd() *cobra.Command {
	var (
		provider    string
		model       string
		endpoint    string
		promptsDir  string
		suitesDir   string
		outputDir   string
		judgeTO     time.Duration
		concurrency int
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <suite>",
		Short: "Run an evaluation suite against a subject model",
		Long: `Execute an evaluation suite: load its prompt, send it to the subject model,
and judge the generated output against the suite's metrics.

The report is written to the output directory as JSON alongside the raw model
output. The command exits non-zero when any metric fails, errors, or is
skipped, so it can gate CI pipelines directly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			runner, err := newJudgeRunner(ctx, cfg, "", "", judgeTO, concurrency)
			if err != nil {
				return fmt.Errorf("failed to configure judge: %w", err)
			}

			publisher, err := telemetry.NewPublisher(cfg.Dashboard)
			if err != nil {
				return err
			}

			h := harness.New(prompt.NewStore(promptsDir), runner,
				newSubjectFactory(cfg, subjectOverrides{
					provider: provider,
					model:    model,
					endpoint: endpoint,
				}),
				harness.WithSuitesDir(suitesDir),
				harness.WithOutputDir(outputDir),
				harness.WithJudgeFactory(newJudgeFactory(cfg, judgeTO, concurrency)),
				harness.WithPublisher(publisher),
			)

			outcome, err := h.Run(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Println(eval.FormatText(outcome.Report))
			fmt.Printf("\nRun ID: %s\n", outcome.RunID)
			fmt.Printf("Output: %s\n", outcome.OutputPath)
			fmt.Printf("Report: %s\n", outcome.ReportFile)

			slog.Info("evaluation run complete",
				"run_id", outcome.RunID,
				"suite", outcome.Suite,
				"duration", outcome.Duration)

			if outcome.Report.Failed() {
				return fmt.Errorf("evaluation failed: suite %q did not pass", outcome.Suite)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Subject model provider: openai, anthropic, or gemini (overrides suite config)")
	cmd.Flags().StringVar(&model, "model", "", "Subject model name (overrides suite config)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "OpenAI-compatible endpoint URL for the subject model")
	cmd.Flags().StringVar(&promptsDir, "prompts-dir", "", "External prompts directory (optional)")
	cmd.Flags().StringVar(&suitesDir, "suites-dir", "", "External suites directory (optional)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "results", "Directory for run artifacts")
	cmd.Flags().DurationVar(&judgeTO, "judge-timeout", 60*time.Second, "Per-metric judge call timeout")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Number of metrics to judge in parallel")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Overall timeout for the run (e.g. 10m). 0 means no timeout")

	return cmd
}
