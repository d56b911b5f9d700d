package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/eval"
	"github.com/evalgate/evalgate/internal/suite"
)

func newScoreCmd() *cobra.Command {
	var (
		input         string
		expected      string
		suiteName     string
		suitesDir     string
		criteria      string
		metricName    string
		threshold     float64
		judgeProvider string
		judgeModel    string
		judgeTO       time.Duration
		reportPath    string
	)

	cmd := &cobra.Command{
		Use:   "score <output-file>",
		Short: "Judge an existing model output without generating",
		Long: `Evaluate a previously generated model output against metrics using an
LLM-as-judge, without calling a subject model.

The output file holds the text under evaluation. Metrics come either from a
suite (--suite) or from an ad-hoc criteria flag (--criteria). The command
exits non-zero when any metric fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read output file: %w", err)
			}
			actual := strings.TrimRight(string(data), "\n")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			c := eval.Case{
				Input:          input,
				ActualOutput:   actual,
				ExpectedOutput: expected,
			}

			var metrics []eval.Metric
			switch {
			case suiteName != "":
				s, err := suite.Load(suiteName, suitesDir)
				if err != nil {
					return fmt.Errorf("failed to load suite: %w", err)
				}
				metrics = s.Metrics
				if c.ExpectedOutput == "" {
					c.ExpectedOutput = s.ExpectedOutput
				}
			case criteria != "":
				params := []eval.Param{eval.ParamActualOutput}
				if c.Input != "" {
					params = append([]eval.Param{eval.ParamInput}, params...)
				}
				if c.ExpectedOutput != "" {
					params = append(params, eval.ParamExpectedOutput)
				}
				metrics = []eval.Metric{{
					Name:      metricName,
					Criteria:  criteria,
					Params:    params,
					Threshold: threshold,
				}}
			default:
				return fmt.Errorf("either --suite or --criteria is required")
			}

			runner, err := newJudgeRunner(ctx, cfg, judgeProvider, judgeModel, judgeTO, 1)
			if err != nil {
				return fmt.Errorf("failed to configure judge: %w", err)
			}

			report, err := runner.Evaluate(ctx, c, metrics)
			if err != nil {
				return err
			}

			fmt.Println(eval.FormatText(report))

			if reportPath != "" {
				if err := eval.WriteReportFile(report, reportPath); err != nil {
					return err
				}
				fmt.Printf("\nReport written to: %s\n", reportPath)
			}

			if report.Failed() {
				return fmt.Errorf("evaluation failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "The prompt or question that produced the output")
	cmd.Flags().StringVar(&expected, "expected", "", "Reference output to compare against")
	cmd.Flags().StringVar(&suiteName, "suite", "", "Take metrics from this suite")
	cmd.Flags().StringVar(&suitesDir, "suites-dir", "", "External suites directory (optional)")
	cmd.Flags().StringVar(&criteria, "criteria", "", "Ad-hoc judge criteria (alternative to --suite)")
	cmd.Flags().StringVar(&metricName, "metric", "Correctness", "Metric name for ad-hoc criteria")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.5, "Pass threshold for ad-hoc criteria in [0,1]")
	cmd.Flags().StringVar(&judgeProvider, "judge-provider", "", "Judge provider (defaults to EVALGATE_JUDGE_PROVIDER)")
	cmd.Flags().StringVar(&judgeModel, "judge-model", "", "Judge model (defaults to EVALGATE_JUDGE_MODEL)")
	cmd.Flags().DurationVar(&judgeTO, "judge-timeout", 60*time.Second, "Per-metric judge call timeout")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write the JSON report to this path")

	return cmd
}
