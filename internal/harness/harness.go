// Package harness orchestrates a full evaluation run: resolve the prompt,
// invoke the subject model, score the result, persist and publish the report.
package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evalgate/evalgate/internal/eval"
	"github.com/evalgate/evalgate/internal/llm"
	"github.com/evalgate/evalgate/internal/prompt"
	"github.com/evalgate/evalgate/internal/suite"
	"github.com/evalgate/evalgate/internal/telemetry"
)

// SubjectFactory builds a Generator for the suite's subject model. It is
// called once per run, so credentials and endpoints resolve at run time.
type SubjectFactory func(ctx context.Context, subj suite.Subject) (llm.Generator, error)

// JudgeFactory builds a Runner for a suite-level judge override.
type JudgeFactory func(ctx context.Context, j suite.Judge) (*eval.Runner, error)

// Harness wires the prompt store, subject model, evaluation runner and
// optional telemetry sink into one pipeline.
type Harness struct {
	prompts    *prompt.Store
	runner     *eval.Runner
	subjectFor SubjectFactory
	judgeFor   JudgeFactory
	publisher  *telemetry.Publisher
	suitesDir  string
	outputDir  string
}

// Option configures a Harness.
type Option func(*Harness)

// WithSuitesDir sets an external suites directory.
func WithSuitesDir(dir string) Option {
	return func(h *Harness) {
		h.suitesDir = dir
	}
}

// WithOutputDir sets where run artifacts are written.
func WithOutputDir(dir string) Option {
	return func(h *Harness) {
		h.outputDir = dir
	}
}

// WithPublisher attaches a telemetry sink.
func WithPublisher(p *telemetry.Publisher) Option {
	return func(h *Harness) {
		h.publisher = p
	}
}

// WithJudgeFactory enables per-suite judge overrides.
func WithJudgeFactory(fn JudgeFactory) Option {
	return func(h *Harness) {
		h.judgeFor = fn
	}
}

// New creates a Harness. The runner carries the default judge; subjectFor
// builds the model under test per run.
func New(prompts *prompt.Store, runner *eval.Runner, subjectFor SubjectFactory, opts ...Option) *Harness {
	h := &Harness{
		prompts:    prompts,
		runner:     runner,
		subjectFor: subjectFor,
		outputDir:  "results",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Outcome is the artifact set of one completed run.
type Outcome struct {
	RunID         string        `json:"run_id"`
	Suite         string        `json:"suite"`
	SubjectModel  string        `json:"subject_model"`
	GeneratedText string        `json:"-"`
	OutputPath    string        `json:"output_path"`
	ReportFile    string        `json:"report_file"`
	Report        *eval.Report  `json:"-"`
	Duration      time.Duration `json:"duration"`
}

// Run executes the named suite end to end. Subject-model provider failures
// (timeouts included) still yield a report with every metric errored;
// authentication and configuration failures abort before any artifact is
// written.
func (h *Harness) Run(ctx context.Context, suiteName string) (*Outcome, error) {
	s, err := suite.Load(suiteName, h.suitesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load suite: %w", err)
	}

	// Build the subject first so a missing credential fails before any
	// prompt load.
	subject, err := h.subjectFor(ctx, s.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare subject model: %w", err)
	}

	promptText, err := h.prompts.Load(s.Prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt for suite %q: %w", s.Name, err)
	}

	runner := h.runner
	if s.Judge != nil && h.judgeFor != nil {
		runner, err = h.judgeFor(ctx, *s.Judge)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare judge model: %w", err)
		}
	}

	start := time.Now()
	slog.Info("starting evaluation run",
		"suite", s.Name,
		"prompt", s.Prompt,
		"subject_model", s.Subject.Model,
		"metrics", len(s.Metrics),
	)

	var report *eval.Report
	var generated string

	out, genErr := subject.Generate(ctx, promptText)
	switch {
	case genErr == nil:
		generated = out.Text
		c := eval.Case{
			Input:          promptText,
			ActualOutput:   out.Text,
			ExpectedOutput: s.ExpectedOutput,
		}
		report, err = runner.Evaluate(ctx, c, s.Metrics)
		if err != nil {
			return nil, err
		}
	case isFatal(genErr):
		return nil, fmt.Errorf("subject model call failed: %w", genErr)
	default:
		// Provider failure on the subject call: the case has no actual
		// output, so every metric errors, but the report still completes.
		slog.Error("subject model call failed", "suite", s.Name, "error", genErr)
		report = subjectFailureReport(promptText, s, genErr)
	}

	outcome := &Outcome{
		RunID:         runID(s.Name, start),
		Suite:         s.Name,
		SubjectModel:  s.Subject.Model,
		GeneratedText: generated,
		Report:        report,
		Duration:      time.Since(start),
	}

	if err := h.writeArtifacts(outcome); err != nil {
		return nil, err
	}

	if h.publisher.Enabled() {
		if err := h.publisher.Publish(ctx, report); err != nil {
			if h.publisher.Required() {
				return nil, fmt.Errorf("required report upload failed: %w", err)
			}
			slog.Warn("report upload failed, continuing", "error", err)
		}
	}

	slog.Info("evaluation run complete",
		"run_id", outcome.RunID,
		"failed", report.Failed(),
		"duration", outcome.Duration,
	)
	return outcome, nil
}

func (h *Harness) writeArtifacts(o *Outcome) error {
	outputPath := filepath.Join(h.outputDir, o.RunID)
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	o.OutputPath = outputPath

	if o.GeneratedText != "" {
		outputFile := filepath.Join(outputPath, "output.txt")
		if err := os.WriteFile(outputFile, []byte(o.GeneratedText), 0o644); err != nil {
			return fmt.Errorf("failed to write model output: %w", err)
		}
	}

	reportFile := filepath.Join(outputPath, "report.json")
	if err := eval.WriteReportFile(o.Report, reportFile); err != nil {
		return err
	}
	o.ReportFile = reportFile
	return nil
}

// isFatal reports whether a subject-model error should abort the run
// rather than degrade into an errored report.
func isFatal(err error) bool {
	var authErr *llm.AuthError
	if errors.As(err, &authErr) {
		return true
	}
	var perr *llm.ProviderError
	return !errors.As(err, &perr)
}

func subjectFailureReport(promptText string, s *suite.Suite, genErr error) *eval.Report {
	reason := "subject model call failed"
	if llm.IsTimeout(genErr) {
		reason = "subject model call timed out"
	}

	results := make([]eval.Result, 0, len(s.Metrics))
	for _, m := range s.Metrics {
		results = append(results, eval.Result{
			Metric:    m.Name,
			Status:    eval.StatusErrored,
			Reasoning: reason,
			Err:       genErr.Error(),
		})
	}

	return &eval.Report{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Case:      eval.Case{Input: promptText, ExpectedOutput: s.ExpectedOutput},
		Results:   results,
	}
}

func runID(suiteName string, ts time.Time) string {
	sanitized := strings.ReplaceAll(suiteName, " ", "_")
	return fmt.Sprintf("%s_%s", sanitized, ts.Format("20060102-150405"))
}
