package eval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/evalgate/evalgate/internal/llm"
)

// Runner evaluates cases against metrics using a judge model.
type Runner struct {
	judge       llm.Generator
	judgeName   string
	callTimeout time.Duration
	concurrency int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithJudgeName records the judge model identifier in reports.
func WithJudgeName(name string) RunnerOption {
	return func(r *Runner) {
		r.judgeName = name
	}
}

// WithCallTimeout bounds each individual judge call. A call exceeding the
// deadline becomes an errored result for its metric, not a fatal error.
func WithCallTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.callTimeout = d
	}
}

// WithConcurrency allows up to n judge calls in flight at once. Report
// ordering still matches declared metric order. Default is sequential.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		r.concurrency = n
	}
}

// NewRunner creates a Runner with the given judge model.
func NewRunner(judge llm.Generator, opts ...RunnerOption) *Runner {
	r := &Runner{judge: judge, concurrency: 1}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Evaluate scores the case against every metric, in declared order, and
// returns the fully materialized report. Metric-level judge failures are
// captured as errored results; only precondition violations (invalid
// metric, case missing a required field) abort before any judge call.
func (r *Runner) Evaluate(ctx context.Context, c Case, metrics []Metric) (*Report, error) {
	if len(metrics) == 0 {
		return nil, fmt.Errorf("no metrics specified for evaluation")
	}

	for _, m := range metrics {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if missing := missingParams(m, c); len(missing) > 0 {
			return nil, &InvalidCaseError{Metric: m.Name, Missing: missing}
		}
	}

	start := time.Now()
	report := &Report{
		ID:         uuid.NewString(),
		Timestamp:  start,
		JudgeModel: r.judgeName,
		Case:       c,
		Results:    make([]Result, len(metrics)),
	}

	if r.concurrency > 1 {
		r.evaluateParallel(ctx, c, metrics, report.Results)
	} else {
		r.evaluateSequential(ctx, c, metrics, report.Results)
	}

	report.Duration = time.Since(start)
	return report, nil
}

func (r *Runner) evaluateSequential(ctx context.Context, c Case, metrics []Metric, results []Result) {
	for i, m := range metrics {
		if ctx.Err() != nil {
			results[i] = skippedResult(m)
			continue
		}
		results[i] = r.evaluateMetric(ctx, m, c)
	}
}

// evaluateParallel runs judge calls concurrently. Each goroutine writes
// only its own index, so declared metric order is preserved.
func (r *Runner) evaluateParallel(ctx context.Context, c Case, metrics []Metric, results []Result) {
	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i, m := range metrics {
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = skippedResult(m)
				return nil
			}
			results[i] = r.evaluateMetric(ctx, m, c)
			return nil
		})
	}

	_ = g.Wait()
}

func (r *Runner) evaluateMetric(ctx context.Context, m Metric, c Case) Result {
	callCtx := ctx
	if r.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.callTimeout)
		defer cancel()
	}

	out, err := r.judge.Generate(callCtx, buildJudgePrompt(m, c))
	if err != nil {
		reason := "judge call failed"
		if llm.IsTimeout(err) {
			reason = "judge call timed out"
		}
		slog.Error("judge call failed", "metric", m.Name, "error", err)
		return Result{
			Metric:    m.Name,
			Status:    StatusErrored,
			Reasoning: reason,
			Err:       err.Error(),
		}
	}

	v, err := parseVerdict(out.Text)
	if err != nil {
		slog.Warn("judge response unparseable", "metric", m.Name, "error", err)
		return Result{
			Metric:    m.Name,
			Status:    StatusErrored,
			Reasoning: "judge response could not be parsed into a score",
			Err:       err.Error(),
		}
	}

	slog.Debug("metric scored",
		"metric", m.Name,
		"score", v.Score,
		"threshold", m.Threshold,
		"latency", out.Latency,
	)

	return Result{
		Metric:    m.Name,
		Status:    StatusScored,
		Score:     v.Score,
		Passed:    v.Score >= m.Threshold,
		Reasoning: v.Reason,
	}
}

func skippedResult(m Metric) Result {
	return Result{
		Metric:    m.Name,
		Status:    StatusSkipped,
		Reasoning: "evaluation cancelled before this metric ran",
	}
}

func missingParams(m Metric, c Case) []Param {
	var missing []Param
	for _, p := range m.Params {
		if _, ok := c.field(p); !ok {
			missing = append(missing, p)
		}
	}
	return missing
}
