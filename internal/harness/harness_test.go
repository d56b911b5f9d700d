package harness

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalgate/evalgate/internal/eval"
	"github.com/evalgate/evalgate/internal/llm"
	"github.com/evalgate/evalgate/internal/prompt"
	"github.com/evalgate/evalgate/internal/suite"
	"github.com/evalgate/evalgate/internal/testutil"
)

func writeSuite(t *testing.T, dir, name, doc string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(doc), 0o644))
}

const basicSuite = `
name: colors
prompt: colors
expected_output: "Red, green, blue."
subject:
  provider: openai
  model: test-model
metrics:
  - name: Correctness
    criteria: Same colors regardless of order.
    params: [input, actual_output, expected_output]
    threshold: 0.5
`

func newTestHarness(t *testing.T, subject, judge llm.Generator, opts ...Option) *Harness {
	t.Helper()

	suitesDir := t.TempDir()
	writeSuite(t, suitesDir, "colors", basicSuite)

	subjectFor := func(_ context.Context, _ suite.Subject) (llm.Generator, error) {
		return subject, nil
	}

	base := []Option{
		WithSuitesDir(suitesDir),
		WithOutputDir(t.TempDir()),
	}
	return New(prompt.NewStore(""), eval.NewRunner(judge), subjectFor, append(base, opts...)...)
}

func TestRunProducesPassingReport(t *testing.T) {
	subject := &testutil.MockGenerator{DefaultResponse: "Red, blue, green."}
	judge := &testutil.MockGenerator{DefaultResponse: `{"score": 0.9, "reason": "same colors"}`}

	h := newTestHarness(t, subject, judge)

	outcome, err := h.Run(context.Background(), "colors")
	require.NoError(t, err)

	assert.Equal(t, "colors", outcome.Suite)
	assert.Equal(t, "test-model", outcome.SubjectModel)
	assert.False(t, outcome.Report.Failed())
	require.Len(t, outcome.Report.Results, 1)
	assert.True(t, outcome.Report.Results[0].Passed)

	// The judge saw the prompt text as the case input.
	assert.Contains(t, judge.Prompts[0], "List three colors.")
	assert.Contains(t, judge.Prompts[0], "Red, blue, green.")

	assert.FileExists(t, outcome.ReportFile)
	assert.FileExists(t, filepath.Join(outcome.OutputPath, "output.txt"))
}

func TestRunSubjectProviderFailureStillWritesReport(t *testing.T) {
	subject := &testutil.MockGenerator{
		Err: &llm.ProviderError{Provider: "openai", Op: "chat completion", Timeout: true, Retryable: true, Err: context.DeadlineExceeded},
	}
	judge := &testutil.MockGenerator{}

	h := newTestHarness(t, subject, judge)

	outcome, err := h.Run(context.Background(), "colors")
	require.NoError(t, err, "a subject provider failure must still produce a report")

	require.Len(t, outcome.Report.Results, 1)
	res := outcome.Report.Results[0]
	assert.Equal(t, eval.StatusErrored, res.Status)
	assert.False(t, res.Passed)
	assert.Contains(t, res.Reasoning, "timed out")
	assert.Zero(t, judge.Calls, "no judge call without an actual output")
	assert.True(t, outcome.Report.Failed())
	assert.FileExists(t, outcome.ReportFile)
}

func TestRunSubjectAuthFailureIsFatal(t *testing.T) {
	subject := &testutil.MockGenerator{
		Err: &llm.AuthError{Provider: "openai", Err: errors.New("invalid key")},
	}
	h := newTestHarness(t, subject, &testutil.MockGenerator{})

	_, err := h.Run(context.Background(), "colors")

	var authErr *llm.AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestRunUnknownSuite(t *testing.T) {
	h := newTestHarness(t, &testutil.MockGenerator{}, &testutil.MockGenerator{})

	_, err := h.Run(context.Background(), "missing-suite")
	assert.Error(t, err)
}

func TestRunMissingPromptIsFatal(t *testing.T) {
	suitesDir := t.TempDir()
	writeSuite(t, suitesDir, "broken", `
name: broken
prompt: no-such-prompt
metrics:
  - name: M
    criteria: c
    params: [actual_output]
`)

	subject := &testutil.MockGenerator{}
	h := New(prompt.NewStore(""), eval.NewRunner(&testutil.MockGenerator{}),
		func(_ context.Context, _ suite.Subject) (llm.Generator, error) { return subject, nil },
		WithSuitesDir(suitesDir),
		WithOutputDir(t.TempDir()),
	)

	_, err := h.Run(context.Background(), "broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, prompt.ErrNotFound)
	assert.Zero(t, subject.Calls, "no model call when the prompt asset is missing")
}

func TestRunSubjectCredentialFailureBeforePromptLoad(t *testing.T) {
	suitesDir := t.TempDir()
	// The prompt is deliberately missing: with a broken credential the run
	// must fail on the credential, not get as far as the prompt lookup.
	writeSuite(t, suitesDir, "nocred", `
name: nocred
prompt: no-such-prompt
metrics:
  - name: M
    criteria: c
    params: [actual_output]
`)

	h := New(prompt.NewStore(""), eval.NewRunner(&testutil.MockGenerator{}),
		func(_ context.Context, _ suite.Subject) (llm.Generator, error) {
			return nil, &llm.AuthError{Provider: "openai", Err: errors.New("API key is required")}
		},
		WithSuitesDir(suitesDir),
		WithOutputDir(t.TempDir()),
	)

	_, err := h.Run(context.Background(), "nocred")

	var authErr *llm.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.NotErrorIs(t, err, prompt.ErrNotFound)
}

func TestRunJudgeOverrideUsed(t *testing.T) {
	subject := &testutil.MockGenerator{DefaultResponse: "Red, blue, green."}
	defaultJudge := &testutil.MockGenerator{DefaultResponse: `{"score": 0.9}`}
	overrideJudge := &testutil.MockGenerator{DefaultResponse: `{"score": 0.2, "reason": "strict"}`}

	suitesDir := t.TempDir()
	writeSuite(t, suitesDir, "strict", `
name: strict
prompt: colors
expected_output: "Red, green, blue."
judge:
  provider: anthropic
  model: strict-judge
metrics:
  - name: Correctness
    criteria: Same colors regardless of order.
    params: [input, actual_output, expected_output]
    threshold: 0.5
`)

	h := New(prompt.NewStore(""), eval.NewRunner(defaultJudge),
		func(_ context.Context, _ suite.Subject) (llm.Generator, error) { return subject, nil },
		WithSuitesDir(suitesDir),
		WithOutputDir(t.TempDir()),
		WithJudgeFactory(func(_ context.Context, j suite.Judge) (*eval.Runner, error) {
			assert.Equal(t, "strict-judge", j.Model)
			return eval.NewRunner(overrideJudge, eval.WithJudgeName(j.Model)), nil
		}),
	)

	outcome, err := h.Run(context.Background(), "strict")
	require.NoError(t, err)

	assert.Zero(t, defaultJudge.Calls)
	assert.Equal(t, 1, overrideJudge.Calls)
	assert.True(t, outcome.Report.Failed())
	assert.Equal(t, "strict-judge", outcome.Report.JudgeModel)
}
