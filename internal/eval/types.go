// Package eval scores model outputs against named, threshold-gated metrics
// using an LLM as judge.
package eval

import (
	"fmt"
	"time"
)

// Param names a case field a metric's judge is allowed to see.
type Param string

const (
	ParamInput          Param = "input"
	ParamActualOutput   Param = "actual_output"
	ParamExpectedOutput Param = "expected_output"
)

// paramOrder is the fixed order in which case fields appear in a judge
// prompt, regardless of the order they are declared in the metric.
var paramOrder = []Param{ParamInput, ParamActualOutput, ParamExpectedOutput}

// Valid reports whether p is one of the known case fields.
func (p Param) Valid() bool {
	switch p {
	case ParamInput, ParamActualOutput, ParamExpectedOutput:
		return true
	}
	return false
}

// Metric is a named scoring rule. The judge receives the criteria text plus
// exactly the case fields listed in Params -- nothing else leaks into the
// judge prompt.
type Metric struct {
	Name      string  `json:"name" yaml:"name"`
	Criteria  string  `json:"criteria" yaml:"criteria"`
	Params    []Param `json:"params" yaml:"params"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// Validate checks the metric definition.
func (m Metric) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("metric name is required")
	}
	if m.Criteria == "" {
		return fmt.Errorf("metric %q: criteria is required", m.Name)
	}
	if len(m.Params) == 0 {
		return fmt.Errorf("metric %q: at least one evaluation param is required", m.Name)
	}
	for _, p := range m.Params {
		if !p.Valid() {
			return fmt.Errorf("metric %q: unknown evaluation param %q", m.Name, p)
		}
	}
	if m.Threshold < 0 || m.Threshold > 1 {
		return fmt.Errorf("metric %q: threshold %v is outside [0,1]", m.Name, m.Threshold)
	}
	return nil
}

// wants reports whether the metric requests the given param.
func (m Metric) wants(p Param) bool {
	for _, mp := range m.Params {
		if mp == p {
			return true
		}
	}
	return false
}

// Case is one (input, actual output, optional expected output) triple
// under evaluation.
type Case struct {
	Input          string `json:"input"`
	ActualOutput   string `json:"actual_output"`
	ExpectedOutput string `json:"expected_output,omitempty"`
}

// field returns the value of the named param and whether it is present.
func (c Case) field(p Param) (string, bool) {
	switch p {
	case ParamInput:
		return c.Input, c.Input != ""
	case ParamActualOutput:
		return c.ActualOutput, c.ActualOutput != ""
	case ParamExpectedOutput:
		return c.ExpectedOutput, c.ExpectedOutput != ""
	}
	return "", false
}

// InvalidCaseError is returned when the case lacks a field some metric
// requires. It is raised before any judge call is made.
type InvalidCaseError struct {
	Metric  string
	Missing []Param
}

func (e *InvalidCaseError) Error() string {
	return fmt.Sprintf("case is missing fields %v required by metric %q", e.Missing, e.Metric)
}

// Status is the terminal state of a single metric evaluation.
type Status string

const (
	// StatusScored means the judge returned a parseable score.
	StatusScored Status = "scored"
	// StatusErrored means the judge call failed or its response was
	// unparseable; the result counts as not passed.
	StatusErrored Status = "errored"
	// StatusSkipped means the metric never ran because the evaluation
	// was cancelled first.
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one (case, metric) pair.
type Result struct {
	Metric    string  `json:"metric"`
	Status    Status  `json:"status"`
	Score     float64 `json:"score"`
	Passed    bool    `json:"passed"`
	Reasoning string  `json:"reasoning,omitempty"`
	Err       string  `json:"error,omitempty"`
}

// Report collects the per-metric results for one case, in declared metric
// order. It is fully materialized before being returned.
type Report struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	JudgeModel string        `json:"judge_model,omitempty"`
	Case       Case          `json:"case"`
	Results    []Result      `json:"results"`
	Duration   time.Duration `json:"duration"`
}

// Failed reports whether any metric did not pass. Errored and skipped
// results count as failures so CI gating stays conservative.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Status != StatusScored || !res.Passed {
			return true
		}
	}
	return false
}
