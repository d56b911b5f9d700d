package eval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildJudgePromptFieldOrder(t *testing.T) {
	m := Metric{
		Name:     "Correctness",
		Criteria: "Determine whether the actual output matches the expected output.",
		// Declared out of order on purpose.
		Params:    []Param{ParamExpectedOutput, ParamInput, ParamActualOutput},
		Threshold: 0.5,
	}
	c := Case{
		Input:          "List three colors.",
		ActualOutput:   "Red, blue, green.",
		ExpectedOutput: "Red, green, blue.",
	}

	prompt := buildJudgePrompt(m, c)

	inputIdx := strings.Index(prompt, "Input:")
	actualIdx := strings.Index(prompt, "Actual Output:")
	expectedIdx := strings.Index(prompt, "Expected Output:")
	require.True(t, inputIdx >= 0 && actualIdx >= 0 && expectedIdx >= 0)
	assert.Less(t, inputIdx, actualIdx)
	assert.Less(t, actualIdx, expectedIdx)

	assert.Contains(t, prompt, m.Criteria)
	assert.Contains(t, prompt, "List three colors.")
}

func TestBuildJudgePromptOmitsUnrequestedFields(t *testing.T) {
	m := Metric{
		Name:      "Fluency",
		Criteria:  "Judge only the fluency of the actual output.",
		Params:    []Param{ParamActualOutput},
		Threshold: 0.5,
	}
	c := Case{
		Input:          "secret input text",
		ActualOutput:   "The answer reads well.",
		ExpectedOutput: "secret expected text",
	}

	prompt := buildJudgePrompt(m, c)

	assert.Contains(t, prompt, "The answer reads well.")
	assert.NotContains(t, prompt, "secret input text")
	assert.NotContains(t, prompt, "secret expected text")
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		score  float64
		reason string
		hasErr bool
	}{
		{
			name:   "plain json",
			input:  `{"score": 0.8, "reason": "mostly correct"}`,
			score:  0.8,
			reason: "mostly correct",
		},
		{
			name:   "fenced json",
			input:  "```json\n{\"score\": 0.5, \"reason\": \"partial\"}\n```",
			score:  0.5,
			reason: "partial",
		},
		{
			name:   "json with surrounding prose",
			input:  "Here is my verdict: {\"score\": 1.0, \"reason\": \"exact match\"} as requested.",
			score:  1.0,
			reason: "exact match",
		},
		{
			name:  "bare number",
			input: "0.75",
			score: 0.75,
		},
		{
			name:  "ten point scale normalized",
			input: `{"score": 8, "reason": "good"}`,
			score: 0.8,
		},
		{
			name:   "json without score key",
			input:  `{"reason": "I cannot score this"}`,
			hasErr: true,
		},
		{
			name:   "percent scale rejected",
			input:  `{"score": 85, "reason": "great"}`,
			hasErr: true,
		},
		{
			name:   "negative score rejected",
			input:  `{"score": -0.5, "reason": "bad"}`,
			hasErr: true,
		},
		{
			name:   "no score at all",
			input:  "The output looks fine to me.",
			hasErr: true,
		},
		{
			name:   "empty",
			input:  "",
			hasErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := parseVerdict(tt.input)
			if tt.hasErr {
				assert.ErrorIs(t, err, ErrJudgeParse)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.score, v.Score, 0.001)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, v.Reason)
			}
		})
	}
}

func TestNormalizeScore(t *testing.T) {
	assert.Equal(t, 0.0, normalizeScore(0))
	assert.Equal(t, 0.5, normalizeScore(0.5))
	assert.Equal(t, 1.0, normalizeScore(1))
	assert.Equal(t, 0.7, normalizeScore(7))
	assert.Equal(t, 1.0, normalizeScore(10))
}
