package eval

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// judgeInstructions is the fixed preamble of every judge prompt. The judge
// must answer with a JSON verdict so parsing stays deterministic.
const judgeInstructions = `You are an impartial evaluation judge. Score how well the actual output satisfies the evaluation criteria below.

Respond with a single JSON object and nothing else:
{"score": <number between 0.0 and 1.0>, "reason": "<one or two sentences explaining the score>"}

A score of 1.0 means the criteria are fully satisfied, 0.0 means not at all.`

// fieldLabels maps params to the section headers used in the judge prompt.
var fieldLabels = map[Param]string{
	ParamInput:          "Input",
	ParamActualOutput:   "Actual Output",
	ParamExpectedOutput: "Expected Output",
}

// buildJudgePrompt assembles the prompt for one metric. Case fields appear
// in fixed order (input, actual_output, expected_output) and only when the
// metric requests them.
func buildJudgePrompt(m Metric, c Case) string {
	var b strings.Builder
	b.WriteString(judgeInstructions)
	b.WriteString("\n\nEvaluation criteria:\n")
	b.WriteString(m.Criteria)
	b.WriteString("\n")

	for _, p := range paramOrder {
		if !m.wants(p) {
			continue
		}
		value, _ := c.field(p)
		fmt.Fprintf(&b, "\n%s:\n%s\n", fieldLabels[p], value)
	}

	return b.String()
}

// verdict is the parsed judge response.
type verdict struct {
	Score  float64
	Reason string
}

// jsonVerdict decodes the judge's JSON answer. Score is a pointer so a
// response that omits the key is detected instead of defaulting to zero.
type jsonVerdict struct {
	Score  *float64 `json:"score"`
	Reason string   `json:"reason"`
}

// ErrJudgeParse is returned when a judge response cannot be turned into a
// score. The caller downgrades this to an errored result for one metric.
var ErrJudgeParse = errors.New("judge response is not parseable")

var bareNumberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// parseVerdict extracts a score and rationale from the judge's raw text.
// It tolerates code fences and surrounding prose around the JSON object,
// and falls back to the first bare number when no JSON is present. Scores
// on a 0-10 scale are normalized; a missing score key or a score outside
// [0,10] is a parse failure, never a fabricated verdict.
func parseVerdict(text string) (verdict, error) {
	trimmed := strings.TrimSpace(stripCodeFences(text))
	if trimmed == "" {
		return verdict{}, fmt.Errorf("empty judge response: %w", ErrJudgeParse)
	}

	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			var v jsonVerdict
			if err := json.Unmarshal([]byte(trimmed[start:end+1]), &v); err == nil {
				if v.Score == nil {
					return verdict{}, fmt.Errorf("judge response has no score field: %w", ErrJudgeParse)
				}
				if *v.Score < 0 || *v.Score > 10 {
					return verdict{}, fmt.Errorf("judge score %v is outside the 0-10 range: %w", *v.Score, ErrJudgeParse)
				}
				return verdict{Score: normalizeScore(*v.Score), Reason: v.Reason}, nil
			}
		}
	}

	// Some judges answer with a bare number despite the instructions.
	if match := bareNumberPattern.FindString(trimmed); match != "" {
		score, err := strconv.ParseFloat(match, 64)
		if err == nil && score >= 0 && score <= 10 {
			return verdict{Score: normalizeScore(score)}, nil
		}
	}

	return verdict{}, fmt.Errorf("no score found in judge response: %w", ErrJudgeParse)
}

// normalizeScore maps (1,10]-scale scores down to [0,1]. Callers check the
// 0-10 range before calling.
func normalizeScore(s float64) float64 {
	if s > 1 {
		return s / 10
	}
	return s
}

func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return trimmed
}
