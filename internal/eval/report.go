package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// WriteReportFile writes the report as indented JSON to path.
func WriteReportFile(report *Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// FormatText renders a human-readable summary of the report, one line per
// metric plus an overall verdict.
func FormatText(report *Report) string {
	var b strings.Builder

	passed := 0
	for _, res := range report.Results {
		var marker string
		switch {
		case res.Status == StatusSkipped:
			marker = "SKIP"
		case res.Status == StatusErrored:
			marker = "ERROR"
		case res.Passed:
			marker = "PASS"
			passed++
		default:
			marker = "FAIL"
		}

		fmt.Fprintf(&b, "  [%-5s] %s", marker, res.Metric)
		if res.Status == StatusScored {
			fmt.Fprintf(&b, " (score: %.2f)", res.Score)
		}
		b.WriteString("\n")

		if res.Reasoning != "" {
			fmt.Fprintf(&b, "          %s\n", res.Reasoning)
		}
	}

	verdict := "FAILED"
	if !report.Failed() {
		verdict = "PASSED"
	}
	fmt.Fprintf(&b, "\n%s: %d/%d metrics passed\n", verdict, passed, len(report.Results))

	return b.String()
}
