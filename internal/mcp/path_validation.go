package mcp

import (
	"fmt"
	"path/filepath"
	"strings"
)

// resolveRunPath maps a run ID to its directory under outputDir,
// rejecting anything that could escape the output tree.
func resolveRunPath(outputDir, runID string) (string, error) {
	if strings.TrimSpace(runID) == "" {
		return "", fmt.Errorf("run_id is required")
	}
	if strings.ContainsAny(runID, "/\\") || strings.Contains(runID, string(filepath.Separator)) {
		return "", fmt.Errorf("path separators are not allowed in run_id")
	}
	if runID == "." || runID == ".." {
		return "", fmt.Errorf("path traversal is not allowed")
	}

	baseAbs, err := filepath.Abs(outputDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output directory: %w", err)
	}
	target, err := filepath.Abs(filepath.Join(baseAbs, runID))
	if err != nil {
		return "", fmt.Errorf("failed to resolve run path: %w", err)
	}
	rel, err := filepath.Rel(baseAbs, target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("run path must be within the output directory")
	}
	return target, nil
}
