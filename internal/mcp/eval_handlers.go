package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/evalgate/evalgate/internal/eval"
	"github.com/evalgate/evalgate/internal/server"
)

func registerEvalTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	runTool := mcp.NewTool("run_suite",
		mcp.WithDescription("Run an evaluation suite end to end: load its prompt, generate with the subject model, and judge the output against the suite's metrics"),
		mcp.WithString("suite",
			mcp.Required(),
			mcp.Description("Name of the suite to run (e.g. 'medical-advice')"),
		),
	)
	s.AddTool(runTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRunSuite(ctx, request, sc)
	})

	caseTool := mcp.NewTool("evaluate_case",
		mcp.WithDescription("Judge an existing input/output pair against metrics without calling a subject model"),
		mcp.WithString("input",
			mcp.Description("The prompt or question that produced the output"),
		),
		mcp.WithString("actual_output",
			mcp.Required(),
			mcp.Description("The model output under evaluation"),
		),
		mcp.WithString("expected_output",
			mcp.Description("Optional reference output"),
		),
		mcp.WithString("metrics",
			mcp.Required(),
			mcp.Description(`JSON array of metrics, e.g. [{"name":"Correctness","criteria":"...","params":["input","actual_output"],"threshold":0.5}]`),
		),
	)
	s.AddTool(caseTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleEvaluateCase(ctx, request, sc)
	})

	reportsTool := mcp.NewTool("get_reports",
		mcp.WithDescription("Retrieve evaluation reports for past runs"),
		mcp.WithString("run_id",
			mcp.Description("Specific run ID to retrieve (optional, lists all runs if omitted)"),
		),
	)
	s.AddTool(reportsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetReports(ctx, request, sc)
	})

	return nil
}

func handleRunSuite(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.Harness == nil {
		return mcp.NewToolResultError("evaluation harness is not configured"), nil
	}

	suiteName, _ := request.GetArguments()["suite"].(string)
	if suiteName == "" {
		return mcp.NewToolResultError("suite is required"), nil
	}

	outcome, err := sc.Harness.Run(ctx, suiteName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation run failed: %v", err)), nil
	}

	summary := map[string]any{
		"run_id":        outcome.RunID,
		"suite":         outcome.Suite,
		"subject_model": outcome.SubjectModel,
		"report_file":   outcome.ReportFile,
		"failed":        outcome.Report.Failed(),
		"results":       outcome.Report.Results,
		"duration":      outcome.Duration.String(),
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal summary: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleEvaluateCase(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.Runner == nil {
		return mcp.NewToolResultError("judge model is not configured"), nil
	}

	args := request.GetArguments()

	actual, _ := args["actual_output"].(string)
	if actual == "" {
		return mcp.NewToolResultError("actual_output is required"), nil
	}

	metricsJSON, _ := args["metrics"].(string)
	if metricsJSON == "" {
		return mcp.NewToolResultError("metrics is required"), nil
	}
	var metrics []eval.Metric
	if err := json.Unmarshal([]byte(metricsJSON), &metrics); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid metrics JSON: %v", err)), nil
	}

	input, _ := args["input"].(string)
	expected, _ := args["expected_output"].(string)

	c := eval.Case{
		Input:          input,
		ActualOutput:   actual,
		ExpectedOutput: expected,
	}

	report, err := sc.Runner.Evaluate(ctx, c, metrics)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal report: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleGetReports(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	runID, _ := request.GetArguments()["run_id"].(string)

	if runID == "" {
		return listRuns(sc.OutputDir)
	}

	runPath, err := resolveRunPath(sc.OutputDir, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid run_id: %v", err)), nil
	}

	data, err := os.ReadFile(filepath.Join(runPath, "report.json"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read report for run %q: %v", runID, err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func listRuns(outputDir string) (*mcp.CallToolResult, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return mcp.NewToolResultText("[]"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}

	var runs []string
	for _, e := range entries {
		if e.IsDir() {
			runs = append(runs, e.Name())
		}
	}

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal run list: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
