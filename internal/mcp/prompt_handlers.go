package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/evalgate/evalgate/internal/server"
	"github.com/evalgate/evalgate/internal/suite"
)

func registerPromptTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listPromptsTool := mcp.NewTool("list_prompts",
		mcp.WithDescription("List the available prompt assets"),
	)
	s.AddTool(listPromptsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListPrompts(ctx, request, sc)
	})

	getPromptTool := mcp.NewTool("get_prompt",
		mcp.WithDescription("Return the literal text of a named prompt asset"),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("Prompt identifier (e.g. 'summarize' or 'summarize.md')"),
		),
	)
	s.AddTool(getPromptTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetPrompt(ctx, request, sc)
	})

	listSuitesTool := mcp.NewTool("list_suites",
		mcp.WithDescription("List available evaluation suites with metadata"),
	)
	s.AddTool(listSuitesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListSuites(ctx, request, sc)
	})

	return nil
}

func handleListPrompts(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	names, err := sc.Prompts.List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list prompts: %v", err)), nil
	}

	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal prompt list: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleGetPrompt(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	id, _ := request.GetArguments()["prompt"].(string)
	if id == "" {
		return mcp.NewToolResultError("prompt is required"), nil
	}

	text, err := sc.Prompts.Load(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load prompt: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func handleListSuites(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	names, err := suite.List(sc.SuitesDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list suites: %v", err)), nil
	}

	type suiteInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Version     string `json:"version"`
		Prompt      string `json:"prompt"`
		MetricCount int    `json:"metric_count"`
	}

	var suites []suiteInfo
	for _, name := range names {
		s, err := suite.Load(name, sc.SuitesDir)
		if err != nil {
			continue
		}
		suites = append(suites, suiteInfo{
			Name:        s.Name,
			Description: s.Description,
			Version:     s.Version,
			Prompt:      s.Prompt,
			MetricCount: len(s.Metrics),
		})
	}

	data, err := json.MarshalIndent(suites, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal suites: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
