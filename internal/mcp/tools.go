// Package mcp exposes the evaluation harness over the Model Context Protocol.
package mcp

import (
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/evalgate/evalgate/internal/server"
)

// RegisterTools registers all MCP tools with the server.
func RegisterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := registerPromptTools(s, sc); err != nil {
		return err
	}
	if err := registerEvalTools(s, sc); err != nil {
		return err
	}
	return nil
}
