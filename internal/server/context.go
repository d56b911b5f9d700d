package server

import (
	"github.com/evalgate/evalgate/internal/eval"
	"github.com/evalgate/evalgate/internal/harness"
	"github.com/evalgate/evalgate/internal/prompt"
)

// ServerContext holds shared dependencies for MCP tool handlers.
type ServerContext struct {
	Harness   *harness.Harness
	Runner    *eval.Runner
	Prompts   *prompt.Store
	SuitesDir string
	OutputDir string
}
