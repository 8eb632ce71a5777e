// Package mcpserver exposes the analysis pipeline over the Model
// Context Protocol so agents can run checks without shelling out to
// the CLI.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with the concord analysis tools
// registered.
type Server struct {
	server *mcp.Server
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(version string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "concord",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	s.registerTools()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "check_congruence",
		Description: "Run the full parameter congruence check over a Python/PHP " +
			"tree: unused functions plus call sites whose positional arity or " +
			"keyword names disagree with the definition.",
	}, handleCheckCongruence)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "build_call_graph",
		Description: "Build the cross-file call graph: every known function " +
			"with the file and line of each resolved call site.",
	}, handleBuildCallGraph)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "list_duplicates",
		Description: "List function names defined more than once across the " +
			"tree, with the file whose definition was kept.",
	}, handleListDuplicates)
}
