package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/nmicheli/concord/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes the
analysis pipeline as tools LLMs can invoke.

Available tools:
  - check_congruence   Unused functions and argument mismatches
  - build_call_graph   Functions with their resolved call sites
  - list_duplicates    Function names defined more than once`,
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	server := mcpserver.NewServer(version)
	return server.Run(context.Background())
}
