package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nmicheli/concord/internal/diag"
	"github.com/nmicheli/concord/internal/pipeline"
	"github.com/nmicheli/concord/pkg/config"
)

// AnalyzeInput is the shared input for every tool.
type AnalyzeInput struct {
	Path string `json:"path" jsonschema:"Root directory of the source tree to analyze."`
	Mode string `json:"mode,omitempty" jsonschema:"Mapping mode: full (default), light, or doc_only."`
}

func runPipeline(ctx context.Context, input AnalyzeInput) (*pipeline.Result, error) {
	cfg := config.DefaultConfig()
	if input.Mode != "" {
		cfg.Analysis.Mode = input.Mode
	}
	return pipeline.Run(ctx, input.Path, pipeline.Options{
		Config: cfg,
		Sink:   diag.Discard{},
	})
}

func handleCheckCongruence(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	res, err := runPipeline(ctx, input)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(map[string]any{
		"ledger":     res.Ledger,
		"unused":     res.Unused,
		"mismatches": res.Mismatches,
	})
}

func handleBuildCallGraph(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	res, err := runPipeline(ctx, input)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(map[string]any{
		"ledger":    res.Ledger,
		"functions": res.Inline,
	})
}

func handleListDuplicates(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	res, err := runPipeline(ctx, input)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(map[string]any{
		"ledger":     res.Ledger,
		"duplicates": res.Duplicates,
	})
}

func toolResult(data any) (*mcp.CallToolResult, any, error) {
	text, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(text)},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}
