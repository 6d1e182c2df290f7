package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scribekit/scribe/internal/skills"
)

// NewServer creates an MCP server exposing registered skills as tools. If
// filter is non-empty, only the skill with that exact name is exposed.
func NewServer(registry *skills.Registry, filter string) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "scribe",
		Version: "0.1.0",
	}, nil)

	for _, desc := range registry.List() {
		if filter != "" && desc.Name != filter {
			continue
		}

		mcpTool := descriptorToMCPTool(desc)
		name := desc.Name

		server.AddTool(mcpTool, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			handler, err := registry.Resolve(name)
			if err != nil {
				return errorResult(err.Error()), nil
			}

			args := string(req.Params.Arguments)
			if args == "" {
				args = "{}"
			}

			if d := registry.Descriptor(name); d != nil {
				var decoded map[string]any
				if err := json.Unmarshal([]byte(args), &decoded); err != nil {
					return errorResult("arguments are not a JSON object: " + err.Error()), nil
				}
				if err := skills.ValidateArguments(d, decoded); err != nil {
					return errorResult(err.Error()), nil
				}
			}

			result, err := handler.Invoke(ctx, args)
			if err != nil {
				slog.Debug("mcp tool error", "tool", name, "error", err)
				return errorResult(err.Error()), nil
			}
			return &mcpsdk.CallToolResult{
				Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: result}},
			}, nil
		})

		slog.Debug("mcp tool registered", "tool", name)
	}

	return server
}

func errorResult(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: msg}},
	}
}
