// Package mcp exposes registered skills as MCP tools.
package mcp

import (
	"sort"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scribekit/scribe/internal/skills"
)

// descriptorToMCPTool converts a skill descriptor to an mcp.Tool with JSON Schema.
func descriptorToMCPTool(d *skills.Descriptor) *mcpsdk.Tool {
	props := make(map[string]any, len(d.Parameters))
	var required []string

	for name, p := range d.Parameters {
		props[name] = paramSchema(p)
		if p.Required {
			required = append(required, name)
		}
	}

	// Sort required for deterministic output
	sort.Strings(required)

	inputSchema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		inputSchema["required"] = required
	}

	return &mcpsdk.Tool{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: inputSchema,
	}
}

func paramSchema(p skills.ParamSpec) map[string]any {
	prop := map[string]any{
		"type":        p.Type,
		"description": p.Description,
	}
	if len(p.Enum) > 0 {
		prop["enum"] = p.Enum
	}
	if p.Default != nil {
		prop["default"] = p.Default
	}
	if p.Items != nil {
		prop["items"] = paramSchema(*p.Items)
	}
	if len(p.Properties) > 0 {
		sub := make(map[string]any, len(p.Properties))
		for name, sp := range p.Properties {
			sub[name] = paramSchema(sp)
		}
		prop["properties"] = sub
	}
	return prop
}
