package mcp

import (
	"encoding/json"
	"testing"

	"github.com/scribekit/scribe/internal/skills"
)

func TestDescriptorToMCPTool(t *testing.T) {
	desc := &skills.Descriptor{
		Name:        "calculator",
		Description: "Evaluates arithmetic expressions.",
		Parameters: map[string]skills.ParamSpec{
			"expression": {
				Type:        "string",
				Description: "The expression to evaluate",
				Required:    true,
			},
			"precision": {
				Type:        "integer",
				Description: "Decimal places",
			},
			"mode": {
				Type:        "string",
				Description: "Evaluation mode",
				Required:    true,
				Enum:        []string{"strict", "lenient"},
			},
		},
	}

	mcpTool := descriptorToMCPTool(desc)

	if mcpTool.Name != "calculator" {
		t.Errorf("Name = %q", mcpTool.Name)
	}
	if mcpTool.Description != "Evaluates arithmetic expressions." {
		t.Errorf("Description = %q", mcpTool.Description)
	}

	schemaBytes, err := json.Marshal(mcpTool.InputSchema)
	if err != nil {
		t.Fatalf("marshal InputSchema: %v", err)
	}

	var schema map[string]any
	if err := json.Unmarshal(schemaBytes, &schema); err != nil {
		t.Fatalf("unmarshal InputSchema: %v", err)
	}

	if schema["type"] != "object" {
		t.Errorf("schema type = %v", schema["type"])
	}

	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatal("schema properties not a map")
	}
	if len(props) != 3 {
		t.Errorf("schema properties len = %d, want 3", len(props))
	}

	mode, ok := props["mode"].(map[string]any)
	if !ok {
		t.Fatal("mode property not a map")
	}
	enum, ok := mode["enum"].([]any)
	if !ok || len(enum) != 2 {
		t.Errorf("mode enum = %v", mode["enum"])
	}

	// required is sorted
	req, ok := schema["required"].([]any)
	if !ok {
		t.Fatal("schema required not an array")
	}
	if len(req) != 2 || req[0] != "expression" || req[1] != "mode" {
		t.Errorf("schema required = %v, want [expression, mode]", req)
	}
}

func TestDescriptorToMCPToolNested(t *testing.T) {
	desc := &skills.Descriptor{
		Name:        "report",
		Description: "Builds a report.",
		Parameters: map[string]skills.ParamSpec{
			"sections": {
				Type:        "array",
				Description: "Section titles",
				Items:       &skills.ParamSpec{Type: "string"},
			},
			"options": {
				Type: "object",
				Properties: map[string]skills.ParamSpec{
					"toc": {Type: "boolean", Description: "Include a table of contents"},
				},
			},
		},
	}

	mcpTool := descriptorToMCPTool(desc)

	schemaBytes, err := json.Marshal(mcpTool.InputSchema)
	if err != nil {
		t.Fatal(err)
	}
	var schema map[string]any
	if err := json.Unmarshal(schemaBytes, &schema); err != nil {
		t.Fatal(err)
	}
	if _, hasRequired := schema["required"]; hasRequired {
		t.Error("schema has required despite no required parameters")
	}

	props := schema["properties"].(map[string]any)
	sections := props["sections"].(map[string]any)
	items, ok := sections["items"].(map[string]any)
	if !ok || items["type"] != "string" {
		t.Errorf("sections items = %v", sections["items"])
	}

	options := props["options"].(map[string]any)
	sub, ok := options["properties"].(map[string]any)
	if !ok {
		t.Fatal("options properties missing")
	}
	if _, ok := sub["toc"]; !ok {
		t.Error("toc sub-property missing")
	}
}

func TestNewServerFilter(t *testing.T) {
	registry := skills.NewRegistry()
	for _, name := range []string{"alpha", "beta"} {
		desc := &skills.Descriptor{Name: name, Description: "skill " + name}
		if err := registry.Register(desc, nil); err != nil {
			t.Fatal(err)
		}
	}

	if srv := NewServer(registry, ""); srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv := NewServer(registry, "alpha"); srv == nil {
		t.Fatal("NewServer with filter returned nil")
	}
}
