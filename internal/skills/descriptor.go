// Package skills provides the Scribe skill system: pluggable tools the
// model can invoke mid-conversation. A skill package is a directory holding
// a JSONC descriptor plus a WASM entry point; in-process skills register
// the same contract programmatically.
package skills

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Descriptor is the static metadata for one skill: its unique name, the
// free-text description advertised to the model, and the parameter schema
// its entry point accepts.
type Descriptor struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Parameters  map[string]ParamSpec `json:"parameters"`
	WasmPath    string               `json:"wasm_path,omitempty"` // entry point module, relative to the descriptor
	Func        string               `json:"func,omitempty"`      // WASM export name (default: "handle")
}

// ParamSpec describes a single skill parameter.
type ParamSpec struct {
	Type        string               `json:"type"` // "string", "number", "boolean", "integer", "array", "object"
	Description string               `json:"description"`
	Required    bool                 `json:"required"`
	Enum        []string             `json:"enum,omitempty"`
	Default     any                  `json:"default,omitempty"`
	Items       *ParamSpec           `json:"items,omitempty"`      // element schema for arrays
	Properties  map[string]ParamSpec `json:"properties,omitempty"` // sub-properties for objects
}

// LoadDescriptor reads and parses a JSONC skill descriptor file.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor %s: %w", path, err)
	}

	standard, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse descriptor %s: %w", path, err)
	}

	var d Descriptor
	if err := json.Unmarshal(standard, &d); err != nil {
		return nil, fmt.Errorf("parse descriptor %s: %w", path, err)
	}

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("descriptor %s: %w", path, err)
	}

	if d.Func == "" {
		d.Func = "handle"
	}

	return &d, nil
}

// Validate checks the descriptor for consistency.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.Description == "" {
		return fmt.Errorf("skill %q: description is required", d.Name)
	}
	for name, p := range d.Parameters {
		switch p.Type {
		case "string", "number", "integer", "boolean", "array", "object":
		default:
			return fmt.Errorf("skill %q: parameter %q has unknown type %q", d.Name, name, p.Type)
		}
	}
	return nil
}
