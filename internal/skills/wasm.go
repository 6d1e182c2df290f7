package skills

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	extism "github.com/extism/go-sdk"
)

// WasmRuntime manages the lifecycle of WASM skill entry points.
type WasmRuntime struct {
	mu      sync.Mutex
	plugins map[string]*extism.Plugin
}

// NewWasmRuntime creates a runtime with no loaded entry points.
func NewWasmRuntime() *WasmRuntime {
	return &WasmRuntime{plugins: make(map[string]*extism.Plugin)}
}

// Load instantiates the WASM module named by the descriptor and returns a
// Handler bound to its exported function. The wasm_path is resolved
// relative to the skill package directory.
func (r *WasmRuntime) Load(ctx context.Context, pkgDir string, d *Descriptor) (Handler, error) {
	if d.WasmPath == "" {
		return nil, fmt.Errorf("skill %q: wasm_path is required", d.Name)
	}

	wasmPath := d.WasmPath
	if !filepath.IsAbs(wasmPath) {
		wasmPath = filepath.Join(pkgDir, wasmPath)
	}

	manifest := extism.Manifest{
		Wasm: []extism.Wasm{
			extism.WasmFile{Path: wasmPath},
		},
	}

	plugin, err := extism.NewPlugin(ctx, manifest, extism.PluginConfig{EnableWasi: true}, nil)
	if err != nil {
		return nil, fmt.Errorf("skill %q: load wasm: %w", d.Name, err)
	}

	if !plugin.FunctionExists(d.Func) {
		plugin.Close(ctx)
		return nil, fmt.Errorf("skill %q: missing required %q export", d.Name, d.Func)
	}

	r.mu.Lock()
	r.plugins[d.Name] = plugin
	r.mu.Unlock()

	return &wasmSkill{name: d.Name, fn: d.Func, plugin: plugin}, nil
}

// Close releases all loaded entry points.
func (r *WasmRuntime) Close(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, p := range r.plugins {
		if err := p.Close(ctx); err != nil {
			slog.Warn("close wasm skill", "name", name, "error", err)
		}
	}
	r.plugins = nil
}

// wasmSkill binds a Descriptor's exported function to the Handler contract.
type wasmSkill struct {
	name   string
	fn     string
	plugin *extism.Plugin
}

func (s *wasmSkill) Invoke(_ context.Context, argumentsJSON string) (string, error) {
	_, output, err := s.plugin.Call(s.fn, []byte(argumentsJSON))
	if err != nil {
		return "", fmt.Errorf("skill %q func %q: %w", s.name, s.fn, err)
	}
	return string(output), nil
}

var _ Handler = (*wasmSkill)(nil)
