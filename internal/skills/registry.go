package skills

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrSkillNotFound is returned by Resolve for an unregistered name.
	ErrSkillNotFound = errors.New("skill not found")
	// ErrDuplicateSkill is returned by Register on a name collision.
	ErrDuplicateSkill = errors.New("skill already registered")
)

// Handler is a skill's callable entry point. Arguments arrive by name as a
// JSON object string; the returned string is the text representation used
// both for the model-facing tool message and for persistence.
type Handler interface {
	Invoke(ctx context.Context, argumentsJSON string) (string, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, argumentsJSON string) (string, error)

func (f HandlerFunc) Invoke(ctx context.Context, argumentsJSON string) (string, error) {
	return f(ctx, argumentsJSON)
}

// Warning records a skill package that discovery skipped.
type Warning struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

type entry struct {
	descriptor *Descriptor
	handler    Handler
}

// Registry holds registered skills keyed by name. Discovery order is
// preserved for List so the model's tool advertisement is stable.
type Registry struct {
	mu       sync.RWMutex
	entries  []*entry
	byName   map[string]*entry
	warnings []Warning
	runtime  *WasmRuntime
}

// NewRegistry creates an empty skill registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]*entry),
		runtime: NewWasmRuntime(),
	}
}

// Register adds one skill. The name must not already be taken.
func (r *Registry) Register(d *Descriptor, h Handler) error {
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSkill, d.Name)
	}

	e := &entry{descriptor: d, handler: h}
	r.entries = append(r.entries, e)
	r.byName[d.Name] = e
	return nil
}

// Resolve returns the callable entry point for name.
func (r *Registry) Resolve(name string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSkillNotFound, name)
	}
	return e.handler, nil
}

// Descriptor returns the descriptor for name, or nil.
func (r *Registry) Descriptor(name string) *Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.byName[name]; ok {
		return e.descriptor
	}
	return nil
}

// List returns all registered descriptors in registration order.
func (r *Registry) List() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Descriptor, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.descriptor
	}
	return out
}

// Warnings returns the packages discovery skipped, in encounter order.
func (r *Registry) Warnings() []Warning {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Warning, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// Discover scans a directory tree one level deep for skill packages: each
// immediate subdirectory containing a skill.jsonc descriptor. A package
// missing its descriptor, failing validation, or failing to load its entry
// point is skipped with a recorded warning; a partially broken skill tree
// never aborts discovery.
func (r *Registry) Discover(ctx context.Context, root string) error {
	dirs, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("skills directory not found, skipping", "dir", root)
			return nil
		}
		return fmt.Errorf("read skills dir %s: %w", root, err)
	}

	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}

		pkgDir := filepath.Join(root, d.Name())
		descPath := filepath.Join(pkgDir, "skill.jsonc")
		if _, err := os.Stat(descPath); os.IsNotExist(err) {
			r.warn(pkgDir, "missing skill.jsonc descriptor")
			continue
		}

		desc, err := LoadDescriptor(descPath)
		if err != nil {
			r.warn(pkgDir, err.Error())
			continue
		}

		handler, err := r.runtime.Load(ctx, pkgDir, desc)
		if err != nil {
			r.warn(pkgDir, err.Error())
			continue
		}

		if err := r.Register(desc, handler); err != nil {
			r.warn(pkgDir, err.Error())
			continue
		}

		slog.Info("skill registered", "name", desc.Name, "dir", pkgDir)
	}

	return nil
}

func (r *Registry) warn(path, reason string) {
	slog.Warn("skill package skipped", "path", path, "reason", reason)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, Warning{Path: path, Reason: reason})
}

// Close releases all loaded WASM entry points.
func (r *Registry) Close(ctx context.Context) {
	r.runtime.Close(ctx)
}
