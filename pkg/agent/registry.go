package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/wilhg/github-mcp/pkg/errmodel"
)

// Registry keeps tools by name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{tools: map[string]Tool{}} }

// Register adds a Tool under its descriptor name.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool is nil")
	}
	d := t.Describe()
	if d.Name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if err := CompileJSONSchema(d.InputSchema); err != nil {
		return fmt.Errorf("tool %q: input schema: %w", d.Name, err)
	}
	if err := CompileJSONSchema(d.OutputSchema); err != nil {
		return fmt.Errorf("tool %q: output schema: %w", d.Name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[d.Name]; exists {
		return fmt.Errorf("tool %q already registered", d.Name)
	}
	r.tools[d.Name] = t
	return nil
}

// Resolve returns a Tool by name.
func (r *Registry) Resolve(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Range calls fn for every tool in name order.
func (r *Registry) Range(fn func(name string, t Tool)) {
	r.mu.RLock()
	names := make([]string, 0, len(r.tools))
	snapshot := make(map[string]Tool, len(r.tools))
	for n, t := range r.tools {
		names = append(names, n)
		snapshot[n] = t
	}
	r.mu.RUnlock()
	sort.Strings(names)
	for _, n := range names {
		fn(n, snapshot[n])
	}
}

// SafeInvoke validates input against the tool's schema, invokes it, and validates output.
// Permission checks are passed in by the caller via allowed set; missing permissions cause a policy error.
func SafeInvoke(ctx context.Context, t Tool, args map[string]any, allowed map[string]bool, validate ValidateFunc) (map[string]any, error) {
	if t == nil {
		return nil, errmodel.Validation("bad_tool", "tool is nil", nil)
	}
	if validate == nil {
		validate = JSONSchemaValidator
	}
	if args == nil {
		args = map[string]any{}
	}
	d := t.Describe()
	for _, p := range d.Permissions {
		if !allowed[p.Name] {
			return nil, errmodel.Policy("forbidden", "permission denied for tool", map[string]any{"permission": p.Name, "tool": d.Name})
		}
	}
	if err := validate(d.InputSchema, args); err != nil {
		return nil, errmodel.Validation("invalid_input", "tool input validation failed", map[string]any{"tool": d.Name, "error": err.Error()})
	}
	out, err := t.Invoke(ctx, args)
	if err != nil {
		return nil, err
	}
	if err := validate(d.OutputSchema, out); err != nil {
		return nil, errmodel.Validation("invalid_output", "tool output validation failed", map[string]any{"tool": d.Name, "error": err.Error()})
	}
	return out, nil
}
