// Package agent defines the tool contract shared by the MCP server and the
// CLI: a Tool describes itself with JSON schemas and a permission set, and is
// invoked through SafeInvoke, which enforces both.
package agent

import (
	"context"
)

// ToolPermission describes a capability a tool requires.
// Example: network:outbound, secret:github
type ToolPermission struct {
	// Name is a stable, lower_snake identifier of the permission.
	Name string `json:"name"`
	// Description explains what the permission allows.
	Description string `json:"description,omitempty"`
}

// ToolDescriptor declares the static interface of a tool.
// InputSchema and OutputSchema are JSON Schemas (draft 2020-12) in UTF-8 bytes.
type ToolDescriptor struct {
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	InputSchema  []byte           `json:"input_schema"`
	OutputSchema []byte           `json:"output_schema"`
	Permissions  []ToolPermission `json:"permissions,omitempty"`
}

// Tool defines a callable unit with schema-validated inputs/outputs and a permission model.
type Tool interface {
	// Describe returns the public descriptor (schemas, permissions).
	Describe() ToolDescriptor
	// Invoke executes the tool with validated args. The args MUST conform to InputSchema.
	// The returned map MUST conform to OutputSchema.
	Invoke(ctx context.Context, args map[string]any) (map[string]any, error)
}

// PermissionNames lists the permission names a descriptor requires.
func (d ToolDescriptor) PermissionNames() []string {
	out := make([]string, 0, len(d.Permissions))
	for _, p := range d.Permissions {
		out = append(out, p.Name)
	}
	return out
}

// Allow builds an allowed-permission set from names.
func Allow(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
