package tools

import (
	"fmt"

	"github.com/figgen/mcp-server/internal/backend"
	"github.com/figgen/mcp-server/internal/config"
)

// Registry maps tool names to definitions. It is built once at startup and
// read-only afterwards, so concurrent lookups need no locking.
type Registry struct {
	defs  map[string]ToolDefinition
	order []string
}

// NewRegistry builds a registry from definitions. A duplicate name is a
// startup-time fatal error, never a runtime one.
func NewRegistry(defs ...ToolDefinition) (*Registry, error) {
	r := &Registry{defs: make(map[string]ToolDefinition, len(defs))}
	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("tool definition with empty name")
		}
		if _, exists := r.defs[d.Name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", d.Name)
		}
		r.defs[d.Name] = d
		r.order = append(r.order, d.Name)
	}
	return r, nil
}

// Lookup returns the definition for name.
func (r *Registry) Lookup(name string) (ToolDefinition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// List returns all definitions in registration order.
func (r *Registry) List() []ToolDefinition {
	out := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// Definitions returns all tool definitions wired for the server.
func Definitions(b backend.Backend, cfg *config.Config) []ToolDefinition {
	return []ToolDefinition{
		GenerateDiagramDefinition(b, cfg),
		GeneratePlotDefinition(b, cfg),
		EvaluateDiagramDefinition(b, cfg),
	}
}
