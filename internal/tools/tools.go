// Package tools defines the shared [Tool] type and [Registry] used by all
// tool packages of the YNAB MCP server.
//
// Each sub-package exports a constructor function that returns a slice of
// [Tool] values ready for registration with a [Registry]. The registry is the
// dispatcher: it exposes the fixed, enumerable tool catalogue via
// [Registry.Descriptors] and routes invocations by name via
// [Registry.Invoke]. The MCP transport layer (internal/server) is a thin
// bridge on top of it.
//
// The package also carries the plumbing every tool shares: argument decoding
// ([Decode], [RequireKeys]), the error kinds surfaced to callers
// ([ValidationError], [InvalidArgumentsError], [UnknownToolError]),
// default-budget resolution ([ResolveBudgetID]), milliunit rendering
// ([Amount]), and JSON-Schema construction helpers.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Handler executes a tool with its raw JSON argument object and returns the
// resulting text blocks. Implementations must be safe for concurrent use and
// must respect context cancellation.
type Handler func(ctx context.Context, args json.RawMessage) ([]string, error)

// Tool is one invocable tool: its discovery descriptor plus its handler.
type Tool struct {
	// Name is the tool's unique identifier, e.g. "list-budgets".
	Name string

	// Description is the human-readable tool description shown to callers
	// during discovery.
	Description string

	// InputSchema is the JSON Schema of the tool's argument object.
	InputSchema *jsonschema.Schema

	// Handler executes the tool.
	Handler Handler
}

// Registry holds the fixed tool catalogue and dispatches invocations.
//
// The catalogue is populated at startup and read-only afterwards, so the
// registry needs no locking. Descriptors are returned in registration order.
type Registry struct {
	order  []string
	byName map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Tool)}
}

// Register adds tools to the catalogue. Returns an error for a tool with an
// empty name, a nil handler, or a name that is already registered.
func (r *Registry) Register(ts ...Tool) error {
	for _, t := range ts {
		if t.Name == "" {
			return fmt.Errorf("tools: cannot register a tool with an empty name")
		}
		if t.Handler == nil {
			return fmt.Errorf("tools: tool %q has no handler", t.Name)
		}
		if _, exists := r.byName[t.Name]; exists {
			return fmt.Errorf("tools: tool %q is already registered", t.Name)
		}
		r.byName[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return nil
}

// Descriptors returns the full tool catalogue in registration order.
// Discovery has no arguments and no side effects.
func (r *Registry) Descriptors() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Invoke dispatches a tool call by name. A nil or empty args value is treated
// as an empty argument object. An unrecognised name fails with
// [*UnknownToolError]; all other failures come from the tool's handler.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) ([]string, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	return t.Handler(ctx, args)
}
