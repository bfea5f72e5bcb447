package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ToolDefinition defines a tool
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	Handler     ToolHandler            `json:"-"`
}

// ToolHandler is a function that executes a tool. args has already been
// validated against the tool's input schema.
type ToolHandler func(ctx context.Context, args json.RawMessage) (interface{}, error)

// Provider supplies a group of tool definitions
type Provider interface {
	GetDefinitions() []ToolDefinition
}

type entry struct {
	def    ToolDefinition
	schema *gojsonschema.Schema
}

// Registry manages tools. It is filled once at startup and only read
// afterwards; listing order is registration order.
type Registry struct {
	tools map[string]*entry
	order []string
	mu    sync.RWMutex
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*entry),
	}
}

// Register adds one tool. Registering a name twice, a tool without a
// handler, or a schema that does not compile is an error.
func (r *Registry) Register(def ToolDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	if def.Handler == nil {
		return fmt.Errorf("tool %s has no handler", def.Name)
	}
	if def.InputSchema == nil {
		def.InputSchema = ObjectSchema(nil)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def.InputSchema))
	if err != nil {
		return fmt.Errorf("tool %s has an invalid input schema: %w", def.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, def.Name)
	}
	r.tools[def.Name] = &entry{def: def, schema: schema}
	r.order = append(r.order, def.Name)
	return nil
}

// RegisterProvider registers every tool of a provider, stopping at the
// first failure
func (r *Registry) RegisterProvider(provider Provider) error {
	for _, def := range provider.GetDefinitions() {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister is Register for startup code, panicking on failure
func (r *Registry) MustRegister(providers ...Provider) {
	for _, p := range providers {
		if err := r.RegisterProvider(p); err != nil {
			panic(err)
		}
	}
}

// ListAll returns all tools in registration order
func (r *Registry) ListAll() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name].def)
	}
	return tools
}

// All iterates over the tools in registration order. Each call starts a
// fresh pass over a snapshot.
func (r *Registry) All() iter.Seq[ToolDefinition] {
	return func(yield func(ToolDefinition) bool) {
		for _, def := range r.ListAll() {
			if !yield(def) {
				return
			}
		}
	}
}

// Get returns the named tool
func (r *Registry) Get(name string) (ToolDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.tools[name]
	if !ok {
		return ToolDefinition{}, false
	}
	return e.def, true
}

// Execute validates args and runs the named tool, returning the handler's
// result untouched. Handler errors are returned unchanged.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if isAbsent(args) {
		return nil, missingArguments(name)
	}

	r.mu.RLock()
	e, exists := r.tools[name]
	r.mu.RUnlock()

	if !exists {
		return nil, unknownTool(name)
	}

	if err := validateArguments(e.schema, name, args); err != nil {
		return nil, err
	}

	return e.def.Handler(ctx, args)
}

// Invoke runs Execute and renders the result as a single text block
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (*CallToolResult, error) {
	result, err := r.Execute(ctx, name, args)
	if err != nil {
		return nil, err
	}
	return TextResult(result)
}

// Count returns the number of registered tools
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

func isAbsent(args json.RawMessage) bool {
	trimmed := bytes.TrimSpace(args)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
