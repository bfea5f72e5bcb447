package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// NewTool builds a ToolDefinition around a typed handler. The handler only
// sees arguments that passed the schema and decoded into In.
func NewTool[In, Out any](name, description string, schema map[string]interface{}, fn func(ctx context.Context, in In) (Out, error)) ToolDefinition {
	return ToolDefinition{
		Name:        name,
		Description: description,
		InputSchema: schema,
		Handler: func(ctx context.Context, args json.RawMessage) (interface{}, error) {
			var in In
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, invalidInput(name, []Violation{{Field: rootField, Description: fmt.Sprintf("cannot decode arguments: %v", err)}})
			}
			return fn(ctx, in)
		},
	}
}
