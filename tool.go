package automaton

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
)

// Tool is a named capability the model can invoke.
//
// Responsibility design:
//   - Tool: accept decoded arguments, execute logic, return a raw value
//   - ToolRegistry: resolve names, validate arguments, record the outcome in the transcript
//
// Tools focus on business logic only. Rendering the value for the model is handled by
// [FormatValue] during prompt projection.
type Tool interface {
	// Name returns the identifier the model uses in the "action" field.
	Name() string

	// Description returns a human-readable description for the model.
	Description() string

	// ParameterSchema returns the JSON Schema for the tool's arguments.
	// Returns nil if the tool takes no parameters or does not want validation.
	ParameterSchema() map[string]any

	// Call executes the tool. Arguments are the decoded "action_input" mapping, never nil.
	Call(ctx context.Context, arguments map[string]any) (any, error)
}

// ToolRegistry resolves action names to tools.
//
// Resolve returns an error wrapping [ErrToolNotFound] for unknown names. The loop renders that
// error into a [Result] so the model can correct itself.
type ToolRegistry interface {
	Resolve(name string) (Tool, error)
}

// ToolFunc is a convenience type for creating tools from functions with typed I/O.
//
// The decoded argument mapping is converted to I with a JSON round trip, so I is usually a
// struct with json tags. Strings are accepted for time.Time fields (RFC3339, date-only and a few
// common datetime layouts) and time.Duration fields ("1h30m"). Use map[string]any as I to
// receive the arguments untouched.
type ToolFunc[I, O any] struct {
	name        string
	description string
	schema      map[string]any
	fn          func(ctx context.Context, input I) (O, error)
}

// NewToolFunc creates a new ToolFunc with typed input and output.
func NewToolFunc[I, O any](
	name, description string,
	schema map[string]any,
	fn func(ctx context.Context, input I) (O, error),
) *ToolFunc[I, O] {
	return &ToolFunc[I, O]{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
	}
}

// Name returns the tool's identifier.
func (t *ToolFunc[I, O]) Name() string {
	return t.name
}

// Description returns a human-readable description for the model.
func (t *ToolFunc[I, O]) Description() string {
	return t.description
}

// ParameterSchema returns the JSON Schema for the tool's parameters.
func (t *ToolFunc[I, O]) ParameterSchema() map[string]any {
	return t.schema
}

// Call converts the arguments to I and runs the function.
func (t *ToolFunc[I, O]) Call(ctx context.Context, arguments map[string]any) (any, error) {
	var input I
	if m, ok := any(&input).(*map[string]any); ok {
		*m = arguments
	} else {
		data, err := json.Marshal(coerceArguments(arguments, reflect.TypeOf((*I)(nil)).Elem()))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToolArgs, err)
		}
		if err := json.Unmarshal(data, &input); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToolArgs, err)
		}
	}
	output, err := t.fn(ctx, input)
	if err != nil {
		return nil, err
	}
	return output, nil
}

// Compile-time check that ToolFunc implements Tool.
var _ Tool = (*ToolFunc[map[string]any, any])(nil)
