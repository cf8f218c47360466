package toolchain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rickchristie/automaton"
	"github.com/rickchristie/automaton/schema"
	"gopkg.in/yaml.v3"
)

// Registry holds the tools an agent may invoke and dispatches decoded invocations to them.
//
// Each tool's parameter schema is compiled at registration. Dispatch validates arguments against
// it before the tool runs, so tools only see arguments that match their declared shape.
//
// Registry is NOT thread-safe for registration. Register all tools before starting a run;
// Resolve and Dispatch are safe from concurrent runs afterwards.
type Registry struct {
	tools   []automaton.Tool
	byName  map[string]automaton.Tool
	schemas map[string]*schema.Schema
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:   make([]automaton.Tool, 0),
		byName:  make(map[string]automaton.Tool),
		schemas: make(map[string]*schema.Schema),
	}
}

// Register adds a tool. Fails if the tool is nil, has no name, uses a duplicate name, or has a
// schema that does not compile.
func (r *Registry) Register(tool automaton.Tool) error {
	if tool == nil {
		return errors.New("toolchain: nil tool")
	}
	name := tool.Name()
	if name == "" {
		return errors.New("toolchain: tool has empty name")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("toolchain: tool %q already registered", name)
	}

	compiled, err := schema.Compile(name, tool.ParameterSchema())
	if err != nil {
		return fmt.Errorf("toolchain: tool %q: %w", name, err)
	}

	r.tools = append(r.tools, tool)
	r.byName[name] = tool
	if compiled != nil {
		r.schemas[name] = compiled
	}
	return nil
}

// MustRegister registers each tool and panics on the first error. Returns the registry for
// chaining.
func (r *Registry) MustRegister(tools ...automaton.Tool) *Registry {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

// Resolve implements automaton.ToolRegistry.
func (r *Registry) Resolve(name string) (automaton.Tool, error) {
	tool, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", automaton.ErrToolNotFound, name)
	}
	return tool, nil
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []automaton.Tool {
	out := make([]automaton.Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Validate checks arguments against the named tool's schema. Tools without a schema accept
// anything.
func (r *Registry) Validate(name string, arguments map[string]any) error {
	s, ok := r.schemas[name]
	if !ok {
		return nil
	}
	if err := s.Validate(arguments); err != nil {
		return fmt.Errorf("%w: %w", automaton.ErrInvalidToolArgs, err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Prompt
// -----------------------------------------------------------------------------

type catalogEntry struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Parameters  map[string]any `yaml:"parameters,omitempty"`
}

// AvailableToolsPrompt renders the tool catalog, including parameter schemas, as YAML.
// Returns an empty string when no tools are registered.
func (r *Registry) AvailableToolsPrompt() string {
	if len(r.tools) == 0 {
		return ""
	}

	entries := make([]catalogEntry, 0, len(r.tools))
	for _, t := range r.tools {
		entries = append(entries, catalogEntry{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.ParameterSchema(),
		})
	}

	var sb strings.Builder
	sb.WriteString("Available tools:\n")
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		// Fall back to names and descriptions only.
		for _, e := range entries {
			fmt.Fprintf(&sb, "- %s: %s\n", e.Name, e.Description)
		}
		return sb.String()
	}
	_ = enc.Close()
	return sb.String()
}

// -----------------------------------------------------------------------------
// Dispatch
// -----------------------------------------------------------------------------

// Dispatcher runs an invocation and reports its outcome as a transcript Result.
type Dispatcher interface {
	Dispatch(ctx context.Context, runID string, invoke automaton.Invoke, hooks automaton.HookFirer) automaton.Result
}

// Dispatch resolves, validates and calls the tool named by invoke.
//
// Failures never escape as errors; they are recorded on the returned Result so the model can
// react to them:
//   - unknown tool: [automaton.ErrToolNotFound]
//   - schema violation: [automaton.ErrInvalidToolArgs]
//   - tool error or panic: [automaton.ErrToolExecution] wrapping the cause
//
// hooks may be nil. BeforeToolCall hooks may rewrite the arguments; validation runs on the
// rewritten arguments.
func (r *Registry) Dispatch(
	ctx context.Context,
	runID string,
	invoke automaton.Invoke,
	hooks automaton.HookFirer,
) automaton.Result {
	return Dispatch(ctx, r, runID, invoke, hooks)
}

// Dispatch runs invoke against any ToolRegistry. If the registry also exposes
// Validate(name, args) error, arguments are validated before the call.
func Dispatch(
	ctx context.Context,
	registry automaton.ToolRegistry,
	runID string,
	invoke automaton.Invoke,
	hooks automaton.HookFirer,
) automaton.Result {
	source := invoke
	result := automaton.Result{Source: &source}

	args := invoke.Arguments
	if args == nil {
		args = map[string]any{}
	}

	before := &automaton.BeforeToolCallEvent{RunID: runID, ToolName: invoke.Name, Arguments: args}
	if hooks != nil {
		hooks.FireBeforeToolCall(ctx, before)
	}
	args = before.Arguments
	if args == nil {
		args = map[string]any{}
	}

	start := time.Now()
	output, err := call(ctx, registry, invoke.Name, args)
	duration := time.Since(start)

	if hooks != nil {
		hooks.FireAfterToolCall(ctx, automaton.AfterToolCallEvent{
			RunID:     runID,
			ToolName:  invoke.Name,
			Arguments: args,
			Output:    output,
			Duration:  duration,
			Err:       err,
		})
	}

	if err != nil {
		result.Err = err
		return result
	}
	result.Value = output
	return result
}

type validator interface {
	Validate(name string, arguments map[string]any) error
}

func call(
	ctx context.Context,
	registry automaton.ToolRegistry,
	name string,
	args map[string]any,
) (output any, err error) {
	tool, err := registry.Resolve(name)
	if err != nil {
		if !errors.Is(err, automaton.ErrToolNotFound) {
			err = fmt.Errorf("%w: %s: %v", automaton.ErrToolNotFound, name, err)
		}
		return nil, err
	}
	if v, ok := registry.(validator); ok {
		if err := v.Validate(name, args); err != nil {
			return nil, err
		}
	}

	defer func() {
		if p := recover(); p != nil {
			output = nil
			err = fmt.Errorf("%w: %s: panic: %v", automaton.ErrToolExecution, name, p)
		}
	}()

	output, err = tool.Call(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", automaton.ErrToolExecution, name, err)
	}
	return output, nil
}

// Compile-time checks.
var (
	_ automaton.ToolRegistry = (*Registry)(nil)
	_ Dispatcher             = (*Registry)(nil)
)
