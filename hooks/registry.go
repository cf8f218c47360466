package hooks

import (
	"context"

	"github.com/rickchristie/automaton"
)

// Registry manages a collection of hooks and dispatches events to them.
//
// Hooks can implement any combination of the automaton hook interfaces; each hook only receives
// events for the interfaces it implements.
//
//	registry := hooks.NewRegistry().
//	    Register(hooks.NewLogging(logger)).
//	    Register(metrics)
//
//	loop := chat.NewLoop(model, tools).WithHooks(registry)
//
// Registry is NOT thread-safe for registration. Register all hooks before starting a run.
// Firing is safe from concurrent runs as long as the hooks themselves are.
type Registry struct {
	hooks []any
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks: make([]any, 0),
	}
}

// Register adds a hook to the registry. Hooks are called in the order they are registered.
func (r *Registry) Register(hook any) *Registry {
	r.hooks = append(r.hooks, hook)
	return r
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	return len(r.hooks)
}

// FireBeforeRun dispatches to all BeforeRunHook implementations.
func (r *Registry) FireBeforeRun(ctx context.Context, event automaton.BeforeRunEvent) {
	for _, h := range r.hooks {
		if hook, ok := h.(automaton.BeforeRunHook); ok {
			hook.OnBeforeRun(ctx, event)
		}
	}
}

// FireAfterRun dispatches to all AfterRunHook implementations.
func (r *Registry) FireAfterRun(ctx context.Context, event automaton.AfterRunEvent) {
	for _, h := range r.hooks {
		if hook, ok := h.(automaton.AfterRunHook); ok {
			hook.OnAfterRun(ctx, event)
		}
	}
}

// FireBeforeIteration dispatches to all BeforeIterationHook implementations.
func (r *Registry) FireBeforeIteration(ctx context.Context, event automaton.BeforeIterationEvent) {
	for _, h := range r.hooks {
		if hook, ok := h.(automaton.BeforeIterationHook); ok {
			hook.OnBeforeIteration(ctx, event)
		}
	}
}

// FireAfterIteration dispatches to all AfterIterationHook implementations.
func (r *Registry) FireAfterIteration(ctx context.Context, event automaton.AfterIterationEvent) {
	for _, h := range r.hooks {
		if hook, ok := h.(automaton.AfterIterationHook); ok {
			hook.OnAfterIteration(ctx, event)
		}
	}
}

// FireBeforeModelCall dispatches to all BeforeModelCallHook implementations.
func (r *Registry) FireBeforeModelCall(ctx context.Context, event automaton.BeforeModelCallEvent) {
	for _, h := range r.hooks {
		if hook, ok := h.(automaton.BeforeModelCallHook); ok {
			hook.OnBeforeModelCall(ctx, event)
		}
	}
}

// FireAfterModelCall dispatches to all AfterModelCallHook implementations.
func (r *Registry) FireAfterModelCall(ctx context.Context, event automaton.AfterModelCallEvent) {
	for _, h := range r.hooks {
		if hook, ok := h.(automaton.AfterModelCallHook); ok {
			hook.OnAfterModelCall(ctx, event)
		}
	}
}

// FireBeforeToolCall dispatches to all BeforeToolCallHook implementations.
// Hooks can modify event.Arguments to change the tool input.
func (r *Registry) FireBeforeToolCall(ctx context.Context, event *automaton.BeforeToolCallEvent) {
	for _, h := range r.hooks {
		if hook, ok := h.(automaton.BeforeToolCallHook); ok {
			hook.OnBeforeToolCall(ctx, event)
		}
	}
}

// FireAfterToolCall dispatches to all AfterToolCallHook implementations.
func (r *Registry) FireAfterToolCall(ctx context.Context, event automaton.AfterToolCallEvent) {
	for _, h := range r.hooks {
		if hook, ok := h.(automaton.AfterToolCallHook); ok {
			hook.OnAfterToolCall(ctx, event)
		}
	}
}

// Compile-time check that Registry implements automaton.HookFirer.
var _ automaton.HookFirer = (*Registry)(nil)
