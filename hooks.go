package automaton

import (
	"context"
)

// -----------------------------------------------------------------------------
// Hook Interfaces
// -----------------------------------------------------------------------------
//
// Hooks observe a run at fixed points. To use hooks:
//
//  1. Implement the desired hook interface(s)
//  2. Register with hooks.Registry
//  3. Pass the registry to the agent loop
//
// Example:
//
//	type IterationLogger struct {
//	    logger *slog.Logger
//	}
//
//	func (h *IterationLogger) OnBeforeIteration(ctx context.Context, e automaton.BeforeIterationEvent) {
//	    h.logger.InfoContext(ctx, "iteration", "n", e.Iteration)
//	}
//
// Hooks are called in registration order. AfterRun is always called if BeforeRun was called.
// Hooks do not return errors; a panicking hook propagates out of the run.
// -----------------------------------------------------------------------------

// BeforeRunHook is notified once before the first iteration.
type BeforeRunHook interface {
	OnBeforeRun(ctx context.Context, event BeforeRunEvent)
}

// AfterRunHook is notified once after the run stops, successfully or not.
type AfterRunHook interface {
	OnAfterRun(ctx context.Context, event AfterRunEvent)
}

// BeforeIterationHook is notified before each iteration.
type BeforeIterationHook interface {
	OnBeforeIteration(ctx context.Context, event BeforeIterationEvent)
}

// AfterIterationHook is notified after each iteration.
type AfterIterationHook interface {
	OnAfterIteration(ctx context.Context, event AfterIterationEvent)
}

// BeforeModelCallHook is notified before each model invocation.
type BeforeModelCallHook interface {
	OnBeforeModelCall(ctx context.Context, event BeforeModelCallEvent)
}

// AfterModelCallHook is notified after each model invocation.
type AfterModelCallHook interface {
	OnAfterModelCall(ctx context.Context, event AfterModelCallEvent)
}

// BeforeToolCallHook is notified before each tool call.
// The hook can modify event.Arguments to change the input.
type BeforeToolCallHook interface {
	OnBeforeToolCall(ctx context.Context, event *BeforeToolCallEvent)
}

// AfterToolCallHook is notified after each tool call.
type AfterToolCallHook interface {
	OnAfterToolCall(ctx context.Context, event AfterToolCallEvent)
}

// HookFirer dispatches events to registered hooks. It is implemented by hooks.Registry and
// lets components such as the tool registry fire events without importing the hooks package.
type HookFirer interface {
	FireBeforeRun(ctx context.Context, event BeforeRunEvent)
	FireAfterRun(ctx context.Context, event AfterRunEvent)
	FireBeforeIteration(ctx context.Context, event BeforeIterationEvent)
	FireAfterIteration(ctx context.Context, event AfterIterationEvent)
	FireBeforeModelCall(ctx context.Context, event BeforeModelCallEvent)
	FireAfterModelCall(ctx context.Context, event AfterModelCallEvent)
	FireBeforeToolCall(ctx context.Context, event *BeforeToolCallEvent)
	FireAfterToolCall(ctx context.Context, event AfterToolCallEvent)
}
