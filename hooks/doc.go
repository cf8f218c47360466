// Package hooks provides a registry for run lifecycle hooks plus two ready-made hooks.
//
// # Hook Interfaces
//
// Run lifecycle:
//   - [automaton.BeforeRunHook], [automaton.AfterRunHook]
//   - [automaton.BeforeIterationHook], [automaton.AfterIterationHook]
//
// Collaborator calls:
//   - [automaton.BeforeModelCallHook], [automaton.AfterModelCallHook]
//   - [automaton.BeforeToolCallHook] (can modify arguments), [automaton.AfterToolCallHook]
//
// # Provided Hooks
//
//   - [Logging] writes every event to a *slog.Logger.
//   - [Metrics] records prometheus counters and histograms.
//
// # Registering Hooks
//
//	registry := hooks.NewRegistry()
//	registry.Register(hooks.NewLogging(slog.Default()))
//
//	loop := chat.NewLoop(model, tools).WithHooks(registry)
//
// Or register directly on the loop:
//
//	loop := chat.NewLoop(model, tools).RegisterHook(&MyHook{})
package hooks
