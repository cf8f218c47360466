// Package toolchain provides the tool registry the agent loop dispatches invocations to.
//
// # Registering Tools
//
//	registry := toolchain.NewRegistry().MustRegister(
//	    toolchain.NewClockTool(nil),
//	    toolchain.NewCalculatorTool(),
//	    automaton.NewToolFunc("search", "Search the web", searchSchema, search),
//	)
//
// # Dispatch
//
// [Registry.Dispatch] turns a decoded [automaton.Invoke] into an [automaton.Result]. Unknown
// tools, schema violations, tool errors and panics are all captured on the Result rather than
// returned, so a run keeps going and the model can correct itself on the next turn.
//
// # Prompt
//
// [Registry.AvailableToolsPrompt] renders every tool with its parameter schema as YAML, which
// models read more reliably than raw JSON Schema.
package toolchain
