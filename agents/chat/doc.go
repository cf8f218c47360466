// Package chat provides the bounded agent loop.
//
// # Overview
//
// A [Loop] repeatedly asks a language model for its next step, decodes the
// <action> block in its reply and either calls a tool or finishes. Everything
// the run produces is appended to a caller-owned [automaton.Transcript]:
//
//	transcript := automaton.NewTranscript(
//	    automaton.NewMessage(automaton.RoleHuman, "What's 17 * 23?"),
//	)
//	loop := chat.NewLoop(model, toolchain.NewRegistry().MustRegister(
//	    toolchain.NewCalculatorTool(),
//	))
//	result, err := loop.Run(ctx, transcript)
//	if err != nil {
//	    return err
//	}
//	if answer, ok := transcript.FinalResult(); ok {
//	    fmt.Println(answer)
//	}
//
// # Termination
//
// A run stops when the transcript ends with a Finish entry (StateFinished) or
// after the configured number of model invocations (StateExhausted). Running
// out of iterations is not an error.
//
// # Configuration
//
//   - WithMaxIterations: iteration budget, default 10
//   - WithMalformedPolicy: MalformedObserve (default) or MalformedFail
//   - WithMaxConsecutiveMalformed: malformed streak that ends an observing run, default 3
//   - WithSystemPrompt / WithSystemPromptString: replace the system template
//   - WithInstructions: extra behavior and context for the system template
//   - WithoutSystemPrompt: send only the projected transcript
//   - WithHooks / RegisterHook: lifecycle hooks, see package hooks
//   - WithLogger: structured logging through log/slog
//   - WithClock: time source for the system prompt
//
// # Templates
//
// The system prompt is a Go text/template with access to [SystemPromptData]:
// {{.Instructions}}, {{.Tools}}, {{.Format}} and {{.Now}}.
package chat
