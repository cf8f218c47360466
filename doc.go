// Package automaton holds the shared vocabulary of a bounded, tool-using agent loop.
//
// A run alternates between a language model and a set of tools. The model answers in free text
// and may embed exactly one action in an <action> block: either an [Invoke] of a named tool or a
// [Finish] carrying the final answer. Everything that happens is appended to a [Transcript]:
//
//   - [Message] human, system and model text
//   - [Invoke] a decoded tool call
//   - [Result] the value or error a tool call produced
//   - [Finish] the end of a run
//
// [Project] turns a transcript into the messages a model actually sees. Tool results become
// system messages prefixed with "Observation: "; invokes and finishes are dropped because the
// model's own reply already contains them.
//
// Implementations live in subpackages:
//
//   - codec encodes and decodes <action> blocks
//   - toolchain registers, validates and dispatches tools
//   - agents/chat runs the loop
//   - models adapts langchaingo providers to [LanguageModel]
//   - hooks provides the hook registry plus logging and Prometheus hooks
package automaton
