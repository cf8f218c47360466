// Package codec converts between structured actions and the text a model writes.
//
// # Wire Format
//
// An action is a literal mapping with exactly two keys wrapped in action tags:
//
//	<action>{'action': 'search', 'action_input': {'query': 'weather'}}</action>
//
// The reserved action name "Final Answer" finishes the run; its action_input is the result:
//
//	<action>{"action": "Final Answer", "action_input": "It is sunny."}</action>
//
// # Decoding
//
// [Decode] looks for the first <action>…</action> block only. Text before or after it is
// ignored, and text with no block decodes to (nil, nil). The block body is parsed as a JSON5
// literal, so both quoting styles above work, as do trailing commas and comments. The parser
// only builds data; a value such as '__import__("os")' is just a string.
//
// # Encoding
//
// [Encode] is the inverse and is used to build worked examples for prompts; see [Guidance].
// For any JSON-safe arguments, Decode(Encode(a)) yields an equivalent action. Numbers come back
// as float64, as with encoding/json.
package codec
