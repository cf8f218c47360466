package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rickchristie/automaton"
	"github.com/titanous/json5"
)

const (
	// FinalAnswer is the reserved action name that encodes [automaton.Finish].
	FinalAnswer = "Final Answer"

	// OpenTag and CloseTag delimit an encoded action in model text.
	OpenTag  = "<action>"
	CloseTag = "</action>"
)

// actionPattern matches the first delimited block, non-greedy, across newlines.
var actionPattern = regexp.MustCompile(`(?s)<action>(.*?)</action>`)

// wireAction fixes the key order of the encoded literal: "action" first, then "action_input".
type wireAction struct {
	Action      string `json:"action"`
	ActionInput any    `json:"action_input"`
}

// Encode renders an action as an <action>…</action> block.
//
// The literal is JSON, which is a subset of what [Decode] accepts. A Finish result is written as
// an opaque literal: strings are quoted, everything else keeps its literal form. Characters such
// as '<' are escaped inside strings, so an argument containing "</action>" cannot end the block
// early.
func Encode(a automaton.Action) (string, error) {
	var wire wireAction
	switch a := a.(type) {
	case automaton.Invoke:
		if a.Name == "" {
			return "", &automaton.MalformedActionError{Err: errors.New("invoke has empty name")}
		}
		if a.Name == FinalAnswer {
			return "", &automaton.MalformedActionError{
				Err: fmt.Errorf("%q is reserved for finish", FinalAnswer),
			}
		}
		args := a.Arguments
		if args == nil {
			args = map[string]any{}
		}
		wire = wireAction{Action: a.Name, ActionInput: args}
	case automaton.Finish:
		wire = wireAction{Action: FinalAnswer, ActionInput: a.Result}
	case nil:
		return "", errors.New("codec: cannot encode nil action")
	default:
		panic(fmt.Sprintf("codec: unknown action %T", a))
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("codec: encode %s: %w", wire.Action, err)
	}
	return OpenTag + string(data) + CloseTag, nil
}

// MustEncode is like Encode but panics on error. Use it for prompt examples built at init time.
func MustEncode(a automaton.Action) string {
	s, err := Encode(a)
	if err != nil {
		panic(err)
	}
	return s
}

// Extract returns the text between the first pair of action delimiters.
func Extract(text string) (string, bool) {
	m := actionPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Decode extracts and decodes the first action block in text.
//
// Returns (nil, nil) when text contains no action block: the model may be reasoning out loud and
// that is not an error. Returns an error wrapping [automaton.ErrMalformedAction] (as a
// *[automaton.MalformedActionError]) when a block is present but is not a valid action literal.
//
// The block body is parsed as a JSON5 literal: single- or double-quoted strings, numbers,
// booleans, null, objects and arrays. Nothing in it is ever evaluated.
func Decode(text string) (automaton.Action, error) {
	blob, ok := Extract(text)
	if !ok {
		return nil, nil
	}
	a, err := decodeBlob(blob)
	if err != nil {
		return nil, &automaton.MalformedActionError{Blob: blob, Err: err}
	}
	return a, nil
}

func decodeBlob(blob string) (automaton.Action, error) {
	if strings.TrimSpace(blob) == "" {
		return nil, errors.New("empty action block")
	}

	var raw any
	if err := json5.Unmarshal([]byte(blob), &raw); err != nil {
		return nil, fmt.Errorf("invalid literal: %w", err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a mapping, got %s", literalKind(raw))
	}

	nameVal, ok := obj["action"]
	if !ok {
		return nil, errors.New(`missing "action" key`)
	}
	name, ok := nameVal.(string)
	if !ok {
		return nil, fmt.Errorf(`"action" must be a string, got %s`, literalKind(nameVal))
	}
	if name == "" {
		return nil, errors.New(`"action" is empty`)
	}

	input := obj["action_input"]
	if name == FinalAnswer {
		return automaton.Finish{Result: input}, nil
	}

	args, err := arguments(input)
	if err != nil {
		return nil, err
	}
	return automaton.Invoke{Name: name, Arguments: args}, nil
}

// arguments normalizes "action_input" for an invoke. Missing or empty input becomes an empty
// mapping, never nil.
func arguments(input any) (map[string]any, error) {
	switch v := input.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case string:
		if v == "" {
			return map[string]any{}, nil
		}
	case []any:
		if len(v) == 0 {
			return map[string]any{}, nil
		}
	}
	return nil, fmt.Errorf(`"action_input" must be a mapping, got %s`, literalKind(input))
}

func literalKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "mapping"
	case []any:
		return "sequence"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
