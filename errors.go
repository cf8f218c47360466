package automaton

import (
	"errors"
	"fmt"
)

// Run and dispatch errors. Match with errors.Is; most are returned wrapped with detail.
var (
	// ErrPrecondition is returned when a run starts with an empty transcript.
	ErrPrecondition = errors.New("precondition violated")

	// ErrMalformedAction is returned when an <action> block is present but cannot be decoded.
	ErrMalformedAction = errors.New("malformed action")

	// ErrToolNotFound is recorded when the model invokes a tool that is not registered.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidToolArgs is recorded when arguments fail the tool's parameter schema.
	ErrInvalidToolArgs = errors.New("invalid tool arguments")

	// ErrToolExecution is recorded when a tool returns an error or panics.
	ErrToolExecution = errors.New("tool execution failed")

	// ErrModelInvocation is returned when the language model call fails.
	ErrModelInvocation = errors.New("model invocation failed")
)

// MalformedActionError describes an <action> block that could not be decoded.
type MalformedActionError struct {
	// Blob is the raw text captured between the action delimiters.
	Blob string

	// Err is the underlying parse or structure error.
	Err error
}

func (e *MalformedActionError) Error() string {
	return fmt.Sprintf("%v: %v", ErrMalformedAction, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As.
func (e *MalformedActionError) Unwrap() []error {
	return []error{ErrMalformedAction, e.Err}
}
