package automaton

import (
	"github.com/tmc/langchaingo/llms"
)

// Entry is a single item of a [Transcript].
//
// Entry is a closed sum type. The only implementations are [Message], [Invoke], [Result] and
// [Finish]. Consumers switch over all four; adding a kind here means revisiting every switch.
type Entry interface {
	entry()
}

// Action is a structured directive decoded from model output: either invoke a tool or finish
// with a result.
//
// Action is a closed sum type. The only implementations are [Invoke] and [Finish]. Every Action
// is also an [Entry], so a decoded action can be appended to the transcript as-is.
type Action interface {
	Entry
	action()
}

// Role is the speaker of a [Message]. It reuses langchaingo's chat message types so that
// projected prompts convert to provider messages without a mapping table.
type Role = llms.ChatMessageType

const (
	RoleSystem = llms.ChatMessageTypeSystem
	RoleHuman  = llms.ChatMessageTypeHuman
	RoleAI     = llms.ChatMessageTypeAI
)

// Message is a textual message from a human, the system, or the model itself.
type Message struct {
	Role    Role
	Content string
}

// Invoke asks for the named tool to be called with the given arguments.
// Name is never empty for an Invoke produced by the codec.
type Invoke struct {
	Name      string
	Arguments map[string]any
}

// Finish terminates the run with Result as the final answer.
type Finish struct {
	Result any
}

// Result is the outcome of running an [Invoke].
//
// Exactly one of Value and Err is meaningful: when Err is non-nil the call failed and Value is
// ignored. Source points at the Invoke that produced this result; it is nil when the result
// reports an action that could not be decoded.
type Result struct {
	Value  any
	Err    error
	Source *Invoke
}

// IsError reports whether the result carries an error.
func (r Result) IsError() bool {
	return r.Err != nil
}

func (Message) entry() {}
func (Invoke) entry()  {}
func (Result) entry()  {}
func (Finish) entry()  {}

func (Invoke) action() {}
func (Finish) action() {}

// NewMessage is shorthand for a Message entry.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}
