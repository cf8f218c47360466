package automaton

import "time"

// State is the state of an agent run.
type State string

const (
	// StateRunning is the initial state of every run.
	StateRunning State = "running"

	// StateFinished means the transcript ends with a Finish entry.
	StateFinished State = "finished"

	// StateExhausted means the iteration budget ran out before a Finish entry appeared.
	StateExhausted State = "exhausted"
)

// -----------------------------------------------------------------------------
// Run lifecycle events
// -----------------------------------------------------------------------------

// BeforeRunEvent is emitted once before the first iteration.
type BeforeRunEvent struct {
	RunID string

	// Transcript is the transcript being driven. Hooks must not append to it.
	Transcript *Transcript
}

// AfterRunEvent is emitted once when the run stops, including when it stops with an error.
type AfterRunEvent struct {
	RunID      string
	State      State
	Iterations int
	Duration   time.Duration

	// Err is non-nil if the run returned an error.
	Err error
}

// BeforeIterationEvent is emitted before each model invocation.
type BeforeIterationEvent struct {
	RunID string

	// Iteration is the current iteration number (1-indexed).
	Iteration int
}

// AfterIterationEvent is emitted after each iteration has appended its entries.
type AfterIterationEvent struct {
	RunID     string
	Iteration int

	// Action is the decoded action, nil when the model produced no action block.
	Action Action

	// Appended holds the entries this iteration added to the transcript, in order.
	Appended []Entry

	Duration time.Duration
}

// -----------------------------------------------------------------------------
// Collaborator call events
// -----------------------------------------------------------------------------

// BeforeModelCallEvent is emitted before the model is invoked.
type BeforeModelCallEvent struct {
	RunID     string
	Iteration int
	Prompt    []Message
}

// AfterModelCallEvent is emitted after the model returns.
type AfterModelCallEvent struct {
	RunID     string
	Iteration int
	Prompt    []Message
	Response  string
	Duration  time.Duration
	Err       error
}

// BeforeToolCallEvent is emitted before a tool runs.
type BeforeToolCallEvent struct {
	RunID    string
	ToolName string

	// Arguments will be passed to the tool. Hooks may replace or modify this map.
	Arguments map[string]any
}

// AfterToolCallEvent is emitted after a tool runs, including unknown-tool and validation
// failures.
type AfterToolCallEvent struct {
	RunID     string
	ToolName  string
	Arguments map[string]any
	Output    any
	Duration  time.Duration
	Err       error
}
