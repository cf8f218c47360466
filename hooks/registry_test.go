package hooks

import (
	"context"
	"testing"
	"time"

	"github.com/rickchristie/automaton"
	"github.com/stretchr/testify/assert"
)

// orderHook records into a shared slice so tests can check cross-hook ordering.
type orderHook struct {
	name string
	log  *[]string
}

func (h *orderHook) OnBeforeRun(context.Context, automaton.BeforeRunEvent) {
	*h.log = append(*h.log, h.name+":BeforeRun")
}

func (h *orderHook) OnAfterRun(context.Context, automaton.AfterRunEvent) {
	*h.log = append(*h.log, h.name+":AfterRun")
}

// iterationOnly implements a single hook interface.
type iterationOnly struct {
	iterations []int
}

func (h *iterationOnly) OnBeforeIteration(_ context.Context, e automaton.BeforeIterationEvent) {
	h.iterations = append(h.iterations, e.Iteration)
}

func TestRegistry_FiresInRegistrationOrder(t *testing.T) {
	var log []string
	r := NewRegistry().
		Register(&orderHook{name: "first", log: &log}).
		Register(&orderHook{name: "second", log: &log})

	ctx := context.Background()
	r.FireBeforeRun(ctx, automaton.BeforeRunEvent{RunID: "r"})
	r.FireAfterRun(ctx, automaton.AfterRunEvent{RunID: "r"})

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{
		"first:BeforeRun",
		"second:BeforeRun",
		"first:AfterRun",
		"second:AfterRun",
	}, log)
}

func TestRegistry_DispatchesByInterface(t *testing.T) {
	var log []string
	iter := &iterationOnly{}
	r := NewRegistry().
		Register(iter).
		Register(&orderHook{name: "run", log: &log}).
		Register("not a hook")

	ctx := context.Background()
	r.FireBeforeRun(ctx, automaton.BeforeRunEvent{})
	r.FireBeforeIteration(ctx, automaton.BeforeIterationEvent{Iteration: 1})
	r.FireBeforeIteration(ctx, automaton.BeforeIterationEvent{Iteration: 2})
	r.FireAfterIteration(ctx, automaton.AfterIterationEvent{Iteration: 2})
	r.FireBeforeModelCall(ctx, automaton.BeforeModelCallEvent{})
	r.FireAfterModelCall(ctx, automaton.AfterModelCallEvent{})
	r.FireBeforeToolCall(ctx, &automaton.BeforeToolCallEvent{})
	r.FireAfterToolCall(ctx, automaton.AfterToolCallEvent{})

	assert.Equal(t, []int{1, 2}, iter.iterations)
	assert.Equal(t, []string{"run:BeforeRun"}, log)
}

type argsHook struct {
	key, value string
}

func (h argsHook) OnBeforeToolCall(_ context.Context, e *automaton.BeforeToolCallEvent) {
	next := make(map[string]any, len(e.Arguments)+1)
	for k, v := range e.Arguments {
		next[k] = v
	}
	next[h.key] = h.value
	e.Arguments = next
}

func TestRegistry_BeforeToolCallChainsRewrites(t *testing.T) {
	r := NewRegistry().
		Register(argsHook{key: "a", value: "1"}).
		Register(argsHook{key: "b", value: "2"})

	original := map[string]any{"q": "x"}
	event := &automaton.BeforeToolCallEvent{ToolName: "search", Arguments: original}
	r.FireBeforeToolCall(context.Background(), event)

	assert.Equal(t, map[string]any{"q": "x", "a": "1", "b": "2"}, event.Arguments)
	assert.Equal(t, map[string]any{"q": "x"}, original)
}

func TestRegistry_Empty(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Len())
	assert.NotPanics(t, func() {
		r.FireAfterRun(context.Background(), automaton.AfterRunEvent{Duration: time.Second})
	})
}
