// Package tt holds test doubles shared by the package tests.
package tt

import (
	"context"
	"fmt"
	"sync"

	"github.com/rickchristie/automaton"
	"github.com/rickchristie/automaton/codec"
)

// -----------------------------------------------------------------------------
// MockModel - implements automaton.LanguageModel
// -----------------------------------------------------------------------------

// MockModel replays queued responses in order. Once the queue is drained it keeps returning
// the fallback response.
type MockModel struct {
	mu        sync.Mutex
	responses []string
	errors    []error
	fallback  string
	callCount int

	// CapturedPrompts stores the messages passed to each Invoke call.
	CapturedPrompts [][]automaton.Message
}

// NewMockModel creates a MockModel whose fallback is a thinking-out-loud response with no
// action block.
func NewMockModel() *MockModel {
	return &MockModel{fallback: "Still thinking..."}
}

// AddResponse queues a raw text response.
func (m *MockModel) AddResponse(text string) *MockModel {
	m.responses = append(m.responses, text)
	m.errors = append(m.errors, nil)
	return m
}

// AddAction queues a response consisting of optional reasoning followed by the encoded action.
func (m *MockModel) AddAction(reasoning string, a automaton.Action) *MockModel {
	text := codec.MustEncode(a)
	if reasoning != "" {
		text = reasoning + "\n" + text
	}
	return m.AddResponse(text)
}

// AddError queues an error for the next call.
func (m *MockModel) AddError(err error) *MockModel {
	m.responses = append(m.responses, "")
	m.errors = append(m.errors, err)
	return m
}

// WithFallback sets the response returned once the queue is drained.
func (m *MockModel) WithFallback(text string) *MockModel {
	m.fallback = text
	return m
}

// CallCount returns the number of Invoke calls so far.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Invoke implements automaton.LanguageModel.
func (m *MockModel) Invoke(ctx context.Context, messages []automaton.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.callCount
	m.callCount++

	captured := make([]automaton.Message, len(messages))
	copy(captured, messages)
	m.CapturedPrompts = append(m.CapturedPrompts, captured)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if idx < len(m.responses) {
		return m.responses[idx], m.errors[idx]
	}
	return m.fallback, nil
}

// -----------------------------------------------------------------------------
// MockTool - implements automaton.Tool
// -----------------------------------------------------------------------------

// MockTool records its calls and returns a fixed value or error.
type MockTool struct {
	name   string
	schema map[string]any
	fn     func(args map[string]any) (any, error)

	mu    sync.Mutex
	Calls []map[string]any
}

// NewMockTool creates a tool named name that runs fn.
func NewMockTool(name string, fn func(args map[string]any) (any, error)) *MockTool {
	return &MockTool{name: name, fn: fn}
}

// WithSchema sets the parameter schema.
func (t *MockTool) WithSchema(s map[string]any) *MockTool {
	t.schema = s
	return t
}

func (t *MockTool) Name() string                    { return t.name }
func (t *MockTool) Description() string             { return fmt.Sprintf("mock tool %s", t.name) }
func (t *MockTool) ParameterSchema() map[string]any { return t.schema }

// Call implements automaton.Tool.
func (t *MockTool) Call(_ context.Context, args map[string]any) (any, error) {
	t.mu.Lock()
	t.Calls = append(t.Calls, args)
	t.mu.Unlock()
	if t.fn == nil {
		return nil, nil
	}
	return t.fn(args)
}

// CallCount returns the number of calls so far.
func (t *MockTool) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Calls)
}

// -----------------------------------------------------------------------------
// HookRecorder - records every hook event name in order
// -----------------------------------------------------------------------------

// HookRecorder implements every hook interface and records the order events arrive in.
type HookRecorder struct {
	mu     sync.Mutex
	Events []string

	LastAfterRun automaton.AfterRunEvent
	ToolCalls    []automaton.AfterToolCallEvent
}

func (h *HookRecorder) record(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, name)
}

func (h *HookRecorder) OnBeforeRun(context.Context, automaton.BeforeRunEvent) {
	h.record("BeforeRun")
}

func (h *HookRecorder) OnAfterRun(_ context.Context, e automaton.AfterRunEvent) {
	h.record("AfterRun")
	h.mu.Lock()
	h.LastAfterRun = e
	h.mu.Unlock()
}

func (h *HookRecorder) OnBeforeIteration(_ context.Context, e automaton.BeforeIterationEvent) {
	h.record(fmt.Sprintf("BeforeIteration:%d", e.Iteration))
}

func (h *HookRecorder) OnAfterIteration(_ context.Context, e automaton.AfterIterationEvent) {
	h.record(fmt.Sprintf("AfterIteration:%d", e.Iteration))
}

func (h *HookRecorder) OnBeforeModelCall(context.Context, automaton.BeforeModelCallEvent) {
	h.record("BeforeModelCall")
}

func (h *HookRecorder) OnAfterModelCall(context.Context, automaton.AfterModelCallEvent) {
	h.record("AfterModelCall")
}

func (h *HookRecorder) OnBeforeToolCall(_ context.Context, e *automaton.BeforeToolCallEvent) {
	h.record("BeforeToolCall:" + e.ToolName)
}

func (h *HookRecorder) OnAfterToolCall(_ context.Context, e automaton.AfterToolCallEvent) {
	h.record("AfterToolCall:" + e.ToolName)
	h.mu.Lock()
	h.ToolCalls = append(h.ToolCalls, e)
	h.mu.Unlock()
}

var (
	_ automaton.LanguageModel = (*MockModel)(nil)
	_ automaton.Tool          = (*MockTool)(nil)
)
