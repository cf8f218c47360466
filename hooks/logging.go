package hooks

import (
	"context"
	"log/slog"

	"github.com/rickchristie/automaton"
	"gopkg.in/yaml.v3"
)

// Logging writes every run event to a structured logger.
//
// Lifecycle events are logged at Info, collaborator calls at Debug, and failures at Warn. With
// WithPrompts enabled the full prompt of every model call is attached as a YAML document, which
// is verbose but reads well when debugging a misbehaving model.
type Logging struct {
	logger      *slog.Logger
	withPrompts bool
}

// NewLogging creates a Logging hook. A nil logger uses slog.Default().
func NewLogging(logger *slog.Logger) *Logging {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logging{logger: logger}
}

// WithPrompts includes the rendered prompt in model call logs.
func (h *Logging) WithPrompts(enabled bool) *Logging {
	h.withPrompts = enabled
	return h
}

func (h *Logging) OnBeforeRun(ctx context.Context, e automaton.BeforeRunEvent) {
	h.logger.InfoContext(ctx, "run started",
		"run_id", e.RunID,
		"entries", e.Transcript.Len(),
	)
}

func (h *Logging) OnAfterRun(ctx context.Context, e automaton.AfterRunEvent) {
	attrs := []any{
		"run_id", e.RunID,
		"state", e.State,
		"iterations", e.Iterations,
		"duration", e.Duration,
	}
	if e.Err != nil {
		h.logger.WarnContext(ctx, "run failed", append(attrs, "error", e.Err)...)
		return
	}
	h.logger.InfoContext(ctx, "run stopped", attrs...)
}

func (h *Logging) OnBeforeIteration(ctx context.Context, e automaton.BeforeIterationEvent) {
	h.logger.DebugContext(ctx, "iteration started", "run_id", e.RunID, "iteration", e.Iteration)
}

func (h *Logging) OnAfterIteration(ctx context.Context, e automaton.AfterIterationEvent) {
	h.logger.DebugContext(ctx, "iteration finished",
		"run_id", e.RunID,
		"iteration", e.Iteration,
		"action", actionKind(e.Action),
		"appended", len(e.Appended),
		"duration", e.Duration,
	)
}

func (h *Logging) OnBeforeModelCall(ctx context.Context, e automaton.BeforeModelCallEvent) {
	attrs := []any{"run_id", e.RunID, "iteration", e.Iteration, "messages", len(e.Prompt)}
	if h.withPrompts {
		attrs = append(attrs, "prompt", promptYAML(e.Prompt))
	}
	h.logger.DebugContext(ctx, "model call", attrs...)
}

func (h *Logging) OnAfterModelCall(ctx context.Context, e automaton.AfterModelCallEvent) {
	if e.Err != nil {
		h.logger.WarnContext(ctx, "model call failed",
			"run_id", e.RunID,
			"iteration", e.Iteration,
			"duration", e.Duration,
			"error", e.Err,
		)
		return
	}
	h.logger.DebugContext(ctx, "model responded",
		"run_id", e.RunID,
		"iteration", e.Iteration,
		"duration", e.Duration,
		"response_len", len(e.Response),
	)
}

func (h *Logging) OnBeforeToolCall(ctx context.Context, e *automaton.BeforeToolCallEvent) {
	h.logger.DebugContext(ctx, "tool call", "run_id", e.RunID, "tool", e.ToolName)
}

func (h *Logging) OnAfterToolCall(ctx context.Context, e automaton.AfterToolCallEvent) {
	if e.Err != nil {
		h.logger.WarnContext(ctx, "tool call failed",
			"run_id", e.RunID,
			"tool", e.ToolName,
			"duration", e.Duration,
			"error", e.Err,
		)
		return
	}
	h.logger.DebugContext(ctx, "tool returned",
		"run_id", e.RunID,
		"tool", e.ToolName,
		"duration", e.Duration,
	)
}

func actionKind(a automaton.Action) string {
	switch a := a.(type) {
	case nil:
		return "none"
	case automaton.Invoke:
		return "invoke:" + a.Name
	case automaton.Finish:
		return "finish"
	default:
		return "unknown"
	}
}

type promptLine struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}

func promptYAML(messages []automaton.Message) string {
	lines := make([]promptLine, len(messages))
	for i, m := range messages {
		lines[i] = promptLine{Role: string(m.Role), Content: m.Content}
	}
	data, err := yaml.Marshal(lines)
	if err != nil {
		return "(failed to marshal prompt: " + err.Error() + ")"
	}
	return string(data)
}

// Compile-time checks that Logging implements every hook interface.
var (
	_ automaton.BeforeRunHook       = (*Logging)(nil)
	_ automaton.AfterRunHook        = (*Logging)(nil)
	_ automaton.BeforeIterationHook = (*Logging)(nil)
	_ automaton.AfterIterationHook  = (*Logging)(nil)
	_ automaton.BeforeModelCallHook = (*Logging)(nil)
	_ automaton.AfterModelCallHook  = (*Logging)(nil)
	_ automaton.BeforeToolCallHook  = (*Logging)(nil)
	_ automaton.AfterToolCallHook   = (*Logging)(nil)
)
