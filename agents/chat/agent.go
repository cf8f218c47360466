package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/rickchristie/automaton"
	"github.com/rickchristie/automaton/codec"
	"github.com/rickchristie/automaton/hooks"
	"github.com/rickchristie/automaton/toolchain"
)

const (
	// DefaultMaxIterations is the iteration budget of a new Loop.
	DefaultMaxIterations = 10

	// DefaultMaxConsecutiveMalformed is how many malformed actions in a row a new Loop tolerates
	// under MalformedObserve.
	DefaultMaxConsecutiveMalformed = 3
)

// MalformedPolicy decides what a run does when the model emits an action block that cannot be
// decoded.
type MalformedPolicy int

const (
	// MalformedObserve appends the decode error as an observation so the model can correct
	// itself. The run fails once the consecutive limit is reached.
	MalformedObserve MalformedPolicy = iota

	// MalformedFail stops the run with the decode error.
	MalformedFail
)

func (p MalformedPolicy) String() string {
	switch p {
	case MalformedObserve:
		return "observe"
	case MalformedFail:
		return "fail"
	default:
		return fmt.Sprintf("MalformedPolicy(%d)", int(p))
	}
}

// toolCatalog is implemented by registries that can describe their tools to the model.
type toolCatalog interface {
	AvailableToolsPrompt() string
}

// RunResult summarizes a run.
type RunResult struct {
	// RunID correlates logs and hook events of this run.
	RunID string

	// State is StateFinished or StateExhausted on success. On error it is StateRunning.
	State automaton.State

	// Iterations is the number of model invocations made.
	Iterations int
}

// ----------------------------------------------------------------------------
// Loop
// ----------------------------------------------------------------------------

// Loop drives a language model through bounded think-act-observe iterations over a transcript.
//
// Each iteration projects the transcript into a prompt, invokes the model, appends its reply,
// and acts on the decoded action:
//   - no action: nothing more is appended
//   - Finish: the Finish entry is appended and the run ends
//   - Invoke: the Invoke entry is appended, the tool is dispatched and its Result appended
//
// A Loop holds only configuration. Concurrent runs over distinct transcripts are safe once
// configuration is complete.
type Loop struct {
	model           automaton.LanguageModel
	tools           automaton.ToolRegistry
	hooks           *hooks.Registry
	logger          *slog.Logger
	clock           automaton.Clock
	systemTemplate  *template.Template
	instructions    string
	maxIterations   int
	maxMalformed    int
	malformedPolicy MalformedPolicy
}

// NewLoop creates a Loop with the given model and tools. A nil registry means no tools.
// Defaults:
//   - MaxIterations: DefaultMaxIterations
//   - MaxConsecutiveMalformed: DefaultMaxConsecutiveMalformed
//   - MalformedPolicy: MalformedObserve
//   - SystemPrompt: DefaultSystemTemplate
//   - Logger: discards everything
func NewLoop(model automaton.LanguageModel, tools automaton.ToolRegistry) *Loop {
	if tools == nil {
		tools = toolchain.NewRegistry()
	}
	return &Loop{
		model:           model,
		tools:           tools,
		hooks:           hooks.NewRegistry(),
		logger:          slog.New(slog.DiscardHandler),
		clock:           automaton.SystemClock{},
		systemTemplate:  DefaultSystemTemplate,
		maxIterations:   DefaultMaxIterations,
		maxMalformed:    DefaultMaxConsecutiveMalformed,
		malformedPolicy: MalformedObserve,
	}
}

// WithMaxIterations sets the number of model invocations after which a run is exhausted.
// Values below 1 are ignored.
func (l *Loop) WithMaxIterations(n int) *Loop {
	if n > 0 {
		l.maxIterations = n
	}
	return l
}

// WithMaxConsecutiveMalformed sets how many malformed actions in a row end a run under
// MalformedObserve. Values below 1 are ignored.
func (l *Loop) WithMaxConsecutiveMalformed(n int) *Loop {
	if n > 0 {
		l.maxMalformed = n
	}
	return l
}

// WithMalformedPolicy sets how malformed actions are handled.
func (l *Loop) WithMalformedPolicy(p MalformedPolicy) *Loop {
	l.malformedPolicy = p
	return l
}

// WithSystemPrompt replaces the system prompt template. The template receives SystemPromptData.
func (l *Loop) WithSystemPrompt(tmpl *template.Template) *Loop {
	l.systemTemplate = tmpl
	return l
}

// WithSystemPromptString parses tmplStr as a text/template with access to SystemPromptData:
//   - {{.Instructions}} - text from WithInstructions()
//   - {{.Tools}} - the tool catalog
//   - {{.Format}} - action format guidance
//   - {{.Now}} - run start time
//
// Returns error if the template string is invalid.
func (l *Loop) WithSystemPromptString(tmplStr string) (*Loop, error) {
	tmpl, err := template.New("chat_system").Parse(tmplStr)
	if err != nil {
		return l, fmt.Errorf("failed to parse template: %w", err)
	}
	l.systemTemplate = tmpl
	return l, nil
}

// WithoutSystemPrompt sends only the projected transcript to the model. Use this when the
// transcript is seeded with its own system message.
func (l *Loop) WithoutSystemPrompt() *Loop {
	l.systemTemplate = nil
	return l
}

// WithInstructions sets behavior instructions and context for the system prompt.
func (l *Loop) WithInstructions(instructions string) *Loop {
	l.instructions = instructions
	return l
}

// WithHooks sets the hook registry. A nil registry resets to an empty one.
func (l *Loop) WithHooks(registry *hooks.Registry) *Loop {
	if registry == nil {
		registry = hooks.NewRegistry()
	}
	l.hooks = registry
	return l
}

// RegisterHook adds a hook to the loop's hook registry. The hook can implement any combination
// of hook interfaces.
func (l *Loop) RegisterHook(hook any) *Loop {
	l.hooks.Register(hook)
	return l
}

// WithLogger sets the logger. A nil logger discards.
func (l *Loop) WithLogger(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	l.logger = logger
	return l
}

// WithClock sets the clock used for the system prompt's current time.
func (l *Loop) WithClock(clock automaton.Clock) *Loop {
	if clock != nil {
		l.clock = clock
	}
	return l
}

// ----------------------------------------------------------------------------
// Run
// ----------------------------------------------------------------------------

// Run drives the transcript until it ends with a Finish entry or the iteration budget runs out.
//
// The transcript must hold at least one entry, otherwise Run returns an error wrapping
// [automaton.ErrPrecondition] without touching it. Run only ever appends to the transcript.
//
// Running out of iterations is not an error: the result's State is StateExhausted. Errors are
// returned for model failures ([automaton.ErrModelInvocation]), malformed actions beyond what the
// policy tolerates ([automaton.ErrMalformedAction]) and context cancellation. Entries appended
// before the error stay in the transcript.
func (l *Loop) Run(ctx context.Context, transcript *automaton.Transcript) (result *RunResult, err error) {
	if transcript.Len() == 0 {
		return nil, fmt.Errorf("%w: transcript must contain at least one entry", automaton.ErrPrecondition)
	}

	runID := uuid.NewString()
	logger := l.logger.With("run_id", runID)
	start := time.Now()
	result = &RunResult{RunID: runID, State: automaton.StateRunning}

	system, err := l.systemPrompt()
	if err != nil {
		return result, fmt.Errorf("render system prompt: %w", err)
	}

	l.hooks.FireBeforeRun(ctx, automaton.BeforeRunEvent{RunID: runID, Transcript: transcript})
	defer func() {
		duration := time.Since(start)
		l.hooks.FireAfterRun(ctx, automaton.AfterRunEvent{
			RunID:      runID,
			State:      result.State,
			Iterations: result.Iterations,
			Duration:   duration,
			Err:        err,
		})
		if err != nil {
			logger.WarnContext(ctx, "run failed",
				"iterations", result.Iterations, "duration", duration, "error", err)
			return
		}
		logger.InfoContext(ctx, "run stopped",
			"state", result.State, "iterations", result.Iterations, "duration", duration)
	}()

	malformed := 0
	for {
		if transcript.Finished() {
			result.State = automaton.StateFinished
			return result, nil
		}
		if result.Iterations >= l.maxIterations {
			result.State = automaton.StateExhausted
			return result, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("before iteration %d: %w", result.Iterations+1, ctxErr)
		}

		result.Iterations++
		iteration := result.Iterations

		l.hooks.FireBeforeIteration(ctx, automaton.BeforeIterationEvent{RunID: runID, Iteration: iteration})
		iterStart := time.Now()
		offset := transcript.Len()

		action, iterErr := l.iterate(ctx, runID, iteration, system, transcript, &malformed)

		appended := transcript.Entries()[offset:]
		l.hooks.FireAfterIteration(ctx, automaton.AfterIterationEvent{
			RunID:     runID,
			Iteration: iteration,
			Action:    action,
			Appended:  appended,
			Duration:  time.Since(iterStart),
		})
		logger.DebugContext(ctx, "iteration complete",
			"iteration", iteration, "appended", len(appended), "malformed_streak", malformed)

		if iterErr != nil {
			return result, iterErr
		}
	}
}

// iterate runs one model turn and appends what it produced. malformed tracks the current streak
// of malformed actions across iterations.
func (l *Loop) iterate(
	ctx context.Context,
	runID string,
	iteration int,
	system string,
	transcript *automaton.Transcript,
	malformed *int,
) (automaton.Action, error) {
	prompt := automaton.Project(transcript)
	if system != "" {
		prompt = append([]automaton.Message{automaton.NewMessage(automaton.RoleSystem, system)}, prompt...)
	}

	l.hooks.FireBeforeModelCall(ctx, automaton.BeforeModelCallEvent{
		RunID:     runID,
		Iteration: iteration,
		Prompt:    prompt,
	})
	callStart := time.Now()
	text, err := l.model.Invoke(ctx, prompt)
	l.hooks.FireAfterModelCall(ctx, automaton.AfterModelCallEvent{
		RunID:     runID,
		Iteration: iteration,
		Prompt:    prompt,
		Response:  text,
		Duration:  time.Since(callStart),
		Err:       err,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: iteration %d: %w", automaton.ErrModelInvocation, iteration, err)
	}

	transcript.Append(automaton.NewMessage(automaton.RoleAI, text))

	action, err := codec.Decode(text)
	if err != nil {
		*malformed++
		if l.malformedPolicy == MalformedFail {
			return nil, fmt.Errorf("iteration %d: %w", iteration, err)
		}

		var malformedErr *automaton.MalformedActionError
		if !errors.As(err, &malformedErr) {
			malformedErr = &automaton.MalformedActionError{Err: err}
		}
		transcript.Append(automaton.Result{Err: malformedErr})

		if *malformed >= l.maxMalformed {
			return nil, fmt.Errorf("%d consecutive malformed actions: %w", *malformed, err)
		}
		return nil, nil
	}
	*malformed = 0

	switch a := action.(type) {
	case nil:
		// The model is thinking out loud; the next turn sees its message.
	case automaton.Finish:
		transcript.Append(a)
	case automaton.Invoke:
		transcript.Append(a)
		transcript.Append(toolchain.Dispatch(ctx, l.tools, runID, a, l.hooks))
	default:
		panic(fmt.Sprintf("chat: unknown action type %T", action))
	}
	return action, nil
}

// systemPrompt renders the system template, or returns "" when the loop has none.
func (l *Loop) systemPrompt() (string, error) {
	if l.systemTemplate == nil {
		return "", nil
	}

	var tools string
	if c, ok := l.tools.(toolCatalog); ok {
		tools = c.AvailableToolsPrompt()
	}
	return ExecuteTemplate(l.systemTemplate, SystemPromptData{
		Instructions: l.instructions,
		Tools:        tools,
		Format:       codec.Guidance(),
		Now:          l.clock.Now(),
	})
}
