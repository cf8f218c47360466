package toolchain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rickchristie/automaton"
	"github.com/rickchristie/automaton/hooks"
	"github.com/rickchristie/automaton/internal/tt"
	"github.com/rickchristie/automaton/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func searchSchema() map[string]any {
	return schema.Object(schema.Props{
		"query": schema.String("Search query"),
		"limit": schema.Integer("Maximum results").Min(1).Max(10),
	}, "query")
}

func TestRegistry_Register(t *testing.T) {
	type input struct {
		tools []automaton.Tool
	}

	type expected struct {
		errContains string
		names       []string
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name: "registration order is kept",
			input: input{tools: []automaton.Tool{
				tt.NewMockTool("search", nil),
				tt.NewMockTool("calculator", nil),
				tt.NewMockTool("clock", nil),
			}},
			expected: expected{names: []string{"search", "calculator", "clock"}},
		},
		{
			name:     "nil tool",
			input:    input{tools: []automaton.Tool{nil}},
			expected: expected{errContains: "nil tool", names: []string{}},
		},
		{
			name:     "empty name",
			input:    input{tools: []automaton.Tool{tt.NewMockTool("", nil)}},
			expected: expected{errContains: "empty name", names: []string{}},
		},
		{
			name: "duplicate name",
			input: input{tools: []automaton.Tool{
				tt.NewMockTool("search", nil),
				tt.NewMockTool("search", nil),
			}},
			expected: expected{errContains: `tool "search" already registered`, names: []string{"search"}},
		},
		{
			name: "invalid schema",
			input: input{tools: []automaton.Tool{
				tt.NewMockTool("broken", nil).WithSchema(map[string]any{"type": 12}),
			}},
			expected: expected{errContains: `tool "broken"`, names: []string{}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRegistry()

			var err error
			for _, tool := range tc.input.tools {
				if err = r.Register(tool); err != nil {
					break
				}
			}

			if tc.expected.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expected.errContains)
			} else {
				require.NoError(t, err)
			}

			names := make([]string, 0)
			for _, tool := range r.Tools() {
				names = append(names, tool.Name())
			}
			assert.Equal(t, tc.expected.names, names)
		})
	}
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry().MustRegister(tt.NewMockTool("a", nil), tt.NewMockTool("a", nil))
	})
}

func TestRegistry_Resolve(t *testing.T) {
	search := tt.NewMockTool("search", nil)
	r := NewRegistry().MustRegister(search)

	tool, err := r.Resolve("search")
	require.NoError(t, err)
	assert.Same(t, search, tool)

	tool, err = r.Resolve("translate")
	assert.Nil(t, tool)
	assert.ErrorIs(t, err, automaton.ErrToolNotFound)
	assert.Equal(t, "tool not found: translate", err.Error())
}

func TestRegistry_Validate(t *testing.T) {
	r := NewRegistry().MustRegister(
		tt.NewMockTool("search", nil).WithSchema(searchSchema()),
		tt.NewMockTool("free", nil),
	)

	assert.NoError(t, r.Validate("search", map[string]any{"query": "go", "limit": 3.0}))
	assert.NoError(t, r.Validate("free", map[string]any{"anything": true}))

	err := r.Validate("search", map[string]any{"limit": 50.0})
	assert.ErrorIs(t, err, automaton.ErrInvalidToolArgs)
	var vErr *schema.ValidationError
	assert.True(t, errors.As(err, &vErr), "expected *schema.ValidationError, got %T", err)
}

func TestRegistry_AvailableToolsPrompt(t *testing.T) {
	assert.Equal(t, "", NewRegistry().AvailableToolsPrompt())

	r := NewRegistry().MustRegister(
		tt.NewMockTool("search", nil).WithSchema(searchSchema()),
		tt.NewMockTool("ping", nil),
	)
	prompt := r.AvailableToolsPrompt()

	require.True(t, strings.HasPrefix(prompt, "Available tools:\n"))

	var catalog []struct {
		Name        string         `yaml:"name"`
		Description string         `yaml:"description"`
		Parameters  map[string]any `yaml:"parameters"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(strings.TrimPrefix(prompt, "Available tools:\n")), &catalog))
	require.Len(t, catalog, 2)

	assert.Equal(t, "search", catalog[0].Name)
	assert.Equal(t, "mock tool search", catalog[0].Description)
	assert.Equal(t, "object", catalog[0].Parameters["type"])
	assert.Equal(t, []any{"query"}, catalog[0].Parameters["required"])
	props, ok := catalog[0].Parameters["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "query")
	assert.Contains(t, props, "limit")

	assert.Equal(t, "ping", catalog[1].Name)
	assert.Nil(t, catalog[1].Parameters)
}

// ----------------------------------------------------------------------------
// Dispatch
// ----------------------------------------------------------------------------

// mapRegistry is a ToolRegistry without schema validation.
type mapRegistry map[string]automaton.Tool

func (m mapRegistry) Resolve(name string) (automaton.Tool, error) {
	if tool, ok := m[name]; ok {
		return tool, nil
	}
	return nil, errors.New("no such tool")
}

func TestRegistry_Dispatch(t *testing.T) {
	errUpstream := errors.New("upstream unavailable")

	type input struct {
		invoke automaton.Invoke
	}

	type expected struct {
		value    any
		errIs    []error
		errMsg   string
		calls    int
		toolName string
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "success",
			input:    input{invoke: automaton.Invoke{Name: "search", Arguments: map[string]any{"query": "go"}}},
			expected: expected{value: "3 results for go", calls: 1, toolName: "search"},
		},
		{
			name:  "unknown tool",
			input: input{invoke: automaton.Invoke{Name: "translate", Arguments: map[string]any{}}},
			expected: expected{
				errIs:    []error{automaton.ErrToolNotFound},
				errMsg:   "tool not found: translate",
				toolName: "translate",
			},
		},
		{
			name:  "schema violation",
			input: input{invoke: automaton.Invoke{Name: "search", Arguments: map[string]any{"limit": 2.0}}},
			expected: expected{
				errIs:    []error{automaton.ErrInvalidToolArgs},
				toolName: "search",
			},
		},
		{
			name:  "nil arguments validate as empty mapping",
			input: input{invoke: automaton.Invoke{Name: "search"}},
			expected: expected{
				errIs:    []error{automaton.ErrInvalidToolArgs},
				toolName: "search",
			},
		},
		{
			name:  "tool error",
			input: input{invoke: automaton.Invoke{Name: "flaky", Arguments: map[string]any{}}},
			expected: expected{
				errIs:    []error{automaton.ErrToolExecution, errUpstream},
				errMsg:   "tool execution failed: flaky: upstream unavailable",
				calls:    1,
				toolName: "flaky",
			},
		},
		{
			name:  "tool panic",
			input: input{invoke: automaton.Invoke{Name: "explode", Arguments: map[string]any{}}},
			expected: expected{
				errIs:    []error{automaton.ErrToolExecution},
				errMsg:   "tool execution failed: explode: panic: kaboom",
				calls:    1,
				toolName: "explode",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			search := tt.NewMockTool("search", func(args map[string]any) (any, error) {
				return "3 results for " + args["query"].(string), nil
			}).WithSchema(searchSchema())
			flaky := tt.NewMockTool("flaky", func(map[string]any) (any, error) {
				return "partial", errUpstream
			})
			explode := tt.NewMockTool("explode", func(map[string]any) (any, error) {
				panic("kaboom")
			})
			r := NewRegistry().MustRegister(search, flaky, explode)
			recorder := &tt.HookRecorder{}

			result := r.Dispatch(context.Background(), "run-1", tc.input.invoke,
				hooks.NewRegistry().Register(recorder))

			require.NotNil(t, result.Source)
			assert.Equal(t, tc.input.invoke.Name, result.Source.Name)
			assert.Equal(t, tc.expected.calls, search.CallCount()+flaky.CallCount()+explode.CallCount())

			if len(tc.expected.errIs) > 0 {
				require.True(t, result.IsError())
				for _, target := range tc.expected.errIs {
					assert.ErrorIs(t, result.Err, target)
				}
				if tc.expected.errMsg != "" {
					assert.Equal(t, tc.expected.errMsg, result.Err.Error())
				}
				assert.Nil(t, result.Value)
			} else {
				require.NoError(t, result.Err)
				assert.Equal(t, tc.expected.value, result.Value)
			}

			assert.Equal(t, []string{
				"BeforeToolCall:" + tc.expected.toolName,
				"AfterToolCall:" + tc.expected.toolName,
			}, recorder.Events)
			require.Len(t, recorder.ToolCalls, 1)
			assert.Equal(t, "run-1", recorder.ToolCalls[0].RunID)
			assert.Equal(t, result.Err, recorder.ToolCalls[0].Err)
		})
	}
}

func TestDispatch_NilHooks(t *testing.T) {
	r := NewRegistry().MustRegister(tt.NewMockTool("ping", func(map[string]any) (any, error) {
		return "pong", nil
	}))

	result := r.Dispatch(context.Background(), "run-1", automaton.Invoke{Name: "ping"}, nil)

	require.NoError(t, result.Err)
	assert.Equal(t, "pong", result.Value)
}

func TestDispatch_PlainRegistry(t *testing.T) {
	echo := tt.NewMockTool("echo", func(args map[string]any) (any, error) {
		return args, nil
	}).WithSchema(map[string]any{"type": "object", "required": []any{"text"}})
	registry := mapRegistry{"echo": echo}

	// Without a Validate method the schema is not enforced.
	result := Dispatch(context.Background(), registry, "run-1", automaton.Invoke{Name: "echo"}, nil)
	require.NoError(t, result.Err)
	assert.Equal(t, map[string]any{}, result.Value)

	// Resolve errors that do not wrap ErrToolNotFound are wrapped.
	result = Dispatch(context.Background(), registry, "run-1", automaton.Invoke{Name: "nope"}, nil)
	assert.ErrorIs(t, result.Err, automaton.ErrToolNotFound)
	assert.Contains(t, result.Err.Error(), "no such tool")
}

type argRewriter struct {
	args map[string]any
}

func (h argRewriter) OnBeforeToolCall(_ context.Context, e *automaton.BeforeToolCallEvent) {
	e.Arguments = h.args
}

func TestDispatch_HookRewritesArguments(t *testing.T) {
	type input struct {
		rewrite map[string]any
	}

	type expected struct {
		hasErr bool
		args   map[string]any
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "rewritten arguments reach the tool",
			input:    input{rewrite: map[string]any{"query": "rewritten"}},
			expected: expected{args: map[string]any{"query": "rewritten"}},
		},
		{
			name:     "rewritten arguments are validated",
			input:    input{rewrite: map[string]any{"limit": 100.0}},
			expected: expected{hasErr: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			search := tt.NewMockTool("search", nil).WithSchema(searchSchema())
			r := NewRegistry().MustRegister(search)
			registry := hooks.NewRegistry().Register(argRewriter{args: tc.input.rewrite})

			result := r.Dispatch(context.Background(), "run-1", automaton.Invoke{
				Name:      "search",
				Arguments: map[string]any{"query": "original"},
			}, registry)

			if tc.expected.hasErr {
				assert.ErrorIs(t, result.Err, automaton.ErrInvalidToolArgs)
				assert.Equal(t, 0, search.CallCount())
				return
			}
			require.NoError(t, result.Err)
			require.Equal(t, 1, search.CallCount())
			assert.Equal(t, tc.expected.args, search.Calls[0])
			assert.Equal(t, map[string]any{"query": "original"}, result.Source.Arguments)
		})
	}
}
