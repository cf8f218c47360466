package hooks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rickchristie/automaton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	ctx := context.Background()
	m.OnAfterIteration(ctx, automaton.AfterIterationEvent{Iteration: 1})
	m.OnAfterIteration(ctx, automaton.AfterIterationEvent{Iteration: 2})
	m.OnAfterModelCall(ctx, automaton.AfterModelCallEvent{Duration: 300 * time.Millisecond})
	m.OnAfterToolCall(ctx, automaton.AfterToolCallEvent{ToolName: "search", Duration: time.Millisecond})
	m.OnAfterToolCall(ctx, automaton.AfterToolCallEvent{ToolName: "search", Err: automaton.ErrToolExecution})
	m.OnAfterToolCall(ctx, automaton.AfterToolCallEvent{ToolName: "clock"})
	m.OnAfterRun(ctx, automaton.AfterRunEvent{State: automaton.StateFinished})
	m.OnAfterRun(ctx, automaton.AfterRunEvent{State: automaton.StateExhausted})
	m.OnAfterRun(ctx, automaton.AfterRunEvent{State: automaton.StateRunning, Err: errors.New("boom")})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.iterations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("finished")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("exhausted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("search", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("search", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("clock", "ok")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.modelDuration))
	assert.Equal(t, 2, testutil.CollectAndCount(m.toolDuration))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"automaton_runs_total",
		"automaton_iterations_total",
		"automaton_model_call_duration_seconds",
		"automaton_tool_calls_total",
		"automaton_tool_call_duration_seconds",
	}, names)
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}
