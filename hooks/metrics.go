package hooks

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rickchristie/automaton"
)

// Metrics records run activity as prometheus metrics.
//
//	automaton_runs_total{state}
//	automaton_iterations_total
//	automaton_model_call_duration_seconds
//	automaton_tool_calls_total{tool,status}
//	automaton_tool_call_duration_seconds{tool}
type Metrics struct {
	runs          *prometheus.CounterVec
	iterations    prometheus.Counter
	modelDuration prometheus.Histogram
	toolCalls     *prometheus.CounterVec
	toolDuration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// Returns an error if any collector is already registered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "automaton_runs_total",
			Help: "Agent runs by final state.",
		}, []string{"state"}),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "automaton_iterations_total",
			Help: "Loop iterations across all runs.",
		}),
		modelDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "automaton_model_call_duration_seconds",
			Help:    "Latency of language model invocations.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "automaton_tool_calls_total",
			Help: "Tool calls by tool and outcome.",
		}, []string{"tool", "status"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "automaton_tool_call_duration_seconds",
			Help: "Latency of tool calls.",
		}, []string{"tool"}),
	}
	for _, c := range []prometheus.Collector{
		m.runs, m.iterations, m.modelDuration, m.toolCalls, m.toolDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) OnAfterRun(_ context.Context, e automaton.AfterRunEvent) {
	state := string(e.State)
	if e.Err != nil {
		state = "error"
	}
	m.runs.WithLabelValues(state).Inc()
}

func (m *Metrics) OnAfterIteration(_ context.Context, _ automaton.AfterIterationEvent) {
	m.iterations.Inc()
}

func (m *Metrics) OnAfterModelCall(_ context.Context, e automaton.AfterModelCallEvent) {
	m.modelDuration.Observe(e.Duration.Seconds())
}

func (m *Metrics) OnAfterToolCall(_ context.Context, e automaton.AfterToolCallEvent) {
	status := "ok"
	if e.Err != nil {
		status = "error"
	}
	m.toolCalls.WithLabelValues(e.ToolName, status).Inc()
	m.toolDuration.WithLabelValues(e.ToolName).Observe(e.Duration.Seconds())
}

var (
	_ automaton.AfterRunHook       = (*Metrics)(nil)
	_ automaton.AfterIterationHook = (*Metrics)(nil)
	_ automaton.AfterModelCallHook = (*Metrics)(nil)
	_ automaton.AfterToolCallHook  = (*Metrics)(nil)
)
