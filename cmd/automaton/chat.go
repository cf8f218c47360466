package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rickchristie/automaton"
	"github.com/rickchristie/automaton/agents/chat"
	"github.com/rickchristie/automaton/hooks"
	"github.com/rickchristie/automaton/models"
	"github.com/rickchristie/automaton/toolchain"
	"github.com/spf13/cobra"
)

func chatCmd(globals *globalFlags) *cobra.Command {
	var flags chatFlags
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with a tool-using agent",
		Long: "Start an interactive session. Each line you type is appended to one transcript and the\n" +
			"agent runs until it gives a final answer or spends its iteration budget.\n\n" +
			"Commands: /reset clears the transcript, /quit exits.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(globals.configPath)
			if err != nil {
				return err
			}
			flags.apply(cmd.Flags(), &cfg)
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = globals.logLevel
			}
			return runChat(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func runChat(parent context.Context, cfg Config, w io.Writer) error {
	level, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	token, err := cfg.token(os.Getenv)
	if err != nil {
		return err
	}
	model, err := models.NewOpenAI(models.OpenAIConfig{
		Provider: models.Provider(cfg.Provider),
		Model:    cfg.Model,
		Token:    token,
		BaseURL:  cfg.BaseURL,
	})
	if err != nil {
		return err
	}
	model.WithUsageHandler(func(ctx context.Context, u models.Usage) {
		logger.DebugContext(ctx, "model usage", "model", u.Model, "tokens", u.String(), "duration", u.Duration)
	})

	tools := toolchain.NewRegistry().MustRegister(
		toolchain.NewClockTool(nil),
		toolchain.NewCalculatorTool(),
	)

	registry := hooks.NewRegistry().
		Register(hooks.NewLogging(logger).WithPrompts(cfg.LogPrompts)).
		Register(&observationPrinter{w: w})

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	if cfg.MetricsAddr != "" {
		promReg := prometheus.NewRegistry()
		metrics, err := hooks.NewMetrics(promReg)
		if err != nil {
			return err
		}
		registry.Register(metrics)
		stop := serveMetrics(cfg.MetricsAddr, promReg, logger)
		defer stop()
	}

	loop := chat.NewLoop(model, tools).
		WithHooks(registry).
		WithLogger(logger).
		WithInstructions(cfg.Instructions).
		WithMaxIterations(cfg.MaxIterations).
		WithMaxConsecutiveMalformed(cfg.MaxMalformed)
	if cfg.FailMalformed {
		loop.WithMalformedPolicy(chat.MalformedFail)
	}

	rl, err := readline.New(colorCyan + "you> " + colorReset)
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(w, "%sautomaton%s chatting with %s (%s). /reset clears history, /quit exits.\n",
		colorGreen, colorReset, cfg.Model, cfg.Provider)

	transcript := automaton.NewTranscript()
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			transcript = automaton.NewTranscript()
			fmt.Fprintf(w, "%stranscript cleared%s\n", colorDim, colorReset)
			continue
		}

		transcript.Append(automaton.NewMessage(automaton.RoleHuman, line))
		if err := ask(ctx, loop, transcript, w); err != nil {
			return err
		}
	}
}

// ask runs the loop for one question. Ctrl+C cancels the run without leaving the session.
func ask(parent context.Context, loop *chat.Loop, transcript *automaton.Transcript, w io.Writer) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	result, err := loop.Run(ctx, transcript)
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(w, "%scancelled%s\n", colorYellow, colorReset)
		return nil
	case err != nil:
		fmt.Fprintf(w, "%srun failed: %v%s\n", colorRed, err, colorReset)
		return nil
	}

	if answer, ok := transcript.FinalResult(); ok && result.State == automaton.StateFinished {
		fmt.Fprintf(w, "%sagent>%s %s\n", colorGreen, colorReset, automaton.FormatValue(answer))
		return nil
	}
	fmt.Fprintf(w, "%sno final answer after %d iterations (%s)%s\n",
		colorYellow, result.Iterations, result.State, colorReset)
	return nil
}

// observationPrinter echoes tool calls as they complete.
type observationPrinter struct {
	w io.Writer
}

func (p *observationPrinter) OnAfterToolCall(_ context.Context, e automaton.AfterToolCallEvent) {
	if e.Err != nil {
		fmt.Fprintf(p.w, "%s  %s failed: %v%s\n", colorDim, e.ToolName, e.Err, colorReset)
		return
	}
	fmt.Fprintf(p.w, "%s  %s -> %s%s\n", colorDim, e.ToolName, automaton.FormatValue(e.Output), colorReset)
}

// serveMetrics exposes reg over HTTP until the returned stop function is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
