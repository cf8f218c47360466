package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rickchristie/automaton/agents/chat"
	"github.com/rickchristie/automaton/models"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration of the chat command. Command-line flags override it.
type Config struct {
	Provider      string `yaml:"provider"`
	Model         string `yaml:"model"`
	BaseURL       string `yaml:"base_url"`
	Instructions  string `yaml:"instructions"`
	MaxIterations int    `yaml:"max_iterations"`
	MaxMalformed  int    `yaml:"max_consecutive_malformed"`
	FailMalformed bool   `yaml:"fail_on_malformed"`
	LogLevel      string `yaml:"log_level"`
	LogPrompts    bool   `yaml:"log_prompts"`
	MetricsAddr   string `yaml:"metrics_addr"`
}

func defaultConfig() Config {
	return Config{
		Provider:      string(models.ProviderOpenAI),
		Model:         "gpt-4.1-mini",
		MaxIterations: chat.DefaultMaxIterations,
		MaxMalformed:  chat.DefaultMaxConsecutiveMalformed,
		LogLevel:      "info",
	}
}

// loadConfig reads path over the defaults. An empty path yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := decodeConfig(bytes.NewReader(data), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func decodeConfig(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// chatFlags holds the chat command's flag values. Only flags the user set override the config.
type chatFlags struct {
	provider      string
	model         string
	baseURL       string
	instructions  string
	maxIterations int
	metricsAddr   string
	showPrompts   bool
}

func (f *chatFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.provider, "provider", "", "model provider (openai, github)")
	fs.StringVar(&f.model, "model", "", "model name")
	fs.StringVar(&f.baseURL, "base-url", "", "override the provider endpoint")
	fs.StringVar(&f.instructions, "instructions", "", "task instructions added to the system prompt")
	fs.IntVar(&f.maxIterations, "max-iterations", 0, "iteration budget per question")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.BoolVar(&f.showPrompts, "show-prompts", false, "log every prompt sent to the model")
}

func (f *chatFlags) apply(fs *pflag.FlagSet, cfg *Config) {
	if fs.Changed("provider") {
		cfg.Provider = f.provider
	}
	if fs.Changed("model") {
		cfg.Model = f.model
	}
	if fs.Changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if fs.Changed("instructions") {
		cfg.Instructions = f.instructions
	}
	if fs.Changed("max-iterations") {
		cfg.MaxIterations = f.maxIterations
	}
	if fs.Changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
	if fs.Changed("show-prompts") {
		cfg.LogPrompts = f.showPrompts
	}
}

// token picks the API token for the configured provider from the environment.
func (c Config) token(getenv func(string) string) (string, error) {
	name := "OPENAI_API_KEY"
	if models.Provider(c.Provider) == models.ProviderGitHub {
		name = "GITHUB_TOKEN"
	}
	if v := getenv(name); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%s is not set", name)
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
