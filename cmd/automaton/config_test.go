package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	type expected struct {
		cfg Config
		err string
	}

	tests := []struct {
		name     string
		input    string
		expected expected
	}{
		{
			name:     "empty file keeps defaults",
			input:    "",
			expected: expected{cfg: defaultConfig()},
		},
		{
			name: "overrides",
			input: "provider: github\n" +
				"model: openai/gpt-4.1\n" +
				"max_iterations: 4\n" +
				"log_prompts: true\n",
			expected: expected{cfg: func() Config {
				c := defaultConfig()
				c.Provider = "github"
				c.Model = "openai/gpt-4.1"
				c.MaxIterations = 4
				c.LogPrompts = true
				return c
			}()},
		},
		{
			name:     "unknown field",
			input:    "max_iteration: 4\n",
			expected: expected{err: "max_iteration"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "automaton.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.input), 0o600))

			cfg, err := loadConfig(path)
			if tc.expected.err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expected.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected.cfg, cfg)
		})
	}
}

func TestLoadConfig_NoPath(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestChatFlags_OnlyChangedFlagsOverride(t *testing.T) {
	var flags chatFlags
	fs := pflag.NewFlagSet("chat", pflag.ContinueOnError)
	flags.register(fs)
	require.NoError(t, fs.Parse([]string{"--model", "gpt-4o", "--max-iterations", "2"}))

	cfg := defaultConfig()
	cfg.BaseURL = "http://localhost:8080/v1"
	flags.apply(fs, &cfg)

	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 2, cfg.MaxIterations)
	assert.Equal(t, "http://localhost:8080/v1", cfg.BaseURL)
	assert.Equal(t, "openai", cfg.Provider)
}

func TestConfig_Token(t *testing.T) {
	env := map[string]string{"OPENAI_API_KEY": "sk-test", "GITHUB_TOKEN": "ghp-test"}
	getenv := func(k string) string { return env[k] }

	token, err := Config{Provider: "openai"}.token(getenv)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", token)

	token, err = Config{Provider: "github"}.token(getenv)
	require.NoError(t, err)
	assert.Equal(t, "ghp-test", token)

	_, err = Config{Provider: "github"}.token(func(string) string { return "" })
	assert.EqualError(t, err, "GITHUB_TOKEN is not set")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
		err      bool
	}{
		{input: "", expected: slog.LevelInfo},
		{input: "debug", expected: slog.LevelDebug},
		{input: "WARN", expected: slog.LevelWarn},
		{input: "error", expected: slog.LevelError},
		{input: "loud", err: true},
	}

	for _, tc := range tests {
		t.Run(strings.ToLower(tc.input), func(t *testing.T) {
			level, err := parseLogLevel(tc.input)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, level)
		})
	}
}
