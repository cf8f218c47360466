package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rickchristie/automaton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand(t *testing.T) {
	type expected struct {
		output map[string]any
		errIs  error
	}

	tests := []struct {
		name     string
		input    string
		expected expected
	}{
		{
			name: "invoke",
			input: "I should check the time.\n<action>\n" +
				`{"action": "clock", "action_input": {"timezone": "UTC"}}` + "\n</action>",
			expected: expected{output: map[string]any{
				"kind":      "invoke",
				"name":      "clock",
				"arguments": map[string]any{"timezone": "UTC"},
			}},
		},
		{
			name:  "final answer",
			input: `<action>{'action': 'Final Answer', 'action_input': '42'}</action>`,
			expected: expected{output: map[string]any{
				"kind":   "finish",
				"result": "42",
			}},
		},
		{
			name:     "no action",
			input:    "Let me think about this.",
			expected: expected{output: map[string]any{"kind": "none"}},
		},
		{
			name:     "malformed",
			input:    "<action>{not json</action>",
			expected: expected{errIs: automaton.ErrMalformedAction},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := rootCmd()
			var out bytes.Buffer
			cmd.SetIn(strings.NewReader(tc.input))
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs([]string{"decode"})

			err := cmd.Execute()
			if tc.expected.errIs != nil {
				assert.ErrorIs(t, err, tc.expected.errIs)
				return
			}
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal(out.Bytes(), &got))
			assert.Equal(t, tc.expected.output, got)
		})
	}
}
