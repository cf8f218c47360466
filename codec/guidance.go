package codec

import (
	"strings"

	"github.com/rickchristie/automaton"
)

// Default worked examples shown by [Guidance] when the caller supplies none.
var (
	defaultInvokeExample = automaton.Invoke{
		Name:      "search",
		Arguments: map[string]any{"query": "weather in Tokyo"},
	}
	defaultFinishExample = automaton.Finish{Result: "It is sunny in Tokyo."}
)

// Guidance returns instructions that teach a model the action format.
//
// The examples are rendered with [Encode], so the prompt always shows exactly the vocabulary
// [Decode] understands. With no examples a generic tool call and final answer are shown.
func Guidance(examples ...automaton.Action) string {
	if len(examples) == 0 {
		examples = []automaton.Action{defaultInvokeExample, defaultFinishExample}
	}

	var sb strings.Builder
	sb.WriteString("To use a tool, write exactly one action block:\n")
	sb.WriteString(OpenTag)
	sb.WriteString(`{"action": "tool_name", "action_input": {"param": "value"}}`)
	sb.WriteString(CloseTag)
	sb.WriteString("\n\nWhen you know the final answer, use the action name \"")
	sb.WriteString(FinalAnswer)
	sb.WriteString("\":\n")
	sb.WriteString(OpenTag)
	sb.WriteString(`{"action": "` + FinalAnswer + `", "action_input": "your answer"}`)
	sb.WriteString(CloseTag)
	sb.WriteString("\n\nYou may think out loud before the action block. ")
	sb.WriteString("Only the first action block in a response is used.\n\nExamples:\n")
	for _, ex := range examples {
		encoded, err := Encode(ex)
		if err != nil {
			continue
		}
		sb.WriteString(encoded)
		sb.WriteString("\n")
	}
	return sb.String()
}
