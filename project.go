package automaton

import (
	"encoding/json"
	"fmt"
)

// ObservationPrefix starts every message projected from a [Result].
const ObservationPrefix = "Observation: "

// Project maps a transcript to the messages actually shown to the model.
//
//   - [Message] entries pass through unchanged.
//   - [Result] entries become a system message "Observation: <result>".
//   - [Invoke] and [Finish] entries are dropped. The model sees its own prior text as a Message
//     and the outcome of running it as an observation instead.
//
// Project is pure: it never reorders entries and projecting the same transcript twice yields
// equal slices.
func Project(t *Transcript) []Message {
	messages := make([]Message, 0, t.Len())
	for _, e := range t.Entries() {
		switch e := e.(type) {
		case Message:
			messages = append(messages, e)
		case Result:
			messages = append(messages, Message{
				Role:    RoleSystem,
				Content: ObservationPrefix + FormatResult(e),
			})
		case Invoke, Finish:
			// bookkeeping only
		default:
			panic(fmt.Sprintf("automaton: unknown transcript entry %T", e))
		}
	}
	return messages
}

// FormatResult renders a result the way it appears after the observation prefix.
func FormatResult(r Result) string {
	if r.Err != nil {
		return "Error: " + r.Err.Error()
	}
	return FormatValue(r.Value)
}

// FormatValue renders an arbitrary tool value as text for the model.
// Strings are used verbatim, scalars via %v, and composite values as compact JSON.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprintf("%v", v)
	case error:
		return v.Error()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
