package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rickchristie/automaton"
	"github.com/rickchristie/automaton/codec"
	"github.com/spf13/cobra"
)

// decodedAction is the JSON shape printed by the decode command.
type decodedAction struct {
	Kind      string         `json:"kind"`
	Name      string         `json:"name,omitempty"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    any            `json:"result,omitempty"`
}

func decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode",
		Short: "Decode the action block of a model response read from stdin",
		Long: "Read a raw model response from stdin and print the action it carries as JSON.\n" +
			"Responses without an <action> block print {\"kind\":\"none\"}. Malformed blocks exit non-zero.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDecode(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runDecode(r io.Reader, w io.Writer) error {
	text, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	action, err := codec.Decode(string(text))
	if err != nil {
		return err
	}

	out := decodedAction{Kind: "none"}
	switch a := action.(type) {
	case nil:
	case automaton.Invoke:
		out = decodedAction{Kind: "invoke", Name: a.Name, Arguments: a.Arguments}
	case automaton.Finish:
		out = decodedAction{Kind: "finish", Result: a.Result}
	default:
		panic(fmt.Sprintf("unknown action type %T", action))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
