package main

import (
	"github.com/spf13/cobra"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

type globalFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	var globals globalFlags
	cmd := &cobra.Command{
		Use:   "automaton",
		Short: "Bounded tool-using agent loop for language models",
		Long: "automaton runs a language model in a bounded loop. Each turn the model either calls a\n" +
			"tool through an <action> block, finishes with a final answer, or keeps thinking.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&globals.configPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&globals.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(chatCmd(&globals))
	cmd.AddCommand(decodeCmd())
	return cmd
}
