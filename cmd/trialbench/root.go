package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trialbench",
		Short: "trialbench - virtual clinical trial workbench",
		Long: `trialbench runs virtual clinical trials over observational data.

It hosts the research workbench server, runs the agent pipeline for a single
question from the terminal, and inspects the deterministic synthetic trial
data used by the patient explorer.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newAskCommand())
	cmd.AddCommand(newSynthCommand())
	cmd.AddCommand(newExamplesCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
