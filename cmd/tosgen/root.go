package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-tos/internal/platform/config"
	"github.com/p-n-ai/pai-tos/internal/platform/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tosgen",
		Short:        "Table of Specifications and quiz generator",
		Long:         "tosgen builds a Table of Specifications, quiz and answer key from selected MELCs and writes them to an Excel workbook.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			level := "warn"
			if verbose {
				level = "debug"
			}
			slog.SetDefault(logging.New(config.LogConfig{Level: level, Format: "text"}, cmd.ErrOrStderr()))
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Log progress to stderr")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newCompetenciesCmd())
	root.AddCommand(newSeedCmd())
	return root
}

// loadConfig reads TOS_ environment configuration for a subcommand.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
