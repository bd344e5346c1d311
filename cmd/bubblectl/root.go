package main

import (
	"github.com/spf13/cobra"

	"bubbleview/pkg/log"
	"bubbleview/pkg/log/transporters"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var logger *log.Logger
	root := &cobra.Command{
		Use:   "bubblectl",
		Short: "Inspect and maintain bubbles",
		Long: `bubblectl classifies attachment names, renders bubble content the way
the viewer does, and migrates stored bubbles between marker grammars.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				logger = log.New(log.Debug, transporters.NewStdoutWithWriter(cmd.ErrOrStderr()))
				log.SetDefault(logger)
			}
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if logger != nil {
				logger.Close()
			}
		},
	}

	// Disable completion command
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().BoolP("verbose", "v", false, "log to stderr")

	root.AddCommand(newClassifyCmd(), newRenderCmd(), newMigrateCmd())
	return root
}
