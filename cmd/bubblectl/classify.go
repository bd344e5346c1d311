package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bubbleview/internal/preview"
)

func newClassifyCmd() *cobra.Command {
	var hint string
	cmd := &cobra.Command{
		Use:   "classify NAME...",
		Short: "Print the preview strategy for file names",
		Long: `Print the preview strategy each file name would get.

Example usage:
  bubblectl classify report.pdf song.MP3 archive
  bubblectl classify --hint image/png upload`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range args {
				kind := preview.Classify(name, hint)
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, kind, kind.Icon())
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&hint, "hint", "", "attachment kind or MIME type used when the name has no extension")
	return cmd
}
