package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"bubbleview/internal/adapters/store"
	"bubbleview/internal/content"
	"bubbleview/internal/domain"
	"bubbleview/pkg/log"
)

func newMigrateCmd() *cobra.Command {
	var (
		storePath string
		fromName  string
		toName    string
		dryRun    bool
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Re-encode stored bubbles from one marker grammar to another",
		Long: `Re-encode every stored bubble whose content uses the --from grammar into
the --to grammar. Grammars are id, sequential and delimiter.

Example usage:
  bubblectl migrate --store data/bubbles --from sequential --to id
  bubblectl migrate --store data/bubbles --from delimiter --to id --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := content.ParseGrammar(fromName)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			to, err := content.ParseGrammar(toName)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			st, err := store.Open(storePath)
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := migrateStore(contextOf(cmd), st, from, to, dryRun, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			verb := "migrated"
			if dryRun {
				verb = "would migrate"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d bubble(s) from %s to %s\n", verb, n, from, to)
			return nil
		},
	}
	cmd.Flags().StringVar(&storePath, "store", "", "Pebble store directory (required)")
	cmd.Flags().StringVar(&fromName, "from", content.GrammarSequential.String(), "grammar to migrate from")
	cmd.Flags().StringVar(&toName, "to", content.GrammarIDTag.String(), "grammar to migrate to")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	_ = cmd.MarkFlagRequired("store")
	return cmd
}

// migrateStore re-encodes the bubbles stored in from into to and returns
// how many matched. Each migrated slug is printed to out.
func migrateStore(ctx context.Context, st *store.PebbleStore, from, to content.Grammar, dryRun bool, out io.Writer) (int, error) {
	if from == to {
		return 0, nil
	}

	var pending []*domain.Bubble
	err := st.Each(ctx, func(b *domain.Bubble) error {
		g, err := content.ParseGrammar(b.Grammar)
		if err != nil || g != from {
			return nil
		}
		pending = append(pending, b)
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, b := range pending {
		b.ContentText, b.Attachments = content.Migrate(b.ContentText, b.Attachments, from, to)
		b.Grammar = to.String()
		b.UpdatedAt = time.Now().UTC()
		fmt.Fprintf(out, "%s\t%d attachment(s)\n", b.Slug, len(b.Attachments))
		if dryRun {
			continue
		}
		if _, err := st.Save(ctx, b); err != nil {
			return 0, fmt.Errorf("save %s: %w", b.Slug, err)
		}
		log.GlobalDebugCtx(ctx, "bubble migrated", "slug", b.Slug, "from", from.String(), "to", to.String())
	}
	return len(pending), nil
}
