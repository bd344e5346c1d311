package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"bubbleview/internal/adapters/store"
	"bubbleview/internal/content"
	"bubbleview/internal/domain"
	"bubbleview/internal/preview"
	"bubbleview/internal/usecases"
)

// bubbleFile is the JSON layout render reads with --file.
type bubbleFile struct {
	Content     string           `json:"content"`
	Grammar     content.Grammar  `json:"grammar"`
	CreatedBy   string           `json:"createdBy"`
	Attachments []attachmentFile `json:"attachments"`
}

type attachmentFile struct {
	ID          string               `json:"id"`
	Kind        string               `json:"kind"`
	Name        string               `json:"name"`
	MimeType    string               `json:"mimeType"`
	Size        *int64               `json:"size"`
	StartTime   *float64             `json:"startTime"`
	URL         string               `json:"url"`
	DownloadURL string               `json:"downloadUrl"`
	Link        *domain.LinkMetadata `json:"link"`
}

func (f bubbleFile) toDomain() (*domain.Bubble, error) {
	b := &domain.Bubble{
		Slug:        "local",
		ContentText: f.Content,
		Grammar:     f.Grammar.String(),
		CreatedBy:   f.CreatedBy,
	}
	for _, a := range f.Attachments {
		kind := domain.KindFile
		if a.Kind != "" {
			k, err := domain.ParseAttachmentKind(a.Kind)
			if err != nil {
				return nil, fmt.Errorf("attachment %q: %w", a.ID, err)
			}
			kind = k
		}
		att := domain.Attachment{
			ID:          a.ID,
			Kind:        kind,
			Name:        a.Name,
			MimeType:    a.MimeType,
			SizeBytes:   a.Size,
			StartTime:   a.StartTime,
			SourceURL:   a.URL,
			DownloadURL: a.DownloadURL,
			Link:        a.Link,
		}
		if kind != domain.KindLink && att.DownloadURL == "" {
			att.DownloadURL = a.URL
		}
		b.Attachments = append(b.Attachments, att)
	}
	return b, nil
}

func newRenderCmd() *cobra.Command {
	var (
		file      string
		storePath string
		selected  string
		showJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "render [SLUG]",
		Short: "Render bubble content as the viewer would",
		Long: `Render bubble content into text, buttons and badges, and describe the
preview of the selected attachment.

Example usage:
  bubblectl render --file bubble.json
  bubblectl render --file - --selected att-2 < bubble.json
  bubblectl render --store data/bubbles 3f2c9a`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bubble, err := loadBubble(cmd, file, storePath, args)
			if err != nil {
				return err
			}
			if selected == "" {
				if ids := bubble.SelectableIDs(); len(ids) > 0 {
					selected = ids[0]
				}
			}

			view := usecases.NewViewBubbleUseCase(nil, nil).
				Present(contextOf(cmd), bubble, selected, preview.DisplayState{Selected: true})

			if showJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view.Preview)
			}
			return printView(cmd.OutOrStdout(), view)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "bubble JSON file, or - for stdin")
	cmd.Flags().StringVar(&storePath, "store", "", "Pebble store directory to read SLUG from")
	cmd.Flags().StringVar(&selected, "selected", "", "attachment id to select (default: first selectable)")
	cmd.Flags().BoolVar(&showJSON, "json", false, "print only the preview descriptor as JSON")
	return cmd
}

func loadBubble(cmd *cobra.Command, file, storePath string, args []string) (*domain.Bubble, error) {
	switch {
	case file != "":
		var r io.Reader = cmd.InOrStdin()
		if file != "-" {
			f, err := os.Open(file)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			r = f
		}
		var bf bubbleFile
		if err := json.NewDecoder(r).Decode(&bf); err != nil {
			return nil, fmt.Errorf("decode %s: %w", file, err)
		}
		return bf.toDomain()

	case storePath != "":
		if len(args) != 1 {
			return nil, errors.New("--store needs a SLUG argument")
		}
		st, err := store.Open(storePath)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		return st.Fetch(contextOf(cmd), args[0])

	default:
		return nil, errors.New("one of --file or --store is required")
	}
}

func printView(w io.Writer, view *usecases.View) error {
	for _, item := range view.Items {
		var err error
		switch item.Kind {
		case content.ItemText:
			_, err = fmt.Fprintf(w, "text    %s\n", item.Text)
		case content.ItemButton:
			marker := ""
			if item.Active {
				marker = " *"
			}
			_, err = fmt.Fprintf(w, "button  %s %s [%s]%s\n", item.Icon, item.Label, item.Media, marker)
		case content.ItemBadge:
			_, err = fmt.Fprintf(w, "badge   %s\n", item.Label)
		}
		if err != nil {
			return err
		}
	}
	if p := view.Preview; p != nil {
		_, err := fmt.Fprintf(w, "preview %s %s\n", p.Strategy, p.ActionLabel)
		return err
	}
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
