package usecases

import (
	"context"

	"bubbleview/internal/content"
	"bubbleview/internal/domain"
	"bubbleview/internal/preview"
	"bubbleview/pkg/log"
)

// LinkMetadataFetcher looks up the title, snippet and images of a link.
type LinkMetadataFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*domain.LinkMetadata, error)
}

// ImageProber measures a remote image.
type ImageProber interface {
	Probe(ctx context.Context, rawURL string) (width, height int, err error)
}

// View is a bubble ready for display.
type View struct {
	Bubble     *domain.Bubble
	Grammar    content.Grammar
	Items      []content.RenderItem
	SelectedID string
	// Preview is nil when nothing valid is selected.
	Preview *preview.Descriptor
}

// ViewBubbleUseCase turns a stored bubble into render items and the
// preview of the selected attachment.
type ViewBubbleUseCase struct {
	bubbles    *GetBubbleUseCase
	dispatcher *preview.Dispatcher
	links      LinkMetadataFetcher
	images     ImageProber
}

// ViewOption configures a ViewBubbleUseCase.
type ViewOption func(*ViewBubbleUseCase)

// WithLinkMetadata enriches selected links that carry no metadata.
// Without it link previews show only what the bubble carries.
func WithLinkMetadata(f LinkMetadataFetcher) ViewOption {
	return func(uc *ViewBubbleUseCase) { uc.links = f }
}

// WithImageProber measures selected images whose size is unknown.
func WithImageProber(p ImageProber) ViewOption {
	return func(uc *ViewBubbleUseCase) { uc.images = p }
}

// NewViewBubbleUseCase creates a new ViewBubbleUseCase. A nil dispatcher
// uses the built-in host labels.
func NewViewBubbleUseCase(bubbles *GetBubbleUseCase, dispatcher *preview.Dispatcher, opts ...ViewOption) *ViewBubbleUseCase {
	if dispatcher == nil {
		dispatcher = preview.NewDispatcher(nil)
	}
	uc := &ViewBubbleUseCase{
		bubbles:    bubbles,
		dispatcher: dispatcher,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute fetches the bubble for slug and presents it with selectedID
// selected. An empty selectedID selects the first selectable attachment.
func (uc *ViewBubbleUseCase) Execute(ctx context.Context, slug, selectedID string) (*View, error) {
	bubble, err := uc.bubbles.Execute(ctx, slug)
	if err != nil {
		return nil, err
	}
	if selectedID == "" {
		if ids := bubble.SelectableIDs(); len(ids) > 0 {
			selectedID = ids[0]
		}
	}
	return uc.Present(ctx, bubble, selectedID, preview.DisplayState{Selected: true}), nil
}

// Present builds the view of an already fetched bubble. state is the
// display state of the selected attachment's preview.
func (uc *ViewBubbleUseCase) Present(ctx context.Context, bubble *domain.Bubble, selectedID string, state preview.DisplayState) *View {
	grammar, err := content.ParseGrammar(bubble.Grammar)
	if err != nil {
		log.GlobalWarnCtx(ctx, "unknown grammar, using id markers", "slug", bubble.Slug, "grammar", bubble.Grammar)
	}

	idx := content.NewIndex(bubble.Attachments)
	segments := content.Tokenize(bubble.ContentText, idx, grammar)
	items := content.Render(segments, selectedID)

	view := &View{
		Bubble:     bubble,
		Grammar:    grammar,
		Items:      items,
		SelectedID: selectedID,
	}

	selected, ok := idx.ByID(selectedID)
	if !ok || !selected.Interactive() {
		return view
	}
	kind := preview.ClassifyAttachment(selected)
	selected = uc.enrich(ctx, selected, kind)
	desc := uc.dispatcher.Choose(selected, kind, state)
	view.Preview = &desc
	return view
}

// enrich fills in link metadata and image sizes the bubble did not carry.
// It works on a copy; the cached bubble is never modified.
func (uc *ViewBubbleUseCase) enrich(ctx context.Context, a domain.Attachment, kind preview.MediaKind) domain.Attachment {
	switch {
	case kind == preview.Link && uc.links != nil && a.Link == nil && a.SourceURL != "":
		meta, err := uc.links.Fetch(ctx, a.SourceURL)
		if err != nil {
			log.GlobalWarnCtx(ctx, "link metadata unavailable", "url", a.SourceURL, "error", err)
			return a
		}
		a.Link = meta

	case kind == preview.Image && uc.images != nil && a.Width == nil && a.MediaURL() != "":
		w, h, err := uc.images.Probe(ctx, a.MediaURL())
		if err != nil {
			log.GlobalDebugCtx(ctx, "image size unavailable", "url", a.MediaURL(), "error", err)
			return a
		}
		a.Width, a.Height = &w, &h
	}
	return a
}
