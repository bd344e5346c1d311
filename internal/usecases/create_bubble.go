package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"bubbleview/internal/content"
	"bubbleview/internal/domain"
	"bubbleview/pkg/log"
)

// BubbleWriter persists a new bubble and returns its slug.
type BubbleWriter interface {
	Save(ctx context.Context, bubble *domain.Bubble) (string, error)
}

// Part is one piece of a bubble being composed: a text run or an
// attachment, in the order they were entered.
type Part struct {
	Text       string
	Attachment *domain.Attachment
}

// Created is the result of creating a bubble.
type Created struct {
	Slug     string
	ShareURL string
	Bubble   *domain.Bubble
}

// CreateBubbleUseCase composes and stores new bubbles.
type CreateBubbleUseCase struct {
	writer    BubbleWriter
	shareBase string
	now       func() time.Time
}

// NewCreateBubbleUseCase creates a new CreateBubbleUseCase. Share links are
// shareBase followed by the slug.
func NewCreateBubbleUseCase(writer BubbleWriter, shareBase string) *CreateBubbleUseCase {
	return &CreateBubbleUseCase{
		writer:    writer,
		shareBase: strings.TrimRight(shareBase, "/"),
		now:       time.Now,
	}
}

// Execute builds the bubble body from parts, stores it and returns its
// share link. Attachments without an id get a random one.
func (uc *CreateBubbleUseCase) Execute(ctx context.Context, parts []Part, createdBy string) (*Created, error) {
	var doc content.Document
	for _, p := range parts {
		if p.Attachment == nil {
			doc = doc.AppendText(p.Text)
			continue
		}
		a := *p.Attachment
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		doc = doc.Insert(a)
	}
	if doc.Empty() {
		return nil, domain.ErrEmptyBubble
	}

	raw, attachments := doc.Encode(content.GrammarIDTag)
	now := uc.now().UTC()
	bubble := &domain.Bubble{
		ContentText: raw,
		Grammar:     content.GrammarIDTag.String(),
		Attachments: attachments,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	slug, err := uc.writer.Save(ctx, bubble)
	if err != nil {
		return nil, err
	}
	bubble.Slug = slug

	log.GlobalInfoCtx(ctx, "bubble created", "slug", slug, "attachments", len(attachments))

	return &Created{
		Slug:     slug,
		ShareURL: uc.shareBase + "/" + slug,
		Bubble:   bubble,
	}, nil
}
