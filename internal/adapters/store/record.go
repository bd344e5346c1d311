package store

import (
	"time"

	"bubbleview/internal/domain"
)

// record is the stored JSON layout of a bubble.
type record struct {
	Slug        string             `json:"slug"`
	ContentText string             `json:"contentText"`
	Grammar     string             `json:"grammar,omitempty"`
	Attachments []attachmentRecord `json:"attachments"`
	CreatedBy   string             `json:"createdBy,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type attachmentRecord struct {
	ID          string                `json:"id"`
	Kind        domain.AttachmentKind `json:"kind"`
	Name        string                `json:"name,omitempty"`
	MimeType    string                `json:"mimeType,omitempty"`
	SizeBytes   *int64                `json:"sizeBytes,omitempty"`
	Width       *int                  `json:"width,omitempty"`
	Height      *int                  `json:"height,omitempty"`
	StartTime   *float64              `json:"startTime,omitempty"`
	SourceURL   string                `json:"sourceUrl,omitempty"`
	DownloadURL string                `json:"downloadUrl,omitempty"`
	Link        *domain.LinkMetadata  `json:"link,omitempty"`
}

func toRecord(b *domain.Bubble) record {
	rec := record{
		Slug:        b.Slug,
		ContentText: b.ContentText,
		Grammar:     b.Grammar,
		Attachments: make([]attachmentRecord, 0, len(b.Attachments)),
		CreatedBy:   b.CreatedBy,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	for _, a := range b.Attachments {
		rec.Attachments = append(rec.Attachments, attachmentRecord(a))
	}
	return rec
}

func (r record) toDomain() *domain.Bubble {
	b := &domain.Bubble{
		Slug:        r.Slug,
		ContentText: r.ContentText,
		Grammar:     r.Grammar,
		Attachments: make([]domain.Attachment, 0, len(r.Attachments)),
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	for _, a := range r.Attachments {
		b.Attachments = append(b.Attachments, domain.Attachment(a))
	}
	return b
}
