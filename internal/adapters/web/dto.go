package web

import (
	"strings"

	"bubbleview/internal/content"
	"bubbleview/internal/domain"
	"bubbleview/internal/preview"
	"bubbleview/internal/selection"
	"bubbleview/internal/usecases"
)

// HeaderSessionID carries the viewer session for selection requests.
const HeaderSessionID = "X-Session-ID"

type errorResponse struct {
	Error string `json:"error"`
}

type itemResponse struct {
	Kind         string `json:"kind"`
	Text         string `json:"text,omitempty"`
	AttachmentID string `json:"attachmentId,omitempty"`
	Label        string `json:"label,omitempty"`
	Icon         string `json:"icon,omitempty"`
	Media        string `json:"media,omitempty"`
	Active       bool   `json:"active,omitempty"`
}

type viewResponse struct {
	Slug       string              `json:"slug"`
	Grammar    content.Grammar     `json:"grammar"`
	CreatedBy  string              `json:"createdBy,omitempty"`
	SelectedID string              `json:"selectedId,omitempty"`
	Items      []itemResponse      `json:"items"`
	Preview    *preview.Descriptor `json:"preview"`
}

func newViewResponse(v *usecases.View) viewResponse {
	resp := viewResponse{
		Slug:       v.Bubble.Slug,
		Grammar:    v.Grammar,
		CreatedBy:  v.Bubble.CreatedBy,
		SelectedID: v.SelectedID,
		Items:      make([]itemResponse, 0, len(v.Items)),
		Preview:    v.Preview,
	}
	for _, it := range v.Items {
		switch it.Kind {
		case content.ItemText:
			resp.Items = append(resp.Items, itemResponse{Kind: "text", Text: it.Text})
		case content.ItemButton:
			resp.Items = append(resp.Items, itemResponse{
				Kind:         "button",
				AttachmentID: it.Attachment.ID,
				Label:        it.Label,
				Icon:         it.Icon,
				Media:        it.Media.String(),
				Active:       it.Active,
			})
		case content.ItemBadge:
			resp.Items = append(resp.Items, itemResponse{
				Kind:         "badge",
				AttachmentID: it.Attachment.ID,
				Label:        it.Label,
			})
		}
	}
	return resp
}

type attachmentRequest struct {
	ID          string               `json:"id"`
	Kind        string               `json:"kind"`
	Name        string               `json:"name"`
	MimeType    string               `json:"mimeType"`
	Size        *int64               `json:"size"`
	Width       *int                 `json:"width"`
	Height      *int                 `json:"height"`
	StartTime   *float64             `json:"startTime"`
	URL         string               `json:"url"`
	DownloadURL string               `json:"downloadUrl"`
	Link        *domain.LinkMetadata `json:"link"`
}

// toDomain maps the request onto an attachment. A missing kind means FILE.
func (r attachmentRequest) toDomain() (*domain.Attachment, error) {
	kind := domain.KindFile
	if strings.TrimSpace(r.Kind) != "" {
		k, err := domain.ParseAttachmentKind(strings.TrimSpace(r.Kind))
		if err != nil {
			return nil, err
		}
		kind = k
	}
	a := &domain.Attachment{
		ID:          r.ID,
		Kind:        kind,
		Name:        r.Name,
		MimeType:    r.MimeType,
		SizeBytes:   r.Size,
		Width:       r.Width,
		Height:      r.Height,
		StartTime:   r.StartTime,
		SourceURL:   r.URL,
		DownloadURL: r.DownloadURL,
		Link:        r.Link,
	}
	if kind != domain.KindLink && a.DownloadURL == "" {
		a.DownloadURL = r.URL
	}
	return a, nil
}

type partRequest struct {
	Text       string             `json:"text"`
	Attachment *attachmentRequest `json:"attachment"`
}

type createRequest struct {
	Parts     []partRequest `json:"parts"`
	CreatedBy string        `json:"createdBy"`
	// CreatedByPhone is the older name of CreatedBy.
	CreatedByPhone string `json:"createdByPhone"`
}

func (r createRequest) toParts() ([]usecases.Part, error) {
	parts := make([]usecases.Part, 0, len(r.Parts))
	for _, p := range r.Parts {
		if p.Attachment == nil {
			parts = append(parts, usecases.Part{Text: p.Text})
			continue
		}
		a, err := p.Attachment.toDomain()
		if err != nil {
			return nil, err
		}
		parts = append(parts, usecases.Part{Attachment: a})
	}
	return parts, nil
}

func (r createRequest) author() string {
	if r.CreatedBy != "" {
		return r.CreatedBy
	}
	return r.CreatedByPhone
}

type createResponse struct {
	Slug     string `json:"slug"`
	ShareURL string `json:"shareUrl"`
}

type selectRequest struct {
	ID    string `json:"id"`
	Index *int   `json:"index"`
}

type selectionResponse struct {
	SessionID string `json:"sessionId"`
	selection.Snapshot
	Preview *preview.Descriptor `json:"preview"`
}
