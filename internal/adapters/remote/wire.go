package remote

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"bubbleview/internal/domain"
	"bubbleview/pkg/log"
)

// artifactResponse is the body of GET /api/artifacts/{slug}/details.
type artifactResponse struct {
	Artifact *artifact `json:"artifact"`
}

type artifact struct {
	ID             string               `json:"_id"`
	ContentText    string               `json:"contentText"`
	Attachments    []artifactAttachment `json:"attachments"`
	CreatedByPhone string               `json:"createdByPhone"`
}

type artifactAttachment struct {
	Index                  int               `json:"index"`
	Type                   string            `json:"type"`
	CloudFrontDownloadLink string            `json:"cloudFrontDownloadLink"`
	MetaData               *artifactMetaData `json:"metaData"`
	Content                artifactContent   `json:"content"`
}

type artifactMetaData struct {
	Title      string `json:"title"`
	DataText   string `json:"dataText"`
	MediaURL   string `json:"mediaUrl"`
	FaviconURL string `json:"faviconUrl"`
}

type artifactContent struct {
	URL       string   `json:"url"`
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	S3URL     string   `json:"s3Url"`
	Size      *int64   `json:"size"`
	Width     *int     `json:"width"`
	Height    *int     `json:"height"`
	StartTime *float64 `json:"startTime"`
}

// legacyResponse is the body of GET /api/bubbles/{slug}.
type legacyResponse struct {
	ID             string        `json:"_id"`
	Content        string        `json:"content"`
	Tokens         []legacyToken `json:"tokens"`
	CreatedByPhone string        `json:"createdByPhone"`
}

type legacyToken struct {
	ID       string `json:"_id"`
	Type     string `json:"type"`
	FileName string `json:"fileName"`
	URL      string `json:"url"`
	Size     string `json:"size"`
}

func (a *artifact) toDomain(slug string) *domain.Bubble {
	b := &domain.Bubble{
		Slug:        slug,
		ContentText: a.ContentText,
		Grammar:     "delimiter",
		CreatedBy:   a.CreatedByPhone,
		Attachments: make([]domain.Attachment, 0, len(a.Attachments)),
	}
	for i, att := range a.Attachments {
		b.Attachments = append(b.Attachments, att.toDomain(i))
	}
	return b
}

func (a artifactAttachment) toDomain(position int) domain.Attachment {
	kind, err := domain.ParseAttachmentKind(a.Type)
	if err != nil {
		log.GlobalWarn("unknown artifact attachment type", "type", a.Type, "index", a.Index)
		kind = domain.KindFile
	}

	id := a.Content.ID
	if id == "" {
		id = "att-" + strconv.Itoa(position)
	}
	out := domain.Attachment{
		ID:          id,
		Kind:        kind,
		Name:        a.Content.Name,
		SizeBytes:   a.Content.Size,
		Width:       a.Content.Width,
		Height:      a.Content.Height,
		StartTime:   a.Content.StartTime,
		SourceURL:   a.Content.URL,
		DownloadURL: a.CloudFrontDownloadLink,
	}
	if out.DownloadURL == "" {
		out.DownloadURL = a.Content.S3URL
	}
	if m := a.MetaData; m != nil {
		out.Link = &domain.LinkMetadata{
			Title:           m.Title,
			Text:            m.DataText,
			PreviewImageURL: m.MediaURL,
			FaviconURL:      m.FaviconURL,
		}
	}
	return out
}

func (r *legacyResponse) toDomain(slug string) *domain.Bubble {
	b := &domain.Bubble{
		Slug:        slug,
		ContentText: r.Content,
		Grammar:     "id",
		CreatedBy:   r.CreatedByPhone,
		Attachments: make([]domain.Attachment, 0, len(r.Tokens)),
	}
	for _, tok := range r.Tokens {
		b.Attachments = append(b.Attachments, tok.toDomain())
	}
	return b
}

// toDomain maps a legacy token. Its type is either an attachment kind or
// the MIME type of an uploaded file.
func (t legacyToken) toDomain() domain.Attachment {
	out := domain.Attachment{ID: t.ID, Name: t.FileName}

	if kind, err := domain.ParseAttachmentKind(t.Type); err == nil {
		out.Kind = kind
	} else {
		out.Kind = domain.KindFile
		if strings.Contains(t.Type, "/") {
			out.MimeType = t.Type
		}
	}

	if out.Kind == domain.KindLink {
		out.SourceURL = t.URL
	} else {
		out.DownloadURL = t.URL
	}
	out.SizeBytes = parseSize(t.Size)
	return out
}

// parseSize reads byte counts that were stored as strings, either plain
// ("2048") or human readable ("1.5 MB"). Unparseable sizes are absent.
func parseSize(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 0 {
		return &n
	}
	n, err := humanize.ParseBytes(s)
	if err != nil || n > 1<<62 {
		return nil
	}
	v := int64(n)
	return &v
}
