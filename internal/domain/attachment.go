// Package domain contains the entities shared by the content pipeline,
// the preview dispatcher and the adapters around them.
package domain

import (
	"net/url"
	"strings"
)

// AttachmentKind is the declared kind of an attachment. It never changes
// after the attachment is built.
type AttachmentKind string

const (
	KindLink          AttachmentKind = "LINK"
	KindFile          AttachmentKind = "FILE"
	KindSystemMessage AttachmentKind = "SYSTEM_MESSAGE"
	KindUser          AttachmentKind = "USER"
	KindTimestamp     AttachmentKind = "TIMESTAMP"
	KindReference     AttachmentKind = "REFERENCE"
)

var attachmentKinds = []AttachmentKind{
	KindLink, KindFile, KindSystemMessage, KindUser, KindTimestamp, KindReference,
}

// ParseAttachmentKind matches s against the known kinds, ignoring case.
func ParseAttachmentKind(s string) (AttachmentKind, error) {
	for _, k := range attachmentKinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", ErrUnknownKind
}

// Attachment is one file or link referenced from bubble content.
type Attachment struct {
	ID   string
	Kind AttachmentKind

	// Name is the filename for files. Links usually leave it empty and
	// display their hostname instead.
	Name     string
	MimeType string

	SizeBytes *int64
	Width     *int
	Height    *int

	// StartTime is the offset in seconds for TIMESTAMP attachments.
	StartTime *float64

	SourceURL   string // original URL, meaningful for links
	DownloadURL string // resolved binary location, meaningful for files

	Link *LinkMetadata
}

// LinkMetadata is optional enrichment for link attachments.
type LinkMetadata struct {
	Title           string `json:"title,omitempty"`
	Text            string `json:"text,omitempty"`
	PreviewImageURL string `json:"previewImageUrl,omitempty"`
	FaviconURL      string `json:"faviconUrl,omitempty"`
}

// DisplayName is the label shown for the attachment inline.
func (a Attachment) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.Kind == KindLink {
		host, _ := ParseDisplayURL(a.SourceURL)
		return host
	}
	return ""
}

// MediaURL is the location a preview should load.
func (a Attachment) MediaURL() string {
	if a.Kind == KindLink {
		return a.SourceURL
	}
	if a.DownloadURL != "" {
		return a.DownloadURL
	}
	return a.SourceURL
}

// Interactive reports whether the attachment renders as a selectable button.
func (a Attachment) Interactive() bool {
	return a.Kind == KindFile || a.Kind == KindLink
}

// ParseDisplayURL returns the hostname without a leading "www." and the
// origin of raw. Anything that is not an absolute URL comes back as
// (raw, "").
func ParseDisplayURL(raw string) (hostname, origin string) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw, ""
	}
	return strings.TrimPrefix(u.Hostname(), "www."), u.Scheme + "://" + u.Host
}
