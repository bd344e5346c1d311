package preview

import (
	"strings"

	"bubbleview/internal/domain"
)

// DisplayState is the selection state of the attachment being previewed.
type DisplayState struct {
	Selected      bool
	Transitioning bool
}

// GlobeIcon stands in for a missing site icon or preview image.
const GlobeIcon = "🌐"

// Descriptor carries everything a preview strategy needs to render one
// attachment. Empty strings mean "absent": the template leaves the field
// out rather than showing a placeholder.
type Descriptor struct {
	Strategy     MediaKind `json:"strategy"`
	AttachmentID string    `json:"attachmentId"`

	Name      string `json:"name,omitempty"`
	ShortName string `json:"shortName,omitempty"`
	Extension string `json:"extension,omitempty"`
	Size      string `json:"size,omitempty"`
	Icon      string `json:"icon,omitempty"`

	// MediaURL is what inline strategies load. Inline is false when the
	// strategy is inline-capable but there is nothing to load.
	MediaURL  string `json:"mediaUrl,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
	Inline    bool   `json:"inline"`
	Width     *int   `json:"width,omitempty"`
	Height    *int   `json:"height,omitempty"`

	// ActionURL is empty when there is no open or visit affordance.
	ActionLabel string `json:"actionLabel,omitempty"`
	ActionURL   string `json:"actionUrl,omitempty"`

	Highlighted bool `json:"highlighted"`

	Hostname        string `json:"hostname,omitempty"`
	Origin          string `json:"origin,omitempty"`
	SiteLabel       string `json:"siteLabel,omitempty"`
	Title           string `json:"title,omitempty"`
	Text            string `json:"text,omitempty"`
	PreviewImageURL string `json:"previewImageUrl,omitempty"`
	FaviconURL      string `json:"faviconUrl,omitempty"`
	FallbackIcon    string `json:"fallbackIcon,omitempty"`
}

// Dispatcher picks the preview strategy for an attachment.
type Dispatcher struct {
	hosts HostLabeler
}

// NewDispatcher uses hosts for link labels; nil means DefaultHosts.
func NewDispatcher(hosts HostLabeler) *Dispatcher {
	if hosts == nil {
		hosts = DefaultHosts()
	}
	return &Dispatcher{hosts: hosts}
}

var defaultDispatcher = NewDispatcher(nil)

// ChoosePreview dispatches with the built-in host labels.
func ChoosePreview(a domain.Attachment, kind MediaKind, state DisplayState) Descriptor {
	return defaultDispatcher.Choose(a, kind, state)
}

// Choose builds the descriptor for a under exactly one strategy. A LINK
// attachment always gets the link strategy, whatever kind was passed.
func (d *Dispatcher) Choose(a domain.Attachment, kind MediaKind, state DisplayState) Descriptor {
	if a.Kind == domain.KindLink {
		kind = Link
	}

	desc := Descriptor{
		Strategy:     kind,
		AttachmentID: a.ID,
		Icon:         kind.Icon(),
		Size:         FormatSize(a.SizeBytes),
		Width:        a.Width,
		Height:       a.Height,
		Highlighted:  state.Selected && !state.Transitioning,
	}

	switch kind {
	case Image:
		d.inline(&desc, a, "Image", "")
	case Video:
		d.inline(&desc, a, "Video", "video/")
	case Audio:
		d.inline(&desc, a, "Audio", "audio/")
	case PDF:
		d.inline(&desc, a, "PDF", "")
		desc.MediaType = "application/pdf"
	case Archive:
		d.box(&desc, a, "Archive")
	case CSV:
		d.box(&desc, a, "CSV")
	case Spreadsheet:
		d.box(&desc, a, "Excel")
	case Link:
		d.link(&desc, a)
	case Generic:
		d.box(&desc, a, "File")
	default:
		desc.Strategy = Generic
		d.box(&desc, a, "File")
	}
	return desc
}

func (d *Dispatcher) inline(desc *Descriptor, a domain.Attachment, title, typePrefix string) {
	d.box(desc, a, title)
	desc.Inline = desc.MediaURL != ""
	if typePrefix == "" {
		return
	}
	switch {
	case strings.HasPrefix(a.MimeType, typePrefix):
		desc.MediaType = a.MimeType
	case desc.Extension != "":
		desc.MediaType = typePrefix + desc.Extension
	}
}

func (d *Dispatcher) box(desc *Descriptor, a domain.Attachment, title string) {
	name := a.DisplayName()
	if name == "" {
		name = urlBase(a.MediaURL())
	}
	if name == "" {
		name = "Unnamed File"
	}
	desc.Name = name
	desc.ShortName = TruncateDisplayName(name)
	desc.Extension = Extension(name)
	desc.MediaURL = a.MediaURL()
	desc.ActionLabel = "Open " + title
	desc.ActionURL = desc.MediaURL
}

func (d *Dispatcher) link(desc *Descriptor, a domain.Attachment) {
	host, origin := domain.ParseDisplayURL(a.SourceURL)
	desc.Hostname = host
	desc.Origin = origin
	desc.SiteLabel = host
	desc.MediaURL = a.SourceURL
	desc.ActionLabel = "Visit Link"
	desc.ActionURL = a.SourceURL

	if l, ok := d.hosts.LookupHost(host); ok {
		if l.Label != "" {
			desc.SiteLabel = l.Label
		}
		if l.Action != "" {
			desc.ActionLabel = l.Action
		}
	}

	desc.Name = a.Name
	if desc.Name == "" {
		desc.Name = desc.SiteLabel
	}
	desc.ShortName = desc.Name

	if m := a.Link; m != nil {
		desc.Title = m.Title
		desc.Text = m.Text
		desc.PreviewImageURL = m.PreviewImageURL
		desc.FaviconURL = m.FaviconURL
	}
	if desc.FaviconURL == "" {
		desc.FallbackIcon = GlobeIcon
	}
}
