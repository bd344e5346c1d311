// Package preview classifies attachments into media kinds and builds the
// descriptor each preview strategy renders from.
//
// The extension table and the dispatcher switch live side by side in this
// package; a new MediaKind needs an entry in both.
package preview

import (
	"net/url"
	"path"
	"strings"

	"bubbleview/internal/domain"
)

// MediaKind is the preview strategy an attachment is rendered with.
type MediaKind int

const (
	Generic MediaKind = iota
	Image
	Video
	Audio
	PDF
	Archive
	CSV
	Spreadsheet
	Link
)

var mediaKindNames = [...]string{
	Generic:     "GENERIC",
	Image:       "IMAGE",
	Video:       "VIDEO",
	Audio:       "AUDIO",
	PDF:         "PDF",
	Archive:     "ARCHIVE",
	CSV:         "CSV",
	Spreadsheet: "SPREADSHEET",
	Link:        "LINK",
}

var mediaKindIcons = [...]string{
	Generic:     "📄",
	Image:       "🖼️",
	Video:       "🎥",
	Audio:       "🎵",
	PDF:         "📄",
	Archive:     "📦",
	CSV:         "📑",
	Spreadsheet: "📊",
	Link:        "🔗",
}

func (k MediaKind) String() string {
	if k < Generic || k > Link {
		return mediaKindNames[Generic]
	}
	return mediaKindNames[k]
}

// MarshalText encodes the kind by name in JSON and templates.
func (k MediaKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Icon is the glyph shown next to the inline attachment button.
func (k MediaKind) Icon() string {
	if k < Generic || k > Link {
		return mediaKindIcons[Generic]
	}
	return mediaKindIcons[k]
}

// extensionKinds maps lower-case extensions to kinds. Anything missing is
// Generic; doc and docx are listed so the intent is explicit.
var extensionKinds = map[string]MediaKind{
	"zip": Archive, "rar": Archive, "7z": Archive,
	"mp3": Audio, "wav": Audio, "ogg": Audio, "m4a": Audio,
	"mp4": Video, "avi": Video, "mkv": Video, "mov": Video, "webm": Video,
	"pdf": PDF,
	"doc": Generic, "docx": Generic,
	"xls": Spreadsheet, "xlsx": Spreadsheet,
	"csv": CSV,
	"jpg": Image, "jpeg": Image, "png": Image, "gif": Image, "bmp": Image, "webp": Image, "heic": Image,
}

// mimeKinds covers hints that are MIME types, for names without an extension.
var mimeKinds = map[string]MediaKind{
	"application/pdf":              PDF,
	"application/zip":              Archive,
	"application/x-zip-compressed": Archive,
	"application/x-rar-compressed": Archive,
	"application/x-7z-compressed":  Archive,
	"text/csv":                     CSV,
	"application/vnd.ms-excel":     Spreadsheet,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": Spreadsheet,
}

// Classify maps a filename and a hint (an attachment kind such as "LINK" or
// "FILE", or a MIME type) to a MediaKind. A LINK hint wins over any
// filename. It is total: unknown input is Generic.
func Classify(filename, hint string) MediaKind {
	if strings.EqualFold(strings.TrimSpace(hint), string(domain.KindLink)) {
		return Link
	}
	if ext := Extension(filename); ext != "" {
		return extensionKinds[ext]
	}
	return classifyMIME(hint)
}

// ClassifyAttachment classifies a, using the last path element of its
// media URL when it has no name.
func ClassifyAttachment(a domain.Attachment) MediaKind {
	hint := string(a.Kind)
	if a.Kind != domain.KindLink && a.MimeType != "" {
		hint = a.MimeType
	}
	name := a.Name
	if name == "" && a.Kind != domain.KindLink {
		name = urlBase(a.MediaURL())
	}
	return Classify(name, hint)
}

// Extension returns the lower-cased text after the last dot, or "".
func Extension(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 || i == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

func classifyMIME(hint string) MediaKind {
	mime := strings.ToLower(strings.TrimSpace(hint))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if !strings.Contains(mime, "/") {
		return Generic
	}
	switch {
	case strings.HasPrefix(mime, "image/"):
		return Image
	case strings.HasPrefix(mime, "video/"):
		return Video
	case strings.HasPrefix(mime, "audio/"):
		return Audio
	}
	return mimeKinds[mime]
}

func urlBase(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	return base
}
