package content

import (
	"html"
	"strconv"
	"strings"

	"bubbleview/internal/domain"
)

// Document is the composition model of a bubble body: an ordered list of
// text runs and attachment markers. It is immutable; every edit returns a
// new Document.
type Document struct {
	nodes []docNode
}

type docNode struct {
	text       string
	attachment *domain.Attachment
}

// AppendText adds a text run. Whitespace is kept as given.
func (d Document) AppendText(s string) Document {
	if s == "" {
		return d
	}
	return d.with(docNode{text: s})
}

// Insert adds a marker for a followed by a single space, the way the
// editor leaves the caret after an inserted token.
func (d Document) Insert(a domain.Attachment) Document {
	return d.with(docNode{attachment: &a}, docNode{text: " "})
}

func (d Document) with(nodes ...docNode) Document {
	next := make([]docNode, 0, len(d.nodes)+len(nodes))
	next = append(next, d.nodes...)
	next = append(next, nodes...)
	return Document{nodes: next}
}

// Attachments returns the inserted attachments in marker order.
func (d Document) Attachments() []domain.Attachment {
	var out []domain.Attachment
	for _, n := range d.nodes {
		if n.attachment != nil {
			out = append(out, *n.attachment)
		}
	}
	return out
}

// Empty reports whether the document has no attachments and no
// non-whitespace text.
func (d Document) Empty() bool {
	for _, n := range d.nodes {
		if n.attachment != nil || strings.TrimSpace(n.text) != "" {
			return false
		}
	}
	return true
}

// Encode serialises the document in grammar g and returns the raw text
// with the attachment list it must be stored with.
//
// Under GrammarIDTag each attachment is listed once, and attachments
// without an id are given one. The positional grammars list one
// attachment per marker.
func (d Document) Encode(g Grammar) (string, []domain.Attachment) {
	var (
		b    strings.Builder
		out  []domain.Attachment
		seen = make(map[string]bool)
	)
	if g == GrammarIDTag {
		for _, n := range d.nodes {
			if n.attachment != nil && n.attachment.ID != "" {
				seen[n.attachment.ID] = false
			}
		}
	}
	generated := 0

	for _, n := range d.nodes {
		if n.attachment == nil {
			text := html.EscapeString(n.text)
			if g == GrammarDelimiter {
				text = strings.ReplaceAll(text, string(Delimiter), string(escapedDelimiter))
			}
			b.WriteString(text)
			continue
		}

		a := *n.attachment
		switch g {
		case GrammarIDTag:
			if a.ID == "" {
				a.ID = nextGeneratedID(seen, &generated)
			}
			b.WriteString(`<file-token id="`)
			b.WriteString(html.EscapeString(a.ID))
			b.WriteString(`"></file-token>`)
			if listed := seen[a.ID]; !listed {
				seen[a.ID] = true
				out = append(out, a)
			}
		case GrammarSequential:
			b.WriteString(markerOpen + ">" + markerClose)
			out = append(out, a)
		case GrammarDelimiter:
			b.WriteRune(Delimiter)
			out = append(out, a)
		}
	}
	return b.String(), out
}

func nextGeneratedID(inUse map[string]bool, n *int) string {
	for {
		*n++
		id := "att-" + strconv.Itoa(*n)
		if _, taken := inUse[id]; !taken {
			inUse[id] = false
			return id
		}
	}
}

// FromSegments rebuilds a document from tokenizer output, separating
// adjacent segments with a space.
func FromSegments(segments []Segment) Document {
	var d Document
	afterMarker := false
	for i, seg := range segments {
		if i > 0 && !afterMarker {
			d = d.AppendText(" ")
		}
		if seg.IsText() {
			d = d.AppendText(seg.Text)
			afterMarker = false
			continue
		}
		d = d.Insert(seg.Attachment)
		afterMarker = true
	}
	return d
}

// Migrate re-encodes raw from one grammar into another. Markers that do
// not resolve under from are handled as Tokenize handles them.
func Migrate(raw string, attachments []domain.Attachment, from, to Grammar) (string, []domain.Attachment) {
	segments := Tokenize(raw, NewIndex(attachments), from)
	return FromSegments(segments).Encode(to)
}
