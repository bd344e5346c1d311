package content

import "bubbleview/internal/domain"

// SegmentKind tags a Segment.
type SegmentKind int

const (
	TextSegment SegmentKind = iota
	AttachmentSegment
)

// Segment is one run of tokenizer output: either display text or a
// reference to an attachment.
type Segment struct {
	Kind       SegmentKind
	Text       string
	Attachment domain.Attachment
}

// Text builds a text segment.
func Text(s string) Segment {
	return Segment{Kind: TextSegment, Text: s}
}

// Ref builds an attachment segment.
func Ref(a domain.Attachment) Segment {
	return Segment{Kind: AttachmentSegment, Attachment: a}
}

// IsText reports whether s is a text segment.
func (s Segment) IsText() bool { return s.Kind == TextSegment }
