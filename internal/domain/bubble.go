package domain

import "time"

// Bubble is a shared message: content text with inline attachment markers
// plus the attachments those markers refer to.
type Bubble struct {
	Slug        string
	ContentText string

	// Grammar names the marker encoding of ContentText ("id", "sequential"
	// or "delimiter"). It comes from the source, never from sniffing.
	Grammar string

	Attachments []Attachment
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FirstAttachment returns the first declared attachment, if any.
func (b *Bubble) FirstAttachment() (Attachment, bool) {
	if b == nil || len(b.Attachments) == 0 {
		return Attachment{}, false
	}
	return b.Attachments[0], true
}

// ValidSlug reports whether slug can name a bubble: 1 to 128 letters,
// digits, '-' or '_'.
func ValidSlug(slug string) bool {
	if slug == "" || len(slug) > 128 {
		return false
	}
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// SelectableIDs returns the ids of the attachments that render as
// buttons, in declaration order and without repeats.
func (b *Bubble) SelectableIDs() []string {
	if b == nil {
		return nil
	}
	seen := make(map[string]bool, len(b.Attachments))
	var ids []string
	for _, a := range b.Attachments {
		if !a.Interactive() || a.ID == "" || seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		ids = append(ids, a.ID)
	}
	return ids
}
