package content

import "bubbleview/internal/domain"

// Index looks attachments up by id or by declaration position.
type Index struct {
	list []domain.Attachment
	byID map[string]int
}

// NewIndex builds an index over attachments. When two attachments share an
// id the first one wins.
func NewIndex(attachments []domain.Attachment) *Index {
	idx := &Index{
		list: append([]domain.Attachment(nil), attachments...),
		byID: make(map[string]int, len(attachments)),
	}
	for i, a := range idx.list {
		if a.ID == "" {
			continue
		}
		if _, dup := idx.byID[a.ID]; !dup {
			idx.byID[a.ID] = i
		}
	}
	return idx
}

// ByID returns the attachment with the given id.
func (idx *Index) ByID(id string) (domain.Attachment, bool) {
	if idx == nil || id == "" {
		return domain.Attachment{}, false
	}
	i, ok := idx.byID[id]
	if !ok {
		return domain.Attachment{}, false
	}
	return idx.list[i], true
}

// ByPosition returns the i-th declared attachment.
func (idx *Index) ByPosition(i int) (domain.Attachment, bool) {
	if idx == nil || i < 0 || i >= len(idx.list) {
		return domain.Attachment{}, false
	}
	return idx.list[i], true
}

// Position returns the declaration position of id, or -1.
func (idx *Index) Position(id string) int {
	if idx == nil {
		return -1
	}
	if i, ok := idx.byID[id]; ok {
		return i
	}
	return -1
}

// Len is the number of declared attachments.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.list)
}

// Attachments returns a copy of the declared attachments in order.
func (idx *Index) Attachments() []domain.Attachment {
	if idx == nil {
		return nil
	}
	return append([]domain.Attachment(nil), idx.list...)
}
