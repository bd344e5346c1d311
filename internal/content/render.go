package content

import (
	"strconv"

	"bubbleview/internal/domain"
	"bubbleview/internal/preview"
)

// ItemKind tags a RenderItem.
type ItemKind int

const (
	ItemText ItemKind = iota
	// ItemButton is a selectable FILE or LINK attachment.
	ItemButton
	// ItemBadge is a non-interactive attachment such as a timestamp.
	ItemBadge
)

// RenderItem is one display-ready piece of a bubble body.
type RenderItem struct {
	Kind       ItemKind
	Text       string
	Attachment domain.Attachment
	Label      string
	Icon       string
	Media      preview.MediaKind
	Active     bool
}

// Render turns segments into render items. The first button whose
// attachment id equals selectedID is active; a stale or empty selectedID
// leaves every item inactive.
func Render(segments []Segment, selectedID string) []RenderItem {
	items := make([]RenderItem, 0, len(segments))
	activeSet := false
	for _, seg := range segments {
		if seg.IsText() {
			items = append(items, RenderItem{Kind: ItemText, Text: seg.Text})
			continue
		}

		a := seg.Attachment
		if !a.Interactive() {
			items = append(items, RenderItem{
				Kind:       ItemBadge,
				Attachment: a,
				Label:      BadgeLabel(a),
			})
			continue
		}

		kind := preview.ClassifyAttachment(a)
		item := RenderItem{
			Kind:       ItemButton,
			Attachment: a,
			Label:      buttonLabel(a),
			Icon:       kind.Icon(),
			Media:      kind,
		}
		if !activeSet && selectedID != "" && a.ID == selectedID {
			item.Active = true
			activeSet = true
		}
		items = append(items, item)
	}
	return items
}

// BadgeLabel is the fixed text of a non-interactive attachment.
func BadgeLabel(a domain.Attachment) string {
	switch a.Kind {
	case domain.KindSystemMessage:
		return "SYSTEM MESSAGE"
	case domain.KindUser:
		return "USER"
	case domain.KindTimestamp:
		if a.StartTime == nil {
			return "TIMESTAMP"
		}
		return "TIMESTAMP: " + strconv.FormatFloat(*a.StartTime, 'f', -1, 64) + "s"
	case domain.KindReference:
		return "REFERENCE"
	}
	return string(a.Kind)
}

func buttonLabel(a domain.Attachment) string {
	if name := a.DisplayName(); name != "" {
		return name
	}
	return "Unnamed File"
}
