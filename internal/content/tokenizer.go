package content

import (
	"html"
	"regexp"
	"strings"

	"bubbleview/internal/domain"
)

// wrapperPattern matches the block wrappers the editor puts around content.
// They carry no meaning and are replaced with whitespace.
var wrapperPattern = regexp.MustCompile(`(?i)</?(?:p|div)(?:\s[^>]*)?>|<br\s*/?>`)

var idAttrPattern = regexp.MustCompile(`(?:^|\s)id\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// Tokenize splits raw into text and attachment segments in document order.
//
// Markers are resolved against idx according to g. A marker that does not
// resolve is kept as literal text under GrammarIDTag and dropped under the
// positional grammars, where it means there are more markers than
// attachments. Tokenize never fails: an unterminated marker is text.
// Under GrammarDelimiter the escaped "＄" that Encode writes reads back as '$'.
func Tokenize(raw string, idx *Index, g Grammar) []Segment {
	t := &tokenizer{idx: idx, grammar: g}
	text := wrapperPattern.ReplaceAllString(raw, " ")
	if g == GrammarDelimiter {
		t.scanDelimited(text)
	} else {
		t.scanTagged(text)
	}
	t.flush()
	return t.out
}

type tokenizer struct {
	idx     *Index
	grammar Grammar
	out     []Segment
	buf     strings.Builder
	next    int
}

func (t *tokenizer) scanTagged(s string) {
	for {
		i := indexMarker(s)
		if i < 0 {
			t.buf.WriteString(s)
			return
		}
		t.buf.WriteString(s[:i])
		s = s[i:]

		end, head, ok := markerExtent(s)
		if !ok {
			t.buf.WriteString(s)
			return
		}
		if a, found := t.resolve(head); found {
			t.emit(a)
		} else if t.grammar == GrammarIDTag {
			t.buf.WriteString(s[:end])
		}
		s = s[end:]
	}
}

func (t *tokenizer) scanDelimited(s string) {
	for i, part := range strings.Split(s, string(Delimiter)) {
		if i > 0 {
			t.flush()
			if a, ok := t.idx.ByPosition(t.next); ok {
				t.next++
				t.emit(a)
			}
		}
		t.buf.WriteString(strings.ReplaceAll(part, string(escapedDelimiter), string(Delimiter)))
	}
}

func (t *tokenizer) resolve(head string) (domain.Attachment, bool) {
	if t.grammar == GrammarSequential {
		a, ok := t.idx.ByPosition(t.next)
		if ok {
			t.next++
		}
		return a, ok
	}
	m := idAttrPattern.FindStringSubmatch(head)
	if m == nil {
		return domain.Attachment{}, false
	}
	id := m[1]
	if id == "" {
		id = m[2]
	}
	return t.idx.ByID(html.UnescapeString(id))
}

func (t *tokenizer) emit(a domain.Attachment) {
	t.flush()
	t.out = append(t.out, Ref(a))
}

func (t *tokenizer) flush() {
	s := collapseSpace(html.UnescapeString(t.buf.String()))
	t.buf.Reset()
	if s != "" {
		t.out = append(t.out, Text(s))
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// indexMarker finds the next "<file-token" that starts an element, as
// opposed to a longer tag name such as "<file-tokens>".
func indexMarker(s string) int {
	from := 0
	for {
		i := strings.Index(s[from:], markerOpen)
		if i < 0 {
			return -1
		}
		i += from
		j := i + len(markerOpen)
		if j < len(s) {
			switch s[j] {
			case '>', '/', ' ', '\t', '\n', '\r':
				return i
			}
		}
		from = j
	}
}

// markerExtent measures the marker at the start of s. head is the opening
// tag. A paired closing tag belongs to the marker only if it comes before
// the next marker. ok is false when the opening tag never ends.
func markerExtent(s string) (end int, head string, ok bool) {
	gt := strings.IndexByte(s, '>')
	if gt < 0 {
		return 0, "", false
	}
	head = s[:gt+1]
	end = gt + 1
	if strings.HasSuffix(head, "/>") {
		return end, head, true
	}
	rest := s[end:]
	if c := strings.Index(rest, markerClose); c >= 0 {
		if n := indexMarker(rest); n < 0 || c < n {
			end += c + len(markerClose)
		}
	}
	return end, head, true
}
