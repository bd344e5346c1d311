package content

import (
	"fmt"
	"strings"
)

// Grammar is the marker encoding of a raw content string. The caller picks
// it from the bubble's metadata; it is never guessed from the text.
type Grammar int

const (
	// GrammarIDTag binds <file-token id="..."></file-token> markers by id.
	GrammarIDTag Grammar = iota
	// GrammarSequential binds the Nth bare <file-token> marker to the Nth
	// attachment.
	GrammarSequential
	// GrammarDelimiter binds each '$' to the next attachment in order.
	GrammarDelimiter
)

// Delimiter is the reserved character of GrammarDelimiter.
const Delimiter = '$'

// escapedDelimiter stands in for a literal '$' in GrammarDelimiter text.
const escapedDelimiter = '＄'

const (
	markerOpen  = "<file-token"
	markerClose = "</file-token>"
)

func (g Grammar) String() string {
	switch g {
	case GrammarIDTag:
		return "id"
	case GrammarSequential:
		return "sequential"
	case GrammarDelimiter:
		return "delimiter"
	}
	return fmt.Sprintf("Grammar(%d)", int(g))
}

// ParseGrammar maps a stored grammar name to a Grammar. An empty name is
// the current id grammar.
func ParseGrammar(s string) (Grammar, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "id":
		return GrammarIDTag, nil
	case "sequential":
		return GrammarSequential, nil
	case "delimiter":
		return GrammarDelimiter, nil
	}
	return GrammarIDTag, fmt.Errorf("unknown content grammar %q", s)
}

// MarshalText encodes the grammar by name.
func (g Grammar) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (g *Grammar) UnmarshalText(text []byte) error {
	parsed, err := ParseGrammar(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
