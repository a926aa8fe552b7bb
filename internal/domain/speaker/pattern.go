package speaker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/forPelevin/subcue/internal/types"
)

// PatternDetector infers turns from punctuation. It is a heuristic: a new
// sentence by the same speaker after a full stop is also reported as a change.
//
// A change is reported when the previous cue ends a sentence and the current
// one opens with a dash, an unmatched opening quote, or a capitalized word;
// or when a question is followed by something that is not a question.
type PatternDetector struct{}

func (PatternDetector) Changed(prev, cur types.Cue) bool {
	p := strings.TrimSpace(prev.JoinedText())
	c := strings.TrimSpace(cur.JoinedText())
	if p == "" || c == "" {
		return false
	}

	if strings.HasSuffix(p, "?") && !strings.HasSuffix(c, "?") {
		return true
	}
	if !endsSentence(p) {
		return false
	}

	first, _ := utf8.DecodeRuneInString(c)
	switch {
	case first == '-' || first == '\u2013' || first == '\u2014':
		return true
	case first == '"' || first == '“':
		return !strings.HasSuffix(p, `"`) && !strings.HasSuffix(p, "”")
	default:
		return unicode.IsUpper(first)
	}
}

func endsSentence(s string) bool {
	s = strings.TrimRight(s, `"'”’)`)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!")
}
