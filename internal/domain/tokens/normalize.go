// Package tokens converts backend-specific transcript documents into a single
// ordered stream of timed word tokens.
//
// Two document shapes are recognized: cloud item lists (results.items with
// optional speaker_labels) and local segment lists (segments, or the
// transcription array whisper.cpp writes with -oj). Individual malformed items
// are skipped and reported; only an unrecognizable or empty document fails.
package tokens

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/forPelevin/subcue/internal/types"
)

// Shape identifies which transcript layout a document used.
type Shape string

const (
	ShapeCloud Shape = "cloud"
	ShapeLocal Shape = "local"
)

// Skip reasons.
const (
	ReasonMissingTimestamps  = "missing_timestamps"
	ReasonEmptyContent       = "empty_content"
	ReasonInvertedTimestamps = "inverted_timestamps"
	ReasonOrphanPunctuation  = "orphan_punctuation"
)

// DefaultSpeaker is assigned when a speaker map exists but has no entry for a token.
const DefaultSpeaker = "spk_0"

// Skipped describes one transcript item that did not become a token.
type Skipped struct {
	Index  int
	Reason string
}

func (s Skipped) Error() string {
	return fmt.Sprintf("item %d: %s: %s", s.Index, types.ErrMalformedToken, s.Reason)
}

func (s Skipped) Unwrap() error { return types.ErrMalformedToken }

// Result is the outcome of normalizing one transcript document.
type Result struct {
	Tokens           []types.WordToken
	Skipped          []Skipped
	HasSpeakerLabels bool
	Shape            Shape
}

// Normalize parses raw transcript JSON of either shape into tokens.
func Normalize(raw []byte) (Result, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return Result{}, fmt.Errorf("%w: %v", types.ErrInvalidTranscript, err)
	}

	var (
		res Result
		err error
	)
	switch {
	case top["results"] != nil:
		res, err = normalizeCloud(top["results"])
	case top["segments"] != nil:
		res, err = normalizeLocalSegments(top["segments"])
	case top["transcription"] != nil:
		res, err = normalizeWhisperCPP(top["transcription"])
	default:
		return Result{}, fmt.Errorf("%w: expected results, segments or transcription", types.ErrInvalidTranscript)
	}
	if err != nil {
		return Result{}, err
	}

	if len(res.Tokens) == 0 {
		return res, types.ErrEmptyTranscript
	}
	for i := 1; i < len(res.Tokens); i++ {
		if res.Tokens[i].Start < res.Tokens[i-1].Start {
			return res, fmt.Errorf("%w: token %d starts at %.3f before previous token at %.3f",
				types.ErrInvalidTranscript, i, res.Tokens[i].Start, res.Tokens[i-1].Start)
		}
	}
	return res, nil
}

// accumulator appends tokens while folding punctuation into the previous word.
type accumulator struct {
	tokens  []types.WordToken
	skipped []Skipped
}

func (a *accumulator) skip(idx int, reason string) {
	a.skipped = append(a.skipped, Skipped{Index: idx, Reason: reason})
}

func (a *accumulator) attachPunctuation(idx int, content string) {
	if len(a.tokens) == 0 {
		a.skip(idx, ReasonOrphanPunctuation)
		return
	}
	a.tokens[len(a.tokens)-1].Content += content
}

func (a *accumulator) add(idx int, content string, start, end float64, speaker string) {
	content = cleanContent(content)
	if content == "" {
		a.skip(idx, ReasonEmptyContent)
		return
	}
	if end < start {
		a.skip(idx, ReasonInvertedTimestamps)
		return
	}
	if IsPunctuation(content) {
		a.attachPunctuation(idx, content)
		return
	}
	a.tokens = append(a.tokens, types.WordToken{Content: content, Start: start, End: end, SpeakerID: speaker})
}

func cleanContent(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// IsPunctuation reports whether s holds no letters or digits.
func IsPunctuation(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
