package tokens

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/forPelevin/subcue/internal/types"
)

type localWord struct {
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Word  string   `json:"word"`
}

type localSegment struct {
	Start *float64    `json:"start"`
	End   *float64    `json:"end"`
	Text  string      `json:"text"`
	Words []localWord `json:"words"`
}

func normalizeLocalSegments(raw json.RawMessage) (Result, error) {
	var segs []localSegment
	if err := json.Unmarshal(raw, &segs); err != nil {
		return Result{}, fmt.Errorf("%w: segments: %v", types.ErrInvalidTranscript, err)
	}
	acc := &accumulator{}
	idx := 0
	for _, seg := range segs {
		idx = addLocalSegment(acc, idx, seg)
	}
	return Result{Tokens: acc.tokens, Skipped: acc.skipped, Shape: ShapeLocal}, nil
}

// addLocalSegment emits tokens for one segment and returns the next item index.
// Per-word timings win; otherwise the segment span is split across its words
// in proportion to their rune length.
func addLocalSegment(acc *accumulator, idx int, seg localSegment) int {
	if usableWords(seg.Words) {
		for _, w := range seg.Words {
			if w.Start == nil || w.End == nil {
				acc.skip(idx, ReasonMissingTimestamps)
			} else {
				acc.add(idx, w.Word, *w.Start, *w.End, "")
			}
			idx++
		}
		return idx
	}

	if seg.Start == nil || seg.End == nil {
		acc.skip(idx, ReasonMissingTimestamps)
		return idx + 1
	}
	if *seg.End < *seg.Start {
		acc.skip(idx, ReasonInvertedTimestamps)
		return idx + 1
	}
	words := strings.Fields(seg.Text)
	if len(words) == 0 {
		acc.skip(idx, ReasonEmptyContent)
		return idx + 1
	}

	total := 0
	for _, w := range words {
		total += utf8.RuneCountInString(w)
	}
	span := *seg.End - *seg.Start
	at := *seg.Start
	seen := 0
	for _, w := range words {
		seen += utf8.RuneCountInString(w)
		end := *seg.Start + span*float64(seen)/float64(total)
		acc.add(idx, w, at, end, "")
		at = end
		idx++
	}
	return idx
}

func usableWords(words []localWord) bool {
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if w.Start != nil && w.End != nil {
			return true
		}
	}
	return false
}

// whisper.cpp -oj output: offsets are milliseconds.
type whisperEntry struct {
	Offsets *struct {
		From int64 `json:"from"`
		To   int64 `json:"to"`
	} `json:"offsets"`
	Text string `json:"text"`
}

func normalizeWhisperCPP(raw json.RawMessage) (Result, error) {
	var entries []whisperEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return Result{}, fmt.Errorf("%w: transcription: %v", types.ErrInvalidTranscript, err)
	}
	acc := &accumulator{}
	idx := 0
	for _, e := range entries {
		text := strings.TrimSpace(e.Text)
		if isNonSpeechMarker(text) {
			acc.skip(idx, ReasonEmptyContent)
			idx++
			continue
		}
		seg := localSegment{Text: text}
		if e.Offsets != nil {
			start := float64(e.Offsets.From) / 1000
			end := float64(e.Offsets.To) / 1000
			seg.Start, seg.End = &start, &end
		}
		idx = addLocalSegment(acc, idx, seg)
	}
	return Result{Tokens: acc.tokens, Skipped: acc.skipped, Shape: ShapeLocal}, nil
}

// isNonSpeechMarker matches annotations such as [BLANK_AUDIO] or (music).
func isNonSpeechMarker(s string) bool {
	if len(s) < 2 {
		return false
	}
	return (s[0] == '[' && s[len(s)-1] == ']') || (s[0] == '(' && s[len(s)-1] == ')')
}
