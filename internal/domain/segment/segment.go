// Package segment groups a word token stream into subtitle cues using pause,
// length and duration limits.
package segment

import (
	"github.com/forPelevin/subcue/internal/domain/tokens"
	"github.com/forPelevin/subcue/internal/types"
)

const (
	DefaultPauseThreshold = 0.7
	DefaultMaxWords       = 12
	DefaultMaxDuration    = 5.0
)

// Options bounds a single cue. Zero fields fall back to the defaults.
type Options struct {
	// PauseThreshold is the silence in seconds that forces a new cue.
	PauseThreshold float64
	MaxWords       int
	// MaxDuration caps the span from a cue's first word start to its last word end.
	MaxDuration float64
}

func DefaultOptions() Options {
	return Options{
		PauseThreshold: DefaultPauseThreshold,
		MaxWords:       DefaultMaxWords,
		MaxDuration:    DefaultMaxDuration,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PauseThreshold <= 0 {
		o.PauseThreshold = d.PauseThreshold
	}
	if o.MaxWords <= 0 {
		o.MaxWords = d.MaxWords
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = d.MaxDuration
	}
	return o
}

// Segment walks toks once and opens a new cue whenever the speaker changes,
// the pause before a word exceeds the threshold, the cue is full, or the word
// would stretch the cue past MaxDuration. Punctuation-only tokens stick to the
// preceding word and never count toward MaxWords.
func Segment(toks []types.WordToken, opts Options) ([]types.Cue, error) {
	if len(toks) == 0 {
		return nil, types.ErrEmptyTranscript
	}
	opts = opts.withDefaults()

	cues := make([]types.Cue, 0, len(toks)/opts.MaxWords+1)
	for _, tok := range toks {
		if tokens.IsPunctuation(tok.Content) {
			if n := len(cues); n > 0 {
				last := &cues[n-1]
				last.Text[len(last.Text)-1] += tok.Content
			}
			continue
		}
		if len(cues) == 0 {
			cues = append(cues, open(tok, false))
			continue
		}

		cur := &cues[len(cues)-1]
		changed := tok.SpeakerID != cur.SpeakerID
		if changed ||
			tok.Start-cur.End > opts.PauseThreshold ||
			len(cur.Text) >= opts.MaxWords ||
			tok.End-cur.Start > opts.MaxDuration {
			cues = append(cues, open(tok, changed))
			continue
		}

		cur.Text = append(cur.Text, tok.Content)
		if tok.End > cur.End {
			cur.End = tok.End
		}
	}

	if len(cues) == 0 {
		return nil, types.ErrEmptyTranscript
	}
	return cues, nil
}

func open(tok types.WordToken, speakerChanged bool) types.Cue {
	return types.Cue{
		Start:          tok.Start,
		End:            tok.End,
		SpeakerID:      tok.SpeakerID,
		Text:           []string{tok.Content},
		SpeakerChanged: speakerChanged,
	}
}
