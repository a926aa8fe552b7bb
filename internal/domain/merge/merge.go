// Package merge joins short same-speaker cues and enforces a minimum display time.
package merge

import "github.com/forPelevin/subcue/internal/types"

const (
	DefaultMaxGap      = 0.3
	DefaultMaxWords    = 12
	DefaultMinDuration = 1.0
)

type Options struct {
	// MaxGap is the largest silence in seconds that two cues may be merged across.
	MaxGap      float64
	MaxWords    int
	MinDuration float64
}

func DefaultOptions() Options {
	return Options{MaxGap: DefaultMaxGap, MaxWords: DefaultMaxWords, MinDuration: DefaultMinDuration}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxGap <= 0 {
		o.MaxGap = d.MaxGap
	}
	if o.MaxWords <= 0 {
		o.MaxWords = d.MaxWords
	}
	if o.MinDuration <= 0 {
		o.MinDuration = d.MinDuration
	}
	return o
}

// Merge returns a new cue list in which adjacent cues are combined when the
// later one continues the same speaker after a short gap and the result stays
// within MaxWords. A cue flagged as a speaker change is never absorbed.
//
// Afterwards every cue lasts at least MinDuration. A cue is extended forward;
// when that would run into the next cue, the next cue's start is pushed later
// to keep cues disjoint.
func Merge(cues []types.Cue, opts Options) []types.Cue {
	if len(cues) == 0 {
		return nil
	}
	opts = opts.withDefaults()

	out := make([]types.Cue, 0, len(cues))
	for _, c := range cues {
		c = c.Clone()
		if n := len(out); n > 0 && canMerge(out[n-1], c, opts) {
			prev := &out[n-1]
			prev.Text = append(prev.Text, c.Text...)
			if c.End > prev.End {
				prev.End = c.End
			}
			continue
		}
		out = append(out, c)
	}

	for i := range out {
		if i > 0 && out[i].Start < out[i-1].End {
			out[i].Start = out[i-1].End
		}
		if out[i].End-out[i].Start < opts.MinDuration {
			out[i].End = out[i].Start + opts.MinDuration
		}
	}
	return out
}

func canMerge(prev, next types.Cue, opts Options) bool {
	if next.SpeakerChanged || next.SpeakerID != prev.SpeakerID {
		return false
	}
	if next.Start-prev.End >= opts.MaxGap {
		return false
	}
	return prev.WordCount()+next.WordCount() <= opts.MaxWords
}
