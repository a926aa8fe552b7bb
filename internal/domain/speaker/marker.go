// Package speaker decides which cues open a new speaker turn.
//
// With diarized input the segmenter's flags are authoritative. Without it a
// Detector guesses from the text of adjacent cues; PatternDetector is the
// built-in punctuation heuristic and can be swapped for a trained classifier.
package speaker

import (
	"strings"

	"github.com/forPelevin/subcue/internal/types"
)

// Detector reports whether cur starts a new speaker turn after prev.
type Detector interface {
	Changed(prev, cur types.Cue) bool
}

// LabelDetector trusts the SpeakerChanged flags already set from speaker labels.
type LabelDetector struct{}

func (LabelDetector) Changed(_, cur types.Cue) bool { return cur.SpeakerChanged }

// Marker applies a Detector to a cue list.
type Marker struct {
	// Fallback is consulted when the transcript carried no speaker labels.
	Fallback Detector
}

func NewMarker() Marker { return Marker{Fallback: PatternDetector{}} }

// Mark returns a copy of cues with SpeakerChanged finalized. The first cue is
// never marked. Leading dashes of a marked cue are dropped since the
// serializer renders its own turn marker.
func (m Marker) Mark(cues []types.Cue, hasLabels bool) []types.Cue {
	var det Detector = LabelDetector{}
	if !hasLabels {
		det = m.Fallback
		if det == nil {
			det = PatternDetector{}
		}
	}

	out := types.CloneCues(cues)
	for i := range out {
		if i == 0 {
			out[i].SpeakerChanged = false
			continue
		}
		out[i].SpeakerChanged = det.Changed(cues[i-1], cues[i])
		if out[i].SpeakerChanged {
			out[i].Text = trimLeadingDash(out[i].Text)
		}
	}
	return out
}

func trimLeadingDash(words []string) []string {
	for len(words) > 0 {
		w := strings.TrimLeft(words[0], "-\u2013\u2014 ")
		if w != "" {
			words[0] = w
			return words
		}
		words = words[1:]
	}
	return words
}
