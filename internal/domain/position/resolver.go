// Package position picks a screen placement for each cue so that subtitles do
// not cover text already burned into the video.
package position

import (
	"math"
	"sort"

	"github.com/forPelevin/subcue/internal/types"
)

type Options struct {
	FrameHeight int
}

// Resolve returns a copy of cues with Position set from the regions observed
// during each cue. Regions centred in the upper third count as top text, the
// lower third as bottom text; the middle third is ignored.
//
//	bottom only -> TopCenter
//	top only    -> BottomCenter
//	both        -> RaisedBottom
//	none        -> BottomCenter
//
// Without a frame height or regions every cue gets BottomCenter. Timing and
// text are never changed. Every region is used whatever its confidence;
// detectors filter on their own scale before regions get here.
func Resolve(cues []types.Cue, regions []types.TextRegion, opts Options) []types.Cue {
	out := types.CloneCues(cues)
	for i := range out {
		out[i].Position = types.BottomCenter
	}
	if opts.FrameHeight <= 0 || len(regions) == 0 {
		return out
	}

	h := float64(opts.FrameHeight)
	upperLimit, lowerLimit := h/3, 2*h/3

	sorted := append([]types.TextRegion(nil), regions...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	for i := range out {
		c := out[i]
		lo := sort.Search(len(sorted), func(k int) bool { return sorted[k].Timestamp >= c.Start })
		var top, bottom bool
		for k := lo; k < len(sorted) && sorted[k].Timestamp <= c.End; k++ {
			y := sorted[k].Box.CenterY()
			switch {
			case y < upperLimit:
				top = true
			case y > lowerLimit:
				bottom = true
			}
		}
		out[i].Position = decide(top, bottom)
	}
	return out
}

func decide(top, bottom bool) types.Position {
	switch {
	case top && bottom:
		return types.RaisedBottom
	case bottom:
		return types.TopCenter
	default:
		return types.BottomCenter
	}
}

// SampleTimestamps plans the frame instants a detector should inspect: up to
// perCue evenly spaced points inside every cue, two per second of cue time at
// most, at least one per cue. The result is sorted and deduplicated to the millisecond.
func SampleTimestamps(cues []types.Cue, perCue int) []float64 {
	if perCue <= 0 {
		perCue = 1
	}
	seen := map[int64]struct{}{}
	var out []float64
	for _, c := range cues {
		n := int(c.Duration() * 2)
		if n > perCue {
			n = perCue
		}
		if n < 1 {
			n = 1
		}
		step := c.Duration() / float64(n+1)
		for k := 1; k <= n; k++ {
			ts := c.Start + step*float64(k)
			key := int64(math.Round(ts * 1000))
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, float64(key)/1000)
		}
	}
	sort.Float64s(out)
	return out
}
