package subtitles

import (
	"fmt"
	"strings"

	"github.com/forPelevin/subcue/internal/types"
)

func writeSRTCue(b *strings.Builder, n int, c types.Cue, lines []string, ts func(float64) string) {
	fmt.Fprintf(b, "%d\n%s --> %s\n", n, ts(c.Start), ts(c.End))
	for _, ln := range lines {
		b.WriteString(ln)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
}

// writeVLCCue prefixes an ASS alignment override, which VLC and most desktop
// players honour inside SRT.
func writeVLCCue(b *strings.Builder, n int, c types.Cue, lines []string, ts func(float64) string) {
	if len(lines) > 0 {
		tagged := make([]string, len(lines))
		copy(tagged, lines)
		tagged[0] = alignTag(c.Position) + tagged[0]
		lines = tagged
	}
	writeSRTCue(b, n, c, lines, ts)
}

func alignTag(p types.Position) string {
	switch p {
	case types.TopCenter:
		return `{\an8}`
	case types.RaisedBottom:
		return `{\an5}`
	default:
		return `{\an2}`
	}
}
