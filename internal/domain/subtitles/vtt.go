package subtitles

import (
	"fmt"
	"strings"

	"github.com/forPelevin/subcue/internal/types"
)

func writeVTTHeader(b *strings.Builder, _ []types.Cue, _ StyleOptions) {
	b.WriteString("WEBVTT\n\n")
}

func writeVTTCue(b *strings.Builder, n int, c types.Cue, lines []string, ts func(float64) string) {
	fmt.Fprintf(b, "cue%d\n%s --> %s%s\n", n, ts(c.Start), ts(c.End), vttSettings(c.Position))
	for _, ln := range lines {
		b.WriteString(vttEscape(ln))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
}

func vttSettings(p types.Position) string {
	switch p {
	case types.TopCenter:
		return " line:10% align:center"
	case types.RaisedBottom:
		return " line:75% align:center"
	default:
		return ""
	}
}

var vttEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// vttEscape keeps cue text from being read as markup. A "-->" inside text
// would otherwise terminate parsing of the cue.
func vttEscape(s string) string {
	return vttEscaper.Replace(s)
}
