package subtitles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/forPelevin/subcue/internal/types"
)

const (
	styleDefault = "Default"
	styleTop     = "Top"
	styleRaised  = "RaisedBottom"
)

const assStyleFormat = "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, " +
	"Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, " +
	"Alignment, MarginL, MarginR, MarginV, Encoding"

func writeASSHeader(b *strings.Builder, cues []types.Cue, s StyleOptions) {
	b.WriteString("[Script Info]\n")
	b.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(b, "PlayResX: %d\n", s.PlayResX)
	fmt.Fprintf(b, "PlayResY: %d\n", s.PlayResY)
	b.WriteString("WrapStyle: 0\n")
	b.WriteString("ScaledBorderAndShadow: yes\n")
	b.WriteString("Collisions: Normal\n")

	b.WriteString("\n[V4+ Styles]\n")
	b.WriteString(assStyleFormat)
	b.WriteByte('\n')
	writeASSStyle(b, s, styleDefault, 2, s.MarginV)
	writeASSStyle(b, s, styleTop, 8, s.MarginV)
	if usesPosition(cues, types.RaisedBottom) {
		writeASSStyle(b, s, styleRaised, 2, s.RaisedMarginV)
	}

	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
}

func writeASSStyle(b *strings.Builder, s StyleOptions, name string, alignment, marginV int) {
	fmt.Fprintf(b, "Style: %s,%s,%d,%s,%s,%s,%s,%d,%d,0,0,100,100,0,0,1,%s,%s,%d,10,10,%d,1\n",
		name, s.FontName, s.FontSize,
		s.PrimaryColor, s.SecondaryColor, s.OutlineColor, s.BackColor,
		assBool(s.Bold), assBool(s.Italic),
		assNum(s.OutlineWidth), assNum(s.ShadowDepth),
		alignment, marginV,
	)
}

func writeASSCue(b *strings.Builder, _ int, c types.Cue, lines []string, ts func(float64) string) {
	parts := make([]string, 0, len(lines))
	for _, ln := range lines {
		parts = append(parts, sanitizeASS(ln))
	}
	fmt.Fprintf(b, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n", ts(c.Start), ts(c.End), assStyleName(c.Position), strings.Join(parts, `\N`))
}

func assStyleName(p types.Position) string {
	switch p {
	case types.TopCenter:
		return styleTop
	case types.RaisedBottom:
		return styleRaised
	default:
		return styleDefault
	}
}

func usesPosition(cues []types.Cue, p types.Position) bool {
	for _, c := range cues {
		if c.Position == p {
			return true
		}
	}
	return false
}

// ASS uses -1 for true.
func assBool(v bool) int {
	if v {
		return -1
	}
	return 0
}

func assNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}
