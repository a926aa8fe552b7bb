// Package subtitles renders cue lists as SRT, WebVTT and ASS documents and
// reads SRT and WebVTT back.
package subtitles

import (
	"fmt"
	"math"
	"strings"

	"github.com/forPelevin/subcue/internal/types"
)

// SpeakerMarker prefixes the first line of a cue that opens a new speaker turn.
const SpeakerMarker = "-- "

// formatter is one output encoding. Each format supplies its own timestamp
// rendering, document header and per-cue block.
type formatter struct {
	timestamp func(sec float64) string
	header    func(b *strings.Builder, cues []types.Cue, style StyleOptions)
	cue       func(b *strings.Builder, n int, c types.Cue, lines []string, ts func(float64) string)
}

var formatters = map[Format]formatter{
	FormatSRT:    {timestamp: srtTime, cue: writeSRTCue},
	FormatSRTVLC: {timestamp: srtTime, cue: writeVLCCue},
	FormatVTT:    {timestamp: vttTime, header: writeVTTHeader, cue: writeVTTCue},
	FormatASS:    {timestamp: assTime, header: writeASSHeader, cue: writeASSCue},
}

// Serialize renders cues in format. Cues are written in order and numbered from 1.
func Serialize(cues []types.Cue, format Format, style StyleOptions) ([]byte, error) {
	f, ok := formatters[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, format)
	}
	style = style.withDefaults()

	var b strings.Builder
	b.Grow(64 + len(cues)*96)
	if f.header != nil {
		f.header(&b, cues, style)
	}
	for i, c := range cues {
		f.cue(&b, i+1, c, CueLines(c), f.timestamp)
	}
	return []byte(b.String()), nil
}

// CueLines returns the display lines of c: the speaker marker is applied
// first, then text spanning more than two lines is reflowed to at most two.
func CueLines(c types.Cue) []string {
	text := c.JoinedText()
	if c.SpeakerChanged {
		text = SpeakerMarker + text
	}
	return wrapLines(text)
}

func wrapLines(text string) []string {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	if len(lines) <= 2 {
		return lines
	}

	words := strings.Fields(strings.Join(lines, " "))
	if len(words) > 6 {
		mid := len(words) / 2
		return []string{strings.Join(words[:mid], " "), strings.Join(words[mid:], " ")}
	}
	return []string{strings.Join(words, " ")}
}

// clock splits seconds into wall-clock parts, rounded to the millisecond.
func clock(sec float64) (h, m, s, ms int64) {
	if sec < 0 || math.IsNaN(sec) {
		sec = 0
	}
	total := int64(math.Round(sec * 1000))
	h = total / 3_600_000
	total -= h * 3_600_000
	m = total / 60_000
	total -= m * 60_000
	s = total / 1000
	ms = total - s*1000
	return h, m, s, ms
}

func srtTime(sec float64) string {
	h, m, s, ms := clock(sec)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func vttTime(sec float64) string {
	h, m, s, ms := clock(sec)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func assTime(sec float64) string {
	h, m, s, ms := clock(sec)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, ms/10)
}
