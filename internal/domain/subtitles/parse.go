package subtitles

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedSubtitle marks SRT or WebVTT text that cannot be read back.
var ErrMalformedSubtitle = errors.New("malformed subtitle document")

// ParsedCue is one cue read from an SRT or WebVTT document.
type ParsedCue struct {
	ID    string
	Start float64
	End   float64
	Lines []string
}

// ParseSRT reads SubRip text.
func ParseSRT(data []byte) ([]ParsedCue, error) {
	var out []ParsedCue
	for i, block := range blocks(string(data)) {
		lines := strings.Split(block, "\n")
		id := ""
		if !strings.Contains(lines[0], "-->") {
			id = strings.TrimSpace(lines[0])
			lines = lines[1:]
		}
		if len(lines) == 0 {
			return nil, fmt.Errorf("%w: block %d has no timing line", ErrMalformedSubtitle, i+1)
		}
		start, end, err := parseTimingLine(lines[0])
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", ErrMalformedSubtitle, i+1, err)
		}
		out = append(out, ParsedCue{ID: id, Start: start, End: end, Lines: lines[1:]})
	}
	return out, nil
}

// ParseVTT reads WebVTT text. NOTE, STYLE and REGION blocks are skipped and
// cue settings after the end timestamp are ignored.
func ParseVTT(data []byte) ([]ParsedCue, error) {
	bs := blocks(string(data))
	if len(bs) == 0 || !strings.HasPrefix(bs[0], "WEBVTT") {
		return nil, fmt.Errorf("%w: missing WEBVTT header", ErrMalformedSubtitle)
	}
	var out []ParsedCue
	for i, block := range bs[1:] {
		if strings.HasPrefix(block, "NOTE") || strings.HasPrefix(block, "STYLE") || strings.HasPrefix(block, "REGION") {
			continue
		}
		lines := strings.Split(block, "\n")
		id := ""
		if !strings.Contains(lines[0], "-->") {
			id = strings.TrimSpace(lines[0])
			lines = lines[1:]
		}
		if len(lines) == 0 {
			return nil, fmt.Errorf("%w: block %d has no timing line", ErrMalformedSubtitle, i+2)
		}
		start, end, err := parseTimingLine(lines[0])
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", ErrMalformedSubtitle, i+2, err)
		}
		out = append(out, ParsedCue{ID: id, Start: start, End: end, Lines: lines[1:]})
	}
	return out, nil
}

// Issues lists structural problems in parsed cues; an empty result means the
// document passed.
func Issues(cues []ParsedCue) []string {
	if len(cues) == 0 {
		return []string{"empty_subtitle_file"}
	}
	var issues []string
	for i, c := range cues {
		if c.End < c.Start {
			issues = append(issues, fmt.Sprintf("cue %d: end before start", i+1))
		}
		if len(c.Lines) == 0 {
			issues = append(issues, fmt.Sprintf("cue %d: no text", i+1))
		}
		if i > 0 && c.Start < cues[i-1].End {
			issues = append(issues, fmt.Sprintf("cue %d: overlaps previous cue by %.3fs", i+1, cues[i-1].End-c.Start))
		}
	}
	return issues
}

func blocks(content string) []string {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var out []string
	for _, b := range strings.Split(content, "\n\n") {
		if b = strings.Trim(b, "\n"); strings.TrimSpace(b) != "" {
			out = append(out, b)
		}
	}
	return out
}

func parseTimingLine(line string) (float64, float64, error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	endFields := strings.Fields(parts[1])
	if len(endFields) == 0 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	start, err := parseTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := parseTimestamp(endFields[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseTimestamp accepts HH:MM:SS,mmm, HH:MM:SS.mmm and the WebVTT short form MM:SS.mmm.
func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ",", ".")
	timeParts := strings.Split(value, ".")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) == 2 {
		hms = append([]string{"0"}, hms...)
	}
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil || len(timeParts[1]) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
