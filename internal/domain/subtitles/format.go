package subtitles

import (
	"fmt"
	"strings"

	"github.com/forPelevin/subcue/internal/types"
)

// Format names an output subtitle encoding.
type Format string

const (
	FormatSRT    Format = "srt"
	FormatVTT    Format = "vtt"
	FormatASS    Format = "ass"
	FormatSRTVLC Format = "srt-vlc"
)

// Formats lists every supported format in a stable order.
func Formats() []Format {
	return []Format{FormatSRT, FormatVTT, FormatASS, FormatSRTVLC}
}

// ParseFormat maps a user-supplied name (case-insensitive, aliases allowed) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "srt", "subrip":
		return FormatSRT, nil
	case "vtt", "webvtt":
		return FormatVTT, nil
	case "ass", "ssa":
		return FormatASS, nil
	case "srt-vlc", "vlc", "vlc-srt":
		return FormatSRTVLC, nil
	default:
		return "", fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, s)
	}
}

// Extension is the file extension, without the dot, for f.
func Extension(f Format) string {
	switch f {
	case FormatSRTVLC:
		return "vlc.srt"
	default:
		return string(f)
	}
}

// ContentType is the MIME type served for f.
func ContentType(f Format) string {
	switch f {
	case FormatVTT:
		return "text/vtt; charset=utf-8"
	case FormatASS:
		return "text/x-ssa; charset=utf-8"
	default:
		return "application/x-subrip; charset=utf-8"
	}
}
