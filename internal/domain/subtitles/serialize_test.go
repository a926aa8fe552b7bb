package subtitles

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/forPelevin/subcue/internal/types"
)

func oneCue(text string) []types.Cue {
	return []types.Cue{{Start: 0, End: 1.0, Text: strings.Fields(text)}}
}

func TestSerialize_SingleCue(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatSRT, "1\n00:00:00,000 --> 00:00:01,000\nHi\n\n"},
		{FormatVTT, "WEBVTT\n\ncue1\n00:00:00.000 --> 00:00:01.000\nHi\n\n"},
		{FormatSRTVLC, "1\n00:00:00,000 --> 00:00:01,000\n{\\an2}Hi\n\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			got, err := Serialize(oneCue("Hi"), tt.format, StyleOptions{})
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("got:\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestSerialize_ASS(t *testing.T) {
	got, err := Serialize(oneCue("Hi"), FormatASS, DefaultStyle())
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	s := string(got)
	for _, want := range []string{
		"[Script Info]\n",
		"PlayResX: 1280\n",
		"PlayResY: 720\n",
		"Style: Default,Arial,24,&H00FFFFFF,&H000000FF,&H00000000,&H80000000,0,0,0,0,100,100,0,0,1,2,3,2,10,10,10,1\n",
		"Style: Top,Arial,24,&H00FFFFFF,&H000000FF,&H00000000,&H80000000,0,0,0,0,100,100,0,0,1,2,3,8,10,10,10,1\n",
		"[Events]\n",
		"Dialogue: 0,0:00:00.00,0:00:01.00,Default,,0,0,0,,Hi\n",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, s)
		}
	}
	if strings.Contains(s, "Style: RaisedBottom") {
		t.Fatalf("raised style emitted without a raised cue")
	}
}

func TestSerialize_ASSPositionsAndStyle(t *testing.T) {
	cues := []types.Cue{
		{Start: 1, End: 2, Text: []string{"top"}, Position: types.TopCenter},
		{Start: 3, End: 4, Text: []string{"{raised}"}, Position: types.RaisedBottom},
	}
	style := StyleOptions{FontName: "Inter", FontSize: 40, Bold: true, RaisedMarginV: 90}
	got, err := Serialize(cues, FormatASS, style)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	s := string(got)
	for _, want := range []string{
		"Style: RaisedBottom,Inter,40,&H00FFFFFF,&H000000FF,&H00000000,&H80000000,-1,0,0,0,100,100,0,0,1,0,0,2,10,10,90,1\n",
		"Dialogue: 0,0:00:01.00,0:00:02.00,Top,,0,0,0,,top\n",
		"Dialogue: 0,0:00:03.00,0:00:04.00,RaisedBottom,,0,0,0,,(raised)\n",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, s)
		}
	}
}

func TestSerialize_ASSOutlineAndShadow(t *testing.T) {
	tests := []struct {
		name    string
		outline float64
		shadow  float64
		want    string
	}{
		{"explicit zeros", 0, 0, ",0,0,1,0,0,2,10,10,10,1\n"},
		{"custom widths", 1.5, 0, ",0,0,1,1.5,0,2,10,10,10,1\n"},
		{"negative falls back", -1, -1, ",0,0,1,2,3,2,10,10,10,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := DefaultStyle()
			style.OutlineWidth, style.ShadowDepth = tt.outline, tt.shadow
			got, err := Serialize(oneCue("Hi"), FormatASS, style)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			var line string
			for _, l := range strings.Split(string(got), "\n") {
				if strings.HasPrefix(l, "Style: Default,") {
					line = l + "\n"
				}
			}
			if !strings.HasSuffix(line, tt.want) {
				t.Fatalf("Default style line %q, want suffix %q", line, tt.want)
			}
		})
	}
}

func TestSerialize_SpeakerMarker(t *testing.T) {
	cues := []types.Cue{
		{Start: 0, End: 1, Text: []string{"Hello", "there,"}},
		{Start: 2, End: 3, Text: []string{"Bob"}, SpeakerChanged: true},
	}
	got, err := Serialize(cues, FormatSRT, StyleOptions{})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,000\nHello there,\n\n" +
		"2\n00:00:02,000 --> 00:00:03,000\n-- Bob\n\n"
	if string(got) != want {
		t.Fatalf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestSerialize_VTTPositionAndEscaping(t *testing.T) {
	cues := []types.Cue{{Start: 0, End: 1, Text: []string{"a", "<b>", "&", "c"}, Position: types.TopCenter}}
	got, err := Serialize(cues, FormatVTT, StyleOptions{})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := "WEBVTT\n\ncue1\n00:00:00.000 --> 00:00:01.000 line:10% align:center\na &lt;b&gt; &amp; c\n\n"
	if string(got) != want {
		t.Fatalf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestSerialize_UnsupportedFormat(t *testing.T) {
	_, err := Serialize(oneCue("x"), Format("sbv"), StyleOptions{})
	if !errors.Is(err, types.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestCueLines(t *testing.T) {
	tests := []struct {
		name string
		cue  types.Cue
		want []string
	}{
		{"single line", types.Cue{Text: []string{"just", "one"}}, []string{"just one"}},
		{"two lines kept", types.Cue{Text: []string{"a\nb"}}, []string{"a", "b"}},
		{"three long lines split at midpoint", types.Cue{Text: []string{"a\nb\nc", "d", "e", "f", "g", "h"}}, []string{"a b c d", "e f g h"}},
		{"three short lines collapse", types.Cue{Text: []string{"a\nb\nc"}}, []string{"a b c"}},
		{"marker survives reflow", types.Cue{Text: []string{"a\nb\nc", "d", "e", "f", "g"}, SpeakerChanged: true}, []string{"-- a b c", "d e f g"}},
		{"marker on short cue", types.Cue{Text: []string{"Yes."}, SpeakerChanged: true}, []string{"-- Yes."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CueLines(tt.cue)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("CueLines = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTimestamps(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) string
		in   float64
		want string
	}{
		{"ass minute", assTime, 61.234, "0:01:01.23"},
		{"ass hour", assTime, 3723.999, "1:02:03.99"},
		{"srt hour", srtTime, 3661.5, "01:01:01,500"},
		{"srt rounds", srtTime, 0.9, "00:00:00,900"},
		{"vtt rounds up", vttTime, 0.9996, "00:00:01.000"},
		{"negative clamps", srtTime, -2, "00:00:00,000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"srt":     FormatSRT,
		" SRT ":   FormatSRT,
		"webvtt":  FormatVTT,
		"vtt":     FormatVTT,
		"ssa":     FormatASS,
		"ass":     FormatASS,
		"srt-vlc": FormatSRTVLC,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("docx"); !errors.Is(err, types.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSanitizeASS(t *testing.T) {
	if got := sanitizeASS(`  {\b1}x  `); got != `(\\b1)x` {
		t.Fatalf("sanitizeASS = %q", got)
	}
}
