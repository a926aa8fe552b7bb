package types

import "strings"

// WordToken is one recognized word (or punctuation-attached word) with its timing.
type WordToken struct {
	Content   string  `json:"content"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	SpeakerID string  `json:"speaker_id,omitempty"`
}

// Position is the vertical placement of a cue on screen.
type Position int

const (
	BottomCenter Position = iota
	TopCenter
	RaisedBottom
)

func (p Position) String() string {
	switch p {
	case TopCenter:
		return "top_center"
	case RaisedBottom:
		return "raised_bottom"
	default:
		return "bottom_center"
	}
}

func (p Position) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Position) UnmarshalText(b []byte) error {
	switch string(b) {
	case "top_center":
		*p = TopCenter
	case "raised_bottom":
		*p = RaisedBottom
	default:
		*p = BottomCenter
	}
	return nil
}

// Cue is one displayable subtitle unit.
type Cue struct {
	Start          float64  `json:"start"`
	End            float64  `json:"end"`
	SpeakerID      string   `json:"speaker_id,omitempty"`
	Text           []string `json:"text"`
	SpeakerChanged bool     `json:"speaker_changed,omitempty"`
	Position       Position `json:"position"`
}

func (c Cue) Duration() float64 { return c.End - c.Start }

func (c Cue) JoinedText() string { return strings.Join(c.Text, " ") }

func (c Cue) WordCount() int { return len(c.Text) }

// Clone returns a copy that shares no backing storage with c.
func (c Cue) Clone() Cue {
	out := c
	out.Text = append([]string(nil), c.Text...)
	return out
}

// CloneCues deep-copies a cue slice.
func CloneCues(cues []Cue) []Cue {
	out := make([]Cue, len(cues))
	for i, c := range cues {
		out[i] = c.Clone()
	}
	return out
}

// BoundingBox is a pixel rectangle within a video frame.
type BoundingBox struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	W int `json:"w" yaml:"w"`
	H int `json:"h" yaml:"h"`
}

// CenterY is the vertical midpoint of the box.
func (b BoundingBox) CenterY() float64 { return float64(b.Y) + float64(b.H)/2 }

// TextRegion is one observation of burned-in text at a sampled instant.
type TextRegion struct {
	Box        BoundingBox `json:"box" yaml:"box"`
	Timestamp  float64     `json:"timestamp" yaml:"timestamp"`
	Confidence float64     `json:"confidence" yaml:"confidence"`
	Text       string      `json:"text,omitempty" yaml:"text,omitempty"`
}

// Detection is a text detector's answer for one video.
type Detection struct {
	FrameWidth  int          `json:"frame_width" yaml:"frame_width"`
	FrameHeight int          `json:"frame_height" yaml:"frame_height"`
	Regions     []TextRegion `json:"regions" yaml:"regions"`
}
