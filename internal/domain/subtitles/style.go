package subtitles

// StyleOptions controls the ASS style block. SRT and WebVTT ignore it.
// Zero fields take the values from DefaultStyle, except OutlineWidth and
// ShadowDepth: zero there means no outline or no shadow, and only negative
// values fall back to the defaults.
type StyleOptions struct {
	FontName       string  `toml:"font_name" json:"font_name,omitempty"`
	FontSize       int     `toml:"font_size" json:"font_size,omitempty"`
	PrimaryColor   string  `toml:"primary_color" json:"primary_color,omitempty"`
	SecondaryColor string  `toml:"secondary_color" json:"secondary_color,omitempty"`
	OutlineColor   string  `toml:"outline_color" json:"outline_color,omitempty"`
	BackColor      string  `toml:"back_color" json:"back_color,omitempty"`
	Bold           bool    `toml:"bold" json:"bold,omitempty"`
	Italic         bool    `toml:"italic" json:"italic,omitempty"`
	OutlineWidth   float64 `toml:"outline_width" json:"outline_width,omitempty"`
	ShadowDepth    float64 `toml:"shadow_depth" json:"shadow_depth,omitempty"`
	PlayResX       int     `toml:"play_res_x" json:"play_res_x,omitempty"`
	PlayResY       int     `toml:"play_res_y" json:"play_res_y,omitempty"`
	MarginV        int     `toml:"margin_v" json:"margin_v,omitempty"`
	// RaisedMarginV lifts bottom cues above burned-in lower-third text.
	RaisedMarginV int `toml:"raised_margin_v" json:"raised_margin_v,omitempty"`
}

func DefaultStyle() StyleOptions {
	return StyleOptions{
		FontName:       "Arial",
		FontSize:       24,
		PrimaryColor:   "&H00FFFFFF",
		SecondaryColor: "&H000000FF",
		OutlineColor:   "&H00000000",
		BackColor:      "&H80000000",
		OutlineWidth:   2,
		ShadowDepth:    3,
		PlayResX:       1280,
		PlayResY:       720,
		MarginV:        10,
		RaisedMarginV:  70,
	}
}

func (s StyleOptions) withDefaults() StyleOptions {
	d := DefaultStyle()
	if s.FontName == "" {
		s.FontName = d.FontName
	}
	if s.FontSize <= 0 {
		s.FontSize = d.FontSize
	}
	if s.PrimaryColor == "" {
		s.PrimaryColor = d.PrimaryColor
	}
	if s.SecondaryColor == "" {
		s.SecondaryColor = d.SecondaryColor
	}
	if s.OutlineColor == "" {
		s.OutlineColor = d.OutlineColor
	}
	if s.BackColor == "" {
		s.BackColor = d.BackColor
	}
	if s.OutlineWidth < 0 {
		s.OutlineWidth = d.OutlineWidth
	}
	if s.ShadowDepth < 0 {
		s.ShadowDepth = d.ShadowDepth
	}
	if s.PlayResX <= 0 {
		s.PlayResX = d.PlayResX
	}
	if s.PlayResY <= 0 {
		s.PlayResY = d.PlayResY
	}
	if s.MarginV <= 0 {
		s.MarginV = d.MarginV
	}
	if s.RaisedMarginV <= 0 {
		s.RaisedMarginV = d.RaisedMarginV
	}
	return s
}
