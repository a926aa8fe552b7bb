package ffmpeg

import "testing"

func TestParseFrameSize(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{in: "1920x1080\n", w: 1920, h: 1080},
		{in: "1280x720x\n", w: 1280, h: 720},
		{in: "640x360\n640x360\n", w: 640, h: 360},
		{in: "", wantErr: true},
		{in: "N/A", wantErr: true},
		{in: "0x0", wantErr: true},
	}
	for _, tt := range tests {
		w, h, err := parseFrameSize(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseFrameSize(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseFrameSize(%q): %v", tt.in, err)
		}
		if w != tt.w || h != tt.h {
			t.Fatalf("parseFrameSize(%q) = %dx%d", tt.in, w, h)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	a := New("", "")
	if a.ffmpeg != "ffmpeg" || a.ffprobe != "ffprobe" {
		t.Fatalf("unexpected defaults: %+v", a)
	}
}
