package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// Available reports whether ffmpeg and ffprobe are on PATH.
func (a *Adapter) Available() bool {
	for _, bin := range []string{a.ffmpeg, a.ffprobe} {
		if _, err := exec.LookPath(bin); err != nil {
			return false
		}
	}
	return true
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inMedia, outWav string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inMedia,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) ProbeFrameSize(ctx context.Context, inMedia string) (int, int, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		inMedia,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe frame size: %w\n%s", err, string(b))
	}
	return parseFrameSize(string(b))
}

// parseFrameSize reads ffprobe's "WIDTHxHEIGHT" output.
func parseFrameSize(out string) (int, int, error) {
	line := strings.TrimSpace(out)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	w, h, ok := strings.Cut(line, "x")
	if !ok {
		return 0, 0, fmt.Errorf("parse frame size %q: no video stream", line)
	}
	width, errW := strconv.Atoi(strings.TrimSpace(w))
	height, errH := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(h, "x")))
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("parse frame size %q", line)
	}
	return width, height, nil
}
