//go:build integration

package itest

import (
	"encoding/json"
	"fmt"
	"os/exec"
)

// probeDimensions asks ffprobe for JSON stream info, an independent reference
// for the adapter's csv parsing.
func probeDimensions(path string) (int, int, error) {
	b, err := exec.Command("ffprobe", "-v", "error", "-of", "json", "-show_streams", path).Output()
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	var info struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(b, &info); err != nil {
		return 0, 0, fmt.Errorf("decode ffprobe json: %w", err)
	}
	for _, s := range info.Streams {
		if s.CodecType == "video" {
			return s.Width, s.Height, nil
		}
	}
	return 0, 0, fmt.Errorf("%s has no video stream", path)
}
