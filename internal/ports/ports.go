package ports

import (
	"context"

	"github.com/forPelevin/subcue/internal/types"
)

type VideoTool interface {
	ExtractAudioMono16k(ctx context.Context, inMedia, outWav string) error
	// ProbeFrameSize returns the width and height of the first video stream.
	ProbeFrameSize(ctx context.Context, inMedia string) (width, height int, err error)
}

// ASR returns a raw transcript document in any shape the token normalizer accepts.
type ASR interface {
	Transcribe(ctx context.Context, wavPath, cacheDir string) ([]byte, error)
}

// TextDetector reports burned-in text observed at (or near) the sample instants.
type TextDetector interface {
	DetectText(ctx context.Context, videoPath string, samples []float64) (types.Detection, error)
}

// Translator returns one translation per input text, in order.
type Translator interface {
	Translate(ctx context.Context, texts []string, targetLang string) ([]string, error)
}
