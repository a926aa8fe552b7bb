package pipeline

import (
	"github.com/forPelevin/subcue/internal/metrics"
	"github.com/forPelevin/subcue/internal/ports"
	"github.com/forPelevin/subcue/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/subcue/internal/ports/adapters/openrouter"
	"github.com/forPelevin/subcue/internal/ports/adapters/regionfile"
	"github.com/forPelevin/subcue/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/subcue/internal/usecase"
)

// NewUsecase builds adapters from cfg and decides, once, which optional
// collaborators are usable.
func NewUsecase(cfg Config) (usecase.Usecase, usecase.Capabilities) {
	v := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	asr := whispercpp.New(cfg.WhisperBin, cfg.WhisperModel, cfg.WhisperLanguage)
	regions := regionfile.New(cfg.RegionsFile).
		WithTolerance(cfg.RegionTolerance).
		WithMinConfidence(cfg.RegionMinConfidence)
	tr := openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL)

	caps := usecase.Capabilities{
		ASR:           asr.Available() && v.Available(),
		TextDetection: regions.Available(),
		Translation:   cfg.OpenRouterAPIKey != "" && openrouter.ValidateBaseURL(cfg.OpenRouterBaseURL, cfg.OpenRouterAllowedHosts) == nil,
	}
	metrics.SetCapability("asr", caps.ASR)
	metrics.SetCapability("text_detection", caps.TextDetection)
	metrics.SetCapability("translation", caps.Translation)

	deps := usecase.Deps{
		Video:      v,
		ASR:        asr,
		Detector:   regions,
		Translator: tr,
		Logger:     cfg.Logger,
	}
	return usecase.New(deps, caps), caps
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ ports.TextDetector = (*regionfile.Adapter)(nil)
var _ ports.Translator = (*openrouter.Adapter)(nil)
