package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/forPelevin/subcue/internal/config"
	"github.com/forPelevin/subcue/internal/domain/merge"
	"github.com/forPelevin/subcue/internal/domain/position"
	"github.com/forPelevin/subcue/internal/domain/segment"
	"github.com/forPelevin/subcue/internal/domain/subtitles"
	"github.com/forPelevin/subcue/internal/logging"
	"github.com/forPelevin/subcue/internal/metrics"
	"github.com/forPelevin/subcue/internal/ports/adapters/openrouter"
	"github.com/forPelevin/subcue/internal/taskstore"
	"github.com/forPelevin/subcue/internal/usecase"
)

type Config struct {
	// Input is a transcript (.json) or a media file to transcribe.
	Input string
	// VideoPath is inspected for burned-in text. Defaults to Input for media.
	VideoPath string
	OutDir    string
	// BaseName names the output files; defaults to the input file stem.
	BaseName string
	Formats  []subtitles.Format

	Segment       segment.Options
	Merge         merge.Options
	Position      position.Options
	SamplesPerCue int
	Style         subtitles.StyleOptions
	Cleanup       bool

	RegionsFile         string
	RegionTolerance     float64
	// RegionMinConfidence filters the regions file; zero keeps everything.
	RegionMinConfidence float64

	// CacheDir is the base directory for extracted audio and raw transcripts.
	// If empty, defaults to ".cache".
	CacheDir string

	FFmpegPath  string
	FFprobePath string

	WhisperBin      string
	WhisperModel    string
	WhisperLanguage string

	TargetLang             string
	OpenRouterAPIKey       string
	OpenRouterModel        string
	OpenRouterBaseURL      string
	OpenRouterAllowedHosts []string

	Logger *slog.Logger
	// Store records task history when set.
	Store *taskstore.Store
}

// FromConfig fills a Config from loaded configuration. Input and output
// naming are left to the caller.
func FromConfig(app *config.Config) Config {
	formats, _ := app.OutputFormats()
	return Config{
		OutDir:                 app.Output.Dir,
		Formats:                formats,
		Segment:                app.SegmentOptions(),
		Merge:                  app.MergeOptions(),
		Position:               app.PositionOptions(),
		SamplesPerCue:          app.Position.SamplesPerCue,
		Style:                  app.Style,
		Cleanup:                app.Cleanup.Enabled,
		RegionsFile:            app.Position.RegionsFile,
		RegionTolerance:        app.Position.Tolerance,
		RegionMinConfidence:    app.Position.MinConfidence,
		CacheDir:               app.Whisper.CacheDir,
		FFmpegPath:             app.FFmpeg.FFmpeg,
		FFprobePath:            app.FFmpeg.FFprobe,
		WhisperBin:             app.Whisper.Binary,
		WhisperModel:           app.Whisper.Model,
		WhisperLanguage:        app.Whisper.Language,
		TargetLang:             app.Translation.TargetLanguage,
		OpenRouterAPIKey:       app.Translation.APIKey,
		OpenRouterModel:        app.Translation.Model,
		OpenRouterBaseURL:      app.Translation.BaseURL,
		OpenRouterAllowedHosts: app.Translation.AllowedHosts,
	}
}

func (c Config) Validate() error {
	if c.Input == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.Input); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if len(c.Formats) == 0 {
		return errors.New("at least one output format is required")
	}
	if !isTranscript(c.Input) && c.WhisperModel == "" {
		return fmt.Errorf("whisper model path is required to transcribe %s", filepath.Base(c.Input))
	}
	if c.TargetLang != "" {
		if c.OpenRouterAPIKey == "" {
			return errors.New("translation needs OPENROUTER_API_KEY")
		}
		return openrouter.ValidateBaseURL(c.OpenRouterBaseURL, c.OpenRouterAllowedHosts)
	}
	return nil
}

// Summary describes one finished run.
type Summary struct {
	TaskID           string
	Cues             int
	Outputs          []string
	Skipped          int
	HasSpeakerLabels bool
	Degraded         []string
}

// Run produces subtitle files for one input. Files are written only after
// every requested format serialized.
func Run(ctx context.Context, cfg Config) (Summary, error) {
	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}
	log = logging.NewComponentLogger(log, "pipeline")

	var sum Summary
	task, err := startTask(ctx, cfg)
	if err != nil {
		return sum, err
	}
	if task != nil {
		sum.TaskID = task.ID
		log = logging.WithTask(log, task.ID)
	}
	cfg.Logger = log

	sum, err = run(ctx, cfg, sum)
	finishTask(ctx, cfg, log, task, sum, err)
	return sum, err
}

func run(ctx context.Context, cfg Config, sum Summary) (Summary, error) {
	log := cfg.Logger
	uc, _ := NewUsecase(cfg)

	in := usecase.Input{
		VideoPath:     cfg.VideoPath,
		Formats:       cfg.Formats,
		Style:         cfg.Style,
		Segment:       cfg.Segment,
		Merge:         cfg.Merge,
		Position:      cfg.Position,
		SamplesPerCue: cfg.SamplesPerCue,
		Cleanup:       cfg.Cleanup,
		TargetLang:    cfg.TargetLang,
	}
	if isTranscript(cfg.Input) {
		raw, err := os.ReadFile(cfg.Input)
		if err != nil {
			return sum, fmt.Errorf("read transcript: %w", err)
		}
		in.Transcript = raw
	} else {
		in.MediaPath = cfg.Input
		baseCache := cfg.CacheDir
		if baseCache == "" {
			baseCache = ".cache"
		}
		in.CacheDir = filepath.Join(baseCache, "runs", cacheKey(cfg.Input))
		log.Info("transcribing media", logging.Args(logging.String("input", cfg.Input), logging.String("cache", in.CacheDir))...)
	}

	res, err := uc.Run(ctx, in)
	sum.Skipped = len(res.Skipped)
	sum.HasSpeakerLabels = res.HasSpeakerLabels
	sum.Degraded = res.Degraded
	if err != nil {
		return sum, err
	}
	sum.Cues = len(res.Cues)

	outDir, base := cfg.outputTarget()
	paths, err := writeOutputs(ctx, outDir, base, res.Outputs)
	if err != nil {
		return sum, err
	}
	sum.Outputs = paths
	log.Info("subtitles written", logging.Args(
		logging.Int("cues", sum.Cues),
		logging.Int("files", len(paths)),
		logging.String("out", outDir),
	)...)
	return sum, nil
}

func startTask(ctx context.Context, cfg Config) (*taskstore.Task, error) {
	if cfg.Store == nil {
		return nil, nil
	}
	names := make([]string, len(cfg.Formats))
	for i, f := range cfg.Formats {
		names[i] = string(f)
	}
	task, err := cfg.Store.Begin(ctx, cfg.Input, names)
	if err != nil {
		return nil, fmt.Errorf("record task: %w", err)
	}
	return task, nil
}

func finishTask(ctx context.Context, cfg Config, log *slog.Logger, task *taskstore.Task, sum Summary, runErr error) {
	status := taskstore.StatusForError(runErr)
	metrics.RecordTask(string(status))
	if runErr != nil {
		log.Error("task failed", logging.Args(logging.String("status", string(status)), logging.Error(runErr))...)
	}
	if task == nil {
		return
	}
	if err := cfg.Store.Finish(ctx, task.ID, sum.Cues, sum.Outputs, runErr); err != nil {
		log.Warn("could not record task outcome", logging.Args(logging.Error(err))...)
	}
}

func isTranscript(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func (c Config) outputTarget() (dir, base string) {
	dir, base = c.OutDir, c.BaseName
	if dir == "" {
		dir = "."
	}
	if base == "" {
		base = outputBase(c.Input)
	}
	return dir, base
}

// OutputPrefix is the absolute <dir>/<base> every output file of this run
// starts with.
func (c Config) OutputPrefix() (string, error) {
	dir, base := c.outputTarget()
	return filepath.Abs(filepath.Join(dir, base))
}

func outputBase(input string) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if name == "" || name == "." {
		return "subtitles"
	}
	return name
}

// cacheKey names the per-input cache directory: a readable stem plus a hash
// of the full path, so equal stems in different folders do not collide.
func cacheKey(input string) string {
	if stem := safeName(outputBase(input)); stem != "" {
		return stem + "-" + hash(input)
	}
	return hash(input)
}

// safeName reduces s to lowercase letters, digits and single dashes.
func safeName(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}
