package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/forPelevin/subcue/internal/domain/merge"
	"github.com/forPelevin/subcue/internal/domain/position"
	"github.com/forPelevin/subcue/internal/domain/segment"
	"github.com/forPelevin/subcue/internal/domain/speaker"
	"github.com/forPelevin/subcue/internal/domain/subtitles"
	"github.com/forPelevin/subcue/internal/domain/textclean"
	"github.com/forPelevin/subcue/internal/domain/tokens"
	"github.com/forPelevin/subcue/internal/logging"
	"github.com/forPelevin/subcue/internal/metrics"
	"github.com/forPelevin/subcue/internal/ports"
	"github.com/forPelevin/subcue/internal/types"
)

// ErrNoTranscript is returned when there is neither a transcript nor a way to make one.
var ErrNoTranscript = errors.New("no transcript given and speech recognition is unavailable")

type Deps struct {
	Video      ports.VideoTool
	ASR        ports.ASR
	Detector   ports.TextDetector
	Translator ports.Translator
	Logger     *slog.Logger
}

// Capabilities says which optional collaborators may be used. They are
// decided once by the caller; a false flag skips the stage entirely.
type Capabilities struct {
	ASR           bool
	TextDetection bool
	Translation   bool
}

type Usecase struct {
	d    Deps
	caps Capabilities
}

func New(d Deps, caps Capabilities) Usecase {
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	return Usecase{d: d, caps: caps}
}

type Input struct {
	// Transcript is raw transcript JSON. When empty, MediaPath is transcribed.
	Transcript []byte
	MediaPath  string
	// VideoPath is inspected for burned-in text; defaults to MediaPath.
	VideoPath string
	CacheDir  string

	Formats  []subtitles.Format
	Style    subtitles.StyleOptions
	Segment  segment.Options
	Merge    merge.Options
	Position position.Options
	// SamplesPerCue bounds how many frames per cue the detector is asked about.
	SamplesPerCue int
	// Regions, when non-nil, are used instead of asking the detector.
	Regions []types.TextRegion

	Cleanup    bool
	TargetLang string
}

// Output is one serialized subtitle document.
type Output struct {
	Format    subtitles.Format
	Extension string
	Data      []byte
}

type Result struct {
	Cues             []types.Cue
	Outputs          []Output
	Skipped          []tokens.Skipped
	HasSpeakerLabels bool
	Shape            tokens.Shape
	// Degraded lists optional stages that failed and were skipped.
	Degraded []string
}

// Run turns one transcript into subtitle documents. It checks ctx between
// stages only; no stage is interrupted midway. Nothing is written to disk.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	log := u.d.Logger
	var res Result

	if len(in.Formats) == 0 {
		return res, fmt.Errorf("%w: no output formats requested", types.ErrUnsupportedFormat)
	}

	raw := in.Transcript
	if len(raw) == 0 {
		var err error
		if raw, err = u.transcribe(ctx, in); err != nil {
			return res, err
		}
	}
	if err := checkpoint(ctx, "normalize"); err != nil {
		return res, err
	}

	start := time.Now()
	norm, err := tokens.Normalize(raw)
	metrics.RecordStageDuration("normalize", time.Since(start).Seconds())
	res.Skipped = norm.Skipped
	res.HasSpeakerLabels = norm.HasSpeakerLabels
	res.Shape = norm.Shape
	for _, sk := range norm.Skipped {
		metrics.RecordTokenSkipped(sk.Reason)
		log.Warn("transcript item skipped", logging.Args(
			logging.String(logging.FieldStage, "normalize"),
			logging.Int("index", sk.Index),
			logging.String("reason", sk.Reason),
		)...)
	}
	if err != nil {
		return res, fmt.Errorf("normalize transcript: %w", err)
	}
	log.Debug("transcript normalized", logging.Args(
		logging.String("shape", string(norm.Shape)),
		logging.Int("tokens", len(norm.Tokens)),
		logging.Bool("speaker_labels", norm.HasSpeakerLabels),
	)...)

	if err := checkpoint(ctx, "segment"); err != nil {
		return res, err
	}
	start = time.Now()
	cues, err := segment.Segment(norm.Tokens, in.Segment)
	metrics.RecordStageDuration("segment", time.Since(start).Seconds())
	if err != nil {
		return res, fmt.Errorf("segment: %w", err)
	}

	if err := checkpoint(ctx, "merge"); err != nil {
		return res, err
	}
	start = time.Now()
	cues = merge.Merge(cues, in.Merge)
	metrics.RecordStageDuration("merge", time.Since(start).Seconds())

	if in.Cleanup {
		if err := checkpoint(ctx, "cleanup"); err != nil {
			return res, err
		}
		var stats textclean.CleanStats
		cues, stats = textclean.CleanCues(cues)
		log.Debug("cue text cleaned", logging.Args(logging.Int("changed_cues", stats.ChangedCues))...)
	}

	if err := checkpoint(ctx, "speaker"); err != nil {
		return res, err
	}
	cues = speaker.NewMarker().Mark(cues, norm.HasSpeakerLabels)

	if in.TargetLang != "" {
		if err := checkpoint(ctx, "translate"); err != nil {
			return res, err
		}
		translated, ok := u.translate(ctx, cues, in.TargetLang)
		if ok {
			cues = translated
		} else {
			res.Degraded = append(res.Degraded, "translation")
		}
	}

	if err := checkpoint(ctx, "position"); err != nil {
		return res, err
	}
	regions, frameHeight, ok := u.regions(ctx, cues, in)
	if !ok {
		res.Degraded = append(res.Degraded, "text_detection")
	}
	popts := in.Position
	popts.FrameHeight = frameHeight
	cues = position.Resolve(cues, regions, popts)

	if err := checkpoint(ctx, "serialize"); err != nil {
		return res, err
	}
	start = time.Now()
	outputs := make([]Output, 0, len(in.Formats))
	for _, f := range in.Formats {
		data, err := subtitles.Serialize(cues, f, in.Style)
		if err != nil {
			return res, fmt.Errorf("serialize %s: %w", f, err)
		}
		outputs = append(outputs, Output{Format: f, Extension: subtitles.Extension(f), Data: data})
	}
	metrics.RecordStageDuration("serialize", time.Since(start).Seconds())

	for _, c := range cues {
		metrics.RecordCue(c.Position.String())
	}
	res.Cues = cues
	res.Outputs = outputs
	return res, nil
}

func checkpoint(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("before %s: %w", stage, err)
	}
	return nil
}

func (u Usecase) transcribe(ctx context.Context, in Input) ([]byte, error) {
	if !u.caps.ASR || u.d.ASR == nil || u.d.Video == nil || in.MediaPath == "" {
		return nil, ErrNoTranscript
	}
	cacheDir := in.CacheDir
	if cacheDir == "" {
		dir, err := os.MkdirTemp("", "subcue-*")
		if err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		defer os.RemoveAll(dir)
		cacheDir = dir
	} else if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	start := time.Now()
	wav := filepath.Join(cacheDir, "audio.wav")
	if err := u.d.Video.ExtractAudioMono16k(ctx, in.MediaPath, wav); err != nil {
		return nil, err
	}
	raw, err := u.d.ASR.Transcribe(ctx, wav, cacheDir)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	metrics.RecordStageDuration("transcribe", time.Since(start).Seconds())
	return raw, nil
}

// translate replaces cue text with its translation. On any failure it logs,
// counts the degradation and reports false.
func (u Usecase) translate(ctx context.Context, cues []types.Cue, lang string) ([]types.Cue, bool) {
	log := u.d.Logger
	if !u.caps.Translation || u.d.Translator == nil {
		log.Warn("translation requested but no translator is configured", logging.Args(logging.String("target_language", lang))...)
		metrics.RecordDegraded("translation")
		return nil, false
	}

	texts := make([]string, len(cues))
	for i, c := range cues {
		texts[i] = c.JoinedText()
	}
	start := time.Now()
	got, err := u.d.Translator.Translate(ctx, texts, lang)
	metrics.RecordStageDuration("translate", time.Since(start).Seconds())
	if err == nil && len(got) != len(texts) {
		err = fmt.Errorf("translator returned %d texts for %d cues", len(got), len(texts))
	}
	if err != nil {
		log.Warn("translation failed; keeping original text", logging.Args(logging.Error(err))...)
		metrics.RecordDegraded("translation")
		return nil, false
	}

	out := types.CloneCues(cues)
	for i := range out {
		if words := strings.Fields(got[i]); len(words) > 0 {
			out[i].Text = words
		}
	}
	return out, true
}

// regions returns the text observations and frame height for positioning.
// ok is false when a detector was available but failed, or when regions
// exist but no frame height can be found.
func (u Usecase) regions(ctx context.Context, cues []types.Cue, in Input) ([]types.TextRegion, int, bool) {
	log := u.d.Logger
	regions := in.Regions
	frameHeight := in.Position.FrameHeight
	videoPath := in.VideoPath
	if videoPath == "" {
		videoPath = in.MediaPath
	}
	ok := true

	if regions == nil && u.caps.TextDetection && u.d.Detector != nil {
		start := time.Now()
		det, err := u.d.Detector.DetectText(ctx, videoPath, position.SampleTimestamps(cues, in.SamplesPerCue))
		metrics.RecordStageDuration("text_detection", time.Since(start).Seconds())
		if err != nil {
			log.Warn("text detection failed; using default placement", logging.Args(logging.Error(err))...)
			metrics.RecordDegraded("text_detection")
			return nil, 0, false
		}
		regions = det.Regions
		if frameHeight <= 0 {
			frameHeight = det.FrameHeight
		}
	}

	if frameHeight <= 0 && len(regions) > 0 {
		if u.d.Video == nil || videoPath == "" {
			log.Warn("regions given without a frame height; using default placement")
			metrics.RecordDegraded("text_detection")
			return regions, 0, false
		}
		_, h, err := u.d.Video.ProbeFrameSize(ctx, videoPath)
		if err != nil {
			log.Warn("frame size unknown; using default placement", logging.Args(logging.Error(err))...)
			metrics.RecordDegraded("text_detection")
			ok = false
		} else {
			frameHeight = h
		}
	}
	return regions, frameHeight, ok
}
