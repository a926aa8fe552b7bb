package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/forPelevin/subcue/internal/domain/merge"
	"github.com/forPelevin/subcue/internal/domain/position"
	"github.com/forPelevin/subcue/internal/domain/segment"
	"github.com/forPelevin/subcue/internal/domain/subtitles"
)

//go:embed sample_config.toml
var sampleConfig string

// Segment holds the segmentation thresholds.
type Segment struct {
	PauseThreshold float64 `toml:"pause_threshold"`
	MaxWords       int     `toml:"max_words"`
	MaxDuration    float64 `toml:"max_duration"`
}

// Merge holds the cue merging thresholds.
type Merge struct {
	MaxGap      float64 `toml:"max_gap"`
	MaxWords    int     `toml:"max_words"`
	MinDuration float64 `toml:"min_duration"`
}

// Position configures burned-in text avoidance.
type Position struct {
	// MinConfidence filters the regions file, on its 0-100 scale.
	MinConfidence float64 `toml:"min_confidence"`
	SamplesPerCue int     `toml:"samples_per_cue"`
	// RegionsFile points at detections written by an external vision job.
	RegionsFile string  `toml:"regions_file"`
	Tolerance   float64 `toml:"tolerance"`
}

type Output struct {
	Dir     string   `toml:"dir"`
	Formats []string `toml:"formats"`
}

type Cleanup struct {
	Enabled bool `toml:"enabled"`
}

// Whisper configures the local whisper.cpp transcriber.
type Whisper struct {
	Binary   string `toml:"binary"`
	Model    string `toml:"model"`
	Language string `toml:"language"`
	CacheDir string `toml:"cache_dir"`
}

type FFmpeg struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Translation configures the OpenRouter translator. TargetLanguage empty
// disables translation.
type Translation struct {
	TargetLanguage string   `toml:"target_language"`
	APIKey         string   `toml:"api_key"`
	Model          string   `toml:"model"`
	BaseURL        string   `toml:"base_url"`
	AllowedHosts   []string `toml:"allowed_hosts"`
}

type Tasks struct {
	DBPath string `toml:"db_path"`
}

type Server struct {
	Listen       string `toml:"listen"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Config encapsulates all configuration values for subcue.
//
// Sections by subsystem:
//   - Segment, Merge, Position, Style, Cleanup: the cue engine
//   - Output: where files go and which formats are written
//   - Whisper, FFmpeg: media input
//   - Translation: optional OpenRouter translation
//   - Tasks, Server: task history and the HTTP surface
//   - Logging: log format, level and rotation
type Config struct {
	Segment     Segment                `toml:"segment"`
	Merge       Merge                  `toml:"merge"`
	Position    Position               `toml:"position"`
	Style       subtitles.StyleOptions `toml:"style"`
	Output      Output                 `toml:"output"`
	Cleanup     Cleanup                `toml:"cleanup"`
	Whisper     Whisper                `toml:"whisper"`
	FFmpeg      FFmpeg                 `toml:"ffmpeg"`
	Translation Translation            `toml:"translation"`
	Tasks       Tasks                  `toml:"tasks"`
	Server      Server                 `toml:"server"`
	Logging     Logging                `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. An empty path
// falls back to SUBCUE_CONFIG, then the user config, then ./subcue.toml. A
// missing file is not an error: defaults are used and exists is false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv("SUBCUE_CONFIG"))
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(defaultProjectConfig)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// SegmentOptions converts the [segment] section for the segmenter.
func (c *Config) SegmentOptions() segment.Options {
	return segment.Options{
		PauseThreshold: c.Segment.PauseThreshold,
		MaxWords:       c.Segment.MaxWords,
		MaxDuration:    c.Segment.MaxDuration,
	}
}

func (c *Config) MergeOptions() merge.Options {
	return merge.Options{
		MaxGap:      c.Merge.MaxGap,
		MaxWords:    c.Merge.MaxWords,
		MinDuration: c.Merge.MinDuration,
	}
}

// PositionOptions leaves FrameHeight to be filled from the video or detections.
func (c *Config) PositionOptions() position.Options {
	return position.Options{}
}

// OutputFormats parses [output] formats in order, dropping duplicates.
func (c *Config) OutputFormats() ([]subtitles.Format, error) {
	return ParseFormats(c.Output.Formats)
}

// ParseFormats parses format names, dropping duplicates and keeping order.
func ParseFormats(names []string) ([]subtitles.Format, error) {
	seen := make(map[subtitles.Format]struct{}, len(names))
	out := make([]subtitles.Format, 0, len(names))
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			f, err := subtitles.ParseFormat(part)
			if err != nil {
				return nil, err
			}
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
