package config

import (
	"github.com/forPelevin/subcue/internal/domain/merge"
	"github.com/forPelevin/subcue/internal/domain/segment"
	"github.com/forPelevin/subcue/internal/domain/subtitles"
)

const (
	defaultConfigPath      = "~/.config/subcue/config.toml"
	defaultProjectConfig   = "subcue.toml"
	defaultOutputDir       = "."
	defaultSamplesPerCue   = 3
	defaultRegionTolerance = 0.5
	defaultMinConfidence   = 70.0
	defaultWhisperBinary   = "whisper-cli"
	defaultWhisperLanguage = "auto"
	defaultWhisperCacheDir = "~/.cache/subcue/whisper"
	defaultFFmpegBinary    = "ffmpeg"
	defaultFFprobeBinary   = "ffprobe"
	defaultTranslateModel  = "anthropic/claude-3.5-sonnet"
	defaultTranslateURL    = "https://openrouter.ai"
	defaultTasksDBPath     = "~/.local/share/subcue/tasks.db"
	defaultServerListen    = "127.0.0.1:8765"
	defaultServerMaxBody   = 32 << 20
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultLogMaxSizeMB    = 100
	defaultLogMaxBackups   = 10
	defaultLogMaxAgeDays   = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Segment: Segment{
			PauseThreshold: segment.DefaultPauseThreshold,
			MaxWords:       segment.DefaultMaxWords,
			MaxDuration:    segment.DefaultMaxDuration,
		},
		Merge: Merge{
			MaxGap:      merge.DefaultMaxGap,
			MaxWords:    merge.DefaultMaxWords,
			MinDuration: merge.DefaultMinDuration,
		},
		Position: Position{
			MinConfidence: defaultMinConfidence,
			SamplesPerCue: defaultSamplesPerCue,
			Tolerance:     defaultRegionTolerance,
		},
		Style: subtitles.DefaultStyle(),
		Output: Output{
			Dir:     defaultOutputDir,
			Formats: []string{string(subtitles.FormatSRT), string(subtitles.FormatVTT), string(subtitles.FormatASS)},
		},
		Whisper: Whisper{
			Binary:   defaultWhisperBinary,
			Language: defaultWhisperLanguage,
			CacheDir: defaultWhisperCacheDir,
		},
		FFmpeg: FFmpeg{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Translation: Translation{
			Model:   defaultTranslateModel,
			BaseURL: defaultTranslateURL,
		},
		Tasks: Tasks{
			DBPath: defaultTasksDBPath,
		},
		Server: Server{
			Listen:       defaultServerListen,
			MaxBodyBytes: defaultServerMaxBody,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
			Compress:   true,
		},
	}
}
