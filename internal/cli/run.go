package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/subcue/internal/config"
	"github.com/forPelevin/subcue/internal/pipeline"
	"github.com/forPelevin/subcue/internal/taskstore"
)

// runFlags are shared by generate and batch.
type runFlags struct {
	outDir      string
	formats     []string
	regions     string
	frameHeight int
	cleanup     bool
	translate   string
	noHistory   bool
	timeout     time.Duration
}

func (f *runFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.outDir, "out", "", "Output directory (default from config)")
	fs.StringSliceVarP(&f.formats, "format", "f", nil, "Output formats: srt, vtt, ass, srt-vlc (repeatable or comma separated)")
	fs.StringVar(&f.regions, "regions", "", "JSON or YAML file with detected on-screen text regions")
	fs.IntVar(&f.frameHeight, "frame-height", 0, "Video frame height in pixels for region positioning")
	fs.BoolVar(&f.cleanup, "cleanup", false, "Normalize punctuation and casing in cue text")
	fs.StringVar(&f.translate, "translate", "", "Translate cue text to this language via OpenRouter")
	fs.BoolVar(&f.noHistory, "no-history", false, "Do not record the run in the task history")
	fs.DurationVar(&f.timeout, "timeout", 3*time.Hour, "Abort a run after this long")

	// Hidden tuning flag
	fs.Float64("pause", 0, "Pause threshold in seconds that splits cues")
	_ = fs.MarkHidden("pause")
}

// pipelineConfig merges configuration with flags the user actually set.
func (f *runFlags) pipelineConfig(cmd *cobra.Command, a *app) (pipeline.Config, error) {
	cfg := pipeline.FromConfig(a.cfg)
	cfg.Logger = a.log

	fs := cmd.Flags()
	if fs.Changed("out") {
		cfg.OutDir = f.outDir
	}
	if fs.Changed("format") {
		formats, err := config.ParseFormats(f.formats)
		if err != nil {
			return cfg, err
		}
		cfg.Formats = formats
	}
	if fs.Changed("regions") {
		abs, err := filepath.Abs(f.regions)
		if err != nil {
			return cfg, err
		}
		cfg.RegionsFile = abs
	}
	if f.frameHeight < 0 {
		return cfg, fmt.Errorf("--frame-height must not be negative")
	}
	cfg.Position.FrameHeight = f.frameHeight
	if fs.Changed("cleanup") {
		cfg.Cleanup = f.cleanup
	}
	if fs.Changed("translate") {
		cfg.TargetLang = strings.TrimSpace(f.translate)
	}
	if fs.Changed("pause") {
		cfg.Segment.PauseThreshold, _ = fs.GetFloat64("pause")
	}
	return cfg, nil
}

func (f *runFlags) store(a *app) (*taskstore.Store, error) {
	if f.noHistory {
		return nil, nil
	}
	return a.openStore()
}

func (f *runFlags) context(parent context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, f.timeout)
}

func newGenerateCommand(a *app) *cobra.Command {
	var (
		flags runFlags
		name  string
		video string
	)
	cmd := &cobra.Command{
		Use:   "generate <transcript.json|media>",
		Short: "Generate subtitle files for one transcript or media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			absIn, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			cfg, err := flags.pipelineConfig(cmd, a)
			if err != nil {
				return err
			}
			cfg.Input = absIn
			cfg.BaseName = name
			if video != "" {
				if cfg.VideoPath, err = filepath.Abs(video); err != nil {
					return err
				}
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}

			store, err := flags.store(a)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				cfg.Store = store
			}

			ctx, cancel := flags.context(cmd.Context())
			defer cancel()
			sum, err := pipeline.Run(ctx, cfg)
			if err != nil {
				return err
			}
			printSummary(cmd, sum)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "Base name for output files (default input file name)")
	cmd.Flags().StringVar(&video, "video", "", "Video to probe for frame size when the input is a transcript")
	return cmd
}

func printSummary(cmd *cobra.Command, sum pipeline.Summary) {
	out := cmd.OutOrStdout()
	for _, p := range sum.Outputs {
		fmt.Fprintf(out, "wrote %s\n", p)
	}
	fmt.Fprintf(out, "%d cues", sum.Cues)
	if sum.Skipped > 0 {
		fmt.Fprintf(out, ", %d transcript items skipped", sum.Skipped)
	}
	if sum.TaskID != "" {
		fmt.Fprintf(out, " (task %s)", sum.TaskID)
	}
	fmt.Fprintln(out)
	for _, stage := range sum.Degraded {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s unavailable, continued without it\n", strings.ReplaceAll(stage, "_", " "))
	}
}
