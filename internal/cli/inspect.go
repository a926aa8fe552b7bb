package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forPelevin/subcue/internal/domain/subtitles"
	"github.com/forPelevin/subcue/internal/pipeline"
	"github.com/forPelevin/subcue/internal/usecase"
)

func newInspectCommand(a *app) *cobra.Command {
	var (
		regions     string
		frameHeight int
		cleanup     bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <transcript.json>",
		Short: "Show the cues a transcript produces without writing files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}

			cfg := pipeline.FromConfig(a.cfg)
			cfg.Logger = a.log
			if regions != "" {
				if cfg.RegionsFile, err = filepath.Abs(regions); err != nil {
					return err
				}
			}
			uc, _ := pipeline.NewUsecase(cfg)

			in := usecase.Input{
				Transcript:    raw,
				Formats:       []subtitles.Format{subtitles.FormatSRT},
				Style:         cfg.Style,
				Segment:       cfg.Segment,
				Merge:         cfg.Merge,
				Position:      cfg.Position,
				SamplesPerCue: cfg.SamplesPerCue,
				Cleanup:       cleanup || cfg.Cleanup,
			}
			in.Position.FrameHeight = frameHeight
			res, err := uc.Run(cmd.Context(), in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(res.Cues))
			for i, c := range res.Cues {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					fmt.Sprintf("%.3f", c.Start),
					fmt.Sprintf("%.3f", c.End),
					c.SpeakerID,
					c.Position.String(),
					strings.Join(subtitles.CueLines(c), " / "),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"#", "Start", "End", "Speaker", "Position", "Text"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
			))

			labels := "no"
			if res.HasSpeakerLabels {
				labels = "yes"
			}
			fmt.Fprintf(out, "shape: %s, cues: %d, speaker labels: %s, skipped items: %d\n",
				res.Shape, len(res.Cues), labels, len(res.Skipped))
			for _, sk := range res.Skipped {
				fmt.Fprintf(out, "  skipped %s\n", sk.Error())
			}
			for _, stage := range res.Degraded {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s failed, default placement used\n", stage)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&regions, "regions", "", "JSON or YAML file with detected on-screen text regions")
	cmd.Flags().IntVar(&frameHeight, "frame-height", 0, "Video frame height in pixels for region positioning")
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "Normalize punctuation and casing in cue text")
	return cmd
}
