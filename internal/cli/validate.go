package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forPelevin/subcue/internal/domain/subtitles"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.srt|file.vtt>...",
		Short: "Check SubRip or WebVTT files for timing and structure problems",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			bad := 0
			for _, path := range args {
				issues, n, err := validateFile(path)
				if err != nil {
					return err
				}
				if len(issues) == 0 {
					fmt.Fprintf(out, "%s: ok (%d cues)\n", path, n)
					continue
				}
				bad++
				fmt.Fprintf(out, "%s: %d issue(s)\n", path, len(issues))
				for _, is := range issues {
					fmt.Fprintf(out, "  %s\n", is)
				}
			}
			if bad > 0 {
				return fmt.Errorf("%d of %d files have issues", bad, len(args))
			}
			return nil
		},
	}
}

func validateFile(path string) ([]string, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	parse := subtitles.ParseSRT
	if strings.EqualFold(filepath.Ext(path), ".vtt") {
		parse = subtitles.ParseVTT
	}
	cues, err := parse(data)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	return subtitles.Issues(cues), len(cues), nil
}
