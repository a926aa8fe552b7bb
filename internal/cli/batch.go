package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/subcue/internal/pipeline"
	"github.com/forPelevin/subcue/internal/taskstore"
)

type batchResult struct {
	input string
	sum   pipeline.Summary
	err   error
}

func newBatchCommand(a *app) *cobra.Command {
	var (
		flags runFlags
		jobs  int
	)
	cmd := &cobra.Command{
		Use:   "batch <input>...",
		Short: "Generate subtitles for several inputs concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			if jobs < 1 {
				return fmt.Errorf("--jobs must be at least 1")
			}
			base, err := flags.pipelineConfig(cmd, a)
			if err != nil {
				return err
			}
			store, err := flags.store(a)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				base.Store = store
			}

			// Validate every input before starting any run.
			cfgs := make([]pipeline.Config, len(args))
			claimed := make(map[string]string, len(args))
			for i, in := range args {
				abs, err := filepath.Abs(in)
				if err != nil {
					return err
				}
				cfgs[i] = base
				cfgs[i].Input = abs
				if err := cfgs[i].Validate(); err != nil {
					return fmt.Errorf("%s: %w", in, err)
				}
				prefix, err := cfgs[i].OutputPrefix()
				if err != nil {
					return err
				}
				if prev, ok := claimed[prefix]; ok {
					return fmt.Errorf("%s and %s would both write %s.*; rename one or run them separately", prev, in, prefix)
				}
				claimed[prefix] = in
			}

			ctx, cancel := flags.context(cmd.Context())
			defer cancel()

			results := make([]batchResult, len(cfgs))
			var g errgroup.Group
			g.SetLimit(jobs)
			for i, cfg := range cfgs {
				g.Go(func() error {
					sum, err := pipeline.Run(ctx, cfg)
					results[i] = batchResult{input: args[i], sum: sum, err: err}
					return nil
				})
			}
			_ = g.Wait()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderBatch(out, results))
			failed := 0
			for _, r := range results {
				if r.err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d inputs failed", failed, len(results))
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "Number of inputs processed at once")
	return cmd
}

func renderBatch(w io.Writer, results []batchResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := string(taskstore.StatusForError(r.err))
		detail := strings.Join(r.sum.Outputs, "\n")
		if r.err != nil {
			detail = r.err.Error()
		}
		rows = append(rows, []string{r.input, status, strconv.Itoa(r.sum.Cues), detail})
	}
	return renderTable(w, []string{"Input", "Status", "Cues", "Outputs"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft})
}
