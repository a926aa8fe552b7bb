package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/subcue/internal/taskstore"
)

func newTasksCommand(a *app) *cobra.Command {
	var (
		statuses []string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List recorded subtitle runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			var filter []taskstore.Status
			for _, s := range statuses {
				for _, part := range strings.Split(s, ",") {
					if strings.TrimSpace(part) == "" {
						continue
					}
					st, err := taskstore.ParseStatus(part)
					if err != nil {
						return err
					}
					filter = append(filter, st)
				}
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			tasks, err := store.List(cmd.Context(), limit, filter...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "no tasks")
				return nil
			}
			rows := make([][]string, 0, len(tasks))
			for _, t := range tasks {
				rows = append(rows, []string{
					t.ID,
					string(t.Status),
					strconv.Itoa(t.CueCount),
					t.Source,
					t.UpdatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"ID", "Status", "Cues", "Source", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only show these statuses (pending, processing, completed, failed, cancelled)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of tasks to show (0 for all)")
	cmd.AddCommand(newTaskShowCommand(a))
	return cmd
}

func newTaskShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			t, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if t == nil {
				return fmt.Errorf("%w: %s", taskstore.ErrNotFound, args[0])
			}

			rows := [][]string{
				{"ID", t.ID},
				{"Source", t.Source},
				{"Status", string(t.Status)},
				{"Formats", strings.Join(t.Formats, ", ")},
				{"Cues", strconv.Itoa(t.CueCount)},
				{"Outputs", strings.Join(t.Outputs, "\n")},
				{"Message", t.Message},
				{"Created", t.CreatedAt.Local().Format(time.DateTime)},
				{"Updated", t.UpdatedAt.Local().Format(time.DateTime)},
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}
