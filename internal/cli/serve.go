package cli

import (
	"github.com/spf13/cobra"

	"github.com/forPelevin/subcue/internal/pipeline"
	"github.com/forPelevin/subcue/internal/server"
	"github.com/forPelevin/subcue/internal/usecase"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		listen    string
		noHistory bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the subtitle API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			addr := a.cfg.Server.Listen
			if cmd.Flags().Changed("listen") {
				addr = listen
			}

			cfg := pipeline.FromConfig(a.cfg)
			cfg.Logger = a.log
			uc, caps := pipeline.NewUsecase(cfg)

			opts := server.Options{
				Usecase:      uc,
				Capabilities: caps,
				Template: usecase.Input{
					Style:         cfg.Style,
					Segment:       cfg.Segment,
					Merge:         cfg.Merge,
					Position:      cfg.Position,
					SamplesPerCue: cfg.SamplesPerCue,
					Cleanup:       cfg.Cleanup,
				},
				Logger:       a.log,
				MaxBodyBytes: a.cfg.Server.MaxBodyBytes,
			}
			if !noHistory {
				store, err := a.openStore()
				if err != nil {
					return err
				}
				defer store.Close()
				opts.Store = store
			}
			return server.New(opts).ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Address to listen on (default from config)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record requests in the task history")
	return cmd
}
