package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/forPelevin/subcue/internal/config"
	"github.com/forPelevin/subcue/internal/logging"
	"github.com/forPelevin/subcue/internal/taskstore"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// app holds what every subcommand shares: flags on the root command and the
// configuration and logger loaded from them on first use.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log *slog.Logger
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "subcue",
		Short:        "Turn word-timed transcripts into positioned SRT, WebVTT and ASS subtitles",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SilenceErrors = true

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default $SUBCUE_CONFIG, ~/.config/subcue/config.toml or ./subcue.toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Override log format (console, json)")

	root.AddCommand(
		newGenerateCommand(a),
		newBatchCommand(a),
		newInspectCommand(a),
		newValidateCommand(),
		newTasksCommand(a),
		newServeCommand(a),
		newConfigCommand(),
	)
	return root
}

func (a *app) load() error {
	if a.cfg != nil {
		return nil
	}
	cfg, _, _, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	log, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	a.cfg = cfg
	a.log = log
	return nil
}

func (a *app) openStore() (*taskstore.Store, error) {
	store, err := taskstore.Open(a.cfg.Tasks.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open task history: %w", err)
	}
	return store, nil
}
