// cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gewnthar/datasetdoc/config"
	"github.com/gewnthar/datasetdoc/logging"
)

// app carries what every subcommand needs once the root has set it up.
type app struct {
	configPath string
	logLevel   string

	cfg       *config.Config
	log       zerolog.Logger
	logCloser io.Closer
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	root := a.rootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "datasetdoc",
		Short: "Document a collection of downloaded open-data datasets",
		Long: `datasetdoc joins a list of dataset homepages and a list of downloaded
dataset files with catalog metadata and Internet Archive snapshot links,
and writes a CSV report describing every dataset.`,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		SilenceUsage:       true,
		SilenceErrors:      true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "config.yaml", "config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides config)")

	root.AddCommand(a.documentCommand(), a.crawlCommand(), a.serveCommand())
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	log, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("error setting up logging: %w", err)
	}
	a.cfg, a.log, a.logCloser = cfg, log, closer
	a.log.Debug().Str("command", cmd.Name()).Str("config", a.configPath).Msg("configuration loaded")
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.logCloser == nil {
		return nil
	}
	return a.logCloser.Close()
}
