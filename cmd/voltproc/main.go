package main

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

	"voltweb/internal/config"
	"voltweb/internal/infrastructure"
	"voltweb/pkg/contracts"
)

// globalOptions are shared by every subcommand
type globalOptions struct {
	configFile string
	logLevel   string
	dir        string
	pattern    string

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "warning: failed to read .env file:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "voltproc",
		Short:   "Classify, plot and export voltammetry measurement files",
		Version: contracts.Version,
		Long: `voltproc runs the voltweb pipeline on local CV and DPV exports.

Files are given as arguments, or discovered with --dir (optionally filtered
with --pattern). Per-file problems are reported on stderr and never stop the
remaining files.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFrom(opts.configFile)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.Logging.Level = opts.logLevel
			}
			opts.cfg = cfg
			opts.logger = infrastructure.NewLoggerWithWriter(stderr, cfg.Logging)
			cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
			return nil
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.dir, "dir", "", "directory to read measurement files from")
	flags.StringVar(&opts.pattern, "pattern", "", "glob filter for --dir, e.g. \"*_CV.csv\"")

	rootCmd.AddCommand(
		newClassifyCmd(opts),
		newPlotCmd(opts),
		newExportCmd(opts),
	)

	return rootCmd
}
