package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"covidpulse/internal/app"
	"covidpulse/internal/config"
	"covidpulse/internal/infrastructure"
	"covidpulse/pkg/contracts"
)

type webOptions struct {
	configFile string
	port       int
	source     string
	reload     time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &webOptions{}

	cmd := &cobra.Command{
		Use:   "covid-web",
		Short: "Serve the OWID COVID-19 dataset over HTTP",
		Long: `Load the OWID COVID-19 CSV once at startup (and optionally on an interval)
and serve per-country series, death comparisons and charts under /api/v1.

Example:
  covid-web --port 8080
  covid-web --source ./owid-covid-data.csv --reload 6h`,
		Args:          cobra.NoArgs,
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	defaults := config.Default()
	cmd.Flags().StringVar(&opts.configFile, "config", "", "path to a YAML config file")
	cmd.Flags().IntVar(&opts.port, "port", defaults.Server.Port, "HTTP listen port")
	cmd.Flags().StringVar(&opts.source, "source", defaults.Report.Source, "CSV URL or local path")
	cmd.Flags().DurationVar(&opts.reload, "reload", defaults.Server.ReloadInterval, "dataset reload interval, 0 to load once")

	return cmd
}

// loadConfig layers changed flags over the file/env configuration and
// validates the result
func loadConfig(cmd *cobra.Command, opts *webOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = opts.port
	}
	if flags.Changed("source") {
		cfg.Report.Source = opts.source
	}
	if flags.Changed("reload") {
		cfg.Server.ReloadInterval = opts.reload
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	a, err := app.NewApplication(cfg, logger)
	if err != nil {
		logger.Error("Failed to create application", slog.String("error", err.Error()))
		return err
	}

	if err := a.Run(ctx); err != nil {
		logger.Error("Server error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped")
	return nil
}
