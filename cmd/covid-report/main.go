package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"covidpulse/internal/config"
	"covidpulse/internal/infrastructure"
	"covidpulse/internal/pipeline"
	"covidpulse/pkg/contracts"
)

type reportOptions struct {
	configFile string
	source     string
	country    string
	compare    []string
	exclude    []string
	outDir     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(os.Stdout)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "covid-report",
		Short: "Build COVID-19 charts from the Our World in Data dataset",
		Long: `Download (or read) the OWID COVID-19 CSV, clean it, and save three charts:
cumulative cases and vaccination progress for one country, and a total deaths
comparison across several countries.

Example:
  covid-report
  covid-report --country Italy --compare Italy,Spain,France --out ./charts
  covid-report --source ./owid-covid-data.csv`,
		Args:          cobra.NoArgs,
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, stdout)
		},
	}

	defaults := config.Default().Report
	cmd.Flags().StringVar(&opts.configFile, "config", "", "path to a YAML config file")
	cmd.Flags().StringVar(&opts.source, "source", defaults.Source, "CSV URL or local path")
	cmd.Flags().StringVar(&opts.country, "country", defaults.Country, "country for the cases and vaccination charts")
	cmd.Flags().StringSliceVar(&opts.compare, "compare", defaults.CompareCountries, "countries for the total deaths comparison")
	cmd.Flags().StringSliceVar(&opts.exclude, "exclude", defaults.ExcludedLocations, "aggregate regions removed during cleaning")
	cmd.Flags().StringVar(&opts.outDir, "out", defaults.OutputDir, "output directory")

	return cmd
}

// loadConfig layers changed flags over the file/env configuration
func loadConfig(cmd *cobra.Command, opts *reportOptions) (*config.Config, error) {
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
	if flags.Changed("source") {
		cfg.Report.Source = opts.source
	}
	if flags.Changed("country") {
		cfg.Report.Country = opts.country
	}
	if flags.Changed("compare") {
		cfg.Report.CompareCountries = opts.compare
	}
	if flags.Changed("exclude") {
		cfg.Report.ExcludedLocations = opts.exclude
	}
	if flags.Changed("out") {
		cfg.Report.OutputDir = opts.outDir
	}
	return cfg, nil
}

func runReport(cmd *cobra.Command, opts *reportOptions, stdout io.Writer) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	ctx := cmd.Context()
	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.NewPipelineMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	result, err := pipeline.Run(ctx, cfg.Report,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(metrics),
		pipeline.WithTracer(providers.Tracer),
		pipeline.WithStdout(stdout),
	)
	if err != nil {
		logger.ErrorContext(ctx, "Report failed", slog.String("error", err.Error()))
		return err
	}

	logger.InfoContext(ctx, "Report finished",
		slog.String("run_id", result.RunID),
		slog.Duration("duration", result.Duration))
	return nil
}
