package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"covidpulse/internal/config"
	"covidpulse/internal/infrastructure"
	"covidpulse/internal/regression"
	"covidpulse/pkg/contracts"
)

type regressionOptions struct {
	configFile string
	dataPath   string
	testSize   float64
	seed       int64
	sampleTemp float64
}

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	opts := &regressionOptions{}

	cmd := &cobra.Command{
		Use:   "icecream-regression",
		Short: "Predict ice cream sales from temperature with a linear model",
		Long: `Fit a least-squares line to temperature_data.csv, score it on a held-out
test split and predict sales for a sample temperature.

Example:
  icecream-regression
  icecream-regression --data ./temperature_data.csv --sample-temp 30`,
		Args:          cobra.NoArgs,
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegression(cmd, opts, stdout)
		},
	}

	defaults := config.Default().Regression
	cmd.Flags().StringVar(&opts.configFile, "config", "", "path to a YAML config file")
	cmd.Flags().StringVar(&opts.dataPath, "data", defaults.DataPath, "CSV with Temperature_Celsius and Ice_Cream_Sales columns")
	cmd.Flags().Float64Var(&opts.testSize, "test-size", defaults.TestSize, "fraction of samples held out for testing")
	cmd.Flags().Int64Var(&opts.seed, "seed", defaults.RandomState, "random seed for the train/test split")
	cmd.Flags().Float64Var(&opts.sampleTemp, "sample-temp", defaults.SampleTemperature, "temperature for the demonstration prediction")

	return cmd
}

func loadConfig(cmd *cobra.Command, opts *regressionOptions) (*config.Config, error) {
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
	if flags.Changed("data") {
		cfg.Regression.DataPath = opts.dataPath
	}
	if flags.Changed("test-size") {
		cfg.Regression.TestSize = opts.testSize
	}
	if flags.Changed("seed") {
		cfg.Regression.RandomState = opts.seed
	}
	if flags.Changed("sample-temp") {
		cfg.Regression.SampleTemperature = opts.sampleTemp
	}
	return cfg, nil
}

func runRegression(cmd *cobra.Command, opts *regressionOptions, stdout io.Writer) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	eval, err := regression.Evaluate(cfg.Regression)
	if stderrors.Is(err, regression.ErrDataFileNotFound) {
		// a missing data file is reported, not failed
		logger.Warn("Data file not found", slog.String("path", cfg.Regression.DataPath))
		fmt.Fprintln(stdout, regression.MissingFileMessage(cfg.Regression.DataPath))
		return nil
	}
	if err != nil {
		return err
	}

	return regression.WriteReport(stdout, eval)
}
