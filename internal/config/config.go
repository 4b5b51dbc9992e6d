package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Report     ReportConfig     `yaml:"report" envconfig:"REPORT"`
	Regression RegressionConfig `yaml:"regression" envconfig:"REGRESSION"`
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ReportConfig drives the COVID report pipeline
type ReportConfig struct {
	Source                string        `yaml:"source" envconfig:"SOURCE" validate:"required"`
	FetchTimeout          time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT" validate:"gt=0"`
	Country               string        `yaml:"country" envconfig:"COUNTRY" validate:"required"`
	CompareCountries      []string      `yaml:"compare_countries" envconfig:"COMPARE_COUNTRIES" validate:"min=1,dive,required"`
	ExcludedLocations     []string      `yaml:"excluded_locations" envconfig:"EXCLUDED_LOCATIONS"`
	ExcludeOWIDAggregates bool          `yaml:"exclude_owid_aggregates" envconfig:"EXCLUDE_OWID_AGGREGATES"`
	OutputDir             string        `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	CasesChart            string        `yaml:"cases_chart" envconfig:"CASES_CHART" validate:"required"`
	DeathsChart           string        `yaml:"deaths_chart" envconfig:"DEATHS_CHART" validate:"required"`
	VaccinationChart      string        `yaml:"vaccination_chart" envconfig:"VACCINATION_CHART" validate:"required"`
	ExportCSV             bool          `yaml:"export_csv" envconfig:"EXPORT_CSV"`
	ExportWorkbook        bool          `yaml:"export_workbook" envconfig:"EXPORT_WORKBOOK"`
	WorkbookName          string        `yaml:"workbook_name" envconfig:"WORKBOOK_NAME" validate:"required_if=ExportWorkbook true"`
	PreviewRows           int           `yaml:"preview_rows" envconfig:"PREVIEW_ROWS" validate:"gte=0"`
}

// RegressionConfig drives the ice-cream sales regression demo
type RegressionConfig struct {
	DataPath          string  `yaml:"data_path" envconfig:"DATA_PATH" validate:"required"`
	TestSize          float64 `yaml:"test_size" envconfig:"TEST_SIZE" validate:"gt=0,lt=1"`
	RandomState       int64   `yaml:"random_state" envconfig:"RANDOM_STATE"`
	SampleTemperature float64 `yaml:"sample_temperature" envconfig:"SAMPLE_TEMPERATURE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	ReloadInterval  time.Duration   `yaml:"reload_interval" envconfig:"RELOAD_INTERVAL" validate:"gte=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"required_if=Enabled true,gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"omitempty,oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
}

// Load loads configuration from defaults, the config file (if any) and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are actually set override; no default tags here
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and normalizes logging settings
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}

	// JSON is the only supported log format
	if c.Logging.Format != DefaultLogFormat {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	return nil
}

// Validate checks the report section on its own, for callers that build a
// ReportConfig without going through Load
func (r ReportConfig) Validate() error {
	if err := validate.Struct(r); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// Validate checks the regression section on its own
func (r RegressionConfig) Validate() error {
	if err := validate.Struct(r); err != nil {
		return formatValidationError(err)
	}
	return nil
}

var validate = validator.New()

// formatValidationError flattens validator errors into one readable message
func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Report: ReportConfig{
			Source:            DefaultSourceURL,
			FetchTimeout:      DefaultFetchTimeout,
			Country:           DefaultCountry,
			CompareCountries:  DefaultCompareCountries(),
			ExcludedLocations: DefaultExcludedLocations(),
			OutputDir:         DefaultOutputDir,
			CasesChart:        CasesChartFile,
			DeathsChart:       DeathsChartFile,
			VaccinationChart:  VaccinationChartFile,
			ExportCSV:         true,
			ExportWorkbook:    true,
			WorkbookName:      WorkbookFile,
			PreviewRows:       DefaultPreviewRows,
		},
		Regression: RegressionConfig{
			DataPath:          DefaultRegressionData,
			TestSize:          DefaultTestSize,
			RandomState:       DefaultRandomState,
			SampleTemperature: DefaultSampleTemperature,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			EnableTracing:  false,
			TraceExporter:  "none",
			EnableMetrics:  true,
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
			Environment:    "development",
		},
	}
}
