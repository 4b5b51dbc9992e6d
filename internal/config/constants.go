package config

import (
	"time"

	"covidpulse/pkg/contracts"
)

// Application constants
const (
	AppName    = "COVID Pulse"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable (COVID_REPORT_COUNTRY, ...)
	EnvPrefix = "COVID"

	// ConfigFileEnv points at an explicit YAML config file
	ConfigFileEnv = "COVID_CONFIG_FILE"
)

// Report defaults: OWID source, Egypt as focus, three-country comparison
const (
	DefaultSourceURL    = "https://raw.githubusercontent.com/owid/covid-19-data/master/public/data/owid-covid-data.csv"
	DefaultCountry      = "Egypt"
	DefaultOutputDir    = "."
	DefaultFetchTimeout = 2 * time.Minute
	DefaultPreviewRows  = 5

	CasesChartFile       = "cases_over_time.png"
	DeathsChartFile      = "total_deaths_comparison.png"
	VaccinationChartFile = "vaccination_progress.png"
	WorkbookFile         = "covid_report.xlsx"
)

// Regression defaults
const (
	DefaultRegressionData    = "temperature_data.csv"
	DefaultTestSize          = 0.2
	DefaultRandomState       = 42
	DefaultSampleTemperature = 25.0
)

// Log settings
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogFile   = "logs/covidpulse.log"
)

// API endpoints
const (
	APIBasePath       = "/api/v1"
	HealthEndpoint    = "/healthz"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)

// DefaultCompareCountries returns the countries compared in the total deaths chart
func DefaultCompareCountries() []string {
	return []string{"Egypt", "Italy", "India", "Brazil", "United States"}
}

// DefaultExcludedLocations returns the aggregate regions removed during cleaning
func DefaultExcludedLocations() []string {
	return []string{
		"World",
		"Africa",
		"Asia",
		"Europe",
		"European Union",
		"International",
		"North America",
		"Oceania",
		"South America",
	}
}
