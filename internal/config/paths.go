package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains every file path the report writes to.
// This is the single source of truth for output locations.
type Paths struct {
	OutputDir string
	LogsDir   string

	CasesChart       string
	DeathsChart      string
	VaccinationChart string
	Workbook         string
}

// NewPaths resolves output paths for a report configuration.
// Relative output directories are resolved against the working directory.
func NewPaths(cfg ReportConfig, logging LoggingConfig) (*Paths, error) {
	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = DefaultOutputDir
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory %s: %w", outDir, err)
	}

	logFile := logging.FilePath
	if logFile == "" {
		logFile = DefaultLogFile
	}

	return &Paths{
		OutputDir:        absOut,
		LogsDir:          filepath.Dir(logFile),
		CasesChart:       filepath.Join(absOut, cfg.CasesChart),
		DeathsChart:      filepath.Join(absOut, cfg.DeathsChart),
		VaccinationChart: filepath.Join(absOut, cfg.VaccinationChart),
		Workbook:         filepath.Join(absOut, cfg.WorkbookName),
	}, nil
}

// EnsureDirectories creates the output directory if it doesn't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetReportPath returns the path for a report file in the output directory
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetSeriesCSVPath returns the per-country series export path (e.g. egypt_series.csv)
func (p *Paths) GetSeriesCSVPath(country string) string {
	return p.GetReportPath(fmt.Sprintf("%s_series.csv", Slug(country)))
}

// ChartFiles lists the chart artifacts in render order
func (p *Paths) ChartFiles() []string {
	return []string{p.CasesChart, p.DeathsChart, p.VaccinationChart}
}

// LogPathResolution logs resolved paths for debugging
func (p *Paths) LogPathResolution() {
	slog.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("output", p.OutputDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("report_files",
			slog.String("cases_chart", p.CasesChart),
			slog.String("deaths_chart", p.DeathsChart),
			slog.String("vaccination_chart", p.VaccinationChart),
			slog.String("workbook", p.Workbook),
		))
}

// Slug lowercases a location name and replaces anything that is not a
// letter or digit with an underscore, e.g. "United States" -> "united_states".
func Slug(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
