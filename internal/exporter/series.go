package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"covidpulse/internal/config"
	"covidpulse/internal/dataprocessing"
	"covidpulse/internal/report"
	"covidpulse/pkg/contracts/domain"
)

// SummaryFile is the file name of the per-location summary export
const SummaryFile = "location_summary.csv"

// SummaryHeaders are the columns of the location summary export
var SummaryHeaders = []string{
	"location", "iso_code", "continent", "first_date", "last_date", "days",
	"total_cases", "max_total_deaths", "latest_percent_vaccinated", "population",
}

// SeriesExporter handles country-specific CSV exports
type SeriesExporter struct {
	csvWriter *CSVWriter
	paths     *config.Paths
}

// NewSeriesExporter creates a new series exporter
func NewSeriesExporter(paths *config.Paths, logger *slog.Logger) *SeriesExporter {
	return &SeriesExporter{
		csvWriter: NewCSVWriter(paths, logger),
		paths:     paths,
	}
}

// ExportSeries writes <country>_series.csv and returns its path
func (e *SeriesExporter) ExportSeries(s domain.CountrySeries) (string, error) {
	path := e.paths.GetSeriesCSVPath(s.Country)
	written, err := e.csvWriter.WriteSimpleCSV(path, report.SeriesHeaders, SeriesRecords(s))
	if err != nil {
		return "", fmt.Errorf("failed to write series file for %s: %w", s.Country, err)
	}
	return written, nil
}

// ExportLocationSummary writes one row per location, sorted by name
func (e *SeriesExporter) ExportLocationSummary(summaries []dataprocessing.LocationSummary) (string, error) {
	sorted := make([]dataprocessing.LocationSummary, len(summaries))
	copy(sorted, summaries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Location < sorted[j].Location
	})

	records := make([][]string, 0, len(sorted))
	for _, summary := range sorted {
		records = append(records, summaryToCSVRow(summary))
	}

	return e.csvWriter.WriteSimpleCSV(SummaryFile, SummaryHeaders, records)
}

// WriteSeriesCSV streams a series as CSV to w
func WriteSeriesCSV(w io.Writer, s domain.CountrySeries) error {
	sw, err := NewStreamWriter(w, report.SeriesHeaders)
	if err != nil {
		return err
	}
	for _, record := range SeriesRecords(s) {
		if err := sw.WriteRecord(record); err != nil {
			return err
		}
	}
	return sw.Close()
}

// SeriesRecords flattens a series into rows matching report.SeriesHeaders
func SeriesRecords(s domain.CountrySeries) [][]string {
	rows := make([][]string, 0, s.Len())
	for i, d := range s.Dates {
		rows = append(rows, []string{
			formatDate(d),
			formatFloat(valueAt(s.NewCases, i)),
			formatFloat(valueAt(s.CumulativeCases, i)),
			formatNull(nullAt(s.PercentVaccinated, i)),
			formatNull(nullAt(s.NewCasesTrend, i)),
		})
	}
	return rows
}

func summaryToCSVRow(s dataprocessing.LocationSummary) []string {
	return []string{
		s.Location,
		s.ISOCode,
		s.Continent,
		formatDate(s.FirstDate),
		formatDate(s.LastDate),
		formatInt(s.Days),
		formatFloat(s.TotalCases),
		formatNull(s.MaxTotalDeaths),
		formatNull(s.LatestPercentVaccinated),
		formatNull(s.Population),
	}
}

func valueAt(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func nullAt(values []domain.NullFloat64, i int) domain.NullFloat64 {
	if i < len(values) {
		return values[i]
	}
	return domain.None()
}
