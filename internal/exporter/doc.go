// Package exporter provides CSV export functionality for the COVID report.
//
// CSVWriter: core CSV writing with headers, appends, streaming and a UTF-8
// BOM for Excel compatibility. Relative paths land in the report output
// directory.
//
// SeriesExporter: writes <country>_series.csv for the focus country and
// location_summary.csv for every location in the cleaned dataset.
//
// Example usage:
//
//	exp := exporter.NewSeriesExporter(paths, logger)
//	path, err := exp.ExportSeries(series)
//
//	// stream into an HTTP response
//	err = exporter.WriteSeriesCSV(w, series)
package exporter
