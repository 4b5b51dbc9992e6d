// Package report derives per-country series from cleaned records and writes
// the report artifacts: three PNG charts (go-chart) and an optional xlsx
// workbook (excelize).
//
// Percent vaccinated is unknown (domain.None) rather than NaN when
// people_vaccinated is missing or the population is zero. Charts with no
// plottable points fail with an errors.ErrTypeNoData error, which the
// Reporter turns into a skipped artifact.
package report
