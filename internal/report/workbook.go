package report

import (
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"covidpulse/internal/errors"
	"covidpulse/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SeriesSheet = "Series"
	DeathsSheet = "Total Deaths"
)

// SeriesHeaders are the column headers shared by the workbook and the CSV export
var SeriesHeaders = []string{
	"date",
	"new_cases",
	"cumulative_cases",
	"percent_vaccinated",
	"new_cases_trend",
}

// WriteWorkbook writes the focus country's series and the deaths comparison
// as an xlsx workbook.
func WriteWorkbook(w io.Writer, s domain.CountrySeries, deaths []domain.CountryDeaths) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SeriesSheet); err != nil {
		return errors.NewStorageError("failed to name series sheet", err)
	}
	if _, err := f.NewSheet(DeathsSheet); err != nil {
		return errors.NewStorageError("failed to create deaths sheet", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.NewStorageError("failed to create header style", err)
	}

	if err := writeSeriesSheet(f, s, bold); err != nil {
		return err
	}
	if err := writeDeathsSheet(f, deaths, bold); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.NewStorageError("failed to write workbook", err)
	}
	return nil
}

// WriteWorkbookFile writes the workbook to path, replacing any existing file.
func WriteWorkbookFile(path string, s domain.CountrySeries, deaths []domain.CountryDeaths) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create workbook", err).WithContext("path", path)
	}
	if err := WriteWorkbook(file, s, deaths); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return errors.NewStorageError("failed to close workbook", err).WithContext("path", path)
	}
	return nil
}

func writeSeriesSheet(f *excelize.File, s domain.CountrySeries, headerStyle int) error {
	if err := setRow(f, SeriesSheet, 1, toCells(SeriesHeaders)); err != nil {
		return err
	}
	if err := f.SetRowStyle(SeriesSheet, 1, 1, headerStyle); err != nil {
		return errors.NewStorageError("failed to style header", err)
	}

	for i, d := range s.Dates {
		row := []interface{}{
			d.Format("2006-01-02"),
			at(s.NewCases, i),
			at(s.CumulativeCases, i),
			cell(nullAt(s.PercentVaccinated, i)),
			cell(nullAt(s.NewCasesTrend, i)),
		}
		if err := setRow(f, SeriesSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeDeathsSheet(f *excelize.File, deaths []domain.CountryDeaths, headerStyle int) error {
	if err := setRow(f, DeathsSheet, 1, []interface{}{"country", "max_total_deaths"}); err != nil {
		return err
	}
	if err := f.SetRowStyle(DeathsSheet, 1, 1, headerStyle); err != nil {
		return errors.NewStorageError("failed to style header", err)
	}

	for i, d := range deaths {
		value := cell(d.MaxTotalDeaths)
		if !d.MaxTotalDeaths.Valid {
			value = missingLabel
		}
		if err := setRow(f, DeathsSheet, i+2, []interface{}{d.Country, value}); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.NewStorageError("invalid cell coordinates", err)
	}
	if err := f.SetSheetRow(sheet, axis, &values); err != nil {
		return errors.NewStorageError("failed to write row", err).
			WithContext("sheet", sheet).
			WithContext("row", row)
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// cell maps unknown values to an empty cell
func cell(n domain.NullFloat64) interface{} {
	if !n.Valid {
		return nil
	}
	return n.Float64
}

func at(values []float64, i int) float64 {
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
