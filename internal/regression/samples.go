package regression

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"covidpulse/internal/errors"
	"covidpulse/pkg/contracts/domain"
)

// Column names of the temperature dataset
const (
	ColumnTemperature = "Temperature_Celsius"
	ColumnSales       = "Ice_Cream_Sales"
)

// ErrDataFileNotFound is returned by LoadSamples when the data file is absent.
// It matches os.ErrNotExist as well.
var ErrDataFileNotFound = stderrors.New("data file not found")

// Sample is one (temperature, sales) observation
type Sample = domain.Sample

// LoadSamples reads the temperature dataset from path
func LoadSamples(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewAppError(errors.ErrTypeNotFound,
				fmt.Sprintf("'%s' not found", path),
				stderrors.Join(ErrDataFileNotFound, err)).WithContext("path", path)
		}
		return nil, errors.NewStorageError("failed to open data file", err).WithContext("path", path)
	}
	defer f.Close()

	return ParseSamples(f)
}

// ParseSamples reads samples from CSV with a header row naming the
// Temperature_Celsius and Ice_Cream_Sales columns in any order
func ParseSamples(r io.Reader) ([]Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewParsingError("data file is empty", nil)
	}
	if err != nil {
		return nil, errors.NewParsingError("failed to read header", err)
	}

	tempIdx, salesIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")) {
		case ColumnTemperature:
			tempIdx = i
		case ColumnSales:
			salesIdx = i
		}
	}
	if tempIdx < 0 {
		return nil, errors.NewParsingError(fmt.Sprintf("missing required column %q", ColumnTemperature), nil)
	}
	if salesIdx < 0 {
		return nil, errors.NewParsingError(fmt.Sprintf("missing required column %q", ColumnSales), nil)
	}

	var samples []Sample
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError("malformed CSV row", err).WithContext("line", line)
		}
		if tempIdx >= len(row) || salesIdx >= len(row) {
			return nil, errors.NewParsingError("row is missing columns", nil).WithContext("line", line)
		}

		temp, err := strconv.ParseFloat(strings.TrimSpace(row[tempIdx]), 64)
		if err != nil {
			return nil, errors.NewParsingError("invalid temperature", err).WithContext("line", line)
		}
		sales, err := strconv.ParseFloat(strings.TrimSpace(row[salesIdx]), 64)
		if err != nil {
			return nil, errors.NewParsingError("invalid sales value", err).WithContext("line", line)
		}
		samples = append(samples, Sample{Temperature: temp, Sales: sales})
	}
	return samples, nil
}

func columns(samples []Sample) (xs, ys []float64) {
	xs = make([]float64, len(samples))
	ys = make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = s.Temperature
		ys[i] = s.Sales
	}
	return xs, ys
}
