package dataprocessing

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"covidpulse/internal/errors"
	"covidpulse/pkg/contracts/domain"
)

// Loader reads the OWID dataset from a URL or a local file
type Loader struct {
	client *resty.Client
	logger *slog.Logger
}

// NewLoader creates a loader whose HTTP fetches time out after timeout
func NewLoader(timeout time.Duration, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "text/csv")

	return &Loader{
		client: client,
		logger: logger.With(slog.String("component", "loader")),
	}
}

// Load reads source into a Dataset. http(s) sources are downloaded,
// anything else is opened as a local path.
func (l *Loader) Load(ctx context.Context, source string) (*domain.Dataset, error) {
	if isRemote(source) {
		return l.fetch(ctx, source)
	}
	return l.open(source)
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func (l *Loader) fetch(ctx context.Context, url string) (*domain.Dataset, error) {
	start := time.Now()
	l.logger.InfoContext(ctx, "Downloading dataset", slog.String("url", url))

	resp, err := l.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, errors.NewNetworkError("failed to download dataset", err).WithContext("url", url)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return nil, errors.NewNetworkError(
			fmt.Sprintf("unexpected status %d downloading dataset", resp.StatusCode()), nil,
		).WithContext("url", url).WithContext("status", resp.StatusCode())
	}

	ds, err := ParseCSV(body)
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Dataset downloaded",
		slog.String("url", url),
		slog.Int("rows", ds.Len()),
		slog.Duration("duration", time.Since(start)))
	return ds, nil
}

func (l *Loader) open(path string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewAppError(errors.ErrTypeNotFound,
				fmt.Sprintf("dataset file %s not found", path), err)
		}
		return nil, errors.NewStorageError("failed to open dataset", err).WithContext("path", path)
	}
	defer f.Close()

	ds, err := ParseCSV(f)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Dataset loaded", slog.String("path", path), slog.Int("rows", ds.Len()))
	return ds, nil
}

// requiredColumns must be present in the header; the others are read when present
var requiredColumns = []string{domain.ColumnLocation, domain.ColumnDate}

// ParseCSV reads an OWID-style CSV. Columns are located by header name so
// column order and extra columns do not matter. Dates stay raw until cleaning.
func ParseCSV(r io.Reader) (*domain.Dataset, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.NewParsingError("dataset is empty", nil)
		}
		return nil, errors.NewParsingError("failed to read header", err)
	}

	columns := make([]string, len(header))
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		columns[i] = name
		colIndex[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, errors.NewParsingError(fmt.Sprintf("missing required column %q", col), nil)
		}
	}

	ds := &domain.Dataset{Columns: columns}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.NewParsingError("malformed CSV row", err).WithContext("line", line)
		}

		rec, err := parseRecord(row, colIndex)
		if err != nil {
			return nil, errors.NewParsingError("invalid numeric value", err).WithContext("line", line)
		}
		ds.Records = append(ds.Records, rec)
	}

	return ds, nil
}

func parseRecord(row []string, colIndex map[string]int) (domain.Record, error) {
	cell := func(col string) string {
		idx, ok := colIndex[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	rec := domain.Record{
		ISOCode:   cell(domain.ColumnISOCode),
		Continent: cell(domain.ColumnContinent),
		Location:  cell(domain.ColumnLocation),
		RawDate:   cell(domain.ColumnDate),
	}

	numeric := []struct {
		col string
		dst *domain.NullFloat64
	}{
		{domain.ColumnNewCases, &rec.NewCases},
		{domain.ColumnNewDeaths, &rec.NewDeaths},
		{domain.ColumnTotalDeaths, &rec.TotalDeaths},
		{domain.ColumnPeopleVaccinated, &rec.PeopleVaccinated},
		{domain.ColumnPopulation, &rec.Population},
	}
	for _, n := range numeric {
		v, err := domain.ParseNullFloat64(cell(n.col))
		if err != nil {
			return rec, fmt.Errorf("column %s: %w", n.col, err)
		}
		*n.dst = v
	}

	return rec, nil
}
