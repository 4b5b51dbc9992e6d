package report

import (
	"context"
	"io"
	"log/slog"
	"time"

	"covidpulse/internal/config"
	"covidpulse/internal/errors"
	"covidpulse/pkg/contracts/domain"
)

// Artifact describes one output file of a report run.
type Artifact struct {
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	Written bool   `json:"written"`
	Reason  string `json:"reason,omitempty"`
}

// Reporter writes the chart and workbook artifacts into the output directory.
type Reporter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewReporter creates a reporter writing to paths
func NewReporter(paths *config.Paths, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{
		paths:  paths,
		logger: logger.With(slog.String("component", "reporter")),
	}
}

// WriteCharts renders the three report charts. Charts without plottable
// points are skipped and returned with Written=false; any other failure
// stops the run.
func (r *Reporter) WriteCharts(ctx context.Context, focus domain.CountrySeries, deaths []domain.CountryDeaths) ([]Artifact, error) {
	jobs := []struct {
		kind   string
		path   string
		render func(io.Writer) error
	}{
		{ChartCases, r.paths.CasesChart, func(w io.Writer) error { return RenderCasesChart(w, focus) }},
		{ChartDeaths, r.paths.DeathsChart, func(w io.Writer) error { return RenderDeathsChart(w, deaths) }},
		{ChartVaccination, r.paths.VaccinationChart, func(w io.Writer) error { return RenderVaccinationChart(w, focus) }},
	}

	artifacts := make([]Artifact, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return artifacts, err
		}

		start := time.Now()
		err := WriteChartFile(job.path, job.render)
		switch {
		case err == nil:
			r.logger.InfoContext(ctx, "Chart saved",
				slog.String("chart", job.kind),
				slog.String("path", job.path),
				slog.Duration("duration", time.Since(start)))
			artifacts = append(artifacts, Artifact{Kind: job.kind, Path: job.path, Written: true})
		case errors.IsType(err, errors.ErrTypeNoData):
			r.logger.WarnContext(ctx, "Chart skipped",
				slog.String("chart", job.kind),
				slog.String("reason", err.Error()))
			artifacts = append(artifacts, Artifact{Kind: job.kind, Path: job.path, Reason: err.Error()})
		default:
			return artifacts, err
		}
	}
	return artifacts, nil
}

// WriteWorkbook exports the focus series and deaths comparison as xlsx.
func (r *Reporter) WriteWorkbook(ctx context.Context, focus domain.CountrySeries, deaths []domain.CountryDeaths) (Artifact, error) {
	if err := WriteWorkbookFile(r.paths.Workbook, focus, deaths); err != nil {
		return Artifact{}, err
	}
	r.logger.InfoContext(ctx, "Workbook saved",
		slog.String("path", r.paths.Workbook),
		slog.Int("series_rows", focus.Len()),
		slog.Int("countries", len(deaths)))
	return Artifact{Kind: "workbook", Path: r.paths.Workbook, Written: true}, nil
}
