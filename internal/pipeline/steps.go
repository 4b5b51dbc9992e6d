package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"covidpulse/internal/dataprocessing"
	"covidpulse/internal/exporter"
	"covidpulse/internal/infrastructure"
	"covidpulse/internal/report"
)

// Step IDs in execution order
const (
	StepLoad   = "load"
	StepClean  = "clean"
	StepQuery  = "query"
	StepDerive = "derive"
	StepRender = "render"
	StepExport = "export"
)

// Step represents a single step of a report run
type Step interface {
	// ID returns the unique identifier for this step
	ID() string

	// Name returns the human-readable name for this step
	Name() string

	// Execute runs the step against the shared run state
	Execute(ctx context.Context, run *RunState) error
}

// skipError marks a step that had nothing to do
type skipError struct {
	reason string
}

func (e *skipError) Error() string {
	return "skipped: " + e.reason
}

func skip(reason string) error {
	return &skipError{reason: reason}
}

func isSkip(err error) (string, bool) {
	var se *skipError
	if errors.As(err, &se) {
		return se.reason, true
	}
	return "", false
}

// BaseStep provides the identity half of Step
type BaseStep struct {
	id   string
	name string
}

// NewBaseStep creates a new base step
func NewBaseStep(id, name string) BaseStep {
	return BaseStep{id: id, name: name}
}

// ID returns the step ID
func (b BaseStep) ID() string { return b.id }

// Name returns the step name
func (b BaseStep) Name() string { return b.name }

// LoadStep reads the OWID CSV from a URL or path
type LoadStep struct {
	BaseStep
	loader  *dataprocessing.Loader
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
	stdout  io.Writer
}

func (s *LoadStep) Execute(ctx context.Context, run *RunState) error {
	ds, err := s.loader.Load(ctx, run.Config.Source)
	if err != nil {
		return err
	}
	run.Dataset = ds

	if s.metrics != nil {
		s.metrics.RowsLoaded.Add(ctx, int64(ds.Len()))
	}
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"dataset.rows":    ds.Len(),
		"dataset.columns": len(ds.Columns),
	})

	info := ds.Info()
	s.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("source", run.Config.Source),
		slog.Int("rows", info.Rows),
		slog.Int("columns", info.Columns))

	if run.Config.PreviewRows > 0 {
		if err := writePreview(s.stdout, ds, run.Config.PreviewRows); err != nil {
			s.logger.WarnContext(ctx, "Failed to print dataset preview", slog.String("error", err.Error()))
		}
	}
	return nil
}

// CleanStep parses dates, fills missing counts and removes aggregate regions
type CleanStep struct {
	BaseStep
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
	stdout  io.Writer
}

func (s *CleanStep) Execute(ctx context.Context, run *RunState) error {
	stats, err := dataprocessing.Clean(run.Dataset, dataprocessing.CleanOptions{
		ExcludedLocations:     run.Config.ExcludedLocations,
		ExcludeOWIDAggregates: run.Config.ExcludeOWIDAggregates,
	})
	if err != nil {
		return err
	}
	run.CleanStats = stats

	if s.metrics != nil {
		s.metrics.RowsExcluded.Add(ctx, int64(stats.RowsExcluded))
		s.metrics.ValuesFilled.Add(ctx, int64(stats.CasesFilled),
			metric.WithAttributes(attribute.String("column", "new_cases")))
		s.metrics.ValuesFilled.Add(ctx, int64(stats.DeathsFilled),
			metric.WithAttributes(attribute.String("column", "new_deaths")))
	}

	s.logger.InfoContext(ctx, "Dataset cleaned",
		slog.Int("rows_in", stats.RowsIn),
		slog.Int("rows_out", stats.RowsOut),
		slog.Int("rows_excluded", stats.RowsExcluded),
		slog.Int("cases_filled", stats.CasesFilled),
		slog.Int("deaths_filled", stats.DeathsFilled))

	fmt.Fprintln(s.stdout, "Data loaded and cleaned.")
	return nil
}

// QueryStep selects the focus country's records
type QueryStep struct {
	BaseStep
	logger *slog.Logger
}

func (s *QueryStep) Execute(ctx context.Context, run *RunState) error {
	run.Focus = dataprocessing.CountryData(run.Dataset, run.Config.Country)
	if len(run.Focus) == 0 {
		s.logger.WarnContext(ctx, "Country not found in cleaned dataset",
			slog.String("country", run.Config.Country))
		return nil
	}
	s.logger.InfoContext(ctx, "Country selected",
		slog.String("country", run.Config.Country),
		slog.Int("rows", len(run.Focus)))
	return nil
}

// DeriveStep computes the focus series and the deaths comparison
type DeriveStep struct {
	BaseStep
	logger *slog.Logger
}

func (s *DeriveStep) Execute(ctx context.Context, run *RunState) error {
	run.Series = report.DeriveSeries(run.Config.Country, run.Focus)
	run.Deaths = report.MaxTotalDeaths(run.Dataset, run.Config.CompareCountries)

	latest := run.Series.LatestPercentVaccinated()
	attrs := []any{
		slog.String("country", run.Config.Country),
		slog.Float64("total_cases", run.Series.TotalCases()),
		slog.Int("compare_countries", len(run.Deaths)),
	}
	if latest.Valid {
		attrs = append(attrs, slog.Float64("latest_percent_vaccinated", latest.Float64))
	}
	s.logger.InfoContext(ctx, "Series derived", attrs...)
	return nil
}

// RenderStep writes the three charts
type RenderStep struct {
	BaseStep
	reporter *report.Reporter
	metrics  *infrastructure.PipelineMetrics
}

func (s *RenderStep) Execute(ctx context.Context, run *RunState) error {
	artifacts, err := s.reporter.WriteCharts(ctx, run.Series, run.Deaths)
	run.Artifacts = append(run.Artifacts, artifacts...)

	if s.metrics != nil {
		for _, a := range artifacts {
			attrs := metric.WithAttributes(attribute.String("chart", a.Kind))
			if a.Written {
				s.metrics.ChartsRendered.Add(ctx, 1, attrs)
			} else {
				s.metrics.ChartsSkipped.Add(ctx, 1, attrs)
			}
		}
	}
	return err
}

// ExportStep writes the optional CSV and workbook exports
type ExportStep struct {
	BaseStep
	exporter   *exporter.SeriesExporter
	reporter   *report.Reporter
	summarizer *dataprocessing.Summarizer
}

func (s *ExportStep) Execute(ctx context.Context, run *RunState) error {
	if !run.Config.ExportCSV && !run.Config.ExportWorkbook {
		return skip("exports disabled")
	}

	if run.Config.ExportCSV {
		path, err := s.exporter.ExportSeries(run.Series)
		if err != nil {
			return err
		}
		run.Artifacts = append(run.Artifacts, report.Artifact{Kind: "series_csv", Path: path, Written: true})

		path, err = s.exporter.ExportLocationSummary(s.summarizer.Summarize(ctx, run.Dataset))
		if err != nil {
			return err
		}
		run.Artifacts = append(run.Artifacts, report.Artifact{Kind: "summary_csv", Path: path, Written: true})
	}

	if run.Config.ExportWorkbook {
		a, err := s.reporter.WriteWorkbook(ctx, run.Series, run.Deaths)
		if err != nil {
			return err
		}
		run.Artifacts = append(run.Artifacts, a)
	}
	return nil
}
