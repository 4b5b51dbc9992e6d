package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"covidpulse/internal/config"
	"covidpulse/internal/dataprocessing"
	"covidpulse/internal/errors"
	"covidpulse/internal/exporter"
	"covidpulse/internal/infrastructure"
	"covidpulse/internal/report"
	"covidpulse/pkg/contracts/domain"
)

// Result describes a finished report run
type Result struct {
	RunID      string                    `json:"run_id"`
	Artifacts  []report.Artifact         `json:"artifacts"`
	CleanStats dataprocessing.CleanStats `json:"clean_stats"`
	Series     domain.CountrySeries      `json:"series"`
	Deaths     []domain.CountryDeaths    `json:"deaths"`
	Steps      []*StepState              `json:"steps"`
	Duration   time.Duration             `json:"duration"`
}

// Written returns the artifacts that were saved
func (r *Result) Written() []report.Artifact {
	return r.filter(true)
}

// Skipped returns the artifacts that had nothing to show
func (r *Result) Skipped() []report.Artifact {
	return r.filter(false)
}

func (r *Result) filter(written bool) []report.Artifact {
	var out []report.Artifact
	for _, a := range r.Artifacts {
		if a.Written == written {
			out = append(out, a)
		}
	}
	return out
}

// Option configures a run
type Option func(*runner)

type runner struct {
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
	tracer  trace.Tracer
	loader  *dataprocessing.Loader
	stdout  io.Writer
}

// WithLogger sets the run logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *runner) { r.logger = logger }
}

// WithMetrics records stage and row metrics on m
func WithMetrics(m *infrastructure.PipelineMetrics) Option {
	return func(r *runner) { r.metrics = m }
}

// WithTracer sets the tracer used for run and step spans
func WithTracer(tracer trace.Tracer) Option {
	return func(r *runner) { r.tracer = tracer }
}

// WithLoader replaces the default loader
func WithLoader(loader *dataprocessing.Loader) Option {
	return func(r *runner) { r.loader = loader }
}

// WithStdout sets where console output goes (default os.Stdout)
func WithStdout(w io.Writer) Option {
	return func(r *runner) { r.stdout = w }
}

// Run executes load, clean, query, derive, render and export in order.
// The first failing step stops the run; its error is wrapped with the step ID.
func Run(ctx context.Context, cfg config.ReportConfig, opts ...Option) (*Result, error) {
	r := &runner{stdout: os.Stdout}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = infrastructure.GetLogger()
	}
	if r.loader == nil {
		r.loader = dataprocessing.NewLoader(cfg.FetchTimeout, r.logger)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError("invalid report configuration", err)
	}

	paths, err := config.NewPaths(cfg, config.LoggingConfig{})
	if err != nil {
		return nil, errors.NewConfigError("failed to resolve output paths", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, errors.NewStorageError("failed to create output directory", err)
	}

	runID := infrastructure.GenerateTraceID()
	ctx = infrastructure.WithTraceID(ctx, runID)

	rt := NewRunTracer(r.tracer, r.metrics)
	ctx, span := rt.TraceRun(ctx, runID, cfg)

	run := &RunState{ID: runID, Config: cfg, Paths: paths}
	result, err := r.execute(ctx, rt, run, r.steps(paths))
	rt.EndRun(span, result, err)
	if err != nil {
		return result, err
	}

	r.printSummary(result)
	return result, nil
}

func (r *runner) steps(paths *config.Paths) []Step {
	reporter := report.NewReporter(paths, r.logger)
	return []Step{
		&LoadStep{BaseStep: NewBaseStep(StepLoad, "Load dataset"), loader: r.loader, metrics: r.metrics, logger: r.logger, stdout: r.stdout},
		&CleanStep{BaseStep: NewBaseStep(StepClean, "Clean dataset"), metrics: r.metrics, logger: r.logger, stdout: r.stdout},
		&QueryStep{BaseStep: NewBaseStep(StepQuery, "Select country"), logger: r.logger},
		&DeriveStep{BaseStep: NewBaseStep(StepDerive, "Derive series"), logger: r.logger},
		&RenderStep{BaseStep: NewBaseStep(StepRender, "Render charts"), reporter: reporter, metrics: r.metrics},
		&ExportStep{
			BaseStep:   NewBaseStep(StepExport, "Export data"),
			exporter:   exporter.NewSeriesExporter(paths, r.logger),
			reporter:   reporter,
			summarizer: dataprocessing.NewSummarizer(r.logger),
		},
	}
}

// execute runs steps one by one
func (r *runner) execute(ctx context.Context, rt *RunTracer, run *RunState, steps []Step) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: run.ID}
	for _, step := range steps {
		result.Steps = append(result.Steps, NewStepState(step.ID(), step.Name()))
	}

	r.logger.InfoContext(ctx, "Report run started",
		slog.String("source", run.Config.Source),
		slog.String("country", run.Config.Country),
		slog.Int("step_count", len(steps)))

	var runErr error
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			r.logger.WarnContext(ctx, "Report run cancelled", slog.String("step", step.ID()))
			runErr = fmt.Errorf("%s: %w", step.ID(), err)
			break
		}

		state := result.Steps[i]
		stepCtx := infrastructure.WithStage(ctx, step.ID())
		stepCtx, span := rt.TraceStep(stepCtx, run.ID, step)

		state.Start()
		err := step.Execute(stepCtx, run)
		duration := state.Duration()

		if reason, skipped := isSkip(err); skipped {
			state.Skip(reason)
			r.logger.InfoContext(stepCtx, "Step skipped", slog.String("reason", reason))
			rt.EndStep(stepCtx, span, state, duration, nil)
			continue
		}
		if err != nil {
			state.Fail(err)
			rt.EndStep(stepCtx, span, state, duration, err)
			r.logger.ErrorContext(stepCtx, "Step failed",
				slog.String("error", err.Error()),
				slog.Duration("duration", duration))
			runErr = fmt.Errorf("%s: %w", step.ID(), err)
			break
		}

		state.Complete()
		rt.EndStep(stepCtx, span, state, duration, nil)
		r.logger.DebugContext(stepCtx, "Step completed", slog.Duration("duration", duration))
	}

	result.Artifacts = run.Artifacts
	result.CleanStats = run.CleanStats
	result.Series = run.Series
	result.Deaths = run.Deaths
	result.Duration = time.Since(start)

	if runErr != nil {
		return result, runErr
	}

	r.logger.InfoContext(ctx, "Report run completed",
		slog.Int("artifacts_written", len(result.Written())),
		slog.Int("artifacts_skipped", len(result.Skipped())),
		slog.Duration("duration", result.Duration))
	return result, nil
}

// printSummary prints which charts were saved
func (r *runner) printSummary(result *Result) {
	var saved, skipped []string
	for _, a := range result.Artifacts {
		if !isChart(a.Kind) {
			continue
		}
		if a.Written {
			saved = append(saved, filepath.Base(a.Path))
		} else {
			skipped = append(skipped, fmt.Sprintf("%s (%s)", filepath.Base(a.Path), a.Reason))
		}
	}

	if len(skipped) == 0 {
		fmt.Fprintf(r.stdout, "All charts saved: %s\n", strings.Join(saved, ", "))
		return
	}
	if len(saved) > 0 {
		fmt.Fprintf(r.stdout, "Charts saved: %s\n", strings.Join(saved, ", "))
	}
	fmt.Fprintf(r.stdout, "Charts skipped: %s\n", strings.Join(skipped, ", "))
}

func isChart(kind string) bool {
	return kind == report.ChartCases || kind == report.ChartDeaths || kind == report.ChartVaccination
}
