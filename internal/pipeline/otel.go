package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"covidpulse/internal/config"
	"covidpulse/internal/infrastructure"
)

const (
	TracerName = "covidpulse.pipeline"
)

// RunTracer provides OpenTelemetry instrumentation for report runs
type RunTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewRunTracer creates a run tracer; a nil tracer uses the global provider
func NewRunTracer(tracer trace.Tracer, metrics *infrastructure.PipelineMetrics) *RunTracer {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &RunTracer{tracer: tracer, metrics: metrics}
}

// TraceRun creates a span for the entire run
func (rt *RunTracer) TraceRun(ctx context.Context, runID string, cfg config.ReportConfig) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.source", cfg.Source),
			attribute.String("run.country", cfg.Country),
			attribute.StringSlice("run.compare_countries", cfg.CompareCountries),
		),
	)
}

// TraceStep creates a span for one step
func (rt *RunTracer) TraceStep(ctx context.Context, runID string, step Step) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, fmt.Sprintf("pipeline.step.%s", step.ID()),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
}

// EndStep records the step outcome on its span and in the stage metrics
func (rt *RunTracer) EndStep(ctx context.Context, span trace.Span, state *StepState, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.String("step.status", string(state.Status)),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	rt.metrics.RecordStage(ctx, state.ID, duration, err)
}

// EndRun closes the run span
func (rt *RunTracer) EndRun(span trace.Span, result *Result, err error) {
	if result != nil {
		span.SetAttributes(
			attribute.Int("run.artifacts_written", len(result.Written())),
			attribute.Int("run.artifacts_skipped", len(result.Skipped())),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
