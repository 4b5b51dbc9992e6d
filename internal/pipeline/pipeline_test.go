package pipeline

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"covidpulse/internal/config"
	"covidpulse/internal/dataprocessing"
	"covidpulse/internal/errors"
	"covidpulse/internal/infrastructure"
	"covidpulse/internal/shared/testutil"
)

func testConfig(t *testing.T) config.ReportConfig {
	t.Helper()
	cfg := config.Default().Report
	cfg.Source = filepath.Join("testdata", "owid_sample.csv")
	cfg.OutputDir = t.TempDir()
	cfg.CompareCountries = []string{"Egypt", "Italy", "India"}
	return cfg
}

func runWithBuffers(t *testing.T, cfg config.ReportConfig, opts ...Option) (*Result, *bytes.Buffer, error) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	var stdout bytes.Buffer
	opts = append([]Option{WithLogger(logger), WithStdout(&stdout)}, opts...)
	result, err := Run(context.Background(), cfg, opts...)
	return result, &stdout, err
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)

	result, stdout, err := runWithBuffers(t, cfg)
	require.NoError(t, err)

	assert.Equal(t, dataprocessing.CleanStats{
		RowsIn: 8, RowsOut: 6, RowsExcluded: 2, CasesFilled: 2, DeathsFilled: 2,
	}, result.CleanStats)

	assert.Equal(t, []float64{1000, 1000, 3100}, result.Series.CumulativeCases)
	require.Len(t, result.Deaths, 3)
	assert.Equal(t, 74400.0, result.Deaths[1].MaxTotalDeaths.Float64)

	for _, name := range []string{
		"cases_over_time.png",
		"total_deaths_comparison.png",
		"vaccination_progress.png",
		"egypt_series.csv",
		"location_summary.csv",
		"covid_report.xlsx",
	} {
		assert.FileExists(t, filepath.Join(cfg.OutputDir, name))
	}
	assert.Len(t, result.Written(), 6)
	assert.Empty(t, result.Skipped())

	for _, step := range result.Steps {
		assert.Equal(t, StepStatusCompleted, step.Status, step.ID)
	}

	out := stdout.String()
	assert.Contains(t, out, "Data loaded and cleaned.\n")
	assert.Contains(t, out, "All charts saved: cases_over_time.png, total_deaths_comparison.png, vaccination_progress.png\n")
	// preview of the raw dataset
	assert.Contains(t, out, "8 rows, 9 columns")
}

func TestRunFromHTTP(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "owid_sample.csv"))
	require.NoError(t, err)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.Source = server.URL + "/owid-covid-data.csv"
	cfg.ExportCSV = false
	cfg.ExportWorkbook = false

	result, _, err := runWithBuffers(t, cfg)
	require.NoError(t, err)
	assert.Len(t, result.Written(), 3)
	assert.Equal(t, StepStatusSkipped, result.Steps[5].Status)
}

func TestRunUnknownCountrySkipsCountryCharts(t *testing.T) {
	cfg := testConfig(t)
	cfg.Country = "Atlantis"
	cfg.ExportWorkbook = false

	result, stdout, err := runWithBuffers(t, cfg)
	require.NoError(t, err)

	skipped := result.Skipped()
	require.Len(t, skipped, 2)
	assert.Equal(t, "cases", skipped[0].Kind)
	assert.Equal(t, "vaccination", skipped[1].Kind)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "cases_over_time.png"))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "total_deaths_comparison.png"))

	assert.Contains(t, stdout.String(), "Charts saved: total_deaths_comparison.png\n")
	assert.Contains(t, stdout.String(), "Charts skipped: cases_over_time.png")
}

func TestRunMissingSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Source = filepath.Join(t.TempDir(), "missing.csv")

	result, stdout, err := runWithBuffers(t, cfg)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "load:")
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
	require.NotNil(t, result)
	assert.Equal(t, StepStatusFailed, result.Steps[0].Status)
	assert.Equal(t, StepStatusPending, result.Steps[1].Status)
	assert.NotContains(t, stdout.String(), "All charts saved")
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.CompareCountries = nil

	result, _, err := runWithBuffers(t, cfg)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout bytes.Buffer
	result, err := Run(ctx, testConfig(t), WithStdout(&stdout))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StepStatusPending, result.Steps[0].Status)
}

func TestRunRecordsTelemetry(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := infrastructure.NewPipelineMetrics(meterProvider.Meter("test"))
	require.NoError(t, err)

	recorder := tracetest.NewSpanRecorder()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	cfg := testConfig(t)
	cfg.ExportCSV = false
	cfg.ExportWorkbook = false
	_, _, err = runWithBuffers(t, cfg, WithMetrics(metrics), WithTracer(tracerProvider.Tracer("test")))
	require.NoError(t, err)

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.Contains(t, names, "pipeline.run")
	assert.Contains(t, names, "pipeline.step.load")
	assert.Contains(t, names, "pipeline.step.render")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	assert.Equal(t, int64(8), sumCounter(t, rm, "covid_rows_loaded_total"))
	assert.Equal(t, int64(2), sumCounter(t, rm, "covid_rows_excluded_total"))
	assert.Equal(t, int64(3), sumCounter(t, rm, "covid_charts_rendered_total"))
}

func sumCounter(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	t.Fatalf("metric %s not recorded", name)
	return 0
}

func TestStepState(t *testing.T) {
	s := NewStepState(StepLoad, "Load dataset")
	assert.Equal(t, StepStatusPending, s.Status)
	assert.Zero(t, s.Duration())

	s.Start()
	time.Sleep(time.Millisecond)
	s.Complete()
	assert.Equal(t, StepStatusCompleted, s.Status)
	assert.Positive(t, s.Duration())

	s.Skip("nothing to do")
	assert.Equal(t, StepStatusSkipped, s.Status)
	assert.Equal(t, "nothing to do", s.Message)
}

func TestSkipError(t *testing.T) {
	reason, ok := isSkip(skip("exports disabled"))
	assert.True(t, ok)
	assert.Equal(t, "exports disabled", reason)

	_, ok = isSkip(assert.AnError)
	assert.False(t, ok)
}
