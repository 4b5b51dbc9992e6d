package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidpulse/internal/infrastructure"
)

func executeReport(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(infrastructure.ResetLoggerForTesting)
	t.Setenv("COVID_TELEMETRY_ENABLE_METRICS", "false")

	var stdout bytes.Buffer
	cmd := newRootCommand(&stdout)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestReportCommand(t *testing.T) {
	out := t.TempDir()

	stdout, err := executeReport(t,
		"--source", filepath.Join("testdata", "owid_sample.csv"),
		"--country", "Italy",
		"--compare", "Egypt,Italy,India",
		"--out", out,
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Data loaded and cleaned.")
	// Italy has no vaccination data in the sample
	assert.Contains(t, stdout, "Charts saved: cases_over_time.png, total_deaths_comparison.png\n")
	assert.Contains(t, stdout, "Charts skipped: vaccination_progress.png")
	assert.FileExists(t, filepath.Join(out, "cases_over_time.png"))
	assert.FileExists(t, filepath.Join(out, "italy_series.csv"))
}

func TestReportCommandMissingSource(t *testing.T) {
	_, err := executeReport(t,
		"--source", filepath.Join(t.TempDir(), "nope.csv"),
		"--out", t.TempDir(),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load:")
}

func TestReportCommandFlagsOverrideConfig(t *testing.T) {
	cmd := newRootCommand(&bytes.Buffer{})
	require.NoError(t, cmd.ParseFlags([]string{"--country", "Peru", "--exclude", "World"}))

	cfg, err := loadConfig(cmd, &reportOptions{country: "Peru", exclude: []string{"World"}})
	require.NoError(t, err)
	assert.Equal(t, "Peru", cfg.Report.Country)
	assert.Equal(t, []string{"World"}, cfg.Report.ExcludedLocations)
	// untouched flags keep the configured values
	assert.Equal(t, []string{"Egypt", "Italy", "India", "Brazil", "United States"}, cfg.Report.CompareCountries)
}

func TestReportCommandRejectsArgs(t *testing.T) {
	_, err := executeReport(t, "extra")
	assert.Error(t, err)
}
