package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidpulse/internal/infrastructure"
)

func executeRegression(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	var stdout bytes.Buffer
	cmd := newRootCommand(&stdout)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestRegressionCommand(t *testing.T) {
	stdout, err := executeRegression(t, "--data", filepath.Join("testdata", "temperature_data.csv"))
	require.NoError(t, err)

	assert.Contains(t, stdout, "Linear Regression model trained successfully.\n")
	assert.Contains(t, stdout, "Mean Squared Error (MSE): ")
	assert.Contains(t, stdout, "R-squared (R²): ")
	assert.Contains(t, stdout, "\n--- Model Demonstration ---\n")
	assert.Contains(t, stdout, "Sample Temperature (Celsius): 25\n")
	assert.Contains(t, stdout, "Predicted Ice Cream Sales: ")
}

func TestRegressionCommandSampleTemp(t *testing.T) {
	stdout, err := executeRegression(t,
		"--data", filepath.Join("testdata", "temperature_data.csv"),
		"--sample-temp", "30.5",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sample Temperature (Celsius): 30.5\n")
}

func TestRegressionCommandMissingFileExitsCleanly(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "temperature_data.csv")

	stdout, err := executeRegression(t, "--data", missing)
	require.NoError(t, err)
	assert.Equal(t,
		"Error: '"+missing+"' not found. Make sure the file is in the current directory.\n",
		stdout)
}

func TestRegressionCommandInvalidTestSize(t *testing.T) {
	_, err := executeRegression(t,
		"--data", filepath.Join("testdata", "temperature_data.csv"),
		"--test-size", "1.5",
	)
	assert.Error(t, err)
}
