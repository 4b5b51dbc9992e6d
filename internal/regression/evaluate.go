package regression

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"

	"covidpulse/internal/config"
	"covidpulse/internal/errors"
	"covidpulse/internal/infrastructure"
)

// Evaluation is the outcome of training on one split and scoring on the other
type Evaluation struct {
	Model             Model   `json:"model"`
	TrainSize         int     `json:"train_size"`
	TestSize          int     `json:"test_size"`
	MSE               float64 `json:"mse"`
	R2                float64 `json:"r2"`
	SampleTemperature float64 `json:"sample_temperature"`
	PredictedSales    float64 `json:"predicted_sales"`
}

// Evaluate loads the samples, splits them, fits on the training part and
// scores on the held-out part
func Evaluate(cfg config.RegressionConfig) (Evaluation, error) {
	if err := cfg.Validate(); err != nil {
		return Evaluation{}, errors.NewConfigError("invalid regression configuration", err)
	}

	logger := infrastructure.ComponentLogger("regression")

	samples, err := LoadSamples(cfg.DataPath)
	if err != nil {
		return Evaluation{}, err
	}

	train, test, err := TrainTestSplit(samples, cfg.TestSize, cfg.RandomState)
	if err != nil {
		return Evaluation{}, err
	}

	model, err := Fit(train)
	if err != nil {
		return Evaluation{}, err
	}

	actual := make([]float64, len(test))
	for i, s := range test {
		actual[i] = s.Sales
	}
	predicted := model.PredictAll(test)

	eval := Evaluation{
		Model:             *model,
		TrainSize:         len(train),
		TestSize:          len(test),
		MSE:               MeanSquaredError(actual, predicted),
		R2:                R2Score(actual, predicted),
		SampleTemperature: cfg.SampleTemperature,
		PredictedSales:    model.Predict(cfg.SampleTemperature),
	}

	logger.Info("Regression evaluated",
		slog.String("data_path", cfg.DataPath),
		slog.Int("train_size", eval.TrainSize),
		slog.Int("test_size", eval.TestSize),
		slog.Float64("intercept", model.Intercept),
		slog.Float64("slope", model.Slope),
		slog.Float64("mse", eval.MSE),
		slog.Float64("r2", eval.R2))

	return eval, nil
}

// WriteReport prints the evaluation in the classic console format
func WriteReport(w io.Writer, e Evaluation) error {
	_, err := fmt.Fprintf(w,
		"Linear Regression model trained successfully.\n"+
			"Mean Squared Error (MSE): %s\n"+
			"R-squared (R²): %s\n"+
			"\n--- Model Demonstration ---\n"+
			"Sample Temperature (Celsius): %s\n"+
			"Predicted Ice Cream Sales: %.2f\n",
		formatNumber(e.MSE),
		formatNumber(e.R2),
		formatNumber(e.SampleTemperature),
		e.PredictedSales,
	)
	return err
}

// MissingFileMessage is printed when the data file is absent
func MissingFileMessage(path string) string {
	return fmt.Sprintf("Error: '%s' not found. Make sure the file is in the current directory.", path)
}

func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
