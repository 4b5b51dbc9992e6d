package regression

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"covidpulse/internal/errors"
)

// Model is a fitted line: sales = Intercept + Slope * temperature
type Model struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// Fit estimates the least-squares line through samples.
// It needs at least two samples with different temperatures.
func Fit(samples []Sample) (*Model, error) {
	if len(samples) < 2 {
		return nil, errors.NewAppValidationError("at least two samples are required to fit a line").
			WithContext("samples", len(samples))
	}

	xs, ys := columns(samples)
	if stat.Variance(xs, nil) == 0 {
		return nil, errors.NewAppValidationError("temperature is constant across samples")
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return &Model{Intercept: alpha, Slope: beta}, nil
}

// Predict returns the predicted sales at temperature x
func (m *Model) Predict(x float64) float64 {
	return m.Intercept + m.Slope*x
}

// PredictAll predicts every sample's sales
func (m *Model) PredictAll(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = m.Predict(s.Temperature)
	}
	return out
}

// MeanSquaredError is the mean of squared differences; NaN for no values
func MeanSquaredError(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return math.NaN()
	}
	sq := make([]float64, len(actual))
	for i := range actual {
		d := actual[i] - predicted[i]
		sq[i] = d * d
	}
	return stat.Mean(sq, nil)
}

// R2Score is the coefficient of determination of predicted against actual.
// It is NaN for fewer than two values.
func R2Score(actual, predicted []float64) float64 {
	if len(actual) < 2 || len(actual) != len(predicted) {
		return math.NaN()
	}
	return stat.RSquaredFrom(predicted, actual, nil)
}

// TrainTestSplit shuffles samples with a seeded source and holds out
// ceil(testSize*n) of them for testing. The same seed gives the same split.
func TrainTestSplit(samples []Sample, testSize float64, seed int64) (train, test []Sample, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, errors.NewAppValidationError("test size must be between 0 and 1").
			WithContext("test_size", testSize)
	}

	n := len(samples)
	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest < 1 || nTest >= n {
		return nil, nil, errors.NewAppValidationError("not enough samples to split").
			WithContext("samples", n).
			WithContext("test_size", testSize)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = make([]Sample, 0, nTest)
	train = make([]Sample, 0, n-nTest)
	for i, idx := range perm {
		if i < nTest {
			test = append(test, samples[idx])
		} else {
			train = append(train, samples[idx])
		}
	}
	return train, test, nil
}
