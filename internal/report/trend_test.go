package report

import (
	"errors"
	"math"
	"testing"

	"github.com/chewxy/stl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// weekly pattern on top of a linear rise
func seasonalCases(weeks int) []float64 {
	pattern := []float64{10, 40, 50, 45, 40, 20, 5}
	out := make([]float64, 0, weeks*TrendPeriod)
	for i := 0; i < weeks*TrendPeriod; i++ {
		out = append(out, float64(i)*2+pattern[i%TrendPeriod])
	}
	return out
}

func TestWeeklyTrend(t *testing.T) {
	cases := seasonalCases(6)
	input := append([]float64(nil), cases...)

	trend := WeeklyTrend(cases)

	require.Len(t, trend, len(cases))
	for i, v := range trend {
		require.True(t, v.Valid, "point %d", i)
		assert.False(t, math.IsNaN(v.Float64))
	}
	// the trend keeps rising across the series
	assert.Greater(t, trend[len(trend)-4].Float64, trend[3].Float64)
	// input is not modified
	assert.Equal(t, input, cases)
}

func TestWeeklyTrendTooShort(t *testing.T) {
	trend := WeeklyTrend(seasonalCases(1))

	require.Len(t, trend, TrendPeriod)
	for _, v := range trend {
		assert.False(t, v.Valid)
	}
	assert.Empty(t, WeeklyTrend(nil))
}

func TestWeeklyTrendNaNInput(t *testing.T) {
	cases := seasonalCases(3)
	cases[5] = math.NaN()

	for _, v := range WeeklyTrend(cases) {
		assert.False(t, v.Valid)
	}
}

func TestDecomposeTrendFailures(t *testing.T) {
	cases := seasonalCases(3)
	n := len(cases)

	// periodicity below 2 makes stl return an error before decomposing
	for _, v := range decomposeTrend(cases, 1) {
		assert.False(t, v.Valid)
	}
	assert.Len(t, decomposeTrend(cases, 1), n)

	results := []struct {
		name string
		res  stl.Result
	}{
		{"error with allocated trend", stl.Result{Trend: make([]float64, n), Err: errors.New("failed to smooth subcycles")}},
		{"short trend", stl.Result{Trend: make([]float64, n-1)}},
		{"nan trend", stl.Result{Trend: append(make([]float64, n-1), math.NaN())}},
	}
	for _, tt := range results {
		t.Run(tt.name, func(t *testing.T) {
			trend := trendFromResult(tt.res, n)
			require.Len(t, trend, n)
			for _, v := range trend {
				assert.False(t, v.Valid)
			}
		})
	}

	ok := trendFromResult(stl.Result{Trend: []float64{1, 2}}, 2)
	assert.True(t, ok[0].Valid)
	assert.Equal(t, 2.0, ok[1].Float64)
}
