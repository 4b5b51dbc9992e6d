package report

import (
	"math"

	"github.com/chewxy/stl"

	"covidpulse/pkg/contracts/domain"
)

const (
	// TrendPeriod is the weekly reporting cycle visible in daily case counts
	TrendPeriod = 7

	// MinTrendPoints is the shortest series that gets a trend (two full periods)
	MinTrendPoints = 2 * TrendPeriod
)

// WeeklyTrend separates the weekly reporting cycle from daily new cases and
// returns the trend component. Every point is unknown when the series is
// shorter than MinTrendPoints or the decomposition fails.
func WeeklyTrend(newCases []float64) []domain.NullFloat64 {
	if len(newCases) < MinTrendPoints {
		return unknownTrend(len(newCases))
	}
	return decomposeTrend(newCases, TrendPeriod)
}

func decomposeTrend(values []float64, period int) (trend []domain.NullFloat64) {
	n := len(values)
	if hasNaN(values) {
		return unknownTrend(n)
	}

	// Decompose works in place
	arr := make([]float64, n)
	copy(arr, values)

	defer func() {
		if recover() != nil {
			trend = unknownTrend(n)
		}
	}()

	res := stl.Decompose(arr, period, n-1, stl.Additive(), stl.WithRobustIter(2), stl.WithIter(2))
	return trendFromResult(res, n)
}

// trendFromResult rejects failed decompositions: stl allocates Trend before
// iterating, so a result with Err set can still carry n zeroed values.
func trendFromResult(res stl.Result, n int) []domain.NullFloat64 {
	if res.Err != nil || len(res.Trend) != n || hasNaN(res.Trend) {
		return unknownTrend(n)
	}

	trend := make([]domain.NullFloat64, n)
	for i, v := range res.Trend {
		trend[i] = domain.Some(v)
	}
	return trend
}

func unknownTrend(n int) []domain.NullFloat64 {
	return make([]domain.NullFloat64, n)
}

func hasNaN(arr []float64) bool {
	for _, v := range arr {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
