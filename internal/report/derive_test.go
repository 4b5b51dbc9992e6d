package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidpulse/pkg/contracts/domain"
)

func day(n int) time.Time {
	return time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func egyptRecords() []domain.Record {
	return []domain.Record{
		{Location: "Egypt", Date: day(0), NewCases: domain.Some(1000), TotalDeaths: domain.Some(8000), Population: domain.Some(102000000)},
		{Location: "Egypt", Date: day(1), NewCases: domain.Some(0), TotalDeaths: domain.Some(8050), PeopleVaccinated: domain.Some(1020000), Population: domain.Some(102000000)},
		{Location: "Egypt", Date: day(2), NewCases: domain.Some(2100), TotalDeaths: domain.Some(8090), PeopleVaccinated: domain.Some(2040000), Population: domain.Some(102000000)},
	}
}

func TestDeriveSeries(t *testing.T) {
	s := DeriveSeries("Egypt", egyptRecords())

	assert.Equal(t, "Egypt", s.Country)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{1000, 0, 2100}, s.NewCases)
	assert.Equal(t, []float64{1000, 1000, 3100}, s.CumulativeCases)
	assert.Equal(t, []domain.NullFloat64{domain.None(), domain.Some(1), domain.Some(2)}, s.PercentVaccinated)
	// too short for a weekly trend
	require.Len(t, s.NewCasesTrend, 3)
	for _, v := range s.NewCasesTrend {
		assert.False(t, v.Valid)
	}
}

func TestDeriveSeriesEmpty(t *testing.T) {
	s := DeriveSeries("Atlantis", nil)

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0.0, s.TotalCases())
	assert.Empty(t, s.NewCasesTrend)
}

func TestCumulativeCasesNonDecreasing(t *testing.T) {
	var records []domain.Record
	for i, n := range []float64{5, 0, 12, 3, 0, 0, 40, 1} {
		records = append(records, domain.Record{Date: day(i), NewCases: domain.Some(n)})
	}

	s := DeriveSeries("Chad", records)
	for i := 1; i < s.Len(); i++ {
		assert.GreaterOrEqual(t, s.CumulativeCases[i], s.CumulativeCases[i-1])
	}
	assert.Equal(t, 61.0, s.TotalCases())
}

func TestPercentVaccinated(t *testing.T) {
	tests := []struct {
		name string
		rec  domain.Record
		want domain.NullFloat64
	}{
		{
			name: "known values",
			rec:  domain.Record{PeopleVaccinated: domain.Some(25), Population: domain.Some(200)},
			want: domain.Some(12.5),
		},
		{
			name: "nobody vaccinated is zero, not unknown",
			rec:  domain.Record{PeopleVaccinated: domain.Some(0), Population: domain.Some(200)},
			want: domain.Some(0),
		},
		{
			name: "missing people_vaccinated",
			rec:  domain.Record{Population: domain.Some(200)},
			want: domain.None(),
		},
		{
			name: "zero population",
			rec:  domain.Record{PeopleVaccinated: domain.Some(25), Population: domain.Some(0)},
			want: domain.None(),
		},
		{
			name: "missing population",
			rec:  domain.Record{PeopleVaccinated: domain.Some(25)},
			want: domain.None(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PercentVaccinated(tt.rec))
		})
	}
}

func TestMaxTotalDeaths(t *testing.T) {
	ds := &domain.Dataset{Records: append(egyptRecords(),
		domain.Record{Location: "Italy", Date: day(0), TotalDeaths: domain.Some(74000)},
		domain.Record{Location: "Italy", Date: day(1)},
		domain.Record{Location: "Peru", Date: day(0)},
	)}

	got := MaxTotalDeaths(ds, []string{"Italy", "Egypt", "Peru", "Atlantis"})

	assert.Equal(t, []domain.CountryDeaths{
		{Country: "Italy", MaxTotalDeaths: domain.Some(74000)},
		{Country: "Egypt", MaxTotalDeaths: domain.Some(8090)},
		{Country: "Peru", MaxTotalDeaths: domain.None()},
		{Country: "Atlantis", MaxTotalDeaths: domain.None()},
	}, got)
}
