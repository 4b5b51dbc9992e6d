package domain

import (
	"time"
)

// CountrySeries holds the per-country values derived for the report.
// It is recomputed on every query and never persisted.
type CountrySeries struct {
	Country           string        `json:"country"`
	Dates             []time.Time   `json:"dates"`
	NewCases          []float64     `json:"new_cases"`
	CumulativeCases   []float64     `json:"cumulative_cases"`
	PercentVaccinated []NullFloat64 `json:"percent_vaccinated"`
	NewCasesTrend     []NullFloat64 `json:"new_cases_trend,omitempty"`
}

// Len returns the number of points in the series
func (s CountrySeries) Len() int {
	return len(s.Dates)
}

// LatestPercentVaccinated returns the last known vaccination percentage
func (s CountrySeries) LatestPercentVaccinated() NullFloat64 {
	for i := len(s.PercentVaccinated) - 1; i >= 0; i-- {
		if s.PercentVaccinated[i].Valid {
			return s.PercentVaccinated[i]
		}
	}
	return None()
}

// TotalCases returns the final cumulative case count
func (s CountrySeries) TotalCases() float64 {
	if len(s.CumulativeCases) == 0 {
		return 0
	}
	return s.CumulativeCases[len(s.CumulativeCases)-1]
}

// CountryDeaths is the maximum reported total deaths for a country
type CountryDeaths struct {
	Country        string      `json:"country"`
	MaxTotalDeaths NullFloat64 `json:"max_total_deaths"`
}
