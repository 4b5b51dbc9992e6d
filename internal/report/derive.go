package report

import (
	"time"

	"covidpulse/internal/dataprocessing"
	"covidpulse/pkg/contracts/domain"
)

// DeriveSeries builds the per-country report series from cleaned records.
// Records are used in the order given.
func DeriveSeries(country string, records []domain.Record) domain.CountrySeries {
	s := domain.CountrySeries{
		Country:           country,
		Dates:             make([]time.Time, 0, len(records)),
		NewCases:          make([]float64, 0, len(records)),
		CumulativeCases:   make([]float64, 0, len(records)),
		PercentVaccinated: make([]domain.NullFloat64, 0, len(records)),
	}

	var total float64
	for _, rec := range records {
		daily := rec.NewCases.ValueOr(0)
		total += daily

		s.Dates = append(s.Dates, rec.Date)
		s.NewCases = append(s.NewCases, daily)
		s.CumulativeCases = append(s.CumulativeCases, total)
		s.PercentVaccinated = append(s.PercentVaccinated, PercentVaccinated(rec))
	}

	s.NewCasesTrend = WeeklyTrend(s.NewCases)
	return s
}

// PercentVaccinated returns people_vaccinated / population * 100.
// Unknown when either value is missing or the population is zero.
func PercentVaccinated(rec domain.Record) domain.NullFloat64 {
	if !rec.PeopleVaccinated.Valid || !rec.Population.Valid || rec.Population.Float64 == 0 {
		return domain.None()
	}
	return domain.Some(rec.PeopleVaccinated.Float64 / rec.Population.Float64 * 100)
}

// MaxTotalDeaths returns the highest reported total_deaths for each country,
// in the order requested. Countries without any value are unknown.
func MaxTotalDeaths(ds *domain.Dataset, countries []string) []domain.CountryDeaths {
	out := make([]domain.CountryDeaths, 0, len(countries))
	for _, country := range countries {
		best := domain.None()
		for _, rec := range dataprocessing.CountryData(ds, country) {
			if !rec.TotalDeaths.Valid {
				continue
			}
			if !best.Valid || rec.TotalDeaths.Float64 > best.Float64 {
				best = rec.TotalDeaths
			}
		}
		out = append(out, domain.CountryDeaths{Country: country, MaxTotalDeaths: best})
	}
	return out
}
