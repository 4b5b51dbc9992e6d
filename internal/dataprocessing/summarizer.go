package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"covidpulse/pkg/contracts/domain"
)

// LocationSummary condenses one location's records into headline numbers
type LocationSummary struct {
	Location   string    `json:"location"`
	ISOCode    string    `json:"iso_code,omitempty"`
	Continent  string    `json:"continent,omitempty"`
	FirstDate  time.Time `json:"first_date"`
	LastDate   time.Time `json:"last_date"`
	Days       int       `json:"days"`
	TotalCases float64   `json:"total_cases"`

	MaxTotalDeaths          domain.NullFloat64 `json:"max_total_deaths"`
	LatestPercentVaccinated domain.NullFloat64 `json:"latest_percent_vaccinated"`
	Population              domain.NullFloat64 `json:"population"`
}

// Summarizer builds per-location summaries of a cleaned dataset
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a summarizer; a nil logger uses slog.Default
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger.With(slog.String("component", "summarizer"))}
}

// Summarize returns one summary per location, sorted by location name
func (s *Summarizer) Summarize(ctx context.Context, ds *domain.Dataset) []LocationSummary {
	byLocation := make(map[string]*LocationSummary)
	for _, rec := range ds.Records {
		sum, ok := byLocation[rec.Location]
		if !ok {
			sum = &LocationSummary{
				Location:  rec.Location,
				ISOCode:   rec.ISOCode,
				Continent: rec.Continent,
			}
			byLocation[rec.Location] = sum
		}
		accumulate(sum, rec)
	}

	summaries := make([]LocationSummary, 0, len(byLocation))
	for _, sum := range byLocation {
		summaries = append(summaries, *sum)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Location < summaries[j].Location
	})

	s.logger.DebugContext(ctx, "Summarized locations", slog.Int("locations", len(summaries)))
	return summaries
}

func accumulate(sum *LocationSummary, rec domain.Record) {
	sum.Days++
	sum.TotalCases += rec.NewCases.ValueOr(0)

	if !rec.Date.IsZero() {
		if sum.FirstDate.IsZero() || rec.Date.Before(sum.FirstDate) {
			sum.FirstDate = rec.Date
		}
		if rec.Date.After(sum.LastDate) {
			sum.LastDate = rec.Date
		}
	}

	if rec.TotalDeaths.Valid && (!sum.MaxTotalDeaths.Valid || rec.TotalDeaths.Float64 > sum.MaxTotalDeaths.Float64) {
		sum.MaxTotalDeaths = rec.TotalDeaths
	}
	if rec.Population.Valid {
		sum.Population = rec.Population
	}
	if rec.PeopleVaccinated.Valid && rec.Population.Valid && rec.Population.Float64 != 0 {
		sum.LatestPercentVaccinated = domain.Some(rec.PeopleVaccinated.Float64 / rec.Population.Float64 * 100)
	}
}
