package http

import (
	"context"
	"io"

	"covidpulse/internal/dataprocessing"
	api "covidpulse/pkg/contracts/api/v1"
	"covidpulse/pkg/contracts/domain"
)

// CovidServiceInterface defines the dataset queries the API serves
type CovidServiceInterface interface {
	Status() api.DatasetStatus
	Locations(ctx context.Context) ([]dataprocessing.LocationSummary, error)
	Series(ctx context.Context, country string) (domain.CountrySeries, error)
	Deaths(ctx context.Context, countries []string) ([]domain.CountryDeaths, error)
	RenderChart(ctx context.Context, w io.Writer, country, chart string) error
	RenderDeathsChart(ctx context.Context, w io.Writer, countries []string) error
}
