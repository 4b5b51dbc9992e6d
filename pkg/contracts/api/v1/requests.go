// Package api contains the HTTP API contract of the COVID Pulse web service.
// Version v1 represents the current stable API version.
package api

import (
	"time"

	"covidpulse/pkg/contracts/domain"
)

// Common request parameters

// DateRangeRequest limits a series to [From, To], both inclusive
type DateRangeRequest struct {
	From string `json:"from" query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to" query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// Series API Requests

// SeriesRequest selects one country's series
type SeriesRequest struct {
	Country string `json:"country" param:"country" validate:"required,max=100"`
	DateRangeRequest
}

// ChartRequest selects one of the per-country charts
type ChartRequest struct {
	Country string `json:"country" param:"country" validate:"required,max=100"`
	Chart   string `json:"chart" param:"chart" validate:"required,oneof=cases vaccination"`
}

// DeathsRequest lists the countries to compare; empty means the configured set
type DeathsRequest struct {
	Countries []string `json:"countries" query:"countries" validate:"omitempty,max=20,dive,required,max=100"`
}

// Responses

// SeriesPoint is one day of a country series
type SeriesPoint struct {
	Date              string             `json:"date"`
	NewCases          float64            `json:"new_cases"`
	CumulativeCases   float64            `json:"cumulative_cases"`
	PercentVaccinated domain.NullFloat64 `json:"percent_vaccinated"`
	NewCasesTrend     domain.NullFloat64 `json:"new_cases_trend"`
}

// SeriesResponse is the body of GET /api/v1/countries/{country}/series
type SeriesResponse struct {
	Country                 string             `json:"country"`
	Count                   int                `json:"count"`
	TotalCases              float64            `json:"total_cases"`
	LatestPercentVaccinated domain.NullFloat64 `json:"latest_percent_vaccinated"`
	Points                  []SeriesPoint      `json:"points"`
}

// LocationItem is one row of GET /api/v1/locations
type LocationItem struct {
	Location                string             `json:"location"`
	ISOCode                 string             `json:"iso_code,omitempty"`
	Continent               string             `json:"continent,omitempty"`
	FirstDate               string             `json:"first_date"`
	LastDate                string             `json:"last_date"`
	Days                    int                `json:"days"`
	TotalCases              float64            `json:"total_cases"`
	MaxTotalDeaths          domain.NullFloat64 `json:"max_total_deaths"`
	LatestPercentVaccinated domain.NullFloat64 `json:"latest_percent_vaccinated"`
}

// LocationsResponse is the body of GET /api/v1/locations
type LocationsResponse struct {
	Count     int            `json:"count"`
	Locations []LocationItem `json:"locations"`
}

// DeathsResponse is the body of GET /api/v1/deaths
type DeathsResponse struct {
	Count     int                    `json:"count"`
	Countries []domain.CountryDeaths `json:"countries"`
}

// DatasetStatus describes the dataset held by the web service
type DatasetStatus struct {
	Loaded       bool      `json:"loaded"`
	Source       string    `json:"source"`
	Rows         int       `json:"rows"`
	Locations    int       `json:"locations"`
	RowsExcluded int       `json:"rows_excluded"`
	LoadedAt     time.Time `json:"loaded_at,omitempty"`
}
