package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"covidpulse/internal/config"
	"covidpulse/internal/dataprocessing"
	"covidpulse/internal/errors"
	"covidpulse/internal/report"
	api "covidpulse/pkg/contracts/api/v1"
	"covidpulse/pkg/contracts/domain"
	"covidpulse/pkg/contracts/events"
)

// Notifier receives dataset lifecycle events
type Notifier interface {
	Publish(ctx context.Context, msgType events.MessageType, data interface{})
}

// CovidService holds one cleaned copy of the dataset in memory and answers
// queries against it. The dataset is replaced wholesale on every Load.
type CovidService struct {
	cfg        config.ReportConfig
	loader     *dataprocessing.Loader
	summarizer *dataprocessing.Summarizer
	notifier   Notifier
	logger     *slog.Logger

	mu        sync.RWMutex
	ds        *domain.Dataset
	stats     dataprocessing.CleanStats
	summaries []dataprocessing.LocationSummary
	loadedAt  time.Time
}

// NewCovidService creates a service for cfg. Nothing is loaded until Load.
func NewCovidService(cfg config.ReportConfig, loader *dataprocessing.Loader, logger *slog.Logger) *CovidService {
	if logger == nil {
		logger = slog.Default()
	}
	if loader == nil {
		loader = dataprocessing.NewLoader(cfg.FetchTimeout, logger)
	}
	return &CovidService{
		cfg:        cfg,
		loader:     loader,
		summarizer: dataprocessing.NewSummarizer(logger),
		logger:     logger.With(slog.String("service", "covid")),
	}
}

// SetNotifier registers n to receive an event after every Load attempt.
// Call it before the first Load.
func (s *CovidService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Load reads and cleans the configured source. On failure the previously
// loaded dataset, if any, stays in place.
func (s *CovidService) Load(ctx context.Context) error {
	if err := s.load(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Dataset load failed",
			slog.String("source", s.cfg.Source),
			slog.String("error", err.Error()))
		s.notify(ctx, events.MessageTypeDatasetLoadFailed,
			events.LoadFailed{Source: s.cfg.Source, Error: err.Error()})
		return err
	}
	s.notify(ctx, events.MessageTypeDatasetLoaded, s.Status())
	return nil
}

func (s *CovidService) notify(ctx context.Context, msgType events.MessageType, data interface{}) {
	if s.notifier != nil {
		s.notifier.Publish(ctx, msgType, data)
	}
}

func (s *CovidService) load(ctx context.Context) error {
	start := time.Now()

	ds, err := s.loader.Load(ctx, s.cfg.Source)
	if err != nil {
		return err
	}

	stats, err := dataprocessing.Clean(ds, dataprocessing.CleanOptions{
		ExcludedLocations:     s.cfg.ExcludedLocations,
		ExcludeOWIDAggregates: s.cfg.ExcludeOWIDAggregates,
	})
	if err != nil {
		return err
	}
	summaries := s.summarizer.Summarize(ctx, ds)

	s.mu.Lock()
	s.ds = ds
	s.stats = stats
	s.summaries = summaries
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("source", s.cfg.Source),
		slog.Int("rows", stats.RowsOut),
		slog.Int("rows_excluded", stats.RowsExcluded),
		slog.Int("locations", len(summaries)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Ready reports whether a dataset is loaded
func (s *CovidService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds != nil
}

// Status describes the loaded dataset
func (s *CovidService) Status() api.DatasetStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return api.DatasetStatus{
		Loaded:       s.ds != nil,
		Source:       s.cfg.Source,
		Rows:         s.ds.Len(),
		Locations:    len(s.summaries),
		RowsExcluded: s.stats.RowsExcluded,
		LoadedAt:     s.loadedAt,
	}
}

func (s *CovidService) dataset() (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return nil, ErrDatasetNotLoaded
	}
	return s.ds, nil
}

// Locations returns one summary per location, sorted by name
func (s *CovidService) Locations(ctx context.Context) ([]dataprocessing.LocationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return nil, ErrDatasetNotLoaded
	}
	out := make([]dataprocessing.LocationSummary, len(s.summaries))
	copy(out, s.summaries)
	return out, nil
}

// Series derives the report series for country
func (s *CovidService) Series(ctx context.Context, country string) (domain.CountrySeries, error) {
	ds, err := s.dataset()
	if err != nil {
		return domain.CountrySeries{}, err
	}

	records := dataprocessing.CountryData(ds, country)
	if len(records) == 0 {
		return domain.CountrySeries{}, errors.NewNotFoundError(fmt.Sprintf("location %q", country)).
			WithContext("country", country)
	}
	return report.DeriveSeries(country, records), nil
}

// Deaths returns the maximum total deaths per country, in request order.
// An empty list compares the configured countries.
func (s *CovidService) Deaths(ctx context.Context, countries []string) ([]domain.CountryDeaths, error) {
	ds, err := s.dataset()
	if err != nil {
		return nil, err
	}
	if len(countries) == 0 {
		countries = s.cfg.CompareCountries
	}
	return report.MaxTotalDeaths(ds, countries), nil
}

// RenderChart draws the cases or vaccination chart for country as PNG
func (s *CovidService) RenderChart(ctx context.Context, w io.Writer, country, chart string) error {
	var render func(io.Writer, domain.CountrySeries) error
	switch chart {
	case report.ChartCases:
		render = report.RenderCasesChart
	case report.ChartVaccination:
		render = report.RenderVaccinationChart
	default:
		return errors.NewAppError(errors.ErrTypeValidation,
			fmt.Sprintf("chart must be %q or %q", report.ChartCases, report.ChartVaccination),
			ErrUnknownChart).WithContext("chart", chart)
	}

	series, err := s.Series(ctx, country)
	if err != nil {
		return err
	}
	return render(w, series)
}

// RenderDeathsChart draws the total deaths comparison as PNG
func (s *CovidService) RenderDeathsChart(ctx context.Context, w io.Writer, countries []string) error {
	deaths, err := s.Deaths(ctx, countries)
	if err != nil {
		return err
	}
	return report.RenderDeathsChart(w, deaths)
}
