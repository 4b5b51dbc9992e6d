package http

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"covidpulse/internal/config"
	"covidpulse/internal/dataprocessing"
	apierrors "covidpulse/internal/errors"
	"covidpulse/internal/exporter"
	"covidpulse/internal/services"
	api "covidpulse/pkg/contracts/api/v1"
	"covidpulse/pkg/contracts/domain"
)

const dateLayout = "2006-01-02"

// CovidHandler serves the dataset queries with RFC 7807 errors
type CovidHandler struct {
	service      CovidServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewCovidHandler creates a new COVID data handler
func NewCovidHandler(service CovidServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *CovidHandler {
	return &CovidHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "covid_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the data routes, mounted under /api/v1
func (h *CovidHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/status", h.GetStatus)
	r.Get("/locations", h.GetLocations)

	r.Route("/countries/{country}", func(r chi.Router) {
		r.Use(h.CountryCtx)
		r.Get("/series", h.GetSeries)
		r.Get("/series.csv", h.GetSeriesCSV)
		r.Get("/charts/{chart}", h.GetChart)
	})

	r.Get("/deaths", h.GetDeaths)
	r.Get("/deaths/chart", h.GetDeathsChart)

	return r
}

// CountryCtx middleware validates the country path parameter
func (h *CovidHandler) CountryCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		country := chi.URLParam(r, "country")
		if err := h.validate.Struct(api.SeriesRequest{Country: country}); err != nil {
			h.errorHandler.HandleError(w, r, validationProblem(err))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetStatus handles GET /api/v1/status
func (h *CovidHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Status())
}

// GetLocations handles GET /api/v1/locations
func (h *CovidHandler) GetLocations(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.Locations(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list locations", err)
		return
	}

	resp := api.LocationsResponse{
		Count:     len(summaries),
		Locations: make([]api.LocationItem, 0, len(summaries)),
	}
	for _, s := range summaries {
		resp.Locations = append(resp.Locations, locationItem(s))
	}
	render.JSON(w, r, resp)
}

// GetSeries handles GET /api/v1/countries/{country}/series?from=&to=
func (h *CovidHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	series, ok := h.loadSeries(w, r)
	if !ok {
		return
	}

	resp := api.SeriesResponse{
		Country:                 series.Country,
		Count:                   series.Len(),
		TotalCases:              series.TotalCases(),
		LatestPercentVaccinated: series.LatestPercentVaccinated(),
		Points:                  make([]api.SeriesPoint, 0, series.Len()),
	}
	for i, d := range series.Dates {
		resp.Points = append(resp.Points, api.SeriesPoint{
			Date:              d.Format(dateLayout),
			NewCases:          series.NewCases[i],
			CumulativeCases:   series.CumulativeCases[i],
			PercentVaccinated: nullAt(series.PercentVaccinated, i),
			NewCasesTrend:     nullAt(series.NewCasesTrend, i),
		})
	}
	render.JSON(w, r, resp)
}

// GetSeriesCSV handles GET /api/v1/countries/{country}/series.csv
func (h *CovidHandler) GetSeriesCSV(w http.ResponseWriter, r *http.Request) {
	series, ok := h.loadSeries(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := exporter.WriteSeriesCSV(&buf, series); err != nil {
		h.fail(w, r, "failed to write series csv", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", config.Slug(series.Country)+"_series.csv"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetChart handles GET /api/v1/countries/{country}/charts/{chart}
func (h *CovidHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	req := api.ChartRequest{
		Country: chi.URLParam(r, "country"),
		Chart:   chi.URLParam(r, "chart"),
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, validationProblem(err))
		return
	}

	h.writePNG(w, r, func(buf io.Writer) error {
		return h.service.RenderChart(r.Context(), buf, req.Country, req.Chart)
	})
}

// GetDeaths handles GET /api/v1/deaths?countries=Egypt,Italy
func (h *CovidHandler) GetDeaths(w http.ResponseWriter, r *http.Request) {
	req, ok := h.deathsRequest(w, r)
	if !ok {
		return
	}

	deaths, err := h.service.Deaths(r.Context(), req.Countries)
	if err != nil {
		h.fail(w, r, "failed to compare deaths", err)
		return
	}
	render.JSON(w, r, api.DeathsResponse{Count: len(deaths), Countries: deaths})
}

// GetDeathsChart handles GET /api/v1/deaths/chart?countries=Egypt,Italy
func (h *CovidHandler) GetDeathsChart(w http.ResponseWriter, r *http.Request) {
	req, ok := h.deathsRequest(w, r)
	if !ok {
		return
	}

	h.writePNG(w, r, func(buf io.Writer) error {
		return h.service.RenderDeathsChart(r.Context(), buf, req.Countries)
	})
}

func (h *CovidHandler) loadSeries(w http.ResponseWriter, r *http.Request) (domain.CountrySeries, bool) {
	req := api.SeriesRequest{
		Country: chi.URLParam(r, "country"),
		DateRangeRequest: api.DateRangeRequest{
			From: r.URL.Query().Get("from"),
			To:   r.URL.Query().Get("to"),
		},
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, validationProblem(err))
		return domain.CountrySeries{}, false
	}
	from, to := parseDate(req.From), parseDate(req.To)
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("to", "to must not be before from"))
		return domain.CountrySeries{}, false
	}

	series, err := h.service.Series(r.Context(), req.Country)
	if err != nil {
		h.fail(w, r, "failed to derive series", err)
		return domain.CountrySeries{}, false
	}
	return sliceSeries(series, from, to), true
}

func (h *CovidHandler) deathsRequest(w http.ResponseWriter, r *http.Request) (api.DeathsRequest, bool) {
	req := api.DeathsRequest{Countries: splitCountries(r.URL.Query()["countries"])}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, validationProblem(err))
		return req, false
	}
	return req, true
}

// writePNG renders into memory first so a failed chart still gets a
// problem response instead of a truncated image
func (h *CovidHandler) writePNG(w http.ResponseWriter, r *http.Request, draw func(io.Writer) error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		h.fail(w, r, "failed to render chart", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// fail maps service errors onto API errors and responds
func (h *CovidHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.DebugContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	if stderrors.Is(err, services.ErrDatasetNotLoaded) {
		h.errorHandler.HandleError(w, r, apierrors.ErrServiceUnavailable)
		return
	}
	h.errorHandler.HandleError(w, r, err)
}

func validationProblem(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return apierrors.ErrValidation("request", err.Error())
	}
	fe := verrs[0]
	return apierrors.ErrValidation(strings.ToLower(fe.Field()),
		fmt.Sprintf("failed %q validation", fe.Tag()))
}

// splitCountries accepts both ?countries=a,b and repeated ?countries=
func splitCountries(values []string) []string {
	var out []string
	for _, v := range values {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				out = append(out, c)
			}
		}
	}
	return out
}

// parseDate returns the zero time for an empty value. Values reaching it
// have already passed the datetime validator.
func parseDate(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// sliceSeries keeps the points within [from, to]. Derived values are
// computed over the whole series first, so cumulative cases keep their
// running total.
func sliceSeries(s domain.CountrySeries, from, to time.Time) domain.CountrySeries {
	if from.IsZero() && to.IsZero() {
		return s
	}

	out := domain.CountrySeries{Country: s.Country}
	for i, d := range s.Dates {
		if (!from.IsZero() && d.Before(from)) || (!to.IsZero() && d.After(to)) {
			continue
		}
		out.Dates = append(out.Dates, d)
		out.NewCases = append(out.NewCases, s.NewCases[i])
		out.CumulativeCases = append(out.CumulativeCases, s.CumulativeCases[i])
		out.PercentVaccinated = append(out.PercentVaccinated, nullAt(s.PercentVaccinated, i))
		out.NewCasesTrend = append(out.NewCasesTrend, nullAt(s.NewCasesTrend, i))
	}
	return out
}

func nullAt(values []domain.NullFloat64, i int) domain.NullFloat64 {
	if i < len(values) {
		return values[i]
	}
	return domain.None()
}

func locationItem(s dataprocessing.LocationSummary) api.LocationItem {
	item := api.LocationItem{
		Location:                s.Location,
		ISOCode:                 s.ISOCode,
		Continent:               s.Continent,
		Days:                    s.Days,
		TotalCases:              s.TotalCases,
		MaxTotalDeaths:          s.MaxTotalDeaths,
		LatestPercentVaccinated: s.LatestPercentVaccinated,
	}
	if !s.FirstDate.IsZero() {
		item.FirstDate = s.FirstDate.Format(dateLayout)
	}
	if !s.LastDate.IsZero() {
		item.LastDate = s.LastDate.Format(dateLayout)
	}
	return item
}
