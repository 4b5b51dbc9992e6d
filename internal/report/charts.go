package report

import (
	"bytes"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"covidpulse/internal/errors"
	"covidpulse/pkg/contracts/domain"
)

// Chart kinds
const (
	ChartCases       = "cases"
	ChartDeaths      = "deaths"
	ChartVaccination = "vaccination"
)

const (
	lineChartWidth  = 1000
	lineChartHeight = 600
	barChartWidth   = 800
	barChartHeight  = 600

	missingLabel = "n/a"
)

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    2,
	}
}

func barStyle(col drawing.Color) chart.Style {
	return chart.Style{
		FillColor:   col,
		StrokeColor: col,
		StrokeWidth: 1,
	}
}

func chartBackground() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16}}
}

// RenderCasesChart draws cumulative cases over time as a PNG.
func RenderCasesChart(w io.Writer, s domain.CountrySeries) error {
	if s.Len() == 0 {
		return errors.NewNoDataError("no case data to plot").WithContext("country", s.Country)
	}

	times, ys := ensureTimeSpan(s.Dates, s.CumulativeCases)
	ch := chart.Chart{
		Title:      "COVID-19 Cumulative Cases Over Time in " + s.Country,
		Width:      lineChartWidth,
		Height:     lineChartHeight,
		Background: chartBackground(),
		XAxis:      chart.XAxis{Name: "Date", ValueFormatter: chart.TimeDateValueFormatter},
		YAxis: chart.YAxis{
			Name:           "Cumulative Cases",
			Range:          valueRange(ys),
			ValueFormatter: countFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{Name: "Cumulative Cases", XValues: times, YValues: ys, Style: lineStyle(chart.ColorBlue)},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return errors.NewRenderError("failed to render cases chart", err).WithContext("country", s.Country)
	}
	return nil
}

// RenderVaccinationChart draws the share of the population vaccinated over
// time. Days without a known percentage are left out.
func RenderVaccinationChart(w io.Writer, s domain.CountrySeries) error {
	var (
		dates  []time.Time
		values []float64
	)
	for i, pct := range s.PercentVaccinated {
		if !pct.Valid || i >= len(s.Dates) {
			continue
		}
		dates = append(dates, s.Dates[i])
		values = append(values, pct.Float64)
	}
	if len(dates) == 0 {
		return errors.NewNoDataError("no vaccination data to plot").WithContext("country", s.Country)
	}

	times, ys := ensureTimeSpan(dates, values)
	ch := chart.Chart{
		Title:      "COVID-19 Vaccination Progress in " + s.Country,
		Width:      lineChartWidth,
		Height:     lineChartHeight,
		Background: chartBackground(),
		XAxis:      chart.XAxis{Name: "Date", ValueFormatter: chart.TimeDateValueFormatter},
		YAxis: chart.YAxis{
			Name:           "% of Population Vaccinated",
			Range:          valueRange(ys),
			ValueFormatter: percentFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{Name: "% Vaccinated", XValues: times, YValues: ys, Style: lineStyle(chart.ColorGreen)},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return errors.NewRenderError("failed to render vaccination chart", err).WithContext("country", s.Country)
	}
	return nil
}

// RenderDeathsChart draws one red bar per country. Unknown totals are drawn
// as 0 and labelled n/a.
func RenderDeathsChart(w io.Writer, deaths []domain.CountryDeaths) error {
	if len(deaths) == 0 {
		return errors.NewNoDataError("no countries to compare")
	}

	bars := make([]chart.Value, 0, len(deaths))
	var maxDeaths float64
	for _, d := range deaths {
		label := d.Country
		if !d.MaxTotalDeaths.Valid {
			label += " (" + missingLabel + ")"
		}
		v := d.MaxTotalDeaths.ValueOr(0)
		maxDeaths = math.Max(maxDeaths, v)
		bars = append(bars, chart.Value{Value: v, Label: label, Style: barStyle(chart.ColorRed)})
	}

	top := maxDeaths * 1.1
	if top <= 0 {
		top = 1
	}

	// split the plot width between bars and gaps
	slot := (barChartWidth - 160) / len(bars)
	barWidth := max(slot*3/5, 1)
	spacing := max(slot-barWidth, 1)

	bc := chart.BarChart{
		Title:      "Total Deaths Comparison",
		Width:      barChartWidth,
		Height:     barChartHeight,
		Background: chartBackground(),
		BarWidth:   barWidth,
		BarSpacing: spacing,
		YAxis: chart.YAxis{
			Name:           "Total Deaths",
			Range:          &chart.ContinuousRange{Min: 0, Max: top},
			ValueFormatter: countFormatter,
		},
		Bars: bars,
	}

	if err := bc.Render(chart.PNG, w); err != nil {
		return errors.NewRenderError("failed to render deaths chart", err)
	}
	return nil
}

// WriteChartFile renders into memory and then replaces path, so a chart that
// fails to render never truncates an earlier file.
func WriteChartFile(path string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.NewStorageError("failed to write chart", err).WithContext("path", path)
	}
	return nil
}

// ensureTimeSpan gives a series whose points all share one date a second X
// value so the axis range is not empty.
func ensureTimeSpan(times []time.Time, ys []float64) ([]time.Time, []float64) {
	for _, t := range times[1:] {
		if !t.Equal(times[0]) {
			return times, ys
		}
	}
	last := ys[len(ys)-1]
	return []time.Time{times[0], times[0].Add(24 * time.Hour)}, []float64{last, last}
}

func valueRange(ys []float64) *chart.ContinuousRange {
	lo, hi := ys[0], ys[0]
	for _, v := range ys[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > 0 {
		lo = 0
	}
	if hi <= lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi + (hi-lo)*0.05}
}

func countFormatter(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	value, prefix := humanize.ComputeSI(f)
	return humanize.FtoaWithDigits(value, 1) + prefix
}

func percentFormatter(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	return strconv.FormatFloat(f, 'f', 0, 64) + "%"
}
