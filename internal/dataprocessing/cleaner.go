package dataprocessing

import (
	"fmt"
	"strings"
	"time"

	"covidpulse/internal/errors"
	"covidpulse/pkg/contracts/domain"
)

// owidAggregatePrefix marks OWID's synthetic aggregate rows (OWID_WRL, OWID_EUR, ...)
const owidAggregatePrefix = "OWID_"

// dateLayouts are tried in order when coercing the raw date column
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006/01/02",
}

// CleanOptions controls which rows the cleaner removes
type CleanOptions struct {
	ExcludedLocations     []string
	ExcludeOWIDAggregates bool
}

// CleanStats reports what a Clean call changed
type CleanStats struct {
	RowsIn       int `json:"rows_in"`
	RowsOut      int `json:"rows_out"`
	RowsExcluded int `json:"rows_excluded"`
	CasesFilled  int `json:"new_cases_filled"`
	DeathsFilled int `json:"new_deaths_filled"`
}

// Clean normalizes ds in place: dates are parsed, missing new_cases and
// new_deaths become 0, and rows for excluded aggregate locations are removed.
// Remaining record order is preserved. Values are not otherwise validated.
// On error ds is left untouched.
func Clean(ds *domain.Dataset, opts CleanOptions) (CleanStats, error) {
	stats := CleanStats{RowsIn: ds.Len()}
	if ds == nil {
		return stats, nil
	}

	excluded := make(map[string]struct{}, len(opts.ExcludedLocations))
	for _, loc := range opts.ExcludedLocations {
		excluded[loc] = struct{}{}
	}

	kept := make([]domain.Record, 0, len(ds.Records))
	for i := range ds.Records {
		rec := ds.Records[i]

		if _, skip := excluded[rec.Location]; skip {
			stats.RowsExcluded++
			continue
		}
		if opts.ExcludeOWIDAggregates && strings.HasPrefix(rec.ISOCode, owidAggregatePrefix) {
			stats.RowsExcluded++
			continue
		}

		if rec.Date.IsZero() {
			date, err := ParseDate(rec.RawDate)
			if err != nil {
				return CleanStats{RowsIn: stats.RowsIn}, errors.NewParsingError("invalid date", err).
					WithContext("location", rec.Location).
					WithContext("row", i+1)
			}
			rec.Date = date
		}

		if !rec.NewCases.Valid {
			rec.NewCases = domain.Some(0)
			stats.CasesFilled++
		}
		if !rec.NewDeaths.Valid {
			rec.NewDeaths = domain.Some(0)
			stats.DeathsFilled++
		}

		kept = append(kept, rec)
	}

	ds.Records = kept
	stats.RowsOut = len(kept)

	return stats, nil
}

// ParseDate parses a date in any of the accepted layouts
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
