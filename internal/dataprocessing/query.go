package dataprocessing

import (
	"covidpulse/pkg/contracts/domain"
)

// CountryData returns the records whose location equals country exactly
// (case-sensitive), in dataset order. No match yields an empty slice.
func CountryData(ds *domain.Dataset, country string) []domain.Record {
	out := []domain.Record{}
	if ds == nil {
		return out
	}
	for _, rec := range ds.Records {
		if rec.Location == country {
			out = append(out, rec)
		}
	}
	return out
}

// Locations returns the distinct locations in first-seen order
func Locations(ds *domain.Dataset) []string {
	if ds == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range ds.Records {
		if _, ok := seen[rec.Location]; ok {
			continue
		}
		seen[rec.Location] = struct{}{}
		out = append(out, rec.Location)
	}
	return out
}

// HasLocation reports whether any record belongs to location
func HasLocation(ds *domain.Dataset, location string) bool {
	if ds == nil {
		return false
	}
	for _, rec := range ds.Records {
		if rec.Location == location {
			return true
		}
	}
	return false
}
