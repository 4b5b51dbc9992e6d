// Package dataprocessing loads, cleans and queries the Our World in Data
// COVID-19 dataset.
//
// # Architecture
//
// The package covers the first three stages of the report:
//
// 1. Loader: downloads (resty) or opens the CSV and parses it by header name
// 2. Cleaner: parses dates, fills missing new_cases/new_deaths with 0 and
// removes aggregate regions such as "World" or "European Union"
// 3. Query: selects one country's records in dataset order
//
// A Summarizer additionally condenses each location into headline numbers
// for the web API.
//
// # Usage
//
//	loader := dataprocessing.NewLoader(2*time.Minute, logger)
//	ds, err := loader.Load(ctx, config.DefaultSourceURL)
//	if err != nil {
//	    return err
//	}
//	stats, err := dataprocessing.Clean(ds, dataprocessing.CleanOptions{
//	    ExcludedLocations: config.DefaultExcludedLocations(),
//	})
//	egypt := dataprocessing.CountryData(ds, "Egypt")
//
// # Data Flow
//
//	CSV → Loader → Dataset → Cleaner → Dataset (in place) → Query → []Record
//
// # Error Handling
//
// Errors are *errors.AppError values: NETWORK for failed downloads,
// NOT_FOUND for a missing local file, PARSING for malformed rows, unknown
// numeric cells and unparsable dates. The line number is attached as context.
//
// Numeric values are trusted: negative counts or out-of-range dates pass
// through unchanged. Empty numeric cells stay unknown (see domain.NullFloat64)
// except new_cases and new_deaths, which cleaning sets to 0.
package dataprocessing
