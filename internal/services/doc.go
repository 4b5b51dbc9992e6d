// Package services holds the business logic behind the web API.
//
// CovidService loads and cleans the OWID dataset once, keeps it in memory
// and answers series, deaths and chart queries against that snapshot. A
// reload swaps the whole snapshot; readers never see a half-cleaned table.
// HealthService reports liveness and readiness, where readiness means the
// dataset is loaded and the output directory exists.
//
// Errors follow the internal/errors conventions: unknown countries are
// NOT_FOUND AppErrors, unknown chart kinds are VALIDATION AppErrors, and
// queries before the first load return ErrDatasetNotLoaded.
package services
