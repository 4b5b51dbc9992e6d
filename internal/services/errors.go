package services

import "errors"

// Service errors
var (
	// ErrDatasetNotLoaded is returned until the first successful Load
	ErrDatasetNotLoaded = errors.New("dataset not loaded")

	// ErrUnknownChart is returned for a chart kind the service cannot draw
	ErrUnknownChart = errors.New("unknown chart")
)
