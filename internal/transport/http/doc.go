// Package http implements the HTTP handlers of the COVID Pulse web service.
// Handlers stay thin: they parse and validate the request, call a service
// and format the response. Query logic lives in internal/services.
//
// # Routes
//
// CovidHandler.Routes is mounted under /api/v1:
//
//	GET /status                              dataset load status
//	GET /locations                           per-location summaries
//	GET /countries/{country}/series          derived series as JSON (?from=&to=)
//	GET /countries/{country}/series.csv      the same series as CSV
//	GET /countries/{country}/charts/{chart}  cases or vaccination chart as PNG
//	GET /deaths                              max total deaths (?countries=a,b)
//	GET /deaths/chart                        the deaths comparison as PNG
//
// HealthHandler serves /healthz, /healthz/ready and /healthz/live.
//
// # Error Handling
//
// Every failure is answered with RFC 7807 Problem Details through
// errors.ErrorHandler. Unknown values in JSON bodies are encoded as null.
package http
