// Package config loads and validates COVID Pulse settings and resolves the
// paths the report and the web service write to.
//
// Values are layered in increasing precedence: Default(), then an optional
// YAML file, then COVID_* environment variables. The file is taken from
// COVID_CONFIG_FILE when set, otherwise config.yaml or configs/config.yaml in the
// working directory. Environment variables follow COVID_<SECTION>_<FIELD>:
//
//	COVID_REPORT_SOURCE=./owid-covid-data.csv
//	COVID_REPORT_COMPARE_COUNTRIES=Egypt,Italy,India
//	COVID_SERVER_RELOAD_INTERVAL=6h
//	COVID_REGRESSION_TEST_SIZE=0.2
//
// Struct tags are checked with go-playground/validator once all layers are
// applied, so a bad test size or an empty comparison list fails before any
// data is fetched. Tests start from Default(), which needs no environment.
package config
