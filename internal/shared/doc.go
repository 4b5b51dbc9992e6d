// Package shared holds code used across packages that belongs to no single
// layer. Today that is the testutil subpackage, which captures slog output
// so tests can assert on log records.
package shared
