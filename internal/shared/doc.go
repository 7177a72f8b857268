// Package shared holds code used across packages that belongs to no single
// layer. Today that is testutil: fixture tables, workbook writers and a
// capturing slog handler for tests.
package shared
