// Package logging assembles structured slog loggers and formatting helpers used
// across povcat.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so pipeline code tags log lines with
// the run id and the channel being scanned. A no-op logger is provided for
// tests and wiring code that cannot fail.
package logging
