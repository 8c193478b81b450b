// Package logging builds slog loggers from application configuration and
// provides the shared attribute helpers used across the engines.
//
// Output goes to stderr, optionally duplicated into a log file under the
// configured log directory. The console format uses slog's text handler;
// json emits machine-readable records.
package logging
