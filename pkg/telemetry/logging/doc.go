// Package logging configures the process-wide structured logger.
//
// It is a thin layer over log/slog: New builds a logger from a level and
// format, Setup additionally installs it as slog.Default so components
// that derive their logger via slog.Default().With("component", ...)
// share the same output.
package logging
