// Package logging assembles structured slog loggers and formatting helpers used
// across seasonmap components.
//
// It owns the console/JSON handlers, centralizes level and output plumbing, and
// exposes the standard field keys so every component emits data with the same
// shape. Loggers are passed to components explicitly; nothing here installs a
// process-wide default. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
package logging
