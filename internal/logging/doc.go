// Package logging builds the slog loggers used across subcue.
//
// It owns the console and JSON handlers, routes file output through a
// rotating writer, and provides attribute helpers so every stage tags its
// lines with the same keys.
package logging
