// Package logging builds the diagnostic logger. Diagnostics go to stderr so
// the report on stdout stays parseable.
package logging

import (
	"io"
	"log/slog"
)

// Level maps a -v count to a slog level: 0 warn, 1 info, 2+ debug.
func Level(verbosity int) slog.Level {
	switch {
	case verbosity >= 2:
		return slog.LevelDebug
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

func New(w io.Writer, verbosity int) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: Level(verbosity),
	}))
}
