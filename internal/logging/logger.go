// Package logging builds the structured logger shared by the CLI and
// the engine.
package logging

import (
	"io"
	"log/slog"
)

// Options select the handler format and verbosity.
type Options struct {
	// Format is "text" or "json".
	Format string
	// Verbose lowers the level to debug.
	Verbose bool
}

// New constructs a slog.Logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	if w == nil {
		w = io.Discard
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}
