// Package logging configures the slog default logger shared by the commands.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text logger writing to w, at debug level when verbose.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Setup installs a stderr logger as the slog default.
func Setup(verbose bool) {
	slog.SetDefault(New(os.Stderr, verbose))
}
