// Package logging installs the slog default logger shared by every
// launchdash command and hands out per-component loggers.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Output formats accepted for global.logFormat
const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewHandler returns the handler for format writing records at or above
// level to w.
func NewHandler(w io.Writer, level slog.Leveler, format string) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case FormatText, "":
		return slog.NewTextHandler(w, opts), nil
	case FormatJSON:
		return slog.NewJSONHandler(w, opts), nil
	}
	return nil, fmt.Errorf("unknown log format %q: expected %s or %s", format, FormatText, FormatJSON)
}

// Init makes a handler for format the process default. A nil w logs to
// stderr; commands that own the terminal pass io.Discard.
func Init(level slog.Level, format string, w io.Writer) error {
	if w == nil {
		w = os.Stderr
	}
	handler, err := NewHandler(w, level, format)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// New returns the default logger with a component attribute
func New(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
