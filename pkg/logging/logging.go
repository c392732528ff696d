// Package logging configures structured logging for log/slog.
//
// Usage:
//
//	logging.SetupWithLevel(slog.LevelDebug, "text") // colored text on stderr
//	logging.SetupWithLevel(slog.LevelInfo, "json")  // JSON lines on stdout
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// SetupWithLevel configures logging at the given level. format "json" writes JSON
// lines to stdout; anything else writes colored text to stderr.
func SetupWithLevel(level slog.Level, format string) {
	if strings.EqualFold(format, "json") {
		slog.SetDefault(slog.New(NewHandler(os.Stdout, level, "json")))
		return
	}
	slog.SetDefault(slog.New(NewHandler(os.Stderr, level, "text")))
}

// NewHandler returns the handler SetupWithLevel would install, writing to w.
func NewHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
		NoColor:    !isTerminal(w),
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
