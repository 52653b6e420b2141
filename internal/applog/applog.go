// Package applog initialises the global slog logger for the CLI.
// Call Init once at startup; all other packages use log/slog directly.
package applog

import (
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Init sets up the global logger. Recognised levels are debug, info, warn
// and error; anything else falls back to info. With an empty file path,
// human-readable text goes to stderr. Otherwise JSON lines go to a
// size-rotated file and nothing is written to the terminal.
func Init(level, file string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var h slog.Handler
	if file != "" {
		w := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
