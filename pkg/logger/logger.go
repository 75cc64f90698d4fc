package logger

import (
	"log/slog"
	"os"
	"strings"
)

// SetupLogger builds the application-wide slog logger. Level is one of
// debug, info, warn, error; anything else falls back to info.
func SetupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	applicationLogger := slog.New(handler)
	slog.SetDefault(applicationLogger)

	return applicationLogger
}
