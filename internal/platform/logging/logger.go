package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/simonboegh/x-sentiment-tracker/internal/platform/correlation"
)

// InitLogger builds the application logger, installs it as the slog default and
// returns it. level is one of debug, info, warn, error (default info); format is
// json or text (default text).
func InitLogger(level, format string) *slog.Logger {
	logger := New(os.Stdout, level, format)
	slog.SetDefault(logger)
	return logger
}

func New(w io.Writer, level, format string) *slog.Logger {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(correlation.NewHandler(handler))
}
