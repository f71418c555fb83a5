package utils

import (
	"io"
	"log/slog"
	"os"
)

// LoggerConfig controls InitLogger.
type LoggerConfig struct {
	// Format is "json" or "text".
	Format string
	// Output defaults to os.Stdout.
	Output io.Writer
	Level  slog.Level
}

// LoggerConfigFor picks JSON at info level for production and text at
// debug level otherwise.
func LoggerConfigFor(env string) LoggerConfig {
	if env == "production" {
		return LoggerConfig{Format: "json", Level: slog.LevelInfo}
	}
	return LoggerConfig{Format: "text", Level: slog.LevelDebug}
}

// InitLogger builds the application logger and installs it as the slog
// default.
func InitLogger(config ...LoggerConfig) *slog.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	logger := slog.New(handler).With("app", "advocatr")
	slog.SetDefault(logger)
	return logger
}
