// Package main is the entry point for the model registry server.
package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/trustmodel/registry-server/cmd/registry-server/app"
	"github.com/trustmodel/registry-server/internal/config"
)

// getLogLevel parses the MODREG_LOG_LEVEL environment variable and returns
// the corresponding slog.Level. Falls back to LOG_LEVEL for compatibility
// with older deployments. Defaults to slog.LevelInfo if neither is set or
// if the value is invalid.
func getLogLevel() slog.Level {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	levelStr := v.GetString("LOG_LEVEL")
	if levelStr == "" {
		levelStr = os.Getenv("LOG_LEVEL")
	}

	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("Invalid LOG_LEVEL, using INFO", "value", levelStr)
		return slog.LevelInfo
	}
}

// logWriter selects the log destination. LOG_FILE redirects logs to a
// file; the default is stderr so stdout stays clean for commands that
// print data, such as score.
func logWriter() io.Writer {
	path := os.Getenv("LOG_FILE")
	if path == "" {
		return os.Stderr
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Warn("Failed to open LOG_FILE, logging to stderr", "path", path, "error", err)
		return os.Stderr
	}
	return f
}

func main() {
	handler := slog.NewJSONHandler(logWriter(), &slog.HandlerOptions{Level: getLogLevel()})
	slog.SetDefault(slog.New(handler))

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
