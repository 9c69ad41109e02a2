package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/mattsnow/albumshare/cmd/website/internal/configuration"
)

func setupLogger(config *configuration.Config, version string) {
	level := slog.LevelInfo

	switch strings.ToLower(config.LogLevel) {
	case "debug":
		level = slog.LevelDebug

	case "warn":
		level = slog.LevelWarn

	case "error":
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	slog.SetDefault(slog.New(handler).With(slog.String("version", version)))
}
