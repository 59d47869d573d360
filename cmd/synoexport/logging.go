package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/synotools/synoexport/internal/config"
	"github.com/synotools/synoexport/internal/utils"
	"github.com/synotools/synoexport/internal/version"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logTimeFormat = "2006-01-02T15:04:05.000Z07:00"

func consoleHandler(level slog.Level) slog.Handler {
	return tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: logTimeFormat,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
}

// setupConsoleLogging installs a stderr-only logger. It runs before the
// config is parsed, so anything logged this early shows at info and up.
func setupConsoleLogging() {
	slog.SetDefault(slog.New(consoleHandler(slog.LevelInfo)))
}

// setupLogging swaps the console-only default for a console+file pair once
// the output directory is known. The file rotates under <output>/logs.
func setupLogging(cfg *config.Config) {
	level := parseLevel(cfg.LogLevel)

	rotating := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.OutputDir, "logs", version.Command+".log"),
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
	}
	fileHandler := slog.NewTextHandler(rotating, &slog.HandlerOptions{
		Level: level,
	})

	slog.SetDefault(slog.New(utils.NewTeeHandler(consoleHandler(level), fileHandler)))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
