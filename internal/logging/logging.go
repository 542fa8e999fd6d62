// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/n0madic/go-oaiadapter/internal/config"
)

// Rotation limits for the optional log file.
const (
	maxSizeMB  = 100
	maxBackups = 5
	maxAgeDays = 30
)

// Setup installs the default logger for cfg and returns a function that
// releases the log file, if any. Verbose or debug mode lowers the level to
// debug. When cfg.LogFile is set, logs go to stderr and to a rotating file.
func Setup(cfg config.ServerConfig) func() error {
	level := slog.LevelInfo
	if cfg.Verbose || cfg.Debug {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stderr
	closeFn := func() error { return nil }
	if cfg.LogFile != "" {
		file := newFileWriter(cfg.LogFile)
		out = io.MultiWriter(os.Stderr, file)
		closeFn = file.Close
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	return closeFn
}

func newFileWriter(path string) *lumberjack.Logger {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Warn("logging.dir.create_failed", "path", path, "error", err)
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
		LocalTime:  true,
	}
}
