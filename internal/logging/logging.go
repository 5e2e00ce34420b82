// Package logging builds the root zerolog logger from configuration.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Hari-N-2005/FileOps/internal/config"
)

// New constructs the root logger. Console output goes to stderr; when a
// log file is configured it is written through lumberjack so the file
// rotates instead of growing forever.
func New(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var console io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if cfg.Format == "json" {
		console = os.Stderr
	}

	writer := console
	if cfg.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		writer = zerolog.MultiLevelWriter(console, rotated)
	}

	return zerolog.New(writer).With().Timestamp().Logger().Level(level)
}
