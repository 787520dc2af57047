// Package logging builds the CLI's zerolog logger: a console writer on
// stderr and, when configured, a rotated JSON log file.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rustyeddy/tradeplan/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger for cfg writing console output to w. The closer
// releases the log file, if any.
func New(cfg config.LogConfig, w io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}}
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		writers = append(writers, lj)
		closer = lj
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}
