// Package logging configures the process-wide zerolog logger.
//
// The dashboard runs full-screen on the terminal, so console logging defaults
// to warn level to keep the alternate screen clean; a log file can be enabled
// for debugging background refreshes.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	logger zerolog.Logger //nolint:gochecknoglobals // application-wide structured logger

	logFile *os.File //nolint:gochecknoglobals // current log file handle, closed on re-init

	mu sync.RWMutex //nolint:gochecknoglobals // guards logger and logFile
)

// Init configures the global logger. level is parsed into a zerolog level and
// defaults to warn on parse error. When file is non-empty, logs are also
// appended there (the parent directory is created if needed).
func Init(level, file string) error {
	mu.Lock()
	defer mu.Unlock()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}}

	closeFileLocked()

	if file != "" {
		if dirErr := os.MkdirAll(filepath.Dir(file), 0o750); dirErr != nil {
			return dirErr
		}
		f, fileErr := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if fileErr != nil {
			return fileErr
		}
		logFile = f
		writers = append(writers, f)
	}

	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return nil
}

// L returns the global logger instance.
func L() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// WithContext attaches the global logger to ctx.
func WithContext(ctx context.Context) context.Context {
	l := L()
	return l.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or the global logger when none
// is attached.
func FromContext(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	l := L()
	return &l
}

// Close releases the log file handle, if any, and drops back to console-only
// output so later writes never hit a closed file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeFileLocked()
}

func closeFileLocked() {
	if logFile == nil {
		return
	}
	_ = logFile.Close()
	logFile = nil
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).Level(logger.GetLevel()).With().Timestamp().Logger()
}

//nolint:gochecknoinits // a usable logger must exist before any config loads
func init() {
	_ = Init("warn", "")
}
