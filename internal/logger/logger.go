// Package logger provides a lightweight, centralized logging facility
// with configurable verbosity levels.
//
// The call-site API stays printf-style (Errorf, Infof, Debugf, Tracef) while
// the output goes through a zap core: console or JSON encoding, written to
// stderr or to a rotating file.
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// Example usage:
//
//	logger.SetVerbosity(2) // Debug
//	logger.Infof("batch started")
//	logger.Debugf("S=%f K=%f price=%f", spot, strike, price)
package logger

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // Error logs only critical failures.
	Info               // Info logs high-level application progress.
	Debug              // Debug logs detailed diagnostic information.
	Trace              // Trace logs very fine-grained execution details.
)

// Options configures the output sink.
type Options struct {
	Verbosity  int    // 0=errors,1=info,2=debug,3=trace
	Format     string // "console" or "json"
	File       string // empty writes to stderr
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	mu      sync.RWMutex
	current = Info
	sugar   = newSugar(zapcore.AddSync(os.Stderr), "console")
)

// Init replaces the active sink and verbosity. It is typically called once
// during application startup, after configuration is loaded.
func Init(opts Options) error {
	ws := zapcore.AddSync(os.Stderr)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return err
		}
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		})
	}

	mu.Lock()
	sugar = newSugar(ws, opts.Format)
	mu.Unlock()

	SetVerbosity(opts.Verbosity)
	return nil
}

// SetVerbosity sets the global logging verbosity. Out of range values are
// clamped to the nearest level.
func SetVerbosity(v int) {
	if v < int(Error) {
		v = int(Error)
	}
	if v > int(Trace) {
		v = int(Trace)
	}
	mu.Lock()
	current = Level(v)
	mu.Unlock()
}

// Verbosity returns the active level.
func Verbosity() Level {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Sync flushes buffered log entries.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return sugar.Sync()
}

// setCore swaps the zap core; tests use it to observe output.
func setCore(core zapcore.Core) {
	mu.Lock()
	sugar = zap.New(core).Sugar()
	mu.Unlock()
}

func newSugar(ws zapcore.WriteSyncer, format string) *zap.SugaredLogger {
	encConfig := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		CallerKey:      "C",
		MessageKey:     "M",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00"),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var enc zapcore.Encoder
	if format == "json" {
		enc = zapcore.NewJSONEncoder(encConfig)
	} else {
		enc = zapcore.NewConsoleEncoder(encConfig)
	}

	// verbosity gating happens in logf, so the core accepts everything
	core := zapcore.NewCore(enc, ws, zapcore.DebugLevel)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).Sugar()
}

// logf is the internal logging helper.
// It checks verbosity and delegates formatting/output to zap.
func logf(l Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if current < l {
		return
	}
	switch l {
	case Error:
		sugar.Errorf(format, args...)
	case Info:
		sugar.Infof(format, args...)
	case Debug:
		sugar.Debugf(format, args...)
	default:
		sugar.Debugf("[TRACE] "+format, args...)
	}
}

// Errorf logs an error-level message.
// Use this for failures that require attention.
func Errorf(format string, args ...any) {
	logf(Error, format, args...)
}

// Infof logs an informational message.
// Use this for major lifecycle events.
func Infof(format string, args ...any) {
	logf(Info, format, args...)
}

// Debugf logs debugging information.
// Use this for diagnostic output useful during development.
func Debugf(format string, args ...any) {
	logf(Debug, format, args...)
}

// Tracef logs very detailed execution traces.
// Use this sparingly due to high volume.
func Tracef(format string, args ...any) {
	logf(Trace, format, args...)
}
