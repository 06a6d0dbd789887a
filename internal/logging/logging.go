// Package logging provides structured logging for axd.
//
// Features:
//   - zap structured logging with console and JSON encodings
//   - size/age-based file rotation via lumberjack
//   - per-request correlation IDs threaded through context.Context
//   - live log-level reload (see internal/watcher)
package logging

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"axd/internal/config"
)

// Logger wraps zap.Logger with a mutable level, so the config watcher can
// hot-reload verbosity without tearing down the writer cores.
type Logger struct {
	*zap.Logger
	level *zap.AtomicLevel
}

var (
	defaultLogger *Logger
	loggerOnce    sync.Once
	loggerMu      sync.RWMutex
)

// Default returns the process-wide logger, building it from config defaults
// on first use.
func Default() *Logger {
	loggerOnce.Do(func() {
		loggerMu.Lock()
		defer loggerMu.Unlock()
		if defaultLogger != nil {
			// SetDefault already installed one.
			return
		}
		l, err := New(config.DefaultConfig())
		if err != nil {
			// Fall back to a bare stderr logger; logging must never be why
			// the daemon fails to start.
			z, _ := zap.NewProduction()
			defaultLogger = &Logger{Logger: z}
			return
		}
		defaultLogger = l
	})
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// SetDefault installs l as the process-wide logger.
func SetDefault(l *Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	defaultLogger = l
}

// New builds a Logger from cfg: a console core on stderr, plus (when
// cfg.LogPath is set) a rotating JSON core backed by lumberjack.
func New(cfg *config.Config) (*Logger, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	atomicLevel := zap.NewAtomicLevelAt(level)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	if strings.EqualFold(cfg.LogFormat, "json") {
		consoleEncoder = zapcore.NewJSONEncoder(encoderCfg)
	}
	cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), atomicLevel))

	if cfg.LogPath != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxAge:     cfg.LogMaxAgeDays,
			MaxBackups: cfg.LogMaxBackups,
			Compress:   cfg.LogCompress,
		}
		fileEncoder := zapcore.NewJSONEncoder(encoderCfg)
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(rotator), atomicLevel))
	}

	core := zapcore.NewTee(cores...)
	zl := zap.New(core).With(zap.String("component", "axd"))

	return &Logger{Logger: zl, level: &atomicLevel}, nil
}

// SetLevel changes the logger's minimum level in place. Used by the config
// watcher for live reload.
func (l *Logger) SetLevel(levelStr string) error {
	level, err := ParseLevel(levelStr)
	if err != nil {
		return err
	}
	if l.level != nil {
		l.level.SetLevel(level)
	}
	return nil
}

// WithRequestID returns a child logger carrying the request correlation ID.
func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{Logger: l.Logger.With(zap.String("request_id", id)), level: l.level}
}

// Sync flushes any buffered entries.
func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

// ParseLevel parses a string into a zapcore.Level.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level: %s", s)
	}
}

// contextKey avoids collisions with other packages' context keys.
type contextKey int

const requestIDKey contextKey = iota

// ContextWithRequestID returns a new context carrying the request ID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request ID set by ContextWithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
