// Package logger provides structured logging for GhostTape.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Logger is the application logging interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Config controls handler construction.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// Format is the output format (json, text).
	Format string
	// Output is the output writer (defaults to os.Stderr).
	Output io.Writer
	// AddSource adds source file information to log entries.
	AddSource bool
}

// DefaultConfig returns the daemon's default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "json",
		Output: os.Stderr,
	}
}

// globalLevel is shared by every logger so SetLevel applies process-wide.
var globalLevel = new(slog.LevelVar)

// New creates a logger from cfg. An unknown level name is an error so a
// typo in the daemon config fails startup instead of silently logging
// at info.
func New(cfg Config) (Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	globalLevel.Set(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     globalLevel,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewJSONHandler(output, opts)
	}

	return &ghostLogger{
		logger: slog.New(sessionHandler{inner: handler}),
		ctx:    context.Background(),
	}, nil
}

// ParseLevel converts a level name to its slog value.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", level)
}

// SetLevel adjusts the process-wide log level at runtime. Unknown names
// are ignored.
func SetLevel(level string) {
	if lv, err := ParseLevel(level); err == nil {
		globalLevel.Set(lv)
	}
}

// GetLevel returns the current process-wide level name.
func GetLevel() string {
	switch globalLevel.Level() {
	case slog.LevelDebug:
		return "debug"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	default:
		return "info"
	}
}

// sessionHandler stamps each record with the recording ID carried by
// the log context, so every line emitted during a replay session is
// attributable to its gtrc- session without callers threading the ID
// through each call site.
type sessionHandler struct {
	inner slog.Handler
}

func (h sessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h sessionHandler) Handle(ctx context.Context, rec slog.Record) error {
	if id := RecordingIDFromContext(ctx); id != "" {
		rec.AddAttrs(slog.String("recording_id", id))
	}
	return h.inner.Handle(ctx, rec)
}

func (h sessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return sessionHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h sessionHandler) WithGroup(name string) slog.Handler {
	return sessionHandler{inner: h.inner.WithGroup(name)}
}

// ghostLogger binds a slog.Logger to the context its records are
// emitted against.
type ghostLogger struct {
	logger *slog.Logger
	ctx    context.Context
}

func (l *ghostLogger) Debug(msg string, args ...any) {
	l.logger.DebugContext(l.ctx, msg, args...)
}

func (l *ghostLogger) Info(msg string, args ...any) {
	l.logger.InfoContext(l.ctx, msg, args...)
}

func (l *ghostLogger) Warn(msg string, args ...any) {
	l.logger.WarnContext(l.ctx, msg, args...)
}

func (l *ghostLogger) Error(msg string, args ...any) {
	l.logger.ErrorContext(l.ctx, msg, args...)
}

func (l *ghostLogger) With(args ...any) Logger {
	return &ghostLogger{
		logger: l.logger.With(args...),
		ctx:    l.ctx,
	}
}

func (l *ghostLogger) WithContext(ctx context.Context) Logger {
	return &ghostLogger{
		logger: l.logger,
		ctx:    ctx,
	}
}

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger
)

func init() {
	defaultLogger, _ = New(DefaultConfig())
}

// SetDefault replaces the process-wide default logger.
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// Default returns the process-wide default logger.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}
