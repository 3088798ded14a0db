// Package logging provides structured logging functionality for periodic.
//
// This package wraps log/slog with:
// - Configurable log levels and output formats
// - Cycle tagging so every record written during a periodic cycle carries
//   the iteration it belongs to
// - Component loggers
//
// Progress lines for the operator go to stdout through the runner's reporter;
// everything logged here goes to stderr or to the configured file.
//
// Example usage:
//
//	logger, _ := logging.NewLogger(cfg.Logging)
//	ctx = logging.WithCycle(ctx, 2)
//	logger.InfoContext(ctx, "Child reaped", "pid", pid)
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bebsworthy/periodic/internal/config"
)

// CycleKey is the context key for the current cycle number
type CycleKey struct{}

// Logger wraps slog.Logger with periodic-specific functionality
type Logger struct {
	*slog.Logger
	config config.LoggingConfig
	writer io.Writer
}

// NewLogger creates a new structured logger with the given configuration
func NewLogger(cfg config.LoggingConfig) (*Logger, error) {
	writer, err := createLogWriter(cfg.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create log writer: %w", err)
	}

	logger, err := NewLoggerWithWriter(cfg, writer)
	if err != nil {
		if c, ok := writer.(io.Closer); ok && writer != os.Stderr {
			c.Close()
		}
		return nil, err
	}
	return logger, nil
}

// NewLoggerWithWriter creates a logger that writes to w instead of the
// configured output file.
func NewLoggerWithWriter(cfg config.LoggingConfig, w io.Writer) (*Logger, error) {
	level, err := parseLogLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if cfg.Verbose && level > slog.LevelDebug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Verbose,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}

	return &Logger{
		Logger: slog.New(&CycleHandler{Handler: handler}),
		config: cfg,
		writer: w,
	}, nil
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}

// createLogWriter creates the appropriate writer for log output
func createLogWriter(outputFile string) (io.Writer, error) {
	if outputFile == "" {
		return os.Stderr, nil
	}

	dir := filepath.Dir(outputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %q: %w", dir, err)
	}

	file, err := os.OpenFile(outputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %q: %w", outputFile, err)
	}

	return file, nil
}

// CycleHandler wraps another handler and tags records with the cycle number
// found in the context.
type CycleHandler struct {
	slog.Handler
}

// Handle adds the cycle attribute if present in context
func (h *CycleHandler) Handle(ctx context.Context, r slog.Record) error {
	if cycle, ok := GetCycle(ctx); ok {
		r.AddAttrs(slog.Int("cycle", cycle))
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs returns a new handler with the given attributes
func (h *CycleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CycleHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup returns a new handler with the given group
func (h *CycleHandler) WithGroup(name string) slog.Handler {
	return &CycleHandler{Handler: h.Handler.WithGroup(name)}
}

// WithCycle stores the cycle number in the context
func WithCycle(ctx context.Context, cycle int) context.Context {
	return context.WithValue(ctx, CycleKey{}, cycle)
}

// GetCycle retrieves the cycle number from the context
func GetCycle(ctx context.Context) (int, bool) {
	cycle, ok := ctx.Value(CycleKey{}).(int)
	return cycle, ok
}

// Component returns a child logger tagged with the component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With(
			slog.String("component", name),
			slog.String("service", "periodic"),
		),
		config: l.config,
		writer: l.writer,
	}
}

// LogTiming logs the duration of an operation
func (l *Logger) LogTiming(ctx context.Context, operation string, start time.Time, attrs ...slog.Attr) {
	allAttrs := []slog.Attr{
		slog.String("operation", operation),
		slog.Duration("duration", time.Since(start)),
	}
	allAttrs = append(allAttrs, attrs...)

	l.LogAttrs(ctx, slog.LevelDebug, "Operation completed", allAttrs...)
}

// LogError logs an error with its type
func (l *Logger) LogError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	allAttrs := []slog.Attr{
		slog.String("error", err.Error()),
		slog.String("error_type", fmt.Sprintf("%T", err)),
	}
	allAttrs = append(allAttrs, attrs...)

	l.LogAttrs(ctx, slog.LevelError, msg, allAttrs...)
}

// Close closes any file resources used by the logger
func (l *Logger) Close() error {
	if l.writer == os.Stderr {
		return nil
	}
	if closer, ok := l.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

var defaultLogger *Logger

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the default logger instance
func Default() *Logger {
	if defaultLogger == nil {
		logger, _ := NewLogger(config.DefaultConfig().Logging)
		return logger
	}
	return defaultLogger
}

// Discard returns a logger that drops every record. Handy in tests.
func Discard() *Logger {
	logger, _ := NewLoggerWithWriter(config.LoggingConfig{Level: "error", Format: "text"}, io.Discard)
	return logger
}
