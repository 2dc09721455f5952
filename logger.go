package sparsevec

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with sparsevec-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithName adds a vector name field to the logger.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("vector", name),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogImport logs a bulk import.
func (l *Logger) LogImport(offset uint32, count int, size uint32, err error) {
	if err != nil {
		l.Error("import failed",
			"offset", offset,
			"count", count,
			"error", err,
		)
		return
	}
	l.Debug("import completed",
		"offset", offset,
		"count", count,
		"size", size,
	)
}

// LogOptimize logs a compaction pass.
func (l *Logger) LogOptimize(mode string, freed int, st Statistics) {
	l.Debug("optimize completed",
		"mode", mode,
		"planes_freed", freed,
		"memory_used", st.MemoryUsed,
		"max_serialize_mem", st.MaxSerializeMem,
	)
}

// LogClear logs a full clear.
func (l *Logger) LogClear(prevSize uint32) {
	l.Debug("vector cleared", "previous_size", prevSize)
}

// LogSave logs a snapshot save.
func (l *Logger) LogSave(ctx context.Context, key string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot save failed",
			"key", key,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot saved",
		"key", key,
		"bytes", bytes,
	)
}

// LogLoad logs a snapshot load.
func (l *Logger) LogLoad(ctx context.Context, key string, size uint32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"key", key,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot loaded",
		"key", key,
		"size", size,
	)
}
