package knngraph

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with knngraph-specific context.
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
// It is the default, matching a non-verbose transformer.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithMethod adds the index method to the logger.
func (l *Logger) WithMethod(method string) *Logger {
	return &Logger{
		Logger: l.Logger.With("method", method),
	}
}

// WithSpace adds the distance space to the logger.
func (l *Logger) WithSpace(space string) *Logger {
	return &Logger{
		Logger: l.Logger.With("space", space),
	}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// LogFit logs the outcome of an index build.
func (l *Logger) LogFit(ctx context.Context, points int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index construction failed",
			"points", points,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "indexing completed",
		"points", points,
		"elapsed", elapsed,
	)
}

// LogQuery logs the timing of a kNN query batch: total time, time per
// query and time per query adjusted for the thread count.
func (l *Logger) LogQuery(ctx context.Context, queries, threads int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "kNN query failed",
			"queries", queries,
			"error", err,
		)
		return
	}
	perQuery := elapsed / time.Duration(max(queries, 1))
	l.InfoContext(ctx, "kNN query completed",
		"queries", queries,
		"total", elapsed,
		"per_query", perQuery,
		"per_query_adjusted", perQuery*time.Duration(threads),
	)
}
