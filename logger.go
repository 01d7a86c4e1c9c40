package genarena

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with genarena-specific context.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithArena adds an arena name field to the logger.
func (l *Logger) WithArena(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("arena", name),
	}
}

// WithHandle adds a handle field to the logger.
func (l *Logger) WithHandle(h Handle) *Logger {
	return &Logger{
		Logger: l.Logger.With("handle", h.String()),
	}
}

// LogRetire logs a slot whose generation is exhausted.
func (l *Logger) LogRetire(index uint32, retired int) {
	l.Warn("slot retired after generation overflow",
		"index", index,
		"retired", retired,
	)
}

// LogSave logs a snapshot save.
func (l *Logger) LogSave(ctx context.Context, name string, version uint64, size int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot save failed",
			"arena", name,
			"version", version,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot saved",
		"arena", name,
		"version", version,
		"bytes", size,
		"elapsed", elapsed,
	)
}

// LogLoad logs a snapshot load.
func (l *Logger) LogLoad(ctx context.Context, name string, version uint64, stats Stats, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"arena", name,
			"version", version,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot loaded",
		"arena", name,
		"version", version,
		"len", stats.Len,
		"cap", stats.Cap,
		"retired", stats.Retired,
		"elapsed", elapsed,
	)
}

// LogPrune logs removal of old snapshot versions.
func (l *Logger) LogPrune(ctx context.Context, name string, removed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot prune failed",
			"arena", name,
			"removed", removed,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "snapshot prune completed",
		"arena", name,
		"removed", removed,
	)
}
