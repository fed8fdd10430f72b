// internal/logging/logger.go
package logging

import (
	"context"
	"log/slog"
	"os"
	"time"

	"talen-core/finder"
	"talen-core/seq"
)

// Logger wraps slog.Logger with consistent field names for scans.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger on handler. A nil handler logs text at Info to
// stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger logs human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger logs JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// OrNoop returns l, or a NoopLogger when l is nil.
func OrNoop(l *Logger) *Logger {
	if l == nil {
		return NoopLogger()
	}
	return l
}

func (l *Logger) WithProbe(p *seq.Sequence) *Logger {
	return &Logger{Logger: l.Logger.With("probe", p.String())}
}

func (l *Logger) WithFinder(kind string) *Logger {
	return &Logger{Logger: l.Logger.With("finder", kind)}
}

func (l *Logger) WithPartition(i, size int) *Logger {
	return &Logger{Logger: l.Logger.With("partition", i, "sequences", size)}
}

// LogScan logs a single-probe search.
func (l *Logger) LogScan(ctx context.Context, strand finder.Strand, matches int, took time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scan failed",
			"strand", strand.String(),
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "scan completed",
		"strand", strand.String(),
		"matches", matches,
		"took", took,
	)
}

// LogPairs logs a paired search.
func (l *Logger) LogPairs(ctx context.Context, pairs int, took time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "pair search failed",
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "pair search completed",
		"pairs", pairs,
		"took", took,
	)
}
