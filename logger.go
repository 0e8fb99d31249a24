package cmhash

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hupe1980/cmhash/eval"
)

// Logger wraps slog.Logger with cmhash-specific context.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// ParseLevel parses "debug", "info", "warn" or "error".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// WithRun adds the run name to the logger.
func (l *Logger) WithRun(run string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run", run),
	}
}

// LogProgress logs the running loss inside an epoch.
func (l *Logger) LogProgress(ctx context.Context, epoch, batch int, avgLoss float64) {
	l.DebugContext(ctx, "training progress",
		"epoch", epoch,
		"batch", batch,
		"loss", avgLoss,
	)
}

// LogEpoch logs a finished epoch.
func (l *Logger) LogEpoch(ctx context.Context, epoch int, trainLoss, avgMAP float64, isBest bool, elapsed time.Duration) {
	l.InfoContext(ctx, "epoch completed",
		"epoch", epoch,
		"train_loss", trainLoss,
		"average_map", avgMAP,
		"best", isBest,
		"elapsed", elapsed,
	)
}

// LogValidation logs the mAP of every direction.
func (l *Logger) LogValidation(ctx context.Context, epoch, k int, s eval.Scores, err error) {
	if err != nil {
		l.ErrorContext(ctx, "validation failed",
			"epoch", epoch,
			"error", err,
		)
		return
	}
	args := []any{"epoch", epoch, "k", k, "queries", s.Queries}
	for _, d := range eval.Directions {
		args = append(args, "map_"+d.Tag(), s.Plain[d], "wmap_"+d.Tag(), s.Weighted[d])
	}
	args = append(args, "average_map", s.AveragePlain, "average_wmap", s.AverageWeighted)
	l.DebugContext(ctx, "validation completed", args...)
}

// LogPersist logs the outcome of persisting the best snapshot.
func (l *Logger) LogPersist(ctx context.Context, run string, epoch int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "persisting snapshot failed",
			"run", run,
			"epoch", epoch,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot persisted",
			"run", run,
			"epoch", epoch,
		)
	}
}

// LogSinkError logs a tracking sink failure. Sink failures do not stop training.
func (l *Logger) LogSinkError(ctx context.Context, epoch int, err error) {
	l.WarnContext(ctx, "recording epoch failed",
		"epoch", epoch,
		"error", err,
	)
}
