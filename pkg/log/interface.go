// Package log provides the structured logging interface used across clfreport.
//
// The interface is slog-compatible so that backends can be swapped; the default
// backend is zerolog (see zerolog.go). Tuners, estimators and reporters log
// through named loggers obtained from GetLoggerWithName, using the attribute
// keys in attributes.go:
//
//	logger := log.GetLoggerWithName("report.tuning").With(
//	    log.ModelNameKey, "KNeighborsClassifier",
//	    log.EstimatorIDKey, runID,
//	)
//	logger.Info("grid search finished",
//	    log.SearchCandidatesKey, 22,
//	    log.SearchBestScoreKey, 0.91,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs. Error accepts an error as its first
// field, in which case it is recorded under "error" together with the stack
// trace attached by cockroachdb/errors.
type Logger interface {
	// Debug logs detailed diagnostic information, e.g. per-fold scores.
	Debug(msg string, fields ...any)

	// Info logs general progress, e.g. the best candidate of a search.
	Info(msg string, fields ...any)

	// Warn logs conditions that do not stop the computation, such as
	// ill-defined metrics.
	Warn(msg string, fields ...any)

	// Error logs a failure. If the first field is an error it is handled specially:
	//
	//	logger.Error("logit fit failed", err, log.OperationKey, log.OperationFit)
	Error(msg string, fields ...any)

	// With returns a Logger that adds the given fields to every record.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers. It allows swapping the
// backend in tests (see TestLoggerProvider).
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
