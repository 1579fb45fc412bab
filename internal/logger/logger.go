// Package logger carries the two events a quill builder reports: every
// statement it builds and every input it rejects. Events go to a Logger,
// which is a NoopLogger unless the caller passes one with WithLogger.
package logger

import "log/slog"

// Event messages emitted by builders.
const (
	// EventStatementBuilt is logged at debug level by Build with the keys
	// sql, params (masked by the Sanitizer) and dialect.
	EventStatementBuilt = "statement built"
	// EventInputRejected is logged at warn level the first time a builder
	// refuses input, with value and reason (or error) plus dialect.
	EventInputRejected = "input rejected"
)

// Logger is the sink for builder events. Only Debug and Warn are used by
// quill itself; Info and Error let a shared application logger satisfy it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NoopLogger drops every event.
type NoopLogger struct{}

func (n *NoopLogger) Debug(_ string, _ ...any) {}

func (n *NoopLogger) Info(_ string, _ ...any) {}

func (n *NoopLogger) Warn(_ string, _ ...any) {}

func (n *NoopLogger) Error(_ string, _ ...any) {}

// SlogAdapter sends builder events to an slog.Logger, tagging each record
// with component=quill.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger. A nil logger falls back to slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger.With("component", "quill")}
}

func (a *SlogAdapter) Debug(msg string, args ...any) {
	a.logger.Debug(msg, args...)
}

func (a *SlogAdapter) Info(msg string, args ...any) {
	a.logger.Info(msg, args...)
}

func (a *SlogAdapter) Warn(msg string, args ...any) {
	a.logger.Warn(msg, args...)
}

func (a *SlogAdapter) Error(msg string, args ...any) {
	a.logger.Error(msg, args...)
}
