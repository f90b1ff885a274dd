// Package logger defines the logging abstraction used by the go-stage packages.
//
// Links, devices and the CLI only depend on the Logger interface, so any
// structured logging framework can be plugged in with a small adapter. The
// package ships a log/slog based implementation (see NewSlog) and a testify
// based mock for unit tests.
//
// Log Levels:
//
//   - DebugLevel: wire frames and lockstep state transitions.
//   - InfoLevel:  link open/close and configuration changes.
//   - WarnLevel:  read timeouts, malformed replies and unexpected warning flags.
//   - ErrorLevel: failures that abort an operation.
//   - FatalLevel: unrecoverable errors, the process exits.
package logger

// LogLevel indicates the logging severity level.
type LogLevel = int8

const (
	// DebugLevel logs are voluminous and usually disabled in production.
	DebugLevel LogLevel = iota - 1
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs are more important than Info, but don't need individual
	// human review.
	WarnLevel
	// ErrorLevel logs are high-priority.
	ErrorLevel
	// FatalLevel logs a message, then calls os.Exit(1).
	FatalLevel
)

// Logger defines a common interface for structured logging with key-value pairs.
type Logger interface {
	// Debug logs a message at DebugLevel.
	Debug(msg string, keysAndValues ...any)
	// Info logs a message at InfoLevel.
	Info(msg string, keysAndValues ...any)
	// Warn logs a message at WarnLevel.
	Warn(msg string, keysAndValues ...any)
	// Error logs a message at ErrorLevel.
	Error(msg string, keysAndValues ...any)
	// Fatal logs a message at FatalLevel, then calls os.Exit(1).
	Fatal(msg string, keysAndValues ...any)
	// With creates a child logger carrying the given key-values.
	// Key-values added to the child don't affect the parent, and vice versa.
	With(keyValues ...any) Logger
	// Level returns the minimum enabled level for this logger.
	Level() LogLevel
	// SetLevel sets the minimum enabled level for this logger.
	SetLevel(level LogLevel)
}
