package logger

import (
	"sync"

	"github.com/stretchr/testify/mock"
)

// Entry is one call recorded by MockLogger.
type Entry struct {
	Level         LogLevel
	Msg           string
	KeysAndValues []any
}

// MockLogger is a testify mock implementing Logger.
//
// Every log call is recorded as an Entry before it reaches the mock, so a
// test may either set expectations with On or call Quiet and inspect
// Entries afterwards. With returns the receiver: child loggers share the
// recording.
type MockLogger struct {
	mock.Mock

	mu      sync.Mutex
	level   LogLevel
	entries []Entry
}

var _ Logger = (*MockLogger)(nil)

func NewMockLogger() *MockLogger {
	return &MockLogger{level: DebugLevel}
}

// Quiet accepts any log call without an explicit expectation.
func (m *MockLogger) Quiet() *MockLogger {
	for _, method := range []string{"Debug", "Info", "Warn", "Error", "Fatal"} {
		m.On(method, mock.Anything, mock.Anything).Maybe()
	}

	return m
}

// Entries returns a copy of the recorded calls.
func (m *MockLogger) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Entry(nil), m.entries...)
}

// Logged reports whether msg was recorded at level.
func (m *MockLogger) Logged(level LogLevel, msg string) bool {
	for _, e := range m.Entries() {
		if e.Level == level && e.Msg == msg {
			return true
		}
	}

	return false
}

func (m *MockLogger) Debug(msg string, keysAndValues ...any) {
	m.record(DebugLevel, msg, keysAndValues)
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Info(msg string, keysAndValues ...any) {
	m.record(InfoLevel, msg, keysAndValues)
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Warn(msg string, keysAndValues ...any) {
	m.record(WarnLevel, msg, keysAndValues)
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Error(msg string, keysAndValues ...any) {
	m.record(ErrorLevel, msg, keysAndValues)
	m.Called(msg, keysAndValues)
}

// Fatal records and reports the call but does not exit.
func (m *MockLogger) Fatal(msg string, keysAndValues ...any) {
	m.record(FatalLevel, msg, keysAndValues)
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) SetLevel(level LogLevel) {
	m.mu.Lock()
	m.level = level
	m.mu.Unlock()
}

func (m *MockLogger) Level() LogLevel {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.level
}

func (m *MockLogger) With(_ ...any) Logger {
	return m
}

func (m *MockLogger) record(level LogLevel, msg string, keysAndValues []any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if level < m.level {
		return
	}
	m.entries = append(m.entries, Entry{Level: level, Msg: msg, KeysAndValues: keysAndValues})
}
