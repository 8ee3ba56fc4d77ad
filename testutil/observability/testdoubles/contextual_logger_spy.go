package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// SpyLogRecord represents a recorded log call.
type SpyLogRecord struct {
	Level   string
	Message string
	Args    []any
}

// Arg returns the value logged for key, if any.
func (r SpyLogRecord) Arg(key string) (any, bool) {
	for i := 0; i+1 < len(r.Args); i += 2 {
		if k, ok := r.Args[i].(string); ok && k == key {
			return r.Args[i+1], true
		}
	}

	return nil, false
}

// ContextualLoggerSpy captures contextual logging calls.
// It also implements ledger.Logger so it can stand in for either kind of logger.
type ContextualLoggerSpy struct {
	records []SpyLogRecord
	mu      sync.Mutex
}

// NewContextualLoggerSpy creates a new ContextualLoggerSpy instance.
func NewContextualLoggerSpy() *ContextualLoggerSpy {
	return &ContextualLoggerSpy{}
}

func (s *ContextualLoggerSpy) record(level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyLogRecord{Level: level, Message: msg, Args: append([]any(nil), args...)})
}

// DebugContext implements ledger.ContextualLogger.
func (s *ContextualLoggerSpy) DebugContext(_ context.Context, msg string, args ...any) {
	s.record("debug", msg, args)
}

// InfoContext implements ledger.ContextualLogger.
func (s *ContextualLoggerSpy) InfoContext(_ context.Context, msg string, args ...any) {
	s.record("info", msg, args)
}

// WarnContext implements ledger.ContextualLogger.
func (s *ContextualLoggerSpy) WarnContext(_ context.Context, msg string, args ...any) {
	s.record("warn", msg, args)
}

// ErrorContext implements ledger.ContextualLogger.
func (s *ContextualLoggerSpy) ErrorContext(_ context.Context, msg string, args ...any) {
	s.record("error", msg, args)
}

// Debug implements ledger.Logger.
func (s *ContextualLoggerSpy) Debug(msg string, args ...any) { s.record("debug", msg, args) }

// Info implements ledger.Logger.
func (s *ContextualLoggerSpy) Info(msg string, args ...any) { s.record("info", msg, args) }

// Warn implements ledger.Logger.
func (s *ContextualLoggerSpy) Warn(msg string, args ...any) { s.record("warn", msg, args) }

// Error implements ledger.Logger.
func (s *ContextualLoggerSpy) Error(msg string, args ...any) { s.record("error", msg, args) }

// Records returns a copy of all records.
func (s *ContextualLoggerSpy) Records() []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyLogRecord(nil), s.records...)
}

// Find returns the first record with the given level and message.
func (s *ContextualLoggerSpy) Find(level, message string) (SpyLogRecord, bool) {
	for _, record := range s.Records() {
		if record.Level == level && record.Message == message {
			return record, true
		}
	}

	return SpyLogRecord{}, false
}

// HasInfoLog checks if an info log with the specified message exists.
func (s *ContextualLoggerSpy) HasInfoLog(message string) bool {
	_, ok := s.Find("info", message)
	return ok
}

// HasErrorLog checks if an error log with the specified message exists.
func (s *ContextualLoggerSpy) HasErrorLog(message string) bool {
	_, ok := s.Find("error", message)
	return ok
}

var (
	_ ledger.ContextualLogger = (*ContextualLoggerSpy)(nil)
	_ ledger.Logger           = (*ContextualLoggerSpy)(nil)
)
