package testutil

import (
	syncpkg "dotsync/internal/sync"
)

// LogEntry is one captured log record.
type LogEntry struct {
	Level string
	Msg   string
	Args  []any
}

// RecordingLogger captures log records for assertions.
type RecordingLogger struct {
	Entries []LogEntry
}

// NewRecordingLogger creates an empty RecordingLogger.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) log(level, msg string, args []any) {
	l.Entries = append(l.Entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *RecordingLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args) }
func (l *RecordingLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args) }
func (l *RecordingLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args) }
func (l *RecordingLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args) }

// Messages returns the captured messages at the given level.
func (l *RecordingLogger) Messages(level string) []string {
	var msgs []string
	for _, e := range l.Entries {
		if e.Level == level {
			msgs = append(msgs, e.Msg)
		}
	}
	return msgs
}

// Compile-time check
var _ syncpkg.Logger = (*RecordingLogger)(nil)
