package logging

import (
	"fmt"
	"strings"
	"sync"
)

// RecordingLogger keeps every message in memory, prefixed with its level.
type RecordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) Verbose(format string, args ...interface{}) {
	l.add("VERBOSE", format, args)
}

func (l *RecordingLogger) Info(format string, args ...interface{}) {
	l.add("INFO", format, args)
}

func (l *RecordingLogger) Error(format string, args ...interface{}) {
	l.add("ERROR", format, args)
}

func (l *RecordingLogger) add(level, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

// Lines returns a copy of the recorded messages.
func (l *RecordingLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// Contains reports whether any recorded message contains substr.
func (l *RecordingLogger) Contains(substr string) bool {
	for _, line := range l.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
