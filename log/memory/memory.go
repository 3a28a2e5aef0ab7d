// Package memory is a Logger that keeps every record in memory. It is meant
// for tests that assert on what the cache logged.
package memory

import (
	"maps"
	"strings"
	"sync"

	mcpcache "github.com/QuickenLoans/mcp-cache"
)

type Level string

const (
	Debug Level = "debug"
	Info  Level = "info"
	Warn  Level = "warn"
	Error Level = "error"
)

type Record struct {
	Level   Level
	Message string
	Fields  mcpcache.Fields
}

type Logger struct {
	mu      sync.Mutex
	records []Record
}

var _ mcpcache.Logger = (*Logger)(nil)

func New() *Logger { return &Logger{} }

func (l *Logger) Debug(msg string, f mcpcache.Fields) { l.add(Debug, msg, f) }
func (l *Logger) Info(msg string, f mcpcache.Fields)  { l.add(Info, msg, f) }
func (l *Logger) Warn(msg string, f mcpcache.Fields)  { l.add(Warn, msg, f) }
func (l *Logger) Error(msg string, f mcpcache.Fields) { l.add(Error, msg, f) }

func (l *Logger) add(level Level, msg string, f mcpcache.Fields) {
	l.mu.Lock()
	l.records = append(l.records, Record{Level: level, Message: msg, Fields: maps.Clone(f)})
	l.mu.Unlock()
}

// Records returns a copy of everything logged so far.
func (l *Logger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Record(nil), l.records...)
}

// Count returns the number of records at level.
func (l *Logger) Count(level Level) int {
	n := 0
	for _, r := range l.Records() {
		if r.Level == level {
			n++
		}
	}
	return n
}

// Contains reports whether a record at level has a message containing substr.
func (l *Logger) Contains(level Level, substr string) bool {
	for _, r := range l.Records() {
		if r.Level == level && strings.Contains(r.Message, substr) {
			return true
		}
	}
	return false
}

func (l *Logger) Reset() {
	l.mu.Lock()
	l.records = nil
	l.mu.Unlock()
}
