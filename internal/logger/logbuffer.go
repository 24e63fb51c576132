package logger

import (
	"encoding/json"

	"github.com/seerlink/seerlink/internal/diagnostics"
)

const defaultBufferSize = 500

// LogEntry is a parsed log line kept for the diagnostics endpoint.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// LogBuffer implements io.Writer and keeps the most recent zerolog entries.
type LogBuffer struct {
	buffer *diagnostics.RingBuffer[LogEntry]
}

// NewLogBuffer creates a buffer retaining up to size entries.
func NewLogBuffer(size int) *LogBuffer {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &LogBuffer{buffer: diagnostics.NewRingBuffer[LogEntry](size)}
}

// Write receives one JSON log entry from zerolog.
func (b *LogBuffer) Write(p []byte) (n int, err error) {
	n = len(p)

	entry, parseErr := parseLogEntry(p)
	if parseErr != nil {
		return n, nil //nolint:nilerr // Silently ignore malformed log entries
	}

	b.buffer.Push(entry)
	return n, nil
}

// Recent returns buffered entries, oldest first.
func (b *LogBuffer) Recent() []LogEntry {
	return b.buffer.GetAll()
}

func parseLogEntry(data []byte) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, err
	}

	entry := LogEntry{}
	take := func(key string) string {
		s, _ := raw[key].(string)
		delete(raw, key)
		return s
	}
	entry.Timestamp = take(zerologTimeField)
	entry.Level = take("level")
	entry.Component = take("component")
	entry.Message = take("message")

	if len(raw) > 0 {
		entry.Fields = raw
	}
	return entry, nil
}
