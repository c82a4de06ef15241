package domain

import (
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for log lines (UTC, millisecond precision).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// MaxKeyLength bounds a saved value in bytes.
const MaxKeyLength = 1024

// ValidateKeyValue checks that value fits on one log line.
func ValidateKeyValue(value string) error {
	switch {
	case value == "":
		return ErrEmptyKey
	case strings.ContainsAny(value, "\r\n"):
		return &InvalidKeyError{Reason: "contains a line break"}
	case len(value) > MaxKeyLength:
		return &InvalidKeyError{Reason: "longer than 1024 bytes"}
	}
	return nil
}

// LogEntry is one saved key in the backend log.
type LogEntry struct {
	Timestamp time.Time
	Value     string
}

// NewLogEntry stamps value with the given time, normalized to UTC milliseconds.
func NewLogEntry(at time.Time, value string) LogEntry {
	return LogEntry{Timestamp: at.UTC().Truncate(time.Millisecond), Value: value}
}

// Line serializes the entry as "[<timestamp>] <value>\n".
func (e LogEntry) Line() string {
	return FormatLine(e.Timestamp, e.Value)
}

// FormatLine renders a single log line.
func FormatLine(at time.Time, value string) string {
	return "[" + at.UTC().Format(TimestampLayout) + "] " + value + "\n"
}

// ParseLog splits backend content into entries. Lines that do not follow the
// "[<timestamp>] <value>" layout are skipped.
func ParseLog(content string) []LogEntry {
	var entries []LogEntry
	for line := range strings.Lines(content) {
		line = strings.TrimRight(line, "\r\n")
		if !strings.HasPrefix(line, "[") {
			continue
		}
		end := strings.Index(line, "] ")
		if end < 0 {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, line[1:end])
		if err != nil {
			continue
		}
		entries = append(entries, LogEntry{Timestamp: ts.UTC(), Value: line[end+2:]})
	}
	return entries
}
