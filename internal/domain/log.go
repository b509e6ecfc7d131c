package domain

import "strings"

// LogLevel represents the severity of a worker log entry.
// Values include LogLevelInfo, LogLevelSuccess, and LogLevelError.
type LogLevel string

const (
	LogLevelInfo    LogLevel = "info"
	LogLevelSuccess LogLevel = "success"
	LogLevelError   LogLevel = "error"
)

// NormalizeLogLevel maps a raw level label to a canonical LogLevel.
// Unknown or empty input yields LogLevelInfo.
func NormalizeLogLevel(raw string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success":
		return LogLevelSuccess
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// LogEntry is one append-only worker log line. Timestamp is kept as the
// wire string; entries are display data, never used for ordering.
type LogEntry struct {
	Timestamp string   `json:"timestamp"`
	Level     LogLevel `json:"level"`
	Message   string   `json:"message"`
	ProjectID string   `json:"project_id,omitempty"`
}
