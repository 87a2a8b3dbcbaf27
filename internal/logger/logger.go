package logger

import (
	"strings"
	"sync"
)

// Log levels accepted in configuration.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process-wide logger. Only the first call's level is honoured;
// call SetLevel afterwards to change it once the config is loaded.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(normalizeLevel(level))
	})
	return globalLogger
}

func normalizeLevel(level string) string {
	return strings.ToLower(strings.TrimSpace(level))
}
