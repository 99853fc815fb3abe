package logger

import (
	"github.com/labops/go-sdk/pkg/types"
)

// defaultLogger is the process-wide logger used when callers do not inject one
var defaultLogger types.Logger = NewStdLogger()

// SetDefaultLogger sets the default logger implementation
func SetDefaultLogger(logger types.Logger) {
	if logger != nil {
		defaultLogger = logger
	}
}

// GetDefaultLogger returns the default logger
func GetDefaultLogger() types.Logger {
	return defaultLogger
}

// New creates a new logger carrying the given component name
func New(component string) types.Logger {
	return defaultLogger.With(types.LogField{Key: "component", Value: component})
}
