package logger

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/labops/go-sdk/pkg/types"
)

// StdLogger implements types.Logger using the standard log package. It is the
// fallback when no zap logger has been installed, e.g. in short-lived CLI runs.
type StdLogger struct {
	logger *log.Logger
	fields []types.LogField
}

// NewStdLogger creates a new StdLogger writing to stderr
func NewStdLogger() *StdLogger {
	return &StdLogger{
		logger: log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (l *StdLogger) print(level string, msg string, fields []types.LogField) {
	all := append(append([]types.LogField{}, l.fields...), fields...)
	if len(all) == 0 {
		l.logger.Printf("%s: %s", level, msg)
		return
	}
	parts := make([]string, len(all))
	for i, f := range all {
		parts[i] = fmt.Sprintf("%s=%v", f.Key, f.Value)
	}
	l.logger.Printf("%s: %s %s", level, msg, strings.Join(parts, " "))
}

func (l *StdLogger) Debug(msg string, fields ...types.LogField) { l.print("DEBUG", msg, fields) }
func (l *StdLogger) Info(msg string, fields ...types.LogField)  { l.print("INFO", msg, fields) }
func (l *StdLogger) Warn(msg string, fields ...types.LogField)  { l.print("WARN", msg, fields) }
func (l *StdLogger) Error(msg string, fields ...types.LogField) { l.print("ERROR", msg, fields) }

func (l *StdLogger) With(fields ...types.LogField) types.Logger {
	return &StdLogger{
		logger: l.logger,
		fields: append(append([]types.LogField{}, l.fields...), fields...),
	}
}

// Flush is a no-op, the standard logger does not buffer
func (l *StdLogger) Flush() error {
	return nil
}
