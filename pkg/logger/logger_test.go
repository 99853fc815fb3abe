package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labops/go-sdk/pkg/types"
)

// recordingLogger captures messages and fields for assertions
type recordingLogger struct {
	fields   []types.LogField
	messages []string
}

func (l *recordingLogger) log(msg string, fields []types.LogField) {
	l.messages = append(l.messages, msg)
	l.fields = append(l.fields, fields...)
}

func (l *recordingLogger) Debug(msg string, fields ...types.LogField) { l.log(msg, fields) }
func (l *recordingLogger) Info(msg string, fields ...types.LogField)  { l.log(msg, fields) }
func (l *recordingLogger) Warn(msg string, fields ...types.LogField)  { l.log(msg, fields) }
func (l *recordingLogger) Error(msg string, fields ...types.LogField) { l.log(msg, fields) }

func (l *recordingLogger) With(fields ...types.LogField) types.Logger {
	l.fields = append(l.fields, fields...)
	return l
}

func (l *recordingLogger) Flush() error { return nil }

func TestDefaultLogger(t *testing.T) {
	original := GetDefaultLogger()
	t.Cleanup(func() { SetDefaultLogger(original) })

	t.Run("set and get round-trip", func(t *testing.T) {
		rec := &recordingLogger{}
		SetDefaultLogger(rec)
		assert.Same(t, types.Logger(rec), GetDefaultLogger())
	})

	t.Run("nil is ignored", func(t *testing.T) {
		rec := &recordingLogger{}
		SetDefaultLogger(rec)
		SetDefaultLogger(nil)
		assert.Same(t, types.Logger(rec), GetDefaultLogger())
	})

	t.Run("New attaches the component field", func(t *testing.T) {
		rec := &recordingLogger{}
		SetDefaultLogger(rec)

		log := New("watcher")
		log.Info("rules reloaded")

		require.NotEmpty(t, rec.fields)
		assert.Equal(t, "component", rec.fields[0].Key)
		assert.Equal(t, "watcher", rec.fields[0].Value)
		assert.Contains(t, rec.messages, "rules reloaded")
	})
}
