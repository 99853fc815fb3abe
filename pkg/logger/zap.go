package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/labops/go-sdk/pkg/types"
)

// ZapLogger adapts zap.Logger to our Logger interface
type ZapLogger struct {
	logger *zap.Logger
	config *types.LoggerConfig
}

// NewZapLogger creates a new ZapLogger with optional configuration
func NewZapLogger(logger *zap.Logger, config *types.LoggerConfig) types.Logger {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	if config == nil {
		config = &types.LoggerConfig{
			MinLevel: types.LogLevelInfo,
		}
	}
	if len(config.DefaultFields) > 0 {
		logger = logger.With(convertToZapFields(config.DefaultFields)...)
	}
	return &ZapLogger{
		logger: logger,
		config: config,
	}
}

// convertToZapFields converts our LogFields to zap.Fields
func convertToZapFields(fields []types.LogField) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	zapFields := make([]zap.Field, len(fields))
	for i, f := range fields {
		zapFields[i] = zap.Any(f.Key, f.Value)
	}
	return zapFields
}

// convertLogLevel converts our LogLevel to zapcore.Level
func convertLogLevel(level types.LogLevel) zapcore.Level {
	switch level {
	case types.LogLevelDebug:
		return zapcore.DebugLevel
	case types.LogLevelInfo:
		return zapcore.InfoLevel
	case types.LogLevelWarn:
		return zapcore.WarnLevel
	case types.LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *ZapLogger) shouldLog(level types.LogLevel) bool {
	if l.config == nil {
		return true
	}
	return convertLogLevel(level) >= convertLogLevel(l.config.MinLevel)
}

func (l *ZapLogger) Debug(msg string, fields ...types.LogField) {
	if l.shouldLog(types.LogLevelDebug) {
		l.logger.Debug(msg, convertToZapFields(fields)...)
	}
}

func (l *ZapLogger) Info(msg string, fields ...types.LogField) {
	if l.shouldLog(types.LogLevelInfo) {
		l.logger.Info(msg, convertToZapFields(fields)...)
	}
}

func (l *ZapLogger) Warn(msg string, fields ...types.LogField) {
	if l.shouldLog(types.LogLevelWarn) {
		l.logger.Warn(msg, convertToZapFields(fields)...)
	}
}

func (l *ZapLogger) Error(msg string, fields ...types.LogField) {
	if l.shouldLog(types.LogLevelError) {
		l.logger.Error(msg, convertToZapFields(fields)...)
	}
}

func (l *ZapLogger) With(fields ...types.LogField) types.Logger {
	return &ZapLogger{
		logger: l.logger.With(convertToZapFields(fields)...),
		config: l.config,
	}
}

func (l *ZapLogger) Flush() error {
	return l.logger.Sync()
}

// Unwrap returns the underlying zap.Logger for callers that need it directly,
// such as HTTP middleware.
func (l *ZapLogger) Unwrap() *zap.Logger {
	return l.logger
}

// DefaultZapConfig returns a default Zap configuration
func DefaultZapConfig() zap.Config {
	return zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
}

// NewZapLoggerFromConfig builds a ZapLogger for the given minimum level,
// falling back to production defaults when the config cannot be built.
func NewZapLoggerFromConfig(minLevel types.LogLevel, fields ...types.LogField) types.Logger {
	zapConfig := DefaultZapConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(convertLogLevel(minLevel))

	zl, err := zapConfig.Build(zap.AddCallerSkip(1))
	if err != nil {
		zl, _ = zap.NewProduction()
	}

	return NewZapLogger(zl, &types.LoggerConfig{
		MinLevel:      minLevel,
		DefaultFields: fields,
	})
}
