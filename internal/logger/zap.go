package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger implements Logger on top of zap
type zapLogger struct {
	logger *zap.Logger
	level  Level
}

// NewZapLogger creates a new Logger backed by zap
func NewZapLogger(cfg Config) Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "text" {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(cfg.writer()), toZapLevel(cfg.Level))

	var opts []zap.Option
	if cfg.AddSource {
		// Skip the wrapper methods below
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
	}

	return newZapLoggerFromCore(core, cfg.Level, opts...)
}

func newZapLoggerFromCore(core zapcore.Core, level Level, opts ...zap.Option) Logger {
	return &zapLogger{
		logger: zap.New(core, opts...),
		level:  level,
	}
}

func toZapLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

func (l *zapLogger) Debug(msg string, fields ...Field) {
	l.logger.Debug(msg, toZapFields(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Field) {
	l.logger.Info(msg, toZapFields(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Field) {
	l.logger.Warn(msg, toZapFields(fields)...)
}

func (l *zapLogger) Error(msg string, fields ...Field) {
	l.logger.Error(msg, toZapFields(fields)...)
}

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{
		logger: l.logger.With(toZapFields(fields)...),
		level:  l.level,
	}
}

func (l *zapLogger) WithContext(ctx context.Context) Logger {
	fields := extractContextFields(ctx)
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

func (l *zapLogger) Level() Level {
	return l.level
}

// Sync flushes buffered zap entries; it is a no-op for other backends
func Sync(l Logger) error {
	if z, ok := l.(*zapLogger); ok {
		return z.logger.Sync()
	}
	return nil
}
