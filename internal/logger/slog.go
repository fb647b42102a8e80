package logger

import (
	"context"
	"log/slog"
	"time"
)

// slogLogger implements Logger on log/slog
type slogLogger struct {
	logger *slog.Logger
	level  Level
}

// NewSlogLogger creates a Logger writing JSON, or logfmt-style text when
// cfg.Format is "text", to cfg.Output
func NewSlogLogger(cfg Config) Logger {
	opts := &slog.HandlerOptions{
		Level:       toSlogLevel(cfg.Level),
		AddSource:   cfg.AddSource,
		ReplaceAttr: readableDurations,
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(cfg.writer(), opts)
	} else {
		handler = slog.NewJSONHandler(cfg.writer(), opts)
	}

	return &slogLogger{logger: slog.New(handler), level: cfg.Level}
}

// readableDurations renders durations such as request latency and store
// timeouts as "1.5ms" instead of integer nanoseconds
func readableDurations(_ []string, a slog.Attr) slog.Attr {
	if d, ok := a.Value.Any().(time.Duration); ok {
		a.Value = slog.StringValue(d.String())
	}
	return a
}

func toSlogLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func toSlogAttrs(fields []Field) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	return attrs
}

// log drops entries below the handler level before converting fields
func (l *slogLogger) log(level slog.Level, msg string, fields []Field) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.LogAttrs(ctx, level, msg, toSlogAttrs(fields)...)
}

func (l *slogLogger) Debug(msg string, fields ...Field) { l.log(slog.LevelDebug, msg, fields) }
func (l *slogLogger) Info(msg string, fields ...Field)  { l.log(slog.LevelInfo, msg, fields) }
func (l *slogLogger) Warn(msg string, fields ...Field)  { l.log(slog.LevelWarn, msg, fields) }
func (l *slogLogger) Error(msg string, fields ...Field) { l.log(slog.LevelError, msg, fields) }

func (l *slogLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	handler := l.logger.Handler().WithAttrs(toSlogAttrs(fields))
	return &slogLogger{logger: slog.New(handler), level: l.level}
}

func (l *slogLogger) WithContext(ctx context.Context) Logger {
	return l.With(extractContextFields(ctx)...)
}

func (l *slogLogger) Level() Level {
	return l.level
}
