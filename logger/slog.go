package logger

import (
	"context"
	"log/slog"
	"time"
)

// SlogLogger writes entity events through a log/slog handler
type SlogLogger struct {
	Logger        *slog.Logger
	LogLevel      LogLevel
	SlowThreshold time.Duration
	Parameterized bool
}

// NewSlogLogger wraps logger, slog.Default when nil
func NewSlogLogger(logger *slog.Logger, config Config) Interface {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{
		Logger:        logger,
		LogLevel:      config.LogLevel,
		SlowThreshold: config.SlowThreshold,
		Parameterized: config.ParameterizedQueries,
	}
}

// LogMode returns a copy logging at level
func (l *SlogLogger) LogMode(level LogLevel) Interface {
	clone := *l
	clone.LogLevel = level
	return &clone
}

// Info writes msg at info level
func (l *SlogLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.log(ctx, slog.LevelInfo, msg, slog.Any("data", data))
	}
}

// Warn writes msg at warn level
func (l *SlogLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.log(ctx, slog.LevelWarn, msg, slog.Any("data", data))
	}
}

// Error writes msg at error level
func (l *SlogLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.log(ctx, slog.LevelError, msg, slog.Any("data", data))
	}
}

// Trace writes one record per statement with the event as attributes
func (l *SlogLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	e := NewEvent(ctx, l.LogLevel, l.SlowThreshold, begin, fc, err)

	level := slog.LevelInfo
	attrs := []slog.Attr{
		slog.String("statement", e.Statement),
		slog.String("sql", e.SQL),
		slog.Float64("elapsed_ms", e.Millis()),
		slog.String("caller", e.Caller),
	}
	if e.HasRows() {
		attrs = append(attrs, slog.Int64("rows", e.Rows))
	}

	switch e.Severity {
	case Skipped:
		return
	case Slow:
		level = slog.LevelWarn
		attrs = append(attrs, slog.Duration("slow_threshold", l.SlowThreshold))
	case Failed:
		level = slog.LevelError
		attrs = append(attrs, slog.Any("error", e.Err))
	}
	l.log(ctx, level, e.Message(), attrs...)
}

func (l *SlogLogger) log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if name := DriverFromContext(ctx); name != "" {
		attrs = append(attrs, slog.String("driver", name))
	}
	l.Logger.LogAttrs(ctx, level, msg, attrs...)
}

// ParamsFilter drops the params of parameterized loggers
func (l *SlogLogger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	if l.Parameterized {
		return sql, nil
	}
	return sql, params
}
