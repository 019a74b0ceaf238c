package logger

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger writes entity events through a zap.Logger
type ZapLogger struct {
	Logger        *zap.Logger
	LogLevel      LogLevel
	SlowThreshold time.Duration
	Parameterized bool
}

// NewZapLogger wraps logger, when logger is nil a production logger at config.LogLevel is built
func NewZapLogger(logger *zap.Logger, config Config) Interface {
	if logger == nil {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(ZapLevel(config.LogLevel))
		built, err := cfg.Build()
		if err != nil {
			built = zap.NewNop()
		}
		logger = built
	}

	return &ZapLogger{
		Logger:        logger,
		LogLevel:      config.LogLevel,
		SlowThreshold: config.SlowThreshold,
		Parameterized: config.ParameterizedQueries,
	}
}

// LogMode returns a copy logging at level
func (l *ZapLogger) LogMode(level LogLevel) Interface {
	clone := *l
	clone.LogLevel = level
	return &clone
}

// Info writes msg at info level
func (l *ZapLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.write(ctx, Info, zapcore.InfoLevel, msg, data)
}

// Warn writes msg at warn level
func (l *ZapLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.write(ctx, Warn, zapcore.WarnLevel, msg, data)
}

// Error writes msg at error level
func (l *ZapLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.write(ctx, Error, zapcore.ErrorLevel, msg, data)
}

func (l *ZapLogger) write(ctx context.Context, min LogLevel, level zapcore.Level, msg string, data []interface{}) {
	if l.LogLevel < min {
		return
	}
	fields := []zap.Field{zap.Any("data", data)}
	if name := DriverFromContext(ctx); name != "" {
		fields = append(fields, zap.String("driver", name))
	}
	l.Logger.Log(level, msg, fields...)
}

// Trace writes one field per Event attribute, rows are left out when unknown
func (l *ZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	e := NewEvent(ctx, l.LogLevel, l.SlowThreshold, begin, fc, err)

	level := zapcore.InfoLevel
	switch e.Severity {
	case Skipped:
		return
	case Slow:
		level = zapcore.WarnLevel
	case Failed:
		level = zapcore.ErrorLevel
	}

	fields := []zap.Field{
		zap.String("driver", e.Driver),
		zap.String("statement", e.Statement),
		zap.String("sql", e.SQL),
		zap.Float64("elapsed_ms", e.Millis()),
		zap.String("caller", e.Caller),
	}
	if e.HasRows() {
		fields = append(fields, zap.Int64("rows", e.Rows))
	}
	if e.Severity == Slow {
		fields = append(fields, zap.Duration("slow_threshold", l.SlowThreshold))
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}
	l.Logger.Log(level, e.Message(), fields...)
}

// ParamsFilter drops the params of parameterized loggers
func (l *ZapLogger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	if l.Parameterized {
		return sql, nil
	}
	return sql, params
}

// Named returns a copy whose zap logger carries name, e.g. the definition being queried
func (l *ZapLogger) Named(name string) *ZapLogger {
	clone := *l
	clone.Logger = l.Logger.Named(name)
	return &clone
}

// ZapLevel maps a LogLevel to the lowest zap level it lets through
func ZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case Silent:
		return zapcore.FatalLevel
	case Error:
		return zapcore.ErrorLevel
	case Warn:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}
