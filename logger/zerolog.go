package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger writes entity events through a zerolog.Logger
type ZerologLogger struct {
	Logger        zerolog.Logger
	LogLevel      LogLevel
	SlowThreshold time.Duration
	Parameterized bool
}

// NewZerologLogger wraps logger, config gives the level and the slow threshold
func NewZerologLogger(logger zerolog.Logger, config Config) Interface {
	return &ZerologLogger{
		Logger:        logger,
		LogLevel:      config.LogLevel,
		SlowThreshold: config.SlowThreshold,
		Parameterized: config.ParameterizedQueries,
	}
}

// NewZerologConsoleLogger writes human readable lines to stderr
func NewZerologConsoleLogger(config Config) Interface {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen, NoColor: !config.Colorful}
	return NewZerologLogger(zerolog.New(out).Level(ZerologLevel(config.LogLevel)).With().Timestamp().Logger(), config)
}

// LogMode returns a copy logging at level
func (l *ZerologLogger) LogMode(level LogLevel) Interface {
	clone := *l
	clone.LogLevel = level
	return &clone
}

// Info writes msg at info level
func (l *ZerologLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.with(ctx, l.Logger.Info()).Interface("data", data).Msg(msg)
	}
}

// Warn writes msg at warn level
func (l *ZerologLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.with(ctx, l.Logger.Warn()).Interface("data", data).Msg(msg)
	}
}

// Error writes msg at error level
func (l *ZerologLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.with(ctx, l.Logger.Error()).Interface("data", data).Msg(msg)
	}
}

// Trace writes one event per statement, see NewEvent for the level rules
func (l *ZerologLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	e := NewEvent(ctx, l.LogLevel, l.SlowThreshold, begin, fc, err)

	var ev *zerolog.Event
	switch e.Severity {
	case Skipped:
		return
	case Executed:
		ev = l.Logger.Info()
	case Slow:
		ev = l.Logger.Warn().Dur("slow_threshold", l.SlowThreshold)
	case Failed:
		ev = l.Logger.Error().Err(e.Err)
	}

	ev = l.with(ctx, ev).
		Str("statement", e.Statement).
		Str("sql", e.SQL).
		Float64("elapsed_ms", e.Millis()).
		Str("caller", e.Caller)
	if e.HasRows() {
		ev = ev.Int64("rows", e.Rows)
	}
	ev.Msg(e.Message())
}

// ParamsFilter drops the params of parameterized loggers
func (l *ZerologLogger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	if l.Parameterized {
		return sql, nil
	}
	return sql, params
}

func (l *ZerologLogger) with(ctx context.Context, ev *zerolog.Event) *zerolog.Event {
	if ctx == nil {
		return ev
	}
	if name := DriverFromContext(ctx); name != "" {
		ev = ev.Str("driver", name)
	}
	return ev.Ctx(ctx)
}

// ZerologLevel maps a LogLevel to the zerolog level it lets through
func ZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case Silent:
		return zerolog.Disabled
	case Error:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}
