package logger

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// LogrusLogger writes entity events through a logrus.Logger
type LogrusLogger struct {
	Logger        *logrus.Logger
	LogLevel      LogLevel
	SlowThreshold time.Duration
	Parameterized bool
}

// NewLogrusLogger wraps logger, the logrus standard logger when nil
func NewLogrusLogger(logger *logrus.Logger, config Config) Interface {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogrusLogger{
		Logger:        logger,
		LogLevel:      config.LogLevel,
		SlowThreshold: config.SlowThreshold,
		Parameterized: config.ParameterizedQueries,
	}
}

// LogMode returns a copy logging at level
func (l *LogrusLogger) LogMode(level LogLevel) Interface {
	clone := *l
	clone.LogLevel = level
	return &clone
}

// Info writes msg at info level
func (l *LogrusLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.entry(ctx).WithField("data", data).Info(msg)
	}
}

// Warn writes msg at warn level
func (l *LogrusLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.entry(ctx).WithField("data", data).Warn(msg)
	}
}

// Error writes msg at error level
func (l *LogrusLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.entry(ctx).WithField("data", data).Error(msg)
	}
}

// Trace writes one entry per statement with the event as fields
func (l *LogrusLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	e := NewEvent(ctx, l.LogLevel, l.SlowThreshold, begin, fc, err)
	if e.Severity == Skipped {
		return
	}

	entry := l.entry(ctx).WithFields(logrus.Fields{
		"statement":  e.Statement,
		"sql":        e.SQL,
		"elapsed_ms": e.Millis(),
		"caller":     e.Caller,
	})
	if e.HasRows() {
		entry = entry.WithField("rows", e.Rows)
	}

	switch e.Severity {
	case Failed:
		entry.WithError(e.Err).Error(e.Message())
	case Slow:
		entry.WithField("slow_threshold", l.SlowThreshold.String()).Warn(e.Message())
	default:
		entry.Info(e.Message())
	}
}

// ParamsFilter drops the params of parameterized loggers
func (l *LogrusLogger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	if l.Parameterized {
		return sql, nil
	}
	return sql, params
}

func (l *LogrusLogger) entry(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(l.Logger)
	if ctx == nil {
		return entry
	}
	if name := DriverFromContext(ctx); name != "" {
		entry = entry.WithField("driver", name)
	}
	return entry.WithContext(ctx)
}

// LogrusLevel maps a LogLevel to the logrus level it lets through
func LogrusLevel(level LogLevel) logrus.Level {
	switch level {
	case Silent:
		return logrus.PanicLevel
	case Error:
		return logrus.ErrorLevel
	case Warn:
		return logrus.WarnLevel
	}
	return logrus.InfoLevel
}
