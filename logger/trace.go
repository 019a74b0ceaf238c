package logger

import (
	"context"
	"strings"
	"time"

	"github.com/go-entity/entity/utils"
)

type driverKey struct{}

// WithDriver tags ctx with the name of the driver running the traced statements.
func WithDriver(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, driverKey{}, name)
}

// DriverFromContext returns the driver name stored by WithDriver.
func DriverFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	name, _ := ctx.Value(driverKey{}).(string)
	return name
}

// Severity is how a traced statement gets reported.
type Severity int

const (
	// Skipped statements are not written
	Skipped Severity = iota
	// Executed statements ran normally
	Executed
	// Slow statements ran longer than the slow threshold
	Slow
	// Failed statements returned an error
	Failed
)

// Event is a statement handed to Trace, resolved for writing.
type Event struct {
	Severity  Severity
	Driver    string
	Statement string
	SQL       string
	Rows      int64
	Elapsed   time.Duration
	Caller    string
	Err       error
}

// Millis is the elapsed time in fractional milliseconds.
func (e Event) Millis() float64 {
	return float64(e.Elapsed.Nanoseconds()) / 1e6
}

// HasRows reports whether the driver reported a row count. -1 means unknown.
func (e Event) HasRows() bool {
	return e.Rows != -1
}

// Message is the log line used by the structured adapters.
func (e Event) Message() string {
	switch e.Severity {
	case Slow:
		return "slow statement"
	case Failed:
		return "statement failed"
	}
	return "statement executed"
}

// NewEvent classifies a statement against level and slow. The sql callback only
// runs when the statement is going to be written.
func NewEvent(ctx context.Context, level LogLevel, slow time.Duration, begin time.Time, fc func() (string, int64), err error) Event {
	e := Event{Elapsed: time.Since(begin), Err: err, Rows: -1}

	switch {
	case level <= Silent:
	case err != nil && level >= Error:
		e.Severity = Failed
	case slow != 0 && e.Elapsed > slow && level >= Warn:
		e.Severity = Slow
	case level >= Info:
		e.Severity = Executed
	}
	if e.Severity == Skipped {
		return e
	}

	e.SQL, e.Rows = fc()
	e.Statement = statementKind(e.SQL)
	e.Driver = DriverFromContext(ctx)
	e.Caller = utils.FileWithLineNum()
	return e
}

func statementKind(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
