package log

import (
	"bytes"
	"strconv"
	"time"
)

// LogEvent is a single in-flight log entry built up through chained field
// calls and finalized by Msg. Events are pooled by the owning logger; after
// Msg returns the event must not be touched again.
//
// All field methods are nil-receiver safe so that disabled levels cost only
// the method calls themselves:
//
//	log.Debug().Uint32("connSeq", seq).Msg("reconnect scheduled")
type LogEvent struct {
	buf    bytes.Buffer
	level  Level
	logger Logger
	fields int
}

func newEvent(logger Logger) *LogEvent {
	return &LogEvent{logger: logger}
}

// Reset clears the event for reuse from the pool.
func (e *LogEvent) Reset() {
	e.buf.Reset()
	e.fields = 0
}

// Level returns the severity this event was created with.
func (e *LogEvent) Level() Level {
	if e == nil {
		return DebugLevel
	}
	return e.level
}

func (e *LogEvent) appendKey(key string) {
	if e.fields > 0 {
		e.buf.WriteByte(' ')
	}
	e.fields++
	e.buf.WriteString(key)
	e.buf.WriteByte('=')
}

// Str appends a string field.
func (e *LogEvent) Str(key, val string) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(val)
	return e
}

// Int appends an int field.
func (e *LogEvent) Int(key string, val int) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(strconv.Itoa(val))
	return e
}

// Int64 appends an int64 field.
func (e *LogEvent) Int64(key string, val int64) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(strconv.FormatInt(val, 10))
	return e
}

// Uint32 appends a uint32 field.
func (e *LogEvent) Uint32(key string, val uint32) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(strconv.FormatUint(uint64(val), 10))
	return e
}

// Uint64 appends a uint64 field.
func (e *LogEvent) Uint64(key string, val uint64) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(strconv.FormatUint(val, 10))
	return e
}

// Bool appends a bool field.
func (e *LogEvent) Bool(key string, val bool) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(strconv.FormatBool(val))
	return e
}

// Dur appends a duration field in its default string form.
func (e *LogEvent) Dur(key string, val time.Duration) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(val.String())
	return e
}

// Time appends a timestamp field in RFC3339 format with milliseconds.
func (e *LogEvent) Time(key string, val *time.Time) *LogEvent {
	if e == nil {
		return e
	}
	e.appendKey(key)
	e.buf.WriteString(val.Format("2006-01-02T15:04:05.000Z07:00"))
	return e
}

// Err appends an error field. A nil error is skipped entirely.
func (e *LogEvent) Err(err error) *LogEvent {
	if e == nil || err == nil {
		return e
	}
	e.appendKey("error")
	e.buf.WriteString(err.Error())
	return e
}

// Msg finalizes the event with a message and hands it to the logger's
// appenders. Msg must be called exactly once per event.
func (e *LogEvent) Msg(msg string) {
	if e == nil {
		return
	}
	e.appendKey("msg")
	e.buf.WriteString(msg)
	e.buf.WriteByte('\n')
	e.logger.OnEventEnd(e)
}
