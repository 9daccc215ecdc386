package log

import "time"

// Logger is the structured logger handed to hooks.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger that adds fields to every entry.
	With(fields ...Field) Logger
}

// Field is a single key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field             { return Field{Key: key, Value: value} }
func Int(key string, value int) Field            { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field        { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field    { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field          { return Field{Key: key, Value: value} }
func Duration(key string, v time.Duration) Field { return Field{Key: key, Value: v} }
func Strings(key string, value []string) Field   { return Field{Key: key, Value: value} }
func Any(key string, value any) Field            { return Field{Key: key, Value: value} }

// Err attaches err under the "error" key.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}
