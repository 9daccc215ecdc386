package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger on top of zerolog.
type ZerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog.Logger.
func NewZerologLogger(zl zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{zl: zl}
}

// NewConsoleLogger returns a human-readable logger writing to w (stderr when
// nil) at the given level. An unparsable level falls back to info.
func NewConsoleLogger(w io.Writer, level string) *ZerologLogger {
	if w == nil {
		w = os.Stderr
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return &ZerologLogger{zl: zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger()}
}

// NewJSONLogger returns a logger emitting one JSON object per line.
func NewJSONLogger(w io.Writer, level string) *ZerologLogger {
	if w == nil {
		w = os.Stderr
	}
	return &ZerologLogger{zl: zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()}
}

// ParseLevel maps a textual level onto zerolog's levels.
func ParseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (z *ZerologLogger) Debug(msg string, fields ...Field) { emit(z.zl.Debug(), msg, fields) }
func (z *ZerologLogger) Info(msg string, fields ...Field)  { emit(z.zl.Info(), msg, fields) }
func (z *ZerologLogger) Warn(msg string, fields ...Field)  { emit(z.zl.Warn(), msg, fields) }
func (z *ZerologLogger) Error(msg string, fields ...Field) { emit(z.zl.Error(), msg, fields) }

// With binds fields into a child zerolog context.
func (z *ZerologLogger) With(fields ...Field) Logger {
	ctx := z.zl.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, fieldValue(f.Value))
	}
	return &ZerologLogger{zl: ctx.Logger()}
}

// Zerolog returns the wrapped logger.
func (z *ZerologLogger) Zerolog() zerolog.Logger {
	return z.zl
}

func emit(event *zerolog.Event, msg string, fields []Field) {
	if event == nil {
		return
	}
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			event = event.Str(f.Key, v)
		case int:
			event = event.Int(f.Key, v)
		case int64:
			event = event.Int64(f.Key, v)
		case float64:
			event = event.Float64(f.Key, v)
		case bool:
			event = event.Bool(f.Key, v)
		case time.Duration:
			event = event.Dur(f.Key, v)
		case []string:
			event = event.Strs(f.Key, v)
		case error:
			event = event.AnErr(f.Key, v)
		default:
			event = event.Interface(f.Key, v)
		}
	}
	event.Msg(msg)
}

// fieldValue keeps errors readable when bound through With.
func fieldValue(v any) any {
	if err, ok := v.(error); ok && err != nil {
		return err.Error()
	}
	return v
}
