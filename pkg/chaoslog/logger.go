// Package chaoslog implements the structured, line-delimited JSON logger
// used across failure-lambda. Every record shares a fixed envelope —
// source, level, action — plus whatever fields are specific to that
// action, mirroring the JSON log shape emitted by the original
// TypeScript/Rust implementations of this tool.
package chaoslog

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Source is the fixed "source" envelope field stamped on every record.
const Source = "failure-lambda"

// Action names the kind of event a log record describes.
type Action string

const (
	ActionConfig  Action = "config"
	ActionInject  Action = "inject"
	ActionBlock   Action = "block"
	ActionDryRun  Action = "dryrun"
	ActionError   Action = "error"
	ActionClear   Action = "clear"
	ActionStartup Action = "startup"
)

// Logger emits one JSON object per line to stdout (info/warn) or stderr
// (error), each carrying the fixed envelope fields above.
type Logger struct {
	core *zap.Logger
}

var (
	defaultOnce sync.Once
	defaultLog  *Logger
)

// Default returns the process-wide logger, constructing it on first use.
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLog = New(os.Stdout, os.Stderr)
	})
	return defaultLog
}

// New builds a Logger writing info/warn records to infoW and error records
// to errW. Both streams use the same compact JSON encoding.
func New(infoW, errW *os.File) *Logger {
	enc := zapcore.NewJSONEncoder(encoderConfig())

	infoLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l < zapcore.ErrorLevel })
	errLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= zapcore.ErrorLevel })

	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.AddSync(infoW), infoLevel),
		zapcore.NewCore(enc, zapcore.AddSync(errW), errLevel),
	)
	return &Logger{core: zap.New(core)}
}

// NewDiscard returns a Logger that drops every record, for tests that
// only care about behavior, not log output.
func NewDiscard() *Logger {
	enc := zapcore.NewJSONEncoder(encoderConfig())
	core := zapcore.NewCore(enc, zapcore.AddSync(io.Discard), zap.DebugLevel)
	return &Logger{core: zap.New(core)}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.LevelKey = "level"
	cfg.MessageKey = "message"
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}

// With returns a Logger that stamps every subsequent record with the
// given fields in addition to the fixed envelope, without mutating the
// receiver. Used to scope a logger to a single invocation's correlation
// ID for the duration of that invocation.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{core: l.core.With(fields...)}
}

func (l *Logger) fields(action Action, extra ...zap.Field) []zap.Field {
	f := make([]zap.Field, 0, len(extra)+2)
	f = append(f, zap.String("source", Source), zap.String("action", string(action)))
	return append(f, extra...)
}

// Info logs an informational record for the given action.
func (l *Logger) Info(action Action, msg string, extra ...zap.Field) {
	l.core.Info(msg, l.fields(action, extra...)...)
}

// Warn logs a warning record for the given action.
func (l *Logger) Warn(action Action, msg string, extra ...zap.Field) {
	l.core.Warn(msg, l.fields(action, extra...)...)
}

// Error logs an error record for the given action: ActionError, or a
// more specific action (e.g. a failed inject attempt).
func (l *Logger) Error(action Action, msg string, extra ...zap.Field) {
	l.core.Error(msg, l.fields(action, extra...)...)
}

// Sync flushes any buffered log entries. Safe to call on process exit;
// errors writing to stdout/stderr on some platforms are expected and
// intentionally ignored, matching zap's own documented guidance.
func (l *Logger) Sync() {
	_ = l.core.Sync()
}
