package logging

import (
	"fmt"
	"log/slog"
	"maps"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewHostBridgeLogger returns a zap.Logger whose records are written to the
// host logger. Level filtering is left to the host.
func NewHostBridgeLogger() *zap.Logger {
	return zap.New(&hostBridgeCore{})
}

type hostBridgeCore struct {
	fields map[string]string
}

func (c *hostBridgeCore) Enabled(zapcore.Level) bool { return true }

func (c *hostBridgeCore) With(fields []zapcore.Field) zapcore.Core {
	return &hostBridgeCore{fields: c.merge(fields)}
}

func (c *hostBridgeCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}
	return ce
}

func (c *hostBridgeCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	out := c.merge(fields)
	if entry.LoggerName != "" {
		out["logger"] = entry.LoggerName
	}
	if entry.Caller.Defined {
		out["caller"] = entry.Caller.String()
	}
	sendLogMessage(slogLevel(entry.Level), entry.Message, out)
	return nil
}

func (c *hostBridgeCore) Sync() error { return nil }

// merge renders fields on top of the fields bound with With.
func (c *hostBridgeCore) merge(fields []zapcore.Field) map[string]string {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	out := make(map[string]string, len(c.fields)+len(enc.Fields))
	maps.Copy(out, c.fields)
	for k, v := range enc.Fields {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func slogLevel(l zapcore.Level) slog.Level {
	switch l {
	case zapcore.DebugLevel:
		return slog.LevelDebug
	case zapcore.WarnLevel:
		return slog.LevelWarn
	case zapcore.ErrorLevel:
		return slog.LevelError
	case zapcore.DPanicLevel:
		return LevelDPanic
	case zapcore.PanicLevel:
		return LevelPanic
	case zapcore.FatalLevel:
		return LevelFatal
	default:
		return slog.LevelInfo
	}
}
