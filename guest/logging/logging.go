// Package logging sends guest log records to the host logger.
package logging

import (
	"encoding/json"
	"log/slog"

	"github.com/wasmglue/wasmglue/guest/internal/imports"
)

// Levels above slog.LevelError carry zap's panic levels to the host.
const (
	LevelDPanic slog.Level = slog.LevelError + 1
	LevelPanic  slog.Level = slog.LevelError + 2
	LevelFatal  slog.Level = slog.LevelError + 3
)

// LogMessage is the record sent through the log_message host function.
type LogMessage struct {
	Level   int32             `json:"level"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func sendLogMessage(level slog.Level, message string, fields map[string]string) {
	b, err := json.Marshal(LogMessage{Level: int32(level), Message: message, Fields: fields})
	if err != nil {
		// Nowhere to report it.
		return
	}
	imports.LogMessage(b)
}

func firstFields(fields []map[string]string) map[string]string {
	if len(fields) > 0 {
		return fields[0]
	}
	return nil
}

func Debug(message string, fields ...map[string]string) {
	sendLogMessage(slog.LevelDebug, message, firstFields(fields))
}

func Info(message string, fields ...map[string]string) {
	sendLogMessage(slog.LevelInfo, message, firstFields(fields))
}

func Warn(message string, fields ...map[string]string) {
	sendLogMessage(slog.LevelWarn, message, firstFields(fields))
}

func Error(message string, fields ...map[string]string) {
	sendLogMessage(slog.LevelError, message, firstFields(fields))
}

// Logger logs slog attributes to the host.
type Logger struct{}

func NewLogger() *Logger { return &Logger{} }

// LogAttrs logs msg with attrs rendered as strings.
func (l *Logger) LogAttrs(level slog.Level, msg string, attrs ...slog.Attr) {
	var fields map[string]string
	if len(attrs) > 0 {
		fields = make(map[string]string, len(attrs))
		for _, attr := range attrs {
			fields[attr.Key] = attr.Value.String()
		}
	}
	sendLogMessage(level, msg, fields)
}

func (l *Logger) DebugAttrs(msg string, attrs ...slog.Attr) {
	l.LogAttrs(slog.LevelDebug, msg, attrs...)
}

func (l *Logger) InfoAttrs(msg string, attrs ...slog.Attr) {
	l.LogAttrs(slog.LevelInfo, msg, attrs...)
}

func (l *Logger) WarnAttrs(msg string, attrs ...slog.Attr) {
	l.LogAttrs(slog.LevelWarn, msg, attrs...)
}

func (l *Logger) ErrorAttrs(msg string, attrs ...slog.Attr) {
	l.LogAttrs(slog.LevelError, msg, attrs...)
}
