package logging

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wasmglue/wasmglue/guest/internal/imports"
)

func sent(t *testing.T) []LogMessage {
	t.Helper()
	var out []LogMessage
	for _, raw := range imports.StubMessages {
		var m LogMessage
		require.NoError(t, json.Unmarshal(raw, &m))
		out = append(out, m)
	}
	return out
}

func TestPackageFunctions(t *testing.T) {
	imports.ResetStubs()

	Debug("d")
	Info("i", map[string]string{"k": "v"})
	Warn("w")
	Error("e")

	msgs := sent(t)
	require.Len(t, msgs, 4)
	assert.Equal(t, int32(slog.LevelDebug), msgs[0].Level)
	assert.Equal(t, "i", msgs[1].Message)
	assert.Equal(t, "v", msgs[1].Fields["k"])
	assert.Equal(t, int32(slog.LevelError), msgs[3].Level)
}

func TestLoggerAttrs(t *testing.T) {
	imports.ResetStubs()

	NewLogger().WarnAttrs("attrs", slog.String("key1", "value1"), slog.Int("key2", 42))

	msgs := sent(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, int32(slog.LevelWarn), msgs[0].Level)
	assert.Equal(t, map[string]string{"key1": "value1", "key2": "42"}, msgs[0].Fields)
}

func TestHostBridgeLogger(t *testing.T) {
	imports.ResetStubs()

	logger := NewHostBridgeLogger().Named("csv").With(zap.String("source", "inline"))
	logger.Error("parse failed", zap.Int("line", 3), zap.Bool("strict", true))

	msgs := sent(t)
	require.Len(t, msgs, 1)
	m := msgs[0]
	assert.Equal(t, int32(slog.LevelError), m.Level)
	assert.Equal(t, "parse failed", m.Message)
	assert.Equal(t, map[string]string{
		"source": "inline",
		"line":   "3",
		"strict": "true",
		"logger": "csv",
	}, m.Fields)
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, LevelDPanic, slogLevel(zap.DPanicLevel))
	assert.Equal(t, LevelFatal, slogLevel(zap.FatalLevel))
	assert.Equal(t, slog.LevelInfo, slogLevel(zap.InfoLevel))
}
