package wasmhost

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wasmglue/wasmglue/runtime"
	"github.com/wasmglue/wasmglue/wire"
)

// fakeMemory is a guest linear memory held in a byte slice.
type fakeMemory []byte

func (m fakeMemory) Read(offset, size uint32) ([]byte, bool) {
	if uint64(offset)+uint64(size) > uint64(len(m)) {
		return nil, false
	}
	return m[offset : offset+size], true
}

func (m fakeMemory) Write(offset uint32, data []byte) bool {
	if uint64(offset)+uint64(len(data)) > uint64(len(m)) {
		return false
	}
	copy(m[offset:], data)
	return true
}

type fakeCaller struct{ mem fakeMemory }

func (c fakeCaller) Memory() runtime.Memory { return c.mem }

func newFakeCaller() fakeCaller { return fakeCaller{mem: make(fakeMemory, 4096)} }

func TestLogMessageFn(t *testing.T) {
	tests := []struct {
		name           string
		logMessage     LogMessage
		expectedLevel  zapcore.Level
		expectedFields map[string]string
	}{
		{
			name:           "debug message",
			logMessage:     LogMessage{Level: int32(slog.LevelDebug), Message: "debug message", Fields: map[string]string{"key1": "value1"}},
			expectedLevel:  zapcore.DebugLevel,
			expectedFields: map[string]string{"key1": "value1"},
		},
		{
			name:           "info message",
			logMessage:     LogMessage{Level: int32(slog.LevelInfo), Message: "info message", Fields: map[string]string{"key2": "value2"}},
			expectedLevel:  zapcore.InfoLevel,
			expectedFields: map[string]string{"key2": "value2"},
		},
		{
			name:           "warn message",
			logMessage:     LogMessage{Level: int32(slog.LevelWarn), Message: "warn message"},
			expectedLevel:  zapcore.WarnLevel,
			expectedFields: nil,
		},
		{
			name:           "panic level from the guest",
			logMessage:     LogMessage{Level: int32(slog.LevelError) + 2, Message: "guest panic", Fields: map[string]string{"a": "b", "c": "d"}},
			expectedLevel:  zapcore.ErrorLevel,
			expectedFields: map[string]string{"a": "b", "c": "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, observed := observer.New(zapcore.DebugLevel)
			ctx := withStack(context.Background(), &Stack{Logger: zap.New(core)})

			caller := newFakeCaller()
			logBytes, err := json.Marshal(tt.logMessage)
			require.NoError(t, err)
			require.True(t, caller.mem.Write(0, logBytes))

			logMessageFn(ctx, caller, []uint64{0, uint64(len(logBytes))})

			logs := observed.All()
			require.Len(t, logs, 1)
			assert.Equal(t, tt.expectedLevel, logs[0].Level)
			assert.Equal(t, tt.logMessage.Message, logs[0].Message)
			assert.Len(t, logs[0].Context, len(tt.expectedFields))
			for key, want := range tt.expectedFields {
				assert.Equal(t, want, logs[0].ContextMap()[key], key)
			}
		})
	}
}

func TestLogMessageFnWithInvalidJSON(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	ctx := withStack(context.Background(), &Stack{Logger: zap.New(core)})

	caller := newFakeCaller()
	invalidJSON := []byte(`{"invalid": json}`)
	require.True(t, caller.mem.Write(0, invalidJSON))

	logMessageFn(ctx, caller, []uint64{0, uint64(len(invalidJSON))})

	logs := observed.All()
	require.Len(t, logs, 1)
	assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
	assert.Contains(t, logs[0].Message, "failed to unmarshal log message from guest")
}

func TestLogMessageFnWithoutLogger(t *testing.T) {
	caller := newFakeCaller()
	logBytes, err := json.Marshal(LogMessage{Message: "test message"})
	require.NoError(t, err)
	require.True(t, caller.mem.Write(0, logBytes))

	assert.NotPanics(t, func() {
		logMessageFn(context.Background(), caller, []uint64{0, uint64(len(logBytes))})
	})
}

func TestZapLevelFromSlogLevel(t *testing.T) {
	tests := []struct {
		name      string
		slogLevel int32
		expected  zapcore.Level
	}{
		{"debug level", -4, zapcore.DebugLevel},
		{"info level", 0, zapcore.InfoLevel},
		{"warn level", 4, zapcore.WarnLevel},
		{"error level", 8, zapcore.ErrorLevel},
		{"very high level", 100, zapcore.ErrorLevel},
		{"very low level", -100, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, zapLevelFromSlogLevel(slog.Level(tt.slogLevel)))
		})
	}
}

func TestGetGuestConfigFn(t *testing.T) {
	config := []byte(`{"delimiter":";"}`)
	ctx := withStack(context.Background(), &Stack{GuestConfigJSON: config})

	t.Run("under the limit", func(t *testing.T) {
		caller := newFakeCaller()
		stack := []uint64{128, 64}
		getGuestConfigFn(ctx, caller, stack)

		assert.Equal(t, uint64(len(config)), stack[0])
		assert.Equal(t, config, []byte(caller.mem[128:128+len(config)]))
	})

	t.Run("over the limit reports the size without writing", func(t *testing.T) {
		caller := newFakeCaller()
		stack := []uint64{128, 4}
		getGuestConfigFn(ctx, caller, stack)

		assert.Equal(t, uint64(len(config)), stack[0])
		assert.Equal(t, make([]byte, len(config)), []byte(caller.mem[128:128+len(config)]))
	})

	t.Run("no configuration", func(t *testing.T) {
		stack := []uint64{128, 64}
		getGuestConfigFn(context.Background(), newFakeCaller(), stack)
		assert.Zero(t, stack[0])
	})
}

func TestStatusHostFunctions(t *testing.T) {
	st := &Stack{}
	ctx := withStack(context.Background(), st)
	caller := newFakeCaller()

	require.True(t, caller.mem.Write(16, []byte("result")))
	setResultFn(ctx, caller, []uint64{16, 6})
	// The host keeps its own copy.
	require.True(t, caller.mem.Write(16, []byte("XXXXXX")))
	assert.Equal(t, []byte("result"), st.Result)

	require.True(t, caller.mem.Write(64, []byte("KeyError: x")))
	setStatusReasonFn(ctx, caller, []uint64{64, 11})
	assert.Equal(t, "KeyError: x", st.StatusReason)

	setStatusPayloadFn(ctx, caller, []uint64{12})
	assert.Equal(t, wire.Handle(12), st.StatusPayload)

	assert.PanicsWithValue(t, "out of memory reading result", func() {
		setResultFn(ctx, caller, []uint64{4000, 200})
	})
}

func TestNewHostModule(t *testing.T) {
	hm := newHostModule()
	assert.Equal(t, hostModuleName, hm.Name)

	var names []string
	for _, fn := range hm.Functions {
		names = append(names, fn.Name)
		assert.NotNil(t, fn.Func, fn.Name)
	}
	assert.Equal(t, []string{setResult, setStatusReason, setStatusPayload, getGuestConfig, logMessage}, names)
}
