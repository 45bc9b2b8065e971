package wasmhost

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wasmglue/wasmglue/runtime"
	"github.com/wasmglue/wasmglue/wire"
)

const (
	// hostModuleName is the import module guests link against.
	hostModuleName = "wasmglue.dev/host"

	// Host function exports
	setResult        = "set_result"
	setStatusReason  = "set_status_reason"
	setStatusPayload = "set_status_payload"
	getGuestConfig   = "get_guest_config"
	logMessage       = "log_message"
)

// stackKey is the key used to store the stack in the context
type stackKey struct{}

// Stack holds the data passed between the host and the guest during one
// entry point call.
type Stack struct {
	Result        []byte
	StatusReason  string
	StatusPayload wire.Handle

	// GuestConfigJSON is the guest configuration served by get_guest_config.
	GuestConfigJSON []byte
	// Logger receives guest log records. Nil drops them.
	Logger *zap.Logger
}

func withStack(ctx context.Context, stack *Stack) context.Context {
	return context.WithValue(ctx, stackKey{}, stack)
}

// stackFromContext returns the stack of the current call. Host functions
// invoked outside a call, e.g. from a guest start function, see an empty one.
func stackFromContext(ctx context.Context) *Stack {
	if s, ok := ctx.Value(stackKey{}).(*Stack); ok {
		return s
	}
	return &Stack{}
}

// LogMessage is the JSON record a guest sends through log_message.
type LogMessage struct {
	Level   int32             `json:"level"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func newHostModule() *runtime.HostModule {
	i32 := runtime.ValueTypeI32
	return runtime.NewHostModule(hostModuleName).
		AddFunction(setResult, []runtime.ValueType{i32, i32}, nil, setResultFn).
		AddFunction(setStatusReason, []runtime.ValueType{i32, i32}, nil, setStatusReasonFn).
		AddFunction(setStatusPayload, []runtime.ValueType{i32}, nil, setStatusPayloadFn).
		AddFunction(getGuestConfig, []runtime.ValueType{i32, i32}, []runtime.ValueType{i32}, getGuestConfigFn).
		AddFunction(logMessage, []runtime.ValueType{i32, i32}, nil, logMessageFn)
}

func setResultFn(ctx context.Context, caller runtime.Caller, stack []uint64) {
	buf := uint32(stack[0])
	size := uint32(stack[1])
	stackFromContext(ctx).Result = readBytes(caller.Memory(), buf, size, "result")
}

func setStatusReasonFn(ctx context.Context, caller runtime.Caller, stack []uint64) {
	buf := uint32(stack[0])
	size := uint32(stack[1])
	stackFromContext(ctx).StatusReason = string(readBytes(caller.Memory(), buf, size, "status reason"))
}

func setStatusPayloadFn(ctx context.Context, _ runtime.Caller, stack []uint64) {
	stackFromContext(ctx).StatusPayload = wire.Handle(uint32(stack[0]))
}

func getGuestConfigFn(ctx context.Context, caller runtime.Caller, stack []uint64) {
	buf := uint32(stack[0])
	bufLimit := uint32(stack[1])

	config := stackFromContext(ctx).GuestConfigJSON
	stack[0] = uint64(writeBytesIfUnderLimit(caller.Memory(), config, buf, bufLimit))
}

func logMessageFn(ctx context.Context, caller runtime.Caller, stack []uint64) {
	buf := uint32(stack[0])
	size := uint32(stack[1])

	logger := stackFromContext(ctx).Logger
	if logger == nil {
		return
	}

	var msg LogMessage
	if err := json.Unmarshal(readBytes(caller.Memory(), buf, size, "log message"), &msg); err != nil {
		logger.Error("failed to unmarshal log message from guest", zap.Error(err))
		return
	}

	fields := make([]zap.Field, 0, len(msg.Fields))
	for k, v := range msg.Fields {
		fields = append(fields, zap.String(k, v))
	}
	if ce := logger.Check(zapLevelFromSlogLevel(slog.Level(msg.Level)), msg.Message); ce != nil {
		ce.Write(fields...)
	}
}

// zapLevelFromSlogLevel maps a guest slog level onto zap. Guest levels above
// error never reach zap's panic levels.
func zapLevelFromSlogLevel(level slog.Level) zapcore.Level {
	switch {
	case level < slog.LevelInfo:
		return zapcore.DebugLevel
	case level < slog.LevelWarn:
		return zapcore.InfoLevel
	case level < slog.LevelError:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
