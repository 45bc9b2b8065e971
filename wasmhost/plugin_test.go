package wasmhost

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wasmglue/wasmglue/foreign"
	"github.com/wasmglue/wasmglue/runtime"
	"github.com/wasmglue/wasmglue/wire"
)

func newTestPlugin(t *testing.T, module []byte) *Plugin {
	t.Helper()
	p, err := NewPlugin(context.Background(), &Config{Path: writeTempModule(t, module)}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func marshal(t *testing.T, v wire.Value) []byte {
	t.Helper()
	b, err := wire.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestPluginResult(t *testing.T) {
	ctx := context.Background()
	want := wire.List(wire.String("a"), wire.Int(3), wire.Ref(9))
	p := newTestPlugin(t, buildGuestModule(guestBehavior{result: marshal(t, want)}))

	got, err := p.Resolve(ctx, "commons_csv", "CSVFormat")
	require.NoError(t, err)
	assert.True(t, want.Equal(got), "got %s", got)

	got, err = p.New(ctx, 1, []wire.Value{wire.Bool(true)})
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = p.Invoke(ctx, 2, "op", nil)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestPluginNullResult(t *testing.T) {
	p := newTestPlugin(t, buildGuestModule(guestBehavior{}))

	got, err := p.Invoke(context.Background(), 2, "close", nil)
	require.NoError(t, err)
	assert.True(t, got.IsNull())
}

func TestPluginRaised(t *testing.T) {
	p := newTestPlugin(t, buildGuestModule(guestBehavior{
		status:  uint32(wire.StatusRaised),
		reason:  "ValueError: bad width",
		payload: 7,
	}))

	_, err := p.Invoke(context.Background(), 2, "width", nil)
	sig, ok := foreign.AsSignal(err)
	require.True(t, ok, "expected a signal, got %v", err)
	assert.Equal(t, "ValueError: bad width", sig.Reason)
	assert.Equal(t, wire.Handle(7), sig.Payload)

	translated := foreign.Translate(sig)
	assert.ErrorIs(t, translated, foreign.ErrInvalidArgument)
	assert.Equal(t, "bad width", translated.Error())
}

func TestPluginRejected(t *testing.T) {
	tests := []struct {
		name     string
		behavior guestBehavior
		contains string
	}{
		{
			name:     "bad request",
			behavior: guestBehavior{status: uint32(wire.StatusBadRequest), reason: "cannot decode"},
			contains: "BAD_REQUEST: cannot decode",
		},
		{
			name:     "unknown status",
			behavior: guestBehavior{status: 9},
			contains: "UNKNOWN(9)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlugin(t, buildGuestModule(tt.behavior))
			_, err := p.Invoke(context.Background(), 1, "op", nil)
			require.ErrorIs(t, err, ErrGuestRejected)
			assert.Contains(t, err.Error(), tt.contains)
			_, isSignal := foreign.AsSignal(err)
			assert.False(t, isSignal)
		})
	}
}

func TestPluginClose(t *testing.T) {
	ctx := context.Background()
	p := newTestPlugin(t, buildGuestModule(guestBehavior{}))

	require.NoError(t, p.Close(ctx))
	require.NoError(t, p.Close(ctx))

	_, err := p.Resolve(ctx, "m", "C")
	assert.ErrorIs(t, err, foreign.ErrClosed)
}

func TestPluginAsBoundary(t *testing.T) {
	ctx := context.Background()
	info := wire.ClassInfo{Class: 5, Ops: []string{"parse", "print"}}
	p := newTestPlugin(t, buildGuestModule(guestBehavior{result: marshal(t, info.Value())}))

	cls := &foreign.Class{
		Module: "commons_csv",
		Name:   "CSVFormat",
		Ops:    []*foreign.Op{foreign.NewOp("parse", foreign.Ref, foreign.String)},
	}
	env, err := foreign.NewEnv(ctx, p, []*foreign.Class{cls}, foreign.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	desc := env.Descriptor(ctx, cls)
	assert.Equal(t, wire.Handle(5), desc.Handle())
	assert.True(t, desc.Supports("print"))

	require.NoError(t, env.Close(ctx))
	_, err = p.Invoke(ctx, 5, "parse", nil)
	assert.ErrorIs(t, err, foreign.ErrClosed)
}

func TestNewPluginNegative(t *testing.T) {
	ctx := context.Background()

	allExports := []wasmFunctionSpec{
		{name: memoryAllocateFunction, typeIndex: wasmTypeFuncI32ToI32, returnValue: uint32Ptr(guestAllocAddr)},
		{name: resolveFunction, typeIndex: wasmTypeFuncI32I32ToI32, returnValue: uint32Ptr(0)},
		{name: newFunction, typeIndex: wasmTypeFuncI32I32ToI32, returnValue: uint32Ptr(0)},
		{name: invokeFunction, typeIndex: wasmTypeFuncI32I32ToI32, returnValue: uint32Ptr(0)},
	}
	marker := wasmFunctionSpec{name: abiVersionV1MarkerExport, typeIndex: wasmTypeFunc0To0}

	tests := []struct {
		name    string
		cfg     *Config
		wantErr error
	}{
		{
			name:    "missing path",
			cfg:     &Config{},
			wantErr: nil,
		},
		{
			name:    "memory not exported",
			cfg:     &Config{Path: writeTempModule(t, buildTestModule(false, append([]wasmFunctionSpec{marker}, allExports...)))},
			wantErr: runtime.ErrMemoryExportNotFound,
		},
		{
			name:    "abi marker not exported",
			cfg:     &Config{Path: writeTempModule(t, buildTestModule(true, allExports))},
			wantErr: ErrABIVersionMarkerNotExported,
		},
		{
			name:    "abi marker missing from a guest that implements the entry points",
			cfg:     &Config{Path: writeTempModule(t, buildGuestModule(guestBehavior{omitMarker: true}))},
			wantErr: ErrABIVersionMarkerNotExported,
		},
		{
			name:    "entry point not exported",
			cfg:     &Config{Path: writeTempModule(t, buildTestModule(true, append([]wasmFunctionSpec{marker}, allExports[:2]...)))},
			wantErr: ErrRequiredFunctionNotExported,
		},
		{
			name:    "unknown runtime mode",
			cfg:     &Config{Path: "guest.wasm", Runtime: runtime.Config{Mode: "jit"}},
			wantErr: runtime.ErrInvalidConfiguration,
		},
		{
			name:    "not a module",
			cfg:     &Config{Path: writeTempModule(t, []byte("not wasm"))},
			wantErr: runtime.ErrModuleCompileFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPlugin(ctx, tt.cfg, nil)
			require.Error(t, err)
			assert.Nil(t, p)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := NewPlugin(ctx, &Config{Path: t.TempDir() + "/absent.wasm"}, nil)
		assert.Error(t, err)
	})
}

func TestDetectABIVersion(t *testing.T) {
	assert.Equal(t, ABIUnknown, detectABIVersion(nil))
	assert.Equal(t, "v1", ABIV1.String())
	assert.Equal(t, "unknown", ABIUnknown.String())
	assert.Equal(t, "invalid", ABIVersion(9).String())
}
