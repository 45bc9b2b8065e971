package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRuntime struct{ cfg Config }

func (s *stubRuntime) Compile(context.Context, []byte) (CompiledModule, error) {
	return nil, errors.New("not implemented")
}

func (s *stubRuntime) InstantiateWithHost(context.Context, CompiledModule, *HostModule) (ModuleInstance, Context, error) {
	return nil, nil, errors.New("not implemented")
}

func (s *stubRuntime) Close(context.Context) error { return nil }

func TestRegistry(t *testing.T) {
	Register("stub", func(cfg Config) (Runtime, error) { return &stubRuntime{cfg: cfg}, nil })

	rt, err := New(Config{Type: "stub"})
	require.NoError(t, err)
	assert.Equal(t, ModeInterpreter, rt.(*stubRuntime).cfg.Mode)
	assert.Contains(t, List(), "stub")

	assert.Panics(t, func() {
		Register("stub", func(Config) (Runtime, error) { return nil, nil })
	})

	_, err = New(Config{Type: "missing"})
	assert.ErrorIs(t, err, ErrRuntimeNotFound)

	_, err = New(Config{Type: "stub", Mode: "jit"})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestHostModule(t *testing.T) {
	hm := NewHostModule("wasmglue.dev/host").
		AddFunction("a", []ValueType{ValueTypeI32}, nil, func(context.Context, Caller, []uint64) {}).
		AddFunction("b", nil, []ValueType{ValueTypeI64}, func(context.Context, Caller, []uint64) {})

	require.Len(t, hm.Functions, 2)
	assert.Equal(t, "b", hm.Functions[1].Name)
	assert.Equal(t, []ValueType{ValueTypeI64}, hm.Functions[1].ResultTypes)
}
