// Package wazero runs guest modules on github.com/tetratelabs/wazero with a
// WASI preview1 system from github.com/stealthrocket/wasi-go.
package wazero

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/stealthrocket/wasi-go"
	wasigo "github.com/stealthrocket/wasi-go/imports"
	"github.com/stealthrocket/wasi-go/imports/wasi_snapshot_preview1"
	"github.com/stealthrocket/wazergo"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wasmglue/wasmglue/runtime"
)

// guestExportMemory is the memory every guest must export.
const guestExportMemory = "memory"

func newWazeroRuntime(cfg runtime.Config) (runtime.Runtime, error) {
	var wrc wazero.RuntimeConfig
	switch cfg.Mode {
	case runtime.ModeInterpreter, "":
		wrc = wazero.NewRuntimeConfigInterpreter()
	case runtime.ModeCompiled:
		wrc = wazero.NewRuntimeConfigCompiler()
	default:
		return nil, fmt.Errorf("wazero: unknown mode %q: %w", cfg.Mode, runtime.ErrInvalidConfiguration)
	}

	return &wazeroRuntime{
		runtime: wazero.NewRuntimeWithConfig(context.Background(), wrc),
		cfg:     cfg,
	}, nil
}

type wazeroRuntime struct {
	runtime wazero.Runtime
	cfg     runtime.Config
}

type wazeroCompiledModule struct {
	module wazero.CompiledModule
}

type wazeroModuleInstance struct {
	instance api.Module
}

type wazeroFunctionInstance struct {
	function api.Function
}

type wazeroMemory struct {
	memory api.Memory
}

// wazeroContext keeps the WASI system of one instance alive.
type wazeroContext struct {
	sys              wasi.System
	wasiP1HostModule *wasi_snapshot_preview1.Module
}

func (r *wazeroRuntime) Compile(ctx context.Context, binary []byte) (runtime.CompiledModule, error) {
	compiled, err := r.runtime.CompileModule(ctx, binary)
	if err != nil {
		return nil, fmt.Errorf("wazero compile error: %v: %w", err, runtime.ErrModuleCompileFailed)
	}

	if _, ok := compiled.ExportedMemories()[guestExportMemory]; !ok {
		_ = compiled.Close(ctx)
		return nil, fmt.Errorf("wasm: guest doesn't export memory[%s]: %w", guestExportMemory, runtime.ErrMemoryExportNotFound)
	}

	return &wazeroCompiledModule{module: compiled}, nil
}

func (r *wazeroRuntime) InstantiateWithHost(ctx context.Context, module runtime.CompiledModule, host *runtime.HostModule) (runtime.ModuleInstance, runtime.Context, error) {
	wazeroModule, ok := module.(*wazeroCompiledModule)
	if !ok {
		return nil, nil, fmt.Errorf("invalid module type for wazero runtime: %w", runtime.ErrInvalidConfiguration)
	}

	ctx, sys, err := wasigo.NewBuilder().
		WithName("wasmglue").
		WithEnv(r.cfg.Env...).
		WithDirs(r.cfg.Dirs...).
		Instantiate(ctx, r.runtime)
	if err != nil {
		return nil, nil, fmt.Errorf("wasi instantiation failed: %w", err)
	}

	// wasi-go binds its host module to the context used at instantiation;
	// later calls into the guest must carry the same module instance.
	wasiP1HostModule, ok := moduleInstanceFor[*wasi_snapshot_preview1.Module](ctx)
	if !ok {
		sys.Close(ctx)
		return nil, nil, fmt.Errorf("failed to retrieve wasi host module instance: %w", runtime.ErrInvalidConfiguration)
	}

	if _, err := r.instantiateHostModule(ctx, host); err != nil {
		sys.Close(ctx)
		return nil, nil, fmt.Errorf("host module instantiation failed: %w", err)
	}

	config := wazero.NewModuleConfig().
		WithStartFunctions("_initialize"). // reactor module
		WithStdout(os.Stdout).
		WithStderr(os.Stderr)

	instance, err := r.runtime.InstantiateModule(ctx, wazeroModule.module, config)
	if err != nil {
		sys.Close(ctx)
		return nil, nil, fmt.Errorf("guest module instantiation failed: %v: %w", err, runtime.ErrModuleInstantiateFailed)
	}

	return &wazeroModuleInstance{instance: instance}, &wazeroContext{
		sys:              sys,
		wasiP1HostModule: wasiP1HostModule,
	}, nil
}

func (r *wazeroRuntime) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

func (r *wazeroRuntime) instantiateHostModule(ctx context.Context, host *runtime.HostModule) (api.Module, error) {
	builder := r.runtime.NewHostModuleBuilder(host.Name)

	for _, fn := range host.Functions {
		if fn.Func == nil {
			return nil, fmt.Errorf("no implementation for host function %s: %w", fn.Name, runtime.ErrHostFunctionNotFound)
		}
		impl := fn.Func
		builder = builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				impl(ctx, caller{mod: mod}, stack)
			}), convertValueTypes(fn.ParamTypes), convertValueTypes(fn.ResultTypes)).
			Export(fn.Name)
	}

	return builder.Instantiate(ctx)
}

// caller exposes the calling instance to host functions.
type caller struct{ mod api.Module }

func (c caller) Memory() runtime.Memory {
	if m := c.mod.Memory(); m != nil {
		return &wazeroMemory{memory: m}
	}
	return nil
}

func (m *wazeroCompiledModule) ExportedFunctions() []string {
	names := make([]string, 0, len(m.module.ExportedFunctions()))
	for name := range m.module.ExportedFunctions() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (m *wazeroCompiledModule) Close(ctx context.Context) error {
	return m.module.Close(ctx)
}

func (m *wazeroModuleInstance) Function(name string) runtime.FunctionInstance {
	fn := m.instance.ExportedFunction(name)
	if fn == nil {
		return nil
	}
	return &wazeroFunctionInstance{function: fn}
}

func (m *wazeroModuleInstance) Memory() runtime.Memory {
	memory := m.instance.Memory()
	if memory == nil {
		return nil
	}
	return &wazeroMemory{memory: memory}
}

func (m *wazeroModuleInstance) Close(ctx context.Context) error {
	return m.instance.Close(ctx)
}

func (f *wazeroFunctionInstance) Call(ctx context.Context, params ...uint64) ([]uint64, error) {
	return f.function.Call(ctx, params...)
}

func (mem *wazeroMemory) Read(offset uint32, size uint32) ([]byte, bool) {
	return mem.memory.Read(offset, size)
}

func (mem *wazeroMemory) Write(offset uint32, data []byte) bool {
	return mem.memory.Write(offset, data)
}

func (c *wazeroContext) Close(ctx context.Context) error {
	return c.sys.Close(ctx)
}

func (c *wazeroContext) WithRuntimeContext(ctx context.Context) context.Context {
	return withModuleInstance(ctx, c.wasiP1HostModule)
}

func convertValueTypes(vts []runtime.ValueType) []api.ValueType {
	out := make([]api.ValueType, len(vts))
	for i, vt := range vts {
		switch vt {
		case runtime.ValueTypeI64:
			out[i] = api.ValueTypeI64
		case runtime.ValueTypeF32:
			out[i] = api.ValueTypeF32
		case runtime.ValueTypeF64:
			out[i] = api.ValueTypeF64
		default:
			out[i] = api.ValueTypeI32
		}
	}
	return out
}

// moduleInstanceFor returns the module instance wasi-go stored in ctx.
func moduleInstanceFor[T wazergo.Module](ctx context.Context) (res T, ok bool) {
	res, ok = ctx.Value((*wazergo.ModuleInstance[T])(nil)).(T)
	return
}

// withModuleInstance returns ctx carrying instance under the key wazergo
// host functions look it up by.
func withModuleInstance[T wazergo.Module](ctx context.Context, instance T) context.Context {
	return context.WithValue(ctx, (*wazergo.ModuleInstance[T])(nil), instance)
}
