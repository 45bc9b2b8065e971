// Package runtime abstracts the WebAssembly engine that runs guest modules.
package runtime

import "context"

// Runtime is a WebAssembly engine.
type Runtime interface {
	// Compile compiles a guest binary. The binary must export memory.
	Compile(ctx context.Context, binary []byte) (CompiledModule, error)
	// InstantiateWithHost instantiates module after the host functions and
	// any engine specific system interface it needs.
	InstantiateWithHost(ctx context.Context, module CompiledModule, host *HostModule) (ModuleInstance, Context, error)
	Close(ctx context.Context) error
}

type CompiledModule interface {
	// ExportedFunctions lists the names of the functions the module exports.
	ExportedFunctions() []string
	Close(ctx context.Context) error
}

type ModuleInstance interface {
	// Function returns an exported function, or nil.
	Function(name string) FunctionInstance
	// Memory returns the exported memory, or nil.
	Memory() Memory
	Close(ctx context.Context) error
}

type FunctionInstance interface {
	Call(ctx context.Context, params ...uint64) ([]uint64, error)
}

// Memory is the linear memory of an instance.
type Memory interface {
	Read(offset uint32, size uint32) ([]byte, bool)
	Write(offset uint32, data []byte) bool
}

// Context holds engine specific state of one instance, such as its WASI
// system.
type Context interface {
	// WithRuntimeContext returns ctx carrying what the engine needs when the
	// guest is called.
	WithRuntimeContext(ctx context.Context) context.Context
	Close(ctx context.Context) error
}
