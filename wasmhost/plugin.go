// Package wasmhost loads a guest module into a WebAssembly engine and serves
// foreign.Boundary crossings through the wasmglue guest ABI.
package wasmhost

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wasmglue/wasmglue/foreign"
	"github.com/wasmglue/wasmglue/runtime"
	_ "github.com/wasmglue/wasmglue/runtime/wazero" // Register Wazero runtime
	"github.com/wasmglue/wasmglue/wire"
)

const (
	// Guest functions
	memoryAllocateFunction = "wasmglue_memory_allocate"
	resolveFunction        = "wasmglue_resolve"
	newFunction            = "wasmglue_new"
	invokeFunction         = "wasmglue_invoke"
)

var requiredGuestFunctions = []string{
	memoryAllocateFunction,
	resolveFunction,
	newFunction,
	invokeFunction,
}

// Plugin is an instantiated guest module. It implements foreign.Boundary.
type Plugin struct {
	logger *zap.Logger

	runtime        runtime.Runtime
	runtimeContext runtime.Context
	module         runtime.ModuleInstance
	functions      map[string]runtime.FunctionInstance

	guestConfigJSON []byte

	mu     sync.Mutex
	closed bool
}

var _ foreign.Boundary = (*Plugin)(nil)

// NewPlugin compiles and instantiates the guest module named by cfg. A nil
// logger drops guest log records.
func NewPlugin(ctx context.Context, cfg *Config, logger *zap.Logger) (*Plugin, error) {
	cfg.Default()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	binary, err := os.ReadFile(cfg.Path)
	if err != nil {
		return nil, err
	}

	guestConfigJSON, err := json.Marshal(cfg.GuestConfig)
	if err != nil {
		return nil, fmt.Errorf("wasm: error marshalling guest config: %w", err)
	}

	rt, err := runtime.New(cfg.Runtime)
	if err != nil {
		return nil, fmt.Errorf("wasm: error creating runtime: %w", err)
	}
	p := &Plugin{
		logger:          logger,
		runtime:         rt,
		guestConfigJSON: guestConfigJSON,
		functions:       make(map[string]runtime.FunctionInstance, len(requiredGuestFunctions)),
	}

	if err := p.instantiate(ctx, binary); err != nil {
		return nil, multierr.Append(err, p.shutdown(ctx))
	}
	logger.Debug("guest module loaded", zap.String("path", cfg.Path), zap.String("runtime", cfg.Runtime.Type))
	return p, nil
}

func (p *Plugin) instantiate(ctx context.Context, binary []byte) error {
	compiled, err := p.runtime.Compile(ctx, binary)
	if err != nil {
		return fmt.Errorf("wasm: error compiling module: %w", err)
	}

	if detectABIVersion(compiled) != ABIV1 {
		return fmt.Errorf("wasm: %s is not exported: %w", abiVersionV1MarkerExport, ErrABIVersionMarkerNotExported)
	}

	// Guest start functions may already log or read their configuration.
	ctx = withStack(ctx, p.newStack())
	module, runtimeContext, err := p.runtime.InstantiateWithHost(ctx, compiled, newHostModule())
	if err != nil {
		return fmt.Errorf("wasm: error instantiating module: %w", err)
	}
	p.module = module
	p.runtimeContext = runtimeContext

	for _, name := range requiredGuestFunctions {
		fn := module.Function(name)
		if fn == nil {
			return fmt.Errorf("wasm: %s is not exported: %w", name, ErrRequiredFunctionNotExported)
		}
		p.functions[name] = fn
	}
	return nil
}

func (p *Plugin) newStack() *Stack {
	return &Stack{GuestConfigJSON: p.guestConfigJSON, Logger: p.logger.Named("guest")}
}

func (p *Plugin) Resolve(ctx context.Context, module, name string) (wire.Value, error) {
	return p.call(ctx, resolveFunction, wire.ResolveRequest{Module: module, Name: name}.Value())
}

func (p *Plugin) New(ctx context.Context, class wire.Handle, args []wire.Value) (wire.Value, error) {
	return p.call(ctx, newFunction, wire.NewRequest{Class: class, Args: args}.Value())
}

func (p *Plugin) Invoke(ctx context.Context, target wire.Handle, op string, args []wire.Value) (wire.Value, error) {
	return p.call(ctx, invokeFunction, wire.InvokeRequest{Target: target, Op: op, Args: args}.Value())
}

// call writes req into guest memory, runs the entry point and maps its
// status: RAISED becomes a *foreign.Signal, anything else but OK an error.
func (p *Plugin) call(ctx context.Context, functionName string, req wire.Value) (wire.Value, error) {
	raw, err := wire.Marshal(req)
	if err != nil {
		return wire.Null(), fmt.Errorf("wasm: encoding %s request: %w", functionName, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return wire.Null(), foreign.ErrClosed
	}

	stack := p.newStack()
	ctx = p.runtimeContext.WithRuntimeContext(withStack(ctx, stack))

	ptr, err := p.writeRequest(ctx, raw)
	if err != nil {
		return wire.Null(), err
	}
	res, err := p.functions[functionName].Call(ctx, uint64(ptr), uint64(len(raw)))
	if err != nil {
		return wire.Null(), fmt.Errorf("wasm: %s: %w", functionName, err)
	}
	if len(res) == 0 {
		return wire.Null(), fmt.Errorf("wasm: %s returned no status: %w", functionName, ErrGuestRejected)
	}

	switch code := wire.StatusCode(uint32(res[0])); code {
	case wire.StatusOK:
		return wire.Unmarshal(stack.Result)
	case wire.StatusRaised:
		return wire.Null(), &foreign.Signal{Reason: stack.StatusReason, Payload: stack.StatusPayload}
	default:
		p.logger.Warn("guest rejected request",
			zap.String("function", functionName),
			zap.Stringer("status", code),
			zap.String("reason", stack.StatusReason))
		return wire.Null(), fmt.Errorf("wasm: %s returned %s: %s: %w", functionName, code, stack.StatusReason, ErrGuestRejected)
	}
}

// writeRequest copies raw into a buffer allocated by the guest. The guest
// takes ownership of the buffer when the entry point runs.
func (p *Plugin) writeRequest(ctx context.Context, raw []byte) (uint32, error) {
	res, err := p.functions[memoryAllocateFunction].Call(ctx, uint64(len(raw)))
	if err != nil {
		return 0, fmt.Errorf("wasm: %s: %w", memoryAllocateFunction, err)
	}
	if len(res) == 0 || uint32(res[0]) == 0 {
		return 0, fmt.Errorf("wasm: %s could not allocate %d bytes", memoryAllocateFunction, len(raw))
	}
	ptr := uint32(res[0])
	memory := p.module.Memory()
	if memory == nil || !memory.Write(ptr, raw) {
		return 0, fmt.Errorf("wasm: request of %d bytes does not fit at %#x", len(raw), ptr)
	}
	return ptr, nil
}

// Close tears the guest down. Handles are invalid afterwards. Close is
// idempotent.
func (p *Plugin) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.shutdown(ctx)
}

func (p *Plugin) shutdown(ctx context.Context) error {
	var err error
	if p.module != nil {
		err = multierr.Append(err, p.module.Close(ctx))
	}
	if p.runtimeContext != nil {
		err = multierr.Append(err, p.runtimeContext.Close(ctx))
	}
	if p.runtime != nil {
		err = multierr.Append(err, p.runtime.Close(ctx))
	}
	if err != nil {
		return fmt.Errorf("wasm: error shutting down: %w", err)
	}
	return nil
}
