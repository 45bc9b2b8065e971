package foreign

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wasmglue/wasmglue/wire"
)

// Env is one guest runtime context together with everything the host caches
// about it: resolved class descriptors and the identity caches of every proxy
// type. Crossings made through an Env are serialized.
type Env struct {
	boundary Boundary
	logger   *zap.Logger
	registry *Registry

	// mu serializes crossings and guards closed.
	mu     sync.Mutex
	closed bool

	cachesMu sync.Mutex
	caches   map[*Class]sizedCache
}

// Option configures an Env.
type Option func(*Env)

// WithLogger sets the logger used for resolution and signal diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Env) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEnv wraps b and resolves every class in classes before returning, so
// that a guest module missing any of them fails here with a *SetupError and
// no proxy is ever built against it. On failure b is left open.
func NewEnv(ctx context.Context, b Boundary, classes []*Class, opts ...Option) (*Env, error) {
	e := &Env{
		boundary: b,
		logger:   zap.NewNop(),
		caches:   make(map[*Class]sizedCache),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.registry = NewRegistry(e.resolve, e.logger.Named("registry"))

	for _, cls := range classes {
		if _, err := e.registry.Resolve(ctx, cls); err != nil {
			e.logger.Error("guest class resolution failed", zap.Stringer("class", cls), zap.Error(err))
			return nil, err
		}
	}
	return e, nil
}

func (e *Env) Logger() *zap.Logger { return e.logger }

// Registry returns the descriptor cache of this Env.
func (e *Env) Registry() *Registry { return e.registry }

// Resolve returns the descriptor of cls.
func (e *Env) Resolve(ctx context.Context, cls *Class) (*Descriptor, error) {
	return e.registry.Resolve(ctx, cls)
}

// Descriptor returns the descriptor of cls. A class that cannot be resolved at
// this point means the deployed guest does not match the host, so it panics
// with the *SetupError. After Close, a class that was never resolved gets a
// detached descriptor with no guest handle; every crossing through it fails
// with ErrClosed.
func (e *Env) Descriptor(ctx context.Context, cls *Class) *Descriptor {
	d, _ := e.descriptor(ctx, cls)
	return d
}

func (e *Env) descriptor(ctx context.Context, cls *Class) (d *Descriptor, detached bool) {
	d, err := e.registry.Resolve(ctx, cls)
	if err == nil {
		return d, false
	}
	if errors.Is(err, ErrClosed) {
		return &Descriptor{class: cls}, true
	}
	panic(err)
}

// CachedProxies returns how many host proxies of cls are alive in this Env.
func (e *Env) CachedProxies(cls *Class) int {
	e.cachesMu.Lock()
	defer e.cachesMu.Unlock()
	if c, ok := e.caches[cls]; ok {
		return c.Len()
	}
	return 0
}

// Close drops every cached proxy and closes the boundary. Crossings made
// afterwards fail with ErrClosed.
func (e *Env) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	e.cachesMu.Lock()
	e.caches = make(map[*Class]sizedCache)
	e.cachesMu.Unlock()

	return e.boundary.Close(ctx)
}

func (e *Env) resolve(ctx context.Context, module, name string) (wire.Value, error) {
	return e.cross(ctx, func(ctx context.Context) (wire.Value, error) {
		return e.boundary.Resolve(ctx, module, name)
	})
}

// cross runs one crossing under the Env lock.
func (e *Env) cross(ctx context.Context, fn func(context.Context) (wire.Value, error)) (wire.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return wire.Null(), ErrClosed
	}
	return fn(ctx)
}

// dispatch performs one operation crossing: marshal, check, cross, check,
// translate.
func (e *Env) dispatch(ctx context.Context, cls *Class, op *Op, call func(context.Context, []wire.Value) (wire.Value, error), args []any) (wire.Value, error) {
	name := cls.String() + "." + op.Name

	vals := make([]wire.Value, len(args))
	for i, a := range args {
		v, err := ToForeign(a)
		if err != nil {
			return wire.Null(), contractErrorf(name, "argument %d: %v", i, err)
		}
		vals[i] = v
	}
	if i, ok := op.checkArgs(vals); !ok {
		if i == len(vals) {
			return wire.Null(), contractErrorf(name, "takes %d arguments, got %d", len(op.Args), len(vals))
		}
		return wire.Null(), contractErrorf(name, "argument %d is %s, want %s",
			i, vals[i].Kind(), op.Args[min(i, len(op.Args)-1)])
	}

	res, err := e.cross(ctx, func(ctx context.Context) (wire.Value, error) {
		return call(ctx, vals)
	})
	if err != nil {
		return wire.Null(), e.failure(name, op, err)
	}
	if !op.Result.accepts(res) {
		return wire.Null(), contractErrorf(name, "guest returned %s, want %s", res.Kind(), op.Result)
	}
	return res, nil
}

// failure converts a crossing error into an *Error.
func (e *Env) failure(name string, op *Op, err error) error {
	sig, ok := AsSignal(err)
	if !ok {
		if !errors.Is(err, ErrClosed) {
			e.logger.Warn("crossing failed", zap.String("op", name), zap.Error(err))
		}
		return &Error{Kind: ErrUnclassified, Op: name, Message: err.Error(), Cause: err}
	}

	if _, _, ok := ParseReason(sig.Reason); !ok {
		e.logger.Error("malformed guest signal", zap.String("op", name), zap.String("reason", sig.Reason))
	}
	fe := Translate(sig)
	fe.Op = name
	if op.IO {
		fe.Kind = ErrIO
	}
	e.logger.Debug("guest raised",
		zap.String("op", name),
		zap.String("tag", fe.Tag),
		zap.String("message", fe.Message))
	return fe
}

// cacheFor returns the identity cache of cls, creating it on first use. A class
// is wrapped by exactly one proxy type.
func cacheFor[P any](e *Env, cls *Class) *IdentityCache[P] {
	e.cachesMu.Lock()
	defer e.cachesMu.Unlock()
	if c, ok := e.caches[cls]; ok {
		typed, ok := c.(*IdentityCache[P])
		if !ok {
			panic(fmt.Sprintf("foreign: %s is already wrapped by %T", cls, c))
		}
		return typed
	}
	c := NewIdentityCache[P]()
	e.caches[cls] = c
	return c
}
