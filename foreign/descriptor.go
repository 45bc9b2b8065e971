package foreign

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wasmglue/wasmglue/wire"
)

// Descriptor is a resolved guest class. It never changes after resolution and
// is shared by every instance of its class.
type Descriptor struct {
	class  *Class
	handle wire.Handle
	ops    []string
}

func (d *Descriptor) Class() *Class       { return d.class }
func (d *Descriptor) Handle() wire.Handle { return d.handle }
func (d *Descriptor) Module() string      { return d.class.Module }
func (d *Descriptor) Name() string        { return d.class.Name }

// Ops returns the operation names the guest class exports.
func (d *Descriptor) Ops() []string { return slices.Clone(d.ops) }

// Supports reports whether the guest class exports op.
func (d *Descriptor) Supports(op string) bool {
	_, found := slices.BinarySearch(d.ops, op)
	return found
}

// Equal reports whether two descriptors name the same guest class.
func (d *Descriptor) Equal(o *Descriptor) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil {
		return false
	}
	return d.class.Module == o.class.Module &&
		d.class.Name == o.class.Name &&
		d.handle == o.handle &&
		slices.Equal(d.ops, o.ops)
}

// ResolveFunc performs the resolve crossing.
type ResolveFunc func(ctx context.Context, module, name string) (wire.Value, error)

// Registry caches descriptors by (module, name). Safe for concurrent use;
// concurrent first lookups of one key share a single crossing.
type Registry struct {
	resolve ResolveFunc
	logger  *zap.Logger

	mu    sync.RWMutex
	descs map[string]*Descriptor
	group singleflight.Group
}

// NewRegistry returns an empty Registry resolving through fn.
func NewRegistry(fn ResolveFunc, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		resolve: fn,
		logger:  logger,
		descs:   make(map[string]*Descriptor),
	}
}

// Lookup returns the descriptor of cls if it was resolved already.
func (r *Registry) Lookup(cls *Class) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descs[cls.String()]
	return d, ok
}

// Len returns the number of resolved classes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descs)
}

// Resolve returns the descriptor of cls, crossing into the guest only the
// first time. Every failure is a *SetupError.
func (r *Registry) Resolve(ctx context.Context, cls *Class) (*Descriptor, error) {
	if d, ok := r.Lookup(cls); ok {
		return d, nil
	}

	key := cls.String()
	v, err, _ := r.group.Do(key, func() (any, error) {
		if d, ok := r.Lookup(cls); ok {
			return d, nil
		}
		d, err := r.fetch(ctx, cls)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.descs[key] = d
		r.mu.Unlock()
		r.logger.Debug("resolved guest class",
			zap.String("class", key),
			zap.Uint32("handle", uint32(d.handle)),
			zap.Int("ops", len(d.ops)))
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Descriptor), nil
}

func (r *Registry) fetch(ctx context.Context, cls *Class) (*Descriptor, error) {
	setupErr := func(err error) error {
		return &SetupError{Module: cls.Module, Name: cls.Name, Err: err}
	}

	v, err := r.resolve(ctx, cls.Module, cls.Name)
	if err != nil {
		return nil, setupErr(err)
	}
	info, err := wire.DecodeClassInfo(v)
	if err != nil {
		return nil, setupErr(err)
	}
	if info.Class.IsNull() {
		return nil, setupErr(errors.New("guest returned a null class"))
	}

	ops := slices.Clone(info.Ops)
	slices.Sort(ops)
	d := &Descriptor{class: cls, handle: info.Class, ops: slices.Compact(ops)}

	var missing []string
	for _, op := range slices.Concat(cls.Ops, cls.Static) {
		if !d.Supports(op.Name) {
			missing = append(missing, op.Name)
		}
	}
	if len(missing) > 0 {
		return nil, setupErr(fmt.Errorf("guest class does not export %v", missing))
	}
	return d, nil
}
