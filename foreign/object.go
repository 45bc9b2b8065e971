package foreign

import (
	"context"
	"fmt"

	"github.com/wasmglue/wasmglue/wire"
)

// Proxy is implemented by every host type that stands for a guest object.
type Proxy interface {
	ForeignHandle() wire.Handle
}

// Object is the part shared by every proxy: one guest handle, the descriptor
// of its class and the Env it lives in. Host proxy types hold an *Object and
// forward their methods through Call.
type Object struct {
	env    *Env
	desc   *Descriptor
	handle wire.Handle
}

func (o *Object) ForeignHandle() wire.Handle { return o.handle }
func (o *Object) Descriptor() *Descriptor    { return o.desc }
func (o *Object) Env() *Env                  { return o.env }

func (o *Object) String() string {
	return fmt.Sprintf("%s@%d", o.desc.class, uint32(o.handle))
}

// Call invokes op on the guest object. op must be one of the instance
// operations of the object's class; anything else is a programming error and
// panics.
func (o *Object) Call(ctx context.Context, op *Op, args ...any) (wire.Value, error) {
	cls := o.desc.class
	if !cls.declares(op) {
		panic(fmt.Sprintf("foreign: %s does not declare operation %q", cls, op.Name))
	}
	return o.env.dispatch(ctx, cls, op, func(ctx context.Context, vals []wire.Value) (wire.Value, error) {
		return o.env.boundary.Invoke(ctx, o.handle, op.Name, vals)
	}, args)
}

// CallStatic invokes a static operation on the class object of cls.
func CallStatic(ctx context.Context, env *Env, cls *Class, op *Op, args ...any) (wire.Value, error) {
	if !cls.declaresStatic(op) {
		panic(fmt.Sprintf("foreign: %s does not declare static operation %q", cls, op.Name))
	}
	desc := env.Descriptor(ctx, cls)
	return env.dispatch(ctx, cls, op, func(ctx context.Context, vals []wire.Value) (wire.Value, error) {
		return env.boundary.Invoke(ctx, desc.handle, op.Name, vals)
	}, args)
}

// Construct allocates a new guest instance of cls and wraps it with wrap. The
// new object is registered in the identity cache of cls, so later crossings
// returning it yield the same proxy.
func Construct[P any](ctx context.Context, env *Env, cls *Class, wrap func(*Object) P, args ...any) (P, error) {
	var zero P
	if cls.Ctor == nil {
		panic(fmt.Sprintf("foreign: %s has no constructor", cls))
	}
	desc := env.Descriptor(ctx, cls)
	res, err := env.dispatch(ctx, cls, cls.Ctor, func(ctx context.Context, vals []wire.Value) (wire.Value, error) {
		return env.boundary.New(ctx, desc.handle, vals)
	}, args)
	if err != nil {
		return zero, err
	}
	h, ok := res.AsRef()
	if !ok || h.IsNull() {
		return zero, contractErrorf(cls.String()+"."+cls.Ctor.Name, "constructor returned %s", res)
	}
	return wrapHandle(env, desc, h, wrap), nil
}

// Adopt wraps a guest reference returned by some crossing as a proxy of cls.
// A null value yields the zero P; anything other than a reference is a
// contract violation.
func Adopt[P any](ctx context.Context, env *Env, cls *Class, v wire.Value, wrap func(*Object) P) (P, error) {
	h, ok := v.AsRef()
	if !ok {
		var zero P
		return zero, contractErrorf(cls.String(), "expected a reference, got %s", v.Kind())
	}
	return AdoptHandle(ctx, env, cls, h, wrap), nil
}

// AdoptHandle wraps h as a proxy of cls through the identity cache of cls. A
// null handle yields the zero P and never reaches the cache. On a closed Env
// the proxy is not cached and its operations fail with ErrClosed.
func AdoptHandle[P any](ctx context.Context, env *Env, cls *Class, h wire.Handle, wrap func(*Object) P) P {
	if h.IsNull() {
		var zero P
		return zero
	}
	desc, detached := env.descriptor(ctx, cls)
	if detached {
		return wrap(&Object{env: env, desc: desc, handle: h})
	}
	return wrapHandle(env, desc, h, wrap)
}

// AdoptList adopts every element of a guest list. Null elements stay zero.
func AdoptList[P any](ctx context.Context, env *Env, cls *Class, v wire.Value, wrap func(*Object) P) ([]P, error) {
	if v.IsNull() {
		return nil, nil
	}
	list, ok := v.AsList()
	if !ok {
		return nil, contractErrorf(cls.String(), "expected a list, got %s", v.Kind())
	}
	out := make([]P, len(list))
	for i, e := range list {
		p, err := Adopt(ctx, env, cls, e, wrap)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func wrapHandle[P any](env *Env, desc *Descriptor, h wire.Handle, wrap func(*Object) P) P {
	return cacheFor[P](env, desc.class).GetOrCreate(h, func(h wire.Handle) P {
		return wrap(&Object{env: env, desc: desc, handle: h})
	})
}

// Decode adapts a result conversion to the (value, error) pair returned by
// Call, so proxy methods can be written as
//
//	return foreign.Decode(foreign.AsString)(o.obj.Call(ctx, opName))
func Decode[T any](conv func(wire.Value) (T, error)) func(wire.Value, error) (T, error) {
	return func(v wire.Value, err error) (T, error) {
		if err != nil {
			var zero T
			return zero, err
		}
		return conv(v)
	}
}

// Discard drops the result of a void operation.
func Discard(_ wire.Value, err error) error { return err }
