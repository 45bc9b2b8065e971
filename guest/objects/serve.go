package objects

import (
	"errors"
	"fmt"

	"github.com/wasmglue/wasmglue/wire"
)

// Entry selects one of the guest entry points.
type Entry uint8

const (
	EntryResolve Entry = iota
	EntryNew
	EntryInvoke
)

func (e Entry) String() string {
	switch e {
	case EntryResolve:
		return "resolve"
	case EntryNew:
		return "new"
	case EntryInvoke:
		return "invoke"
	default:
		return fmt.Sprintf("entry(%d)", uint8(e))
	}
}

// Serve decodes an encoded request for entry, runs it and returns the encoded
// result. A raised exception yields StatusRaised with the exception reason and
// payload; an undecodable request yields StatusBadRequest. Panics in guest
// methods are raised as RuntimeError.
func (r *Runtime) Serve(entry Entry, req []byte) (res []byte, status wire.Status) {
	v, err := wire.Unmarshal(req)
	if err != nil {
		return nil, badRequest(err)
	}

	out, err := r.dispatch(entry, v)
	if err != nil {
		if errors.Is(err, wire.ErrMalformed) {
			return nil, badRequest(err)
		}
		return nil, r.raised(err)
	}

	res, err = wire.Marshal(out)
	if err != nil {
		return nil, r.raised(err)
	}
	return res, wire.Status{Code: wire.StatusOK}
}

func badRequest(err error) wire.Status {
	return wire.Status{Code: wire.StatusBadRequest, Reason: err.Error()}
}

func (r *Runtime) raised(err error) wire.Status {
	var exc *Exception
	if !errors.As(err, &exc) {
		exc = Raise(TagRuntimeError, "%v", err)
	}
	return wire.Status{
		Code:    wire.StatusRaised,
		Reason:  exc.Error(),
		Payload: r.intern(exc.PayloadClass, exc.Payload),
	}
}

func (r *Runtime) dispatch(entry Entry, v wire.Value) (out wire.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = wire.Null(), Raise(TagRuntimeError, "panic in %s: %v", entry, p)
		}
	}()

	switch entry {
	case EntryResolve:
		req, err := wire.DecodeResolveRequest(v)
		if err != nil {
			return wire.Null(), err
		}
		return r.resolve(req)
	case EntryNew:
		req, err := wire.DecodeNewRequest(v)
		if err != nil {
			return wire.Null(), err
		}
		return r.construct(req)
	case EntryInvoke:
		req, err := wire.DecodeInvokeRequest(v)
		if err != nil {
			return wire.Null(), err
		}
		return r.invoke(req)
	}
	return wire.Null(), fmt.Errorf("%w: unknown entry %s", wire.ErrMalformed, entry)
}

func (r *Runtime) resolve(req wire.ResolveRequest) (wire.Value, error) {
	r.mu.Lock()
	m, ok := r.modules[req.Module]
	var cls *Class
	if ok {
		cls = m[req.Name]
	}
	r.mu.Unlock()

	if !ok {
		return wire.Null(), Raise("ImportError", "no module named %q", req.Module)
	}
	if cls == nil {
		return wire.Null(), Raise("AttributeError", "module %q has no attribute %q", req.Module, req.Name)
	}
	info := wire.ClassInfo{Class: r.intern(nil, cls), Ops: cls.Ops()}
	return info.Value(), nil
}

func (r *Runtime) classAt(h wire.Handle) (*Class, error) {
	obj, owner, ok := r.Deref(h)
	cls, isClass := obj.(*Class)
	if !ok || !isClass || owner != nil {
		return nil, Raise(TagTypeError, "handle %d is not a class", uint32(h))
	}
	return cls, nil
}

func (r *Runtime) construct(req wire.NewRequest) (wire.Value, error) {
	cls, err := r.classAt(req.Class)
	if err != nil {
		return wire.Null(), err
	}
	if cls.New == nil {
		return wire.Null(), Raise(TagTypeError, "cannot create %q instances", cls.Name)
	}
	obj, err := cls.New(&Call{rt: r, Op: cls.Name, Args: req.Args})
	if err != nil {
		return wire.Null(), err
	}
	return r.Wrap(cls, obj), nil
}

func (r *Runtime) invoke(req wire.InvokeRequest) (wire.Value, error) {
	obj, owner, ok := r.Deref(req.Target)
	if !ok {
		return wire.Null(), Raise(TagValueError, "stale reference %d", uint32(req.Target))
	}

	var (
		m    Method
		self any
		name string
	)
	if cls, isClass := obj.(*Class); isClass && owner == nil {
		m, name = cls.Static[req.Op], cls.Name
	} else if owner != nil {
		m, self, name = owner.Methods[req.Op], obj, owner.Name
	} else {
		name = fmt.Sprintf("%T", obj)
	}
	if m == nil {
		return wire.Null(), Raise("AttributeError", "%q object has no operation %q", name, req.Op)
	}
	return m(&Call{rt: r, Self: self, Op: req.Op, Args: req.Args})
}
