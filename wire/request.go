package wire

import (
	"fmt"
)

// StatusCode is the numeric result of a guest entry point.
type StatusCode uint32

const (
	// StatusOK means the result buffer holds the outcome.
	StatusOK StatusCode = iota
	// StatusRaised means the guest raised; the reason holds "<tag>: <message>".
	StatusRaised
	// StatusBadRequest means the guest could not decode the request.
	StatusBadRequest
)

func (s StatusCode) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusRaised:
		return "RAISED"
	case StatusBadRequest:
		return "BAD_REQUEST"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint32(s))
	}
}

// Status is what a guest reports besides its result value.
type Status struct {
	Code    StatusCode
	Reason  string
	Payload Handle
}

// ResolveRequest asks the guest for the class exported as Name by Module.
type ResolveRequest struct {
	Module string
	Name   string
}

// ClassInfo is the guest answer to a ResolveRequest.
type ClassInfo struct {
	Class Handle
	Ops   []string
}

// NewRequest constructs an instance of Class.
type NewRequest struct {
	Class Handle
	Args  []Value
}

// InvokeRequest calls Op on Target.
type InvokeRequest struct {
	Target Handle
	Op     string
	Args   []Value
}

func (r ResolveRequest) Value() Value {
	return List(String(r.Module), String(r.Name))
}

func (r NewRequest) Value() Value {
	return List(append([]Value{Ref(r.Class)}, r.Args...)...)
}

func (r InvokeRequest) Value() Value {
	return List(append([]Value{Ref(r.Target), String(r.Op)}, r.Args...)...)
}

func (c ClassInfo) Value() Value {
	return Map(
		Pair{Key: "class", Value: Ref(c.Class)},
		Pair{Key: "ops", Value: Strings(c.Ops...)},
	)
}

func DecodeResolveRequest(v Value) (ResolveRequest, error) {
	list, ok := v.AsList()
	if !ok || len(list) != 2 {
		return ResolveRequest{}, fmt.Errorf("%w: resolve request must be [module, name]", ErrMalformed)
	}
	module, ok1 := list[0].AsString()
	name, ok2 := list[1].AsString()
	if !ok1 || !ok2 {
		return ResolveRequest{}, fmt.Errorf("%w: resolve request must hold strings", ErrMalformed)
	}
	return ResolveRequest{Module: module, Name: name}, nil
}

func DecodeNewRequest(v Value) (NewRequest, error) {
	list, ok := v.AsList()
	if !ok || len(list) < 1 || list[0].Kind() != KindRef {
		return NewRequest{}, fmt.Errorf("%w: new request must be [class, args...]", ErrMalformed)
	}
	class, _ := list[0].AsRef()
	return NewRequest{Class: class, Args: list[1:]}, nil
}

func DecodeInvokeRequest(v Value) (InvokeRequest, error) {
	list, ok := v.AsList()
	if !ok || len(list) < 2 || list[0].Kind() != KindRef {
		return InvokeRequest{}, fmt.Errorf("%w: invoke request must be [target, op, args...]", ErrMalformed)
	}
	target, _ := list[0].AsRef()
	op, ok := list[1].AsString()
	if !ok || op == "" {
		return InvokeRequest{}, fmt.Errorf("%w: invoke request op must be a non-empty string", ErrMalformed)
	}
	return InvokeRequest{Target: target, Op: op, Args: list[2:]}, nil
}

func DecodeClassInfo(v Value) (ClassInfo, error) {
	classV, ok := v.Lookup("class")
	if !ok || classV.Kind() != KindRef {
		return ClassInfo{}, fmt.Errorf("%w: class info without class reference", ErrMalformed)
	}
	class, _ := classV.AsRef()
	info := ClassInfo{Class: class}
	opsV, _ := v.Lookup("ops")
	ops, ok := opsV.AsList()
	if !ok {
		return ClassInfo{}, fmt.Errorf("%w: class info ops must be a list", ErrMalformed)
	}
	for _, o := range ops {
		name, ok := o.AsString()
		if !ok {
			return ClassInfo{}, fmt.Errorf("%w: class info op names must be strings", ErrMalformed)
		}
		info.Ops = append(info.Ops, name)
	}
	return info, nil
}
