package runtime

import "context"

// ValueType is a WebAssembly value type.
type ValueType int

const (
	ValueTypeI32 ValueType = iota
	ValueTypeI64
	ValueTypeF32
	ValueTypeF64
)

// Caller is the guest instance that invoked a host function.
type Caller interface {
	Memory() Memory
}

// HostFunc implements a host function over the raw WebAssembly stack: params
// are read from stack and results written back into it.
type HostFunc func(ctx context.Context, caller Caller, stack []uint64)

// HostFunction is one function exported to guests.
type HostFunction struct {
	Name        string
	ParamTypes  []ValueType
	ResultTypes []ValueType
	Func        HostFunc
}

// HostModule is a named set of host functions.
type HostModule struct {
	Name      string
	Functions []HostFunction
}

// NewHostModule returns an empty host module.
func NewHostModule(name string) *HostModule {
	return &HostModule{Name: name}
}

// AddFunction appends a host function.
func (hm *HostModule) AddFunction(name string, params, results []ValueType, fn HostFunc) *HostModule {
	hm.Functions = append(hm.Functions, HostFunction{
		Name:        name,
		ParamTypes:  params,
		ResultTypes: results,
		Func:        fn,
	})
	return hm
}
