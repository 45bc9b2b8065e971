package foreign

import (
	"math"

	"github.com/wasmglue/wasmglue/wire"
)

// ShapeKind classifies the values an operation accepts or returns.
type ShapeKind uint8

const (
	KindVoid ShapeKind = iota
	KindAny
	KindBool
	KindInt32
	KindInt64
	KindFloat
	KindString
	KindList
	KindMap
	KindObject
)

// Shape describes one argument or result of an operation.
type Shape struct {
	Kind     ShapeKind
	Elem     *Shape
	Nullable bool
}

var (
	Void   = Shape{Kind: KindVoid}
	Any    = Shape{Kind: KindAny}
	Bool   = Shape{Kind: KindBool}
	Int32  = Shape{Kind: KindInt32}
	Int64  = Shape{Kind: KindInt64}
	Float  = Shape{Kind: KindFloat}
	String = Shape{Kind: KindString}
	Ref    = Shape{Kind: KindObject}
)

// ListOf is a list whose elements all have shape elem.
func ListOf(elem Shape) Shape { return Shape{Kind: KindList, Elem: &elem} }

// MapOf is a string-keyed ordered map whose values have shape elem.
func MapOf(elem Shape) Shape { return Shape{Kind: KindMap, Elem: &elem} }

// OrNull additionally accepts null.
func (s Shape) OrNull() Shape {
	s.Nullable = true
	return s
}

// accepts reports whether v conforms to s.
func (s Shape) accepts(v wire.Value) bool {
	if s.Kind == KindVoid || s.Kind == KindAny {
		return true
	}
	if v.IsNull() {
		return s.Nullable
	}
	switch s.Kind {
	case KindBool:
		return v.Kind() == wire.KindBool
	case KindInt32:
		i, ok := v.AsInt()
		return ok && i >= math.MinInt32 && i <= math.MaxInt32
	case KindInt64:
		return v.Kind() == wire.KindInt
	case KindFloat:
		return v.Kind() == wire.KindDouble
	case KindString:
		return v.Kind() == wire.KindString
	case KindObject:
		return v.Kind() == wire.KindRef
	case KindList:
		list, ok := v.AsList()
		if !ok {
			return false
		}
		for _, e := range list {
			if !s.Elem.accepts(e) {
				return false
			}
		}
		return true
	case KindMap:
		pairs, ok := v.AsMap()
		if !ok {
			return false
		}
		for _, p := range pairs {
			if !s.Elem.accepts(p.Value) {
				return false
			}
		}
		return true
	}
	return false
}

func (s Shape) String() string {
	var name string
	switch s.Kind {
	case KindVoid:
		name = "void"
	case KindAny:
		name = "any"
	case KindBool:
		name = "bool"
	case KindInt32:
		name = "int32"
	case KindInt64:
		name = "int64"
	case KindFloat:
		name = "float"
	case KindString:
		name = "string"
	case KindObject:
		name = "object"
	case KindList:
		name = "list<" + s.Elem.String() + ">"
	case KindMap:
		name = "map<string, " + s.Elem.String() + ">"
	}
	if s.Nullable {
		name += "?"
	}
	return name
}

// Op is one guest operation with its declared signature.
type Op struct {
	Name   string
	Args   []Shape
	Result Shape
	// Variadic repeats the last argument shape.
	Variadic bool
	// IO operations report every failure as ErrIO.
	IO bool
}

// NewOp declares an operation.
func NewOp(name string, result Shape, args ...Shape) *Op {
	return &Op{Name: name, Args: args, Result: result}
}

// WithVariadic marks the last argument as repeatable.
func (o *Op) WithVariadic() *Op {
	o.Variadic = true
	return o
}

// AsIO marks a resource operation.
func (o *Op) AsIO() *Op {
	o.IO = true
	return o
}

// checkArgs reports the index of the first non-conforming argument, or -1.
func (o *Op) checkArgs(args []wire.Value) (int, bool) {
	n := len(o.Args)
	if o.Variadic {
		if len(args) < n-1 {
			return len(args), false
		}
	} else if len(args) != n {
		return len(args), false
	}
	for i, a := range args {
		shape := o.Args[min(i, n-1)]
		if !shape.accepts(a) {
			return i, false
		}
	}
	return -1, true
}

// Class is the host declaration of a guest class: where to find it and which
// operations the host calls on it.
type Class struct {
	Module string
	Name   string
	// Ctor describes constructor arguments; nil means the class is not
	// constructed from the host.
	Ctor *Op
	// Ops are called on instances.
	Ops []*Op
	// Static ops are called on the class object itself.
	Static []*Op
}

// String returns "<module>.<name>".
func (c *Class) String() string { return c.Module + "." + c.Name }

func (c *Class) declares(op *Op) bool {
	for _, o := range c.Ops {
		if o == op {
			return true
		}
	}
	return false
}

func (c *Class) declaresStatic(op *Op) bool {
	for _, o := range c.Static {
		if o == op {
			return true
		}
	}
	return false
}
