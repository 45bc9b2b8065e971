// Package wire defines the values that cross the host/guest boundary and
// their binary encoding.
package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// Handle is the guest object-table slot of a foreign value. Two handles are
// equal exactly when they name the same guest object.
type Handle uint32

// NullHandle never names an object.
const NullHandle Handle = 0

// IsNull reports whether h names no object.
func (h Handle) IsNull() bool { return h == NullHandle }

func (h Handle) String() string {
	if h.IsNull() {
		return "handle(null)"
	}
	return "handle(" + strconv.FormatUint(uint64(h), 10) + ")"
}

// Kind is the type tag of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDouble
	KindString
	KindList
	KindMap
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindRef:
		return "ref"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Pair is one entry of a map Value. Maps keep their pairs in insertion order.
type Pair struct {
	Key   string
	Value Value
}

// Value is an immutable boundary value. The zero Value is null.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	list  []Value
	pairs []Pair
	ref   Handle
}

func Null() Value             { return Value{} }
func Bool(b bool) Value       { return Value{kind: KindBool, b: b} }
func Int(i int64) Value       { return Value{kind: KindInt, i: i} }
func Double(f float64) Value  { return Value{kind: KindDouble, f: f} }
func String(s string) Value   { return Value{kind: KindString, s: s} }
func List(vs ...Value) Value  { return Value{kind: KindList, list: vs} }
func Map(pairs ...Pair) Value { return Value{kind: KindMap, pairs: pairs} }
func Strings(ss ...string) Value {
	vs := make([]Value, len(ss))
	for i, s := range ss {
		vs[i] = String(s)
	}
	return List(vs...)
}

// Ref returns a reference to a guest object. A null handle yields the null
// Value so that a reference is never built over nothing.
func Ref(h Handle) Value {
	if h.IsNull() {
		return Null()
	}
	return Value{kind: KindRef, ref: h}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool)      { return v.b, v.kind == KindBool }
func (v Value) AsInt() (int64, bool)      { return v.i, v.kind == KindInt }
func (v Value) AsDouble() (float64, bool) { return v.f, v.kind == KindDouble }
func (v Value) AsString() (string, bool)  { return v.s, v.kind == KindString }
func (v Value) AsList() ([]Value, bool)   { return v.list, v.kind == KindList }
func (v Value) AsMap() ([]Pair, bool)     { return v.pairs, v.kind == KindMap }

// AsRef returns the handle of a reference. A null Value yields NullHandle and
// ok=true, since null is a legal reference result.
func (v Value) AsRef() (Handle, bool) {
	switch v.kind {
	case KindRef:
		return v.ref, true
	case KindNull:
		return NullHandle, true
	default:
		return NullHandle, false
	}
}

// Lookup finds key in a map Value.
func (v Value) Lookup(key string) (Value, bool) {
	for _, p := range v.pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return Value{}, false
}

// Equal reports deep equality, including map order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindDouble:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindRef:
		return v.ref == o.ref
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.pairs) != len(o.pairs) {
			return false
		}
		for i := range v.pairs {
			if v.pairs[i].Key != o.pairs[i].Key || !v.pairs[i].Value.Equal(o.pairs[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) String() string {
	var sb strings.Builder
	v.format(&sb)
	return sb.String()
}

func (v Value) format(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindDouble:
		sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		sb.WriteString(strconv.Quote(v.s))
	case KindRef:
		sb.WriteString(v.ref.String())
	case KindList:
		sb.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.format(sb)
		}
		sb.WriteByte(']')
	case KindMap:
		sb.WriteByte('{')
		for i, p := range v.pairs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Quote(p.Key))
			sb.WriteString(": ")
			p.Value.format(sb)
		}
		sb.WriteByte('}')
	}
}
