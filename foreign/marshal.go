package foreign

import (
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/wasmglue/wasmglue/wire"
)

// ToForeign converts a host value into a boundary value.
//
// Supported inputs are nil, bool, the integer types, float32/float64, string,
// wire.Value, wire.Handle, any Proxy, slices and arrays of supported values,
// and string-keyed *orderedmap.OrderedMap values. Plain Go maps are rejected
// because their iteration order is unspecified. Strings and map keys that are
// not valid UTF-8 are rejected with ErrContract.
func ToForeign(v any) (wire.Value, error) {
	switch x := v.(type) {
	case nil:
		return wire.Null(), nil
	case wire.Value:
		return x, nil
	case wire.Handle:
		return wire.Ref(x), nil
	case Proxy:
		if isNilPointer(x) {
			return wire.Null(), nil
		}
		return wire.Ref(x.ForeignHandle()), nil
	case bool:
		return wire.Bool(x), nil
	case int:
		return wire.Int(int64(x)), nil
	case int8:
		return wire.Int(int64(x)), nil
	case int16:
		return wire.Int(int64(x)), nil
	case int32:
		return wire.Int(int64(x)), nil
	case int64:
		return wire.Int(x), nil
	case uint8:
		return wire.Int(int64(x)), nil
	case uint16:
		return wire.Int(int64(x)), nil
	case uint32:
		return wire.Int(int64(x)), nil
	case uint:
		return uintToForeign(uint64(x))
	case uint64:
		return uintToForeign(x)
	case float32:
		return wire.Double(float64(x)), nil
	case float64:
		return wire.Double(x), nil
	case string:
		return stringToForeign(x)
	case []string:
		for i, e := range x {
			if !utf8.ValidString(e) {
				return wire.Null(), contractErrorf("", "element %d: string %q is not valid UTF-8", i, e)
			}
		}
		return wire.Strings(x...), nil
	case *orderedmap.OrderedMap[string, any]:
		return orderedToForeign(x)
	case *orderedmap.OrderedMap[string, string]:
		return orderedToForeign(x)
	case *orderedmap.OrderedMap[string, int]:
		return orderedToForeign(x)
	case *orderedmap.OrderedMap[string, int32]:
		return orderedToForeign(x)
	case *orderedmap.OrderedMap[string, int64]:
		return orderedToForeign(x)
	case *orderedmap.OrderedMap[string, wire.Value]:
		return orderedToForeign(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return wire.Null(), nil
		}
		vals := make([]wire.Value, rv.Len())
		for i := range vals {
			e, err := ToForeign(rv.Index(i).Interface())
			if err != nil {
				return wire.Null(), fmt.Errorf("element %d: %w", i, err)
			}
			vals[i] = e
		}
		return wire.List(vals...), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return wire.Null(), nil
		}
	case reflect.Map:
		return wire.Null(), contractErrorf("", "%T has no defined order; use an ordered map", v)
	}
	return wire.Null(), contractErrorf("", "cannot marshal %T", v)
}

// Guest strings are Unicode, so host strings must be valid UTF-8.
func stringToForeign(s string) (wire.Value, error) {
	if !utf8.ValidString(s) {
		return wire.Null(), contractErrorf("", "string %q is not valid UTF-8", s)
	}
	return wire.String(s), nil
}

func uintToForeign(u uint64) (wire.Value, error) {
	if u > math.MaxInt64 {
		return wire.Null(), contractErrorf("", "unsigned value %d overflows int64", u)
	}
	return wire.Int(int64(u)), nil
}

func orderedToForeign[V any](m *orderedmap.OrderedMap[string, V]) (wire.Value, error) {
	if m == nil {
		return wire.Null(), nil
	}
	pairs := make([]wire.Pair, 0, m.Len())
	for p := m.Oldest(); p != nil; p = p.Next() {
		if !utf8.ValidString(p.Key) {
			return wire.Null(), contractErrorf("", "map key %q is not valid UTF-8", p.Key)
		}
		v, err := ToForeign(p.Value)
		if err != nil {
			return wire.Null(), fmt.Errorf("key %q: %w", p.Key, err)
		}
		pairs = append(pairs, wire.Pair{Key: p.Key, Value: v})
	}
	return wire.Map(pairs...), nil
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func mismatch(v wire.Value, want string) error {
	return contractErrorf("", "guest value %s is not %s", v, want)
}

func AsBool(v wire.Value) (bool, error) {
	b, ok := v.AsBool()
	if !ok {
		return false, mismatch(v, "a bool")
	}
	return b, nil
}

// AsInt32 converts a guest integer that must fit in 32 bits. Out of range
// values are an error, never truncated.
func AsInt32(v wire.Value) (int32, error) {
	i, ok := v.AsInt()
	if !ok {
		return 0, mismatch(v, "an int")
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0, contractErrorf("", "guest integer %d overflows int32", i)
	}
	return int32(i), nil
}

func AsInt64(v wire.Value) (int64, error) {
	i, ok := v.AsInt()
	if !ok {
		return 0, mismatch(v, "an int")
	}
	return i, nil
}

// AsInt converts a guest integer into an int, which is at least 32 bits wide.
func AsInt(v wire.Value) (int, error) {
	i, err := AsInt64(v)
	if err != nil {
		return 0, err
	}
	if int64(int(i)) != i {
		return 0, contractErrorf("", "guest integer %d overflows int", i)
	}
	return int(i), nil
}

func AsFloat64(v wire.Value) (float64, error) {
	f, ok := v.AsDouble()
	if !ok {
		return 0, mismatch(v, "a double")
	}
	return f, nil
}

func AsString(v wire.Value) (string, error) {
	s, ok := v.AsString()
	if !ok {
		return "", mismatch(v, "a string")
	}
	return s, nil
}

// AsOptionalString converts a string that the guest may leave null. ok is
// false for null.
func AsOptionalString(v wire.Value) (s string, ok bool, err error) {
	if v.IsNull() {
		return "", false, nil
	}
	s, err = AsString(v)
	return s, err == nil, err
}

// AsStrings converts a list of strings. Null yields a nil slice.
func AsStrings(v wire.Value) ([]string, error) {
	if v.IsNull() {
		return nil, nil
	}
	list, ok := v.AsList()
	if !ok {
		return nil, mismatch(v, "a list")
	}
	out := make([]string, len(list))
	for i, e := range list {
		s, ok := e.AsString()
		if !ok {
			return nil, contractErrorf("", "list element %d is %s, not a string", i, e.Kind())
		}
		out[i] = s
	}
	return out, nil
}

// AsIntMap converts a string-keyed map of integers, keeping guest order. Null
// yields nil.
func AsIntMap(v wire.Value) (*orderedmap.OrderedMap[string, int], error) {
	return asOrdered(v, AsInt)
}

// AsStringMap converts a string-keyed map of strings, keeping guest order.
// Null yields nil.
func AsStringMap(v wire.Value) (*orderedmap.OrderedMap[string, string], error) {
	return asOrdered(v, AsString)
}

func asOrdered[V any](v wire.Value, conv func(wire.Value) (V, error)) (*orderedmap.OrderedMap[string, V], error) {
	if v.IsNull() {
		return nil, nil
	}
	pairs, ok := v.AsMap()
	if !ok {
		return nil, mismatch(v, "a map")
	}
	m := orderedmap.New[string, V](len(pairs))
	for _, p := range pairs {
		e, err := conv(p.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", p.Key, err)
		}
		m.Set(p.Key, e)
	}
	return m, nil
}

// ToHost converts a boundary value into plain host values: nil, bool, int64,
// float64, string, []any, *orderedmap.OrderedMap[string, any] or wire.Handle
// for references. It is total.
func ToHost(v wire.Value) any {
	switch v.Kind() {
	case wire.KindBool:
		b, _ := v.AsBool()
		return b
	case wire.KindInt:
		i, _ := v.AsInt()
		return i
	case wire.KindDouble:
		f, _ := v.AsDouble()
		return f
	case wire.KindString:
		s, _ := v.AsString()
		return s
	case wire.KindRef:
		h, _ := v.AsRef()
		return h
	case wire.KindList:
		list, _ := v.AsList()
		out := make([]any, len(list))
		for i, e := range list {
			out[i] = ToHost(e)
		}
		return out
	case wire.KindMap:
		pairs, _ := v.AsMap()
		m := orderedmap.New[string, any](len(pairs))
		for _, p := range pairs {
			m.Set(p.Key, ToHost(p.Value))
		}
		return m
	}
	return nil
}
