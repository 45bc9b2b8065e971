package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	commonv1 "go.opentelemetry.io/proto/otlp/common/v1"
	"google.golang.org/protobuf/proto"
)

// refTag prefixes the bytes_value that carries a handle. Plain byte strings
// are not part of the value model, so bytes_value is free for references.
const refTag = 'h'

// ErrMalformed is returned when bytes do not decode to a Value.
var ErrMalformed = errors.New("wire: malformed value")

// Marshal encodes v as a protobuf OTLP AnyValue.
func Marshal(v Value) ([]byte, error) {
	return proto.Marshal(ToAnyValue(v))
}

// Unmarshal decodes bytes produced by Marshal. Empty input is the null Value.
func Unmarshal(b []byte) (Value, error) {
	if len(b) == 0 {
		return Null(), nil
	}
	var av commonv1.AnyValue
	if err := proto.Unmarshal(b, &av); err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return FromAnyValue(&av)
}

// ToAnyValue converts v to its OTLP representation.
func ToAnyValue(v Value) *commonv1.AnyValue {
	switch v.kind {
	case KindBool:
		return &commonv1.AnyValue{Value: &commonv1.AnyValue_BoolValue{BoolValue: v.b}}
	case KindInt:
		return &commonv1.AnyValue{Value: &commonv1.AnyValue_IntValue{IntValue: v.i}}
	case KindDouble:
		return &commonv1.AnyValue{Value: &commonv1.AnyValue_DoubleValue{DoubleValue: v.f}}
	case KindString:
		return &commonv1.AnyValue{Value: &commonv1.AnyValue_StringValue{StringValue: v.s}}
	case KindRef:
		buf := make([]byte, 5)
		buf[0] = refTag
		binary.LittleEndian.PutUint32(buf[1:], uint32(v.ref))
		return &commonv1.AnyValue{Value: &commonv1.AnyValue_BytesValue{BytesValue: buf}}
	case KindList:
		values := make([]*commonv1.AnyValue, len(v.list))
		for i, e := range v.list {
			values[i] = ToAnyValue(e)
		}
		return &commonv1.AnyValue{Value: &commonv1.AnyValue_ArrayValue{
			ArrayValue: &commonv1.ArrayValue{Values: values},
		}}
	case KindMap:
		kvs := make([]*commonv1.KeyValue, len(v.pairs))
		for i, p := range v.pairs {
			kvs[i] = &commonv1.KeyValue{Key: p.Key, Value: ToAnyValue(p.Value)}
		}
		return &commonv1.AnyValue{Value: &commonv1.AnyValue_KvlistValue{
			KvlistValue: &commonv1.KeyValueList{Values: kvs},
		}}
	default:
		return &commonv1.AnyValue{}
	}
}

// FromAnyValue converts an OTLP AnyValue back into a Value.
func FromAnyValue(av *commonv1.AnyValue) (Value, error) {
	if av == nil {
		return Null(), nil
	}
	switch x := av.GetValue().(type) {
	case nil:
		return Null(), nil
	case *commonv1.AnyValue_BoolValue:
		return Bool(x.BoolValue), nil
	case *commonv1.AnyValue_IntValue:
		return Int(x.IntValue), nil
	case *commonv1.AnyValue_DoubleValue:
		return Double(x.DoubleValue), nil
	case *commonv1.AnyValue_StringValue:
		return String(x.StringValue), nil
	case *commonv1.AnyValue_BytesValue:
		b := x.BytesValue
		if len(b) != 5 || b[0] != refTag {
			return Value{}, fmt.Errorf("%w: bytes value is not a handle reference", ErrMalformed)
		}
		return Ref(Handle(binary.LittleEndian.Uint32(b[1:]))), nil
	case *commonv1.AnyValue_ArrayValue:
		src := x.ArrayValue.GetValues()
		list := make([]Value, len(src))
		for i, e := range src {
			v, err := FromAnyValue(e)
			if err != nil {
				return Value{}, err
			}
			list[i] = v
		}
		return List(list...), nil
	case *commonv1.AnyValue_KvlistValue:
		src := x.KvlistValue.GetValues()
		pairs := make([]Pair, len(src))
		for i, kv := range src {
			v, err := FromAnyValue(kv.GetValue())
			if err != nil {
				return Value{}, err
			}
			pairs[i] = Pair{Key: kv.GetKey(), Value: v}
		}
		return Map(pairs...), nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported AnyValue %T", ErrMalformed, x)
	}
}
