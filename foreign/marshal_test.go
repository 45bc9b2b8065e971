package foreign_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/wasmglue/wasmglue/foreign"
	"github.com/wasmglue/wasmglue/wire"
)

func orderedKeys[V any](m *orderedmap.OrderedMap[string, V]) []string {
	var out []string
	for p := m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

func TestOrderPreservation(t *testing.T) {
	ctx := context.Background()
	env, _ := newFixtureEnv(t)

	in := orderedmap.New[string, int]()
	in.Set("c", 0)
	in.Set("a", 1)
	in.Set("b", 2)

	v, err := foreign.CallStatic(ctx, env, widgetClass, widgetEcho, in)
	require.NoError(t, err)

	out, err := foreign.AsIntMap(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, orderedKeys(out))
	b, _ := out.Get("b")
	assert.Equal(t, 2, b)
}

func TestToForeign(t *testing.T) {
	nested := orderedmap.New[string, any]()
	nested.Set("z", []int{1, 2})
	nested.Set("y", nil)

	tests := []struct {
		name string
		in   any
		want wire.Value
	}{
		{name: "nil", in: nil, want: wire.Null()},
		{name: "bool", in: true, want: wire.Bool(true)},
		{name: "int", in: 7, want: wire.Int(7)},
		{name: "int32", in: int32(-3), want: wire.Int(-3)},
		{name: "int64", in: int64(math.MaxInt64), want: wire.Int(math.MaxInt64)},
		{name: "uint32", in: uint32(math.MaxUint32), want: wire.Int(math.MaxUint32)},
		{name: "float", in: 1.5, want: wire.Double(1.5)},
		{name: "string", in: "x", want: wire.String("x")},
		{name: "strings", in: []string{"a", "b"}, want: wire.Strings("a", "b")},
		{name: "nil slice", in: []int(nil), want: wire.Null()},
		{name: "array", in: [2]bool{true, false}, want: wire.List(wire.Bool(true), wire.Bool(false))},
		{name: "handle", in: wire.Handle(4), want: wire.Ref(4)},
		{name: "value", in: wire.Double(2), want: wire.Double(2)},
		{name: "ordered map", in: nested, want: wire.Map(
			wire.Pair{Key: "z", Value: wire.List(wire.Int(1), wire.Int(2))},
			wire.Pair{Key: "y", Value: wire.Null()},
		)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := foreign.ToForeign(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	t.Run("rejects unordered maps", func(t *testing.T) {
		_, err := foreign.ToForeign(map[string]int{"a": 1})
		require.ErrorIs(t, err, foreign.ErrContract)
		assert.Contains(t, err.Error(), "ordered map")
	})

	t.Run("rejects strings that are not UTF-8", func(t *testing.T) {
		badKey := orderedmap.New[string, string]()
		badKey.Set("caf\xe9", "x")
		badValue := orderedmap.New[string, any]()
		badValue.Set("k", []string{"ok", "caf\xe9"})

		for name, in := range map[string]any{
			"string":       "caf\xe9",
			"strings":      []string{"ok", "\xff"},
			"nested slice": [][]string{{"\xff"}},
			"map key":      badKey,
			"map value":    badValue,
		} {
			_, err := foreign.ToForeign(in)
			require.ErrorIs(t, err, foreign.ErrContract, name)
			assert.Contains(t, err.Error(), "not valid UTF-8", name)
		}

		v, err := foreign.ToForeign("café")
		require.NoError(t, err)
		assert.True(t, wire.String("café").Equal(v))
	})

	t.Run("rejects uint64 overflow", func(t *testing.T) {
		_, err := foreign.ToForeign(uint64(math.MaxUint64))
		assert.ErrorIs(t, err, foreign.ErrContract)
	})

	t.Run("rejects unsupported types", func(t *testing.T) {
		_, err := foreign.ToForeign(struct{}{})
		assert.ErrorIs(t, err, foreign.ErrContract)
	})
}

func TestHostConversions(t *testing.T) {
	t.Run("int32 is never truncated", func(t *testing.T) {
		_, err := foreign.AsInt32(wire.Int(math.MaxInt32 + 1))
		assert.ErrorIs(t, err, foreign.ErrContract)
		i, err := foreign.AsInt32(wire.Int(math.MinInt32))
		require.NoError(t, err)
		assert.Equal(t, int32(math.MinInt32), i)
	})

	t.Run("optional strings", func(t *testing.T) {
		s, ok, err := foreign.AsOptionalString(wire.Null())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, s)

		s, ok, err = foreign.AsOptionalString(wire.String("v"))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", s)

		_, _, err = foreign.AsOptionalString(wire.Int(1))
		assert.ErrorIs(t, err, foreign.ErrContract)
	})

	t.Run("strings", func(t *testing.T) {
		ss, err := foreign.AsStrings(wire.Null())
		require.NoError(t, err)
		assert.Nil(t, ss)

		_, err = foreign.AsStrings(wire.List(wire.String("a"), wire.Int(1)))
		assert.ErrorIs(t, err, foreign.ErrContract)
	})

	t.Run("string map keeps order", func(t *testing.T) {
		m, err := foreign.AsStringMap(wire.Map(
			wire.Pair{Key: "b", Value: wire.String("2")},
			wire.Pair{Key: "a", Value: wire.String("1")},
		))
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, orderedKeys(m))
	})

	t.Run("to host", func(t *testing.T) {
		got := foreign.ToHost(wire.Map(
			wire.Pair{Key: "list", Value: wire.List(wire.Int(1), wire.Null(), wire.Ref(3))},
			wire.Pair{Key: "flag", Value: wire.Bool(true)},
		))
		m, ok := got.(*orderedmap.OrderedMap[string, any])
		require.True(t, ok)
		assert.Equal(t, []string{"list", "flag"}, orderedKeys(m))
		list, _ := m.Get("list")
		assert.Equal(t, []any{int64(1), nil, wire.Handle(3)}, list)
	})
}
