package objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmglue/wasmglue/wire"
)

type token struct {
	name string
}

type holder struct {
	v any
}

func handleOf(t *testing.T, v wire.Value) wire.Handle {
	t.Helper()
	h, ok := v.AsRef()
	require.True(t, ok)
	return h
}

func TestWrap(t *testing.T) {
	cls := &Class{Name: "Token"}

	t.Run("pointers keep their handle", func(t *testing.T) {
		r := NewRuntime()
		tok := &token{name: "a"}
		h := handleOf(t, r.Wrap(cls, tok))
		assert.Equal(t, h, handleOf(t, r.Wrap(cls, tok)))
		assert.NotEqual(t, h, handleOf(t, r.Wrap(cls, &token{name: "a"})))
		assert.Equal(t, 2, r.Len())

		obj, got, ok := r.Deref(h)
		require.True(t, ok)
		assert.Same(t, tok, obj)
		assert.Same(t, cls, got)
	})

	t.Run("values get a handle per wrap", func(t *testing.T) {
		r := NewRuntime()
		a := handleOf(t, r.Wrap(cls, "same"))
		b := handleOf(t, r.Wrap(cls, "same"))
		assert.NotEqual(t, a, b)

		c := handleOf(t, r.Wrap(cls, token{name: "x"}))
		d := handleOf(t, r.Wrap(cls, token{name: "x"}))
		assert.NotEqual(t, c, d)
		assert.Equal(t, 4, r.Len())
	})

	t.Run("values holding slices do not panic", func(t *testing.T) {
		r := NewRuntime()
		assert.NotPanics(t, func() {
			r.Wrap(cls, holder{v: []string{"x"}})
			r.Wrap(cls, holder{v: []string{"x"}})
		})
		assert.Equal(t, 2, r.Len())
	})

	t.Run("nil is null", func(t *testing.T) {
		r := NewRuntime()
		var tok *token
		assert.Equal(t, wire.NullHandle, handleOf(t, r.Wrap(cls, tok)))
		assert.Equal(t, wire.NullHandle, handleOf(t, r.Wrap(cls, nil)))
		assert.Equal(t, 0, r.Len())
	})
}
