package foreign_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmglue/wasmglue/foreign"
	"github.com/wasmglue/wasmglue/loopback"
	"github.com/wasmglue/wasmglue/wire"
)

func TestIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("an operation returning the receiver yields the same proxy", func(t *testing.T) {
		env, _ := newFixtureEnv(t)
		w, err := newWidget(ctx, env, "gear", 3)
		require.NoError(t, err)

		for range 3 {
			again, err := w.Self(ctx)
			require.NoError(t, err)
			assert.Same(t, w, again)
		}
		assert.Equal(t, 1, env.CachedProxies(widgetClass))
	})

	t.Run("different call sites share one proxy", func(t *testing.T) {
		env, _ := newFixtureEnv(t)
		w, err := newWidget(ctx, env, "gear", 3)
		require.NoError(t, err)

		viaStatic, err := lookupWidget(ctx, env, "gear")
		require.NoError(t, err)
		viaHandle := foreign.AdoptHandle(ctx, env, widgetClass, w.ForeignHandle(), wrapWidget)

		assert.Same(t, w, viaStatic)
		assert.Same(t, w, viaHandle)
	})

	t.Run("distinct guest objects get distinct proxies", func(t *testing.T) {
		env, _ := newFixtureEnv(t)
		a, err := newWidget(ctx, env, "a", 1)
		require.NoError(t, err)
		b, err := newWidget(ctx, env, "b", 1)
		require.NoError(t, err)

		assert.NotSame(t, a, b)
		assert.NotEqual(t, a.ForeignHandle(), b.ForeignHandle())
		assert.Equal(t, 2, env.CachedProxies(widgetClass))
	})

	t.Run("concurrent adoption publishes one proxy", func(t *testing.T) {
		env, _ := newFixtureEnv(t)
		w, err := newWidget(ctx, env, "gear", 3)
		require.NoError(t, err)

		const n = 32
		got := make([]*widget, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got[i], _ = lookupWidget(ctx, env, "gear")
			}()
		}
		wg.Wait()
		for _, p := range got {
			assert.Same(t, w, p)
		}
	})
}

func TestNullSafety(t *testing.T) {
	ctx := context.Background()
	env, _ := newFixtureEnv(t)

	assert.Nil(t, foreign.AdoptHandle(ctx, env, widgetClass, wire.NullHandle, wrapWidget))

	p, err := foreign.Adopt(ctx, env, widgetClass, wire.Null(), wrapWidget)
	require.NoError(t, err)
	assert.Nil(t, p)

	missing, err := lookupWidget(ctx, env, "nothing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := foreign.AdoptList(ctx, env, widgetClass, wire.List(wire.Null()), wrapWidget)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0])

	assert.Zero(t, env.CachedProxies(widgetClass))

	t.Run("a nil proxy marshals as null", func(t *testing.T) {
		var w *widget
		v, err := foreign.ToForeign(w)
		require.NoError(t, err)
		assert.True(t, v.IsNull())
	})

	t.Run("a non-reference is rejected", func(t *testing.T) {
		_, err := foreign.Adopt(ctx, env, widgetClass, wire.String("gear"), wrapWidget)
		assert.ErrorIs(t, err, foreign.ErrContract)
	})
}

func TestResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("resolving twice crosses once and yields equal descriptors", func(t *testing.T) {
		b := loopback.New(newFixtureRuntime(), nil)
		env, err := foreign.NewEnv(ctx, b, nil)
		require.NoError(t, err)

		first, err := env.Resolve(ctx, widgetClass)
		require.NoError(t, err)
		crossings := b.Crossings
		second, err := env.Resolve(ctx, widgetClass)
		require.NoError(t, err)

		assert.Equal(t, crossings, b.Crossings)
		assert.Same(t, first, second)
		assert.True(t, first.Equal(second))
		assert.True(t, first.Supports("raise"))
		assert.True(t, first.Supports("lookup"))
		assert.False(t, first.Supports("explode"))
	})

	t.Run("independent registries produce interchangeable descriptors", func(t *testing.T) {
		b := loopback.New(newFixtureRuntime(), nil)
		r1 := foreign.NewRegistry(b.Resolve, nil)
		r2 := foreign.NewRegistry(b.Resolve, nil)

		d1, err := r1.Resolve(ctx, widgetClass)
		require.NoError(t, err)
		d2, err := r2.Resolve(ctx, widgetClass)
		require.NoError(t, err)

		assert.NotSame(t, d1, d2)
		assert.True(t, d1.Equal(d2))
		assert.Equal(t, d1.Handle(), d2.Handle())
		assert.Equal(t, 1, r1.Len())
	})

	t.Run("concurrent first resolution crosses once", func(t *testing.T) {
		b := loopback.New(newFixtureRuntime(), nil)
		env, err := foreign.NewEnv(ctx, b, nil)
		require.NoError(t, err)

		var wg sync.WaitGroup
		descs := make([]*foreign.Descriptor, 16)
		for i := range descs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				descs[i] = env.Descriptor(ctx, recordSetClass)
			}()
		}
		wg.Wait()
		for _, d := range descs {
			assert.Same(t, descs[0], d)
		}
		assert.Equal(t, 1, b.Crossings)
	})

	t.Run("a missing module fails setup", func(t *testing.T) {
		b := loopback.New(newFixtureRuntime(), nil)
		cls := &foreign.Class{Module: "nowhere", Name: "Widget"}
		_, err := foreign.NewEnv(ctx, b, []*foreign.Class{cls})

		var setupErr *foreign.SetupError
		require.ErrorAs(t, err, &setupErr)
		assert.Equal(t, "nowhere", setupErr.Module)
		assert.Contains(t, err.Error(), "nowhere.Widget")
	})

	t.Run("a missing operation fails setup", func(t *testing.T) {
		b := loopback.New(newFixtureRuntime(), nil)
		cls := &foreign.Class{
			Module: fixtureModule,
			Name:   "Widget",
			Ops:    []*foreign.Op{foreign.NewOp("explode", foreign.Void)},
		}
		_, err := foreign.NewEnv(ctx, b, []*foreign.Class{cls})

		var setupErr *foreign.SetupError
		require.ErrorAs(t, err, &setupErr)
		assert.Contains(t, err.Error(), "explode")
	})

	t.Run("lazy resolution failure panics", func(t *testing.T) {
		env, _ := newFixtureEnv(t)
		cls := &foreign.Class{Module: fixtureModule, Name: "Gizmo", Ctor: foreign.NewOp("new", foreign.Ref)}

		defer func() {
			r := recover()
			require.NotNil(t, r)
			err, ok := r.(error)
			require.True(t, ok)
			var setupErr *foreign.SetupError
			assert.ErrorAs(t, err, &setupErr)
		}()
		_, _ = foreign.Construct(ctx, env, cls, func(o *foreign.Object) *foreign.Object { return o })
	})
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("forwards operations and converts results", func(t *testing.T) {
		env, _ := newFixtureEnv(t)
		w, err := newWidget(ctx, env, "gear", 12)
		require.NoError(t, err)

		name, err := w.Name(ctx)
		require.NoError(t, err)
		assert.Equal(t, "gear", name)

		width, err := w.Width(ctx)
		require.NoError(t, err)
		assert.Equal(t, int32(12), width)
		assert.Equal(t, widgetClass, w.obj.Descriptor().Class())
	})

	t.Run("argument shape mismatch never crosses", func(t *testing.T) {
		env, b := newFixtureEnv(t)
		w, err := newWidget(ctx, env, "gear", 1)
		require.NoError(t, err)
		before := b.Crossings

		_, err = w.obj.Call(ctx, widgetRaise, "ValueError", 7)
		assert.ErrorIs(t, err, foreign.ErrContract)
		_, err = w.obj.Call(ctx, widgetRaise, "ValueError")
		assert.ErrorIs(t, err, foreign.ErrContract)
		_, err = w.obj.Call(ctx, widgetRaise, map[string]string{"a": "b"}, "x")
		assert.ErrorIs(t, err, foreign.ErrContract)

		assert.Equal(t, before, b.Crossings)
	})

	t.Run("an int32 result out of range is a contract violation", func(t *testing.T) {
		env, _ := newFixtureEnv(t)
		w, err := newWidget(ctx, env, "huge", 1<<40)
		require.NoError(t, err)

		_, err = w.Width(ctx)
		require.ErrorIs(t, err, foreign.ErrContract)
		assert.Contains(t, err.Error(), "Widget.width")
	})

	t.Run("an undeclared operation panics", func(t *testing.T) {
		env, _ := newFixtureEnv(t)
		w, err := newWidget(ctx, env, "gear", 1)
		require.NoError(t, err)

		assert.Panics(t, func() {
			_, _ = w.obj.Call(ctx, rowValues)
		})
		assert.Panics(t, func() {
			_, _ = foreign.CallStatic(ctx, env, widgetClass, widgetName)
		})
	})

	t.Run("crossings after close fail", func(t *testing.T) {
		env, _ := newFixtureEnv(t)
		w, err := newWidget(ctx, env, "gear", 1)
		require.NoError(t, err)
		require.NoError(t, env.Close(ctx))

		_, err = w.Name(ctx)
		assert.ErrorIs(t, err, foreign.ErrClosed)
		assert.Zero(t, env.CachedProxies(widgetClass))
		assert.NoError(t, env.Close(ctx))
	})

	t.Run("classes first used after close fail as closed", func(t *testing.T) {
		b := loopback.New(newFixtureRuntime(), nil)
		env, err := foreign.NewEnv(ctx, b, nil)
		require.NoError(t, err)
		require.NoError(t, env.Close(ctx))

		assert.NotPanics(t, func() {
			_, err := newWidget(ctx, env, "gear", 1)
			assert.ErrorIs(t, err, foreign.ErrClosed)

			_, err = lookupWidget(ctx, env, "gear")
			assert.ErrorIs(t, err, foreign.ErrClosed)

			w := foreign.AdoptHandle(ctx, env, widgetClass, wire.Handle(5), wrapWidget)
			require.NotNil(t, w)
			_, err = w.Name(ctx)
			assert.ErrorIs(t, err, foreign.ErrClosed)
		})
		assert.Zero(t, env.CachedProxies(widgetClass))
		assert.Zero(t, b.Crossings)
	})

	t.Run("transport failures are unclassified and keep their cause", func(t *testing.T) {
		cause := errors.New("guest trapped")
		b := &rawBoundary{Boundary: loopback.New(newFixtureRuntime(), nil), invokeErr: cause}
		env, err := foreign.NewEnv(ctx, b, fixtureClasses)
		require.NoError(t, err)

		_, err = foreign.CallStatic(ctx, env, widgetClass, widgetEcho, 1)
		assert.ErrorIs(t, err, foreign.ErrUnclassified)
		assert.ErrorIs(t, err, cause)
	})
}
