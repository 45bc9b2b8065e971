package foreign_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wasmglue/wasmglue/foreign"
	"github.com/wasmglue/wasmglue/guest/objects"
	"github.com/wasmglue/wasmglue/loopback"
	"github.com/wasmglue/wasmglue/wire"
)

const fixtureModule = "glue_fixtures"

// Guest side.

type guestWidget struct {
	name   string
	width  int64
	closed bool
}

type guestRow struct{ values []string }

type guestRecordSet struct{ rows []*guestRow }

type guestRowIterator struct {
	rows []*guestRow
	pos  int
}

func newFixtureRuntime() *objects.Runtime {
	rt := objects.NewRuntime()
	widgets := map[string]*guestWidget{}

	widget := &objects.Class{Name: "Widget"}
	widget.New = func(c *objects.Call) (any, error) {
		name, err := c.String(0)
		if err != nil {
			return nil, err
		}
		width, err := c.Int(1)
		if err != nil {
			return nil, err
		}
		if width < 0 {
			return nil, objects.Raise(objects.TagValueError, "bad width")
		}
		w := &guestWidget{name: name, width: width}
		widgets[name] = w
		return w, nil
	}
	self := func(c *objects.Call) (*guestWidget, error) { return objects.SelfAs[*guestWidget](c) }
	widget.Methods = map[string]objects.Method{
		"name": func(c *objects.Call) (wire.Value, error) {
			w, err := self(c)
			if err != nil {
				return wire.Null(), err
			}
			return wire.String(w.name), nil
		},
		"width": func(c *objects.Call) (wire.Value, error) {
			w, err := self(c)
			if err != nil {
				return wire.Null(), err
			}
			return wire.Int(w.width), nil
		},
		"self": func(c *objects.Call) (wire.Value, error) {
			w, err := self(c)
			if err != nil {
				return wire.Null(), err
			}
			return c.Wrap(widget, w), nil
		},
		"raise": func(c *objects.Call) (wire.Value, error) {
			tag, err := c.String(0)
			if err != nil {
				return wire.Null(), err
			}
			msg, err := c.String(1)
			if err != nil {
				return wire.Null(), err
			}
			return wire.Null(), objects.Raise(tag, "%s", msg)
		},
		"close": func(c *objects.Call) (wire.Value, error) {
			w, err := self(c)
			if err != nil {
				return wire.Null(), err
			}
			if w.closed {
				return wire.Null(), objects.Raise(objects.TagValueError, "already closed")
			}
			w.closed = true
			return wire.Null(), nil
		},
	}
	widget.Static = map[string]objects.Method{
		"lookup": func(c *objects.Call) (wire.Value, error) {
			name, err := c.String(0)
			if err != nil {
				return wire.Null(), err
			}
			if w, ok := widgets[name]; ok {
				return c.Wrap(widget, w), nil
			}
			return wire.Null(), nil
		},
		"echo": func(c *objects.Call) (wire.Value, error) {
			return c.Arg(0), nil
		},
	}

	row := &objects.Class{Name: "Row"}
	row.Methods = map[string]objects.Method{
		"values": func(c *objects.Call) (wire.Value, error) {
			r, err := objects.SelfAs[*guestRow](c)
			if err != nil {
				return wire.Null(), err
			}
			return wire.Strings(r.values...), nil
		},
	}

	rowIterator := &objects.Class{Name: "RowIterator"}
	rowIterator.Methods = map[string]objects.Method{
		"has_next": func(c *objects.Call) (wire.Value, error) {
			it, err := objects.SelfAs[*guestRowIterator](c)
			if err != nil {
				return wire.Null(), err
			}
			return wire.Bool(it.pos < len(it.rows)), nil
		},
		"next": func(c *objects.Call) (wire.Value, error) {
			it, err := objects.SelfAs[*guestRowIterator](c)
			if err != nil {
				return wire.Null(), err
			}
			if it.pos >= len(it.rows) {
				return wire.Null(), objects.Raise(objects.TagStopIteration, "")
			}
			r := it.rows[it.pos]
			it.pos++
			return c.Wrap(row, r), nil
		},
	}

	recordSet := &objects.Class{Name: "RecordSet"}
	recordSet.New = func(c *objects.Call) (any, error) {
		rows, ok := c.Arg(0).AsList()
		if !ok {
			return nil, objects.Raise(objects.TagTypeError, "rows must be a list")
		}
		rs := &guestRecordSet{}
		for i, r := range rows {
			fields, ok := r.AsList()
			if !ok {
				return nil, objects.Raise(objects.TagTypeError, "row %d must be a list", i)
			}
			values := make([]string, len(fields))
			for j, f := range fields {
				values[j], _ = f.AsString()
			}
			rs.rows = append(rs.rows, &guestRow{values: values})
		}
		return rs, nil
	}
	recordSet.Methods = map[string]objects.Method{
		"iterator": func(c *objects.Call) (wire.Value, error) {
			rs, err := objects.SelfAs[*guestRecordSet](c)
			if err != nil {
				return wire.Null(), err
			}
			return c.Wrap(rowIterator, &guestRowIterator{rows: rs.rows}), nil
		},
		"size": func(c *objects.Call) (wire.Value, error) {
			rs, err := objects.SelfAs[*guestRecordSet](c)
			if err != nil {
				return wire.Null(), err
			}
			return wire.Int(int64(len(rs.rows))), nil
		},
	}

	for _, cls := range []*objects.Class{widget, row, rowIterator, recordSet} {
		rt.Register(fixtureModule, cls)
	}
	return rt
}

// Host side.

var (
	widgetName  = foreign.NewOp("name", foreign.String)
	widgetWidth = foreign.NewOp("width", foreign.Int32)
	widgetSelf  = foreign.NewOp("self", foreign.Ref)
	widgetRaise = foreign.NewOp("raise", foreign.Void, foreign.String, foreign.String)
	widgetClose = foreign.NewOp("close", foreign.Void).AsIO()

	widgetLookup = foreign.NewOp("lookup", foreign.Ref.OrNull(), foreign.String)
	widgetEcho   = foreign.NewOp("echo", foreign.Any, foreign.Any)

	widgetClass = &foreign.Class{
		Module: fixtureModule,
		Name:   "Widget",
		Ctor:   foreign.NewOp("new", foreign.Ref, foreign.String, foreign.Int64),
		Ops:    []*foreign.Op{widgetName, widgetWidth, widgetSelf, widgetRaise, widgetClose},
		Static: []*foreign.Op{widgetLookup, widgetEcho},
	}

	rowValues = foreign.NewOp("values", foreign.ListOf(foreign.String))
	rowClass  = &foreign.Class{Module: fixtureModule, Name: "Row", Ops: []*foreign.Op{rowValues}}

	rowIterHasNext = foreign.NewOp("has_next", foreign.Bool)
	rowIterNext    = foreign.NewOp("next", foreign.Ref)
	rowIterClass   = &foreign.Class{
		Module: fixtureModule,
		Name:   "RowIterator",
		Ops:    []*foreign.Op{rowIterHasNext, rowIterNext},
	}

	recordSetIterator = foreign.NewOp("iterator", foreign.Ref)
	recordSetSize     = foreign.NewOp("size", foreign.Int64)
	recordSetClass    = &foreign.Class{
		Module: fixtureModule,
		Name:   "RecordSet",
		Ctor:   foreign.NewOp("new", foreign.Ref, foreign.ListOf(foreign.ListOf(foreign.String))),
		Ops:    []*foreign.Op{recordSetIterator, recordSetSize},
	}

	fixtureClasses = []*foreign.Class{widgetClass, rowClass, rowIterClass, recordSetClass}
)

type widget struct{ obj *foreign.Object }

func wrapWidget(obj *foreign.Object) *widget { return &widget{obj: obj} }

func (w *widget) ForeignHandle() wire.Handle { return w.obj.ForeignHandle() }

func newWidget(ctx context.Context, env *foreign.Env, name string, width int64) (*widget, error) {
	return foreign.Construct(ctx, env, widgetClass, wrapWidget, name, width)
}

func lookupWidget(ctx context.Context, env *foreign.Env, name string) (*widget, error) {
	v, err := foreign.CallStatic(ctx, env, widgetClass, widgetLookup, name)
	if err != nil {
		return nil, err
	}
	return foreign.Adopt(ctx, env, widgetClass, v, wrapWidget)
}

func (w *widget) Name(ctx context.Context) (string, error) {
	return foreign.Decode(foreign.AsString)(w.obj.Call(ctx, widgetName))
}

func (w *widget) Width(ctx context.Context) (int32, error) {
	return foreign.Decode(foreign.AsInt32)(w.obj.Call(ctx, widgetWidth))
}

func (w *widget) Self(ctx context.Context) (*widget, error) {
	v, err := w.obj.Call(ctx, widgetSelf)
	if err != nil {
		return nil, err
	}
	return foreign.Adopt(ctx, w.obj.Env(), widgetClass, v, wrapWidget)
}

func (w *widget) Raise(ctx context.Context, tag, msg string) error {
	return foreign.Discard(w.obj.Call(ctx, widgetRaise, tag, msg))
}

func (w *widget) Close(ctx context.Context) error {
	return foreign.Discard(w.obj.Call(ctx, widgetClose))
}

type row struct{ obj *foreign.Object }

func wrapRow(obj *foreign.Object) *row { return &row{obj: obj} }

func (r *row) ForeignHandle() wire.Handle { return r.obj.ForeignHandle() }

func (r *row) Values(ctx context.Context) ([]string, error) {
	return foreign.Decode(foreign.AsStrings)(r.obj.Call(ctx, rowValues))
}

type recordSet struct{ obj *foreign.Object }

func (rs *recordSet) ForeignHandle() wire.Handle { return rs.obj.ForeignHandle() }

func newRecordSet(ctx context.Context, env *foreign.Env, rows [][]string) (*recordSet, error) {
	return foreign.Construct(ctx, env, recordSetClass, func(obj *foreign.Object) *recordSet {
		return &recordSet{obj: obj}
	}, rows)
}

func (rs *recordSet) Iterator(ctx context.Context) (*foreign.Iterator[*row], error) {
	v, err := rs.obj.Call(ctx, recordSetIterator)
	if err != nil {
		return nil, err
	}
	env := rs.obj.Env()
	it, err := foreign.Adopt(ctx, env, rowIterClass, v, func(obj *foreign.Object) *foreign.Iterator[*row] {
		return foreign.NewIterator(obj, rowIterHasNext, rowIterNext, func(ctx context.Context, v wire.Value) (*row, error) {
			return foreign.Adopt(ctx, env, rowClass, v, wrapRow)
		})
	})
	return it, err
}

// newFixtureEnv returns an Env over a fresh fixture runtime, plus the
// boundary so tests can count crossings.
func newFixtureEnv(t *testing.T) (*foreign.Env, *loopback.Boundary) {
	t.Helper()
	b := loopback.New(newFixtureRuntime(), zaptest.NewLogger(t))
	env, err := foreign.NewEnv(context.Background(), b, fixtureClasses, foreign.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close(context.Background()) })
	return env, b
}

// rawBoundary returns a fixed failure for every invocation.
type rawBoundary struct {
	foreign.Boundary
	invokeErr error
}

func (b *rawBoundary) Invoke(context.Context, wire.Handle, string, []wire.Value) (wire.Value, error) {
	return wire.Null(), b.invokeErr
}
