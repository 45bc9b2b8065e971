package objects

import (
	"fmt"

	"github.com/wasmglue/wasmglue/wire"
)

// Kind tags raised by guest code. The host maps them to its own error kinds;
// any other tag reaches the host as an unclassified failure.
const (
	TagValueError    = "ValueError"
	TagTypeError     = "TypeError"
	TagStopIteration = "StopIteration"
	TagIOError       = "IOError"
	TagIndexError    = "IndexError"
	TagKeyError      = "KeyError"
	TagRuntimeError  = "RuntimeError"
)

// Exception is a failure raised by guest code. It crosses the boundary as
// "<Tag>: <Message>" plus an optional payload object.
type Exception struct {
	Tag          string
	Message      string
	Payload      any
	PayloadClass *Class
}

func (e *Exception) Error() string { return e.Tag + ": " + e.Message }

// Raise returns an exception with the given kind tag.
func Raise(tag, format string, args ...any) *Exception {
	return &Exception{Tag: tag, Message: fmt.Sprintf(format, args...)}
}

// WithPayload attaches obj, exported as an instance of cls, to the exception.
func (e *Exception) WithPayload(cls *Class, obj any) *Exception {
	e.Payload = obj
	e.PayloadClass = cls
	return e
}

// Call is one invocation of a guest method.
type Call struct {
	rt   *Runtime
	Self any
	Op   string
	Args []wire.Value
}

// NewCall builds a call outside of Serve, for direct tests of methods.
func NewCall(rt *Runtime, self any, args ...wire.Value) *Call {
	return &Call{rt: rt, Self: self, Args: args}
}

func (c *Call) Runtime() *Runtime { return c.rt }

// Arg returns argument i, or null when fewer arguments were passed.
func (c *Call) Arg(i int) wire.Value {
	if i < 0 || i >= len(c.Args) {
		return wire.Null()
	}
	return c.Args[i]
}

// Rest returns the arguments from i on.
func (c *Call) Rest(i int) []wire.Value {
	if i >= len(c.Args) {
		return nil
	}
	return c.Args[i:]
}

func (c *Call) typeError(i int, want string) error {
	return Raise(TagTypeError, "%s() argument %d must be %s, not %s", c.Op, i, want, c.Arg(i).Kind())
}

func (c *Call) String(i int) (string, error) {
	s, ok := c.Arg(i).AsString()
	if !ok {
		return "", c.typeError(i, "str")
	}
	return s, nil
}

// OptionalString accepts a string or null.
func (c *Call) OptionalString(i int) (string, bool, error) {
	if c.Arg(i).IsNull() {
		return "", false, nil
	}
	s, err := c.String(i)
	return s, err == nil, err
}

func (c *Call) Int(i int) (int64, error) {
	n, ok := c.Arg(i).AsInt()
	if !ok {
		return 0, c.typeError(i, "int")
	}
	return n, nil
}

func (c *Call) Bool(i int) (bool, error) {
	b, ok := c.Arg(i).AsBool()
	if !ok {
		return false, c.typeError(i, "bool")
	}
	return b, nil
}

// Strings accepts a list of strings.
func (c *Call) Strings(i int) ([]string, error) {
	list, ok := c.Arg(i).AsList()
	if !ok {
		return nil, c.typeError(i, "list")
	}
	out := make([]string, len(list))
	for j, e := range list {
		s, ok := e.AsString()
		if !ok {
			return nil, Raise(TagTypeError, "%s() argument %d: element %d must be str", c.Op, i, j)
		}
		out[j] = s
	}
	return out, nil
}

// Object dereferences a reference argument. Null yields nil.
func (c *Call) Object(i int) (any, error) {
	v := c.Arg(i)
	h, ok := v.AsRef()
	if !ok {
		return nil, c.typeError(i, "an object")
	}
	if h.IsNull() {
		return nil, nil
	}
	obj, _, ok := c.rt.Deref(h)
	if !ok {
		return nil, Raise(TagValueError, "%s() argument %d: stale reference %d", c.Op, i, uint32(h))
	}
	return obj, nil
}

// Wrap exports obj as an instance of cls.
func (c *Call) Wrap(cls *Class, obj any) wire.Value { return c.rt.Wrap(cls, obj) }

// ArgAs dereferences argument i as a T. Null yields the zero T.
func ArgAs[T any](c *Call, i int) (T, error) {
	var zero T
	obj, err := c.Object(i)
	if err != nil || obj == nil {
		return zero, err
	}
	t, ok := obj.(T)
	if !ok {
		return zero, Raise(TagTypeError, "%s() argument %d has type %T", c.Op, i, obj)
	}
	return t, nil
}

// SelfAs returns the receiver as a T.
func SelfAs[T any](c *Call) (T, error) {
	t, ok := c.Self.(T)
	if !ok {
		var zero T
		return zero, Raise(TagTypeError, "%s() called on %T", c.Op, c.Self)
	}
	return t, nil
}
