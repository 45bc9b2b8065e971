package foreign

import (
	"context"
	"errors"
	"iter"
	"sync"

	"github.com/wasmglue/wasmglue/wire"
)

// StepState is the outcome of one Advance.
type StepState uint8

const (
	StepValue StepState = iota
	StepExhausted
	StepFailed
)

func (s StepState) String() string {
	switch s {
	case StepValue:
		return "value"
	case StepExhausted:
		return "exhausted"
	default:
		return "failed"
	}
}

// Step is one iteration result. Err is set for StepExhausted (the end of
// sequence error) and StepFailed.
type Step[T any] struct {
	State StepState
	Value T
	Err   error
}

// Iterator adapts a guest iterator object to host iteration. It starts READY
// and becomes EXHAUSTED when the guest signals the end of the sequence; that
// state is terminal and later calls do not cross. An iterator cannot be
// restarted: ask its source for a new one.
type Iterator[T any] struct {
	obj     *Object
	hasNext *Op
	next    *Op
	adopt   func(context.Context, wire.Value) (T, error)

	mu  sync.Mutex
	end error
}

// NewIterator returns an iterator over obj, which answers hasNext with a bool
// and next with an element converted by adopt.
func NewIterator[T any](obj *Object, hasNext, next *Op, adopt func(context.Context, wire.Value) (T, error)) *Iterator[T] {
	return &Iterator[T]{obj: obj, hasNext: hasNext, next: next, adopt: adopt}
}

func (it *Iterator[T]) ForeignHandle() wire.Handle { return it.obj.ForeignHandle() }

// Exhausted reports whether the guest has signalled the end of the sequence.
func (it *Iterator[T]) Exhausted() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.end != nil
}

// HasNext reports whether Next would produce an element. It never consumes one.
func (it *Iterator[T]) HasNext(ctx context.Context) (bool, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.end != nil {
		return false, nil
	}
	return Decode(AsBool)(it.obj.Call(ctx, it.hasNext))
}

// Next returns the next element, or an ErrNoMoreElements error once the
// sequence is over. Any other failure leaves the iterator READY.
func (it *Iterator[T]) Next(ctx context.Context) (T, error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	var zero T
	if it.end != nil {
		return zero, it.end
	}
	v, err := it.obj.Call(ctx, it.next)
	if err != nil {
		if errors.Is(err, ErrNoMoreElements) {
			it.end = err
		}
		return zero, err
	}
	return it.adopt(ctx, v)
}

// Advance is Next as a tri-state result.
func (it *Iterator[T]) Advance(ctx context.Context) Step[T] {
	v, err := it.Next(ctx)
	switch {
	case err == nil:
		return Step[T]{State: StepValue, Value: v}
	case errors.Is(err, ErrNoMoreElements):
		return Step[T]{State: StepExhausted, Err: err}
	default:
		return Step[T]{State: StepFailed, Err: err}
	}
}

// All yields the remaining elements. A failure is yielded once with the zero
// element and ends the sequence; exhaustion ends it silently.
func (it *Iterator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			step := it.Advance(ctx)
			switch step.State {
			case StepExhausted:
				return
			case StepFailed:
				yield(step.Value, step.Err)
				return
			}
			if !yield(step.Value, nil) {
				return
			}
		}
	}
}

// Collect drains the iterator.
func (it *Iterator[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for v, err := range it.All(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}
