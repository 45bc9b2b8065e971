package foreign

import (
	"errors"
	"fmt"

	"github.com/wasmglue/wasmglue/wire"
)

// Error kinds surfaced to callers. Every *Error unwraps to exactly one of them.
var (
	// ErrInvalidArgument means the guest rejected a supplied argument.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNoMoreElements is the expected end of an iteration.
	ErrNoMoreElements = errors.New("no more elements")
	// ErrIO means a resource operation inside the guest failed.
	ErrIO = errors.New("i/o failure")
	// ErrParse means the guest rejected command line input.
	ErrParse = errors.New("parse failure")
	// ErrOutOfRange means an index or key did not exist in the guest value.
	ErrOutOfRange = errors.New("out of range")
	// ErrUnclassified wraps any guest failure whose kind tag is not recognized,
	// and host-side transport failures during a crossing.
	ErrUnclassified = errors.New("unclassified boundary failure")
	// ErrContract means a value did not have the shape its operation declares.
	ErrContract = errors.New("boundary contract violation")
	// ErrClosed is returned for crossings attempted after Env.Close.
	ErrClosed = errors.New("foreign: environment closed")
)

// Error is a failure raised by a crossing.
type Error struct {
	Kind error
	// Op is "<class>.<operation>" of the failed crossing.
	Op string
	// Tag is the guest kind tag; empty for host-detected failures.
	Tag     string
	Message string
	// Payload is the guest exception object, if the guest attached one.
	Payload wire.Handle
	Cause   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrInvalidArgument, ErrNoMoreElements, ErrParse, ErrOutOfRange:
		return e.Message
	}
	msg := e.Message
	if e.Tag != "" {
		msg = e.Tag + ": " + e.Message
	}
	if e.Op != "" {
		return fmt.Sprintf("%v in %s: %s", e.Kind, e.Op, msg)
	}
	return fmt.Sprintf("%v: %s", e.Kind, msg)
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// SetupError reports a class that could not be resolved. It is fatal: the
// guest module does not match the host proxies built against it.
type SetupError struct {
	Module string
	Name   string
	Err    error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("foreign: cannot resolve %s.%s: %v", e.Module, e.Name, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// ProtocolError is raised (as a panic) when the guest reports a failure that
// cannot be decoded. It indicates a broken guest, never bad user input.
type ProtocolError struct {
	Reason string
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("foreign: malformed error signal %q: %s", e.Reason, e.Detail)
}

func contractErrorf(op string, format string, args ...any) *Error {
	return &Error{Kind: ErrContract, Op: op, Message: fmt.Sprintf(format, args...)}
}
