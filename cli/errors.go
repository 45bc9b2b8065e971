package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/wasmglue/wasmglue/foreign"
	"github.com/wasmglue/wasmglue/wire"
)

// Guest tags of parse failures.
const (
	TagParse              = "ParseException"
	TagMissingArgument    = "MissingArgumentException"
	TagMissingOption      = "MissingOptionException"
	TagUnrecognizedOption = "UnrecognizedOptionException"
	TagAmbiguousOption    = "AmbiguousOptionException"
	TagAlreadySelected    = "AlreadySelectedException"
)

// ErrNoDetail is returned by ParseError accessors the failure does not
// carry.
var ErrNoDetail = errors.New("cli: parse failure carries no such detail")

// ParseError is a rejected command line. It matches foreign.ErrParse, and
// its accessors read the details the guest attached to the failure.
type ParseError struct {
	Err *foreign.Error
	env *foreign.Env
}

// parseError promotes a foreign parse failure to a *ParseError and returns
// every other error unchanged.
func parseError(env *foreign.Env, err error) error {
	var fe *foreign.Error
	if err == nil || !errors.Is(err, foreign.ErrParse) || !errors.As(err, &fe) {
		return err
	}
	return &ParseError{Err: fe, env: env}
}

func (e *ParseError) Error() string { return e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// Tag names the failure, one of the Tag constants.
func (e *ParseError) Tag() string { return e.Err.Tag }

func (e *ParseError) payload(ctx context.Context, classes ...*foreign.Class) (*foreign.Object, error) {
	if e.Err.Payload == wire.NullHandle {
		return nil, fmt.Errorf("%w: %s has no payload", ErrNoDetail, e.Err.Tag)
	}
	for _, cls := range classes {
		if cls.Name == e.Err.Tag {
			return foreign.AdoptHandle(ctx, e.env, cls, e.Err.Payload, func(o *foreign.Object) *foreign.Object { return o }), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoDetail, e.Err.Tag)
}

// Option returns the option that was missing its argument or conflicted
// with its group.
func (e *ParseError) Option(ctx context.Context) (*Option, error) {
	obj, err := e.payload(ctx, MissingArgumentClass, AlreadySelectedClass)
	if err != nil {
		return nil, err
	}
	v, err := obj.Call(ctx, excOption)
	if err != nil {
		return nil, err
	}
	return adoptOption(ctx, e.env, v)
}

// OptionName returns the token that was not recognized or was ambiguous.
func (e *ParseError) OptionName(ctx context.Context) (string, error) {
	obj, err := e.payload(ctx, UnrecognizedOptionClass, AmbiguousOptionClass)
	if err != nil {
		return "", err
	}
	return foreign.Decode(foreign.AsString)(obj.Call(ctx, excOptionName))
}

// MissingOptions names the required options and groups that were not given.
func (e *ParseError) MissingOptions(ctx context.Context) ([]string, error) {
	obj, err := e.payload(ctx, MissingOptionClass)
	if err != nil {
		return nil, err
	}
	return foreign.Decode(foreign.AsStrings)(obj.Call(ctx, excMissingOptions))
}

// MatchingOptions lists the long options an ambiguous token could mean.
func (e *ParseError) MatchingOptions(ctx context.Context) ([]string, error) {
	obj, err := e.payload(ctx, AmbiguousOptionClass)
	if err != nil {
		return nil, err
	}
	return foreign.Decode(foreign.AsStrings)(obj.Call(ctx, excMatchingOptions))
}

// OptionGroup returns the group whose selection was violated.
func (e *ParseError) OptionGroup(ctx context.Context) (*OptionGroup, error) {
	obj, err := e.payload(ctx, AlreadySelectedClass)
	if err != nil {
		return nil, err
	}
	v, err := obj.Call(ctx, excOptionGroup)
	if err != nil {
		return nil, err
	}
	return foreign.Adopt(ctx, e.env, OptionGroupClass, v, wrapOptionGroup)
}
