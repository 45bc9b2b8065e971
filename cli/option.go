package cli

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/wasmglue/wasmglue/foreign"
	"github.com/wasmglue/wasmglue/wire"
)

// ArgsUnlimited as a number of arguments lets an option take any number of
// values.
const ArgsUnlimited = -2

// Option declares one command line option. Options returned by a
// CommandLine carry the values parsed for them; declared options never do.
type Option struct{ obj *foreign.Object }

func wrapOption(obj *foreign.Object) *Option { return &Option{obj: obj} }

func (o *Option) ForeignHandle() wire.Handle { return o.obj.ForeignHandle() }

// nullable marshals "" as null.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func char(r rune) any {
	if r == 0 {
		return nil
	}
	return string(r)
}

func orEmpty(v wire.Value) (string, error) {
	s, _, err := foreign.AsOptionalString(v)
	return s, err
}

func asChar(v wire.Value) (rune, error) {
	s, ok, err := foreign.AsOptionalString(v)
	if err != nil || !ok {
		return 0, err
	}
	r, n := utf8.DecodeRuneInString(s)
	if n != len(s) {
		return 0, &foreign.Error{Kind: foreign.ErrContract, Message: fmt.Sprintf("%q is not a single character", s)}
	}
	return r, nil
}

// NewOption declares an option with a short name, a long name or both; an
// empty name or description means none.
func NewOption(ctx context.Context, env *foreign.Env, opt, longOpt string, hasArg bool, description string) (*Option, error) {
	return foreign.Construct(ctx, env, OptionClass, wrapOption, nullable(opt), nullable(longOpt), hasArg, nullable(description))
}

func (o *Option) str(ctx context.Context, op *foreign.Op) (string, error) {
	return foreign.Decode(orEmpty)(o.obj.Call(ctx, op))
}

func (o *Option) flag(ctx context.Context, op *foreign.Op) (bool, error) {
	return foreign.Decode(foreign.AsBool)(o.obj.Call(ctx, op))
}

// Opt is the short name, or "" when the option only has a long name.
func (o *Option) Opt(ctx context.Context) (string, error)     { return o.str(ctx, optionOpt) }
func (o *Option) LongOpt(ctx context.Context) (string, error) { return o.str(ctx, optionLongOpt) }

// Key is the short name if there is one, else the long name.
func (o *Option) Key(ctx context.Context) (string, error) { return o.str(ctx, optionKey) }

func (o *Option) Description(ctx context.Context) (string, error) {
	return o.str(ctx, optionDescription)
}

func (o *Option) ArgName(ctx context.Context) (string, error) { return o.str(ctx, optionArgName) }

// Args is the number of values the option takes: -1 when unset, or
// ArgsUnlimited.
func (o *Option) Args(ctx context.Context) (int32, error) {
	return foreign.Decode(foreign.AsInt32)(o.obj.Call(ctx, optionArgs))
}

func (o *Option) HasArg(ctx context.Context) (bool, error)     { return o.flag(ctx, optionHasArg) }
func (o *Option) HasArgs(ctx context.Context) (bool, error)    { return o.flag(ctx, optionHasArgs) }
func (o *Option) HasLongOpt(ctx context.Context) (bool, error) { return o.flag(ctx, optionHasLongOpt) }

func (o *Option) HasOptionalArg(ctx context.Context) (bool, error) {
	return o.flag(ctx, optionHasOptionalArg)
}

func (o *Option) HasValueSeparator(ctx context.Context) (bool, error) {
	return o.flag(ctx, optionHasValueSeparator)
}

func (o *Option) IsRequired(ctx context.Context) (bool, error) { return o.flag(ctx, optionIsRequired) }

// Values returns the parsed values, or nil when there are none.
func (o *Option) Values(ctx context.Context) ([]string, error) {
	return foreign.Decode(foreign.AsStrings)(o.obj.Call(ctx, optionValues))
}

// Value returns the first parsed value; ok is false when there is none.
func (o *Option) Value(ctx context.Context) (s string, ok bool, err error) {
	v, err := o.obj.Call(ctx, optionValue)
	if err != nil {
		return "", false, err
	}
	return foreign.AsOptionalString(v)
}

// ValueSeparator returns the separator splitting one argument into values,
// or 0.
func (o *Option) ValueSeparator(ctx context.Context) (rune, error) {
	return foreign.Decode(asChar)(o.obj.Call(ctx, optionValueSeparator))
}

func (o *Option) Describe(ctx context.Context) (string, error) {
	return foreign.Decode(foreign.AsString)(o.obj.Call(ctx, optionToString))
}

func (o *Option) SetDescription(ctx context.Context, desc string) error {
	return foreign.Discard(o.obj.Call(ctx, optionSetDescription, nullable(desc)))
}

func (o *Option) SetArgName(ctx context.Context, name string) error {
	return foreign.Discard(o.obj.Call(ctx, optionSetArgName, nullable(name)))
}

func (o *Option) SetArgs(ctx context.Context, n int32) error {
	return foreign.Discard(o.obj.Call(ctx, optionSetArgs, n))
}

func (o *Option) SetOptionalArg(ctx context.Context, b bool) error {
	return foreign.Discard(o.obj.Call(ctx, optionSetOptionalArg, b))
}

func (o *Option) SetRequired(ctx context.Context, b bool) error {
	return foreign.Discard(o.obj.Call(ctx, optionSetRequired, b))
}

// SetValueSeparator sets the value separator; 0 removes it.
func (o *Option) SetValueSeparator(ctx context.Context, sep rune) error {
	return foreign.Discard(o.obj.Call(ctx, optionSetValueSeparator, char(sep)))
}

// OptionBuilder accumulates option settings. Every setter returns the same
// builder.
type OptionBuilder struct{ obj *foreign.Object }

func wrapBuilder(obj *foreign.Object) *OptionBuilder { return &OptionBuilder{obj: obj} }

func (b *OptionBuilder) ForeignHandle() wire.Handle { return b.obj.ForeignHandle() }

// Builder starts an option with short name opt; "" builds a long-only option.
func Builder(ctx context.Context, env *foreign.Env, opt string) (*OptionBuilder, error) {
	v, err := foreign.CallStatic(ctx, env, OptionClass, optionBuilder, nullable(opt))
	if err != nil {
		return nil, err
	}
	return foreign.Adopt(ctx, env, OptionBuilderClass, v, wrapBuilder)
}

func (b *OptionBuilder) set(ctx context.Context, op *foreign.Op, args ...any) (*OptionBuilder, error) {
	v, err := b.obj.Call(ctx, op, args...)
	if err != nil {
		return nil, err
	}
	return foreign.Adopt(ctx, b.obj.Env(), OptionBuilderClass, v, wrapBuilder)
}

func (b *OptionBuilder) LongOpt(ctx context.Context, name string) (*OptionBuilder, error) {
	return b.set(ctx, builderLongOpt, nullable(name))
}

func (b *OptionBuilder) Desc(ctx context.Context, desc string) (*OptionBuilder, error) {
	return b.set(ctx, builderDesc, nullable(desc))
}

func (b *OptionBuilder) ArgName(ctx context.Context, name string) (*OptionBuilder, error) {
	return b.set(ctx, builderArgName, nullable(name))
}

func (b *OptionBuilder) HasArg(ctx context.Context, has bool) (*OptionBuilder, error) {
	return b.set(ctx, builderHasArg, has)
}

// HasArgs lets the option take any number of values.
func (b *OptionBuilder) HasArgs(ctx context.Context) (*OptionBuilder, error) {
	return b.set(ctx, builderHasArgs)
}

func (b *OptionBuilder) NumberOfArgs(ctx context.Context, n int32) (*OptionBuilder, error) {
	return b.set(ctx, builderNumberOfArgs, n)
}

func (b *OptionBuilder) OptionalArg(ctx context.Context, optional bool) (*OptionBuilder, error) {
	return b.set(ctx, builderOptionalArg, optional)
}

func (b *OptionBuilder) Required(ctx context.Context, required bool) (*OptionBuilder, error) {
	return b.set(ctx, builderRequired, required)
}

func (b *OptionBuilder) ValueSeparator(ctx context.Context, sep rune) (*OptionBuilder, error) {
	return b.set(ctx, builderValueSeparator, char(sep))
}

// Build validates the settings and returns a new option. The builder can be
// built again.
func (b *OptionBuilder) Build(ctx context.Context) (*Option, error) {
	v, err := b.obj.Call(ctx, builderBuild)
	if err != nil {
		return nil, err
	}
	return foreign.Adopt(ctx, b.obj.Env(), OptionClass, v, wrapOption)
}
