package cli

import (
	"context"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/wasmglue/wasmglue/foreign"
	"github.com/wasmglue/wasmglue/wire"
)

// Options is the set of options a parser recognizes.
type Options struct{ obj *foreign.Object }

func wrapOptions(obj *foreign.Object) *Options { return &Options{obj: obj} }

func (o *Options) ForeignHandle() wire.Handle { return o.obj.ForeignHandle() }

func NewOptions(ctx context.Context, env *foreign.Env) (*Options, error) {
	return foreign.Construct(ctx, env, OptionsClass, wrapOptions)
}

func adoptOption(ctx context.Context, env *foreign.Env, v wire.Value) (*Option, error) {
	return foreign.Adopt(ctx, env, OptionClass, v, wrapOption)
}

func adoptOptions(ctx context.Context, env *foreign.Env, v wire.Value, err error) ([]*Option, error) {
	if err != nil {
		return nil, err
	}
	return foreign.AdoptList(ctx, env, OptionClass, v, wrapOption)
}

func (o *Options) chain(ctx context.Context, op *foreign.Op, arg any) (*Options, error) {
	v, err := o.obj.Call(ctx, op, arg)
	if err != nil {
		return nil, err
	}
	return foreign.Adopt(ctx, o.obj.Env(), OptionsClass, v, wrapOptions)
}

// AddOption adds opt and returns the receiver. A later option with the same
// key replaces an earlier one.
func (o *Options) AddOption(ctx context.Context, opt *Option) (*Options, error) {
	return o.chain(ctx, optionsAddOption, opt)
}

// AddOptionGroup adds every option of g, marked as mutually exclusive.
func (o *Options) AddOptionGroup(ctx context.Context, g *OptionGroup) (*Options, error) {
	return o.chain(ctx, optionsAddOptionGroup, g)
}

// Option looks an option up by short or long name, with or without leading
// hyphens. It returns nil when there is no such option.
func (o *Options) Option(ctx context.Context, name string) (*Option, error) {
	v, err := o.obj.Call(ctx, optionsGetOption, name)
	if err != nil {
		return nil, err
	}
	return adoptOption(ctx, o.obj.Env(), v)
}

// Options returns every declared option.
func (o *Options) Options(ctx context.Context) ([]*Option, error) {
	v, err := o.obj.Call(ctx, optionsGetOptions)
	return adoptOptions(ctx, o.obj.Env(), v, err)
}

func (o *Options) has(ctx context.Context, op *foreign.Op, name string) (bool, error) {
	return foreign.Decode(foreign.AsBool)(o.obj.Call(ctx, op, name))
}

func (o *Options) HasOption(ctx context.Context, name string) (bool, error) {
	return o.has(ctx, optionsHasOption, name)
}

func (o *Options) HasLongOption(ctx context.Context, name string) (bool, error) {
	return o.has(ctx, optionsHasLongOption, name)
}

func (o *Options) HasShortOption(ctx context.Context, name string) (bool, error) {
	return o.has(ctx, optionsHasShortOption, name)
}

// MatchingOptions returns the long names starting with prefix, or just
// prefix when it is an exact long name.
func (o *Options) MatchingOptions(ctx context.Context, prefix string) ([]string, error) {
	return foreign.Decode(foreign.AsStrings)(o.obj.Call(ctx, optionsMatching, prefix))
}

// RequiredOptions names the required options and groups.
func (o *Options) RequiredOptions(ctx context.Context) ([]string, error) {
	return foreign.Decode(foreign.AsStrings)(o.obj.Call(ctx, optionsRequired))
}

func (o *Options) OptionGroups(ctx context.Context) ([]*OptionGroup, error) {
	v, err := o.obj.Call(ctx, optionsGroups)
	if err != nil {
		return nil, err
	}
	return foreign.AdoptList(ctx, o.obj.Env(), OptionGroupClass, v, wrapOptionGroup)
}

// OptionGroup returns the group opt belongs to, or nil.
func (o *Options) OptionGroup(ctx context.Context, opt *Option) (*OptionGroup, error) {
	v, err := o.obj.Call(ctx, optionsGroup, opt)
	if err != nil {
		return nil, err
	}
	return foreign.Adopt(ctx, o.obj.Env(), OptionGroupClass, v, wrapOptionGroup)
}

func (o *Options) Describe(ctx context.Context) (string, error) {
	return foreign.Decode(foreign.AsString)(o.obj.Call(ctx, optionsToString))
}

// OptionGroup is a set of mutually exclusive options.
type OptionGroup struct{ obj *foreign.Object }

func wrapOptionGroup(obj *foreign.Object) *OptionGroup { return &OptionGroup{obj: obj} }

func (g *OptionGroup) ForeignHandle() wire.Handle { return g.obj.ForeignHandle() }

func NewOptionGroup(ctx context.Context, env *foreign.Env) (*OptionGroup, error) {
	return foreign.Construct(ctx, env, OptionGroupClass, wrapOptionGroup)
}

// AddOption adds opt and returns the receiver.
func (g *OptionGroup) AddOption(ctx context.Context, opt *Option) (*OptionGroup, error) {
	v, err := g.obj.Call(ctx, groupAddOption, opt)
	if err != nil {
		return nil, err
	}
	return foreign.Adopt(ctx, g.obj.Env(), OptionGroupClass, v, wrapOptionGroup)
}

func (g *OptionGroup) Options(ctx context.Context) ([]*Option, error) {
	v, err := g.obj.Call(ctx, groupOptions)
	return adoptOptions(ctx, g.obj.Env(), v, err)
}

// Names returns the keys of the group's options.
func (g *OptionGroup) Names(ctx context.Context) ([]string, error) {
	return foreign.Decode(foreign.AsStrings)(g.obj.Call(ctx, groupNames))
}

// Selected returns the key of the option chosen by the last parse; ok is
// false when none was.
func (g *OptionGroup) Selected(ctx context.Context) (key string, ok bool, err error) {
	v, err := g.obj.Call(ctx, groupSelected)
	if err != nil {
		return "", false, err
	}
	return foreign.AsOptionalString(v)
}

// SetSelected records opt as chosen; nil clears the selection. Choosing a
// second option fails with a *ParseError.
func (g *OptionGroup) SetSelected(ctx context.Context, opt *Option) error {
	err := foreign.Discard(g.obj.Call(ctx, groupSetSelected, opt))
	return parseError(g.obj.Env(), err)
}

func (g *OptionGroup) IsRequired(ctx context.Context) (bool, error) {
	return foreign.Decode(foreign.AsBool)(g.obj.Call(ctx, groupIsRequired))
}

func (g *OptionGroup) SetRequired(ctx context.Context, required bool) error {
	return foreign.Discard(g.obj.Call(ctx, groupSetRequired, required))
}

func (g *OptionGroup) Describe(ctx context.Context) (string, error) {
	return foreign.Decode(foreign.AsString)(g.obj.Call(ctx, groupToString))
}

// CommandLine is the result of a parse.
type CommandLine struct{ obj *foreign.Object }

func wrapCommandLine(obj *foreign.Object) *CommandLine { return &CommandLine{obj: obj} }

func (c *CommandLine) ForeignHandle() wire.Handle { return c.obj.ForeignHandle() }

// Args returns the arguments that were not options, in order.
func (c *CommandLine) Args(ctx context.Context) ([]string, error) {
	return foreign.Decode(foreign.AsStrings)(c.obj.Call(ctx, cmdArgs))
}

// Options returns the options that were given, in the order they appeared,
// with their values.
func (c *CommandLine) Options(ctx context.Context) ([]*Option, error) {
	v, err := c.obj.Call(ctx, cmdOptions)
	return adoptOptions(ctx, c.obj.Env(), v, err)
}

// Iterator returns a fresh iterator over Options.
func (c *CommandLine) Iterator(ctx context.Context) (*foreign.Iterator[*Option], error) {
	v, err := c.obj.Call(ctx, cmdIterator)
	if err != nil {
		return nil, err
	}
	env := c.obj.Env()
	return foreign.Adopt(ctx, env, OptionIteratorClass, v, func(obj *foreign.Object) *foreign.Iterator[*Option] {
		return foreign.NewIterator(obj, iteratorHasNext, iteratorNext, func(ctx context.Context, v wire.Value) (*Option, error) {
			return adoptOption(ctx, env, v)
		})
	})
}

// HasOption reports whether the option named by short or long name was
// given.
func (c *CommandLine) HasOption(ctx context.Context, name string) (bool, error) {
	return foreign.Decode(foreign.AsBool)(c.obj.Call(ctx, cmdHasOption, name))
}

// OptionValue returns the first value of the named option; ok is false
// when the option was not given or has no value.
func (c *CommandLine) OptionValue(ctx context.Context, name string) (s string, ok bool, err error) {
	v, err := c.obj.Call(ctx, cmdOptionValue, name)
	if err != nil {
		return "", false, err
	}
	return foreign.AsOptionalString(v)
}

// OptionValues returns every value of the named option, or nil.
func (c *CommandLine) OptionValues(ctx context.Context, name string) ([]string, error) {
	return foreign.Decode(foreign.AsStrings)(c.obj.Call(ctx, cmdOptionValues, name))
}

// OptionProperties reads the values of a key=value option, such as -D, as
// properties. A value without a separator maps to "true".
func (c *CommandLine) OptionProperties(ctx context.Context, name string) (*orderedmap.OrderedMap[string, string], error) {
	return foreign.Decode(foreign.AsStringMap)(c.obj.Call(ctx, cmdOptionProperties, name))
}
