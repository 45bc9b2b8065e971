package commonscli

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/wasmglue/wasmglue/guest/objects"
	"github.com/wasmglue/wasmglue/wire"
)

// Exported classes.
var (
	OptionClass         = &objects.Class{Name: "Option"}
	OptionBuilderClass  = &objects.Class{Name: "OptionBuilder"}
	OptionsClass        = &objects.Class{Name: "Options"}
	OptionGroupClass    = &objects.Class{Name: "OptionGroup"}
	CommandLineClass    = &objects.Class{Name: "CommandLine"}
	OptionIteratorClass = &objects.Class{Name: "OptionIterator"}
	DefaultParserClass  = &objects.Class{Name: "DefaultParser"}
	GnuParserClass      = &objects.Class{Name: "GnuParser"}
	PosixParserClass    = &objects.Class{Name: "PosixParser"}
	BasicParserClass    = &objects.Class{Name: "BasicParser"}
	HelpFormatterClass  = &objects.Class{Name: "HelpFormatter"}

	MissingArgumentClass    = &objects.Class{Name: TagMissingArgumentException}
	MissingOptionClass      = &objects.Class{Name: TagMissingOptionException}
	UnrecognizedOptionClass = &objects.Class{Name: TagUnrecognizedOptionException}
	AmbiguousOptionClass    = &objects.Class{Name: TagAmbiguousOptionException}
	AlreadySelectedClass    = &objects.Class{Name: TagAlreadySelectedException}
)

func Classes() []*objects.Class {
	return []*objects.Class{
		OptionClass, OptionBuilderClass, OptionsClass, OptionGroupClass,
		CommandLineClass, OptionIteratorClass,
		DefaultParserClass, GnuParserClass, PosixParserClass, BasicParserClass,
		HelpFormatterClass,
		MissingArgumentClass, MissingOptionClass, UnrecognizedOptionClass, AmbiguousOptionClass, AlreadySelectedClass,
	}
}

// Register exports the module into rt.
func Register(rt *objects.Runtime) {
	for _, cls := range Classes() {
		rt.Register(Module, cls)
	}
}

func init() {
	initOption()
	initOptions()
	initCommandLine()
	initParsers()
	initHelpFormatter()
	initExceptions()
}

// method binds fn to receivers of type T.
func method[T any](fn func(c *objects.Call, self T) (wire.Value, error)) objects.Method {
	return func(c *objects.Call) (wire.Value, error) {
		self, err := objects.SelfAs[T](c)
		if err != nil {
			return wire.Null(), err
		}
		return fn(c, self)
	}
}

// chain binds fn and returns the receiver, for fluent operations.
func chain[T any](cls *objects.Class, fn func(c *objects.Call, self T) error) objects.Method {
	return method(func(c *objects.Call, self T) (wire.Value, error) {
		if err := fn(c, self); err != nil {
			return wire.Null(), err
		}
		return c.Wrap(cls, self), nil
	})
}

func optString(s string) wire.Value {
	if s == "" {
		return wire.Null()
	}
	return wire.String(s)
}

func ptrString(s *string) wire.Value {
	if s == nil {
		return wire.Null()
	}
	return wire.String(*s)
}

func optStrings(ss []string) wire.Value {
	if len(ss) == 0 {
		return wire.Null()
	}
	return wire.Strings(ss...)
}

func stringArg(c *objects.Call, i int) (*string, error) {
	s, ok, err := c.OptionalString(i)
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

func intArg(c *objects.Call, i int) (int, error) {
	n, err := c.Int(i)
	return int(n), err
}

func wrapOptions(c *objects.Call, opts []*Option) wire.Value {
	out := make([]wire.Value, len(opts))
	for i, o := range opts {
		out[i] = c.Wrap(OptionClass, o)
	}
	return wire.List(out...)
}

func requireOption(c *objects.Call, i int) (*Option, error) {
	o, err := objects.ArgAs[*Option](c, i)
	if err == nil && o == nil {
		err = objects.Raise(objects.TagValueError, "%s() argument %d must be an Option", c.Op, i)
	}
	return o, err
}

func requireOptions(c *objects.Call, i int) (*Options, error) {
	o, err := objects.ArgAs[*Options](c, i)
	if err == nil && o == nil {
		err = objects.Raise(objects.TagValueError, "%s() argument %d must be Options", c.Op, i)
	}
	return o, err
}

func initOption() {
	OptionClass.New = func(c *objects.Call) (any, error) {
		opt, _, err := c.OptionalString(0)
		if err != nil {
			return nil, err
		}
		long, _, err := c.OptionalString(1)
		if err != nil {
			return nil, err
		}
		hasArg, err := c.Bool(2)
		if err != nil {
			return nil, err
		}
		desc, err := stringArg(c, 3)
		if err != nil {
			return nil, err
		}
		return NewOption(opt, long, hasArg, desc)
	}
	OptionClass.Static = map[string]objects.Method{
		"builder": func(c *objects.Call) (wire.Value, error) {
			opt, _, err := c.OptionalString(0)
			if err != nil {
				return wire.Null(), err
			}
			b, err := NewBuilder(opt)
			if err != nil {
				return wire.Null(), err
			}
			return c.Wrap(OptionBuilderClass, b), nil
		},
	}
	get := func(fn func(o *Option) wire.Value) objects.Method {
		return method(func(_ *objects.Call, o *Option) (wire.Value, error) { return fn(o), nil })
	}
	set := func(fn func(c *objects.Call, o *Option) error) objects.Method {
		return method(func(c *objects.Call, o *Option) (wire.Value, error) { return wire.Null(), fn(c, o) })
	}
	OptionClass.Methods = map[string]objects.Method{
		"get_opt":             get(func(o *Option) wire.Value { return optString(o.Opt) }),
		"get_long_opt":        get(func(o *Option) wire.Value { return optString(o.LongOpt) }),
		"get_key":             get(func(o *Option) wire.Value { return wire.String(o.Key()) }),
		"get_description":     get(func(o *Option) wire.Value { return ptrString(o.Description) }),
		"get_arg_name":        get(func(o *Option) wire.Value { return ptrString(o.ArgName) }),
		"get_args":            get(func(o *Option) wire.Value { return wire.Int(int64(o.NumberOfArgs)) }),
		"has_arg":             get(func(o *Option) wire.Value { return wire.Bool(o.HasArg()) }),
		"has_args":            get(func(o *Option) wire.Value { return wire.Bool(o.HasArgs()) }),
		"has_long_opt":        get(func(o *Option) wire.Value { return wire.Bool(o.HasLongOpt()) }),
		"has_optional_arg":    get(func(o *Option) wire.Value { return wire.Bool(o.OptionalArg) }),
		"has_value_separator": get(func(o *Option) wire.Value { return wire.Bool(o.ValueSep != 0) }),
		"is_required":         get(func(o *Option) wire.Value { return wire.Bool(o.Required) }),
		"get_values":          get(func(o *Option) wire.Value { return optStrings(o.values) }),
		"to_string":           get(func(o *Option) wire.Value { return wire.String(o.String()) }),
		"get_value": get(func(o *Option) wire.Value {
			if len(o.values) == 0 {
				return wire.Null()
			}
			return wire.String(o.values[0])
		}),
		"get_value_separator": get(func(o *Option) wire.Value {
			if o.ValueSep == 0 {
				return wire.Null()
			}
			return wire.String(string(o.ValueSep))
		}),

		"set_description": set(func(c *objects.Call, o *Option) (err error) {
			o.Description, err = stringArg(c, 0)
			return err
		}),
		"set_arg_name": set(func(c *objects.Call, o *Option) (err error) {
			o.ArgName, err = stringArg(c, 0)
			return err
		}),
		"set_args": set(func(c *objects.Call, o *Option) (err error) {
			o.NumberOfArgs, err = intArg(c, 0)
			return err
		}),
		"set_optional_arg": set(func(c *objects.Call, o *Option) (err error) {
			o.OptionalArg, err = c.Bool(0)
			return err
		}),
		"set_required": set(func(c *objects.Call, o *Option) (err error) {
			o.Required, err = c.Bool(0)
			return err
		}),
		"set_value_separator": set(func(c *objects.Call, o *Option) error {
			r, err := charArg(c, 0)
			o.ValueSep = r
			return err
		}),
	}

	b := func(fn func(c *objects.Call, o *Option) error) objects.Method {
		return chain(OptionBuilderClass, func(c *objects.Call, b *Builder) error { return fn(c, &b.option) })
	}
	OptionBuilderClass.Methods = map[string]objects.Method{
		"long_opt": b(func(c *objects.Call, o *Option) (err error) {
			o.LongOpt, _, err = c.OptionalString(0)
			return err
		}),
		"desc": b(func(c *objects.Call, o *Option) (err error) {
			o.Description, err = stringArg(c, 0)
			return err
		}),
		"arg_name": b(func(c *objects.Call, o *Option) (err error) {
			o.ArgName, err = stringArg(c, 0)
			return err
		}),
		"has_arg": b(func(c *objects.Call, o *Option) error {
			has, err := c.Bool(0)
			o.NumberOfArgs = argsUninitialized
			if has {
				o.NumberOfArgs = 1
			}
			return err
		}),
		"has_args": b(func(_ *objects.Call, o *Option) error {
			o.NumberOfArgs = ArgsUnlimited
			return nil
		}),
		"number_of_args": b(func(c *objects.Call, o *Option) (err error) {
			o.NumberOfArgs, err = intArg(c, 0)
			return err
		}),
		"optional_arg": b(func(c *objects.Call, o *Option) (err error) {
			o.OptionalArg, err = c.Bool(0)
			return err
		}),
		"required": b(func(c *objects.Call, o *Option) (err error) {
			o.Required, err = c.Bool(0)
			return err
		}),
		"value_separator": b(func(c *objects.Call, o *Option) (err error) {
			o.ValueSep, err = charArg(c, 0)
			return err
		}),
		"build": method(func(c *objects.Call, b *Builder) (wire.Value, error) {
			o, err := b.Build()
			if err != nil {
				return wire.Null(), err
			}
			return c.Wrap(OptionClass, o), nil
		}),
	}
}

func charArg(c *objects.Call, i int) (rune, error) {
	s, ok, err := c.OptionalString(i)
	if err != nil || !ok {
		return 0, err
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, objects.Raise(objects.TagValueError, "%s() argument %d must be a single character, got %q", c.Op, i, s)
	}
	return r[0], nil
}

func initOptions() {
	OptionsClass.New = func(*objects.Call) (any, error) { return NewOptions(), nil }
	OptionsClass.Methods = map[string]objects.Method{
		"add_option": chain(OptionsClass, func(c *objects.Call, opts *Options) error {
			o, err := requireOption(c, 0)
			if err == nil {
				opts.AddOption(o)
			}
			return err
		}),
		"add_option_group": chain(OptionsClass, func(c *objects.Call, opts *Options) error {
			g, err := objects.ArgAs[*OptionGroup](c, 0)
			if err == nil && g == nil {
				err = objects.Raise(objects.TagValueError, "add_option_group() requires a group")
			}
			if err == nil {
				opts.AddOptionGroup(g)
			}
			return err
		}),
		"get_option": method(func(c *objects.Call, opts *Options) (wire.Value, error) {
			name, err := c.String(0)
			if err != nil {
				return wire.Null(), err
			}
			if o := opts.GetOption(name); o != nil {
				return c.Wrap(OptionClass, o), nil
			}
			return wire.Null(), nil
		}),
		"get_options": method(func(c *objects.Call, opts *Options) (wire.Value, error) {
			return wrapOptions(c, opts.HelpOptions()), nil
		}),
		"has_option": method(func(c *objects.Call, opts *Options) (wire.Value, error) {
			name, err := c.String(0)
			return wire.Bool(err == nil && opts.HasOption(name)), err
		}),
		"has_long_option": method(func(c *objects.Call, opts *Options) (wire.Value, error) {
			name, err := c.String(0)
			return wire.Bool(err == nil && opts.HasLongOption(name)), err
		}),
		"has_short_option": method(func(c *objects.Call, opts *Options) (wire.Value, error) {
			name, err := c.String(0)
			return wire.Bool(err == nil && opts.HasShortOption(name)), err
		}),
		"get_matching_options": method(func(c *objects.Call, opts *Options) (wire.Value, error) {
			prefix, err := c.String(0)
			if err != nil {
				return wire.Null(), err
			}
			return wire.Strings(opts.MatchingOptions(prefix)...), nil
		}),
		"get_required_options": method(func(_ *objects.Call, opts *Options) (wire.Value, error) {
			return wire.Strings(opts.RequiredOptions()...), nil
		}),
		"get_option_groups": method(func(c *objects.Call, opts *Options) (wire.Value, error) {
			groups := opts.Groups()
			out := make([]wire.Value, len(groups))
			for i, g := range groups {
				out[i] = c.Wrap(OptionGroupClass, g)
			}
			return wire.List(out...), nil
		}),
		"get_option_group": method(func(c *objects.Call, opts *Options) (wire.Value, error) {
			o, err := requireOption(c, 0)
			if err != nil {
				return wire.Null(), err
			}
			if g := opts.OptionGroup(o); g != nil {
				return c.Wrap(OptionGroupClass, g), nil
			}
			return wire.Null(), nil
		}),
		"to_string": method(func(_ *objects.Call, opts *Options) (wire.Value, error) {
			return wire.String(opts.String()), nil
		}),
	}

	OptionGroupClass.New = func(*objects.Call) (any, error) { return NewOptionGroup(), nil }
	OptionGroupClass.Methods = map[string]objects.Method{
		"add_option": chain(OptionGroupClass, func(c *objects.Call, g *OptionGroup) error {
			o, err := requireOption(c, 0)
			if err == nil {
				g.AddOption(o)
			}
			return err
		}),
		"get_options": method(func(c *objects.Call, g *OptionGroup) (wire.Value, error) {
			return wrapOptions(c, g.Options()), nil
		}),
		"get_names": method(func(_ *objects.Call, g *OptionGroup) (wire.Value, error) {
			return wire.Strings(g.Names()...), nil
		}),
		"get_selected": method(func(_ *objects.Call, g *OptionGroup) (wire.Value, error) {
			return ptrString(g.Selected()), nil
		}),
		"set_selected": method(func(c *objects.Call, g *OptionGroup) (wire.Value, error) {
			o, err := objects.ArgAs[*Option](c, 0)
			if err != nil {
				return wire.Null(), err
			}
			return wire.Null(), g.SetSelected(o)
		}),
		"is_required": method(func(_ *objects.Call, g *OptionGroup) (wire.Value, error) {
			return wire.Bool(g.Required), nil
		}),
		"set_required": method(func(c *objects.Call, g *OptionGroup) (wire.Value, error) {
			req, err := c.Bool(0)
			g.Required = req
			return wire.Null(), err
		}),
		"to_string": method(func(_ *objects.Call, g *OptionGroup) (wire.Value, error) {
			return wire.String(g.String()), nil
		}),
	}
}

func initCommandLine() {
	named := func(fn func(cmd *CommandLine, name string) wire.Value) objects.Method {
		return method(func(c *objects.Call, cmd *CommandLine) (wire.Value, error) {
			name, err := c.String(0)
			if err != nil {
				return wire.Null(), err
			}
			return fn(cmd, name), nil
		})
	}
	CommandLineClass.Methods = map[string]objects.Method{
		"get_args": method(func(_ *objects.Call, cmd *CommandLine) (wire.Value, error) {
			return wire.Strings(cmd.Args()...), nil
		}),
		"get_options": method(func(c *objects.Call, cmd *CommandLine) (wire.Value, error) {
			return wrapOptions(c, cmd.Options()), nil
		}),
		"iterator": method(func(c *objects.Call, cmd *CommandLine) (wire.Value, error) {
			return c.Wrap(OptionIteratorClass, &OptionIterator{options: cmd.Options()}), nil
		}),
		"has_option": named(func(cmd *CommandLine, name string) wire.Value {
			return wire.Bool(cmd.HasOption(name))
		}),
		"get_option_value": named(func(cmd *CommandLine, name string) wire.Value {
			return ptrString(cmd.OptionValue(name))
		}),
		"get_option_values": named(func(cmd *CommandLine, name string) wire.Value {
			return optStrings(cmd.OptionValues(name))
		}),
		"get_option_properties": named(func(cmd *CommandLine, name string) wire.Value {
			props := cmd.OptionProperties(name)
			pairs := make([]wire.Pair, 0, props.Len())
			for p := props.Oldest(); p != nil; p = p.Next() {
				pairs = append(pairs, wire.Pair{Key: p.Key, Value: wire.String(p.Value)})
			}
			return wire.Map(pairs...)
		}),
	}
	OptionIteratorClass.Methods = map[string]objects.Method{
		"has_next": method(func(_ *objects.Call, it *OptionIterator) (wire.Value, error) {
			return wire.Bool(it.HasNext()), nil
		}),
		"next": method(func(c *objects.Call, it *OptionIterator) (wire.Value, error) {
			o, err := it.Next()
			if err != nil {
				return wire.Null(), err
			}
			return c.Wrap(OptionClass, o), nil
		}),
	}
}

func propertiesArg(c *objects.Call, i int) (*orderedmap.OrderedMap[string, string], error) {
	v := c.Arg(i)
	if v.IsNull() {
		return nil, nil
	}
	pairs, ok := v.AsMap()
	if !ok {
		return nil, objects.Raise(objects.TagTypeError, "%s() argument %d must be a map", c.Op, i)
	}
	props := orderedmap.New[string, string]()
	for _, p := range pairs {
		s, ok := p.Value.AsString()
		if !ok {
			return nil, objects.Raise(objects.TagTypeError, "%s() property %q must be str", c.Op, p.Key)
		}
		props.Set(p.Key, s)
	}
	return props, nil
}

// parseMethod exposes parse(options, arguments, properties, stop_at_non_option).
func parseMethod(c *objects.Call, p CommandLineParser) (wire.Value, error) {
	options, err := requireOptions(c, 0)
	if err != nil {
		return wire.Null(), err
	}
	args, err := c.Strings(1)
	if err != nil {
		return wire.Null(), err
	}
	props, err := propertiesArg(c, 2)
	if err != nil {
		return wire.Null(), err
	}
	var stop bool
	if !c.Arg(3).IsNull() {
		if stop, err = c.Bool(3); err != nil {
			return wire.Null(), err
		}
	}
	cmd, err := p.Parse(options, args, props, stop)
	if err != nil {
		return wire.Null(), err
	}
	return c.Wrap(CommandLineClass, cmd), nil
}

func initParsers() {
	DefaultParserClass.New = func(c *objects.Call) (any, error) {
		partial := true
		if !c.Arg(0).IsNull() {
			var err error
			if partial, err = c.Bool(0); err != nil {
				return nil, err
			}
		}
		return &DefaultParser{AllowPartialMatching: partial}, nil
	}
	GnuParserClass.New = func(*objects.Call) (any, error) { return GnuParser(), nil }
	PosixParserClass.New = func(*objects.Call) (any, error) { return PosixParser(), nil }
	BasicParserClass.New = func(*objects.Call) (any, error) { return BasicParser(), nil }

	for _, cls := range []*objects.Class{DefaultParserClass, GnuParserClass, PosixParserClass, BasicParserClass} {
		cls.Methods = map[string]objects.Method{
			"parse": method(parseMethod),
		}
	}
}

func initHelpFormatter() {
	intField := func(field func(h *HelpFormatter) *int) (get, set objects.Method) {
		get = method(func(_ *objects.Call, h *HelpFormatter) (wire.Value, error) {
			return wire.Int(int64(*field(h))), nil
		})
		set = method(func(c *objects.Call, h *HelpFormatter) (wire.Value, error) {
			n, err := intArg(c, 0)
			if err == nil {
				*field(h) = n
			}
			return wire.Null(), err
		})
		return get, set
	}
	stringField := func(field func(h *HelpFormatter) *string) (get, set objects.Method) {
		get = method(func(_ *objects.Call, h *HelpFormatter) (wire.Value, error) {
			return wire.String(*field(h)), nil
		})
		set = method(func(c *objects.Call, h *HelpFormatter) (wire.Value, error) {
			s, err := c.String(0)
			if err == nil {
				*field(h) = s
			}
			return wire.Null(), err
		})
		return get, set
	}

	methods := map[string]objects.Method{
		"render_usage": method(func(c *objects.Call, h *HelpFormatter) (wire.Value, error) {
			width, err := intArg(c, 0)
			if err != nil {
				return wire.Null(), err
			}
			app, err := c.String(1)
			if err != nil {
				return wire.Null(), err
			}
			options, err := requireOptions(c, 2)
			if err != nil {
				return wire.Null(), err
			}
			return wire.String(h.RenderUsage(width, app, options)), nil
		}),
		"render_options": method(func(c *objects.Call, h *HelpFormatter) (wire.Value, error) {
			width, err := intArg(c, 0)
			if err != nil {
				return wire.Null(), err
			}
			options, err := requireOptions(c, 1)
			if err != nil {
				return wire.Null(), err
			}
			left, err := intArg(c, 2)
			if err != nil {
				return wire.Null(), err
			}
			desc, err := intArg(c, 3)
			if err != nil {
				return wire.Null(), err
			}
			var sb strings.Builder
			h.RenderOptions(&sb, width, options, left, desc)
			return wire.String(sb.String()), nil
		}),
		"render_wrapped_text": method(func(c *objects.Call, h *HelpFormatter) (wire.Value, error) {
			width, err := intArg(c, 0)
			if err != nil {
				return wire.Null(), err
			}
			tab, err := intArg(c, 1)
			if err != nil {
				return wire.Null(), err
			}
			text, err := c.String(2)
			if err != nil {
				return wire.Null(), err
			}
			var sb strings.Builder
			h.RenderWrappedText(&sb, width, tab, text)
			return wire.String(sb.String()), nil
		}),
		"render_help": method(func(c *objects.Call, h *HelpFormatter) (wire.Value, error) {
			width, err := intArg(c, 0)
			if err != nil {
				return wire.Null(), err
			}
			syntax, err := c.String(1)
			if err != nil {
				return wire.Null(), err
			}
			header, err := stringArg(c, 2)
			if err != nil {
				return wire.Null(), err
			}
			options, err := requireOptions(c, 3)
			if err != nil {
				return wire.Null(), err
			}
			footer, err := stringArg(c, 4)
			if err != nil {
				return wire.Null(), err
			}
			auto, err := c.Bool(5)
			if err != nil {
				return wire.Null(), err
			}
			out, err := h.RenderHelp(width, syntax, header, options, footer, auto)
			return wire.String(out), err
		}),
	}
	for name, field := range map[string]func(h *HelpFormatter) *int{
		"width":        func(h *HelpFormatter) *int { return &h.Width },
		"left_padding": func(h *HelpFormatter) *int { return &h.LeftPadding },
		"desc_padding": func(h *HelpFormatter) *int { return &h.DescPadding },
	} {
		methods["get_"+name], methods["set_"+name] = intField(field)
	}
	for name, field := range map[string]func(h *HelpFormatter) *string{
		"syntax_prefix":      func(h *HelpFormatter) *string { return &h.SyntaxPrefix },
		"new_line":           func(h *HelpFormatter) *string { return &h.NewLine },
		"opt_prefix":         func(h *HelpFormatter) *string { return &h.OptPrefix },
		"long_opt_prefix":    func(h *HelpFormatter) *string { return &h.LongOptPrefix },
		"arg_name":           func(h *HelpFormatter) *string { return &h.ArgName },
		"long_opt_separator": func(h *HelpFormatter) *string { return &h.LongOptSeparator },
	} {
		methods["get_"+name], methods["set_"+name] = stringField(field)
	}
	HelpFormatterClass.New = func(*objects.Call) (any, error) { return NewHelpFormatter(), nil }
	HelpFormatterClass.Methods = methods
}

func initExceptions() {
	MissingArgumentClass.Methods = map[string]objects.Method{
		"get_option": method(func(c *objects.Call, e *MissingArgumentError) (wire.Value, error) {
			return c.Wrap(OptionClass, e.Option), nil
		}),
	}
	MissingOptionClass.Methods = map[string]objects.Method{
		"get_missing_options": method(func(_ *objects.Call, e *MissingOptionError) (wire.Value, error) {
			return wire.Strings(e.Missing...), nil
		}),
	}
	UnrecognizedOptionClass.Methods = map[string]objects.Method{
		"get_option": method(func(_ *objects.Call, e *UnrecognizedOptionError) (wire.Value, error) {
			return wire.String(e.Option), nil
		}),
	}
	AmbiguousOptionClass.Methods = map[string]objects.Method{
		"get_option": method(func(_ *objects.Call, e *AmbiguousOptionError) (wire.Value, error) {
			return wire.String(e.Option), nil
		}),
		"get_matching_options": method(func(_ *objects.Call, e *AmbiguousOptionError) (wire.Value, error) {
			return wire.Strings(e.Matching...), nil
		}),
	}
	AlreadySelectedClass.Methods = map[string]objects.Method{
		"get_option": method(func(c *objects.Call, e *AlreadySelectedError) (wire.Value, error) {
			return c.Wrap(OptionClass, e.Option), nil
		}),
		"get_option_group": method(func(c *objects.Call, e *AlreadySelectedError) (wire.Value, error) {
			return c.Wrap(OptionGroupClass, e.Group), nil
		}),
	}
}
