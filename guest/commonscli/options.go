package commonscli

import (
	"slices"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/wasmglue/wasmglue/guest/objects"
)

// Options is an ordered set of option declarations.
type Options struct {
	short *orderedmap.OrderedMap[string, *Option]
	long  *orderedmap.OrderedMap[string, *Option]
	// required holds option keys and *OptionGroup values.
	required []any
	groups   map[string]*OptionGroup
}

func NewOptions() *Options {
	return &Options{
		short:  orderedmap.New[string, *Option](),
		long:   orderedmap.New[string, *Option](),
		groups: make(map[string]*OptionGroup),
	}
}

func (o *Options) AddOption(opt *Option) {
	key := opt.Key()
	if opt.LongOpt != "" {
		o.long.Set(opt.LongOpt, opt)
	}
	if opt.Required {
		o.required = slices.DeleteFunc(o.required, func(r any) bool { return r == key })
		o.required = append(o.required, key)
	}
	o.short.Set(key, opt)
}

// AddOptionGroup adds the group and its options. Members of a group are
// never individually required.
func (o *Options) AddOptionGroup(g *OptionGroup) {
	if g.Required {
		o.required = append(o.required, g)
	}
	for p := g.options.Oldest(); p != nil; p = p.Next() {
		p.Value.Required = false
		o.AddOption(p.Value)
		o.groups[p.Value.Key()] = g
	}
}

// HelpOptions returns the options in declaration order.
func (o *Options) HelpOptions() []*Option {
	out := make([]*Option, 0, o.short.Len())
	for p := o.short.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Value)
	}
	return out
}

func (o *Options) Groups() []*OptionGroup {
	var out []*OptionGroup
	for _, opt := range o.HelpOptions() {
		if g := o.groups[opt.Key()]; g != nil && !slices.Contains(out, g) {
			out = append(out, g)
		}
	}
	return out
}

func (o *Options) GetOption(name string) *Option {
	name = stripLeadingHyphens(name)
	if opt, ok := o.short.Get(name); ok {
		return opt
	}
	opt, _ := o.long.Get(name)
	return opt
}

// MatchingOptions returns the long names starting with prefix, or only
// prefix itself when it is an exact long name.
func (o *Options) MatchingOptions(prefix string) []string {
	prefix = stripLeadingHyphens(prefix)
	if _, ok := o.long.Get(prefix); ok {
		return []string{prefix}
	}
	var out []string
	for p := o.long.Oldest(); p != nil; p = p.Next() {
		if strings.HasPrefix(p.Key, prefix) {
			out = append(out, p.Key)
		}
	}
	return out
}

func (o *Options) HasOption(name string) bool {
	name = stripLeadingHyphens(name)
	_, short := o.short.Get(name)
	_, long := o.long.Get(name)
	return short || long
}

func (o *Options) HasShortOption(name string) bool {
	_, ok := o.short.Get(stripLeadingHyphens(name))
	return ok
}

func (o *Options) HasLongOption(name string) bool {
	_, ok := o.long.Get(stripLeadingHyphens(name))
	return ok
}

func (o *Options) OptionGroup(opt *Option) *OptionGroup { return o.groups[opt.Key()] }

// RequiredOptions renders the required entries, groups as their string form.
func (o *Options) RequiredOptions() []string {
	return requiredNames(o.required)
}

func requiredNames(required []any) []string {
	out := make([]string, len(required))
	for i, r := range required {
		switch r := r.(type) {
		case string:
			out[i] = r
		case *OptionGroup:
			out[i] = r.String()
		}
	}
	return out
}

func (o *Options) String() string {
	var short, long []string
	for p := o.short.Oldest(); p != nil; p = p.Next() {
		short = append(short, p.Value.String())
	}
	for p := o.long.Oldest(); p != nil; p = p.Next() {
		long = append(long, p.Value.String())
	}
	return "[ Options: [ short {" + strings.Join(short, ", ") + "} ] [ long {" + strings.Join(long, ", ") + "} ]"
}

// OptionGroup is a set of mutually exclusive options.
type OptionGroup struct {
	options  *orderedmap.OrderedMap[string, *Option]
	selected *string
	Required bool
}

func NewOptionGroup() *OptionGroup {
	return &OptionGroup{options: orderedmap.New[string, *Option]()}
}

func (g *OptionGroup) AddOption(opt *Option) { g.options.Set(opt.Key(), opt) }

func (g *OptionGroup) Options() []*Option {
	out := make([]*Option, 0, g.options.Len())
	for p := g.options.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Value)
	}
	return out
}

func (g *OptionGroup) Names() []string {
	out := make([]string, 0, g.options.Len())
	for p := g.options.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

func (g *OptionGroup) Selected() *string { return g.selected }

// SetSelected records opt as the chosen member. Choosing a second member
// fails; nil clears the selection.
func (g *OptionGroup) SetSelected(opt *Option) error {
	if opt == nil {
		g.selected = nil
		return nil
	}
	key := opt.Key()
	if g.selected == nil || *g.selected == key {
		g.selected = &key
		return nil
	}
	return alreadySelected(g, opt)
}

func (g *OptionGroup) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, opt := range g.Options() {
		if i > 0 {
			sb.WriteString(", ")
		}
		if opt.Opt != "" {
			sb.WriteString("-" + opt.Opt)
		} else {
			sb.WriteString("--" + opt.LongOpt)
		}
		if opt.Description != nil {
			sb.WriteString(" " + *opt.Description)
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// CommandLine is the result of a parse.
type CommandLine struct {
	args    []string
	options []*Option
}

func (c *CommandLine) Args() []string { return c.args }

func (c *CommandLine) Options() []*Option { return c.options }

func (c *CommandLine) addArg(s string) { c.args = append(c.args, s) }

func (c *CommandLine) addOption(o *Option) { c.options = append(c.options, o) }

func (c *CommandLine) resolve(name string) *Option {
	name = stripLeadingHyphens(name)
	for _, o := range c.options {
		if name == o.Opt || name == o.LongOpt {
			return o
		}
	}
	return nil
}

func (c *CommandLine) HasOption(name string) bool { return c.resolve(name) != nil }

// OptionValues collects the values of every occurrence of name, or nil.
func (c *CommandLine) OptionValues(name string) []string {
	name = stripLeadingHyphens(name)
	var out []string
	for _, o := range c.options {
		if name == o.Opt || name == o.LongOpt {
			out = append(out, o.values...)
		}
	}
	return out
}

func (c *CommandLine) OptionValue(name string) *string {
	values := c.OptionValues(name)
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}

// OptionProperties maps the first value of each occurrence to its second,
// or to "true" when the occurrence has one value.
func (c *CommandLine) OptionProperties(name string) *orderedmap.OrderedMap[string, string] {
	name = stripLeadingHyphens(name)
	props := orderedmap.New[string, string]()
	for _, o := range c.options {
		if name != o.Opt && name != o.LongOpt {
			continue
		}
		switch {
		case len(o.values) >= 2:
			props.Set(o.values[0], o.values[1])
		case len(o.values) == 1:
			props.Set(o.values[0], "true")
		}
	}
	return props
}

// OptionIterator walks the parsed options.
type OptionIterator struct {
	options []*Option
	pos     int
}

func (it *OptionIterator) HasNext() bool { return it.pos < len(it.options) }

func (it *OptionIterator) Next() (*Option, error) {
	if !it.HasNext() {
		return nil, objects.Raise(objects.TagStopIteration, "")
	}
	o := it.options[it.pos]
	it.pos++
	return o, nil
}
