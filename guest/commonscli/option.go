// Package commonscli is the guest side of the commons_cli module: option
// declarations, command line parsers and help rendering.
package commonscli

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wasmglue/wasmglue/guest/objects"
)

// Module is the module name the classes are exported under.
const Module = "commons_cli"

const (
	argsUninitialized = -1
	// ArgsUnlimited lets an option take any number of values.
	ArgsUnlimited = -2
)

// Option is one declared option. An empty Opt means the option only has a
// long form.
type Option struct {
	Opt         string
	LongOpt     string
	Description *string
	// ArgName nil means the formatter default; empty means none is shown.
	ArgName      *string
	Required     bool
	OptionalArg  bool
	NumberOfArgs int
	ValueSep     rune
	values       []string
}

func isValidOptChar(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '$'
}

func validateOpt(opt string) error {
	if opt == "" {
		return nil
	}
	if utf8.RuneCountInString(opt) == 1 {
		c, _ := utf8.DecodeRuneInString(opt)
		if !isValidOptChar(c) && c != '?' && c != '@' {
			return objects.Raise(objects.TagValueError, "Illegal option name '%c'", c)
		}
		return nil
	}
	for _, c := range opt {
		if !isValidOptChar(c) {
			return objects.Raise(objects.TagValueError, "The option '%s' contains an illegal character : '%c'", opt, c)
		}
	}
	return nil
}

// NewOption declares an option taking one value when hasArg is set.
func NewOption(opt, longOpt string, hasArg bool, description *string) (*Option, error) {
	if opt == "" && longOpt == "" {
		return nil, objects.Raise(objects.TagValueError, "Either opt or longOpt must be specified")
	}
	if err := validateOpt(opt); err != nil {
		return nil, err
	}
	o := &Option{Opt: opt, LongOpt: longOpt, Description: description, NumberOfArgs: argsUninitialized}
	if hasArg {
		o.NumberOfArgs = 1
	}
	return o, nil
}

// Key is the short name when there is one, else the long name.
func (o *Option) Key() string {
	if o.Opt != "" {
		return o.Opt
	}
	return o.LongOpt
}

func (o *Option) HasLongOpt() bool { return o.LongOpt != "" }

func (o *Option) HasArg() bool { return o.NumberOfArgs > 0 || o.NumberOfArgs == ArgsUnlimited }

func (o *Option) HasArgs() bool { return o.NumberOfArgs > 1 || o.NumberOfArgs == ArgsUnlimited }

func (o *Option) Values() []string { return o.values }

func (o *Option) acceptsArg() bool {
	return (o.HasArg() || o.HasArgs() || o.OptionalArg) &&
		(o.NumberOfArgs <= 0 || len(o.values) < o.NumberOfArgs)
}

func (o *Option) requiresArg() bool {
	if o.OptionalArg {
		return false
	}
	if o.NumberOfArgs == ArgsUnlimited {
		return len(o.values) == 0
	}
	return o.acceptsArg()
}

// addValueForProcessing splits value on the value separator and stores the
// parts.
func (o *Option) addValueForProcessing(value string) error {
	if o.NumberOfArgs == argsUninitialized {
		return objects.Raise(objects.TagRuntimeError, "NO_ARGS_ALLOWED")
	}
	if o.ValueSep != 0 {
		sep := string(o.ValueSep)
		for {
			i := strings.Index(value, sep)
			if i < 0 || len(o.values) == o.NumberOfArgs-1 {
				break
			}
			if err := o.add(value[:i]); err != nil {
				return err
			}
			value = value[i+len(sep):]
		}
	}
	return o.add(value)
}

func (o *Option) add(value string) error {
	if !o.acceptsArg() {
		return objects.Raise(objects.TagRuntimeError, "Cannot add value, list full.")
	}
	o.values = append(o.values, value)
	return nil
}

func (o *Option) clone() *Option {
	c := *o
	c.values = slices.Clone(o.values)
	return &c
}

func (o *Option) String() string {
	var sb strings.Builder
	sb.WriteString("[ option: ")
	sb.WriteString(o.Opt)
	if o.LongOpt != "" {
		sb.WriteString(" ")
		sb.WriteString(o.LongOpt)
	}
	sb.WriteString(" ")
	if o.HasArgs() {
		sb.WriteString("[ARG...]")
	} else if o.HasArg() {
		sb.WriteString(" [ARG]")
	}
	sb.WriteString(" :: ")
	if o.Description != nil {
		sb.WriteString(*o.Description)
	}
	sb.WriteString(" ]")
	return sb.String()
}

// Builder assembles an Option.
type Builder struct {
	option Option
}

func NewBuilder(opt string) (*Builder, error) {
	if err := validateOpt(opt); err != nil {
		return nil, err
	}
	return &Builder{option: Option{Opt: opt, NumberOfArgs: argsUninitialized}}, nil
}

func (b *Builder) Build() (*Option, error) {
	if b.option.Opt == "" && b.option.LongOpt == "" {
		return nil, objects.Raise(objects.TagValueError, "Either opt or longOpt must be specified")
	}
	return b.option.clone(), nil
}

func stripLeadingHyphens(s string) string {
	if strings.HasPrefix(s, "--") {
		return s[2:]
	}
	return strings.TrimPrefix(s, "-")
}

// stripQuotes removes one pair of surrounding double quotes when the value
// contains no other quote.
func stripQuotes(s string) string {
	if len(s) > 1 && s[0] == '"' && s[len(s)-1] == '"' && !strings.Contains(s[1:len(s)-1], `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
