package commonscli

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// CommandLineParser turns arguments into a CommandLine.
type CommandLineParser interface {
	Parse(options *Options, args []string, props *orderedmap.OrderedMap[string, string], stopAtNonOption bool) (*CommandLine, error)
}

// session is the state shared by every parser for one parse.
type session struct {
	options  *Options
	cmd      *CommandLine
	expected []any
}

func newSession(options *Options) *session {
	for _, g := range options.Groups() {
		_ = g.SetSelected(nil)
	}
	return &session{
		options:  options,
		cmd:      &CommandLine{},
		expected: slices.Clone(options.required),
	}
}

func (s *session) updateRequired(opt *Option) error {
	if opt.Required {
		key := opt.Key()
		s.expected = slices.DeleteFunc(s.expected, func(r any) bool { return r == key })
	}
	if g := s.options.OptionGroup(opt); g != nil {
		if g.Required {
			s.expected = slices.DeleteFunc(s.expected, func(r any) bool { return r == g })
		}
		return g.SetSelected(opt)
	}
	return nil
}

func (s *session) checkRequiredOptions() error {
	if len(s.expected) > 0 {
		return missingOptions(s.expected)
	}
	return nil
}

func isTruthy(v string) bool {
	return strings.EqualFold(v, "yes") || strings.EqualFold(v, "true") || v == "1"
}

// properties applies default values for options not given on the command
// line. handle adds the prepared option.
func (s *session) properties(props *orderedmap.OrderedMap[string, string], handle func(*Option) error) error {
	if props == nil {
		return nil
	}
	for p := props.Oldest(); p != nil; p = p.Next() {
		declared := s.options.GetOption(p.Key)
		if declared == nil {
			return unrecognized("Default option wasn't defined", p.Key)
		}
		g := s.options.OptionGroup(declared)
		if s.cmd.HasOption(p.Key) || (g != nil && g.selected != nil) {
			continue
		}
		opt := declared.clone()
		if opt.HasArg() {
			if len(opt.values) == 0 {
				// A value the option cannot take is dropped.
				_ = opt.addValueForProcessing(p.Value)
			}
		} else if !isTruthy(p.Value) {
			continue
		}
		if err := handle(opt); err != nil {
			return err
		}
	}
	return nil
}

// DefaultParser is the standard parser. It understands long options with
// or without "=", concatenated short options, short options with attached
// values and Java style properties.
type DefaultParser struct {
	AllowPartialMatching bool
}

type defaultState struct {
	*session
	partial bool
	stop    bool
	skip    bool
	current *Option
	token   string
}

func (p *DefaultParser) Parse(options *Options, args []string, props *orderedmap.OrderedMap[string, string], stopAtNonOption bool) (*CommandLine, error) {
	st := &defaultState{session: newSession(options), partial: p.AllowPartialMatching, stop: stopAtNonOption}
	for _, arg := range args {
		if err := st.handleToken(arg); err != nil {
			return nil, err
		}
	}
	if err := st.checkRequiredArgs(); err != nil {
		return nil, err
	}
	err := st.properties(props, func(opt *Option) error {
		err := st.handleOption(opt)
		st.current = nil
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := st.checkRequiredOptions(); err != nil {
		return nil, err
	}
	return st.cmd, nil
}

func (st *defaultState) handleToken(token string) error {
	st.token = token
	var err error
	switch {
	case st.skip:
		st.cmd.addArg(token)
	case token == "--":
		st.skip = true
	case st.current != nil && st.current.acceptsArg() && st.isArgument(token):
		err = st.current.addValueForProcessing(stripQuotes(token))
	case strings.HasPrefix(token, "--"):
		err = st.handleLongOption(token)
	case strings.HasPrefix(token, "-") && token != "-":
		err = st.handleShortAndLongOption(token)
	default:
		err = st.handleUnknownToken(token)
	}
	if st.current != nil && !st.current.acceptsArg() {
		st.current = nil
	}
	return err
}

func isNegativeNumber(token string) bool {
	_, err := strconv.ParseFloat(token, 64)
	return err == nil
}

func (st *defaultState) isArgument(token string) bool {
	return !st.isOption(token) || isNegativeNumber(token)
}

func (st *defaultState) isOption(token string) bool {
	return st.isLongOption(token) || st.isShortOption(token)
}

func (st *defaultState) isShortOption(token string) bool {
	if !strings.HasPrefix(token, "-") || len(token) == 1 {
		return false
	}
	name := token[1:]
	if i := strings.IndexByte(name, '='); i >= 0 {
		name = name[:i]
	}
	if st.options.HasShortOption(name) {
		return true
	}
	first, _ := splitFirst(name)
	return first != "" && st.options.HasShortOption(first)
}

func (st *defaultState) isLongOption(token string) bool {
	if !strings.HasPrefix(token, "-") || len(token) == 1 {
		return false
	}
	t := token
	if i := strings.IndexByte(token, '='); i >= 0 {
		t = token[:i]
	}
	if len(st.matchingLongOptions(t)) > 0 {
		return true
	}
	return st.longPrefix(token) != "" && !strings.HasPrefix(token, "--")
}

func (st *defaultState) matchingLongOptions(token string) []string {
	if st.partial {
		return st.options.MatchingOptions(token)
	}
	if st.options.HasLongOption(token) {
		return []string{st.options.GetOption(token).LongOpt}
	}
	return nil
}

// longPrefix returns the longest long option, at least two characters,
// that token starts with.
func (st *defaultState) longPrefix(token string) string {
	t := stripLeadingHyphens(token)
	for i := len(t) - 2; i > 1; i-- {
		if prefix := t[:i]; st.options.HasLongOption(prefix) {
			return prefix
		}
	}
	return ""
}

func splitFirst(s string) (first, rest string) {
	_, n := utf8.DecodeRuneInString(s)
	return s[:n], s[n:]
}

func (st *defaultState) isJavaProperty(token string) bool {
	first, _ := splitFirst(token)
	opt := st.options.GetOption(first)
	return opt != nil && (opt.NumberOfArgs >= 2 || opt.NumberOfArgs == ArgsUnlimited)
}

func (st *defaultState) handleLongOption(token string) error {
	if strings.Contains(token, "=") {
		return st.handleLongOptionWithEqual(token)
	}
	return st.handleLongOptionWithoutEqual(token)
}

// longKey picks the option named by opt among its matches.
func (st *defaultState) longKey(opt string, matching []string) (string, error) {
	if st.options.HasLongOption(opt) {
		return st.options.GetOption(opt).LongOpt, nil
	}
	if len(matching) > 1 {
		return "", ambiguous(opt, matching)
	}
	return matching[0], nil
}

func (st *defaultState) handleLongOptionWithoutEqual(token string) error {
	matching := st.matchingLongOptions(token)
	if len(matching) == 0 {
		return st.handleUnknownToken(st.token)
	}
	key, err := st.longKey(token, matching)
	if err != nil {
		return err
	}
	return st.handleOption(st.options.GetOption(key))
}

func (st *defaultState) handleLongOptionWithEqual(token string) error {
	i := strings.IndexByte(token, '=')
	opt, value := token[:i], token[i+1:]
	matching := st.matchingLongOptions(opt)
	if len(matching) == 0 {
		return st.handleUnknownToken(st.token)
	}
	key, err := st.longKey(opt, matching)
	if err != nil {
		return err
	}
	option := st.options.GetOption(key)
	if !option.acceptsArg() {
		return st.handleUnknownToken(st.token)
	}
	return st.handleOptionValues(option, stripQuotes(value))
}

// handleOptionValues adds option with the given values and closes it.
func (st *defaultState) handleOptionValues(option *Option, values ...string) error {
	if err := st.handleOption(option); err != nil {
		return err
	}
	for _, v := range values {
		if err := st.current.addValueForProcessing(v); err != nil {
			return err
		}
	}
	st.current = nil
	return nil
}

func (st *defaultState) handleShortAndLongOption(token string) error {
	t := stripLeadingHyphens(token)
	eq := strings.IndexByte(t, '=')

	switch {
	case utf8.RuneCountInString(t) == 1:
		if st.options.HasShortOption(t) {
			return st.handleOption(st.options.GetOption(t))
		}
		return st.handleUnknownToken(token)

	case eq < 0:
		if st.options.HasShortOption(t) {
			return st.handleOption(st.options.GetOption(t))
		}
		if len(st.matchingLongOptions(t)) > 0 {
			return st.handleLongOptionWithoutEqual(token)
		}
		if prefix := st.longPrefix(t); prefix != "" && st.options.GetOption(prefix).acceptsArg() {
			return st.handleOptionValues(st.options.GetOption(prefix), t[len(prefix):])
		}
		if st.isJavaProperty(t) {
			first, rest := splitFirst(t)
			return st.handleOptionValues(st.options.GetOption(first), rest)
		}
		return st.handleConcatenatedOptions(token)

	default:
		opt, value := t[:eq], t[eq+1:]
		if utf8.RuneCountInString(opt) == 1 {
			option := st.options.GetOption(opt)
			if option != nil && option.acceptsArg() {
				return st.handleOptionValues(option, value)
			}
			return st.handleUnknownToken(token)
		}
		if st.isJavaProperty(opt) {
			first, rest := splitFirst(opt)
			return st.handleOptionValues(st.options.GetOption(first), rest, value)
		}
		return st.handleLongOptionWithEqual(token)
	}
}

func (st *defaultState) handleConcatenatedOptions(token string) error {
	for i, c := range token {
		if i == 0 {
			continue
		}
		ch := string(c)
		if !st.options.HasOption(ch) {
			if st.stop && i > 1 {
				return st.handleUnknownToken(token[i:])
			}
			return st.handleUnknownToken(token)
		}
		if err := st.handleOption(st.options.GetOption(ch)); err != nil {
			return err
		}
		if rest := token[i+len(ch):]; st.current != nil && rest != "" {
			return st.current.addValueForProcessing(rest)
		}
	}
	return nil
}

func (st *defaultState) handleUnknownToken(token string) error {
	if strings.HasPrefix(token, "-") && len(token) > 1 && !st.stop {
		return unrecognized("Unrecognized option: "+token, token)
	}
	st.cmd.addArg(token)
	if st.stop {
		st.skip = true
	}
	return nil
}

func (st *defaultState) checkRequiredArgs() error {
	if st.current != nil && st.current.requiresArg() {
		return missingArgument(st.current)
	}
	return nil
}

func (st *defaultState) handleOption(option *Option) error {
	if err := st.checkRequiredArgs(); err != nil {
		return err
	}
	option = option.clone()
	if err := st.updateRequired(option); err != nil {
		return err
	}
	st.cmd.addOption(option)
	st.current = nil
	if option.HasArg() {
		st.current = option
	}
	return nil
}
