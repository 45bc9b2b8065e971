package commonscli

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// flattener rewrites raw arguments into tokens the legacy parse loop
// understands.
type flattener func(options *Options, args []string, stopAtNonOption bool) ([]string, error)

// legacyParser is the token loop shared by the Basic, Gnu and Posix
// parsers.
type legacyParser struct {
	flatten flattener
}

// BasicParser passes arguments through unchanged.
func BasicParser() CommandLineParser {
	return &legacyParser{flatten: func(_ *Options, args []string, _ bool) ([]string, error) { return args, nil }}
}

// GnuParser splits "--opt=value" and "-Dvalue" forms.
func GnuParser() CommandLineParser { return &legacyParser{flatten: gnuFlatten} }

// PosixParser bursts "-abc" into single character options.
func PosixParser() CommandLineParser {
	return &legacyParser{flatten: func(options *Options, args []string, stop bool) ([]string, error) {
		f := &posixFlattener{options: options, stop: stop}
		return f.flatten(args)
	}}
}

func (p *legacyParser) Parse(options *Options, args []string, props *orderedmap.OrderedMap[string, string], stopAtNonOption bool) (*CommandLine, error) {
	s := newSession(options)
	tokens, err := p.flatten(options, args, stopAtNonOption)
	if err != nil {
		return nil, err
	}

	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		eat := false
		switch {
		case t == "--":
			eat = true
		case t == "-":
			if stopAtNonOption {
				eat = true
			} else {
				s.cmd.addArg(t)
			}
		case strings.HasPrefix(t, "-"):
			if stopAtNonOption && !options.HasOption(t) {
				eat = true
				s.cmd.addArg(t)
			} else if i, err = p.processOption(s, tokens, i); err != nil {
				return nil, err
			}
		default:
			s.cmd.addArg(t)
			eat = stopAtNonOption
		}
		if eat {
			for _, rest := range tokens[i+1:] {
				if rest != "--" {
					s.cmd.addArg(rest)
				}
			}
			break
		}
	}

	err = s.properties(props, func(opt *Option) error {
		s.cmd.addOption(opt)
		return s.updateRequired(opt)
	})
	if err != nil {
		return nil, err
	}
	if err := s.checkRequiredOptions(); err != nil {
		return nil, err
	}
	return s.cmd, nil
}

// processOption adds the option at tokens[i] and consumes its values. It
// returns the index of the last consumed token.
func (p *legacyParser) processOption(s *session, tokens []string, i int) (int, error) {
	arg := tokens[i]
	if !s.options.HasOption(arg) {
		return i, unrecognized("Unrecognized option: "+arg, arg)
	}
	opt := s.options.GetOption(arg).clone()
	if err := s.updateRequired(opt); err != nil {
		return i, err
	}
	if opt.HasArg() {
		for i+1 < len(tokens) {
			next := tokens[i+1]
			if s.options.HasOption(next) && strings.HasPrefix(next, "-") {
				break
			}
			if err := opt.addValueForProcessing(stripQuotes(next)); err != nil {
				break
			}
			i++
		}
		if len(opt.values) == 0 && !opt.OptionalArg {
			return i, missingArgument(opt)
		}
	}
	s.cmd.addOption(opt)
	return i, nil
}

func gnuFlatten(options *Options, args []string, stop bool) ([]string, error) {
	var tokens []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		eat := false
		switch {
		case arg == "--":
			eat = true
			tokens = append(tokens, arg)
		case arg == "-":
			tokens = append(tokens, arg)
		case strings.HasPrefix(arg, "-"):
			opt := stripLeadingHyphens(arg)
			switch {
			case options.HasOption(opt):
				tokens = append(tokens, arg)
			case strings.Contains(opt, "=") && options.HasOption(opt[:strings.IndexByte(opt, '=')]):
				eq := strings.IndexByte(arg, '=')
				tokens = append(tokens, arg[:eq], arg[eq+1:])
			case options.HasOption(arg[:2]):
				tokens = append(tokens, arg[:2], arg[2:])
			default:
				eat = stop
				tokens = append(tokens, arg)
			}
		default:
			tokens = append(tokens, arg)
		}
		if eat {
			tokens = append(tokens, args[i+1:]...)
			break
		}
	}
	return tokens, nil
}

type posixFlattener struct {
	options *Options
	stop    bool
	eat     bool
	current *Option
	tokens  []string
}

func (f *posixFlattener) flatten(args []string) ([]string, error) {
	for i, token := range args {
		switch {
		case token == "--":
			f.eat = true
			f.tokens = append(f.tokens, "--")
		case token == "-":
			f.tokens = append(f.tokens, "-")
		case strings.HasPrefix(token, "--"):
			opt, value, hasValue := strings.Cut(token, "=")
			matching := f.options.MatchingOptions(opt)
			switch {
			case len(matching) == 0:
				f.nonOption(token)
			case len(matching) > 1:
				return nil, ambiguous(opt, matching)
			default:
				f.current = f.options.GetOption(matching[0])
				f.tokens = append(f.tokens, "--"+f.current.LongOpt)
				if hasValue {
					f.tokens = append(f.tokens, value)
				}
			}
		case strings.HasPrefix(token, "-"):
			if len(token) == 2 || f.options.HasOption(token) {
				f.optionToken(token)
			} else if matching := f.options.MatchingOptions(token); len(matching) > 0 {
				if len(matching) > 1 {
					return nil, ambiguous(token, matching)
				}
				f.optionToken("-" + f.options.GetOption(matching[0]).LongOpt)
			} else {
				f.burst(token)
			}
		default:
			f.nonOption(token)
		}
		if f.eat {
			f.tokens = append(f.tokens, args[i+1:]...)
			break
		}
	}
	return f.tokens, nil
}

func (f *posixFlattener) nonOption(value string) {
	if f.stop && (f.current == nil || !f.current.HasArg()) {
		f.eat = true
		f.tokens = append(f.tokens, "--")
	}
	f.tokens = append(f.tokens, value)
}

func (f *posixFlattener) optionToken(token string) {
	if f.stop && !f.options.HasOption(token) {
		f.eat = true
	}
	if f.options.HasOption(token) {
		f.current = f.options.GetOption(token)
	}
	f.tokens = append(f.tokens, token)
}

func (f *posixFlattener) burst(token string) {
	for i, c := range token {
		if i == 0 {
			continue
		}
		ch := string(c)
		if !f.options.HasOption(ch) {
			if f.stop {
				f.nonOption(token[i:])
			} else {
				f.tokens = append(f.tokens, token)
			}
			return
		}
		f.tokens = append(f.tokens, "-"+ch)
		f.current = f.options.GetOption(ch)
		if rest := token[i+len(ch):]; f.current.HasArg() && rest != "" {
			f.tokens = append(f.tokens, rest)
			return
		}
	}
}
