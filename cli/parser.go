package cli

import (
	"context"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/wasmglue/wasmglue/foreign"
	"github.com/wasmglue/wasmglue/wire"
)

// CommandLineParser parses arguments against declared options. Failures
// are *ParseError values.
type CommandLineParser interface {
	Parse(ctx context.Context, options *Options, args []string, opts ...ParseOption) (*CommandLine, error)
}

type parseConfig struct {
	props *orderedmap.OrderedMap[string, string]
	stop  bool
}

// ParseOption adjusts one Parse call.
type ParseOption func(*parseConfig)

// WithProperties supplies option values for options absent from the
// arguments. Flags take "yes", "true" or "1" to be set.
func WithProperties(props *orderedmap.OrderedMap[string, string]) ParseOption {
	return func(c *parseConfig) { c.props = props }
}

// StopAtNonOption ends option processing at the first non-option argument;
// it and everything after it become arguments.
func StopAtNonOption() ParseOption {
	return func(c *parseConfig) { c.stop = true }
}

type parser struct{ obj *foreign.Object }

func (p *parser) ForeignHandle() wire.Handle { return p.obj.ForeignHandle() }

func (p *parser) Parse(ctx context.Context, options *Options, args []string, opts ...ParseOption) (*CommandLine, error) {
	var cfg parseConfig
	for _, o := range opts {
		o(&cfg)
	}
	if args == nil {
		args = []string{}
	}
	var props any
	if cfg.props != nil {
		props = cfg.props
	}
	env := p.obj.Env()
	v, err := p.obj.Call(ctx, parserParse, options, args, props, cfg.stop)
	if err != nil {
		return nil, parseError(env, err)
	}
	return foreign.Adopt(ctx, env, CommandLineClass, v, wrapCommandLine)
}

// DefaultParser handles short, long, concatenated and java-property style
// options.
type DefaultParser struct{ parser }

// NewDefaultParser returns a parser; allowPartialMatching accepts unique
// prefixes of long options.
func NewDefaultParser(ctx context.Context, env *foreign.Env, allowPartialMatching bool) (*DefaultParser, error) {
	return foreign.Construct(ctx, env, DefaultParserClass, func(obj *foreign.Object) *DefaultParser {
		return &DefaultParser{parser{obj: obj}}
	}, allowPartialMatching)
}

// GnuParser splits "--name=value" and attached short values.
type GnuParser struct{ parser }

func NewGnuParser(ctx context.Context, env *foreign.Env) (*GnuParser, error) {
	return foreign.Construct(ctx, env, GnuParserClass, func(obj *foreign.Object) *GnuParser {
		return &GnuParser{parser{obj: obj}}
	})
}

// PosixParser bursts "-abc" into single-character options.
type PosixParser struct{ parser }

func NewPosixParser(ctx context.Context, env *foreign.Env) (*PosixParser, error) {
	return foreign.Construct(ctx, env, PosixParserClass, func(obj *foreign.Object) *PosixParser {
		return &PosixParser{parser{obj: obj}}
	})
}

// BasicParser takes every token as it is.
type BasicParser struct{ parser }

func NewBasicParser(ctx context.Context, env *foreign.Env) (*BasicParser, error) {
	return foreign.Construct(ctx, env, BasicParserClass, func(obj *foreign.Object) *BasicParser {
		return &BasicParser{parser{obj: obj}}
	})
}

var (
	_ CommandLineParser = (*DefaultParser)(nil)
	_ CommandLineParser = (*GnuParser)(nil)
	_ CommandLineParser = (*PosixParser)(nil)
	_ CommandLineParser = (*BasicParser)(nil)
)
