package csv

import (
	"context"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/wasmglue/wasmglue/foreign"
	"github.com/wasmglue/wasmglue/wire"
)

// Parser reads records from a source. A parser has one record iterator;
// records, NextRecord and the iterator all consume the same stream.
type Parser struct{ obj *foreign.Object }

func wrapParser(obj *foreign.Object) *Parser { return &Parser{obj: obj} }

func (p *Parser) ForeignHandle() wire.Handle { return p.obj.ForeignHandle() }

// NewParser parses input with format; a nil format selects Default.
func NewParser(ctx context.Context, env *foreign.Env, input string, format *Format) (*Parser, error) {
	return foreign.Construct(ctx, env, ParserClass, wrapParser, input, format)
}

// ParseFile parses the file at path, as seen by the guest. A missing file is
// a foreign.ErrIO failure.
func ParseFile(ctx context.Context, env *foreign.Env, path string, format *Format) (*Parser, error) {
	v, err := foreign.CallStatic(ctx, env, ParserClass, parserParseFile, path, format)
	if err != nil {
		return nil, err
	}
	return foreign.Adopt(ctx, env, ParserClass, v, wrapParser)
}

// HeaderMap maps column names to their index, in header order. It is nil
// when the format has no header.
func (p *Parser) HeaderMap(ctx context.Context) (*orderedmap.OrderedMap[string, int], error) {
	return foreign.Decode(foreign.AsIntMap)(p.obj.Call(ctx, parserHeaderMap))
}

func (p *Parser) HeaderNames(ctx context.Context) ([]string, error) {
	return foreign.Decode(foreign.AsStrings)(p.obj.Call(ctx, parserHeaderNames))
}

func (p *Parser) adoptRecord(ctx context.Context, v wire.Value) (*Record, error) {
	return foreign.Adopt(ctx, p.obj.Env(), RecordClass, v, wrapRecord)
}

// Records reads every remaining record.
func (p *Parser) Records(ctx context.Context) ([]*Record, error) {
	v, err := p.obj.Call(ctx, parserRecords)
	if err != nil {
		return nil, err
	}
	return foreign.AdoptList(ctx, p.obj.Env(), RecordClass, v, wrapRecord)
}

// NextRecord returns the next record, or nil at the end of input.
func (p *Parser) NextRecord(ctx context.Context) (*Record, error) {
	v, err := p.obj.Call(ctx, parserNextRecord)
	if err != nil {
		return nil, err
	}
	return p.adoptRecord(ctx, v)
}

// RecordNumber is the number of records read so far.
func (p *Parser) RecordNumber(ctx context.Context) (int64, error) {
	return foreign.Decode(foreign.AsInt64)(p.obj.Call(ctx, parserRecordNumber))
}

func (p *Parser) CurrentLineNumber(ctx context.Context) (int64, error) {
	return foreign.Decode(foreign.AsInt64)(p.obj.Call(ctx, parserCurrentLineNumber))
}

// FirstEndOfLine returns the first line terminator seen, or "" before any.
func (p *Parser) FirstEndOfLine(ctx context.Context) (string, error) {
	v, err := p.obj.Call(ctx, parserFirstEndOfLine)
	if err != nil {
		return "", err
	}
	s, _, err := foreign.AsOptionalString(v)
	return s, err
}

// Iterator returns the parser's record iterator. Every call returns the same
// iterator; once exhausted it stays exhausted.
func (p *Parser) Iterator(ctx context.Context) (*foreign.Iterator[*Record], error) {
	v, err := p.obj.Call(ctx, parserIterator)
	if err != nil {
		return nil, err
	}
	return foreign.Adopt(ctx, p.obj.Env(), RecordIteratorClass, v, func(obj *foreign.Object) *foreign.Iterator[*Record] {
		return foreign.NewIterator(obj, iteratorHasNext, iteratorNext, p.adoptRecord)
	})
}

func (p *Parser) IsClosed(ctx context.Context) (bool, error) {
	return foreign.Decode(foreign.AsBool)(p.obj.Call(ctx, parserIsClosed))
}

// Close releases the source. Iteration after Close ends immediately.
func (p *Parser) Close(ctx context.Context) error {
	return foreign.Discard(p.obj.Call(ctx, parserClose))
}
