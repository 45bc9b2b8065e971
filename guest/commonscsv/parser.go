package commonscsv

import (
	"fmt"
	"os"
	"strings"

	"github.com/wasmglue/wasmglue/guest/objects"
)

// header maps column names to indexes.
type header struct {
	names      []string
	index      map[string]int
	ignoreCase bool
}

func (h *header) lookup(name string) (int, bool) {
	if h.ignoreCase {
		name = strings.ToLower(name)
	}
	i, ok := h.index[name]
	return i, ok
}

// Record is one parsed record. Null values are nil.
type Record struct {
	values   []*string
	header   *header
	comment  *string
	number   int64
	position int64
}

// Values returns the record values.
func (r *Record) Values() []*string { return r.values }

// Get returns value i.
func (r *Record) Get(i int64) (*string, error) {
	if i < 0 || i >= int64(len(r.values)) {
		return nil, objects.Raise(objects.TagIndexError, "Index %d out of bounds for length %d", i, len(r.values))
	}
	return r.values[i], nil
}

// GetByName returns the value of the named column.
func (r *Record) GetByName(name string) (*string, error) {
	if r.header == nil {
		return nil, objects.Raise(objects.TagValueError, "No header mapping was specified, the record values can't be accessed by name")
	}
	i, ok := r.header.lookup(name)
	if !ok {
		return nil, objects.Raise(objects.TagValueError, "Mapping for %s not found, expected one of %v", name, r.header.names)
	}
	if i >= len(r.values) {
		return nil, objects.Raise(objects.TagValueError, "Index for header '%s' is %d but CSVRecord only has %d values!", name, i, len(r.values))
	}
	return r.values[i], nil
}

func (r *Record) IsMapped(name string) bool {
	if r.header == nil {
		return false
	}
	_, ok := r.header.lookup(name)
	return ok
}

func (r *Record) IsSet(name string) bool {
	if r.header == nil {
		return false
	}
	i, ok := r.header.lookup(name)
	return ok && i < len(r.values)
}

// IsConsistent reports whether the record has exactly one value per header
// column. Records without a header are always consistent.
func (r *Record) IsConsistent() bool {
	return r.header == nil || len(r.header.names) == len(r.values)
}

func (r *Record) String() string {
	parts := make([]string, len(r.values))
	for i, v := range r.values {
		if v == nil {
			parts[i] = "null"
		} else {
			parts[i] = *v
		}
	}
	var comment string
	if r.comment != nil {
		comment = *r.comment
	}
	return fmt.Sprintf("CSVRecord [comment='%s', recordNumber=%d, values=[%s]]", comment, r.number, strings.Join(parts, ", "))
}

// Parser reads records from a string.
type Parser struct {
	format       *Format
	lex          *lexer
	header       *header
	recordNumber int64
	closed       bool
	iter         *RecordIterator
}

// NewParser starts parsing input. A format with an empty header consumes
// the first record as the header.
func NewParser(input string, f *Format) (*Parser, error) {
	p := &Parser{format: f, lex: newLexer(f, input)}
	p.iter = &RecordIterator{parser: p}
	if err := p.initHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseFile parses the contents of path.
func ParseFile(path string, f *Format) (*Parser, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, objects.Raise(objects.TagIOError, "%s", err.Error())
	}
	return NewParser(string(b), f)
}

func (p *Parser) initHeader() error {
	f := p.format
	if f.Header == nil {
		return nil
	}
	names := f.Header
	if len(names) == 0 {
		raw, err := p.lex.next()
		if err != nil {
			return err
		}
		if raw != nil {
			names = raw.values
		}
	} else if f.SkipHeaderRecord {
		if _, err := p.lex.next(); err != nil {
			return err
		}
	}

	h := &header{names: names, index: make(map[string]int, len(names)), ignoreCase: f.IgnoreHeaderCase}
	for i, name := range names {
		blank := strings.TrimSpace(name) == ""
		if blank && !f.AllowMissingColumnNames {
			return objects.Raise(objects.TagValueError, "A header name is missing in %v", names)
		}
		key := name
		if h.ignoreCase {
			key = strings.ToLower(name)
		}
		if _, dup := h.index[key]; dup && !blank {
			return objects.Raise(objects.TagValueError, "The header contains a duplicate name: \"%s\" in %v", name, names)
		}
		if !blank {
			h.index[key] = i
		}
	}
	p.header = h
	return nil
}

// HeaderNames returns the header in column order, or nil without a header.
func (p *Parser) HeaderNames() []string {
	if p.header == nil {
		return nil
	}
	return p.header.names
}

// NextRecord returns the next record, or nil at the end of input or once
// the parser is closed.
func (p *Parser) NextRecord() (*Record, error) {
	if p.closed {
		return nil, nil
	}
	raw, err := p.lex.next()
	if err != nil || raw == nil {
		return nil, err
	}
	p.recordNumber++
	rec := &Record{
		values:   make([]*string, len(raw.values)),
		header:   p.header,
		comment:  raw.comment,
		number:   p.recordNumber,
		position: raw.position,
	}
	for i, v := range raw.values {
		if p.format.Trim {
			v = strings.TrimSpace(v)
		}
		if nul := p.format.NullString; nul != nil && !raw.quoted[i] && v == *nul {
			continue
		}
		rec.values[i] = &v
	}
	return rec, nil
}

// Records drains the parser.
func (p *Parser) Records() ([]*Record, error) {
	var out []*Record
	for {
		if rec := p.iter.pending; rec != nil {
			p.iter.pending = nil
			out = append(out, rec)
			continue
		}
		rec, err := p.NextRecord()
		if err != nil || rec == nil {
			return out, err
		}
		out = append(out, rec)
	}
}

func (p *Parser) Close() {
	p.closed = true
	p.iter.pending = nil
}

// RecordIterator walks the records of one parser. Every call to the parser's
// iterator returns the same instance.
type RecordIterator struct {
	parser  *Parser
	pending *Record
}

func (it *RecordIterator) HasNext() (bool, error) {
	if it.parser.closed {
		return false, nil
	}
	if it.pending == nil {
		rec, err := it.parser.NextRecord()
		if err != nil {
			return false, err
		}
		it.pending = rec
	}
	return it.pending != nil, nil
}

func (it *RecordIterator) Next() (*Record, error) {
	if it.parser.closed {
		return nil, objects.Raise(objects.TagStopIteration, "CSVParser has been closed")
	}
	rec := it.pending
	it.pending = nil
	if rec == nil {
		var err error
		if rec, err = it.parser.NextRecord(); err != nil {
			return nil, err
		}
	}
	if rec == nil {
		return nil, objects.Raise(objects.TagStopIteration, "No more CSV records available")
	}
	return rec, nil
}
