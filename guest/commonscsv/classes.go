package commonscsv

import (
	"slices"

	"github.com/wasmglue/wasmglue/guest/objects"
	"github.com/wasmglue/wasmglue/wire"
)

// Exported classes.
var (
	FormatClass         = &objects.Class{Name: "CSVFormat"}
	ParserClass         = &objects.Class{Name: "CSVParser"}
	RecordClass         = &objects.Class{Name: "CSVRecord"}
	RecordIteratorClass = &objects.Class{Name: "CSVRecordIterator"}
	PrinterClass        = &objects.Class{Name: "CSVPrinter"}
	StringWriterClass   = &objects.Class{Name: "StringWriter"}
)

// Classes lists every class of the module.
func Classes() []*objects.Class {
	return []*objects.Class{FormatClass, ParserClass, RecordClass, RecordIteratorClass, PrinterClass, StringWriterClass}
}

// Register exports the module into rt.
func Register(rt *objects.Runtime) {
	for _, cls := range Classes() {
		rt.Register(Module, cls)
	}
}

func init() {
	initFormat()
	initParser()
	initRecord()
	initPrinter()
}

func optString(s *string) wire.Value {
	if s == nil {
		return wire.Null()
	}
	return wire.String(*s)
}

func optChar(r rune) wire.Value {
	if r == 0 {
		return wire.Null()
	}
	return wire.String(string(r))
}

func optStrings(ss []string) wire.Value {
	if ss == nil {
		return wire.Null()
	}
	return wire.Strings(ss...)
}

func valueList(vs []*string) wire.Value {
	out := make([]wire.Value, len(vs))
	for i, v := range vs {
		out[i] = optString(v)
	}
	return wire.List(out...)
}

// charArg reads a single character argument. Null means unset.
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

// formatArg reads an optional format argument; null selects DEFAULT.
func formatArg(c *objects.Call, i int) (*Format, error) {
	f, err := objects.ArgAs[*Format](c, i)
	if err != nil || f != nil {
		return f, err
	}
	return ValueOf("DEFAULT")
}

func formatMethod(fn func(c *objects.Call, f *Format) (wire.Value, error)) objects.Method {
	return func(c *objects.Call) (wire.Value, error) {
		f, err := objects.SelfAs[*Format](c)
		if err != nil {
			return wire.Null(), err
		}
		return fn(c, f)
	}
}

func getter(fn func(f *Format) wire.Value) objects.Method {
	return formatMethod(func(_ *objects.Call, f *Format) (wire.Value, error) { return fn(f), nil })
}

// derive wraps a copy of the receiver changed by set.
func derive(set func(c *objects.Call, f *Format) error) objects.Method {
	return formatMethod(func(c *objects.Call, f *Format) (wire.Value, error) {
		var setErr error
		out, err := f.with(func(n *Format) { setErr = set(c, n) })
		if setErr != nil {
			return wire.Null(), setErr
		}
		if err != nil {
			return wire.Null(), err
		}
		return c.Wrap(FormatClass, out), nil
	})
}

func withBool(set func(f *Format, b bool)) objects.Method {
	return derive(func(c *objects.Call, f *Format) error {
		b, err := c.Bool(0)
		if err == nil {
			set(f, b)
		}
		return err
	})
}

func withChar(set func(f *Format, r rune)) objects.Method {
	return derive(func(c *objects.Call, f *Format) error {
		r, err := charArg(c, 0)
		if err == nil {
			set(f, r)
		}
		return err
	})
}

func initFormat() {
	FormatClass.New = func(c *objects.Call) (any, error) {
		d, err := charArg(c, 0)
		if err != nil {
			return nil, err
		}
		if d == 0 {
			return nil, objects.Raise(objects.TagValueError, "a delimiter is required")
		}
		return NewFormat(d)
	}
	FormatClass.Static = map[string]objects.Method{
		"value_of": func(c *objects.Call) (wire.Value, error) {
			name, err := c.String(0)
			if err != nil {
				return wire.Null(), err
			}
			f, err := ValueOf(name)
			if err != nil {
				return wire.Null(), err
			}
			return c.Wrap(FormatClass, f), nil
		},
	}
	FormatClass.Methods = map[string]objects.Method{
		"get_delimiter":                  getter(func(f *Format) wire.Value { return wire.String(string(f.Delimiter)) }),
		"get_quote_character":            getter(func(f *Format) wire.Value { return optChar(f.Quote) }),
		"get_escape_character":           getter(func(f *Format) wire.Value { return optChar(f.Escape) }),
		"get_comment_marker":             getter(func(f *Format) wire.Value { return optChar(f.CommentMarker) }),
		"get_record_separator":           getter(func(f *Format) wire.Value { return wire.String(f.RecordSeparator) }),
		"get_null_string":                getter(func(f *Format) wire.Value { return optString(f.NullString) }),
		"get_header":                     getter(func(f *Format) wire.Value { return optStrings(f.Header) }),
		"get_skip_header_record":         getter(func(f *Format) wire.Value { return wire.Bool(f.SkipHeaderRecord) }),
		"get_ignore_empty_lines":         getter(func(f *Format) wire.Value { return wire.Bool(f.IgnoreEmptyLines) }),
		"get_ignore_surrounding_spaces":  getter(func(f *Format) wire.Value { return wire.Bool(f.IgnoreSurroundingSpaces) }),
		"get_ignore_header_case":         getter(func(f *Format) wire.Value { return wire.Bool(f.IgnoreHeaderCase) }),
		"get_allow_missing_column_names": getter(func(f *Format) wire.Value { return wire.Bool(f.AllowMissingColumnNames) }),
		"get_trim":                       getter(func(f *Format) wire.Value { return wire.Bool(f.Trim) }),
		"get_trailing_delimiter":         getter(func(f *Format) wire.Value { return wire.Bool(f.TrailingDelimiter) }),
		"get_quote_mode": getter(func(f *Format) wire.Value {
			if f.QuoteMode == "" {
				return wire.Null()
			}
			return wire.String(string(f.QuoteMode))
		}),

		"with_delimiter": derive(func(c *objects.Call, f *Format) error {
			d, err := charArg(c, 0)
			if err == nil && d == 0 {
				err = objects.Raise(objects.TagValueError, "a delimiter is required")
			}
			f.Delimiter = d
			return err
		}),
		"with_quote":          withChar(func(f *Format, r rune) { f.Quote = r }),
		"with_escape":         withChar(func(f *Format, r rune) { f.Escape = r }),
		"with_comment_marker": withChar(func(f *Format, r rune) { f.CommentMarker = r }),
		"with_quote_mode": derive(func(c *objects.Call, f *Format) error {
			s, ok, err := c.OptionalString(0)
			if err != nil || !ok {
				f.QuoteMode = ""
				return err
			}
			f.QuoteMode, err = parseQuoteMode(s)
			return err
		}),
		"with_record_separator": derive(func(c *objects.Call, f *Format) error {
			s, err := c.String(0)
			f.RecordSeparator = s
			return err
		}),
		"with_null_string": derive(func(c *objects.Call, f *Format) error {
			s, ok, err := c.OptionalString(0)
			f.NullString = nil
			if ok {
				f.NullString = &s
			}
			return err
		}),
		"with_header": derive(func(c *objects.Call, f *Format) error {
			names := make([]string, 0, len(c.Args))
			for i := range c.Args {
				s, err := c.String(i)
				if err != nil {
					return err
				}
				names = append(names, s)
			}
			f.Header = names
			return nil
		}),
		"with_first_record_as_header": derive(func(_ *objects.Call, f *Format) error {
			f.Header = []string{}
			f.SkipHeaderRecord = true
			return nil
		}),
		"with_skip_header_record":         withBool(func(f *Format, b bool) { f.SkipHeaderRecord = b }),
		"with_ignore_empty_lines":         withBool(func(f *Format, b bool) { f.IgnoreEmptyLines = b }),
		"with_ignore_surrounding_spaces":  withBool(func(f *Format, b bool) { f.IgnoreSurroundingSpaces = b }),
		"with_ignore_header_case":         withBool(func(f *Format, b bool) { f.IgnoreHeaderCase = b }),
		"with_allow_missing_column_names": withBool(func(f *Format, b bool) { f.AllowMissingColumnNames = b }),
		"with_trim":                       withBool(func(f *Format, b bool) { f.Trim = b }),
		"with_trailing_delimiter":         withBool(func(f *Format, b bool) { f.TrailingDelimiter = b }),

		"format": formatMethod(func(c *objects.Call, f *Format) (wire.Value, error) {
			return wire.String(f.FormatValues(c.Args)), nil
		}),
		"parse": formatMethod(func(c *objects.Call, f *Format) (wire.Value, error) {
			input, err := c.String(0)
			if err != nil {
				return wire.Null(), err
			}
			p, err := NewParser(input, f)
			if err != nil {
				return wire.Null(), err
			}
			return c.Wrap(ParserClass, p), nil
		}),
		"print": formatMethod(func(c *objects.Call, f *Format) (wire.Value, error) {
			out, err := objects.ArgAs[*StringWriter](c, 0)
			if err != nil {
				return wire.Null(), err
			}
			if out == nil {
				return wire.Null(), objects.Raise(objects.TagValueError, "print() requires a writer")
			}
			p, err := NewPrinter(out, f)
			if err != nil {
				return wire.Null(), err
			}
			return c.Wrap(PrinterClass, p), nil
		}),
		"equals": formatMethod(func(c *objects.Call, f *Format) (wire.Value, error) {
			o, err := objects.ArgAs[*Format](c, 0)
			if err != nil {
				return wire.Null(), err
			}
			return wire.Bool(o != nil && f.Equal(o)), nil
		}),
		"to_string": getter(func(f *Format) wire.Value { return wire.String(f.String()) }),
	}
}

func parserMethod(fn func(c *objects.Call, p *Parser) (wire.Value, error)) objects.Method {
	return func(c *objects.Call) (wire.Value, error) {
		p, err := objects.SelfAs[*Parser](c)
		if err != nil {
			return wire.Null(), err
		}
		return fn(c, p)
	}
}

func wrapRecord(c *objects.Call, rec *Record) wire.Value {
	if rec == nil {
		return wire.Null()
	}
	return c.Wrap(RecordClass, rec)
}

func initParser() {
	ParserClass.New = func(c *objects.Call) (any, error) {
		input, err := c.String(0)
		if err != nil {
			return nil, err
		}
		f, err := formatArg(c, 1)
		if err != nil {
			return nil, err
		}
		return NewParser(input, f)
	}
	ParserClass.Static = map[string]objects.Method{
		"parse_file": func(c *objects.Call) (wire.Value, error) {
			path, err := c.String(0)
			if err != nil {
				return wire.Null(), err
			}
			f, err := formatArg(c, 1)
			if err != nil {
				return wire.Null(), err
			}
			p, err := ParseFile(path, f)
			if err != nil {
				return wire.Null(), err
			}
			return c.Wrap(ParserClass, p), nil
		},
	}
	ParserClass.Methods = map[string]objects.Method{
		"get_header_map": parserMethod(func(_ *objects.Call, p *Parser) (wire.Value, error) {
			if p.header == nil {
				return wire.Null(), nil
			}
			pairs := make([]wire.Pair, 0, len(p.header.index))
			for i, name := range p.header.names {
				if j, ok := p.header.lookup(name); ok && j == i {
					pairs = append(pairs, wire.Pair{Key: name, Value: wire.Int(int64(i))})
				}
			}
			return wire.Map(pairs...), nil
		}),
		"get_header_names": parserMethod(func(_ *objects.Call, p *Parser) (wire.Value, error) {
			return optStrings(slices.Clone(p.HeaderNames())), nil
		}),
		"get_records": parserMethod(func(c *objects.Call, p *Parser) (wire.Value, error) {
			recs, err := p.Records()
			if err != nil {
				return wire.Null(), err
			}
			out := make([]wire.Value, len(recs))
			for i, rec := range recs {
				out[i] = wrapRecord(c, rec)
			}
			return wire.List(out...), nil
		}),
		"next_record": parserMethod(func(c *objects.Call, p *Parser) (wire.Value, error) {
			if rec := p.iter.pending; rec != nil {
				p.iter.pending = nil
				return wrapRecord(c, rec), nil
			}
			rec, err := p.NextRecord()
			if err != nil {
				return wire.Null(), err
			}
			return wrapRecord(c, rec), nil
		}),
		"get_record_number": parserMethod(func(_ *objects.Call, p *Parser) (wire.Value, error) {
			return wire.Int(p.recordNumber), nil
		}),
		"get_current_line_number": parserMethod(func(_ *objects.Call, p *Parser) (wire.Value, error) {
			return wire.Int(p.lex.lines), nil
		}),
		"get_first_end_of_line": parserMethod(func(_ *objects.Call, p *Parser) (wire.Value, error) {
			if p.lex.firstEOL == "" {
				return wire.Null(), nil
			}
			return wire.String(p.lex.firstEOL), nil
		}),
		"iterator": parserMethod(func(c *objects.Call, p *Parser) (wire.Value, error) {
			return c.Wrap(RecordIteratorClass, p.iter), nil
		}),
		"is_closed": parserMethod(func(_ *objects.Call, p *Parser) (wire.Value, error) {
			return wire.Bool(p.closed), nil
		}),
		"close": parserMethod(func(_ *objects.Call, p *Parser) (wire.Value, error) {
			p.Close()
			return wire.Null(), nil
		}),
	}

	RecordIteratorClass.Methods = map[string]objects.Method{
		"has_next": func(c *objects.Call) (wire.Value, error) {
			it, err := objects.SelfAs[*RecordIterator](c)
			if err != nil {
				return wire.Null(), err
			}
			more, err := it.HasNext()
			return wire.Bool(more), err
		},
		"next": func(c *objects.Call) (wire.Value, error) {
			it, err := objects.SelfAs[*RecordIterator](c)
			if err != nil {
				return wire.Null(), err
			}
			rec, err := it.Next()
			if err != nil {
				return wire.Null(), err
			}
			return wrapRecord(c, rec), nil
		},
	}
}

func recordMethod(fn func(c *objects.Call, r *Record) (wire.Value, error)) objects.Method {
	return func(c *objects.Call) (wire.Value, error) {
		r, err := objects.SelfAs[*Record](c)
		if err != nil {
			return wire.Null(), err
		}
		return fn(c, r)
	}
}

func initRecord() {
	RecordClass.Methods = map[string]objects.Method{
		"get": recordMethod(func(c *objects.Call, r *Record) (wire.Value, error) {
			i, err := c.Int(0)
			if err != nil {
				return wire.Null(), err
			}
			v, err := r.Get(i)
			return optString(v), err
		}),
		"get_by_name": recordMethod(func(c *objects.Call, r *Record) (wire.Value, error) {
			name, err := c.String(0)
			if err != nil {
				return wire.Null(), err
			}
			v, err := r.GetByName(name)
			return optString(v), err
		}),
		"values": recordMethod(func(_ *objects.Call, r *Record) (wire.Value, error) {
			return valueList(r.values), nil
		}),
		"size": recordMethod(func(_ *objects.Call, r *Record) (wire.Value, error) {
			return wire.Int(int64(len(r.values))), nil
		}),
		"to_map": recordMethod(func(_ *objects.Call, r *Record) (wire.Value, error) {
			if r.header == nil {
				return wire.Map(), nil
			}
			var pairs []wire.Pair
			for i, name := range r.header.names {
				if i < len(r.values) && r.IsMapped(name) {
					pairs = append(pairs, wire.Pair{Key: name, Value: optString(r.values[i])})
				}
			}
			return wire.Map(pairs...), nil
		}),
		"get_comment": recordMethod(func(_ *objects.Call, r *Record) (wire.Value, error) {
			return optString(r.comment), nil
		}),
		"has_comment": recordMethod(func(_ *objects.Call, r *Record) (wire.Value, error) {
			return wire.Bool(r.comment != nil), nil
		}),
		"is_mapped": recordMethod(func(c *objects.Call, r *Record) (wire.Value, error) {
			name, err := c.String(0)
			return wire.Bool(err == nil && r.IsMapped(name)), err
		}),
		"is_set": recordMethod(func(c *objects.Call, r *Record) (wire.Value, error) {
			name, err := c.String(0)
			return wire.Bool(err == nil && r.IsSet(name)), err
		}),
		"is_consistent": recordMethod(func(_ *objects.Call, r *Record) (wire.Value, error) {
			return wire.Bool(r.IsConsistent()), nil
		}),
		"get_record_number": recordMethod(func(_ *objects.Call, r *Record) (wire.Value, error) {
			return wire.Int(r.number), nil
		}),
		"get_character_position": recordMethod(func(_ *objects.Call, r *Record) (wire.Value, error) {
			return wire.Int(r.position), nil
		}),
		"to_string": recordMethod(func(_ *objects.Call, r *Record) (wire.Value, error) {
			return wire.String(r.String()), nil
		}),
	}
}

func printerMethod(fn func(c *objects.Call, p *Printer) error) objects.Method {
	return func(c *objects.Call) (wire.Value, error) {
		p, err := objects.SelfAs[*Printer](c)
		if err != nil {
			return wire.Null(), err
		}
		return wire.Null(), fn(c, p)
	}
}

func initPrinter() {
	PrinterClass.New = func(c *objects.Call) (any, error) {
		out, err := objects.ArgAs[*StringWriter](c, 0)
		if err != nil {
			return nil, err
		}
		if out == nil {
			return nil, objects.Raise(objects.TagValueError, "CSVPrinter() requires a writer")
		}
		f, err := formatArg(c, 1)
		if err != nil {
			return nil, err
		}
		return NewPrinter(out, f)
	}
	PrinterClass.Methods = map[string]objects.Method{
		"print": printerMethod(func(c *objects.Call, p *Printer) error {
			return p.Print(c.Arg(0))
		}),
		"println": printerMethod(func(_ *objects.Call, p *Printer) error {
			return p.Println()
		}),
		"print_record": printerMethod(func(c *objects.Call, p *Printer) error {
			return p.PrintRecord(c.Args)
		}),
		"print_records": printerMethod(func(c *objects.Call, p *Printer) error {
			rows, ok := c.Arg(0).AsList()
			if !ok {
				return objects.Raise(objects.TagTypeError, "print_records() argument 0 must be a list")
			}
			for i, row := range rows {
				values, ok := row.AsList()
				if !ok {
					return objects.Raise(objects.TagTypeError, "print_records() row %d must be a list", i)
				}
				if err := p.PrintRecord(values); err != nil {
					return err
				}
			}
			return nil
		}),
		"print_comment": printerMethod(func(c *objects.Call, p *Printer) error {
			s, err := c.String(0)
			if err != nil {
				return err
			}
			return p.PrintComment(s)
		}),
		"flush": printerMethod(func(_ *objects.Call, p *Printer) error {
			return p.Flush()
		}),
		"close": printerMethod(func(_ *objects.Call, p *Printer) error {
			p.Close()
			return nil
		}),
		"get_out": func(c *objects.Call) (wire.Value, error) {
			p, err := objects.SelfAs[*Printer](c)
			if err != nil {
				return wire.Null(), err
			}
			return c.Wrap(StringWriterClass, p.out), nil
		},
	}

	StringWriterClass.New = func(*objects.Call) (any, error) { return &StringWriter{}, nil }
	StringWriterClass.Methods = map[string]objects.Method{
		"write": func(c *objects.Call) (wire.Value, error) {
			w, err := objects.SelfAs[*StringWriter](c)
			if err != nil {
				return wire.Null(), err
			}
			s, err := c.String(0)
			if err != nil {
				return wire.Null(), err
			}
			return wire.Null(), w.Write(s)
		},
		"getvalue": func(c *objects.Call) (wire.Value, error) {
			w, err := objects.SelfAs[*StringWriter](c)
			if err != nil {
				return wire.Null(), err
			}
			return wire.String(w.Value()), nil
		},
		"close": func(c *objects.Call) (wire.Value, error) {
			w, err := objects.SelfAs[*StringWriter](c)
			if err != nil {
				return wire.Null(), err
			}
			w.Close()
			return wire.Null(), nil
		},
	}
}
