package commonscsv

import (
	"strconv"
	"strings"

	"github.com/wasmglue/wasmglue/guest/objects"
	"github.com/wasmglue/wasmglue/wire"
)

// StringWriter is an in-memory text sink for printers.
type StringWriter struct {
	sb     strings.Builder
	closed bool
}

func (w *StringWriter) Write(s string) error {
	if w.closed {
		return objects.Raise(objects.TagValueError, "I/O operation on closed file.")
	}
	w.sb.WriteString(s)
	return nil
}

// Value returns everything written so far. It stays readable after Close.
func (w *StringWriter) Value() string { return w.sb.String() }

func (w *StringWriter) Close() { w.closed = true }

// Printer writes records in a format.
type Printer struct {
	out       *StringWriter
	format    *Format
	newRecord bool
	closed    bool
}

// NewPrinter returns a printer on out. An explicit header is printed
// immediately unless the format skips the header record.
func NewPrinter(out *StringWriter, f *Format) (*Printer, error) {
	p := &Printer{out: out, format: f, newRecord: true}
	if len(f.Header) > 0 && !f.SkipHeaderRecord {
		header, _ := wire.Strings(f.Header...).AsList()
		if err := p.PrintRecord(header); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Printer) write(s string) error {
	if p.closed {
		return objects.Raise(objects.TagIOError, "CSVPrinter has been closed")
	}
	return p.out.Write(s)
}

// Print writes one value of the current record.
func (p *Printer) Print(v wire.Value) error {
	var sb strings.Builder
	p.format.appendValue(&sb, v, p.newRecord)
	if err := p.write(sb.String()); err != nil {
		return err
	}
	p.newRecord = false
	return nil
}

// Println ends the current record.
func (p *Printer) Println() error {
	s := p.format.RecordSeparator
	if p.format.TrailingDelimiter {
		s = string(p.format.Delimiter) + s
	}
	if err := p.write(s); err != nil {
		return err
	}
	p.newRecord = true
	return nil
}

func (p *Printer) PrintRecord(values []wire.Value) error {
	for _, v := range values {
		if err := p.Print(v); err != nil {
			return err
		}
	}
	return p.Println()
}

// PrintComment writes comment with each line prefixed by the comment
// marker. Formats without a marker drop comments.
func (p *Printer) PrintComment(comment string) error {
	marker := p.format.CommentMarker
	if marker == 0 {
		return nil
	}
	if !p.newRecord {
		if err := p.Println(); err != nil {
			return err
		}
	}
	lines := strings.Split(strings.ReplaceAll(comment, "\r\n", "\n"), "\n")
	for _, line := range lines {
		line = strings.ReplaceAll(line, "\r", "")
		if err := p.write(string(marker) + " " + line); err != nil {
			return err
		}
		if err := p.Println(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) Flush() error {
	if p.closed {
		return objects.Raise(objects.TagIOError, "CSVPrinter has been closed")
	}
	return nil
}

// Close closes the printer and its writer. Closing twice is a no-op.
func (p *Printer) Close() {
	p.closed = true
	p.out.Close()
}

// FormatValues renders values as one record without a record separator.
func (f *Format) FormatValues(values []wire.Value) string {
	var sb strings.Builder
	for i, v := range values {
		f.appendValue(&sb, v, i == 0)
	}
	return sb.String()
}

func text(v wire.Value) (s string, numeric bool) {
	switch v.Kind() {
	case wire.KindString:
		s, _ := v.AsString()
		return s, false
	case wire.KindInt:
		i, _ := v.AsInt()
		return strconv.FormatInt(i, 10), true
	case wire.KindDouble:
		d, _ := v.AsDouble()
		return strconv.FormatFloat(d, 'g', -1, 64), true
	case wire.KindBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b), false
	}
	return v.String(), false
}

func (f *Format) appendValue(sb *strings.Builder, v wire.Value, newRecord bool) {
	if !newRecord {
		sb.WriteRune(f.Delimiter)
	}
	if v.IsNull() {
		switch {
		case f.NullString == nil:
		case f.QuoteMode == QuoteAll && f.Quote != 0:
			f.appendQuoted(sb, *f.NullString)
		default:
			sb.WriteString(*f.NullString)
		}
		return
	}
	s, numeric := text(v)
	if f.Trim {
		s = strings.TrimSpace(s)
	}
	switch {
	case f.Quote != 0 && f.QuoteMode != QuoteNone:
		var quote bool
		switch f.QuoteMode {
		case QuoteAll, QuoteAllNonNull:
			quote = true
		case QuoteNonNumeric:
			quote = !numeric
		default:
			quote = f.needsQuotes(s, newRecord)
		}
		if quote {
			f.appendQuoted(sb, s)
		} else {
			sb.WriteString(s)
		}
	case f.Escape != 0:
		f.appendEscaped(sb, s)
	default:
		sb.WriteString(s)
	}
}

// needsQuotes decides minimal quoting.
func (f *Format) needsQuotes(s string, newRecord bool) bool {
	if s == "" {
		return newRecord
	}
	runes := []rune(s)
	first := runes[0]
	if newRecord && (first < 0x20 || first > 0x21 && first < 0x23 || first > 0x2B && first < 0x2D || first > 0x7E) {
		return true
	}
	if first <= '#' {
		return true
	}
	for _, c := range runes {
		if c == lf || c == cr || c == f.Quote || c == f.Delimiter || (f.Escape != 0 && c == f.Escape) {
			return true
		}
	}
	return runes[len(runes)-1] <= sp
}

func (f *Format) appendQuoted(sb *strings.Builder, s string) {
	sb.WriteRune(f.Quote)
	for _, c := range s {
		switch {
		case c == f.Quote && f.Escape != 0:
			sb.WriteRune(f.Escape)
		case c == f.Quote:
			sb.WriteRune(f.Quote)
		case f.Escape != 0 && c == f.Escape:
			sb.WriteRune(f.Escape)
		}
		sb.WriteRune(c)
	}
	sb.WriteRune(f.Quote)
}

func (f *Format) appendEscaped(sb *strings.Builder, s string) {
	for _, c := range s {
		switch {
		case c == cr:
			sb.WriteRune(f.Escape)
			sb.WriteRune('r')
			continue
		case c == lf:
			sb.WriteRune(f.Escape)
			sb.WriteRune('n')
			continue
		case c == f.Delimiter || c == f.Escape || (f.Quote != 0 && c == f.Quote):
			sb.WriteRune(f.Escape)
		}
		sb.WriteRune(c)
	}
}
