// Package commonscsv is the guest side of the commons_csv module: CSV
// formats, parsing and printing, exported as guest classes.
package commonscsv

import (
	"fmt"
	"slices"
	"strings"

	"github.com/wasmglue/wasmglue/guest/objects"
)

// Module is the module name the classes are exported under.
const Module = "commons_csv"

// QuoteMode selects which printed values are quoted.
type QuoteMode string

const (
	QuoteAll        QuoteMode = "ALL"
	QuoteAllNonNull QuoteMode = "ALL_NON_NULL"
	QuoteMinimal    QuoteMode = "MINIMAL"
	QuoteNonNumeric QuoteMode = "NON_NUMERIC"
	QuoteNone       QuoteMode = "NONE"
)

func parseQuoteMode(s string) (QuoteMode, error) {
	switch m := QuoteMode(s); m {
	case QuoteAll, QuoteAllNonNull, QuoteMinimal, QuoteNonNumeric, QuoteNone:
		return m, nil
	}
	return "", objects.Raise(objects.TagValueError, "no quote mode named %q", s)
}

const (
	cr = '\r'
	lf = '\n'
	sp = ' '
)

// Format is an immutable CSV dialect. A zero rune means the character is
// not set.
type Format struct {
	Delimiter       rune
	Quote           rune
	Escape          rune
	CommentMarker   rune
	QuoteMode       QuoteMode
	RecordSeparator string
	NullString      *string
	// Header is nil when records have no header; empty when the first record
	// is the header.
	Header                  []string
	SkipHeaderRecord        bool
	IgnoreEmptyLines        bool
	IgnoreSurroundingSpaces bool
	IgnoreHeaderCase        bool
	AllowMissingColumnNames bool
	Trim                    bool
	TrailingDelimiter       bool
}

func ptr(s string) *string { return &s }

// Predefined formats by name.
var predefined = map[string]Format{
	"DEFAULT": {Delimiter: ',', Quote: '"', RecordSeparator: "\r\n", IgnoreEmptyLines: true},
	"RFC4180": {Delimiter: ',', Quote: '"', RecordSeparator: "\r\n"},
	"EXCEL":   {Delimiter: ',', Quote: '"', RecordSeparator: "\r\n", AllowMissingColumnNames: true},
	"TDF":     {Delimiter: '\t', Quote: '"', RecordSeparator: "\r\n", IgnoreSurroundingSpaces: true, IgnoreEmptyLines: true},
	"MYSQL": {
		Delimiter:       '\t',
		Escape:          '\\',
		RecordSeparator: "\n",
		NullString:      ptr(`\N`),
		QuoteMode:       QuoteAllNonNull,
	},
}

// ValueOf returns a copy of the predefined format called name.
func ValueOf(name string) (*Format, error) {
	f, ok := predefined[name]
	if !ok {
		return nil, objects.Raise(objects.TagValueError, "no predefined format named %q", name)
	}
	return &f, nil
}

// NewFormat returns a format that only sets the delimiter.
func NewFormat(delimiter rune) (*Format, error) {
	f := &Format{Delimiter: delimiter}
	return f, f.validate()
}

func isLineBreak(c rune) bool { return c == lf || c == cr }

func (f *Format) validate() error {
	if isLineBreak(f.Delimiter) {
		return objects.Raise(objects.TagValueError, "The delimiter cannot be a line break")
	}
	if f.Quote != 0 && f.Quote == f.Delimiter {
		return objects.Raise(objects.TagValueError, "The quoteChar character and the delimiter cannot be the same ('%c')", f.Quote)
	}
	if f.Escape != 0 && f.Escape == f.Delimiter {
		return objects.Raise(objects.TagValueError, "The escape character and the delimiter cannot be the same ('%c')", f.Escape)
	}
	if f.CommentMarker != 0 && f.CommentMarker == f.Delimiter {
		return objects.Raise(objects.TagValueError, "The comment start character and the delimiter cannot be the same ('%c')", f.CommentMarker)
	}
	if f.Quote != 0 && f.Quote == f.CommentMarker {
		return objects.Raise(objects.TagValueError, "The comment start character and the quoteChar cannot be the same ('%c')", f.CommentMarker)
	}
	if f.Escape != 0 && f.Escape == f.CommentMarker {
		return objects.Raise(objects.TagValueError, "The comment start and the escape character cannot be the same ('%c')", f.CommentMarker)
	}
	if f.Escape == 0 && f.QuoteMode == QuoteNone {
		return objects.Raise(objects.TagValueError, "No quotes mode set but no escape character is set")
	}
	seen := make(map[string]bool, len(f.Header))
	for _, h := range f.Header {
		if seen[h] {
			return objects.Raise(objects.TagValueError, "The header contains a duplicate entry: '%s' in %v", h, f.Header)
		}
		seen[h] = true
	}
	return nil
}

// with returns a validated copy of f changed by fn.
func (f *Format) with(fn func(*Format)) (*Format, error) {
	c := *f
	c.Header = slices.Clone(f.Header)
	fn(&c)
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Equal compares the settings that change parsing or printing.
func (f *Format) Equal(o *Format) bool {
	eqPtr := func(a, b *string) bool {
		if a == nil || b == nil {
			return a == b
		}
		return *a == *b
	}
	return f.Delimiter == o.Delimiter &&
		f.QuoteMode == o.QuoteMode &&
		f.Quote == o.Quote &&
		f.CommentMarker == o.CommentMarker &&
		f.Escape == o.Escape &&
		eqPtr(f.NullString, o.NullString) &&
		slices.Equal(f.Header, o.Header) &&
		(f.Header == nil) == (o.Header == nil) &&
		f.IgnoreSurroundingSpaces == o.IgnoreSurroundingSpaces &&
		f.IgnoreEmptyLines == o.IgnoreEmptyLines &&
		f.SkipHeaderRecord == o.SkipHeaderRecord &&
		f.RecordSeparator == o.RecordSeparator
}

func (f *Format) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Delimiter=<%c>", f.Delimiter)
	if f.Escape != 0 {
		fmt.Fprintf(&sb, " Escape=<%c>", f.Escape)
	}
	if f.Quote != 0 {
		fmt.Fprintf(&sb, " QuoteChar=<%c>", f.Quote)
	}
	if f.CommentMarker != 0 {
		fmt.Fprintf(&sb, " CommentStart=<%c>", f.CommentMarker)
	}
	if f.NullString != nil {
		fmt.Fprintf(&sb, " NullString=<%s>", *f.NullString)
	}
	if f.RecordSeparator != "" {
		fmt.Fprintf(&sb, " RecordSeparator=<%q>", f.RecordSeparator)
	}
	if f.IgnoreEmptyLines {
		sb.WriteString(" EmptyLines:ignored")
	}
	if f.IgnoreSurroundingSpaces {
		sb.WriteString(" SurroundingSpaces:ignored")
	}
	if f.IgnoreHeaderCase {
		sb.WriteString(" IgnoreHeaderCase:ignored")
	}
	fmt.Fprintf(&sb, " SkipHeaderRecord:%t", f.SkipHeaderRecord)
	if f.Header != nil {
		fmt.Fprintf(&sb, " Header:%v", f.Header)
	}
	return sb.String()
}
