package csv

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/wasmglue/wasmglue/foreign"
	"github.com/wasmglue/wasmglue/wire"
)

// Predefined format names accepted by Predefined.
const (
	Default = "DEFAULT"
	RFC4180 = "RFC4180"
	Excel   = "EXCEL"
	TDF     = "TDF"
	MySQL   = "MYSQL"
)

// QuoteMode names a quoting policy; the empty mode means unset.
type QuoteMode string

const (
	QuoteAll        QuoteMode = "ALL"
	QuoteAllNonNull QuoteMode = "ALL_NON_NULL"
	QuoteMinimal    QuoteMode = "MINIMAL"
	QuoteNonNumeric QuoteMode = "NON_NUMERIC"
	QuoteNone       QuoteMode = "NONE"
)

// Format is an immutable CSV dialect. The With methods return a new Format
// and leave the receiver unchanged.
type Format struct{ obj *foreign.Object }

func wrapFormat(obj *foreign.Object) *Format { return &Format{obj: obj} }

func (f *Format) ForeignHandle() wire.Handle { return f.obj.ForeignHandle() }

// NewFormat creates a format with the given delimiter and nothing else set.
func NewFormat(ctx context.Context, env *foreign.Env, delimiter rune) (*Format, error) {
	return foreign.Construct(ctx, env, FormatClass, wrapFormat, string(delimiter))
}

// Predefined returns the predefined format called name.
func Predefined(ctx context.Context, env *foreign.Env, name string) (*Format, error) {
	v, err := foreign.CallStatic(ctx, env, FormatClass, formatValueOf, name)
	if err != nil {
		return nil, err
	}
	return foreign.Adopt(ctx, env, FormatClass, v, wrapFormat)
}

// char marshals an optional character; 0 means unset.
func char(r rune) any {
	if r == 0 {
		return nil
	}
	return string(r)
}

func asChar(v wire.Value) (rune, error) {
	s, ok, err := foreign.AsOptionalString(v)
	if err != nil || !ok {
		return 0, err
	}
	r, n := utf8.DecodeRuneInString(s)
	if n != len(s) || r == utf8.RuneError {
		return 0, &foreign.Error{Kind: foreign.ErrContract, Message: fmt.Sprintf("%q is not a single character", s)}
	}
	return r, nil
}

func asOptional(v wire.Value) (*string, error) {
	s, ok, err := foreign.AsOptionalString(v)
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

func (f *Format) derive(ctx context.Context, op *foreign.Op, args ...any) (*Format, error) {
	v, err := f.obj.Call(ctx, op, args...)
	if err != nil {
		return nil, err
	}
	return foreign.Adopt(ctx, f.obj.Env(), FormatClass, v, wrapFormat)
}

func (f *Format) char(ctx context.Context, op *foreign.Op) (rune, error) {
	return foreign.Decode(asChar)(f.obj.Call(ctx, op))
}

func (f *Format) flag(ctx context.Context, op *foreign.Op) (bool, error) {
	return foreign.Decode(foreign.AsBool)(f.obj.Call(ctx, op))
}

func (f *Format) Delimiter(ctx context.Context) (rune, error) { return f.char(ctx, formatDelimiter) }

// Quote returns the quote character, or 0 when quoting is disabled.
func (f *Format) Quote(ctx context.Context) (rune, error) { return f.char(ctx, formatQuote) }

func (f *Format) Escape(ctx context.Context) (rune, error) { return f.char(ctx, formatEscape) }

func (f *Format) CommentMarker(ctx context.Context) (rune, error) {
	return f.char(ctx, formatCommentMarker)
}

func (f *Format) RecordSeparator(ctx context.Context) (string, error) {
	return foreign.Decode(foreign.AsString)(f.obj.Call(ctx, formatRecordSeparator))
}

// NullString returns the string read and written for null values, or nil.
func (f *Format) NullString(ctx context.Context) (*string, error) {
	return foreign.Decode(asOptional)(f.obj.Call(ctx, formatNullString))
}

// Header returns the declared column names. It is nil when the format has
// no header and empty when the first record is the header.
func (f *Format) Header(ctx context.Context) ([]string, error) {
	v, err := f.obj.Call(ctx, formatHeader)
	if err != nil || v.IsNull() {
		return nil, err
	}
	hs, err := foreign.AsStrings(v)
	if hs == nil && err == nil {
		hs = []string{}
	}
	return hs, err
}

func (f *Format) QuoteMode(ctx context.Context) (QuoteMode, error) {
	v, err := f.obj.Call(ctx, formatQuoteMode)
	if err != nil {
		return "", err
	}
	s, _, err := foreign.AsOptionalString(v)
	return QuoteMode(s), err
}

func (f *Format) SkipHeaderRecord(ctx context.Context) (bool, error) {
	return f.flag(ctx, formatSkipHeaderRecord)
}

func (f *Format) IgnoreEmptyLines(ctx context.Context) (bool, error) {
	return f.flag(ctx, formatIgnoreEmptyLines)
}

func (f *Format) IgnoreSurroundingSpaces(ctx context.Context) (bool, error) {
	return f.flag(ctx, formatIgnoreSurroundingSpaces)
}

func (f *Format) IgnoreHeaderCase(ctx context.Context) (bool, error) {
	return f.flag(ctx, formatIgnoreHeaderCase)
}

func (f *Format) AllowMissingColumnNames(ctx context.Context) (bool, error) {
	return f.flag(ctx, formatAllowMissingColumnNames)
}

func (f *Format) Trim(ctx context.Context) (bool, error) { return f.flag(ctx, formatTrim) }

func (f *Format) TrailingDelimiter(ctx context.Context) (bool, error) {
	return f.flag(ctx, formatTrailingDelimiter)
}

func (f *Format) WithDelimiter(ctx context.Context, r rune) (*Format, error) {
	return f.derive(ctx, formatWithDelimiter, string(r))
}

// WithQuote sets the quote character; 0 disables quoting.
func (f *Format) WithQuote(ctx context.Context, r rune) (*Format, error) {
	return f.derive(ctx, formatWithQuote, char(r))
}

func (f *Format) WithEscape(ctx context.Context, r rune) (*Format, error) {
	return f.derive(ctx, formatWithEscape, char(r))
}

func (f *Format) WithCommentMarker(ctx context.Context, r rune) (*Format, error) {
	return f.derive(ctx, formatWithCommentMarker, char(r))
}

func (f *Format) WithQuoteMode(ctx context.Context, m QuoteMode) (*Format, error) {
	var arg any
	if m != "" {
		arg = string(m)
	}
	return f.derive(ctx, formatWithQuoteMode, arg)
}

func (f *Format) WithRecordSeparator(ctx context.Context, sep string) (*Format, error) {
	return f.derive(ctx, formatWithRecordSeparator, sep)
}

// WithNullString sets the null representation; nil removes it.
func (f *Format) WithNullString(ctx context.Context, s *string) (*Format, error) {
	var arg any
	if s != nil {
		arg = *s
	}
	return f.derive(ctx, formatWithNullString, arg)
}

// WithHeader declares the column names. With no names the first record is
// read as the header and kept as a record.
func (f *Format) WithHeader(ctx context.Context, names ...string) (*Format, error) {
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}
	return f.derive(ctx, formatWithHeader, args...)
}

// WithFirstRecordAsHeader reads the header from the first record and skips it.
func (f *Format) WithFirstRecordAsHeader(ctx context.Context) (*Format, error) {
	return f.derive(ctx, formatWithFirstRecordAsHeader)
}

func (f *Format) WithSkipHeaderRecord(ctx context.Context, b bool) (*Format, error) {
	return f.derive(ctx, formatWithSkipHeaderRecord, b)
}

func (f *Format) WithIgnoreEmptyLines(ctx context.Context, b bool) (*Format, error) {
	return f.derive(ctx, formatWithIgnoreEmptyLines, b)
}

func (f *Format) WithIgnoreSurroundingSpaces(ctx context.Context, b bool) (*Format, error) {
	return f.derive(ctx, formatWithIgnoreSurroundingSpaces, b)
}

func (f *Format) WithIgnoreHeaderCase(ctx context.Context, b bool) (*Format, error) {
	return f.derive(ctx, formatWithIgnoreHeaderCase, b)
}

func (f *Format) WithAllowMissingColumnNames(ctx context.Context, b bool) (*Format, error) {
	return f.derive(ctx, formatWithAllowMissingColumnNames, b)
}

func (f *Format) WithTrim(ctx context.Context, b bool) (*Format, error) {
	return f.derive(ctx, formatWithTrim, b)
}

func (f *Format) WithTrailingDelimiter(ctx context.Context, b bool) (*Format, error) {
	return f.derive(ctx, formatWithTrailingDelimiter, b)
}

// Format renders values as one record without the record separator. nil
// values print as the null string, or empty when none is set.
func (f *Format) Format(ctx context.Context, values ...any) (string, error) {
	return foreign.Decode(foreign.AsString)(f.obj.Call(ctx, formatFormat, values...))
}

// Parse returns a parser over input.
func (f *Format) Parse(ctx context.Context, input string) (*Parser, error) {
	v, err := f.obj.Call(ctx, formatParse, input)
	if err != nil {
		return nil, err
	}
	return foreign.Adopt(ctx, f.obj.Env(), ParserClass, v, wrapParser)
}

// Print returns a printer writing to out in this format.
func (f *Format) Print(ctx context.Context, out *StringWriter) (*Printer, error) {
	v, err := f.obj.Call(ctx, formatPrint, out)
	if err != nil {
		return nil, err
	}
	return foreign.Adopt(ctx, f.obj.Env(), PrinterClass, v, wrapPrinter)
}

// Equal reports whether both formats describe the same dialect.
func (f *Format) Equal(ctx context.Context, o *Format) (bool, error) {
	return foreign.Decode(foreign.AsBool)(f.obj.Call(ctx, formatEquals, o))
}

func (f *Format) Describe(ctx context.Context) (string, error) {
	return foreign.Decode(foreign.AsString)(f.obj.Call(ctx, formatToString))
}
