package commonscsv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmglue/wasmglue/guest/objects"
	"github.com/wasmglue/wasmglue/wire"
)

func mustFormat(t *testing.T, name string) *Format {
	t.Helper()
	f, err := ValueOf(name)
	require.NoError(t, err)
	return f
}

func strs(vs []*string) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		if v == nil {
			out[i] = "<nil>"
		} else {
			out[i] = *v
		}
	}
	return out
}

func collect(t *testing.T, p *Parser) [][]string {
	t.Helper()
	recs, err := p.Records()
	require.NoError(t, err)
	var out [][]string
	for _, r := range recs {
		out = append(out, strs(r.Values()))
	}
	return out
}

func requireTag(t *testing.T, err error, tag string) *objects.Exception {
	t.Helper()
	var exc *objects.Exception
	require.True(t, errors.As(err, &exc), "want exception, got %v", err)
	assert.Equal(t, tag, exc.Tag)
	return exc
}

func TestParseDefault(t *testing.T) {
	p, err := NewParser("a,b\r\n1,\"x,y\"\r\n\r\n2,\"q\"\"q\"\n", mustFormat(t, "DEFAULT"))
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"a", "b"}, {"1", "x,y"}, {"2", `q"q`}}, collect(t, p))
	assert.Equal(t, int64(3), p.recordNumber)
	assert.Equal(t, int64(4), p.lex.lines)
	assert.Equal(t, "\r\n", p.lex.firstEOL)
}

func TestParseEmptyLinesKept(t *testing.T) {
	p, err := NewParser("a\n\nb\n", mustFormat(t, "RFC4180"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {""}, {"b"}}, collect(t, p))
}

func TestParseHeader(t *testing.T) {
	f, err := mustFormat(t, "DEFAULT").with(func(f *Format) { f.Header = []string{} })
	require.NoError(t, err)
	p, err := NewParser("name,age\nbob,3\nann\n", f)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age"}, p.HeaderNames())

	bob, err := p.NextRecord()
	require.NoError(t, err)
	age, err := bob.GetByName("age")
	require.NoError(t, err)
	assert.Equal(t, "3", *age)
	assert.True(t, bob.IsConsistent())
	assert.Equal(t, int64(1), bob.number)

	_, err = bob.GetByName("x")
	exc := requireTag(t, err, objects.TagValueError)
	assert.Equal(t, "Mapping for x not found, expected one of [name age]", exc.Message)

	ann, err := p.NextRecord()
	require.NoError(t, err)
	assert.False(t, ann.IsConsistent())
	assert.True(t, ann.IsMapped("age"))
	assert.False(t, ann.IsSet("age"))
	_, err = ann.GetByName("age")
	requireTag(t, err, objects.TagValueError)

	_, err = ann.Get(5)
	requireTag(t, err, objects.TagIndexError)
}

func TestParseHeaderErrors(t *testing.T) {
	f, err := mustFormat(t, "DEFAULT").with(func(f *Format) { f.Header = []string{} })
	require.NoError(t, err)

	_, err = NewParser("a,a\n1,2\n", f)
	exc := requireTag(t, err, objects.TagValueError)
	assert.Contains(t, exc.Message, `duplicate name: "a"`)

	_, err = NewParser("a,,b\n", f)
	requireTag(t, err, objects.TagValueError)

	excel, err := mustFormat(t, "EXCEL").with(func(f *Format) { f.Header = []string{} })
	require.NoError(t, err)
	p, err := NewParser("a,,b\n1,2,3\n", excel)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "b"}, p.HeaderNames())
}

func TestRecordWithoutHeader(t *testing.T) {
	p, err := NewParser("x\n", mustFormat(t, "DEFAULT"))
	require.NoError(t, err)
	rec, err := p.NextRecord()
	require.NoError(t, err)

	_, err = rec.GetByName("x")
	exc := requireTag(t, err, objects.TagValueError)
	assert.Equal(t, "No header mapping was specified, the record values can't be accessed by name", exc.Message)
	assert.True(t, rec.IsConsistent())
}

func TestParseUnterminatedQuote(t *testing.T) {
	p, err := NewParser("a\n\"abc", mustFormat(t, "DEFAULT"))
	require.NoError(t, err)
	_, err = p.NextRecord()
	require.NoError(t, err)
	_, err = p.NextRecord()
	exc := requireTag(t, err, objects.TagIOError)
	assert.Equal(t, "(startline 2) EOF reached before encapsulated token finished", exc.Message)
}

func TestParseMySQLNulls(t *testing.T) {
	p, err := NewParser("a\t\\N\tb\\tc\n", mustFormat(t, "MYSQL"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "<nil>", "b\tc"}}, collect(t, p))
}

func TestParseComments(t *testing.T) {
	f, err := mustFormat(t, "DEFAULT").with(func(f *Format) { f.CommentMarker = '#' })
	require.NoError(t, err)
	p, err := NewParser("# first\n#second\na,b\n", f)
	require.NoError(t, err)

	rec, err := p.NextRecord()
	require.NoError(t, err)
	require.NotNil(t, rec.comment)
	assert.Equal(t, "first\nsecond", *rec.comment)
	assert.Equal(t, []string{"a", "b"}, strs(rec.Values()))
}

func TestParseSurroundingSpacesAndTrailingDelimiter(t *testing.T) {
	f, err := mustFormat(t, "DEFAULT").with(func(f *Format) {
		f.IgnoreSurroundingSpaces = true
		f.TrailingDelimiter = true
	})
	require.NoError(t, err)
	p, err := NewParser("  a , \"b\"  ,\n", f)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}}, collect(t, p))
}

func TestRecordIterator(t *testing.T) {
	p, err := NewParser("1\n2\n", mustFormat(t, "DEFAULT"))
	require.NoError(t, err)
	it := p.iter

	more, err := it.HasNext()
	require.NoError(t, err)
	assert.True(t, more)
	rec, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, strs(rec.Values()))

	rec, err = it.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, strs(rec.Values()))

	more, err = it.HasNext()
	require.NoError(t, err)
	assert.False(t, more)
	_, err = it.Next()
	exc := requireTag(t, err, objects.TagStopIteration)
	assert.Equal(t, "No more CSV records available", exc.Message)

	p.Close()
	_, err = it.Next()
	exc = requireTag(t, err, objects.TagStopIteration)
	assert.Equal(t, "CSVParser has been closed", exc.Message)
}

func TestFormatValidation(t *testing.T) {
	_, err := NewFormat('\n')
	exc := requireTag(t, err, objects.TagValueError)
	assert.Equal(t, "The delimiter cannot be a line break", exc.Message)

	_, err = mustFormat(t, "DEFAULT").with(func(f *Format) { f.Quote = ',' })
	requireTag(t, err, objects.TagValueError)

	_, err = mustFormat(t, "DEFAULT").with(func(f *Format) { f.QuoteMode = QuoteNone })
	exc = requireTag(t, err, objects.TagValueError)
	assert.Equal(t, "No quotes mode set but no escape character is set", exc.Message)

	_, err = mustFormat(t, "DEFAULT").with(func(f *Format) { f.Header = []string{"a", "b", "a"} })
	requireTag(t, err, objects.TagValueError)

	_, err = ValueOf("NOPE")
	requireTag(t, err, objects.TagValueError)

	assert.True(t, mustFormat(t, "DEFAULT").Equal(mustFormat(t, "DEFAULT")))
	assert.False(t, mustFormat(t, "DEFAULT").Equal(mustFormat(t, "RFC4180")))
}

func TestPrinter(t *testing.T) {
	out := &StringWriter{}
	p, err := NewPrinter(out, mustFormat(t, "DEFAULT"))
	require.NoError(t, err)

	require.NoError(t, p.PrintRecord([]wire.Value{wire.String("a"), wire.String("b,c"), wire.Null(), wire.Int(1)}))
	require.NoError(t, p.PrintRecord([]wire.Value{wire.String(""), wire.String(`say "hi"`), wire.String("x ")}))
	assert.Equal(t, "a,\"b,c\",,1\r\n\"\",\"say \"\"hi\"\"\",\"x \"\r\n", out.Value())

	p.Close()
	err = p.Print(wire.String("late"))
	requireTag(t, err, objects.TagIOError)
}

func TestPrinterHeaderAndComments(t *testing.T) {
	f, err := mustFormat(t, "RFC4180").with(func(f *Format) {
		f.Header = []string{"k", "v"}
		f.CommentMarker = '#'
		f.RecordSeparator = "\n"
	})
	require.NoError(t, err)
	out := &StringWriter{}
	p, err := NewPrinter(out, f)
	require.NoError(t, err)

	require.NoError(t, p.PrintComment("one\r\ntwo"))
	require.NoError(t, p.Print(wire.String("x")))
	require.NoError(t, p.PrintComment("three"))
	assert.Equal(t, "k,v\n# one\n# two\nx\n# three\n", out.Value())
}

func TestFormatValues(t *testing.T) {
	values := []wire.Value{wire.String("a"), wire.Null(), wire.String("x\ty")}
	assert.Equal(t, "a\t\\N\tx\\\ty", mustFormat(t, "MYSQL").FormatValues(values))

	nonNumeric, err := mustFormat(t, "DEFAULT").with(func(f *Format) { f.QuoteMode = QuoteNonNumeric })
	require.NoError(t, err)
	assert.Equal(t, `"a",,2.5`, nonNumeric.FormatValues([]wire.Value{wire.String("a"), wire.Null(), wire.Double(2.5)}))
}
