package commonscsv

import (
	"strings"
	"unicode/utf8"

	"github.com/wasmglue/wasmglue/guest/objects"
)

const eof = -1

type endKind uint8

const (
	endField endKind = iota
	endRecord
	endInput
)

// lexer splits input into records. It works on runes so that delimiters and
// quotes may be any character.
type lexer struct {
	f     *Format
	in    []rune
	pos   int
	lines int64
	// firstEOL is the first line break seen, or empty.
	firstEOL string
}

func newLexer(f *Format, input string) *lexer {
	return &lexer{f: f, in: []rune(input)}
}

func (l *lexer) peek(ahead int) rune {
	if l.pos+ahead >= len(l.in) {
		return eof
	}
	return l.in[l.pos+ahead]
}

// lineBreak consumes a line break at the cursor.
func (l *lexer) lineBreak() bool {
	var eol string
	switch {
	case l.peek(0) == cr && l.peek(1) == lf:
		eol = "\r\n"
	case l.peek(0) == cr:
		eol = "\r"
	case l.peek(0) == lf:
		eol = "\n"
	default:
		return false
	}
	l.pos += utf8.RuneCountInString(eol)
	l.lines++
	if l.firstEOL == "" {
		l.firstEOL = eol
	}
	return true
}

func (l *lexer) atEOF() bool { return l.pos >= len(l.in) }

func isSpace(c rune) bool { return c == sp || c == '\t' }

// rawRecord is one record as read, before header and null handling.
type rawRecord struct {
	values  []string
	quoted  []bool
	comment *string
	// position is the rune offset of the first character.
	position int64
}

// next returns the next record, or nil at the end of input.
func (l *lexer) next() (*rawRecord, error) {
	var comments []string
	for {
		if l.f.IgnoreEmptyLines {
			for l.lineBreak() {
			}
		}
		if l.atEOF() {
			return nil, nil
		}
		if l.f.CommentMarker != 0 && l.peek(0) == l.f.CommentMarker {
			line := strings.TrimPrefix(l.readLine(), string(l.f.CommentMarker))
			comments = append(comments, strings.TrimSpace(line))
			continue
		}
		break
	}

	rec := &rawRecord{position: int64(l.pos)}
	if len(comments) > 0 {
		c := strings.Join(comments, "\n")
		rec.comment = &c
	}
	for {
		value, quoted, end, err := l.field()
		if err != nil {
			return nil, err
		}
		rec.values = append(rec.values, value)
		rec.quoted = append(rec.quoted, quoted)
		if end != endField {
			break
		}
	}
	if l.f.TrailingDelimiter && len(rec.values) > 1 {
		if last := len(rec.values) - 1; rec.values[last] == "" && !rec.quoted[last] {
			rec.values = rec.values[:last]
			rec.quoted = rec.quoted[:last]
		}
	}
	return rec, nil
}

// readLine consumes the rest of the line, including its line break.
func (l *lexer) readLine() string {
	start := l.pos
	for !l.atEOF() && !isLineBreak(l.peek(0)) {
		l.pos++
	}
	s := string(l.in[start:l.pos])
	l.lineBreak()
	return s
}

// terminator consumes a delimiter or line break at the cursor.
func (l *lexer) terminator() (endKind, bool) {
	switch {
	case l.atEOF():
		return endInput, true
	case l.peek(0) == l.f.Delimiter:
		l.pos++
		return endField, true
	case l.lineBreak():
		return endRecord, true
	}
	return 0, false
}

func (l *lexer) field() (string, bool, endKind, error) {
	if l.f.IgnoreSurroundingSpaces {
		for isSpace(l.peek(0)) && l.peek(0) != l.f.Delimiter {
			l.pos++
		}
	}
	if l.f.Quote != 0 && l.peek(0) == l.f.Quote {
		s, end, err := l.quoted()
		return s, true, end, err
	}
	var sb strings.Builder
	for {
		if end, ok := l.terminator(); ok {
			s := sb.String()
			if l.f.IgnoreSurroundingSpaces {
				s = strings.TrimRight(s, " \t")
			}
			return s, false, end, nil
		}
		c := l.peek(0)
		if l.f.Escape != 0 && c == l.f.Escape && l.peek(1) != eof {
			l.unescape(&sb)
			continue
		}
		sb.WriteRune(c)
		l.pos++
	}
}

// unescape consumes an escape sequence. Unknown sequences are kept as is.
func (l *lexer) unescape(sb *strings.Builder) {
	c := l.peek(1)
	l.pos += 2
	switch c {
	case 'r':
		sb.WriteRune(cr)
	case 'n':
		sb.WriteRune(lf)
	case 't':
		sb.WriteRune('\t')
	case 'b':
		sb.WriteRune('\b')
	case 'f':
		sb.WriteRune('\f')
	case cr, lf, '\t', '\b', '\f', l.f.Delimiter, l.f.Escape:
		sb.WriteRune(c)
	default:
		if c != 0 && (c == l.f.Quote || c == l.f.CommentMarker) {
			sb.WriteRune(c)
			return
		}
		sb.WriteRune(l.f.Escape)
		sb.WriteRune(c)
	}
}

func (l *lexer) quoted() (string, endKind, error) {
	startLine := l.lines + 1
	l.pos++
	var sb strings.Builder
	for {
		c := l.peek(0)
		switch {
		case c == eof:
			return "", 0, objects.Raise(objects.TagIOError, "(startline %d) EOF reached before encapsulated token finished", startLine)
		case l.f.Escape != 0 && l.f.Escape != l.f.Quote && c == l.f.Escape && l.peek(1) != eof:
			l.unescape(&sb)
		case c == l.f.Quote && l.peek(1) == l.f.Quote:
			sb.WriteRune(c)
			l.pos += 2
		case c == l.f.Quote:
			l.pos++
			for isSpace(l.peek(0)) && l.peek(0) != l.f.Delimiter {
				l.pos++
			}
			end, ok := l.terminator()
			if !ok {
				return "", 0, objects.Raise(objects.TagIOError, "(line %d) invalid char between encapsulated token and delimiter", l.lines+1)
			}
			return sb.String(), end, nil
		default:
			if c == cr || c == lf {
				if c == lf || l.peek(1) != lf {
					l.lines++
				}
			}
			sb.WriteRune(c)
			l.pos++
		}
	}
}
