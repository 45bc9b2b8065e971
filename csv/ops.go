// Package csv is the host API of the guest commons_csv module. Every type is
// a proxy: state and behavior live in the guest, reached through a
// foreign.Env.
package csv

import (
	"github.com/wasmglue/wasmglue/foreign"
)

// Module is the guest module exporting the CSV classes.
const Module = "commons_csv"

var (
	anyArgs      = foreign.Any
	optString    = foreign.String.OrNull()
	optRef       = foreign.Ref.OrNull()
	optStrings   = foreign.ListOf(foreign.String).OrNull()
	nullableList = foreign.ListOf(foreign.String.OrNull())
)

// CSVFormat operations.
var (
	formatValueOf = foreign.NewOp("value_of", foreign.Ref, foreign.String)

	formatDelimiter               = foreign.NewOp("get_delimiter", foreign.String)
	formatQuote                   = foreign.NewOp("get_quote_character", optString)
	formatEscape                  = foreign.NewOp("get_escape_character", optString)
	formatCommentMarker           = foreign.NewOp("get_comment_marker", optString)
	formatRecordSeparator         = foreign.NewOp("get_record_separator", foreign.String)
	formatNullString              = foreign.NewOp("get_null_string", optString)
	formatHeader                  = foreign.NewOp("get_header", optStrings)
	formatQuoteMode               = foreign.NewOp("get_quote_mode", optString)
	formatSkipHeaderRecord        = foreign.NewOp("get_skip_header_record", foreign.Bool)
	formatIgnoreEmptyLines        = foreign.NewOp("get_ignore_empty_lines", foreign.Bool)
	formatIgnoreSurroundingSpaces = foreign.NewOp("get_ignore_surrounding_spaces", foreign.Bool)
	formatIgnoreHeaderCase        = foreign.NewOp("get_ignore_header_case", foreign.Bool)
	formatAllowMissingColumnNames = foreign.NewOp("get_allow_missing_column_names", foreign.Bool)
	formatTrim                    = foreign.NewOp("get_trim", foreign.Bool)
	formatTrailingDelimiter       = foreign.NewOp("get_trailing_delimiter", foreign.Bool)

	formatWithDelimiter               = foreign.NewOp("with_delimiter", foreign.Ref, foreign.String)
	formatWithQuote                   = foreign.NewOp("with_quote", foreign.Ref, optString)
	formatWithEscape                  = foreign.NewOp("with_escape", foreign.Ref, optString)
	formatWithCommentMarker           = foreign.NewOp("with_comment_marker", foreign.Ref, optString)
	formatWithQuoteMode               = foreign.NewOp("with_quote_mode", foreign.Ref, optString)
	formatWithRecordSeparator         = foreign.NewOp("with_record_separator", foreign.Ref, foreign.String)
	formatWithNullString              = foreign.NewOp("with_null_string", foreign.Ref, optString)
	formatWithHeader                  = foreign.NewOp("with_header", foreign.Ref, foreign.String).WithVariadic()
	formatWithFirstRecordAsHeader     = foreign.NewOp("with_first_record_as_header", foreign.Ref)
	formatWithSkipHeaderRecord        = foreign.NewOp("with_skip_header_record", foreign.Ref, foreign.Bool)
	formatWithIgnoreEmptyLines        = foreign.NewOp("with_ignore_empty_lines", foreign.Ref, foreign.Bool)
	formatWithIgnoreSurroundingSpaces = foreign.NewOp("with_ignore_surrounding_spaces", foreign.Ref, foreign.Bool)
	formatWithIgnoreHeaderCase        = foreign.NewOp("with_ignore_header_case", foreign.Ref, foreign.Bool)
	formatWithAllowMissingColumnNames = foreign.NewOp("with_allow_missing_column_names", foreign.Ref, foreign.Bool)
	formatWithTrim                    = foreign.NewOp("with_trim", foreign.Ref, foreign.Bool)
	formatWithTrailingDelimiter       = foreign.NewOp("with_trailing_delimiter", foreign.Ref, foreign.Bool)

	formatFormat   = foreign.NewOp("format", foreign.String, anyArgs).WithVariadic()
	formatParse    = foreign.NewOp("parse", foreign.Ref, foreign.String)
	formatPrint    = foreign.NewOp("print", foreign.Ref, foreign.Ref)
	formatEquals   = foreign.NewOp("equals", foreign.Bool, optRef)
	formatToString = foreign.NewOp("to_string", foreign.String)

	FormatClass = &foreign.Class{
		Module: Module,
		Name:   "CSVFormat",
		Ctor:   foreign.NewOp("new", foreign.Ref, foreign.String),
		Ops: []*foreign.Op{
			formatDelimiter, formatQuote, formatEscape, formatCommentMarker, formatRecordSeparator,
			formatNullString, formatHeader, formatQuoteMode, formatSkipHeaderRecord,
			formatIgnoreEmptyLines, formatIgnoreSurroundingSpaces, formatIgnoreHeaderCase,
			formatAllowMissingColumnNames, formatTrim, formatTrailingDelimiter,
			formatWithDelimiter, formatWithQuote, formatWithEscape, formatWithCommentMarker,
			formatWithQuoteMode, formatWithRecordSeparator, formatWithNullString, formatWithHeader,
			formatWithFirstRecordAsHeader, formatWithSkipHeaderRecord, formatWithIgnoreEmptyLines,
			formatWithIgnoreSurroundingSpaces, formatWithIgnoreHeaderCase,
			formatWithAllowMissingColumnNames, formatWithTrim, formatWithTrailingDelimiter,
			formatFormat, formatParse, formatPrint, formatEquals, formatToString,
		},
		Static: []*foreign.Op{formatValueOf},
	}
)

// CSVParser operations.
var (
	parserParseFile         = foreign.NewOp("parse_file", foreign.Ref, foreign.String, optRef)
	parserHeaderMap         = foreign.NewOp("get_header_map", foreign.MapOf(foreign.Int32).OrNull())
	parserHeaderNames       = foreign.NewOp("get_header_names", optStrings)
	parserRecords           = foreign.NewOp("get_records", foreign.ListOf(foreign.Ref))
	parserNextRecord        = foreign.NewOp("next_record", optRef)
	parserRecordNumber      = foreign.NewOp("get_record_number", foreign.Int64)
	parserCurrentLineNumber = foreign.NewOp("get_current_line_number", foreign.Int64)
	parserFirstEndOfLine    = foreign.NewOp("get_first_end_of_line", optString)
	parserIterator          = foreign.NewOp("iterator", foreign.Ref)
	parserIsClosed          = foreign.NewOp("is_closed", foreign.Bool)
	parserClose             = foreign.NewOp("close", foreign.Void).AsIO()

	ParserClass = &foreign.Class{
		Module: Module,
		Name:   "CSVParser",
		Ctor:   foreign.NewOp("new", foreign.Ref, foreign.String, optRef),
		Ops: []*foreign.Op{
			parserHeaderMap, parserHeaderNames, parserRecords, parserNextRecord, parserRecordNumber,
			parserCurrentLineNumber, parserFirstEndOfLine, parserIterator, parserIsClosed, parserClose,
		},
		Static: []*foreign.Op{parserParseFile},
	}

	iteratorHasNext = foreign.NewOp("has_next", foreign.Bool)
	iteratorNext    = foreign.NewOp("next", foreign.Ref)

	RecordIteratorClass = &foreign.Class{
		Module: Module,
		Name:   "CSVRecordIterator",
		Ops:    []*foreign.Op{iteratorHasNext, iteratorNext},
	}
)

// CSVRecord operations.
var (
	recordGet               = foreign.NewOp("get", optString, foreign.Int64)
	recordGetByName         = foreign.NewOp("get_by_name", optString, foreign.String)
	recordValues            = foreign.NewOp("values", nullableList)
	recordSize              = foreign.NewOp("size", foreign.Int32)
	recordToMap             = foreign.NewOp("to_map", foreign.MapOf(optString))
	recordComment           = foreign.NewOp("get_comment", optString)
	recordHasComment        = foreign.NewOp("has_comment", foreign.Bool)
	recordIsMapped          = foreign.NewOp("is_mapped", foreign.Bool, foreign.String)
	recordIsSet             = foreign.NewOp("is_set", foreign.Bool, foreign.String)
	recordIsConsistent      = foreign.NewOp("is_consistent", foreign.Bool)
	recordNumber            = foreign.NewOp("get_record_number", foreign.Int64)
	recordCharacterPosition = foreign.NewOp("get_character_position", foreign.Int64)
	recordToString          = foreign.NewOp("to_string", foreign.String)

	RecordClass = &foreign.Class{
		Module: Module,
		Name:   "CSVRecord",
		Ops: []*foreign.Op{
			recordGet, recordGetByName, recordValues, recordSize, recordToMap, recordComment,
			recordHasComment, recordIsMapped, recordIsSet, recordIsConsistent, recordNumber,
			recordCharacterPosition, recordToString,
		},
	}
)

// CSVPrinter and StringWriter operations. Printing reports failures as
// foreign.ErrIO.
var (
	printerPrint        = foreign.NewOp("print", foreign.Void, anyArgs).AsIO()
	printerPrintln      = foreign.NewOp("println", foreign.Void).AsIO()
	printerPrintRecord  = foreign.NewOp("print_record", foreign.Void, anyArgs).WithVariadic().AsIO()
	printerPrintRecords = foreign.NewOp("print_records", foreign.Void, foreign.ListOf(foreign.ListOf(anyArgs))).AsIO()
	printerPrintComment = foreign.NewOp("print_comment", foreign.Void, foreign.String).AsIO()
	printerFlush        = foreign.NewOp("flush", foreign.Void).AsIO()
	printerClose        = foreign.NewOp("close", foreign.Void).AsIO()
	printerOut          = foreign.NewOp("get_out", foreign.Ref)

	PrinterClass = &foreign.Class{
		Module: Module,
		Name:   "CSVPrinter",
		Ctor:   foreign.NewOp("new", foreign.Ref, foreign.Ref, optRef),
		Ops: []*foreign.Op{
			printerPrint, printerPrintln, printerPrintRecord, printerPrintRecords,
			printerPrintComment, printerFlush, printerClose, printerOut,
		},
	}

	writerWrite    = foreign.NewOp("write", foreign.Void, foreign.String).AsIO()
	writerGetValue = foreign.NewOp("getvalue", foreign.String)
	writerClose    = foreign.NewOp("close", foreign.Void).AsIO()

	StringWriterClass = &foreign.Class{
		Module: Module,
		Name:   "StringWriter",
		Ctor:   foreign.NewOp("new", foreign.Ref),
		Ops:    []*foreign.Op{writerWrite, writerGetValue, writerClose},
	}
)

// Classes lists every class of the module, for foreign.NewEnv.
var Classes = []*foreign.Class{
	FormatClass, ParserClass, RecordIteratorClass, RecordClass, PrinterClass, StringWriterClass,
}
