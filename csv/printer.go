package csv

import (
	"context"

	"github.com/wasmglue/wasmglue/foreign"
	"github.com/wasmglue/wasmglue/wire"
)

// StringWriter is an in-guest text buffer that printers write to.
type StringWriter struct{ obj *foreign.Object }

func wrapStringWriter(obj *foreign.Object) *StringWriter { return &StringWriter{obj: obj} }

func (w *StringWriter) ForeignHandle() wire.Handle { return w.obj.ForeignHandle() }

func NewStringWriter(ctx context.Context, env *foreign.Env) (*StringWriter, error) {
	return foreign.Construct(ctx, env, StringWriterClass, wrapStringWriter)
}

func (w *StringWriter) Write(ctx context.Context, s string) error {
	return foreign.Discard(w.obj.Call(ctx, writerWrite, s))
}

// String returns everything written so far.
func (w *StringWriter) String(ctx context.Context) (string, error) {
	return foreign.Decode(foreign.AsString)(w.obj.Call(ctx, writerGetValue))
}

func (w *StringWriter) Close(ctx context.Context) error {
	return foreign.Discard(w.obj.Call(ctx, writerClose))
}

// Printer writes records to a StringWriter. Every failure, including use
// after Close, is a foreign.ErrIO failure.
type Printer struct{ obj *foreign.Object }

func wrapPrinter(obj *foreign.Object) *Printer { return &Printer{obj: obj} }

func (p *Printer) ForeignHandle() wire.Handle { return p.obj.ForeignHandle() }

// NewPrinter prints to out in format; a nil format selects Default. The
// format's header, if any, is printed immediately.
func NewPrinter(ctx context.Context, env *foreign.Env, out *StringWriter, format *Format) (*Printer, error) {
	return foreign.Construct(ctx, env, PrinterClass, wrapPrinter, out, format)
}

// Print prints one value of the current record.
func (p *Printer) Print(ctx context.Context, value any) error {
	return foreign.Discard(p.obj.Call(ctx, printerPrint, value))
}

// Println ends the current record.
func (p *Printer) Println(ctx context.Context) error {
	return foreign.Discard(p.obj.Call(ctx, printerPrintln))
}

func (p *Printer) PrintRecord(ctx context.Context, values ...any) error {
	return foreign.Discard(p.obj.Call(ctx, printerPrintRecord, values...))
}

// PrintRecords prints each row as a record.
func (p *Printer) PrintRecords(ctx context.Context, rows [][]any) error {
	return foreign.Discard(p.obj.Call(ctx, printerPrintRecords, rows))
}

// PrintComment prints text as comment lines. It prints nothing when the
// format has no comment marker.
func (p *Printer) PrintComment(ctx context.Context, text string) error {
	return foreign.Discard(p.obj.Call(ctx, printerPrintComment, text))
}

func (p *Printer) Flush(ctx context.Context) error {
	return foreign.Discard(p.obj.Call(ctx, printerFlush))
}

func (p *Printer) Close(ctx context.Context) error {
	return foreign.Discard(p.obj.Call(ctx, printerClose))
}

// Out returns the writer the printer writes to.
func (p *Printer) Out(ctx context.Context) (*StringWriter, error) {
	v, err := p.obj.Call(ctx, printerOut)
	if err != nil {
		return nil, err
	}
	return foreign.Adopt(ctx, p.obj.Env(), StringWriterClass, v, wrapStringWriter)
}
