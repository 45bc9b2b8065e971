package cli

import (
	"context"
	"io"

	"github.com/wasmglue/wasmglue/foreign"
	"github.com/wasmglue/wasmglue/wire"
)

// HelpFormatter renders usage and help text for Options. Its settings
// start at width 74, left padding 1 and description padding 3.
type HelpFormatter struct{ obj *foreign.Object }

func wrapHelpFormatter(obj *foreign.Object) *HelpFormatter { return &HelpFormatter{obj: obj} }

func (h *HelpFormatter) ForeignHandle() wire.Handle { return h.obj.ForeignHandle() }

func NewHelpFormatter(ctx context.Context, env *foreign.Env) (*HelpFormatter, error) {
	return foreign.Construct(ctx, env, HelpFormatterClass, wrapHelpFormatter)
}

func (h *HelpFormatter) getInt(ctx context.Context, name string) (int, error) {
	return foreign.Decode(foreign.AsInt)(h.obj.Call(ctx, helpIntFields[name].get))
}

func (h *HelpFormatter) setInt(ctx context.Context, name string, n int) error {
	return foreign.Discard(h.obj.Call(ctx, helpIntFields[name].set, n))
}

func (h *HelpFormatter) getString(ctx context.Context, name string) (string, error) {
	return foreign.Decode(foreign.AsString)(h.obj.Call(ctx, helpStringFields[name].get))
}

func (h *HelpFormatter) setString(ctx context.Context, name, s string) error {
	return foreign.Discard(h.obj.Call(ctx, helpStringFields[name].set, s))
}

func (h *HelpFormatter) Width(ctx context.Context) (int, error) { return h.getInt(ctx, "width") }
func (h *HelpFormatter) SetWidth(ctx context.Context, n int) error {
	return h.setInt(ctx, "width", n)
}

func (h *HelpFormatter) LeftPadding(ctx context.Context) (int, error) {
	return h.getInt(ctx, "left_padding")
}

func (h *HelpFormatter) SetLeftPadding(ctx context.Context, n int) error {
	return h.setInt(ctx, "left_padding", n)
}

func (h *HelpFormatter) DescPadding(ctx context.Context) (int, error) {
	return h.getInt(ctx, "desc_padding")
}

func (h *HelpFormatter) SetDescPadding(ctx context.Context, n int) error {
	return h.setInt(ctx, "desc_padding", n)
}

// SyntaxPrefix starts the usage line, "usage: " by default.
func (h *HelpFormatter) SyntaxPrefix(ctx context.Context) (string, error) {
	return h.getString(ctx, "syntax_prefix")
}

func (h *HelpFormatter) SetSyntaxPrefix(ctx context.Context, s string) error {
	return h.setString(ctx, "syntax_prefix", s)
}

func (h *HelpFormatter) NewLine(ctx context.Context) (string, error) {
	return h.getString(ctx, "new_line")
}

func (h *HelpFormatter) SetNewLine(ctx context.Context, s string) error {
	return h.setString(ctx, "new_line", s)
}

func (h *HelpFormatter) OptPrefix(ctx context.Context) (string, error) {
	return h.getString(ctx, "opt_prefix")
}

func (h *HelpFormatter) SetOptPrefix(ctx context.Context, s string) error {
	return h.setString(ctx, "opt_prefix", s)
}

func (h *HelpFormatter) LongOptPrefix(ctx context.Context) (string, error) {
	return h.getString(ctx, "long_opt_prefix")
}

func (h *HelpFormatter) SetLongOptPrefix(ctx context.Context, s string) error {
	return h.setString(ctx, "long_opt_prefix", s)
}

// ArgName is shown for options whose argument has no name.
func (h *HelpFormatter) ArgName(ctx context.Context) (string, error) {
	return h.getString(ctx, "arg_name")
}

func (h *HelpFormatter) SetArgName(ctx context.Context, s string) error {
	return h.setString(ctx, "arg_name", s)
}

// LongOptSeparator goes between a long option and its argument name.
func (h *HelpFormatter) LongOptSeparator(ctx context.Context) (string, error) {
	return h.getString(ctx, "long_opt_separator")
}

func (h *HelpFormatter) SetLongOptSeparator(ctx context.Context, s string) error {
	return h.setString(ctx, "long_opt_separator", s)
}

// RenderUsage renders the usage line of app, wrapped at width and ending
// with a newline.
func (h *HelpFormatter) RenderUsage(ctx context.Context, width int, app string, options *Options) (string, error) {
	return foreign.Decode(foreign.AsString)(h.obj.Call(ctx, helpRenderUsage, width, app, options))
}

// RenderOptions renders one line per option: names padded by leftPad,
// then the description after descPad spaces.
func (h *HelpFormatter) RenderOptions(ctx context.Context, width int, options *Options, leftPad, descPad int) (string, error) {
	return foreign.Decode(foreign.AsString)(h.obj.Call(ctx, helpRenderOptions, width, options, leftPad, descPad))
}

// RenderWrappedText wraps text at width, indenting continuation lines by
// nextLineTab.
func (h *HelpFormatter) RenderWrappedText(ctx context.Context, width, nextLineTab int, text string) (string, error) {
	return foreign.Decode(foreign.AsString)(h.obj.Call(ctx, helpRenderWrappedText, width, nextLineTab, text))
}

// RenderHelp renders the full help: the usage line when autoUsage is set
// (otherwise the prefixed syntax), header, options and footer. Empty header
// and footer are left out. An empty syntax is a foreign.ErrInvalidArgument
// failure.
func (h *HelpFormatter) RenderHelp(ctx context.Context, width int, syntax, header string, options *Options, footer string, autoUsage bool) (string, error) {
	return foreign.Decode(foreign.AsString)(h.obj.Call(ctx, helpRenderHelp,
		width, syntax, nullable(header), options, nullable(footer), autoUsage))
}

// PrintHelp writes RenderHelp at the formatter's width to w.
func (h *HelpFormatter) PrintHelp(ctx context.Context, w io.Writer, syntax, header string, options *Options, footer string, autoUsage bool) error {
	width, err := h.Width(ctx)
	if err != nil {
		return err
	}
	help, err := h.RenderHelp(ctx, width, syntax, header, options, footer, autoUsage)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, help)
	return err
}
