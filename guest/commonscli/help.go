package commonscli

import (
	"slices"
	"strings"

	"github.com/wasmglue/wasmglue/guest/objects"
)

// HelpFormatter renders usage and option help.
type HelpFormatter struct {
	Width            int
	LeftPadding      int
	DescPadding      int
	SyntaxPrefix     string
	NewLine          string
	OptPrefix        string
	LongOptPrefix    string
	ArgName          string
	LongOptSeparator string
}

func NewHelpFormatter() *HelpFormatter {
	return &HelpFormatter{
		Width:            74,
		LeftPadding:      1,
		DescPadding:      3,
		SyntaxPrefix:     "usage: ",
		NewLine:          "\n",
		OptPrefix:        "-",
		LongOptPrefix:    "--",
		ArgName:          "arg",
		LongOptSeparator: " ",
	}
}

func padding(n int) string { return strings.Repeat(" ", max(n, 0)) }

func sortedByKey(opts []*Option) []*Option {
	out := slices.Clone(opts)
	slices.SortStableFunc(out, func(a, b *Option) int {
		return strings.Compare(strings.ToLower(a.Key()), strings.ToLower(b.Key()))
	})
	return out
}

// findWrapPos returns the position to break text at so that the line fits
// width, or -1 when it already fits.
func findWrapPos(text string, width, start int) int {
	if pos := indexFrom(text, '\n', start); pos != -1 && pos <= width {
		return pos + 1
	}
	if pos := indexFrom(text, '\t', start); pos != -1 && pos <= width {
		return pos + 1
	}
	if start+width >= len(text) {
		return -1
	}
	pos := start + width
	for ; pos >= start; pos-- {
		if c := text[pos]; c == ' ' || c == '\n' || c == '\r' {
			break
		}
	}
	if pos > start {
		return pos
	}
	pos = start + width
	if pos == len(text) {
		return -1
	}
	return pos
}

func indexFrom(s string, c byte, start int) int {
	if start >= len(s) {
		return -1
	}
	i := strings.IndexByte(s[start:], c)
	if i < 0 {
		return -1
	}
	return start + i
}

func rtrim(s string) string { return strings.TrimRight(s, " \t\r\n") }

// RenderWrappedText wraps text to width, indenting continuation lines by
// nextLineTabStop.
func (h *HelpFormatter) RenderWrappedText(sb *strings.Builder, width, nextLineTabStop int, text string) {
	pos := findWrapPos(text, width, 0)
	if pos == -1 {
		sb.WriteString(rtrim(text))
		return
	}
	sb.WriteString(rtrim(text[:pos]))
	sb.WriteString(h.NewLine)
	if nextLineTabStop >= width {
		nextLineTabStop = 1
	}
	pad := padding(nextLineTabStop)
	for {
		text = pad + strings.TrimSpace(text[pos:])
		pos = findWrapPos(text, width, 0)
		if pos == -1 {
			sb.WriteString(text)
			return
		}
		if len(text) > width && pos == nextLineTabStop-1 {
			pos = width
		}
		sb.WriteString(rtrim(text[:pos]))
		sb.WriteString(h.NewLine)
	}
}

// RenderOptions renders one line per option, sorted by key, with the
// descriptions aligned.
func (h *HelpFormatter) RenderOptions(sb *strings.Builder, width int, options *Options, leftPad, descPad int) {
	lpad, dpad := padding(leftPad), padding(descPad)
	opts := sortedByKey(options.HelpOptions())
	prefixes := make([]string, len(opts))
	longest := 0
	for i, o := range opts {
		var buf strings.Builder
		if o.Opt == "" {
			buf.WriteString(lpad + "   " + h.LongOptPrefix + o.LongOpt)
		} else {
			buf.WriteString(lpad + h.OptPrefix + o.Opt)
			if o.HasLongOpt() {
				buf.WriteString("," + h.LongOptPrefix + o.LongOpt)
			}
		}
		if o.HasArg() {
			if o.ArgName != nil && *o.ArgName == "" {
				buf.WriteString(" ")
			} else {
				if o.HasLongOpt() {
					buf.WriteString(h.LongOptSeparator)
				} else {
					buf.WriteString(" ")
				}
				buf.WriteString("<" + h.argName(o) + ">")
			}
		}
		prefixes[i] = buf.String()
		longest = max(longest, len(prefixes[i]))
	}

	for i, o := range opts {
		line := prefixes[i] + padding(longest-len(prefixes[i])) + dpad
		if o.Description != nil {
			line += *o.Description
		}
		h.RenderWrappedText(sb, width, longest+descPad, line)
		if i < len(opts)-1 {
			sb.WriteString(h.NewLine)
		}
	}
}

func (h *HelpFormatter) argName(o *Option) string {
	if o.ArgName != nil {
		return *o.ArgName
	}
	return h.ArgName
}

func (h *HelpFormatter) appendOption(sb *strings.Builder, o *Option, required bool) {
	if !required {
		sb.WriteString("[")
	}
	if o.Opt != "" {
		sb.WriteString("-" + o.Opt)
	} else {
		sb.WriteString("--" + o.LongOpt)
	}
	if o.HasArg() && (o.ArgName == nil || *o.ArgName != "") {
		if o.Opt == "" {
			sb.WriteString(h.LongOptSeparator)
		} else {
			sb.WriteString(" ")
		}
		sb.WriteString("<" + h.argName(o) + ">")
	}
	if !required {
		sb.WriteString("]")
	}
}

func (h *HelpFormatter) appendOptionGroup(sb *strings.Builder, g *OptionGroup) {
	if !g.Required {
		sb.WriteString("[")
	}
	for i, o := range sortedByKey(g.Options()) {
		if i > 0 {
			sb.WriteString(" | ")
		}
		h.appendOption(sb, o, true)
	}
	if !g.Required {
		sb.WriteString("]")
	}
}

// RenderUsage renders the usage line derived from options, followed by a
// new line.
func (h *HelpFormatter) RenderUsage(width int, app string, options *Options) string {
	var buf strings.Builder
	buf.WriteString(h.SyntaxPrefix + app + " ")
	var processed []*OptionGroup
	opts := sortedByKey(options.HelpOptions())
	for i, o := range opts {
		if g := options.OptionGroup(o); g != nil {
			if !slices.Contains(processed, g) {
				processed = append(processed, g)
				h.appendOptionGroup(&buf, g)
			}
		} else {
			h.appendOption(&buf, o, o.Required)
		}
		if i < len(opts)-1 {
			buf.WriteString(" ")
		}
	}
	usage := buf.String()
	return h.wrapped(width, strings.IndexByte(usage, ' ')+1, usage)
}

func (h *HelpFormatter) wrapped(width, nextLineTabStop int, text string) string {
	var sb strings.Builder
	h.RenderWrappedText(&sb, width, nextLineTabStop, text)
	sb.WriteString(h.NewLine)
	return sb.String()
}

// RenderHelp renders the full help: usage, header, options and footer.
func (h *HelpFormatter) RenderHelp(width int, cmdLineSyntax string, header *string, options *Options, footer *string, autoUsage bool) (string, error) {
	if cmdLineSyntax == "" {
		return "", objects.Raise(objects.TagValueError, "cmdLineSyntax not provided")
	}
	var sb strings.Builder
	if autoUsage {
		sb.WriteString(h.RenderUsage(width, cmdLineSyntax, options))
	} else {
		argPos := strings.IndexByte(cmdLineSyntax, ' ') + 1
		sb.WriteString(h.wrapped(width, len(h.SyntaxPrefix)+argPos, h.SyntaxPrefix+cmdLineSyntax))
	}
	if header != nil && *header != "" {
		sb.WriteString(h.wrapped(width, 0, *header))
	}
	h.RenderOptions(&sb, width, options, h.LeftPadding, h.DescPadding)
	sb.WriteString(h.NewLine)
	if footer != nil && *footer != "" {
		sb.WriteString(h.wrapped(width, 0, *footer))
	}
	return sb.String(), nil
}
