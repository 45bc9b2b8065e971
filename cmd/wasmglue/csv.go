package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wasmglue/wasmglue/csv"
	"github.com/wasmglue/wasmglue/foreign"
)

type csvOptions struct {
	from, to string
	header   bool
	guestIO  bool
}

func (a *app) csvCommand() *cobra.Command {
	var opts csvOptions
	cmd := &cobra.Command{
		Use:   "csv FILE",
		Short: "Re-print a CSV file through the guest parser and printer",
		Long: `Parses FILE with the --from format and prints every record again with the
--to format. With --guest-io the guest opens FILE itself, which needs its
directory preopened with --dir.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEnv(cmd.Context(), csv.Classes, func(env *foreign.Env) error {
				return a.convertCSV(cmd, env, args[0], opts)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.from, "from", csv.Default, "input format name")
	flags.StringVar(&opts.to, "to", csv.Default, "output format name")
	flags.BoolVar(&opts.header, "header", false, "treat the first record as the header")
	flags.BoolVar(&opts.guestIO, "guest-io", false, "let the guest read the file")
	return cmd
}

func (a *app) convertCSV(cmd *cobra.Command, env *foreign.Env, path string, opts csvOptions) error {
	ctx := cmd.Context()
	in, err := csv.Predefined(ctx, env, opts.from)
	if err != nil {
		return err
	}
	if opts.header {
		if in, err = in.WithHeader(ctx); err != nil {
			return err
		}
		if in, err = in.WithSkipHeaderRecord(ctx, true); err != nil {
			return err
		}
	}
	out, err := csv.Predefined(ctx, env, opts.to)
	if err != nil {
		return err
	}

	var parser *csv.Parser
	if opts.guestIO {
		parser, err = csv.ParseFile(ctx, env, path, in)
	} else {
		var data []byte
		if data, err = os.ReadFile(path); err != nil {
			return err
		}
		parser, err = csv.NewParser(ctx, env, string(data), in)
	}
	if err != nil {
		return err
	}
	defer parser.Close(ctx)

	w, err := csv.NewStringWriter(ctx, env)
	if err != nil {
		return err
	}
	printer, err := csv.NewPrinter(ctx, env, w, out)
	if err != nil {
		return err
	}
	if opts.header {
		names, err := parser.HeaderNames(ctx)
		if err != nil {
			return err
		}
		if err := printer.PrintRecord(ctx, anySlice(names)...); err != nil {
			return err
		}
	}

	it, err := parser.Iterator(ctx)
	if err != nil {
		return err
	}
	n := 0
	for record, err := range it.All(ctx) {
		if err != nil {
			return err
		}
		values, err := record.Values(ctx)
		if err != nil {
			return err
		}
		if err := printer.PrintRecord(ctx, anySlice(values)...); err != nil {
			return err
		}
		n++
	}
	if err := printer.Close(ctx); err != nil {
		return err
	}
	a.logger.Debug("csv converted", zap.String("path", path), zap.Int("records", n))

	text, err := w.String(ctx)
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), text)
	return err
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
