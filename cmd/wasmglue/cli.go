package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wasmglue/wasmglue/cli"
	"github.com/wasmglue/wasmglue/foreign"
)

// optionSpec declares one option as "short,long,arg,description". Empty
// fields are left unset and a non-empty arg makes the option take a value.
type optionSpec struct {
	opt, long, arg, desc string
}

func parseOptionSpec(s string) (optionSpec, error) {
	parts := strings.SplitN(s, ",", 4)
	for len(parts) < 4 {
		parts = append(parts, "")
	}
	spec := optionSpec{opt: parts[0], long: parts[1], arg: parts[2], desc: parts[3]}
	if spec.opt == "" && spec.long == "" {
		return spec, fmt.Errorf("option %q has neither a short nor a long name", s)
	}
	return spec, nil
}

func declareOptions(ctx context.Context, env *foreign.Env, specs []string) (*cli.Options, error) {
	options, err := cli.NewOptions(ctx, env)
	if err != nil {
		return nil, err
	}
	for _, s := range specs {
		spec, err := parseOptionSpec(s)
		if err != nil {
			return nil, err
		}
		o, err := cli.NewOption(ctx, env, spec.opt, spec.long, spec.arg != "", spec.desc)
		if err != nil {
			return nil, err
		}
		if spec.arg != "" {
			if err := o.SetArgName(ctx, spec.arg); err != nil {
				return nil, err
			}
		}
		if _, err := options.AddOption(ctx, o); err != nil {
			return nil, err
		}
	}
	return options, nil
}

func addOptionFlag(flags *pflag.FlagSet, specs *[]string) {
	flags.StringArrayVarP(specs, "option", "o", nil, `option as "short,long,arg,description"`)
}

func (a *app) usageCommand() *cobra.Command {
	var (
		specs          []string
		header, footer string
		width          int
	)
	cmd := &cobra.Command{
		Use:   "usage SYNTAX",
		Short: "Render help for a set of options with the guest help formatter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withEnv(ctx, cli.Classes, func(env *foreign.Env) error {
				options, err := declareOptions(ctx, env, specs)
				if err != nil {
					return err
				}
				h, err := cli.NewHelpFormatter(ctx, env)
				if err != nil {
					return err
				}
				if width > 0 {
					if err := h.SetWidth(ctx, width); err != nil {
						return err
					}
				}
				return h.PrintHelp(ctx, cmd.OutOrStdout(), args[0], header, options, footer, true)
			})
		},
	}
	flags := cmd.Flags()
	addOptionFlag(flags, &specs)
	flags.StringVar(&header, "header", "", "text printed before the options")
	flags.StringVar(&footer, "footer", "", "text printed after the options")
	flags.IntVar(&width, "width", 0, "line width (default the formatter's)")
	return cmd
}

func newParser(ctx context.Context, env *foreign.Env, name string) (cli.CommandLineParser, error) {
	switch name {
	case "default":
		return cli.NewDefaultParser(ctx, env, true)
	case "gnu":
		return cli.NewGnuParser(ctx, env)
	case "posix":
		return cli.NewPosixParser(ctx, env)
	case "basic":
		return cli.NewBasicParser(ctx, env)
	}
	return nil, fmt.Errorf("unknown parser %q", name)
}

func (a *app) parseCommand() *cobra.Command {
	var (
		specs  []string
		parser string
		stop   bool
	)
	cmd := &cobra.Command{
		Use:   "parse [flags] -- ARGS...",
		Short: "Parse ARGS against a set of options with a guest parser",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withEnv(ctx, cli.Classes, func(env *foreign.Env) error {
				options, err := declareOptions(ctx, env, specs)
				if err != nil {
					return err
				}
				p, err := newParser(ctx, env, parser)
				if err != nil {
					return err
				}
				var popts []cli.ParseOption
				if stop {
					popts = append(popts, cli.StopAtNonOption())
				}
				line, err := p.Parse(ctx, options, args, popts...)
				if err != nil {
					return describeParseError(ctx, err)
				}
				return printCommandLine(cmd, line)
			})
		},
	}
	flags := cmd.Flags()
	addOptionFlag(flags, &specs)
	flags.StringVar(&parser, "parser", "default", "parser: default, gnu, posix or basic")
	flags.BoolVar(&stop, "stop-at-non-option", false, "leave everything after the first non-option unparsed")
	return cmd
}

func printCommandLine(cmd *cobra.Command, line *cli.CommandLine) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	it, err := line.Iterator(ctx)
	if err != nil {
		return err
	}
	for o, err := range it.All(ctx) {
		if err != nil {
			return err
		}
		key, err := o.Key(ctx)
		if err != nil {
			return err
		}
		values, err := o.Values(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%s\n", key, strings.Join(values, " "))
	}
	rest, err := line.Args(ctx)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		fmt.Fprintf(out, "--\t%s\n", strings.Join(rest, " "))
	}
	return nil
}

// describeParseError adds the failure details the guest attached.
func describeParseError(ctx context.Context, err error) error {
	var pe *cli.ParseError
	if !errors.As(err, &pe) {
		return err
	}
	var detail []string
	switch pe.Tag() {
	case cli.TagMissingOption:
		detail, _ = pe.MissingOptions(ctx)
	case cli.TagAmbiguousOption:
		detail, _ = pe.MatchingOptions(ctx)
	}
	if len(detail) == 0 {
		return err
	}
	return fmt.Errorf("%w [%s]", err, strings.Join(detail, " "))
}
