package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wasmglue/wasmglue/cli"
	"github.com/wasmglue/wasmglue/csv"
	"github.com/wasmglue/wasmglue/foreign"
)

var modules = map[string][]*foreign.Class{
	csv.Module: csv.Classes,
	cli.Module: cli.Classes,
}

func moduleNames() []string {
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (a *app) classesCommand() *cobra.Command {
	var selected []string
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "Resolve the classes of the guest module and list their operations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(selected) == 0 {
				selected = moduleNames()
			}
			var classes []*foreign.Class
			for _, name := range selected {
				cls, ok := modules[name]
				if !ok {
					return fmt.Errorf("unknown module %q, want one of %s", name, strings.Join(moduleNames(), ", "))
				}
				classes = append(classes, cls...)
			}

			return a.withEnv(cmd.Context(), classes, func(env *foreign.Env) error {
				out := cmd.OutOrStdout()
				for _, cls := range classes {
					d, err := env.Resolve(cmd.Context(), cls)
					if err != nil {
						return err
					}
					ops := d.Ops()
					slices.Sort(ops)
					fmt.Fprintf(out, "%s.%s\t%s\n", d.Module(), d.Name(), strings.Join(ops, " "))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&selected, "module", "m", nil, "modules to resolve (default all)")
	return cmd
}
