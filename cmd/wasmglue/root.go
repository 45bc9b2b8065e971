package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wasmglue/wasmglue/foreign"
	"github.com/wasmglue/wasmglue/wasmhost"
)

const envPrefix = "WASMGLUE"

type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	logger  *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:          "wasmglue",
		Short:        "Drive the classes of a wasmglue guest module",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(a.verbose)
			if err != nil {
				return err
			}
			a.logger = logger
			return a.readConfig(cmd.Flags())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	registerHostFlags(flags)

	root.AddCommand(
		a.classesCommand(),
		a.csvCommand(),
		a.usageCommand(),
		a.parseCommand(),
		a.buildCommand(),
	)
	return root
}

func registerHostFlags(flags *pflag.FlagSet) {
	flags.String("wasm", "", "guest module file")
	flags.String("mode", "", "runtime mode: interpreter or compiled")
	flags.StringSlice("dir", nil, "host directory preopened for the guest")
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// readConfig merges the config file, WASMGLUE_* variables and flags.
func (a *app) readConfig(flags *pflag.FlagSet) error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	for key, flag := range map[string]string{
		"path":         "wasm",
		"runtime.mode": "mode",
		"runtime.dirs": "dir",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return err
		}
	}

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", a.cfgFile, err)
		}
	}
	return nil
}

// hostConfig decodes the merged settings into a wasmhost.Config.
func (a *app) hostConfig() (*wasmhost.Config, error) {
	return decodeConfig(a.v.AllSettings())
}

func decodeConfig(settings map[string]any) (*wasmhost.Config, error) {
	var cfg wasmhost.Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(settings); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Default()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// withEnv loads the guest module, resolves classes and runs fn against the
// resulting Env.
func (a *app) withEnv(ctx context.Context, classes []*foreign.Class, fn func(*foreign.Env) error) (err error) {
	cfg, err := a.hostConfig()
	if err != nil {
		return err
	}
	plugin, err := wasmhost.NewPlugin(ctx, cfg, a.logger.Named("wasmhost"))
	if err != nil {
		return err
	}
	env, err := foreign.NewEnv(ctx, plugin, classes, foreign.WithLogger(a.logger.Named("foreign")))
	if err != nil {
		return multierr.Append(err, plugin.Close(ctx))
	}
	defer func() {
		err = multierr.Append(err, env.Close(ctx))
	}()
	return fn(env)
}
