package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmglue/wasmglue/runtime"
)

func newTestApp(t *testing.T, cfgFile string, args ...string) *app {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	registerHostFlags(flags)
	require.NoError(t, flags.Parse(args))

	a := &app{v: viper.New(), cfgFile: cfgFile}
	require.NoError(t, a.readConfig(flags))
	return a
}

func TestHostConfig(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "wasmglue.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
path: commons.wasm
guest_config:
  modules: [commons_csv]
runtime:
  mode: compiled
  dirs: [/data]
`), 0o600))

	t.Run("file", func(t *testing.T) {
		cfg, err := newTestApp(t, cfgFile).hostConfig()
		require.NoError(t, err)
		assert.Equal(t, "commons.wasm", cfg.Path)
		assert.Equal(t, runtime.ModeCompiled, cfg.Runtime.Mode)
		assert.Equal(t, runtime.TypeWazero, cfg.Runtime.Type)
		assert.Equal(t, []string{"/data"}, cfg.Runtime.Dirs)
		assert.Equal(t, []any{"commons_csv"}, cfg.GuestConfig["modules"])
	})

	t.Run("flags win over the file", func(t *testing.T) {
		cfg, err := newTestApp(t, cfgFile, "--wasm", "other.wasm", "--mode", "interpreter").hostConfig()
		require.NoError(t, err)
		assert.Equal(t, "other.wasm", cfg.Path)
		assert.Equal(t, runtime.ModeInterpreter, cfg.Runtime.Mode)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("WASMGLUE_PATH", "env.wasm")
		cfg, err := newTestApp(t, "").hostConfig()
		require.NoError(t, err)
		assert.Equal(t, "env.wasm", cfg.Path)
		assert.Equal(t, runtime.ModeInterpreter, cfg.Runtime.Mode)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := newTestApp(t, "").hostConfig()
		assert.ErrorContains(t, err, "path is required")
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := newTestApp(t, "", "--wasm", "x.wasm", "--mode", "jit").hostConfig()
		assert.ErrorIs(t, err, runtime.ErrInvalidConfiguration)
	})
}

func TestDecodeConfigWeakTypes(t *testing.T) {
	cfg, err := decodeConfig(map[string]any{
		"path":    "g.wasm",
		"runtime": map[string]any{"dirs": "/a,/b", "env": []any{"K=v"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, cfg.Runtime.Dirs)
	assert.Equal(t, []string{"K=v"}, cfg.Runtime.Env)
}

func TestParseOptionSpec(t *testing.T) {
	spec, err := parseOptionSpec("b,block-size,SIZE,block size, in bytes")
	require.NoError(t, err)
	assert.Equal(t, optionSpec{opt: "b", long: "block-size", arg: "SIZE", desc: "block size, in bytes"}, spec)

	spec, err = parseOptionSpec(",all")
	require.NoError(t, err)
	assert.Equal(t, optionSpec{long: "all"}, spec)

	_, err = parseOptionSpec(",,X,desc")
	assert.Error(t, err)
}

func TestRenderTemplate(t *testing.T) {
	b := &Builder{Modules: []string{"commons_cli", "commons_csv"}}
	imports, err := b.imports()
	require.NoError(t, err)

	src, err := renderTemplate("main.gotmpl", imports)
	require.NoError(t, err)
	main := string(src)
	assert.Contains(t, main, `m0 "github.com/wasmglue/wasmglue/guest/commonscli"`)
	assert.Contains(t, main, `m1 "github.com/wasmglue/wasmglue/guest/commonscsv"`)
	assert.Contains(t, main, "plugin.Register(m1.Module, cls)")
	assert.Contains(t, main, "func main() {}")

	_, err = (&Builder{Modules: []string{"nope"}}).imports()
	assert.ErrorContains(t, err, `"nope"`)
}

func TestModuleNames(t *testing.T) {
	assert.Equal(t, []string{"commons_cli", "commons_csv"}, moduleNames())
}
