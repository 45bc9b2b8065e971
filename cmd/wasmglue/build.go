package main

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"text/template"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const modulePath = "github.com/wasmglue/wasmglue"

//go:embed templates/*.gotmpl
var templates embed.FS

// guestPackages maps a module name to the guest package serving it.
var guestPackages = map[string]string{
	"commons_csv": modulePath + "/guest/commonscsv",
	"commons_cli": modulePath + "/guest/commonscli",
}

// Builder compiles a guest module serving the selected modules in a
// scratch Go module.
type Builder struct {
	WorkDir string
	Modules []string
	Version string
	Output  string

	logger *zap.Logger
}

type guestImport struct {
	Alias, Path string
}

func (b *Builder) imports() ([]guestImport, error) {
	out := make([]guestImport, 0, len(b.Modules))
	for i, name := range b.Modules {
		path, ok := guestPackages[name]
		if !ok {
			return nil, fmt.Errorf("no guest package serves module %q", name)
		}
		out = append(out, guestImport{Alias: fmt.Sprintf("m%d", i), Path: path})
	}
	return out, nil
}

// Prepare creates WorkDir with a go.mod requiring wasmglue and the generated
// main package.
func (b *Builder) Prepare() error {
	if err := os.MkdirAll(b.WorkDir, 0o755); err != nil {
		return fmt.Errorf("failed to create workdir %s: %w", b.WorkDir, err)
	}
	if err := b.exec(nil, "go", "mod", "init", "wasmglue-guest"); err != nil {
		return fmt.Errorf("failed to init go module: %w", err)
	}
	if err := b.exec(nil, "go", "get", modulePath+"@"+b.Version); err != nil {
		return fmt.Errorf("failed to get %s: %w", modulePath, err)
	}

	imports, err := b.imports()
	if err != nil {
		return err
	}
	if err := b.writeTemplate(filepath.Join(b.WorkDir, "main.go"), "main.gotmpl", imports); err != nil {
		return err
	}
	if err := b.exec(nil, "go", "mod", "tidy"); err != nil {
		return fmt.Errorf("failed to tidy go module: %w", err)
	}
	return nil
}

// Build compiles the reactor module to Output.
func (b *Builder) Build() error {
	output, err := filepath.Abs(b.Output)
	if err != nil {
		return fmt.Errorf("failed to get absolute path of output file %s: %w", b.Output, err)
	}
	env := []string{"GOOS=wasip1", "GOARCH=wasm"}
	if err := b.exec(env, "go", "build", "-buildmode=c-shared", "-o", output, "."); err != nil {
		return fmt.Errorf("failed to build guest module: %w", err)
	}
	return nil
}

func (b *Builder) Clean() error {
	if err := os.RemoveAll(b.WorkDir); err != nil {
		return fmt.Errorf("failed to remove workdir %s: %w", b.WorkDir, err)
	}
	return nil
}

func (b *Builder) exec(env []string, command string, args ...string) error {
	b.logger.Debug("running", zap.String("command", command), zap.Strings("args", args))
	cmd := exec.Command(command, args...)
	cmd.Dir = b.WorkDir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (b *Builder) writeTemplate(dst, name string, imports []guestImport) error {
	src, err := renderTemplate(name, imports)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, src, 0o644); err != nil {
		return fmt.Errorf("failed to write template %s: %w", dst, err)
	}
	return nil
}

func renderTemplate(name string, imports []guestImport) ([]byte, error) {
	tmpl, err := template.ParseFS(templates, "templates/"+name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, imports); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (a *app) buildCommand() *cobra.Command {
	b := &Builder{}
	var remain bool
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a guest module serving the selected modules",
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			b.logger = a.logger.Named("build")
			if len(b.Modules) == 0 {
				b.Modules = moduleNames()
			}
			slices.Sort(b.Modules)
			b.Modules = slices.Compact(b.Modules)
			if b.WorkDir == "" {
				if b.WorkDir, err = os.MkdirTemp("", "wasmglue-build-"); err != nil {
					return err
				}
			}
			defer func() {
				if remain {
					b.logger.Info("working directory kept", zap.String("workdir", b.WorkDir))
					return
				}
				if cerr := b.Clean(); cerr != nil {
					b.logger.Warn("failed to clean up", zap.Error(cerr))
				}
			}()

			if err := b.Prepare(); err != nil {
				return err
			}
			if err := b.Build(); err != nil {
				return err
			}
			b.logger.Info("build completed", zap.String("output", b.Output), zap.Strings("modules", b.Modules))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&b.Output, "output", "guest.wasm", "output file")
	flags.StringSliceVarP(&b.Modules, "module", "m", nil, "modules to serve (default all)")
	flags.StringVar(&b.WorkDir, "workdir", "", "working directory (default a temporary one)")
	flags.StringVar(&b.Version, "version", "latest", "wasmglue version to build against")
	flags.BoolVar(&remain, "remain", false, "keep the working directory after build")
	return cmd
}
