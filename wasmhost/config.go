package wasmhost

import (
	"fmt"

	"github.com/wasmglue/wasmglue/runtime"
)

// GuestConfig is passed to the guest as JSON through get_guest_config.
type GuestConfig map[string]any

// Config defines how a guest module is loaded.
type Config struct {
	// Path to the guest module file.
	Path string `mapstructure:"path"`

	// GuestConfig is the configuration handed to the guest module.
	GuestConfig GuestConfig `mapstructure:"guest_config"`

	// Runtime selects and configures the WebAssembly engine.
	Runtime runtime.Config `mapstructure:"runtime"`
}

// Default fills unset fields.
func (cfg *Config) Default() {
	cfg.Runtime.Default()
}

// Validate validates the configuration
func (cfg *Config) Validate() error {
	if cfg.Path == "" {
		return fmt.Errorf("path is required")
	}
	if err := cfg.Runtime.Validate(); err != nil {
		return fmt.Errorf("runtime: %w", err)
	}
	return nil
}
