package runtime

import (
	"fmt"
)

// TypeWazero is the default engine.
const TypeWazero = "wazero"

// Mode selects how an engine executes guest code.
type Mode string

const (
	ModeInterpreter Mode = "interpreter"
	ModeCompiled    Mode = "compiled"
)

// Config selects and configures an engine.
type Config struct {
	// Type names a registered engine; empty means TypeWazero.
	Type string `mapstructure:"type"`
	Mode Mode   `mapstructure:"mode"`
	// Dirs are host directories preopened for the guest, so that guest code
	// can read files named by the host.
	Dirs []string `mapstructure:"dirs"`
	// Env is passed to the guest as KEY=value pairs.
	Env []string `mapstructure:"env"`
}

// Default fills unset fields.
func (c *Config) Default() {
	if c.Type == "" {
		c.Type = TypeWazero
	}
	if c.Mode == "" {
		c.Mode = ModeInterpreter
	}
}

func (c *Config) Validate() error {
	switch c.Mode {
	case "", ModeInterpreter, ModeCompiled:
	default:
		return fmt.Errorf("unknown runtime mode %q: %w", c.Mode, ErrInvalidConfiguration)
	}
	return nil
}
