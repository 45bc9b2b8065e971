package runtime

import (
	"fmt"
	"slices"
	"sync"
)

// Factory creates a Runtime from its configuration.
type Factory func(cfg Config) (Runtime, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes an engine available under name. Engines register from init.
func Register(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("runtime %s already registered", name))
	}
	factories[name] = factory
}

// New creates the engine named by cfg.Type.
func New(cfg Config) (Runtime, error) {
	cfg.Default()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factoriesMu.RLock()
	factory, ok := factories[cfg.Type]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown runtime type %q: %w", cfg.Type, ErrRuntimeNotFound)
	}
	return factory(cfg)
}

// List returns the registered engine names, sorted.
func List() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
