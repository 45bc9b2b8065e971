package foreign

import (
	"sync"

	"github.com/wasmglue/wasmglue/wire"
)

// IdentityCache maps guest handles to the host proxies built for them, so that
// one guest object is always seen as one host object. Entries live as long as
// the cache.
type IdentityCache[P any] struct {
	mu      sync.Mutex
	entries map[wire.Handle]P
}

func NewIdentityCache[P any]() *IdentityCache[P] {
	return &IdentityCache[P]{entries: make(map[wire.Handle]P)}
}

// GetOrCreate returns the proxy cached for h, building it with factory on a
// miss. Only one proxy is ever published per handle. factory must not cross
// into the guest. h must not be null.
func (c *IdentityCache[P]) GetOrCreate(h wire.Handle, factory func(wire.Handle) P) P {
	if h.IsNull() {
		panic("foreign: identity cache lookup with a null handle")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.entries[h]; ok {
		return p
	}
	p := factory(h)
	c.entries[h] = p
	return p
}

func (c *IdentityCache[P]) Lookup(h wire.Handle) (P, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[h]
	return p, ok
}

func (c *IdentityCache[P]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

type sizedCache interface{ Len() int }
