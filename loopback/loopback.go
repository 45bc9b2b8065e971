// Package loopback runs a guest object runtime in the host process. Requests
// and results still go through the wire encoding, so proxies behave exactly as
// they do against a WebAssembly guest.
package loopback

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wasmglue/wasmglue/foreign"
	"github.com/wasmglue/wasmglue/guest/objects"
	"github.com/wasmglue/wasmglue/wire"
)

// Boundary implements foreign.Boundary over an objects.Runtime.
type Boundary struct {
	rt     *objects.Runtime
	logger *zap.Logger

	// Crossings counts every request served, for tests that assert a call did
	// or did not reach the guest.
	Crossings int
	closed    bool
}

var _ foreign.Boundary = (*Boundary)(nil)

// New returns a boundary serving rt. A nil logger disables logging.
func New(rt *objects.Runtime, logger *zap.Logger) *Boundary {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Boundary{rt: rt, logger: logger}
}

// Runtime returns the guest runtime behind the boundary.
func (b *Boundary) Runtime() *objects.Runtime { return b.rt }

func (b *Boundary) Resolve(_ context.Context, module, name string) (wire.Value, error) {
	return b.serve(objects.EntryResolve, wire.ResolveRequest{Module: module, Name: name}.Value())
}

func (b *Boundary) New(_ context.Context, class wire.Handle, args []wire.Value) (wire.Value, error) {
	return b.serve(objects.EntryNew, wire.NewRequest{Class: class, Args: args}.Value())
}

func (b *Boundary) Invoke(_ context.Context, target wire.Handle, op string, args []wire.Value) (wire.Value, error) {
	return b.serve(objects.EntryInvoke, wire.InvokeRequest{Target: target, Op: op, Args: args}.Value())
}

func (b *Boundary) Close(context.Context) error {
	b.closed = true
	return nil
}

func (b *Boundary) serve(entry objects.Entry, req wire.Value) (wire.Value, error) {
	if b.closed {
		return wire.Null(), foreign.ErrClosed
	}
	raw, err := wire.Marshal(req)
	if err != nil {
		return wire.Null(), fmt.Errorf("loopback: encoding %s request: %w", entry, err)
	}

	b.Crossings++
	res, status := b.rt.Serve(entry, raw)
	switch status.Code {
	case wire.StatusOK:
		return wire.Unmarshal(res)
	case wire.StatusRaised:
		b.logger.Debug("guest raised", zap.Stringer("entry", entry), zap.String("reason", status.Reason))
		return wire.Null(), &foreign.Signal{Reason: status.Reason, Payload: status.Payload}
	default:
		return wire.Null(), fmt.Errorf("loopback: %s rejected with %s: %s", entry, status.Code, status.Reason)
	}
}
