// Package foreign makes objects living inside an embedded guest runtime look
// like ordinary host objects. It resolves guest classes once, keeps one host
// proxy per guest object, converts values in both directions, turns guest
// failures into host errors and adapts guest iteration to Go iteration.
package foreign

import (
	"context"

	"github.com/wasmglue/wasmglue/wire"
)

// Boundary is the embedded runtime as seen by the proxy layer. Each method is
// one crossing. A failure raised by guest code is returned as a *Signal; any
// other error is a transport failure.
//
// Implementations need not be safe for concurrent use; Env serializes all
// crossings.
type Boundary interface {
	// Resolve looks up the class exported as name by module and returns its
	// wire.ClassInfo encoding.
	Resolve(ctx context.Context, module, name string) (wire.Value, error)
	// New constructs an instance of class and returns a reference to it.
	New(ctx context.Context, class wire.Handle, args []wire.Value) (wire.Value, error)
	// Invoke calls op on target.
	Invoke(ctx context.Context, target wire.Handle, op string, args []wire.Value) (wire.Value, error)
	// Close tears the runtime down. Handles are invalid afterwards.
	Close(ctx context.Context) error
}
