// Package guesttest serves the commons guest modules inside the test
// process, so host proxies can be exercised without compiling a guest.
package guesttest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wasmglue/wasmglue/foreign"
	"github.com/wasmglue/wasmglue/guest/commonscli"
	"github.com/wasmglue/wasmglue/guest/commonscsv"
	"github.com/wasmglue/wasmglue/guest/objects"
	"github.com/wasmglue/wasmglue/loopback"
)

// NewRuntime returns a fresh guest runtime exporting commons_csv and
// commons_cli.
func NewRuntime() *objects.Runtime {
	rt := objects.NewRuntime()
	commonscsv.Register(rt)
	commonscli.Register(rt)
	return rt
}

// NewEnv returns an Env over a fresh runtime with classes resolved, and the
// loopback boundary for crossing counts. The Env is closed when t ends.
func NewEnv(t testing.TB, classes []*foreign.Class) (*foreign.Env, *loopback.Boundary) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	b := loopback.New(NewRuntime(), logger.Named("loopback"))
	env, err := foreign.NewEnv(context.Background(), b, classes, foreign.WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close(context.Background()) })
	return env, b
}
