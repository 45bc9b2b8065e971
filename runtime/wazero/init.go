package wazero

import "github.com/wasmglue/wasmglue/runtime"

func init() {
	runtime.Register(runtime.TypeWazero, newWazeroRuntime)
}
