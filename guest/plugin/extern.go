//go:build wasm

package plugin

import "github.com/wasmglue/wasmglue/guest/objects"

var (
	_ func()                      = _abiVersion
	_ func(uint32, uint32) uint32 = _resolve
	_ func(uint32, uint32) uint32 = _new
	_ func(uint32, uint32) uint32 = _invoke
)

//go:wasmexport wasmglue_abi_version_0_1_0
func _abiVersion() {}

//go:wasmexport wasmglue_resolve
func _resolve(ptr, size uint32) uint32 {
	return handle(objects.EntryResolve, ptr, size)
}

//go:wasmexport wasmglue_new
func _new(ptr, size uint32) uint32 {
	return handle(objects.EntryNew, ptr, size)
}

//go:wasmexport wasmglue_invoke
func _invoke(ptr, size uint32) uint32 {
	return handle(objects.EntryInvoke, ptr, size)
}
