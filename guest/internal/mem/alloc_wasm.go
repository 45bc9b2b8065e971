//go:build wasm

package mem

//go:wasmexport wasmglue_memory_allocate
func allocate(size uint32) uint32 {
	return Alloc(size)
}
