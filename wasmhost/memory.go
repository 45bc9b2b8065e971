package wasmhost

import "github.com/wasmglue/wasmglue/runtime"

// writeBytesIfUnderLimit writes bytes at buf when they fit in bufLimit and
// returns their length either way, so the guest can retry with a larger
// buffer.
func writeBytesIfUnderLimit(memory runtime.Memory, bytes []byte, buf, bufLimit uint32) uint32 {
	size := uint32(len(bytes))
	if size == 0 || size > bufLimit {
		return size
	}
	if !memory.Write(buf, bytes) {
		return 0
	}
	return size
}

// readBytes copies size bytes at buf out of guest memory.
func readBytes(memory runtime.Memory, buf, size uint32, what string) []byte {
	if size == 0 {
		return nil
	}
	b, ok := memory.Read(buf, size)
	if !ok {
		panic("out of memory reading " + what) // Bug: caller passed a length outside memory
	}
	return append([]byte(nil), b...)
}
