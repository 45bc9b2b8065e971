package mem

import (
	"fmt"
	"unsafe"
)

// pinnedAllocations keeps buffers the host asked for alive until guest code
// takes ownership, so the GC cannot reclaim memory the host is writing into.
var pinnedAllocations = map[uint32][]byte{}

// Alloc allocates and pins a buffer of size bytes and returns its address in
// linear memory. Size 0 yields the null pointer.
func Alloc(size uint32) uint32 {
	if size == 0 {
		return 0
	}

	buf := make([]byte, size)
	ptr := uint32(uintptr(unsafe.Pointer(unsafe.SliceData(buf))))
	pinnedAllocations[ptr] = buf
	return ptr
}

// TakeOwnership unpins the buffer at ptr and returns its first size bytes.
func TakeOwnership(ptr uint32, size uint32) []byte {
	if ptr == 0 && size == 0 {
		return nil
	}

	buf, ok := pinnedAllocations[ptr]
	if !ok {
		panic(fmt.Sprintf("TakeOwnership: unknown pointer %d", ptr))
	}

	delete(pinnedAllocations, ptr)
	if size > uint32(len(buf)) {
		panic(fmt.Sprintf("TakeOwnership: size %d exceeds allocation %d", size, len(buf)))
	}

	return buf[:size]
}

// Pinned returns the number of buffers waiting for TakeOwnership.
func Pinned() int { return len(pinnedAllocations) }

// Peek returns the pinned buffer at ptr without unpinning it, or nil.
func Peek(ptr uint32) []byte { return pinnedAllocations[ptr] }
