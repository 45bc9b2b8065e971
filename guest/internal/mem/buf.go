package mem

import "unsafe"

// BufLimit is the capacity of a buffer handed to a host function that fills
// it and returns the length it needed.
type BufLimit = uint32

// readBufSize covers most host values without a second call.
const readBufSize BufLimit = 2048

var readBuf = make([]byte, readBufSize)

// GetBytes calls fn with a guest buffer. When the host reports a length above
// the limit, fn is called again with a buffer of exactly that length.
func GetBytes(fn func(ptr uint32, limit BufLimit) (size uint32)) []byte {
	ptr := uint32(uintptr(unsafe.Pointer(unsafe.SliceData(readBuf))))
	size := fn(ptr, readBufSize)
	if size <= readBufSize {
		return append([]byte(nil), readBuf[:size]...)
	}

	buf := make([]byte, size)
	ptr = uint32(uintptr(unsafe.Pointer(unsafe.SliceData(buf))))
	_ = fn(ptr, size)
	return buf
}

// BytesToPtr returns the address and length of b. The caller keeps b alive
// while the host reads it.
func BytesToPtr(b []byte) (uint32, uint32) {
	if len(b) == 0 {
		return 0, 0
	}
	return uint32(uintptr(unsafe.Pointer(unsafe.SliceData(b)))), uint32(len(b))
}

// StringToPtr is BytesToPtr for strings.
func StringToPtr(s string) (uint32, uint32) {
	if s == "" {
		return 0, 0
	}
	return uint32(uintptr(unsafe.Pointer(unsafe.StringData(s)))), uint32(len(s))
}
