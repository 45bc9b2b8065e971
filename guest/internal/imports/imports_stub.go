//go:build !wasm

package imports

import "github.com/wasmglue/wasmglue/guest/internal/mem"

// Outside of a wasm build the host functions record what they were given, so
// guest exports can be tested natively.
var (
	StubResult   []byte
	StubReason   string
	StubPayload  uint32
	StubConfig   []byte
	StubMessages [][]byte
)

// ResetStubs clears everything recorded by the stubs.
func ResetStubs() {
	StubResult, StubReason, StubPayload, StubConfig, StubMessages = nil, "", 0, nil, nil
}

func setResult(ptr, size uint32) { StubResult = stubBytes(ptr, size) }

func setStatusReason(ptr, size uint32) { StubReason = string(stubBytes(ptr, size)) }

func setStatusPayload(handle uint32) { StubPayload = handle }

func getGuestConfig(_ uint32, _ mem.BufLimit) uint32 { return 0 }

func logMessage(ptr, size uint32) { StubMessages = append(StubMessages, stubBytes(ptr, size)) }

// Native pointers do not fit in 32 bits, so the stubs read the last buffer
// handed out by BytesToPtr instead of dereferencing ptr.
func stubBytes(_, size uint32) []byte {
	b := lastSent
	if uint32(len(b)) > size {
		b = b[:size]
	}
	return append([]byte(nil), b...)
}
