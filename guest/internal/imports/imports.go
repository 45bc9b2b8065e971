// Package imports wraps the host functions a guest module calls.
package imports

import (
	"encoding/json"
	"runtime"

	"github.com/wasmglue/wasmglue/guest/internal/mem"
	"github.com/wasmglue/wasmglue/wire"
)

// lastSent is the most recent buffer passed to the host.
var lastSent []byte

func send(b []byte, fn func(ptr, size uint32)) {
	lastSent = b
	ptr, size := mem.BytesToPtr(b)
	fn(ptr, size)
	runtime.KeepAlive(b) // until the host has copied it
	lastSent = nil
}

// SetResult hands the encoded result of the current entry point to the host.
func SetResult(b []byte) {
	if len(b) == 0 {
		return
	}
	send(b, setResult)
}

// StatusToCode reports the reason and payload of s to the host and returns
// the numeric status for the entry point to return.
func StatusToCode(s wire.Status) uint32 {
	if s.Code == wire.StatusOK {
		return uint32(wire.StatusOK)
	}

	// WebAssembly functions only return numbers, so the reason and payload
	// travel through host functions.
	if s.Reason != "" {
		send([]byte(s.Reason), setStatusReason)
	}
	if !s.Payload.IsNull() {
		setStatusPayload(uint32(s.Payload))
	}
	return uint32(s.Code)
}

// GuestConfig decodes the JSON configuration the host passed to this guest
// into v. An absent configuration leaves v untouched.
func GuestConfig(v any) error {
	raw := mem.GetBytes(func(ptr uint32, limit mem.BufLimit) uint32 {
		return getGuestConfig(ptr, limit)
	})
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// LogMessage sends one encoded log record to the host.
func LogMessage(b []byte) {
	if len(b) == 0 {
		return
	}
	send(b, logMessage)
}
