//go:build wasm

package imports

import "github.com/wasmglue/wasmglue/guest/internal/mem"

//go:wasmimport wasmglue.dev/host set_result
func setResult(ptr, size uint32)

//go:wasmimport wasmglue.dev/host set_status_reason
func setStatusReason(ptr, size uint32)

//go:wasmimport wasmglue.dev/host set_status_payload
func setStatusPayload(handle uint32)

//go:wasmimport wasmglue.dev/host get_guest_config
func getGuestConfig(ptr uint32, limit mem.BufLimit) (size uint32)

//go:wasmimport wasmglue.dev/host log_message
func logMessage(ptr, size uint32)
