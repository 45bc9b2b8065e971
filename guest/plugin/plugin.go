// Package plugin turns a Go program compiled with GOOS=wasip1 GOARCH=wasm
// into a guest module: classes registered here are served to the host
// through the wasmglue entry points.
//
//	func init() {
//		plugin.Register("commons_csv", csvFormatClass)
//	}
//
//	func main() {}
package plugin

import (
	"github.com/wasmglue/wasmglue/guest/internal/imports"
	"github.com/wasmglue/wasmglue/guest/internal/mem"
	"github.com/wasmglue/wasmglue/guest/objects"
)

// Register exports cls as module.cls.Name to the host.
func Register(module string, cls *objects.Class) {
	objects.Register(module, cls)
}

// Config decodes the guest configuration set on the host into v.
func Config(v any) error {
	return imports.GuestConfig(v)
}

// handle runs one entry point over the request the host wrote at ptr.
func handle(entry objects.Entry, ptr, size uint32) uint32 {
	req := mem.TakeOwnership(ptr, size)
	res, status := objects.Default().Serve(entry, req)
	imports.SetResult(res)
	return imports.StatusToCode(status)
}
