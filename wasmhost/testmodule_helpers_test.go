package wasmhost

import (
	"os"
	"path/filepath"
	"testing"
)

const (
	wasmTypeFunc0To0 = iota
	wasmTypeFunc0ToI32
	wasmTypeFuncI32ToI32
	wasmTypeFuncI32I32ToI32
)

type wasmFunctionSpec struct {
	name        string
	typeIndex   byte
	returnValue *uint32
}

// guestBehavior is what every entry point of a module built by
// buildGuestModule does: report result, reason and payload through the host
// functions, then return status.
type guestBehavior struct {
	status  uint32
	result  []byte
	reason  string
	payload uint32

	omitMarker bool
}

const (
	guestAllocAddr  = 4096
	guestResultAddr = 256
	guestReasonAddr = 1024
)

func writeTempModule(t *testing.T, module []byte) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.wasm")
	if err := os.WriteFile(path, module, 0o600); err != nil {
		t.Fatalf("failed to write test module: %v", err)
	}
	return path
}

func appendSection(module []byte, sectionID byte, payload []byte) []byte {
	module = append(module, sectionID)
	module = append(module, encodeULEB128Test(uint32(len(payload)))...)
	return append(module, payload...)
}

func wasmHeader() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, // magic
		0x01, 0x00, 0x00, 0x00, // version
	}
}

// buildTestModule returns a module without imports whose functions return
// constants.
func buildTestModule(exportMemory bool, functions []wasmFunctionSpec) []byte {
	module := wasmHeader()

	// Type section:
	// 0: () -> ()
	// 1: () -> i32
	// 2: (i32) -> i32
	// 3: (i32, i32) -> i32
	module = appendSection(module, 0x01, []byte{
		0x04,             // 4 types
		0x60, 0x00, 0x00, // () -> ()
		0x60, 0x00, 0x01, 0x7f, // () -> i32
		0x60, 0x01, 0x7f, 0x01, 0x7f, // (i32) -> i32
		0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f, // (i32, i32) -> i32
	})

	// Function section
	funcPayload := append([]byte{}, encodeULEB128Test(uint32(len(functions)))...)
	for _, fn := range functions {
		funcPayload = append(funcPayload, fn.typeIndex)
	}
	module = appendSection(module, 0x03, funcPayload)

	if exportMemory {
		// Memory section: one memory, min 1 page.
		module = appendSection(module, 0x05, []byte{0x01, 0x00, 0x01})
	}

	// Export section
	exportCount := len(functions)
	if exportMemory {
		exportCount++
	}
	exportPayload := append([]byte{}, encodeULEB128Test(uint32(exportCount))...)
	if exportMemory {
		exportPayload = appendExport(exportPayload, "memory", 0x02, 0)
	}
	for i, fn := range functions {
		exportPayload = appendExport(exportPayload, fn.name, 0x00, uint32(i))
	}
	module = appendSection(module, 0x07, exportPayload)

	// Code section
	codePayload := append([]byte{}, encodeULEB128Test(uint32(len(functions)))...)
	for _, fn := range functions {
		body := []byte{0x00} // local decl count
		if fn.returnValue != nil {
			body = append(body, 0x41) // i32.const
			body = append(body, encodeSLEB128Test(int32(*fn.returnValue))...)
		}
		body = append(body, 0x0b) // end
		codePayload = append(codePayload, encodeULEB128Test(uint32(len(body)))...)
		codePayload = append(codePayload, body...)
	}
	return appendSection(module, 0x0a, codePayload)
}

// buildGuestModule returns an ABI v1 module whose three entry points all
// behave as b describes.
func buildGuestModule(b guestBehavior) []byte {
	module := wasmHeader()

	// Type section:
	// 0: (i32, i32) -> ()      [set_result, set_status_reason]
	// 1: (i32) -> ()           [set_status_payload]
	// 2: (i32) -> i32          [wasmglue_memory_allocate]
	// 3: (i32, i32) -> i32     [entry points]
	// 4: () -> ()              [abi marker]
	module = appendSection(module, 0x01, []byte{
		0x05,
		0x60, 0x02, 0x7f, 0x7f, 0x00,
		0x60, 0x01, 0x7f, 0x00,
		0x60, 0x01, 0x7f, 0x01, 0x7f,
		0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
		0x60, 0x00, 0x00,
	})

	// Import section: host functions 0..2.
	importPayload := []byte{0x03}
	importPayload = appendImport(importPayload, setResult, 0)
	importPayload = appendImport(importPayload, setStatusReason, 0)
	importPayload = appendImport(importPayload, setStatusPayload, 1)
	module = appendSection(module, 0x02, importPayload)

	// Function section: local functions start at index 3.
	locals := []byte{0x02, 0x03, 0x03, 0x03}
	if !b.omitMarker {
		locals = append(locals, 0x04)
	}
	module = appendSection(module, 0x03, append(encodeULEB128Test(uint32(len(locals))), locals...))

	// Memory section: one memory, min 1 page.
	module = appendSection(module, 0x05, []byte{0x01, 0x00, 0x01})

	// Export section.
	exports := []string{memoryAllocateFunction, resolveFunction, newFunction, invokeFunction}
	if !b.omitMarker {
		exports = append(exports, abiVersionV1MarkerExport)
	}
	exportPayload := encodeULEB128Test(uint32(len(exports) + 1))
	exportPayload = appendExport(exportPayload, "memory", 0x02, 0)
	for i, name := range exports {
		exportPayload = appendExport(exportPayload, name, 0x00, uint32(3+i))
	}
	module = appendSection(module, 0x07, exportPayload)

	// Code section.
	allocBody := append([]byte{0x00, 0x41}, encodeSLEB128Test(guestAllocAddr)...)
	allocBody = append(allocBody, 0x0b)

	entryBody := []byte{0x00}
	if len(b.result) > 0 {
		entryBody = appendCall(entryBody, 0, guestResultAddr, int32(len(b.result)))
	}
	if b.reason != "" {
		entryBody = appendCall(entryBody, 1, guestReasonAddr, int32(len(b.reason)))
	}
	if b.payload != 0 {
		entryBody = appendCall(entryBody, 2, int32(b.payload))
	}
	entryBody = append(entryBody, 0x41)
	entryBody = append(entryBody, encodeSLEB128Test(int32(b.status))...)
	entryBody = append(entryBody, 0x0b)

	bodies := [][]byte{allocBody, entryBody, entryBody, entryBody}
	if !b.omitMarker {
		bodies = append(bodies, []byte{0x00, 0x0b})
	}
	codePayload := encodeULEB128Test(uint32(len(bodies)))
	for _, body := range bodies {
		codePayload = append(codePayload, encodeULEB128Test(uint32(len(body)))...)
		codePayload = append(codePayload, body...)
	}
	module = appendSection(module, 0x0a, codePayload)

	// Data section: result and reason at fixed offsets.
	var segments [][]byte
	if len(b.result) > 0 {
		segments = append(segments, dataSegment(guestResultAddr, b.result))
	}
	if b.reason != "" {
		segments = append(segments, dataSegment(guestReasonAddr, []byte(b.reason)))
	}
	dataPayload := encodeULEB128Test(uint32(len(segments)))
	for _, s := range segments {
		dataPayload = append(dataPayload, s...)
	}
	return appendSection(module, 0x0b, dataPayload)
}

func appendImport(payload []byte, name string, typeIndex byte) []byte {
	payload = append(payload, encodeULEB128Test(uint32(len(hostModuleName)))...)
	payload = append(payload, hostModuleName...)
	payload = append(payload, encodeULEB128Test(uint32(len(name)))...)
	payload = append(payload, name...)
	return append(payload, 0x00, typeIndex) // kind=func
}

func appendExport(payload []byte, name string, kind byte, index uint32) []byte {
	payload = append(payload, encodeULEB128Test(uint32(len(name)))...)
	payload = append(payload, name...)
	payload = append(payload, kind)
	return append(payload, encodeULEB128Test(index)...)
}

// appendCall pushes args as i32 constants and calls function fn.
func appendCall(body []byte, fn uint32, args ...int32) []byte {
	for _, a := range args {
		body = append(body, 0x41)
		body = append(body, encodeSLEB128Test(a)...)
	}
	body = append(body, 0x10)
	return append(body, encodeULEB128Test(fn)...)
}

func dataSegment(offset int32, data []byte) []byte {
	seg := []byte{0x00, 0x41} // active, memory 0, i32.const
	seg = append(seg, encodeSLEB128Test(offset)...)
	seg = append(seg, 0x0b)
	seg = append(seg, encodeULEB128Test(uint32(len(data)))...)
	return append(seg, data...)
}

func encodeULEB128Test(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

// encodeSLEB128Test encodes i32.const immediates, which are signed.
func encodeSLEB128Test(v int32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func uint32Ptr(v uint32) *uint32 {
	return &v
}
