package dbgapi

/*
#include <amd-dbgapi/amd-dbgapi.h>
#include <stdlib.h>

extern amd_dbgapi_status_t go_symbolize(amd_dbgapi_symbolizer_id_t, amd_dbgapi_global_address_t, char **);
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"
)

// Symbolizer renders the operand at address as "0xADDR <NAME+OFF>" text,
// per spec.md §4.2 disassemble().
type Symbolizer func(address uint64) string

// DisassembleInstruction decodes a single instruction at addr out of mem
// (which must hold at least the architecture's largest-instruction-size
// bytes), returning its textual form and size in bytes.
func DisassembleInstruction(a ArchitectureID, addr uint64, mem []byte, sym Symbolizer) (text string, size int, err error) {
	csize := C.amd_dbgapi_size_t(len(mem))

	var handle cgo.Handle
	var symbolizerID C.amd_dbgapi_symbolizer_id_t
	var symbolizerFn C.amd_dbgapi_symbolizer_t
	if sym != nil {
		handle = cgo.NewHandle(sym)
		defer handle.Delete()
		symbolizerID = C.amd_dbgapi_symbolizer_id_t(unsafe.Pointer(&handle))
		symbolizerFn = C.amd_dbgapi_symbolizer_t(C.go_symbolize)
	}

	var ctext *C.char
	rc := C.amd_dbgapi_disassemble_instruction(
		C.amd_dbgapi_architecture_id_t{handle: C.uint64_t(a.Handle)},
		C.amd_dbgapi_global_address_t(addr), &csize, unsafe.Pointer(&mem[0]),
		&ctext, symbolizerID, symbolizerFn)
	if err := checkStatus(rc); err != nil {
		return "", 0, err
	}
	defer C.free(unsafe.Pointer(ctext))
	return C.GoString(ctext), int(csize), nil
}

//export go_symbolize
func go_symbolize(id C.amd_dbgapi_symbolizer_id_t, addr C.amd_dbgapi_global_address_t, out **C.char) C.amd_dbgapi_status_t {
	handle := *(*cgo.Handle)(unsafe.Pointer(uintptr(id)))
	sym, ok := handle.Value().(Symbolizer)
	if !ok {
		return C.AMD_DBGAPI_STATUS_ERROR
	}
	text := sym(uint64(addr))
	*out = C.CString(text)
	return C.AMD_DBGAPI_STATUS_SUCCESS
}
