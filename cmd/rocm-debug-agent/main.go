// Command rocm-debug-agent is the agent's cgo entry point: a
// -buildmode=c-shared library exporting OnLoad/OnUnload, the two symbols
// the HSA runtime looks up in a ROCR_TOOL_LIB the same way it looks up any
// runtime tool — spec.md §6.
//
// There is no argv-driven CLI surface here, unlike the teacher's cmd/dlv:
// the runtime loads this as a shared object and calls OnLoad/OnUnload
// directly, so all configuration comes from ROCM_DEBUG_AGENT_OPTIONS
// (internal/options), not flags.
package main

/*
#include <stdint.h>
#include <stdbool.h>
#include <hsa/hsa.h>

extern hsa_status_t agent_hsa_executable_freeze(hsa_executable_t executable, const char *options);
extern hsa_status_t agent_hsa_executable_destroy(hsa_executable_t executable);

static uintptr_t freeze_shim_ptr(void) { return (uintptr_t) agent_hsa_executable_freeze; }
static uintptr_t destroy_shim_ptr(void) { return (uintptr_t) agent_hsa_executable_destroy; }

typedef hsa_status_t (*freeze_fn_t)(hsa_executable_t, const char *);
typedef hsa_status_t (*destroy_fn_t)(hsa_executable_t);

static hsa_status_t call_original_freeze(uintptr_t fn, hsa_executable_t executable, const char *options) {
	return ((freeze_fn_t) fn)(executable, options);
}
static hsa_status_t call_original_destroy(uintptr_t fn, hsa_executable_t executable) {
	return ((destroy_fn_t) fn)(executable);
}
*/
import "C"

import (
	"unsafe"

	"github.com/peterjunpark/rocr-debug-agent/internal/bootstrap"
	"github.com/peterjunpark/rocr-debug-agent/internal/intercept"
)

func main() {} // required by -buildmode=c-shared, never called

//export OnLoad
func OnLoad(table unsafe.Pointer, runtimeVersion C.uint64_t, failedToolCount C.uint64_t, failedToolNames **C.char) C.bool {
	ok := bootstrap.OnLoad(table, uintptr(C.freeze_shim_ptr()), uintptr(C.destroy_shim_ptr()))
	return C.bool(ok)
}

//export OnUnload
func OnUnload() {
	bootstrap.OnUnload()
}

//export agent_hsa_executable_freeze
func agent_hsa_executable_freeze(executable C.hsa_executable_t, options *C.char) C.hsa_status_t {
	status := C.call_original_freeze(C.uintptr_t(intercept.OriginalFreeze()), executable, options)
	intercept.OnExecutableFreeze()
	return status
}

//export agent_hsa_executable_destroy
func agent_hsa_executable_destroy(executable C.hsa_executable_t) C.hsa_status_t {
	status := C.call_original_destroy(C.uintptr_t(intercept.OriginalDestroy()), executable)
	intercept.OnExecutableDestroy()
	return status
}
