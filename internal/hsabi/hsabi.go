// Package hsabi mirrors the small slice of the HSA runtime's C ABI the
// agent needs: the core API table entries for hsa_executable_freeze and
// hsa_executable_destroy, which OnLoad intercepts (spec.md §6).
//
// This is an external, fixed-contract collaborator (spec.md §1): only the
// two function-pointer slots the agent rewrites are exposed.
package hsabi

/*
#include <link.h>
#include <hsa/hsa.h>
#include <hsa/hsa_api_trace.h>

static hsa_status_t (*get_executable_freeze_fn(CoreApiTable *t))(hsa_executable_t, const char *) {
	return t->hsa_executable_freeze_fn;
}
static void set_executable_freeze_fn(CoreApiTable *t, hsa_status_t (*fn)(hsa_executable_t, const char *)) {
	t->hsa_executable_freeze_fn = fn;
}
static hsa_status_t (*get_executable_destroy_fn(CoreApiTable *t))(hsa_executable_t) {
	return t->hsa_executable_destroy_fn;
}
static void set_executable_destroy_fn(CoreApiTable *t, hsa_status_t (*fn)(hsa_executable_t)) {
	t->hsa_executable_destroy_fn = fn;
}

// _amdgpu_r_debug is exported by the ROCr runtime: an r_debug struct (the
// same shape glibc's dynamic linker publishes for host shared objects)
// describing the GPU code object loader's rendezvous point.
extern struct r_debug _amdgpu_r_debug;

static unsigned long long amdgpu_r_brk(void) {
	return (unsigned long long)(uintptr_t)_amdgpu_r_debug.r_brk;
}
*/
import "C"

import "unsafe"

// Table wraps the HsaApiTable pointer OnLoad receives. The two intercepted
// function-pointer slots themselves are never modeled as Go func values:
// cmd/rocm-debug-agent calls through them as raw C function pointers (see
// its call_original_freeze/call_original_destroy trampolines), since that
// is the only way cgo can invoke a saved C function pointer.
type Table struct {
	core *C.CoreApiTable
}

// NewTable wraps the raw table pointer passed to OnLoad.
func NewTable(tablePtr unsafe.Pointer) Table {
	apiTable := (*C.HsaApiTable)(tablePtr)
	return Table{core: apiTable.core_}
}

// OriginalExecutableFreeze / OriginalExecutableDestroy return the table's
// current function pointers, to be saved before replacing them.
func (t Table) OriginalExecutableFreeze() uintptr {
	return uintptr(unsafe.Pointer(C.get_executable_freeze_fn(t.core)))
}

func (t Table) OriginalExecutableDestroy() uintptr {
	return uintptr(unsafe.Pointer(C.get_executable_destroy_fn(t.core)))
}

// InstallExecutableFreeze / InstallExecutableDestroy rewrite the table's
// entries to point at the agent's cgo-exported shim functions.
func (t Table) InstallExecutableFreeze(fnPtr unsafe.Pointer) {
	C.set_executable_freeze_fn(t.core, (*[0]byte)(fnPtr))
}

func (t Table) InstallExecutableDestroy(fnPtr unsafe.Pointer) {
	C.set_executable_destroy_fn(t.core, (*[0]byte)(fnPtr))
}

// RBrkAddress returns the runtime's GPU code-object rendezvous breakpoint
// address, published via the _amdgpu_r_debug symbol. The dbgapi
// InsertBreakpoint callback compares its requested address against this
// value to confirm it is being asked to track the rendezvous breakpoint
// and not some other address (spec.md §4.6).
func RBrkAddress() uint64 {
	return uint64(C.amdgpu_r_brk())
}
