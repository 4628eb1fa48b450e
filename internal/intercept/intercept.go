// Package intercept holds the two HSA core-API shims the agent installs
// into the runtime's function table: hsa_executable_freeze and
// hsa_executable_destroy, each of which forwards to the saved original and
// then asks the controller to resynchronize its view of the loaded code
// objects — spec.md §4.6, grounded on
// debug_agent.cpp:debug_agent_hsa_executable_freeze/destroy.
package intercept

import (
	"unsafe"

	"github.com/peterjunpark/rocr-debug-agent/internal/controller"
	"github.com/peterjunpark/rocr-debug-agent/internal/hsabi"
	"github.com/peterjunpark/rocr-debug-agent/internal/logflags"
)

// original holds the two function pointers saved before the agent installs
// its own shims, as raw addresses — cmd/rocm-debug-agent is the only
// package that knows how to call back through them via cgo.
var (
	originalFreeze  uintptr
	originalDestroy uintptr
)

// Install saves table's current freeze/destroy entries and installs the
// shims in their place. freezeShim/destroyShim are the cgo-exported
// function pointers cmd/rocm-debug-agent provides, matching the C
// function-pointer type the table expects.
func Install(table hsabi.Table, freezeShim, destroyShim uintptr) {
	originalFreeze = table.OriginalExecutableFreeze()
	originalDestroy = table.OriginalExecutableDestroy()

	table.InstallExecutableFreeze(unsafe.Pointer(freezeShim)) //nolint:govet // freezeShim is a live C function pointer from cgo, not a converted Go pointer
	table.InstallExecutableDestroy(unsafe.Pointer(destroyShim)) //nolint:govet
}

// OriginalFreeze / OriginalDestroy expose the saved originals as raw
// addresses, for cmd/rocm-debug-agent's cgo shims to call through.
func OriginalFreeze() uintptr  { return originalFreeze }
func OriginalDestroy() uintptr { return originalDestroy }

// OnExecutableFreeze / OnExecutableDestroy are called by
// cmd/rocm-debug-agent's cgo shims after forwarding to the original
// function, to trigger the code-object-list resynchronization spec.md
// §4.6 requires whenever an executable is frozen (code objects become
// loadable) or destroyed (code objects become unloadable).
func OnExecutableFreeze() {
	if err := controller.Get().UpdateCodeObjectList(); err != nil {
		logflags.InterceptLogger().Errorf("update_code_object_list after executable_freeze: %v", err)
	}
}

func OnExecutableDestroy() {
	if err := controller.Get().UpdateCodeObjectList(); err != nil {
		logflags.InterceptLogger().Errorf("update_code_object_list after executable_destroy: %v", err)
	}
}
