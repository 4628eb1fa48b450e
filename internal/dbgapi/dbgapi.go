// Package dbgapi is a thin Go binding over the amd-dbgapi C library: the
// low-level debugger API that lets a client process attach to a GPU queue,
// enumerate wavefronts, read their registers and local memory, and
// disassemble GPU code objects.
//
// amd-dbgapi is an external collaborator with a fixed ABI (spec.md §1, §6):
// this package exposes only the surface the rest of the agent consumes, not
// a full reimplementation of the library.
package dbgapi

/*
#cgo LDFLAGS: -lamd-dbgapi
#include <amd-dbgapi/amd-dbgapi.h>
#include <stdlib.h>

extern amd_dbgapi_status_t go_client_process_get_info(amd_dbgapi_client_process_id_t, amd_dbgapi_client_process_info_t, size_t, void *);
extern amd_dbgapi_status_t go_insert_breakpoint(amd_dbgapi_client_process_id_t, amd_dbgapi_global_address_t, amd_dbgapi_breakpoint_id_t);
extern amd_dbgapi_status_t go_remove_breakpoint(amd_dbgapi_client_process_id_t, amd_dbgapi_breakpoint_id_t);
extern amd_dbgapi_status_t go_xfer_global_memory(amd_dbgapi_client_process_id_t, amd_dbgapi_global_address_t, amd_dbgapi_size_t *, void *, const void *);
extern void go_log_message(amd_dbgapi_log_level_t, const char *);

static amd_dbgapi_callbacks_t make_callbacks(void) {
	amd_dbgapi_callbacks_t cb;
	cb.allocate_memory = malloc;
	cb.deallocate_memory = free;
	cb.client_process_get_info = go_client_process_get_info;
	cb.insert_breakpoint = go_insert_breakpoint;
	cb.remove_breakpoint = go_remove_breakpoint;
	cb.xfer_global_memory = go_xfer_global_memory;
	cb.log_message = go_log_message;
	return cb;
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// Status mirrors amd_dbgapi_status_t.
type Status int

const (
	StatusSuccess Status = iota
	StatusError
	StatusErrorInvalidArgument
	StatusErrorInvalidArgumentCompatibility
	StatusErrorInvalidWaveID
	StatusErrorNotAvailable
	StatusErrorNotSupported
	StatusErrorMemoryAccess
)

func (s Status) Error() string { return fmt.Sprintf("amd_dbgapi status %d", int(s)) }

func checkStatus(rc C.amd_dbgapi_status_t) error {
	if rc == C.AMD_DBGAPI_STATUS_SUCCESS {
		return nil
	}
	return Status(rc)
}

// IsInvalidWaveID reports whether err is the tolerated INVALID_WAVE_ID error
// (spec.md §4.4, §7 — the wave died mid-operation, not a fatal condition).
func IsInvalidWaveID(err error) bool {
	s, ok := err.(Status)
	return ok && s == StatusErrorInvalidWaveID
}

// IsNotSupported reports the tolerated NOT_SUPPORTED error (spec.md §4.7).
func IsNotSupported(err error) bool {
	s, ok := err.(Status)
	return ok && s == StatusErrorNotSupported
}

// IsNotAvailable reports the tolerated NOT_AVAILABLE error (spec.md §7,
// dispatch kernel-entry lookup).
func IsNotAvailable(err error) bool {
	s, ok := err.(Status)
	return ok && s == StatusErrorNotAvailable
}

// Handle types. Each wraps the opaque uint64 handle amd-dbgapi hands back;
// Go code never dereferences into the C struct layout.
type (
	ProcessID      struct{ Handle uint64 }
	WaveID         struct{ Handle uint64 }
	CodeObjectID   struct{ Handle uint64 }
	EventID        struct{ Handle uint64 }
	ArchitectureID struct{ Handle uint64 }
	RegisterID     struct{ Handle uint64 }
	RegisterClass  struct{ Handle uint64 }
	DispatchID     struct{ Handle uint64 }
	BreakpointID   struct{ Handle uint64 }
	AddressSpaceID struct{ Handle uint64 }
)

// EventKind mirrors amd_dbgapi_event_kind_t.
type EventKind int

const (
	EventKindNone EventKind = iota
	EventKindWaveStop
	EventKindWaveCommandTerminated
	EventKindQueueError
	EventKindRuntime
	EventKindCodeObjectListUpdated
	EventKindBreakpointResume
)

// RuntimeState mirrors amd_dbgapi_runtime_state_t.
type RuntimeState int

const (
	RuntimeStateLoadedSuccess RuntimeState = iota
	RuntimeStateUnloaded
	RuntimeStateLoadedErrorRestriction
)

// WaveState mirrors amd_dbgapi_wave_state_t.
type WaveState int

const (
	WaveStateRun WaveState = iota
	WaveStateStop
	WaveStateSingleStep
)

// StopReason is a bitmask, spec.md §4.4.
type StopReason uint32

const (
	StopReasonNone                 StopReason = 0
	StopReasonBreakpoint           StopReason = 1 << 0
	StopReasonWatchpoint           StopReason = 1 << 1
	StopReasonSingleStep           StopReason = 1 << 2
	StopReasonFPInputDenormal      StopReason = 1 << 3
	StopReasonFPDivideByZero       StopReason = 1 << 4
	StopReasonFPOverflow           StopReason = 1 << 5
	StopReasonFPUnderflow          StopReason = 1 << 6
	StopReasonFPInexact            StopReason = 1 << 7
	StopReasonFPInvalidOperation   StopReason = 1 << 8
	StopReasonIntDivideByZero      StopReason = 1 << 9
	StopReasonDebugTrap            StopReason = 1 << 10
	StopReasonAssertTrap           StopReason = 1 << 11
	StopReasonTrap                 StopReason = 1 << 12
	StopReasonMemoryViolation      StopReason = 1 << 13
	StopReasonAddressError         StopReason = 1 << 14
	StopReasonIllegalInstruction   StopReason = 1 << 15
	StopReasonECCError             StopReason = 1 << 16
	StopReasonFatalHalt            StopReason = 1 << 17
)

// Bits returns the individual set bits of a StopReason, least-significant
// first, matching the per-bit decomposition spec.md §4.4 requires.
func (r StopReason) Bits() []StopReason {
	var out []StopReason
	for bit := StopReason(1); bit != 0 && bit <= r; bit <<= 1 {
		if r&bit != 0 {
			out = append(out, bit)
		}
	}
	return out
}

func (r StopReason) String() string {
	names := map[StopReason]string{
		StopReasonNone: "NONE", StopReasonBreakpoint: "BREAKPOINT",
		StopReasonWatchpoint: "WATCHPOINT", StopReasonSingleStep: "SINGLE_STEP",
		StopReasonFPInputDenormal: "FP_INPUT_DENORMAL", StopReasonFPDivideByZero: "FP_DIVIDE_BY_0",
		StopReasonFPOverflow: "FP_OVERFLOW", StopReasonFPUnderflow: "FP_UNDERFLOW",
		StopReasonFPInexact: "FP_INEXACT", StopReasonFPInvalidOperation: "FP_INVALID_OPERATION",
		StopReasonIntDivideByZero: "INT_DIVIDE_BY_0", StopReasonDebugTrap: "DEBUG_TRAP",
		StopReasonAssertTrap: "ASSERT_TRAP", StopReasonTrap: "TRAP",
		StopReasonMemoryViolation: "MEMORY_VIOLATION", StopReasonAddressError: "ADDRESS_ERROR",
		StopReasonIllegalInstruction: "ILLEGAL_INSTRUCTION", StopReasonECCError: "ECC_ERROR",
		StopReasonFatalHalt: "FATAL_HALT",
	}
	if r == StopReasonNone {
		return "NONE"
	}
	out := ""
	for _, b := range r.Bits() {
		if out != "" {
			out += "|"
		}
		out += names[b]
	}
	return out
}

// Exception is a resume-time exception mask, spec.md §4.4.
type Exception uint32

const (
	ExceptionNone               Exception = 0
	ExceptionWaveTrap           Exception = 1 << 0
	ExceptionWaveMathError      Exception = 1 << 1
	ExceptionWaveMemoryViolation Exception = 1 << 2
	ExceptionWaveAddressError   Exception = 1 << 3
	ExceptionWaveIllegalInstruction Exception = 1 << 4
	ExceptionWaveAbort          Exception = 1 << 5
)

// ResumeMode mirrors amd_dbgapi_resume_mode_t.
type ResumeMode int

const ResumeModeNormal ResumeMode = 0

// MemoryPrecision mirrors amd_dbgapi_memory_precision_t.
type MemoryPrecision int

const MemoryPrecisionPrecise MemoryPrecision = 1

// ProgressMode / WaveCreationMode mirror the corresponding process knobs.
type ProgressMode int

const (
	ProgressNormal ProgressMode = iota
	ProgressNoForward
)

type WaveCreationMode int

const (
	WaveCreationNormal WaveCreationMode = iota
	WaveCreationStop
)

// Callbacks is the vtable amd-dbgapi invokes back into the client process
// (spec.md §9 "callback-passing into C APIs"). allocate_memory/
// deallocate_memory are wired directly to malloc/free in the cgo shim and
// have no Go-side counterpart here.
type Callbacks struct {
	GetOSPID         func() uint32
	XferGlobalMemory func(addr uint64, buf []byte, write bool) (int, error)
	InsertBreakpoint func(addr uint64, bp BreakpointID) error
	RemoveBreakpoint func(bp BreakpointID) error
	LogMessage       func(level int, msg string)
}

var activeCallbacks Callbacks

// Initialize installs the callback vtable and initializes the library.
// Must be called exactly once, from the worker thread (spec.md §5).
func Initialize(cb Callbacks) error {
	activeCallbacks = cb
	callbacks := C.make_callbacks()
	return checkStatus(C.amd_dbgapi_initialize(&callbacks))
}

// Finalize tears down the library. Called once, from the worker thread,
// when the worker's epoll loop exits.
func Finalize() error {
	return checkStatus(C.amd_dbgapi_finalize())
}

// Attach attaches to the current process using selfMemFD (the /proc/self/mem
// descriptor) as the opaque client-process handle, per spec.md §4.7.
func Attach(selfMemFD int) (ProcessID, error) {
	var pid C.amd_dbgapi_process_id_t
	clientID := C.amd_dbgapi_client_process_id_t(unsafe.Pointer(&selfMemFD))
	rc := C.amd_dbgapi_process_attach(clientID, &pid)
	return ProcessID{uint64(pid.handle)}, checkStatus(rc)
}

// Detach releases the attachment established by Attach.
func Detach(p ProcessID) error {
	return checkStatus(C.amd_dbgapi_process_detach(C.amd_dbgapi_process_id_t{handle: C.uint64_t(p.Handle)}))
}

// NotifierFD returns the file descriptor the client should poll for
// readiness whenever new events are pending (spec.md §6 Notifier).
func NotifierFD(p ProcessID) (int, error) {
	var fd C.int
	rc := C.amd_dbgapi_process_get_info(
		C.amd_dbgapi_process_id_t{handle: C.uint64_t(p.Handle)},
		C.AMD_DBGAPI_PROCESS_INFO_NOTIFIER, C.size_t(unsafe.Sizeof(fd)), unsafe.Pointer(&fd))
	return int(fd), checkStatus(rc)
}

// NextPendingEvent pops the next queued event, or EventKindNone if the queue
// is empty.
func NextPendingEvent(p ProcessID) (EventID, EventKind, error) {
	var id C.amd_dbgapi_event_id_t
	var kind C.amd_dbgapi_event_kind_t
	rc := C.amd_dbgapi_process_next_pending_event(
		C.amd_dbgapi_process_id_t{handle: C.uint64_t(p.Handle)}, &id, &kind)
	return EventID{uint64(id.handle)}, EventKind(kind), checkStatus(rc)
}

// EventProcessed acknowledges an event, allowing the next one to be popped.
func EventProcessed(id EventID) error {
	return checkStatus(C.amd_dbgapi_event_processed(C.amd_dbgapi_event_id_t{handle: C.uint64_t(id.Handle)}))
}

// EventWaveID returns the wave a WAVE_STOP / WAVE_COMMAND_TERMINATED event
// refers to.
func EventWaveID(id EventID) (WaveID, error) {
	var wave C.amd_dbgapi_wave_id_t
	rc := C.amd_dbgapi_event_get_info(
		C.amd_dbgapi_event_id_t{handle: C.uint64_t(id.Handle)},
		C.AMD_DBGAPI_EVENT_INFO_WAVE, C.size_t(unsafe.Sizeof(wave)), unsafe.Pointer(&wave))
	return WaveID{uint64(wave.handle)}, checkStatus(rc)
}

// EventRuntimeState returns the runtime state carried by a RUNTIME event.
func EventRuntimeState(id EventID) (RuntimeState, error) {
	var state C.amd_dbgapi_runtime_state_t
	rc := C.amd_dbgapi_event_get_info(
		C.amd_dbgapi_event_id_t{handle: C.uint64_t(id.Handle)},
		C.AMD_DBGAPI_EVENT_INFO_RUNTIME_STATE, C.size_t(unsafe.Sizeof(state)), unsafe.Pointer(&state))
	return RuntimeState(state), checkStatus(rc)
}

// SetProgress / SetWaveCreation implement the forward-progress override
// spec.md §4.5 requires around a report.
func SetProgress(p ProcessID, mode ProgressMode) error {
	return checkStatus(C.amd_dbgapi_process_set_progress(
		C.amd_dbgapi_process_id_t{handle: C.uint64_t(p.Handle)}, C.amd_dbgapi_progress_t(mode)))
}

func SetWaveCreation(p ProcessID, mode WaveCreationMode) error {
	return checkStatus(C.amd_dbgapi_process_set_wave_creation(
		C.amd_dbgapi_process_id_t{handle: C.uint64_t(p.Handle)}, C.amd_dbgapi_wave_creation_t(mode)))
}

// SetMemoryPrecision requests precise-memory mode (spec.md §4.7, §6 -p).
func SetMemoryPrecision(p ProcessID, precision MemoryPrecision) error {
	return checkStatus(C.amd_dbgapi_set_memory_precision(
		C.amd_dbgapi_process_id_t{handle: C.uint64_t(p.Handle)}, C.amd_dbgapi_memory_precision_t(precision)))
}

// WaveList enumerates every wave currently known to the process.
func WaveList(p ProcessID) ([]WaveID, error) {
	var ids *C.amd_dbgapi_wave_id_t
	var count C.size_t
	rc := C.amd_dbgapi_process_wave_list(
		C.amd_dbgapi_process_id_t{handle: C.uint64_t(p.Handle)}, &count, &ids, nil)
	if err := checkStatus(rc); err != nil {
		return nil, err
	}
	defer C.free(unsafe.Pointer(ids))
	return waveSlice(ids, count), nil
}

func waveSlice(ids *C.amd_dbgapi_wave_id_t, count C.size_t) []WaveID {
	out := make([]WaveID, 0, int(count))
	raw := unsafe.Slice(ids, int(count))
	for _, id := range raw {
		out = append(out, WaveID{uint64(id.handle)})
	}
	return out
}

// GetWaveState returns the current state of a wave.
func GetWaveState(w WaveID) (WaveState, error) {
	var state C.amd_dbgapi_wave_state_t
	rc := C.amd_dbgapi_wave_get_info(
		C.amd_dbgapi_wave_id_t{handle: C.uint64_t(w.Handle)},
		C.AMD_DBGAPI_WAVE_INFO_STATE, C.size_t(unsafe.Sizeof(state)), unsafe.Pointer(&state))
	return WaveState(state), checkStatus(rc)
}

// GetWaveStopReason returns the stop-reason bitmask of a stopped wave.
func GetWaveStopReason(w WaveID) (StopReason, error) {
	var reason C.uint32_t
	rc := C.amd_dbgapi_wave_get_info(
		C.amd_dbgapi_wave_id_t{handle: C.uint64_t(w.Handle)},
		C.AMD_DBGAPI_WAVE_INFO_STOP_REASON, C.size_t(unsafe.Sizeof(reason)), unsafe.Pointer(&reason))
	return StopReason(reason), checkStatus(rc)
}

// GetWavePC returns the wave's current program counter.
func GetWavePC(w WaveID) (uint64, error) {
	var pc C.uint64_t
	rc := C.amd_dbgapi_wave_get_info(
		C.amd_dbgapi_wave_id_t{handle: C.uint64_t(w.Handle)},
		C.AMD_DBGAPI_WAVE_INFO_PC, C.size_t(unsafe.Sizeof(pc)), unsafe.Pointer(&pc))
	return uint64(pc), checkStatus(rc)
}

// GetWaveArchitecture returns the architecture the wave is executing on.
func GetWaveArchitecture(w WaveID) (ArchitectureID, error) {
	var arch C.amd_dbgapi_architecture_id_t
	rc := C.amd_dbgapi_wave_get_info(
		C.amd_dbgapi_wave_id_t{handle: C.uint64_t(w.Handle)},
		C.AMD_DBGAPI_WAVE_INFO_ARCHITECTURE, C.size_t(unsafe.Sizeof(arch)), unsafe.Pointer(&arch))
	return ArchitectureID{uint64(arch.handle)}, checkStatus(rc)
}

// GetWaveProcess returns the owning process of a wave.
func GetWaveProcess(w WaveID) (ProcessID, error) {
	var p C.amd_dbgapi_process_id_t
	rc := C.amd_dbgapi_wave_get_info(
		C.amd_dbgapi_wave_id_t{handle: C.uint64_t(w.Handle)},
		C.AMD_DBGAPI_WAVE_INFO_PROCESS, C.size_t(unsafe.Sizeof(p)), unsafe.Pointer(&p))
	return ProcessID{uint64(p.handle)}, checkStatus(rc)
}

// GetWaveDispatchKernelEntry returns the dispatch's kernel entry address, or
// IsNotAvailable(err) if the wave's ttmp registers were not yet initialized.
func GetWaveDispatchKernelEntry(w WaveID) (uint64, error) {
	var dispatch C.amd_dbgapi_dispatch_id_t
	rc := C.amd_dbgapi_wave_get_info(
		C.amd_dbgapi_wave_id_t{handle: C.uint64_t(w.Handle)},
		C.AMD_DBGAPI_WAVE_INFO_DISPATCH, C.size_t(unsafe.Sizeof(dispatch)), unsafe.Pointer(&dispatch))
	if err := checkStatus(rc); err != nil {
		return 0, err
	}
	var entry C.uint64_t
	rc = C.amd_dbgapi_dispatch_get_info(dispatch,
		C.AMD_DBGAPI_DISPATCH_INFO_KERNEL_CODE_ENTRY_ADDRESS, C.size_t(unsafe.Sizeof(entry)), unsafe.Pointer(&entry))
	return uint64(entry), checkStatus(rc)
}

// WaveStop requests a wave transition to STOP. INVALID_WAVE_ID is tolerated
// by the caller (spec.md §4.4).
func WaveStop(w WaveID) error {
	return checkStatus(C.amd_dbgapi_wave_stop(C.amd_dbgapi_wave_id_t{handle: C.uint64_t(w.Handle)}))
}

// WaveResume resumes a wave with the given resume mode and exception mask.
func WaveResume(w WaveID, mode ResumeMode, exceptions Exception) error {
	return checkStatus(C.amd_dbgapi_wave_resume(
		C.amd_dbgapi_wave_id_t{handle: C.uint64_t(w.Handle)},
		C.amd_dbgapi_resume_mode_t(mode), C.amd_dbgapi_exceptions_t(exceptions)))
}

// CodeObjectList enumerates every code object currently known to the
// process.
func CodeObjectList(p ProcessID) ([]CodeObjectID, error) {
	var ids *C.amd_dbgapi_code_object_id_t
	var count C.size_t
	rc := C.amd_dbgapi_process_code_object_list(
		C.amd_dbgapi_process_id_t{handle: C.uint64_t(p.Handle)}, &count, &ids, nil)
	if err := checkStatus(rc); err != nil {
		return nil, err
	}
	defer C.free(unsafe.Pointer(ids))
	out := make([]CodeObjectID, 0, int(count))
	for _, id := range unsafe.Slice(ids, int(count)) {
		out = append(out, CodeObjectID{uint64(id.handle)})
	}
	return out, nil
}

// CodeObjectLoadAddress returns the code object's GPU base load address.
func CodeObjectLoadAddress(c CodeObjectID) (uint64, error) {
	var addr C.uint64_t
	rc := C.amd_dbgapi_code_object_get_info(
		C.amd_dbgapi_code_object_id_t{handle: C.uint64_t(c.Handle)},
		C.AMD_DBGAPI_CODE_OBJECT_INFO_LOAD_ADDRESS, C.size_t(unsafe.Sizeof(addr)), unsafe.Pointer(&addr))
	return uint64(addr), checkStatus(rc)
}

// CodeObjectURI returns the code object's source URI.
func CodeObjectURI(c CodeObjectID) (string, error) {
	var cstr *C.char
	rc := C.amd_dbgapi_code_object_get_info(
		C.amd_dbgapi_code_object_id_t{handle: C.uint64_t(c.Handle)},
		C.AMD_DBGAPI_CODE_OBJECT_INFO_URI_NAME, C.size_t(unsafe.Sizeof(cstr)), unsafe.Pointer(&cstr))
	if err := checkStatus(rc); err != nil {
		return "", err
	}
	defer C.free(unsafe.Pointer(cstr))
	return C.GoString(cstr), nil
}

// CodeObjectProcess returns the owning process of a code object.
func CodeObjectProcess(c CodeObjectID) (ProcessID, error) {
	var p C.amd_dbgapi_process_id_t
	rc := C.amd_dbgapi_code_object_get_info(
		C.amd_dbgapi_code_object_id_t{handle: C.uint64_t(c.Handle)},
		C.AMD_DBGAPI_CODE_OBJECT_INFO_PROCESS, C.size_t(unsafe.Sizeof(p)), unsafe.Pointer(&p))
	return ProcessID{uint64(p.handle)}, checkStatus(rc)
}

// ArchitectureLargestInstructionSize returns the largest possible
// instruction size (bytes) on the given architecture.
func ArchitectureLargestInstructionSize(a ArchitectureID) (int, error) {
	var size C.uint64_t
	rc := C.amd_dbgapi_architecture_get_info(
		C.amd_dbgapi_architecture_id_t{handle: C.uint64_t(a.Handle)},
		C.AMD_DBGAPI_ARCHITECTURE_INFO_LARGEST_INSTRUCTION_SIZE, C.size_t(unsafe.Sizeof(size)), unsafe.Pointer(&size))
	return int(size), checkStatus(rc)
}

// DwarfAddressSpaceToAddressSpace maps a DWARF address-space number (e.g. 3
// for DW_ASPACE_AMDGPU_local) to the architecture's native address space id.
func DwarfAddressSpaceToAddressSpace(a ArchitectureID, dwarfSpace int) (AddressSpaceID, error) {
	var id C.amd_dbgapi_address_space_id_t
	rc := C.amd_dbgapi_dwarf_address_space_to_address_space(
		C.amd_dbgapi_architecture_id_t{handle: C.uint64_t(a.Handle)}, C.uint64_t(dwarfSpace), &id)
	return AddressSpaceID{uint64(id.handle)}, checkStatus(rc)
}

// Register class/name/type/size queries and ReadRegister live in
// registers.go, alongside RegisterClassList/WaveRegisterList.

// ReadMemory reads up to len(buf) bytes from the given process/address space
// starting at addr, returning the number of bytes actually read. Used for
// both global memory (wave == none) and local memory (per-wave).
func ReadMemory(p ProcessID, w WaveID, space AddressSpaceID, addr uint64, buf []byte) (int, error) {
	size := C.size_t(len(buf))
	rc := C.amd_dbgapi_read_memory(
		C.amd_dbgapi_process_id_t{handle: C.uint64_t(p.Handle)},
		C.amd_dbgapi_wave_id_t{handle: C.uint64_t(w.Handle)},
		0, C.amd_dbgapi_address_space_id_t{handle: C.uint64_t(space.Handle)},
		C.uint64_t(addr), &size, unsafe.Pointer(&buf[0]))
	return int(size), checkStatus(rc)
}

// ReadGlobalMemory is ReadMemory against the process-wide global address
// space, independent of any particular wave (used by disassembly).
func ReadGlobalMemory(p ProcessID, addr uint64, buf []byte) (int, error) {
	size := C.size_t(len(buf))
	rc := C.amd_dbgapi_read_memory(
		C.amd_dbgapi_process_id_t{handle: C.uint64_t(p.Handle)},
		C.amd_dbgapi_wave_id_t{handle: 0}, 0,
		C.amd_dbgapi_address_space_id_t{handle: C.AMD_DBGAPI_ADDRESS_SPACE_GLOBAL},
		C.uint64_t(addr), &size, unsafe.Pointer(&buf[0]))
	return int(size), checkStatus(rc)
}

// ReportBreakpointHit synthesizes a breakpoint-hit report, used to signal
// the runtime's r_brk address has been "hit" after a code-object list
// refresh (spec.md §4.6).
func ReportBreakpointHit(bp BreakpointID) error {
	var action C.amd_dbgapi_breakpoint_action_t
	return checkStatus(C.amd_dbgapi_report_breakpoint_hit(
		C.amd_dbgapi_breakpoint_id_t{handle: C.uint64_t(bp.Handle)}, 0, &action))
}

//export go_client_process_get_info
func go_client_process_get_info(client C.amd_dbgapi_client_process_id_t, query C.amd_dbgapi_client_process_info_t, size C.size_t, value unsafe.Pointer) C.amd_dbgapi_status_t {
	if value == nil {
		return C.AMD_DBGAPI_STATUS_ERROR_INVALID_ARGUMENT
	}
	if query == C.AMD_DBGAPI_CLIENT_PROCESS_INFO_OS_PID && activeCallbacks.GetOSPID != nil {
		*(*C.uint32_t)(value) = C.uint32_t(activeCallbacks.GetOSPID())
		return C.AMD_DBGAPI_STATUS_SUCCESS
	}
	return C.AMD_DBGAPI_STATUS_ERROR_NOT_AVAILABLE
}

//export go_insert_breakpoint
func go_insert_breakpoint(client C.amd_dbgapi_client_process_id_t, addr C.amd_dbgapi_global_address_t, bp C.amd_dbgapi_breakpoint_id_t) C.amd_dbgapi_status_t {
	if activeCallbacks.InsertBreakpoint == nil {
		return C.AMD_DBGAPI_STATUS_ERROR
	}
	if err := activeCallbacks.InsertBreakpoint(uint64(addr), BreakpointID{uint64(bp.handle)}); err != nil {
		return C.AMD_DBGAPI_STATUS_ERROR
	}
	return C.AMD_DBGAPI_STATUS_SUCCESS
}

//export go_remove_breakpoint
func go_remove_breakpoint(client C.amd_dbgapi_client_process_id_t, bp C.amd_dbgapi_breakpoint_id_t) C.amd_dbgapi_status_t {
	if activeCallbacks.RemoveBreakpoint == nil {
		return C.AMD_DBGAPI_STATUS_ERROR
	}
	if err := activeCallbacks.RemoveBreakpoint(BreakpointID{uint64(bp.handle)}); err != nil {
		return C.AMD_DBGAPI_STATUS_ERROR
	}
	return C.AMD_DBGAPI_STATUS_SUCCESS
}

//export go_xfer_global_memory
func go_xfer_global_memory(client C.amd_dbgapi_client_process_id_t, addr C.amd_dbgapi_global_address_t, size *C.amd_dbgapi_size_t, readBuf unsafe.Pointer, writeBuf unsafe.Pointer) C.amd_dbgapi_status_t {
	if activeCallbacks.XferGlobalMemory == nil {
		return C.AMD_DBGAPI_STATUS_ERROR
	}
	n := int(*size)
	write := writeBuf != nil
	var buf []byte
	if write {
		buf = unsafe.Slice((*byte)(writeBuf), n)
	} else {
		buf = unsafe.Slice((*byte)(readBuf), n)
	}
	nbytes, err := activeCallbacks.XferGlobalMemory(uint64(addr), buf, write)
	if err != nil {
		return C.AMD_DBGAPI_STATUS_ERROR_MEMORY_ACCESS
	}
	*size = C.amd_dbgapi_size_t(nbytes)
	return C.AMD_DBGAPI_STATUS_SUCCESS
}

//export go_log_message
func go_log_message(level C.amd_dbgapi_log_level_t, msg *C.char) {
	if activeCallbacks.LogMessage != nil {
		activeCallbacks.LogMessage(int(level), C.GoString(msg))
	}
}
