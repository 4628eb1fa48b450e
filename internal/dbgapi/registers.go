package dbgapi

/*
#include <amd-dbgapi/amd-dbgapi.h>
#include <stdlib.h>
*/
import "C"

import "unsafe"

// RegisterClassList returns every register class defined on an
// architecture (spec.md §4.3 "register classes").
func RegisterClassList(a ArchitectureID) ([]RegisterClass, error) {
	var ids *C.amd_dbgapi_register_class_id_t
	var count C.size_t
	rc := C.amd_dbgapi_architecture_register_class_list(
		C.amd_dbgapi_architecture_id_t{handle: C.uint64_t(a.Handle)}, &count, &ids)
	if err := checkStatus(rc); err != nil {
		return nil, err
	}
	defer C.free(unsafe.Pointer(ids))
	out := make([]RegisterClass, 0, int(count))
	for _, id := range unsafe.Slice(ids, int(count)) {
		out = append(out, RegisterClass{uint64(id.handle)})
	}
	return out, nil
}

// RegisterClassName returns the class's display name (e.g. "general",
// "vector", "scalar").
func RegisterClassName(c RegisterClass) (string, error) {
	var cstr *C.char
	rc := C.amd_dbgapi_architecture_register_class_get_info(
		C.amd_dbgapi_register_class_id_t{handle: C.uint64_t(c.Handle)},
		C.AMD_DBGAPI_REGISTER_CLASS_INFO_NAME, C.size_t(unsafe.Sizeof(cstr)), unsafe.Pointer(&cstr))
	if err := checkStatus(rc); err != nil {
		return "", err
	}
	defer C.free(unsafe.Pointer(cstr))
	return C.GoString(cstr), nil
}

// WaveRegisterList enumerates every register id that exists for a wave.
func WaveRegisterList(w WaveID) ([]RegisterID, error) {
	var ids *C.amd_dbgapi_register_id_t
	var count C.size_t
	rc := C.amd_dbgapi_wave_register_list(
		C.amd_dbgapi_wave_id_t{handle: C.uint64_t(w.Handle)}, &count, &ids)
	if err := checkStatus(rc); err != nil {
		return nil, err
	}
	defer C.free(unsafe.Pointer(ids))
	out := make([]RegisterID, 0, int(count))
	for _, id := range unsafe.Slice(ids, int(count)) {
		out = append(out, RegisterID{uint64(id.handle)})
	}
	return out, nil
}

// RegisterIsInClass reports whether register belongs to class.
func RegisterIsInClass(class RegisterClass, reg RegisterID) (bool, error) {
	var state C.amd_dbgapi_register_class_state_t
	rc := C.amd_dbgapi_register_is_in_register_class(
		C.amd_dbgapi_register_class_id_t{handle: C.uint64_t(class.Handle)},
		C.amd_dbgapi_register_id_t{handle: C.uint64_t(reg.Handle)}, &state)
	if err := checkStatus(rc); err != nil {
		return false, err
	}
	return state == C.AMD_DBGAPI_REGISTER_CLASS_STATE_MEMBER, nil
}

// RegisterName returns a register's display name, e.g. "v0" or "s[0:1]".
func RegisterName(r RegisterID) (string, error) {
	var cstr *C.char
	rc := C.amd_dbgapi_register_get_info(
		C.amd_dbgapi_register_id_t{handle: C.uint64_t(r.Handle)},
		C.AMD_DBGAPI_REGISTER_INFO_NAME, C.size_t(unsafe.Sizeof(cstr)), unsafe.Pointer(&cstr))
	if err := checkStatus(rc); err != nil {
		return "", err
	}
	defer C.free(unsafe.Pointer(cstr))
	return C.GoString(cstr), nil
}

// RegisterType returns a register's type string, e.g. "uint32" or
// "uint32[64]" for a 64-lane vector register (spec.md §4.3 element recursion).
func RegisterType(r RegisterID) (string, error) {
	var cstr *C.char
	rc := C.amd_dbgapi_register_get_info(
		C.amd_dbgapi_register_id_t{handle: C.uint64_t(r.Handle)},
		C.AMD_DBGAPI_REGISTER_INFO_TYPE, C.size_t(unsafe.Sizeof(cstr)), unsafe.Pointer(&cstr))
	if err := checkStatus(rc); err != nil {
		return "", err
	}
	defer C.free(unsafe.Pointer(cstr))
	return C.GoString(cstr), nil
}

// RegisterSize returns a register's size in bytes.
func RegisterSize(r RegisterID) (int, error) {
	var size C.uint64_t
	rc := C.amd_dbgapi_register_get_info(
		C.amd_dbgapi_register_id_t{handle: C.uint64_t(r.Handle)},
		C.AMD_DBGAPI_REGISTER_INFO_SIZE, C.size_t(unsafe.Sizeof(size)), unsafe.Pointer(&size))
	return int(size), checkStatus(rc)
}

// ReadRegister reads a register's raw bytes for the given wave.
func ReadRegister(w WaveID, r RegisterID, size int) ([]byte, error) {
	buf := make([]byte, size)
	rc := C.amd_dbgapi_read_register(
		C.amd_dbgapi_wave_id_t{handle: C.uint64_t(w.Handle)},
		C.amd_dbgapi_register_id_t{handle: C.uint64_t(r.Handle)},
		0, C.uint64_t(size), unsafe.Pointer(&buf[0]))
	return buf, checkStatus(rc)
}
