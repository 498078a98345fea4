package native

import (
	"unsafe"
)

// CString returns a NUL-terminated byte buffer for s. The returned pointer
// stays valid as long as the caller keeps a reference to it.
func CString(s string) *byte {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return &buf[0]
}

// CStrings converts a string slice into an array of NUL-terminated buffers
// suitable for fmi2String[] parameters.
func CStrings(ss []string) []*byte {
	out := make([]*byte, len(ss))
	for i, s := range ss {
		out[i] = CString(s)
	}
	return out
}

// GoStringAt copies the NUL-terminated string at a raw native address.
// Callback trampolines receive C pointers as uintptr values.
func GoStringAt(addr uintptr) string {
	if addr == 0 {
		return ""
	}
	return GoString((*byte)(unsafe.Pointer(addr))) //nolint:govet // native pointer, not a Go pointer
}

// GoString copies the NUL-terminated string at p into Go memory. Native
// string results are only valid until the next call into the unit, so the
// copy is mandatory.
func GoString(p *byte) string {
	if p == nil {
		return ""
	}
	var n int
	for ptr := unsafe.Pointer(p); *(*byte)(ptr) != 0; ptr = unsafe.Add(ptr, 1) {
		n++
	}
	return string(unsafe.Slice(p, n))
}
