//go:build unix

package bump

import "unsafe"

// uintptrOf and sliceAt bridge between golang.org/x/sys/unix's
// byte-slice-oriented Mmap/Munmap and the Pager interface's raw
// address arithmetic, which the CAS bump pointer in bump.go needs.
func uintptrOf(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

func sliceAt(addr, size uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))
}
