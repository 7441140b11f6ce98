//go:build unix

package bump

import "golang.org/x/sys/unix"

// unixPager maps anonymous, read-write pages via mmap(2).
//
// golang.org/x/sys/unix's portable Mmap wrapper takes a file
// descriptor and offset, not a target address. Honoring a
// contiguous-with-the-prior-slab hint would require dropping to a
// per-architecture raw mmap(2) syscall with MAP_FIXED_NOREPLACE, which
// is not uniformly available across the "unix" build-tag's platform
// set. Map therefore always lets the kernel choose the address (the
// spec's "falling back to any" branch); the hint parameter is accepted
// for interface symmetry with spec.md §4.H but unused here, see
// DESIGN.md.
type unixPager struct{}

// NewOSPager returns the platform bump.Pager: mmap-backed on Unix-like
// systems (build tag "unix", covering linux/darwin/*bsd/solaris/aix as
// golang.org/x/sys/unix itself does).
func NewOSPager() Pager { return unixPager{} }

func (unixPager) Map(size, hint uintptr) (uintptr, error) {
	_ = hint
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return 0, err
	}
	return uintptr(uintptrOf(b)), nil
}

func (unixPager) Unmap(addr, size uintptr) error {
	return unix.Munmap(sliceAt(addr, size))
}
