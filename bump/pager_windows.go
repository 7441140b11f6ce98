//go:build windows

package bump

import "golang.org/x/sys/windows"

// windowsPager maps anonymous, read-write pages via VirtualAlloc.
// Unlike mmap(2), VirtualAlloc accepts an address hint directly
// (lpAddress): when hint is nonzero the OS honors it if the range is
// free, and falls back to choosing an address itself otherwise, which
// matches spec.md §4.H's "prefer contiguous, else any" rule without a
// second reserve/commit dance.
type windowsPager struct{}

// NewOSPager returns the platform bump.Pager for Windows.
func NewOSPager() Pager { return windowsPager{} }

func (windowsPager) Map(size, hint uintptr) (uintptr, error) {
	addr, err := windows.VirtualAlloc(hint, size, windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil && hint != 0 {
		addr, err = windows.VirtualAlloc(0, size, windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	}
	if err != nil {
		return 0, err
	}
	return addr, nil
}

func (windowsPager) Unmap(addr, size uintptr) error {
	_ = size
	return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
}
