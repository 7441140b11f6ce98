// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bump is the concurrency-safe bump allocator (component H /
// spec.md §4.H) backing the typeid interner's byte arena and template
// instance storage. It is a direct port of
// original_source/src/memalloc_bump2.c: a lock-free CAS bump pointer
// for the fast path, a mutex-guarded slow path that maps a fresh slab
// (preferring an address contiguous with the previous one), and a
// tail-only Free that rolls the bump pointer back with a single CAS.
package bump

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// defaultSlabSize is the page-aligned chunk mapped each time the
// allocator runs out of room. Real slab sizing would consult the
// platform's page size; 64 KiB is a conservative multiple of every
// common page size (4 KiB / 16 KiB).
const defaultSlabSize = 64 * 1024

type slabRegion struct {
	base uintptr
	size uintptr
}

// Allocator hands out aligned byte regions from a chain of mapped
// slabs. Allocation is wait-free relative to other allocations (a CAS
// loop advancing a monotonic pointer); only slab exhaustion takes the
// mutex.
type Allocator struct {
	cur atomic.Uintptr // next free byte in the current slab
	end atomic.Uintptr // one past the current slab's last byte

	growMu   sync.Mutex
	slabs    []slabRegion
	pager    Pager
	slabSize uintptr
}

// Pager maps and unmaps page-aligned virtual memory. It is implemented
// per-platform (pager_unix.go via golang.org/x/sys/unix, pager_windows.go
// via golang.org/x/sys/windows) so the allocator's CAS/mutex logic stays
// platform-independent.
type Pager interface {
	// Map requests size bytes, preferring (but not requiring) an
	// address contiguous with hint (0 means no preference).
	Map(size, hint uintptr) (addr uintptr, err error)
	Unmap(addr, size uintptr) error
}

// New returns an allocator with no slabs mapped yet; the first
// Alloc call triggers the initial slab map.
func New(p Pager) *Allocator {
	return &Allocator{pager: p, slabSize: defaultSlabSize}
}

func alignUp(p, align uintptr) uintptr {
	if align == 0 {
		return p
	}
	return (p + align - 1) &^ (align - 1)
}

// Alloc returns size bytes aligned to align (a power of two), drawn
// from the current slab's bump pointer or, on exhaustion, a freshly
// mapped one.
func (a *Allocator) Alloc(size, align uintptr) (uintptr, error) {
	for {
		end := a.end.Load()
		cur := a.cur.Load()
		start := alignUp(cur, align)
		next := start + size
		if end == 0 || next > end {
			if err := a.grow(size, align); err != nil {
				return 0, err
			}
			continue
		}
		if a.cur.CompareAndSwap(cur, next) {
			return start, nil
		}
		// Lost the race to another allocator; retry with fresh values.
	}
}

// grow is the slow path: it takes growMu, re-validates that growth is
// still needed (another goroutine may have already grown while this
// one was blocked on the lock), maps a new slab (preferring an
// address contiguous with the prior slab), links it, and publishes the
// new cur/end via atomic stores (the Go memory model gives every
// atomic store release semantics relative to a later atomic load of
// the same variable, matching spec.md §5's "growth publishes via
// release store").
func (a *Allocator) grow(minSize, align uintptr) error {
	a.growMu.Lock()
	defer a.growMu.Unlock()

	// Re-check: someone else may have grown already.
	if end := a.end.Load(); end != 0 {
		cur := a.cur.Load()
		if alignUp(cur, align)+minSize <= end {
			return nil
		}
	}

	size := a.slabSize
	for size < minSize+align {
		size *= 2
	}

	var hint uintptr
	if n := len(a.slabs); n > 0 {
		last := a.slabs[n-1]
		hint = last.base + last.size
	}

	addr, err := a.pager.Map(size, hint)
	if err != nil {
		return fmt.Errorf("bump: map slab of %d bytes: %w", size, err)
	}

	a.slabs = append(a.slabs, slabRegion{base: addr, size: size})
	a.cur.Store(addr)
	a.end.Store(addr + size)
	return nil
}

// Free returns the memory at ptr (of size bytes) to the allocator if
// and only if it is the most recent allocation, i.e. the bump pointer
// is currently exactly ptr+size. Otherwise the memory is leaked until
// Dispose, per spec.md §4.H.
func (a *Allocator) Free(ptr, size uintptr) bool {
	want := ptr + size
	return a.cur.CompareAndSwap(want, ptr)
}

// Dispose unmaps every slab in reverse link order. The allocator must
// not be used afterward.
func (a *Allocator) Dispose() error {
	a.growMu.Lock()
	defer a.growMu.Unlock()

	var firstErr error
	for i := len(a.slabs) - 1; i >= 0; i-- {
		s := a.slabs[i]
		if err := a.pager.Unmap(s.base, s.size); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.slabs = nil
	a.cur.Store(0)
	a.end.Store(0)
	return firstErr
}

// NumSlabs reports the number of slabs currently mapped, for tests and
// diagnostics.
func (a *Allocator) NumSlabs() int {
	a.growMu.Lock()
	defer a.growMu.Unlock()
	return len(a.slabs)
}
