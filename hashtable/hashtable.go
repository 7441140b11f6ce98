// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hashtable is the open-addressed, linear-probing core (component
// C) that backs tmplcache's instance cache; typeid's Interner keeps its
// own Go map and does not use this package. It is
// a direct port of original_source/src/hashtable.c's algorithm: 2-bit
// per-slot status, load-factor-0.5 growth with a freshly drawn seed, and
// tombstone-preserving deletion, expressed with a Go type parameter in
// place of the C original's (entsize, hashfn, eqfn) triple, since Go has
// no portable "entry of N bytes" notion to parameterize over.
//
// The status bitmap cannot literally share the C original's single
// allocation (Go gives no control over slice placement), so Table keeps
// it as a second slice on the same struct; the 2-bit-per-slot packing
// and the operations' behavior are otherwise unchanged.
package hashtable

const (
	slotFree uint8 = iota
	slotUsed
	slotDeleted
)

// HashFunc hashes an entry given the table's current seed.
type HashFunc[E any] func(seed uint64, entry E) uint64

// EqFunc reports whether two entries are equivalent keys.
type EqFunc[E any] func(a, b E) bool

// Table is a fixed-entry-type open-addressed hash table with linear
// probing.
type Table[E any] struct {
	seed    uint64
	entries []E
	status  bitmap2
	length  int
	hash    HashFunc[E]
	eq      EqFunc[E]
	newSeed func() uint64
}

// New returns an empty table sized for at least lenhint entries before
// its first growth.
func New[E any](hash HashFunc[E], eq EqFunc[E], lenhint int) *Table[E] {
	cap0 := 8
	for cap0 < lenhint*2 {
		cap0 <<= 1
	}
	return &Table[E]{
		seed:    defaultSeed(),
		entries: make([]E, cap0),
		status:  newBitmap2(cap0),
		hash:    hash,
		eq:      eq,
		newSeed: defaultSeed,
	}
}

// Len reports the number of entries currently stored.
func (t *Table[E]) Len() int { return t.length }

func (t *Table[E]) cap() int { return len(t.entries) }

func (t *Table[E]) bucket(h uint64) int {
	return int(h & uint64(t.cap()-1))
}

// Lookup returns a pointer to the stored entry equal to key, or nil.
// Probing stops at the first FREE slot (miss) or the first USED slot
// that compares equal (hit); DELETED slots are skipped, never
// terminate the probe.
func (t *Table[E]) Lookup(key E) (*E, bool) {
	h := t.hash(t.seed, key)
	i := t.bucket(h)
	for n := 0; n < t.cap(); n++ {
		switch t.status.get(i) {
		case slotFree:
			return nil, false
		case slotUsed:
			if t.eq(t.entries[i], key) {
				return &t.entries[i], true
			}
		case slotDeleted:
			// skip
		}
		i = (i + 1) & (t.cap() - 1)
	}
	return nil, false
}

// Assign finds or creates the slot for key. If an equal entry already
// exists, it is returned with added=false. Otherwise key is copied into
// a fresh slot (preferring the first DELETED slot seen along the probe
// chain, per spec.md §4.C) and added=true.
func (t *Table[E]) Assign(key E) (entry *E, added bool) {
	if t.length >= t.cap()-t.cap()/2 {
		t.grow()
	}

	h := t.hash(t.seed, key)
	i := t.bucket(h)
	firstDeleted := -1
	for n := 0; n < t.cap(); n++ {
		switch t.status.get(i) {
		case slotUsed:
			if t.eq(t.entries[i], key) {
				return &t.entries[i], false
			}
		case slotDeleted:
			if firstDeleted < 0 {
				firstDeleted = i
			}
		case slotFree:
			slot := i
			if firstDeleted >= 0 {
				slot = firstDeleted
			}
			t.entries[slot] = key
			t.status.set(slot, slotUsed)
			t.length++
			return &t.entries[slot], true
		}
		i = (i + 1) & (t.cap() - 1)
	}
	// Unreachable under the load-factor-0.5 growth invariant: a probe
	// that visits every slot without finding FREE or a match means the
	// table is full, which grow() above prevents.
	panic("hashtable: table full, growth invariant violated")
}

// Delete removes the entry equal to key, marking its slot DELETED (not
// FREE, so later probe chains through it are not truncated, per
// spec.md §4.C). As an amortization special case, when the table drops
// to exactly one remaining entry, the whole status bitmap is cleared
// instead of marking a single tombstone, and that entry is re-placed
// from its home bucket.
func (t *Table[E]) Delete(key E) bool {
	h := t.hash(t.seed, key)
	i := t.bucket(h)
	for n := 0; n < t.cap(); n++ {
		switch t.status.get(i) {
		case slotFree:
			return false
		case slotUsed:
			if t.eq(t.entries[i], key) {
				var zero E
				t.entries[i] = zero
				t.length--
				if t.length == 1 {
					survivor := t.findSoleSurvivor(i)
					t.status.clear()
					if survivor >= 0 {
						// The slots the survivor's probe chain ran
						// through are FREE now, so place it afresh.
						e := t.entries[survivor]
						t.entries[survivor] = zero
						t.length = 0
						t.insertDuringGrow(e)
					}
				} else {
					t.status.set(i, slotDeleted)
				}
				return true
			}
		case slotDeleted:
			// skip
		}
		i = (i + 1) & (t.cap() - 1)
	}
	return false
}

// findSoleSurvivor scans for the one remaining USED slot other than
// the one just vacated at deletedAt, so it can be re-placed after the
// len==1 bitmap clear.
func (t *Table[E]) findSoleSurvivor(deletedAt int) int {
	for i := 0; i < t.cap(); i++ {
		if i != deletedAt && t.status.get(i) == slotUsed {
			return i
		}
	}
	return -1
}

func (t *Table[E]) grow() {
	newCap := t.cap() * 2
	old := t.entries
	oldStatus := t.status

	t.entries = make([]E, newCap)
	t.status = newBitmap2(newCap)
	t.seed = t.newSeed()
	t.length = 0

	for i, st := range oldStatusSlice(oldStatus, len(old)) {
		if st != slotUsed {
			continue
		}
		t.insertDuringGrow(old[i])
	}
}

func (t *Table[E]) insertDuringGrow(e E) {
	h := t.hash(t.seed, e)
	i := t.bucket(h)
	for {
		if t.status.get(i) == slotFree {
			t.entries[i] = e
			t.status.set(i, slotUsed)
			t.length++
			return
		}
		i = (i + 1) & (t.cap() - 1)
	}
}

func oldStatusSlice(b bitmap2, n int) []uint8 {
	out := make([]uint8, n)
	for i := range out {
		out[i] = b.get(i)
	}
	return out
}
