package hashtable

import "hash/maphash"

// ByteSet is the specialized byte-slice-owning wrapper spec.md §4.C
// calls out ("a byte-slice set that owns copies of the bytes,
// null-terminated for ergonomic interop with C-shaped consumers").
// Entries are stored null-terminated; callers see the un-terminated
// view back from Assign/Lookup.
type ByteSet struct {
	t    *Table[[]byte]
	seed maphash.Seed
}

// NewByteSet returns an empty byte-slice set.
func NewByteSet(lenhint int) *ByteSet {
	bs := &ByteSet{seed: maphash.MakeSeed()}
	bs.t = New(bs.hash, bs.eq, lenhint)
	return bs
}

func (bs *ByteSet) hash(seed uint64, e []byte) uint64 {
	var h maphash.Hash
	h.SetSeed(bs.seed)
	// Mix in the table's own rotating seed too, so growth's "freshly
	// drawn seed" actually changes the bucket distribution even though
	// maphash.Hash needs a maphash.Seed, not a uint64.
	var mix [8]byte
	for i := range mix {
		mix[i] = byte(seed >> (8 * i))
	}
	h.Write(mix[:])
	h.Write(trimNull(e))
	return h.Sum64()
}

func (bs *ByteSet) eq(a, b []byte) bool {
	return string(trimNull(a)) == string(trimNull(b))
}

func trimNull(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == 0 {
		return b[:n-1]
	}
	return b
}

// Assign installs a null-terminated copy of key if not already
// present. Returns the stored (un-terminated) bytes and whether it was
// newly added.
func (bs *ByteSet) Assign(key []byte) (stored []byte, added bool) {
	owned := make([]byte, len(key)+1)
	copy(owned, key)
	entry, added := bs.t.Assign(owned)
	return trimNull(*entry), added
}

// Lookup returns the owned copy of key, if present.
func (bs *ByteSet) Lookup(key []byte) ([]byte, bool) {
	probe := make([]byte, len(key)+1)
	copy(probe, key)
	entry, ok := bs.t.Lookup(probe)
	if !ok {
		return nil, false
	}
	return trimNull(*entry), true
}

// Delete removes key, reporting whether it was present.
func (bs *ByteSet) Delete(key []byte) bool {
	probe := make([]byte, len(key)+1)
	copy(probe, key)
	return bs.t.Delete(probe)
}

// Len reports the number of distinct byte strings stored.
func (bs *ByteSet) Len() int { return bs.t.Len() }
