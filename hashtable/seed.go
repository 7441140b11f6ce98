package hashtable

import "math/rand/v2"

// defaultSeed draws a fresh random seed, used both for a new table and
// for each growth step (spec.md §4.C: "all USED entries are rehashed
// with a freshly drawn seed").
func defaultSeed() uint64 { return rand.Uint64() }
