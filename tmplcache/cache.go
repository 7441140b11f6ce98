// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tmplcache is the template-instance cache (component D):
// (template pointer, encoded argument tuple) -> instance pointer.
// Grounded on go/ssa/instantiate.go's generic.instances map and
// go/ssa/util.go's canonizer: mutex-guarded, insert-before-recursing
// into the instantiated body so self-referential templates terminate.
package tmplcache

import (
	"encoding/binary"
	"hash/maphash"
	"sync"
	"unsafe"

	"github.com/emberlang/semacore/astkind"
	"github.com/emberlang/semacore/hashtable"
	"github.com/emberlang/semacore/typeid"
)

type entry struct {
	key      string
	instance *astkind.Node
}

// Cache maps a template definition plus its concrete argument tuple to
// the single interned instance node for that combination.
type Cache struct {
	mu    sync.Mutex
	table *hashtable.Table[entry]
	seed  maphash.Seed
}

// New returns an empty template-instance cache.
func New() *Cache {
	c := &Cache{seed: maphash.MakeSeed()}
	c.table = hashtable.New(c.hash, c.eq, 16)
	return c
}

func (c *Cache) hash(seed uint64, e entry) uint64 {
	var h maphash.Hash
	h.SetSeed(c.seed)
	var mix [8]byte
	binary.LittleEndian.PutUint64(mix[:], seed)
	h.Write(mix[:])
	h.WriteString(e.key)
	return h.Sum64()
}

func (c *Cache) eq(a, b entry) bool { return a.key == b.key }

// Key builds the cache key for a template definition and its argument
// tuple, per spec.md §4.D: the template pointer's machine-word bytes
// followed by the concatenation of each argument's typeid bytes.
func Key(tmpl *astkind.Node, args []*typeid.ID) string {
	var buf []byte
	var ptrBytes [unsafe.Sizeof(uintptr(0))]byte
	binary.LittleEndian.PutUint64(ptrBytes[:], uint64(uintptr(unsafe.Pointer(tmpl))))
	buf = append(buf, ptrBytes[:]...)
	for _, a := range args {
		buf = append(buf, a.Bytes()...)
	}
	return string(buf)
}

// Lookup returns the cached instance for key, if any.
func (c *Cache) Lookup(key string) (*astkind.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.table.Lookup(entry{key: key})
	if !ok {
		return nil, false
	}
	return e.instance, true
}

// GetOrCreate returns the cached instance for key if present.
// Otherwise it calls newInstance, which must only allocate the
// instance's shallow clone (TEMPLATE cleared, TEMPLATEI set, argument
// list substituted; see package transform) and must not itself recurse
// into type-checking the instance's body, installs the result in the
// cache while still holding the lock, and returns it with created=true.
//
// The caller is responsible for type-checking the new instance's body
// *after* GetOrCreate returns (outside the lock): that is what makes a
// self-referential template terminate. When the body's own checking
// reaches the same instantiation site again, it calls GetOrCreate with
// the same key, finds the now-cached (if still only partially checked)
// instance, and returns immediately with created=false instead of
// recursing, exactly go/ssa/instantiate.go's "insert before recursing
// into its body" ordering.
func (c *Cache) GetOrCreate(key string, newInstance func() *astkind.Node) (instance *astkind.Node, created bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.table.Lookup(entry{key: key}); ok {
		return e.instance, false
	}

	inst := newInstance()
	c.table.Assign(entry{key: key, instance: inst})
	return inst, true
}

// Len reports the number of distinct instances cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table.Len()
}
