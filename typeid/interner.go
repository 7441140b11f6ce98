package typeid

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/emberlang/semacore/astkind"
)

// Interner is the global typeid table shared across packages (spec.md
// §5: "the typeid interner is the one component that must be safe for
// concurrent readers with exclusive writers, because it is shared
// across packages"). Lookup takes the read lock; a miss upgrades to
// the write lock and re-checks, mirroring go/ssa's canonizer pattern
// (util.go) but split into RWMutex + singleflight so that N goroutines
// racing to intern the same freshly-encoded bytes perform one
// write-locked insertion, not N. Each goroutine still encodes the node
// itself before that lookup.
type Interner struct {
	mu      sync.RWMutex
	byBytes map[string]*ID
	group   singleflight.Group
}

// NewInterner returns a ready-to-use, empty interner.
func NewInterner() *Interner {
	return &Interner{byBytes: make(map[string]*ID)}
}

// Intern computes (or reuses a cached) typeid for n, installs it on
// n.TypeID, and returns it. n must be a type node (n.Kind.IsType()).
func (in *Interner) Intern(n *astkind.Node) *ID {
	return in.intern(n, nil)
}

// intern is Intern's recursive entry point; ancestors is the chain of
// enclosing type nodes currently being encoded, used for cycle
// back-references (see encode.go).
func (in *Interner) intern(n *astkind.Node, ancestors []*astkind.Node) *ID {
	if n.TypeID != nil {
		return in.internBytesLocked(*n.TypeID)
	}

	bytes := in.encode(n, ancestors)
	id := in.internBytesLocked(bytes)

	// Cache on the node. This write takes no interner lock; it relies
	// on the caller owning n exclusively, per spec.md §4.B ("the cached typeid pointer is written back to the
	// type's header under the type checker's exclusive ownership").
	b := id.b
	n.TypeID = &b
	return id
}

// bytesKey returns b as a string map key; the conversion copies b.
func bytesKey(b []byte) string { return string(b) }

func (in *Interner) internBytesLocked(b []byte) *ID {
	key := bytesKey(b)

	in.mu.RLock()
	if id, ok := in.byBytes[key]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	v, _, _ := in.group.Do(key, func() (interface{}, error) {
		in.mu.Lock()
		defer in.mu.Unlock()
		if id, ok := in.byBytes[key]; ok {
			return id, nil
		}
		cp := append([]byte(nil), b...)
		id := &ID{b: cp}
		in.byBytes[key] = id
		return id, nil
	})
	in.group.Forget(key)
	return v.(*ID)
}

// InternBytes is the pure counterpart of Intern: it interns an
// already-encoded byte string without touching any node.
func (in *Interner) InternBytes(b []byte) *ID {
	return in.internBytesLocked(b)
}
