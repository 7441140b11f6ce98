package check

import "github.com/emberlang/semacore/astkind"

// Availability is the per-storage optional narrowing state from
// spec.md §4.F.2, a direct port of original_source/src/typecheck.c's
// narrowinfo_t.available (NARROW_AVAIL_MAYBE/YES/NO).
type Availability uint8

const (
	Maybe Availability = iota // may have a value (default, unnarrowed)
	Yes                       // definitely has a value
	No                        // definitely has no value
)

// narrowScope is one frame of the narrow-info stack, parallel to the
// lexical scope stack (spec.md §4.F, "a parallel stack of narrow-info
// scopes").
type narrowScope struct {
	avail  map[*astkind.Node]Availability
	parent *narrowScope
}

func newNarrowScope(parent *narrowScope) *narrowScope {
	return &narrowScope{avail: make(map[*astkind.Node]Availability), parent: parent}
}

func (s *narrowScope) lookup(storage *astkind.Node) Availability {
	for cur := s; cur != nil; cur = cur.parent {
		if a, ok := cur.avail[storage]; ok {
			return a
		}
	}
	return Maybe
}

func (c *Checker) pushNarrowScope() {
	var parent *narrowScope
	if n := len(c.narrowScopes); n > 0 {
		parent = c.narrowScopes[n-1]
	}
	c.narrowScopes = append(c.narrowScopes, newNarrowScope(parent))
}

func (c *Checker) popNarrowScope() {
	c.narrowScopes = c.narrowScopes[:len(c.narrowScopes)-1]
}

func (c *Checker) currentNarrowScope() *narrowScope {
	return c.narrowScopes[len(c.narrowScopes)-1]
}

// storageOf resolves an expression to the node that *holds* its value:
// an id resolves through its Ref, a member resolves to its resolved
// field declaration (see Checker.memberRef), everything else resolves
// to itself. Ported from original_source/src/typecheck.c's
// storage_of_node.
func (c *Checker) storageOf(n *astkind.Node) *astkind.Node {
	for {
		switch n.Kind {
		case astkind.Field, astkind.Param, astkind.Let, astkind.Var:
			return n
		case astkind.Id:
			fdRef, _ := astkind.FieldByName(astkind.Id, "Ref")
			ref := n.Field(fdRef).Node
			if ref == nil {
				return n
			}
			n = ref
		case astkind.Member:
			if field, ok := c.memberRef[n]; ok {
				return field
			}
			return n
		default:
			return n
		}
	}
}

// narrowLookup reports the current availability of the storage behind
// n, resolving through storageOf first (typecheck.c's
// narrowinfo_lookup).
func (c *Checker) narrowLookup(n *astkind.Node) Availability {
	return c.currentNarrowScope().lookup(c.storageOf(n))
}

// narrowDefine installs avail for the storage behind n in the current
// narrow scope (typecheck.c's narrowinfo_define).
func (c *Checker) narrowDefine(n *astkind.Node, avail Availability) {
	c.currentNarrowScope().avail[c.storageOf(n)] = avail
}
