package transform

import (
	"testing"

	"github.com/emberlang/semacore/astkind"
)

func TestRewriteNoopReturnsSamePointer(t *testing.T) {
	elem := &astkind.Node{Kind: astkind.I32}
	ptr := &astkind.Node{Kind: astkind.Ptr}
	fd, _ := astkind.FieldByName(astkind.Ptr, "Elem")
	ptr.SetField(fd, astkind.Value{Node: elem})

	out := Rewrite(ptr, func(n *astkind.Node) *astkind.Node { return n })
	if out != ptr {
		t.Fatal("a visitor that never replaces anything must return the same root pointer")
	}
}

func TestRewriteReplacesPlaceholderAndClonesAncestors(t *testing.T) {
	ph := &astkind.Node{Kind: astkind.Placeholder}
	concrete := &astkind.Node{Kind: astkind.I32}

	ptr := &astkind.Node{Kind: astkind.Ptr, Flags: astkind.CHECKED}
	fdElem, _ := astkind.FieldByName(astkind.Ptr, "Elem")
	ptr.SetField(fdElem, astkind.Value{Node: ph})
	fakeTypeID := []byte("stale")
	ptr.TypeID = &fakeTypeID

	outer := &astkind.Node{Kind: astkind.Array, Flags: astkind.CHECKED}
	fdArrElem, _ := astkind.FieldByName(astkind.Array, "Elem")
	outer.SetField(fdArrElem, astkind.Value{Node: ptr})

	out := Rewrite(outer, func(n *astkind.Node) *astkind.Node {
		if n == ph {
			return concrete
		}
		return n
	})

	if out == outer {
		t.Fatal("expected the root to be cloned since a descendant changed")
	}
	if out.Flags.Has(astkind.CHECKED) {
		t.Fatal("cloned root must have CHECKED scrubbed")
	}
	gotPtr := out.Field(fdArrElem).Node
	if gotPtr == ptr {
		t.Fatal("expected the intermediate Ptr node to be cloned too")
	}
	if gotPtr.TypeID != nil {
		t.Fatal("cloned intermediate node must have its cached typeid scrubbed")
	}
	gotElem := gotPtr.Field(fdElem).Node
	if gotElem != concrete {
		t.Fatalf("expected the placeholder to be replaced by the concrete argument")
	}
	// Original tree must be untouched.
	if ptr.Field(fdElem).Node != ph {
		t.Fatal("original Ptr node was mutated in place")
	}
}

func TestRewriteNodeArray(t *testing.T) {
	a := &astkind.Node{Kind: astkind.I32}
	ph := &astkind.Node{Kind: astkind.Placeholder}
	b := &astkind.Node{Kind: astkind.I64}

	block := &astkind.Node{Kind: astkind.Block}
	fdStmts, _ := astkind.FieldByName(astkind.Block, "Stmts")
	block.SetField(fdStmts, astkind.Value{Nodes: []*astkind.Node{a, ph, b}})

	out := Rewrite(block, func(n *astkind.Node) *astkind.Node {
		if n == ph {
			return &astkind.Node{Kind: astkind.I8}
		}
		return n
	})

	stmts := out.Field(fdStmts).Nodes
	if len(stmts) != 3 || stmts[0] != a || stmts[2] != b {
		t.Fatalf("unchanged elements must be preserved by identity, got %#v", stmts)
	}
	if stmts[1].Kind != astkind.I8 {
		t.Fatalf("replaced element wrong kind: %v", stmts[1].Kind)
	}
}
