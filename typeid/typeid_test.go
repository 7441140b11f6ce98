package typeid

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/emberlang/semacore/astkind"
)

func primNode(k astkind.Kind) *astkind.Node {
	return &astkind.Node{Kind: k}
}

func ptrNode(elem *astkind.Node) *astkind.Node {
	n := &astkind.Node{Kind: astkind.Ptr}
	fd, _ := astkind.FieldByName(astkind.Ptr, "Elem")
	n.SetField(fd, astkind.Value{Node: elem})
	return n
}

func TestIdempotence(t *testing.T) {
	in := NewInterner()
	n := ptrNode(primNode(astkind.I32))
	a := in.Intern(n)
	b := in.Intern(n)
	if a != b {
		t.Fatal("repeated interning of the same node returned different IDs")
	}
}

func TestSharingImpliesEquality(t *testing.T) {
	in := NewInterner()
	a := ptrNode(primNode(astkind.I32))
	b := ptrNode(primNode(astkind.I32))

	idA := in.Intern(a)
	idB := in.Intern(b)
	if idA != idB {
		t.Fatalf("structurally identical types did not share an ID")
	}

	// Re-encoding from scratch (bypassing the node-level cache) must
	// still produce the byte-identical string.
	freshA := in.encode(a, nil)
	freshB := in.encode(b, nil)
	if string(freshA) != string(freshB) {
		t.Fatal("fresh encodings diverged for structurally identical types")
	}
}

func TestDistinctTypesGetDistinctIDs(t *testing.T) {
	in := NewInterner()
	a := ptrNode(primNode(astkind.I32))
	b := ptrNode(primNode(astkind.I64))
	if in.Intern(a) == in.Intern(b) {
		t.Fatal("Ptr<i32> and Ptr<i64> must not share an ID")
	}
}

func TestCycleTermination(t *testing.T) {
	in := NewInterner()

	// struct Node { next *Node }
	self := &astkind.Node{Kind: astkind.StructType}
	name := "Node"
	fdTP, _ := astkind.FieldByName(astkind.StructType, "TemplateParams")
	fdName, _ := astkind.FieldByName(astkind.StructType, "Name")
	fdFields, _ := astkind.FieldByName(astkind.StructType, "Fields")
	self.SetField(fdTP, astkind.Value{})
	self.SetField(fdName, astkind.Value{Sym: &name})

	next := &astkind.Node{Kind: astkind.Ptr}
	fdElem, _ := astkind.FieldByName(astkind.Ptr, "Elem")
	next.SetField(fdElem, astkind.Value{Node: self})

	field := &astkind.Node{Kind: astkind.Field}
	fieldName := "next"
	ffName, _ := astkind.FieldByName(astkind.Field, "Name")
	ffType, _ := astkind.FieldByName(astkind.Field, "Type")
	field.SetField(ffName, astkind.Value{Sym: &fieldName})
	field.SetField(ffType, astkind.Value{Node: next})

	self.SetField(fdFields, astkind.Value{Nodes: []*astkind.Node{field}})

	id := in.Intern(self)
	if id == nil {
		t.Fatal("expected a non-nil id")
	}
	n := countByte(id.b, '&')
	if n != 1 {
		t.Fatalf("expected exactly one back-reference, got %d in %q", n, id.b)
	}
}

// TestStructEncodingStableAcrossIndependentBuilds interns two struct
// nodes built independently but field-for-field identical, and diffs
// their encoded bytes with cmp.Diff so a future encoding regression
// prints where the two encodings diverge instead of just "not equal".
func TestStructEncodingStableAcrossIndependentBuilds(t *testing.T) {
	in := NewInterner()

	build := func() *astkind.Node {
		s := &astkind.Node{Kind: astkind.StructType}
		fdTP, _ := astkind.FieldByName(astkind.StructType, "TemplateParams")
		fdName, _ := astkind.FieldByName(astkind.StructType, "Name")
		fdFields, _ := astkind.FieldByName(astkind.StructType, "Fields")
		name := "Pair"
		s.SetField(fdTP, astkind.Value{})
		s.SetField(fdName, astkind.Value{Sym: &name})

		ffName, _ := astkind.FieldByName(astkind.Field, "Name")
		ffType, _ := astkind.FieldByName(astkind.Field, "Type")
		mk := func(fname string, k astkind.Kind) *astkind.Node {
			f := &astkind.Node{Kind: astkind.Field}
			n := fname
			f.SetField(ffName, astkind.Value{Sym: &n})
			f.SetField(ffType, astkind.Value{Node: primNode(k)})
			return f
		}
		s.SetField(fdFields, astkind.Value{Nodes: []*astkind.Node{
			mk("a", astkind.I32),
			mk("b", astkind.I64),
		}})
		return s
	}

	idA := in.Intern(build())
	idB := in.Intern(build())
	if diff := cmp.Diff(string(idA.Bytes()), string(idB.Bytes())); diff != "" {
		t.Fatalf("structurally identical structs encoded differently (-a +b):\n%s", diff)
	}
}

func countByte(b []byte, c byte) int {
	n := 0
	for _, x := range b {
		if x == c {
			n++
		}
	}
	return n
}
