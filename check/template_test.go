package check

import (
	"testing"

	"github.com/emberlang/semacore/astkind"
)

func templateParamNode(name string) *astkind.Node {
	n := &astkind.Node{Kind: astkind.TemplateParam}
	sym := name
	n.SetField(fdTemplateParamName, astkind.Value{Sym: &sym})
	return n
}

func placeholderNode(name string) *astkind.Node {
	n := &astkind.Node{Kind: astkind.Placeholder}
	sym := name
	n.SetField(fdPlaceholderName, astkind.Value{Sym: &sym})
	return n
}

func fieldNode(name string, typ *astkind.Node) *astkind.Node {
	n := &astkind.Node{Kind: astkind.Field}
	sym := name
	n.SetField(fdFieldName, astkind.Value{Sym: &sym})
	n.SetField(fdFieldType, astkind.Value{Node: typ})
	return n
}

// boxTemplate builds a one-parameter generic struct "Box[T]{ v: T }",
// the smallest shape that exercises placeholder substitution through a
// struct's field list.
func boxTemplate() *astkind.Node {
	tpl := &astkind.Node{Kind: astkind.Template}
	tpl.SetField(fdTplParams, astkind.Value{Nodes: []*astkind.Node{templateParamNode("T")}})
	body := &astkind.Node{Kind: astkind.StructType}
	body.SetField(fdStructFields, astkind.Value{Nodes: []*astkind.Node{
		fieldNode("v", placeholderNode("T")),
	}})
	tpl.SetField(fdTplBody, astkind.Value{Node: body})
	return tpl
}

func templateInstanceNode(origin *astkind.Node, args ...*astkind.Node) *astkind.Node {
	n := &astkind.Node{Kind: astkind.TemplateInstance}
	n.SetField(fdTIOrigin, astkind.Value{Node: origin})
	n.SetField(fdTIArgs, astkind.Value{Nodes: args})
	return n
}

func TestInstantiateSubstitutesPlaceholder(t *testing.T) {
	c := newTestChecker()
	origin := boxTemplate()
	arg := &astkind.Node{Kind: astkind.I32, Flags: astkind.CHECKED}

	n := templateInstanceNode(origin, arg)
	c.instantiateIfNeeded(n)

	if n.Kind != astkind.StructType {
		t.Fatalf("instantiated node kind = %v, want StructType (the body's own kind)", n.Kind)
	}
	if !n.Flags.Has(astkind.TEMPLATEI) {
		t.Fatal("instantiated node should carry TEMPLATEI")
	}
	if n.Flags.Has(astkind.TEMPLATE) {
		t.Fatal("instantiated node should not still carry TEMPLATE")
	}

	fields := n.Field(fdStructFields).Nodes
	if len(fields) != 1 {
		t.Fatalf("instantiated struct has %d fields, want 1", len(fields))
	}
	got := fields[0].Field(fdFieldType).Node
	if got != arg {
		t.Fatalf("field type after substitution = %v, want the argument node itself (%v)", got, arg)
	}
}

func TestInstantiateCachesBySameArgumentType(t *testing.T) {
	c := newTestChecker()
	origin := boxTemplate()

	n1 := templateInstanceNode(origin, &astkind.Node{Kind: astkind.I32, Flags: astkind.CHECKED})
	n2 := templateInstanceNode(origin, &astkind.Node{Kind: astkind.I32, Flags: astkind.CHECKED})
	c.instantiateIfNeeded(n1)
	c.instantiateIfNeeded(n2)

	// mutateInto copies the resolved instance's payload into each
	// TemplateInstance node in place, so the two sites should end up
	// holding fields that point at the very same substituted field
	// nodes rather than two independently-built structs.
	f1 := n1.Field(fdStructFields).Nodes
	f2 := n2.Field(fdStructFields).Nodes
	if len(f1) != 1 || len(f2) != 1 {
		t.Fatalf("expected one field on each instantiation, got %d and %d", len(f1), len(f2))
	}
	if f1[0] != f2[0] {
		t.Fatal("two instantiations with equal argument types should share the cached instance")
	}
}

func TestInstantiateDistinctArgumentsDoNotShare(t *testing.T) {
	c := newTestChecker()
	origin := boxTemplate()

	n1 := templateInstanceNode(origin, &astkind.Node{Kind: astkind.I32, Flags: astkind.CHECKED})
	n2 := templateInstanceNode(origin, &astkind.Node{Kind: astkind.F64, Flags: astkind.CHECKED})
	c.instantiateIfNeeded(n1)
	c.instantiateIfNeeded(n2)

	f1 := n1.Field(fdStructFields).Nodes[0].Field(fdFieldType).Node
	f2 := n2.Field(fdStructFields).Nodes[0].Field(fdFieldType).Node
	if f1.Kind == f2.Kind {
		t.Fatalf("expected distinct element kinds, got %v and %v", f1.Kind, f2.Kind)
	}
}

// TestInstantiateStructQueuesPostanalyze checks that a freshly built
// struct instance is queued for ownership propagation exactly like an
// ordinary (non-generic) struct declaration. The queued node is the
// cached instance; mutateInto gives n a copy of its header and payload,
// so the two are matched by the field node they share, not by pointer.
func TestInstantiateStructQueuesPostanalyze(t *testing.T) {
	c := newTestChecker()
	origin := boxTemplate()
	n := templateInstanceNode(origin, &astkind.Node{Kind: astkind.I32, Flags: astkind.CHECKED})
	c.instantiateIfNeeded(n)

	nf := n.Field(fdStructFields).Nodes
	found := false
	for _, q := range c.postanalyzeAll {
		if q.Kind != astkind.StructType {
			continue
		}
		if qf := q.Field(fdStructFields).Nodes; len(qf) == 1 && len(nf) == 1 && qf[0] == nf[0] {
			found = true
		}
	}
	if !found {
		t.Fatal("instantiated struct was not queued for postanalyze")
	}
}

// boundedArrayTemplate builds "Bounded[N]{ a: N }", a
// one-const-parameter template whose argument is a value, not a type;
// the placeholder N is itself field a's type.
func boundedArrayTemplate() *astkind.Node {
	tpl := &astkind.Node{Kind: astkind.Template}
	tpl.SetField(fdTplParams, astkind.Value{Nodes: []*astkind.Node{templateParamNode("N")}})
	body := &astkind.Node{Kind: astkind.StructType}
	body.SetField(fdStructFields, astkind.Value{Nodes: []*astkind.Node{
		fieldNode("a", placeholderNode("N")),
	}})
	tpl.SetField(fdTplBody, astkind.Value{Node: body})
	return tpl
}

func intLit(v uint64) *astkind.Node {
	n := &astkind.Node{Kind: astkind.Lit, Flags: astkind.CHECKED}
	n.SetField(fdLitPrimKind, astkind.Value{U64: uint64(astkind.I32)})
	n.SetField(fdLitUVal, astkind.Value{U64: v})
	return n
}

func TestInstantiateAcceptsIntegerLiteralConstArg(t *testing.T) {
	c := newTestChecker()
	origin := boundedArrayTemplate()
	n := templateInstanceNode(origin, intLit(4))
	c.instantiateIfNeeded(n)

	if c.Bag.ReportedAny() {
		t.Fatalf("unexpected diagnostics for a literal constant argument: %v", c.Bag.Diagnostics())
	}
	if n.Kind != astkind.StructType {
		t.Fatalf("instantiated node kind = %v, want StructType", n.Kind)
	}
}

func TestInstantiateDistinctConstArgsDoNotShare(t *testing.T) {
	c := newTestChecker()
	origin := boundedArrayTemplate()

	n1 := templateInstanceNode(origin, intLit(4))
	n2 := templateInstanceNode(origin, intLit(8))
	c.instantiateIfNeeded(n1)
	c.instantiateIfNeeded(n2)

	f1 := n1.Field(fdStructFields).Nodes[0].Field(fdFieldType).Node
	f2 := n2.Field(fdStructFields).Nodes[0].Field(fdFieldType).Node
	if f1 == f2 {
		t.Fatal("two instantiations with different constant arguments should not share a cached instance")
	}
}

func TestInstantiateRejectsNonLiteralConstArg(t *testing.T) {
	c := newTestChecker()
	origin := boundedArrayTemplate()
	nonLiteral := &astkind.Node{Kind: astkind.Binop, Flags: astkind.CHECKED}

	n := templateInstanceNode(origin, nonLiteral)
	c.instantiateIfNeeded(n)

	if !c.Bag.ReportedAny() {
		t.Fatal("expected KindUnsupportedTemplateArg for a non-literal constant argument")
	}
}

func TestInstantiateNestedInsideAnotherTemplateIsDeferred(t *testing.T) {
	c := newTestChecker()
	c.templateNest = 1
	origin := boxTemplate()
	n := templateInstanceNode(origin, &astkind.Node{Kind: astkind.I32, Flags: astkind.CHECKED})
	c.instantiateIfNeeded(n)

	if n.Kind != astkind.TemplateInstance {
		t.Fatalf("nested instantiation should be left unresolved, got kind %v", n.Kind)
	}
}
