package check

import (
	"testing"

	"github.com/emberlang/semacore/astkind"
	"github.com/emberlang/semacore/diag"
)

func litU64(kind astkind.Kind, v uint64) *astkind.Node {
	n := &astkind.Node{Kind: astkind.Lit}
	n.SetField(fdLitPrimKind, astkind.Value{U64: uint64(kind)})
	n.SetField(fdLitUVal, astkind.Value{U64: v})
	return n
}

func voidLit() *astkind.Node {
	n := &astkind.Node{Kind: astkind.Lit}
	n.SetField(fdLitPrimKind, astkind.Value{U64: uint64(astkind.Void)})
	return n
}

func binop(op Op, left, right *astkind.Node) *astkind.Node {
	n := &astkind.Node{Kind: astkind.Binop}
	n.SetField(fdBinopOp, astkind.Value{U64: uint64(op)})
	n.SetField(fdBinopLeft, astkind.Value{Node: left})
	n.SetField(fdBinopRight, astkind.Value{Node: right})
	return n
}

func TestCheckIdentResolvesLexicalBeforePackage(t *testing.T) {
	c := newTestChecker()
	lexDecl := &astkind.Node{Kind: astkind.Let, Type: &astkind.Node{Kind: astkind.I32}}
	c.currentScope().declare("x", lexDecl)
	c.pkgDecls["x"] = &astkind.Node{Kind: astkind.Let, Type: &astkind.Node{Kind: astkind.F64}}

	n := idNode("x")
	np := n
	c.checkIdent(&np)

	if n.Field(fdIdRef).Node != lexDecl {
		t.Fatal("checkIdent resolved through package scope despite a lexical match")
	}
	if n.Type == nil || n.Type.Kind != astkind.I32 {
		t.Fatalf("resolved type = %v, want I32", n.Type)
	}
	if lexDecl.Uses != 1 {
		t.Fatalf("Uses = %d, want 1", lexDecl.Uses)
	}
}

func TestCheckIdentUnknownReportsDiagnostic(t *testing.T) {
	c := newTestChecker()
	n := idNode("nosuch")
	np := n
	c.checkIdent(&np)

	if n.Type == nil || n.Type.Kind != astkind.Unknown {
		t.Fatalf("unresolved identifier type = %v, want Unknown", n.Type)
	}
	if !c.Bag.ReportedAny() {
		t.Fatal("expected a diagnostic for an unresolved identifier")
	}
}

func TestCheckIdentSuggestsNearMiss(t *testing.T) {
	c := newTestChecker()
	decl := &astkind.Node{Kind: astkind.Let, Type: &astkind.Node{Kind: astkind.I32}}
	c.currentScope().declare("count", decl)

	n := idNode("counnt")
	np := n
	c.checkIdent(&np)

	diags := c.Bag.Diagnostics()
	if len(diags) < 2 {
		t.Fatalf("expected an unknown-identifier diagnostic plus a did-you-mean hint, got %d", len(diags))
	}
}

// TestCheckIdentRewritesNarrowedOptionalToOderef exercises spec.md
// §4.F.2's end-to-end scenario #2: reading an optional identifier whose
// narrowed availability is YES is rewritten to a synthetic ODEREF of
// the unwrapped element type.
func TestCheckIdentRewritesNarrowedOptionalToOderef(t *testing.T) {
	c := newTestChecker()
	storage := checkedOptionalLet("a", astkind.I32)
	c.currentScope().declare("a", storage)
	c.narrowDefine(storage, Yes)

	n := idNode("a")
	np := n
	c.checkIdent(&np)

	if np.Kind != astkind.PrefixOp {
		t.Fatalf("narrowed-Yes optional read = %v, want PrefixOp(ODEREF)", np.Kind)
	}
	if Op(np.Field(fdPrefixOp).U64) != OpOderef {
		t.Fatalf("rewritten op = %v, want OpOderef", Op(np.Field(fdPrefixOp).U64))
	}
	if np.Type == nil || np.Type.Kind != astkind.I32 {
		t.Fatalf("rewritten type = %v, want the unwrapped I32 element", np.Type)
	}
	if np.Field(fdPrefixX).Node != n {
		t.Fatal("ODEREF should wrap the original identifier")
	}
	if c.Bag.ReportedAny() {
		t.Fatalf("unexpected diagnostics for a narrowed-Yes read: %v", c.Bag.Diagnostics())
	}
}

func TestCheckIdentDiagnosesNarrowedNoOptionalAsEmpty(t *testing.T) {
	c := newTestChecker()
	storage := checkedOptionalLet("a", astkind.I32)
	c.currentScope().declare("a", storage)
	c.narrowDefine(storage, No)

	n := idNode("a")
	np := n
	c.checkIdent(&np)

	if np != n {
		t.Fatal("a narrowed-No read should not be rewritten to ODEREF")
	}
	if !c.Bag.ReportedAny() {
		t.Fatal("expected a diagnostic for a provably-empty optional read")
	}
}

func TestCheckIdentDiagnosesUnnarrowedOptionalAsMaybeEmpty(t *testing.T) {
	c := newTestChecker()
	storage := checkedOptionalLet("a", astkind.I32)
	c.currentScope().declare("a", storage)

	n := idNode("a")
	np := n
	c.checkIdent(&np)

	if np != n {
		t.Fatal("an unnarrowed (Maybe) read should not be rewritten to ODEREF")
	}
	if !c.Bag.ReportedAny() {
		t.Fatal("expected a diagnostic for a possibly-empty optional read")
	}
}

func memberNode(x *astkind.Node, name string) *astkind.Node {
	n := &astkind.Node{Kind: astkind.Member}
	n.SetField(fdMemberX, astkind.Value{Node: x})
	sym := name
	n.SetField(fdMemberName, astkind.Value{Sym: &sym})
	return n
}

func structWithField(name string, typ *astkind.Node) (*astkind.Node, *astkind.Node) {
	field := &astkind.Node{Kind: astkind.Field}
	sym := name
	field.SetField(fdFieldName, astkind.Value{Sym: &sym})
	field.SetField(fdFieldType, astkind.Value{Node: typ})
	st := &astkind.Node{Kind: astkind.StructType}
	st.SetField(fdStructFields, astkind.Value{Nodes: []*astkind.Node{field}})
	return st, field
}

// TestCheckMemberUnwrapsNarrowedOptionalReceiver exercises the member-
// access half of spec.md §4.F.2's narrowing rule: a field read through
// a receiver whose narrowed availability is YES unwraps the receiver
// via a synthetic ODEREF and resolves the member against its element
// type, instead of bailing out to Unknown.
func TestCheckMemberUnwrapsNarrowedOptionalReceiver(t *testing.T) {
	c := newTestChecker()
	st, field := structWithField("foo", &astkind.Node{Kind: astkind.I32})
	storage := &astkind.Node{Kind: astkind.Let, Flags: astkind.CHECKED, Type: optionalOf(st)}
	x := wrapCheckedId(storage)
	c.narrowDefine(storage, Yes)

	n := memberNode(x, "foo")
	c.checkMember(n)

	if n.Type != field.Field(fdFieldType).Node {
		t.Fatalf("member type = %v, want the field's I32 type", n.Type)
	}
	if c.memberRef[n] != field {
		t.Fatal("checkMember should record the resolved field in memberRef")
	}
	wrapped := n.Field(fdMemberX).Node
	if wrapped.Kind != astkind.PrefixOp || Op(wrapped.Field(fdPrefixOp).U64) != OpOderef {
		t.Fatalf("receiver = %v, want an ODEREF-wrapped PrefixOp", wrapped.Kind)
	}
	if c.Bag.ReportedAny() {
		t.Fatalf("unexpected diagnostics for a narrowed-Yes receiver: %v", c.Bag.Diagnostics())
	}
}

func TestCheckMemberDiagnosesNarrowedNoReceiverAsEmpty(t *testing.T) {
	c := newTestChecker()
	st, _ := structWithField("foo", &astkind.Node{Kind: astkind.I32})
	storage := &astkind.Node{Kind: astkind.Let, Flags: astkind.CHECKED, Type: optionalOf(st)}
	x := wrapCheckedId(storage)
	c.narrowDefine(storage, No)

	n := memberNode(x, "foo")
	c.checkMember(n)

	if n.Type == nil || n.Type.Kind != astkind.Unknown {
		t.Fatalf("member type through a provably-empty receiver = %v, want Unknown", n.Type)
	}
	diags := c.Bag.Diagnostics()
	if len(diags) != 1 || diags[0].Kind != diag.KindOptionalIsEmpty {
		t.Fatalf("diagnostics = %v, want exactly one KindOptionalIsEmpty", diags)
	}
}

func TestCheckMemberDiagnosesUnnarrowedReceiverAsMaybeEmpty(t *testing.T) {
	c := newTestChecker()
	st, _ := structWithField("foo", &astkind.Node{Kind: astkind.I32})
	storage := &astkind.Node{Kind: astkind.Let, Flags: astkind.CHECKED, Type: optionalOf(st)}
	x := wrapCheckedId(storage)

	n := memberNode(x, "foo")
	c.checkMember(n)

	diags := c.Bag.Diagnostics()
	if len(diags) != 1 || diags[0].Kind != diag.KindOptionalMayBeEmpty {
		t.Fatalf("diagnostics = %v, want exactly one KindOptionalMayBeEmpty", diags)
	}
}

func TestCheckLitDefaultsByMagnitude(t *testing.T) {
	c := newTestChecker()
	small := litU64(astkind.I32, 5)
	c.checkLit(small)
	if small.Type == nil || !isIntegerKind(small.Type.Kind) {
		t.Fatalf("literal type = %v, want an integer kind", small.Type)
	}
}

func TestCheckLitPromotesUnderContext(t *testing.T) {
	c := newTestChecker()
	n := litU64(astkind.I32, 5)
	c.pushTypeCtx(&astkind.Node{Kind: astkind.I64})
	c.checkLit(n)
	c.popTypeCtx()

	if n.Type == nil || n.Type.Kind != astkind.I64 {
		t.Fatalf("literal promoted under I64 context = %v, want I64", n.Type)
	}
}

// TestCheckBinopRewritesOptionalVoidCompare exercises the "x != void"
// idiom: checkBinop must rewrite the whole node into a synthetic
// OCHECK PrefixOp rather than leaving it as an ordinary comparison.
func TestCheckBinopRewritesOptionalVoidCompare(t *testing.T) {
	c := newTestChecker()
	storage := checkedOptionalLet("a", astkind.I32)
	left := wrapCheckedId(storage)
	n := binop(OpNeq, left, voidLit())

	np := n
	c.checkBinop(&np)

	if np.Kind != astkind.PrefixOp {
		t.Fatalf("rewritten node kind = %v, want PrefixOp", np.Kind)
	}
	if Op(np.Field(fdPrefixOp).U64) != OpOcheck {
		t.Fatalf("rewritten op = %v, want OpOcheck for \"!= void\"", Op(np.Field(fdPrefixOp).U64))
	}
	if np.Field(fdPrefixX).Node != left {
		t.Fatal("OCHECK should wrap the original optional operand")
	}
}

// TestCheckBinopRewritesEqualityAsNegatedOcheck checks the "x == void"
// form wraps an extra "!" around the OCHECK, the photographic negative
// of "!= void".
func TestCheckBinopRewritesEqualityAsNegatedOcheck(t *testing.T) {
	c := newTestChecker()
	storage := checkedOptionalLet("a", astkind.I32)
	left := wrapCheckedId(storage)
	n := binop(OpEq, left, voidLit())

	np := n
	c.checkBinop(&np)

	if np.Kind != astkind.PrefixOp || Op(np.Field(fdPrefixOp).U64) != OpNot {
		t.Fatalf("rewritten node = %v op %v, want a PrefixOp(Not)", np.Kind, np.Field(fdPrefixOp).U64)
	}
	inner := np.Field(fdPrefixX).Node
	if inner.Kind != astkind.PrefixOp || Op(inner.Field(fdPrefixOp).U64) != OpOcheck {
		t.Fatal("\"== void\" should wrap OCHECK inside a \"!\"")
	}
}

func TestCheckBinopArithmeticKeepsLeftType(t *testing.T) {
	c := newTestChecker()
	n := binop(OpAdd, litU64(astkind.I32, 1), litU64(astkind.I32, 2))
	np := n
	c.checkBinop(&np)

	if np.Type == nil || np.Type.Kind != astkind.Int {
		t.Fatalf("arithmetic result type = %v, want Int", np.Type)
	}
}

func TestCheckBinopComparisonYieldsBool(t *testing.T) {
	c := newTestChecker()
	n := binop(OpLt, litU64(astkind.I32, 1), litU64(astkind.I32, 2))
	np := n
	c.checkBinop(&np)

	if np.Type == nil || np.Type.Kind != astkind.Bool {
		t.Fatalf("comparison result type = %v, want Bool", np.Type)
	}
}

// TestCheckIfNoElseYieldsOptional checks that an rvalue "if" with no
// else branch produces Optional[Then.Type] (spec.md §4.F.2).
func TestCheckIfNoElseYieldsOptional(t *testing.T) {
	c := newTestChecker()

	n := &astkind.Node{Kind: astkind.If, Flags: astkind.RVALUE}
	cond := litU64(astkind.Bool, 1)
	then := litU64(astkind.I32, 7)
	n.SetField(fdIfCond, astkind.Value{Node: cond})
	n.SetField(fdIfThen, astkind.Value{Node: then})

	c.checkIf(n)

	if n.Type == nil || n.Type.Kind != astkind.Optional {
		t.Fatalf("if-without-else result type = %v, want Optional", n.Type)
	}
	elem := n.Type.Field(fdOptElem).Node
	if elem == nil || elem.Kind != astkind.Int {
		t.Fatalf("optional element = %v, want Int (the literal's default promotion)", elem)
	}
}

// TestCheckIfBranchesIdenticalYieldsCommonType checks that matching
// then/else branch types collapse to that one type rather than an
// Optional.
func TestCheckIfBranchesIdenticalYieldsCommonType(t *testing.T) {
	c := newTestChecker()

	n := &astkind.Node{Kind: astkind.If, Flags: astkind.RVALUE}
	cond := litU64(astkind.Bool, 1)
	then := litU64(astkind.I32, 7)
	els := litU64(astkind.I32, 9)
	n.SetField(fdIfCond, astkind.Value{Node: cond})
	n.SetField(fdIfThen, astkind.Value{Node: then})
	n.SetField(fdIfElse, astkind.Value{Node: els})

	c.checkIf(n)

	if n.Type == nil || n.Type.Kind != astkind.Int {
		t.Fatalf("if-with-matching-branches result type = %v, want Int", n.Type)
	}
}

func TestCheckIfNonRvalueYieldsVoid(t *testing.T) {
	c := newTestChecker()

	n := &astkind.Node{Kind: astkind.If}
	cond := litU64(astkind.Bool, 1)
	then := litU64(astkind.I32, 7)
	n.SetField(fdIfCond, astkind.Value{Node: cond})
	n.SetField(fdIfThen, astkind.Value{Node: then})

	c.checkIf(n)

	if n.Type == nil || n.Type.Kind != astkind.Void {
		t.Fatalf("non-rvalue if result type = %v, want Void", n.Type)
	}
}
