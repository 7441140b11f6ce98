package astkind

import "fmt"

func tag(s string) [4]byte {
	if len(s) != 4 {
		panic("astkind: tag must be exactly 4 bytes: " + s)
	}
	return [4]byte{s[0], s[1], s[2], s[3]}
}

func f(name string, idx int, t FieldType, identity bool) FieldDesc {
	return FieldDesc{Name: name, Index: idx, Type: t, Identity: identity}
}

// descs is the reflection table proper: one entry per Kind, built once
// at init time. Two derived maps (tagToKind, and the uniqueness check
// below) enforce the kind<->tag bijection the spec requires: every tag
// is unique, and decoding a tag always yields back the same kind.
var descs map[Kind]KindDesc
var tagToKind map[[4]byte]Kind

func register(d KindDesc) {
	if _, dup := descs[d.Kind]; dup {
		panic(fmt.Sprintf("astkind: duplicate registration for kind %d", d.Kind))
	}
	if other, dup := tagToKind[d.Tag]; dup {
		panic(fmt.Sprintf("astkind: tag %q reused by kind %d and %d", d.Tag, other, d.Kind))
	}
	descs[d.Kind] = d
	tagToKind[d.Tag] = d.Kind
}

func init() {
	descs = make(map[Kind]KindDesc, numKinds)
	tagToKind = make(map[[4]byte]Kind, numKinds)

	// Primitive types: header only, no reflected fields.
	prim := func(k Kind, name, t string) {
		register(KindDesc{Kind: k, Name: name, Tag: tag(t)})
	}
	prim(Void, "void", "voiT")
	prim(Bool, "bool", "boLT")
	prim(I8, "i8", "i8_T")
	prim(I16, "i16", "i16T")
	prim(I32, "i32", "i32T")
	prim(I64, "i64", "i64T")
	prim(Int, "int", "intT")
	prim(U8, "u8", "u8_T")
	prim(U16, "u16", "u16T")
	prim(U32, "u32", "u32T")
	prim(U64, "u64", "u64T")
	prim(Uint, "uint", "uitT")
	prim(F32, "f32", "f32T")
	prim(F64, "f64", "f64T")
	prim(Unknown, "unknown", "unkT")

	// Composite types.
	register(KindDesc{Kind: Ptr, Name: "ptr", Tag: tag("ptrT"), Fields: []FieldDesc{
		f("Elem", 0, FNode, true),
	}})
	register(KindDesc{Kind: Ref, Name: "ref", Tag: tag("refT"), Fields: []FieldDesc{
		f("Elem", 0, FNode, true),
	}})
	register(KindDesc{Kind: MutRef, Name: "mutref", Tag: tag("mrfT"), Fields: []FieldDesc{
		f("Elem", 0, FNode, true),
	}})
	register(KindDesc{Kind: Optional, Name: "optional", Tag: tag("optT"), Fields: []FieldDesc{
		f("Elem", 0, FNode, true),
	}})
	register(KindDesc{Kind: Array, Name: "array", Tag: tag("arrT"), Fields: []FieldDesc{
		f("Elem", 0, FNode, true),
		f("Len", 1, FU64, true),
	}})
	register(KindDesc{Kind: Slice, Name: "slice", Tag: tag("slcT"), Fields: []FieldDesc{
		f("Elem", 0, FNode, true),
	}})
	register(KindDesc{Kind: MutSlice, Name: "mutslice", Tag: tag("mslT"), Fields: []FieldDesc{
		f("Elem", 0, FNode, true),
	}})
	register(KindDesc{Kind: FuncType, Name: "functype", Tag: tag("fnT_"), Fields: []FieldDesc{
		f("TemplateParams", 0, FNodeArray, true),
		f("Params", 1, FNodeArray, true),
		f("Result", 2, FNode, true),
	}})
	// StructType shares its tag's primary byte ('d') and trailer ("01")
	// with Fun below; the second byte ('s' vs 'f') disambiguates, per
	// spec.md §4.A / §6.
	register(KindDesc{Kind: StructType, Name: "struct", Tag: tag("ds01"), Fields: []FieldDesc{
		f("TemplateParams", 0, FNodeArray, true),
		f("Name", 1, FSym, true),
		f("Fields", 2, FNodeArray, true),
		f("ParentNS", 3, FNodeOpt, false),
	}})
	register(KindDesc{Kind: Alias, Name: "alias", Tag: tag("alsT"), Fields: []FieldDesc{
		f("TemplateParams", 0, FNodeArray, true),
		f("Name", 1, FSym, true),
		f("Target", 2, FNode, true),
	}})
	register(KindDesc{Kind: Namespace, Name: "namespace", Tag: tag("nsT_"), Fields: []FieldDesc{
		f("Name", 0, FSym, false),
		f("Parent", 1, FNodeOpt, false),
		f("Exports", 2, FNodeArray, false),
	}})
	register(KindDesc{Kind: Template, Name: "template", Tag: tag("tplT"), Fields: []FieldDesc{
		f("TemplateParams", 0, FNodeArray, true),
		f("Name", 1, FSym, true),
		f("Body", 2, FNodeOpt, false),
	}})
	register(KindDesc{Kind: TemplateInstance, Name: "templateinstance", Tag: tag("tpli"), Fields: []FieldDesc{
		f("TemplateParams", 0, FNodeArray, true),
		f("Origin", 1, FNode, true),
	}})
	register(KindDesc{Kind: Placeholder, Name: "placeholder", Tag: tag("phT_"), Fields: []FieldDesc{
		f("Name", 0, FSym, true),
		f("Index", 1, FU64, true),
	}})
	register(KindDesc{Kind: Unresolved, Name: "unresolved", Tag: tag("unrT"), Fields: []FieldDesc{
		f("Name", 0, FSymOpt, false),
	}})

	// Expressions.
	register(KindDesc{Kind: Id, Name: "id", Tag: tag("idE_"), Fields: []FieldDesc{
		f("Name", 0, FSym, false),
		f("Ref", 1, FNodeOpt, false),
	}})
	register(KindDesc{Kind: NamespaceExpr, Name: "namespaceexpr", Tag: tag("nsE_"), Fields: []FieldDesc{
		f("Segments", 0, FNodeArray, false),
		f("Ref", 1, FNodeOpt, false),
	}})
	register(KindDesc{Kind: Lit, Name: "lit", Tag: tag("litE"), Fields: []FieldDesc{
		f("PrimKind", 0, FU8, false),
		f("UVal", 1, FU64, false),
		f("FVal", 2, FF64, false),
	}})
	register(KindDesc{Kind: ArrayLit, Name: "arraylit", Tag: tag("alE_"), Fields: []FieldDesc{
		f("Elems", 0, FNodeArray, false),
	}})
	register(KindDesc{Kind: StringLit, Name: "stringlit", Tag: tag("slE_"), Fields: []FieldDesc{
		f("Value", 0, FStr, false),
	}})
	register(KindDesc{Kind: Binop, Name: "binop", Tag: tag("binE"), Fields: []FieldDesc{
		f("Op", 0, FU8, false),
		f("Left", 1, FNode, false),
		f("Right", 2, FNode, false),
	}})
	register(KindDesc{Kind: PrefixOp, Name: "prefixop", Tag: tag("preE"), Fields: []FieldDesc{
		f("Op", 0, FU8, false),
		f("X", 1, FNode, false),
	}})
	register(KindDesc{Kind: PostfixOp, Name: "postfixop", Tag: tag("pstE"), Fields: []FieldDesc{
		f("Op", 0, FU8, false),
		f("X", 1, FNode, false),
	}})
	register(KindDesc{Kind: Deref, Name: "deref", Tag: tag("derE"), Fields: []FieldDesc{
		f("X", 0, FNode, false),
	}})
	register(KindDesc{Kind: Call, Name: "call", Tag: tag("calE"), Fields: []FieldDesc{
		f("Callee", 0, FNode, false),
		f("Args", 1, FNodeArray, false),
	}})
	register(KindDesc{Kind: Typecons, Name: "typecons", Tag: tag("tcnE"), Fields: []FieldDesc{
		f("Target", 0, FNode, false),
		f("Args", 1, FNodeArray, false),
	}})
	register(KindDesc{Kind: Member, Name: "member", Tag: tag("memE"), Fields: []FieldDesc{
		f("X", 0, FNode, false),
		f("Name", 1, FSym, false),
	}})
	register(KindDesc{Kind: Subscript, Name: "subscript", Tag: tag("subE"), Fields: []FieldDesc{
		f("X", 0, FNode, false),
		f("Index", 1, FNode, false),
	}})
	register(KindDesc{Kind: If, Name: "if", Tag: tag("ifE_"), Fields: []FieldDesc{
		f("Cond", 0, FNode, false),
		f("Then", 1, FNode, false),
		f("Else", 2, FNodeOpt, false),
	}})
	register(KindDesc{Kind: For, Name: "for", Tag: tag("forE"), Fields: []FieldDesc{
		f("Init", 0, FNodeOpt, false),
		f("Cond", 1, FNodeOpt, false),
		f("Post", 2, FNodeOpt, false),
		f("Body", 3, FNode, false),
	}})
	register(KindDesc{Kind: Return, Name: "return", Tag: tag("retE"), Fields: []FieldDesc{
		f("Value", 0, FNodeOpt, false),
	}})
	register(KindDesc{Kind: Block, Name: "block", Tag: tag("blkE"), Fields: []FieldDesc{
		f("Stmts", 0, FNodeArray, false),
	}})
	// Fun shares its tag's primary byte and trailer with StructType
	// above; see the comment there.
	register(KindDesc{Kind: Fun, Name: "fun", Tag: tag("df01"), Fields: []FieldDesc{
		f("Name", 0, FSym, false),
		f("TemplateParams", 1, FNodeArray, false),
		f("Params", 2, FNodeArray, false),
		f("Result", 3, FNodeOpt, false),
		f("Body", 4, FNodeOpt, false),
		f("Receiver", 5, FNodeOpt, false),
	}})
	// A Field node doubles as a struct member declaration (reached from
	// StructType.Fields, a typeid-identity field-array) and as plain
	// checker bookkeeping elsewhere; Name and Type are marked identity
	// so two structurally different struct layouts never collapse onto
	// the same typeid. Offset is derived from layout, not source, and
	// Default does not participate.
	register(KindDesc{Kind: Field, Name: "field", Tag: tag("fldE"), Fields: []FieldDesc{
		f("Name", 0, FSym, true),
		f("Type", 1, FNodeOpt, true),
		f("Default", 2, FNodeOpt, false),
		f("Offset", 3, FU64, false),
	}})
	register(KindDesc{Kind: Param, Name: "param", Tag: tag("parE"), Fields: []FieldDesc{
		f("Name", 0, FSym, false),
		f("Type", 1, FNodeOpt, false),
		f("Default", 2, FNodeOpt, false),
	}})
	register(KindDesc{Kind: Var, Name: "var", Tag: tag("varE"), Fields: []FieldDesc{
		f("Name", 0, FSym, false),
		f("Type", 1, FNodeOpt, false),
		f("Init", 2, FNodeOpt, false),
	}})
	register(KindDesc{Kind: Let, Name: "let", Tag: tag("letE"), Fields: []FieldDesc{
		f("Name", 0, FSym, false),
		f("Type", 1, FNodeOpt, false),
		f("Init", 2, FNodeOpt, false),
	}})

	// Statements.
	register(KindDesc{Kind: Import, Name: "import", Tag: tag("impS"), Fields: []FieldDesc{
		f("Path", 0, FStr, false),
		f("Alias", 1, FSymOpt, false),
	}})
	register(KindDesc{Kind: Typedef, Name: "typedef", Tag: tag("tdfS"), Fields: []FieldDesc{
		f("Name", 0, FSym, false),
		f("Target", 1, FNode, false),
	}})
	register(KindDesc{Kind: Unit, Name: "unit", Tag: tag("unt_"), Fields: []FieldDesc{
		f("Decls", 0, FNodeArray, false),
	}})
	// Reached from Template.TemplateParams, an identity field; the
	// parameter's Name participates so two templates differing only in
	// parameter names (but not arity) remain distinguishable definitions.
	register(KindDesc{Kind: TemplateParam, Name: "templateparam", Tag: tag("tpmS"), Fields: []FieldDesc{
		f("Name", 0, FSym, true),
		f("Default", 1, FNodeOpt, false),
		f("Constraint", 2, FNodeOpt, false),
	}})

	if len(descs) != int(numKinds)-1 {
		panic(fmt.Sprintf("astkind: %d kinds registered, expected %d", len(descs), numKinds-1))
	}
}
