package check

import (
	"github.com/emberlang/semacore/astkind"
	"github.com/emberlang/semacore/diag"
)

var (
	fdIdName, _ = astkind.FieldByName(astkind.Id, "Name")
	fdIdRef, _  = astkind.FieldByName(astkind.Id, "Ref")

	fdLitPrimKind, _ = astkind.FieldByName(astkind.Lit, "PrimKind")
	fdLitUVal, _     = astkind.FieldByName(astkind.Lit, "UVal")
	fdLitFVal, _     = astkind.FieldByName(astkind.Lit, "FVal")

	fdStringLitValue, _ = astkind.FieldByName(astkind.StringLit, "Value")

	fdPostfixOp, _ = astkind.FieldByName(astkind.PostfixOp, "Op")
	fdPostfixX, _  = astkind.FieldByName(astkind.PostfixOp, "X")

	fdDerefX, _ = astkind.FieldByName(astkind.Deref, "X")

	fdCallCallee, _ = astkind.FieldByName(astkind.Call, "Callee")
	fdCallArgs, _   = astkind.FieldByName(astkind.Call, "Args")

	fdMemberX, _    = astkind.FieldByName(astkind.Member, "X")
	fdMemberName, _ = astkind.FieldByName(astkind.Member, "Name")

	fdSubX, _     = astkind.FieldByName(astkind.Subscript, "X")
	fdSubIndex, _ = astkind.FieldByName(astkind.Subscript, "Index")

	fdIfCond, _ = astkind.FieldByName(astkind.If, "Cond")
	fdIfThen, _ = astkind.FieldByName(astkind.If, "Then")
	fdIfElse, _ = astkind.FieldByName(astkind.If, "Else")

	fdBlockStmts, _ = astkind.FieldByName(astkind.Block, "Stmts")

	fdVarName, _ = astkind.FieldByName(astkind.Var, "Name")
	fdVarType, _ = astkind.FieldByName(astkind.Var, "Type")
	fdVarInit, _ = astkind.FieldByName(astkind.Var, "Init")

	fdLetType, _ = astkind.FieldByName(astkind.Let, "Type")

	fdStructFields, _ = astkind.FieldByName(astkind.StructType, "Fields")

	fdFieldName, _ = astkind.FieldByName(astkind.Field, "Name")
	fdFieldType, _ = astkind.FieldByName(astkind.Field, "Type")

	fdArrayElem, _ = astkind.FieldByName(astkind.Array, "Elem")
	fdArrayLen, _  = astkind.FieldByName(astkind.Array, "Len")
	fdSliceElem, _ = astkind.FieldByName(astkind.Slice, "Elem")

	fdFTParams, _ = astkind.FieldByName(astkind.FuncType, "Params")
	fdFTResult, _ = astkind.FieldByName(astkind.FuncType, "Result")

	fdReturnValue, _ = astkind.FieldByName(astkind.Return, "Value")
)

// CheckExpr dispatches on n.Kind (spec.md §4.F.1). A node already
// CHECKED is returned untouched (the CHECKED gate).
func (c *Checker) CheckExpr(n *astkind.Node) {
	if n == nil || n.Flags.Has(astkind.CHECKED) {
		return
	}
	switch n.Kind {
	case astkind.Id:
		np := n
		c.checkIdent(&np)
		if np != n {
			mutateInto(n, np)
		}
	case astkind.Lit:
		c.checkLit(n)
	case astkind.StringLit:
		c.checkStringLit(n)
	case astkind.ArrayLit:
		c.checkArrayLit(n)
	case astkind.Binop:
		np := n
		c.checkBinop(&np)
		if np != n {
			mutateInto(n, np)
		}
	case astkind.PrefixOp:
		c.checkPrefixOp(n)
	case astkind.PostfixOp:
		c.checkPostfixOp(n)
	case astkind.Deref:
		c.checkDeref(n)
	case astkind.Call:
		c.checkCall(n)
	case astkind.Typecons:
		c.checkTypeconsExpr(n)
	case astkind.Member:
		c.checkMember(n)
	case astkind.Subscript:
		c.checkSubscript(n)
	case astkind.If:
		c.checkIf(n)
	case astkind.Block:
		c.checkBlock(n)
	case astkind.Let:
		c.checkLocal(n, fdLetName, fdLetType, fdLetInit)
	case astkind.Var:
		c.checkLocal(n, fdVarName, fdVarType, fdVarInit)
	case astkind.Return:
		c.checkReturn(n)
	case astkind.TemplateInstance:
		c.instantiateIfNeeded(n)
	default:
		if n.Kind.IsType() {
			c.checkTypeExpr(n)
		}
	}
	n.Flags |= astkind.CHECKED
}

// resolveIdentRef resolves a name: scope first, then package-level
// declarations (spec.md §5, §4.F.1). It leaves an optional-typed
// result exactly as looked up, with no narrow-state rewrite: conditionExpr
// calls this directly for a condition-position identifier, which needs the
// raw optional type so it can wrap it in its own OCHECK (condition.go's
// conditionNarrowExpr), not an ODEREF.
func (c *Checker) resolveIdentRef(n *astkind.Node) {
	name := n.Field(fdIdName).Sym
	if name == nil {
		n.Type = unknownType()
		return
	}
	ref, ok := c.lookupLexical(*name)
	if !ok {
		ref, ok = c.lookupPackage(*name)
	}
	if !ok {
		c.reportUnknownIdentifier(n, *name)
		n.Type = unknownType()
		return
	}
	n.SetField(fdIdRef, astkind.Value{Node: ref})
	ref.Uses++
	if ref.Kind.IsType() || ref.Kind == astkind.StructType || ref.Kind == astkind.Alias {
		n.Type = ref
	} else {
		n.Type = ref.Type
	}
}

// checkIdent resolves *np via resolveIdentRef, then, for an ordinary
// (non-condition-position) read of an optional whose narrowed
// availability is YES, replaces *np with a synthetic ODEREF of the
// unwrapped element type (spec.md §4.F.2). An availability of NO or
// MAYBE instead diagnoses the read rather than rewriting it.
func (c *Checker) checkIdent(np **astkind.Node) {
	n := *np
	c.resolveIdentRef(n)
	if n.Type == nil || n.Type.Kind != astkind.Optional {
		return
	}
	switch c.narrowLookup(n) {
	case Yes:
		elem := n.Type.Field(fdOptElem).Node
		wrapped := &astkind.Node{
			Kind:  astkind.PrefixOp,
			Flags: astkind.CHECKED | astkind.RVALUE,
			Pos:   n.Pos,
			Type:  elem,
		}
		wrapped.SetField(fdPrefixOp, astkind.Value{U64: uint64(OpOderef)})
		wrapped.SetField(fdPrefixX, astkind.Value{Node: n})
		*np = wrapped
	case No:
		c.Bag.Reportf(diag.KindOptionalIsEmpty, n.Pos, "optional value is empty")
	case Maybe:
		c.Bag.Reportf(diag.KindOptionalMayBeEmpty, n.Pos, "optional value may be empty")
	}
}

func unknownType() *astkind.Node {
	return &astkind.Node{Kind: astkind.Unknown, Flags: astkind.UNKNOWN}
}

// reportUnknownIdentifier implements spec.md §4.G: a hints-table
// lookup first, then a Levenshtein fuzzy search among in-scope and
// package-scope names, lazily (only reached once resolution has
// already failed).
func (c *Checker) reportUnknownIdentifier(n *astkind.Node, name string) {
	c.Bag.Reportf(diag.KindUnknownIdentifier, n.Pos, "unknown identifier %q", name)

	hints := c.Hints.Lookup(name)
	if len(hints) > 0 {
		for _, h := range hints {
			c.Bag.Helpf(h.DeclPos, "did you mean %q", h.Name)
		}
		return
	}

	var candidates []diag.Candidate
	for s := c.currentScope(); s != nil; s = s.parent {
		for cname, decl := range s.names {
			candidates = append(candidates, diag.Candidate{Name: cname, Pos: decl.Pos})
		}
	}
	for cname, decl := range c.pkgDecls {
		candidates = append(candidates, diag.Candidate{Name: cname, Pos: decl.Pos})
	}
	for _, s := range diag.Suggest(name, candidates, 2) {
		c.Bag.Helpf(s.Pos, "did you mean %q", s.Name)
	}
}

// checkLit promotes an integer/float literal to the current type
// context, falling back to magnitude-based defaults (spec.md §4.F.1).
func (c *Checker) checkLit(n *astkind.Node) {
	primKind := astkind.Kind(n.Field(fdLitPrimKind).U64)
	ctx := c.currentTypeCtx()

	if isIntegerKind(primKind) || (ctx != nil && isIntegerKind(ctx.Kind) && primKind != astkind.F32 && primKind != astkind.F64) {
		if ctx != nil && isIntegerKind(ctx.Kind) {
			n.Type = &astkind.Node{Kind: ctx.Kind}
		} else {
			uval := n.Field(fdLitUVal).U64
			n.Type = &astkind.Node{Kind: defaultIntKind(uval, false)}
		}
		return
	}
	if primKind == astkind.F32 || primKind == astkind.F64 || (ctx != nil && isFloatKind(ctx.Kind)) {
		fval := n.Field(fdLitFVal).F64
		if ctx != nil && ctx.Kind == astkind.F32 && fitsFloat32(fval) {
			n.Type = &astkind.Node{Kind: astkind.F32}
		} else {
			n.Type = &astkind.Node{Kind: astkind.F64}
		}
		return
	}
	if primKind == astkind.Bool {
		n.Type = &astkind.Node{Kind: astkind.Bool}
		return
	}
	uval := n.Field(fdLitUVal).U64
	n.Type = &astkind.Node{Kind: defaultIntKind(uval, false)}
}

// checkStringLit yields a reference to a sized byte array unless the
// current context already demands a string-like type (spec.md
// §4.F.1: "a reference to a sized byte array when no explicit string
// context is present").
func (c *Checker) checkStringLit(n *astkind.Node) {
	ctx := c.currentTypeCtx()
	if ctx != nil && (ctx.Kind == astkind.Slice || ctx.Kind == astkind.Ref) {
		n.Type = ctx
		return
	}
	value := n.Field(fdStringLitValue).Str
	elem := &astkind.Node{Kind: astkind.U8}
	arr := &astkind.Node{Kind: astkind.Array}
	arr.SetField(fdArrayElem, astkind.Value{Node: elem})
	arr.SetField(fdArrayLen, astkind.Value{U64: uint64(len(value))})
	ref := &astkind.Node{Kind: astkind.Ref}
	ref.SetField(fdRefElem, astkind.Value{Node: arr})
	n.Type = ref
}

func (c *Checker) checkArrayLit(n *astkind.Node) {
	fdElems, _ := astkind.FieldByName(astkind.ArrayLit, "Elems")
	elems := n.Field(fdElems).Nodes
	var elemType *astkind.Node
	for _, e := range elems {
		c.CheckExpr(e)
		if elemType == nil {
			elemType = e.Type
		}
	}
	if elemType == nil {
		elemType = unknownType()
	}
	arr := &astkind.Node{Kind: astkind.Array}
	arr.SetField(fdArrayElem, astkind.Value{Node: elemType})
	arr.SetField(fdArrayLen, astkind.Value{U64: uint64(len(elems))})
	n.Type = arr
}

// checkBinop checks a binary operator, left then right (right under a
// context pushed to the left's type), validates against the per-type
// operator table, and rewrites "x == void"/"x != void" on an optional
// into a synthetic OCHECK (spec.md §4.F.1).
func (c *Checker) checkBinop(np **astkind.Node) {
	n := *np
	op := Op(n.Field(fdBinopOp).U64)
	left := n.Field(fdBinopLeft).Node
	c.CheckExpr(left)
	n.SetField(fdBinopLeft, astkind.Value{Node: left})

	if isEquality(op) && left.Type != nil && left.Type.Kind == astkind.Optional {
		if right := n.Field(fdBinopRight).Node; isVoidLiteral(right) {
			x := left
			wrapped := &astkind.Node{
				Kind:  astkind.PrefixOp,
				Flags: astkind.CHECKED | astkind.RVALUE,
				Pos:   n.Pos,
				Type:  &astkind.Node{Kind: astkind.Bool},
			}
			wrapped.SetField(fdPrefixOp, astkind.Value{U64: uint64(OpOcheck)})
			wrapped.SetField(fdPrefixX, astkind.Value{Node: x})
			if op == OpEq {
				notWrap := &astkind.Node{
					Kind:  astkind.PrefixOp,
					Flags: astkind.CHECKED | astkind.RVALUE,
					Pos:   n.Pos,
					Type:  &astkind.Node{Kind: astkind.Bool},
				}
				notWrap.SetField(fdPrefixOp, astkind.Value{U64: uint64(OpNot)})
				notWrap.SetField(fdPrefixX, astkind.Value{Node: wrapped})
				*np = notWrap
			} else {
				*np = wrapped
			}
			return
		}
	}

	c.pushTypeCtx(left.Type)
	right := n.Field(fdBinopRight).Node
	c.CheckExpr(right)
	c.popTypeCtx()
	n.SetField(fdBinopRight, astkind.Value{Node: right})

	if left.Type != nil && !operatorAllowed(op, left.Type.Kind) {
		c.Bag.Reportf(diag.KindNoSuchOperator, n.Pos, "operator not defined for %s", left.Type.Kind)
	}

	switch {
	case isEquality(op) || isComparison(op) || op == OpLand || op == OpLor:
		n.Type = &astkind.Node{Kind: astkind.Bool}
	default:
		n.Type = left.Type
	}
}

func isVoidLiteral(n *astkind.Node) bool {
	return n != nil && n.Kind == astkind.Lit && astkind.Kind(n.Field(fdLitPrimKind).U64) == astkind.Void
}

// checkPrefixOp checks "&", "mut&", "!". Address-of collapses "&" of
// a reference to that same reference (spec.md §4.F.1).
func (c *Checker) checkPrefixOp(n *astkind.Node) {
	op := Op(n.Field(fdPrefixOp).U64)
	x := n.Field(fdPrefixX).Node
	c.CheckExpr(x)
	n.SetField(fdPrefixX, astkind.Value{Node: x})

	switch op {
	case OpAddr, OpMutAddr:
		if x.Type != nil && (x.Type.Kind == astkind.Ref || x.Type.Kind == astkind.MutRef) {
			n.Type = x.Type
			return
		}
		kind := astkind.Ref
		if op == OpMutAddr {
			kind = astkind.MutRef
		}
		wrapper := &astkind.Node{Kind: kind}
		fd := fdRefElem
		if kind == astkind.MutRef {
			fd = fdMutRefElem
		}
		wrapper.SetField(fd, astkind.Value{Node: x.Type})
		n.Type = wrapper
	case OpNot:
		if x.Type != nil && x.Type.Kind != astkind.Bool && x.Type.Kind != astkind.Optional {
			c.Bag.Reportf(diag.KindTypeMismatch, n.Pos, "operator ! requires bool or optional, got %s", x.Type.Kind)
		}
		n.Type = &astkind.Node{Kind: astkind.Bool}
	case OpNeg:
		n.Type = x.Type
	case OpOcheck:
		n.Type = &astkind.Node{Kind: astkind.Bool}
	}
}

func (c *Checker) checkPostfixOp(n *astkind.Node) {
	x := n.Field(fdPostfixX).Node
	c.CheckExpr(x)
	n.SetField(fdPostfixX, astkind.Value{Node: x})
	n.Type = x.Type
}

// checkDeref handles "*p": pointer-like target required; dereferencing
// a ref to an owning element is rejected (spec.md §4.F.1).
func (c *Checker) checkDeref(n *astkind.Node) {
	x := n.Field(fdDerefX).Node
	c.CheckExpr(x)
	n.SetField(fdDerefX, astkind.Value{Node: x})

	if x.Type == nil || !isPointerLikeKind(x.Type.Kind) {
		c.Bag.Reportf(diag.KindTypeMismatch, n.Pos, "cannot dereference non-pointer type")
		n.Type = unknownType()
		return
	}
	elem := x.Type.Field(fdPtrElem).Node
	if x.Type.Kind == astkind.Ref {
		elem = x.Type.Field(fdRefElem).Node
	} else if x.Type.Kind == astkind.MutRef {
		elem = x.Type.Field(fdMutRefElem).Node
	}
	if x.Type.Kind == astkind.Ref && elem != nil && elem.Flags.Any(astkind.DROP|astkind.SUBOWNERS) {
		c.Bag.Reportf(diag.KindMutabilityViolation, n.Pos, "cannot dereference a ref to an owning value")
	}
	n.Type = elem
}

// checkCall checks an ordinary function call. Construction/cast syntax
// is parsed as its own Typecons node (spec.md §4.F.3) and never
// reaches here.
func (c *Checker) checkCall(n *astkind.Node) {
	callee := n.Field(fdCallCallee).Node
	c.CheckExpr(callee)
	n.SetField(fdCallCallee, astkind.Value{Node: callee})

	args := n.Field(fdCallArgs).Nodes
	var fnType *astkind.Node
	if callee.Type != nil && callee.Type.Kind == astkind.FuncType {
		fnType = callee.Type
	} else if callee.Kind == astkind.Fun {
		fnType = funcTypeOf(callee)
	}
	if fnType == nil {
		c.Bag.Reportf(diag.KindTypeMismatch, n.Pos, "cannot call a non-function value")
		n.Type = unknownType()
		return
	}
	params := fnType.Field(fdFTParams).Nodes
	if len(args) != len(params) {
		c.Bag.Reportf(diag.KindArityMismatch, n.Pos, "expected %d arguments, got %d", len(params), len(args))
	}
	for i, a := range args {
		if i < len(params) {
			paramType := paramTypeOf(params[i])
			c.pushTypeCtx(paramType)
			c.CheckExpr(a)
			c.popTypeCtx()
			if !c.assignable(a.Type, paramType) {
				c.Bag.Reportf(diag.KindUnassignableType, a.Pos, "cannot use %s as %s", a.Type.Kind, paramType.Kind)
			}
		} else {
			c.CheckExpr(a)
		}
	}
	n.SetField(fdCallArgs, astkind.Value{Nodes: args})
	result := fnType.Field(fdFTResult).Node
	if result == nil {
		result = &astkind.Node{Kind: astkind.Void}
	}
	n.Type = result
}

func funcTypeOf(fn *astkind.Node) *astkind.Node {
	ft := &astkind.Node{Kind: astkind.FuncType}
	ft.SetField(fdFTParams, astkind.Value{Nodes: fn.Field(fdFunParams).Nodes})
	if r := fn.Field(fdFunResult).Node; r != nil {
		ft.SetField(fdFTResult, astkind.Value{Node: r})
	}
	return ft
}

// paramTypeOf returns p's declared type: a FuncType's own Params array
// holds bare type nodes (a function type has no parameter names), while
// a Fun declaration's Params array holds Param nodes carrying a
// separate Type field. funcTypeOf above reuses the latter directly
// rather than re-wrapping each one, so callers read through here
// instead of assuming either shape.
func paramTypeOf(p *astkind.Node) *astkind.Node {
	if p.Kind == astkind.Param {
		return p.Field(fdParamType).Node
	}
	return p
}

// checkMember resolves "x.y": namespace export lookup, else unwrap
// through alias/reference/pointer (never optional) and look up a
// struct field (spec.md §4.F.1). Type-associated functions are not
// searched: a name that is not a field is reported as no such member.
func (c *Checker) checkMember(n *astkind.Node) {
	x := n.Field(fdMemberX).Node
	c.CheckExpr(x)
	n.SetField(fdMemberX, astkind.Value{Node: x})
	name := n.Field(fdMemberName).Sym
	if name == nil {
		n.Type = unknownType()
		return
	}

	if x.Kind == astkind.Namespace || (x.Type != nil && x.Type.Kind == astkind.Namespace) {
		ns := x
		if x.Kind != astkind.Namespace {
			ns = x.Type
		}
		fdExports, _ := astkind.FieldByName(astkind.Namespace, "Exports")
		for _, e := range ns.Field(fdExports).Nodes {
			if exportName(e) == *name {
				n.Type = e
				return
			}
		}
		c.Bag.Reportf(diag.KindNoSuchMember, n.Pos, "no such export %q", *name)
		n.Type = unknownType()
		return
	}

	if x.Type == nil {
		n.Type = unknownType()
		return
	}
	if x.Type.Kind == astkind.Optional {
		switch c.narrowLookup(x) {
		case Yes:
			elem := x.Type.Field(fdOptElem).Node
			wrapped := &astkind.Node{
				Kind:  astkind.PrefixOp,
				Flags: astkind.CHECKED | astkind.RVALUE,
				Pos:   x.Pos,
				Type:  elem,
			}
			wrapped.SetField(fdPrefixOp, astkind.Value{U64: uint64(OpOderef)})
			wrapped.SetField(fdPrefixX, astkind.Value{Node: x})
			x = wrapped
			n.SetField(fdMemberX, astkind.Value{Node: x})
		case No:
			c.Bag.Reportf(diag.KindOptionalIsEmpty, n.Pos, "optional value is empty")
			n.Type = unknownType()
			return
		case Maybe:
			c.Bag.Reportf(diag.KindOptionalMayBeEmpty, n.Pos, "optional value may be empty")
			n.Type = unknownType()
			return
		}
	}

	recv := unwrapMemberReceiver(x.Type)
	if recv.Kind == astkind.StructType {
		for _, field := range recv.Field(fdStructFields).Nodes {
			if fname := field.Field(fdFieldName).Sym; fname != nil && *fname == *name {
				c.memberRef[n] = field
				n.Type = field.Field(fdFieldType).Node
				return
			}
		}
	}
	c.Bag.Reportf(diag.KindNoSuchMember, n.Pos, "type has no member %q", *name)
	n.Type = unknownType()
}

func exportName(n *astkind.Node) string {
	switch n.Kind {
	case astkind.StructType, astkind.Alias, astkind.Template:
		fd, _ := astkind.FieldByName(n.Kind, "Name")
		if s := n.Field(fd).Sym; s != nil {
			return *s
		}
	case astkind.Fun:
		fd, _ := astkind.FieldByName(astkind.Fun, "Name")
		if s := n.Field(fd).Sym; s != nil {
			return *s
		}
	}
	return ""
}

// checkSubscript requires an unsigned-assignable index; a constant
// index into a sized array is bounds-checked (spec.md §4.F.1).
func (c *Checker) checkSubscript(n *astkind.Node) {
	x := n.Field(fdSubX).Node
	c.CheckExpr(x)
	n.SetField(fdSubX, astkind.Value{Node: x})
	index := n.Field(fdSubIndex).Node
	c.CheckExpr(index)
	n.SetField(fdSubIndex, astkind.Value{Node: index})

	if index.Type != nil && !isUnsignedKind(index.Type.Kind) && !isIntegerKind(index.Type.Kind) {
		c.Bag.Reportf(diag.KindUnassignableType, index.Pos, "subscript index must be an unsigned-assignable integer")
	}

	if x.Type == nil {
		n.Type = unknownType()
		return
	}
	switch x.Type.Kind {
	case astkind.Array:
		if index.Kind == astkind.Lit && index.Flags.Has(astkind.CONST) {
			length := x.Type.Field(fdArrayLen).U64
			if index.Field(fdLitUVal).U64 >= length {
				c.Bag.Reportf(diag.KindOutOfBoundsConstant, n.Pos, "index out of bounds for array of length %d", length)
			}
		}
		n.Type = x.Type.Field(fdArrayElem).Node
	case astkind.Slice, astkind.MutSlice:
		n.Type = x.Type.Field(fdSliceElem).Node
	default:
		c.Bag.Reportf(diag.KindTypeMismatch, n.Pos, "type is not subscriptable")
		n.Type = unknownType()
	}
}

// checkIf checks the condition (with narrowing), then each branch
// under its own scope; compatible branch types if the if is an
// rvalue, else the whole expression is void (spec.md §4.F.1).
func (c *Checker) checkIf(n *astkind.Node) {
	isRvalue := n.Flags.Has(astkind.RVALUE)

	c.pushScope()
	c.pushNarrowScope()
	var recs []narrowed
	cond := n.Field(fdIfCond).Node
	flags := c.ifCondition(&recs, &cond)
	n.SetField(fdIfCond, astkind.Value{Node: cond})

	c.defineNarrowedThen(recs)
	then := n.Field(fdIfThen).Node
	if isRvalue {
		then.Flags |= astkind.RVALUE
	}
	c.CheckExpr(then)
	n.SetField(fdIfThen, astkind.Value{Node: then})
	c.popNarrowScope()
	c.popScope()

	var elseType *astkind.Node
	if elseB := n.Field(fdIfElse).Node; elseB != nil {
		c.pushScope()
		c.pushNarrowScope()
		c.defineNarrowedElse(recs, flags)
		if isRvalue {
			elseB.Flags |= astkind.RVALUE
		}
		c.CheckExpr(elseB)
		n.SetField(fdIfElse, astkind.Value{Node: elseB})
		elseType = elseB.Type
		c.popNarrowScope()
		c.popScope()
	}

	switch {
	case !isRvalue:
		n.Type = &astkind.Node{Kind: astkind.Void}
	case elseType == nil:
		opt := &astkind.Node{Kind: astkind.Optional}
		opt.SetField(fdOptElem, astkind.Value{Node: then.Type})
		n.Type = opt
	case c.identical(then.Type, elseType):
		n.Type = then.Type
	default:
		c.Bag.Reportf(diag.KindIncompatibleTypes, n.Pos, "if branches have incompatible types")
		n.Type = unknownType()
	}
}

// checkBlock checks each statement in order; if the block is an
// rvalue, the last expression is an implicit return (synthesised when
// the enclosing function's result is non-void) (spec.md §4.F.1).
func (c *Checker) checkBlock(n *astkind.Node) {
	c.pushScope()
	defer c.popScope()

	stmts := n.Field(fdBlockStmts).Nodes
	isRvalue := n.Flags.Has(astkind.RVALUE)
	for i, s := range stmts {
		if isRvalue && i == len(stmts)-1 {
			s.Flags |= astkind.RVALUE
		}
		c.CheckExpr(s)
	}
	n.SetField(fdBlockStmts, astkind.Value{Nodes: stmts})

	if isRvalue && len(stmts) > 0 {
		last := stmts[len(stmts)-1]
		n.Type = last.Type
		if c.fn != nil {
			result := c.fn.Field(fdFunResult).Node
			if result != nil && result.Kind != astkind.Void && last.Kind != astkind.Return {
				ret := &astkind.Node{Kind: astkind.Return, Pos: last.Pos, Flags: astkind.CHECKED}
				ret.SetField(fdReturnValue, astkind.Value{Node: last})
				stmts[len(stmts)-1] = ret
				n.SetField(fdBlockStmts, astkind.Value{Nodes: stmts})
			}
		}
	} else {
		n.Type = &astkind.Node{Kind: astkind.Void}
	}
}

func (c *Checker) checkReturn(n *astkind.Node) {
	if v := n.Field(fdReturnValue).Node; v != nil {
		if c.fn != nil {
			c.pushTypeCtx(c.fn.Field(fdFunResult).Node)
			c.CheckExpr(v)
			c.popTypeCtx()
		} else {
			c.CheckExpr(v)
		}
		n.SetField(fdReturnValue, astkind.Value{Node: v})
	}
	n.Type = &astkind.Node{Kind: astkind.Void}
	n.Flags |= astkind.EXIT
}

// checkLocal checks a let/var declaration: the initializer is checked
// under a context pushed to the declared type (if any), then the
// effective type is installed and the name is declared in the current
// scope.
func (c *Checker) checkLocal(n *astkind.Node, fdName, fdType, fdInit astkind.FieldDesc) {
	declared := n.Field(fdType).Node
	init := n.Field(fdInit).Node
	if init != nil {
		c.pushTypeCtx(declared)
		c.CheckExpr(init)
		c.popTypeCtx()
		n.SetField(fdInit, astkind.Value{Node: init})
	}
	switch {
	case declared != nil:
		n.Type = declared
		if init != nil && !c.assignable(init.Type, declared) {
			c.Bag.Reportf(diag.KindUnassignableType, n.Pos, "cannot assign %s to %s", init.Type.Kind, declared.Kind)
		}
	case init != nil:
		n.Type = init.Type
	default:
		n.Type = unknownType()
	}
	if name := n.Field(fdName).Sym; name != nil {
		c.declareChecked(*name, n)
	}
}

// checkTypeExpr checks a bare type reference appearing in expression
// position (e.g. the target of a cast before the call wrapper around
// it is checked); type nodes are their own type.
func (c *Checker) checkTypeExpr(n *astkind.Node) {
	n.Type = nil
}
