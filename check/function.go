package check

import (
	"unsafe"

	"github.com/emberlang/semacore/astkind"
)

const pointerSize = unsafe.Sizeof(uintptr(0))

var (
	fdFunName, _           = astkind.FieldByName(astkind.Fun, "Name")
	fdFunParams, _         = astkind.FieldByName(astkind.Fun, "Params")
	fdFunResult, _         = astkind.FieldByName(astkind.Fun, "Result")
	fdFunBody, _           = astkind.FieldByName(astkind.Fun, "Body")
	fdFunReceiver, _       = astkind.FieldByName(astkind.Fun, "Receiver")
	fdParamName, _         = astkind.FieldByName(astkind.Param, "Name")
	fdParamType, _         = astkind.FieldByName(astkind.Param, "Type")
)

// checkFunc checks one function or method declaration (spec.md
// §4.F.4). The receiver, if present, is upgraded from a by-value "this"
// to a reference unless its type is primitive or a small non-owning
// struct.
func (c *Checker) checkFunc(n *astkind.Node) {
	outerFn := c.fn
	c.fn = n
	defer func() { c.fn = outerFn }()

	c.pushScope()
	defer c.popScope()

	if recv := n.Field(fdFunReceiver).Node; recv != nil {
		c.upgradeReceiver(recv)
		if name := recv.Field(fdParamName).Sym; name != nil {
			c.declareChecked(*name, recv)
		}
	}

	for _, p := range n.Field(fdFunParams).Nodes {
		if name := p.Field(fdParamName).Sym; name != nil {
			c.declareChecked(*name, p)
		}
	}

	result := n.Field(fdFunResult).Node
	isRvalue := result != nil && result.Kind != astkind.Void

	body := n.Field(fdFunBody).Node
	if body == nil {
		c.recognizeSpecialFunc(n)
		return
	}

	c.pushTypeCtx(result)
	if isRvalue {
		body.Flags |= astkind.RVALUE
	}
	c.pushNarrowScope()
	c.CheckExpr(body)
	c.popNarrowScope()
	c.popTypeCtx()
	n.SetField(fdFunBody, astkind.Value{Node: body})

	c.recognizeSpecialFunc(n)
}

// upgradeReceiver mutates recv's declared type in place from a bare
// value type to a Ref, unless the type is primitive or a small (≤ 2×
// pointer size) struct carrying neither DROP nor SUBOWNERS, matching
// typecheck.c's receiver upgrade rule (spec.md §4.F.4). A receiver
// already typed as Ref, MutRef or Ptr is left as it is.
func (c *Checker) upgradeReceiver(recv *astkind.Node) {
	t := recv.Field(fdParamType).Node
	if t == nil {
		return
	}
	if t.Kind == astkind.Ref || t.Kind == astkind.MutRef || t.Kind == astkind.Ptr {
		return
	}
	if t.Kind.IsPrimitive() {
		return
	}
	if t.Kind == astkind.StructType && t.Size > 0 && t.Size <= int64(2*pointerSize) && !t.Flags.Any(astkind.DROP|astkind.SUBOWNERS) {
		return
	}
	ref := &astkind.Node{Kind: astkind.Ref, Pos: t.Pos}
	ref.SetField(fdRefElem, astkind.Value{Node: t})
	recv.SetField(fdParamType, astkind.Value{Node: ref})
}

// recognizeSpecialFunc marks T.flags |= DROP for a `drop` method whose
// signature is exactly "(mut this) -> void", and records a package-root
// parameterless "void main" as the Checker's MainFunc (spec.md §4.F.4).
func (c *Checker) recognizeSpecialFunc(n *astkind.Node) {
	name := n.Field(fdFunName).Sym
	if name == nil {
		return
	}
	result := n.Field(fdFunResult).Node
	isVoid := result == nil || result.Kind == astkind.Void

	if *name == "drop" && isVoid && len(n.Field(fdFunParams).Nodes) == 0 {
		if recv := n.Field(fdFunReceiver).Node; recv != nil {
			if t := recv.Field(fdParamType).Node; t != nil && t.Kind == astkind.MutRef {
				if owner := t.Field(fdMutRefElem).Node; owner != nil {
					owner.Flags |= astkind.DROP
				}
			}
		}
	}

	if *name == "main" && isVoid && len(n.Field(fdFunParams).Nodes) == 0 && n.Field(fdFunReceiver).Node == nil {
		c.MainFunc = n
	}
}
