package check

import (
	"github.com/emberlang/semacore/astkind"
	"github.com/emberlang/semacore/diag"
)

var (
	fdTypeconsTarget, _ = astkind.FieldByName(astkind.Typecons, "Target")
	fdTypeconsArgs, _   = astkind.FieldByName(astkind.Typecons, "Args")
)

// checkTypeconsExpr checks a "Typecons" node: construction syntax
// (spec.md §4.F.3). A primitive target is a cast from its single
// argument; a struct target requires one argument per field, checked
// positionally against each field's declared type; an array target
// requires exactly the array's declared length.
func (c *Checker) checkTypeconsExpr(n *astkind.Node) {
	target := n.Field(fdTypeconsTarget).Node
	args := n.Field(fdTypeconsArgs).Nodes

	switch {
	case target.Kind.IsPrimitive():
		c.checkTyperconsPrimitive(n, target, args)
	case target.Kind == astkind.StructType:
		c.checkTyperconsStruct(n, target, args)
	case target.Kind == astkind.Array:
		c.checkTyperconsArray(n, target, args)
	default:
		c.Bag.Reportf(diag.KindInvalidSignature, n.Pos, "%s is not constructible", target.Kind)
		n.Type = unknownType()
	}
}

func (c *Checker) checkTyperconsPrimitive(n, target *astkind.Node, args []*astkind.Node) {
	if len(args) != 1 {
		c.Bag.Reportf(diag.KindArityMismatch, n.Pos, "a primitive cast takes exactly one argument")
		n.Type = unknownType()
		return
	}
	arg := args[0]
	c.pushTypeCtx(target)
	c.CheckExpr(arg)
	c.popTypeCtx()

	if arg.Type == nil || (!isNumericKind(arg.Type.Kind) && !isBooleanKind(arg.Type.Kind)) {
		c.Bag.Reportf(diag.KindTypeMismatch, arg.Pos, "cannot cast %s to %s", arg.Type.Kind, target.Kind)
	}
	n.SetField(fdTypeconsArgs, astkind.Value{Nodes: args})
	n.Type = target
}

func (c *Checker) checkTyperconsStruct(n, target *astkind.Node, args []*astkind.Node) {
	fields := target.Field(fdStructFields).Nodes
	if len(args) != len(fields) {
		c.Bag.Reportf(diag.KindArityMismatch, n.Pos, "%s requires %d field values, got %d", target.Kind, len(fields), len(args))
	}
	for i, a := range args {
		if i >= len(fields) {
			c.CheckExpr(a)
			continue
		}
		fieldType := fields[i].Field(fdFieldType).Node
		c.pushTypeCtx(fieldType)
		c.CheckExpr(a)
		c.popTypeCtx()
		if !c.assignable(a.Type, fieldType) {
			c.Bag.Reportf(diag.KindUnassignableType, a.Pos, "cannot use %s for field %s", a.Type.Kind, fieldType.Kind)
		}
	}
	n.SetField(fdTypeconsArgs, astkind.Value{Nodes: args})
	n.Type = target
}

func (c *Checker) checkTyperconsArray(n, target *astkind.Node, args []*astkind.Node) {
	length := target.Field(fdArrayLen).U64
	if uint64(len(args)) != length {
		c.Bag.Reportf(diag.KindArityMismatch, n.Pos, "array of length %d requires %d elements, got %d", length, length, len(args))
	}
	elemType := target.Field(fdArrayElem).Node
	for _, a := range args {
		c.pushTypeCtx(elemType)
		c.CheckExpr(a)
		c.popTypeCtx()
		if !c.assignable(a.Type, elemType) {
			c.Bag.Reportf(diag.KindUnassignableType, a.Pos, "cannot use %s as element type %s", a.Type.Kind, elemType.Kind)
		}
	}
	n.SetField(fdTypeconsArgs, astkind.Value{Nodes: args})
	n.Type = target
}
