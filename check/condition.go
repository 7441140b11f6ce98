package check

import (
	"github.com/emberlang/semacore/astkind"
	"github.com/emberlang/semacore/diag"
)

// condFlag is the bitmask threaded through conditionExpr, a direct
// port of original_source/src/typecheck.c's COND_FLAG_NEG/OR/AND/CHECKED.
type condFlag uint8

const (
	condNeg     condFlag = 1 << iota // negated by an enclosing "!"
	condOr                           // inside the LHS of "||": narrowing disabled
	condAnd                          // inside "&&": narrowing accumulates
	condChecked                      // already wrapped in a synthetic OCHECK
)

// narrowed records one optional-typed operand discovered while walking
// a condition, queued for define_narrowed_then/else once the whole
// condition has been walked.
type narrowed struct {
	storage *astkind.Node
	isNeg   bool
}

var fdOptElem, _ = astkind.FieldByName(astkind.Optional, "Elem")
var fdPrefixOp, _ = astkind.FieldByName(astkind.PrefixOp, "Op")
var fdPrefixX, _ = astkind.FieldByName(astkind.PrefixOp, "X")
var fdBinopOp, _ = astkind.FieldByName(astkind.Binop, "Op")
var fdBinopLeft, _ = astkind.FieldByName(astkind.Binop, "Left")
var fdBinopRight, _ = astkind.FieldByName(astkind.Binop, "Right")

// wrapOcheck replaces *xp with a synthetic PrefixOp{Op: OpOcheck},
// type bool, CHECKED, matching typecheck.c's wrap_optcheck.
func wrapOcheck(xp **astkind.Node) {
	x := *xp
	wrapped := &astkind.Node{
		Kind:  astkind.PrefixOp,
		Flags: astkind.CHECKED | astkind.RVALUE,
		Pos:   x.Pos,
		Type:  &astkind.Node{Kind: astkind.Bool},
	}
	wrapped.SetField(fdPrefixOp, astkind.Value{U64: uint64(OpOcheck)})
	wrapped.SetField(fdPrefixX, astkind.Value{Node: x})
	*xp = wrapped
}

// defineNarrowed installs availability for every recorded operand:
// YES unless isNeg XOR negate, matching typecheck.c's define_narrowed.
func (c *Checker) defineNarrowed(recs []narrowed, negate bool) {
	for _, r := range recs {
		if r.isNeg == negate {
			c.narrowDefine(r.storage, Yes)
		} else {
			c.narrowDefine(r.storage, No)
		}
	}
}

func (c *Checker) defineNarrowedThen(recs []narrowed) {
	c.defineNarrowed(recs, false)
}

// defineNarrowedElse only narrows in the "else" branch when the
// condition's outcome is definitive: no "||"/"&&" was traversed (an
// OR/AND-composed condition doesn't let the else branch conclude
// anything about an individual operand), adjusted by any outer
// negation, matching typecheck.c's define_narrowed_else.
func (c *Checker) defineNarrowedElse(recs []narrowed, flags condFlag) {
	definitive := flags&(condOr|condAnd) == 0
	definitive = definitive != (flags&condNeg != 0)
	if definitive {
		c.defineNarrowed(recs, true)
	}
}

// conditionNarrowExpr is reached once x has been checked and found to
// be of optional type: it records x (or, for an id, the storage it
// refers to) in narrowedOut and wraps x in an OCHECK unless the path
// already passed through one. Ported from
// typecheck.c's condition_narrow_expr.
func (c *Checker) conditionNarrowExpr(narrowedOut *[]narrowed, flags condFlag, xp **astkind.Node) {
	x := *xp
	if x.Type == nil || x.Type.Kind != astkind.Optional {
		return
	}
	if flags&condOr == 0 {
		*narrowedOut = append(*narrowedOut, narrowed{
			storage: c.storageOf(x),
			isNeg:   flags&condNeg != 0,
		})
	}
	if flags&condChecked == 0 {
		wrapOcheck(xp)
	}
}

// conditionBinopAndOr handles "x && y" / "x || y" within a condition,
// ported from typecheck.c's condition_binop_and_or. The left side's
// narrowed facts become visible while checking the right (an "&&"
// short-circuits toward falsity only if the left failed, so by the
// time the right runs, the left must have succeeded); "||"'s narrowed
// facts are discarded afterward since failure of the left tells the
// right nothing about availability.
func (c *Checker) conditionBinopAndOr(narrowedOut *[]narrowed, flags condFlag, n *astkind.Node) condFlag {
	op := Op(n.Field(fdBinopOp).U64)
	flags &^= condOr

	recordedBefore := len(*narrowedOut)
	if op == OpLor {
		// "||"'s operands must never leak narrowing into the "then"
		// branch: process both sides in a scratch scope, discarded
		// below, matching typecheck.c's narrowscope.len snapshot/restore.
		c.pushNarrowScope()
		defer c.popNarrowScope()
	}

	left := n.Field(fdBinopLeft).Node
	outFlags := c.conditionExpr(narrowedOut, flags, &left)
	n.SetField(fdBinopLeft, astkind.Value{Node: left})

	// Define narrowed facts from the LHS before checking the RHS, so
	// e.g. "a != void && a.Foo" sees a's availability while checking
	// the right operand.
	if len(*narrowedOut) > recordedBefore {
		c.defineNarrowed((*narrowedOut)[recordedBefore:], op == OpLor)
	}
	recordedAfterLeft := len(*narrowedOut)

	if op == OpLor {
		flags |= condOr
		outFlags |= condOr
	} else {
		flags |= condAnd
		outFlags |= condAnd
	}
	right := n.Field(fdBinopRight).Node
	outFlags |= c.conditionExpr(narrowedOut, flags, &right)
	n.SetField(fdBinopRight, astkind.Value{Node: right})

	if op == OpLor {
		// Neither operand of "||" tells the "then" branch anything
		// definite about availability.
		*narrowedOut = (*narrowedOut)[:recordedBefore]
	} else if len(*narrowedOut) > recordedAfterLeft {
		c.defineNarrowed((*narrowedOut)[recordedAfterLeft:], false)
	}

	n.Type = &astkind.Node{Kind: astkind.Bool}
	n.Flags |= astkind.CHECKED
	return outFlags
}

// conditionBinopEq handles "x == y" / "x != y" within a condition,
// recognizing the "x == void" / "x != void" optional-empty-check
// idiom once the ordinary binop check has rewritten it to a (possibly
// "!"-wrapped) synthetic OCHECK. Ported from typecheck.c's
// condition_binop_eq.
func (c *Checker) conditionBinopEq(narrowedOut *[]narrowed, flags condFlag, xp **astkind.Node) condFlag {
	c.checkBinop(xp)
	x := *xp
	if x.Kind != astkind.PrefixOp {
		return 0
	}
	op := Op(x.Field(fdPrefixOp).U64)
	if op == OpNot {
		flags ^= condNeg
		inner := x.Field(fdPrefixX).Node
		if inner.Kind != astkind.PrefixOp {
			return 0
		}
		x = inner
	}
	if Op(x.Field(fdPrefixOp).U64) != OpOcheck {
		return 0
	}
	innerX := x.Field(fdPrefixX).Node
	out := c.conditionExpr(narrowedOut, flags|condChecked, &innerX)
	x.SetField(fdPrefixX, astkind.Value{Node: innerX})
	return out
}

// conditionExpr walks one condition operand, ported from
// typecheck.c's condition_expr.
func (c *Checker) conditionExpr(narrowedOut *[]narrowed, flags condFlag, xp **astkind.Node) condFlag {
	x := *xp

	switch x.Kind {
	case astkind.PrefixOp:
		op := Op(x.Field(fdPrefixOp).U64)
		if op != OpNot && op != OpOcheck {
			break
		}
		flags &^= condChecked
		if op == OpNot {
			x.Type = &astkind.Node{Kind: astkind.Bool}
			x.Flags |= astkind.CHECKED
			flags ^= condNeg
			inner := x.Field(fdPrefixX).Node
			out := c.conditionExpr(narrowedOut, flags, &inner)
			x.SetField(fdPrefixX, astkind.Value{Node: inner})
			return out ^ condNeg
		}
		inner := x.Field(fdPrefixX).Node
		out := c.conditionExpr(narrowedOut, flags, &inner)
		x.SetField(fdPrefixX, astkind.Value{Node: inner})
		return out

	case astkind.Binop:
		op := Op(x.Field(fdBinopOp).U64)
		if op != OpLand && op != OpLor && !isEquality(op) {
			break
		}
		flags &^= condChecked
		if op == OpLand || op == OpLor {
			return c.conditionBinopAndOr(narrowedOut, flags, x)
		}
		return c.conditionBinopEq(narrowedOut, flags, xp)

	case astkind.Member:
		if !x.Flags.Has(astkind.CHECKED) {
			c.checkMember(x)
			x = *xp
		}
		c.conditionNarrowExpr(narrowedOut, flags, xp)
		return 0

	case astkind.Id:
		if !x.Flags.Has(astkind.CHECKED) {
			c.resolveIdentRef(x)
		}
		c.conditionNarrowExpr(narrowedOut, flags, xp)
		return 0
	}

	c.CheckExpr(x)
	x = *xp
	if x.Type == nil || x.Type.Kind != astkind.Bool {
		if x.Type != nil && x.Type.Kind == astkind.Optional {
			wrapOcheck(xp)
		} else {
			c.Bag.Reportf(diag.KindTypeMismatch, x.Pos, "cannot use %s as boolean in condition", x.Kind)
		}
	}
	return 0
}

// valCondition checks a bare (non-"if") condition, e.g. the operand of
// a standalone "&&"/"||" expression, under a bool type context.
func (c *Checker) valCondition(narrowedOut *[]narrowed, condp **astkind.Node) condFlag {
	c.pushTypeCtx(&astkind.Node{Kind: astkind.Bool})
	defer c.popTypeCtx()
	return c.conditionExpr(narrowedOut, 0, condp)
}

var fdLetName, _ = astkind.FieldByName(astkind.Let, "Name")
var fdLetInit, _ = astkind.FieldByName(astkind.Let, "Init")

// ifCondition checks an "if" statement's condition, recognizing the
// "if let x = e" binding form (spec.md §4.F.2's last bullet) in
// addition to an ordinary boolean condition. Ported from
// typecheck.c's if_condition.
func (c *Checker) ifCondition(narrowedOut *[]narrowed, condp **astkind.Node) condFlag {
	c.pushTypeCtx(&astkind.Node{Kind: astkind.Bool})
	defer c.popTypeCtx()

	cond := *condp
	if cond.Kind != astkind.Let && cond.Kind != astkind.Var {
		return c.conditionExpr(narrowedOut, 0, condp)
	}

	init := cond.Field(fdLetInit).Node
	if init != nil {
		c.CheckExpr(init)
	}
	switch {
	case init != nil && init.Type != nil && init.Type.Kind == astkind.Optional:
		cond.Flags |= astkind.NARROWED
		cond.Type = init.Type.Field(fdOptElem).Node
	case init != nil && init.Type != nil && init.Type.Kind != astkind.Bool:
		c.Bag.Reportf(diag.KindTypeMismatch, cond.Pos,
			"cannot use %s as boolean in condition", init.Type.Kind)
	default:
		if init != nil {
			cond.Type = init.Type
		}
	}
	cond.Flags |= astkind.CHECKED
	name := cond.Field(fdLetName).Sym
	if name != nil {
		c.declareChecked(*name, cond)
	}
	return 0
}
