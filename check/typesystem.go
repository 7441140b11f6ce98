package check

import "github.com/emberlang/semacore/astkind"

var fdPtrElem, _ = astkind.FieldByName(astkind.Ptr, "Elem")
var fdRefElem, _ = astkind.FieldByName(astkind.Ref, "Elem")
var fdMutRefElem, _ = astkind.FieldByName(astkind.MutRef, "Elem")
var fdAliasTarget, _ = astkind.FieldByName(astkind.Alias, "Target")

// unwrapMemberReceiver unwraps alias, reference, and pointer layers
// from t, stopping at the first struct/primitive/namespace type
// reached. Optional is deliberately never unwrapped here: member
// access through an unchecked optional is a hard error (spec.md
// §4.F.1's Member rule), checked by the caller before unwrapping.
func unwrapMemberReceiver(t *astkind.Node) *astkind.Node {
	for {
		switch t.Kind {
		case astkind.Alias:
			t = t.Field(fdAliasTarget).Node
		case astkind.Ref:
			t = t.Field(fdRefElem).Node
		case astkind.MutRef:
			t = t.Field(fdMutRefElem).Node
		case astkind.Ptr:
			t = t.Field(fdPtrElem).Node
		default:
			return t
		}
	}
}

// identical reports whether a and b are the same type by canonical
// identity: interning both and comparing the resulting typeid, which
// is itself pointer-comparable once shared (typeid.Equal also handles
// the not-yet-interned case correctly via byte comparison).
func (c *Checker) identical(a, b *astkind.Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	idA := c.Interner.Intern(a)
	idB := c.Interner.Intern(b)
	return idA == idB || string(idA.Bytes()) == string(idB.Bytes())
}

// assignable reports whether a value of type from may be used where
// to is expected: identical types, or from assignable into an
// optional's element type (an unwrapped T satisfies ?T), or either
// side being the Unknown recovery type (to avoid cascading errors
// once one has already been reported).
func (c *Checker) assignable(from, to *astkind.Node) bool {
	if from == nil || to == nil {
		return true
	}
	if from.Kind == astkind.Unknown || to.Kind == astkind.Unknown {
		return true
	}
	if c.identical(from, to) {
		return true
	}
	if to.Kind == astkind.Optional {
		elem := to.Field(fdOptElem).Node
		if c.identical(from, elem) {
			return true
		}
		if from.Kind == astkind.Optional {
			return c.assignable(from.Field(fdOptElem).Node, elem)
		}
	}
	return false
}

// defaultIntKind picks the smallest of int/uint/i64/u64 that
// represents value, per spec.md §4.F.1's literal-promotion rule
// ("default to int/uint/i64/u64 based on magnitude").
func defaultIntKind(value uint64, negative bool) astkind.Kind {
	const int32Max = 1<<31 - 1
	switch {
	case negative:
		if value <= int32Max+1 {
			return astkind.Int
		}
		return astkind.I64
	case value <= int32Max:
		return astkind.Int
	case value <= 1<<32-1:
		return astkind.Uint
	case value <= 1<<63-1:
		return astkind.I64
	default:
		return astkind.U64
	}
}

// fitsFloat32 reports whether v round-trips through float32 without
// loss, used to decide f32 vs f64 for a float literal under a context
// that merely "demands" f32 rather than requiring it outright.
func fitsFloat32(v float64) bool {
	return float64(float32(v)) == v
}
