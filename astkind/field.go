package astkind

import "strconv"

// FieldType is the semantic type of a reflected field, drawn from the
// closed set the typeid encoder and the generic transform both switch
// on: {u8,u16,u32,u64,f64,loc,sym,sym?,node,node?,str,str?,node-array}.
type FieldType uint8

const (
	FU8 FieldType = iota
	FU16
	FU32
	FU64
	FF64
	FLoc
	FSym
	FSymOpt
	FNode
	FNodeOpt
	FStr
	FStrOpt
	FNodeArray
)

func (t FieldType) String() string {
	switch t {
	case FU8:
		return "u8"
	case FU16:
		return "u16"
	case FU32:
		return "u32"
	case FU64:
		return "u64"
	case FF64:
		return "f64"
	case FLoc:
		return "loc"
	case FSym:
		return "sym"
	case FSymOpt:
		return "sym?"
	case FNode:
		return "node"
	case FNodeOpt:
		return "node?"
	case FStr:
		return "str"
	case FStrOpt:
		return "str?"
	case FNodeArray:
		return "node-array"
	default:
		return "?"
	}
}

// FieldDesc describes one field of a node kind. Index stands in for the
// C original's byte offset: instead of unsafe pointer arithmetic over a
// fixed struct layout, semacore's Node carries a slice of generic field
// slots (see node.go) and Index is the slot position within that slice.
// This preserves the reflection table's contract ("a consumer iterates
// fields in declared order, reading through the offset") in idiomatic
// Go, without `unsafe`.
type FieldDesc struct {
	Name     string
	Index    int
	Type     FieldType
	Identity bool // participates in typeid encoding
}

// KindDesc is the full reflected description of one node kind.
type KindDesc struct {
	Kind   Kind
	Name   string
	Tag    [4]byte
	Fields []FieldDesc
}

// Value is one generic field slot. Only the member matching the
// FieldDesc.Type at that slot is meaningful; the rest are zero.
type Value struct {
	U64   uint64
	F64   float64
	Loc   Pos
	Sym   Sym
	Str   string
	Node  *Node
	Nodes []*Node
}

// Sym is a placeholder for the externally-interned symbol type
// (spec.md §1 names symbol interning a non-goal collaborator). It is
// assumed to be a canonicalized string with pointer identity, so two
// equal symbols compare equal by this pointer.
type Sym = *string

// Pos is a minimal source location, sufficient for diagnostics.
// Tokenizing/parsing is a named external collaborator; this is the
// shape of position information it is assumed to hand the checker.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	if p.File == "" {
		return "<unknown>"
	}
	return p.File + ":" + strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}
