// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package typeid builds a canonical byte-string identity for a type
// node (component B). Equal byte strings imply structural equality;
// the Interner installs a global intern table so equal strings share
// one pointer, which lets callers compare types by pointer.
package typeid

import (
	"encoding/binary"
	"math"

	"github.com/emberlang/semacore/astkind"
)

// ID is an interned, canonical byte string identifying a type up to
// structural equality. The zero value is not meaningful; obtain an ID
// through an Interner.
type ID struct {
	b []byte
}

// Bytes returns the canonical encoding, including its 4-byte length
// prefix.
func (id *ID) Bytes() []byte { return id.b }

func (id *ID) String() string { return string(id.b) }

// Equal reports byte-for-byte equality. Two IDs obtained from the same
// Interner are equal iff they are the same pointer (see Interner); this
// method exists for comparing IDs produced by encoding from scratch,
// which spec.md §8's "sharing implies equality" property exercises.
func Equal(a, b *ID) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return len(a.bytesOrNil()) == len(b.bytesOrNil())
	}
	return string(a.b) == string(b.b)
}

func (id *ID) bytesOrNil() []byte {
	if id == nil {
		return nil
	}
	return id.b
}

// encoder accumulates the body of one top-level type's encoding. stack
// tracks the chain of type nodes currently being encoded, so a
// self-referential type (e.g. a struct with a field of pointer-to-self
// type) can emit a bounded back-reference instead of recursing
// forever.
type encoder struct {
	in    *Interner
	stack []*astkind.Node
}

// encodeBody appends n's tag, masked flags, and identity-carrying
// fields (in reflection order) to buf, per spec.md §4.B steps 2-7. It
// does not include the 4-byte length prefix; callers add that.
func (e *encoder) encodeBody(buf []byte, n *astkind.Node) []byte {
	tg := n.Kind.Tag()
	buf = append(buf, tg[:]...)

	masked := uint64(n.Flags & astkind.TypeidMask)
	buf = appendUvarint(buf, masked)

	for _, fd := range n.Kind.Fields() {
		if !fd.Identity {
			continue
		}
		v := n.Field(fd)
		switch fd.Type {
		case astkind.FU8, astkind.FU16, astkind.FU32, astkind.FU64:
			buf = appendUvarint(buf, v.U64)
		case astkind.FF64:
			buf = appendUvarint(buf, math.Float64bits(v.F64))
		case astkind.FSym:
			buf = e.appendSym(buf, v.Sym)
		case astkind.FSymOpt:
			if v.Sym != nil {
				buf = e.appendSym(buf, v.Sym)
			}
		case astkind.FStr:
			buf = e.appendStr(buf, v.Str)
		case astkind.FStrOpt:
			if v.Str != "" {
				buf = e.appendStr(buf, v.Str)
			}
		case astkind.FNode:
			buf = e.appendNodeRef(buf, v.Node)
		case astkind.FNodeOpt:
			if v.Node != nil {
				buf = e.appendNodeRef(buf, v.Node)
			}
		case astkind.FNodeArray:
			buf = append(buf, '[')
			buf = appendUvarint(buf, uint64(len(v.Nodes)))
			for _, child := range v.Nodes {
				buf = e.appendNodeRef(buf, child)
			}
		case astkind.FLoc:
			// Source locations are never part of identity; nothing to
			// do even if somehow marked Identity by mistake.
		}
	}
	return buf
}

func (e *encoder) appendSym(buf []byte, s astkind.Sym) []byte {
	buf = append(buf, '#')
	buf = appendUvarint(buf, uint64(len(*s)))
	return append(buf, *s...)
}

func (e *encoder) appendStr(buf []byte, s string) []byte {
	buf = append(buf, '"')
	buf = appendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

// appendNodeRef emits referent's canonical encoding inline. A type
// already in progress on the stack produces a back-reference; a type
// not yet interned is encoded and interned first (sharing, per
// spec.md §4.B step 5); either way the emitted bytes are
// self-delimited by their own 4-byte length prefix (or, for a
// back-reference, the '&' tag plus index), so no decoder is ever
// required to split a node-array or a struct's field list apart.
func (e *encoder) appendNodeRef(buf []byte, referent *astkind.Node) []byte {
	for i, p := range e.stack {
		if p == referent {
			buf = append(buf, '&')
			return appendUvarint(buf, uint64(i))
		}
	}
	id := e.in.intern(referent, e.stack)
	return append(buf, id.b...)
}

func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

// encode produces the full self-delimited encoding (length prefix +
// body) for n, given the in-progress stack of its ancestors.
func (in *Interner) encode(n *astkind.Node, ancestors []*astkind.Node) []byte {
	e := &encoder{in: in, stack: append(ancestors, n)}
	body := e.encodeBody(nil, n)

	out := make([]byte, 4, 4+len(body))
	binary.LittleEndian.PutUint32(out, uint32(len(body)))
	out = append(out, body...)
	return out
}
