// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package astkind is the AST reflection table: for every node kind it
// records a stable 4-byte tag and an ordered list of field descriptors.
// typeid and transform are both built on top of this table instead of a
// hand-written switch per kind, so the kind-tag table, the field tables,
// and the identity rules stay mechanically in sync (see the "reflection
// table" design note).
package astkind

import "fmt"

// Kind identifies the shape of an AST node. The numeric value is an
// implementation detail of this build and is never persisted; Tag is the
// stable, versioned identifier for cross-module and on-disk use.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Primitive types.
	Void
	Bool
	I8
	I16
	I32
	I64
	Int
	U8
	U16
	U32
	U64
	Uint
	F32
	F64
	Unknown

	// Composite types.
	Ptr
	Ref
	MutRef
	Optional
	Array
	Slice
	MutSlice
	FuncType
	StructType
	Alias
	Namespace
	Template
	TemplateInstance
	Placeholder
	Unresolved

	// Expressions.
	Id
	NamespaceExpr
	Lit
	ArrayLit
	StringLit
	Binop
	PrefixOp
	PostfixOp
	Deref
	Call
	Typecons
	Member
	Subscript
	If
	For
	Return
	Block
	Fun
	Field
	Param
	Var
	Let

	// Statements.
	Import
	Typedef
	Unit
	TemplateParam

	numKinds
)

// IsPrimitive reports whether k is one of the fixed-width or platform
// primitive type kinds (including the unknown placeholder).
func (k Kind) IsPrimitive() bool { return k >= Void && k <= Unknown }

// IsType reports whether k denotes a type (primitive or composite),
// as opposed to an expression or statement kind.
func (k Kind) IsType() bool { return k >= Void && k <= Unresolved }

// IsUserType reports whether k is one of the kinds that carries a
// template-parameter (or, for an instance, argument) list.
func (k Kind) IsUserType() bool {
	switch k {
	case StructType, Alias, FuncType, Array, Slice, Optional, Ptr, Ref, Template, TemplateInstance:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	if d, ok := descs[k]; ok {
		return d.Name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Tag returns the 4-byte stable tag for k. It panics for an
// unregistered kind; every Kind in the enumeration above is registered
// by the init() in table.go.
func (k Kind) Tag() [4]byte {
	d, ok := descs[k]
	if !ok {
		panic(fmt.Sprintf("astkind: kind %d has no descriptor", k))
	}
	return d.Tag
}

// KindForTag is the inverse of Tag, used when decoding a persisted
// typeid or when a consumer needs to round-trip a tag it has read back.
func KindForTag(tag [4]byte) (Kind, bool) {
	k, ok := tagToKind[tag]
	return k, ok
}

// Fields returns the ordered field descriptors for k.
func (k Kind) Fields() []FieldDesc {
	d, ok := descs[k]
	if !ok {
		return nil
	}
	return d.Fields
}
