// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diag holds the checker's diagnostic vocabulary: the typed
// error kinds reported by check (component I / spec.md §7), a sink
// ("Bag") that collects them with source positions, the did-you-mean
// search used for unresolved identifiers, and xerrors-chained wrapping
// for internal (non-user-facing) failures.
//
// Grounded on golang.org/x/tools/go/analysis's Pass.Report-into-a-sink
// pattern, generalized from analysis.Diagnostic's single free-text
// Message into a typed Kind alongside a pre-formatted Message, so
// report/ can render machine-readable JSON keyed by kind without
// parsing prose back out of a string.
package diag

// Kind enumerates every error the checker can report, unchanged from
// spec.md §7.
type Kind uint8

const (
	KindUnknownIdentifier Kind = iota
	KindDuplicateDefinition
	KindTypeMismatch
	KindUnassignableType
	KindIncompatibleTypes
	KindNoSuchMember
	KindNoSuchOperator
	KindOutOfBoundsConstant
	KindOptionalMayBeEmpty
	KindOptionalIsEmpty
	KindInvalidSignature
	KindArityMismatch
	KindMutabilityViolation
	KindOverflowInIntegerLiteral
	KindInternalTypeLeaksFromPublic
	KindSelfReferentialAlias
	// KindUnsupportedTemplateArg is a supplemented kind (SPEC_FULL.md
	// §9): a template instantiation's constant argument is not an
	// integer or bool literal, the only forms mangle.c round-trips.
	KindUnsupportedTemplateArg
	numKinds
)

var kindNames = [numKinds]string{
	KindUnknownIdentifier:           "unknown identifier",
	KindDuplicateDefinition:         "duplicate definition",
	KindTypeMismatch:                "type mismatch",
	KindUnassignableType:            "unassignable type",
	KindIncompatibleTypes:           "incompatible types",
	KindNoSuchMember:                "no such member",
	KindNoSuchOperator:              "no such operator",
	KindOutOfBoundsConstant:         "constant out of bounds",
	KindOptionalMayBeEmpty:          "optional may be empty",
	KindOptionalIsEmpty:             "optional is empty",
	KindInvalidSignature:            "invalid signature",
	KindArityMismatch:               "arity mismatch",
	KindMutabilityViolation:         "mutability violation",
	KindOverflowInIntegerLiteral:    "overflow in integer literal",
	KindInternalTypeLeaksFromPublic: "internal type leaks from public API",
	KindSelfReferentialAlias:        "self-referential alias",
	KindUnsupportedTemplateArg:      "unsupported template argument",
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return "diag.Kind(?)"
	}
	return kindNames[k]
}

// Severity distinguishes a hard error from an advisory note attached
// to one (e.g. a did-you-mean suggestion, which typecheck.c reports as
// a separate "help" call against the candidate's own declaration site).
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityHelp
)

func (s Severity) String() string {
	if s == SeverityHelp {
		return "help"
	}
	return "error"
}
