// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package check is the flow-sensitive type checker (component F),
// the postanalyze pass (component G), and the lexical/narrow-info
// scope machinery (component H) from spec.md §4.F–§4.G. It is grounded
// on original_source/src/typecheck.c for the narrowing state machine
// and call-as-type-construction algorithm, and on go/types/predicates.go
// for the per-type-family operator tables.
package check

import (
	"github.com/emberlang/semacore/astkind"
	"github.com/emberlang/semacore/diag"
)

// scope is one lexical frame: a name-to-declaration map plus a parent
// link. Package-scope declarations are looked up separately (see
// Checker.lookupPackage) rather than as the outermost scope frame,
// since they must resolve lazily regardless of declaration order
// (spec.md §5).
type scope struct {
	names  map[string]*astkind.Node
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{names: make(map[string]*astkind.Node), parent: parent}
}

// declare binds name to decl in s, reporting nothing itself; callers
// that must diagnose shadowing/duplicate definitions do so before
// calling declare (duplicate detection needs the checker's Bag, which
// scope deliberately has no access to).
func (s *scope) declare(name string, decl *astkind.Node) {
	s.names[name] = decl
}

// declareChecked binds name to decl in the current scope, reporting
// diag.KindDuplicateDefinition against decl's position when name is
// already bound directly in that scope. Binding in an enclosing scope
// is ordinary shadowing and is not a duplicate.
func (c *Checker) declareChecked(name string, decl *astkind.Node) {
	s := c.currentScope()
	if _, ok := s.names[name]; ok {
		c.Bag.Reportf(diag.KindDuplicateDefinition, decl.Pos, "%q redeclared in this scope", name)
		return
	}
	s.declare(name, decl)
}

// lookup walks s and its ancestors for name.
func (s *scope) lookup(name string) (*astkind.Node, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if n, ok := cur.names[name]; ok {
			return n, true
		}
	}
	return nil, false
}

// pushScope enters a new lexical frame nested in the current one.
func (c *Checker) pushScope() {
	var parent *scope
	if n := len(c.scopes); n > 0 {
		parent = c.scopes[n-1]
	}
	c.scopes = append(c.scopes, newScope(parent))
}

// popScope leaves the current lexical frame.
func (c *Checker) popScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *Checker) currentScope() *scope {
	return c.scopes[len(c.scopes)-1]
}

// lookupLexical searches the live scope chain only (not package-scope
// declarations), matching the id lookup order of spec.md §4.F.1: scope
// first, package-level declarations second.
func (c *Checker) lookupLexical(name string) (*astkind.Node, bool) {
	return c.currentScope().lookup(name)
}

// lookupPackage searches the unit's package-scope declarations, which
// resolve lazily so forward references are always valid regardless of
// source order (spec.md §5).
func (c *Checker) lookupPackage(name string) (*astkind.Node, bool) {
	n, ok := c.pkgDecls[name]
	return n, ok
}
