// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transform is the generic AST rewrite primitive (component E):
// given a root and a visit function, it produces a (possibly new) root
// where only the subtrees visit actually changed are recloned. It is the
// sole substrate template expansion (check's buildInstance) uses to
// substitute placeholder types with concrete arguments.
//
// Grounded on go/ast/inspector/walk.go's kind-dispatch descent, but
// generalized from that file's fixed switch into a walk driven by
// astkind's reflection table, since this transform must work uniformly
// across every node kind without a bespoke case for each one.
package transform

import "github.com/emberlang/semacore/astkind"

// Visitor is called once per node encountered during a Rewrite. If it
// returns a pointer different from its argument, that pointer replaces
// the input at its slot and the transform does not descend into it
// further (the replacement is assumed already in whatever state the
// caller wants, e.g. already a concrete argument type).
type Visitor func(n *astkind.Node) *astkind.Node

// Rewrite applies visit to root and, recursively, to every node or
// node-array field reachable from it (per astkind's reflection table).
// A node whose descent produced no change is returned verbatim (same
// pointer); one whose descent changed any child is shallow-cloned with
// its CHECKED flag and cached typeid scrubbed (astkind.Node.Clone +
// ScrubChecked already arrange for this; see the field-by-field note
// below for why no further kind-specific scrubbing is needed).
func Rewrite(root *astkind.Node, visit Visitor) *astkind.Node {
	return rewrite(root, visit)
}

func rewrite(n *astkind.Node, visit Visitor) *astkind.Node {
	if n == nil {
		return nil
	}
	if repl := visit(n); repl != n {
		return repl
	}

	fields := n.Kind.Fields()
	var newFields []astkind.Value
	changed := false

	for _, fd := range fields {
		switch fd.Type {
		case astkind.FNode:
			v := n.Field(fd)
			rewritten := rewrite(v.Node, visit)
			if rewritten != v.Node {
				changed = ensureCopy(&newFields, n.Fields, changed)
				newFields[fd.Index] = astkind.Value{Node: rewritten}
			}
		case astkind.FNodeOpt:
			v := n.Field(fd)
			if v.Node == nil {
				continue
			}
			rewritten := rewrite(v.Node, visit)
			if rewritten != v.Node {
				changed = ensureCopy(&newFields, n.Fields, changed)
				newFields[fd.Index] = astkind.Value{Node: rewritten}
			}
		case astkind.FNodeArray:
			v := n.Field(fd)
			if len(v.Nodes) == 0 {
				continue
			}
			arrChanged := false
			out := make([]*astkind.Node, len(v.Nodes))
			for i, c := range v.Nodes {
				rc := rewrite(c, visit)
				out[i] = rc
				if rc != c {
					arrChanged = true
				}
			}
			if arrChanged {
				changed = ensureCopy(&newFields, n.Fields, changed)
				newFields[fd.Index] = astkind.Value{Nodes: out}
			}
		default:
			// Non-node fields (u8/u16/.../sym/str/loc) cannot themselves
			// contain nodes to descend into.
		}
	}

	if !changed {
		return n
	}

	clone := n.Clone()
	clone.Fields = newFields
	// Every cloned node has CHECKED and its cached typeid scrubbed.
	// Because a parent is only cloned when one of its children already
	// changed, every ancestor along the altered path is, transitively,
	// also cloned and scrubbed here, satisfying spec.md §4.E's
	// "ancestors along the altered path" rule without a separate pass.
	// Primitive-type and placeholder-type nodes have no node-valued
	// fields to descend into, so they are never spuriously rewritten or
	// cloned by this function; they only change when visit itself
	// replaces them.
	clone.ScrubChecked()
	return clone
}

func ensureCopy(dst *[]astkind.Value, src []astkind.Value, already bool) bool {
	if !already {
		*dst = append([]astkind.Value(nil), src...)
	}
	return true
}
