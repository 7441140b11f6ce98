package check

import "github.com/emberlang/semacore/astkind"

// runPostanalyze drains the struct ownership-propagation queue until
// empty, honouring any additions made during the drain (spec.md
// §4.F.6). A struct that gains SUBOWNERS as a result of draining one
// of its fields is re-enqueued so a containing struct that was
// processed earlier (and therefore saw the old, un-owning state of
// this field) gets a chance to pick up the change too.
func (c *Checker) runPostanalyze() {
	for len(c.postanalyze) > 0 {
		t := c.postanalyze[0]
		c.postanalyze = c.postanalyze[1:]
		if c.propagateOwnership(t) {
			c.postanalyze = append(c.postanalyze, c.dependents(t)...)
		}
	}
}

// propagateOwnership reports whether any field of t is owning (it
// carries DROP or SUBOWNERS itself, is a raw Ptr, or is an Alias whose
// target is owning), and if so sets t.Flags |= SUBOWNERS (unless
// already set). Returns whether SUBOWNERS was newly set.
func (c *Checker) propagateOwnership(t *astkind.Node) bool {
	if t.Flags.Has(astkind.SUBOWNERS) {
		return false
	}
	for _, field := range t.Field(fdStructFields).Nodes {
		ft := field.Field(fdFieldType).Node
		if ft == nil {
			continue
		}
		if fieldIsOwning(ft) {
			t.Flags |= astkind.SUBOWNERS
			return true
		}
	}
	return false
}

func fieldIsOwning(t *astkind.Node) bool {
	switch t.Kind {
	case astkind.Ptr:
		return true
	case astkind.Alias:
		target := t.Field(fdAliasTarget).Node
		return target != nil && fieldIsOwning(target)
	default:
		return t.Flags.Has(astkind.DROP) || t.Flags.Has(astkind.SUBOWNERS)
	}
}

// dependents returns every queued-or-already-processed struct that
// embeds t by value directly in one of its fields, so a late change to
// t's ownership can still reach structs that were drained before it.
// postanalyzeAll, rather than the live queue, is consulted since a
// struct already drained and found non-owning is no longer in
// c.postanalyze.
func (c *Checker) dependents(t *astkind.Node) []*astkind.Node {
	var out []*astkind.Node
	for _, other := range c.postanalyzeAll {
		if other == t {
			continue
		}
		for _, field := range other.Field(fdStructFields).Nodes {
			if field.Field(fdFieldType).Node == t {
				out = append(out, other)
				break
			}
		}
	}
	return out
}
