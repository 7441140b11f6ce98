package check

import (
	"encoding/binary"

	"github.com/emberlang/semacore/astkind"
	"github.com/emberlang/semacore/diag"
	"github.com/emberlang/semacore/tmplcache"
	"github.com/emberlang/semacore/transform"
	"github.com/emberlang/semacore/typeid"
)

var (
	fdTplParams, _            = astkind.FieldByName(astkind.Template, "TemplateParams")
	fdTplBody, _              = astkind.FieldByName(astkind.Template, "Body")
	fdTIArgs, _               = astkind.FieldByName(astkind.TemplateInstance, "TemplateParams")
	fdTIOrigin, _             = astkind.FieldByName(astkind.TemplateInstance, "Origin")
	fdTemplateParamName, _    = astkind.FieldByName(astkind.TemplateParam, "Name")
	fdTemplateParamDefault, _ = astkind.FieldByName(astkind.TemplateParam, "Default")
	fdPlaceholderName, _      = astkind.FieldByName(astkind.Placeholder, "Name")
)

// checkTemplateDef registers a template declaration (spec.md §4.F.5).
// Its body is left unchecked: placeholders stand in for types that are
// only concrete once an instance is created, so checking happens
// lazily, once per distinct argument tuple, inside instantiateIfNeeded.
func (c *Checker) checkTemplateDef(n *astkind.Node) {
	n.Flags |= astkind.TEMPLATE
}

// instantiateIfNeeded resolves a TemplateInstance expression/type node
// in place (spec.md §4.F.5). When the current definition is itself
// nested inside another template's body (templateNest > 0), the
// instance is left as-is: its arguments may themselves reference an
// enclosing placeholder, so there is nothing concrete to substitute
// yet.
func (c *Checker) instantiateIfNeeded(n *astkind.Node) {
	if c.templateNest > 0 {
		return
	}

	origin := n.Field(fdTIOrigin).Node
	args := n.Field(fdTIArgs).Nodes

	// Arguments come in two shapes: a type (the ordinary case, keyed
	// by its typeid), or a constant value for a non-type template
	// parameter (e.g. a fixed array length), keyed by its own encoded
	// literal bytes instead. mangle.c only ever round-trips integer
	// and bool literal constant arguments (SPEC_FULL.md §9); any other
	// constant-expression argument is rejected here rather than
	// guessed at.
	var ids []*typeid.ID
	var constBytes []byte
	for _, a := range args {
		if !a.Flags.Has(astkind.CHECKED) {
			c.CheckExpr(a)
		}
		if a.Kind.IsType() {
			ids = append(ids, c.Interner.Intern(a))
			continue
		}
		if !validConstTemplateArg(a) {
			c.Bag.Reportf(diag.KindUnsupportedTemplateArg, a.Pos,
				"template argument must be an integer or bool literal constant")
			continue
		}
		constBytes = append(constBytes, encodeConstTemplateArg(a)...)
	}

	key := tmplcache.Key(origin, ids) + string(constBytes)
	inst, created := c.Tmpl.GetOrCreate(key, func() *astkind.Node {
		return c.buildInstance(origin, args)
	})

	if created {
		c.checkTemplateInstanceBody(inst)
	}

	mutateInto(n, inst)
}

// validConstTemplateArg reports whether a is one of the literal-only
// constant-argument forms mangle.c round-trips: an integer or bool
// Lit node. Any other non-type argument (a Binop, an Id referring to
// a named constant, ...) is outside the supported subset.
func validConstTemplateArg(a *astkind.Node) bool {
	if a.Kind != astkind.Lit {
		return false
	}
	primKind := astkind.Kind(a.Field(fdLitPrimKind).U64)
	return primKind == astkind.Bool || isIntegerKind(primKind)
}

// encodeConstTemplateArg produces the cache-key bytes for a validated
// constant literal argument: its primitive kind tag followed by its
// raw bit pattern, so Box<3> and Box<4> (same type-argument position,
// different constant value) key to distinct cache entries.
func encodeConstTemplateArg(a *astkind.Node) []byte {
	primKind := astkind.Kind(a.Field(fdLitPrimKind).U64)
	var buf [9]byte
	buf[0] = byte(primKind)
	binary.LittleEndian.PutUint64(buf[1:], a.Field(fdLitUVal).U64)
	return buf[:]
}

// buildInstance substitutes each of origin's template parameters'
// Placeholder occurrences, throughout origin's Body, with the
// matching concrete argument (or its declared default), and returns
// that substituted body (itself cloned with TEMPLATE cleared and
// TEMPLATEI set, spec.md §4.F.5 step 3) as the instance. The
// instance therefore carries the body's own Kind (StructType, Alias,
// Fun, ...) rather than Template, so every other part of this package
// can treat an instantiated generic exactly like its non-generic
// counterpart. It must not check the clone: that happens in
// instantiateIfNeeded, after the half-built instance is already in the
// cache, so a self-referential template terminates.
func (c *Checker) buildInstance(origin *astkind.Node, args []*astkind.Node) *astkind.Node {
	params := origin.Field(fdTplParams).Nodes
	subst := make(map[string]*astkind.Node, len(params))
	for i, p := range params {
		name := p.Field(fdTemplateParamName).Sym
		if name == nil {
			continue
		}
		if i < len(args) {
			subst[*name] = args[i]
		} else if def := p.Field(fdTemplateParamDefault).Node; def != nil {
			subst[*name] = def
		}
	}

	body := origin.Field(fdTplBody).Node
	rewritten := transform.Rewrite(body, func(n *astkind.Node) *astkind.Node {
		if n.Kind != astkind.Placeholder {
			return n
		}
		name := n.Field(fdPlaceholderName).Sym
		if name == nil {
			return n
		}
		if replacement, ok := subst[*name]; ok {
			return replacement
		}
		return n
	})

	inst := rewritten
	if inst == body {
		inst = body.Clone()
	}
	inst.Flags &^= astkind.TEMPLATE
	inst.Flags |= astkind.TEMPLATEI
	inst.ScrubChecked()
	return inst
}

// checkTemplateInstanceBody type-checks the freshly substituted clone
// of a template definition's body, then queues it for ownership
// propagation if it is a struct.
func (c *Checker) checkTemplateInstanceBody(inst *astkind.Node) {
	switch inst.Kind {
	case astkind.StructType:
		// Structural shape only; fields resolve lazily on first use,
		// same as any other struct declaration (spec.md §5).
		c.enqueuePostanalyze(inst)
	case astkind.Alias:
		// Same lazy-resolution rule; the target resolves on first use.
	default:
		c.checkDecl(inst)
	}
}

// mutateInto overwrites dst's header and payload with src's, so every
// existing pointer to dst (held by whatever parent field referenced
// the original TemplateInstance node) observes the resolved instance
// without the caller needing to rewrite that field itself.
func mutateInto(dst, src *astkind.Node) {
	pos := dst.Pos
	*dst = *src
	dst.Pos = pos
	dst.Flags |= astkind.CHECKED
}
