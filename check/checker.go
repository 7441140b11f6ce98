package check

import (
	"github.com/emberlang/semacore/astkind"
	"github.com/emberlang/semacore/diag"
	"github.com/emberlang/semacore/tmplcache"
	"github.com/emberlang/semacore/typeid"
)

// Checker holds all state threaded through one translation unit's walk
// (spec.md §4.F, opening paragraph): the lexical scope stack, the
// parallel narrow-info scope stack, the type-context stack, the
// enclosing function/namespace, and the two deferred work sets
// (postanalyze, didyoumean).
type Checker struct {
	Bag     *diag.Bag
	Interner *typeid.Interner
	Tmpl    *tmplcache.Cache

	scopes       []*scope
	narrowScopes []*narrowScope
	typeCtx      []*astkind.Node

	pkgDecls map[string]*astkind.Node
	nsPath   []*astkind.Node

	fn *astkind.Node

	// memberRef records the field declaration a Member expression
	// resolved to, so storageOf can find it without a Ref field on the
	// Member kind itself (original_source's field_of_member does the
	// equivalent lookup against its own member_t side table).
	memberRef map[*astkind.Node]*astkind.Node

	// postanalyze is the work queue of struct types awaiting ownership
	// propagation (spec.md §4.F.6); additions during drain are appended
	// and honoured until the queue is empty. postanalyzeAll additionally
	// remembers every struct ever queued, including ones already
	// drained, so a struct whose ownership changes late can still find
	// and re-enqueue the structs that embed it.
	postanalyze    []*astkind.Node
	postanalyzeAll []*astkind.Node

	// Hints is consulted before the Levenshtein fallback on an
	// unresolved identifier (spec.md §4.G).
	Hints diag.HintTable

	// templateNest counts nested template *definitions* (not
	// instances) currently being checked; while positive, a
	// template-instance expression is left unexpanded (spec.md §4.F.5
	// step 2).
	templateNest int

	// MainFunc is the package's entry point, a parameterless,
	// receiverless "void main" declared directly at package scope
	// (spec.md §4.F.4), recorded by recognizeSpecialFunc. Nil if this
	// unit declares no such function. cmd/emberchk's driver is the
	// consumer spec.md §9's end-to-end scenario #4 refers to.
	MainFunc *astkind.Node
}

// New returns a checker over one package's declarations. pkgDecls is
// the package's top-level name table, consulted after the lexical
// scope chain misses (spec.md §4.F.1).
func New(in *typeid.Interner, tmpl *tmplcache.Cache, pkgDecls map[string]*astkind.Node) *Checker {
	c := &Checker{
		Bag:       diag.NewBag(),
		Interner:  in,
		Tmpl:      tmpl,
		pkgDecls:  pkgDecls,
		memberRef: make(map[*astkind.Node]*astkind.Node),
	}
	c.pushScope()
	c.pushNarrowScope()
	return c
}

// CheckUnit type-checks every top-level declaration in unit (an Unit
// node), in source order (spec.md §5: "within a unit, checking follows
// AST source order"). It does not drain the postanalyze queue; Drain
// does that.
func (c *Checker) CheckUnit(unit *astkind.Node) {
	fdDecls, _ := astkind.FieldByName(astkind.Unit, "Decls")
	for _, d := range unit.Field(fdDecls).Nodes {
		c.checkDecl(d)
	}
}

// Drain runs the postanalyze pass (spec.md §4.F.6) once every unit in
// the package has been checked. Call it after the last CheckUnit.
func (c *Checker) Drain() {
	c.runPostanalyze()
}

// enqueuePostanalyze queues n for ownership propagation (spec.md
// §4.F.6), if it has not already been queued.
func (c *Checker) enqueuePostanalyze(n *astkind.Node) {
	for _, existing := range c.postanalyzeAll {
		if existing == n {
			return
		}
	}
	c.postanalyzeAll = append(c.postanalyzeAll, n)
	c.postanalyze = append(c.postanalyze, n)
}

func (c *Checker) pushTypeCtx(t *astkind.Node) { c.typeCtx = append(c.typeCtx, t) }
func (c *Checker) popTypeCtx()                 { c.typeCtx = c.typeCtx[:len(c.typeCtx)-1] }
func (c *Checker) currentTypeCtx() *astkind.Node {
	if len(c.typeCtx) == 0 {
		return nil
	}
	return c.typeCtx[len(c.typeCtx)-1]
}

// checkDecl dispatches a package-level or block-level declaration.
// Function, struct, alias, and template declarations each have their
// own entry point; everything else is an ordinary statement.
func (c *Checker) checkDecl(n *astkind.Node) {
	switch n.Kind {
	case astkind.Fun:
		c.checkFunc(n)
	case astkind.Template:
		c.checkTemplateDef(n)
	case astkind.StructType:
		// A struct's fields carry no executable body to check at this
		// stage; their shape is validated the first time something
		// references them (lazy package-scope lookup, spec.md §5). It is
		// still queued for ownership propagation once the whole unit has
		// been walked (spec.md §4.F.6).
		c.enqueuePostanalyze(n)
	case astkind.Alias, astkind.Typedef, astkind.Import:
		// Same lazy-resolution rule as above; neither an alias target
		// nor an import path requires eager checking.
	default:
		c.CheckExpr(n)
	}
}
