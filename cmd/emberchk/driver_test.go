package main

import (
	"context"
	"testing"

	"github.com/emberlang/semacore/astkind"
	"github.com/emberlang/semacore/config"
	"github.com/emberlang/semacore/diag"
)

// fakeFrontend maps a unit path directly to a pre-built astkind.Node,
// standing in for a real parser (an external collaborator this module
// never implements).
type fakeFrontend map[string]*astkind.Node

func (f fakeFrontend) ParseUnit(path string) (*astkind.Node, error) {
	u, ok := f[path]
	if !ok {
		return nil, ErrFrontendUnavailable
	}
	return u, nil
}

func declaredFun(name string) *astkind.Node {
	fdName, _ := astkind.FieldByName(astkind.Fun, "Name")
	n := &astkind.Node{Kind: astkind.Fun}
	sym := name
	n.SetField(fdName, astkind.Value{Sym: &sym})
	return n
}

func unitOf(decls ...*astkind.Node) *astkind.Node {
	fdDecls, _ := astkind.FieldByName(astkind.Unit, "Decls")
	u := &astkind.Node{Kind: astkind.Unit}
	u.SetField(fdDecls, astkind.Value{Nodes: decls})
	return u
}

func TestBuildPkgDeclsCollectsNamesAcrossUnits(t *testing.T) {
	a := unitOf(declaredFun("foo"))
	b := unitOf(declaredFun("bar"))

	bag := diag.NewBag()
	decls := buildPkgDecls([]*astkind.Node{a, b}, bag)
	if len(decls) != 2 {
		t.Fatalf("got %d decls, want 2: %v", len(decls), decls)
	}
	if decls["foo"] == nil || decls["bar"] == nil {
		t.Fatalf("missing expected decl names: %v", decls)
	}
	if bag.ReportedAny() {
		t.Fatalf("unexpected diagnostics for two distinct names: %v", bag.Diagnostics())
	}
}

func TestBuildPkgDeclsReportsCrossUnitDuplicate(t *testing.T) {
	a := unitOf(declaredFun("main"))
	b := unitOf(declaredFun("main"))

	bag := diag.NewBag()
	decls := buildPkgDecls([]*astkind.Node{a, b}, bag)
	if len(decls) != 1 {
		t.Fatalf("got %d decls, want 1: %v", len(decls), decls)
	}
	if !bag.ReportedAny() {
		t.Fatal("expected a duplicate-definition diagnostic for the second fun main")
	}
}

func TestCheckPackageFansOutOverUnits(t *testing.T) {
	fe := fakeFrontend{
		"a.ember": unitOf(declaredFun("foo")),
		"b.ember": unitOf(declaredFun("bar")),
	}
	m := &config.Manifest{Units: []string{"a.ember", "b.ember"}}

	result, err := checkPackage(context.Background(), fe, m)
	if err != nil {
		t.Fatal(err)
	}
	if result.Bag.ReportedAny() {
		t.Fatalf("unexpected diagnostics from two trivial extern-style declarations: %v", result.Bag.Diagnostics())
	}
	if result.MainFunc != nil {
		t.Fatal("neither declared function is named main")
	}
}

func TestCheckPackageSurfacesMainFunc(t *testing.T) {
	fe := fakeFrontend{
		"a.ember": unitOf(declaredFun("main")),
	}
	m := &config.Manifest{Units: []string{"a.ember"}}

	result, err := checkPackage(context.Background(), fe, m)
	if err != nil {
		t.Fatal(err)
	}
	if result.MainFunc == nil {
		t.Fatal("expected the package's fun main to be surfaced as MainFunc")
	}
}

func TestCheckPackagePropagatesFrontendError(t *testing.T) {
	fe := fakeFrontend{}
	m := &config.Manifest{Units: []string{"missing.ember"}}

	if _, err := checkPackage(context.Background(), fe, m); err == nil {
		t.Fatal("expected an error when the frontend cannot parse a unit")
	}
}
