// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/emberlang/semacore/astkind"
	"github.com/emberlang/semacore/check"
	"github.com/emberlang/semacore/config"
	"github.com/emberlang/semacore/diag"
	"github.com/emberlang/semacore/tmplcache"
	"github.com/emberlang/semacore/typeid"
)

// packageNameOf returns the top-level name a declaration introduces,
// using the reflection table rather than a type switch so a new decl
// kind needs no change here (matches astkind.FieldByName's own intent:
// one generic accessor instead of per-kind plumbing).
func packageNameOf(decl *astkind.Node) (string, bool) {
	fd, ok := astkind.FieldByName(decl.Kind, "Name")
	if !ok {
		return "", false
	}
	sym := decl.Field(fd).Sym
	if sym == nil {
		return "", false
	}
	return *sym, true
}

// buildPkgDecls runs a single-threaded pass over every parsed unit,
// collecting the package-wide top-level name table each per-unit
// Checker consults after its own lexical scope chain misses (spec.md
// §4.F.1). This must finish before any CheckUnit call starts, and the
// resulting map is read-only for the remainder of the run, the same
// two-phase shape go/types uses (collect object names across a whole
// package, then type-check each file against the shared Info/Scope).
//
// A name already present in decls is a cross-unit duplicate definition
// (spec.md §7's end-to-end scenario #4: a second top-level `fun main`
// in the same package) and is reported into bag against the later
// declaration's position rather than silently overwriting the first.
func buildPkgDecls(units []*astkind.Node, bag *diag.Bag) map[string]*astkind.Node {
	fdDecls, _ := astkind.FieldByName(astkind.Unit, "Decls")
	decls := make(map[string]*astkind.Node)
	for _, unit := range units {
		for _, d := range unit.Field(fdDecls).Nodes {
			name, ok := packageNameOf(d)
			if !ok {
				continue
			}
			if _, dup := decls[name]; dup {
				bag.Reportf(diag.KindDuplicateDefinition, d.Pos, "%q redeclared at package scope", name)
				continue
			}
			decls[name] = d
		}
	}
	return decls
}

// PackageResult is what checking a whole package produces: the merged
// diagnostics plus, if spec.md §4.F.4 recognized one, the package's
// entry point.
type PackageResult struct {
	Bag      *diag.Bag
	MainFunc *astkind.Node
}

// checkPackage parses every unit path in m.Units through fe, then
// checks each parsed unit concurrently via errgroup. Each unit gets
// its own *check.Checker: a Checker's scope and narrow-scope stacks
// are plain mutable slices with no internal synchronization, so a
// single shared instance could not safely serve concurrent CheckUnit
// calls. What IS shared across goroutines is already safe to share:
// typeid.Interner and tmplcache.Cache are both mutex-guarded
// internally, and pkgDecls is built in the single-threaded pass above
// and only ever read during checking.
//
// A consequence of per-unit Checkers: each Checker's own postanalyze
// drain (check/postanalyze.go) only ever sees structs declared inside
// that one unit. A struct in unit A that embeds by value a struct
// declared in unit B of the same package will not have ownership
// propagated across that boundary. This is a deliberate simplification
// for a single-package driver, not a general cross-unit coordinator;
// see DESIGN.md.
func checkPackage(ctx context.Context, fe Frontend, m *config.Manifest) (*PackageResult, error) {
	units := make([]*astkind.Node, len(m.Units))
	for i, path := range m.Units {
		u, err := fe.ParseUnit(path)
		if err != nil {
			return nil, fmt.Errorf("emberchk: parsing %s: %w", path, err)
		}
		units[i] = u
	}

	pkgBag := diag.NewBag()
	pkgDecls := buildPkgDecls(units, pkgBag)
	interner := typeid.NewInterner()
	tmpl := tmplcache.New()

	bags := make([]*diag.Bag, len(units))
	mains := make([]*astkind.Node, len(units))
	g, _ := errgroup.WithContext(ctx)
	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			c := check.New(interner, tmpl, pkgDecls)
			c.CheckUnit(unit)
			c.Drain()
			bags[i] = c.Bag
			mains[i] = c.MainFunc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := diag.NewBag()
	result.Append(pkgBag)
	for _, b := range bags {
		result.Append(b)
	}

	var mainFunc *astkind.Node
	for _, m := range mains {
		if m != nil {
			mainFunc = m
			break
		}
	}
	return &PackageResult{Bag: result, MainFunc: mainFunc}, nil
}
