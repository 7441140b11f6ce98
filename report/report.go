// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report renders a diag.Bag for a human or a machine
// consumer. Rendering itself is a named external collaborator in
// spec.md §1 (the checker only produces diagnostics, it does not
// format them), so everything here is glue built on top of diag's
// public types rather than a component spec.md's invariants bind.
package report

import (
	"io"

	"github.com/emberlang/semacore/diag"
)

// Writer renders a Bag's diagnostics to w, returning the first write
// error encountered, if any.
type Writer func(w io.Writer, bag *diag.Bag) error

// ForFormat resolves a config.Format string (text/json/html/markdown)
// to the Writer that implements it. cmd/emberchk owns the string-to-
// Format mapping; report only needs the four concrete writers.
func ForFormat(format string) (Writer, bool) {
	switch format {
	case "text":
		return Text, true
	case "json":
		return JSON, true
	case "html":
		return HTML, true
	case "markdown":
		return Markdown, true
	default:
		return nil, false
	}
}
