// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"io"

	"github.com/emberlang/semacore/diag"
)

// Markdown renders bag as a plain markdown document: one bullet per
// diagnostic, in the bag's order, under a single heading that carries
// the total count. Unlike HTML, this
// is never converted or escaped further downstream (it is meant to be
// pasted into a PR comment or README as-is), so diagnostic messages
// are emitted verbatim rather than through goldmark.
func Markdown(w io.Writer, bag *diag.Bag) error {
	diags := bag.Diagnostics()
	if len(diags) == 0 {
		_, err := io.WriteString(w, "No diagnostics.\n")
		return err
	}
	if _, err := fmt.Fprintf(w, "# Diagnostics (%d)\n\n", len(diags)); err != nil {
		return err
	}
	for _, d := range diags {
		if _, err := fmt.Fprintf(w, "- **%s** %s: %s (%s)\n",
			d.Severity, d.Pos, d.Message, d.Kind); err != nil {
			return err
		}
	}
	return nil
}
