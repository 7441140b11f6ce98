// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"io"

	"github.com/segmentio/encoding/json"

	"github.com/emberlang/semacore/astkind"
	"github.com/emberlang/semacore/diag"
)

// entry is the JSON-marshalable view of a diag.Diagnostic. Diagnostic
// itself can't be marshaled directly: Cause is an error interface with
// no defined JSON shape, and Kind/Severity should render as their
// string names rather than the bare integers a generic marshaler would
// produce for them.
type entry struct {
	Kind     string      `json:"kind"`
	Severity string      `json:"severity"`
	Pos      astkind.Pos `json:"pos"`
	Message  string      `json:"message"`
}

// document is the top-level value written to the JSON stream: a
// single array would also work, but a wrapper object leaves room to
// add a schema version or summary counts later without breaking
// existing consumers that index into an object field instead of a
// bare array.
type document struct {
	Diagnostics []entry `json:"diagnostics"`
}

// JSON renders bag as a single JSON document using segmentio/encoding,
// the same high-throughput JSON codec gopls uses for its own
// structured output.
func JSON(w io.Writer, bag *diag.Bag) error {
	diags := bag.Diagnostics()
	doc := document{Diagnostics: make([]entry, len(diags))}
	for i, d := range diags {
		doc.Diagnostics[i] = entry{
			Kind:     d.Kind.String(),
			Severity: d.Severity.String(),
			Pos:      d.Pos,
			Message:  d.Message,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
