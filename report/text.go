// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"io"

	"github.com/emberlang/semacore/diag"
)

// Text renders one "pos: severity: message" line per diagnostic,
// matching go vet / go build's own error line shape.
func Text(w io.Writer, bag *diag.Bag) error {
	for _, d := range bag.Diagnostics() {
		if _, err := fmt.Fprintln(w, d.String()); err != nil {
			return err
		}
	}
	return nil
}
