// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"

	"github.com/emberlang/semacore/astkind"
)

// ErrFrontendUnavailable is returned by the stub Frontend below.
// Tokenizing and parsing are a named external collaborator throughout
// spec.md: this core consumes an already-built *astkind.Node Unit, it
// does not produce one from source text. A real deployment supplies
// its own Frontend implementation (the ember compiler's own parser);
// this binary ships without one rather than faking a parser out of
// scope for this module.
var ErrFrontendUnavailable = errors.New("emberchk: no parser frontend configured (tokenizing/parsing is an external collaborator)")

// Frontend turns one unit's source path into its parsed AST (an
// astkind.Unit node). check consumes the result; it never reads source
// text itself.
type Frontend interface {
	ParseUnit(path string) (*astkind.Node, error)
}

// stubFrontend always fails with ErrFrontendUnavailable. It exists so
// the driver below is complete and wireable end to end without
// pretending to own parsing.
type stubFrontend struct{}

func (stubFrontend) ParseUnit(path string) (*astkind.Node, error) {
	return nil, ErrFrontendUnavailable
}
