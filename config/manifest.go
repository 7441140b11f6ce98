// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the two configuration documents cmd/emberchk
// reads at startup: the package manifest (ember.toml) that tells the
// driver what it is checking, and the report configuration (a YAML
// sibling file) that tells it how to render what it found. Neither
// document is read or interpreted by check itself; check takes already
// resolved Go values, matching spec.md §1's framing of the driver as
// glue around the checker core rather than part of it.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Manifest is the package-level ember.toml document: which language
// version a unit set was written against, which files make up the
// package, and whether warnings should be promoted to hard errors.
type Manifest struct {
	// LangVersion is the semver-ish string (e.g. "1.4") this package
	// declares itself written against. cmd/emberchk validates it
	// against a supported range via golang.org/x/mod/semver before
	// checking begins.
	LangVersion string `toml:"lang_version"`

	// Units lists the source files making up this package, in the
	// order they should be checked. Paths are relative to the
	// manifest's own directory.
	Units []string `toml:"units"`

	// WarningsAsErrors promotes SeverityHelp diagnostics that would
	// otherwise be advisory-only (did-you-mean notes) to a nonzero
	// driver exit status. It never changes what check itself reports,
	// only how cmd/emberchk interprets the resulting Bag.
	WarningsAsErrors bool `toml:"warnings_as_errors"`
}

// LoadManifest parses the ember.toml document at path.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("config: loading manifest %s: %w", path, err)
	}
	if len(m.Units) == 0 {
		return nil, fmt.Errorf("config: manifest %s declares no units", path)
	}
	return &m, nil
}
