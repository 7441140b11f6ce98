// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Format selects one of report's renderers.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// ReportConfig is the YAML sibling of Manifest: how to render the
// diagnostics a checking run produces. Kept as a separate document
// (rather than fields on Manifest) because it is the part a CI
// pipeline typically overrides per invocation while the manifest
// itself stays checked in.
type ReportConfig struct {
	Format Format `yaml:"format"`

	// Output is the destination file path, or "-" for stdout.
	Output string `yaml:"output"`
}

// DefaultReportConfig is what cmd/emberchk falls back to when no
// report-config file is given.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{Format: FormatText, Output: "-"}
}

// LoadReportConfig parses the YAML report-configuration document at
// path. A missing Output defaults to stdout.
func LoadReportConfig(path string) (ReportConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ReportConfig{}, fmt.Errorf("config: loading report config %s: %w", path, err)
	}
	cfg := DefaultReportConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ReportConfig{}, fmt.Errorf("config: parsing report config %s: %w", path, err)
	}
	switch cfg.Format {
	case FormatText, FormatJSON, FormatHTML, FormatMarkdown:
	default:
		return ReportConfig{}, fmt.Errorf("config: report config %s: unknown format %q", path, cfg.Format)
	}
	return cfg, nil
}
