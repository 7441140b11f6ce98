package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultReportConfig(t *testing.T) {
	cfg := DefaultReportConfig()
	if cfg.Format != FormatText {
		t.Errorf("default Format = %v, want FormatText", cfg.Format)
	}
	if cfg.Output != "-" {
		t.Errorf("default Output = %q, want \"-\"", cfg.Output)
	}
}

func TestLoadReportConfigOverridesFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.yaml", "format: json\noutput: out.json\n")

	cfg, err := LoadReportConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Format != FormatJSON {
		t.Errorf("Format = %v, want FormatJSON", cfg.Format)
	}
	if cfg.Output != "out.json" {
		t.Errorf("Output = %q, want out.json", cfg.Output)
	}
}

func TestLoadReportConfigRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.yaml", "format: xml\n")

	if _, err := LoadReportConfig(path); err == nil {
		t.Fatal("expected an error for an unrecognized format")
	}
}

func TestLoadReportConfigMissingFile(t *testing.T) {
	if _, err := LoadReportConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing report config file")
	}
}
