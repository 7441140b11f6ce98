// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command emberchk loads a package manifest, checks every declared
// unit, and renders the resulting diagnostics. Tokenizing and parsing
// source text is a named external collaborator (spec.md §1): this
// driver wires together the pieces semacore itself owns (manifest
// and report-config loading, the checker, diagnostic rendering, and
// an optional -watch loop) around a pluggable Frontend rather than
// including a parser of its own.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"golang.org/x/mod/semver"

	"github.com/emberlang/semacore/config"
	"github.com/emberlang/semacore/report"
)

var (
	manifestFlag   = flag.String("manifest", "ember.toml", "path to the package manifest")
	reportCfgFlag  = flag.String("report-config", "", "path to a YAML report configuration (optional)")
	formatFlag     = flag.String("format", "", "override the report format (text, json, html, markdown)")
	watchFlag      = flag.Bool("watch", false, "recheck whenever a unit file changes")
	langVersion    = flag.String("langversion", "", "require this exact language version (overrides the manifest's own)")
	minLangVersion = "v1.0"
	maxLangVersion = "v1.4"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: emberchk [flags]

emberchk type-checks the units listed in a package manifest and
reports diagnostics in the configured format.

Flags:

`)
	flag.PrintDefaults()
}

func main() {
	log.SetPrefix("emberchk: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	m, err := config.LoadManifest(*manifestFlag)
	if err != nil {
		return err
	}

	version := m.LangVersion
	if *langVersion != "" {
		version = *langVersion
	}
	if err := validateLangVersion(version); err != nil {
		return err
	}

	var rcfg config.ReportConfig
	if *reportCfgFlag != "" {
		rcfg, err = config.LoadReportConfig(*reportCfgFlag)
		if err != nil {
			return err
		}
	} else {
		rcfg = config.DefaultReportConfig()
	}
	if *formatFlag != "" {
		rcfg.Format = config.Format(*formatFlag)
	}

	writer, ok := report.ForFormat(string(rcfg.Format))
	if !ok {
		return fmt.Errorf("emberchk: unknown report format %q", rcfg.Format)
	}

	fe := stubFrontend{}

	if !*watchFlag {
		failed, err := checkAndReport(context.Background(), fe, m, rcfg, writer)
		if err != nil {
			return err
		}
		if failed {
			os.Exit(1)
		}
		return nil
	}

	recheck := func() {
		// In -watch mode a failing check is reported, not fatal: the
		// loop keeps running so the next save can succeed.
		if _, err := checkAndReport(context.Background(), fe, m, rcfg, writer); err != nil {
			log.Print(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return watch(ctx, m, recheck)
}

// validateLangVersion rejects a language version outside the range
// this checker core understands, using golang.org/x/mod/semver's
// comparison rather than a hand-rolled dotted-number parser.
func validateLangVersion(v string) error {
	if v == "" {
		return fmt.Errorf("emberchk: no language version in manifest or -langversion")
	}
	if v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("emberchk: %q is not a valid semantic version", v)
	}
	if semver.Compare(v, minLangVersion) < 0 || semver.Compare(v, maxLangVersion) > 0 {
		return fmt.Errorf("emberchk: language version %s is outside the supported range [%s, %s]", v, minLangVersion, maxLangVersion)
	}
	return nil
}

// checkAndReport runs one full check-and-render cycle, returning
// whether the run should be treated as a failure (reportable to the
// OS via a nonzero exit status by the caller) alongside any error
// encountered actually running it.
func checkAndReport(ctx context.Context, fe Frontend, m *config.Manifest, rcfg config.ReportConfig, writer report.Writer) (failed bool, err error) {
	result, err := checkPackage(ctx, fe, m)
	if err != nil {
		return false, err
	}
	bag := result.Bag

	if result.MainFunc != nil {
		log.Printf("entry point at %s", result.MainFunc.Pos)
	}

	var out *os.File = os.Stdout
	if rcfg.Output != "" && rcfg.Output != "-" {
		f, err := os.Create(rcfg.Output)
		if err != nil {
			return false, err
		}
		defer f.Close()
		out = f
	}
	if err := writer(out, bag); err != nil {
		return false, err
	}

	failed = bag.ReportedAny() || (m.WarningsAsErrors && bag.Len() > 0)
	return failed, nil
}
