// Copyright 2024 The ember authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"io"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"
	"github.com/google/safehtml/uncheckedconversions"
	"github.com/yuin/goldmark"

	"github.com/emberlang/semacore/diag"
)

// explanations holds fixed, developer-authored markdown prose for each
// diag.Kind: background on what the error means and how to fix it.
// This text is never derived from a Diagnostic's own Message, which
// can embed attacker-influenced source substrings (identifier names,
// literal text) copied verbatim from the unit being checked. Only
// this fixed map is ever converted to HTML and trusted as safe; a
// diagnostic's own dynamic fields always go through ordinary
// auto-escaping template interpolation below.
var explanations = map[diag.Kind]string{
	diag.KindUnknownIdentifier:           "No declaration of this name is visible in the current or any enclosing scope. Check for a typo or a missing import.",
	diag.KindDuplicateDefinition:         "This name is already declared in the same scope. Rename one of the two declarations.",
	diag.KindTypeMismatch:                "The expression's type does not match what the surrounding context requires.",
	diag.KindUnassignableType:            "The right-hand side's type cannot be assigned to the left-hand side's declared type.",
	diag.KindIncompatibleTypes:           "The two operand types have no common type the operator can work over.",
	diag.KindNoSuchMember:                "The named member does not exist on this type.",
	diag.KindNoSuchOperator:              "This operator is not defined for the given operand type(s).",
	diag.KindOutOfBoundsConstant:         "This constant does not fit in the target integer type's range.",
	diag.KindOptionalMayBeEmpty:          "This optional value has not been narrowed by an `if let` or an explicit emptiness check before use.",
	diag.KindOptionalIsEmpty:             "This optional value is provably empty on every path reaching this use.",
	diag.KindInvalidSignature:            "This function's declared signature is not well-formed (e.g. a void parameter type).",
	diag.KindArityMismatch:               "The number of arguments does not match the number of declared parameters.",
	diag.KindMutabilityViolation:         "A mutation was attempted through a reference that does not grant mutable access.",
	diag.KindOverflowInIntegerLiteral:    "This integer literal does not fit in its inferred or declared type.",
	diag.KindInternalTypeLeaksFromPublic: "A type with internal (non-public) visibility appears in a publicly visible signature.",
	diag.KindSelfReferentialAlias:        "This alias refers to itself, directly or through a chain of other aliases.",
	diag.KindUnsupportedTemplateArg:      "Only integer and bool literal constants may be passed as template arguments; this argument is some other constant expression.",
}

// explanationHTML is explanations pre-rendered through goldmark once,
// at package init, rather than per report. A conversion failure here
// is a programming error in the fixed text above, not a runtime
// condition callers need to handle.
var explanationHTML = renderExplanations()

func renderExplanations() map[diag.Kind]safehtml.HTML {
	md := goldmark.New()
	out := make(map[diag.Kind]safehtml.HTML, len(explanations))
	for kind, raw := range explanations {
		var buf bytes.Buffer
		if err := md.Convert([]byte(raw), &buf); err != nil {
			panic("report: rendering fixed explanation text: " + err.Error())
		}
		out[kind] = uncheckedconversions.HTMLFromStringKnownToSatisfyTypeContract(buf.String())
	}
	return out
}

// row is the view template.Execute walks. Severity, Pos, Kind, and
// Message are plain strings: safehtml/template auto-escapes them on
// every render, exactly like html/template, so a diagnostic message
// containing e.g. "<script>" from a maliciously named identifier in
// the checked source is rendered inert. Explanation is the one field
// typed safehtml.HTML, and it only ever holds pre-rendered fixed text.
type row struct {
	Severity    string
	Pos         string
	Kind        string
	Message     string
	Explanation safehtml.HTML
}

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Diagnostics</title></head>
<body>
<h1>Diagnostics ({{len .}})</h1>
<ul>
{{range .}}
  <li>
    <strong>{{.Severity}}</strong> {{.Pos}}: {{.Message}} ({{.Kind}})
    <div class="explain">{{.Explanation}}</div>
  </li>
{{end}}
</ul>
</body>
</html>
`))

// HTML renders bag as a self-contained HTML report.
func HTML(w io.Writer, bag *diag.Bag) error {
	diags := bag.Diagnostics()
	rows := make([]row, len(diags))
	for i, d := range diags {
		rows[i] = row{
			Severity:    d.Severity.String(),
			Pos:         d.Pos.String(),
			Kind:        d.Kind.String(),
			Message:     d.Message,
			Explanation: explanationHTML[d.Kind],
		}
	}
	return page.Execute(w, rows)
}
