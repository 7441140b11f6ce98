package diag

import (
	"fmt"

	"github.com/emberlang/semacore/astkind"
)

// Diagnostic is one reported error or help note. Message is pre-
// formatted (Reportf's job) rather than left as a format string plus
// args, so report/'s renderers never need to know per-Kind argument
// shapes.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Pos      astkind.Pos
	Message  string

	// Cause is set only for internal (non-user) errors wrapped via
	// Bag.Internal; user-facing diagnostics never set it.
	Cause error
}

func (d Diagnostic) String() string {
	if d.Severity == SeverityHelp {
		return fmt.Sprintf("%s: help: %s", d.Pos, d.Message)
	}
	return fmt.Sprintf("%s: error: %s", d.Pos, d.Message)
}

// Bag collects diagnostics for one checking run, in report order.
// Unlike golang.org/x/tools/go/analysis's Pass.Report (one callback
// per analyzer invocation), Bag is a plain accumulator: the checker
// owns one per translation unit and report/ consumes it whole once
// checking finishes.
type Bag struct {
	diags       []Diagnostic
	reportedAny bool
}

// NewBag returns an empty diagnostic sink.
func NewBag() *Bag { return &Bag{} }

// Reportf appends an error-severity diagnostic and sets the
// reported-any-error flag consulted by spec.md §7's cascade-
// suppression policy.
func (b *Bag) Reportf(kind Kind, pos astkind.Pos, format string, args ...any) {
	b.diags = append(b.diags, Diagnostic{
		Kind:     kind,
		Severity: SeverityError,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
	})
	b.reportedAny = true
}

// Helpf appends a help-severity note, e.g. a did-you-mean suggestion
// attached to the candidate's own declaration site. It does not set
// reported-any-error: a help note alone is never a reason to suppress
// a later cascading error.
func (b *Bag) Helpf(pos astkind.Pos, format string, args ...any) {
	b.diags = append(b.diags, Diagnostic{
		Severity: SeverityHelp,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
	})
}

// ReportedAny reports whether any error-severity diagnostic has been
// added. The checker consults this before emitting a diagnostic whose
// only purpose is to avoid an unhelpful cascade (spec.md §7: "a
// boolean reported-any-error flag is consulted before emitting
// diagnostics").
func (b *Bag) ReportedAny() bool { return b.reportedAny }

// Diagnostics returns every diagnostic reported so far, in report
// order. The returned slice must not be mutated.
func (b *Bag) Diagnostics() []Diagnostic { return b.diags }

// Len reports the number of diagnostics (errors and help notes both).
func (b *Bag) Len() int { return len(b.diags) }

// Append merges other's diagnostics onto the end of b, in order. Used
// by the CLI driver to combine each translation unit's own Bag (one
// per errgroup goroutine, per spec.md §5's per-unit concurrency model)
// into a single sink before rendering.
func (b *Bag) Append(other *Bag) {
	b.diags = append(b.diags, other.diags...)
	b.reportedAny = b.reportedAny || other.reportedAny
}
