package diag

import (
	"fmt"

	"github.com/emberlang/semacore/astkind"
	"golang.org/x/xerrors"
)

// Internal records an internal failure (allocator exhaustion, interner
// corruption) as a diagnostic that wraps the underlying Go error with
// golang.org/x/xerrors, so a "%+v" of the returned error prints a
// frame. This mirrors x/tools/gopls's own reliance on x/xerrors ahead
// of the stdlib gaining wrapping ergonomics; unlike user-facing
// diagnostics, internal errors are a programmer-visible signal, not a
// checked-program signal, so they carry a Go error rather than just
// prose.
func (b *Bag) Internal(pos astkind.Pos, cause error, context string) error {
	wrapped := xerrors.Errorf("%s: %w", context, cause)
	b.diags = append(b.diags, Diagnostic{
		Severity: SeverityError,
		Pos:      pos,
		Message:  fmt.Sprintf("internal error: %s", context),
		Cause:    wrapped,
	})
	b.reportedAny = true
	return wrapped
}
