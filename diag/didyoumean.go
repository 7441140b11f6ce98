package diag

import (
	"sort"

	"github.com/emberlang/semacore/astkind"
	"golang.org/x/text/unicode/norm"
)

// HintTable is the alternate-name hints list from
// original_source/src/typecheck.c's didyoumean array: a small static
// set of (current name, prior name) pairs consulted before falling
// back to a fuzzy search, for renames where the edit distance between
// old and new names is too large for Levenshtein to find on its own
// (e.g. "print" renamed to "p").
type HintTable []Hint

// Hint records that name is exposed today but was previously known as
// othername, with DeclPos as the site a did-you-mean note should point
// at (matching typecheck.c's dym->decl).
type Hint struct {
	Name      string
	OtherName string
	DeclPos   astkind.Pos
}

// Lookup returns every hint matching name on either its current or
// prior spelling, matching typecheck.c's "dym->name == name ||
// dym->othername == name" exact-match phase.
func (t HintTable) Lookup(name string) []Hint {
	var out []Hint
	for _, h := range t {
		if h.Name == name || h.OtherName == name {
			out = append(out, h)
		}
	}
	return out
}

// Candidate is one name eligible for a fuzzy did-you-mean suggestion,
// e.g. every identifier visible in the current scope chain plus every
// package-scope declaration (spec.md §4.G: "the union of in-scope and
// package-scope names").
type Candidate struct {
	Name string
	Pos  astkind.Pos
}

// scored pairs a Candidate with its edit distance from the query, the
// Go equivalent of typecheck.c's fuzzyent_t.
type scored struct {
	Candidate
	dist int
}

// Suggest runs a Levenshtein search over candidates and returns those
// within maxDist of name, nearest first, matching fuzzy_sort's
// ascending edit-distance order. Ties keep the input's relative order
// (sort.SliceStable), since scope_iterate's visit order in the
// original has no defined tie-break either.
func Suggest(name string, candidates []Candidate, maxDist int) []Candidate {
	// Identifiers are source text and may carry combining marks typed
	// in more than one equivalent form; normalize to NFC before
	// diffing so visually identical names never inflate the edit
	// distance against each other.
	name = norm.NFC.String(name)
	scoredCands := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		d := levenshtein(name, norm.NFC.String(c.Name))
		if d <= maxDist {
			scoredCands = append(scoredCands, scored{c, d})
		}
	}
	sort.SliceStable(scoredCands, func(i, j int) bool {
		return scoredCands[i].dist < scoredCands[j].dist
	})
	out := make([]Candidate, len(scoredCands))
	for i, s := range scoredCands {
		out[i] = s.Candidate
	}
	return out
}

// levenshtein computes the classic edit distance with a rolling
// two-row dynamic-programming table. typecheck.c memoizes with a
// recursive top-down table instead; the iterative bottom-up form here
// is the idiomatic Go rendition of the same recurrence (same O(n*m)
// cost, no recursion depth proportional to name length).
func levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)
	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
