// Package reconcile matches the diagnostics produced by the checker under
// test against the golden expectation set and classifies the residues.
//
// The matching rule: an actual diagnostic (L, C) satisfies a golden entry E
// iff E.Code == C and E.Line is either L or the wildcard line 0. Matching
// is a deterministic greedy first-fit over both inputs in sorted order, not
// an optimal bipartite matching. That is sufficient: entries sharing
// (line, code) are interchangeable, and reproducibility only needs a
// stable match, not a maximum one. Duplicate (line, code) pairs carry
// multiplicity on both sides.
//
// The implementation indexes the golden set with two multiset maps — one
// keyed by (line, code), one keyed by code alone for wildcard entries —
// holding index queues in sorted order. Because wildcard entries sort
// before every line-exact entry, consulting the wildcard bucket first
// reproduces the first-fit scan over the line-sorted golden list, and
// thereby the historical tie-break: when both a wildcard and a line-exact
// entry exist for one code, the wildcard is consumed first. Each actual
// diagnostic is consumed exactly once (matched or extra), so a
// wildcard-matched diagnostic can never also be retained in the extra set.
package reconcile

import (
	"sort"

	"tsconform/internal/checker"
	"tsconform/internal/expect"
)

// Result classifies one variant's diagnostics after matching.
type Result struct {
	// Matched counts golden entries satisfied by an actual diagnostic;
	// each golden entry is counted at most once.
	Matched int
	// Missing holds golden entries no diagnostic satisfied, sorted by
	// (line, column, code).
	Missing []expect.Error
	// Extra holds diagnostics no golden entry accounts for, sorted by
	// (line, code).
	Extra []checker.Diagnostic
}

// Success reports a strict pass: nothing missing, nothing extra. Residue
// counts carry no partial credit.
func (r Result) Success() bool {
	return len(r.Missing) == 0 && len(r.Extra) == 0
}

type lineCode struct {
	line int
	code string
}

// SortDiagnostics orders actual diagnostics by (line, code).
func SortDiagnostics(diags []checker.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		return diags[i].Code < diags[j].Code
	})
}

// Reconcile matches actual diagnostics against the golden set. Both inputs
// are copied and sorted internally, so the outcome is invariant to the
// caller's ordering.
func Reconcile(expected []expect.Error, actual []checker.Diagnostic) Result {
	golden := make([]expect.Error, len(expected))
	copy(golden, expected)
	expect.Sort(golden)

	diags := make([]checker.Diagnostic, len(actual))
	copy(diags, actual)
	SortDiagnostics(diags)

	wildcard := make(map[string][]int)
	exact := make(map[lineCode][]int)
	for i, e := range golden {
		if e.Line == expect.WildcardLine {
			wildcard[e.Code] = append(wildcard[e.Code], i)
			continue
		}
		key := lineCode{line: e.Line, code: e.Code}
		exact[key] = append(exact[key], i)
	}

	consumed := make([]bool, len(golden))
	var res Result
	for _, d := range diags {
		if q := wildcard[d.Code]; len(q) > 0 {
			consumed[q[0]] = true
			wildcard[d.Code] = q[1:]
			res.Matched++
			continue
		}
		key := lineCode{line: d.Line, code: d.Code}
		if q := exact[key]; len(q) > 0 {
			consumed[q[0]] = true
			exact[key] = q[1:]
			res.Matched++
			continue
		}
		res.Extra = append(res.Extra, d)
	}

	for i, e := range golden {
		if !consumed[i] {
			res.Missing = append(res.Missing, e)
		}
	}
	return res
}
