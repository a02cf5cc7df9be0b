package runner

import (
	"time"

	"tsconform/internal/checker"
	"tsconform/internal/expect"
	"tsconform/internal/reconcile"
	"tsconform/internal/stats"
)

// OutcomeKind classifies how one variant ended.
type OutcomeKind int

const (
	// OutcomeSuccess: every golden entry matched, no extras, snapshot
	// baseline intact.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeFailure: residues after reconciliation, a fixture error, or
	// snapshot drift under CI.
	OutcomeFailure
	// OutcomeCrashed: the checker panicked; counted exactly once in the
	// panic column, siblings unaffected.
	OutcomeCrashed
	// OutcomePostponed: multi-file fixture, recorded but not checked.
	OutcomePostponed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeCrashed:
		return "crashed"
	case OutcomePostponed:
		return "postponed"
	default:
		return "unknown"
	}
}

// VariantOutcome is the structured result of one (fixture, variant)
// execution. A crash is data here, not control flow: the recover at the
// variant boundary folds the panic into Kind and CrashReason.
type VariantOutcome struct {
	Fixture string
	// Suffix names the variant's sidecar stem; the per-variant snapshot
	// lives next to the fixture as <Suffix>.stats.snap.
	Suffix string
	// Target is the raw target label, empty for single-variant fixtures.
	Target string

	Kind  OutcomeKind
	Stats stats.Stats

	// Result, Golden and Diags feed the failure report. Golden carries
	// the shifted, sorted expectation set; Diags the sorted actuals.
	Result reconcile.Result
	Golden []expect.Error
	Diags  []checker.Diagnostic

	// SidecarMissing notes that the golden sidecar did not exist (an
	// empty expectation set, not an error).
	SidecarMissing bool

	// Err holds a fixture error or snapshot drift; CrashReason the
	// recovered panic value.
	Err         error
	CrashReason string

	CheckTime time.Duration
	FullTime  time.Duration
	Lines     int

	// Totals are the aggregate counters as of this variant's record;
	// Recorded is false when nothing entered the aggregate (pre-load
	// failures, postponements outside full-suite runs).
	Totals   stats.Stats
	Recorded bool
}

// Failed reports whether the variant counts against the run.
func (o VariantOutcome) Failed() bool {
	return o.Kind == OutcomeFailure || o.Kind == OutcomeCrashed
}

// TestResult groups the variant outcomes of one fixture.
type TestResult struct {
	Path     string
	Variants []VariantOutcome
	Elapsed  time.Duration
}

// Failed reports whether any variant failed or crashed.
func (t TestResult) Failed() bool {
	for _, v := range t.Variants {
		if v.Failed() {
			return true
		}
	}
	return false
}

// Crashed reports whether any variant crashed.
func (t TestResult) Crashed() bool {
	for _, v := range t.Variants {
		if v.Kind == OutcomeCrashed {
			return true
		}
	}
	return false
}

// SkipReason explains a plan-phase exclusion.
type SkipReason int

const (
	// SkipIgnored: the path matches the ignore list.
	SkipIgnored SkipReason = iota
	// SkipFiltered: a test filter is active and the path misses it.
	SkipFiltered
	// SkipUnlisted: the path matches no pass-list entry.
	SkipUnlisted
	// SkipVariantProbe: the variant loader failed or panicked.
	SkipVariantProbe
	// SkipParseFailed: the fixture does not parse; not applicable.
	SkipParseFailed
	// SkipParserTest: the golden set belongs to the parser suite.
	SkipParserTest
	// SkipUnreadable: the fixture source could not be read.
	SkipUnreadable
)

func (r SkipReason) String() string {
	switch r {
	case SkipIgnored:
		return "ignored"
	case SkipFiltered:
		return "filtered"
	case SkipUnlisted:
		return "unlisted"
	case SkipVariantProbe:
		return "variant probe failed"
	case SkipParseFailed:
		return "parse failed"
	case SkipParserTest:
		return "parser test"
	case SkipUnreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// Skip records one excluded candidate.
type Skip struct {
	Path   string
	Reason SkipReason
}
