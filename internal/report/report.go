// Package report renders run results: the per-variant failure block in the
// layout the suite has always printed, the triage markers consumed by the
// pass-list maintenance tooling, and an optional canonical-JSON run report
// for machine diffing.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	cyberphone "github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/fatih/color"

	"tsconform/internal/checker"
	"tsconform/internal/expect"
	"tsconform/internal/runner"
	"tsconform/internal/stats"
	"tsconform/internal/timing"
)

const separator = "============================================================"

var (
	passColor  = color.New(color.FgGreen, color.Bold)
	failColor  = color.New(color.FgRed, color.Bold)
	crashColor = color.New(color.FgMagenta, color.Bold)
	driftColor = color.New(color.FgYellow, color.Bold)
)

// Printer writes the human-readable report. Notices, triage markers and
// totals echoes go to Out; failure blocks go to Err, keeping the historical
// stdout/stderr split so marker-scraping scripts stay functional.
type Printer struct {
	Out io.Writer
	Err io.Writer

	// PrintMatched extends the failure block with the full golden and
	// actual listings.
	PrintMatched bool
	// PrintAll shows every diagnostic of a failed variant, not only the
	// unmatched ones.
	PrintAll bool
	// Perf suppresses triage markers and totals echoes.
	Perf bool
}

// Test reports every variant outcome of one finished test, in variant
// order.
func (p *Printer) Test(res runner.TestResult) {
	for _, out := range res.Variants {
		p.Variant(out)
	}
}

// Variant reports a single variant outcome.
func (p *Printer) Variant(out runner.VariantOutcome) {
	if out.SidecarMissing {
		fmt.Fprintf(p.Out, "errors file does not exists: %s\n", sidecarOf(out))
	}

	switch out.Kind {
	case runner.OutcomePostponed:
		return
	case runner.OutcomeSuccess:
		p.echoTotals(out)
		return
	case runner.OutcomeCrashed:
		fmt.Fprintf(p.Err, "\n%s\n%s %s: %s\n", separator, crashColor.Sprint("checker panicked in"), label(out), out.CrashReason)
		if out.Err != nil {
			p.drift(out)
		}
		return
	}

	// A failure before any checking happened carries only its error.
	if !out.Recorded {
		fmt.Fprintf(p.Err, "%s %s: %v\n", failColor.Sprint("FAIL"), label(out), out.Err)
		return
	}

	p.echoTotals(out)
	if !out.Result.Success() {
		p.markers(out)
		p.failureBlock(out)
	}
	if out.Err != nil {
		p.drift(out)
	}
}

// failureBlock prints the reconciliation failure in the historical layout:
// separator rule around the shown diagnostics, the unmatched counts, the
// wanted and unwanted lists and, unless withheld, the full listings.
func (p *Printer) failureBlock(out runner.VariantOutcome) {
	var shown []string
	for _, d := range out.Diags {
		if p.PrintAll || containsDiag(out.Result.Extra, d) {
			shown = append(shown, d.String())
		}
	}

	fmt.Fprintf(p.Err, "\n%s %s\n", failColor.Sprint("FAIL"), label(out))
	fmt.Fprintf(p.Err, "%s\n%s\n%s\n", separator, strings.Join(shown, "\n"), separator)
	fmt.Fprintf(p.Err, "%d unmatched errors out of %d errors. Got %d extra errors.\n",
		len(out.Result.Missing), out.Stats.RequiredError, len(out.Result.Extra))
	fmt.Fprintf(p.Err, "%s %v\n%s %v\n",
		failColor.Sprint("Wanted:"), out.Result.Missing,
		driftColor.Sprint("Unwanted:"), out.Result.Extra)
	if p.PrintMatched {
		fmt.Fprintf(p.Err, "\nAll required errors: %v\nAll actual errors: %v\n", out.Golden, out.Diags)
	}
}

// markers emits the triage markers scraped by pass-list maintenance:
// [REMOVE_ONLY] when every golden entry matched and only extras remain,
// [ERROR_CODE_ONLY] when the residues differ in code alone.
func (p *Printer) markers(out runner.VariantOutcome) {
	if p.Perf {
		return
	}
	if len(out.Result.Missing) == 0 {
		fmt.Fprintf(p.Out, "[REMOVE_ONLY]%s\n", out.Fixture)
	}
	if lineSequencesEqual(out.Result.Missing, out.Result.Extra) {
		fmt.Fprintf(p.Out, "[ERROR_CODE_ONLY]%s\n", out.Fixture)
	}
}

func (p *Printer) echoTotals(out runner.VariantOutcome) {
	if p.Perf || !out.Recorded {
		return
	}
	fmt.Fprintf(p.Out, "[TOTAL_STATS] %s", stats.Render(out.Totals))
}

// drift renders a snapshot-gate failure: the baseline next to the fresh
// rendering, never a silent overwrite.
func (p *Printer) drift(out runner.VariantOutcome) {
	var mismatch *stats.MismatchError
	if !errors.As(out.Err, &mismatch) {
		fmt.Fprintf(p.Err, "%s %s: %v\n", failColor.Sprint("FAIL"), label(out), out.Err)
		return
	}
	fmt.Fprintf(p.Err, "%s %s\n", driftColor.Sprint("stats snapshot drift:"), mismatch.Path)
	fmt.Fprintf(p.Err, "baseline:\n%sfresh:\n%s", mismatch.Baseline, mismatch.Fresh)
}

// Summary prints the closing counts and, depending on the profile, the
// aggregate stats or timing totals.
func (p *Printer) Summary(sum *runner.Summary) {
	fmt.Fprintf(p.Out, "\n%s passed, %s failed", passColor.Sprintf("%d", sum.Passed), failColor.Sprintf("%d", sum.Failed))
	if sum.Crashed > 0 {
		fmt.Fprintf(p.Out, " (%s crashed)", crashColor.Sprintf("%d", sum.Crashed))
	}
	fmt.Fprintf(p.Out, ", %d skipped\n", len(sum.Skips))
	if p.Perf {
		fmt.Fprintf(p.Out, "%s", timing.Render(sum.Timings))
		return
	}
	fmt.Fprintf(p.Out, "%s", stats.Render(sum.Totals))
}

func label(out runner.VariantOutcome) string {
	if out.Target != "" {
		return fmt.Sprintf("%s (target=%s)", out.Fixture, out.Target)
	}
	return out.Fixture
}

func sidecarOf(out runner.VariantOutcome) string {
	return filepath.Join(filepath.Dir(out.Fixture), out.Suffix+expect.SidecarTail)
}

func containsDiag(extra []checker.Diagnostic, d checker.Diagnostic) bool {
	for _, e := range extra {
		if e == d {
			return true
		}
	}
	return false
}

func lineSequencesEqual(missing []expect.Error, extra []checker.Diagnostic) bool {
	if len(missing) != len(extra) {
		return false
	}
	for i := range missing {
		if missing[i].Line != extra[i].Line {
			return false
		}
	}
	return true
}

// reportDoc is the machine-readable run report. Field order is irrelevant:
// the canonical form sorts keys.
type reportDoc struct {
	Passed  int         `json:"passed"`
	Failed  int         `json:"failed"`
	Crashed int         `json:"crashed"`
	Totals  stats.Stats `json:"totals"`
	Timings timingDoc   `json:"timings"`
	Tests   []testDoc   `json:"tests"`
	Skips   []skipDoc   `json:"skips"`
}

type timingDoc struct {
	Lines   int   `json:"lines"`
	CheckNS int64 `json:"check_ns"`
	FullNS  int64 `json:"full_ns"`
}

type testDoc struct {
	Path     string       `json:"path"`
	Variants []variantDoc `json:"variants"`
}

type variantDoc struct {
	Suffix  string               `json:"suffix"`
	Target  string               `json:"target,omitempty"`
	Outcome string               `json:"outcome"`
	Stats   stats.Stats          `json:"stats"`
	Missing []expect.Error       `json:"missing,omitempty"`
	Extra   []checker.Diagnostic `json:"extra,omitempty"`
	Error   string               `json:"error,omitempty"`
}

type skipDoc struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Canonical renders the run report in RFC 8785 canonical JSON so that two
// runs over the same corpus diff byte-for-byte.
func Canonical(sum *runner.Summary) ([]byte, error) {
	doc := reportDoc{
		Passed:  sum.Passed,
		Failed:  sum.Failed,
		Crashed: sum.Crashed,
		Totals:  sum.Totals,
		Timings: timingDoc{
			Lines:   sum.Timings.Lines,
			CheckNS: sum.Timings.CheckTime.Nanoseconds(),
			FullNS:  sum.Timings.FullTime.Nanoseconds(),
		},
	}
	for _, res := range sum.Results {
		td := testDoc{Path: filepath.ToSlash(res.Path)}
		for _, out := range res.Variants {
			vd := variantDoc{
				Suffix:  out.Suffix,
				Target:  out.Target,
				Outcome: out.Kind.String(),
				Stats:   out.Stats,
				Missing: out.Result.Missing,
				Extra:   out.Result.Extra,
			}
			if out.Err != nil {
				vd.Error = out.Err.Error()
			}
			if out.CrashReason != "" {
				vd.Error = out.CrashReason
			}
			td.Variants = append(td.Variants, vd)
		}
		doc.Tests = append(doc.Tests, td)
	}
	for _, skip := range sum.Skips {
		doc.Skips = append(doc.Skips, skipDoc{Path: filepath.ToSlash(skip.Path), Reason: skip.Reason.String()})
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode run report: %w", err)
	}
	canon, err := cyberphone.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize run report: %w", err)
	}
	return canon, nil
}
