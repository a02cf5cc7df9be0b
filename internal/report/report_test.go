package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tsconform/internal/checker"
	"tsconform/internal/expect"
	"tsconform/internal/reconcile"
	"tsconform/internal/runner"
	"tsconform/internal/stats"
	"tsconform/internal/timing"
)

func plainPrinter(t *testing.T) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
	out, errW := &bytes.Buffer{}, &bytes.Buffer{}
	return &Printer{Out: out, Err: errW}, out, errW
}

func failedOutcome() runner.VariantOutcome {
	return runner.VariantOutcome{
		Fixture: "tests/conformance/sample.ts",
		Suffix:  "sample",
		Kind:    runner.OutcomeFailure,
		Stats:   stats.Stats{RequiredError: 3, MatchedError: 1, ExtraError: 1},
		Result: reconcile.Result{
			Matched: 1,
			Missing: []expect.Error{
				{Line: 5, Column: 1, Code: "TS2322"},
				{Line: 7, Column: 2, Code: "TS2304"},
			},
			Extra: []checker.Diagnostic{{Line: 9, Code: "TS2551"}},
		},
		Golden: []expect.Error{
			{Line: 3, Column: 1, Code: "TS2304"},
			{Line: 5, Column: 1, Code: "TS2322"},
			{Line: 7, Column: 2, Code: "TS2304"},
		},
		Diags: []checker.Diagnostic{
			{Line: 3, Code: "TS2304"},
			{Line: 9, Code: "TS2551"},
		},
		Recorded: true,
		Totals:   stats.Stats{RequiredError: 3, MatchedError: 1, ExtraError: 1},
	}
}

func TestFailureBlockLayout(t *testing.T) {
	p, out, errW := plainPrinter(t)
	p.Variant(failedOutcome())

	text := errW.String()
	for _, want := range []string{
		"FAIL tests/conformance/sample.ts",
		separator,
		"2 unmatched errors out of 3 errors. Got 1 extra errors.",
		"Wanted: [TS2322@5:1 TS2304@7:2]",
		"Unwanted: [TS2551@9]",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("failure block missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "All required errors:") {
		t.Error("full listings printed without PrintMatched")
	}

	// Only the unmatched diagnostic is shown between the separators.
	body := text[strings.Index(text, separator):strings.LastIndex(text, separator)]
	if !strings.Contains(body, "TS2551@9") {
		t.Errorf("extra diagnostic not shown:\n%s", body)
	}
	if strings.Contains(body, "TS2304@3") {
		t.Errorf("matched diagnostic shown without PRINT_ALL:\n%s", body)
	}

	if !strings.Contains(out.String(), "[TOTAL_STATS] Stats {") {
		t.Errorf("no totals echo on stdout:\n%s", out.String())
	}
}

func TestFailureBlockPrintAllAndMatched(t *testing.T) {
	p, _, errW := plainPrinter(t)
	p.PrintAll = true
	p.PrintMatched = true
	p.Variant(failedOutcome())

	text := errW.String()
	body := text[strings.Index(text, separator):strings.LastIndex(text, separator)]
	if !strings.Contains(body, "TS2304@3") || !strings.Contains(body, "TS2551@9") {
		t.Errorf("PRINT_ALL did not show every diagnostic:\n%s", body)
	}
	if !strings.Contains(text, "All required errors: [TS2304@3:1 TS2322@5:1 TS2304@7:2]") {
		t.Errorf("no golden listing:\n%s", text)
	}
	if !strings.Contains(text, "All actual errors: [TS2304@3 TS2551@9]") {
		t.Errorf("no actual listing:\n%s", text)
	}
}

func TestFailureLabelCarriesTarget(t *testing.T) {
	p, _, errW := plainPrinter(t)
	out := failedOutcome()
	out.Target = "es5"
	out.Suffix = "sample(target=es5)"
	p.Variant(out)

	if !strings.Contains(errW.String(), "FAIL tests/conformance/sample.ts (target=es5)") {
		t.Errorf("label missing target:\n%s", errW.String())
	}
}

func TestMarkerRemoveOnly(t *testing.T) {
	p, out, _ := plainPrinter(t)
	o := failedOutcome()
	o.Result.Missing = nil
	p.Variant(o)

	if !strings.Contains(out.String(), "[REMOVE_ONLY]tests/conformance/sample.ts") {
		t.Errorf("no REMOVE_ONLY marker:\n%s", out.String())
	}
	if strings.Contains(out.String(), "[ERROR_CODE_ONLY]") {
		t.Error("ERROR_CODE_ONLY fired with unequal residues")
	}
}

func TestMarkerErrorCodeOnly(t *testing.T) {
	p, out, _ := plainPrinter(t)
	o := failedOutcome()
	o.Result.Missing = []expect.Error{{Line: 9, Column: 1, Code: "TS2322"}}
	p.Variant(o)

	if !strings.Contains(out.String(), "[ERROR_CODE_ONLY]tests/conformance/sample.ts") {
		t.Errorf("no ERROR_CODE_ONLY marker:\n%s", out.String())
	}
	if strings.Contains(out.String(), "[REMOVE_ONLY]") {
		t.Error("REMOVE_ONLY fired with a missing residue")
	}
}

func TestPerfProfileSuppressesMarkersAndEcho(t *testing.T) {
	p, out, errW := plainPrinter(t)
	p.Perf = true
	p.Variant(failedOutcome())

	if out.Len() != 0 {
		t.Errorf("perf profile wrote to stdout:\n%s", out.String())
	}
	// The failure itself is still reported.
	if !strings.Contains(errW.String(), "unmatched errors") {
		t.Errorf("perf profile swallowed the failure block:\n%s", errW.String())
	}
}

func TestSuccessEchoesTotalsOnly(t *testing.T) {
	p, out, errW := plainPrinter(t)
	p.Variant(runner.VariantOutcome{
		Fixture:  "tests/conformance/ok.ts",
		Suffix:   "ok",
		Kind:     runner.OutcomeSuccess,
		Recorded: true,
		Totals:   stats.Stats{RequiredError: 1, MatchedError: 1},
	})

	if !strings.Contains(out.String(), "[TOTAL_STATS] Stats {") {
		t.Errorf("no totals echo:\n%s", out.String())
	}
	if errW.Len() != 0 {
		t.Errorf("success wrote to the failure stream:\n%s", errW.String())
	}
}

func TestPostponedStaysQuiet(t *testing.T) {
	p, out, errW := plainPrinter(t)
	p.Variant(runner.VariantOutcome{
		Fixture:  "tests/conformance/multi.ts",
		Suffix:   "multi",
		Kind:     runner.OutcomePostponed,
		Recorded: true,
		Stats:    stats.Stats{RequiredError: 4},
	})

	if out.Len() != 0 || errW.Len() != 0 {
		t.Errorf("postponed variant produced output: out=%q err=%q", out.String(), errW.String())
	}
}

func TestSidecarNotice(t *testing.T) {
	p, out, _ := plainPrinter(t)
	p.Variant(runner.VariantOutcome{
		Fixture:        filepath.Join("tests", "conformance", "clean.ts"),
		Suffix:         "clean",
		Kind:           runner.OutcomeSuccess,
		SidecarMissing: true,
		Recorded:       true,
	})

	want := "errors file does not exists: " + filepath.Join("tests", "conformance", "clean.errors.json")
	if !strings.Contains(out.String(), want) {
		t.Errorf("notice missing; out:\n%s", out.String())
	}
}

func TestPreLoadFailurePrintsErrorOnly(t *testing.T) {
	p, out, errW := plainPrinter(t)
	p.Variant(runner.VariantOutcome{
		Fixture: "tests/conformance/bad.ts",
		Suffix:  "bad",
		Kind:    runner.OutcomeFailure,
		Err:     errors.New("parse golden sidecar: unexpected token"),
	})

	if !strings.Contains(errW.String(), "FAIL tests/conformance/bad.ts: parse golden sidecar") {
		t.Errorf("fixture error not reported:\n%s", errW.String())
	}
	if out.Len() != 0 {
		t.Errorf("fixture error echoed totals:\n%s", out.String())
	}
}

func TestSnapshotDriftRendering(t *testing.T) {
	p, _, errW := plainPrinter(t)
	o := failedOutcome()
	o.Result = reconcile.Result{Matched: 3}
	o.Err = &stats.MismatchError{
		Path:     "sample.stats.snap",
		Baseline: stats.Render(stats.Stats{RequiredError: 3, MatchedError: 3}),
		Fresh:    stats.Render(stats.Stats{RequiredError: 3, MatchedError: 2, ExtraError: 1}),
	}
	p.Variant(o)

	text := errW.String()
	for _, want := range []string{"stats snapshot drift: sample.stats.snap", "baseline:", "fresh:"} {
		if !strings.Contains(text, want) {
			t.Errorf("drift rendering missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "unmatched errors") {
		t.Error("clean reconciliation still printed a failure block")
	}
}

func TestCrashBlock(t *testing.T) {
	p, _, errW := plainPrinter(t)
	p.Variant(runner.VariantOutcome{
		Fixture:     "tests/conformance/boom.ts",
		Suffix:      "boom",
		Kind:        runner.OutcomeCrashed,
		CrashReason: "index out of range",
		Stats:       stats.Stats{RequiredError: 2, Panic: 1},
		Recorded:    true,
	})

	if !strings.Contains(errW.String(), "checker panicked in tests/conformance/boom.ts: index out of range") {
		t.Errorf("crash not reported:\n%s", errW.String())
	}
}

func TestSummaryCounts(t *testing.T) {
	p, out, _ := plainPrinter(t)
	p.Summary(&runner.Summary{
		Passed:  5,
		Failed:  2,
		Crashed: 1,
		Skips:   make([]runner.Skip, 3),
		Totals:  stats.Stats{RequiredError: 9, MatchedError: 7, ExtraError: 2, Panic: 1},
	})

	text := out.String()
	if !strings.Contains(text, "5 passed, 2 failed (1 crashed), 3 skipped") {
		t.Errorf("summary counts wrong:\n%s", text)
	}
	if !strings.Contains(text, "required_error: 9") {
		t.Errorf("summary totals missing:\n%s", text)
	}
}

func TestSummaryPerfShowsTimings(t *testing.T) {
	p, out, _ := plainPrinter(t)
	p.Perf = true
	p.Summary(&runner.Summary{
		Passed:  1,
		Timings: timing.Totals{Lines: 42, CheckTime: time.Second, FullTime: 2 * time.Second},
	})

	text := out.String()
	if !strings.Contains(text, "lines: 42") {
		t.Errorf("timing totals missing:\n%s", text)
	}
	if strings.Contains(text, "required_error") {
		t.Errorf("perf summary printed stats totals:\n%s", text)
	}
}

func TestCanonicalReportIsStable(t *testing.T) {
	sum := &runner.Summary{
		Passed: 1,
		Failed: 1,
		Totals: stats.Stats{RequiredError: 3, MatchedError: 2, ExtraError: 1},
		Results: []runner.TestResult{
			{
				Path: "tests/conformance/ok.ts",
				Variants: []runner.VariantOutcome{{
					Fixture:  "tests/conformance/ok.ts",
					Suffix:   "ok",
					Kind:     runner.OutcomeSuccess,
					Stats:    stats.Stats{RequiredError: 1, MatchedError: 1},
					Recorded: true,
				}},
			},
			{
				Path: "tests/conformance/fail.ts",
				Variants: []runner.VariantOutcome{{
					Fixture: "tests/conformance/fail.ts",
					Suffix:  "fail",
					Kind:    runner.OutcomeFailure,
					Stats:   stats.Stats{RequiredError: 2, MatchedError: 1, ExtraError: 1},
					Result: reconcile.Result{
						Matched: 1,
						Missing: []expect.Error{{Line: 4, Column: 2, Code: "TS2322"}},
						Extra:   []checker.Diagnostic{{Line: 6, Code: "TS2304"}},
					},
					Recorded: true,
				}},
			},
		},
		Skips: []runner.Skip{{Path: "tests/conformance/banned.ts", Reason: runner.SkipIgnored}},
	}

	first, err := Canonical(sum)
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	second, err := Canonical(sum)
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("canonical report differs between calls")
	}
	if !json.Valid(first) {
		t.Fatalf("canonical report is not valid JSON: %s", first)
	}
	// RFC 8785 sorts object keys.
	if !bytes.HasPrefix(first, []byte(`{"crashed":`)) {
		t.Errorf("keys not in canonical order: %.40s", first)
	}
	for _, want := range []string{
		`"outcome":"failure"`,
		`"reason":"ignored"`,
		`"code":"TS2322"`,
	} {
		if !strings.Contains(string(first), want) {
			t.Errorf("canonical report missing %s:\n%s", want, first)
		}
	}
}
