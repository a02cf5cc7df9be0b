package stats

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestAdd(t *testing.T) {
	a := Stats{RequiredError: 2, MatchedError: 1, ExtraError: 3, Panic: 0}
	b := Stats{RequiredError: 5, MatchedError: 4, ExtraError: 0, Panic: 1}
	got := a.Add(b)
	want := Stats{RequiredError: 7, MatchedError: 5, ExtraError: 3, Panic: 1}
	if got != want {
		t.Fatalf("Add = %+v, want %+v", got, want)
	}
}

func TestRenderExactText(t *testing.T) {
	got := Render(Stats{RequiredError: 2, MatchedError: 2})
	want := "Stats {\n" +
		"    required_error: 2\n" +
		"    matched_error: 2\n" +
		"    extra_error: 0\n" +
		"    panic: 0\n" +
		"}\n"
	if got != want {
		t.Fatalf("Render mismatch:\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestParseRoundTrip(t *testing.T) {
	in := Stats{RequiredError: 184, MatchedError: 170, ExtraError: 9, Panic: 2}
	out, err := Parse(Render(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if out != in {
		t.Fatalf("round trip = %+v, want %+v", out, in)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "wrong header", text: "Totals {\n    required_error: 1\n    matched_error: 1\n    extra_error: 0\n    panic: 0\n}\n"},
		{name: "wrong key order", text: "Stats {\n    matched_error: 1\n    required_error: 1\n    extra_error: 0\n    panic: 0\n}\n"},
		{name: "negative", text: "Stats {\n    required_error: -1\n    matched_error: 0\n    extra_error: 0\n    panic: 0\n}\n"},
		{name: "non numeric", text: "Stats {\n    required_error: many\n    matched_error: 0\n    extra_error: 0\n    panic: 0\n}\n"},
		{name: "truncated", text: "Stats {\n    required_error: 1\n}\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.text); err == nil {
				t.Fatalf("Parse accepted malformed snapshot %q", tc.text)
			}
		})
	}
}

func TestAggregatorConcurrentRecord(t *testing.T) {
	const numGoroutines = 64
	const perGoroutine = 100

	agg := NewAggregator()
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for range numGoroutines {
		go func() {
			defer wg.Done()
			for range perGoroutine {
				agg.Record(Stats{RequiredError: 2, MatchedError: 1, ExtraError: 1, Panic: 1})
			}
		}()
	}
	wg.Wait()

	n := numGoroutines * perGoroutine
	want := Stats{RequiredError: 2 * n, MatchedError: n, ExtraError: n, Panic: n}
	if got := agg.Total(); got != want {
		t.Fatalf("Total = %+v, want %+v", got, want)
	}
}

func TestAggregatorRecordReturnsRunningTotals(t *testing.T) {
	agg := NewAggregator()
	first := agg.Record(Stats{RequiredError: 1, MatchedError: 1})
	if first != (Stats{RequiredError: 1, MatchedError: 1}) {
		t.Fatalf("first Record = %+v", first)
	}
	second := agg.Record(Stats{RequiredError: 3, ExtraError: 2})
	want := Stats{RequiredError: 4, MatchedError: 1, ExtraError: 2}
	if second != want {
		t.Fatalf("second Record = %+v, want %+v", second, want)
	}
}

func TestWriteSnapshotOverwritesOutsideCI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.stats.snap")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Stats{RequiredError: 2, MatchedError: 2}
	if err := WriteSnapshot(path, s, false); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != Render(s) {
		t.Fatalf("baseline = %q, want rendered snapshot", data)
	}
}

func TestWriteSnapshotCIGate(t *testing.T) {
	dir := t.TempDir()
	s := Stats{RequiredError: 2, MatchedError: 2}

	clean := filepath.Join(dir, "clean.stats.snap")
	if err := os.WriteFile(clean, []byte(Render(s)), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteSnapshot(clean, s, true); err != nil {
		t.Fatalf("matching baseline should pass, got %v", err)
	}

	// Drift in the improving direction still fails: baselines move only
	// by being committed.
	drift := filepath.Join(dir, "drift.stats.snap")
	if err := os.WriteFile(drift, []byte(Render(Stats{RequiredError: 2, MatchedError: 1})), 0o644); err != nil {
		t.Fatal(err)
	}
	err := WriteSnapshot(drift, s, true)
	if !errors.Is(err, ErrSnapshotMismatch) {
		t.Fatalf("drift error = %v, want ErrSnapshotMismatch", err)
	}
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("drift error %T does not carry MismatchError", err)
	}
	if mismatch.Fresh != Render(s) || mismatch.Baseline == mismatch.Fresh {
		t.Fatalf("MismatchError sides not populated: %+v", mismatch)
	}

	if err := WriteSnapshot(filepath.Join(dir, "absent.stats.snap"), s, true); err == nil {
		t.Fatal("missing baseline under CI should fail")
	}

	// The CI gate never rewrites the baseline.
	data, err2 := os.ReadFile(drift)
	if err2 != nil {
		t.Fatal(err2)
	}
	if string(data) == Render(s) {
		t.Fatal("CI gate must not overwrite the baseline")
	}
}

func TestWriteTotals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsc-stats.snap")
	s := Stats{RequiredError: 9, MatchedError: 7, ExtraError: 1, Panic: 1}
	if err := WriteTotals(path, s); err != nil {
		t.Fatalf("WriteTotals: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Parse(string(data))
	if err != nil {
		t.Fatalf("Parse written totals: %v", err)
	}
	if got != s {
		t.Fatalf("totals round trip = %+v, want %+v", got, s)
	}
}
