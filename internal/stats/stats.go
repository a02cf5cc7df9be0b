// Package stats accumulates suite counters and maintains the textual
// snapshot baselines that gate regressions under CI.
package stats

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// ErrSnapshotMismatch marks CI baseline drift. Drift in either direction
// fails the run: an improvement must be committed as a new baseline, not
// absorbed silently.
var ErrSnapshotMismatch = errors.New("stats snapshot drift")

// Stats counts golden-error bookkeeping for one variant, or totals for a
// whole run. All counters are non-negative; MatchedError never exceeds
// RequiredError.
type Stats struct {
	// RequiredError is the total number of golden entries for the variant.
	RequiredError int `json:"required_error"`
	// MatchedError counts golden entries satisfied by a diagnostic.
	MatchedError int `json:"matched_error"`
	// ExtraError counts diagnostics no golden entry accounts for.
	ExtraError int `json:"extra_error"`
	// Panic counts variants whose execution crashed.
	Panic int `json:"panic"`
}

// Add returns the elementwise sum.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		RequiredError: s.RequiredError + o.RequiredError,
		MatchedError:  s.MatchedError + o.MatchedError,
		ExtraError:    s.ExtraError + o.ExtraError,
		Panic:         s.Panic + o.Panic,
	}
}

// Aggregator owns the run-wide totals. It is constructed once by the
// runner and shared by handle across workers; Record is safe for
// concurrent use.
type Aggregator struct {
	mu    sync.Mutex
	total Stats
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Record adds one variant's counters and returns the running totals as of
// this call.
func (a *Aggregator) Record(s Stats) Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total = a.total.Add(s)
	return a.total
}

// Total returns the current totals.
func (a *Aggregator) Total() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

// Render produces the stable snapshot text. The byte sequence is part of
// the baseline contract: CI compares it with string equality.
func Render(s Stats) string {
	var b strings.Builder
	b.WriteString("Stats {\n")
	fmt.Fprintf(&b, "    required_error: %d\n", s.RequiredError)
	fmt.Fprintf(&b, "    matched_error: %d\n", s.MatchedError)
	fmt.Fprintf(&b, "    extra_error: %d\n", s.ExtraError)
	fmt.Fprintf(&b, "    panic: %d\n", s.Panic)
	b.WriteString("}\n")
	return b.String()
}

// Parse reads the snapshot text back. It accepts exactly the shape Render
// emits, modulo surrounding whitespace per line.
func Parse(text string) (Stats, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 6 || strings.TrimSpace(lines[0]) != "Stats {" || strings.TrimSpace(lines[5]) != "}" {
		return Stats{}, fmt.Errorf("malformed stats snapshot")
	}
	keys := []string{"required_error", "matched_error", "extra_error", "panic"}
	vals := make([]int, len(keys))
	for i, key := range keys {
		field := strings.TrimSpace(lines[i+1])
		rest, ok := strings.CutPrefix(field, key+": ")
		if !ok {
			return Stats{}, fmt.Errorf("stats snapshot: want %s, got %q", key, field)
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			return Stats{}, fmt.Errorf("stats snapshot %s: %w", key, err)
		}
		if n < 0 {
			return Stats{}, fmt.Errorf("stats snapshot %s: negative count %d", key, n)
		}
		vals[i] = n
	}
	return Stats{
		RequiredError: vals[0],
		MatchedError:  vals[1],
		ExtraError:    vals[2],
		Panic:         vals[3],
	}, nil
}

// MismatchError carries both sides of a CI baseline drift so the report
// can show the divergence. It matches ErrSnapshotMismatch under errors.Is.
type MismatchError struct {
	Path     string
	Baseline string
	Fresh    string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("stats snapshot drift in %s", e.Path)
}

func (e *MismatchError) Unwrap() error {
	return ErrSnapshotMismatch
}

// WriteSnapshot maintains the baseline at path. Under CI the freshly
// rendered text must equal the stored baseline byte for byte; any drift
// (or a missing baseline) is an error. Outside CI the baseline is
// rewritten in place.
func WriteSnapshot(path string, s Stats, ci bool) error {
	fresh := Render(s)
	if !ci {
		if err := os.WriteFile(path, []byte(fresh), 0o644); err != nil {
			return fmt.Errorf("write stats snapshot: %w", err)
		}
		return nil
	}
	baseline, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("stats baseline %s: %w", path, err)
	}
	if string(baseline) != fresh {
		return &MismatchError{Path: path, Baseline: string(baseline), Fresh: fresh}
	}
	return nil
}

// WriteTotals writes the run-wide totals file. The caller gates this on a
// full-suite run; partial runs must not clobber the aggregate baseline.
func WriteTotals(path string, s Stats) error {
	if err := os.WriteFile(path, []byte(Render(s)), 0o644); err != nil {
		return fmt.Errorf("write stats totals: %w", err)
	}
	return nil
}
