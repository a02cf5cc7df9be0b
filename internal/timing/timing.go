// Package timing accumulates advisory wall-clock totals for perf runs.
// Timings are informational: no branch of suite control flow depends on
// them, and no baseline comparison applies.
package timing

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Totals is the run-wide accumulation: source lines visited, time spent
// inside the checker, and end-to-end time per variant.
type Totals struct {
	Lines     int
	CheckTime time.Duration
	FullTime  time.Duration
}

// Recorder owns the totals, one per run, shared by handle across workers.
// Add is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	total Totals
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Add accumulates one variant's measurements and returns the running
// totals as of this call.
func (r *Recorder) Add(lines int, check, full time.Duration) Totals {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total.Lines += lines
	r.total.CheckTime += check
	r.total.FullTime += full
	return r.total
}

// Total returns the current totals.
func (r *Recorder) Total() Totals {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// Render produces the timings file text.
func Render(t Totals) string {
	var b strings.Builder
	b.WriteString("Timings {\n")
	fmt.Fprintf(&b, "    lines: %d\n", t.Lines)
	fmt.Fprintf(&b, "    check_time: %s\n", t.CheckTime)
	fmt.Fprintf(&b, "    full_time: %s\n", t.FullTime)
	b.WriteString("}\n")
	return b.String()
}

// WriteTotals writes the timings file. The caller gates this on a
// full-suite perf run; partial runs keep the file untouched.
func WriteTotals(path string, t Totals) error {
	if err := os.WriteFile(path, []byte(Render(t)), 0o644); err != nil {
		return fmt.Errorf("write timings: %w", err)
	}
	return nil
}
