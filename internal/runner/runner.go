// Package runner orchestrates a conformance run: planning admission,
// executing fixtures on a bounded worker pool, recording stats and
// timings, and maintaining snapshot baselines. Workers never share
// mutable state beyond the aggregator and the timing recorder; results
// land in per-index slots. A panic in the external checker is contained
// at the variant boundary and folded into a Crashed outcome.
package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tsconform/internal/checker"
	"tsconform/internal/expect"
	"tsconform/internal/fixture"
	"tsconform/internal/reconcile"
	"tsconform/internal/selection"
	"tsconform/internal/stats"
	"tsconform/internal/suite"
	"tsconform/internal/timing"
)

const snapshotTail = ".stats.snap"

// Runner owns one run's shared state. Construct with New; the zero value
// is not usable.
type Runner struct {
	cfg    suite.Config
	tool   checker.Toolchain
	agg    *stats.Aggregator
	rec    *timing.Recorder
	cache  *DiskCache
	sink   ProgressSink
	filter func() (*selection.Filter, error)
}

// New builds a Runner for one resolved configuration. Selection lists are
// loaded lazily, at most once, on first use.
func New(cfg suite.Config, tool checker.Toolchain) *Runner {
	r := &Runner{
		cfg:  cfg,
		tool: tool,
		agg:  stats.NewAggregator(),
		rec:  timing.NewRecorder(),
	}
	r.filter = sync.OnceValues(func() (*selection.Filter, error) {
		f, err := selection.Load(cfg.IgnoreFile, cfg.SelectionPassFiles()...)
		if err != nil {
			return nil, err
		}
		f.Test = cfg.Options.Test
		f.TestSet = cfg.Options.TestSet
		return f, nil
	})
	return r
}

// SetProgress attaches a progress sink. Pass nil to detach.
func (r *Runner) SetProgress(sink ProgressSink) { r.sink = sink }

// SetCache attaches a probe cache. A nil cache disables memoization.
func (r *Runner) SetCache(cache *DiskCache) { r.cache = cache }

func (r *Runner) jobs() int {
	if r.cfg.Jobs > 0 {
		return r.cfg.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

func (r *Runner) emit(evt Event) {
	if r.sink != nil {
		r.sink.OnEvent(evt)
	}
}

// Summary is the final account of a run. Passed and Failed partition the
// executed tests; Crashed counts the failed tests with at least one
// crashing variant. A test cancelled before all its variants ran counts
// in neither bucket unless a finished variant already failed.
type Summary struct {
	Results []TestResult
	Skips   []Skip
	Totals  stats.Stats
	Timings timing.Totals
	Passed  int
	Failed  int
	Crashed int
}

// OK reports a clean run.
func (s *Summary) OK() bool { return s.Failed == 0 }

// Run plans and executes the suite. The returned summary is valid even
// when err is non-nil (cancellation), covering the work done so far.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	plan, err := r.Plan(ctx)
	if err != nil {
		return nil, err
	}

	for _, skip := range plan.Skips {
		r.emit(Event{File: skip.Path, Stage: StagePlan, Status: StatusSkipped, Detail: skip.Reason.String()})
	}
	for _, test := range plan.Tests {
		r.emit(Event{File: test.Path, Stage: StageCheck, Status: StatusQueued})
	}

	results := make([]TestResult, len(plan.Tests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(r.jobs(), max(len(plan.Tests), 1)))
	for i, test := range plan.Tests {
		g.Go(func(i int, test Test) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				r.emit(Event{File: test.Path, Stage: StageCheck, Status: StatusWorking})
				start := time.Now()
				res, err := r.runTest(gctx, test)
				res.Elapsed = time.Since(start)
				results[i] = res
				if err != nil {
					return err
				}
				r.emit(Event{
					File:    test.Path,
					Stage:   StageCheck,
					Status:  statusOf(res),
					Err:     firstErr(res),
					Elapsed: res.Elapsed,
				})
				return nil
			}
		}(i, test))
	}
	waitErr := g.Wait()

	summary := &Summary{
		Results: results,
		Skips:   plan.Skips,
		Totals:  r.agg.Total(),
		Timings: r.rec.Total(),
	}
	for i, res := range results {
		switch {
		case res.Failed():
			summary.Failed++
			if res.Crashed() {
				summary.Crashed++
			}
		case len(res.Variants) == len(plan.Tests[i].Variants):
			summary.Passed++
		default:
			// Cancelled before every variant ran; no verdict either way.
		}
	}
	if waitErr != nil {
		return summary, waitErr
	}

	// Aggregate baselines move only on full-suite runs; timings only in
	// the perf flavor.
	if r.cfg.Options.FullSuite() {
		if err := stats.WriteTotals(r.cfg.StatsFile, summary.Totals); err != nil {
			return summary, err
		}
		if r.cfg.Perf {
			if err := timing.WriteTotals(r.cfg.TimingsFile, summary.Timings); err != nil {
				return summary, err
			}
		}
	}
	return summary, nil
}

func statusOf(res TestResult) Status {
	switch {
	case res.Crashed():
		return StatusCrashed
	case res.Failed():
		return StatusFailed
	default:
		return StatusPassed
	}
}

func firstErr(res TestResult) error {
	for _, v := range res.Variants {
		if !v.Failed() {
			continue
		}
		if v.Err != nil {
			return v.Err
		}
		if v.CrashReason != "" {
			return fmt.Errorf("checker panicked: %s", v.CrashReason)
		}
		return fmt.Errorf("%d missing, %d extra", len(v.Result.Missing), len(v.Result.Extra))
	}
	return nil
}

// runTest executes every variant of one fixture. A failing or crashing
// variant never stops its siblings; only cancellation does.
func (r *Runner) runTest(ctx context.Context, test Test) (TestResult, error) {
	res := TestResult{Path: test.Path}
	for _, v := range test.Variants {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Variants = append(res.Variants, r.runVariant(ctx, test.Path, v, test.UseTarget))
	}
	return res, nil
}

// runVariant is the unit of execution: load golden, postpone or check,
// reconcile, account. Counters for one variant enter the aggregate
// exactly once, on every path out of this function that records at all.
func (r *Runner) runVariant(ctx context.Context, path string, v fixture.Variant, useTarget bool) VariantOutcome {
	out := VariantOutcome{Fixture: path, Kind: OutcomeFailure}
	if useTarget {
		out.Target = v.RawTarget
	}

	golden, err := expect.Load(path, v, useTarget)
	if err != nil {
		// Pre-load failure: nothing recorded, the fixture fails.
		out.Err = err
		return out
	}
	out.Suffix = golden.Suffix
	out.Golden = golden.Errors
	out.SidecarMissing = golden.Missing
	required := len(golden.Errors)
	snapshotPath := filepath.Join(filepath.Dir(path), golden.Suffix+snapshotTail)

	src, err := fixture.LoadSource(path)
	if err != nil {
		out.Err = fmt.Errorf("read fixture: %w", err)
		return out
	}
	out.Lines = src.LineCount()

	// Multi-file fixtures are postponed: their golden entries still join
	// the totals on full-suite runs, then the variant succeeds unchecked.
	if src.IsMultiFile() {
		out.Kind = OutcomePostponed
		out.Stats = stats.Stats{RequiredError: required}
		if r.cfg.Options.FullSuite() {
			out.Totals = r.agg.Record(out.Stats)
			out.Recorded = true
		}
		return out
	}

	var (
		diags     []checker.Diagnostic
		checkErr  error
		crashed   bool
		checkTime time.Duration
	)
	startFull := time.Now()
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				crashed = true
				out.CrashReason = fmt.Sprint(rec)
			}
		}()
		start := time.Now()
		diags, checkErr = r.tool.Check(ctx, path, v)
		checkTime = time.Since(start)
	}()

	if crashed {
		out.Kind = OutcomeCrashed
		out.Stats = stats.Stats{RequiredError: required, Panic: 1}
		out.Totals = r.agg.Record(out.Stats)
		out.Recorded = true
		if !r.cfg.Perf {
			if snapErr := stats.WriteSnapshot(snapshotPath, out.Stats, r.cfg.Options.CI); snapErr != nil {
				out.Err = snapErr
			}
		}
		return out
	}
	if checkErr != nil {
		out.Err = fmt.Errorf("checker: %w", checkErr)
		return out
	}
	out.CheckTime = checkTime

	res := reconcile.Reconcile(golden.Errors, diags)
	out.FullTime = time.Since(startFull)
	out.Result = res
	out.Diags = append([]checker.Diagnostic(nil), diags...)
	reconcile.SortDiagnostics(out.Diags)
	out.Stats = stats.Stats{
		RequiredError: required,
		MatchedError:  res.Matched,
		ExtraError:    len(res.Extra),
	}

	if r.cfg.Perf {
		r.rec.Add(out.Lines, out.CheckTime, out.FullTime)
	}

	var snapErr error
	if !r.cfg.Perf {
		snapErr = stats.WriteSnapshot(snapshotPath, out.Stats, r.cfg.Options.CI)
	}

	out.Totals = r.agg.Record(out.Stats)
	out.Recorded = true

	if res.Success() && snapErr == nil {
		out.Kind = OutcomeSuccess
	} else {
		out.Kind = OutcomeFailure
		out.Err = snapErr
	}
	return out
}
