package runner

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"tsconform/internal/expect"
	"tsconform/internal/fixture"
	"tsconform/internal/selection"
)

// Test is one admitted fixture with its compilation variants.
type Test struct {
	Path      string
	Variants  []fixture.Variant
	UseTarget bool
}

// Plan is the admission outcome for a run: what executes and what was
// excluded, with reasons.
type Plan struct {
	Tests []Test
	Skips []Skip
}

// Plan walks the fixture roots and decides admission for every candidate.
// List checks are serial; the tool-backed probes (variant loading, parse
// gate) run on the worker pool with per-index result slots.
func (r *Runner) Plan(ctx context.Context) (*Plan, error) {
	filter, err := r.filter()
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, root := range r.cfg.Roots {
		files, err := fixture.List(root)
		if err != nil {
			return nil, fmt.Errorf("list fixtures: %w", err)
		}
		candidates = append(candidates, files...)
	}

	plan := &Plan{}
	var admitted []string
	for _, path := range candidates {
		if verdict := filter.Decide(path); verdict != selection.VerdictAdmit {
			plan.Skips = append(plan.Skips, Skip{Path: path, Reason: skipFromVerdict(verdict)})
			continue
		}
		admitted = append(admitted, path)
	}
	if len(admitted) == 0 {
		return plan, nil
	}

	type probeResult struct {
		test    Test
		skip    Skip
		skipped bool
	}
	results := make([]probeResult, len(admitted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(r.jobs(), len(admitted)))
	for i, path := range admitted {
		g.Go(func(i int, path string) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				test, skip, skipped := r.probe(gctx, path)
				results[i] = probeResult{test: test, skip: skip, skipped: skipped}
				return nil
			}
		}(i, path))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, pr := range results {
		if pr.skipped {
			plan.Skips = append(plan.Skips, pr.skip)
			continue
		}
		plan.Tests = append(plan.Tests, pr.test)
	}
	return plan, nil
}

func skipFromVerdict(v selection.Verdict) SkipReason {
	switch v {
	case selection.VerdictIgnored:
		return SkipIgnored
	case selection.VerdictFiltered:
		return SkipFiltered
	default:
		return SkipUnlisted
	}
}

// probe runs the tool-dependent admission gates for one fixture. The
// ParseOK and variant halves are memoized in the disk cache keyed by
// fixture content and tool identity; the parser-test gate reads golden
// sidecars and is always evaluated fresh.
func (r *Runner) probe(ctx context.Context, path string) (Test, Skip, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Test{}, Skip{Path: path, Reason: SkipUnreadable}, true
	}

	key := ProbeKey(r.cfg.Tool, content)
	var payload ProbePayload
	hit, err := r.cache.Get(key, &payload)
	if err != nil {
		// Corrupt entry: fall through to a direct probe.
		hit = false
	}
	if !hit {
		variants, err := r.safeVariants(ctx, path)
		if err != nil {
			return Test{}, Skip{Path: path, Reason: SkipVariantProbe}, true
		}
		payload = ProbePayload{
			Schema:   probeCacheSchema,
			ParseOK:  r.safeParse(ctx, path),
			Variants: variants,
		}
		// Cache write failures are advisory.
		_ = r.cache.Put(key, &payload)
	}

	useTarget := len(payload.Variants) > 1
	for _, v := range payload.Variants {
		golden, err := expect.Load(path, v, useTarget)
		if err != nil {
			// The worker surfaces the malformed sidecar as a failure.
			continue
		}
		if expect.IsParserTest(golden.Errors) {
			return Test{}, Skip{Path: path, Reason: SkipParserTest}, true
		}
	}
	if !payload.ParseOK {
		return Test{}, Skip{Path: path, Reason: SkipParseFailed}, true
	}
	return Test{Path: path, Variants: payload.Variants, UseTarget: useTarget}, Skip{}, false
}

// safeVariants queries the variant loader behind a recover: a panicking
// loader excludes the fixture instead of killing the plan.
func (r *Runner) safeVariants(ctx context.Context, path string) (variants []fixture.Variant, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			variants, err = nil, fmt.Errorf("variant loader panicked: %v", rec)
		}
	}()
	variants, err = r.tool.Variants(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		variants = []fixture.Variant{{}}
	}
	return variants, nil
}

func (r *Runner) safeParse(ctx context.Context, path string) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
		}
	}()
	return r.tool.ParseOK(ctx, path)
}
