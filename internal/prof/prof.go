// Package prof collects the runtime profiler plumbing behind one Session so
// the CLI can profile a conformance run via flags.
package prof

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// A Session owns the profiler outputs requested for one CLI invocation.
// Start any subset, then Stop once the run finishes; Stop is idempotent.
// Sessions are not safe for concurrent use.
type Session struct {
	cpu      *os.File
	trace    *os.File
	heapPath string
	stopped  bool
}

// StartCPU begins CPU sampling into the file at path.
func (s *Session) StartCPU(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("cpu profile: %w", err)
	}
	s.cpu = f
	return nil
}

// StartTrace begins a runtime execution trace into the file at path.
func (s *Session) StartTrace(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("runtime trace: %w", err)
	}
	if err := trace.Start(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("runtime trace: %w", err)
	}
	s.trace = f
	return nil
}

// HeapOnStop arranges for a heap profile to be written to path when the
// session stops. The snapshot is taken after a forced GC so the profile
// reflects live objects, not garbage.
func (s *Session) HeapOnStop(path string) {
	s.heapPath = path
}

// Stop shuts down active profilers in reverse start order, closes their
// files and writes the deferred heap profile. CPU and trace shutdown cannot
// fail; the returned error is from the heap write, if one was requested.
func (s *Session) Stop() error {
	if s.stopped {
		return nil
	}
	s.stopped = true
	if s.trace != nil {
		trace.Stop()
		_ = s.trace.Close()
		s.trace = nil
	}
	if s.cpu != nil {
		pprof.StopCPUProfile()
		_ = s.cpu.Close()
		s.cpu = nil
	}
	if s.heapPath == "" {
		return nil
	}
	f, err := os.Create(s.heapPath)
	if err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("heap profile: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	return nil
}
