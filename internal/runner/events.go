package runner

import "time"

// Stage identifies which phase of the run an event belongs to.
type Stage int

const (
	// StagePlan covers candidate discovery and admission probing.
	StagePlan Stage = iota
	// StageCheck covers fixture execution against the checker.
	StageCheck
)

func (s Stage) String() string {
	switch s {
	case StagePlan:
		return "plan"
	case StageCheck:
		return "check"
	}
	return "unknown"
}

// Status is the progress state of one fixture within a stage.
type Status int

const (
	// StatusQueued: the fixture is waiting for a worker.
	StatusQueued Status = iota
	// StatusWorking: the fixture is being checked.
	StatusWorking
	// StatusPassed: every variant reconciled cleanly.
	StatusPassed
	// StatusFailed: at least one variant failed.
	StatusFailed
	// StatusCrashed: at least one variant crashed the checker.
	StatusCrashed
	// StatusSkipped: the fixture was excluded during planning.
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusWorking:
		return "working"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusCrashed:
		return "crashed"
	case StatusSkipped:
		return "skipped"
	}
	return "unknown"
}

// Event reports progress for one fixture. File is the fixture path as it
// appears in the plan; Detail carries the skip reason for StatusSkipped.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Detail  string
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use; workers emit from their own goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel, preserving per-fixture order.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
