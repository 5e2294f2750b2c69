package runner

import (
	"time"
)

// Result is the outcome of a completed execution. The exit code is passed
// through verbatim from the child; 0 conventionally denotes success.
type Result struct {
	// RunID uniquely identifies this execution in logs and telemetry.
	RunID string

	// Signal names the signal that terminated the child, if any.
	Signal string

	// ExitCode is the child's exit code.
	ExitCode int

	// Duration is the wall clock time from spawn to exit.
	Duration time.Duration

	// Status classifies the outcome.
	Status ExitStatus
}

// ExitStatus classifies the outcome of an execution.
type ExitStatus int

const (
	// StatusSuccess indicates exit code 0.
	StatusSuccess ExitStatus = iota
	// StatusErrored indicates a non-zero exit code.
	StatusErrored
	// StatusSignaled indicates the child was terminated by a signal.
	StatusSignaled
)

// String returns the string representation of the status.
func (s ExitStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusErrored:
		return "errored"
	case StatusSignaled:
		return "signaled"
	default:
		return "unknown"
	}
}

// Success returns true if the child exited zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Signal == ""
}
