package runner

import (
	"io"
	"os"
	"time"

	"github.com/victoralfred/procrun/internal/stream"
)

// DefaultGracePeriod is slept before a non-zero exit is converted into an
// *ExitError, giving trailing child output a chance to finish rendering on
// a shared terminal. It is best-effort only and guarantees no ordering.
const DefaultGracePeriod = 100 * time.Millisecond

// Options configures a single execution. The zero value runs the command
// with the host's stdout and stderr as sinks, the inherited environment,
// stdin forwarding enabled and non-zero exits reported as plain codes.
type Options struct {
	// OutputSinks receive the child's stdout bytes, each an identical
	// in-order copy. Default: the host's stdout.
	OutputSinks []stream.Sink

	// ErrorSinks receive the child's stderr bytes. Default: the host's
	// stderr.
	ErrorSinks []stream.Sink

	// Environment overrides or replaces the child's environment. nil
	// means the child inherits the runner's environment unchanged.
	Environment map[string]string

	// ReplaceEnvironment makes Environment the child's entire environment
	// instead of an overlay on the inherited one.
	ReplaceEnvironment bool

	// FailOnNonZeroExit converts a non-zero exit code into an *ExitError
	// after the grace period.
	FailOnNonZeroExit bool

	// UseShell joins the argv with single spaces and hands the result to
	// the system shell. No quoting is applied; embedded spaces and
	// metacharacters are the caller's responsibility.
	UseShell bool

	// ShellArgs are the flags placed between the shell and the joined
	// command string. Default: ["-c"]. Ignored on Windows, where the
	// prelude is always ["cmd", "/C"].
	ShellArgs []string

	// DisableStdinForward suppresses the stdin forwarding goroutine.
	// Typical when there is no interactive caller.
	DisableStdinForward bool

	// Input is the host input source forwarded line by line to the child.
	// Default: os.Stdin.
	Input io.Reader

	// WorkingDir is the child's working directory. Empty means the
	// runner process's current directory.
	WorkingDir string

	// GracePeriod overrides DefaultGracePeriod. Zero selects the
	// default; a negative value disables the delay.
	GracePeriod time.Duration
}

// withDefaults returns a copy with unset fields resolved, validated once
// at the call boundary.
func (o Options) withDefaults() Options {
	if len(o.OutputSinks) == 0 {
		o.OutputSinks = []stream.Sink{stream.NewSink(os.Stdout)}
	}
	if len(o.ErrorSinks) == 0 {
		o.ErrorSinks = []stream.Sink{stream.NewSink(os.Stderr)}
	}
	if len(o.ShellArgs) == 0 {
		o.ShellArgs = []string{"-c"}
	}
	if o.Input == nil {
		o.Input = os.Stdin
	}
	switch {
	case o.GracePeriod == 0:
		o.GracePeriod = DefaultGracePeriod
	case o.GracePeriod < 0:
		o.GracePeriod = 0
	}
	return o
}

// redacted returns a snapshot safe to embed in errors and logs: the
// environment is stripped so secrets in overrides cannot leak.
func (o Options) redacted() Options {
	o.Environment = nil
	return o
}
