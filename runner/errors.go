package runner

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions.
var (
	// ErrEmptyCommand indicates a command with no argv entries.
	ErrEmptyCommand = errors.New("empty command")

	// ErrInvalidCommand indicates invalid command configuration.
	ErrInvalidCommand = errors.New("invalid command")
)

// SpawnError reports that the operating system refused to create the child
// process: a bad executable path, missing permissions, or a failure to set
// up the stdio pipes. No partial resources exist when it is returned.
type SpawnError struct {
	// Argv is the resolved argv, after any shell prelude wrapping.
	Argv []string

	// Err is the platform-level fault.
	Err error
}

// Error returns the error message.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawning %q: %v", strings.Join(e.Argv, " "), e.Err)
}

// Unwrap returns the underlying error.
func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitError is the structured failure raised when the child exits non-zero
// and the command requested failure conversion.
//
// Options carries a redacted snapshot of the execution configuration: the
// environment is stripped so the error can be logged without leaking
// secrets. Script holds the contents of a directly executed script file,
// captured only when the command was a single argument run without the
// shell wrapper and the path names an existing file.
type ExitError struct {
	RunID    string
	Argv     []string
	Options  Options
	ExitCode int
	Script   string
}

// Error returns a human-readable description of the failure.
func (e *ExitError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "command %q exited with code %d", strings.Join(e.Argv, " "), e.ExitCode)
	if e.Script != "" {
		b.WriteString("\nscript contents:\n")
		b.WriteString(e.Script)
	}
	return b.String()
}

// newExitError snapshots the execution with the environment redacted.
func newExitError(runID string, argv []string, opts Options, exitCode int, script string) *ExitError {
	return &ExitError{
		RunID:    runID,
		Argv:     argv,
		Options:  opts.redacted(),
		ExitCode: exitCode,
		Script:   script,
	}
}

// AsExitError extracts an *ExitError from an error chain.
func AsExitError(err error) (*ExitError, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr, true
	}
	return nil, false
}
