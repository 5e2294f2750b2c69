package procrun

import (
	"context"
	"io"
	"path/filepath"

	"github.com/victoralfred/procrun/config"
	"github.com/victoralfred/procrun/internal/stream"
	"github.com/victoralfred/procrun/runner"
)

// =============================================================================
// Core Types
// =============================================================================

// Runner executes commands.
type Runner = runner.Runner

// Builder creates configured Runner instances.
type Builder = runner.Builder

// Command is a single execution request.
type Command = runner.Command

// CommandBuilder creates commands with a fluent interface.
type CommandBuilder = runner.CommandBuilder

// Options configures a single execution.
type Options = runner.Options

// Result is the outcome of a completed execution.
type Result = runner.Result

// ExitError is the structured failure raised for a non-zero exit when the
// command requested failure conversion.
type ExitError = runner.ExitError

// SpawnError reports that the OS refused to create the child process.
type SpawnError = runner.SpawnError

// Sink is a destination receiving an in-order copy of one child stream.
type Sink = stream.Sink

// Profile is a YAML-backed set of execution defaults.
type Profile = config.Profile

// =============================================================================
// Error Variables
// =============================================================================

// Common errors returned by the library.
var (
	// ErrEmptyCommand indicates a command with no argv entries.
	ErrEmptyCommand = runner.ErrEmptyCommand

	// ErrInvalidCommand indicates invalid command configuration.
	ErrInvalidCommand = runner.ErrInvalidCommand
)

// =============================================================================
// Factory Functions
// =============================================================================

// New creates a Runner with default settings: discarded logging and no-op
// telemetry.
func New() (*Runner, error) {
	return runner.NewBuilder().Build()
}

// NewBuilder creates a runner builder for configuring logging, telemetry
// and metrics.
func NewBuilder() *Builder {
	return runner.NewBuilder()
}

// Cmd creates a new CommandBuilder for the given argv. Call Build on the
// returned builder to get the final Command.
func Cmd(args ...string) *CommandBuilder {
	return runner.NewCommand(args...)
}

// NewSink adapts an arbitrary writer into a Sink.
func NewSink(w io.Writer) Sink {
	return stream.NewSink(w)
}

// BufferedSink wraps w in a buffered sink whose Flush drains the buffer.
func BufferedSink(w io.Writer) Sink {
	return stream.Buffered(w)
}

// =============================================================================
// Convenience Functions
// =============================================================================

// Execute runs args with zero options and reports the child's exit code.
// For repeated executions, create a Runner instance instead.
func Execute(ctx context.Context, args ...string) (int, error) {
	return ExecuteWith(ctx, Options{}, args...)
}

// ExecuteWith runs args with the supplied options and reports the child's
// exit code. When the child exits non-zero and opts requested failure
// conversion, the code is returned together with the *ExitError.
func ExecuteWith(ctx context.Context, opts Options, args ...string) (int, error) {
	r, err := New()
	if err != nil {
		return -1, err
	}
	res, err := r.Run(ctx, &Command{Args: args, Options: opts})
	if res == nil {
		return -1, err
	}
	return res.ExitCode, err
}

// Run executes a built command with a one-off default Runner.
func Run(ctx context.Context, cmd *Command) (*Result, error) {
	r, err := New()
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, cmd)
}

// =============================================================================
// Profile Loading
// =============================================================================

// LoadProfile loads an execution-defaults profile from a YAML file path.
func LoadProfile(ctx context.Context, path string) (*Profile, error) {
	loader, err := config.NewLoader(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx)
}

// =============================================================================
// Version Information
// =============================================================================

// Version returns the library version.
func Version() string {
	return "1.0.0"
}
