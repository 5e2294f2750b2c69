// Package runner launches an external process, relays the host's stdin to
// it, duplicates its stdout and stderr to configurable sinks, waits for
// termination and converts the exit code into a result or a structured
// failure.
package runner

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/victoralfred/procrun/internal/stream"
)

// Command is a single execution request: the argv to launch plus its
// options. Commands are immutable once built.
type Command struct {
	// Args is the ordered argv. Never empty; Args[0] is the program.
	Args []string

	// Options configures sinks, environment, shell mode and failure
	// conversion for this execution.
	Options Options
}

// String returns the space-joined argv.
func (c *Command) String() string {
	return strings.Join(c.Args, " ")
}

// Clone creates a deep copy of the command.
func (c *Command) Clone() *Command {
	clone := &Command{
		Args:    make([]string, len(c.Args)),
		Options: c.Options,
	}
	copy(clone.Args, c.Args)

	if c.Options.Environment != nil {
		clone.Options.Environment = make(map[string]string, len(c.Options.Environment))
		for k, v := range c.Options.Environment {
			clone.Options.Environment[k] = v
		}
	}
	if c.Options.ShellArgs != nil {
		clone.Options.ShellArgs = append([]string(nil), c.Options.ShellArgs...)
	}
	if c.Options.OutputSinks != nil {
		clone.Options.OutputSinks = append([]stream.Sink(nil), c.Options.OutputSinks...)
	}
	if c.Options.ErrorSinks != nil {
		clone.Options.ErrorSinks = append([]stream.Sink(nil), c.Options.ErrorSinks...)
	}
	return clone
}

// CommandBuilder provides a fluent API for constructing commands.
type CommandBuilder struct {
	cmd *Command
	err error
}

// NewCommand creates a new CommandBuilder for the given argv.
func NewCommand(args ...string) *CommandBuilder {
	return &CommandBuilder{
		cmd: &Command{Args: args},
	}
}

// WithOptions replaces the whole options block.
func (b *CommandBuilder) WithOptions(opts Options) *CommandBuilder {
	if b.err != nil {
		return b
	}
	b.cmd.Options = opts
	return b
}

// WithOutputSinks sets the sinks receiving child stdout bytes.
func (b *CommandBuilder) WithOutputSinks(sinks ...stream.Sink) *CommandBuilder {
	if b.err != nil {
		return b
	}
	b.cmd.Options.OutputSinks = sinks
	return b
}

// WithErrorSinks sets the sinks receiving child stderr bytes.
func (b *CommandBuilder) WithErrorSinks(sinks ...stream.Sink) *CommandBuilder {
	if b.err != nil {
		return b
	}
	b.cmd.Options.ErrorSinks = sinks
	return b
}

// WithEnv adds one environment override.
func (b *CommandBuilder) WithEnv(key, value string) *CommandBuilder {
	if b.err != nil {
		return b
	}
	if b.cmd.Options.Environment == nil {
		b.cmd.Options.Environment = make(map[string]string)
	}
	b.cmd.Options.Environment[key] = value
	return b
}

// WithEnvMap adds multiple environment overrides.
func (b *CommandBuilder) WithEnvMap(env map[string]string) *CommandBuilder {
	if b.err != nil {
		return b
	}
	if b.cmd.Options.Environment == nil {
		b.cmd.Options.Environment = make(map[string]string, len(env))
	}
	for k, v := range env {
		b.cmd.Options.Environment[k] = v
	}
	return b
}

// ReplaceEnvironment makes the supplied environment the child's entire
// environment instead of an overlay on the inherited one.
func (b *CommandBuilder) ReplaceEnvironment() *CommandBuilder {
	if b.err != nil {
		return b
	}
	b.cmd.Options.ReplaceEnvironment = true
	return b
}

// FailOnNonZeroExit converts a non-zero exit into an *ExitError.
func (b *CommandBuilder) FailOnNonZeroExit() *CommandBuilder {
	if b.err != nil {
		return b
	}
	b.cmd.Options.FailOnNonZeroExit = true
	return b
}

// UseShell runs the space-joined argv through the system shell.
func (b *CommandBuilder) UseShell() *CommandBuilder {
	if b.err != nil {
		return b
	}
	b.cmd.Options.UseShell = true
	return b
}

// WithShellArgs sets the flags placed between the shell and the joined
// command string.
func (b *CommandBuilder) WithShellArgs(args ...string) *CommandBuilder {
	if b.err != nil {
		return b
	}
	b.cmd.Options.ShellArgs = args
	return b
}

// WithWorkingDir sets the child's working directory.
func (b *CommandBuilder) WithWorkingDir(dir string) *CommandBuilder {
	if b.err != nil {
		return b
	}
	b.cmd.Options.WorkingDir = dir
	return b
}

// WithInput sets the host input source forwarded to the child.
func (b *CommandBuilder) WithInput(r io.Reader) *CommandBuilder {
	if b.err != nil {
		return b
	}
	b.cmd.Options.Input = r
	return b
}

// NoStdinForward suppresses the stdin forwarding goroutine.
func (b *CommandBuilder) NoStdinForward() *CommandBuilder {
	if b.err != nil {
		return b
	}
	b.cmd.Options.DisableStdinForward = true
	return b
}

// WithGracePeriod sets the delay slept before an *ExitError is raised.
// Zero selects the default; a negative value disables the delay.
func (b *CommandBuilder) WithGracePeriod(d time.Duration) *CommandBuilder {
	if b.err != nil {
		return b
	}
	b.cmd.Options.GracePeriod = d
	return b
}

// Build validates and returns the command.
func (b *CommandBuilder) Build() (*Command, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.cmd.Args) == 0 {
		return nil, ErrEmptyCommand
	}
	if b.cmd.Args[0] == "" {
		return nil, fmt.Errorf("%w: program name is empty", ErrInvalidCommand)
	}
	return b.cmd, nil
}

// MustBuild validates and returns the command, panicking on error.
func (b *CommandBuilder) MustBuild() *Command {
	cmd, err := b.Build()
	if err != nil {
		panic(err)
	}
	return cmd
}
