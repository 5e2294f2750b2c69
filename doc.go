// Package procrun executes external processes while relaying their streams.
//
// Procrun launches a command (an argv, or a string handed to the system
// shell), forwards the host's stdin to it line by line, duplicates the
// child's stdout and stderr to any number of sinks without losing or
// reordering bytes, waits for termination, and can convert a non-zero exit
// code into a structured failure.
//
// # Quick Start
//
//	code, err := procrun.Execute(ctx, "ls", "-la")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("exit:", code)
//
// # Sinks
//
// Each output stream is copied byte for byte, in order, to every sink in
// its list. Sinks for one stream all see the identical sequence; no
// ordering is guaranteed between the stdout and stderr streams.
//
//	var buf bytes.Buffer
//	opts := procrun.Options{
//	    OutputSinks: []procrun.Sink{
//	        procrun.NewSink(os.Stdout),
//	        procrun.NewSink(&buf),
//	    },
//	}
//	code, err := procrun.ExecuteWith(ctx, opts, "make", "test")
//
// # Failure Conversion
//
// With FailOnNonZeroExit set, a non-zero exit becomes an *ExitError
// carrying the resolved argv, the exit code and a redacted options
// snapshot (the environment is stripped). The error is raised after a
// short, configurable grace period that gives trailing output on a shared
// terminal a chance to render first; the delay is best-effort and promises
// no ordering.
//
// # Shell Mode
//
// With UseShell set, the argv is joined with single spaces and passed to
// the resolved shell's -c form (cmd /C on Windows, $SHELL or /bin/sh
// elsewhere). No quoting is performed.
//
// # Package Structure
//
//   - procrun: entry point and convenience functions
//   - runner: Runner, Command, Options, Result and the error types
//   - shell: shell prelude resolution
//   - config: YAML profile loading for execution defaults
//   - observability: OpenTelemetry integration and in-process metrics
//
// # File I/O
//
// File operations use github.com/victoralfred/gowritter/safepath for
// secure path handling.
package procrun
