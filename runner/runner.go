package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/victoralfred/gowritter/safepath"

	"github.com/victoralfred/procrun/internal/envutil"
	"github.com/victoralfred/procrun/internal/stream"
	"github.com/victoralfred/procrun/observability"
	"github.com/victoralfred/procrun/shell"
)

// Telemetry is the observability hook consumed by the Runner. The
// observability package provides OpenTelemetry-backed and no-op
// implementations.
type Telemetry interface {
	// StartSpan starts a trace span; the returned func ends it.
	StartSpan(ctx context.Context, name string) (context.Context, func())

	// RecordDuration records an execution duration in seconds.
	RecordDuration(name string, seconds float64, labels map[string]string)

	// RecordCounter increments a counter.
	RecordCounter(name string, labels map[string]string)
}

// Runner executes commands. It is safe for concurrent use; every Run owns
// its child process and stream goroutines end-to-end.
type Runner struct {
	log       *logrus.Entry
	telemetry Telemetry
	metrics   *observability.Metrics
}

// Builder creates configured Runner instances.
type Builder struct {
	log       *logrus.Entry
	telemetry Telemetry
	metrics   *observability.Metrics
}

// NewBuilder creates a new runner builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithLogger sets the logger. Without one, logging is discarded.
func (b *Builder) WithLogger(log *logrus.Entry) *Builder {
	b.log = log
	return b
}

// WithTelemetry sets the telemetry provider.
func (b *Builder) WithTelemetry(t Telemetry) *Builder {
	b.telemetry = t
	return b
}

// WithMetrics sets the in-process metrics collector.
func (b *Builder) WithMetrics(m *observability.Metrics) *Builder {
	b.metrics = m
	return b
}

// Build creates the runner.
func (b *Builder) Build() (*Runner, error) {
	r := &Runner{
		log:       b.log,
		telemetry: b.telemetry,
		metrics:   b.metrics,
	}
	if r.log == nil {
		r.log = discardEntry()
	}
	if r.telemetry == nil {
		r.telemetry = observability.NoopTelemetry()
	}
	return r, nil
}

func discardEntry() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// Run executes cmd and blocks until the child has exited and every byte
// of its output has been delivered to the sinks.
//
// The error is a *SpawnError when the OS refuses to start the process, or
// an *ExitError when the child exits non-zero and the command requested
// failure conversion; in the latter case the Result is returned alongside
// the error. A non-zero exit without that request is not an error: the
// code is simply reported in the Result.
//
// Cancelling ctx kills the child. No timeouts exist here; a hung child or
// a hung sink write blocks the call indefinitely.
func (r *Runner) Run(ctx context.Context, cmd *Command) (*Result, error) {
	if cmd == nil || len(cmd.Args) == 0 {
		return nil, ErrEmptyCommand
	}
	opts := cmd.Options.withDefaults()

	runID := uuid.New().String()
	log := r.log.WithField("run_id", runID)

	ctx, endSpan := r.telemetry.StartSpan(ctx, "runner.Run")
	defer endSpan()

	argv := cmd.Args
	if opts.UseShell {
		// Plain space join, no escaping. Metacharacters are the
		// caller's responsibility.
		argv = append(shell.Prelude(log, opts.ShellArgs...), strings.Join(cmd.Args, " "))
	}

	child := exec.CommandContext(ctx, argv[0], argv[1:]...)
	child.Env = envutil.Build(opts.Environment, opts.ReplaceEnvironment)
	child.Dir = opts.WorkingDir

	stdout, err := child.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Argv: argv, Err: err}
	}
	stderr, err := child.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Argv: argv, Err: err}
	}

	var stdin *stream.StdinWriter
	var forwarder *stream.Forwarder
	if !opts.DisableStdinForward {
		pipe, err := child.StdinPipe()
		if err != nil {
			return nil, &SpawnError{Argv: argv, Err: err}
		}
		stdin = stream.NewStdinWriter(pipe)
		forwarder = stream.NewForwarder(opts.Input, stdin)
	}

	start := time.Now()
	if err := child.Start(); err != nil {
		return nil, &SpawnError{Argv: argv, Err: err}
	}
	log.WithFields(logrus.Fields{
		"pid":     child.Process.Pid,
		"program": argv[0],
	}).Debug("child process started")

	if forwarder != nil {
		forwarder.Start()
	}

	// One goroutine per output stream; each owns its pipe end-to-end, so
	// no locking is needed beyond the pipes themselves.
	var outCopyErr, errCopyErr error
	var streams sync.WaitGroup
	streams.Add(2)
	go func() {
		defer streams.Done()
		outCopyErr = stream.Multiplex(stdout, opts.OutputSinks)
	}()
	go func() {
		defer streams.Done()
		errCopyErr = stream.Multiplex(stderr, opts.ErrorSinks)
	}()

	// Join the output streams before inspecting the exit code: all child
	// output is in the sinks before the code is reported, even when the
	// child itself exited long ago.
	streams.Wait()

	waitErr := child.Wait()
	duration := time.Since(start)

	// The forwarder is otherwise blocked on host input forever; this is
	// the only cancellation path in the system.
	if forwarder != nil {
		forwarder.Stop()
		//nolint:errcheck // the child is gone; close can only report a dead pipe
		_ = stdin.Close()
		outcome := forwarder.Wait()
		log.WithField("outcome", outcome.String()).Debug("stdin forwarder finished")
	}

	if outCopyErr != nil {
		log.WithError(outCopyErr).Warn("stdout copy aborted")
	}
	if errCopyErr != nil {
		log.WithError(errCopyErr).Warn("stderr copy aborted")
	}

	res := &Result{RunID: runID, Duration: duration}
	if state := child.ProcessState; state != nil {
		res.ExitCode = state.ExitCode()
		if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			res.Signal = ws.Signal().String()
		}
	}
	switch {
	case res.Signal != "":
		res.Status = StatusSignaled
	case res.ExitCode != 0:
		res.Status = StatusErrored
	default:
		res.Status = StatusSuccess
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("waiting for child: %w", waitErr)
		}
	}

	r.record(argv[0], res)
	log.WithFields(logrus.Fields{
		"exit_code": res.ExitCode,
		"duration":  duration,
	}).Debug("child process finished")

	if res.ExitCode != 0 && opts.FailOnNonZeroExit {
		// Best-effort pause so trailing output sharing the terminal can
		// finish rendering first. Not an ordering guarantee.
		if opts.GracePeriod > 0 {
			time.Sleep(opts.GracePeriod)
		}
		return res, newExitError(runID, argv, opts, res.ExitCode, scriptContents(cmd, opts))
	}
	return res, nil
}

func (r *Runner) record(program string, res *Result) {
	labels := map[string]string{
		"program":   program,
		"exit_code": strconv.Itoa(res.ExitCode),
	}
	r.telemetry.RecordCounter("procrun_runs_total", labels)
	r.telemetry.RecordDuration("procrun_run_duration_seconds", res.Duration.Seconds(), labels)
	if res.ExitCode != 0 {
		r.telemetry.RecordCounter("procrun_failures_total", labels)
	}
	if r.metrics != nil {
		r.metrics.RecordRun(program, res.ExitCode, res.Duration)
	}
}

// scriptContents captures the contents of a directly executed script for
// failure diagnostics: only when the command is a single argument run
// without the shell wrapper and the path names an existing regular file.
func scriptContents(cmd *Command, opts Options) string {
	if opts.UseShell || len(cmd.Args) != 1 {
		return ""
	}
	path := cmd.Args[0]
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	sp, err := safepath.New(filepath.Dir(path))
	if err != nil {
		return ""
	}
	data, err := sp.ReadFile(filepath.Base(path))
	if err != nil {
		return ""
	}
	return string(data)
}
