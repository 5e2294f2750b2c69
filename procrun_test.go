package procrun

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func quietOptions() Options {
	return Options{
		OutputSinks:         []Sink{NewSink(bytes.NewBuffer(nil))},
		ErrorSinks:          []Sink{NewSink(bytes.NewBuffer(nil))},
		DisableStdinForward: true,
		GracePeriod:         -1,
	}
}

func TestExecuteWith(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test requires a POSIX shell")
	}

	code, err := ExecuteWith(context.Background(), quietOptions(), "true")
	if err != nil {
		t.Fatalf("ExecuteWith failed: %v", err)
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}

	code, err = ExecuteWith(context.Background(), quietOptions(), "/bin/sh", "-c", "exit 4")
	if err != nil {
		t.Fatalf("ExecuteWith failed: %v", err)
	}
	if code != 4 {
		t.Errorf("exit code = %d, want 4", code)
	}
}

func TestExecuteWithFailureConversion(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test requires a POSIX shell")
	}

	opts := quietOptions()
	opts.FailOnNonZeroExit = true

	code, err := ExecuteWith(context.Background(), opts, "/bin/sh", "-c", "exit 4")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if code != 4 || exitErr.ExitCode != 4 {
		t.Errorf("codes = %d/%d, want 4/4", code, exitErr.ExitCode)
	}
}

func TestExecuteEmptyArgs(t *testing.T) {
	code, err := Execute(context.Background())
	if !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("error = %v, want ErrEmptyCommand", err)
	}
	if code != -1 {
		t.Errorf("code = %d, want -1", code)
	}
}

func TestCmdBuilderRoundTrip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test requires a POSIX shell")
	}

	var out bytes.Buffer
	cmd, err := Cmd("echo", "via", "facade").
		WithOutputSinks(NewSink(&out)).
		WithErrorSinks(NewSink(bytes.NewBuffer(nil))).
		NoStdinForward().
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	res, err := Run(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Success() {
		t.Errorf("result = %+v, want success", res)
	}
	if out.String() != "via facade\n" {
		t.Errorf("output = %q, want %q", out.String(), "via facade\n")
	}
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	contents := "version: \"1.0\"\nfail_on_nonzero_exit: true\ngrace_period: 50ms\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing profile: %v", err)
	}

	p, err := LoadProfile(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}
	opts, err := p.Options()
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	if !opts.FailOnNonZeroExit || opts.GracePeriod != 50*time.Millisecond {
		t.Errorf("options = %+v", opts)
	}
}

func TestVersion(t *testing.T) {
	if Version() == "" {
		t.Error("empty version")
	}
}
