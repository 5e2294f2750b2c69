package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, dir, name, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o600); err != nil {
		t.Fatalf("writing profile file: %v", err)
	}
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "profile.yaml", "version: \"1.0\"\nuse_shell: true\n")

	l, err := NewLoader(dir, "profile.yaml")
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	p, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !p.UseShell {
		t.Error("use_shell not loaded")
	}
}

func TestLoaderCachesUnchangedFile(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "profile.yaml", "version: \"1.0\"\n")

	l, err := NewLoader(dir, "profile.yaml")
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	first, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("first Load failed: %v", err)
	}
	second, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if first != second {
		t.Error("unchanged file was reparsed instead of served from cache")
	}
}

func TestLoaderReloadsChangedFile(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "profile.yaml", "version: \"1.0\"\n")

	l, err := NewLoader(dir, "profile.yaml")
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	first, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("first Load failed: %v", err)
	}

	writeProfile(t, dir, "profile.yaml", "version: \"2.0\"\nfail_on_nonzero_exit: true\n")

	second, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if first == second {
		t.Error("changed file served from cache")
	}
	if second.Version != "2.0" || !second.FailOnNonZeroExit {
		t.Errorf("reloaded profile = %+v", second)
	}
}

func TestLoaderGet(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "profile.yaml", "version: \"1.0\"\n")

	l, err := NewLoader(dir, "profile.yaml")
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	if _, ok := l.Get(); ok {
		t.Error("Get reported a profile before any Load")
	}

	if _, err := l.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p, ok := l.Get(); !ok || p.Version != "1.0" {
		t.Errorf("Get after Load = (%+v, %v)", p, ok)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	l, err := NewLoader(t.TempDir(), "absent.yaml")
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}
	if _, err := l.Load(context.Background()); err == nil {
		t.Error("expected error for missing profile file")
	}
}

type rejectingValidator struct{ err error }

func (v rejectingValidator) Validate(*Profile) error { return v.err }

func TestLoaderRunsValidators(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "profile.yaml", "version: \"1.0\"\n")

	sentinel := errors.New("rejected")
	l, err := NewLoader(dir, "profile.yaml", WithValidator(rejectingValidator{err: sentinel}))
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}

	_, err = l.Load(context.Background())
	if !errors.Is(err, sentinel) {
		t.Errorf("Load error = %v, want the validator's error", err)
	}
	if _, ok := l.Get(); ok {
		t.Error("rejected profile was cached")
	}
}
