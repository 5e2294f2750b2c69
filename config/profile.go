// Package config loads execution defaults from a YAML profile file.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/victoralfred/procrun/runner"
)

// Profile is a YAML-backed set of execution defaults. Sinks cannot be
// expressed in a file and stay caller-supplied.
type Profile struct {
	// Version identifies the profile schema.
	Version string `yaml:"version"`

	// UseShell runs commands through the system shell by default.
	UseShell bool `yaml:"use_shell"`

	// ShellArgs are the flags between the shell and the joined command.
	ShellArgs []string `yaml:"shell_args"`

	// FailOnNonZeroExit converts non-zero exits into structured failures.
	FailOnNonZeroExit bool `yaml:"fail_on_nonzero_exit"`

	// DisableStdinForward suppresses stdin forwarding.
	DisableStdinForward bool `yaml:"disable_stdin_forward"`

	// Environment contains default environment overrides.
	Environment map[string]string `yaml:"environment"`

	// ReplaceEnvironment makes Environment the entire child environment.
	ReplaceEnvironment bool `yaml:"replace_environment"`

	// WorkingDir is the default working directory for children.
	WorkingDir string `yaml:"working_dir"`

	// GracePeriod is the delay before a failure is raised, in
	// time.ParseDuration form, e.g. "100ms". Empty selects the default.
	GracePeriod string `yaml:"grace_period"`
}

// Parse decodes a profile from YAML bytes.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile YAML: %w", err)
	}
	return &p, nil
}

// Options converts the profile into runner options.
func (p *Profile) Options() (runner.Options, error) {
	opts := runner.Options{
		UseShell:            p.UseShell,
		ShellArgs:           p.ShellArgs,
		FailOnNonZeroExit:   p.FailOnNonZeroExit,
		DisableStdinForward: p.DisableStdinForward,
		Environment:         p.Environment,
		ReplaceEnvironment:  p.ReplaceEnvironment,
		WorkingDir:          p.WorkingDir,
	}
	if p.GracePeriod != "" {
		d, err := time.ParseDuration(p.GracePeriod)
		if err != nil {
			return runner.Options{}, fmt.Errorf("invalid grace_period %q: %w", p.GracePeriod, err)
		}
		if d == 0 {
			d = -1 // zero in a profile means "no delay", not "default"
		}
		opts.GracePeriod = d
	}
	return opts, nil
}

// ExampleProfile returns a profile suitable as a starting point.
func ExampleProfile() *Profile {
	return &Profile{
		Version:     "1.0",
		ShellArgs:   []string{"-c"},
		GracePeriod: "100ms",
	}
}
