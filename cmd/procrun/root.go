package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/victoralfred/procrun"
	"github.com/victoralfred/procrun/internal/envutil"
)

type rootCmd struct {
	cmd *cobra.Command

	useShell   bool
	failExit   bool
	noStdin    bool
	replaceEnv bool
	verbose    bool
	env        []string
	workDir    string
	teePath    string
	configPath string
	grace      time.Duration

	exitCode int
}

func newRootCmd() *rootCmd {
	r := &rootCmd{}

	r.cmd = &cobra.Command{
		Use:   "procrun [flags] -- command [args...]",
		Short: "Run a command while relaying its streams",
		Long: `Procrun launches a command, forwards this terminal's stdin to it,
copies its stdout and stderr byte for byte to the configured sinks, waits
for it to finish and exits with the child's exit code.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       procrun.Version(),
		RunE:          r.run,
	}

	flags := r.cmd.Flags()
	flags.BoolVarP(&r.useShell, "shell", "s", false, "join the arguments and run them through the system shell")
	flags.BoolVar(&r.failExit, "fail", false, "treat a non-zero exit as a failure with diagnostics")
	flags.BoolVar(&r.noStdin, "no-stdin", false, "do not forward stdin to the child")
	flags.StringArrayVarP(&r.env, "env", "e", nil, "environment override KEY=VALUE (repeatable)")
	flags.BoolVar(&r.replaceEnv, "replace-env", false, "use only --env entries as the child environment")
	flags.StringVarP(&r.workDir, "dir", "C", "", "working directory for the child")
	flags.StringVar(&r.teePath, "tee", "", "also append both output streams to this file")
	flags.StringVar(&r.configPath, "config", "", "YAML profile with execution defaults")
	flags.DurationVar(&r.grace, "grace", 0, "delay before a --fail failure is raised (default 100ms)")
	flags.BoolVarP(&r.verbose, "verbose", "v", false, "debug logging to stderr")

	return r
}

// execute runs the CLI and returns the child's exit code.
func (r *rootCmd) execute() (int, error) {
	if err := r.cmd.Execute(); err != nil {
		return 0, err
	}
	return r.exitCode, nil
}

func (r *rootCmd) run(cmd *cobra.Command, args []string) error {
	opts, err := r.options(cmd)
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	if r.verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	runr, err := procrun.NewBuilder().
		WithLogger(logrus.NewEntry(log)).
		Build()
	if err != nil {
		return err
	}

	res, err := runr.Run(cmd.Context(), &procrun.Command{Args: args, Options: opts})
	if err != nil {
		return err
	}
	r.exitCode = res.ExitCode
	return nil
}

// options merges the profile file, if any, with the command line flags.
// Flags win.
func (r *rootCmd) options(cmd *cobra.Command) (procrun.Options, error) {
	var opts procrun.Options

	if r.configPath != "" {
		profile, err := procrun.LoadProfile(cmd.Context(), r.configPath)
		if err != nil {
			return procrun.Options{}, err
		}
		opts, err = profile.Options()
		if err != nil {
			return procrun.Options{}, err
		}
	}

	if r.useShell {
		opts.UseShell = true
	}
	if r.failExit {
		opts.FailOnNonZeroExit = true
	}
	if r.noStdin {
		opts.DisableStdinForward = true
	}
	if r.replaceEnv {
		opts.ReplaceEnvironment = true
	}
	if r.workDir != "" {
		opts.WorkingDir = r.workDir
	}
	if r.grace > 0 {
		opts.GracePeriod = r.grace
	}

	for _, kv := range r.env {
		k, v, ok := envutil.Split(kv)
		if !ok {
			return procrun.Options{}, fmt.Errorf("invalid --env entry %q, want KEY=VALUE", kv)
		}
		if opts.Environment == nil {
			opts.Environment = make(map[string]string)
		}
		opts.Environment[k] = v
	}
	if opts.ReplaceEnvironment && opts.Environment == nil {
		return procrun.Options{}, fmt.Errorf("--replace-env requires at least one --env entry")
	}

	opts.OutputSinks = []procrun.Sink{procrun.NewSink(cmd.OutOrStdout())}
	opts.ErrorSinks = []procrun.Sink{procrun.NewSink(cmd.ErrOrStderr())}

	if r.teePath != "" {
		f, err := os.OpenFile(r.teePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return procrun.Options{}, fmt.Errorf("opening tee file: %w", err)
		}
		// Both streams share one file sink; each stream stays in order,
		// their interleaving in the file is unspecified.
		tee := &syncedSink{sink: procrun.BufferedSink(f)}
		opts.OutputSinks = append(opts.OutputSinks, tee)
		opts.ErrorSinks = append(opts.ErrorSinks, tee)
	}

	return opts, nil
}

// syncedSink serializes two multiplexer goroutines writing one shared sink.
type syncedSink struct {
	mu   sync.Mutex
	sink procrun.Sink
}

func (s *syncedSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink.Write(p)
}

func (s *syncedSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink.Flush()
}
